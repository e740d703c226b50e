package db

// Activity 描述区域内的游玩项目，例如徒步、漂流、城市导览。
type Activity struct {
	Model
	Title           string  `gorm:"size:200;not null" json:"title"`
	Slug            string  `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	RegionID        uint    `gorm:"index;not null" json:"region_id"`
	Region          *Region `gorm:"constraint:OnDelete:RESTRICT" json:"region,omitempty"`
	Category        string  `gorm:"size:60;index" json:"category"`
	Summary         string  `gorm:"size:500" json:"summary"`
	Description     string  `gorm:"type:text" json:"description"`
	DurationMinutes int     `json:"duration_minutes"`
	PriceFrom       int64   `gorm:"default:0" json:"price_from"`
	Currency        string  `gorm:"size:3" json:"currency"`
	Status          string  `gorm:"size:16;index;default:draft" json:"status"`
	SortOrder       int     `gorm:"default:0" json:"sort_order"`
	Cover
}
