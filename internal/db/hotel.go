package db

// Hotel 描述某区域内可预订的住宿。
// PriceFrom 以最小货币单位存储，避免浮点误差。
type Hotel struct {
	Model
	Name        string   `gorm:"size:200;not null" json:"name"`
	Slug        string   `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	RegionID    uint     `gorm:"index;not null" json:"region_id"`
	Region      *Region  `gorm:"constraint:OnDelete:RESTRICT" json:"region,omitempty"`
	Summary     string   `gorm:"size:500" json:"summary"`
	Description string   `gorm:"type:text" json:"description"`
	Address     string   `gorm:"size:255" json:"address"`
	Stars       int      `gorm:"default:0" json:"stars"`
	PriceFrom   int64    `gorm:"default:0" json:"price_from"`
	Currency    string   `gorm:"size:3" json:"currency"`
	Phone       string   `gorm:"size:40" json:"phone"`
	Website     string   `gorm:"size:255" json:"website"`
	BookingURL  string   `gorm:"size:255" json:"booking_url"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Amenities   []string `gorm:"type:text;serializer:json" json:"amenities"`
	Status      string   `gorm:"size:16;index;default:draft" json:"status"`
	SortOrder   int      `gorm:"default:0" json:"sort_order"`
	Cover
}
