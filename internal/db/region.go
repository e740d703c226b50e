package db

// Region 描述一个旅游目的地区域，酒店、活动与文章都可以挂在区域下。
type Region struct {
	Model
	Name        string  `gorm:"size:160;not null" json:"name"`
	Slug        string  `gorm:"size:160;uniqueIndex;not null" json:"slug"`
	Summary     string  `gorm:"size:500" json:"summary"`
	Description string  `gorm:"type:text" json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Status      string  `gorm:"size:16;index;default:draft" json:"status"`
	SortOrder   int     `gorm:"default:0" json:"sort_order"`
	Cover
}
