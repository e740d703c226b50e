package db

// Gallery 定义摄影专题，包含若干按顺序排列的照片
type Gallery struct {
	Model
	Title       string  `gorm:"size:200;not null" json:"title"`
	Slug        string  `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Description string  `gorm:"type:text" json:"description"`
	RegionID    *uint   `gorm:"index" json:"region_id,omitempty"`
	Region      *Region `gorm:"constraint:OnDelete:SET NULL" json:"region,omitempty"`
	Status      string  `gorm:"size:16;index;default:draft" json:"status"`
	SortOrder   int     `gorm:"default:0" json:"sort_order"`
	Photos      []Photo `gorm:"constraint:OnDelete:CASCADE" json:"photos,omitempty"`
	Cover
}

// Photo 定义专题中的单张图片
type Photo struct {
	Model
	GalleryID   uint   `gorm:"index;not null" json:"gallery_id"`
	ImageURL    string `gorm:"size:500;not null" json:"image_url"`
	ImageWidth  int    `json:"image_width"`
	ImageHeight int    `json:"image_height"`
	Caption     string `gorm:"size:500" json:"caption"`
	SortOrder   int    `gorm:"default:0" json:"sort_order"`
}
