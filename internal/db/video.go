package db

// Video 保存外部平台的视频引用，EmbedURL 由 SourceURL 解析得到。
type Video struct {
	Model
	Title        string  `gorm:"size:200;not null" json:"title"`
	Slug         string  `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Description  string  `gorm:"type:text" json:"description"`
	SourceURL    string  `gorm:"size:500;not null" json:"source_url"`
	Platform     string  `gorm:"size:20" json:"platform"`
	EmbedURL     string  `gorm:"size:500" json:"embed_url"`
	ThumbnailURL string  `gorm:"size:500" json:"thumbnail_url"`
	RegionID     *uint   `gorm:"index" json:"region_id,omitempty"`
	Region       *Region `gorm:"constraint:OnDelete:SET NULL" json:"region,omitempty"`
	Status       string  `gorm:"size:16;index;default:draft" json:"status"`
	SortOrder    int     `gorm:"default:0" json:"sort_order"`
}
