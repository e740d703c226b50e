package db

import "time"

// Post 定义了文章模型
type Post struct {
	Model
	Title       string     `gorm:"size:255;not null" json:"title"`
	Slug        string     `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Summary     string     `gorm:"type:text" json:"summary"`
	Content     string     `gorm:"type:text" json:"content"`
	Status      string     `gorm:"size:16;index;default:draft" json:"status"`
	PublishedAt *time.Time `gorm:"index" json:"published_at,omitempty"`
	ReadingTime int        `json:"reading_time"`
	RegionID    *uint      `gorm:"index" json:"region_id,omitempty"`
	Region      *Region    `gorm:"constraint:OnDelete:SET NULL" json:"region,omitempty"`
	UserID      uint       `gorm:"index" json:"user_id"`
	User        User       `json:"author"`
	Tags        []Tag      `gorm:"many2many:post_tags;" json:"tags"`
	Cover
}
