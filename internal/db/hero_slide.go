package db

import "time"

const (
	HeroSlideKindCustom  = "custom"
	HeroSlideKindContent = "content"
)

// HeroSlide 首页轮播项：custom 自带全部展示字段，content 引用已有内容，
// 非空的 Title/Subtitle/ImageURL 视为对引用内容的覆盖。
type HeroSlide struct {
	Model
	Kind        string     `gorm:"size:16;not null;default:custom" json:"kind"`
	Title       string     `gorm:"size:200" json:"title"`
	Subtitle    string     `gorm:"size:300" json:"subtitle"`
	ImageURL    string     `gorm:"size:500" json:"image_url"`
	LinkURL     string     `gorm:"size:500" json:"link_url"`
	ButtonLabel string     `gorm:"size:60" json:"button_label"`
	ContentType string     `gorm:"size:20" json:"content_type,omitempty"`
	ContentID   uint       `json:"content_id,omitempty"`
	Active      bool       `gorm:"default:true" json:"active"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	SortOrder   int        `gorm:"index;default:0" json:"sort_order"`
}
