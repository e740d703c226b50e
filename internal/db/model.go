package db

import "time"

// Model 与 gorm.Model 字段一致（不含软删除），补充 JSON 标签供 API 输出。
// 内容表依赖唯一 slug，硬删除可以避免已删除记录占用 slug。
type Model struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	StatusPublished = "published"
	StatusDraft     = "draft"
)

// 内容类型，用于评论、内容关联、首页轮播与浏览统计的多态引用。
const (
	ContentTypePost     = "post"
	ContentTypeRegion   = "region"
	ContentTypeHotel    = "hotel"
	ContentTypeActivity = "activity"
	ContentTypeVideo    = "video"
	ContentTypeGallery  = "gallery"
	ContentTypePhoto    = "photo"
)

// Cover 描述封面图片，宽高用于前端预留布局。
type Cover struct {
	CoverURL    string `json:"cover_url"`
	CoverWidth  int    `json:"cover_width"`
	CoverHeight int    `json:"cover_height"`
}
