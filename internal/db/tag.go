package db

// Tag 定义了标签模型
type Tag struct {
	Model
	Name      string `gorm:"size:80;uniqueIndex;not null" json:"name"`
	SortOrder int    `gorm:"default:0" json:"sort_order"`
	PostCount int64  `gorm:"->;-:migration" json:"post_count"`
	Posts     []Post `gorm:"many2many:post_tags;" json:"-"`
}
