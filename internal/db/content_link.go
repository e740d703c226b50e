package db

// ContentLink 把一条内容关联到另一条文章/照片/视频，用于“相关内容”区块。
// 四列组成唯一索引，重复关联是幂等的。
type ContentLink struct {
	Model
	SourceType string `gorm:"size:20;not null;uniqueIndex:idx_content_link_pair;index:idx_content_link_source" json:"source_type"`
	SourceID   uint   `gorm:"not null;uniqueIndex:idx_content_link_pair;index:idx_content_link_source" json:"source_id"`
	TargetType string `gorm:"size:20;not null;uniqueIndex:idx_content_link_pair;index:idx_content_link_target" json:"target_type"`
	TargetID   uint   `gorm:"not null;uniqueIndex:idx_content_link_pair;index:idx_content_link_target" json:"target_id"`
	SortOrder  int    `gorm:"default:0" json:"sort_order"`
}
