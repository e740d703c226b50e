package db

import "time"

// ContentStatistic 汇总单条内容的浏览数据。
type ContentStatistic struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	ContentType    string    `gorm:"size:20;uniqueIndex:idx_content_stat" json:"content_type"`
	ContentID      uint      `gorm:"uniqueIndex:idx_content_stat" json:"content_id"`
	PageViews      uint64    `gorm:"default:0" json:"page_views"`
	UniqueVisitors uint64    `gorm:"default:0" json:"unique_visitors"`
	LastViewedAt   time.Time `json:"last_viewed_at"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

// TableName 指定自定义表名，避免自动复数化导致的歧义。
func (ContentStatistic) TableName() string {
	return "content_statistics"
}

// ContentVisit 记录访客层面的浏览历史，用于 UV/PV 去重。
type ContentVisit struct {
	ID            uint      `gorm:"primaryKey"`
	ContentType   string    `gorm:"size:20;uniqueIndex:idx_content_visit"`
	ContentID     uint      `gorm:"uniqueIndex:idx_content_visit"`
	VisitorID     string    `gorm:"size:64;uniqueIndex:idx_content_visit"`
	LastViewedAt  time.Time
	LastCountedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName 指定自定义表名。
func (ContentVisit) TableName() string {
	return "content_visits"
}
