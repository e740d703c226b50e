package service

import (
	"errors"
	"time"

	"github.com/tourcms/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultViewDedupWindow = 30 * time.Minute

var ErrVisitorMissing = errors.New("visitor id is required")

// AnalyticsService 负责内容浏览相关的统计逻辑。
type AnalyticsService struct {
	db          *gorm.DB
	resolver    *ContentResolver
	dedupWindow time.Duration
}

// NewAnalyticsService 创建 AnalyticsService，默认去重窗口为 30 分钟。
func NewAnalyticsService(gdb *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: gdb, resolver: NewContentResolver(gdb), dedupWindow: defaultViewDedupWindow}
}

// WithDedupWindow 允许在测试或特定场景下调整去重窗口。
func (s *AnalyticsService) WithDedupWindow(d time.Duration) *AnalyticsService {
	if d <= 0 {
		return s
	}
	s.dedupWindow = d
	return s
}

// RecordView 记录访客对已发布内容的浏览。同一访客在去重窗口内的重复浏览
// 只刷新最后浏览时间，不再累加 PV。
func (s *AnalyticsService) RecordView(contentType string, contentID uint, visitorID string, now time.Time) (*db.ContentStatistic, error) {
	if visitorID == "" {
		return nil, ErrVisitorMissing
	}
	target, err := s.resolver.Resolve(ContentRef{Type: contentType, ID: contentID})
	if err != nil {
		return nil, err
	}
	if !target.Published {
		return nil, ErrContentAbsent
	}

	var stats db.ContentStatistic
	err = s.db.Transaction(func(tx *gorm.DB) error {
		visit := db.ContentVisit{
			ContentType:   contentType,
			ContentID:     contentID,
			VisitorID:     visitorID,
			LastViewedAt:  now,
			LastCountedAt: now,
		}
		insert := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "content_type"}, {Name: "content_id"}, {Name: "visitor_id"}},
			DoNothing: true,
		}).Create(&visit)
		if insert.Error != nil {
			return insert.Error
		}

		isNewVisitor := insert.RowsAffected == 1
		countView := isNewVisitor
		if !isNewVisitor {
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("content_type = ? AND content_id = ? AND visitor_id = ?", contentType, contentID, visitorID).
				First(&visit).Error; err != nil {
				return err
			}
			visit.LastViewedAt = now
			if now.Sub(visit.LastCountedAt) >= s.dedupWindow {
				visit.LastCountedAt = now
				countView = true
			}
			if err := tx.Save(&visit).Error; err != nil {
				return err
			}
		}

		statsResult := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("content_type = ? AND content_id = ?", contentType, contentID).
			First(&stats)
		switch {
		case errors.Is(statsResult.Error, gorm.ErrRecordNotFound):
			stats = db.ContentStatistic{ContentType: contentType, ContentID: contentID}
			if err := tx.Create(&stats).Error; err != nil {
				return err
			}
		case statsResult.Error != nil:
			return statsResult.Error
		}

		if countView {
			stats.PageViews++
		}
		if isNewVisitor {
			stats.UniqueVisitors++
		}
		stats.LastViewedAt = now
		return tx.Save(&stats).Error
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// StatsMap 返回指定内容的统计数据，没有浏览记录的内容不会出现在结果中。
func (s *AnalyticsService) StatsMap(contentType string, ids []uint) (map[uint]*db.ContentStatistic, error) {
	result := make(map[uint]*db.ContentStatistic, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var stats []db.ContentStatistic
	if err := s.db.Where("content_type = ? AND content_id IN ?", contentType, ids).Find(&stats).Error; err != nil {
		return nil, err
	}
	for i := range stats {
		stat := stats[i]
		result[stat.ContentID] = &stat
	}
	return result, nil
}

// SiteOverview 聚合后台首页的内容数量、UV/PV 与热门内容。
type SiteOverview struct {
	TotalPageViews      uint64           `json:"total_page_views"`
	TotalUniqueVisitors uint64           `json:"total_unique_visitors"`
	Counts              map[string]int64 `json:"counts"`
	PendingComments     int64            `json:"pending_comments"`
	TopContent          []TopContentStat `json:"top_content"`
}

// TopContentStat 描述热门内容的统计信息。
type TopContentStat struct {
	ContentSummary
	PageViews      uint64 `json:"page_views"`
	UniqueVisitors uint64 `json:"unique_visitors"`
}

// Overview 汇总全站数据，limit 控制热门内容条数。
func (s *AnalyticsService) Overview(limit int) (SiteOverview, error) {
	if limit <= 0 {
		limit = 5
	}
	overview := SiteOverview{Counts: map[string]int64{}, TopContent: []TopContentStat{}}

	var totals struct {
		PageViews uint64
	}
	if err := s.db.Model(&db.ContentStatistic{}).
		Select("COALESCE(SUM(page_views), 0) AS page_views").
		Scan(&totals).Error; err != nil {
		return overview, err
	}
	overview.TotalPageViews = totals.PageViews

	var uniqueVisitors int64
	if err := s.db.Model(&db.ContentVisit{}).Distinct("visitor_id").Count(&uniqueVisitors).Error; err != nil {
		return overview, err
	}
	overview.TotalUniqueVisitors = uint64(uniqueVisitors)

	counted := map[string]any{
		db.ContentTypePost:     &db.Post{},
		db.ContentTypeRegion:   &db.Region{},
		db.ContentTypeHotel:    &db.Hotel{},
		db.ContentTypeActivity: &db.Activity{},
		db.ContentTypeVideo:    &db.Video{},
		db.ContentTypeGallery:  &db.Gallery{},
		db.ContentTypePhoto:    &db.Photo{},
	}
	for name, model := range counted {
		var n int64
		if err := s.db.Model(model).Count(&n).Error; err != nil {
			return overview, err
		}
		overview.Counts[name] = n
	}

	if err := s.db.Model(&db.Comment{}).
		Where("status = ?", db.CommentStatusPending).
		Count(&overview.PendingComments).Error; err != nil {
		return overview, err
	}

	// 多取一些，跳过已被删除但统计尚在的内容
	var top []db.ContentStatistic
	if err := s.db.Order("page_views desc").Order("id asc").Limit(limit * 2).Find(&top).Error; err != nil {
		return overview, err
	}
	refs := make([]ContentRef, 0, len(top))
	for _, st := range top {
		if ValidContentType(st.ContentType) {
			refs = append(refs, ContentRef{Type: st.ContentType, ID: st.ContentID})
		}
	}
	summaries, err := s.resolver.ResolveMany(refs)
	if err != nil {
		return overview, err
	}
	for _, st := range top {
		summary, ok := summaries[ContentRef{Type: st.ContentType, ID: st.ContentID}]
		if !ok {
			continue
		}
		overview.TopContent = append(overview.TopContent, TopContentStat{
			ContentSummary: *summary,
			PageViews:      st.PageViews,
			UniqueVisitors: st.UniqueVisitors,
		})
		if len(overview.TopContent) == limit {
			break
		}
	}
	return overview, nil
}
