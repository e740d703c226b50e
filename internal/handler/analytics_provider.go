package handler

import (
	"time"

	"github.com/tourcms/internal/db"
	"github.com/tourcms/internal/service"
)

type analyticsProvider interface {
	Overview(limit int) (service.SiteOverview, error)
	StatsMap(contentType string, ids []uint) (map[uint]*db.ContentStatistic, error)
	RecordView(contentType string, contentID uint, visitorID string, now time.Time) (*db.ContentStatistic, error)
}
