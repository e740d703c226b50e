package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tourcms/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultSiteName = "TourCMS"

// ErrSettingEmailInvalid 表示联系邮箱格式不正确。
var ErrSettingEmailInvalid = errors.New("contact email is invalid")

// SiteSettings 描述后台可配置的站点信息。
type SiteSettings struct {
	SiteName     string `json:"site_name"`
	SiteLogoURL  string `json:"site_logo_url"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	InstagramURL string `json:"instagram_url"`
	FacebookURL  string `json:"facebook_url"`
	YouTubeURL   string `json:"youtube_url"`
}

// SystemSettingService 提供站点设置的读取与更新能力。
type SystemSettingService struct {
	db *gorm.DB
}

// NewSystemSettingService 构造 SystemSettingService。
func NewSystemSettingService(gdb *gorm.DB) *SystemSettingService {
	return &SystemSettingService{db: gdb}
}

var settingKeys = []string{
	db.SettingKeySiteName,
	db.SettingKeySiteLogoURL,
	db.SettingKeyContactEmail,
	db.SettingKeyContactPhone,
	db.SettingKeyInstagramURL,
	db.SettingKeyFacebookURL,
	db.SettingKeyYouTubeURL,
}

// GetSettings 读取站点设置，未设置的站点名称回退默认值。
func (s *SystemSettingService) GetSettings() (SiteSettings, error) {
	result := SiteSettings{SiteName: defaultSiteName}

	var records []db.SystemSetting
	if err := s.db.Where("key IN ?", settingKeys).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load system settings: %w", err)
	}

	for _, record := range records {
		if field := result.field(record.Key); field != nil {
			*field = record.Value
		}
	}
	if strings.TrimSpace(result.SiteName) == "" {
		result.SiteName = defaultSiteName
	}
	return result, nil
}

// UpdateSettings 保存全部站点设置。
func (s *SystemSettingService) UpdateSettings(input SiteSettings) (SiteSettings, error) {
	sanitized := SiteSettings{
		SiteName:     strings.TrimSpace(input.SiteName),
		SiteLogoURL:  strings.TrimSpace(input.SiteLogoURL),
		ContactEmail: strings.TrimSpace(input.ContactEmail),
		ContactPhone: strings.TrimSpace(input.ContactPhone),
		InstagramURL: strings.TrimSpace(input.InstagramURL),
		FacebookURL:  strings.TrimSpace(input.FacebookURL),
		YouTubeURL:   strings.TrimSpace(input.YouTubeURL),
	}
	if sanitized.SiteName == "" {
		sanitized.SiteName = defaultSiteName
	}
	if sanitized.ContactEmail != "" {
		if !validEmail(sanitized.ContactEmail) {
			return SiteSettings{}, ErrSettingEmailInvalid
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, key := range settingKeys {
			if err := upsertSetting(tx, key, *sanitized.field(key)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SiteSettings{}, fmt.Errorf("update system settings: %w", err)
	}
	return sanitized, nil
}

func (s *SiteSettings) field(key string) *string {
	switch key {
	case db.SettingKeySiteName:
		return &s.SiteName
	case db.SettingKeySiteLogoURL:
		return &s.SiteLogoURL
	case db.SettingKeyContactEmail:
		return &s.ContactEmail
	case db.SettingKeyContactPhone:
		return &s.ContactPhone
	case db.SettingKeyInstagramURL:
		return &s.InstagramURL
	case db.SettingKeyFacebookURL:
		return &s.FacebookURL
	case db.SettingKeyYouTubeURL:
		return &s.YouTubeURL
	}
	return nil
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SystemSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}
