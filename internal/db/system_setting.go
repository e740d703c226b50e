package db

// SystemSetting 存储后台可配置的系统级键值对。
type SystemSetting struct {
	Model
	Key   string `gorm:"size:100;uniqueIndex;not null" json:"key"`
	Value string `gorm:"type:text" json:"value"`
}

// TableName 自定义表名以保持命名一致。
func (SystemSetting) TableName() string {
	return "system_settings"
}

const (
	SettingKeySiteName     = "site_name"
	SettingKeySiteLogoURL  = "site_logo_url"
	SettingKeyContactEmail = "contact_email"
	SettingKeyContactPhone = "contact_phone"
	SettingKeyInstagramURL = "instagram_url"
	SettingKeyFacebookURL  = "facebook_url"
	SettingKeyYouTubeURL   = "youtube_url"
)
