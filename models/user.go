package models

import "time"

type UserAccount struct {
	JsonModel
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"unique"`
	Password string `json:"-"`
	Banned   bool   `gorm:"default:false" json:"-"`
	LastIp   string `json:"-"`
	//"STARTED_AUTH", "FINISHED_AUTH"
	Status              string     `json:"-"`
	GoogleID            string     `json:"-"`
	AppleID             string     `json:"-"`
	UTMSource           string     `json:"utm_source"`
	Platform            Platform   `sql:"type:ENUM('ios', 'android', 'web')" json:"platform"`
	TelegramUsername    string     `json:"telegram_username"`
	Subscription        *string    `json:"subscription"`
	ExpirationDate      *time.Time `json:"-"`
	ConfirmedDeleteDate *time.Time `json:"-"`
	// Notifications settings
	ReceiveNotifications bool   `json:"receive_notifications"`
	IsSuperadmin         bool   `json:"is_superadmin"`
	AvatarURL            string `json:"avatar_url"`
	// storage key of the selfie behind the color profile
	SelfieKey *string `json:"-"`
}

// HasActiveSubscription is true for paid or trial users whose entitlement did
// not expire yet.
func (u UserAccount) HasActiveSubscription(now time.Time) bool {
	if u.Subscription == nil || Subscription(*u.Subscription) == Free {
		return false
	}
	return u.ExpirationDate == nil || u.ExpirationDate.After(now)
}

type UserPushToken struct {
	JsonModel
	UserAccountID uint
	UserAccount   UserAccount `json:"user_account"`
	Platform      Platform    `sql:"type:ENUM('ios', 'android', 'web')" json:"platform"`
	Token         string      `json:"token"`
	Active        bool        `gorm:"default:false" json:"-"`
}

type UserPushIn struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"required,platform"`
}

type UserSettingsIn struct {
	ReceiveNotifications bool `json:"receive_notifications"`
}
