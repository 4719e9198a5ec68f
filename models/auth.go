package models

import "time"

type JsonModel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GoogleAuthSignIn struct {
	IdToken   string `json:"idToken" validate:"required"`
	Platform  string `json:"platform" validate:"required,platform"`
	UTMSource string `json:"utm_source"`
}

type AppleAuthRequest struct {
	IdentityToken     string `json:"identity_token" validate:"required"`
	Platform          string `json:"platform" validate:"required,platform"`
	AuthorizationCode string `json:"authorization_code" validate:"required"`
	UTMSource         string `json:"utm_source"`
}

type RefreshTokenIn struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type SignInOut struct {
	Id           uint    `json:"id"`
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	New          bool    `json:"new"`
	Avatar       string  `json:"avatar"`
	Subscription *string `json:"subscription"`
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
}

type UserMeOut struct {
	Id                   uint    `json:"id"`
	Name                 string  `json:"name"`
	Email                string  `json:"email"`
	AvatarURL            string  `json:"avatar_url"`
	Subscription         *string `json:"subscription"`
	Premium              bool    `json:"premium"`
	ReceiveNotifications bool    `json:"receive_notifications"`
	ClosetCount          int64   `json:"closet_count"`
	HasColorProfile      bool    `json:"has_color_profile"`
}
