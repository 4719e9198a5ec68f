package models

import (
	"database/sql/driver"
	"regexp"

	"github.com/go-playground/validator"
)

type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

var platformPattern = regexp.MustCompile("^(ios|android|web)$")

func (l *Platform) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*l = Platform(v)
	case []byte:
		*l = Platform(v)
	}
	return nil
}

func (l Platform) Value() (driver.Value, error) {
	return string(l), nil
}

func ScanPlatform(value string) Platform {
	return Platform(value)
}

func ValidatePlatform(fl validator.FieldLevel) bool {
	return platformPattern.MatchString(fl.Field().String())
}

func ValidatePlatformRaw(value string) bool {
	return platformPattern.MatchString(value)
}
