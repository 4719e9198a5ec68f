package models

import (
	"database/sql/driver"
	"regexp"

	"github.com/go-playground/validator"
)

type Subscription string

const (
	Free    Subscription = "free" // basic
	Trial   Subscription = "trial"
	Pro     Subscription = "pro"
	ProPlus Subscription = "pro_plus" // pro +
)

var subscriptionPattern = regexp.MustCompile("^(free|trial|pro|pro_plus)$")

func (l *Subscription) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*l = Subscription(v)
	case []byte:
		*l = Subscription(v)
	}
	return nil
}

func (l Subscription) Value() (driver.Value, error) {
	return string(l), nil
}

func ValidateSubscription(fl validator.FieldLevel) bool {
	return subscriptionPattern.MatchString(fl.Field().String())
}

func ValidateSubscriptionRaw(value string) bool {
	return subscriptionPattern.MatchString(value)
}
