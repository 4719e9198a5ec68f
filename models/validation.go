package models

import (
	"dressupapi/fashion"

	"github.com/go-playground/validator"
)

func ValidateStyle(fl validator.FieldLevel) bool {
	_, ok := fashion.ParseStyle(fl.Field().String())
	return ok
}

func ValidateCategory(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return fashion.ParseCategory(value) != fashion.Unknown || value == string(fashion.Unknown)
}

func ValidateShoppingScope(fl validator.FieldLevel) bool {
	switch fashion.ShoppingScope(fl.Field().String()) {
	case fashion.ScopeItem, fashion.ScopeOutfit:
		return true
	}
	return false
}
