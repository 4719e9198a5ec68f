package models

import (
	"dressupapi/fashion"
	"dressupapi/suitcase"
)

type ClosetItemIn struct {
	FileName string  `json:"file_name" validate:"required,max=1000"`
	MimeType *string `json:"mime_type" validate:"omitempty,max=100"`
	// link or device uri of a photo kept outside our storage
	SourceRef *string `json:"source_ref" validate:"omitempty,max=2000"`
}

type ClosetItemUploadOut struct {
	Item      fashion.ClassifiedItem `json:"item"`
	UploadUrl string                 `json:"upload_url"`
}

type ClosetItemOut struct {
	fashion.ClassifiedItem
	ImageUrl string `json:"image_url"`
}

type ClosetSectionOut struct {
	Category fashion.Category `json:"category"`
	Label    string           `json:"label"`
	Items    []ClosetItemOut  `json:"items"`
}

type GenerateLooksIn struct {
	Style string `json:"style" validate:"required,style"`
	Limit int    `json:"limit" validate:"omitempty,min=1,max=20"`
	Seed  *int64 `json:"seed"`
}

type LookIn struct {
	ID       string   `json:"id"`
	Style    string   `json:"style" validate:"required,style"`
	PieceIDs []string `json:"piece_ids" validate:"required,min=2,max=5,unique"`
}

type SaveLooksIn struct {
	Looks []LookIn `json:"looks" validate:"required,min=1,dive"`
}

type UpdateLookIn struct {
	PieceIDs []string `json:"piece_ids" validate:"required,min=2,max=5,unique"`
}

type CalendarIn struct {
	Date   string `json:"date" validate:"required"`
	LookID string `json:"look_id" validate:"required"`
}

type SelfieIn struct {
	FileName string `json:"file_name" validate:"required,max=1000"`
}

type ColorProfileOut struct {
	Profile   *fashion.PersonalStyleProfile `json:"profile"`
	Keywords  []string                      `json:"keywords"`
	UploadUrl string                        `json:"upload_url,omitempty"`
}

type ActivityIn struct {
	Name       string   `json:"name" validate:"required,max=100"`
	StyleHints []string `json:"style_hints" validate:"dive,style"`
}

type TravelPlanIn struct {
	Location   suitcase.GeoLocation `json:"location"`
	StartDate  string               `json:"start_date" validate:"required"`
	EndDate    string               `json:"end_date" validate:"required"`
	Activities []ActivityIn         `json:"activities" validate:"max=10,dive"`
}

type ShoppingReviewIn struct {
	FileNames []string `json:"file_names" validate:"required,min=1,max=10"`
	Scope     string   `json:"scope" validate:"required,scope"`
}
