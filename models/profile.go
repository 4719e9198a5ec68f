package models

import (
	"dressupapi/fashion"

	"github.com/lib/pq"
)

type StoredProfile struct {
	JsonModel
	OwnerID            uint           `gorm:"uniqueIndex" json:"-"`
	Owner              UserAccount    `json:"-"`
	SelfieRef          string         `json:"selfie_ref"`
	PaletteName        string         `json:"palette_name"`
	PaletteDescription string         `gorm:"type:text" json:"palette_description"`
	PaletteColors      pq.StringArray `gorm:"type:text[]" json:"palette_colors"`
	PaletteSuggestions pq.StringArray `gorm:"type:text[]" json:"palette_suggestions"`
	EyeColor           string         `json:"eye_color"`
	HairTone           string         `json:"hair_tone"`
	SkinTone           string         `json:"skin_tone"`
	FaceShape          string         `json:"face_shape"`
}

func StoredProfileFrom(profile fashion.PersonalStyleProfile, ownerID uint) StoredProfile {
	return StoredProfile{
		OwnerID:            ownerID,
		SelfieRef:          profile.SelfieRef,
		PaletteName:        profile.Palette.Name,
		PaletteDescription: profile.Palette.Description,
		PaletteColors:      pq.StringArray(append([]string(nil), profile.Palette.Colors...)),
		PaletteSuggestions: pq.StringArray(append([]string(nil), profile.Palette.Suggestions...)),
		EyeColor:           profile.EyeColor,
		HairTone:           profile.HairTone,
		SkinTone:           profile.SkinTone,
		FaceShape:          profile.FaceShape,
	}
}

// Decode returns nil when the stored palette is not one we know.
func (p StoredProfile) Decode() *fashion.PersonalStyleProfile {
	palette, ok := fashion.PaletteByName(p.PaletteName)
	if !ok {
		return nil
	}
	if p.PaletteDescription != "" {
		palette.Description = p.PaletteDescription
	}
	if len(p.PaletteColors) > 0 {
		palette.Colors = append([]string(nil), p.PaletteColors...)
	}
	if len(p.PaletteSuggestions) > 0 {
		palette.Suggestions = append([]string(nil), p.PaletteSuggestions...)
	}
	return &fashion.PersonalStyleProfile{
		SelfieRef: p.SelfieRef,
		Palette:   palette,
		EyeColor:  p.EyeColor,
		HairTone:  p.HairTone,
		SkinTone:  p.SkinTone,
		FaceShape: p.FaceShape,
	}
}
