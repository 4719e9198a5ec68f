package fashion

import (
	"github.com/cespare/xxhash/v2"
)

type PersonalPalette struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Colors      []string `json:"colors"`
	Suggestions []string `json:"suggestions"`
}

type PersonalStyleProfile struct {
	SelfieRef string          `json:"selfie_ref"`
	Palette   PersonalPalette `json:"palette"`
	EyeColor  string          `json:"eye_color"`
	HairTone  string          `json:"hair_tone"`
	SkinTone  string          `json:"skin_tone"`
	FaceShape string          `json:"face_shape"`
}

// KeywordSummary is the short chip list shown next to the selfie.
func (p PersonalStyleProfile) KeywordSummary() []string {
	return []string{
		"Eyes " + p.EyeColor,
		"Skin " + p.SkinTone,
		"Palette " + p.Palette.Name,
	}
}

var palettes = []PersonalPalette{
	{
		Name:        "Cool summer",
		Description: "Soft cool shades lift a light complexion and pastel accessories.",
		Colors:      []string{"#F6A7C1", "#B79EFF", "#A6D1FF", "#8DE8D9"},
		Suggestions: []string{
			"Reach for silver jewellery",
			"Pair blues with lavender",
			"Go for cool pinks in your make-up",
		},
	},
	{
		Name:        "Warm autumn",
		Description: "Rich, deep colours bring out golden highlights and darker hair.",
		Colors:      []string{"#E6B980", "#CD6B3A", "#9A4D2E", "#5E3D31"},
		Suggestions: []string{
			"Wear caramel coats",
			"Add olive green",
			"Finish the look with gold jewellery",
		},
	},
	{
		Name:        "Soft spring",
		Description: "Pastels with a warm base keep the look fresh and light.",
		Colors:      []string{"#F9D5E5", "#E2F0CB", "#B3D6FF", "#FFF5BA"},
		Suggestions: []string{
			"Build a total pastel look",
			"Choose light denim",
			"Mix beige with powder pink",
		},
	},
	{
		Name:        "Winter contrast",
		Description: "Strong contrasts, cool blues and deep black create an elegant effect.",
		Colors:      []string{"#0E1D4A", "#6D83F2", "#EAF0FF", "#0A0A0A"},
		Suggestions: []string{
			"Combine black with cobalt",
			"Add silver accents",
			"Try high-contrast make-up",
		},
	},
}

var (
	eyeColors  = []string{"hazel", "green", "blue", "grey", "amber"}
	hairTones  = []string{"cool blonde", "golden blonde", "light brown", "chocolate brown", "glossy black", "copper blonde"}
	skinTones  = []string{"fair porcelain", "neutral beige", "olive", "deep brown", "cool beige"}
	faceShapes = []string{"oval", "heart", "round", "diamond", "square"}
)

func (p PersonalPalette) clone() PersonalPalette {
	p.Colors = append([]string(nil), p.Colors...)
	p.Suggestions = append([]string(nil), p.Suggestions...)
	return p
}

func Palettes() []PersonalPalette {
	return append([]PersonalPalette(nil), palettes...)
}

func PaletteByName(name string) (PersonalPalette, bool) {
	for _, palette := range palettes {
		if palette.Name == name {
			return palette.clone(), true
		}
	}
	return PersonalPalette{}, false
}

// AnalyzeSelfie derives a profile from the reference alone, the image is never read.
func AnalyzeSelfie(selfieRef string) PersonalStyleProfile {
	hash := xxhash.Sum64String(selfieRef)
	return PersonalStyleProfile{
		SelfieRef: selfieRef,
		Palette:   palettes[hash%uint64(len(palettes))].clone(),
		EyeColor:  eyeColors[hash%uint64(len(eyeColors))],
		HairTone:  hairTones[(hash/3)%uint64(len(hairTones))],
		SkinTone:  skinTones[(hash/5)%uint64(len(skinTones))],
		FaceShape: faceShapes[(hash/7)%uint64(len(faceShapes))],
	}
}
