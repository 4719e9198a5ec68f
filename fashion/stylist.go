package fashion

import (
	"math/rand"
	"sort"
	"strings"
	"time"

	"dressupapi/languageutil"
)

const (
	DefaultLookLimit = 5
	maxDescriptions  = 4
)

type StyledLook struct {
	ID         string           `json:"id"`
	Style      Style            `json:"style"`
	Pieces     []ClassifiedItem `json:"pieces"`
	Narrative  string           `json:"narrative"`
	Highlights []string         `json:"highlights"`
	Advantages []string         `json:"advantages"`
}

func (look StyledLook) PieceIDs() []string {
	ids := make([]string, 0, len(look.Pieces))
	for _, piece := range look.Pieces {
		ids = append(ids, piece.ID)
	}
	return ids
}

// LookID is the order independent identity of a piece set.
func LookID(pieces []ClassifiedItem) string {
	ids := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		ids = append(ids, piece.ID)
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

// NewRand returns a time seeded generator for user facing shuffles.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// AvailableStyles is the union of item styles, in declared style order.
func AvailableStyles(items []ClassifiedItem) []Style {
	seen := map[Style]bool{}
	for _, item := range items {
		for _, style := range item.Styles {
			seen[style] = true
		}
	}
	styles := make([]Style, 0, len(seen))
	for style := range seen {
		styles = append(styles, style)
	}
	sort.Slice(styles, func(i, j int) bool { return styles[i].index() < styles[j].index() })
	return styles
}

type wardrobe struct {
	tops, bottoms, dresses, outerwear, shoes, accessories []ClassifiedItem
}

func partition(items []ClassifiedItem) wardrobe {
	var w wardrobe
	for _, item := range items {
		switch item.Category {
		case Tops:
			w.tops = append(w.tops, item)
		case Bottoms:
			w.bottoms = append(w.bottoms, item)
		case Dresses:
			w.dresses = append(w.dresses, item)
		case Outerwear:
			w.outerwear = append(w.outerwear, item)
		case Shoes:
			w.shoes = append(w.shoes, item)
		case Accessories:
			w.accessories = append(w.accessories, item)
		}
	}
	return w
}

func pickOne(rng *rand.Rand, items []ClassifiedItem) (ClassifiedItem, bool) {
	if len(items) == 0 {
		return ClassifiedItem{}, false
	}
	return items[rng.Intn(len(items))], true
}

func (w wardrobe) finish(rng *rand.Rand, base ...ClassifiedItem) []ClassifiedItem {
	combo := append([]ClassifiedItem(nil), base...)
	if layer, ok := pickOne(rng, w.outerwear); ok {
		combo = append(combo, layer)
	}
	if accessory, ok := pickOne(rng, w.accessories); ok {
		combo = append(combo, accessory)
	}
	return combo
}

// GenerateLooks assembles up to limit outfits of the target style. All random
// draws of one call come from rng; a nil rng is replaced by NewRand. An empty
// result means the wardrobe cannot cover a full outfit.
func GenerateLooks(rng *rand.Rand, items []ClassifiedItem, target Style, profile *PersonalStyleProfile, limit int) []StyledLook {
	if limit <= 0 {
		limit = DefaultLookLimit
	}
	var styleItems []ClassifiedItem
	for _, item := range items {
		if item.HasStyle(target) {
			styleItems = append(styleItems, item)
		}
	}
	if len(styleItems) == 0 {
		return []StyledLook{}
	}
	if rng == nil {
		rng = NewRand()
	}

	w := partition(styleItems)
	var combos [][]ClassifiedItem
	for _, dress := range w.dresses {
		for _, shoe := range w.shoes {
			combos = append(combos, w.finish(rng, dress, shoe))
		}
	}
	for _, top := range w.tops {
		for _, bottom := range w.bottoms {
			for _, shoe := range w.shoes {
				combos = append(combos, w.finish(rng, top, bottom, shoe))
			}
		}
	}
	if len(combos) == 0 {
		return []StyledLook{}
	}

	seen := map[string]bool{}
	unique := combos[:0]
	for _, combo := range combos {
		id := LookID(combo)
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, combo)
	}
	rng.Shuffle(len(unique), func(i, j int) { unique[i], unique[j] = unique[j], unique[i] })
	if len(unique) > limit {
		unique = unique[:limit]
	}

	looks := make([]StyledLook, 0, len(unique))
	for _, combo := range unique {
		looks = append(looks, buildLook(LookID(combo), combo, target, profile))
	}
	return looks
}

// RebuildLook re-derives the texts for an edited piece list and keeps the
// given id. An empty id falls back to the piece based identity.
func RebuildLook(id string, pieces []ClassifiedItem, style Style, profile *PersonalStyleProfile) StyledLook {
	if id == "" {
		id = LookID(pieces)
	}
	return buildLook(id, append([]ClassifiedItem(nil), pieces...), style, profile)
}

func buildLook(id string, pieces []ClassifiedItem, style Style, profile *PersonalStyleProfile) StyledLook {
	var names []string
	for _, piece := range pieces {
		if piece.Notes != nil {
			names = append(names, *piece.Notes)
		}
	}
	if len(names) == 0 {
		for _, piece := range pieces {
			names = append(names, string(piece.Category))
		}
	}
	highlights, advantages := DescribeHighlights(pieces, profile)
	return StyledLook{
		ID:         id,
		Style:      style,
		Pieces:     pieces,
		Narrative:  Narrative(style, names),
		Highlights: highlights,
		Advantages: advantages,
	}
}

func DescribeHighlights(pieces []ClassifiedItem, profile *PersonalStyleProfile) ([]string, []string) {
	var highlights, advantages []string

	var colors []string
	for _, piece := range pieces {
		colors = append(colors, piece.ColorTags...)
	}
	if len(colors) == 0 {
		colors = []string{NeutralColor}
	}
	colors = distinct(colors)
	highlights = append(highlights, "Colors: "+strings.Join(colors[:min(3, len(colors))], " · "))

	topColor, shoeColor := "", ""
	if top, ok := firstOf(pieces, Tops, Dresses); ok && len(top.ColorTags) > 0 {
		topColor = top.ColorTags[0]
	}
	if shoe, ok := firstOf(pieces, Shoes); ok && len(shoe.ColorTags) > 0 {
		shoeColor = shoe.ColorTags[0]
	}
	if strings.TrimSpace(topColor) != "" && strings.TrimSpace(shoeColor) != "" {
		highlights = append(highlights, "Top "+languageutil.CapitalizeFirst(topColor)+" × shoes "+languageutil.CapitalizeFirst(shoeColor))
	}

	if profile != nil {
		highlights = append(highlights, "Eyes "+profile.EyeColor, "Hair "+profile.HairTone)
		advantages = append(advantages,
			"Brings out "+profile.EyeColor+" eyes",
			"Works with "+profile.HairTone+" hair",
			"Balances a "+profile.FaceShape+" face shape",
			"Consistent with the "+profile.Palette.Name+" palette",
		)
		if len(profile.Palette.Suggestions) > 0 {
			advantages = append(advantages, profile.Palette.Suggestions[0])
		}
	} else {
		advantages = append(advantages, "Versatile for many occasions")
	}
	advantages = append(advantages, "Color accent: "+colors[0])

	return cleanDescriptions(highlights), cleanDescriptions(advantages)
}

func firstOf(pieces []ClassifiedItem, categories ...Category) (ClassifiedItem, bool) {
	for _, piece := range pieces {
		for _, category := range categories {
			if piece.Category == category {
				return piece, true
			}
		}
	}
	return ClassifiedItem{}, false
}

func distinct(values []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if seen[value] {
			continue
		}
		seen[value] = true
		out = append(out, value)
	}
	return out
}

func cleanDescriptions(values []string) []string {
	out := make([]string, 0, maxDescriptions)
	seen := map[string]bool{}
	for _, value := range values {
		if strings.TrimSpace(value) == "" || seen[value] {
			continue
		}
		seen[value] = true
		out = append(out, value)
		if len(out) == maxDescriptions {
			break
		}
	}
	return out
}
