package fashion

import (
	"fmt"
	"strings"

	"dressupapi/languageutil"
)

type ShoppingScope string

const (
	ScopeItem   ShoppingScope = "item"
	ScopeOutfit ShoppingScope = "outfit"
)

const maxPairings = 5

type ShoppingReview struct {
	Title       string   `json:"title"`
	Positives   []string `json:"positives"`
	Negatives   []string `json:"negatives"`
	Pairings    []string `json:"pairings"`
	PreviewRefs []string `json:"preview_refs"`
}

// EvaluatePurchase reviews candidate pieces against the closet. It returns nil
// when there is nothing to review.
func EvaluatePurchase(candidates []ClassifiedItem, closet []ClassifiedItem, scope ShoppingScope) *ShoppingReview {
	if len(candidates) == 0 {
		return nil
	}

	var styles []Style
	var colors []string
	styleSet := map[Style]bool{}
	colorSet := map[string]bool{}
	categories := map[Category]bool{}
	for _, candidate := range candidates {
		for _, style := range candidate.Styles {
			if !styleSet[style] {
				styleSet[style] = true
				styles = append(styles, style)
			}
		}
		for _, color := range candidate.ColorTags {
			if !colorSet[color] {
				colorSet[color] = true
				colors = append(colors, color)
			}
		}
		categories[candidate.Category] = true
	}

	var styleTitles []string
	for _, style := range styles {
		styleTitles = append(styleTitles, style.Title())
	}

	var positives, negatives, pairings []string
	if len(styleTitles) > 0 {
		positives = append(positives, "Style: "+strings.Join(styleTitles, " · "))
	}
	if len(colors) > 0 {
		positives = append(positives, "Colors: "+strings.Join(colors, " · "))
	}
	if scope == ScopeOutfit {
		positives = append(positives, fmt.Sprintf("Outfit ready: %d pieces", len(candidates)))
	}

	if len(colors) <= 1 {
		negatives = append(negatives, "Monotone palette, add a contrasting accent")
	}
	if scope == ScopeOutfit {
		if !categories[Tops] && !categories[Dresses] {
			negatives = append(negatives, missingPiece(Tops))
		}
		if !categories[Bottoms] && !categories[Dresses] {
			negatives = append(negatives, missingPiece(Bottoms))
		}
		if !categories[Shoes] {
			negatives = append(negatives, missingPiece(Shoes))
		}
	}

	seen := map[string]bool{}
	for _, item := range closet {
		if len(pairings) == maxPairings {
			break
		}
		if seen[item.ID] || !sharesStyleOrColor(item, styleSet, colorSet) {
			continue
		}
		seen[item.ID] = true
		pairings = append(pairings, fmt.Sprintf("Pairs with %s (%s)", item.DisplayName(), item.Category.Label()))
	}
	if len(pairings) == 0 {
		negatives = append(negatives, "Nothing in your closet matches yet")
		pairings = append(pairings, "No pairings in your closet yet")
	}

	previews := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		previews = append(previews, candidate.SourceRef)
	}

	return &ShoppingReview{
		Title:       reviewTitle(candidates[0], styleTitles, scope),
		Positives:   distinct(positives),
		Negatives:   distinct(negatives),
		Pairings:    distinct(pairings),
		PreviewRefs: previews,
	}
}

func reviewTitle(primary ClassifiedItem, styleTitles []string, scope ShoppingScope) string {
	if scope == ScopeOutfit {
		name := "Outfit"
		if len(styleTitles) > 0 {
			name = styleTitles[0]
		}
		return "Outfit review: " + name
	}
	label := primary.Category.Label()
	if primary.Notes != nil && strings.TrimSpace(*primary.Notes) != "" {
		label = *primary.Notes
	}
	return "Review: " + label
}

func missingPiece(category Category) string {
	return "Missing piece: " + languageutil.LowerFirst(category.Label())
}

func sharesStyleOrColor(item ClassifiedItem, styles map[Style]bool, colors map[string]bool) bool {
	for _, style := range item.Styles {
		if styles[style] {
			return true
		}
	}
	for _, color := range item.ColorTags {
		if colors[color] {
			return true
		}
	}
	return false
}
