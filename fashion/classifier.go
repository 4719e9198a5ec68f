package fashion

import (
	"net/url"
	"path"
	"strings"

	"dressupapi/languageutil"

	"github.com/google/uuid"
)

type ClassifiedItem struct {
	ID        string   `json:"id"`
	SourceRef string   `json:"source_ref"`
	Category  Category `json:"category"`
	Styles    []Style  `json:"styles"`
	Notes     *string  `json:"notes"`
	ColorTags []string `json:"color_tags"`
}

// DisplayName is the prettified note or, without one, the lowercased category label.
func (item ClassifiedItem) DisplayName() string {
	if item.Notes != nil && strings.TrimSpace(*item.Notes) != "" {
		return *item.Notes
	}
	return languageutil.Lower(item.Category.Label())
}

func (item ClassifiedItem) HasStyle(style Style) bool {
	for _, s := range item.Styles {
		if s == style {
			return true
		}
	}
	return false
}

// WithSource swaps the underlying piece and keeps the item identity.
func (item ClassifiedItem) WithSource(sourceRef string) ClassifiedItem {
	item.SourceRef = sourceRef
	item.Styles = append([]Style(nil), item.Styles...)
	item.ColorTags = append([]string(nil), item.ColorTags...)
	return item
}

// LabelResolver extracts a human readable label from a source reference.
type LabelResolver func(sourceRef string) (string, error)

func LastPathSegment(sourceRef string) (string, error) {
	u, err := url.Parse(sourceRef)
	if err != nil {
		idx := strings.LastIndex(sourceRef, "/")
		return sourceRef[idx+1:], nil
	}
	p := u.Path
	if p == "" {
		p = u.Opaque
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "", nil
	}
	return path.Base(p), nil
}

func MimeTypeFallback(mimeType string) LabelResolver {
	return func(string) (string, error) {
		return mimeType, nil
	}
}

// ChainResolvers returns the first non blank label, errors only skip a resolver.
func ChainResolvers(resolvers ...LabelResolver) LabelResolver {
	return func(sourceRef string) (string, error) {
		for _, resolve := range resolvers {
			if resolve == nil {
				continue
			}
			label, err := resolve(sourceRef)
			if err == nil && strings.TrimSpace(label) != "" {
				return label, nil
			}
		}
		return "", nil
	}
}

// Classify never fails: a resolver error degrades to an empty label.
func Classify(sourceRef string, resolver LabelResolver) ClassifiedItem {
	if resolver == nil {
		resolver = LastPathSegment
	}
	label, err := resolver(sourceRef)
	if err != nil {
		label = ""
	}
	return ClassifyLabel(sourceRef, label)
}

func ClassifyLabel(sourceRef string, label string) ClassifiedItem {
	category := DetectCategory(label)
	item := ClassifiedItem{
		ID:        uuid.NewString(),
		SourceRef: sourceRef,
		Category:  category,
		Styles:    DetectStyles(label, category),
		ColorTags: DetectColorTags(label),
	}
	if pretty := Prettify(label); pretty != "" {
		item.Notes = &pretty
	}
	return item
}

// Prettify turns "dir/blue_koszula-lniana.jpg" into "Blue koszula lniana".
func Prettify(label string) string {
	name := label
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[:idx]
	}
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return languageutil.CapitalizeFirst(strings.TrimSpace(name))
}
