package models

import (
	"errors"
	"strings"

	"dressupapi/fashion"

	"github.com/lib/pq"
)

var ErrDuplicateSource = errors.New("piece is already in the closet")

// Clothing is the stored form of a classified closet item.
type Clothing struct {
	JsonModel
	ItemID    string           `gorm:"uniqueIndex" json:"item_id"`
	SourceRef string           `gorm:"uniqueIndex:idx_owner_source" json:"source_ref"`
	OwnerID   uint             `gorm:"uniqueIndex:idx_owner_source" json:"-"`
	Owner     UserAccount      `json:"-"`
	Category  fashion.Category `json:"category"`
	Styles    pq.StringArray   `gorm:"type:text[]" json:"styles"`
	ColorTags pq.StringArray   `gorm:"type:text[]" json:"color_tags"`
	Notes     *string          `json:"notes"`
	// label the item was classified from, kept for reclassification
	Label       string  `json:"-"`
	MimeType    *string `json:"-"`
	ImageStatus string  `json:"image_status"` // draft, uploaded, external
}

func ClothingFromItem(item fashion.ClassifiedItem, ownerID uint, label string) Clothing {
	return Clothing{
		ItemID:      item.ID,
		SourceRef:   item.SourceRef,
		OwnerID:     ownerID,
		Category:    item.Category,
		Styles:      pq.StringArray(fashion.StyleNames(item.Styles)),
		ColorTags:   pq.StringArray(append([]string(nil), item.ColorTags...)),
		Notes:       item.Notes,
		Label:       label,
		ImageStatus: "draft",
	}
}

// ToItem rebuilds the classified item. Unknown values degrade to the
// defaults a fresh classification would give.
func (c Clothing) ToItem() fashion.ClassifiedItem {
	category := fashion.ParseCategory(string(c.Category))
	styles := fashion.ParseStyles(c.Styles)
	if len(styles) == 0 {
		styles = fashion.CategoryFallbackStyles(category)
	}
	var colors []string
	for _, color := range c.ColorTags {
		if strings.TrimSpace(color) != "" {
			colors = append(colors, color)
		}
	}
	if len(colors) == 0 {
		colors = []string{fashion.NeutralColor}
	}
	return fashion.ClassifiedItem{
		ID:        c.ItemID,
		SourceRef: c.SourceRef,
		Category:  category,
		Styles:    styles,
		Notes:     c.Notes,
		ColorTags: colors,
	}
}

// Apply copies a reclassification result while keeping identity and source.
func (c *Clothing) Apply(item fashion.ClassifiedItem) {
	c.Category = item.Category
	c.Styles = pq.StringArray(fashion.StyleNames(item.Styles))
	c.ColorTags = pq.StringArray(append([]string(nil), item.ColorTags...))
	c.Notes = item.Notes
}

func ClosetItems(records []Clothing) []fashion.ClassifiedItem {
	items := make([]fashion.ClassifiedItem, 0, len(records))
	for _, record := range records {
		items = append(items, record.ToItem())
	}
	return items
}
