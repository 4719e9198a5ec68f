package models

import (
	"dressupapi/fashion"

	"github.com/lib/pq"
)

type StoredLook struct {
	JsonModel
	LookID     string         `gorm:"uniqueIndex:idx_owner_look" json:"look_id"`
	OwnerID    uint           `gorm:"uniqueIndex:idx_owner_look" json:"-"`
	Owner      UserAccount    `json:"-"`
	Style      string         `json:"style"`
	PieceIDs   pq.StringArray `gorm:"type:text[]" json:"piece_ids"`
	Narrative  string         `gorm:"type:text" json:"narrative"`
	Highlights pq.StringArray `gorm:"type:text[]" json:"highlights"`
	Advantages pq.StringArray `gorm:"type:text[]" json:"advantages"`
}

func StoredLookFrom(look fashion.StyledLook, ownerID uint) StoredLook {
	return StoredLook{
		LookID:     look.ID,
		OwnerID:    ownerID,
		Style:      string(look.Style),
		PieceIDs:   pq.StringArray(look.PieceIDs()),
		Narrative:  look.Narrative,
		Highlights: pq.StringArray(append([]string(nil), look.Highlights...)),
		Advantages: pq.StringArray(append([]string(nil), look.Advantages...)),
	}
}

// DecodeLooks rebuilds saved looks against the current closet. A record whose
// style is unknown or whose pieces are not all in the closet is dropped.
func DecodeLooks(records []StoredLook, closet []fashion.ClassifiedItem) []fashion.StyledLook {
	byID := make(map[string]fashion.ClassifiedItem, len(closet))
	for _, item := range closet {
		byID[item.ID] = item
	}

	looks := make([]fashion.StyledLook, 0, len(records))
	for _, record := range records {
		style, ok := fashion.ParseStyle(record.Style)
		if !ok || len(record.PieceIDs) == 0 {
			continue
		}
		pieces := make([]fashion.ClassifiedItem, 0, len(record.PieceIDs))
		for _, id := range record.PieceIDs {
			item, found := byID[id]
			if !found {
				break
			}
			pieces = append(pieces, item)
		}
		if len(pieces) != len(record.PieceIDs) {
			continue
		}
		looks = append(looks, fashion.StyledLook{
			ID:         record.LookID,
			Style:      style,
			Pieces:     pieces,
			Narrative:  record.Narrative,
			Highlights: nonNil(record.Highlights),
			Advantages: nonNil(record.Advantages),
		})
	}
	return looks
}

func nonNil(values []string) []string {
	return append([]string{}, values...)
}

type CalendarEntry struct {
	JsonModel
	OwnerID uint        `gorm:"uniqueIndex:idx_owner_date" json:"-"`
	Owner   UserAccount `json:"-"`
	// "2006-01-02"
	Date   string `gorm:"uniqueIndex:idx_owner_date" json:"date"`
	LookID string `json:"look_id"`
}

// PruneCalendar splits entries into those pointing at an existing look and
// the stale ones.
func PruneCalendar(entries []CalendarEntry, looks []fashion.StyledLook) (kept, stale []CalendarEntry) {
	known := make(map[string]bool, len(looks))
	for _, look := range looks {
		known[look.ID] = true
	}
	for _, entry := range entries {
		if known[entry.LookID] {
			kept = append(kept, entry)
		} else {
			stale = append(stale, entry)
		}
	}
	return kept, stale
}

func CalendarMap(entries []CalendarEntry) map[string]string {
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		out[entry.Date] = entry.LookID
	}
	return out
}
