package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// ErrInvalidMenu is returned when a menu payload cannot be converted into a
// canonical snapshot. Wrapped errors carry the offending entry.
var ErrInvalidMenu = errors.New("invalid menu")

// MenuEntry is one line of a vendor's menu snapshot.
type MenuEntry struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
	Available   bool    `json:"available"`
}

// MenuSnapshot is the ordered, canonical menu stored on an availability record.
type MenuSnapshot []MenuEntry

// OrEmpty returns s, or an empty non-nil snapshot when s is nil, so JSON
// encodes it as [] rather than null.
func (s MenuSnapshot) OrEmpty() MenuSnapshot {
	if s == nil {
		return MenuSnapshot{}
	}
	return s
}

// MenuItem is a row of the vendor's master menu. The snapshot on
// VendorAvailability is recomputed from these rows whenever one changes.
type MenuItem struct {
	ID          string    `json:"id"                    gorm:"type:char(36);primaryKey"`
	VendorID    string    `json:"vendor_id"             gorm:"type:varchar(64);not null;index:idx_vendor_menu,priority:1"`
	Name        string    `json:"name"                  gorm:"type:varchar(120);not null"`
	Price       float64   `json:"price"                 gorm:"not null;check:chk_menu_price,price >= 0"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	Image       *string   `json:"image,omitempty"       gorm:"type:varchar(512)"`
	Available   bool      `json:"available"             gorm:"not null"`
	Position    int       `json:"position"              gorm:"not null;index:idx_vendor_menu,priority:2"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for MenuItem.
func (MenuItem) TableName() string { return "menu_items" }

// SnapshotFromItems builds the canonical snapshot from master menu rows,
// ordered by position then name.
func SnapshotFromItems(items []MenuItem) MenuSnapshot {
	sorted := make([]MenuItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Position != sorted[j].Position {
			return sorted[i].Position < sorted[j].Position
		}
		return sorted[i].Name < sorted[j].Name
	})
	out := make(MenuSnapshot, 0, len(sorted))
	for _, it := range sorted {
		out = append(out, MenuEntry{
			Name:        it.Name,
			Price:       it.Price,
			Description: it.Description,
			Image:       it.Image,
			Available:   it.Available,
		})
	}
	return out
}

// rawEntry mirrors MenuEntry with optional fields so that missing values can
// be told apart from zero values during parsing.
type rawEntry struct {
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
	Image       *string  `json:"image"`
	Available   *bool    `json:"available"`
}

// legacyMenu is the {"items": [...], "prices": {...}} shape.
type legacyMenu struct {
	Items  json.RawMessage    `json:"items"`
	Prices map[string]float64 `json:"prices"`
}

// ParseMenuSnapshot converts any accepted menu payload into a canonical
// snapshot. Accepted shapes:
//   - [{"name": "...", "price": 1, "description": "...", "available": true}, ...]
//   - ["Samosa", "Pilau"]
//   - {"items": ["Samosa"] | [{...}], "prices": {"Samosa": 50}}
//
// Entries default to available when the flag is absent. An empty or null
// payload yields an empty snapshot.
func ParseMenuSnapshot(raw []byte) (MenuSnapshot, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return MenuSnapshot{}, nil
	}

	switch raw[0] {
	case '[':
		return parseEntryList(raw, nil)
	case '{':
		var lm legacyMenu
		if err := json.Unmarshal(raw, &lm); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMenu, err)
		}
		items := bytes.TrimSpace(lm.Items)
		if len(items) == 0 || bytes.Equal(items, []byte("null")) {
			return MenuSnapshot{}, nil
		}
		return parseEntryList(items, lm.Prices)
	default:
		return nil, fmt.Errorf("%w: expected a list or an object", ErrInvalidMenu)
	}
}

func parseEntryList(raw []byte, prices map[string]float64) (MenuSnapshot, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMenu, err)
	}
	out := make(MenuSnapshot, 0, len(elems))
	for i, el := range elems {
		el = bytes.TrimSpace(el)
		var re rawEntry
		if len(el) > 0 && el[0] == '"' {
			if err := json.Unmarshal(el, &re.Name); err != nil {
				return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidMenu, i, err)
			}
		} else if err := json.Unmarshal(el, &re); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidMenu, i, err)
		}

		entry, err := re.canonical(prices)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidMenu, i, err)
		}
		out = append(out, entry)
	}
	return out, nil
}

func (re rawEntry) canonical(prices map[string]float64) (MenuEntry, error) {
	name := strings.TrimSpace(re.Name)
	if name == "" {
		return MenuEntry{}, errors.New("name is required")
	}
	e := MenuEntry{Name: name, Available: true}
	switch {
	case re.Price != nil:
		e.Price = *re.Price
	case prices != nil:
		e.Price = prices[re.Name]
	}
	if math.IsNaN(e.Price) || math.IsInf(e.Price, 0) || e.Price < 0 {
		return MenuEntry{}, fmt.Errorf("price for %q must be a non-negative number", name)
	}
	if re.Description != nil {
		if d := strings.TrimSpace(*re.Description); d != "" {
			e.Description = &d
		}
	}
	if re.Image != nil {
		if img := strings.TrimSpace(*re.Image); img != "" {
			e.Image = &img
		}
	}
	if re.Available != nil {
		e.Available = *re.Available
	}
	return e, nil
}
