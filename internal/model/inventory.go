package model

import (
	"fmt"
	"strings"
)

// Item represents a single inventory record as persisted in inventory.json.
type Item struct {
	ID             int64  `json:"id"`
	InventoryName  string `json:"inventory_name"`
	Description    string `json:"description"`
	PhotoReference string `json:"photo_reference"`
}

// ItemSummary is the photo-less view of an item returned by search.
type ItemSummary struct {
	ID            int64  `json:"id"`
	InventoryName string `json:"inventory_name"`
	Description   string `json:"description"`
}

// ItemPatch carries a partial update. Empty fields are left untouched.
type ItemPatch struct {
	InventoryName string `json:"inventory_name"`
	Description   string `json:"description"`
}

// PhotoReferenceFor returns the URL path a client uses to fetch the photo of item id.
func PhotoReferenceFor(id int64) string {
	return fmt.Sprintf("/inventory/%d/photo", id)
}

// Summary strips the photo reference.
func (i *Item) Summary() ItemSummary {
	return ItemSummary{
		ID:            i.ID,
		InventoryName: i.InventoryName,
		Description:   i.Description,
	}
}

// Apply copies the non-blank fields of p onto the item. Whitespace-only
// values count as blank. It reports whether anything changed.
func (p ItemPatch) Apply(item *Item) bool {
	changed := false
	if strings.TrimSpace(p.InventoryName) != "" && p.InventoryName != item.InventoryName {
		item.InventoryName = p.InventoryName
		changed = true
	}
	if strings.TrimSpace(p.Description) != "" && p.Description != item.Description {
		item.Description = p.Description
		changed = true
	}
	return changed
}
