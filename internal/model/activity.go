package model

import "time"

// Activity actions.
const (
	ActionRegister    = "register"
	ActionUpdate      = "update"
	ActionDelete      = "delete"
	ActionPhotoUpdate = "photo_update"
	ActionPhotoSweep  = "photo_sweep"
)

// Activity represents a row in the inventory_activity table.
type Activity struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
