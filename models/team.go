package models

import "time"

// Team is a managed club. Bot teams are system-provisioned filler used to
// pad short tournament fields and are never user-controlled.
type Team struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Division  string    `json:"division" db:"division"`
	OwnerID   *int      `json:"owner_id,omitempty" db:"owner_id"`
	IsBot     bool      `json:"is_bot" db:"is_bot"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	CrestKey  *string   `json:"-" db:"crest_key"`
	CrestURL  *string   `json:"crest_url,omitempty" db:"-"`
}
