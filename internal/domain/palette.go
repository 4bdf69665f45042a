package domain

import "time"

// Palette is a user-saved set of hex colors.
type Palette struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Colors    []string  `json:"colors"`
	CreatedAt time.Time `json:"createdAt"`
}
