package models

import "time"

// Site owns forms. Its site token scopes the admin API to it.
type Site struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain"`
	CreatedAt time.Time `json:"created_at"`
}
