// Package models shares its name with beta/models.
package models

import "time"

// User has the same name as beta/models.User.
type User struct {
	Name string    `json:"name"`
	At   time.Time `json:"at"`
}
