// Package models shares its name with alpha/models.
package models

// User has the same name as alpha/models.User.
type User struct {
	Email string `json:"email"`
}
