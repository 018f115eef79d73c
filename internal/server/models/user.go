// Package models defines server-side data models persisted in the database.
package models

import "time"

// DefaultStatus is assigned to every new user.
const DefaultStatus = "I am new!"

// User is an author. The password is only ever held as a bcrypt hash.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
