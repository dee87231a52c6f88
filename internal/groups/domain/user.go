package domain

import "time"

// User is the directory entry for a caller, learned from their bearer token.
type User struct {
	ID        string
	Username  string
	UpdatedAt time.Time
}
