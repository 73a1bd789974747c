package domain

import "time"

// User is the shared account store seen read-only. Submissions and payments
// reference users by ID; no cascade follows a user row here.
type User struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
}
