package user

import "time"

// User is the per-account record mirrored in the store.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	EmailVerified    bool      `json:"emailVerified"`
	Tokens           int       `json:"tokens"`
	CompletedLessons []string  `json:"completedLessons"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
