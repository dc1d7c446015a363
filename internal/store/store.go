// Package store provides persistence for user accounts, token balances
// and lesson progress.
package store

import (
	"context"
	"errors"

	"github.com/avelichko/pyai-teacher/backend/internal/model/user"
)

var (
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already registered")

	// ErrUserNotFound is returned by mutations targeting a missing user.
	ErrUserNotFound = errors.New("user not found")

	// ErrInsufficientTokens is returned when a debit would drive the
	// balance negative. The balance is left untouched.
	ErrInsufficientTokens = errors.New("insufficient tokens")
)

// Repository defines the interface for persisting user records.
type Repository interface {
	// CreateUser inserts a new user record.
	CreateUser(ctx context.Context, u *user.User) error

	// GetUser retrieves a user by ID. Returns (nil, nil) when absent.
	GetUser(ctx context.Context, userID string) (*user.User, error)

	// GetUserByEmail retrieves a user by email. Returns (nil, nil) when absent.
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)

	// GetTokens returns the current token balance, 0 for a missing user.
	GetTokens(ctx context.Context, userID string) (int, error)

	// AdjustTokens atomically applies a signed delta to the balance.
	// A debit that would make the balance negative fails with
	// ErrInsufficientTokens and leaves the stored value unchanged.
	AdjustTokens(ctx context.Context, userID string, delta int) error

	// SetTokens overwrites the balance with an absolute value.
	SetTokens(ctx context.Context, userID string, tokens int) error

	// GetProgress returns the completed-lesson list, empty for a missing user.
	GetProgress(ctx context.Context, userID string) ([]string, error)

	// AppendCompletedLesson adds a lesson ID to the progress list.
	// Returns false without error when the lesson was already recorded.
	AppendCompletedLesson(ctx context.Context, userID, lessonID string) (bool, error)

	// SetEmailVerified marks the user's email as confirmed.
	SetEmailVerified(ctx context.Context, userID string, verified bool) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	// ListUsers returns every user record, newest first.
	ListUsers(ctx context.Context) ([]*user.User, error)

	// DeleteUser removes the user record and everything keyed to it.
	DeleteUser(ctx context.Context, userID string) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
