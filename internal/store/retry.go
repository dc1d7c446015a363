package store

import (
	"context"
	"errors"
	"time"

	"github.com/avelichko/pyai-teacher/backend/internal/model/user"
)

// RetryPolicy bounds how persistence operations are retried on
// transient failure.
type RetryPolicy struct {
	MaxAttempts int
	Pause       time.Duration
}

// DefaultRetryPolicy matches the portal's persistence contract:
// up to 3 attempts with a fixed 1-second pause between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Pause: time.Second}
}

// RetryingRepository decorates a Repository with bounded retry.
// The final error is always surfaced to the caller; exhausted retries
// are never silently absorbed.
type RetryingRepository struct {
	inner  Repository
	policy RetryPolicy
}

// WithRetry wraps a Repository with the given retry policy.
func WithRetry(inner Repository, policy RetryPolicy) *RetryingRepository {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &RetryingRepository{inner: inner, policy: policy}
}

// retry runs op up to MaxAttempts times. Domain errors and context
// cancellation abort immediately: retrying them cannot succeed.
func (r *RetryingRepository) retry(ctx context.Context, op func() error) error {
	var lastErr error

	for attempt := 0; attempt < r.policy.MaxAttempts; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) {
			return err
		}

		if attempt == r.policy.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.policy.Pause):
		}
	}

	return lastErr
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if isTransient(err) {
		return true
	}
	switch {
	case errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrInsufficientTokens):
		return false
	}
	return true
}

func (r *RetryingRepository) CreateUser(ctx context.Context, u *user.User) error {
	return r.retry(ctx, func() error { return r.inner.CreateUser(ctx, u) })
}

func (r *RetryingRepository) GetUser(ctx context.Context, userID string) (*user.User, error) {
	var result *user.User
	err := r.retry(ctx, func() error {
		var err error
		result, err = r.inner.GetUser(ctx, userID)
		return err
	})
	return result, err
}

func (r *RetryingRepository) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	var result *user.User
	err := r.retry(ctx, func() error {
		var err error
		result, err = r.inner.GetUserByEmail(ctx, email)
		return err
	})
	return result, err
}

func (r *RetryingRepository) GetTokens(ctx context.Context, userID string) (int, error) {
	var tokens int
	err := r.retry(ctx, func() error {
		var err error
		tokens, err = r.inner.GetTokens(ctx, userID)
		return err
	})
	return tokens, err
}

func (r *RetryingRepository) AdjustTokens(ctx context.Context, userID string, delta int) error {
	return r.retry(ctx, func() error { return r.inner.AdjustTokens(ctx, userID, delta) })
}

func (r *RetryingRepository) SetTokens(ctx context.Context, userID string, tokens int) error {
	return r.retry(ctx, func() error { return r.inner.SetTokens(ctx, userID, tokens) })
}

func (r *RetryingRepository) GetProgress(ctx context.Context, userID string) ([]string, error) {
	var lessons []string
	err := r.retry(ctx, func() error {
		var err error
		lessons, err = r.inner.GetProgress(ctx, userID)
		return err
	})
	return lessons, err
}

func (r *RetryingRepository) AppendCompletedLesson(ctx context.Context, userID, lessonID string) (bool, error) {
	var appended bool
	err := r.retry(ctx, func() error {
		var err error
		appended, err = r.inner.AppendCompletedLesson(ctx, userID, lessonID)
		return err
	})
	return appended, err
}

func (r *RetryingRepository) SetEmailVerified(ctx context.Context, userID string, verified bool) error {
	return r.retry(ctx, func() error { return r.inner.SetEmailVerified(ctx, userID, verified) })
}

func (r *RetryingRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return r.retry(ctx, func() error { return r.inner.UpdatePassword(ctx, userID, passwordHash) })
}

func (r *RetryingRepository) ListUsers(ctx context.Context) ([]*user.User, error) {
	var users []*user.User
	err := r.retry(ctx, func() error {
		var err error
		users, err = r.inner.ListUsers(ctx)
		return err
	})
	return users, err
}

func (r *RetryingRepository) DeleteUser(ctx context.Context, userID string) error {
	return r.retry(ctx, func() error { return r.inner.DeleteUser(ctx, userID) })
}

func (r *RetryingRepository) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}

func (r *RetryingRepository) Close() error {
	return r.inner.Close()
}
