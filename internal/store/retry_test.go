package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avelichko/pyai-teacher/backend/internal/model/user"
)

// flakyRepo fails a fixed number of times before succeeding.
type flakyRepo struct {
	Repository
	failures int
	calls    int
	err      error
}

func (f *flakyRepo) SetTokens(ctx context.Context, userID string, tokens int) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

func (f *flakyRepo) GetTokens(ctx context.Context, userID string) (int, error) {
	f.calls++
	if f.calls <= f.failures {
		return 0, f.err
	}
	return 42, nil
}

func (f *flakyRepo) CreateUser(ctx context.Context, u *user.User) error {
	f.calls++
	return f.err
}

func testPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Pause: time.Millisecond}
}

func TestRetrySucceedsOnThirdAttempt(t *testing.T) {
	repo := &flakyRepo{failures: 2, err: errors.New("transient")}
	r := WithRetry(repo, testPolicy())

	if err := r.SetTokens(context.Background(), "u-1", 10); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if repo.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", repo.calls)
	}
}

func TestRetryExhaustedSurfacesError(t *testing.T) {
	transient := errors.New("transient")
	repo := &flakyRepo{failures: 10, err: transient}
	r := WithRetry(repo, testPolicy())

	err := r.SetTokens(context.Background(), "u-1", 10)
	if !errors.Is(err, transient) {
		t.Fatalf("expected surfaced transient error, got %v", err)
	}
	if repo.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", repo.calls)
	}
}

func TestRetryReadValuePreserved(t *testing.T) {
	repo := &flakyRepo{failures: 1, err: errors.New("transient")}
	r := WithRetry(repo, testPolicy())

	tokens, err := r.GetTokens(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens != 42 {
		t.Fatalf("expected 42, got %d", tokens)
	}
}

func TestRetrySkipsDomainErrors(t *testing.T) {
	repo := &flakyRepo{failures: 10, err: ErrEmailTaken}
	r := WithRetry(repo, testPolicy())

	err := r.CreateUser(context.Background(), &user.User{})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if repo.calls != 1 {
		t.Fatalf("domain error must not be retried, got %d attempts", repo.calls)
	}
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	repo := &flakyRepo{failures: 10, err: errors.New("transient")}
	r := WithRetry(repo, RetryPolicy{MaxAttempts: 3, Pause: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.SetTokens(ctx, "u-1", 10)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
