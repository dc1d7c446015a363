// Package ledger is the single source of truth for a user's token
// balance, lesson progress and current lesson content.
package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/avelichko/pyai-teacher/backend/internal/config"
	"github.com/avelichko/pyai-teacher/backend/internal/store"
)

// Service mediates every balance and progress mutation. Balances live
// in the store and are adjusted atomically there; the lesson content
// cache is per-user in-memory state that does not survive restarts.
type Service struct {
	repo  store.Repository
	costs config.CostsConfig

	mu      sync.RWMutex
	content map[string]string
}

// NewService creates the ledger over the given repository.
func NewService(repo store.Repository, costs config.CostsConfig) *Service {
	return &Service{
		repo:    repo,
		costs:   costs,
		content: make(map[string]string),
	}
}

// Costs returns the configured per-operation token prices.
func (s *Service) Costs() config.CostsConfig {
	return s.costs
}

// Balance returns the user's current token balance from the store.
func (s *Service) Balance(ctx context.Context, userID string) (int, error) {
	return s.repo.GetTokens(ctx, userID)
}

// Debit removes cost tokens from the balance. Fails with
// store.ErrInsufficientTokens when the balance cannot cover it;
// the stored value is untouched in that case.
func (s *Service) Debit(ctx context.Context, userID string, cost int) error {
	if cost < 0 {
		return fmt.Errorf("debit cost must not be negative: %d", cost)
	}
	return s.repo.AdjustTokens(ctx, userID, -cost)
}

// Credit adds tokens to the balance (purchases, refunds).
func (s *Service) Credit(ctx context.Context, userID string, amount int) error {
	if amount < 0 {
		return fmt.Errorf("credit amount must not be negative: %d", amount)
	}
	return s.repo.AdjustTokens(ctx, userID, amount)
}

// SetBalance overwrites the balance with an absolute value. Reserved
// for administrative correction; normal flows go through Debit/Credit.
func (s *Service) SetBalance(ctx context.Context, userID string, tokens int) error {
	if tokens < 0 {
		return fmt.Errorf("balance must not be negative: %d", tokens)
	}
	return s.repo.SetTokens(ctx, userID, tokens)
}

// MarkLessonComplete appends the lesson to the user's progress and
// clears the cached lesson content. Returns false when the lesson was
// already completed: progress has set semantics.
func (s *Service) MarkLessonComplete(ctx context.Context, userID, lessonID string) (bool, error) {
	appended, err := s.repo.AppendCompletedLesson(ctx, userID, lessonID)
	if err != nil {
		return false, err
	}
	s.ClearLessonContent(userID)
	return appended, nil
}

// Progress returns the user's completed-lesson list.
func (s *Service) Progress(ctx context.Context, userID string) ([]string, error) {
	return s.repo.GetProgress(ctx, userID)
}

// LessonContent returns the most recently generated lesson text for
// the user, or "" when none is cached.
func (s *Service) LessonContent(userID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content[userID]
}

// SetLessonContent overwrites the user's cached lesson text.
func (s *Service) SetLessonContent(userID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content[userID] = content
}

// ClearLessonContent drops the user's cached lesson text.
func (s *Service) ClearLessonContent(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.content, userID)
}

// ResetSession drops all in-memory state held for the user. Called on
// sign-out; durable balance and progress stay in the store.
func (s *Service) ResetSession(userID string) {
	s.ClearLessonContent(userID)
}
