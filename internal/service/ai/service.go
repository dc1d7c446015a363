package ai

import (
	"context"
	"log"
	"strings"

	"github.com/avelichko/pyai-teacher/backend/internal/config"
)

// Ledger is the slice of the token ledger the orchestrator needs:
// a balance check before contacting a backend, the debit applied on
// success, and the per-user lesson content cache.
type Ledger interface {
	Balance(ctx context.Context, userID string) (int, error)
	Debit(ctx context.Context, userID string, cost int) error
	SetLessonContent(userID, content string)
}

// Service turns a free-text prompt into sanitized lesson content while
// enforcing the pay-per-call token policy. The debit is part of the
// success path: receive, sanitize, debit, cache is a single transition
// owned here, so callers cannot forget it or apply it twice.
type Service struct {
	providers []Provider
	ledger    Ledger
	chatCost  int
}

// NewService builds the orchestrator from configuration. Providers are
// created for every backend with a credential, OpenAI first; having no
// credential at all is a configuration failure.
func NewService(cfg config.AIConfig, ledger Ledger, chatCost int) (*Service, error) {
	var providers []Provider

	if cfg.OpenAIKey != "" {
		p, err := NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIModel, cfg.Temperature, cfg.MaxTokens)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	if cfg.AnthropicKey != "" {
		p, err := NewAnthropicProvider(cfg.AnthropicKey, cfg.AnthropicModel, cfg.Temperature, cfg.MaxTokens)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}

	return NewServiceWithProviders(providers, ledger, chatCost)
}

// NewServiceWithProviders builds the orchestrator from pre-constructed
// providers, in fallback order.
func NewServiceWithProviders(providers []Provider, ledger Ledger, chatCost int) (*Service, error) {
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}
	return &Service{providers: providers, ledger: ledger, chatCost: chatCost}, nil
}

// ChatCost returns the per-request token price for chat/lesson prompts.
func (s *Service) ChatCost() int {
	return s.chatCost
}

// Ask validates the prompt, checks the balance, queries a backend
// (with fallback when no preference is given), sanitizes the reply,
// debits the chat cost and caches the content as the user's current
// lesson text.
func (s *Service) Ask(ctx context.Context, userID, prompt string, preferred Backend) (*Reply, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	balance, err := s.ledger.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance < s.chatCost {
		return nil, ErrInsufficientTokens
	}

	raw, source, err := s.complete(ctx, prompt, preferred)
	if err != nil {
		return nil, err
	}

	content := Sanitize(raw)

	if err := s.ledger.Debit(ctx, userID, s.chatCost); err != nil {
		// A concurrent session may have drained the balance between the
		// check and the debit; the response is discarded, not served free.
		return nil, err
	}

	s.ledger.SetLessonContent(userID, content)

	return &Reply{Content: content, Source: source}, nil
}

// complete runs the backend selection contract: a named preference is
// used exclusively; otherwise the first backend is tried and the second
// attempted exactly once as fallback.
func (s *Service) complete(ctx context.Context, prompt string, preferred Backend) (string, Backend, error) {
	if preferred != "" {
		p := s.find(preferred)
		if p == nil {
			return "", "", ErrUnknownBackend
		}
		content, err := p.Complete(ctx, prompt)
		if err != nil {
			log.Printf("[ai] %s error: %v", p.Backend(), err)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", "", ctxErr
			}
			return "", "", ErrServiceUnavailable
		}
		return content, p.Backend(), nil
	}

	for i, p := range s.providers {
		content, err := p.Complete(ctx, prompt)
		if err == nil {
			if i > 0 {
				log.Printf("[ai] fallback backend %s succeeded", p.Backend())
			}
			return content, p.Backend(), nil
		}
		log.Printf("[ai] %s error: %v", p.Backend(), err)

		// Cancellation is the caller's doing, not an upstream outage.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", "", ctxErr
		}
	}

	return "", "", ErrServiceUnavailable
}

func (s *Service) find(backend Backend) Provider {
	for _, p := range s.providers {
		if p.Backend() == backend {
			return p
		}
	}
	return nil
}
