// Package payment integrates the hosted payment widget: a token
// package catalog for the pricing page and verification of payment
// notifications that credit purchased tokens.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"log"
	"sync"

	"github.com/avelichko/pyai-teacher/backend/internal/config"
)

var (
	// ErrBadSignature is returned when a notification's HMAC does not
	// match the API secret.
	ErrBadSignature = errors.New("invalid notification signature")

	// ErrUnknownPackage is returned when the paid amount matches no
	// catalog entry.
	ErrUnknownPackage = errors.New("unknown token package")
)

// Package is one purchasable token bundle shown on the pricing page.
type Package struct {
	ID          string  `json:"id"`
	Tokens      int     `json:"tokens"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Description string  `json:"description"`
}

// Notification is the payment-provider callback payload. Status
// carries the provider outcome; Success disambiguates the "Completed"
// callbacks that still carry a failure flag.
type Notification struct {
	TransactionID string  `json:"transactionId"`
	AccountID     string  `json:"accountId"`
	Email         string  `json:"email"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
	Success       bool    `json:"success"`
}

// Ledger is the slice of the token ledger the payment flow needs.
type Ledger interface {
	Credit(ctx context.Context, userID string, amount int) error
}

// Service validates payment notifications and credits purchases.
type Service struct {
	cfg      config.PaymentConfig
	ledger   Ledger
	packages []Package

	mu        sync.Mutex
	processed map[string]bool
}

// NewService creates the payment service with the standard catalog.
func NewService(cfg config.PaymentConfig, ledger Ledger) *Service {
	return &Service{
		cfg:    cfg,
		ledger: ledger,
		packages: []Package{
			{ID: "starter", Tokens: 100, Amount: 3250, Currency: cfg.Currency, Description: "100 токенов"},
			{ID: "standard", Tokens: 300, Amount: 5500, Currency: cfg.Currency, Description: "300 токенов"},
			{ID: "pro", Tokens: 1000, Amount: 12250, Currency: cfg.Currency, Description: "1000 токенов"},
		},
		processed: make(map[string]bool),
	}
}

// PublicID returns the widget public identifier for the frontend.
func (s *Service) PublicID() string {
	return s.cfg.PublicID
}

// Packages returns the purchasable token bundles.
func (s *Service) Packages() []Package {
	return append([]Package(nil), s.packages...)
}

// VerifySignature checks the HMAC-SHA256 of the raw notification body
// against the provider-supplied base64 digest.
func (s *Service) VerifySignature(body []byte, signature string) error {
	mac := hmac.New(sha256.New, []byte(s.cfg.APISecret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrBadSignature
	}
	return nil
}

// HandleNotification processes a verified provider callback. Completed
// payments credit the matching package exactly once per transaction;
// failed payments change nothing. A "Completed" status with a false
// success flag is treated as failure.
func (s *Service) HandleNotification(ctx context.Context, n Notification) (int, error) {
	if n.Status != "Completed" || !n.Success {
		log.Printf("[payment] transaction %s not completed (status=%s success=%t)",
			n.TransactionID, n.Status, n.Success)
		return 0, nil
	}

	pkg, ok := s.findPackage(n.Amount)
	if !ok {
		return 0, ErrUnknownPackage
	}

	s.mu.Lock()
	if s.processed[n.TransactionID] {
		s.mu.Unlock()
		log.Printf("[payment] transaction %s already credited", n.TransactionID)
		return 0, nil
	}
	s.processed[n.TransactionID] = true
	s.mu.Unlock()

	if err := s.ledger.Credit(ctx, n.AccountID, pkg.Tokens); err != nil {
		// Allow the provider to redeliver: the credit did not land.
		s.mu.Lock()
		delete(s.processed, n.TransactionID)
		s.mu.Unlock()
		return 0, err
	}

	log.Printf("[payment] credited %d tokens to %s (transaction %s)",
		pkg.Tokens, n.AccountID, n.TransactionID)
	return pkg.Tokens, nil
}

func (s *Service) findPackage(amount float64) (Package, bool) {
	for _, p := range s.packages {
		if p.Amount == amount {
			return p, true
		}
	}
	return Package{}, false
}
