// Package speech proxies premium text-to-speech synthesis and meters
// it against the token ledger.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/avelichko/pyai-teacher/backend/internal/config"
)

var (
	// ErrEmptyText is returned for empty or whitespace-only input.
	ErrEmptyText = errors.New("text is empty")

	// ErrInsufficientTokens is returned when the balance cannot cover
	// the synthesis cost. The upstream API is not contacted.
	ErrInsufficientTokens = errors.New("insufficient tokens")

	// ErrSynthesisFailed is the generic failure surfaced when the
	// upstream synthesis call did not produce audio.
	ErrSynthesisFailed = errors.New("speech synthesis failed")
)

// Ledger is the slice of the token ledger the speech path needs.
type Ledger interface {
	Balance(ctx context.Context, userID string) (int, error)
	Debit(ctx context.Context, userID string, cost int) error
}

// Service synthesizes speech through an ElevenLabs-style HTTP API.
type Service struct {
	cfg    config.SpeechConfig
	costs  config.CostsConfig
	ledger Ledger
	client *http.Client
}

// NewService creates the speech service.
func NewService(cfg config.SpeechConfig, costs config.CostsConfig, ledger Ledger) *Service {
	return &Service{
		cfg:    cfg,
		costs:  costs,
		ledger: ledger,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Cost returns the token price of one synthesis request.
// Highlighted playback (word-level timing on the lesson page) is the
// more expensive variant.
func (s *Service) Cost(highlight bool) int {
	if highlight {
		return s.costs.SpeechHighlight
	}
	return s.costs.Speech
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float32 `json:"stability"`
	SimilarityBoost float32 `json:"similarity_boost"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// Synthesize converts text to MPEG audio, debiting the synthesis cost
// on success. The balance is checked first so an uncovered request
// never reaches the upstream API.
func (s *Service) Synthesize(ctx context.Context, userID, text string, highlight bool) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	cost := s.Cost(highlight)
	balance, err := s.ledger.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance < cost {
		return nil, ErrInsufficientTokens
	}

	audio, err := s.request(ctx, text)
	if err != nil {
		log.Printf("[speech] synthesis error: %v", err)
		return nil, ErrSynthesisFailed
	}

	if err := s.ledger.Debit(ctx, userID, cost); err != nil {
		return nil, err
	}

	return audio, nil
}

func (s *Service) request(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(synthesisRequest{
		Text:    text,
		ModelID: s.cfg.ModelID,
		VoiceSettings: voiceSettings{
			Stability:       0.7,
			SimilarityBoost: 0.75,
			UseSpeakerBoost: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode synthesis request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", strings.TrimRight(s.cfg.BaseURL, "/"), s.cfg.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("synthesis status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read synthesis response: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty audio payload")
	}
	return audio, nil
}
