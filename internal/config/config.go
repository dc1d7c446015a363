package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every subsystem's configuration.
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Auth    AuthConfig
	Admin   AdminConfig
	AI      AIConfig
	Speech  SpeechConfig
	Payment PaymentConfig
	Costs   CostsConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	auth, err := loadAuthConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	costs, err := loadCostsConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		Store:   loadStoreConfig(),
		Auth:    auth,
		Admin:   loadAdminConfig(),
		AI:      ai,
		Speech:  loadSpeechConfig(),
		Payment: loadPaymentConfig(),
		Costs:   costs,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	addr := port
	if !strings.Contains(port, ":") {
		if strings.Contains(port, " ") {
			return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
		}
		addr = ":" + port
	}

	origins := []string{"*"}
	if raw := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); raw != "" {
		origins = origins[:0]
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return ServerConfig{Addr: addr, AllowedOrigins: origins}, nil
}

// StoreConfig describes the user database location.
type StoreConfig struct {
	Path string
}

func loadStoreConfig() StoreConfig {
	return StoreConfig{
		Path: getEnvOrDefault("DB_PATH", "data/pyai.db"),
	}
}

// AuthConfig describes session-token signing.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

func loadAuthConfig() (AuthConfig, error) {
	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		return AuthConfig{}, fmt.Errorf("JWT_SECRET is required")
	}

	ttlHours := 72
	if override, err := parseOptionalIntEnv("JWT_TTL_HOURS"); err != nil {
		return AuthConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return AuthConfig{}, fmt.Errorf("JWT_TTL_HOURS must be positive")
		}
		ttlHours = *override
	}

	return AuthConfig{
		JWTSecret: secret,
		TokenTTL:  time.Duration(ttlHours) * time.Hour,
	}, nil
}

// AdminConfig guards the user-management endpoints. They stay
// unregistered when no password is set.
type AdminConfig struct {
	Password string
	Enabled  bool
}

func loadAdminConfig() AdminConfig {
	password := strings.TrimSpace(os.Getenv("ADMIN_PASSWORD"))
	return AdminConfig{
		Password: password,
		Enabled:  password != "",
	}
}

// AIConfig describes the chat-completion backends.
type AIConfig struct {
	OpenAIKey      string
	OpenAIModel    string
	AnthropicKey   string
	AnthropicModel string
	Temperature    float32
	MaxTokens      int
}

// Enabled reports whether at least one backend has a credential.
func (c AIConfig) Enabled() bool {
	return c.OpenAIKey != "" || c.AnthropicKey != ""
}

func loadAIConfig() (AIConfig, error) {
	temperature := float32(0.7)
	if override, err := parseOptionalFloat32Env("AI_TEMPERATURE"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		temperature = *override
	}

	maxTokens := 2000
	if override, err := parseOptionalIntEnv("AI_MAX_TOKENS"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		maxTokens = *override
	}

	return AIConfig{
		OpenAIKey:      strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:    getEnvOrDefault("OPENAI_MODEL", "gpt-4-turbo-preview"),
		AnthropicKey:   strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")),
		AnthropicModel: getEnvOrDefault("ANTHROPIC_MODEL", "claude-3-opus-20240229"),
		Temperature:    temperature,
		MaxTokens:      maxTokens,
	}, nil
}

// SpeechConfig describes the text-to-speech backend.
type SpeechConfig struct {
	APIKey  string
	BaseURL string
	VoiceID string
	ModelID string
	Enabled bool
}

func loadSpeechConfig() SpeechConfig {
	apiKey := strings.TrimSpace(os.Getenv("ELEVENLABS_API_KEY"))

	return SpeechConfig{
		APIKey:  apiKey,
		BaseURL: getEnvOrDefault("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io"),
		VoiceID: getEnvOrDefault("ELEVENLABS_VOICE_ID", "21m00Tcm4TlvDq8ikWAM"),
		ModelID: getEnvOrDefault("ELEVENLABS_MODEL_ID", "eleven_multilingual_v2"),
		Enabled: apiKey != "",
	}
}

// PaymentConfig describes the payment-widget integration.
type PaymentConfig struct {
	PublicID  string
	APISecret string
	Currency  string
	Enabled   bool
}

func loadPaymentConfig() PaymentConfig {
	publicID := strings.TrimSpace(os.Getenv("CLOUDPAYMENTS_PUBLIC_ID"))
	secret := strings.TrimSpace(os.Getenv("CLOUDPAYMENTS_API_SECRET"))

	return PaymentConfig{
		PublicID:  publicID,
		APISecret: secret,
		Currency:  getEnvOrDefault("CLOUDPAYMENTS_CURRENCY", "RUB"),
		Enabled:   publicID != "" && secret != "",
	}
}

// CostsConfig centralizes per-operation token prices and the signup grant.
type CostsConfig struct {
	Chat            int
	Speech          int
	SpeechHighlight int
	SignupGrant     int
}

func loadCostsConfig() (CostsConfig, error) {
	chat, err := parseIntEnv("COST_CHAT", 5)
	if err != nil {
		return CostsConfig{}, err
	}
	speech, err := parseIntEnv("COST_SPEECH", 45)
	if err != nil {
		return CostsConfig{}, err
	}
	highlight, err := parseIntEnv("COST_SPEECH_HIGHLIGHT", 49)
	if err != nil {
		return CostsConfig{}, err
	}
	grant, err := parseIntEnv("SIGNUP_TOKEN_GRANT", 100)
	if err != nil {
		return CostsConfig{}, err
	}

	return CostsConfig{
		Chat:            chat,
		Speech:          speech,
		SpeechHighlight: highlight,
		SignupGrant:     grant,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("invalid %s value %q: must not be negative", key, raw)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalFloat32Env(key string) (*float32, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	result := float32(val)
	return &result, nil
}
