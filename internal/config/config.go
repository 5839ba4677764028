package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Clinic profile
	ClinicName     string
	ClinicAddress  string
	ClinicPhone    string
	ClinicTimezone string

	// Dialogue behavior
	AcceptHealthPlans  bool
	CollectPatientName bool

	// Calendar collaborator
	CalendarID            string
	GoogleCredentialsJSON string
	CalendarTimeout       time.Duration

	// Slot suggestion
	SlotDurationMinutes int
	SlotSuggestionCount int
	SlotWindowDays      int

	// Sessions
	SessionBackend       string
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	RedisAddr            string
	RedisPassword        string
	RedisTLS             bool

	// Inbound webhook
	TwilioAuthToken      string
	WebhookRatePerMinute int

	// Optional text presentation collaborator
	PresenterAPIKey  string
	PresenterBaseURL string
	PresenterModel   string
	PresenterTimeout time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		ClinicName:     getEnv("CLINIC_NAME", "Clínica de Urologia"),
		ClinicAddress:  getEnv("CLINIC_ADDRESS", "Endereço não configurado"),
		ClinicPhone:    getEnv("CLINIC_PHONE", ""),
		ClinicTimezone: getEnv("CLINIC_TIMEZONE", "America/Sao_Paulo"),

		AcceptHealthPlans:  getEnvAsBool("ACCEPT_HEALTH_PLANS", true),
		CollectPatientName: getEnvAsBool("COLLECT_PATIENT_NAME", true),

		CalendarID:            getEnv("GOOGLE_CALENDAR_ID", getEnv("CALENDAR_ID", "")),
		GoogleCredentialsJSON: getEnv("GOOGLE_CREDENTIALS", ""),
		CalendarTimeout:       getEnvAsDuration("CALENDAR_TIMEOUT", 10*time.Second),

		SlotDurationMinutes: getEnvAsInt("SLOT_DURATION_MINUTES", 30),
		SlotSuggestionCount: getEnvAsInt("SLOT_SUGGESTION_COUNT", 3),
		SlotWindowDays:      getEnvAsInt("SLOT_WINDOW_DAYS", 14),

		SessionBackend:       strings.ToLower(strings.TrimSpace(getEnv("SESSION_BACKEND", "memory"))),
		SessionTTL:           getEnvAsDuration("SESSION_TTL", 6*time.Hour),
		SessionSweepInterval: getEnvAsDuration("SESSION_SWEEP_INTERVAL", 30*time.Minute),
		RedisAddr:            getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisTLS:             getEnvAsBool("REDIS_TLS", false),

		TwilioAuthToken:      getEnv("TWILIO_AUTH_TOKEN", ""),
		WebhookRatePerMinute: getEnvAsInt("WEBHOOK_RATE_PER_MINUTE", 60),

		PresenterAPIKey:  getEnv("DEEPSEEK_API_KEY", ""),
		PresenterBaseURL: getEnv("PRESENTER_BASE_URL", "https://api.deepseek.com/v1"),
		PresenterModel:   getEnv("PRESENTER_MODEL", "deepseek-chat"),
		PresenterTimeout: getEnvAsDuration("PRESENTER_TIMEOUT", 4*time.Second),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
