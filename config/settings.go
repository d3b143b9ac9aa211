package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings holds the runtime configuration read from the environment
type Settings struct {
	Env  string
	Port string

	DBName string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSOrigins []string

	JWTSecret string
	JWTTTL    time.Duration

	BootstrapAdminEmail    string
	BootstrapAdminPassword string

	HelcimAPIToken      string
	HelcimBaseURL       string
	HelcimWebhookSecret string
	HelcimTimeout       time.Duration
	HelcimDebug         bool
	InvoicePrefix       string
	Currency            string

	PayrollSyncURLs     []string
	PayrollSyncRetries  int
	PayrollSyncDelay    time.Duration
	PayrollSyncInterval time.Duration
	PayrollPeriodDays   int

	PayrollAdminEmail string
}

// LoadSettings reads Settings from the environment, applying defaults
func LoadSettings() *Settings {
	return &Settings{
		Env:  os.Getenv("ENV"),
		Port: getEnv("PORT", "8080"),

		DBName: getEnv("DB_NAME", "salon"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvNonNegative("REDIS_DB", 0),

		CORSOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    getEnvDuration("JWT_TTL", 12*time.Hour),

		BootstrapAdminEmail:    os.Getenv("BOOTSTRAP_ADMIN_EMAIL"),
		BootstrapAdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),

		HelcimAPIToken:      os.Getenv("HELCIM_API_TOKEN"),
		HelcimBaseURL:       getEnv("HELCIM_BASE_URL", "https://api.helcim.com/v2/"),
		HelcimWebhookSecret: os.Getenv("HELCIM_WEBHOOK_SECRET"),
		HelcimTimeout:       getEnvDuration("HELCIM_TIMEOUT", 5*time.Second),
		HelcimDebug:         getEnvBool("HELCIM_DEBUG", false),
		InvoicePrefix:       getEnv("INVOICE_PREFIX", "APT-"),
		Currency:            getEnv("PAYMENT_CURRENCY", "CAD"),

		PayrollSyncURLs:     splitList(os.Getenv("PAYROLL_SYNC_URLS")),
		PayrollSyncRetries:  getEnvInt("PAYROLL_SYNC_RETRIES", 3),
		PayrollSyncDelay:    getEnvDuration("PAYROLL_SYNC_DELAY", 2*time.Second),
		PayrollSyncInterval: getEnvDuration("PAYROLL_SYNC_INTERVAL", 24*time.Hour),
		PayrollPeriodDays:   getEnvInt("PAYROLL_PERIOD_DAYS", 14),

		PayrollAdminEmail: os.Getenv("PAYROLL_ADMIN_EMAIL"),
	}
}

// IsTrustedEnv reports whether webhook signatures may be skipped
func (s *Settings) IsTrustedEnv() bool {
	return IsTrustedEnv(s.Env)
}

// IsTrustedEnv reports whether env names a development or test deployment
func IsTrustedEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "development", "dev", "test":
		return true
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil && v > 0 {
		return v
	}
	return fallback
}

func getEnvNonNegative(key string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil && v >= 0 {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return fallback
}

// getEnvDuration accepts Go durations ("2s") or plain seconds ("2")
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
