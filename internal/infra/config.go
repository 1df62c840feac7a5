package infra

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers.
const (
	StorePostgres  = "postgres"
	StorePostgREST = "postgrest"
	StoreSQLite    = "sqlite"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv        string
	LogLevel      string
	Port          string
	CORSOrigins   []string
	DefaultLocale string
	GeoIPDBPath   string
	// TrustedProxies are the peers whose X-Forwarded-For header is believed.
	TrustedProxies []netip.Prefix

	StoreDriver  string
	DatabaseURL  string
	DBMaxConns   int32
	PostgRESTURL string
	PostgRESTKey string
	SQLitePath   string
	StoreTimeout time.Duration

	JWTSecret    string
	JWTTTL       time.Duration
	PasswordSalt string
	CronSecret   string

	TrialDuration     time.Duration
	DailyRunHour      int
	DailyAccountPause time.Duration

	TextGenProvider  string
	TextGenTimeout   time.Duration
	XAIAPIKey        string
	XAIModel         string
	XAIBaseURL       string
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIBaseURL    string
	OpenAIOrg        string
	GeminiAPIKey     string
	GeminiModel      string
	GeminiBaseURL    string
	BreakerThreshold int
	BreakerOpenFor   time.Duration

	RateLimitPerMin int
	RedisURL        string
	AMQPURL         string
	AMQPExchange    string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		Port:          getEnv("PORT", "8080"),
		CORSOrigins:   splitList(os.Getenv("CORS_ORIGINS")),
		DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
		GeoIPDBPath:   os.Getenv("GEOIP_DB_PATH"),

		StoreDriver:  strings.ToLower(getEnv("STORE_DRIVER", StorePostgres)),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DBMaxConns:   int32(getEnvInt("DB_MAX_CONNS", 10)),
		PostgRESTURL: strings.TrimRight(os.Getenv("POSTGREST_URL"), "/"),
		PostgRESTKey: os.Getenv("POSTGREST_KEY"),
		SQLitePath:   getEnv("SQLITE_PATH", "kira.db"),
		StoreTimeout: time.Second * time.Duration(getEnvInt("STORE_TIMEOUT_SECONDS", 10)),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTTTL:       getEnvDuration("JWT_TTL", 7*24*time.Hour),
		PasswordSalt: os.Getenv("PASSWORD_SALT"),
		CronSecret:   os.Getenv("CRON_SECRET"),

		TrialDuration:     getEnvDuration("TRIAL_DURATION", 72*time.Hour),
		DailyRunHour:      getEnvInt("DAILY_RUN_HOUR", 6),
		DailyAccountPause: getEnvDuration("DAILY_ACCOUNT_PAUSE", time.Second),

		TextGenProvider:  strings.ToLower(getEnv("TEXTGEN_PROVIDER", "xai")),
		TextGenTimeout:   time.Second * time.Duration(getEnvInt("TEXTGEN_TIMEOUT_SECONDS", 60)),
		XAIAPIKey:        os.Getenv("XAI_API_KEY"),
		XAIModel:         getEnv("XAI_MODEL", "grok-2-1212"),
		XAIBaseURL:       getEnv("XAI_BASE_URL", "https://api.x.ai/v1"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:        os.Getenv("OPENAI_ORG"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		BreakerThreshold: getEnvInt("BREAKER_FAILURE_THRESHOLD", 5),
		BreakerOpenFor:   time.Second * time.Duration(getEnvInt("BREAKER_OPEN_SECONDS", 30)),

		RateLimitPerMin: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		RedisURL:        os.Getenv("REDIS_URL"),
		AMQPURL:         os.Getenv("AMQP_URL"),
		AMQPExchange:    getEnv("AMQP_EXCHANGE", "kira.events"),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 90)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	proxies, err := parsePrefixes(splitList(os.Getenv("TRUSTED_PROXIES")))
	if err != nil {
		return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}
	cfg.TrustedProxies = proxies

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	switch cfg.StoreDriver {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	case StorePostgREST:
		if cfg.PostgRESTURL == "" || cfg.PostgRESTKey == "" {
			return nil, fmt.Errorf("POSTGREST_URL and POSTGREST_KEY are required")
		}
	case StoreSQLite:
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.DailyRunHour < 0 || cfg.DailyRunHour > 23 {
		return nil, fmt.Errorf("DAILY_RUN_HOUR must be between 0 and 23")
	}
	if cfg.TrialDuration <= 0 {
		return nil, fmt.Errorf("TRIAL_DURATION must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parsePrefixes accepts CIDR ranges and bare addresses.
func parsePrefixes(items []string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, item := range items {
		if strings.Contains(item, "/") {
			p, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, err
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, err
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}
