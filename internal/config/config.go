package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string
	LogLevel           logging.Level

	DataDir          string
	MatchesFile      string
	TrainingFile     string
	TeamAveragesFile string
	ResultsFile      string
	DBURL            string

	HighlightTeam   string
	CurrentMatchday int

	CacheEnabled        bool
	CacheTTL            time.Duration
	CacheComputeTimeout time.Duration

	AutoRefreshEnabled  bool
	RefreshInterval     time.Duration
	SweepSchedule       string
	HealthProbeInterval time.Duration

	// RankingMetrics maps raw metric keys to display labels for the
	// per-metric league boards. InverseMetrics flags those where lower
	// values rank better.
	RankingMetrics map[string]string
	InverseMetrics map[string]bool
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "15m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	computeTimeout, err := time.ParseDuration(getEnv("CACHE_COMPUTE_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_COMPUTE_TIMEOUT: %w", err)
	}
	if computeTimeout <= 0 {
		return Config{}, fmt.Errorf("CACHE_COMPUTE_TIMEOUT must be > 0")
	}

	autoRefreshEnabled, err := strconv.ParseBool(getEnv("AUTO_REFRESH_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse AUTO_REFRESH_ENABLED: %w", err)
	}

	refreshInterval, err := time.ParseDuration(getEnv("REFRESH_INTERVAL", "30m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REFRESH_INTERVAL: %w", err)
	}
	if refreshInterval <= 0 {
		return Config{}, fmt.Errorf("REFRESH_INTERVAL must be > 0")
	}

	healthProbeInterval, err := time.ParseDuration(getEnv("HEALTH_PROBE_INTERVAL", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HEALTH_PROBE_INTERVAL: %w", err)
	}
	if healthProbeInterval <= 0 {
		return Config{}, fmt.Errorf("HEALTH_PROBE_INTERVAL must be > 0")
	}

	currentMatchday, err := getEnvAsInt("CURRENT_MATCHDAY", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse CURRENT_MATCHDAY: %w", err)
	}
	if currentMatchday < 1 {
		return Config{}, fmt.Errorf("CURRENT_MATCHDAY must be >= 1")
	}

	dataDir := strings.TrimSpace(getEnv("DATA_DIR", "data"))
	if dataDir == "" {
		return Config{}, fmt.Errorf("DATA_DIR cannot be empty")
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "plataforma-penafiel"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		DataDir:          dataDir,
		MatchesFile:      getEnv("MATCHES_FILE", filepath.Join(dataDir, "fisicos", "partidos_completo.xlsx")),
		TrainingFile:     getEnv("TRAINING_FILE", filepath.Join(dataDir, "fisicos", "entrenos_completo.xlsx")),
		TeamAveragesFile: getEnv("TEAM_AVERAGES_FILE", filepath.Join(dataDir, "estadisticos", "promedios_equipos.xlsx")),
		ResultsFile:      getEnv("RESULTS_FILE", filepath.Join(dataDir, "resultados.xlsx")),
		DBURL:            strings.TrimSpace(getEnv("DB_URL", "")),

		HighlightTeam:   getEnv("HIGHLIGHT_TEAM", "Penafiel"),
		CurrentMatchday: currentMatchday,

		CacheEnabled:        cacheEnabled,
		CacheTTL:            cacheTTL,
		CacheComputeTimeout: computeTimeout,

		AutoRefreshEnabled:  autoRefreshEnabled,
		RefreshInterval:     refreshInterval,
		SweepSchedule:       getEnv("CACHE_SWEEP_SCHEDULE", "0 3 * * *"),
		HealthProbeInterval: healthProbeInterval,

		RankingMetrics: defaultRankingMetrics(),
		InverseMetrics: defaultInverseMetrics(),
	}

	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if strings.TrimSpace(cfg.HighlightTeam) == "" {
		return Config{}, fmt.Errorf("HIGHLIGHT_TEAM cannot be empty")
	}

	return cfg, nil
}

func defaultRankingMetrics() map[string]string {
	return map[string]string{
		"team_xgShot":      "xG (expected goals)",
		"team_goal":        "Goles a favor",
		"team_shot":        "Tiros",
		"team_shotSuccess": "Tiros a puerta",
		"team_possession":  "Posesión (%)",
		"team_ppda":        "PPDA",
		"opp_xgShot":       "xG en contra",
		"opp_goal":         "Goles en contra",
		"opp_shot":         "Tiros en contra",
		"opp_shotSuccess":  "Tiros a puerta en contra",
	}
}

func defaultInverseMetrics() map[string]bool {
	return map[string]bool{
		"opp_xgShot":      true,
		"opp_goal":        true,
		"opp_shot":        true,
		"opp_shotSuccess": true,
		"team_ppda":       true,
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}
