package setup

import (
	"fmt"
	"os"
	"strconv"

	"github.com/panverse/rules-agent/internal/dispatch"
	"github.com/panverse/rules-agent/internal/integrity"
	"github.com/panverse/rules-agent/internal/legacy"
	"github.com/panverse/rules-agent/internal/rules"
	"github.com/panverse/rules-agent/internal/scoring"
	"github.com/panverse/rules-agent/internal/validator"
	"github.com/rs/zerolog"
)

type Config struct {
	RulesDir          string
	ScoringConfigPath string
	WatchdogActive    bool
	RedisAddr         string
	RedisPassword     string
	APIPort           string
	StreamProvider    string
	RequestStream     string
	ResultStream      string
	ConsumerGroup     string
}

type Dependencies struct {
	Store      *rules.Store
	Dispatcher *dispatch.Dispatcher
	Checker    *legacy.Checker
	Logger     *zerolog.Logger
}

func LoadConfig() *Config {
	return &Config{
		RulesDir:          getEnv("RULES_DIR", "configs/rules"),
		ScoringConfigPath: getEnv("SCORING_CONFIG_PATH", "configs/scoring.yaml"),
		WatchdogActive:    getEnvBool("WATCHDOG_ACTIVE", true),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		APIPort:           getEnv("RULES_AGENT_API_PORT", "18082"),
		StreamProvider:    getEnv("STREAM_PROVIDER", "redis"),
		RequestStream:     getEnv("REQUEST_STREAM", "content-events"),
		ResultStream:      getEnv("RESULT_STREAM", "content-results"),
		ConsumerGroup:     getEnv("CONSUMER_GROUP", "rules-group"),
	}
}

// Wire loads the rule repository and scoring configuration and assembles the
// validation pipeline. Any configuration fault aborts startup; there is no
// degraded mode with partial rules.
func Wire(cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	repo, err := rules.Load(cfg.RulesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %s: %w", cfg.RulesDir, err)
	}
	store := rules.NewStore(repo)

	scoringCfg, err := scoring.LoadConfig(cfg.ScoringConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load scoring config: %w", err)
	}
	engine, err := scoring.NewEngine(scoringCfg, logger)
	if err != nil {
		return nil, err
	}

	registry := validator.NewRegistry(engine, logger)
	watchdog := integrity.NewWatchdog(cfg.WatchdogActive, logger)
	dispatcher := dispatch.New(store, registry, engine, watchdog, logger)

	return &Dependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Checker:    legacy.NewChecker(store),
		Logger:     logger,
	}, nil
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		value = defaultValue
	}

	return value
}
