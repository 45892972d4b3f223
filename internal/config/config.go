// Package config resolves server configuration from environment variables,
// with optional .env file overrides for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config bundles every runtime-tunable setting the server reads at startup.
type Config struct {
	UDPBindAddr  string
	HTTPBindAddr string

	TickRate        int
	CommandCapacity int
	PerActorLimit   int
	WarningStep     int
	CatchupMaxTicks int
	InactiveTimeout time.Duration

	WeaponCatalogPath string
	SceneCatalogPath  string

	LogDevelopment bool
	LogJSONPath    string
}

// Default returns the configuration used when no environment overrides are
// present.
func Default() Config {
	return Config{
		UDPBindAddr:     ":7777",
		HTTPBindAddr:    ":8080",
		TickRate:        50,
		CommandCapacity: 256,
		PerActorLimit:   32,
		WarningStep:     64,
		CatchupMaxTicks: 5,
		InactiveTimeout: 30 * time.Second,
		LogDevelopment:  false,
	}
}

// Load reads a .env file if present (ignored if missing) and overlays
// environment variables onto the defaults.
func Load() Config {
	_ = godotenv.Load()

	cfg := Default()
	cfg.UDPBindAddr = getString("CROSSFIRE_UDP_ADDR", cfg.UDPBindAddr)
	cfg.HTTPBindAddr = getString("CROSSFIRE_HTTP_ADDR", cfg.HTTPBindAddr)
	cfg.TickRate = getInt("CROSSFIRE_TICK_RATE", cfg.TickRate)
	cfg.CommandCapacity = getInt("CROSSFIRE_COMMAND_CAPACITY", cfg.CommandCapacity)
	cfg.PerActorLimit = getInt("CROSSFIRE_PER_ACTOR_LIMIT", cfg.PerActorLimit)
	cfg.WarningStep = getInt("CROSSFIRE_WARNING_STEP", cfg.WarningStep)
	cfg.CatchupMaxTicks = getInt("CROSSFIRE_CATCHUP_MAX_TICKS", cfg.CatchupMaxTicks)
	cfg.InactiveTimeout = getDuration("CROSSFIRE_INACTIVE_TIMEOUT", cfg.InactiveTimeout)
	cfg.WeaponCatalogPath = getString("CROSSFIRE_WEAPON_CATALOG", cfg.WeaponCatalogPath)
	cfg.SceneCatalogPath = getString("CROSSFIRE_SCENE_CATALOG", cfg.SceneCatalogPath)
	cfg.LogDevelopment = getBool("CROSSFIRE_LOG_DEVELOPMENT", cfg.LogDevelopment)
	cfg.LogJSONPath = getString("CROSSFIRE_LOG_JSON_PATH", cfg.LogJSONPath)
	return cfg
}

func getString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}
