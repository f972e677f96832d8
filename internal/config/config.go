// Package config loads CineOrg's single immutable configuration value from
// CINEORG_-prefixed environment variables. It is the only package that
// calls os.Getenv; every other component receives a *Config explicitly.
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every path, threshold, and catalog credential CineOrg needs.
// Loaded once at startup and passed by value/pointer into every component.
type Config struct {
	DownloadsDir string
	StorageDir   string
	SymlinkDir   string

	MinFileSizeBytes int64
	MaxItemsPerDir   int

	MatchAutoThreshold float64
	MatchAutoTolerance float64
	RepairMinScore     float64
	PrefixMinCount     int

	RateLimitMS int
	RetryCount  int

	TMDBAPIKey string
	TVDBAPIKey string

	MediaInfoPath string
	DryRun        bool
}

// Load reads .env (if present, tolerated silently) then the process
// environment, applying defaults for anything unset.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("config: no .env file loaded: %v", err)
	}

	return &Config{
		DownloadsDir: env("CINEORG_DOWNLOADS_DIR", "downloads"),
		StorageDir:   env("CINEORG_STORAGE_DIR", "storage"),
		SymlinkDir:   env("CINEORG_SYMLINK_DIR", "video"),

		MinFileSizeBytes: envInt64("CINEORG_MIN_FILE_SIZE_BYTES", 52428800),
		MaxItemsPerDir:   envInt("CINEORG_MAX_ITEMS_PER_DIR", 50),

		MatchAutoThreshold: envFloat("CINEORG_MATCH_AUTO_THRESHOLD", 85),
		MatchAutoTolerance: envFloat("CINEORG_MATCH_AUTO_TOLERANCE", 5),
		RepairMinScore:     envFloat("CINEORG_REPAIR_MIN_SCORE", 90),
		PrefixMinCount:     envInt("CINEORG_PREFIX_MIN_COUNT", 3),

		RateLimitMS: envInt("CINEORG_RATE_LIMIT_MS", 250),
		RetryCount:  envInt("CINEORG_RETRY_COUNT", 3),

		TMDBAPIKey: env("CINEORG_TMDB_API_KEY", ""),
		TVDBAPIKey: env("CINEORG_TVDB_API_KEY", ""),

		MediaInfoPath: env("CINEORG_MEDIAINFO_PATH", "mediainfo"),
		DryRun:        envBool("CINEORG_DRY_RUN", false),
	}
}

// TMDBEnabled reports whether the movie catalog has credentials.
func (c *Config) TMDBEnabled() bool { return c.TMDBAPIKey != "" }

// TVDBEnabled reports whether the series catalog has credentials.
func (c *Config) TVDBEnabled() bool { return c.TVDBAPIKey != "" }

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
