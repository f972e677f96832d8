package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"CINEORG_DOWNLOADS_DIR", "CINEORG_STORAGE_DIR", "CINEORG_SYMLINK_DIR",
		"CINEORG_MIN_FILE_SIZE_BYTES", "CINEORG_MAX_ITEMS_PER_DIR",
		"CINEORG_MATCH_AUTO_THRESHOLD", "CINEORG_TMDB_API_KEY", "CINEORG_TVDB_API_KEY",
		"CINEORG_DRY_RUN",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg := Load()
	assert.Equal(t, "downloads", cfg.DownloadsDir)
	assert.Equal(t, "storage", cfg.StorageDir)
	assert.Equal(t, "video", cfg.SymlinkDir)
	assert.Equal(t, int64(52428800), cfg.MinFileSizeBytes)
	assert.Equal(t, 50, cfg.MaxItemsPerDir)
	assert.Equal(t, 85.0, cfg.MatchAutoThreshold)
	assert.False(t, cfg.TMDBEnabled())
	assert.False(t, cfg.TVDBEnabled())
	assert.False(t, cfg.DryRun)
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("CINEORG_DOWNLOADS_DIR", "/mnt/dl")
	t.Setenv("CINEORG_MAX_ITEMS_PER_DIR", "25")
	t.Setenv("CINEORG_MATCH_AUTO_THRESHOLD", "90.5")
	t.Setenv("CINEORG_TMDB_API_KEY", "key123")
	t.Setenv("CINEORG_DRY_RUN", "true")

	cfg := Load()
	assert.Equal(t, "/mnt/dl", cfg.DownloadsDir)
	assert.Equal(t, 25, cfg.MaxItemsPerDir)
	assert.Equal(t, 90.5, cfg.MatchAutoThreshold)
	assert.True(t, cfg.TMDBEnabled())
	assert.True(t, cfg.DryRun)
}

func TestLoadIgnoresUnparsableOverride(t *testing.T) {
	t.Setenv("CINEORG_MAX_ITEMS_PER_DIR", "not-a-number")
	cfg := Load()
	assert.Equal(t, 50, cfg.MaxItemsPerDir)
}
