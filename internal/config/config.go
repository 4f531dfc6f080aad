package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL is required.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Filesystem layout
	VideosDir string // archive root: VideosDir/<channel folder>/<file>
	CacheDir  string // thumbnails and the path-repair staging area

	// Metadata extractor
	ExtractorBaseURL string
	ExtractorTimeout time.Duration
	CookieFile       string // optional credential; validated before each cycle

	// Comments: max-comments spec string as the extractor expects it,
	// e.g. "100,all,100,10". Empty disables comment indexing.
	CommentMax  string
	CommentSort string

	// Refresh scheduling
	RefreshIntervalDays int           // re-check age threshold in days
	ScheduleInterval    time.Duration // how often the outdated scan runs
	CycleInterval       time.Duration // how often the drain worker wakes up
	ItemDelay           time.Duration // pause between two refreshed items

	// Progress events
	ProgressTTL      time.Duration // ephemeral per-item events
	ProgressFinalTTL time.Duration // durable completion event
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL: dbURL,
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 5)),

		VideosDir: getEnv("VIDEOS_DIR", "/youtube"),
		CacheDir:  getEnv("CACHE_DIR", "/cache"),

		ExtractorBaseURL: getEnv("EXTRACTOR_BASE_URL", "http://localhost:9800"),
		ExtractorTimeout: getDuration("EXTRACTOR_TIMEOUT", 3*time.Second),
		CookieFile:       getEnv("COOKIE_FILE", ""),

		CommentMax:  getEnv("COMMENT_MAX", "100,all,100,10"),
		CommentSort: getEnv("COMMENT_SORT", "top"),

		RefreshIntervalDays: getInt("REFRESH_INTERVAL_DAYS", 90),
		ScheduleInterval:    getDuration("SCHEDULE_INTERVAL", 24*time.Hour),
		CycleInterval:       getDuration("CYCLE_INTERVAL", time.Hour),
		ItemDelay:           getDuration("ITEM_DELAY", 3*time.Second),

		ProgressTTL:      getDuration("PROGRESS_TTL", 15*time.Second),
		ProgressFinalTTL: getDuration("PROGRESS_FINAL_TTL", 4*time.Minute),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
