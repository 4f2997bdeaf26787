// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - New returns a Config populated with defaults; Load layers sources on top.
//   - Nested sections map to dotted koanf keys (limits.messages_per_day).
//   - Errors returned by Load wrap ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataDir holds the SQLite database used for limiter checkpoints and the action journal.
	DataDir string `koanf:"data_dir"`

	// Session names the limiter checkpoint row. One session drives one limiter.
	Session string `koanf:"session"`

	// MaxRequestBytes caps JSON request bodies accepted by the API.
	MaxRequestBytes int64 `koanf:"max_request_bytes"`

	// DedupeSize bounds the seen-set used to drop repeated posts and profiles.
	DedupeSize int `koanf:"dedupe_size"`

	Scoring  Scoring  `koanf:"scoring"`
	Limits   Limits   `koanf:"limits"`
	Pacing   Pacing   `koanf:"pacing"`
	Criteria Criteria `koanf:"criteria"`
	Campaign Campaign `koanf:"campaign"`
}

// Scoring configures the opportunity scorer.
type Scoring struct {
	// Mode is one of recent, engagement, topic, balanced. Unknown values score as balanced.
	Mode string `koanf:"mode"`

	// Keywords are matched case-insensitively against title and content.
	Keywords []string `koanf:"keywords"`

	// KeywordsFile is an optional CSV whose first column holds extra keywords.
	KeywordsFile string `koanf:"keywords_file"`

	// TopN truncates ranked output. Zero or negative yields an empty result.
	TopN int `koanf:"top_n"`

	// MaxCommentResults bounds the comment-targeting routine.
	MaxCommentResults int `koanf:"max_comment_results"`
}

// Limits holds the four admission budgets.
type Limits struct {
	ActionsPerHour     int `koanf:"actions_per_hour"`
	ProfilesPerSession int `koanf:"profiles_per_session"`
	MessagesPerDay     int `koanf:"messages_per_day"`
	CommentsPerDay     int `koanf:"comments_per_day"`
}

// Pacing configures human-like delays between executed actions.
type Pacing struct {
	MinDelay    time.Duration `koanf:"min_delay"`
	MaxDelay    time.Duration `koanf:"max_delay"`
	MinSpacing  time.Duration `koanf:"min_spacing"`
	MaxSession  time.Duration `koanf:"max_session"`
	BreakAfter  int           `koanf:"break_after"`
	BreakChance float64       `koanf:"break_chance"`
	Seed        int64         `koanf:"seed"`
}

// Campaign sizes the asynchronous campaign job queue. All workers share one
// limiter, so more than one worker only interleaves campaigns.
type Campaign struct {
	Workers   int `koanf:"workers"`
	QueueSize int `koanf:"queue_size"`
}

// Criteria is the profile targeting configuration.
type Criteria struct {
	Industries        []string `koanf:"industries"`
	Titles            []string `koanf:"titles"`
	TitleKeywords     []string `koanf:"title_keywords"`
	Companies         []string `koanf:"companies"`
	Locations         []string `koanf:"locations"`
	MinFollowers      int      `koanf:"min_followers"`
	MinConnections    int      `koanf:"min_connections"`
	ConnectionDegrees []int    `koanf:"connection_degrees"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		DataDir:         "data",
		Session:         "default",
		MaxRequestBytes: 8 << 20,
		DedupeSize:      100_000,
		Scoring: Scoring{
			Mode:              "balanced",
			TopN:              20,
			MaxCommentResults: 10,
		},
		Limits: Limits{
			ActionsPerHour:     20,
			ProfilesPerSession: 50,
			MessagesPerDay:     25,
			CommentsPerDay:     30,
		},
		Pacing: Pacing{
			MinDelay:    time.Second,
			MaxDelay:    3 * time.Second,
			MinSpacing:  2 * time.Second,
			MaxSession:  30 * time.Minute,
			BreakAfter:  50,
			BreakChance: 0.02,
		},
		Criteria: Criteria{
			ConnectionDegrees: []int{1, 2, 3},
		},
		Campaign: Campaign{
			Workers:   1,
			QueueSize: 16,
		},
	}
}
