package config

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// HTTP Server
	Port string `envconfig:"PORT" default:"8080"`

	// Backend selection
	DataBackend  string `envconfig:"DATA_BACKEND" default:"memory" validate:"oneof=memory firestore sqlite"`
	DataDir      string `envconfig:"DATA_DIR" default:"data"`
	SQLiteDBPath string `envconfig:"SQLITE_DB_PATH" default:"./data/tyotilasto.db"`

	// Firestore
	FirestoreProjectID        string `envconfig:"FIRESTORE_PROJECT_ID"`
	FirestoreDatabase         string `envconfig:"FIRESTORE_DATABASE" default:"(default)"`
	FirestoreSeriesCollection string `envconfig:"FIRESTORE_SERIES_COLLECTION" default:"unemployment_general_summary" validate:"required"`
	FirestoreReportCollection string `envconfig:"FIRESTORE_REPORT_COLLECTION" default:"monthly_reports" validate:"required"`
	FirestoreEmulatorHost     string `envconfig:"FIRESTORE_EMULATOR_HOST"`

	// Service account sources, first non-empty wins.
	GoogleServiceAccountJSON     string `envconfig:"GOOGLE_SERVICE_ACCOUNT_JSON"`
	GoogleServiceAccountFile     string `envconfig:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	GoogleApplicationCredentials string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseCredentialsBase64    string `envconfig:"FIREBASE_CREDENTIALS_BASE64"`

	// Summary
	CatalogFile      string        `envconfig:"CATALOG_FILE"`
	TrendYearMatch   string        `envconfig:"TREND_YEAR_MATCH" default:"position" validate:"oneof=position calendar"`
	FetchTimeout     time.Duration `envconfig:"FETCH_TIMEOUT" default:"10s"`
	FetchConcurrency int           `envconfig:"FETCH_CONCURRENCY" default:"8" validate:"min=1,max=64"`
	SummaryCacheTTL  time.Duration `envconfig:"SUMMARY_CACHE_TTL" default:"5m"`
	RefreshInterval  time.Duration `envconfig:"REFRESH_INTERVAL" default:"1h"`

	// AMQP refresh notifications, disabled when AMQP_URL is empty.
	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"tyotilasto"`
	AMQPQueue    string `envconfig:"AMQP_QUEUE" default:"data_refreshed"`

	// News panel, disabled when empty.
	NewsFeedURL string `envconfig:"NEWS_FEED_URL" validate:"omitempty,url"`

	// Rate limiting
	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"10" validate:"gt=0"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"20" validate:"min=1"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`
}

// Load decodes the environment into a Config. It does not validate.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}
	return &cfg, nil
}

// HasGoogleCredentials reports whether any service account source is set.
func (c *Config) HasGoogleCredentials() bool {
	return c.GoogleServiceAccountJSON != "" ||
		c.GoogleServiceAccountFile != "" ||
		c.GoogleApplicationCredentials != "" ||
		c.FirebaseCredentialsBase64 != ""
}

var validate = newValidator()

// newValidator reports fields by their environment variable names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("envconfig"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Validate validates the configuration and returns an error listing every problem.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				problems = append(problems, describe(fe))
			}
		} else {
			problems = append(problems, err.Error())
		}
	}

	switch c.DataBackend {
	case "sqlite":
		if strings.TrimSpace(c.SQLiteDBPath) == "" {
			problems = append(problems, "SQLite database path cannot be empty when using sqlite backend")
		}
	case "firestore":
		if c.FirestoreEmulatorHost == "" && !c.HasGoogleCredentials() {
			problems = append(problems, "firestore backend requires GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_CREDENTIALS_BASE64")
		}
		if c.FirestoreEmulatorHost != "" && c.FirestoreProjectID == "" {
			problems = append(problems, "FIRESTORE_PROJECT_ID is required when using the Firestore emulator")
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.FetchTimeout < 100*time.Millisecond {
		problems = append(problems, fmt.Sprintf("invalid fetch timeout %v: must be at least 100ms", c.FetchTimeout))
	} else if c.FetchTimeout > 2*time.Minute {
		problems = append(problems, fmt.Sprintf("invalid fetch timeout %v: must be at most 2 minutes", c.FetchTimeout))
	}
	if c.SummaryCacheTTL < time.Second {
		problems = append(problems, fmt.Sprintf("invalid summary cache TTL %v: must be at least 1 second", c.SummaryCacheTTL))
	}
	if c.RefreshInterval != 0 && c.RefreshInterval < time.Minute {
		problems = append(problems, fmt.Sprintf("invalid refresh interval %v: must be 0 (disabled) or at least 1 minute", c.RefreshInterval))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("invalid %s '%v': must be one of [%s]", fe.Field(), fe.Value(), fe.Param())
	case "min":
		return fmt.Sprintf("invalid %s %v: must be at least %s", fe.Field(), fe.Value(), fe.Param())
	case "gt":
		return fmt.Sprintf("invalid %s %v: must be greater than %s", fe.Field(), fe.Value(), fe.Param())
	case "max":
		return fmt.Sprintf("invalid %s %v: must be at most %s", fe.Field(), fe.Value(), fe.Param())
	case "url":
		return fmt.Sprintf("invalid %s '%v': must be a URL", fe.Field(), fe.Value())
	case "required":
		return fmt.Sprintf("%s cannot be empty", fe.Field())
	}
	return fmt.Sprintf("invalid %s: failed %s", fe.Field(), fe.Tag())
}
