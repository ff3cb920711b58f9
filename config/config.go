package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"platewise_server/models"
)

// Store backends
const (
	StoreDynamoDB = "dynamodb"
	StoreMemory   = "memory"
)

// Config is built once at startup and passed to whatever performs I/O
type Config struct {
	Port               string `validate:"required,numeric"`
	AWSRegion          string `validate:"required_if=StoreBackend dynamodb"`
	DynamoEndpoint     string `validate:"omitempty,url"`
	UsersTable         string `validate:"required"`
	HistoryTable       string `validate:"required"`
	StoreBackend       string `validate:"oneof=dynamodb memory"`
	S3BucketName       string
	RedisURL           string        `validate:"omitempty,url"`
	LockTTL            time.Duration `validate:"gt=0"`
	LogMode            string
	LogRedaction       bool
	LogHashSalt        string
	CORSAllowedOrigins []string
}

// Load reads .env (if present) and the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an arbitrary variable source
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(name, def string) string {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	lockTTL, err := time.ParseDuration(get("LOCK_TTL", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOCK_TTL: %w", err)
	}
	redaction, err := strconv.ParseBool(get("LOG_REDACTION_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_REDACTION_ENABLED: %w", err)
	}

	cfg := &Config{
		Port:               get("PORT", "8080"),
		AWSRegion:          get("AWS_REGION", ""),
		DynamoEndpoint:     get("DYNAMODB_ENDPOINT", ""),
		UsersTable:         get("USERS_TABLE", models.UsersTable),
		HistoryTable:       get("HISTORY_TABLE", models.MealHistoryTable),
		StoreBackend:       strings.ToLower(get("STORE_BACKEND", StoreDynamoDB)),
		S3BucketName:       get("S3_BUCKET_NAME", ""),
		RedisURL:           get("REDIS_URL", ""),
		LockTTL:            lockTTL,
		LogMode:            get("LOG_MODE", "dev"),
		LogRedaction:       redaction,
		LogHashSalt:        get("LOG_HASH_SALT", ""),
		CORSAllowedOrigins: splitList(get("CORS_ALLOWED_ORIGINS", "*")),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
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
