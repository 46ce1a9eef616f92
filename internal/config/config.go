// Package config はアプリケーション設定を提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ストレージバックエンドの種別。
const (
	StorageBackendDisk = "disk"
	StorageBackendS3   = "s3"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Token
	TokenSecret string
	TokenTTL    time.Duration

	// Server
	ServerPort string
	BaseURL    string

	// CORS
	CORSAllowedOrigin string

	// Image storage
	StorageBackend string
	UploadDir      string
	AssetsDir      string
	MaxUploadSize  int64

	// S3 (STORAGE_BACKEND=s3 の場合のみ必須)
	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.TokenSecret = os.Getenv("ACCESS_TOKEN_SECRET")
	if cfg.TokenSecret == "" {
		missing = append(missing, "ACCESS_TOKEN_SECRET")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.TokenTTL = getEnvDuration("ACCESS_TOKEN_TTL", 72*time.Hour)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8000")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "*")
	cfg.StorageBackend = getEnvString("STORAGE_BACKEND", StorageBackendDisk)
	cfg.UploadDir = getEnvString("UPLOAD_DIR", "./uploads")
	cfg.AssetsDir = getEnvString("ASSETS_DIR", "./assets")
	cfg.MaxUploadSize = getEnvInt64("MAX_UPLOAD_SIZE", 10485760)

	// S3バックエンド選択時のみ必須となる設定
	switch cfg.StorageBackend {
	case StorageBackendDisk:
		// 追加設定なし
	case StorageBackendS3:
		cfg.S3Bucket = os.Getenv("S3_BUCKET")
		cfg.S3Region = os.Getenv("S3_REGION")
		cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
		cfg.S3AccessKey = os.Getenv("S3_ACCESS_KEY")
		cfg.S3SecretKey = os.Getenv("S3_SECRET_KEY")
		cfg.S3PublicBaseURL = getEnvString("S3_PUBLIC_BASE_URL", "")

		var s3missing []string
		if cfg.S3Bucket == "" {
			s3missing = append(s3missing, "S3_BUCKET")
		}
		if cfg.S3Region == "" {
			s3missing = append(s3missing, "S3_REGION")
		}
		if cfg.S3AccessKey == "" {
			s3missing = append(s3missing, "S3_ACCESS_KEY")
		}
		if cfg.S3SecretKey == "" {
			s3missing = append(s3missing, "S3_SECRET_KEY")
		}
		if len(s3missing) > 0 {
			return nil, fmt.Errorf("STORAGE_BACKEND=s3 requires environment variables: %v", s3missing)
		}
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND: %s", cfg.StorageBackend)
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
