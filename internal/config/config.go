package config

import (
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	Env string

	// Deploy target
	BucketName    string
	Region        string
	IndexDocument string
	ErrorDocument string

	// Build collaborator
	ProjectDir string
	DistDir    string // relative to ProjectDir unless absolute
	NpmBin     string
	SkipBuild  bool

	// Storage endpoint; empty endpoint means AWS defaults
	S3Endpoint string
	S3Provider string // aws|minio|generic
	S3UseSSL   bool
	AccessKey  string
	SecretKey  string

	// Deployment history
	HistoryEnabled bool
	DBPath         string // used when DBDriver=sqlite
	DBDriver       string // sqlite|postgres
	DBDsn          string // used when DBDriver=postgres (e.g., DATABASE_URL)
	HttpPort       string
}

func Load() *Config {
	cfg := &Config{
		Env:            getEnv("APP_ENV", "dev"),
		BucketName:     getEnv("BUCKET_NAME", "color-block"),
		Region:         getEnv("AWS_REGION", "ap-south-1"),
		IndexDocument:  getEnv("INDEX_DOCUMENT", "index.html"),
		ErrorDocument:  getEnv("ERROR_DOCUMENT", "index.html"),
		ProjectDir:     getEnv("PROJECT_DIR", "."),
		DistDir:        getEnv("DIST_DIR", "dist"),
		NpmBin:         getEnv("NPM_BIN", "npm"),
		SkipBuild:      getBool("SKIP_BUILD", false),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
		S3Provider:     getEnv("S3_PROVIDER", "aws"),
		S3UseSSL:       getBool("S3_USE_SSL", true),
		AccessKey:      getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
		HistoryEnabled: getBool("HISTORY_ENABLED", true),
		DBPath:         getEnv("DB_PATH", "data/deploys.db"),
		DBDriver:       getEnv("DB_DRIVER", "sqlite"),
		DBDsn:          getEnv("DATABASE_URL", getEnv("DB_DSN", "")),
		HttpPort:       getEnv("HTTP_PORT", "8080"),
	}
	return cfg
}

// DistPath returns the build output directory, resolved against ProjectDir.
func (c *Config) DistPath() string {
	if filepath.IsAbs(c.DistDir) {
		return c.DistDir
	}
	return filepath.Join(c.ProjectDir, c.DistDir)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}
