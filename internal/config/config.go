package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server ServerConfig
	MCP    MCPConfig
	Neo4j  Neo4jConfig
	GDC    GDCConfig
	Loader LoaderConfig
	LLM    LLMConfig
	Valkey ValkeyConfig
	MinIO  MinIOConfig
	S3     S3Config
	Auth   AuthConfig
	Log    LogConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type MCPConfig struct {
	Addr string
	// BaseURL is the public URL of the MCP server, used for protected
	// resource metadata when auth is enabled.
	BaseURL string
}

// AuthConfig enables OIDC bearer-token auth on the API and MCP servers.
type AuthConfig struct {
	Enabled      bool
	IssuerURL    string
	PublicIssuer string
	Audience     string
}

// Neo4jConfig holds the graph store connection. URI wins over Host/Port when set.
type Neo4jConfig struct {
	URI      string
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

func (n Neo4jConfig) ConnURI() string {
	if n.URI != "" {
		return n.URI
	}
	return fmt.Sprintf("neo4j://%s:%d", n.Host, n.Port)
}

// GDCConfig describes the remote data repository and the batch to download.
type GDCConfig struct {
	BaseURL     string
	PrimarySite string
	Strategies  []string
	DataFormat  string
	BatchSize   int
	OutputDir   string
	Timeout     time.Duration
	CaseTTL     time.Duration
}

// LoaderConfig controls ingestion of downloaded files.
type LoaderConfig struct {
	// DataDir holds the metadata manifest and the data files it names.
	DataDir string
	// RowLimit caps the expression rows loaded per file. 0 disables the cap.
	RowLimit int
	// Strict requires relationship endpoints to exist before linking.
	Strict bool
}

type LLMConfig struct {
	APIKey         string
	Model          string
	BaseURL        string
	BedrockRegion  string
	BedrockModelID string
}

type ValkeyConfig struct {
	Addr     string
	Password string
	DB       int
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// Prefix is prepended to archived object names; S3_PREFIX should match
	// it to sync the archive back.
	Prefix string
}

type S3Config struct {
	Region   string // S3_REGION
	Bucket   string // S3_BUCKET
	Prefix   string // S3_PREFIX
	Endpoint string // S3_ENDPOINT (for MinIO/LocalStack compatibility)
}

type LogConfig struct {
	Level slog.Level
}

// DefaultRowLimit is the number of expression rows loaded per file unless
// INGEST_ROW_LIMIT overrides it.
const DefaultRowLimit = 10

func Load() (*Config, error) {
	outDir := getEnv("OUTPUT_DIRECTORY", "./data")
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT_SECS", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT_SECS", 120)) * time.Second,
		},
		MCP: MCPConfig{
			Addr:    getEnv("MCP_ADDR", ":8090"),
			BaseURL: getEnv("MCP_BASE_URL", ""),
		},
		Neo4j: Neo4jConfig{
			URI:      getEnv("NEO4J_URI", ""),
			Host:     getEnv("NEO4J_HOST", "localhost"),
			Port:     getEnvInt("NEO4J_PORT", 7687),
			User:     getEnv("NEO4J_USER", "neo4j"),
			Password: getEnv("NEO4J_PASSWORD", "gdcdatabase"),
			Database: getEnv("NEO4J_DATABASE", ""),
		},
		GDC: GDCConfig{
			BaseURL:     getEnv("GDC_BASE_URL", "https://api.gdc.cancer.gov"),
			PrimarySite: getEnv("GDC_PRIMARY_SITE", "Blood"),
			Strategies:  getEnvList("GDC_EXPERIMENTAL_STRATEGIES", []string{"RNA-Seq", "miRNA-Seq"}),
			DataFormat:  getEnv("GDC_DATA_FORMAT", "TSV"),
			BatchSize:   getEnvInt("GDC_BATCH_SIZE", 40),
			OutputDir:   outDir,
			Timeout:     time.Duration(getEnvInt("GDC_TIMEOUT_SECS", 300)) * time.Second,
			CaseTTL:     time.Duration(getEnvInt("GDC_CASE_CACHE_TTL_SECS", 3600)) * time.Second,
		},
		Loader: LoaderConfig{
			DataDir:  outDir,
			RowLimit: getEnvInt("INGEST_ROW_LIMIT", DefaultRowLimit),
			Strict:   getEnvBool("INGEST_STRICT", false),
		},
		LLM: LLMConfig{
			APIKey:         getEnv("OPENAI_API_KEY", getEnv("OPENROUTER_API_KEY", "")),
			Model:          getEnv("LLM_MODEL", ""),
			BaseURL:        getEnv("LLM_BASE_URL", ""),
			BedrockRegion:  getEnv("BEDROCK_REGION", ""),
			BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),
		},
		Valkey: ValkeyConfig{
			Addr:     getEnv("VALKEY_ADDR", ""),
			Password: getEnv("VALKEY_PASSWORD", ""),
			DB:       getEnvInt("VALKEY_DB", 0),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "gdcgraph"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			Prefix:    getEnv("MINIO_PREFIX", "gdc/"),
		},
		S3: S3Config{
			Region:   getEnv("S3_REGION", ""),
			Bucket:   getEnv("S3_BUCKET", ""),
			Prefix:   getEnv("S3_PREFIX", ""),
			Endpoint: getEnv("S3_ENDPOINT", ""),
		},
		Auth: AuthConfig{
			Enabled:      getEnvBool("AUTH_ENABLED", false),
			IssuerURL:    getEnv("AUTH_ISSUER_URL", ""),
			PublicIssuer: getEnv("AUTH_PUBLIC_ISSUER", ""),
			Audience:     getEnv("AUTH_AUDIENCE", "gdcgraph"),
		},
		Log: LogConfig{
			Level: parseLevel(getEnv("LOG_LEVEL", "info")),
		},
	}
	if cfg.Loader.RowLimit < 0 {
		return nil, fmt.Errorf("INGEST_ROW_LIMIT must be >= 0, got %d", cfg.Loader.RowLimit)
	}
	if cfg.Auth.Enabled && cfg.Auth.IssuerURL == "" {
		return nil, fmt.Errorf("AUTH_ENABLED=true but AUTH_ISSUER_URL is empty")
	}
	if cfg.GDC.BatchSize <= 0 {
		return nil, fmt.Errorf("GDC_BATCH_SIZE must be > 0, got %d", cfg.GDC.BatchSize)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
