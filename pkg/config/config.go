package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App            AppConfig
	Server         ServerConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	Recommendation RecommendationConfig
	CopyService    CopyServiceConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string

	// APIKey guards the write routes; empty disables the check.
	APIKey string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
}

const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
	CacheBackendNone   = "none"
)

type RecommendationConfig struct {
	Epsilon float64

	WeightPopularity float64
	WeightRelevance  float64
	WeightRecency    float64
	WeightDiversity  float64

	Limit             int
	FetchTimeout      time.Duration
	EnrichTimeout     time.Duration
	EnrichConcurrency int
	ComputeTimeout    time.Duration

	CacheBackend    string
	CacheOpTimeout  time.Duration
	MemoryCacheSize int

	EmbeddingDimension int
}

type CopyServiceConfig struct {
	// BaseURL empty means offline template copy only.
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := getInt("REDIS_DB", 0)
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	reco, err := loadRecommendation()
	if err != nil {
		return nil, err
	}

	copyTimeout, err := getDuration("COPY_SERVICE_TIMEOUT", 3*time.Second)
	if err != nil {
		return nil, err
	}
	copyRate, err := getFloat("COPY_SERVICE_RATE", 20)
	if err != nil {
		return nil, err
	}
	copyBurst, err := getInt("COPY_SERVICE_BURST", 40)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Recommendation Engine"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			APIKey:      getEnv("API_KEY", ""),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", ""),
			Name:        getEnv("DB_NAME", "recommendations"),
			SSLMode:     getEnv("DB_SSL_MODE", "disable"),
			AutoMigrate: getEnv("DB_AUTO_MIGRATE", "true") == "true",
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
			KeyPrefix:     getEnv("REDIS_KEY_PREFIX", "reco"),
		},
		Recommendation: reco,
		CopyService: CopyServiceConfig{
			BaseURL:       getEnv("COPY_SERVICE_URL", ""),
			APIKey:        getEnv("COPY_SERVICE_API_KEY", ""),
			Timeout:       copyTimeout,
			RatePerSecond: copyRate,
			Burst:         copyBurst,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadRecommendation() (RecommendationConfig, error) {
	var (
		rc   RecommendationConfig
		errs []error
	)

	float := func(key string, def float64) float64 {
		v, err := getFloat(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	integer := func(key string, def int) int {
		v, err := getInt(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	duration := func(key string, def time.Duration) time.Duration {
		v, err := getDuration(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	rc.Epsilon = float("RECO_EPSILON", 0.1)
	rc.WeightPopularity = float("RECO_WEIGHT_POPULARITY", 0.3)
	rc.WeightRelevance = float("RECO_WEIGHT_RELEVANCE", 0.4)
	rc.WeightRecency = float("RECO_WEIGHT_RECENCY", 0.2)
	rc.WeightDiversity = float("RECO_WEIGHT_DIVERSITY", 0.1)
	rc.Limit = integer("RECO_LIMIT", 10)
	rc.FetchTimeout = duration("RECO_FETCH_TIMEOUT", 2*time.Second)
	rc.EnrichTimeout = duration("RECO_ENRICH_TIMEOUT", 1500*time.Millisecond)
	rc.EnrichConcurrency = integer("RECO_ENRICH_CONCURRENCY", 4)
	rc.ComputeTimeout = duration("RECO_COMPUTE_TIMEOUT", 5*time.Second)
	rc.CacheBackend = strings.ToLower(getEnv("RECO_CACHE_BACKEND", CacheBackendRedis))
	rc.CacheOpTimeout = duration("RECO_CACHE_TIMEOUT", 500*time.Millisecond)
	rc.MemoryCacheSize = integer("RECO_MEMORY_CACHE_SIZE", 10000)
	rc.EmbeddingDimension = integer("RECO_EMBEDDING_DIM", 64)

	return rc, errors.Join(errs...)
}

// Validate fails fast on settings the engine cannot run with.
func (c *Config) Validate() error {
	rc := c.Recommendation

	if math.IsNaN(rc.Epsilon) || rc.Epsilon < 0 || rc.Epsilon > 1 {
		return fmt.Errorf("RECO_EPSILON must be in [0,1], got %v", rc.Epsilon)
	}

	weights := []float64{rc.WeightPopularity, rc.WeightRelevance, rc.WeightRecency, rc.WeightDiversity}
	sum := 0.0
	for _, w := range weights {
		if math.IsNaN(w) || w < 0 || w > 1 {
			return fmt.Errorf("ranking weights must be in [0,1], got %v", weights)
		}
		sum += w
	}
	if math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("ranking weights must sum to 1.0, got %v", sum)
	}

	switch rc.CacheBackend {
	case CacheBackendRedis, CacheBackendMemory, CacheBackendNone:
	default:
		return fmt.Errorf("unknown RECO_CACHE_BACKEND %q", rc.CacheBackend)
	}

	if rc.EmbeddingDimension <= 0 {
		return errors.New("RECO_EMBEDDING_DIM must be positive")
	}

	if c.Database.Password == "" && c.App.Environment == "production" {
		return errors.New("missing database password")
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
