package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	// TrustProxyHeaders controls whether X-Forwarded-For / X-Real-IP are
	// honored for client identification. Disable when the service is not
	// behind a trusted reverse proxy, otherwise rate limits are spoofable.
	TrustProxyHeaders bool `mapstructure:"TRUST_PROXY_HEADERS"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Scheduling engine tunables. The scoring weights must sum to at most
	// one on top of the base term; the optimizer trusts them as configured.
	HorizonDays          int     `mapstructure:"HORIZON_DAYS"`
	DefaultDuration      int     `mapstructure:"DEFAULT_DURATION"`
	MinConfidence        float64 `mapstructure:"MIN_CONFIDENCE"`
	BaseConfidence       float64 `mapstructure:"BASE_CONFIDENCE"`
	WeightPreferredTime  float64 `mapstructure:"WEIGHT_PREFERRED_TIME"`
	WeightFavoredWindow  float64 `mapstructure:"WEIGHT_FAVORED_WINDOW"`
	WeightSuccessRate    float64 `mapstructure:"WEIGHT_SUCCESS_RATE"`
	WeightUrgency        float64 `mapstructure:"WEIGHT_URGENCY"`
	WeightPreferredDay   float64 `mapstructure:"WEIGHT_PREFERRED_DAY"`
	ConflictSearchRadius int     `mapstructure:"CONFLICT_SEARCH_RADIUS"`
	OverridePolicy       string  `mapstructure:"OVERRIDE_POLICY"`
	MaxAlternatives      int     `mapstructure:"MAX_ALTERNATIVES"`

	// Profiling and caching.
	HistoryLimit       int `mapstructure:"HISTORY_LIMIT"`
	AggregateLookback  int `mapstructure:"AGGREGATE_LOOKBACK_DAYS"`
	ProfileCacheTTLMin int `mapstructure:"PROFILE_CACHE_TTL_MIN"`

	// Forecasting and no-show prediction.
	ForecastConfidence   float64 `mapstructure:"FORECAST_CONFIDENCE"`
	ForecastMinSamples   int     `mapstructure:"FORECAST_MIN_SAMPLES"`
	HighUtilization      float64 `mapstructure:"HIGH_UTILIZATION_THRESHOLD"`
	NoShowSmoothing      float64 `mapstructure:"NOSHOW_SMOOTHING"`
	NoShowRiskThreshold  float64 `mapstructure:"NOSHOW_RISK_THRESHOLD"`
	NoShowCancelsFlagged int     `mapstructure:"NOSHOW_CANCELS_FLAGGED"`

	// Adapter resilience.
	AdapterTimeoutSec int `mapstructure:"ADAPTER_TIMEOUT_SEC"`
	AdapterMaxRetries int `mapstructure:"ADAPTER_MAX_RETRIES"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("TRUST_PROXY_HEADERS", true)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "carebook")

	viper.SetDefault("HORIZON_DAYS", 30)
	viper.SetDefault("DEFAULT_DURATION", 30)
	viper.SetDefault("MIN_CONFIDENCE", 0.3)
	viper.SetDefault("BASE_CONFIDENCE", 0.5)
	viper.SetDefault("WEIGHT_PREFERRED_TIME", 0.30)
	viper.SetDefault("WEIGHT_FAVORED_WINDOW", 0.25)
	viper.SetDefault("WEIGHT_SUCCESS_RATE", 0.20)
	viper.SetDefault("WEIGHT_URGENCY", 0.15)
	viper.SetDefault("WEIGHT_PREFERRED_DAY", 0.10)
	viper.SetDefault("CONFLICT_SEARCH_RADIUS", 2)
	viper.SetDefault("OVERRIDE_POLICY", "most-restrictive")
	viper.SetDefault("MAX_ALTERNATIVES", 3)

	viper.SetDefault("HISTORY_LIMIT", 50)
	viper.SetDefault("AGGREGATE_LOOKBACK_DAYS", 90)
	viper.SetDefault("PROFILE_CACHE_TTL_MIN", 30)

	viper.SetDefault("FORECAST_CONFIDENCE", 0.7)
	viper.SetDefault("FORECAST_MIN_SAMPLES", 4)
	viper.SetDefault("HIGH_UTILIZATION_THRESHOLD", 0.8)
	viper.SetDefault("NOSHOW_SMOOTHING", 10.0)
	viper.SetDefault("NOSHOW_RISK_THRESHOLD", 0.3)
	viper.SetDefault("NOSHOW_CANCELS_FLAGGED", 2)

	viper.SetDefault("ADAPTER_TIMEOUT_SEC", 5)
	viper.SetDefault("ADAPTER_MAX_RETRIES", 3)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
