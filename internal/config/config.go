package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var once sync.Once
var logger *zap.SugaredLogger
var loggerOnce sync.Once

// isTestRun returns true if the current process is a Go test binary.
func isTestRun() bool {
	return flag.Lookup("test.v") != nil || filepath.Ext(os.Args[0]) == ".test"
}

func initConfig() {
	once.Do(func() {
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		root, err := getProjectRoot()
		if err != nil {
			GetLogger().Errorw("Error finding project root", "error", err)
			return
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
		viper.AddConfigPath(root)
		if err = viper.ReadInConfig(); err != nil {
			GetLogger().Errorw("Error reading config file", "error", err)
		}

		if !isTestRun() {
			return
		}
		viper.SetConfigName("config_test")
		if err = viper.MergeInConfig(); err != nil {
			GetLogger().Errorw("Error merging test config file", "error", err)
		}
	})
}

func getProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func getDuration(key string, def time.Duration) time.Duration {
	initConfig()
	durStr := viper.GetString(key)
	if durStr == "" {
		return def
	}
	dur, err := time.ParseDuration(durStr)
	if err != nil {
		GetLogger().Warnw("Invalid duration in config, using default", "key", key, "value", durStr, "default", def)
		return def
	}
	return dur
}

func GetOpenWeatherApiUrl() string {
	initConfig()
	url := viper.GetString("openweathermap.api_url")
	if url == "" {
		return "https://api.openweathermap.org/data/2.5/forecast"
	}
	return url
}

func GetOpenWeatherMapAPIKey() string {
	_ = godotenv.Load()
	return os.Getenv("OPENWEATHERMAP_API_KEY")
}

// GetUpstreamTimeout bounds a single call to the forecast provider. Defaults to 10s.
func GetUpstreamTimeout() time.Duration {
	return getDuration("openweathermap.timeout", 10*time.Second)
}

func GetRedisAddr() string {
	initConfig()
	addr := viper.GetString("redis.addr")
	if addr == "" {
		return "localhost:6379"
	}
	return addr
}

func GetServerPort() string {
	initConfig()
	serverPort := viper.GetString("server.port")
	if serverPort == "" {
		return "8080"
	}
	return serverPort
}

func GetCacheExpiration() string {
	initConfig()
	return viper.GetString("cache.expiration")
}

// GetCacheTTL returns the cache expiration as a time.Duration. Defaults to 10m.
func GetCacheTTL() time.Duration {
	return getDuration("cache.expiration", 10*time.Minute)
}

func GetServerTimeout(key string) string {
	initConfig()
	return viper.GetString("server." + key)
}

// GetServerTimeoutDuration parses server.<key>, falling back to def.
func GetServerTimeoutDuration(key string, def time.Duration) time.Duration {
	return getDuration("server."+key, def)
}

// GetDefaultUnits is the unit system used when a request names none.
func GetDefaultUnits() string {
	initConfig()
	units := viper.GetString("forecast.default_units")
	if units == "" {
		return "metric"
	}
	return units
}

// GetDefaultDays is the number of forecast days used when a request names none.
func GetDefaultDays() int {
	initConfig()
	days := viper.GetInt("forecast.default_days")
	if days <= 0 {
		return 5
	}
	return days
}

// BreakerConfig controls the circuit breaker around the forecast provider.
type BreakerConfig struct {
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

func GetBreakerConfig() BreakerConfig {
	initConfig()
	failures := viper.GetUint32("breaker.consecutive_failures")
	if failures == 0 {
		failures = 5
	}
	return BreakerConfig{
		Interval:            getDuration("breaker.interval", 30*time.Second),
		Timeout:             getDuration("breaker.timeout", 15*time.Second),
		ConsecutiveFailures: failures,
	}
}

func GetTestRedisMockPort() string {
	initConfig()
	return viper.GetString("test.redis_mock_port")
}

func GetTestServerPort() string {
	initConfig()
	return viper.GetString("test.server_port")
}

// ReloadConfigForTest resets the config singleton and reloads Viper config. Use only in tests.
func ReloadConfigForTest() {
	once = sync.Once{}
	initConfig()
}

func GetLogger() *zap.SugaredLogger {
	loggerOnce.Do(func() {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		logger = l.Sugar()
	})
	return logger
}

// GetRateLimiterCleanupTimeout returns the rate limiter cleanup timeout as a time.Duration.
// Defaults to 3m if not set or invalid.
func GetRateLimiterCleanupTimeout() time.Duration {
	return getDuration("rate_limiter.cleanup_timeout", 3*time.Minute)
}

// GetTrustForwardedFor reports whether the rate limiter may take the client
// address from X-Forwarded-For. Enable only behind a proxy that sets it.
func GetTrustForwardedFor() bool {
	initConfig()
	return viper.GetBool("rate_limiter.trust_forwarded_for")
}

// GetGlobalRateLimiterConfig returns the per-minute rate and burst for the global rate limiter from config.
func GetGlobalRateLimiterConfig() (rate float64, burst int) {
	initConfig()
	rate = viper.GetFloat64("rate_limiter.global.rate")
	if rate == 0 {
		rate = 10
	}
	burst = viper.GetInt("rate_limiter.global.burst")
	if burst == 0 {
		burst = 10
	}
	return
}

// GetParamRateLimiterConfig returns the per-minute rate and burst for the param rate limiter from config.
func GetParamRateLimiterConfig() (rate float64, burst int) {
	initConfig()
	rate = viper.GetFloat64("rate_limiter.param.rate")
	if rate == 0 {
		rate = 2
	}
	burst = viper.GetInt("rate_limiter.param.burst")
	if burst == 0 {
		burst = 2
	}
	return
}
