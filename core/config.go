package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDev  = "DEV"
	EnvTest = "TEST"
	EnvQA   = "QA"
	EnvProd = "PROD"
)

type (
	ServerConfig struct {
		Host                   string
		DebugHost              string
		ShutdownTimeout        time.Duration
		SessionCookieName      string
		SessionExpirationDelta time.Duration
		SecureCookies          bool
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
	}

	AIConfig struct {
		GeminiAPIKey    string // unused by the fallback generator
		RateLimitMax    int
		RateLimitWindow time.Duration
		RateLimitStore  string // db | redis
	}

	TasksConfig struct {
		ProgressRevivesClosed bool
	}

	Config struct {
		AppName          string
		Env              string
		Build            string
		Debug            bool
		TestMode         bool
		SecretKey        string
		RollbarToken     string
		SendgridAPIKey   string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address

		EmailVerificationTimeoutDelta time.Duration

		Server   ServerConfig
		Database DatabaseConfig
		Redis    RedisConfig
		AI       AIConfig
		Tasks    TasksConfig
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Config) IsProd() bool { return c.Env == EnvProd }

func newViper(env string) *viper.Viper {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "Kazi")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", env == EnvDev)
	v.SetDefault("testMode", env == EnvTest)
	v.SetDefault("secretKey", "6z!k2m$w(ph)x9+c0@g=u_7lbq1#n-r3vj%4e^t8yfa5d*s")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("frontendBaseUrl", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("emailVerificationTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("server.host", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.sessionCookieName", "auth-token")
	v.SetDefault("server.sessionExpirationDelta", 7*24*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "kazi")
	v.SetDefault("database.user", "kazi")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTls", env == EnvDev || env == EnvTest)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("ai.geminiApiKey", "")
	v.SetDefault("ai.rateLimitMax", 10)
	v.SetDefault("ai.rateLimitWindow", 60*time.Minute)
	v.SetDefault("ai.rateLimitStore", "db")

	v.SetDefault("tasks.progressRevivesClosed", true)

	// e.g. DATABASE_HOST overrides database.host
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// loadDotEnv loads config/.env.<env> if it exists (ignore if it does not)
func loadDotEnv(env string) {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd(): %v", err)
	}
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
}

// NewConfig reads the configuration of the current ENV: DEV (local; default), TEST, QA, PROD.
func NewConfig() *Config {
	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = EnvDev
	}
	loadDotEnv(env)
	v := newViper(env)

	conf := &Config{
		AppName:         v.GetString("appName"),
		Env:             env,
		Build:           v.GetString("build"),
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		SecretKey:       v.GetString("secretKey"),
		RollbarToken:    v.GetString("rollbarToken"),
		SendgridAPIKey:  v.GetString("sendgridApiKey"),
		FrontendBaseURL: v.GetString("frontendBaseUrl"),
		DefaultFromEmail: mail.Address{
			Name:    v.GetString("appName"),
			Address: v.GetString("defaultFromEmail"),
		},
		EmailVerificationTimeoutDelta: v.GetDuration("emailVerificationTimeoutDelta"),
		Server: ServerConfig{
			Host:                   v.GetString("server.host"),
			DebugHost:              v.GetString("server.debugHost"),
			ShutdownTimeout:        v.GetDuration("server.shutdownTimeout"),
			SessionCookieName:      v.GetString("server.sessionCookieName"),
			SessionExpirationDelta: v.GetDuration("server.sessionExpirationDelta"),
			SecureCookies:          env == EnvProd,
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTls"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		AI: AIConfig{
			GeminiAPIKey:    v.GetString("ai.geminiApiKey"),
			RateLimitMax:    v.GetInt("ai.rateLimitMax"),
			RateLimitWindow: v.GetDuration("ai.rateLimitWindow"),
			RateLimitStore:  v.GetString("ai.rateLimitStore"),
		},
		Tasks: TasksConfig{
			ProgressRevivesClosed: v.GetBool("tasks.progressRevivesClosed"),
		},
	}
	return conf
}

// NewTestConfig returns the configuration used by the test suites.
func NewTestConfig() *Config {
	v := newViper(EnvTest)
	conf := &Config{
		AppName:          v.GetString("appName"),
		Env:              EnvTest,
		TestMode:         true,
		SecretKey:        "test-secret-key",
		FrontendBaseURL:  v.GetString("frontendBaseUrl"),
		DefaultFromEmail: mail.Address{Name: "Kazi", Address: "noreply@localhost"},

		EmailVerificationTimeoutDelta: 3 * 24 * time.Hour,
		Server: ServerConfig{
			SessionCookieName:      "auth-token",
			SessionExpirationDelta: 7 * 24 * time.Hour,
			ShutdownTimeout:        time.Second,
		},
		AI: AIConfig{
			RateLimitMax:    10,
			RateLimitWindow: 60 * time.Minute,
			RateLimitStore:  "db",
		},
		Tasks: TasksConfig{ProgressRevivesClosed: true},
	}
	return conf
}
