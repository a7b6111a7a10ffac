package core

import (
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf holds the application configuration. It is set once by LoadConfig
// at startup (and by test mains).
var Conf *Config

type (
	Config struct {
		AppName   string
		Env       string // DEV (default) | TEST | QA | PROD
		Debug     bool
		TestMode  bool
		Build     string
		SecretKey string

		DefaultFromEmail mail.Address
		SendgridApiKey   string
		RollbarToken     string

		Server ServerConfig
		Cache  CacheConfig
		Sync   SyncConfig

		// Bootstrap credentials for the platform admin and the system
		// operator; bcrypt hashes, never plaintext.
		Bootstrap BootstrapConfig
	}

	ServerConfig struct {
		Host                      string
		Addr                      string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	CacheConfig struct {
		Backend string // inmem | file
		Dir     string // file backend only
	}

	SyncConfig struct {
		// Enabled mirrors every slot write to the remote document store.
		// When false all data lives in the local cache only.
		Enabled        bool
		Backend        string // redis | postgres
		DebounceWindow time.Duration
		RedisAddr      string
		RedisPassword  string
		RedisDB        int
		PostgresDSN    string
	}

	BootstrapConfig struct {
		AdminUsername        string
		AdminPasswordHash    string
		OperatorUsername     string
		OperatorPasswordHash string
	}
)

// LoadConfig reads configuration from defaults, an optional .env.<env> file
// and environment variables (in increasing order of precedence).
func LoadConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Shule")
	v.SetDefault("secretKey", "dev-only-secret-!change-me!")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddr", ":8000")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("cacheBackend", "inmem")
	v.SetDefault("cacheDir", filepath.Join(os.TempDir(), "shule-cache"))
	v.SetDefault("syncEnabled", false)
	v.SetDefault("syncBackend", "redis")
	v.SetDefault("syncDebounceWindow", time.Second)
	v.SetDefault("redisAddr", "127.0.0.1:6379")
	v.SetDefault("redisDB", 0)
	v.SetDefault("postgresDSN", "")
	v.SetDefault("bootstrapAdminUsername", "admin")
	v.SetDefault("bootstrapAdminPasswordHash", "")
	v.SetDefault("bootstrapOperatorUsername", "operator")
	v.SetDefault("bootstrapOperatorPasswordHash", "")

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	// load .env.<env> if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		_ = godotenv.Load(dotEnvPath)
	}
	v.AutomaticEnv()

	conf := &Config{
		AppName:          v.GetString("appName"),
		Env:              env,
		Debug:            v.GetBool("debug"),
		TestMode:         env == "TEST",
		Build:            v.GetString("build"),
		SecretKey:        v.GetString("secretKey"),
		DefaultFromEmail: mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			Addr:                      v.GetString("serverAddr"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
		},
		Cache: CacheConfig{
			Backend: v.GetString("cacheBackend"),
			Dir:     v.GetString("cacheDir"),
		},
		Sync: SyncConfig{
			Enabled:        v.GetBool("syncEnabled"),
			Backend:        v.GetString("syncBackend"),
			DebounceWindow: v.GetDuration("syncDebounceWindow"),
			RedisAddr:      v.GetString("redisAddr"),
			RedisPassword:  v.GetString("redisPassword"),
			RedisDB:        v.GetInt("redisDB"),
			PostgresDSN:    v.GetString("postgresDSN"),
		},
		Bootstrap: BootstrapConfig{
			AdminUsername:        v.GetString("bootstrapAdminUsername"),
			AdminPasswordHash:    v.GetString("bootstrapAdminPasswordHash"),
			OperatorUsername:     v.GetString("bootstrapOperatorUsername"),
			OperatorPasswordHash: v.GetString("bootstrapOperatorPasswordHash"),
		},
	}
	Conf = conf
	return conf
}
