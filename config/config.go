// Package config handles process configuration: where structures are
// written, the database, and web app settings.  This is used by every ggsc
// subcommand.
//
// Settings come from ~/.ggsc.yaml and GGSC_* environment variables, after a
// .env file in the working directory is loaded into the environment.
package config

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"maze.io/x/duration"

	"github.com/ts4z/ggsc/payout"
)

const defaultPrefsMaxAge = 30 * 24 * time.Hour

// Init loads .env and the config file.  A missing file of either kind is
// fine.
func Init() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("can't load .env: %v", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	viper.SetConfigType("yaml")
	viper.SetConfigName(".ggsc")
	viper.AddConfigPath(home)
	viper.SetEnvPrefix("ggsc")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	setDefaults()
	err = viper.ReadInConfig() // ignore error if config file missing
	if err != nil {
		log.Printf("viper can't read config file: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("output_dir", ".")
	viper.SetDefault("default_mode", string(payout.ModeStandard))
	viper.SetDefault("listen_address", ":8080")
	viper.SetDefault("storage", "file")
	viper.SetDefault("db_url", "")
	viper.SetDefault("sql_connector", "pgx")
	viper.SetDefault("allowed_origins", []string{})
	viper.SetDefault("cookie_hash_key", "")
	viper.SetDefault("cookie_block_key", "")
	viper.SetDefault("prefs_max_age", "30d")
	viper.SetDefault("password_hash", "")
	viper.SetDefault("cache_size", 16)
	viper.SetDefault("secure_cookies", false)
}

func OutputDir() string {
	return viper.GetString("output_dir")
}

// DefaultMode is the parser used when a request doesn't name one.  A bad
// setting falls back to standard.
func DefaultMode() payout.Mode {
	m, err := payout.ParseMode(viper.GetString("default_mode"))
	if err != nil {
		log.Printf("bad default_mode, using %s: %v", payout.ModeStandard, err)
		return payout.ModeStandard
	}
	return m
}

func ListenAddress() string {
	return viper.GetString("listen_address")
}

// Storage is "file" or "db".
func Storage() string {
	return viper.GetString("storage")
}

func DBURL() string {
	return viper.GetString("db_url")
}

func SQLConnector() string {
	return viper.GetString("sql_connector")
}

func AllowedOrigins() []string {
	return viper.GetStringSlice("allowed_origins")
}

func SecureCookies() bool {
	return viper.GetBool("secure_cookies")
}

func PasswordHash() string {
	return viper.GetString("password_hash")
}

func CacheSize() int {
	if n := viper.GetInt("cache_size"); n > 0 {
		return n
	}
	return 1
}

// PrefsMaxAge is how long the web form remembers its settings.  It accepts
// day units ("30d") as well as Go durations.
func PrefsMaxAge() time.Duration {
	s := viper.GetString("prefs_max_age")
	d, err := duration.ParseDuration(s)
	if err != nil || d <= 0 {
		log.Printf("bad prefs_max_age %q, using %v", s, defaultPrefsMaxAge)
		return defaultPrefsMaxAge
	}
	return time.Duration(d)
}

// CookieHashKey and CookieBlockKey decode base64 keys.  When unset, each
// process makes up a random key, so cookies don't survive a restart.
func CookieHashKey() []byte {
	return cookieKey("cookie_hash_key", 64)
}

func CookieBlockKey() []byte {
	return cookieKey("cookie_block_key", 32)
}

func cookieKey(setting string, n int) []byte {
	if s := viper.GetString(setting); s != "" {
		k, err := base64.StdEncoding.DecodeString(s)
		if err == nil {
			return k
		}
		log.Printf("can't decode %s, using a random key: %v", setting, err)
	}
	k := make([]byte, n)
	if _, err := rand.Read(k); err != nil {
		log.Fatalf("can't generate %s: %v", setting, err)
	}
	viper.Set(setting, base64.StdEncoding.EncodeToString(k))
	return k
}
