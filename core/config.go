package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf is set on the first call to NewConfig.
var Conf *Config

type (
	Config struct {
		Debug            bool
		TestMode         bool
		AppName          string
		SecretKey        string
		Env              string // DEV (local; default), TEST, QA, PROD
		Build            string
		WorkDir          string
		FrontendBaseURL  string
		DefaultFromName  string
		DefaultFromEmail string
		SendgridAPIKey   string
		RollbarToken     string

		PasswordResetTimeoutDelta time.Duration

		Server   ServerConfig
		Database DatabaseConfig
		School   SchoolConfig
		SMS      SMSConfig
	}

	ServerConfig struct {
		Host            string
		Addr            string
		DebugHost       string
		ShutdownTimeout time.Duration

		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// SchoolConfig holds the school identity used in outbound notifications.
	SchoolConfig struct {
		Name       string
		Phone      string // contact number included in alert messages
		AdminEmail string // recipient of the post-run summary email
		Timezone   string // IANA name; "today" is derived in this zone
	}

	SMSConfig struct {
		AccountSID  string
		AuthToken   string
		Sender      string // outbound E.164 number
		SendTimeout time.Duration
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("testmode", false)
	v.SetDefault("appname", "Mahudhurio")
	v.SetDefault("secretkey", "w3+u02jzp&ym#cnr5-f$8qk!dv7^g4h9x6s1t0a)e(b")
	v.SetDefault("build", "dev")
	v.SetDefault("frontendbaseurl", "http://localhost:3000")
	v.SetDefault("defaultfromname", "Mahudhurio")
	v.SetDefault("defaultfromemail", "noreply@localhost")
	v.SetDefault("passwordresettimeoutdelta", 3*24*time.Hour)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.debughost", "localhost:8001")
	v.SetDefault("server.shutdowntimeout", 5*time.Second)
	v.SetDefault("server.jwtexpirationdelta", 7*24*time.Hour)
	v.SetDefault("server.jwtrefreshexpirationdelta", 4*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.name", "mahudhurio")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.disabletls", true)

	v.SetDefault("school.name", "Mahudhurio School")
	v.SetDefault("school.phone", "")
	v.SetDefault("school.adminemail", "")
	v.SetDefault("school.timezone", "America/Toronto")

	v.SetDefault("sms.sendtimeout", 15*time.Second)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testmode", true)
	}
	v.SetDefault("env", env)
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()
	v.SetDefault("workdir", wd)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := new(Config)
	if err := v.Unmarshal(conf); err != nil {
		log.Fatalf("config.viper.Unmarshal: %v", err)
	}

	Conf = conf
	return conf
}

// DefaultFrom returns the default sender address for outbound emails.
func (c *Config) DefaultFrom() mail.Address {
	return mail.Address{Name: c.DefaultFromName, Address: c.DefaultFromEmail}
}

// Location resolves the school timezone; falls back to UTC on a bad name.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.School.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}
