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

type (
	Config struct {
		Debug     bool
		TestMode  bool
		Env       string // DEV (local; default), TEST, QA, PROD
		Build     string
		AppName   string
		SecretKey string
		WorkDir   string

		FrontendBaseURL  string
		defaultFromEmail string
		opsEmail         string
		SendgridApiKey   string
		RollbarToken     string

		JWTExpirationDelta time.Duration

		Server       ServerConfig
		Database     DatabaseConfig
		Calendar     CalendarConfig
		Conferencing ConferencingConfig
	}

	ServerConfig struct {
		Host            string
		Port            string
		DebugHost       string
		ShutdownTimeout time.Duration
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

	CalendarConfig struct {
		BaseURL string
		Timeout time.Duration
	}

	ConferencingConfig struct {
		BaseURL string
		Token   string
		Timeout time.Duration
	}
)

func (c ServerConfig) Address() string   { return c.Host + ":" + c.Port }
func (c DatabaseConfig) Address() string { return c.Host + ":" + c.Port }

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
}

// OpsEmail is the operations inbox receiving cycle summary notifications.
func (c *Config) OpsEmail() mail.Address {
	return mail.Address{Name: c.AppName + " Ops", Address: c.opsEmail}
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Kelasi")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "+2y#*t0)d=8wfcp7eb#(13-x9m&k5qz@4h_ju6!vng$rsa%l^o")
	conf.SetDefault("frontendBaseUrl", "http://localhost:3000")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("opsEmail", "ops@localhost")
	conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)

	conf.SetDefault("server.host", "0.0.0.0")
	conf.SetDefault("server.port", "8000")
	conf.SetDefault("server.debugHost", "0.0.0.0:4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)

	conf.SetDefault("database.engine", "postgres")
	conf.SetDefault("database.name", "kelasi")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.disableTls", true)

	conf.SetDefault("calendar.timeout", 10*time.Second)
	conf.SetDefault("conferencing.timeout", 10*time.Second)

	env := os.Getenv("ENV")
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetDefault("env", env)
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:     conf.GetBool("debug"),
		TestMode:  conf.GetBool("testMode"),
		Env:       conf.GetString("env"),
		Build:     conf.GetString("build"),
		AppName:   conf.GetString("appName"),
		SecretKey: conf.GetString("secretKey"),
		WorkDir:   wd,

		FrontendBaseURL:  conf.GetString("frontendBaseUrl"),
		defaultFromEmail: conf.GetString("defaultFromEmail"),
		opsEmail:         conf.GetString("opsEmail"),
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		RollbarToken:     conf.GetString("rollbarToken"),

		JWTExpirationDelta: conf.GetDuration("jwtExpirationDelta"),

		Server: ServerConfig{
			Host:            conf.GetString("server.host"),
			Port:            conf.GetString("server.port"),
			DebugHost:       conf.GetString("server.debugHost"),
			ShutdownTimeout: conf.GetDuration("server.shutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("database.engine"),
			Name:          conf.GetString("database.name"),
			Host:          conf.GetString("database.host"),
			Port:          conf.GetString("database.port"),
			User:          conf.GetString("database.user"),
			Password:      conf.GetString("database.password"),
			AdminUser:     conf.GetString("database.adminUser"),
			AdminPassword: conf.GetString("database.adminPassword"),
			DisableTLS:    conf.GetBool("database.disableTls"),
		},
		Calendar: CalendarConfig{
			BaseURL: conf.GetString("calendar.baseUrl"),
			Timeout: conf.GetDuration("calendar.timeout"),
		},
		Conferencing: ConferencingConfig{
			BaseURL: conf.GetString("conferencing.baseUrl"),
			Token:   conf.GetString("conferencing.token"),
			Timeout: conf.GetDuration("conferencing.timeout"),
		},
	}
}
