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
	"github.com/kat-co/vala"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Address            string
		DebugAddress       string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
		DisableReqLogs     bool
	}

	DatabaseConfig struct {
		Engine     string // postgres | sqlite | memory
		Host       string
		Port       int
		Name       string
		User       string
		Password   string
		DisableTLS bool
		SQLitePath string
	}

	SchoolConfig struct {
		Timezone    string
		WeekStart   time.Weekday
		WeekendDays []time.Weekday
	}

	AnalyticsConfig struct {
		FetchTimeout time.Duration
		RetryDelay   time.Duration
	}

	Config struct {
		AppName         string
		Build           string
		Env             string
		Debug           bool
		TestMode        bool
		SecretKey       string
		FrontendBaseURL string
		RollbarToken    string
		SendgridAPIKey  string

		Server    ServerConfig
		Database  DatabaseConfig
		School    SchoolConfig
		Analytics AnalyticsConfig

		defaultFromEmail string
		location         *time.Location
	}
)

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
}

// Location is the school's time zone; "now" is always read in it.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func (dc DatabaseConfig) Address() string {
	return net.JoinHostPort(dc.Host, strconv.Itoa(dc.Port))
}

// NewConfig reads the configuration from defaults, an optional `config/.env.<env>` file and the environment.
// Environment variables are prefixed with the environment name, eg. `DEV_DATABASE_ENGINE`.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "Genius Smart")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("secretKey", "k2v9-aqz)ud!r$+41=mp&tr0w1(x!y)#*e7(#hd5^$sbfx3nq")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridAPIKey", "")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugAddress", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("database.engine", "memory")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "geniussmart")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.sqlitePath", "geniussmart.db")

	v.SetDefault("school.timezone", "UTC")
	v.SetDefault("school.weekStart", "sunday")
	v.SetDefault("school.weekendDays", "friday,saturday")

	v.SetDefault("analytics.fetchTimeout", 10*time.Second)
	v.SetDefault("analytics.retryDelay", 3*time.Second)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	case "QA", "PROD":
		v.SetDefault("debug", false)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		AppName:          v.GetString("appName"),
		Build:            v.GetString("build"),
		Env:              env,
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		SecretKey:        v.GetString("secretKey"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridAPIKey:   v.GetString("sendgridAPIKey"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
		Server: ServerConfig{
			Address:            v.GetString("server.address"),
			DebugAddress:       v.GetString("server.debugAddress"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
			DisableReqLogs:     v.GetBool("server.disableReqLogs"),
		},
		Database: DatabaseConfig{
			Engine:     CleanString(v.GetString("database.engine"), true /* lower */),
			Host:       v.GetString("database.host"),
			Port:       v.GetInt("database.port"),
			Name:       v.GetString("database.name"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			DisableTLS: v.GetBool("database.disableTLS"),
			SQLitePath: v.GetString("database.sqlitePath"),
		},
		School: SchoolConfig{
			Timezone: v.GetString("school.timezone"),
		},
		Analytics: AnalyticsConfig{
			FetchTimeout: v.GetDuration("analytics.fetchTimeout"),
			RetryDelay:   v.GetDuration("analytics.retryDelay"),
		},
	}

	var err error
	if conf.School.WeekStart, err = ParseWeekday(v.GetString("school.weekStart")); err != nil {
		log.Fatalf("config.school.weekStart: %v", err)
	}
	for _, day := range strings.Split(v.GetString("school.weekendDays"), ",") {
		if CleanString(day) == "" {
			continue
		}
		wd, err := ParseWeekday(day)
		if err != nil {
			log.Fatalf("config.school.weekendDays: %v", err)
		}
		conf.School.WeekendDays = append(conf.School.WeekendDays, wd)
	}
	if conf.location, err = time.LoadLocation(conf.School.Timezone); err != nil {
		log.Fatalf("config.school.timezone: %v", err)
	}

	if err = conf.validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	return conf
}

func (c *Config) validate() error {
	return vala.BeginValidation().Validate(
		vala.StringNotEmpty(c.AppName, "appName"),
		vala.StringNotEmpty(c.SecretKey, "secretKey"),
		vala.StringNotEmpty(c.Server.Address, "server.address"),
		vala.StringNotEmpty(c.Database.Engine, "database.engine"),
		vala.GreaterThan(int(c.Server.ShutdownTimeout), 0, "server.shutdownTimeout"),
	).Check()
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday parses an english weekday name (case-insensitive) or its number (Sunday=0).
func ParseWeekday(s string) (time.Weekday, error) {
	s = CleanString(s, true /* lower */)
	if wd, ok := weekdays[s]; ok {
		return wd, nil
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 6 {
		return time.Weekday(n), nil
	}
	return time.Sunday, NewArgumentError("invalid weekday: " + strconv.Quote(s))
}
