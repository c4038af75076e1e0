package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		ReadTimeout               time.Duration
		WriteTimeout              time.Duration
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		SiteDir                   string // static HTML pages translated on the fly
		PartnerRedirect           string
	}

	DatabaseConfig struct {
		Engine          string
		Host            string
		Port            string
		Name            string
		User            string
		Password        string
		AdminUser       string
		AdminPassword   string
		DisableTLS      bool
		ConnectAttempts int
	}

	DashboardConfig struct {
		PageSize int
	}

	LearningConfig struct {
		ContentDir     string
		SessionTTL     time.Duration
		FlashcardsPage int
	}

	I18nConfig struct {
		DefaultLanguage string
		CookieName      string
	}

	Config struct {
		AppName          string
		Env              string // DEV (local; default), TEST, QA, PROD
		Build            string
		Debug            bool
		TestMode         bool
		SecretKey        string
		RollbarToken     string
		SendgridApiKey   string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address

		Server    ServerConfig
		Database  DatabaseConfig
		Dashboard DashboardConfig
		Learning  LearningConfig
		I18n      I18nConfig
	}
)

// Address returns the "host:port" the database listens on.
func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", true)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "Kind Heart's Sangam Foundation")
	v.SetDefault("secretKey", "k1nd-h3art$-s@ngam_d3v-0nly=2c(#yg4h^$cegm2emy")
	v.SetDefault("defaultFromEmail", "Kind Heart's Sangam Foundation <noreply@localhost>")
	v.SetDefault("frontendBaseURL", "http://localhost:8000")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.siteDir", "site")
	v.SetDefault("server.partnerRedirect", "/pages/dashboard.html")

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "sangam")
	v.SetDefault("database.user", "sangam")
	v.SetDefault("database.password", "sangam")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.connectAttempts", 30)

	v.SetDefault("dashboard.pageSize", 10)

	v.SetDefault("learning.contentDir", filepath.Join("site", "learning"))
	v.SetDefault("learning.sessionTTL", 8*time.Hour)
	v.SetDefault("learning.flashcardsPage", 5)

	v.SetDefault("i18n.defaultLanguage", "en")
	v.SetDefault("i18n.cookieName", "selectedLanguage")
}

// NewConfig loads the configuration of the current environment (ENV).
// Values are read, by increasing priority, from defaults, `config/.env.<env>` and the environment,
// where keys are prefixed with the env name (e.g. PROD_DATABASE_HOST).
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
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

	return configFrom(env, v)
}

func configFrom(env string, v *viper.Viper) *Config {
	from, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		log.Fatalf("config.defaultFromEmail: %v", err)
	}

	return &Config{
		AppName:          v.GetString("appName"),
		Env:              env,
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		SecretKey:        v.GetString("secretKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		FrontendBaseURL:  strings.TrimSuffix(v.GetString("frontendBaseURL"), "/"),
		DefaultFromEmail: *from,
		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			Address:                   v.GetString("server.address"),
			DebugHost:                 v.GetString("server.debugHost"),
			ReadTimeout:               v.GetDuration("server.readTimeout"),
			WriteTimeout:              v.GetDuration("server.writeTimeout"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
			SiteDir:                   v.GetString("server.siteDir"),
			PartnerRedirect:           v.GetString("server.partnerRedirect"),
		},
		Database: DatabaseConfig{
			Engine:          v.GetString("database.engine"),
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			Name:            v.GetString("database.name"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			AdminUser:       v.GetString("database.adminUser"),
			AdminPassword:   v.GetString("database.adminPassword"),
			DisableTLS:      v.GetBool("database.disableTLS"),
			ConnectAttempts: v.GetInt("database.connectAttempts"),
		},
		Dashboard: DashboardConfig{
			PageSize: v.GetInt("dashboard.pageSize"),
		},
		Learning: LearningConfig{
			ContentDir:     v.GetString("learning.contentDir"),
			SessionTTL:     v.GetDuration("learning.sessionTTL"),
			FlashcardsPage: v.GetInt("learning.flashcardsPage"),
		},
		I18n: I18nConfig{
			DefaultLanguage: v.GetString("i18n.defaultLanguage"),
			CookieName:      v.GetString("i18n.cookieName"),
		},
	}
}

// NewTestConfig returns the configuration used by tests: defaults only, TEST mode.
func NewTestConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)
	v.Set("testMode", true)
	v.Set("secretKey", "secret")
	return configFrom("TEST", v)
}
