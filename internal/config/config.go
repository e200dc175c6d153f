package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Mail       MailConfig       `yaml:"mail" mapstructure:"mail"`
	Google     GoogleConfig     `yaml:"google" mapstructure:"google"`
	IMAP       IMAPConfig       `yaml:"imap" mapstructure:"imap"`
	Sink       SinkConfig       `yaml:"sink" mapstructure:"sink"`
	Sheet      SheetConfig      `yaml:"sheet" mapstructure:"sheet"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Journal    JournalConfig    `yaml:"journal" mapstructure:"journal"`
	Checkpoint CheckpointConfig `yaml:"checkpoint" mapstructure:"checkpoint"`
	Extract    ExtractConfig    `yaml:"extract" mapstructure:"extract"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// MailConfig selects the mail transport and the lead notification search.
type MailConfig struct {
	Transport      string `yaml:"transport" mapstructure:"transport"` // gmail | imap
	Sender         string `yaml:"sender" mapstructure:"sender"`
	Subject        string `yaml:"subject" mapstructure:"subject"`
	InboxOnly      bool   `yaml:"inbox_only" mapstructure:"inbox_only"`
	BootstrapHours int    `yaml:"bootstrap_hours" mapstructure:"bootstrap_hours"`
}

// GoogleConfig holds the OAuth refresh-token credentials shared by the Gmail
// transport and the Sheets sink.
type GoogleConfig struct {
	ClientID     string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
	RefreshToken string `yaml:"refresh_token" mapstructure:"refresh_token"`
}

// IMAPConfig holds credentials for the IMAP transport.
type IMAPConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	TLS      bool   `yaml:"tls" mapstructure:"tls"`
}

// SinkConfig selects the tabular store backend.
type SinkConfig struct {
	Kind string `yaml:"kind" mapstructure:"kind"` // sheets | notion
}

// SheetConfig configures the Google Sheets sink.
type SheetConfig struct {
	SpreadsheetID string `yaml:"spreadsheet_id" mapstructure:"spreadsheet_id"`
	SheetName     string `yaml:"sheet_name" mapstructure:"sheet_name"`
	IDColumn      string `yaml:"id_column" mapstructure:"id_column"`
	IDHeader      string `yaml:"id_header" mapstructure:"id_header"`
}

// NotionConfig configures the Notion sink.
type NotionConfig struct {
	Token  string `yaml:"token" mapstructure:"token"`
	LeadDB string `yaml:"lead_db" mapstructure:"lead_db"`
}

// JournalConfig configures the local run/lead journal. An empty driver
// disables journaling.
type JournalConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // sqlite | postgres | ""
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// CheckpointConfig locates the checkpoint file.
type CheckpointConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ExtractConfig locates the optional extraction rules file.
type ExtractConfig struct {
	RulesPath string `yaml:"rules_path" mapstructure:"rules_path"`
}

// ServerConfig configures the trigger server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("mail.transport", "gmail")
	v.SetDefault("mail.sender", "buyleads@indiamart.com")
	v.SetDefault("mail.inbox_only", true)
	v.SetDefault("mail.bootstrap_hours", 48)
	v.SetDefault("imap.port", 993)
	v.SetDefault("imap.tls", true)
	v.SetDefault("sink.kind", "sheets")
	v.SetDefault("sheet.sheet_name", "Leads")
	v.SetDefault("sheet.id_column", "J")
	v.SetDefault("sheet.id_header", "Message ID")
	v.SetDefault("journal.driver", "sqlite")
	v.SetDefault("journal.path", "leadsync.db")
	v.SetDefault("checkpoint.path", "leadsync.checkpoint")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode needs. Modes: "sync" (one
// ingestion run), "serve" (sync plus the HTTP surface), "journal" (commands
// that only read the local journal).
func (c *Config) Validate(mode string) error {
	var problems []string

	ingest := func() {
		switch c.Mail.Transport {
		case "gmail":
			if c.Google.ClientID == "" {
				problems = append(problems, "google.client_id is required")
			}
			if c.Google.ClientSecret == "" {
				problems = append(problems, "google.client_secret is required")
			}
			if c.Google.RefreshToken == "" {
				problems = append(problems, "google.refresh_token is required")
			}
		case "imap":
			if c.IMAP.Host == "" {
				problems = append(problems, "imap.host is required")
			}
			if c.IMAP.Username == "" {
				problems = append(problems, "imap.username is required")
			}
			if c.IMAP.Password == "" {
				problems = append(problems, "imap.password is required")
			}
		default:
			problems = append(problems, "mail.transport must be gmail or imap")
		}

		if c.Mail.Sender == "" {
			problems = append(problems, "mail.sender is required")
		}

		switch c.Sink.Kind {
		case "sheets":
			if c.Sheet.SpreadsheetID == "" {
				problems = append(problems, "sheet.spreadsheet_id is required")
			}
		case "notion":
			if c.Notion.Token == "" {
				problems = append(problems, "notion.token is required")
			}
			if c.Notion.LeadDB == "" {
				problems = append(problems, "notion.lead_db is required")
			}
		default:
			problems = append(problems, "sink.kind must be sheets or notion")
		}
	}

	journal := func() {
		switch c.Journal.Driver {
		case "sqlite":
			if c.Journal.Path == "" {
				problems = append(problems, "journal.path is required")
			}
		case "postgres":
			if c.Journal.DatabaseURL == "" {
				problems = append(problems, "journal.database_url is required")
			}
		case "":
			problems = append(problems, "journal.driver is required")
		default:
			problems = append(problems, "journal.driver must be sqlite or postgres")
		}
	}

	switch mode {
	case "sync":
		ingest()
	case "serve":
		ingest()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "journal":
		journal()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
