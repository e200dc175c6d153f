package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gmail", cfg.Mail.Transport)
	assert.Equal(t, "buyleads@indiamart.com", cfg.Mail.Sender)
	assert.True(t, cfg.Mail.InboxOnly)
	assert.Equal(t, 48, cfg.Mail.BootstrapHours)
	assert.Equal(t, "sheets", cfg.Sink.Kind)
	assert.Equal(t, "Leads", cfg.Sheet.SheetName)
	assert.Equal(t, "Message ID", cfg.Sheet.IDHeader)
	assert.Equal(t, "sqlite", cfg.Journal.Driver)
	assert.Equal(t, 993, cfg.IMAP.Port)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	os.Setenv("LEADSYNC_MAIL_TRANSPORT", "imap")
	os.Setenv("LEADSYNC_SHEET_SPREADSHEET_ID", "sheet-from-env")
	defer os.Unsetenv("LEADSYNC_MAIL_TRANSPORT")
	defer os.Unsetenv("LEADSYNC_SHEET_SPREADSHEET_ID")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "imap", cfg.Mail.Transport)
	assert.Equal(t, "sheet-from-env", cfg.Sheet.SpreadsheetID)
}

// validSync returns a Config that passes "sync" validation on the Gmail +
// Sheets path.
func validSync() *Config {
	cfg := &Config{}
	cfg.Mail.Transport = "gmail"
	cfg.Mail.Sender = "buyleads@indiamart.com"
	cfg.Google.ClientID = "id"
	cfg.Google.ClientSecret = "secret"
	cfg.Google.RefreshToken = "refresh"
	cfg.Sink.Kind = "sheets"
	cfg.Sheet.SpreadsheetID = "sheet-1"
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateSync_AllPresent(t *testing.T) {
	assert.NoError(t, validSync().Validate("sync"))
}

func TestValidateSync_MissingGoogleCreds(t *testing.T) {
	cfg := validSync()
	cfg.Google.ClientSecret = ""
	cfg.Google.RefreshToken = ""

	err := cfg.Validate("sync")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "google.client_secret is required")
	assert.Contains(t, err.Error(), "google.refresh_token is required")
}

func TestValidateSync_IMAPTransport(t *testing.T) {
	cfg := validSync()
	cfg.Mail.Transport = "imap"

	err := cfg.Validate("sync")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "imap.host is required")

	cfg.IMAP.Host = "imap.example.com"
	cfg.IMAP.Username = "user"
	cfg.IMAP.Password = "pass"
	assert.NoError(t, cfg.Validate("sync"))
}

func TestValidateSync_UnknownTransport(t *testing.T) {
	cfg := validSync()
	cfg.Mail.Transport = "pop3"

	err := cfg.Validate("sync")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mail.transport must be gmail or imap")
}

func TestValidateSync_NotionSink(t *testing.T) {
	cfg := validSync()
	cfg.Sink.Kind = "notion"

	err := cfg.Validate("sync")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notion.token is required")
	assert.Contains(t, err.Error(), "notion.lead_db is required")

	cfg.Notion.Token = "ntn_token"
	cfg.Notion.LeadDB = "db-1"
	assert.NoError(t, cfg.Validate("sync"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validSync()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateJournal(t *testing.T) {
	cfg := &Config{}
	cfg.Journal.Driver = "sqlite"
	cfg.Journal.Path = "leadsync.db"
	assert.NoError(t, cfg.Validate("journal"))

	cfg.Journal.Path = ""
	assert.Error(t, cfg.Validate("journal"))

	cfg.Journal.Driver = "postgres"
	assert.Error(t, cfg.Validate("journal"))
	cfg.Journal.DatabaseURL = "postgres://localhost/leadsync"
	assert.NoError(t, cfg.Validate("journal"))
}

func TestValidateUnknownMode(t *testing.T) {
	err := validSync().Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestInitLoggerJSON(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.NotNil(t, zap.L())
}

func TestInitLoggerConsole(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	assert.Error(t, InitLogger(LogConfig{Level: "invalid", Format: "json"}))
}
