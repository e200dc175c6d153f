package main

import (
	"context"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadsync/internal/checkpoint"
	"github.com/sells-group/leadsync/internal/extract"
	"github.com/sells-group/leadsync/internal/mailbox"
	gmailbox "github.com/sells-group/leadsync/internal/mailbox/gmail"
	imapbox "github.com/sells-group/leadsync/internal/mailbox/imap"
	"github.com/sells-group/leadsync/internal/pipeline"
	"github.com/sells-group/leadsync/internal/sink"
	notionsink "github.com/sells-group/leadsync/internal/sink/notion"
	"github.com/sells-group/leadsync/internal/sink/sheets"
	"github.com/sells-group/leadsync/internal/store"
	"github.com/sells-group/leadsync/pkg/googleauth"
	"github.com/sells-group/leadsync/pkg/notion"
)

// pipelineEnv bundles the wired pipeline and its closable dependencies.
type pipelineEnv struct {
	Pipeline *pipeline.Pipeline
	Journal  store.Store

	closers []func() error
}

func (e *pipelineEnv) Close() {
	for _, c := range e.closers {
		_ = c()
	}
}

// initPipeline wires the full ingestion environment from config. The journal
// is only wired when a driver is configured.
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if err := cfg.Validate("sync"); err != nil {
		return nil, err
	}

	mail, err := initMailbox()
	if err != nil {
		return nil, err
	}
	snk, err := initSink()
	if err != nil {
		return nil, err
	}

	env := &pipelineEnv{}
	if cfg.Journal.Driver != "" {
		journal, err := initJournal(ctx)
		if err != nil {
			return nil, err
		}
		env.Journal = journal
		env.closers = append(env.closers, journal.Close)
	}

	rules := extract.DefaultRules()
	if cfg.Extract.RulesPath != "" {
		rules, err = extract.LoadRules(cfg.Extract.RulesPath)
		if err != nil {
			return nil, eris.Wrap(err, "init: load extraction rules")
		}
	}

	env.Pipeline = pipeline.New(
		pipeline.Options{
			Sender:    cfg.Mail.Sender,
			Subject:   cfg.Mail.Subject,
			InboxOnly: cfg.Mail.InboxOnly,
			Bootstrap: time.Duration(cfg.Mail.BootstrapHours) * time.Hour,
		},
		mail,
		snk,
		checkpoint.NewFile(cfg.Checkpoint.Path),
		env.Journal,
		extract.New(rules),
	)
	return env, nil
}

func initMailbox() (mailbox.Client, error) {
	switch cfg.Mail.Transport {
	case "gmail":
		return gmailbox.New(googleTokens()), nil
	case "imap":
		return imapbox.New(imapbox.Config{
			Host:     cfg.IMAP.Host,
			Port:     strconv.Itoa(cfg.IMAP.Port),
			Username: cfg.IMAP.Username,
			Password: cfg.IMAP.Password,
			TLS:      cfg.IMAP.TLS,
		}), nil
	default:
		return nil, eris.Errorf("init: unknown mail transport %q", cfg.Mail.Transport)
	}
}

func initSink() (sink.Sink, error) {
	switch cfg.Sink.Kind {
	case "sheets":
		return sheets.New(googleTokens(), sheets.Config{
			SpreadsheetID: cfg.Sheet.SpreadsheetID,
			SheetName:     cfg.Sheet.SheetName,
			IDColumn:      cfg.Sheet.IDColumn,
			IDHeader:      cfg.Sheet.IDHeader,
		}), nil
	case "notion":
		client := notion.NewClient(cfg.Notion.Token)
		return notionsink.New(client, cfg.Notion.LeadDB), nil
	default:
		return nil, eris.Errorf("init: unknown sink kind %q", cfg.Sink.Kind)
	}
}

// initJournal opens the journal store and runs migrations.
func initJournal(ctx context.Context) (store.Store, error) {
	var (
		s   store.Store
		err error
	)
	switch cfg.Journal.Driver {
	case "sqlite":
		s, err = store.NewSQLite(cfg.Journal.Path)
	case "postgres":
		s, err = store.NewPostgres(ctx, cfg.Journal.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("init: unknown journal driver %q", cfg.Journal.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func googleTokens() googleauth.TokenSource {
	return googleauth.NewRefreshSource(
		cfg.Google.ClientID,
		cfg.Google.ClientSecret,
		cfg.Google.RefreshToken,
	)
}
