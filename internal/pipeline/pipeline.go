// Package pipeline orchestrates one lead-ingestion run: poll the mailbox for
// lead notification mail, extract and normalize the lead fields, filter
// duplicates and junk, append to the tabular sink, and advance the
// checkpoint.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadsync/internal/checkpoint"
	"github.com/sells-group/leadsync/internal/extract"
	"github.com/sells-group/leadsync/internal/mailbox"
	"github.com/sells-group/leadsync/internal/model"
	"github.com/sells-group/leadsync/internal/normalize"
	"github.com/sells-group/leadsync/internal/sink"
	"github.com/sells-group/leadsync/internal/store"
)

// DefaultBootstrap is the lookback window for a first run, when no
// checkpoint exists yet.
const DefaultBootstrap = 48 * time.Hour

// Options holds the per-run search parameters.
type Options struct {
	// Sender and Subject select the lead notification mail.
	Sender  string
	Subject string
	// InboxOnly restricts the search to the inbox, excluding archived mail.
	InboxOnly bool
	// Bootstrap is the lookback window used when no checkpoint exists.
	// Zero means DefaultBootstrap.
	Bootstrap time.Duration
}

// Pipeline runs the ingestion flow. The journal is optional; a nil journal
// disables run/lead history without affecting ingestion.
type Pipeline struct {
	opts        Options
	mail        mailbox.Client
	sink        sink.Sink
	checkpoints checkpoint.Store
	journal     store.Store
	extractor   *extract.Extractor

	now func() time.Time
}

// New creates a Pipeline with all dependencies.
func New(
	opts Options,
	mail mailbox.Client,
	snk sink.Sink,
	checkpoints checkpoint.Store,
	journal store.Store,
	extractor *extract.Extractor,
) *Pipeline {
	if opts.Bootstrap <= 0 {
		opts.Bootstrap = DefaultBootstrap
	}
	return &Pipeline{
		opts:        opts,
		mail:        mail,
		sink:        snk,
		checkpoints: checkpoints,
		journal:     journal,
		extractor:   extractor,
		now:         time.Now,
	}
}

// Run executes one ingestion pass. Candidates are processed strictly in the
// order the mail service returns them. A transport failure aborts the run and
// leaves the checkpoint untouched, so the next run re-examines the same
// window; checkpoint and journal failures only warn.
func (p *Pipeline) Run(ctx context.Context) (*model.RunReport, error) {
	log := zap.L()
	start := p.now()

	window := p.window(ctx, start)
	query := mailbox.Query{
		Sender:    p.opts.Sender,
		Subject:   p.opts.Subject,
		After:     window,
		InboxOnly: p.opts.InboxOnly,
	}
	log.Info("pipeline: starting run",
		zap.String("query", query.String()),
		zap.Time("window", window),
	)

	refs, err := p.mail.List(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: list candidates")
	}

	seen, err := p.sink.SeenIDs(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load seen identifiers")
	}

	runID := p.journalStart(ctx)
	report := &model.RunReport{Window: window}

	for _, ref := range refs {
		msg, err := p.mail.Get(ctx, ref.ID)
		if err != nil {
			err = eris.Wrapf(err, "pipeline: fetch message %s", ref.ID)
			p.journalEnd(ctx, runID, model.RunStatusFailed, report, err)
			return nil, err
		}
		report.Scanned++

		uid := messageUID(msg)
		if isDuplicate(seen, uid) {
			report.Duplicates++
			if err := p.mail.MarkRead(ctx, msg.ID); err != nil {
				err = eris.Wrapf(err, "pipeline: mark duplicate read %s", msg.ID)
				p.journalEnd(ctx, runID, model.RunStatusFailed, report, err)
				return nil, err
			}
			continue
		}

		fields := p.extractor.Extract(msg.HTML, msg.Headers)
		if !fields.Product.Known && !fields.Phone.Known && !fields.Email.Known {
			log.Warn("pipeline: no template recognized", zap.String("uid", uid))
		}

		rec := normalize.Record(fields, uid, p.now())
		if isJunk(rec) {
			report.Junk++
			log.Warn("pipeline: dropping junk lead", zap.String("uid", uid))
			if err := p.mail.MarkRead(ctx, msg.ID); err != nil {
				err = eris.Wrapf(err, "pipeline: mark junk read %s", msg.ID)
				p.journalEnd(ctx, runID, model.RunStatusFailed, report, err)
				return nil, err
			}
			continue
		}

		if err := p.sink.Append(ctx, rec); err != nil {
			err = eris.Wrapf(err, "pipeline: append lead %s", uid)
			p.journalEnd(ctx, runID, model.RunStatusFailed, report, err)
			return nil, err
		}
		// The same identifier can reappear later in this batch.
		seen[uid] = struct{}{}
		p.journalLead(ctx, runID, rec)

		if err := p.mail.MarkRead(ctx, msg.ID); err != nil {
			err = eris.Wrapf(err, "pipeline: mark read %s", msg.ID)
			p.journalEnd(ctx, runID, model.RunStatusFailed, report, err)
			return nil, err
		}
		report.Appended++
		log.Info("pipeline: lead appended",
			zap.String("uid", uid),
			zap.String("name", rec.Name.Or()),
			zap.String("product", rec.Product.Or()),
		)
	}

	if err := p.checkpoints.Write(ctx, start); err != nil {
		log.Warn("pipeline: checkpoint write failed", zap.Error(err))
	}
	p.journalEnd(ctx, runID, model.RunStatusComplete, report, nil)

	log.Info("pipeline: run complete",
		zap.Int("scanned", report.Scanned),
		zap.Int("appended", report.Appended),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("junk", report.Junk),
	)
	return report, nil
}

// window resolves the search window start: the stored checkpoint when one
// exists, else the bootstrap lookback. Checkpoint read failure degrades to
// bootstrap rather than aborting.
func (p *Pipeline) window(ctx context.Context, now time.Time) time.Time {
	since, err := p.checkpoints.Read(ctx)
	if err != nil {
		zap.L().Warn("pipeline: checkpoint read failed", zap.Error(err))
		since = time.Time{}
	}
	if since.IsZero() {
		return now.Add(-p.opts.Bootstrap)
	}
	return since
}

// messageUID returns the deduplication identifier for a message: the native
// Message-ID header when present, else the transport message id.
func messageUID(msg *mailbox.Message) string {
	if id := msg.Headers.Get("Message-ID"); id != "" {
		return id
	}
	return msg.ID
}

func isDuplicate(seen map[string]struct{}, uid string) bool {
	_, ok := seen[uid]
	return ok
}

// isJunk reports whether a record carries too little contact information to
// act on: neither a name nor a phone number.
func isJunk(rec model.Record) bool {
	return !rec.Name.Known && !rec.Phone.Known
}

// journalStart records the run start; returns "" when no journal is
// configured or the write fails.
func (p *Pipeline) journalStart(ctx context.Context) string {
	if p.journal == nil {
		return ""
	}
	run, err := p.journal.CreateRun(ctx)
	if err != nil {
		zap.L().Warn("pipeline: journal create run failed", zap.Error(err))
		return ""
	}
	return run.ID
}

func (p *Pipeline) journalLead(ctx context.Context, runID string, rec model.Record) {
	if p.journal == nil || runID == "" {
		return
	}
	if _, err := p.journal.RecordLead(ctx, runID, rec); err != nil {
		zap.L().Warn("pipeline: journal lead failed",
			zap.String("uid", rec.UID), zap.Error(err))
	}
}

func (p *Pipeline) journalEnd(ctx context.Context, runID string, status model.RunStatus, report *model.RunReport, runErr error) {
	if p.journal == nil || runID == "" {
		return
	}
	var msg string
	if runErr != nil {
		msg = runErr.Error()
	}
	if err := p.journal.CompleteRun(ctx, runID, status, report, msg); err != nil {
		zap.L().Warn("pipeline: journal complete run failed", zap.Error(err))
	}
}
