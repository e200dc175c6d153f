// Package imap implements the mailbox transport over IMAP, for lead
// mailboxes that are not hosted on Gmail.
package imap

import (
	"context"
	"strconv"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadsync/internal/mailbox"
)

// Config holds IMAP connection settings.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	TLS      bool
}

// Client implements mailbox.Client over IMAP. Each operation dials a fresh
// connection; runs are short and infrequent, so connection reuse is not
// worth the session bookkeeping.
type Client struct {
	cfg Config
}

// New creates an IMAP mailbox client.
func New(cfg Config) *Client {
	return &Client{cfg: cfg}
}

var _ mailbox.Client = (*Client)(nil)

func (c *Client) connect(_ context.Context) (*imapclient.Client, error) {
	addr := c.cfg.Host + ":" + c.cfg.Port

	var cl *imapclient.Client
	var err error
	if c.cfg.TLS {
		cl, err = imapclient.DialTLS(addr, nil)
	} else {
		cl, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "imap: dial %s", addr)
	}

	if err := cl.Login(c.cfg.Username, c.cfg.Password).Wait(); err != nil {
		_ = cl.Logout().Wait()
		return nil, eris.Wrapf(err, "imap: login %s", c.cfg.Username)
	}
	return cl, nil
}

// List searches INBOX for messages matching the query. Sender and subject
// map to header criteria; the lower bound maps to SINCE, which is
// day-granular by protocol, matching the query grammar.
func (c *Client) List(ctx context.Context, q mailbox.Query) ([]mailbox.Ref, error) {
	cl, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cl.Logout().Wait() }()

	if _, err := cl.Select("INBOX", nil).Wait(); err != nil {
		return nil, eris.Wrap(err, "imap: select inbox")
	}

	criteria := &imap.SearchCriteria{}
	if !q.After.IsZero() {
		criteria.Since = q.After
	}
	if q.Sender != "" {
		criteria.Header = append(criteria.Header, imap.SearchCriteriaHeaderField{
			Key: "From", Value: q.Sender,
		})
	}
	if q.Subject != "" {
		criteria.Header = append(criteria.Header, imap.SearchCriteriaHeaderField{
			Key: "Subject", Value: q.Subject,
		})
	}

	data, err := cl.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, eris.Wrap(err, "imap: search")
	}

	var refs []mailbox.Ref
	for _, uid := range data.AllUIDs() {
		refs = append(refs, mailbox.Ref{ID: strconv.FormatUint(uint64(uid), 10)})
	}
	return refs, nil
}

// Get fetches the full message for the given UID. Uses BODY.PEEK so the
// fetch itself does not flip the \Seen flag; MarkRead does that explicitly.
func (c *Client) Get(ctx context.Context, id string) (*mailbox.Message, error) {
	uid, err := parseUID(id)
	if err != nil {
		return nil, err
	}

	cl, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cl.Logout().Wait() }()

	if _, err := cl.Select("INBOX", nil).Wait(); err != nil {
		return nil, eris.Wrap(err, "imap: select inbox")
	}

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchCmd := cl.Fetch(imap.UIDSetNum(uid), &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	})
	defer fetchCmd.Close()

	fetched := fetchCmd.Next()
	if fetched == nil {
		return nil, eris.Errorf("imap: message uid %s not found", id)
	}
	buf, err := fetched.Collect()
	if err != nil {
		return nil, eris.Wrap(err, "imap: collect message")
	}

	raw := buf.FindBodySection(bodySection)
	if raw == nil {
		return nil, eris.Errorf("imap: message uid %s has no body", id)
	}

	headers, html := parseRawMessage(raw)
	msg := &mailbox.Message{
		ID:      id,
		HTML:    html,
		Headers: headers,
	}

	if err := fetchCmd.Close(); err != nil {
		return msg, eris.Wrap(err, "imap: close fetch")
	}
	return msg, nil
}

// MarkRead sets \Seen on the message.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	uid, err := parseUID(id)
	if err != nil {
		return err
	}

	cl, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = cl.Logout().Wait() }()

	if _, err := cl.Select("INBOX", nil).Wait(); err != nil {
		return eris.Wrap(err, "imap: select inbox")
	}

	storeCmd := cl.Store(imap.UIDSetNum(uid), &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil)
	if err := storeCmd.Close(); err != nil {
		return eris.Wrapf(err, "imap: mark read uid %s", id)
	}
	return nil
}

func parseUID(id string) (imap.UID, error) {
	n, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return 0, eris.Wrapf(err, "imap: invalid uid %q", id)
	}
	return imap.UID(n), nil
}
