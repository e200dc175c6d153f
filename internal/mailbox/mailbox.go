// Package mailbox defines the mail-service boundary the pipeline polls.
// Transport implementations live in the gmail and imap subpackages.
package mailbox

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Header is one message header.
type Header struct {
	Name  string
	Value string
}

// HeaderList preserves header order and offers case-insensitive lookup.
type HeaderList []Header

// Get returns the first header value matching name (case-insensitive),
// or "" when absent.
func (h HeaderList) Get(name string) string {
	for _, hdr := range h {
		if strings.EqualFold(hdr.Name, name) {
			return hdr.Value
		}
	}
	return ""
}

// Ref identifies one candidate message.
type Ref struct {
	ID string
}

// Message is one fetched message, scoped to a single pipeline iteration.
type Message struct {
	ID      string
	HTML    string
	Headers HeaderList
}

// Query bounds a candidate search.
type Query struct {
	Sender    string
	Subject   string
	After     time.Time
	InboxOnly bool
}

// String renders the query in the mail service's search grammar:
// from:<sender> subject:<token> after:<YYYY/MM/DD> [in:inbox].
// The lower bound is day-granular on purpose; overlap across runs is
// resolved by the identifier dedup step.
func (q Query) String() string {
	var parts []string
	if q.Sender != "" {
		parts = append(parts, "from:"+q.Sender)
	}
	if q.Subject != "" {
		parts = append(parts, "subject:"+q.Subject)
	}
	if !q.After.IsZero() {
		parts = append(parts, fmt.Sprintf("after:%s", q.After.Format("2006/01/02")))
	}
	if q.InboxOnly {
		parts = append(parts, "in:inbox")
	}
	return strings.Join(parts, " ")
}

// Client is the mail transport consumed by the pipeline.
type Client interface {
	// List returns references to all messages matching the query.
	// An empty result is a valid outcome, not an error.
	List(ctx context.Context, q Query) ([]Ref, error)

	// Get retrieves the full message content and headers.
	Get(ctx context.Context, id string) (*Message, error)

	// MarkRead marks the message as consumed.
	MarkRead(ctx context.Context, id string) error
}
