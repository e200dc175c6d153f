package model

import "time"

// Unknown is the placeholder written to the tabular store for fields no
// extraction strategy could resolve.
const Unknown = "N/A"

// StatusNew is the lifecycle status assigned to every freshly ingested lead.
const StatusNew = "New"

// Field is an extracted value that is either known or explicitly unknown.
// The zero value is unknown.
type Field struct {
	Value string
	Known bool
}

// KnownField wraps a non-empty value. An empty or whitespace-only value
// yields an unknown field, so a known field never carries an empty string.
func KnownField(v string) Field {
	if v == "" {
		return Field{}
	}
	return Field{Value: v, Known: true}
}

// Or returns the field value, or the Unknown marker when the field is unknown.
func (f Field) Or() string {
	if !f.Known {
		return Unknown
	}
	return f.Value
}

// Fields holds the four semantic values extracted from one lead email.
type Fields struct {
	Name    Field
	Phone   Field
	Email   Field
	Product Field
}

// Record is one normalized lead ready for the tabular store. Created once
// per admitted message and never mutated afterwards.
type Record struct {
	Fields
	ProcessedAt time.Time
	Status      string
	// Notification flags start empty (pending); downstream automation fills
	// them in later.
	CallNotified     string
	MailNotified     string
	FollowupNotified string
	// UID is the identifier used for deduplication across runs: the
	// message's native Message-ID header when present, else the transport
	// message id.
	UID string
}

// RowHeader is the header row of the lead sheet. The last column holds the
// unique identifier and is the one read back to build the seen set.
var RowHeader = []string{
	"Date", "Name", "Phone", "Email", "Product",
	"Status", "Call Alert", "Mail Alert", "Follow-up", "Message ID",
}

// Row renders the record as one sheet row, in RowHeader order.
func (r Record) Row() []string {
	return []string{
		r.ProcessedAt.Format("2006-01-02 15:04:05"),
		r.Name.Or(),
		r.Phone.Or(),
		r.Email.Or(),
		r.Product.Or(),
		r.Status,
		r.CallNotified,
		r.MailNotified,
		r.FollowupNotified,
		r.UID,
	}
}

// RunReport summarizes one pipeline run.
type RunReport struct {
	Window     time.Time `json:"window"`
	Scanned    int       `json:"scanned"`
	Appended   int       `json:"appended"`
	Duplicates int       `json:"duplicates"`
	Junk       int       `json:"junk"`
}

// RunStatus is the lifecycle state of a journaled run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one journaled pipeline run.
type Run struct {
	ID        string     `json:"id"`
	Status    RunStatus  `json:"status"`
	Report    *RunReport `json:"report,omitempty"`
	Error     string     `json:"error,omitempty"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// Lead is one journaled lead row.
type Lead struct {
	ID          string    `json:"id"`
	RunID       string    `json:"run_id"`
	UID         string    `json:"uid"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Product     string    `json:"product"`
	Status      string    `json:"status"`
	ProcessedAt time.Time `json:"processed_at"`
	CreatedAt   time.Time `json:"created_at"`
}
