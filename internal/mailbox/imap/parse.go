package imap

import (
	"bytes"
	"io"
	"strings"

	"github.com/emersion/go-message/mail"

	"github.com/sells-group/leadsync/internal/mailbox"
)

// parseRawMessage parses a raw RFC 5322 message into the header list and
// the text/html body part. A message that cannot be parsed yields empty
// results rather than an error; the extractor degrades to header-only
// strategies in that case.
func parseRawMessage(raw []byte) (mailbox.HeaderList, string) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return nil, ""
	}
	defer mr.Close()

	var headers mailbox.HeaderList
	fields := mr.Header.Fields()
	for fields.Next() {
		v, err := fields.Text()
		if err != nil {
			v = fields.Value()
		}
		headers = append(headers, mailbox.Header{Name: fields.Key(), Value: v})
	}

	var html string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		if !strings.HasPrefix(contentType, "text/html") {
			continue
		}
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}
		html = string(body)
		break
	}

	return headers, html
}
