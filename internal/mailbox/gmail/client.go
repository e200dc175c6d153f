// Package gmail implements the mailbox transport against the Gmail REST API.
package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadsync/internal/mailbox"
	"github.com/sells-group/leadsync/pkg/googleapi"
	"github.com/sells-group/leadsync/pkg/googleauth"
)

const defaultBaseURL = "https://gmail.googleapis.com/gmail/v1"

// listPageSize bounds one List page; the loop follows nextPageToken.
const listPageSize = 100

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// Client talks to the Gmail API for the authorized user's mailbox.
type Client struct {
	tokens  googleauth.TokenSource
	baseURL string
	http    *http.Client
}

// New creates a Gmail mailbox client.
func New(tokens googleauth.TokenSource, opts ...Option) *Client {
	c := &Client{
		tokens:  tokens,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

var _ mailbox.Client = (*Client)(nil)

// List returns refs for every message matching the query, following
// pagination to exhaustion.
func (c *Client) List(ctx context.Context, q mailbox.Query) ([]mailbox.Ref, error) {
	var refs []mailbox.Ref
	pageToken := ""

	for {
		params := url.Values{
			"q":          {q.String()},
			"maxResults": {strconv.Itoa(listPageSize)},
		}
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var page listResponse
		if err := c.get(ctx, "/users/me/messages?"+params.Encode(), &page); err != nil {
			return nil, eris.Wrap(err, "gmail: list messages")
		}

		for _, m := range page.Messages {
			refs = append(refs, mailbox.Ref{ID: m.ID})
		}
		if page.NextPageToken == "" {
			return refs, nil
		}
		pageToken = page.NextPageToken
	}
}

// Get fetches the full message and flattens it into headers plus the HTML
// body part.
func (c *Client) Get(ctx context.Context, id string) (*mailbox.Message, error) {
	var res messageResource
	if err := c.get(ctx, "/users/me/messages/"+id+"?format=full", &res); err != nil {
		return nil, eris.Wrapf(err, "gmail: get message %s", id)
	}

	msg := &mailbox.Message{ID: res.ID}
	if res.Payload != nil {
		for _, h := range res.Payload.Headers {
			msg.Headers = append(msg.Headers, mailbox.Header{Name: h.Name, Value: h.Value})
		}
		msg.HTML = htmlPart(res.Payload)
	}
	return msg, nil
}

// MarkRead removes the UNREAD label.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	body, err := json.Marshal(modifyRequest{RemoveLabelIDs: []string{"UNREAD"}})
	if err != nil {
		return eris.Wrap(err, "gmail: marshal modify request")
	}
	if err := c.post(ctx, "/users/me/messages/"+id+"/modify", body, nil); err != nil {
		return eris.Wrapf(err, "gmail: mark read %s", id)
	}
	return nil
}

// htmlPart walks the MIME tree depth-first and returns the first decoded
// text/html body.
func htmlPart(p *partResource) string {
	if p == nil {
		return ""
	}
	if p.MimeType == "text/html" && p.Body != nil && p.Body.Data != "" {
		return decodeBody(p.Body.Data)
	}
	for _, child := range p.Parts {
		if html := htmlPart(child); html != "" {
			return html
		}
	}
	return ""
}

// decodeBody decodes Gmail's URL-safe base64 body encoding, tolerating
// both padded and unpadded input.
func decodeBody(data string) string {
	if b, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	return ""
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body []byte, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return eris.Wrap(err, "gmail: acquire token")
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return eris.Wrap(err, "gmail: create request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "gmail: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "gmail: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return googleapi.FromResponse("gmail", resp.StatusCode, respBody)
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return eris.Wrap(err, "gmail: unmarshal response")
		}
	}
	return nil
}
