package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadsync/internal/mailbox"
	"github.com/sells-group/leadsync/pkg/googleapi"
	"github.com/sells-group/leadsync/pkg/googleauth"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(googleauth.Static("test-token"), WithBaseURL(srv.URL))
}

func TestListFollowsPagination(t *testing.T) {
	var queries []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, strconv.Itoa(listPageSize), r.URL.Query().Get("maxResults"))
		queries = append(queries, r.URL.Query().Get("q"))

		if r.URL.Query().Get("pageToken") == "" {
			json.NewEncoder(w).Encode(listResponse{
				Messages:      []refResource{{ID: "m1"}, {ID: "m2"}},
				NextPageToken: "tok2",
			})
			return
		}
		json.NewEncoder(w).Encode(listResponse{Messages: []refResource{{ID: "m3"}}})
	})

	refs, err := c.List(context.Background(), mailbox.Query{
		Sender:  "buyleads@marketplace.example",
		Subject: "Enquiry",
		After:   time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, []mailbox.Ref{{ID: "m1"}, {ID: "m2"}, {ID: "m3"}}, refs)
	require.Len(t, queries, 2)
	assert.Equal(t, "from:buyleads@marketplace.example subject:Enquiry after:2024/03/14", queries[0])
}

func TestListEmptyMailbox(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	refs, err := c.List(context.Background(), mailbox.Query{Sender: "x@y.z"})
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestGetDecodesMultipartHTML(t *testing.T) {
	html := "<html><body><b>I need Industrial Valves</b></body></html>"
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me/messages/m1", r.URL.Path)
		assert.Equal(t, "full", r.URL.Query().Get("format"))

		res := messageResource{
			ID: "m1",
			Payload: &partResource{
				MimeType: "multipart/alternative",
				Headers: []headerField{
					{Name: "Message-ID", Value: "<abc@mail.example>"},
					{Name: "Reply-To", Value: "Rakesh <rk@example.com>"},
				},
				Parts: []*partResource{
					{
						MimeType: "text/plain",
						Body:     &bodyResource{Data: base64.RawURLEncoding.EncodeToString([]byte("plain"))},
					},
					{
						MimeType: "text/html",
						Body:     &bodyResource{Data: base64.RawURLEncoding.EncodeToString([]byte(html))},
					},
				},
			},
		}
		json.NewEncoder(w).Encode(res)
	})

	msg, err := c.Get(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, html, msg.HTML)
	assert.Equal(t, "<abc@mail.example>", msg.Headers.Get("message-id"))
}

func TestMarkReadRemovesUnreadLabel(t *testing.T) {
	var got modifyRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/me/messages/m1/modify", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{}`))
	})

	require.NoError(t, c.MarkRead(context.Background(), "m1"))
	assert.Equal(t, []string{"UNREAD"}, got.RemoveLabelIDs)
}

func TestErrorCarriesStructuredDetails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"Insufficient Permission","status":"PERMISSION_DENIED"}}`))
	})

	_, err := c.List(context.Background(), mailbox.Query{Sender: "x@y.z"})
	require.Error(t, err)

	apiErr, ok := googleapi.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "PERMISSION_DENIED", apiErr.Status)
}

func TestDecodeBodyToleratesPadding(t *testing.T) {
	padded := base64.URLEncoding.EncodeToString([]byte("hello"))
	raw := base64.RawURLEncoding.EncodeToString([]byte("hello"))
	assert.Equal(t, "hello", decodeBody(padded))
	assert.Equal(t, "hello", decodeBody(raw))
	assert.Equal(t, "", decodeBody("!!not base64!!"))
}
