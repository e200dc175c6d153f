// Package googleauth supplies bearer tokens for the Google REST clients.
// Token acquisition and refresh is this package's whole job; callers only
// see the TokenSource interface.
package googleauth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

const defaultTokenURL = "https://oauth2.googleapis.com/token"

// TokenSource yields a valid bearer token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Static is a fixed token, useful for tests and short-lived tooling.
type Static string

func (s Static) Token(context.Context) (string, error) {
	return string(s), nil
}

// Option configures the refresh source.
type Option func(*RefreshSource)

// WithTokenURL overrides the OAuth token endpoint.
func WithTokenURL(u string) Option {
	return func(r *RefreshSource) {
		r.tokenURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *RefreshSource) {
		r.http = hc
	}
}

// RefreshSource exchanges a long-lived refresh token for access tokens,
// caching each one until shortly before expiry. Safe for concurrent use.
type RefreshSource struct {
	clientID     string
	clientSecret string
	refreshToken string
	tokenURL     string
	http         *http.Client

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewRefreshSource creates a TokenSource backed by an OAuth refresh token.
func NewRefreshSource(clientID, clientSecret, refreshToken string, opts ...Option) *RefreshSource {
	r := &RefreshSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		tokenURL:     defaultTokenURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Token returns the cached access token, refreshing it when it is within
// 30 seconds of expiry.
func (r *RefreshSource) Token(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token != "" && time.Now().Before(r.expiry.Add(-30*time.Second)) {
		return r.token, nil
	}

	form := url.Values{
		"client_id":     {r.clientID},
		"client_secret": {r.clientSecret},
		"refresh_token": {r.refreshToken},
		"grant_type":    {"refresh_token"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", eris.Wrap(err, "googleauth: create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "googleauth: token request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "googleauth: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("googleauth: token endpoint status %d: %s", resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", eris.Wrap(err, "googleauth: unmarshal token")
	}
	if tok.AccessToken == "" {
		return "", eris.New("googleauth: empty access token")
	}

	r.token = tok.AccessToken
	r.expiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return r.token, nil
}
