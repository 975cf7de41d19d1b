// Package session is the API client used by frontends and tooling. Its job
// is to make 401 recovery invisible to callers: it attaches the bearer and
// CSRF headers, performs at most one refresh call no matter how many
// requests fail at once, and replays the failed requests with the renewed
// access token.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	requestTimeout = 10 * time.Second

	csrfCookieName = "csrf-token"
	csrfHeaderName = "x-csrf-token"
)

var ErrNoRefreshToken = errors.New("no refresh token stored")
var ErrSessionExpired = errors.New("session expired")

type refreshOutcome struct {
	token string
	err   error
}

// Client wraps an *http.Client with session handling. The refresh state
// (refreshing flag + pending waiter list) acts as a non-reentrant mutex with
// FIFO waiters, scoped to this process: concurrent 401s past the first wait
// for the in-flight refresh instead of starting their own.
type Client struct {
	baseURL          *url.URL
	httpc            *http.Client
	store            TokenStore
	onSessionExpired func()

	mu         sync.Mutex
	refreshing bool
	pending    []chan refreshOutcome
}

type Option func(*Client)

func WithTokenStore(s TokenStore) Option {
	return func(c *Client) { c.store = s }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithSessionExpiredHook installs the "denied screen" reaction: it fires
// after a failed refresh, once the local tokens have been cleared.
func WithSessionExpiredHook(fn func()) Option {
	return func(c *Client) { c.onSessionExpired = fn }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	c := &Client{
		baseURL: u,
		store:   NewMemoryStore(),
		httpc:   &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.httpc.Jar = jar
	}
	return c, nil
}

func (c *Client) Store() TokenStore {
	return c.store
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.baseURL.String(), "/") + path
}

// NewJSONRequest builds a request whose body can be replayed after a token
// refresh (bytes-backed bodies keep GetBody populated).
func (c *Client) NewJSONRequest(ctx context.Context, method, path string, payload interface{}) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Do sends the request with session headers attached. A 401 response
// triggers (or joins) a refresh and replays the request exactly once with
// the new access token; every other failure, including timeouts, propagates
// unchanged.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	c.decorate(req, c.store.AccessToken())

	resp, err := c.httpc.Do(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	token, err := c.refreshAccessToken(req.Context())
	if err != nil {
		return nil, err
	}

	retry, err := replayableClone(req)
	if err != nil {
		return nil, err
	}
	c.decorate(retry, token)
	// The retry goes straight to the transport; a second 401 is final.
	return c.httpc.Do(retry)
}

func (c *Client) decorate(req *http.Request, accessToken string) {
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	if !safeMethod(req.Method) {
		if token := c.csrfTokenFromJar(); token != "" {
			req.Header.Set(csrfHeaderName, token)
		}
	}
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func (c *Client) csrfTokenFromJar() string {
	for _, cookie := range c.httpc.Jar.Cookies(c.baseURL) {
		if cookie.Name == csrfCookieName {
			return cookie.Value
		}
	}
	return ""
}

func replayableClone(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}
	return clone, nil
}

// refreshAccessToken is the single-flight gate. The first caller becomes
// the leader and performs the network call; everyone arriving while it is
// in flight parks a buffered channel on the waiter list and gets the
// leader's outcome, in arrival order, exactly once. Buffering means a
// waiter whose caller gave up still releases its slot when the list drains.
func (c *Client) refreshAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.refreshing {
		ch := make(chan refreshOutcome, 1)
		c.pending = append(c.pending, ch)
		c.mu.Unlock()
		select {
		case out := <-ch:
			return out.token, out.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	c.refreshing = true
	c.mu.Unlock()

	out := c.callRefresh(ctx)

	c.mu.Lock()
	waiters := c.pending
	c.pending = nil
	c.refreshing = false
	c.mu.Unlock()

	for _, ch := range waiters {
		ch <- out
	}

	if out.err != nil {
		c.store.Clear()
		if c.onSessionExpired != nil {
			c.onSessionExpired()
		}
	}
	return out.token, out.err
}

func (c *Client) callRefresh(ctx context.Context) refreshOutcome {
	refreshToken := c.store.RefreshToken()
	if refreshToken == "" {
		return refreshOutcome{err: ErrNoRefreshToken}
	}

	raw, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return refreshOutcome{err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/v1/auth/refresh"), bytes.NewReader(raw))
	if err != nil {
		return refreshOutcome{err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.csrfTokenFromJar(); token != "" {
		req.Header.Set(csrfHeaderName, token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return refreshOutcome{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return refreshOutcome{err: fmt.Errorf("%w: refresh rejected with status %d", ErrSessionExpired, resp.StatusCode)}
	}

	var payload struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return refreshOutcome{err: err}
	}
	if payload.AccessToken == "" {
		return refreshOutcome{err: ErrSessionExpired}
	}

	c.store.SetAccessToken(payload.AccessToken)
	return refreshOutcome{token: payload.AccessToken}
}
