package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"
	"golang.org/x/oauth2"

	"github.com/julianstephens/habitvault/internal/constants"
	"github.com/julianstephens/habitvault/internal/logger"
)

// Credentials supplies the bearer token and clears it when the server rejects it
type Credentials interface {
	Token() (string, error)
	ClearCredentials() error
}

// Notifier shows a user-facing notification
type Notifier interface {
	Notify(text string) error
}

// Client talks to the HabitVault REST API
type Client struct {
	baseURL       *url.URL
	http          *http.Client
	creds         Credentials
	notifier      Notifier
	networkPolicy string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying transport (its Transport is wrapped
// with bearer injection, so pass a client whose Transport is the raw base).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithNotifier sets where user-facing error notifications go
func WithNotifier(n Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithNetworkErrorPolicy selects whether transport failures are notified
// ("notify") or only returned ("silent").
func WithNetworkErrorPolicy(policy string) Option {
	return func(c *Client) { c.networkPolicy = policy }
}

// New creates a client for the API rooted at baseURL
func New(baseURL string, creds Credentials, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("api url cannot be empty")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:       u,
		http:          &http.Client{Timeout: constants.RequestTimeout},
		creds:         creds,
		networkPolicy: constants.DefaultNetworkErrorPolicy,
	}
	for _, opt := range opts {
		opt(c)
	}

	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped := *c.http
	wrapped.Transport = &oauth2.Transport{
		Source: credentialSource{creds: creds},
		Base:   &requestLogger{base: base},
	}
	c.http = &wrapped

	return c, nil
}

// BaseURL returns the API root the client was created with
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) endpoint(path string, params interface{}) (string, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if params != nil {
		v, err := query.Values(params)
		if err != nil {
			return "", fmt.Errorf("unable to encode query: %w", err)
		}
		u.RawQuery = v.Encode()
	}
	return u.String(), nil
}

// do performs a request and decodes a JSON response into out (when non-nil)
func (c *Client) do(ctx context.Context, method, path string, params, body, out interface{}) error {
	endpoint, err := c.endpoint(path, params)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("unable to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("unable to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.transportFailure(ctx, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.transportFailure(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusFailure(method, path, resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}

func (c *Client) transportFailure(ctx context.Context, err error) error {
	if errors.Is(err, errNoToken) {
		return &AuthError{}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	netErr := &NetworkError{Err: err}
	logger.Warn("api request failed", "error", err)
	if c.networkPolicy == constants.NetworkErrorsNotify {
		c.notify("Network error: unable to reach the HabitVault server.")
		netErr.notified = true
	}
	return netErr
}

func (c *Client) statusFailure(method, path string, status int, body []byte) error {
	apiErr := classify(status, body)
	logger.Warn("api request rejected", "method", method, "path", path, "status", status, "error", apiErr)

	switch e := apiErr.(type) {
	case *ValidationError:
		// left for form-level display
	case *AuthError:
		if c.creds != nil {
			if err := c.creds.ClearCredentials(); err != nil {
				logger.Error("failed to clear credentials", "error", err)
			}
		}
	case *NotFoundError:
		c.notify(nonEmpty(e.Message, fallbackMessage(status)))
		e.notified = true
	case *ServerError:
		c.notify(nonEmpty(e.Message, fallbackMessage(status)))
		e.notified = true
	}
	return apiErr
}

func (c *Client) notify(text string) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Notify(text); err != nil {
		logger.Debug("notification not delivered", "error", err)
	}
}
