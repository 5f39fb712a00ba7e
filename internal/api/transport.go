package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/julianstephens/habitvault/internal/constants"
	"github.com/julianstephens/habitvault/internal/logger"
)

var errNoToken = errors.New("no api token stored")

// credentialSource reads the token from the session on every request, so a
// logout or a 401 takes effect immediately.
type credentialSource struct {
	creds Credentials
}

func (s credentialSource) Token() (*oauth2.Token, error) {
	if s.creds == nil {
		return nil, errNoToken
	}
	tok, err := s.creds.Token()
	if err != nil || tok == "" {
		return nil, errNoToken
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}

// requestLogger tags each request with an id and logs its outcome
type requestLogger struct {
	base http.RoundTripper
}

func (t *requestLogger) RoundTrip(req *http.Request) (*http.Response, error) {
	id := uuid.New().String()
	out := req.Clone(req.Context())
	out.Header.Set(constants.RequestIDHeader, id)

	start := time.Now()
	resp, err := t.base.RoundTrip(out)
	elapsed := time.Since(start)
	if err != nil {
		logger.Debug("api request", "id", id, "method", req.Method, "path", req.URL.Path, "error", err, "duration", elapsed)
		return nil, err
	}
	logger.Debug("api request", "id", id, "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "duration", elapsed)
	return resp, nil
}
