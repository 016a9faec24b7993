// Package alpaca reads the account activities of an Alpaca brokerage account
// through its v2 REST API.
package alpaca

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/apcaledger"
	"github.com/etnz/apcaledger/trace"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// Environment variables read by ConfigFromEnv, the ones of Alpaca's SDKs.
const (
	EnvBaseURL    = "APCA_API_BASE_URL"
	EnvKeyID      = "APCA_API_KEY_ID"
	EnvSecretKey  = "APCA_API_SECRET_KEY"
	EnvOAuthToken = "APCA_API_OAUTH_TOKEN"
)

const (
	// PaperURL is the paper trading API, used by default.
	PaperURL = "https://paper-api.alpaca.markets"
	// LiveURL is the live trading API.
	LiveURL = "https://api.alpaca.markets"

	// RequestsPerMinute is the API rate limit.
	RequestsPerMinute = 200
)

// Config holds the connection parameters.
type Config struct {
	BaseURL    string
	KeyID      string
	SecretKey  string
	OAuthToken string // used instead of the key pair when set
	// RequestsPerMinute caps the request rate, zero means the API limit.
	RequestsPerMinute int
}

// ConfigFromEnv reads the configuration from the environment.
func ConfigFromEnv() (Config, error) {
	c := Config{
		BaseURL:    os.Getenv(EnvBaseURL),
		KeyID:      os.Getenv(EnvKeyID),
		SecretKey:  os.Getenv(EnvSecretKey),
		OAuthToken: os.Getenv(EnvOAuthToken),
	}
	if c.BaseURL == "" {
		c.BaseURL = PaperURL
	}
	if c.OAuthToken == "" && (c.KeyID == "" || c.SecretKey == "") {
		return Config{}, fmt.Errorf("%s and %s, or %s, must be set", EnvKeyID, EnvSecretKey, EnvOAuthToken)
	}
	return c, nil
}

// Client is an apcaledger.Feed reading an Alpaca account.
type Client struct {
	baseURL    string
	keyID      string
	secretKey  string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
}

var _ apcaledger.Feed = (*Client)(nil)

// NewClient returns a client for the account configured in c. ctx carries
// the base http.Client of OAuth requests, see oauth2.HTTPClient.
func NewClient(ctx context.Context, c Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	rpm := c.RequestsPerMinute
	if rpm <= 0 {
		rpm = RequestsPerMinute
	}
	client := &Client{
		baseURL:    strings.TrimRight(c.BaseURL, "/"),
		keyID:      c.KeyID,
		secretKey:  c.SecretKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		log:        log,
	}
	if c.OAuthToken != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.OAuthToken, TokenType: "Bearer"})
		client.httpClient = oauth2.NewClient(ctx, src)
	}
	return client
}

// Currency returns the currency of the account.
func (c *Client) Currency(ctx context.Context) (string, error) {
	var account any
	if err := c.get(ctx, "/v2/account", nil, &account); err != nil {
		return "", err
	}
	v, err := jsonpath.Get("$.currency", account)
	if err != nil {
		return "", fmt.Errorf("reading account currency: %w", err)
	}
	currency, ok := v.(string)
	if !ok || currency == "" {
		return "", fmt.Errorf("reading account currency: unexpected value %v", v)
	}
	return currency, nil
}

// Activities returns a page of account activities.
func (c *Client) Activities(ctx context.Context, req apcaledger.ActivityRequest) ([]apcaledger.Activity, error) {
	q := url.Values{}
	q.Set("direction", req.Direction.String())
	if !req.After.IsZero() {
		q.Set("after", req.After.UTC().Format(time.RFC3339Nano))
	}
	if req.PageToken != "" {
		q.Set("page_token", req.PageToken)
	}
	if req.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(req.PageSize))
	}

	var page []json.RawMessage
	if err := c.get(ctx, "/v2/account/activities", q, &page); err != nil {
		return nil, err
	}
	return decodePage(page)
}

// get performs an HTTP GET request on path and unmarshals the JSON response
// body into data.
func (c *Client) get(ctx context.Context, path string, query url.Values, data any) (err error) {
	ctx, span := trace.StartSpan(ctx, "alpaca.get")
	span.SetAttributes(attribute.String("http.path", path))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if c.keyID != "" {
		req.Header.Set("APCA-API-KEY-ID", c.keyID)
		req.Header.Set("APCA-API-SECRET-KEY", c.secretKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	c.log.Debug("http", zap.String("method", req.Method), zap.String("path", path), zap.String("query", req.URL.RawQuery), zap.String("status", resp.Status))
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return &StatusError{Method: req.Method, Path: path, Status: resp.Status, Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if err := json.NewDecoder(resp.Body).Decode(data); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// StatusError is returned for responses other than 200 OK.
type StatusError struct {
	Method, Path, Status string
	Code                 int
	Body                 string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("cannot http %s %s: %s", e.Method, e.Path, e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// IsUnauthorized reports whether err is an authentication failure.
func IsUnauthorized(err error) bool {
	var s *StatusError
	return errors.As(err, &s) && (s.Code == http.StatusUnauthorized || s.Code == http.StatusForbidden)
}
