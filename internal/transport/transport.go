package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	applog "github.com/spigell/web3-jobs/internal/logger"
)

const (
	// DefaultUserAgent is sent with every request unless overridden.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0 Safari/537.36"

	maxBodySize = 16 << 20
)

// Config describes how sessions are built.
type Config struct {
	// Timeout bounds a single attempt, body included. Retries get a fresh one.
	Timeout    time.Duration `mapstructure:"timeout"`
	Proxy      string        `mapstructure:"proxy"`
	VerifySSL  bool          `mapstructure:"verify-ssl"`
	UserAgent  string        `mapstructure:"user-agent"`
	MaxRetries int           `mapstructure:"max-retries"`
	Backoff    time.Duration `mapstructure:"backoff"`
	MaxBackoff time.Duration `mapstructure:"max-backoff"`
	// RequestsPerSecond limits requests per host across all sessions. Zero disables the limiter.
	RequestsPerSecond float64 `mapstructure:"requests-per-second"`
	Burst             int     `mapstructure:"burst"`
}

// DefaultConfig mirrors the behaviour job boards tolerate well: 30s timeout,
// three retries with exponential backoff starting at one second.
func DefaultConfig() Config {
	return Config{
		Timeout:           30 * time.Second,
		VerifySSL:         true,
		UserAgent:         DefaultUserAgent,
		MaxRetries:        3,
		Backoff:           time.Second,
		MaxBackoff:        30 * time.Second,
		RequestsPerSecond: 2,
		Burst:             2,
	}
}

// StatusError is returned for non-2xx responses after retries are exhausted.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status for %s: %s", e.URL, e.Status)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// Factory builds independent sessions that share configuration only.
type Factory struct {
	cfg     Config
	proxy   *url.URL
	limiter *HostLimiter
	logger  *zap.Logger
}

// NewFactory validates the configuration and returns a session factory.
func NewFactory(cfg Config, logger *zap.Logger) (*Factory, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Backoff < 0 {
		cfg.Backoff = 0
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	f := &Factory{cfg: cfg, logger: logger}
	if cfg.RequestsPerSecond > 0 {
		f.limiter = NewHostLimiter(cfg.RequestsPerSecond, cfg.Burst)
	}

	if proxy := strings.TrimSpace(cfg.Proxy); proxy != "" {
		u, err := url.Parse(proxy)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy url %q", proxy)
		}
		f.proxy = u
	}

	return f, nil
}

// Config returns the effective configuration.
func (f *Factory) Config() Config {
	return f.cfg
}

// SessionOption tweaks a single session.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	insecure bool
}

// Insecure disables TLS verification for the session regardless of the
// factory setting. Some boards serve broken certificate chains.
func Insecure() SessionOption {
	return func(o *sessionOptions) { o.insecure = true }
}

// Session returns a new client owned by one source.
func (f *Factory) Session(source string, opts ...SessionOption) *Client {
	var o sessionOptions
	for _, opt := range opts {
		opt(&o)
	}

	base := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: o.insecure || !f.cfg.VerifySSL},
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	if f.proxy != nil {
		base.Proxy = http.ProxyURL(f.proxy)
	}

	logger := applog.ForSource(f.logger, source)

	return &Client{
		HTTPClient: &http.Client{
			Transport: &retryTransport{
				base:       base,
				timeout:    f.cfg.Timeout,
				maxRetries: f.cfg.MaxRetries,
				backoff:    f.cfg.Backoff,
				maxBackoff: f.cfg.MaxBackoff,
				limiter:    f.limiter,
				logger:     logger,
			},
		},
		UserAgent: f.cfg.UserAgent,
		logger:    logger,
	}
}

// Client is a per-source HTTP session.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	logger     *zap.Logger
}

// Get performs a GET request. Non-2xx statuses are returned as *StatusError
// together with the body read so far.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.UserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug("make request", zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", rawURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return body, &StatusError{URL: rawURL, Code: resp.StatusCode, Status: resp.Status}
	}

	return body, nil
}
