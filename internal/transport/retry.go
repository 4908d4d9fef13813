package transport

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/web3-jobs/internal/utils"
)

// retryStatuses are the responses worth another attempt.
var retryStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// retryTransport retries idempotent GET requests on transport errors,
// attempt timeouts and retryable statuses with exponential backoff. Each
// attempt runs under its own timeout; backoff waits only honour the caller's
// context.
type retryTransport struct {
	base       http.RoundTripper
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	maxBackoff time.Duration
	limiter    *HostLimiter
	logger     *zap.Logger
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	for attempt := 0; ; attempt++ {
		if t.limiter != nil {
			if err := t.limiter.Wait(ctx, req.URL); err != nil {
				return nil, err
			}
		}

		resp, err := t.attempt(req)

		if !t.shouldRetry(req, resp, err, attempt) {
			return resp, err
		}

		delay := t.delay(attempt, resp)

		fields := []zap.Field{
			zap.String("url", req.URL.String()),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		if resp != nil {
			fields = append(fields, zap.Int("status", resp.StatusCode))
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
			resp.Body.Close()
		}
		t.logger.Debug("retrying request", fields...)

		if err := utils.WaitFor(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// attempt sends req once. The attempt deadline covers reading the body too,
// so it is released when the body is closed.
func (t *retryTransport) attempt(req *http.Request) (*http.Response, error) {
	if t.timeout <= 0 {
		return t.base.RoundTrip(req)
	}

	actx, cancel := context.WithTimeout(req.Context(), t.timeout)

	resp, err := t.base.RoundTrip(req.WithContext(actx))
	if err != nil {
		cancel()
		return nil, err
	}

	resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// shouldRetry treats a failed attempt as transient as long as the caller's
// context is still alive, which includes an expired attempt deadline.
func (t *retryTransport) shouldRetry(req *http.Request, resp *http.Response, err error, attempt int) bool {
	if attempt >= t.maxRetries || req.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return req.Context().Err() == nil
	}
	return retryStatuses[resp.StatusCode]
}

// delay returns backoff * 2^attempt, or the server's Retry-After when it is
// present and shorter than maxBackoff.
func (t *retryTransport) delay(attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs >= 0 {
			if d := time.Duration(secs) * time.Second; d <= t.maxBackoff {
				return d
			}
		}
	}

	d := t.backoff << attempt
	if d > t.maxBackoff || d < 0 {
		d = t.maxBackoff
	}
	return d
}
