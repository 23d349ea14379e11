package extract

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// retryTransport retries transient YouTube failures (429, 5xx, network
// timeouts, refused connections) with randomized exponential backoff.
type retryTransport struct {
	base       http.RoundTripper
	maxTries   uint
	newBackOff func() backoff.BackOff
}

// statusError carries a retryable HTTP status between attempts.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("retryable status %d", e.code)
}

// newRetryTransport wraps base so a request is attempted at most
// maxRetries+1 times.
func newRetryTransport(base http.RoundTripper, maxRetries int) *retryTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &retryTransport{
		base:       base,
		maxTries:   uint(maxRetries) + 1,
		newBackOff: youtubeBackOff,
	}
}

func youtubeBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 8 * time.Second
	return bo
}

// newHTTPClient builds the client shared by the native search and video
// requests. No overall timeout is set; cancellation comes from the request
// context.
func newHTTPClient(maxRetries int) *http.Client {
	return &http.Client{
		Transport: newRetryTransport(http.DefaultTransport, maxRetries),
	}
}

// RoundTrip returns the first non-retryable outcome. When every attempt hit a
// retryable status, the last such response is returned so callers still see
// the upstream status.
func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var held *http.Response
	release := func() {
		if held != nil {
			held.Body.Close()
			held = nil
		}
	}

	attempt := 0
	operation := func() (*http.Response, error) {
		attempt++
		attemptReq := req
		if attempt > 1 {
			var err error
			if attemptReq, err = rewindRequest(req); err != nil {
				return nil, backoff.Permanent(fmt.Errorf("rewind request body: %w", err))
			}
		}

		resp, err := t.base.RoundTrip(attemptReq)
		if err != nil {
			if !retryableError(err) {
				return nil, backoff.Permanent(err)
			}
			release()
			return nil, err
		}
		if retryableStatus(resp.StatusCode) {
			release()
			held = resp
			return nil, &statusError{code: resp.StatusCode}
		}
		release()
		return resp, nil
	}

	resp, err := backoff.Retry(req.Context(), operation,
		backoff.WithBackOff(t.newBackOff()),
		backoff.WithMaxTries(t.maxTries),
	)
	if err == nil {
		return resp, nil
	}

	var se *statusError
	if held != nil && errors.As(err, &se) {
		return held, nil
	}
	release()

	// The last attempt returns permanent errors still wrapped.
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Unwrap()
	}
	return nil, err
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func retryableError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func rewindRequest(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body != nil && req.Body != http.NoBody {
		if req.GetBody == nil {
			return nil, errors.New("body cannot be replayed")
		}
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}
	return clone, nil
}
