package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kolo/xmlrpc"
	"go.uber.org/zap"
)

// SentinelInvalid is the controller's "no/invalid value" return code.
const SentinelInvalid = -1

// DefaultTimeout bounds a single backend call when none is configured.
const DefaultTimeout = 5 * time.Second

// Client calls named lens commands over XML-RPC.
type Client struct {
	url     string
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates a client for the XML-RPC endpoint at rawURL.
func NewClient(rawURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend url %q: unsupported scheme %q", rawURL, u.Scheme)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		url:     rawURL,
		timeout: timeout,
		logger:  logger.Named("backend"),
	}, nil
}

// URL returns the backend endpoint.
func (c *Client) URL() string {
	return c.url
}

// Call invokes method with args and returns its integer result, mapping the
// -1 sentinel to 0. The connection lives only for this call.
func (c *Client) Call(ctx context.Context, method string, args ...int) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	raw, err := c.invoke(ctx, method, args)
	latency := time.Since(start)

	if err != nil {
		normalized := NormalizeCallError(method, err)
		c.logger.Warn("XML-RPC call failed",
			zap.String("method", method),
			zap.Ints("args", args),
			zap.Duration("latency", latency),
			zap.Error(normalized))
		return 0, normalized
	}

	c.logger.Info("XML-RPC call",
		zap.String("method", method),
		zap.Ints("args", args),
		zap.Int("result", raw),
		zap.Duration("latency", latency))

	if raw == SentinelInvalid {
		return 0, nil
	}
	return raw, nil
}

func (c *Client) invoke(ctx context.Context, method string, args []int) (int, error) {
	transport := &contextTransport{
		ctx:  ctx,
		base: &http.Transport{DisableKeepAlives: true},
	}

	rpcClient, err := xmlrpc.NewClient(c.url, transport)
	if err != nil {
		return 0, err
	}
	defer rpcClient.Close()

	var params interface{}
	if len(args) > 0 {
		list := make([]interface{}, len(args))
		for i, a := range args {
			list[i] = a
		}
		params = list
	}

	var result int
	if err := rpcClient.Call(method, params, &result); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, fmt.Errorf("%w: %v", ctxErr, err)
		}
		return 0, err
	}
	return result, nil
}

// contextTransport ties every request of one call to the call's context so
// the timeout also covers dialing and reading the response body.
type contextTransport struct {
	ctx  context.Context
	base *http.Transport
}

func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}
