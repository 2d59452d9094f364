package remoteengine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/shake-chess/internal/chess"
)

// DefaultURL is the public stockfish.online endpoint.
const DefaultURL = "https://stockfish.online/api/s/v2.php"

// HeaderProvider allows injecting per-request headers, e.g. API keys.
type HeaderProvider func() map[string]string

// Client queries a remote move service with one GET per position.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	headers HeaderProvider
	logger  *zap.Logger

	depth          int
	defaultTimeout time.Duration
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.defaultTimeout = d
		}
	}
}

// WithDepth sets the search depth sent with each request; 0 omits it.
func WithDepth(depth int) Option {
	return func(c *Client) { c.depth = depth }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultURL
	}
	c := &Client{
		baseURL:        strings.TrimSpace(baseURL),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 4},
		logger:         zap.NewNop(),
		depth:          12,
		defaultTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BestMove returns the service's move for fen.
func (c *Client) BestMove(ctx context.Context, fen string) (chess.Move, error) {
	resp, err := c.Query(ctx, fen)
	if err != nil {
		return chess.Move{}, err
	}
	mv, err := ParseBestMove(resp.BestMove)
	if err != nil {
		return chess.Move{}, err
	}
	c.logger.Debug("remote_best_move", zap.String("fen", fen), zap.String("move", mv.String()))
	return mv, nil
}

// Query performs the request and decodes the body without interpreting the
// move text.
func (c *Client) Query(ctx context.Context, fen string) (*BestMoveResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(c.requestURL(fen))
	req.Header.Set("Accept", "application/json")
	if c.headers != nil {
		for k, v := range c.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}

	started := time.Now()
	if err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, ctxErr)
		}
		return nil, fmt.Errorf("%w: request failed: %w", ErrUnavailable, err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: status=%d body=%s", ErrUnavailable, status, truncate(string(resp.Body()), 512))
	}

	var out BestMoveResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrMalformedResponse, err)
	}
	if out.Success != nil && !*out.Success {
		return nil, fmt.Errorf("%w: service reported failure: %s", ErrMalformedResponse, truncate(out.Data, 256))
	}
	if strings.TrimSpace(out.BestMove) == "" {
		return nil, fmt.Errorf("%w: missing bestmove", ErrMalformedResponse)
	}
	c.logger.Debug("remote_engine_response",
		zap.Int("status", status),
		zap.Duration("elapsed", time.Since(started)),
		zap.String("bestmove", out.BestMove),
	)
	return &out, nil
}

func (c *Client) requestURL(fen string) string {
	q := url.Values{}
	q.Set("fen", fen)
	if c.depth > 0 {
		q.Set("depth", strconv.Itoa(c.depth))
	}
	sep := "?"
	if strings.Contains(c.baseURL, "?") {
		sep = "&"
	}
	return c.baseURL + sep + q.Encode()
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
