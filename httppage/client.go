package httppage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/http2"

	"github.com/kbukum/lazyseq/encryption"
	apperrors "github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/lazy"
	"github.com/kbukum/lazyseq/logger"
	"github.com/kbukum/lazyseq/version"
)

// Query parameters and headers of the page protocol.
const (
	ParamLimit     = "limit"
	ParamPage      = "page"
	ParamPageToken = "page_token"

	HeaderRequestID = "X-Request-Id"
)

// maxErrorBody caps how much of a failed response is read.
const maxErrorBody = 64 << 10

// PageResponse is the JSON body of a page endpoint.
type PageResponse[T any] struct {
	Items         []T    `json:"items"`
	Page          int    `json:"page"`
	NextPageToken string `json:"next_page_token,omitempty"`
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithPageTokens sends page indices as tokens sealed by codec.
func WithPageTokens(codec *encryption.PageTokenCodec) ClientOption {
	return func(c *Client) { c.codec = codec }
}

// WithLogger logs every request at debug level. A nil logger selects the
// global logger.
func WithLogger(l *logger.Logger) ClientOption {
	return func(c *Client) { c.log = logger.OrGlobal(l) }
}

// Client talks to page endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	config     Config
	codec      *encryption.PageTokenCodec
	log        *logger.Logger
	now        func() time.Time
}

// NewClient creates a page client.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, apperrors.InvalidArgument("base url", err.Error())
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = version.UserAgent()
	}

	c := &Client{
		baseURL: base,
		config:  cfg,
		log:     logger.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		transport, err := newTransport(cfg.EnableHTTP2)
		if err != nil {
			return nil, err
		}
		c.httpClient = &http.Client{Transport: transport, Timeout: cfg.Timeout}
	}
	return c, nil
}

func newTransport(enableHTTP2 bool) (*http.Transport, error) {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if enableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			return nil, fmt.Errorf("configure http2: %w", err)
		}
	}
	return transport, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// Fetcher returns a PageFetcher reading pages from the endpoint at path.
func Fetcher[T any](c *Client, path string) lazy.PageFetcher[T] {
	return func(ctx context.Context, batchSize, page int) ([]T, error) {
		resp, err := getPage[T](ctx, c, path, batchSize, page)
		if err != nil {
			return nil, err
		}
		return resp.Items, nil
	}
}

func getPage[T any](ctx context.Context, c *Client, path string, batchSize, page int) (*PageResponse[T], error) {
	req, requestID, err := c.newRequest(ctx, path, batchSize, page)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.ConnectionFailed(c.baseURL.Host, err)
	}
	defer func() { _ = resp.Body.Close() }()

	fields := logger.Fields(logger.FieldRequestID, requestID, logger.FieldPage, page, "status", resp.StatusCode)
	c.log.Debug("page request done", logger.MergeWithDuration(fields, time.Since(start)))

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, classifyResponse(resp, c.baseURL.Host)
	}

	var body PageResponse[T]
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperrors.ExternalServiceError(c.baseURL.Host, fmt.Errorf("decode page: %w", err)).
			WithDetail(logger.FieldRequestID, requestID)
	}
	return &body, nil
}

func (c *Client) newRequest(ctx context.Context, path string, batchSize, page int) (*http.Request, string, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimLeft(path, "/")

	q := url.Values{}
	q.Set(ParamLimit, strconv.Itoa(batchSize))
	if c.codec != nil {
		token, err := c.codec.Encode(page)
		if err != nil {
			return nil, "", err
		}
		q.Set(ParamPageToken, token)
	} else {
		q.Set(ParamPage, strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", apperrors.Internal(err)
	}

	requestID := uuid.NewString()
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	if c.config.Auth != nil {
		token, err := signToken(c.config.Auth, c.now())
		if err != nil {
			return nil, "", err
		}
		req.Header.Set("Authorization", bearerPrefix+token)
	}
	return req, requestID, nil
}

// classifyResponse turns a failed response into an AppError, preferring the
// error body written by Handler.
func classifyResponse(resp *http.Response, service string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var er apperrors.ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error.Code != "" {
		return apperrors.FromResponse(er, resp.StatusCode)
	}

	switch status := resp.StatusCode; {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.Unauthorized(http.StatusText(status))
	case status == http.StatusNotFound:
		return apperrors.NotFound(resp.Request.URL.Path)
	case status == http.StatusTooManyRequests:
		return apperrors.RateLimited()
	case status == http.StatusServiceUnavailable:
		return apperrors.ServiceUnavailable(service)
	case status >= http.StatusInternalServerError:
		return apperrors.ExternalServiceError(service, fmt.Errorf("HTTP %d: %s", status, strings.TrimSpace(string(body))))
	default:
		return apperrors.New(apperrors.ErrCodeInvalidArgument, fmt.Sprintf("HTTP %d: %s", status, strings.TrimSpace(string(body))), status)
	}
}
