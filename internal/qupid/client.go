package qupid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yildizm/qupid/internal/logger"
	"github.com/yildizm/qupid/internal/upload"
)

// Defaults for a local service
const (
	DefaultEndpoint    = "http://localhost:5000"
	DefaultAnalyzePath = "/analyze-run"
	DefaultFieldName   = "files"
	DefaultTimeout     = 120 * time.Second
	DefaultUserAgent   = "qupid-cli"

	// maxResponseBytes bounds the body read; plots arrive inline as base64
	maxResponseBytes = 32 << 20
)

// Config configures the service client
type Config struct {
	Endpoint    string
	AnalyzePath string
	FieldName   string
	// Timeout bounds one request; zero disables it
	Timeout   time.Duration
	UserAgent string
}

// DefaultConfig returns a client config for a local service
func DefaultConfig() *Config {
	return &Config{
		Endpoint:    DefaultEndpoint,
		AnalyzePath: DefaultAnalyzePath,
		FieldName:   DefaultFieldName,
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
	}
}

// Validate checks the config for obvious mistakes
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return fmt.Errorf("endpoint is required")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("endpoint must include a host")
	}
	if !strings.HasPrefix(c.AnalyzePath, "/") {
		return fmt.Errorf("analyze path must start with '/'")
	}
	if strings.TrimSpace(c.FieldName) == "" {
		return fmt.Errorf("field name is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	return nil
}

// AnalyzeRequest is one submission of screenshots
type AnalyzeRequest struct {
	RequestID string
	Files     []*upload.File
}

// Client posts screenshots to the analysis service. It never retries.
type Client struct {
	config  *Config
	client  *http.Client
	baseURL *url.URL
	log     *logger.Logger
}

// New creates a client. A nil config uses DefaultConfig.
func New(config *Config, log *logger.Logger) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}

	baseURL, err := url.Parse(config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}

	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		baseURL: baseURL,
		log:     log.WithComponent("client"),
	}, nil
}

// URL returns the full analyze URL
func (c *Client) URL() string {
	return c.baseURL.JoinPath(c.config.AnalyzePath).String()
}

// Analyze uploads the files as one multipart request and decodes the result.
// Failures are always returned as *Error.
func (c *Client) Analyze(ctx context.Context, req *AnalyzeRequest) (*ServerResult, error) {
	if req == nil || len(req.Files) == 0 {
		return nil, NewNoFilesError()
	}
	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	body, contentType, err := c.encode(req.Files)
	if err != nil {
		return nil, withRequestID(err, requestID)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(), bytes.NewReader(body))
	if err != nil {
		return nil, withRequestID(NewTransportError("", err), requestID)
	}
	c.setHeaders(httpReq, contentType, requestID)

	c.log.DebugWithFields("submitting screenshots", []logger.Field{
		logger.RequestID(requestID),
		logger.Count(len(req.Files)),
		logger.F("bytes", len(body)),
		logger.F("url", httpReq.URL.String()),
	})

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		terr := classifyError(err)
		c.log.WarnWithFields("request failed", []logger.Field{
			logger.RequestID(requestID),
			logger.Duration(time.Since(start)),
			logger.Error(err),
		})
		return nil, withRequestID(terr, requestID)
	}
	defer func() { _ = resp.Body.Close() }()

	result, err := c.decode(resp)
	c.log.DebugWithFields("response received", []logger.Field{
		logger.RequestID(requestID),
		logger.F("status", resp.StatusCode),
		logger.Duration(time.Since(start)),
	})
	if err != nil {
		return nil, withRequestID(err, requestID)
	}
	return result, nil
}

func (c *Client) setHeaders(req *http.Request, contentType, requestID string) {
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
}

// encode writes every file as a part under the configured field name
func (c *Client) encode(files []*upload.File) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, f := range files {
		if err := c.writePart(mw, f); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", NewTransportError("", fmt.Errorf("failed to finish multipart body: %w", err))
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

func (c *Client) writePart(mw *multipart.Writer, f *upload.File) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     c.config.FieldName,
		"filename": f.Name,
	}))
	mediaType := f.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	header.Set("Content-Type", mediaType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return NewTransportError("", fmt.Errorf("failed to create part for %s: %w", f.Name, err))
	}

	rc, err := f.Open()
	if err != nil {
		return NewTransportError(fmt.Sprintf("could not read screenshot %s", f.Name), err)
	}
	defer func() { _ = rc.Close() }()

	if _, err := io.Copy(part, rc); err != nil {
		return NewTransportError(fmt.Sprintf("could not read screenshot %s", f.Name), err)
	}
	return nil
}

// envelope decodes a result while catching an error field sent with a success status
type envelope struct {
	ServerResult
	Error string `json:"error,omitempty"`
}

func (c *Client) decode(resp *http.Response) (*ServerResult, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, NewTransportError("", fmt.Errorf("failed to read response: %w", err))
	}

	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	isObject := len(bytes.TrimSpace(raw)) > 0 && bytes.TrimSpace(raw)[0] == '{'

	if !success {
		var body ErrorBody
		if isObject {
			// a body without a string error field falls back to the generic message
			_ = json.Unmarshal(raw, &body)
		}
		return nil, NewServerError(resp.StatusCode, body.Error, fmt.Errorf("status %d", resp.StatusCode))
	}

	if !isObject {
		return nil, NewServerError(resp.StatusCode, "", fmt.Errorf("response is not a JSON object"))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, NewServerError(resp.StatusCode, "", fmt.Errorf("failed to decode response: %w", err))
	}
	if env.Error != "" {
		return nil, NewServerError(resp.StatusCode, env.Error, nil)
	}

	result := env.ServerResult
	return &result, nil
}

// classifyError turns a failed round trip into a transport failure, keeping
// the reason in the cause.
func classifyError(err error) *Error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return NewTransportError("", fmt.Errorf("request cancelled: %w", err))
	case errors.Is(err, context.DeadlineExceeded):
		return NewTransportError("", fmt.Errorf("request timed out: %w", err))
	case errors.As(err, &netErr) && netErr.Timeout():
		return NewTransportError("", fmt.Errorf("request timed out: %w", err))
	default:
		return NewTransportError("", err)
	}
}

func withRequestID(err error, requestID string) error {
	var e *Error
	if errors.As(err, &e) && e.RequestID == "" {
		e.RequestID = requestID
	}
	return err
}
