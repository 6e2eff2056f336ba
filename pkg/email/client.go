package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pmcollective/pmc-backend/pkg/config"
	"github.com/pmcollective/pmc-backend/pkg/logger"
)

const (
	defaultBaseURL        = "https://api.resend.com"
	responseBodyReadLimit = 64 * 1024
	singleSendPath        = "/emails"
	batchSendPath         = "/emails/batch"
	defaultTimeout        = 10 * time.Second
)

var errAPIKeyRequired = errors.New("resend api key is required")

// Message is one outbound email accepted by the Resend API.
type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Result reports the outcome of a provider call. Provider-side rejections
// come back as Success=false with the error text; they are never raised as
// Go errors so callers can treat delivery failure as a recoverable state.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Client wraps the Resend transactional email API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	from       string
	logg       *logger.Logger
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured Resend base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the Resend client. A missing API key is a construction
// error, not a per-send failure.
func NewClient(cfg config.ResendConfig, logg *logger.Logger, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     apiKey,
		from:       cfg.From,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logg:       logg,
	}
	if trimmed := strings.TrimSpace(cfg.BaseURL); trimmed != "" {
		client.baseURL = trimmed
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// From returns the configured sender address.
func (c *Client) From() string {
	if c == nil {
		return ""
	}
	return c.from
}

// Send submits a single email.
func (c *Client) Send(ctx context.Context, msg Message) (Result, error) {
	if msg.From == "" {
		msg.From = c.from
	}
	return c.post(ctx, singleSendPath, msg)
}

// SendBatch submits all messages in one provider call.
func (c *Client) SendBatch(ctx context.Context, msgs []Message) (Result, error) {
	if len(msgs) == 0 {
		return Result{Success: true}, nil
	}
	for i := range msgs {
		if msgs[i].From == "" {
			msgs[i].From = c.from
		}
	}
	return c.post(ctx, batchSendPath, msgs)
}

func (c *Client) post(ctx context.Context, path string, payload any) (Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("encode email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("email provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return Result{}, fmt.Errorf("read email response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		providerErr := providerError(raw)
		if c.logg != nil {
			logCtx := c.logg.WithFields(ctx, map[string]any{
				"status": resp.StatusCode,
				"error":  providerErr,
			})
			c.logg.Warn(logCtx, "email provider rejected send")
		}
		return Result{Success: false, Error: providerErr}, nil
	}

	return Result{Success: true}, nil
}

func providerError(raw []byte) string {
	var decoded struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &decoded); err == nil {
		if decoded.Error != "" {
			return decoded.Error
		}
		if decoded.Message != "" {
			return decoded.Message
		}
	}
	if len(raw) > 0 {
		return string(raw)
	}
	return "unknown error"
}
