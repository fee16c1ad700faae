package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	defaultBaseURL = "https://api.telegram.org"

	// tokenParameterName is the SSM parameter (relative to the configured
	// prefix) holding the bot token when no static token is provided.
	tokenParameterName = "telegram-token"
)

// sendMessageRequest is the payload for the sendMessage method.
type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

// setWebhookRequest is the payload for the setWebhook method.
type setWebhookRequest struct {
	URL         string `json:"url"`
	SecretToken string `json:"secret_token,omitempty"`
}

// apiResponse is the Bot API envelope wrapping every method result.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
}

// tokenPayload is the expected JSON shape stored in SSM for the bot token.
type tokenPayload struct {
	Token string `json:"token"`
}

type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// HTTPStatusError captures non-2xx upstream responses with status-aware
// context. The URL field carries only the method name so the bot token never
// ends up in logs.
type HTTPStatusError struct {
	StatusCode int
	Method     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("telegram: unexpected status %d from %s: %s", e.StatusCode, e.Method, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client is a focused Telegram Bot API client covering the methods the bot
// uses: sendMessage for replies and setWebhook for registration.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	getter      Getter
	staticToken string

	tokenOnce sync.Once
	token     string
	tokenErr  error
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithStaticToken sets the bot token directly, bypassing the parameter
// store. Used when TELEGRAM_TOKEN is provided in the environment.
func WithStaticToken(token string) Option {
	return func(c *Client) {
		c.staticToken = strings.TrimSpace(token)
	}
}

// NewClient creates a new Client. The token comes either from
// WithStaticToken or, on the first API call, from the given
// paramstore.Getter; the resolved token is reused for the lifetime of the
// process.
func NewClient(ps Getter, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		getter:     ps,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.staticToken == "" && c.getter == nil {
		return nil, errors.New("telegram: either a static token or a paramstore getter is required")
	}
	return c, nil
}

// resolveToken returns the configured static token, or fetches the token
// from SSM on the first call and the cached result on every subsequent call
// within the same process lifetime.
func (c *Client) resolveToken(ctx context.Context) (string, error) {
	c.tokenOnce.Do(func() {
		if c.staticToken != "" {
			c.token = c.staticToken
			return
		}
		c.token, c.tokenErr = fetchTokenFromParamStore(ctx, c.getter, tokenParameterName)
	})
	return c.token, c.tokenErr
}

// resolvedHTTPClient returns the configured HTTP client, or a default with a
// 10s timeout if none was set (e.g. in tests that nil out the field).
func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// methodURL builds the Bot API URL for a method, e.g.
// https://api.telegram.org/bot<token>/sendMessage.
func methodURL(baseURL, token, method string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return base + "/bot" + token + "/" + method
}

// SendMessage sends text to the given chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	if chatID == 0 {
		return errors.New("telegram: chat id must not be zero")
	}
	return c.call(ctx, "sendMessage", sendMessageRequest{ChatID: chatID, Text: text})
}

// SetWebhook registers url as the bot's webhook endpoint. A non-empty
// secretToken is sent back by Telegram in the
// X-Telegram-Bot-Api-Secret-Token header of every webhook call.
func (c *Client) SetWebhook(ctx context.Context, url, secretToken string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return errors.New("telegram: webhook url must not be empty")
	}
	return c.call(ctx, "setWebhook", setWebhookRequest{URL: url, SecretToken: secretToken})
}

// call invokes a Bot API method and checks the response envelope.
func (c *Client) call(ctx context.Context, method string, payload any) error {
	token, err := c.resolveToken(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: marshal %s request: %w", method, err)
	}

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, methodURL(c.baseURL, token, method), bytes.NewReader(body))
	if reqErr != nil {
		return fmt.Errorf("telegram: create %s request: %w", method, reqErr)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.doJSONRequest(req, method)
	if err != nil {
		return fmt.Errorf("telegram: %s request failed: %w", method, err)
	}

	var envelope apiResponse
	if decErr := json.Unmarshal(raw, &envelope); decErr != nil {
		return fmt.Errorf("telegram: decode %s response: %w", method, decErr)
	}
	if !envelope.OK {
		return fmt.Errorf("telegram: %s rejected (code %d): %s", method, envelope.ErrorCode, envelope.Description)
	}
	return nil
}

func (c *Client) doJSONRequest(req *http.Request, method string) ([]byte, error) {
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		return nil, doErr
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			Method:     method,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}

func fetchTokenFromParamStore(ctx context.Context, getter Getter, name string) (string, error) {
	if getter == nil {
		return "", errors.New("telegram: paramstore getter is nil")
	}

	raw, err := getter.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("telegram: fetch token from paramstore: %w", err)
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("telegram: unmarshal paramstore token value as JSON: %w", err)
	}
	if tp.Token == "" {
		return "", errors.New("telegram: bot token is empty")
	}
	return tp.Token, nil
}
