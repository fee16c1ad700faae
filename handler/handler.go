package handler

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/xujw3/tgbot/internal/domain"
	"github.com/xujw3/tgbot/internal/usecase"
)

const (
	correlationIDHeader = "X-Correlation-Id"
	secretTokenHeader   = "X-Telegram-Bot-Api-Secret-Token"
)

// EchoUseCase is the application-layer contract the handler depends on.
type EchoUseCase interface {
	Echo(ctx context.Context, update domain.Update) (usecase.EchoResult, error)
}

// Handler adapts API Gateway proxy events to the echo use case. It always
// acknowledges deliverable updates with 200: a non-2xx response would make
// Telegram re-send the update, and failed outbound sends are logged rather
// than retried.
type Handler struct {
	echo        EchoUseCase
	secretToken string
	logger      *slog.Logger
}

type Option func(*Handler)

// WithSecretToken enables verification of the shared webhook secret sent by
// Telegram in the X-Telegram-Bot-Api-Secret-Token header. Empty disables
// the check.
func WithSecretToken(token string) Option {
	return func(h *Handler) {
		h.secretToken = strings.TrimSpace(token)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

func NewHandler(echo EchoUseCase, opts ...Option) (*Handler, error) {
	if echo == nil {
		return nil, errors.New("handler: echo use case must not be nil")
	}
	h := &Handler{echo: echo, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

type okResponse struct {
	OK bool `json:"ok"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handle processes one webhook delivery.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(event.Headers)
	logger := h.logger.With("correlationId", corrID)

	if h.secretToken != "" {
		provided := headerValue(event.Headers, secretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(h.secretToken)) != 1 {
			logger.Warn("webhook secret mismatch")
			return respondError(http.StatusForbidden, "FORBIDDEN", corrID), nil
		}
	}

	var update domain.Update
	if err := json.Unmarshal([]byte(event.Body), &update); err != nil {
		logger.Warn("undecodable webhook body", "err", err)
		return respondError(http.StatusBadRequest, string(usecase.ErrorInvalidInput), corrID), nil
	}

	res, err := h.echo.Echo(ctx, update)
	if err != nil {
		// Acknowledge anyway; see the type comment.
		logger.Error("echo failed", "code", errorCode(err), "updateId", update.UpdateID, "err", err)
		return respondOK(corrID), nil
	}

	if res.Ignored {
		logger.Info("update ignored", "updateId", update.UpdateID)
	} else {
		logger.Info("echoed message", "updateId", update.UpdateID, "chatId", res.ChatID)
	}
	return respondOK(corrID), nil
}

func respondOK(corrID string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(okResponse{OK: true})
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    responseHeaders(corrID),
		Body:       string(body),
	}
}

func respondError(status int, code, corrID string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(errorResponse{Error: code})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    responseHeaders(corrID),
		Body:       string(body),
	}
}

func responseHeaders(corrID string) map[string]string {
	return map[string]string{
		"Content-Type":      "application/json",
		correlationIDHeader: corrID,
	}
}

// correlationID returns the caller-provided correlation id, or mints one.
func correlationID(headers map[string]string) string {
	if v := headerValue(headers, correlationIDHeader); v != "" {
		return v
	}
	return uuid.NewString()
}

// headerValue looks up a header case-insensitively; API Gateway does not
// normalize header casing.
func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func errorCode(err error) string {
	var ucErr *usecase.Error
	if errors.As(err, &ucErr) {
		return string(ucErr.Code)
	}
	return string(usecase.ErrorInternal)
}
