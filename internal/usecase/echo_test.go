package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xujw3/tgbot/internal/domain"
)

type stubSender struct {
	err    error
	calls  int
	chatID int64
	text   string
}

func (s *stubSender) SendMessage(_ context.Context, chatID int64, text string) error {
	s.calls++
	s.chatID = chatID
	s.text = text
	return s.err
}

type stubStatusError struct {
	status int
}

func (e *stubStatusError) Error() string       { return "upstream status" }
func (e *stubStatusError) HTTPStatusCode() int { return e.status }

func strPtr(s string) *string { return &s }

func textUpdate(chatID int64, text *string) domain.Update {
	return domain.Update{
		UpdateID: 1,
		Message: &domain.Message{
			MessageID: 10,
			Chat:      domain.Chat{ID: chatID, Type: "private"},
			Text:      text,
		},
	}
}

func TestNewEchoService_NilSender(t *testing.T) {
	_, err := NewEchoService(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be nil")
}

func TestEcho_HappyPath(t *testing.T) {
	sender := &stubSender{}
	svc, err := NewEchoService(sender)
	require.NoError(t, err)

	res, err := svc.Echo(context.Background(), textUpdate(42, strPtr("Hello, World!")))
	require.NoError(t, err)
	require.False(t, res.Ignored)
	require.Equal(t, int64(42), res.ChatID)
	require.Equal(t, "Echo: Hello, World!", res.Text)
	require.Equal(t, 1, sender.calls)
	require.Equal(t, int64(42), sender.chatID, "reply must target the inbound chat")
	require.Equal(t, "Echo: Hello, World!", sender.text)
}

func TestEcho_EmptyTextStillEchoes(t *testing.T) {
	sender := &stubSender{}
	svc, err := NewEchoService(sender)
	require.NoError(t, err)

	res, err := svc.Echo(context.Background(), textUpdate(42, strPtr("")))
	require.NoError(t, err)
	require.False(t, res.Ignored)
	require.Equal(t, "Echo: ", sender.text)
}

func TestEcho_IgnoredUpdates(t *testing.T) {
	cases := []struct {
		name   string
		update domain.Update
	}{
		{name: "no message", update: domain.Update{UpdateID: 1}},
		{name: "no text field", update: textUpdate(42, nil)},
		{name: "no chat id", update: textUpdate(0, strPtr("hi"))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sender := &stubSender{}
			svc, err := NewEchoService(sender)
			require.NoError(t, err)

			res, err := svc.Echo(context.Background(), tc.update)
			require.NoError(t, err)
			require.True(t, res.Ignored)
			require.Zero(t, sender.calls, "no outbound call for ignored updates")
		})
	}
}

func TestEcho_SendErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code ErrorCode
	}{
		{name: "rate limited", err: &stubStatusError{status: http.StatusTooManyRequests}, code: ErrorRateLimited},
		{name: "upstream 502", err: &stubStatusError{status: http.StatusBadGateway}, code: ErrorUpstream},
		{name: "plain error", err: errors.New("connection refused"), code: ErrorUpstream},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sender := &stubSender{err: tc.err}
			svc, err := NewEchoService(sender)
			require.NoError(t, err)

			_, err = svc.Echo(context.Background(), textUpdate(42, strPtr("hi")))
			require.Error(t, err)

			var ucErr *Error
			require.ErrorAs(t, err, &ucErr)
			require.Equal(t, tc.code, ucErr.Code)
			require.ErrorIs(t, err, tc.err)
		})
	}
}
