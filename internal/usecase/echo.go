package usecase

import (
	"context"
	"errors"
	"net/http"

	"github.com/xujw3/tgbot/internal/domain"
)

// echoPrefix is prepended to every inbound text before it is sent back.
const echoPrefix = "Echo: "

// MessageSender is the outbound side of the echo flow. *telegram.Client
// satisfies this interface.
type MessageSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// EchoService replies to each inbound text message with the same text
// prefixed by "Echo: ", addressed to the chat it came from.
type EchoService struct {
	sender MessageSender
}

// EchoResult reports what happened with one update. Ignored is true when the
// update carried no echoable message and no outbound call was made.
type EchoResult struct {
	Ignored bool
	ChatID  int64
	Text    string
}

func NewEchoService(sender MessageSender) (*EchoService, error) {
	if sender == nil {
		return nil, errors.New("usecase: message sender must not be nil")
	}
	return &EchoService{sender: sender}, nil
}

// Echo processes one webhook update. Updates without a message, without a
// chat id, or without a text field are ignored; a message whose text is the
// empty string is still echoed as "Echo: ".
func (s *EchoService) Echo(ctx context.Context, update domain.Update) (EchoResult, error) {
	msg := update.Message
	if msg == nil || msg.Chat.ID == 0 || msg.Text == nil {
		return EchoResult{Ignored: true}, nil
	}

	reply := echoPrefix + *msg.Text
	if err := s.sender.SendMessage(ctx, msg.Chat.ID, reply); err != nil {
		if status, ok := upstreamStatusCode(err); ok && status == http.StatusTooManyRequests {
			return EchoResult{}, newError(ErrorRateLimited, "telegram_rate_limited", err)
		}
		return EchoResult{}, newError(ErrorUpstream, "telegram_send_error", err)
	}

	return EchoResult{ChatID: msg.Chat.ID, Text: reply}, nil
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}
