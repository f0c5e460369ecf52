package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/fd1az/crossarb/internal/httpclient"
)

// TelegramSender delivers notifications via the Telegram Bot API.
type TelegramSender struct {
	token  string
	chatID string
	client httpclient.Client
}

// NewTelegramSender creates a TelegramSender for the given bot token and chat ID.
func NewTelegramSender(token, chatID string) (*TelegramSender, error) {
	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithBaseURL("https://api.telegram.org"),
		httpclient.WithProviderName("telegram"),
		httpclient.WithRequestTimeout(10*time.Second),
	)
	if err != nil {
		return nil, err
	}

	return &TelegramSender{
		token:  token,
		chatID: chatID,
		client: client,
	}, nil
}

// Send posts a message to the configured chat using the sendMessage API.
// The title is rendered in bold Markdown.
func (t *TelegramSender) Send(ctx context.Context, title, message string) error {
	payload := map[string]string{
		"chat_id":    t.chatID,
		"text":       fmt.Sprintf("*%s*\n%s", title, message),
		"parse_mode": "Markdown",
	}

	resp, err := t.client.NewRequest().
		SetBody(payload).
		Post(ctx, fmt.Sprintf("/bot%s/sendMessage", t.token))
	if err != nil {
		return fmt.Errorf("telegram: send request: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("telegram: unexpected status %d: %s", resp.StatusCode, resp.String())
	}

	return nil
}

// Name returns the sender identifier.
func (t *TelegramSender) Name() string {
	return "telegram"
}
