package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	chatID int64
	text   string
}

type fakeSender struct {
	sent []sentMessage
	err  error
}

func (s *fakeSender) SendMessage(chatID int64, text string) error {
	s.sent = append(s.sent, sentMessage{chatID: chatID, text: text})
	return s.err
}

type handlerFunc func(ctx context.Context, message *tgbotapi.Message, args []string) (string, error)

func (f handlerFunc) Handle(ctx context.Context, message *tgbotapi.Message, args []string) (string, error) {
	return f(ctx, message, args)
}

func command(chatID int64, text, name string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 1,
		Chat:      &tgbotapi.Chat{ID: chatID},
		From:      &tgbotapi.User{ID: 42},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name) + 1}},
	}
}

func TestRouter_HandleMessage(t *testing.T) {
	router := NewRouter(logger.Discard())

	var gotArgs []string
	router.RegisterCommand("availability", handlerFunc(func(_ context.Context, _ *tgbotapi.Message, args []string) (string, error) {
		gotArgs = args
		return "free", nil
	}))
	router.RegisterCommand("broken", handlerFunc(func(context.Context, *tgbotapi.Message, []string) (string, error) {
		return "", errors.New("boom")
	}))

	t.Run("routes command with arguments", func(t *testing.T) {
		sender := &fakeSender{}
		router.HandleMessage(context.Background(), sender, command(-100, "/availability 2024-07-01  2024-07-05", "availability"))

		assert.Equal(t, []string{"2024-07-01", "2024-07-05"}, gotArgs)
		require.Len(t, sender.sent, 1)
		assert.Equal(t, sentMessage{chatID: -100, text: "free"}, sender.sent[0])
	})

	t.Run("handler error sends generic failure", func(t *testing.T) {
		sender := &fakeSender{}
		router.HandleMessage(context.Background(), sender, command(-100, "/broken", "broken"))

		require.Len(t, sender.sent, 1)
		assert.Contains(t, sender.sent[0].text, "An error occurred")
	})

	t.Run("unknown command", func(t *testing.T) {
		sender := &fakeSender{}
		router.HandleMessage(context.Background(), sender, command(-100, "/nope", "nope"))

		require.Len(t, sender.sent, 1)
		assert.Contains(t, sender.sent[0].text, "Unknown command")
	})

	t.Run("plain text is ignored", func(t *testing.T) {
		sender := &fakeSender{}
		router.HandleMessage(context.Background(), sender, &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Text: "hello"})

		assert.Empty(t, sender.sent)
	})
}
