package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Sender delivers a Markdown message to a chat
type Sender interface {
	SendMessage(chatID int64, text string) error
}

// CommandHandler builds the reply to one command. args are the
// whitespace-separated words after the command.
type CommandHandler interface {
	Handle(ctx context.Context, message *tgbotapi.Message, args []string) (string, error)
}

// Router handles message routing and command parsing
type Router struct {
	logger   *logrus.Logger
	handlers map[string]CommandHandler
}

// NewRouter creates a new message router
func NewRouter(logger *logrus.Logger) *Router {
	return &Router{
		logger:   logger,
		handlers: make(map[string]CommandHandler),
	}
}

// RegisterCommand registers a command handler
func (r *Router) RegisterCommand(command string, handler CommandHandler) {
	r.handlers[command] = handler
	r.logger.Debugf("Registered command: %s", command)
}

// HandleMessage dispatches a command message and sends the reply
func (r *Router) HandleMessage(ctx context.Context, sender Sender, message *tgbotapi.Message) {
	if message.Text == "" || !message.IsCommand() {
		return
	}

	fields := logrus.Fields{
		"chat_id":    message.Chat.ID,
		"message_id": message.MessageID,
		"command":    message.Command(),
	}
	if message.From != nil {
		fields["user_id"] = message.From.ID
	}
	log := r.logger.WithFields(fields)
	log.Info("Received command")

	command := message.Command()
	args := strings.Fields(message.CommandArguments())

	handler, exists := r.handlers[command]
	if !exists {
		log.Warn("Unknown command")
		r.reply(log, sender, message.Chat.ID, "❓ Unknown command. Use /help to see available commands.")
		return
	}

	reply, err := handler.Handle(ctx, message, args)
	if err != nil {
		log.WithError(err).Error("Command handler failed")
		r.reply(log, sender, message.Chat.ID, "❌ An error occurred while processing your command. Please try again.")
		return
	}
	if reply != "" {
		r.reply(log, sender, message.Chat.ID, reply)
	}
}

func (r *Router) reply(log *logrus.Entry, sender Sender, chatID int64, text string) {
	if err := sender.SendMessage(chatID, text); err != nil {
		log.WithError(err).Error("Failed to send reply")
	}
}
