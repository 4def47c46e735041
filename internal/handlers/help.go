package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const helpText = `📚 *CabinBuddy Help*

*Availability:*
• /availability <start> <end> [property] - Check a stay for conflicts
• /alternatives <start> <end> [property] - Suggest free dates nearby

_Dates are YYYY-MM-DD; the end date is the checkout day._

I also post reservation, billing and payment updates here.`

// HelpHandler handles the /help command
type HelpHandler struct {
	logger *logrus.Logger
}

// NewHelpHandler creates a new help command handler
func NewHelpHandler(logger *logrus.Logger) *HelpHandler {
	return &HelpHandler{logger: logger}
}

// Handle processes the /help command
func (h *HelpHandler) Handle(_ context.Context, message *tgbotapi.Message, _ []string) (string, error) {
	h.logger.WithField("chat_id", message.Chat.ID).Info("Sent help message")
	return helpText, nil
}
