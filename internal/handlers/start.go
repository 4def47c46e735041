package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/service"
)

// StartHandler handles the /start command
type StartHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewStartHandler creates a new start command handler
func NewStartHandler(svc *service.Service, logger *logrus.Logger) *StartHandler {
	return &StartHandler{svc: svc, logger: logger}
}

// Handle processes the /start command
func (h *StartHandler) Handle(ctx context.Context, message *tgbotapi.Message, args []string) (string, error) {
	org, err := h.svc.Organizations.GetByChatID(ctx, message.Chat.ID)
	if err != nil {
		return "", fmt.Errorf("failed to load organization: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"linked":  org != nil,
	}).Info("Sent start message")

	if org == nil {
		return fmt.Sprintf("🏡 *Welcome to CabinBuddy!*\n\n"+
			"This chat is not linked to an organization yet. "+
			"Ask an administrator to link chat ID `%d`.", message.Chat.ID), nil
	}

	groups, err := h.svc.FamilyGroups.List(ctx, org.ID)
	if err != nil {
		return "", fmt.Errorf("failed to list family groups: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🏡 *Welcome to CabinBuddy!*\n\n"+
		"This chat receives booking and billing updates for *%s*.\n",
		tgbotapi.EscapeText(tgbotapi.ModeMarkdown, org.Name))
	if len(groups) > 0 {
		sb.WriteString("\nFamily groups:\n")
		for _, g := range groups {
			fmt.Fprintf(&sb, "• %s\n", tgbotapi.EscapeText(tgbotapi.ModeMarkdown, g.Name))
		}
	}
	sb.WriteString("\nUse /help to see what I can do.")

	return sb.String(), nil
}
