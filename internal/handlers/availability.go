package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/models"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/service"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/pkg/daterange"
)

const notLinked = "This chat is not linked to an organization. Use /start for details."

// stayQuery is the parsed "<start> <end> [property]" argument list
type stayQuery struct {
	org      *models.Organization
	span     daterange.Range
	property string
}

// parseStay resolves the chat's organization and the requested stay. A
// non-empty reply means the input was rejected and should be sent as is.
func parseStay(ctx context.Context, svc *service.Service, message *tgbotapi.Message, args []string, usage string) (*stayQuery, string, error) {
	if len(args) < 2 {
		return nil, usage, nil
	}

	org, err := svc.Organizations.GetByChatID(ctx, message.Chat.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load organization: %w", err)
	}
	if org == nil {
		return nil, notLinked, nil
	}

	start, err := daterange.Parse(args[0])
	if err != nil {
		return nil, "❌ " + err.Error(), nil
	}
	end, err := daterange.Parse(args[1])
	if err != nil {
		return nil, "❌ " + err.Error(), nil
	}
	span := daterange.New(start, end)
	if !span.Valid() {
		return nil, "❌ End date must be after start date", nil
	}

	return &stayQuery{org: org, span: span, property: strings.Join(args[2:], " ")}, "", nil
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// AvailabilityHandler handles the /availability command
type AvailabilityHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewAvailabilityHandler creates a new availability command handler
func NewAvailabilityHandler(svc *service.Service, logger *logrus.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc, logger: logger}
}

// Handle processes the /availability command
func (h *AvailabilityHandler) Handle(ctx context.Context, message *tgbotapi.Message, args []string) (string, error) {
	q, reply, err := parseStay(ctx, h.svc, message, args, "Usage: /availability <start> <end> [property]")
	if q == nil {
		return reply, err
	}

	result := h.svc.Conflicts.DetectConflicts(ctx, service.ConflictQuery{
		OrganizationID: q.org.ID,
		Range:          q.span,
		PropertyName:   q.property,
	})

	var sb strings.Builder
	switch {
	case result.CheckFailed:
		sb.WriteString("⚠️ Could not check availability right now. Please try again.")
	case result.HasConflicts():
		fmt.Fprintf(&sb, "❌ *%s* is taken:\n", q.span)
		for _, c := range result.Conflicts {
			fmt.Fprintf(&sb, "• %s: %s\n", escape(c.FamilyGroup), c.Range())
		}
		sb.WriteString("\nTry /alternatives for nearby dates.")
	default:
		fmt.Fprintf(&sb, "✅ *%s* is available", q.span)
		if q.property != "" {
			fmt.Fprintf(&sb, " at %s", escape(q.property))
		}
	}
	if !result.CheckFailed {
		for _, w := range result.Warnings {
			fmt.Fprintf(&sb, "\nℹ️ %s", escape(w))
		}
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id":         message.Chat.ID,
		"organization_id": q.org.ID,
		"conflicts":       len(result.Conflicts),
	}).Info("Checked availability")

	return sb.String(), nil
}

// AlternativesHandler handles the /alternatives command
type AlternativesHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewAlternativesHandler creates a new alternatives command handler
func NewAlternativesHandler(svc *service.Service, logger *logrus.Logger) *AlternativesHandler {
	return &AlternativesHandler{svc: svc, logger: logger}
}

// Handle processes the /alternatives command
func (h *AlternativesHandler) Handle(ctx context.Context, message *tgbotapi.Message, args []string) (string, error) {
	q, reply, err := parseStay(ctx, h.svc, message, args, "Usage: /alternatives <start> <end> [property]")
	if q == nil {
		return reply, err
	}

	alternatives := h.svc.Conflicts.SuggestAlternativeDates(ctx, service.AlternativeQuery{
		ConflictQuery: service.ConflictQuery{
			OrganizationID: q.org.ID,
			Range:          q.span,
			PropertyName:   q.property,
		},
	})

	h.logger.WithFields(logrus.Fields{
		"chat_id":         message.Chat.ID,
		"organization_id": q.org.ID,
		"found":           len(alternatives),
	}).Info("Suggested alternative dates")

	if len(alternatives) == 0 {
		return fmt.Sprintf("😕 No free %d-night stays found near %s", q.span.Nights(), q.span), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 *Free %d-night stays near %s:*\n", q.span.Nights(), q.span)
	for _, alt := range alternatives {
		fmt.Fprintf(&sb, "• %s\n", alt)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
