package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"techfest/internal/domain/registration"
)

// reply sends messages back to one chat.
type reply struct {
	ctx    context.Context
	out    messageSender
	chatID int64
}

func (r *reply) send(text string) {
	r.sendParams(&bot.SendMessageParams{ChatID: r.chatID, Text: text})
}

func (r *reply) sendRemoveKeyboard(text string) {
	r.sendParams(&bot.SendMessageParams{
		ChatID:      r.chatID,
		Text:        text,
		ReplyMarkup: &models.ReplyKeyboardRemove{RemoveKeyboard: true},
	})
}

func (r *reply) sendParams(params *bot.SendMessageParams) {
	if _, err := r.out.SendMessage(r.ctx, params); err != nil {
		slog.Warn("telegram_send_failed", "chat_id", r.chatID, "error", err)
	}
}

// prompt asks for one field. Single-choice fields get a reply keyboard.
func (r *reply) prompt(spec registration.FieldSpec) {
	params := &bot.SendMessageParams{ChatID: r.chatID, Text: promptText(spec)}
	switch spec.Kind {
	case registration.KindRadio, registration.KindSelect:
		params.ReplyMarkup = optionKeyboard(spec.Options)
	case registration.KindAgree:
		params.ReplyMarkup = optionKeyboard([]registration.Option{{Value: "yes", Label: "Yes"}, {Value: "no", Label: "No"}})
	default:
		params.ReplyMarkup = &models.ReplyKeyboardRemove{RemoveKeyboard: true}
	}
	r.sendParams(params)
}

func promptText(spec registration.FieldSpec) string {
	var sb strings.Builder
	sb.WriteString(spec.Label)
	if !spec.Required && spec.Kind != registration.KindCheckbox {
		fmt.Fprintf(&sb, " (optional, send %s to skip)", registration.SkipAnswer)
	}
	switch spec.Kind {
	case registration.KindCheckbox:
		sb.WriteString("\nReply with one or more numbers separated by commas")
		if !spec.Required {
			fmt.Fprintf(&sb, ", or %s for none", registration.SkipAnswer)
		}
		sb.WriteString(":")
	case registration.KindAgree:
		sb.WriteString("? (yes/no)")
	case registration.KindEmail:
		sb.WriteString(" (e.g. ann@example.com)")
	case registration.KindPhone:
		sb.WriteString(" (10 digits)")
	}
	for i, o := range spec.Options {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, o.Label)
	}
	return sb.String()
}

func optionKeyboard(options []registration.Option) *models.ReplyKeyboardMarkup {
	rows := make([][]models.KeyboardButton, 0, (len(options)+1)/2)
	for i := 0; i < len(options); i += 2 {
		row := []models.KeyboardButton{{Text: options[i].Label}}
		if i+1 < len(options) {
			row = append(row, models.KeyboardButton{Text: options[i+1].Label})
		}
		rows = append(rows, row)
	}
	return &models.ReplyKeyboardMarkup{
		Keyboard:        rows,
		OneTimeKeyboard: true,
		ResizeKeyboard:  true,
	}
}
