// Package telegram runs the registration wizard as a Telegram chat: one
// prompt per field, with the step gate applied when the last field of a
// step has been answered.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"techfest/internal/domain/registration"
	"techfest/internal/domain/wizard"
)

// messageSender is the subset of *bot.Bot used to reply.
type messageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

const helpText = `TechFest 2025 registration

/register - start or continue your registration
/back - go back one step
/status - show your progress
/submit - retry a failed submission
/cancel - discard your registration in progress
/reset - register again after completing
/help - show this message`

// chatState tracks which fields of the current step still need an answer.
type chatState struct {
	pending []string
}

// Bot routes chat messages to one wizard session per Telegram user.
type Bot struct {
	wizards       *wizard.Sessions
	submitTimeout time.Duration

	mu    sync.Mutex
	chats map[string]*chatState
}

// New creates a bot whose wizard sessions come from wizards.
// PRE: submitTimeout > 0
func New(wizards *wizard.Sessions, submitTimeout time.Duration) *Bot {
	return &Bot{
		wizards:       wizards,
		submitTimeout: submitTimeout,
		chats:         make(map[string]*chatState),
	}
}

// Run long-polls Telegram until ctx is cancelled.
func Run(ctx context.Context, token string, b *Bot) error {
	tb, err := bot.New(token, bot.WithDefaultHandler(b.Handler))
	if err != nil {
		return fmt.Errorf("creating telegram bot: %w", err)
	}
	slog.Info("telegram_bot_started")
	tb.Start(ctx)
	return nil
}

// Handler is the bot.HandlerFunc for every update.
func (b *Bot) Handler(ctx context.Context, tb *bot.Bot, update *models.Update) {
	b.handle(ctx, tb, update)
}

// IdentityKey is the wizard session key and user id of a Telegram user.
func IdentityKey(userID int64) string {
	return "telegram:" + strconv.FormatInt(userID, 10)
}

func (b *Bot) handle(ctx context.Context, out messageSender, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID
	key := IdentityKey(update.Message.From.ID)
	text := strings.TrimSpace(update.Message.Text)

	r := &reply{ctx: ctx, out: out, chatID: chatID}
	switch strings.ToLower(strings.SplitN(text, "@", 2)[0]) {
	case "/start", "/help":
		r.send(helpText)
	case "/register":
		b.register(r, key)
	case "/back":
		b.back(r, key)
	case "/status":
		b.status(r, key)
	case "/submit":
		b.submit(r, key)
	case "/cancel":
		b.wizards.Drop(key)
		b.setPending(key, nil)
		r.sendRemoveKeyboard("Registration cancelled. Send /register to start over.")
	case "/reset":
		b.reset(r, key)
	default:
		b.answer(r, key, text)
	}
}

func (b *Bot) register(r *reply, key string) {
	c := b.wizards.Get(key)
	st := c.State()
	if st.IsComplete {
		r.send("You are already registered. Send /reset to register again.")
		return
	}
	b.startStep(r, key, st.CurrentStep)
}

func (b *Bot) back(r *reply, key string) {
	c, ok := b.wizards.Lookup(key)
	if !ok {
		r.send("No registration in progress. Send /register to start.")
		return
	}
	if err := c.Retreat(); err != nil {
		r.send("You are already on the first step.")
		return
	}
	b.startStep(r, key, c.State().CurrentStep)
}

func (b *Bot) reset(r *reply, key string) {
	c, ok := b.wizards.Lookup(key)
	if !ok || c.Reset() != nil {
		r.send("Nothing to reset. Send /register to start.")
		return
	}
	b.startStep(r, key, registration.StepPersonal)
}

func (b *Bot) status(r *reply, key string) {
	c, ok := b.wizards.Lookup(key)
	if !ok {
		r.send("No registration in progress. Send /register to start.")
		return
	}
	st := c.State()
	var sb strings.Builder
	if st.IsComplete {
		sb.WriteString("Registration complete.\n")
	} else {
		fmt.Fprintf(&sb, "Step %d of %d: %s\n", int(st.CurrentStep)+1, st.StepCount, st.StepTitle)
	}
	for _, line := range st.Values.Summary() {
		fmt.Fprintf(&sb, "%s: %s\n", line.Label, line.Value)
	}
	if st.FormError != "" {
		fmt.Fprintf(&sb, "\n%s", st.FormError)
	}
	r.send(sb.String())
}

// answer stores text in the next pending field and moves the wizard along
// once the step's fields are all answered.
func (b *Bot) answer(r *reply, key, text string) {
	pending := b.pending(key)
	c, ok := b.wizards.Lookup(key)
	if !ok || len(pending) == 0 {
		r.send("Send /register to start your registration, or /help for commands.")
		return
	}

	spec, _, _ := registration.FieldSpecFor(pending[0])
	rec := c.Values()
	if err := rec.Apply(spec, text); err != nil {
		r.send(err.Error())
		r.prompt(spec)
		return
	}
	if err := c.Update(rec); err != nil {
		r.send(transitionMessage(err))
		return
	}

	pending = pending[1:]
	b.setPending(key, pending)
	if len(pending) > 0 {
		next, _, _ := registration.FieldSpecFor(pending[0])
		r.prompt(next)
		return
	}

	if c.State().CurrentStep == registration.LastStep {
		b.submit(r, key)
		return
	}
	if err := c.Advance(); err != nil {
		b.reportInvalid(r, key, err)
		return
	}
	b.startStep(r, key, c.State().CurrentStep)
}

func (b *Bot) submit(r *reply, key string) {
	c, ok := b.wizards.Lookup(key)
	if !ok {
		r.send("No registration in progress. Send /register to start.")
		return
	}

	ctx, cancel := context.WithTimeout(r.ctx, b.submitTimeout)
	defer cancel()
	stored, err := c.Submit(ctx, &wizard.Identity{UserID: key, Email: c.Values().Email})
	if err != nil {
		var ve *wizard.ValidationError
		if errors.As(err, &ve) {
			b.reportInvalid(r, key, err)
			return
		}
		slog.Warn("registration_event", "event", "telegram_submit_failed", "user", key, "error", err)
		r.send(transitionMessage(err) + "\nSend /submit to try again.")
		return
	}

	b.setPending(key, nil)
	slog.Info("registration_event", "event", "telegram_submitted", "user", key, "registration_id", stored.ID)
	var sb strings.Builder
	sb.WriteString("Registration Successful!\n\n")
	for _, line := range stored.Summary() {
		fmt.Fprintf(&sb, "%s: %s\n", line.Label, line.Value)
	}
	fmt.Fprintf(&sb, "\nReference: %s", stored.ID)
	r.sendRemoveKeyboard(sb.String())
}

// reportInvalid lists the field errors and re-asks only the failing fields.
func (b *Bot) reportInvalid(r *reply, key string, err error) {
	var ve *wizard.ValidationError
	if !errors.As(err, &ve) {
		r.send(transitionMessage(err))
		return
	}
	var sb strings.Builder
	sb.WriteString("Please fix the following:\n")
	for _, fe := range ve.Fields {
		fmt.Fprintf(&sb, "- %s\n", fe.Message)
	}
	r.send(sb.String())

	fields := ve.Fields.Fields()
	b.setPending(key, fields)
	spec, _, _ := registration.FieldSpecFor(fields[0])
	r.prompt(spec)
}

func (b *Bot) startStep(r *reply, key string, step registration.Step) {
	spec := step.Spec()
	names := make([]string, len(spec.Fields))
	for i, f := range spec.Fields {
		names[i] = f.Name
	}
	b.setPending(key, names)
	r.send(fmt.Sprintf("Step %d of %d: %s", int(step)+1, registration.StepCount, spec.Heading))
	r.prompt(spec.Fields[0])
}

// Prune drops wizard sessions idle for longer than maxIdle together with the
// chat state of every session that no longer exists.
// POST: every key in chats has a live wizard session
func (b *Bot) Prune(maxIdle time.Duration) int {
	removed := b.wizards.Prune(maxIdle)

	b.mu.Lock()
	defer b.mu.Unlock()
	for key := range b.chats {
		if !b.wizards.Has(key) {
			delete(b.chats, key)
		}
	}
	return removed
}

func (b *Bot) pending(key string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if st, ok := b.chats[key]; ok {
		return st.pending
	}
	return nil
}

func (b *Bot) setPending(key string, fields []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(fields) == 0 {
		delete(b.chats, key)
		return
	}
	b.chats[key] = &chatState{pending: fields}
}

func transitionMessage(err error) string {
	switch {
	case errors.Is(err, wizard.ErrSubmitInProgress):
		return "Your registration is being submitted, please wait."
	case errors.Is(err, wizard.ErrInvalidTransition):
		return "That is not possible right now. Send /status to see where you are."
	}
	return err.Error()
}
