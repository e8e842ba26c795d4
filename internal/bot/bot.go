package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/codmarsenal/attachments-bot/internal/services"
)

// Bot drives the Telegram side: user submission and report flows plus the
// inline admin review panel. All domain decisions live in the services; the
// bot only parses intents and renders results.
type Bot struct {
	api         *tgbotapi.BotAPI
	users       *services.UserService
	submissions *services.SubmissionService
	reports     *services.ReportService
	engagement  *services.EngagementService
	catalog     *services.CatalogService
	settings    *services.SettingsService
	stats       *services.StatsService
	roles       services.RoleChecker
	drafts      *draftStore
}

func New(
	token string,
	users *services.UserService,
	submissions *services.SubmissionService,
	reports *services.ReportService,
	engagement *services.EngagementService,
	catalog *services.CatalogService,
	settings *services.SettingsService,
	stats *services.StatsService,
	roles services.RoleChecker,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	slog.Info("telegram bot authorized", "username", api.Self.UserName)

	return &Bot{
		api:         api,
		users:       users,
		submissions: submissions,
		reports:     reports,
		engagement:  engagement,
		catalog:     catalog,
		settings:    settings,
		stats:       stats,
		roles:       roles,
		drafts:      newDraftStore(),
	}, nil
}

// Run long-polls updates until ctx is cancelled. Each update is handled on
// its own goroutine; handlers are short synchronous DB transactions.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in update handler", "panic", r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	from := msg.From
	if from == nil {
		return
	}
	if _, err := b.users.EnsureUser(ctx, from.ID, from.UserName, from.FirstName, from.LanguageCode); err != nil {
		slog.Error("user upsert failed", "user_id", from.ID, "error", err)
	}

	if msg.IsCommand() {
		b.drafts.clear(msg.Chat.ID)
		b.handleCommand(ctx, msg)
		return
	}

	// Non-command messages only matter inside a submit conversation.
	if b.drafts.get(msg.Chat.ID) != nil {
		b.advanceDraft(ctx, msg)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.handleStart(msg)
	case "help":
		b.handleHelp(msg)
	case "submit":
		b.handleSubmit(ctx, msg)
	case "cancel":
		b.handleCancel(msg)
	case "my":
		b.handleMySubmissions(ctx, msg)
	case "browse":
		b.handleBrowse(ctx, msg)
	case "report":
		b.handleReport(ctx, msg)
	case "pending":
		b.handlePending(ctx, msg)
	case "approve", "reject", "irrelevant", "remove", "restore":
		b.handleReviewCommand(ctx, msg)
	case "ban", "unban":
		b.handleBanCommand(ctx, msg)
	case "stats":
		b.handleStats(ctx, msg)
	default:
		b.reply(msg.Chat.ID, "Unknown command. Try /help.")
	}
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		slog.Error("send failed", "chat_id", chatID, "error", err)
	}
}

// userMessage maps workflow errors onto user-facing text. Nothing in the
// taxonomy is fatal; the user just gets told what went wrong.
func userMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return "Not found. Check the ID and try again."
	case errors.Is(err, services.ErrInvalidTransition):
		return "That submission has already been decided."
	case errors.Is(err, services.ErrPermissionDenied):
		return "You are not allowed to do that."
	case errors.Is(err, services.ErrQuotaExceeded):
		return "Daily submission limit reached. Try again tomorrow."
	case errors.Is(err, services.ErrDuplicatePending):
		return "You already have a pending report on this submission."
	case errors.Is(err, services.ErrSystemDisabled):
		return "Submissions are temporarily closed."
	case errors.Is(err, services.ErrValidation):
		return trimValidation(err)
	case errors.Is(err, services.ErrStorageUnavailable):
		return "Temporary storage problem, please try again shortly."
	default:
		return "Something went wrong, please try again."
	}
}

func trimValidation(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		return strings.ToUpper(msg[i+2:i+3]) + msg[i+3:]
	}
	return msg
}
