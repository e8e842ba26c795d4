package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/codmarsenal/attachments-bot/internal/models"
)

func (b *Bot) handleStart(msg *tgbotapi.Message) {
	b.reply(msg.Chat.ID,
		"Welcome to the CODM attachments bot!\n\n"+
			"/browse — latest published builds\n"+
			"/submit — propose a weapon build\n"+
			"/my — your submissions\n"+
			"/report — report a submission\n"+
			"/help — all commands")
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) {
	text := "<b>Commands</b>\n" +
		"/submit — propose a weapon build\n" +
		"/my — list your submissions\n" +
		"/browse [br|mp] — latest published builds\n" +
		"/report &lt;id&gt; &lt;reason&gt; — report a submission\n" +
		"/cancel — abort the current submission"
	b.reply(msg.Chat.ID, text)
}

func (b *Bot) handleSubmit(ctx context.Context, msg *tgbotapi.Message) {
	enabled, err := b.settings.SystemEnabled(ctx)
	if err == nil && !enabled {
		b.reply(msg.Chat.ID, "Submissions are temporarily closed.")
		return
	}
	b.drafts.start(msg.Chat.ID)
	b.reply(msg.Chat.ID, "Which mode is this build for? Reply <b>br</b> or <b>mp</b>.")
}

func (b *Bot) handleCancel(msg *tgbotapi.Message) {
	b.drafts.clear(msg.Chat.ID)
	b.reply(msg.Chat.ID, "Cancelled.")
}

// advanceDraft walks the /submit conversation one step per message.
func (b *Bot) advanceDraft(ctx context.Context, msg *tgbotapi.Message) {
	d := b.drafts.get(msg.Chat.ID)
	if d == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)

	switch d.step {
	case stepMode:
		mode := models.GameMode(strings.ToLower(text))
		if !mode.Valid() {
			b.reply(msg.Chat.ID, "Please reply <b>br</b> or <b>mp</b>.")
			return
		}
		d.request.Mode = mode
		d.step = stepWeapon
		b.reply(msg.Chat.ID, "Which weapon? Type its name (e.g. AK-47).")

	case stepWeapon:
		if text == "" {
			b.reply(msg.Chat.ID, "Please type a weapon name.")
			return
		}
		d.request.CustomWeaponName = text
		d.step = stepName
		b.reply(msg.Chat.ID, "Name your build.")

	case stepName:
		if text == "" {
			b.reply(msg.Chat.ID, "The build needs a name.")
			return
		}
		d.request.Name = text
		d.step = stepDescription
		b.reply(msg.Chat.ID, "Describe the attachments (or send <b>-</b> to skip).")

	case stepDescription:
		if text != "-" {
			d.request.Description = text
		}
		d.step = stepImage
		b.reply(msg.Chat.ID, "Send a screenshot of the build (or <b>-</b> to skip).")

	case stepImage:
		if len(msg.Photo) > 0 {
			// Largest resolution is last.
			d.request.ImageFileID = msg.Photo[len(msg.Photo)-1].FileID
		} else if text != "-" {
			b.reply(msg.Chat.ID, "Send a photo or <b>-</b> to skip.")
			return
		}
		b.finishDraft(ctx, msg)
	}
}

func (b *Bot) finishDraft(ctx context.Context, msg *tgbotapi.Message) {
	d := b.drafts.get(msg.Chat.ID)
	b.drafts.clear(msg.Chat.ID)
	if d == nil {
		return
	}

	submission, err := b.submissions.Submit(ctx, msg.From.ID, &d.request)
	if err != nil {
		b.reply(msg.Chat.ID, userMessage(err))
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf(
		"Submission <b>#%d</b> received and queued for review. You will be notified of the decision.",
		submission.ID))
}

func (b *Bot) handleMySubmissions(ctx context.Context, msg *tgbotapi.Message) {
	submissions, err := b.submissions.ListByOwner(ctx, msg.From.ID, 10, 0)
	if err != nil {
		b.reply(msg.Chat.ID, userMessage(err))
		return
	}
	if len(submissions) == 0 {
		b.reply(msg.Chat.ID, "You have no submissions yet. Try /submit.")
		return
	}

	var sb strings.Builder
	sb.WriteString("<b>Your submissions</b>\n")
	for _, s := range submissions {
		fmt.Fprintf(&sb, "#%d %s [%s] — %s\n", s.ID, s.Name, strings.ToUpper(string(s.Mode)), s.Status)
	}
	b.reply(msg.Chat.ID, sb.String())
}

// handleBrowse shows the newest published builds for a mode with rating
// buttons. Each served card counts as a view.
func (b *Bot) handleBrowse(ctx context.Context, msg *tgbotapi.Message) {
	mode := models.GameMode(strings.ToLower(strings.TrimSpace(msg.CommandArguments())))
	if mode == "" {
		mode = models.ModeMP
	}
	if !mode.Valid() {
		b.reply(msg.Chat.ID, "Usage: /browse br or /browse mp")
		return
	}

	entries, err := b.catalog.Browse(ctx, mode, 5)
	if err != nil {
		b.reply(msg.Chat.ID, userMessage(err))
		return
	}
	if len(entries) == 0 {
		b.reply(msg.Chat.ID, "No published builds for this mode yet.")
		return
	}

	for _, entry := range entries {
		b.sendCatalogCard(msg.Chat.ID, &entry)
		if err := b.engagement.TrackView(ctx, msg.From.ID, entry.ID); err != nil {
			slog.Error("view tracking failed", "attachment_id", entry.ID, "error", err)
		}
	}
}

func (b *Bot) sendCatalogCard(chatID int64, entry *models.CatalogAttachment) {
	text := fmt.Sprintf("<b>%s</b> — %s [%s]\n%s",
		entry.Name, entry.WeaponName, strings.ToUpper(string(entry.Mode)), entry.Description)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👍", fmt.Sprintf("rate_up_%d", entry.ID)),
			tgbotapi.NewInlineKeyboardButtonData("👎", fmt.Sprintf("rate_down_%d", entry.ID)),
		),
	)

	if entry.ImageFileID != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(entry.ImageFileID))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeHTML
		photo.ReplyMarkup = keyboard
		if _, err := b.api.Send(photo); err != nil {
			slog.Error("catalog card send failed", "attachment_id", entry.ID, "error", err)
		}
		return
	}

	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeHTML
	m.ReplyMarkup = keyboard
	if _, err := b.api.Send(m); err != nil {
		slog.Error("catalog card send failed", "attachment_id", entry.ID, "error", err)
	}
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.SplitN(strings.TrimSpace(msg.CommandArguments()), " ", 2)
	if len(args) < 2 {
		b.reply(msg.Chat.ID, "Usage: /report &lt;submission id&gt; &lt;reason&gt;")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(msg.Chat.ID, "The submission ID must be a number.")
		return
	}

	report, err := b.reports.File(ctx, id, msg.From.ID, args[1])
	if err != nil {
		b.reply(msg.Chat.ID, userMessage(err))
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("Report <b>#%d</b> filed. Thank you.", report.ID))
}
