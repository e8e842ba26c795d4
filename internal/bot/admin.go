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

// handlePending shows the review queue with inline decision buttons.
func (b *Bot) handlePending(ctx context.Context, msg *tgbotapi.Message) {
	if !b.roles.IsAdmin(ctx, msg.From.ID) {
		b.reply(msg.Chat.ID, "You are not allowed to do that.")
		return
	}

	submissions, total, err := b.submissions.ListByStatus(ctx, models.StatusPending, 5, 0)
	if err != nil {
		b.reply(msg.Chat.ID, userMessage(err))
		return
	}
	if len(submissions) == 0 {
		b.reply(msg.Chat.ID, "The review queue is empty.")
		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf("<b>%d pending</b>, showing %d:", total, len(submissions)))
	for _, s := range submissions {
		b.sendReviewCard(msg.Chat.ID, &s)
	}
}

func (b *Bot) sendReviewCard(chatID int64, s *models.Submission) {
	text := fmt.Sprintf(
		"<b>#%d %s</b>\nWeapon: %s [%s]\nBy: %d\nReports: %d\n\n%s",
		s.ID, s.Name, s.WeaponName(nil), strings.ToUpper(string(s.Mode)),
		s.UserID, s.ReportCount, s.Description,
	)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", fmt.Sprintf("ua_approve_%d", s.ID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Reject", fmt.Sprintf("ua_reject_%d", s.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚫 Irrelevant", fmt.Sprintf("ua_irrelevant_%d", s.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", fmt.Sprintf("ua_delete_%d", s.ID)),
		),
	)

	if s.ImageFileID != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(s.ImageFileID))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeHTML
		photo.ReplyMarkup = keyboard
		if _, err := b.api.Send(photo); err != nil {
			slog.Error("review card send failed", "submission_id", s.ID, "error", err)
		}
		return
	}

	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeHTML
	m.ReplyMarkup = keyboard
	if _, err := b.api.Send(m); err != nil {
		slog.Error("review card send failed", "submission_id", s.ID, "error", err)
	}
}

// handleCallback routes inline keyboard presses: review decisions from the
// admin queue and rating taps from catalog browsing.
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	data := cb.Data
	actor := cb.From.ID
	answer := func(text string) {
		if _, err := b.api.Request(tgbotapi.NewCallbackWithAlert(cb.ID, text)); err != nil {
			slog.Error("callback answer failed", "error", err)
		}
	}

	switch {
	case strings.HasPrefix(data, "ua_approve_"):
		id := parseCallbackID(data, "ua_approve_")
		if _, err := b.submissions.Approve(ctx, id, actor); err != nil {
			answer(userMessage(err))
			return
		}
		answer("Approved and published.")
		b.notifyOwner(ctx, id, "Your submission #%d was approved and published. 🎉")

	case strings.HasPrefix(data, "ua_reject_"):
		id := parseCallbackID(data, "ua_reject_")
		if _, err := b.submissions.Reject(ctx, id, actor, "Does not meet the catalog guidelines"); err != nil {
			answer(userMessage(err))
			return
		}
		answer("Rejected.")
		b.notifyOwner(ctx, id, "Your submission #%d was rejected.")

	case strings.HasPrefix(data, "ua_irrelevant_"):
		id := parseCallbackID(data, "ua_irrelevant_")
		if _, err := b.submissions.MarkIrrelevant(ctx, id, actor); err != nil {
			answer(userMessage(err))
			return
		}
		answer("Marked irrelevant.")

	case strings.HasPrefix(data, "ua_delete_"):
		id := parseCallbackID(data, "ua_delete_")
		if _, err := b.submissions.SoftDelete(ctx, id, actor); err != nil {
			answer(userMessage(err))
			return
		}
		answer("Deleted.")

	case strings.HasPrefix(data, "rate_up_"):
		b.rate(ctx, cb, parseCallbackID(data, "rate_up_"), 1, answer)

	case strings.HasPrefix(data, "rate_down_"):
		b.rate(ctx, cb, parseCallbackID(data, "rate_down_"), -1, answer)
	}
}

func (b *Bot) rate(ctx context.Context, cb *tgbotapi.CallbackQuery, attachmentID int64, rating int, answer func(string)) {
	if err := b.engagement.Rate(ctx, cb.From.ID, attachmentID, rating); err != nil {
		answer(userMessage(err))
		return
	}
	if rating > 0 {
		answer("Liked 👍")
	} else {
		answer("Noted 👎")
	}
}

// handleReviewCommand covers the command form of the decision actions:
// /approve 12, /reject 12 reason..., /irrelevant 12, /remove 12, /restore 12.
func (b *Bot) handleReviewCommand(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.SplitN(strings.TrimSpace(msg.CommandArguments()), " ", 2)
	if args[0] == "" {
		b.reply(msg.Chat.ID, fmt.Sprintf("Usage: /%s &lt;submission id&gt;", msg.Command()))
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(msg.Chat.ID, "The submission ID must be a number.")
		return
	}
	actor := msg.From.ID

	switch msg.Command() {
	case "approve":
		if _, err = b.submissions.Approve(ctx, id, actor); err == nil {
			b.notifyOwner(ctx, id, "Your submission #%d was approved and published. 🎉")
		}
	case "reject":
		reason := "Does not meet the catalog guidelines"
		if len(args) == 2 {
			reason = args[1]
		}
		if _, err = b.submissions.Reject(ctx, id, actor, reason); err == nil {
			b.notifyOwner(ctx, id, "Your submission #%d was rejected.")
		}
	case "irrelevant":
		_, err = b.submissions.MarkIrrelevant(ctx, id, actor)
	case "remove":
		_, err = b.submissions.SoftDelete(ctx, id, actor)
	case "restore":
		_, err = b.submissions.Restore(ctx, id, actor)
	}

	if err != nil {
		b.reply(msg.Chat.ID, userMessage(err))
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("Done: #%d updated.", id))
}

func (b *Bot) handleBanCommand(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.SplitN(strings.TrimSpace(msg.CommandArguments()), " ", 2)
	if args[0] == "" {
		b.reply(msg.Chat.ID, fmt.Sprintf("Usage: /%s &lt;user id&gt;", msg.Command()))
		return
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(msg.Chat.ID, "The user ID must be a number.")
		return
	}

	if msg.Command() == "ban" {
		reason := ""
		if len(args) == 2 {
			reason = args[1]
		}
		err = b.submissions.BanUser(ctx, userID, msg.From.ID, reason)
	} else {
		err = b.submissions.UnbanUser(ctx, userID, msg.From.ID)
	}

	if err != nil {
		b.reply(msg.Chat.ID, userMessage(err))
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("User %d %sned.", userID, msg.Command()))
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) {
	if !b.roles.IsAdmin(ctx, msg.From.ID) {
		b.reply(msg.Chat.ID, "You are not allowed to do that.")
		return
	}

	snap, err := b.stats.Snapshot(ctx)
	if err != nil {
		b.reply(msg.Chat.ID, userMessage(err))
		return
	}

	text := fmt.Sprintf(
		"<b>Moderation stats</b>\n"+
			"Total: %d\n"+
			"⏳ Pending: %d\n"+
			"✅ Approved: %d\n"+
			"❌ Rejected: %d\n"+
			"🗑 Deleted: %d\n"+
			"🚫 Irrelevant: %d\n\n"+
			"BR %d / MP %d\n"+
			"Users: %d (%d banned)\n"+
			"Reports: %d (%d pending)\n"+
			"Last 7 days: %d submitted, %d approved\n\n"+
			"<i>as of %s</i>",
		snap.TotalSubmissions, snap.PendingCount, snap.ApprovedCount,
		snap.RejectedCount, snap.DeletedCount, snap.IrrelevantCount,
		snap.BRCount, snap.MPCount,
		snap.TotalUsers, snap.BannedUsers,
		snap.TotalReports, snap.PendingReports,
		snap.LastWeekSubmissions, snap.LastWeekApprovals,
		snap.UpdatedAt.Format("2006-01-02 15:04 UTC"),
	)
	b.reply(msg.Chat.ID, text)
}

// notifyOwner tells the submitter about a decision, best-effort.
func (b *Bot) notifyOwner(ctx context.Context, submissionID int64, format string) {
	submission, err := b.submissions.Get(ctx, submissionID)
	if err != nil {
		return
	}
	b.reply(submission.UserID, fmt.Sprintf(format, submissionID))
}

func parseCallbackID(data, prefix string) int64 {
	id, _ := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	return id
}
