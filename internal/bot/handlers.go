package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"studiodesk/internal/database"
	"studiodesk/internal/models"
	"studiodesk/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const (
	callbackApprove    = "approve"
	callbackDisapprove = "disapprove"

	// maxListed caps how many bookings one reply lists.
	maxListed = 20
)

const helpText = `Commands:
/pending - bookings waiting for review
/today - today's bookings
/approve <id> - approve a booking
/disapprove <id> - decline a booking`

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		return
	}
	chatID := msg.Chat.ID
	arg := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start", "help":
		b.sendMessage(chatID, helpText)
	case "pending":
		b.listBookings(ctx, chatID, models.BookingFilter{Status: models.StatusPending}, "No pending bookings.")
	case "today":
		today := b.now().In(b.loc).Format(models.DateLayout)
		b.listBookings(ctx, chatID, models.BookingFilter{Date: today}, "No bookings today.")
	case callbackApprove, callbackDisapprove:
		if arg == "" {
			b.sendMessage(chatID, fmt.Sprintf("Usage: /%s <booking id>", msg.Command()))
			return
		}
		b.sendMessage(chatID, b.review(ctx, msg.Command(), arg))
	default:
		b.sendMessage(chatID, "Unknown command.\n\n"+helpText)
	}
}

func (b *Bot) listBookings(ctx context.Context, chatID int64, filter models.BookingFilter, empty string) {
	bookings, err := b.bookings.ListBookings(ctx, filter)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("List bookings failed")
		b.sendMessage(chatID, "Could not load bookings, try again later.")
		return
	}
	if len(bookings) == 0 {
		b.sendMessage(chatID, empty)
		return
	}

	if len(bookings) > maxListed {
		b.sendMessage(chatID, fmt.Sprintf("Showing %d of %d bookings.", maxListed, len(bookings)))
		bookings = bookings[:maxListed]
	}
	for _, bk := range bookings {
		msg := tgbotapi.NewMessage(chatID, formatBooking(bk))
		if bk.Status == models.StatusPending {
			msg.ReplyMarkup = reviewKeyboard(bk.ID)
		}
		b.send(msg)
	}
}

func (b *Bot) handleCallbackQuery(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	action, id, ok := strings.Cut(cb.Data, ":")
	if !ok || (action != callbackApprove && action != callbackDisapprove) {
		b.answerCallback(cb.ID, "Unknown action")
		return
	}

	result := b.review(ctx, action, id)
	b.answerCallback(cb.ID, result)

	// Drop the buttons so the booking is not reviewed twice.
	edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, cb.Message.Text+"\n\n"+result)
	b.send(edit)
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.tgService.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.logger.Warn().Err(err).Msg("Failed to answer callback")
	}
}

// review applies the staff decision and returns the reply text.
func (b *Bot) review(ctx context.Context, action, id string) string {
	var (
		bk  *models.Booking
		err error
	)
	if action == callbackApprove {
		bk, err = b.bookings.ApproveBooking(ctx, id)
	} else {
		bk, err = b.bookings.DisapproveBooking(ctx, id)
	}

	var verr *service.ValidationError
	switch {
	case err == nil:
		zerolog.Ctx(ctx).Info().Str("booking_id", id).Str("status", bk.Status).Msg("Booking reviewed from telegram")
		return fmt.Sprintf("Booking %s is now %s.", bk.ID, bk.Status)
	case errors.Is(err, database.ErrNotFound):
		return "Booking not found."
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, database.ErrConcurrentModification):
		return "Booking changed meanwhile, check it again."
	default:
		zerolog.Ctx(ctx).Error().Err(err).Str("booking_id", id).Msg("Review failed")
		return "Could not update the booking, try again later."
	}
}

func formatBooking(b *models.Booking) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s-%s [%s]\n", b.Date, b.StartTime, b.EndTime, b.Status)
	fmt.Fprintf(&sb, "%s, %s\n", b.CustomerName, b.PackageType)
	if b.CustomerPhone != "" {
		fmt.Fprintf(&sb, "%s\n", b.CustomerPhone)
	}
	if b.Note != "" {
		fmt.Fprintf(&sb, "Note: %s\n", b.Note)
	}
	sb.WriteString("ID: " + b.ID)
	return sb.String()
}

func reviewKeyboard(id string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Approve", callbackApprove+":"+id),
			tgbotapi.NewInlineKeyboardButtonData("Decline", callbackDisapprove+":"+id),
		),
	)
}
