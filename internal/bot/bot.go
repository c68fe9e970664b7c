// Package bot runs the staff Telegram bot used to review booking requests.
package bot

import (
	"context"
	"time"

	"studiodesk/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const updateTimeout = 30 * time.Second

type Bot struct {
	tgService   domain.TelegramService
	bookings    domain.BookingManager
	staffChatID int64
	loc         *time.Location
	now         func() time.Time
	logger      *zerolog.Logger
}

// NewBot builds the staff bot. Only updates from staffChatID are handled.
func NewBot(
	tgService domain.TelegramService,
	bookings domain.BookingManager,
	staffChatID int64,
	loc *time.Location,
	logger *zerolog.Logger,
) *Bot {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	return &Bot{
		tgService:   tgService,
		bookings:    bookings,
		staffChatID: staffChatID,
		loc:         loc,
		now:         time.Now,
		logger:      logger,
	}
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tgService.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tgService.GetSelf().UserName).Msg("Authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			b.tgService.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.processUpdate(ctx, update)
		}
	}
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	updateCtx, cancel := context.WithTimeout(ctx, updateTimeout)
	defer cancel()

	l := b.logger.With().Str("request_id", uuid.NewString()).Logger()
	updateCtx = l.WithContext(updateCtx)

	b.withRecovery(func() {
		switch {
		case update.CallbackQuery != nil:
			if !b.fromStaff(update.CallbackQuery.Message) {
				return
			}
			b.handleCallbackQuery(updateCtx, update.CallbackQuery)
		case update.Message != nil:
			if !b.fromStaff(update.Message) {
				return
			}
			b.handleMessage(updateCtx, update.Message)
		}
	})
}

func (b *Bot) fromStaff(msg *tgbotapi.Message) bool {
	return msg != nil && msg.Chat != nil && msg.Chat.ID == b.staffChatID
}

func (b *Bot) withRecovery(handler func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Msg("Recovered from panic in update handler")
		}
	}()
	handler()
}

func (b *Bot) sendMessage(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.tgService.Send(msg); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send telegram message")
	}
}
