package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"studiodesk/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	msg, err := buildMessage("studio@example.com", "nimali@example.com", "Hello", "Body")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(msg, "From: studio@example.com\r\nTo: nimali@example.com\r\nSubject: Hello\r\n"))
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nBody\r\n"))

	_, err = buildMessage("studio@example.com", "nimali@example.com", "Hi\r\nBcc: x@example.com", "Body")
	assert.ErrorIs(t, err, ErrHeaderInjection)
}

func TestSMTPMailer_Send(t *testing.T) {
	m := NewSMTPMailer(config.EmailConfig{Host: "smtp.example.com", Port: 587, Username: "user", Password: "pw", From: "studio@example.com"})
	assert.Equal(t, "smtp.example.com:587", m.addr)
	assert.NotNil(t, m.auth)

	var gotAddr, gotFrom string
	var gotTo []string
	m.send = func(addr string, _ smtp.Auth, from string, to []string, _ []byte) error {
		gotAddr, gotFrom, gotTo = addr, from, to
		return nil
	}

	require.NoError(t, m.Send(context.Background(), "nimali@example.com", "Hi", "Body"))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "studio@example.com", gotFrom)
	assert.Equal(t, []string{"nimali@example.com"}, gotTo)

	t.Run("InvalidRecipient", func(t *testing.T) {
		assert.Error(t, m.Send(context.Background(), "not-an-email", "Hi", "Body"))
	})

	t.Run("RelayError", func(t *testing.T) {
		m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }
		assert.Error(t, m.Send(context.Background(), "nimali@example.com", "Hi", "Body"))
	})
}

func TestSMTPMailer_NoAuthDefaults(t *testing.T) {
	m := NewSMTPMailer(config.EmailConfig{Host: "localhost", Port: 1025})
	assert.Nil(t, m.auth)
	assert.Equal(t, "no-reply@studiodesk.local", m.from)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func TestTelegramNotifier(t *testing.T) {
	sender := new(mockSender)
	n := NewTelegramNotifier(sender, 42)

	sender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		msg, ok := c.(tgbotapi.MessageConfig)
		return ok && msg.ChatID == 42 && msg.Text == "New booking"
	})).Return(tgbotapi.Message{}, nil).Once()

	require.NoError(t, n.NotifyStaff(context.Background(), "New booking"))
	sender.AssertExpectations(t)

	sender.On("Send", mock.Anything).Return(tgbotapi.Message{}, errors.New("blocked")).Once()
	assert.Error(t, n.NotifyStaff(context.Background(), "again"))
}
