package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"eduvibe/internal/config"
	"eduvibe/internal/features/access"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memoryStore struct {
	created  []*Email
	statuses []EmailStatus
}

func (m *memoryStore) Create(_ context.Context, e *Email) error {
	e.ID = primitive.NewObjectID()
	m.created = append(m.created, e)
	return nil
}

func (m *memoryStore) UpdateStatus(_ context.Context, _ primitive.ObjectID, status EmailStatus, _ string) error {
	m.statuses = append(m.statuses, status)
	return nil
}

type capture struct {
	addr string
	to   []string
	msg  string
	err  error
}

func (c *capture) send(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
	c.addr, c.to, c.msg = addr, to, string(msg)
	return c.err
}

func newTestService(host string) (*EmailServiceImpl, *memoryStore, *capture) {
	store, cap := &memoryStore{}, &capture{}
	svc := &EmailServiceImpl{
		Config: config.SMTPConfig{Host: host, Port: 2525, FromEmail: "hello@eduvibe.test", FromName: "EduVibe"},
		Repo:   store,
		Send:   cap.send,
		Logger: zap.NewNop(),
	}
	return svc, store, cap
}

func TestRenderTemplates(t *testing.T) {
	at := time.Date(2025, 3, 4, 15, 30, 0, 0, time.UTC)

	subject, body, err := Render(TemplateSessionStatus, SessionData{
		RecipientName: "Ada",
		Subject:       "Calculus",
		ScheduledAt:   at,
		Status:        "confirmed",
	})
	require.NoError(t, err)
	assert.Equal(t, "Your Calculus session is confirmed", subject)
	assert.Contains(t, body, "Tue, 04 Mar 2025 15:30 UTC")
	assert.Contains(t, body, "<b>confirmed</b>")
	assert.NotContains(t, body, "Reason:")

	subject, body, err = Render(TemplateWelcome, WelcomeData{Name: "O'Brien <b>", IsMentor: true})
	require.NoError(t, err)
	assert.Equal(t, "Welcome to EduVibe, O'Brien <b>", subject)
	assert.Contains(t, body, "O&#39;Brien &lt;b&gt;")
	assert.Contains(t, body, "mentor profile")

	_, _, err = Render("missing", nil)
	assert.Error(t, err)
}

func TestDisabledSMTPIsANoop(t *testing.T) {
	svc, store, cap := newTestService("")

	err := svc.SendWelcome(context.Background(), "ada@example.com", "Ada", access.RoleStudent)

	require.NoError(t, err)
	assert.False(t, svc.Enabled())
	assert.Empty(t, store.created)
	assert.Empty(t, cap.msg)
}

func TestSendRecordsDeliveryStatus(t *testing.T) {
	svc, store, cap := newTestService("smtp.test")

	err := svc.SendWelcome(context.Background(), "ada@example.com", "Ada", access.RoleStudent)
	require.NoError(t, err)

	assert.Equal(t, "smtp.test:2525", cap.addr)
	assert.Equal(t, []string{"ada@example.com"}, cap.to)
	assert.Contains(t, cap.msg, "Content-Type: text/html")
	assert.Contains(t, cap.msg, "From: EduVibe <hello@eduvibe.test>")
	require.Len(t, store.created, 1)
	assert.Equal(t, TemplateWelcome, store.created[0].Template)
	assert.Equal(t, []EmailStatus{EmailSent}, store.statuses)
}

func TestSendFailureIsRecorded(t *testing.T) {
	svc, store, cap := newTestService("smtp.test")
	cap.err = errors.New("connection refused")

	err := svc.SendEmail(context.Background(), []string{"ada@example.com"}, "Hi", "<p>hi</p>")

	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, []EmailStatus{EmailFailed}, store.statuses)
}

func TestAttachmentsAreMultipart(t *testing.T) {
	svc, _, cap := newTestService("smtp.test")

	err := svc.SendTemplate(context.Background(), []string{"ada@example.com"}, TemplatePaymentReceipt,
		ReceiptData{Name: "Ada", Subject: "Calculus", Amount: "USD 45.00"},
		Attachment{Name: "receipt.pdf", Data: []byte(strings.Repeat("%PDF", 40))},
	)
	require.NoError(t, err)

	assert.Contains(t, cap.msg, "multipart/mixed; boundary=eduvibe-")
	assert.Contains(t, cap.msg, "Content-Type: application/pdf; name=\"receipt.pdf\"")
	for _, line := range strings.Split(cap.msg, "\r\n") {
		assert.LessOrEqual(t, len(line), 998)
	}
}

func TestRecipientRequired(t *testing.T) {
	svc, _, _ := newTestService("smtp.test")
	assert.Error(t, svc.SendEmail(context.Background(), nil, "x", "y"))
}
