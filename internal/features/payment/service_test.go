package payment

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	common_models "eduvibe/internal/common/models"
	"eduvibe/internal/config"
	"eduvibe/internal/features/access"
	"eduvibe/internal/features/audit"
	"eduvibe/internal/features/email"
	"eduvibe/internal/features/notification"
	"eduvibe/internal/features/session"
	"eduvibe/internal/features/user"
	"eduvibe/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memoryPayments struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*Payment
}

func (m *memoryPayments) Create(_ context.Context, p *Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *memoryPayments) find(match func(*Payment) bool) (*Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byID {
		if match(p) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *memoryPayments) FindByID(_ context.Context, id string) (*Payment, error) {
	return m.find(func(p *Payment) bool { return p.ID.Hex() == id })
}

func (m *memoryPayments) FindBySession(_ context.Context, sessionID string) (*Payment, error) {
	return m.find(func(p *Payment) bool { return p.SessionID == sessionID })
}

func (m *memoryPayments) FindByIntent(_ context.Context, intentID string) (*Payment, error) {
	return m.find(func(p *Payment) bool { return p.IntentID == intentID })
}

func (m *memoryPayments) ListByStudent(_ context.Context, studentID string, _, _ int64) ([]Payment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Payment
	for _, p := range m.byID {
		if p.StudentID == studentID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memoryPayments) Resolve(_ context.Context, id primitive.ObjectID, from []Status, to Status, reason string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if p.Status == f {
			p.Status, p.FailureReason, p.UpdatedAt = to, reason, at
			if to == StatusSucceeded {
				p.PaidAt = &at
			}
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryPayments) EnsureIndexes(context.Context) error { return nil }

type fakeGateway struct {
	requests []IntentRequest
	next     *GatewayEvent
}

func (g *fakeGateway) CreateIntent(_ context.Context, req IntentRequest) (*Intent, error) {
	g.requests = append(g.requests, req)
	return &Intent{ID: "pi_" + req.IdempotencyKey, ClientSecret: "secret_" + req.IdempotencyKey}, nil
}

func (g *fakeGateway) ParseEvent(_ []byte, signature string) (*GatewayEvent, error) {
	if signature != "signed" {
		return nil, ErrInvalidSignature
	}
	return g.next, nil
}

type ledger struct {
	sessions map[string]*session.Session
	// failNext is returned once by the next SetPaymentStatus call.
	failNext error
}

func (l *ledger) FindByID(_ context.Context, id string) (*session.Session, error) {
	if s, ok := l.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, apperrors.ErrNotFound
}

func (l *ledger) SetPaymentStatus(_ context.Context, id string, status session.PaymentStatus) error {
	if err := l.failNext; err != nil {
		l.failNext = nil
		return err
	}
	l.sessions[id].PaymentStatus = status
	return nil
}

type users map[string]*user.User

func (u users) FindByID(_ context.Context, id string) (*user.User, error) {
	if found, ok := u[id]; ok {
		return found, nil
	}
	return nil, apperrors.ErrNotFound
}

type sentMail struct {
	to          []string
	template    email.TemplateName
	attachments []email.Attachment
}

type mailbox struct{ sent []sentMail }

func (m *mailbox) SendTemplate(_ context.Context, to []string, name email.TemplateName, _ interface{}, attachments ...email.Attachment) error {
	m.sent = append(m.sent, sentMail{to: to, template: name, attachments: attachments})
	return nil
}

type inbox struct{ sent []notification.Notification }

func (i *inbox) Notify(_ context.Context, n notification.Notification) error {
	i.sent = append(i.sent, n)
	return nil
}

type nopAudit struct{}

func (nopAudit) LogChange(context.Context, common_models.AuditAction, string, string, map[string]common_models.Change) error {
	return nil
}

func (nopAudit) ListLogs(context.Context, audit.Filter, int64, int64) ([]common_models.AuditLog, int64, error) {
	return nil, 0, nil
}

type fixture struct {
	svc     *PaymentServiceImpl
	repo    *memoryPayments
	gateway *fakeGateway
	ledger  *ledger
	mail    *mailbox
	inbox   *inbox
	student string
}

func newFixture() *fixture {
	f := &fixture{
		repo:    &memoryPayments{byID: map[primitive.ObjectID]*Payment{}},
		gateway: &fakeGateway{},
		ledger:  &ledger{sessions: map[string]*session.Session{}},
		mail:    &mailbox{},
		inbox:   &inbox{},
		student: primitive.NewObjectID().Hex(),
	}
	directory := users{f.student: {Name: "Ada", Email: "ada@example.com"}}
	f.svc = NewPaymentService(f.repo, f.gateway, f.ledger, directory, f.inbox, f.mail, nil, nil, nopAudit{}, &config.Config{Stripe: config.StripeConfig{Currency: "usd"}}, zap.NewNop()).(*PaymentServiceImpl)
	return f
}

func (f *fixture) session(status session.Status) string {
	s := &session.Session{
		ID:            primitive.NewObjectID(),
		StudentID:     f.student,
		StudentName:   "Ada",
		MentorID:      primitive.NewObjectID().Hex(),
		MentorName:    "Grace",
		Subject:       "Calculus",
		ScheduledAt:   time.Now().Add(48 * time.Hour),
		PriceCents:    4500,
		Status:        status,
		PaymentStatus: session.PaymentUnpaid,
	}
	f.ledger.sessions[s.ID.Hex()] = s
	return s.ID.Hex()
}

func (f *fixture) caller() access.AccessContext {
	return access.NewContext(f.student, access.RoleStudent)
}

func TestCreateUsesSessionAsIdempotencyKey(t *testing.T) {
	f := newFixture()
	sessionID := f.session(session.StatusConfirmed)

	p, err := f.svc.Create(context.Background(), f.caller(), CreateRequest{SessionID: sessionID})
	require.NoError(t, err)

	require.Len(t, f.gateway.requests, 1)
	assert.Equal(t, sessionID, f.gateway.requests[0].IdempotencyKey)
	assert.Equal(t, int64(4500), f.gateway.requests[0].AmountCents)
	assert.Equal(t, "usd", f.gateway.requests[0].Currency)
	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, "secret_"+sessionID, p.ClientSecret)
	assert.Equal(t, session.PaymentProcessing, f.ledger.sessions[sessionID].PaymentStatus)

	again, err := f.svc.Create(context.Background(), f.caller(), CreateRequest{SessionID: sessionID})
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)
	assert.Len(t, f.gateway.requests, 1)
}

func TestCreateRejectsOtherStudentsAndClosedSessions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, access.NewContext(primitive.NewObjectID().Hex(), access.RoleStudent), CreateRequest{SessionID: f.session(session.StatusPending)})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.svc.Create(ctx, f.caller(), CreateRequest{SessionID: f.session(session.StatusCompleted)})
	assert.ErrorIs(t, err, ErrNotPayable)

	_, err = f.svc.Create(ctx, access.NewContext(f.student, access.RoleMentor), CreateRequest{SessionID: f.session(session.StatusPending)})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Empty(t, f.gateway.requests)
}

func TestSucceededWebhookSettlesOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sessionID := f.session(session.StatusConfirmed)
	p, err := f.svc.Create(ctx, f.caller(), CreateRequest{SessionID: sessionID})
	require.NoError(t, err)

	f.gateway.next = &GatewayEvent{Kind: EventSucceeded, IntentID: p.IntentID}
	require.NoError(t, f.svc.HandleWebhook(ctx, []byte("{}"), "signed"))
	require.NoError(t, f.svc.HandleWebhook(ctx, []byte("{}"), "signed"))

	stored, err := f.repo.FindByID(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, stored.Status)
	assert.NotNil(t, stored.PaidAt)
	assert.Equal(t, session.PaymentPaid, f.ledger.sessions[sessionID].PaymentStatus)

	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, email.TemplatePaymentReceipt, f.mail.sent[0].template)
	assert.Equal(t, []string{"ada@example.com"}, f.mail.sent[0].to)
	require.Len(t, f.mail.sent[0].attachments, 1)
	assert.True(t, bytes.HasPrefix(f.mail.sent[0].attachments[0].Data, []byte("%PDF")))
	require.Len(t, f.inbox.sent, 1)
	assert.Equal(t, notification.TypePayment, f.inbox.sent[0].Type)

	_, err = f.svc.Create(ctx, f.caller(), CreateRequest{SessionID: sessionID})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestWebhookRetryRepairsSessionAfterPartialFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sessionID := f.session(session.StatusConfirmed)
	p, err := f.svc.Create(ctx, f.caller(), CreateRequest{SessionID: sessionID})
	require.NoError(t, err)

	f.ledger.failNext = errors.New("connection reset")
	f.gateway.next = &GatewayEvent{Kind: EventSucceeded, IntentID: p.IntentID}
	require.Error(t, f.svc.HandleWebhook(ctx, []byte("{}"), "signed"))

	stored, err := f.repo.FindByID(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, stored.Status)
	assert.Equal(t, session.PaymentProcessing, f.ledger.sessions[sessionID].PaymentStatus)
	assert.Empty(t, f.mail.sent)

	require.NoError(t, f.svc.HandleWebhook(ctx, []byte("{}"), "signed"))
	assert.Equal(t, session.PaymentPaid, f.ledger.sessions[sessionID].PaymentStatus)
	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, email.TemplatePaymentReceipt, f.mail.sent[0].template)
	require.Len(t, f.inbox.sent, 1)

	require.NoError(t, f.svc.HandleWebhook(ctx, []byte("{}"), "signed"))
	assert.Len(t, f.mail.sent, 1)
	assert.Len(t, f.inbox.sent, 1)
}

func TestFailedWebhookRetryRepairsSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sessionID := f.session(session.StatusPending)
	p, err := f.svc.Create(ctx, f.caller(), CreateRequest{SessionID: sessionID})
	require.NoError(t, err)

	f.ledger.failNext = errors.New("connection reset")
	f.gateway.next = &GatewayEvent{Kind: EventFailed, IntentID: p.IntentID, FailureReason: "Your card was declined."}
	require.Error(t, f.svc.HandleWebhook(ctx, nil, "signed"))
	assert.Equal(t, session.PaymentProcessing, f.ledger.sessions[sessionID].PaymentStatus)

	require.NoError(t, f.svc.HandleWebhook(ctx, nil, "signed"))
	assert.Equal(t, session.PaymentFailed, f.ledger.sessions[sessionID].PaymentStatus)
	require.Len(t, f.inbox.sent, 1)
	assert.Contains(t, f.inbox.sent[0].Message, "Your card was declined.")
}

func TestFailedPaymentCanBeRetried(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sessionID := f.session(session.StatusPending)
	p, err := f.svc.Create(ctx, f.caller(), CreateRequest{SessionID: sessionID})
	require.NoError(t, err)

	f.gateway.next = &GatewayEvent{Kind: EventFailed, IntentID: p.IntentID, FailureReason: "Your card was declined."}
	require.NoError(t, f.svc.HandleWebhook(ctx, nil, "signed"))
	assert.Equal(t, session.PaymentFailed, f.ledger.sessions[sessionID].PaymentStatus)

	retry, err := f.svc.Create(ctx, f.caller(), CreateRequest{SessionID: sessionID})
	require.NoError(t, err)
	assert.Equal(t, p.ID, retry.ID)
	assert.Equal(t, StatusPending, retry.Status)
	assert.Empty(t, retry.FailureReason)
	assert.Equal(t, session.PaymentProcessing, f.ledger.sessions[sessionID].PaymentStatus)
	assert.Len(t, f.gateway.requests, 1)
}

func TestWebhookRejectsBadSignatureAndIgnoresUnknownIntents(t *testing.T) {
	f := newFixture()

	err := f.svc.HandleWebhook(context.Background(), nil, "forged")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	f.gateway.next = &GatewayEvent{Kind: EventSucceeded, IntentID: "pi_unknown"}
	assert.NoError(t, f.svc.HandleWebhook(context.Background(), nil, "signed"))
}

func TestReceiptRequiresOwnerAndSettlement(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p, err := f.svc.Create(ctx, f.caller(), CreateRequest{SessionID: f.session(session.StatusConfirmed)})
	require.NoError(t, err)

	_, _, err = f.svc.Receipt(ctx, f.caller(), p.ID.Hex())
	assert.ErrorIs(t, err, ErrNotSettled)

	f.gateway.next = &GatewayEvent{Kind: EventSucceeded, IntentID: p.IntentID}
	require.NoError(t, f.svc.HandleWebhook(ctx, nil, "signed"))

	_, _, err = f.svc.Receipt(ctx, access.NewContext(primitive.NewObjectID().Hex(), access.RoleStudent), p.ID.Hex())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	pdf, got, err := f.svc.Receipt(ctx, f.caller(), p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	_, _, err = f.svc.Receipt(ctx, access.NewContext("admin", access.RoleAdmin), p.ID.Hex())
	assert.NoError(t, err)
}

func TestListMineRedactsClientSecret(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), f.caller(), CreateRequest{SessionID: f.session(session.StatusPending)})
	require.NoError(t, err)

	payments, total, err := f.svc.ListMine(context.Background(), f.caller(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Empty(t, payments[0].ClientSecret)
}

func TestFormattedAmount(t *testing.T) {
	assert.Equal(t, "USD 45.00", (&Payment{AmountCents: 4500, Currency: "usd"}).FormattedAmount())
	assert.Equal(t, "EUR 0.05", (&Payment{AmountCents: 5, Currency: "eur"}).FormattedAmount())
}
