package notification

import (
	"context"
	"errors"
	"testing"

	"eduvibe/internal/features/access"
	"eduvibe/internal/metrics"
	"eduvibe/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memoryRepo struct {
	items []*Notification
}

func (m *memoryRepo) Create(_ context.Context, n *Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	cp := *n
	m.items = append(m.items, &cp)
	return nil
}

func (m *memoryRepo) FindByID(_ context.Context, id string) (*Notification, error) {
	for _, n := range m.items {
		if n.ID.Hex() == id {
			return n, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *memoryRepo) GetByUserID(_ context.Context, userID string, _, _ int64) ([]Notification, int64, error) {
	var out []Notification
	for _, n := range m.items {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memoryRepo) GetUnreadCount(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range m.items {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *memoryRepo) MarkAsRead(_ context.Context, id primitive.ObjectID) error {
	for _, n := range m.items {
		if n.ID == id {
			n.IsRead = true
		}
	}
	return nil
}

func (m *memoryRepo) MarkAllAsRead(_ context.Context, userID string) (int64, error) {
	var updated int64
	for _, n := range m.items {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			updated++
		}
	}
	return updated, nil
}

func (m *memoryRepo) EnsureIndexes(context.Context) error { return nil }

type fakeClient struct {
	frames []interface{}
	fail   bool
}

func (f *fakeClient) WriteJSON(v interface{}) error {
	if f.fail {
		return errors.New("broken pipe")
	}
	f.frames = append(f.frames, v)
	return nil
}

const (
	alice = "64b000000000000000000001"
	bob   = "64b000000000000000000002"
)

func TestNotifyStoresAndPushesToLiveClients(t *testing.T) {
	repo := &memoryRepo{}
	hub := NewHub(zap.NewNop(), metrics.New())
	live := &fakeClient{}
	hub.Register(alice, live)
	svc := NewNotificationService(repo, hub, zap.NewNop())

	err := svc.Notify(context.Background(), Notification{UserID: alice, Title: "Session confirmed"})
	require.NoError(t, err)

	require.Len(t, repo.items, 1)
	assert.Equal(t, TypeSystem, repo.items[0].Type)
	require.Len(t, live.frames, 1)
	assert.Equal(t, "notification", live.frames[0].(socketMessage).Event)

	count, err := svc.GetUnreadCount(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestNotifyRequiresRecipient(t *testing.T) {
	svc := NewNotificationService(&memoryRepo{}, nil, zap.NewNop())

	err := svc.Notify(context.Background(), Notification{Title: "orphan"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestMarkAsReadIsOwnerOnly(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewNotificationService(repo, nil, zap.NewNop())
	require.NoError(t, svc.Notify(context.Background(), Notification{UserID: alice, Title: "hi"}))
	id := repo.items[0].ID.Hex()

	err := svc.MarkAsRead(context.Background(), access.NewContext(bob, access.RoleStudent), id)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.False(t, repo.items[0].IsRead)

	err = svc.MarkAsRead(context.Background(), access.NewContext(alice, access.RoleStudent), id)
	require.NoError(t, err)
	assert.True(t, repo.items[0].IsRead)
}

func TestMarkAllAsReadOnlyTouchesCaller(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewNotificationService(repo, nil, zap.NewNop())
	for _, user := range []string{alice, alice, bob} {
		require.NoError(t, svc.Notify(context.Background(), Notification{UserID: user, Title: "x"}))
	}

	updated, err := svc.MarkAllAsRead(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	bobUnread, _ := svc.GetUnreadCount(context.Background(), bob)
	assert.Equal(t, int64(1), bobUnread)
}

func TestHubDropsFailingClients(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)
	good, bad := &fakeClient{}, &fakeClient{fail: true}
	hub.Register(alice, good)
	hub.Register(alice, bad)

	delivered := hub.Send(alice, "ping")

	assert.Equal(t, 1, delivered)
	assert.Equal(t, 1, hub.Connected(alice))
	assert.Equal(t, 0, hub.Send(bob, "ping"))

	hub.Unregister(alice, good)
	assert.Equal(t, 0, hub.Connected(alice))
}
