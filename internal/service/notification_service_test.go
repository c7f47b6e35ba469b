package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	apperrors "github.com/Freeeeeet/skill_swap/internal/errors"
	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/Freeeeeet/skill_swap/internal/repository/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDeliverer struct {
	mu        sync.Mutex
	delivered []int64
	err       error
}

func (d *fakeDeliverer) Deliver(_ context.Context, user *model.User, n *model.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.delivered = append(d.delivered, *user.TelegramID)
	return nil
}

func newNotificationFixture(t *testing.T) (*NotificationService, *memstore.DB, *model.User, *model.User) {
	t.Helper()
	db := memstore.New()
	users := NewUserService(db.Users(), db.Profiles(), db.Reviews(), zap.NewNop())

	linked, err := users.Register(context.Background(), RegisterInput{Username: "linked"})
	require.NoError(t, err)
	require.NoError(t, users.LinkTelegram(context.Background(), linked.ID, 42))
	plain, err := users.Register(context.Background(), RegisterInput{Username: "plain"})
	require.NoError(t, err)

	return NewNotificationService(db.Notifications(), db.Users(), zap.NewNop()), db, linked, plain
}

func TestNotificationService_StoresAndDelivers(t *testing.T) {
	svc, _, linked, plain := newNotificationFixture(t)
	ctx := context.Background()
	d := &fakeDeliverer{}
	svc.SetDeliverer(d)

	svc.Notify(ctx, notification(model.NotificationSkillRequest, linked.ID, plain.ID, 1, "New request", "Go"))
	svc.Notify(ctx, notification(model.NotificationSkillRequest, plain.ID, linked.ID, 2, "New request", "Go"))

	assert.Equal(t, []int64{42}, d.delivered)

	list, err := svc.List(ctx, plain.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsRead)
}

func TestNotificationService_DeliveryErrorIsSwallowed(t *testing.T) {
	svc, _, linked, _ := newNotificationFixture(t)
	ctx := context.Background()
	svc.SetDeliverer(&fakeDeliverer{err: errors.New("telegram is down")})

	svc.Notify(ctx, notification(model.NotificationSystem, linked.ID, 0, 0, "Hello", ""))

	count, err := svc.UnreadCount(ctx, linked.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNotificationService_ReadState(t *testing.T) {
	svc, _, linked, plain := newNotificationFixture(t)
	ctx := context.Background()

	for i := 0; i < NotificationListLimit+3; i++ {
		svc.Notify(ctx, notification(model.NotificationSystem, linked.ID, 0, 0, "Hello", ""))
	}

	list, err := svc.List(ctx, linked.ID)
	require.NoError(t, err)
	assert.Len(t, list, NotificationListLimit)

	require.ErrorIs(t, svc.MarkRead(ctx, plain.ID, list[0].ID), apperrors.ErrNotFound)
	require.NoError(t, svc.MarkRead(ctx, linked.ID, list[0].ID))

	count, err := svc.UnreadCount(ctx, linked.ID)
	require.NoError(t, err)
	assert.Equal(t, NotificationListLimit+2, count)

	marked, err := svc.MarkAllRead(ctx, linked.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(NotificationListLimit+2), marked)

	count, err = svc.UnreadCount(ctx, linked.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
