package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/Freeeeeet/skill_swap/internal/repository/memstore"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	mu    sync.Mutex
	items []*model.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n *model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recordingNotifier) kinds() []model.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]model.NotificationKind, 0, len(r.items))
	for _, n := range r.items {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}

func (r *recordingNotifier) last() *model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return nil
	}
	return r.items[len(r.items)-1]
}

// fixture: learner (U1) просит teacher (U2) научить навыку "Go"
type fixture struct {
	db       *memstore.DB
	notifier *recordingNotifier
	now      time.Time

	requests *RequestService
	sessions *SessionService
	reviews  *ReviewService
	catalog  *CatalogService
	users    *UserService

	learner  *model.User
	teacher  *model.User
	outsider *model.User
	skill    *model.Skill
	offered  *model.OfferedSkill
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := memstore.New()
	f := &fixture{
		db:       db,
		notifier: &recordingNotifier{},
		now:      time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	logger := zap.NewNop()

	f.requests = NewRequestService(db.Requests(), db.Sessions(), db.Catalog(), db.Users(), db, f.notifier, logger)
	f.requests.now = clock
	f.sessions = NewSessionService(db.Sessions(), db.Catalog(), f.notifier, logger)
	f.sessions.now = clock
	f.reviews = NewReviewService(db.Reviews(), db.Sessions(), f.notifier, logger)
	f.catalog = NewCatalogService(db.Catalog(), nil, logger)
	f.users = NewUserService(db.Users(), db.Profiles(), db.Reviews(), logger)

	ctx := context.Background()
	var err error
	f.learner, err = f.users.Register(ctx, RegisterInput{Username: "learner"})
	require.NoError(t, err)
	f.teacher, err = f.users.Register(ctx, RegisterInput{Username: "teacher"})
	require.NoError(t, err)
	f.outsider, err = f.users.Register(ctx, RegisterInput{Username: "outsider"})
	require.NoError(t, err)

	category := db.AddCategory(model.SkillCategory{Name: "Programming", IsActive: true})
	f.skill = db.AddSkill(model.Skill{CategoryID: category.ID, Name: "Go", IsPopular: true})

	f.offered, err = f.catalog.OfferSkill(ctx, f.teacher.ID, OfferSkillInput{
		SkillID:          f.skill.ID,
		ProficiencyLevel: model.ProficiencyAdvanced,
	})
	require.NoError(t, err)

	return f
}

// pendingRequest creates U1→U2 with duration 60 and the given format
func (f *fixture) pendingRequest(t *testing.T, format model.SessionFormat) *model.SwapRequest {
	t.Helper()
	req, err := f.requests.Create(context.Background(), f.learner.ID, CreateRequestInput{
		RecipientID:      f.teacher.ID,
		OfferedSkillID:   f.offered.ID,
		ProposedDuration: 60,
		ProposedFormat:   format,
	})
	require.NoError(t, err)
	return req
}

// scheduledSession accepts a fresh request and returns its session
func (f *fixture) scheduledSession(t *testing.T) *model.SwapSession {
	t.Helper()
	req := f.pendingRequest(t, model.FormatOnline)
	_, session, err := f.requests.Respond(context.Background(), f.teacher.ID, req.ID, RespondInput{Action: ActionAccept})
	require.NoError(t, err)
	require.NotNil(t, session)
	return session
}
