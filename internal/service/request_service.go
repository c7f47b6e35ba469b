package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/Freeeeeet/skill_swap/internal/errors"
	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/Freeeeeet/skill_swap/internal/monitoring"
	"github.com/Freeeeeet/skill_swap/internal/repository"
	"go.uber.org/zap"
)

// ResponseAction is the recipient's answer to a request
type ResponseAction string

const (
	ActionAccept  ResponseAction = "accept"
	ActionDecline ResponseAction = "decline"
)

// CreateRequestInput описывает новую заявку на обмен
type CreateRequestInput struct {
	RecipientID      int64
	OfferedSkillID   int64
	DesiredSkillID   *int64
	Message          string
	ProposedDuration int
	ProposedFormat   model.SessionFormat
	ProposedLocation string
}

// RespondInput is the recipient's answer. ScheduledDate and Location override the defaults on accept.
type RespondInput struct {
	Action        ResponseAction
	Message       string
	ScheduledDate *time.Time
	Location      string
}

type RequestService struct {
	requests RequestStore
	sessions SessionStore
	catalog  CatalogStore
	users    UserStore
	tx       Transactor
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewRequestService(
	requests RequestStore,
	sessions SessionStore,
	catalog CatalogStore,
	users UserStore,
	tx Transactor,
	notifier Notifier,
	logger *zap.Logger,
) *RequestService {
	return &RequestService{
		requests: requests,
		sessions: sessions,
		catalog:  catalog,
		users:    users,
		tx:       tx,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// ============ Создание ============

// Create создаёт заявку в статусе pending со сроком ответа 7 дней
func (s *RequestService) Create(ctx context.Context, requesterID int64, in CreateRequestInput) (*model.SwapRequest, error) {
	if in.ProposedDuration == 0 {
		in.ProposedDuration = model.DefaultProposedDuration
	}
	if in.ProposedFormat == "" {
		in.ProposedFormat = model.FormatFlexible
	}

	fields := map[string]string{}
	if in.RecipientID == 0 {
		fields["recipient"] = "This field is required."
	} else if in.RecipientID == requesterID {
		fields["recipient"] = "You cannot send a request to yourself."
	}
	if in.OfferedSkillID == 0 {
		fields["offered_skill"] = "This field is required."
	}
	if in.ProposedDuration < 0 {
		fields["proposed_duration"] = "Duration must be a positive number of minutes."
	}
	if !model.ValidRequestFormat(in.ProposedFormat) {
		fields["proposed_format"] = "Select a valid choice."
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation("Invalid request.", fields)
	}

	recipient, err := s.users.GetByID(ctx, in.RecipientID)
	if err != nil {
		return nil, fmt.Errorf("get recipient: %w", err)
	}
	if recipient == nil {
		return nil, apperrors.NotFound("user")
	}

	offered, err := s.catalog.GetOfferedSkill(ctx, in.OfferedSkillID)
	if err != nil {
		return nil, fmt.Errorf("get offered skill: %w", err)
	}
	if offered == nil {
		return nil, apperrors.NotFound("offered skill")
	}
	if offered.UserID != in.RecipientID {
		return nil, apperrors.Validation("Invalid request.", map[string]string{
			"offered_skill": "This skill is not offered by the selected user.",
		})
	}
	if !offered.IsActive {
		return nil, apperrors.Validation("Invalid request.", map[string]string{
			"offered_skill": "This skill is not currently offered.",
		})
	}

	if in.DesiredSkillID != nil {
		desired, err := s.catalog.GetDesiredSkill(ctx, *in.DesiredSkillID)
		if err != nil {
			return nil, fmt.Errorf("get desired skill: %w", err)
		}
		if desired == nil || desired.UserID != requesterID {
			return nil, apperrors.Validation("Invalid request.", map[string]string{
				"desired_skill": "Select one of your desired skills.",
			})
		}
	}

	now := s.now()
	req := &model.SwapRequest{
		RequesterID:      requesterID,
		RecipientID:      in.RecipientID,
		OfferedSkillID:   in.OfferedSkillID,
		DesiredSkillID:   in.DesiredSkillID,
		Status:           model.RequestStatusPending,
		Message:          strings.TrimSpace(in.Message),
		ProposedDuration: in.ProposedDuration,
		ProposedFormat:   in.ProposedFormat,
		ProposedLocation: strings.TrimSpace(in.ProposedLocation),
		CreatedAt:        now,
		UpdatedAt:        now,
		ExpiresAt:        now.Add(model.RequestTTL),
	}

	// Проверка и вставка одним условным INSERT
	created, err := s.requests.CreateIfNoPending(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if !created {
		return nil, apperrors.Validation("You already have a pending request with this user.", nil)
	}

	req.Effective = req.Status
	req.OfferedSkill = offered

	s.logger.Info("Swap request created",
		zap.Int64("request_id", req.ID),
		zap.Int64("requester_id", requesterID),
		zap.Int64("recipient_id", in.RecipientID),
		zap.Int64("offered_skill_id", in.OfferedSkillID),
	)
	monitoring.RecordRequestTransition(string(model.RequestStatusPending))

	s.notify(ctx, notification(model.NotificationSkillRequest, req.RecipientID, requesterID, req.ID,
		"New skill swap request", req.Message))

	return req, nil
}

// ============ Ответ ============

// Respond принимает или отклоняет заявку. Принятие создаёт сессию в той же транзакции.
func (s *RequestService) Respond(ctx context.Context, actorID, requestID int64, in RespondInput) (*model.SwapRequest, *model.SwapSession, error) {
	if in.Action != ActionAccept && in.Action != ActionDecline {
		return nil, nil, apperrors.Validation("Invalid response.", map[string]string{
			"action": "Must be accept or decline.",
		})
	}

	req, err := s.visible(ctx, actorID, requestID)
	if err != nil {
		return nil, nil, err
	}
	if req.RecipientID != actorID {
		return nil, nil, apperrors.Authorization("Only the recipient can respond to this request.")
	}

	now := s.now()
	if !req.IsPending() {
		return nil, nil, apperrors.StateConflict(fmt.Sprintf("Request is already %s.", req.Status))
	}
	if req.IsExpired(now) {
		return nil, nil, apperrors.StateConflict("Request has expired.")
	}
	if in.Action == ActionAccept && in.ScheduledDate != nil && !in.ScheduledDate.After(now) {
		return nil, nil, apperrors.Validation("Invalid response.", map[string]string{
			"scheduled_date": "Session must be scheduled in the future.",
		})
	}

	message := strings.TrimSpace(in.Message)

	if in.Action == ActionDecline {
		ok, err := s.requests.Respond(ctx, req.ID, model.RequestStatusDeclined, message, now)
		if err != nil {
			return nil, nil, fmt.Errorf("decline request: %w", err)
		}
		if !ok {
			return nil, nil, apperrors.StateConflict("Request is no longer pending.")
		}

		applyResponse(req, model.RequestStatusDeclined, message, now)

		s.logger.Info("Swap request declined", zap.Int64("request_id", req.ID), zap.Int64("recipient_id", actorID))
		monitoring.RecordRequestTransition(string(model.RequestStatusDeclined))

		s.notify(ctx, notification(model.NotificationRequestDeclined, req.RequesterID, actorID, req.ID,
			"Your skill swap request was declined", message))

		return req, nil, nil
	}

	var session *model.SwapSession
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ok, err := s.requests.Respond(ctx, req.ID, model.RequestStatusAccepted, message, now)
		if err != nil {
			return fmt.Errorf("accept request: %w", err)
		}
		if !ok {
			return apperrors.StateConflict("Request is no longer pending.")
		}

		offered, err := s.catalog.GetOfferedSkill(ctx, req.OfferedSkillID)
		if err != nil {
			return fmt.Errorf("get offered skill: %w", err)
		}
		if offered == nil {
			return apperrors.NotFound("offered skill")
		}

		session = newSessionFromRequest(req, offered, now, in)
		if err := s.sessions.Create(ctx, session); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.StateConflict("A session already exists for this request.")
			}
			return fmt.Errorf("create session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	applyResponse(req, model.RequestStatusAccepted, message, now)

	s.logger.Info("Swap request accepted",
		zap.Int64("request_id", req.ID),
		zap.Int64("session_id", session.ID),
		zap.Time("scheduled_date", session.ScheduledDate),
	)
	monitoring.RecordRequestTransition(string(model.RequestStatusAccepted))
	monitoring.RecordSessionTransition(string(model.SessionStatusScheduled))

	s.notify(ctx, notification(model.NotificationRequestAccepted, req.RequesterID, actorID, session.ID,
		"Your skill swap request was accepted", message))

	return req, session, nil
}

// newSessionFromRequest фиксирует роли: учитель = получатель, ученик = отправитель
func newSessionFromRequest(req *model.SwapRequest, offered *model.OfferedSkill, now time.Time, in RespondInput) *model.SwapSession {
	scheduled := now.Add(model.DefaultScheduleDelay)
	if in.ScheduledDate != nil {
		scheduled = *in.ScheduledDate
	}

	location := req.ProposedLocation
	if l := strings.TrimSpace(in.Location); l != "" {
		location = l
	}

	return &model.SwapSession{
		RequestID:       req.ID,
		TeacherID:       req.RecipientID,
		LearnerID:       req.RequesterID,
		SkillID:         offered.SkillID,
		ScheduledDate:   scheduled,
		DurationMinutes: req.ProposedDuration,
		Format:          model.ResolveSessionFormat(req.ProposedFormat, location),
		Location:        location,
		Status:          model.SessionStatusScheduled,
	}
}

func applyResponse(req *model.SwapRequest, status model.RequestStatus, message string, at time.Time) {
	req.Status = status
	req.Effective = status
	req.ResponseMessage = message
	req.RespondedAt = &at
	req.UpdatedAt = at
}

// ============ Отмена ============

// Cancel отменяет заявку. Статус не проверяется, связанная сессия не трогается.
func (s *RequestService) Cancel(ctx context.Context, actorID, requestID int64) (*model.SwapRequest, error) {
	req, err := s.visible(ctx, actorID, requestID)
	if err != nil {
		return nil, err
	}
	if req.RequesterID != actorID {
		return nil, apperrors.Authorization("Only the requester can cancel this request.")
	}

	now := s.now()
	ok, err := s.requests.Cancel(ctx, req.ID, actorID, now)
	if err != nil {
		return nil, fmt.Errorf("cancel request: %w", err)
	}
	if !ok {
		return nil, apperrors.NotFound("request")
	}

	req.Status = model.RequestStatusCancelled
	req.Effective = model.RequestStatusCancelled
	req.UpdatedAt = now

	s.logger.Info("Swap request cancelled", zap.Int64("request_id", req.ID), zap.Int64("requester_id", actorID))
	monitoring.RecordRequestTransition(string(model.RequestStatusCancelled))

	s.notify(ctx, notification(model.NotificationRequestCancelled, req.RecipientID, actorID, req.ID,
		"A skill swap request was cancelled", ""))

	return req, nil
}

// ============ Чтение ============

// Get возвращает заявку участнику; для остальных она не существует
func (s *RequestService) Get(ctx context.Context, actorID, requestID int64) (*model.SwapRequest, error) {
	req, err := s.visible(ctx, actorID, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.attachOffered(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ListSent получает заявки, отправленные пользователем
func (s *RequestService) ListSent(ctx context.Context, userID int64) ([]*model.SwapRequest, error) {
	requests, err := s.requests.ListByRequester(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sent requests: %w", err)
	}
	return s.prepare(ctx, requests)
}

// ListReceived получает заявки, адресованные пользователю
func (s *RequestService) ListReceived(ctx context.Context, userID int64) ([]*model.SwapRequest, error) {
	requests, err := s.requests.ListByRecipient(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list received requests: %w", err)
	}
	return s.prepare(ctx, requests)
}

// ExpireStale явно переводит просроченные pending заявки в expired
func (s *RequestService) ExpireStale(ctx context.Context) (int64, error) {
	n, err := s.requests.ExpireStale(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("expire stale requests: %w", err)
	}
	if n > 0 {
		s.logger.Info("Expired stale swap requests", zap.Int64("count", n))
		monitoring.RecordRequestsExpired(n)
	}
	return n, nil
}

func (s *RequestService) visible(ctx context.Context, actorID, requestID int64) (*model.SwapRequest, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if req == nil || !req.IsParticipant(actorID) {
		return nil, apperrors.NotFound("request")
	}
	req.Effective = req.EffectiveStatus(s.now())
	return req, nil
}

func (s *RequestService) prepare(ctx context.Context, requests []*model.SwapRequest) ([]*model.SwapRequest, error) {
	now := s.now()
	for _, req := range requests {
		req.Effective = req.EffectiveStatus(now)
		if err := s.attachOffered(ctx, req); err != nil {
			return nil, err
		}
	}
	return requests, nil
}

func (s *RequestService) attachOffered(ctx context.Context, req *model.SwapRequest) error {
	offered, err := s.catalog.GetOfferedSkill(ctx, req.OfferedSkillID)
	if err != nil {
		return fmt.Errorf("get offered skill: %w", err)
	}
	if offered == nil {
		return nil
	}
	skill, err := s.catalog.GetSkill(ctx, offered.SkillID)
	if err != nil {
		return fmt.Errorf("get skill: %w", err)
	}
	offered.Skill = skill
	req.OfferedSkill = offered
	return nil
}

func (s *RequestService) notify(ctx context.Context, n *model.Notification) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, n)
	}
}
