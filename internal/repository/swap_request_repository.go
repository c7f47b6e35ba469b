package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/Freeeeeet/skill_swap/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SwapRequestRepository struct {
	*base.Repository
}

func NewSwapRequestRepository(pool *pgxpool.Pool) *SwapRequestRepository {
	return &SwapRequestRepository{Repository: base.NewRepository(pool)}
}

const requestColumns = `
	id, requester_id, recipient_id, offered_skill_id, desired_skill_id, status, message,
	proposed_duration, proposed_format, proposed_location, created_at, updated_at, expires_at,
	responded_at, response_message`

func scanRequest(row interface{ Scan(...any) error }) (*model.SwapRequest, error) {
	var req model.SwapRequest
	err := row.Scan(
		&req.ID,
		&req.RequesterID,
		&req.RecipientID,
		&req.OfferedSkillID,
		&req.DesiredSkillID,
		&req.Status,
		&req.Message,
		&req.ProposedDuration,
		&req.ProposedFormat,
		&req.ProposedLocation,
		&req.CreatedAt,
		&req.UpdatedAt,
		&req.ExpiresAt,
		&req.RespondedAt,
		&req.ResponseMessage,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// CreateIfNoPending создаёт заявку, только если между парой нет pending заявки.
// Возвращает false, если такая заявка уже есть.
func (r *SwapRequestRepository) CreateIfNoPending(ctx context.Context, req *model.SwapRequest) (bool, error) {
	query := `
		INSERT INTO swap_requests (requester_id, recipient_id, offered_skill_id, desired_skill_id, status,
		                           message, proposed_duration, proposed_format, proposed_location,
		                           created_at, updated_at, expires_at)
		SELECT $1::bigint, $2::bigint, $3::bigint, $4::bigint, $5::text, $6::text, $7::int, $8::text, $9::text,
		       $10::timestamptz, $10::timestamptz, $11::timestamptz
		WHERE NOT EXISTS (
			SELECT 1 FROM swap_requests
			WHERE requester_id = $1::bigint AND recipient_id = $2::bigint AND status = 'pending'
		)
		RETURNING id
	`

	err := r.QueryRow(
		ctx, query,
		req.RequesterID,
		req.RecipientID,
		req.OfferedSkillID,
		req.DesiredSkillID,
		req.Status,
		req.Message,
		req.ProposedDuration,
		req.ProposedFormat,
		req.ProposedLocation,
		req.CreatedAt,
		req.ExpiresAt,
	).Scan(&req.ID)

	if err != nil {
		if base.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("create swap request: %w", err)
	}

	req.UpdatedAt = req.CreatedAt
	return true, nil
}

// GetByID получает заявку по ID
func (r *SwapRequestRepository) GetByID(ctx context.Context, id int64) (*model.SwapRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM swap_requests WHERE id = $1`

	req, err := scanRequest(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get swap request: %w", err)
	}

	return req, nil
}

func (r *SwapRequestRepository) list(ctx context.Context, column string, userID int64) ([]*model.SwapRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM swap_requests WHERE ` + column + ` = $1 ORDER BY created_at DESC`

	rows, err := r.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list swap requests: %w", err)
	}
	defer rows.Close()

	var requests []*model.SwapRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan swap request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swap requests: %w", err)
	}

	return requests, nil
}

// ListByRequester получает отправленные заявки
func (r *SwapRequestRepository) ListByRequester(ctx context.Context, userID int64) ([]*model.SwapRequest, error) {
	return r.list(ctx, "requester_id", userID)
}

// ListByRecipient получает входящие заявки
func (r *SwapRequestRepository) ListByRecipient(ctx context.Context, userID int64) ([]*model.SwapRequest, error) {
	return r.list(ctx, "recipient_id", userID)
}

// Respond переводит pending заявку в accepted/declined.
// Условие на статус и срок закрывает гонку двух ответов.
func (r *SwapRequestRepository) Respond(ctx context.Context, id int64, status model.RequestStatus, message string, at time.Time) (bool, error) {
	query := `
		UPDATE swap_requests
		SET status = $1, response_message = $2, responded_at = $3, updated_at = $3
		WHERE id = $4 AND status = 'pending' AND expires_at >= $3
	`

	affected, err := r.ExecAffected(ctx, query, status, message, at, id)
	if err != nil {
		return false, fmt.Errorf("respond to swap request: %w", err)
	}

	return affected == 1, nil
}

// Cancel отменяет заявку отправителя независимо от текущего статуса
func (r *SwapRequestRepository) Cancel(ctx context.Context, id, requesterID int64, at time.Time) (bool, error) {
	query := `
		UPDATE swap_requests
		SET status = 'cancelled', updated_at = $1
		WHERE id = $2 AND requester_id = $3
	`

	affected, err := r.ExecAffected(ctx, query, at, id, requesterID)
	if err != nil {
		return false, fmt.Errorf("cancel swap request: %w", err)
	}

	return affected == 1, nil
}

// ExpireStale явно переводит просроченные pending заявки в expired
func (r *SwapRequestRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE swap_requests
		SET status = 'expired', updated_at = $1
		WHERE status = 'pending' AND expires_at < $1
	`

	affected, err := r.ExecAffected(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("expire stale requests: %w", err)
	}

	return affected, nil
}
