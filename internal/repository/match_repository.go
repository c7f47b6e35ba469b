package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/Freeeeeet/skill_swap/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MatchRepository reads the externally populated skill_matches table
type MatchRepository struct {
	*base.Repository
}

func NewMatchRepository(pool *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{Repository: base.NewRepository(pool)}
}

// ListForLearner получает не скрытые совпадения ученика, лучшие первыми
func (r *MatchRepository) ListForLearner(ctx context.Context, learnerID int64) ([]*model.SkillMatch, error) {
	query := `
		SELECT id, teacher_id, learner_id, offered_skill_id, desired_skill_id, compatibility_score,
		       is_mutual, is_dismissed, created_at
		FROM skill_matches
		WHERE learner_id = $1 AND is_dismissed = FALSE
		ORDER BY compatibility_score DESC, created_at DESC
	`

	rows, err := r.Query(ctx, query, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var matches []*model.SkillMatch
	for rows.Next() {
		var m model.SkillMatch
		err := rows.Scan(
			&m.ID,
			&m.TeacherID,
			&m.LearnerID,
			&m.OfferedSkillID,
			&m.DesiredSkillID,
			&m.CompatibilityScore,
			&m.IsMutual,
			&m.IsDismissed,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}

	return matches, nil
}

// Dismiss скрывает совпадение для ученика
func (r *MatchRepository) Dismiss(ctx context.Context, id, learnerID int64) (bool, error) {
	affected, err := r.ExecAffected(ctx, `UPDATE skill_matches SET is_dismissed = TRUE WHERE id = $1 AND learner_id = $2`, id, learnerID)
	if err != nil {
		return false, fmt.Errorf("dismiss match: %w", err)
	}
	return affected == 1, nil
}
