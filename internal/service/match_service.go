package service

import (
	"context"
	"fmt"

	apperrors "github.com/Freeeeeet/skill_swap/internal/errors"
	"github.com/Freeeeeet/skill_swap/internal/model"
	"go.uber.org/zap"
)

// MatchService exposes stored skill matches. Scores are fed externally.
type MatchService struct {
	matches MatchStore
	logger  *zap.Logger
}

func NewMatchService(matches MatchStore, logger *zap.Logger) *MatchService {
	return &MatchService{matches: matches, logger: logger}
}

// List получает совпадения ученика, лучшие первыми
func (s *MatchService) List(ctx context.Context, learnerID int64) ([]*model.SkillMatch, error) {
	matches, err := s.matches.ListForLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return matches, nil
}

// Dismiss скрывает совпадение
func (s *MatchService) Dismiss(ctx context.Context, learnerID, matchID int64) error {
	ok, err := s.matches.Dismiss(ctx, matchID, learnerID)
	if err != nil {
		return fmt.Errorf("dismiss match: %w", err)
	}
	if !ok {
		return apperrors.NotFound("match")
	}

	s.logger.Info("Skill match dismissed", zap.Int64("match_id", matchID), zap.Int64("learner_id", learnerID))
	return nil
}
