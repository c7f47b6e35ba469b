package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/Freeeeeet/skill_swap/internal/errors"
	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/Freeeeeet/skill_swap/internal/monitoring"
	"github.com/Freeeeeet/skill_swap/internal/repository"
	"go.uber.org/zap"
)

// SkillSearchLimit caps autocomplete results
const SkillSearchLimit = 10

type OfferSkillInput struct {
	SkillID               int64
	ProficiencyLevel      model.ProficiencyLevel
	Description           string
	YearsOfExperience     int
	TeachingPreference    model.Preference
	MaxStudentsPerSession int
}

type DesireSkillInput struct {
	SkillID            int64
	Urgency            model.Urgency
	Description        string
	CurrentLevel       model.ProficiencyLevel
	TargetLevel        model.ProficiencyLevel
	LearningPreference model.Preference
}

type CatalogService struct {
	catalog CatalogStore
	cache   CatalogCache // nil отключает кэш
	logger  *zap.Logger
}

func NewCatalogService(catalog CatalogStore, cache CatalogCache, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		catalog: catalog,
		cache:   cache,
		logger:  logger,
	}
}

// ============ Категории и навыки ============

func (s *CatalogService) ListCategories(ctx context.Context) ([]*model.SkillCategory, error) {
	if s.cache != nil {
		cached, err := s.cache.GetCategories(ctx)
		if err != nil {
			s.logger.Warn("Catalog cache read failed", zap.Error(err))
		} else if cached != nil {
			monitoring.RecordCacheHit("categories")
			return cached, nil
		}
		monitoring.RecordCacheMiss("categories")
	}

	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	if s.cache != nil && categories != nil {
		if err := s.cache.SetCategories(ctx, categories); err != nil {
			s.logger.Warn("Catalog cache write failed", zap.Error(err))
		}
	}
	return categories, nil
}

func (s *CatalogService) ListSkills(ctx context.Context, categoryID int64) ([]*model.Skill, error) {
	if s.cache != nil {
		cached, err := s.cache.GetSkillsByCategory(ctx, categoryID)
		if err != nil {
			s.logger.Warn("Catalog cache read failed", zap.Error(err))
		} else if cached != nil {
			monitoring.RecordCacheHit("skills")
			return cached, nil
		}
		monitoring.RecordCacheMiss("skills")
	}

	skills, err := s.catalog.ListSkillsByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}

	if s.cache != nil && skills != nil {
		if err := s.cache.SetSkillsByCategory(ctx, categoryID, skills); err != nil {
			s.logger.Warn("Catalog cache write failed", zap.Error(err))
		}
	}
	return skills, nil
}

// GetSkill возвращает навык каталога или NotFound
func (s *CatalogService) GetSkill(ctx context.Context, id int64) (*model.Skill, error) {
	if s.cache != nil {
		cached, err := s.cache.GetSkill(ctx, id)
		if err != nil {
			s.logger.Warn("Catalog cache read failed", zap.Error(err))
		} else if cached != nil {
			monitoring.RecordCacheHit("skill")
			return cached, nil
		}
		monitoring.RecordCacheMiss("skill")
	}

	skill, err := s.catalog.GetSkill(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get skill: %w", err)
	}
	if skill == nil {
		return nil, apperrors.NotFound("skill")
	}

	if s.cache != nil {
		if err := s.cache.SetSkill(ctx, skill); err != nil {
			s.logger.Warn("Catalog cache write failed", zap.Error(err))
		}
	}
	return skill, nil
}

// SearchSkills ищет навыки по подстроке имени без учёта регистра
func (s *CatalogService) SearchSkills(ctx context.Context, term string) ([]*model.Skill, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []*model.Skill{}, nil
	}

	skills, err := s.catalog.SearchSkills(ctx, term, SkillSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search skills: %w", err)
	}
	return skills, nil
}

// ============ Предлагаемые навыки ============

func (s *CatalogService) OfferSkill(ctx context.Context, userID int64, in OfferSkillInput) (*model.OfferedSkill, error) {
	if in.TeachingPreference == "" {
		in.TeachingPreference = model.PreferenceBoth
	}
	if in.MaxStudentsPerSession == 0 {
		in.MaxStudentsPerSession = 1
	}

	fields := map[string]string{}
	if !in.ProficiencyLevel.Valid() {
		fields["proficiency_level"] = "Select a valid choice."
	}
	if !in.TeachingPreference.Valid() {
		fields["teaching_preference"] = "Select a valid choice."
	}
	if in.YearsOfExperience < 0 {
		fields["years_of_experience"] = "Must not be negative."
	}
	if in.MaxStudentsPerSession < 0 {
		fields["max_students_per_session"] = "Must be at least 1."
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation("Invalid offered skill.", fields)
	}

	skill, err := s.GetSkill(ctx, in.SkillID)
	if err != nil {
		return nil, err
	}

	offered := &model.OfferedSkill{
		UserID:                userID,
		SkillID:               skill.ID,
		ProficiencyLevel:      in.ProficiencyLevel,
		Description:           strings.TrimSpace(in.Description),
		YearsOfExperience:     in.YearsOfExperience,
		IsActive:              true,
		TeachingPreference:    in.TeachingPreference,
		MaxStudentsPerSession: in.MaxStudentsPerSession,
	}

	if err := s.catalog.CreateOffered(ctx, offered); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Validation("You already offer this skill.", map[string]string{
				"skill": "You already offer this skill.",
			})
		}
		return nil, fmt.Errorf("create offered skill: %w", err)
	}
	offered.Skill = skill

	s.logger.Info("Offered skill created",
		zap.Int64("offered_skill_id", offered.ID),
		zap.Int64("user_id", userID),
		zap.String("skill", skill.Name),
	)
	return offered, nil
}

func (s *CatalogService) ListOffered(ctx context.Context, userID int64) ([]*model.OfferedSkill, error) {
	offered, err := s.catalog.ListOfferedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list offered skills: %w", err)
	}
	for _, o := range offered {
		if o.Skill, err = s.GetSkill(ctx, o.SkillID); err != nil {
			return nil, err
		}
	}
	return offered, nil
}

// ToggleOffered включает или выключает навык; возвращает новое состояние
func (s *CatalogService) ToggleOffered(ctx context.Context, userID, offeredID int64) (bool, error) {
	active, found, err := s.catalog.ToggleOffered(ctx, offeredID, userID)
	if err != nil {
		return false, fmt.Errorf("toggle offered skill: %w", err)
	}
	if !found {
		return false, apperrors.NotFound("offered skill")
	}

	s.logger.Info("Offered skill toggled", zap.Int64("offered_skill_id", offeredID), zap.Bool("active", active))
	return active, nil
}

func (s *CatalogService) DeleteOffered(ctx context.Context, userID, offeredID int64) error {
	deleted, err := s.catalog.DeleteOffered(ctx, offeredID, userID)
	if err != nil {
		return fmt.Errorf("delete offered skill: %w", err)
	}
	if !deleted {
		return apperrors.NotFound("offered skill")
	}
	return nil
}

// ============ Желаемые навыки ============

func (s *CatalogService) DesireSkill(ctx context.Context, userID int64, in DesireSkillInput) (*model.DesiredSkill, error) {
	if in.Urgency == "" {
		in.Urgency = model.UrgencyMedium
	}
	if in.CurrentLevel == "" {
		in.CurrentLevel = model.ProficiencyBeginner
	}
	if in.TargetLevel == "" {
		in.TargetLevel = model.ProficiencyIntermediate
	}
	if in.LearningPreference == "" {
		in.LearningPreference = model.PreferenceBoth
	}

	fields := map[string]string{}
	if !in.Urgency.Valid() {
		fields["urgency"] = "Select a valid choice."
	}
	if !in.CurrentLevel.Valid() {
		fields["current_level"] = "Select a valid choice."
	}
	if !in.TargetLevel.Valid() {
		fields["target_level"] = "Select a valid choice."
	}
	if !in.LearningPreference.Valid() {
		fields["learning_preference"] = "Select a valid choice."
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation("Invalid desired skill.", fields)
	}

	skill, err := s.GetSkill(ctx, in.SkillID)
	if err != nil {
		return nil, err
	}

	desired := &model.DesiredSkill{
		UserID:             userID,
		SkillID:            skill.ID,
		Urgency:            in.Urgency,
		Description:        strings.TrimSpace(in.Description),
		CurrentLevel:       in.CurrentLevel,
		TargetLevel:        in.TargetLevel,
		LearningPreference: in.LearningPreference,
		IsActive:           true,
	}

	if err := s.catalog.CreateDesired(ctx, desired); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Validation("You already want to learn this skill.", map[string]string{
				"skill": "You already want to learn this skill.",
			})
		}
		return nil, fmt.Errorf("create desired skill: %w", err)
	}
	desired.Skill = skill

	s.logger.Info("Desired skill created",
		zap.Int64("desired_skill_id", desired.ID),
		zap.Int64("user_id", userID),
		zap.String("skill", skill.Name),
	)
	return desired, nil
}

func (s *CatalogService) ListDesired(ctx context.Context, userID int64) ([]*model.DesiredSkill, error) {
	desired, err := s.catalog.ListDesiredByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list desired skills: %w", err)
	}
	for _, d := range desired {
		if d.Skill, err = s.GetSkill(ctx, d.SkillID); err != nil {
			return nil, err
		}
	}
	return desired, nil
}

func (s *CatalogService) ToggleDesired(ctx context.Context, userID, desiredID int64) (bool, error) {
	active, found, err := s.catalog.ToggleDesired(ctx, desiredID, userID)
	if err != nil {
		return false, fmt.Errorf("toggle desired skill: %w", err)
	}
	if !found {
		return false, apperrors.NotFound("desired skill")
	}

	s.logger.Info("Desired skill toggled", zap.Int64("desired_skill_id", desiredID), zap.Bool("active", active))
	return active, nil
}

func (s *CatalogService) DeleteDesired(ctx context.Context, userID, desiredID int64) error {
	deleted, err := s.catalog.DeleteDesired(ctx, desiredID, userID)
	if err != nil {
		return fmt.Errorf("delete desired skill: %w", err)
	}
	if !deleted {
		return apperrors.NotFound("desired skill")
	}
	return nil
}
