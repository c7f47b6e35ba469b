package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Freeeeeet/skill_swap/internal/cache"
	apperrors "github.com/Freeeeeet/skill_swap/internal/errors"
	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCatalogService_ReadThroughCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	rc := cache.NewRedisCache(mr.Addr(), "", 0, time.Minute)
	t.Cleanup(func() { _ = rc.Close() })
	svc := NewCatalogService(f.db.Catalog(), rc, zap.NewNop())

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.True(t, mr.Exists("catalog:categories"))

	// новая категория не видна, пока запись в кэше жива
	f.db.AddCategory(model.SkillCategory{Name: "Languages", IsActive: true})
	categories, err = svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1)

	mr.FastForward(2 * time.Minute)
	categories, err = svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 2)

	skill, err := svc.GetSkill(ctx, f.skill.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go", skill.Name)
	assert.True(t, mr.Exists(fmt.Sprintf("catalog:skill:%d", f.skill.ID)))
}

func TestCatalogService_BrokenCacheFallsBackToStore(t *testing.T) {
	f := newFixture(t)

	mr := miniredis.RunT(t)
	rc := cache.NewRedisCache(mr.Addr(), "", 0, time.Minute)
	t.Cleanup(func() { _ = rc.Close() })
	svc := NewCatalogService(f.db.Catalog(), rc, zap.NewNop())

	mr.Close()
	skills, err := svc.ListSkills(context.Background(), f.skill.CategoryID)
	require.NoError(t, err)
	require.Len(t, skills, 1)
	assert.Equal(t, f.skill.ID, skills[0].ID)
}

func TestCatalogService_UnknownSkill(t *testing.T) {
	f := newFixture(t)

	_, err := f.catalog.GetSkill(context.Background(), 9999)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.catalog.OfferSkill(context.Background(), f.learner.ID, OfferSkillInput{
		SkillID:          9999,
		ProficiencyLevel: model.ProficiencyBeginner,
	})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCatalogService_OfferSkill(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, model.PreferenceBoth, f.offered.TeachingPreference)
	assert.Equal(t, 1, f.offered.MaxStudentsPerSession)
	assert.True(t, f.offered.IsActive)

	_, err := f.catalog.OfferSkill(ctx, f.teacher.ID, OfferSkillInput{
		SkillID:          f.skill.ID,
		ProficiencyLevel: model.ProficiencyExpert,
	})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.catalog.OfferSkill(ctx, f.learner.ID, OfferSkillInput{
		SkillID:          f.skill.ID,
		ProficiencyLevel: "guru",
	})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	appErr, _ := apperrors.As(err)
	assert.Contains(t, appErr.Fields, "proficiency_level")

	offered, err := f.catalog.ListOffered(ctx, f.teacher.ID)
	require.NoError(t, err)
	require.Len(t, offered, 1)
	assert.Equal(t, "Go", offered[0].Skill.Name)
}

func TestCatalogService_ToggleAndDeleteOwnOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.ToggleOffered(ctx, f.learner.ID, f.offered.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	active, err := f.catalog.ToggleOffered(ctx, f.teacher.ID, f.offered.ID)
	require.NoError(t, err)
	assert.False(t, active)

	// выключенный навык нельзя запросить
	_, err = f.requests.Create(ctx, f.learner.ID, CreateRequestInput{
		RecipientID:      f.teacher.ID,
		OfferedSkillID:   f.offered.ID,
		ProposedDuration: 60,
	})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	require.ErrorIs(t, f.catalog.DeleteOffered(ctx, f.learner.ID, f.offered.ID), apperrors.ErrNotFound)
	require.NoError(t, f.catalog.DeleteOffered(ctx, f.teacher.ID, f.offered.ID))
	require.ErrorIs(t, f.catalog.DeleteOffered(ctx, f.teacher.ID, f.offered.ID), apperrors.ErrNotFound)
}

func TestCatalogService_DesireSkill(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	desired, err := f.catalog.DesireSkill(ctx, f.learner.ID, DesireSkillInput{SkillID: f.skill.ID})
	require.NoError(t, err)
	assert.Equal(t, model.UrgencyMedium, desired.Urgency)
	assert.Equal(t, model.ProficiencyBeginner, desired.CurrentLevel)
	assert.Equal(t, model.ProficiencyIntermediate, desired.TargetLevel)

	_, err = f.catalog.DesireSkill(ctx, f.learner.ID, DesireSkillInput{SkillID: f.skill.ID})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	active, err := f.catalog.ToggleDesired(ctx, f.learner.ID, desired.ID)
	require.NoError(t, err)
	assert.False(t, active)

	list, err := f.catalog.ListDesired(ctx, f.learner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsActive)

	require.NoError(t, f.catalog.DeleteDesired(ctx, f.learner.ID, desired.ID))
	list, err = f.catalog.ListDesired(ctx, f.learner.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCatalogService_SearchSkills(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < SkillSearchLimit+5; i++ {
		f.db.AddSkill(model.Skill{CategoryID: f.skill.CategoryID, Name: fmt.Sprintf("Golang topic %02d", i)})
	}

	found, err := f.catalog.SearchSkills(ctx, "GO")
	require.NoError(t, err)
	assert.Len(t, found, SkillSearchLimit)
	assert.Equal(t, "Go", found[0].Name, "popular skills first")

	empty, err := f.catalog.SearchSkills(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
