package service

import (
	"context"
	"fmt"
	"testing"

	apperrors "github.com/Freeeeeet/skill_swap/internal/errors"
	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Register(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Register(ctx, RegisterInput{Username: "  "})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.users.Register(ctx, RegisterInput{Username: "learner"})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.users.Get(ctx, 9999)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserService_LinkTelegram(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.users.LinkTelegram(ctx, f.learner.ID, 777))

	linked, err := f.users.GetByTelegramID(ctx, 777)
	require.NoError(t, err)
	require.NotNil(t, linked)
	assert.Equal(t, f.learner.ID, linked.ID)

	err = f.users.LinkTelegram(ctx, f.teacher.ID, 777)
	require.ErrorIs(t, err, apperrors.ErrValidation)

	unknown, err := f.users.GetByTelegramID(ctx, 888)
	require.NoError(t, err)
	assert.Nil(t, unknown)
}

func TestUserService_DefaultProfile(t *testing.T) {
	f := newFixture(t)

	profile, err := f.users.GetProfile(context.Background(), f.learner.ID)
	require.NoError(t, err)
	assert.True(t, profile.PreferOnline)
	assert.True(t, profile.NotificationInApp)
	require.NotNil(t, profile.Stats)
	assert.Zero(t, profile.Stats.SessionsLearned)
}

func TestUserService_UpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cs := f.db.AddBranch(model.Branch{DepartmentID: 1, Name: "Computer Science", Code: "CS", IsActive: true})
	dept := int64(1)
	otherDept := int64(2)

	_, err := f.users.UpdateProfile(ctx, f.learner.ID, ProfileInput{UniversityEmail: "learner@gmail.com"})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.users.UpdateProfile(ctx, f.learner.ID, ProfileInput{DepartmentID: &otherDept, BranchID: &cs.ID})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	appErr, _ := apperrors.As(err)
	assert.Contains(t, appErr.Fields, "branch")

	profile, err := f.users.UpdateProfile(ctx, f.learner.ID, ProfileInput{
		UniversityEmail: " Learner@Campus.EDU ",
		DepartmentID:    &dept,
		BranchID:        &cs.ID,
		Year:            "2",
		Bio:             "Learning Go",
		Availability:    "Evenings",
		PreferOnline:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "learner@campus.edu", profile.UniversityEmail)
	assert.False(t, profile.IsVerified)
	assert.Equal(t, 100, profile.CompletionPercentage())

	_, err = f.users.UpdateProfile(ctx, f.teacher.ID, ProfileInput{UniversityEmail: "learner@campus.edu"})
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUserService_Search(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	found, err := f.users.Search(ctx, "   ")
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)

	found, err = f.users.Search(ctx, "TEACH")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, f.teacher.ID, found[0].ID)

	marta, err := f.users.Register(ctx, RegisterInput{Username: "mk42", FirstName: "Marta"})
	require.NoError(t, err)
	found, err = f.users.Search(ctx, "mart")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, marta.ID, found[0].ID)

	for i := 1; i <= UserSearchLimit+2; i++ {
		_, err := f.users.Register(ctx, RegisterInput{Username: fmt.Sprintf("student%02d", i)})
		require.NoError(t, err)
	}
	found, err = f.users.Search(ctx, "student")
	require.NoError(t, err)
	require.Len(t, found, UserSearchLimit)
	assert.Equal(t, "student01", found[0].Username)
}

func TestUserService_DepartmentsAndBranches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cse := f.db.AddDepartment(model.Department{Name: "Computer Science", Code: "CSE", IsActive: true})
	f.db.AddDepartment(model.Department{Name: "Archived", Code: "OLD"})
	math := f.db.AddDepartment(model.Department{Name: "Mathematics", Code: "MATH", IsActive: true})
	f.db.AddBranch(model.Branch{DepartmentID: cse.ID, Name: "Machine Learning", Code: "ML", IsActive: true})
	f.db.AddBranch(model.Branch{DepartmentID: cse.ID, Name: "Artificial Intelligence", Code: "AI", IsActive: true})
	f.db.AddBranch(model.Branch{DepartmentID: cse.ID, Name: "Closed", Code: "CL"})
	f.db.AddBranch(model.Branch{DepartmentID: math.ID, Name: "Statistics", Code: "STAT", IsActive: true})

	departments, err := f.users.ListDepartments(ctx)
	require.NoError(t, err)
	require.Len(t, departments, 2)
	assert.Equal(t, "Computer Science", departments[0].Name)
	assert.Equal(t, "Mathematics", departments[1].Name)

	branches, err := f.users.ListBranches(ctx, cse.ID)
	require.NoError(t, err)
	require.Len(t, branches, 2)
	assert.Equal(t, "Artificial Intelligence", branches[0].Name)
	assert.Equal(t, "Machine Learning", branches[1].Name)

	branches, err = f.users.ListBranches(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, branches)

	// ветку из списка можно сохранить в профиль
	ai := departmentBranch(t, f, cse.ID)
	profile, err := f.users.UpdateProfile(ctx, f.learner.ID, ProfileInput{DepartmentID: &cse.ID, BranchID: &ai.ID})
	require.NoError(t, err)
	assert.Equal(t, cse.ID, *profile.DepartmentID)
	assert.Equal(t, ai.ID, *profile.BranchID)
}

func departmentBranch(t *testing.T, f *fixture, departmentID int64) *model.Branch {
	t.Helper()
	branches, err := f.users.ListBranches(context.Background(), departmentID)
	require.NoError(t, err)
	require.NotEmpty(t, branches)
	return branches[0]
}
