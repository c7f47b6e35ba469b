package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/Freeeeeet/skill_swap/internal/errors"
	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/Freeeeeet/skill_swap/internal/repository"
	"go.uber.org/zap"
)

// UserSearchLimit caps recipient lookup results
const UserSearchLimit = 10

// RegisterInput описывает нового пользователя
type RegisterInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
}

// ProfileInput is the editable part of a profile
type ProfileInput struct {
	UniversityEmail   string
	DepartmentID      *int64
	BranchID          *int64
	Year              string
	Bio               string
	Availability      string
	PreferInPerson    bool
	PreferOnline      bool
	NotificationEmail bool
	NotificationInApp bool
}

type UserService struct {
	users    UserStore
	profiles ProfileStore
	reviews  ReviewStore
	logger   *zap.Logger
}

func NewUserService(users UserStore, profiles ProfileStore, reviews ReviewStore, logger *zap.Logger) *UserService {
	return &UserService{
		users:    users,
		profiles: profiles,
		reviews:  reviews,
		logger:   logger,
	}
}

// Register создаёт пользователя
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return nil, apperrors.Validation("Invalid user.", map[string]string{"username": "This field is required."})
	}

	user := &model.User{
		Username:  in.Username,
		Email:     strings.TrimSpace(in.Email),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Validation("Invalid user.", map[string]string{
				"username": "A user with that username already exists.",
			})
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("User registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Get возвращает пользователя или NotFound
func (s *UserService) Get(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user")
	}
	return user, nil
}

// GetByTelegramID returns the user linked to a Telegram account, nil if none
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}
	return user, nil
}

// LinkTelegram привязывает чат Telegram к пользователю
func (s *UserService) LinkTelegram(ctx context.Context, userID, telegramID int64) error {
	if _, err := s.Get(ctx, userID); err != nil {
		return err
	}

	if err := s.users.LinkTelegram(ctx, userID, telegramID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperrors.Validation("This Telegram account is already linked to another user.", nil)
		}
		return fmt.Errorf("link telegram: %w", err)
	}

	s.logger.Info("Telegram linked", zap.Int64("user_id", userID), zap.Int64("telegram_id", telegramID))
	return nil
}

// ============ Профиль ============

// GetProfile возвращает профиль со статистикой по отзывам.
// Пустой профиль создаётся на лету, как при первом входе.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*model.Profile, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if profile == nil {
		profile = &model.Profile{
			UserID:            userID,
			PreferInPerson:    true,
			PreferOnline:      true,
			NotificationEmail: true,
			NotificationInApp: true,
		}
	}

	stats, err := s.reviews.StatsFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile stats: %w", err)
	}
	profile.Stats = stats

	return profile, nil
}

// UpdateProfile сохраняет профиль. Флаг верификации меняется только администратором.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, in ProfileInput) (*model.Profile, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}

	in.UniversityEmail = strings.ToLower(strings.TrimSpace(in.UniversityEmail))

	fields := map[string]string{}
	if in.UniversityEmail != "" && !model.IsUniversityEmail(in.UniversityEmail) {
		fields["university_email"] = "Please use a valid university email address."
	}
	if in.BranchID != nil {
		branch, err := s.profiles.GetBranch(ctx, *in.BranchID)
		if err != nil {
			return nil, fmt.Errorf("get branch: %w", err)
		}
		switch {
		case branch == nil:
			fields["branch"] = "Select a valid choice."
		case in.DepartmentID == nil || branch.DepartmentID != *in.DepartmentID:
			fields["branch"] = "Branch must belong to the selected department."
		}
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation("Invalid profile.", fields)
	}

	profile := &model.Profile{
		UserID:            userID,
		UniversityEmail:   in.UniversityEmail,
		DepartmentID:      in.DepartmentID,
		BranchID:          in.BranchID,
		Year:              strings.TrimSpace(in.Year),
		Bio:               strings.TrimSpace(in.Bio),
		Availability:      strings.TrimSpace(in.Availability),
		PreferInPerson:    in.PreferInPerson,
		PreferOnline:      in.PreferOnline,
		NotificationEmail: in.NotificationEmail,
		NotificationInApp: in.NotificationInApp,
	}

	if err := s.profiles.Upsert(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Validation("Invalid profile.", map[string]string{
				"university_email": "This university email is already registered.",
			})
		}
		return nil, fmt.Errorf("save profile: %w", err)
	}

	s.logger.Info("Profile updated",
		zap.Int64("user_id", userID),
		zap.Int("completion", profile.CompletionPercentage()),
	)
	return profile, nil
}

// Search ищет получателя заявки по username или имени. Пустой запрос ничего не возвращает.
func (s *UserService) Search(ctx context.Context, query string) ([]*model.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*model.User{}, nil
	}

	users, err := s.users.Search(ctx, query, UserSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

// ============ Факультеты ============

func (s *UserService) ListDepartments(ctx context.Context) ([]*model.Department, error) {
	departments, err := s.profiles.ListDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// ListBranches получает ветки факультета; для неизвестного факультета список пуст
func (s *UserService) ListBranches(ctx context.Context, departmentID int64) ([]*model.Branch, error) {
	branches, err := s.profiles.ListBranches(ctx, departmentID)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	return branches, nil
}
