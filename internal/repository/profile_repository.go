package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/Freeeeeet/skill_swap/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileRepository struct {
	*base.Repository
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{Repository: base.NewRepository(pool)}
}

// GetByUserID получает профиль пользователя
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*model.Profile, error) {
	query := `
		SELECT user_id, COALESCE(university_email, ''), department_id, branch_id, year, bio, availability,
		       is_verified, prefer_in_person, prefer_online, notification_email, notification_in_app,
		       created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`

	var p model.Profile
	err := r.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.UniversityEmail,
		&p.DepartmentID,
		&p.BranchID,
		&p.Year,
		&p.Bio,
		&p.Availability,
		&p.IsVerified,
		&p.PreferInPerson,
		&p.PreferOnline,
		&p.NotificationEmail,
		&p.NotificationInApp,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return &p, nil
}

// Upsert создаёт или обновляет профиль. Флаг верификации не трогаем.
func (r *ProfileRepository) Upsert(ctx context.Context, p *model.Profile) error {
	query := `
		INSERT INTO profiles (user_id, university_email, department_id, branch_id, year, bio, availability,
		                      prefer_in_person, prefer_online, notification_email, notification_in_app)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE SET
			university_email    = EXCLUDED.university_email,
			department_id       = EXCLUDED.department_id,
			branch_id           = EXCLUDED.branch_id,
			year                = EXCLUDED.year,
			bio                 = EXCLUDED.bio,
			availability        = EXCLUDED.availability,
			prefer_in_person    = EXCLUDED.prefer_in_person,
			prefer_online       = EXCLUDED.prefer_online,
			notification_email  = EXCLUDED.notification_email,
			notification_in_app = EXCLUDED.notification_in_app,
			updated_at          = now()
		RETURNING is_verified, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		p.UserID,
		p.UniversityEmail,
		p.DepartmentID,
		p.BranchID,
		p.Year,
		p.Bio,
		p.Availability,
		p.PreferInPerson,
		p.PreferOnline,
		p.NotificationEmail,
		p.NotificationInApp,
	).Scan(&p.IsVerified, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("upsert profile: %w", err)
	}

	return nil
}

// GetBranch получает ветку факультета
func (r *ProfileRepository) GetBranch(ctx context.Context, id int64) (*model.Branch, error) {
	query := `SELECT id, department_id, name, code, is_active FROM branches WHERE id = $1`

	var b model.Branch
	err := r.QueryRow(ctx, query, id).Scan(&b.ID, &b.DepartmentID, &b.Name, &b.Code, &b.IsActive)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get branch: %w", err)
	}

	return &b, nil
}

// ListDepartments получает активные факультеты
func (r *ProfileRepository) ListDepartments(ctx context.Context) ([]*model.Department, error) {
	query := `
		SELECT id, name, code, description, is_active
		FROM departments
		WHERE is_active = TRUE
		ORDER BY name
	`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()

	var departments []*model.Department
	for rows.Next() {
		var d model.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Code, &d.Description, &d.IsActive); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		departments = append(departments, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate departments: %w", err)
	}

	return departments, nil
}

// ListBranches получает активные ветки активного факультета
func (r *ProfileRepository) ListBranches(ctx context.Context, departmentID int64) ([]*model.Branch, error) {
	query := `
		SELECT b.id, b.department_id, b.name, b.code, b.is_active
		FROM branches b
		JOIN departments d ON d.id = b.department_id
		WHERE b.department_id = $1 AND b.is_active = TRUE AND d.is_active = TRUE
		ORDER BY b.name
	`

	rows, err := r.Query(ctx, query, departmentID)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer rows.Close()

	var branches []*model.Branch
	for rows.Next() {
		var b model.Branch
		if err := rows.Scan(&b.ID, &b.DepartmentID, &b.Name, &b.Code, &b.IsActive); err != nil {
			return nil, fmt.Errorf("scan branch: %w", err)
		}
		branches = append(branches, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate branches: %w", err)
	}

	return branches, nil
}
