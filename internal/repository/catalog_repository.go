package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/Freeeeeet/skill_swap/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogRepository stores categories, skills and the skills users attach to themselves
type CatalogRepository struct {
	*base.Repository
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{Repository: base.NewRepository(pool)}
}

// ============ Категории и навыки ============

// ListCategories получает активные категории
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]*model.SkillCategory, error) {
	query := `
		SELECT id, name, description, icon, color, is_active, created_at
		FROM skill_categories
		WHERE is_active = TRUE
		ORDER BY name
	`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []*model.SkillCategory
	for rows.Next() {
		var c model.SkillCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Icon, &c.Color, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

const skillColumns = `id, category_id, name, description, is_popular, created_at`

func collectSkills(rows pgx.Rows) ([]*model.Skill, error) {
	defer rows.Close()

	var skills []*model.Skill
	for rows.Next() {
		var s model.Skill
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Description, &s.IsPopular, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		skills = append(skills, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate skills: %w", err)
	}

	return skills, nil
}

// GetSkill получает навык по ID
func (r *CatalogRepository) GetSkill(ctx context.Context, id int64) (*model.Skill, error) {
	query := `SELECT ` + skillColumns + ` FROM skills WHERE id = $1`

	var s model.Skill
	err := r.QueryRow(ctx, query, id).Scan(&s.ID, &s.CategoryID, &s.Name, &s.Description, &s.IsPopular, &s.CreatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get skill: %w", err)
	}

	return &s, nil
}

// ListSkillsByCategory получает навыки категории
func (r *CatalogRepository) ListSkillsByCategory(ctx context.Context, categoryID int64) ([]*model.Skill, error) {
	query := `SELECT ` + skillColumns + ` FROM skills WHERE category_id = $1 ORDER BY name`

	rows, err := r.Query(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list skills by category: %w", err)
	}

	return collectSkills(rows)
}

// SearchSkills ищет навыки по подстроке имени
func (r *CatalogRepository) SearchSkills(ctx context.Context, term string, limit int) ([]*model.Skill, error) {
	query := `
		SELECT ` + skillColumns + `
		FROM skills
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY is_popular DESC, name
		LIMIT $2
	`

	rows, err := r.Query(ctx, query, term, limit)
	if err != nil {
		return nil, fmt.Errorf("search skills: %w", err)
	}

	return collectSkills(rows)
}

// ============ Предлагаемые навыки ============

const offeredColumns = `
	id, user_id, skill_id, proficiency_level, description, years_of_experience, is_active,
	teaching_preference, max_students_per_session, total_sessions, average_rating, created_at`

func scanOffered(row interface{ Scan(...any) error }) (*model.OfferedSkill, error) {
	var o model.OfferedSkill
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.SkillID,
		&o.ProficiencyLevel,
		&o.Description,
		&o.YearsOfExperience,
		&o.IsActive,
		&o.TeachingPreference,
		&o.MaxStudentsPerSession,
		&o.TotalSessions,
		&o.AverageRating,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOfferedSkill получает предлагаемый навык по ID
func (r *CatalogRepository) GetOfferedSkill(ctx context.Context, id int64) (*model.OfferedSkill, error) {
	query := `SELECT ` + offeredColumns + ` FROM offered_skills WHERE id = $1`

	offered, err := scanOffered(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get offered skill: %w", err)
	}

	return offered, nil
}

// ListOfferedByUser получает навыки, которые предлагает пользователь
func (r *CatalogRepository) ListOfferedByUser(ctx context.Context, userID int64) ([]*model.OfferedSkill, error) {
	query := `SELECT ` + offeredColumns + ` FROM offered_skills WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list offered skills: %w", err)
	}
	defer rows.Close()

	var result []*model.OfferedSkill
	for rows.Next() {
		offered, err := scanOffered(rows)
		if err != nil {
			return nil, fmt.Errorf("scan offered skill: %w", err)
		}
		result = append(result, offered)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate offered skills: %w", err)
	}

	return result, nil
}

// CreateOffered создаёт предлагаемый навык
func (r *CatalogRepository) CreateOffered(ctx context.Context, o *model.OfferedSkill) error {
	query := `
		INSERT INTO offered_skills (user_id, skill_id, proficiency_level, description, years_of_experience,
		                            is_active, teaching_preference, max_students_per_session)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, total_sessions, average_rating, created_at
	`

	err := r.QueryRow(
		ctx, query,
		o.UserID,
		o.SkillID,
		o.ProficiencyLevel,
		o.Description,
		o.YearsOfExperience,
		o.IsActive,
		o.TeachingPreference,
		o.MaxStudentsPerSession,
	).Scan(&o.ID, &o.TotalSessions, &o.AverageRating, &o.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create offered skill: %w", err)
	}

	return nil
}

// ToggleOffered переключает активность навыка владельца
func (r *CatalogRepository) ToggleOffered(ctx context.Context, id, userID int64) (bool, bool, error) {
	query := `
		UPDATE offered_skills SET is_active = NOT is_active
		WHERE id = $1 AND user_id = $2
		RETURNING is_active
	`

	var active bool
	err := r.QueryRow(ctx, query, id, userID).Scan(&active)
	if err != nil {
		if base.IsNotFound(err) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("toggle offered skill: %w", err)
	}

	return active, true, nil
}

// DeleteOffered удаляет навык владельца
func (r *CatalogRepository) DeleteOffered(ctx context.Context, id, userID int64) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM offered_skills WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete offered skill: %w", err)
	}
	return affected > 0, nil
}

// ============ Желаемые навыки ============

const desiredColumns = `
	id, user_id, skill_id, urgency, description, current_level, target_level,
	learning_preference, is_active, created_at`

func scanDesired(row interface{ Scan(...any) error }) (*model.DesiredSkill, error) {
	var d model.DesiredSkill
	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.SkillID,
		&d.Urgency,
		&d.Description,
		&d.CurrentLevel,
		&d.TargetLevel,
		&d.LearningPreference,
		&d.IsActive,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDesiredSkill получает желаемый навык по ID
func (r *CatalogRepository) GetDesiredSkill(ctx context.Context, id int64) (*model.DesiredSkill, error) {
	query := `SELECT ` + desiredColumns + ` FROM desired_skills WHERE id = $1`

	desired, err := scanDesired(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get desired skill: %w", err)
	}

	return desired, nil
}

// ListDesiredByUser получает навыки, которые хочет изучить пользователь
func (r *CatalogRepository) ListDesiredByUser(ctx context.Context, userID int64) ([]*model.DesiredSkill, error) {
	query := `SELECT ` + desiredColumns + ` FROM desired_skills WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list desired skills: %w", err)
	}
	defer rows.Close()

	var result []*model.DesiredSkill
	for rows.Next() {
		desired, err := scanDesired(rows)
		if err != nil {
			return nil, fmt.Errorf("scan desired skill: %w", err)
		}
		result = append(result, desired)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate desired skills: %w", err)
	}

	return result, nil
}

// CreateDesired создаёт желаемый навык
func (r *CatalogRepository) CreateDesired(ctx context.Context, d *model.DesiredSkill) error {
	query := `
		INSERT INTO desired_skills (user_id, skill_id, urgency, description, current_level, target_level,
		                            learning_preference, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		d.UserID,
		d.SkillID,
		d.Urgency,
		d.Description,
		d.CurrentLevel,
		d.TargetLevel,
		d.LearningPreference,
		d.IsActive,
	).Scan(&d.ID, &d.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create desired skill: %w", err)
	}

	return nil
}

// ToggleDesired переключает активность желаемого навыка
func (r *CatalogRepository) ToggleDesired(ctx context.Context, id, userID int64) (bool, bool, error) {
	query := `
		UPDATE desired_skills SET is_active = NOT is_active
		WHERE id = $1 AND user_id = $2
		RETURNING is_active
	`

	var active bool
	err := r.QueryRow(ctx, query, id, userID).Scan(&active)
	if err != nil {
		if base.IsNotFound(err) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("toggle desired skill: %w", err)
	}

	return active, true, nil
}

// DeleteDesired удаляет желаемый навык владельца
func (r *CatalogRepository) DeleteDesired(ctx context.Context, id, userID int64) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM desired_skills WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete desired skill: %w", err)
	}
	return affected > 0, nil
}
