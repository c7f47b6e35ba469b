// Package memstore implements the service store interfaces in memory.
// It mirrors the conditional updates of the Postgres repositories and is used by tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/Freeeeeet/skill_swap/internal/repository"
	"github.com/shopspring/decimal"
)

// DB holds every table. Values are stored by value so callers never alias stored rows.
type DB struct {
	mu     sync.Mutex
	nextID int64

	users         map[int64]model.User
	profiles      map[int64]model.Profile
	departments   map[int64]model.Department
	branches      map[int64]model.Branch
	categories    map[int64]model.SkillCategory
	skills        map[int64]model.Skill
	offered       map[int64]model.OfferedSkill
	desired       map[int64]model.DesiredSkill
	matches       map[int64]model.SkillMatch
	requests      map[int64]model.SwapRequest
	sessions      map[int64]model.SwapSession
	reviews       map[int64]model.SessionReview
	notifications map[int64]model.Notification
}

func New() *DB {
	return &DB{
		users:         map[int64]model.User{},
		profiles:      map[int64]model.Profile{},
		departments:   map[int64]model.Department{},
		branches:      map[int64]model.Branch{},
		categories:    map[int64]model.SkillCategory{},
		skills:        map[int64]model.Skill{},
		offered:       map[int64]model.OfferedSkill{},
		desired:       map[int64]model.DesiredSkill{},
		matches:       map[int64]model.SkillMatch{},
		requests:      map[int64]model.SwapRequest{},
		sessions:      map[int64]model.SwapSession{},
		reviews:       map[int64]model.SessionReview{},
		notifications: map[int64]model.Notification{},
	}
}

func (db *DB) id() int64 {
	db.nextID++
	return db.nextID
}

type txKey struct{}

type txLog struct {
	undo []func()
}

// WithinTx undoes the writes made through ctx when fn fails.
// Transactions are not isolated from each other.
func (db *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*txLog); ok {
		return fn(ctx)
	}

	log := &txLog{}
	if err := fn(context.WithValue(ctx, txKey{}, log)); err != nil {
		db.mu.Lock()
		for i := len(log.undo) - 1; i >= 0; i-- {
			log.undo[i]()
		}
		db.mu.Unlock()
		return err
	}
	return nil
}

// track remembers the previous row under key. Caller holds db.mu.
func track[K comparable, V any](ctx context.Context, m map[K]V, key K) {
	log, ok := ctx.Value(txKey{}).(*txLog)
	if !ok {
		return
	}
	prev, existed := m[key]
	log.undo = append(log.undo, func() {
		if existed {
			m[key] = prev
		} else {
			delete(m, key)
		}
	})
}

// ============ Наполнение для тестов ============

func (db *DB) AddCategory(c model.SkillCategory) *model.SkillCategory {
	db.mu.Lock()
	defer db.mu.Unlock()
	c.ID = db.id()
	db.categories[c.ID] = c
	return &c
}

func (db *DB) AddSkill(s model.Skill) *model.Skill {
	db.mu.Lock()
	defer db.mu.Unlock()
	s.ID = db.id()
	db.skills[s.ID] = s
	return &s
}

func (db *DB) AddDepartment(d model.Department) *model.Department {
	db.mu.Lock()
	defer db.mu.Unlock()
	d.ID = db.id()
	db.departments[d.ID] = d
	return &d
}

func (db *DB) AddBranch(b model.Branch) *model.Branch {
	db.mu.Lock()
	defer db.mu.Unlock()
	b.ID = db.id()
	db.branches[b.ID] = b
	return &b
}

func (db *DB) AddMatch(m model.SkillMatch) *model.SkillMatch {
	db.mu.Lock()
	defer db.mu.Unlock()
	m.ID = db.id()
	db.matches[m.ID] = m
	return &m
}

// PutRequest overwrites a stored request as is
func (db *DB) PutRequest(r model.SwapRequest) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.requests[r.ID] = r
}

// PutSession overwrites a stored session as is
func (db *DB) PutSession(s model.SwapSession) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.sessions[s.ID] = s
}

// CountSessions returns the number of stored sessions
func (db *DB) CountSessions() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.sessions)
}

// ============ Users ============

type Users struct{ db *DB }

func (db *DB) Users() *Users { return &Users{db: db} }

func (s *Users) Create(ctx context.Context, user *model.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Username == user.Username {
			return repository.ErrDuplicate
		}
		if user.TelegramID != nil && u.TelegramID != nil && *u.TelegramID == *user.TelegramID {
			return repository.ErrDuplicate
		}
	}
	user.ID = s.db.id()
	user.CreatedAt = time.Now()
	track(ctx, s.db.users, user.ID)
	s.db.users[user.ID] = *user
	return nil
}

func (s *Users) find(match func(u model.User) bool) *model.User {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if match(u) {
			return &u
		}
	}
	return nil
}

func (s *Users) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.ID == id }), nil
}

func (s *Users) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.Username == username }), nil
}

func (s *Users) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.TelegramID != nil && *u.TelegramID == telegramID }), nil
}

func (s *Users) Search(ctx context.Context, term string, limit int) ([]*model.User, error) {
	term = strings.ToLower(term)
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var result []*model.User
	for _, u := range s.db.users {
		if strings.Contains(strings.ToLower(u.Username), term) || strings.Contains(strings.ToLower(u.FirstName), term) {
			result = append(result, &u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Users) LinkTelegram(ctx context.Context, userID, telegramID int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.ID != userID && u.TelegramID != nil && *u.TelegramID == telegramID {
			return repository.ErrDuplicate
		}
	}
	u, ok := s.db.users[userID]
	if !ok {
		return errNotFound("user")
	}
	u.TelegramID = &telegramID
	track(ctx, s.db.users, userID)
	s.db.users[userID] = u
	return nil
}

// ============ Profiles ============

type Profiles struct{ db *DB }

func (db *DB) Profiles() *Profiles { return &Profiles{db: db} }

func (s *Profiles) GetByUserID(ctx context.Context, userID int64) (*model.Profile, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *Profiles) Upsert(ctx context.Context, p *model.Profile) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if p.UniversityEmail != "" {
		for _, other := range s.db.profiles {
			if other.UserID != p.UserID && strings.EqualFold(other.UniversityEmail, p.UniversityEmail) {
				return repository.ErrDuplicate
			}
		}
	}
	now := time.Now()
	if existing, ok := s.db.profiles[p.UserID]; ok {
		p.IsVerified = existing.IsVerified
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	stored := *p
	stored.Stats = nil
	track(ctx, s.db.profiles, p.UserID)
	s.db.profiles[p.UserID] = stored
	return nil
}

func (s *Profiles) GetBranch(ctx context.Context, id int64) (*model.Branch, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	b, ok := s.db.branches[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s *Profiles) ListDepartments(ctx context.Context) ([]*model.Department, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var result []*model.Department
	for _, d := range s.db.departments {
		if d.IsActive {
			result = append(result, &d)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *Profiles) ListBranches(ctx context.Context, departmentID int64) ([]*model.Branch, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if d, ok := s.db.departments[departmentID]; !ok || !d.IsActive {
		return nil, nil
	}
	var result []*model.Branch
	for _, b := range s.db.branches {
		if b.DepartmentID == departmentID && b.IsActive {
			result = append(result, &b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ============ Catalog ============

type Catalog struct{ db *DB }

func (db *DB) Catalog() *Catalog { return &Catalog{db: db} }

func (s *Catalog) ListCategories(ctx context.Context) ([]*model.SkillCategory, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var result []*model.SkillCategory
	for _, c := range s.db.categories {
		if c.IsActive {
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *Catalog) GetSkill(ctx context.Context, id int64) (*model.Skill, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	sk, ok := s.db.skills[id]
	if !ok {
		return nil, nil
	}
	return &sk, nil
}

func (s *Catalog) skillsWhere(match func(sk model.Skill) bool) []*model.Skill {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var result []*model.Skill
	for _, sk := range s.db.skills {
		if match(sk) {
			result = append(result, &sk)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].IsPopular != result[j].IsPopular {
			return result[i].IsPopular
		}
		return result[i].Name < result[j].Name
	})
	return result
}

func (s *Catalog) ListSkillsByCategory(ctx context.Context, categoryID int64) ([]*model.Skill, error) {
	return s.skillsWhere(func(sk model.Skill) bool { return sk.CategoryID == categoryID }), nil
}

func (s *Catalog) SearchSkills(ctx context.Context, term string, limit int) ([]*model.Skill, error) {
	term = strings.ToLower(term)
	result := s.skillsWhere(func(sk model.Skill) bool { return strings.Contains(strings.ToLower(sk.Name), term) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Catalog) GetOfferedSkill(ctx context.Context, id int64) (*model.OfferedSkill, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	o, ok := s.db.offered[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (s *Catalog) ListOfferedByUser(ctx context.Context, userID int64) ([]*model.OfferedSkill, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var result []*model.OfferedSkill
	for _, o := range s.db.offered {
		if o.UserID == userID {
			result = append(result, &o)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (s *Catalog) CreateOffered(ctx context.Context, o *model.OfferedSkill) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.offered {
		if existing.UserID == o.UserID && existing.SkillID == o.SkillID {
			return repository.ErrDuplicate
		}
	}
	o.ID = s.db.id()
	o.TotalSessions = 0
	o.AverageRating = decimal.Zero
	o.CreatedAt = time.Now()
	stored := *o
	stored.Skill = nil
	track(ctx, s.db.offered, o.ID)
	s.db.offered[o.ID] = stored
	return nil
}

func (s *Catalog) ToggleOffered(ctx context.Context, id, userID int64) (bool, bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	o, ok := s.db.offered[id]
	if !ok || o.UserID != userID {
		return false, false, nil
	}
	o.IsActive = !o.IsActive
	track(ctx, s.db.offered, id)
	s.db.offered[id] = o
	return o.IsActive, true, nil
}

func (s *Catalog) DeleteOffered(ctx context.Context, id, userID int64) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	o, ok := s.db.offered[id]
	if !ok || o.UserID != userID {
		return false, nil
	}
	track(ctx, s.db.offered, id)
	delete(s.db.offered, id)
	return true, nil
}

func (s *Catalog) GetDesiredSkill(ctx context.Context, id int64) (*model.DesiredSkill, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	d, ok := s.db.desired[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (s *Catalog) ListDesiredByUser(ctx context.Context, userID int64) ([]*model.DesiredSkill, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var result []*model.DesiredSkill
	for _, d := range s.db.desired {
		if d.UserID == userID {
			result = append(result, &d)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (s *Catalog) CreateDesired(ctx context.Context, d *model.DesiredSkill) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.desired {
		if existing.UserID == d.UserID && existing.SkillID == d.SkillID {
			return repository.ErrDuplicate
		}
	}
	d.ID = s.db.id()
	d.CreatedAt = time.Now()
	stored := *d
	stored.Skill = nil
	track(ctx, s.db.desired, d.ID)
	s.db.desired[d.ID] = stored
	return nil
}

func (s *Catalog) ToggleDesired(ctx context.Context, id, userID int64) (bool, bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	d, ok := s.db.desired[id]
	if !ok || d.UserID != userID {
		return false, false, nil
	}
	d.IsActive = !d.IsActive
	track(ctx, s.db.desired, id)
	s.db.desired[id] = d
	return d.IsActive, true, nil
}

func (s *Catalog) DeleteDesired(ctx context.Context, id, userID int64) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	d, ok := s.db.desired[id]
	if !ok || d.UserID != userID {
		return false, nil
	}
	track(ctx, s.db.desired, id)
	delete(s.db.desired, id)
	return true, nil
}

type notFoundError string

func (e notFoundError) Error() string { return string(e) + " not found" }

func errNotFound(entity string) error { return notFoundError(entity) }
