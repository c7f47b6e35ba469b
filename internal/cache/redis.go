package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/redis/go-redis/v9"
)

const (
	keyCategories       = "catalog:categories"
	keySkillsByCategory = "catalog:category:%d:skills"
	keySkill            = "catalog:skill:%d"
)

// RedisCache keeps read-mostly catalog data. A miss is reported as (nil, nil).
type RedisCache struct {
	Client *redis.Client
	ttl    time.Duration
}

// NewRedisCache initializes Redis client. Only addr is mandatory.
func NewRedisCache(addr, password string, db int, ttl time.Duration) *RedisCache {
	opts := &redis.Options{
		Addr: addr,
	}
	if password != "" {
		opts.Password = password
	}
	if db != 0 {
		opts.DB = db
	}
	return &RedisCache{Client: redis.NewClient(opts), ttl: ttl}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

func (c *RedisCache) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	val, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil // cache miss
	} else if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.Client.Set(ctx, key, data, c.ttl).Err()
}

func (c *RedisCache) GetCategories(ctx context.Context) ([]*model.SkillCategory, error) {
	var categories []*model.SkillCategory
	ok, err := c.getJSON(ctx, keyCategories, &categories)
	if err != nil || !ok {
		return nil, err
	}
	return categories, nil
}

func (c *RedisCache) SetCategories(ctx context.Context, categories []*model.SkillCategory) error {
	return c.setJSON(ctx, keyCategories, categories)
}

func (c *RedisCache) GetSkillsByCategory(ctx context.Context, categoryID int64) ([]*model.Skill, error) {
	var skills []*model.Skill
	ok, err := c.getJSON(ctx, fmt.Sprintf(keySkillsByCategory, categoryID), &skills)
	if err != nil || !ok {
		return nil, err
	}
	return skills, nil
}

func (c *RedisCache) SetSkillsByCategory(ctx context.Context, categoryID int64, skills []*model.Skill) error {
	return c.setJSON(ctx, fmt.Sprintf(keySkillsByCategory, categoryID), skills)
}

func (c *RedisCache) GetSkill(ctx context.Context, id int64) (*model.Skill, error) {
	var skill model.Skill
	ok, err := c.getJSON(ctx, fmt.Sprintf(keySkill, id), &skill)
	if err != nil || !ok {
		return nil, err
	}
	return &skill, nil
}

func (c *RedisCache) SetSkill(ctx context.Context, skill *model.Skill) error {
	return c.setJSON(ctx, fmt.Sprintf(keySkill, skill.ID), skill)
}
