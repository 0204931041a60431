package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/kompas/kompas/internal/domain"
	"github.com/kompas/kompas/internal/ports"
)

// CacheConfig configures the objective-type lookup cache
type CacheConfig struct {
	Enabled  bool
	RedisURL string
	TTL      time.Duration
}

// cachedObjectiveTypeRepository decorates an ObjectiveTypeRepository with a
// Redis read-through cache on the (entity, operation) lookup, which runs
// once per business event platform-wide. Writes go straight to the inner
// repository and invalidate the cache. Cache failures fall through to the
// database; the cache is an accelerator, never a source of truth.
type cachedObjectiveTypeRepository struct {
	inner  ports.ObjectiveTypeRepository
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

const activeTypesKeyPrefix = "objective_types:active:"

// NewCachedObjectiveTypeRepository wraps inner with a Redis cache. When the
// cache is disabled or Redis is unreachable the inner repository is returned
// unchanged.
func NewCachedObjectiveTypeRepository(inner ports.ObjectiveTypeRepository, config CacheConfig, logger *logrus.Logger) ports.ObjectiveTypeRepository {
	if !config.Enabled {
		logger.Info("Objective type cache disabled")
		return inner
	}

	opt, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		logger.WithError(err).Warn("Invalid Redis URL, objective type cache disabled")
		return inner
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Redis unreachable, objective type cache disabled")
		return inner
	}

	logger.WithFields(logrus.Fields{
		"ttl": config.TTL,
	}).Info("Objective type cache initialized")

	return &cachedObjectiveTypeRepository{
		inner:  inner,
		client: client,
		ttl:    config.TTL,
		logger: logger,
	}
}

func activeTypesKey(entityType domain.EntityType, operation domain.Operation) string {
	return fmt.Sprintf("%s%s:%s", activeTypesKeyPrefix, entityType, operation)
}

// FindActiveByEntityAndOperation serves the tracker's hot lookup from cache
// when possible
func (r *cachedObjectiveTypeRepository) FindActiveByEntityAndOperation(ctx context.Context, entityType domain.EntityType, operation domain.Operation) ([]*domain.ObjectiveType, error) {
	key := activeTypesKey(entityType, operation)

	cached, err := r.client.Get(ctx, key).Result()
	if err == nil {
		var objectiveTypes []*domain.ObjectiveType
		if err := json.Unmarshal([]byte(cached), &objectiveTypes); err == nil {
			return objectiveTypes, nil
		}
		r.logger.WithField("key", key).Warn("Discarding malformed cache entry")
		r.client.Del(ctx, key)
	} else if err != redis.Nil {
		r.logger.WithError(err).Debug("Cache read failed, falling through to database")
	}

	objectiveTypes, err := r.inner.FindActiveByEntityAndOperation(ctx, entityType, operation)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(objectiveTypes); err == nil {
		if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
			r.logger.WithError(err).Debug("Cache write failed")
		}
	}

	return objectiveTypes, nil
}

// Create invalidates the cache after delegating
func (r *cachedObjectiveTypeRepository) Create(ctx context.Context, objectiveType *domain.ObjectiveType) error {
	if err := r.inner.Create(ctx, objectiveType); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

// Update invalidates the cache after delegating. The whole prefix is
// dropped because an update may move the type between (entity, operation)
// pairs.
func (r *cachedObjectiveTypeRepository) Update(ctx context.Context, objectiveType *domain.ObjectiveType) error {
	if err := r.inner.Update(ctx, objectiveType); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

// Deactivate invalidates the cache after delegating
func (r *cachedObjectiveTypeRepository) Deactivate(ctx context.Context, id string) error {
	if err := r.inner.Deactivate(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

// FindByID delegates; single-row reads are not cached
func (r *cachedObjectiveTypeRepository) FindByID(ctx context.Context, id string) (*domain.ObjectiveType, error) {
	return r.inner.FindByID(ctx, id)
}

// List delegates; admin listings are not on the hot path
func (r *cachedObjectiveTypeRepository) List(ctx context.Context, filter domain.ObjectiveTypeFilter) ([]*domain.ObjectiveType, error) {
	return r.inner.List(ctx, filter)
}

// invalidate drops every cached lookup. The keyspace is tiny (one key per
// entity/operation pair) so a scan is cheap.
func (r *cachedObjectiveTypeRepository) invalidate(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, activeTypesKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			r.logger.WithError(err).Debug("Cache invalidation delete failed")
		}
	}
	if err := iter.Err(); err != nil {
		r.logger.WithError(err).Warn("Cache invalidation scan failed")
	}
}
