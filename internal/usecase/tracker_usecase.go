package usecase

import (
	"context"
	"fmt"

	"github.com/kompas/kompas/internal/domain"
	"github.com/kompas/kompas/internal/ports"
	"github.com/kompas/kompas/internal/service/logger"
)

// TrackStrategy selects how the per-aggregate increments of one event relate
// to each other. Independent mode isolates every failure to its own
// aggregate; atomic mode wraps the whole fan-out in one transaction and
// fails the event as a unit, at the cost of lock contention between
// unrelated scopes.
type TrackStrategy string

const (
	StrategyIndependent TrackStrategy = "independent"
	StrategyAtomic      TrackStrategy = "atomic"
)

// ParseTrackStrategy maps a configuration string onto a strategy, falling
// back to independent, the historical behavior.
func ParseTrackStrategy(s string) TrackStrategy {
	if TrackStrategy(s) == StrategyAtomic {
		return StrategyAtomic
	}
	return StrategyIndependent
}

// TrackerUseCase propagates committed business events into every matching
// objective across the four scope levels.
type TrackerUseCase struct {
	registry      *domain.Registry
	typeRepo      ports.ObjectiveTypeRepository
	objectiveRepo ports.ObjectiveRepository
	progressRepo  ports.ProgressRepository
	strategy      TrackStrategy
	log           logger.Logger
}

// NewTrackerUseCase creates a new event tracker
func NewTrackerUseCase(
	registry *domain.Registry,
	typeRepo ports.ObjectiveTypeRepository,
	objectiveRepo ports.ObjectiveRepository,
	progressRepo ports.ProgressRepository,
	strategy TrackStrategy,
	log logger.Logger,
) *TrackerUseCase {
	return &TrackerUseCase{
		registry:      registry,
		typeRepo:      typeRepo,
		objectiveRepo: objectiveRepo,
		progressRepo:  progressRepo,
		strategy:      strategy,
		log:           log,
	}
}

// TrackEvent applies one business event to every active objective it is
// relevant to. The only error that propagates to the caller is a failure of
// the initial configuration lookup (and, in atomic mode, a storage failure
// that aborted the event's transaction); everything past that degrades to
// skip-and-continue so one bad objective type or unreachable scope never
// blocks the rest.
//
// There is no idempotency key: replaying the same event increments every
// matched objective again. Callers with at-least-once delivery must dedupe
// upstream.
func (uc *TrackerUseCase) TrackEvent(ctx context.Context, event domain.BusinessEvent) (domain.TrackResult, error) {
	var result domain.TrackResult

	types, err := uc.typeRepo.FindActiveByEntityAndOperation(ctx, event.EntityType, event.Operation)
	if err != nil {
		return result, fmt.Errorf("failed to load objective types for %s/%s: %w", event.EntityType, event.Operation, err)
	}
	if len(types) == 0 {
		return result, nil
	}

	ectx := uc.registry.ResolveContext(event.EntityType, event.Record)

	if uc.strategy == StrategyAtomic {
		// Entries are buffered and written only after the transaction commits;
		// a rollback must leave no history for increments that never happened.
		var pending []*domain.ProgressEntry
		err := uc.objectiveRepo.InTx(ctx, func(repo ports.ObjectiveRepository) error {
			for _, t := range types {
				partial, entries, err := uc.trackType(ctx, repo, t, event, ectx, true)
				result.Add(partial)
				pending = append(pending, entries...)
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return domain.TrackResult{}, fmt.Errorf("atomic tracking failed: %w", err)
		}
		uc.logProgress(ctx, pending)
		return result, nil
	}

	for _, t := range types {
		partial, entries, _ := uc.trackType(ctx, uc.objectiveRepo, t, event, ectx, false)
		result.Add(partial)
		uc.logProgress(ctx, entries)
	}
	return result, nil
}

// scopeTarget pairs a level with the scope key objectives must match on
type scopeTarget struct {
	level   domain.Level
	scopeID *string
}

// resolveTargets computes the scopes an event applies to. The global level
// is always included; business-unit and division levels only when the
// record resolved a scope identifier; the individual level once per distinct
// collaborator among assignee and creator.
func resolveTargets(ectx domain.EventContext) []scopeTarget {
	targets := []scopeTarget{{level: domain.LevelGlobal}}
	if ectx.BusinessUnit != nil {
		targets = append(targets, scopeTarget{level: domain.LevelBusinessUnit, scopeID: ectx.BusinessUnit})
	}
	if ectx.Division != nil {
		targets = append(targets, scopeTarget{level: domain.LevelDivision, scopeID: ectx.Division})
	}
	for _, collaborator := range ectx.Individuals() {
		c := collaborator
		targets = append(targets, scopeTarget{level: domain.LevelIndividual, scopeID: &c})
	}
	return targets
}

// trackType fans one objective type out to every applicable scope and hands
// back the audit entries for the increments it applied. In independent mode
// all failures are absorbed into the skip counter; in atomic mode the first
// storage failure is returned so the surrounding transaction rolls back and
// the caller discards the entries.
func (uc *TrackerUseCase) trackType(
	ctx context.Context,
	repo ports.ObjectiveRepository,
	t *domain.ObjectiveType,
	event domain.BusinessEvent,
	ectx domain.EventContext,
	atomic bool,
) (domain.TrackResult, []*domain.ProgressEntry, error) {
	var result domain.TrackResult
	var entries []*domain.ProgressEntry

	field, ok := uc.registry.ValueField(t.EntityType, t.ValueField)
	if !ok {
		// Configuration drifted since the type was validated. Skip, never crash.
		result.Skipped++
		uc.log.Warn(ctx, "objective type references an undeclared value field", map[string]interface{}{
			"objective_type": t.Code,
			"entity_type":    t.EntityType,
			"value_field":    t.ValueField,
		})
		return result, nil, nil
	}

	value, ok := domain.ExtractorFor(field).Extract(event.Record)
	if !ok {
		result.Skipped++
		uc.log.Warn(ctx, "could not extract value from event record", map[string]interface{}{
			"objective_type":   t.Code,
			"value_field":      t.ValueField,
			"source_entity_id": event.SourceID(),
		})
		return result, nil, nil
	}

	for _, target := range resolveTargets(ectx) {
		objectives, err := repo.FindActiveForTracking(ctx, target.level, t.ID, event.FiscalYearID, target.scopeID)
		if err != nil {
			if atomic {
				return result, nil, err
			}
			result.Skipped++
			uc.log.Error(ctx, "failed to resolve objectives for scope", err, map[string]interface{}{
				"objective_type": t.Code,
				"level":          target.level,
				"fiscal_year_id": event.FiscalYearID,
			})
			continue
		}

		// No objective configured at this scope is not an error; it simply
		// contributes zero updates.
		for _, objective := range objectives {
			newValue, err := repo.IncrementCurrentValue(ctx, target.level, objective.ID, value)
			if err != nil {
				if atomic {
					return result, nil, err
				}
				result.Skipped++
				uc.log.Error(ctx, "failed to increment objective", err, map[string]interface{}{
					"objective_id":   objective.ID,
					"objective_type": t.Code,
					"level":          target.level,
					"change_value":   value,
				})
				continue
			}
			result.Updated++
			entries = append(entries, domain.NewProgressEntry(target.level, objective.ID, newValue, value, event.SourceID(), ectx.Creator))

			uc.log.Debug(ctx, "objective incremented", map[string]interface{}{
				"objective_id":   objective.ID,
				"objective_type": t.Code,
				"level":          target.level,
				"change_value":   value,
				"new_value":      newValue,
			})
		}
	}

	return result, entries, nil
}

// logProgress appends audit entries best-effort. The increments behind them
// are already committed; a lost audit entry must never roll them back or
// fail the event.
func (uc *TrackerUseCase) logProgress(ctx context.Context, entries []*domain.ProgressEntry) {
	for _, entry := range entries {
		if err := uc.progressRepo.Create(ctx, entry); err != nil {
			uc.log.Warn(ctx, "failed to log objective progress", map[string]interface{}{
				"objective_id":     entry.ObjectiveID,
				"level":            entry.Level,
				"source_entity_id": entry.SourceEntityID,
				"error":            err.Error(),
			})
		}
	}
}
