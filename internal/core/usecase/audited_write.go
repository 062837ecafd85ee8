package usecase

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
)

// AuditedWrite runs one entity mutation and records it in the audit log.
//
// The mutation always happens first. Once it has succeeded, the audit append is
// attempted exactly once; a failure there is logged and counted but never
// returned, because the primary write is already committed.
type AuditedWrite[T domain.Auditable] struct {
	audit  ChangeLogger
	logger *slog.Logger
}

func NewAuditedWrite[T domain.Auditable](audit ChangeLogger, logger *slog.Logger) AuditedWrite[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return AuditedWrite[T]{audit: audit, logger: logger}
}

type writeStep[T domain.Auditable] struct {
	action   string
	load     func(ctx context.Context) (T, error)
	validate func(ctx context.Context, current T) error
	apply    func(ctx context.Context, current T) (T, error)
	// snapshot overrides the entity projection for both sides, e.g. a password change.
	snapshot func(T) any
	removes  bool
}

func (w AuditedWrite[T]) Create(ctx context.Context, actor string, validate func(ctx context.Context) error, insert func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if validate != nil {
		if err := validate(ctx); err != nil {
			return zero, err
		}
	}
	created, err := insert(ctx)
	if err != nil {
		return zero, err
	}
	w.record(ctx, actor, domain.ActionCreate, created, nil, CaptureSnapshot(created))
	return created, nil
}

func (w AuditedWrite[T]) Update(ctx context.Context, actor string, load func(ctx context.Context) (T, error), validate func(ctx context.Context, current T) error, apply func(ctx context.Context, current T) (T, error)) (T, error) {
	return w.exec(ctx, actor, writeStep[T]{
		action:   domain.ActionUpdate,
		load:     load,
		validate: validate,
		apply:    apply,
	})
}

func (w AuditedWrite[T]) Delete(ctx context.Context, actor string, load func(ctx context.Context) (T, error), validate func(ctx context.Context, current T) error, remove func(ctx context.Context, current T) error) error {
	_, err := w.exec(ctx, actor, writeStep[T]{
		action:   domain.ActionDelete,
		load:     load,
		validate: validate,
		apply: func(ctx context.Context, current T) (T, error) {
			return current, remove(ctx, current)
		},
		removes: true,
	})
	return err
}

func (w AuditedWrite[T]) exec(ctx context.Context, actor string, step writeStep[T]) (T, error) {
	var zero T
	current, err := step.load(ctx)
	if err != nil {
		return zero, err
	}
	// Serialize now: apply may reuse slices held by current.
	before := w.capture(step, current)

	if step.validate != nil {
		if err := step.validate(ctx, current); err != nil {
			return zero, err
		}
	}
	result, err := step.apply(ctx, current)
	if err != nil {
		return zero, err
	}

	var after json.RawMessage
	if !step.removes {
		after = w.capture(step, result)
	}
	w.record(ctx, actor, step.action, current, before, after)
	return result, nil
}

func (w AuditedWrite[T]) capture(step writeStep[T], v T) json.RawMessage {
	if step.snapshot != nil {
		return CaptureSnapshot(step.snapshot(v))
	}
	return CaptureSnapshot(v)
}

func (w AuditedWrite[T]) record(ctx context.Context, actor, action string, subject T, before, after json.RawMessage) {
	key := keyDescriptor(subject)
	entity := subject.EntityName()
	// The mutation is committed; a client disconnect must not drop its record.
	ctx = context.WithoutCancel(ctx)
	if err := w.audit.LogChange(ctx, actor, action, entity, key, before, after); err != nil {
		w.logger.ErrorContext(ctx, "audit append failed",
			"entity", entity,
			"action", action,
			"key", key,
			"actor", domain.NormalizeActor(actor),
			"error", err,
		)
	}
}
