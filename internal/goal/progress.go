package goal

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/appraisal-lambda/internal/apperror"
	"github.com/saulo-duarte/appraisal-lambda/internal/user"
	"github.com/saulo-duarte/appraisal-lambda/internal/validation"
)

// RecordProgress appends to the goal's ledger and makes the new value the
// goal's current progress. The latest entry wins, whatever its magnitude.
func (s *goalService) RecordProgress(ctx context.Context, actor user.Actor, id uuid.UUID, dto RecordProgressDTO) (*ProgressResult, error) {
	log := goalLogger(ctx, actor, id)

	g, err := s.repo.FindByID(id)
	if err != nil {
		log.WithError(err).Warn("Goal lookup failed")
		return nil, err
	}
	if !CanRecordProgress(actor, g) {
		log.Warn("Progress update denied")
		return nil, apperror.Forbidden("only the owner can record progress on a goal")
	}
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	entry := &ProgressEntry{
		ID:        uuid.New(),
		AuthorID:  actor.ID,
		Progress:  roundProgress(*dto.Progress),
		Comments:  strings.TrimSpace(dto.Comments),
		CreatedAt: time.Now().UTC(),
	}

	// Re-checked under the row lock: the goal may have been returned to
	// draft since it was read above.
	guard := func(locked *Goal) error {
		if !CanRecordProgress(actor, locked) {
			return apperror.Forbidden("only the owner can record progress on a goal")
		}
		switch locked.Status {
		case StatusDraft:
			return apperror.Validation("progress can only be recorded after the goal is submitted")
		case StatusRejected:
			return apperror.Validation("progress cannot be recorded on a rejected goal")
		}
		return nil
	}

	updated, err := s.repo.AppendProgress(id, entry, guard)
	if err != nil {
		log.WithError(err).Warn("Failed to record progress")
		return nil, err
	}

	log.WithField("progress", entry.Progress).Info("Progress recorded")
	return &ProgressResult{
		Goal:  toResponse(updated),
		Entry: toEntryResponse(entry),
	}, nil
}

// roundProgress matches the two decimal places progress is stored with.
func roundProgress(p float64) float64 {
	return math.Round(p*100) / 100
}

func (s *goalService) History(ctx context.Context, actor user.Actor, id uuid.UUID) (*Ledger, error) {
	log := goalLogger(ctx, actor, id)

	g, err := s.repo.FindByID(id)
	if err != nil {
		log.WithError(err).Warn("Goal lookup failed")
		return nil, err
	}
	if !CanViewHistory(actor, g) {
		log.Warn("Progress history denied")
		return nil, apperror.Forbidden("you cannot view this goal's progress history")
	}

	entries, err := s.repo.ListProgress(id)
	if err != nil {
		log.WithError(err).Error("Failed to list progress entries")
		return nil, err
	}
	return NewLedger(entries), nil
}
