package feed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fritter/fritter/internal/models"
)

// AuditProcess runs the community audit state machine: none -> testing ->
// passed|failed. Resolution is lazy: it is evaluated when a vote arrives
// after the audit window has elapsed, never on a wall-clock trigger inside
// the request path. ResolveExpired exists for the optional reaper binary.
type AuditProcess struct {
	store  Stores
	clock  Clock
	policy Policy
	logger *zap.Logger
}

// NewAuditProcess creates a new audit process
func NewAuditProcess(store Stores, clock Clock, policy Policy, logger *zap.Logger) *AuditProcess {
	return &AuditProcess{
		store:  store,
		clock:  clock,
		policy: policy,
		logger: logger,
	}
}

// Vote records a community audit vote on a freet. If the audit window has
// elapsed the audit is resolved in the same operation. The returned freet is
// nil when resolution deleted it.
func (ap *AuditProcess) Vote(ctx context.Context, freetID int64, confirm bool) (*models.Freet, error) {
	var audited *models.Freet
	err := ap.store.Transact(ctx, func(s Stores) error {
		freet, err := s.GetFreet(ctx, freetID)
		if err != nil {
			return fmt.Errorf("failed to get freet: %w", err)
		}
		if freet == nil {
			return NotFoundf("freet %d not found", freetID)
		}

		if freet.AuditState != models.AuditTesting {
			return Conflictf("freet %d is not under audit (state %s)",
				freetID, models.AuditStateName(freet.AuditState))
		}

		if confirm {
			freet.AuditYes++
		} else {
			freet.AuditNo++
		}

		elapsed := ap.clock.Now().Sub(freet.AuditStartedAt.Time)
		if elapsed >= ap.policy.AuditWindow {
			deleted, err := ap.resolve(ctx, s, freet)
			if err != nil {
				return err
			}
			if deleted {
				audited = nil
				return nil
			}
		} else if err := s.SaveFreet(ctx, freet); err != nil {
			return fmt.Errorf("failed to save freet: %w", err)
		}

		audited = freet
		return nil
	})
	if err != nil {
		return nil, err
	}

	ap.logger.Debug("Recorded audit vote",
		zap.Int64("freet_id", freetID),
		zap.Bool("confirm", confirm))

	return audited, nil
}

// ResolveExpired resolves every open audit whose window has elapsed. It is
// the reaper's entry point and never runs in the request path. Returns the
// number of audits resolved.
func (ap *AuditProcess) ResolveExpired(ctx context.Context) (int, error) {
	resolved := 0
	err := ap.store.Transact(ctx, func(s Stores) error {
		testing := models.AuditTesting
		freets, err := s.QueryFreets(ctx, FreetFilter{AuditState: &testing})
		if err != nil {
			return fmt.Errorf("failed to query freets: %w", err)
		}

		now := ap.clock.Now()
		for _, candidate := range freets {
			// The scan reads candidates unlocked. Re-fetch each one under
			// the row lock and re-check its state: a concurrent audit vote
			// may already have resolved or deleted it.
			freet, err := s.GetFreet(ctx, candidate.ID)
			if err != nil {
				return fmt.Errorf("failed to get freet: %w", err)
			}
			if freet == nil || freet.AuditState != models.AuditTesting {
				continue
			}
			if now.Sub(freet.AuditStartedAt.Time) < ap.policy.AuditWindow {
				continue
			}
			if _, err := ap.resolve(ctx, s, freet); err != nil {
				return err
			}
			resolved++
		}
		return nil
	})
	if err != nil {
		return resolved, err
	}
	return resolved, nil
}

// resolve settles an open audit from its tally and applies the consequence.
// Returns true when the freet was deleted.
func (ap *AuditProcess) resolve(ctx context.Context, s Stores, freet *models.Freet) (bool, error) {
	// A unanimous confirm vote must still fail the audit; clamp no to 1 so
	// the ratio is defined.
	no := freet.AuditNo
	if no < 1 {
		no = 1
	}
	ratio := float64(freet.AuditYes) / float64(no)

	if ratio >= ap.policy.AuditFailRatio {
		return ap.fail(ctx, s, freet)
	}
	return false, ap.pass(ctx, s, freet)
}

// fail applies the failed-audit consequence: spam and misinformation freets
// are deleted outright, offensive freets keep a permanent triggering cover.
func (ap *AuditProcess) fail(ctx context.Context, s Stores, freet *models.Freet) (bool, error) {
	freet.AuditState = models.AuditFailed

	switch freet.AuditCategory {
	case models.ReportSpam, models.ReportMisinformation:
		if err := s.DeleteFreet(ctx, freet.ID); err != nil {
			return false, fmt.Errorf("failed to delete freet: %w", err)
		}
		ap.logger.Info("Audit failed, freet deleted",
			zap.Int64("freet_id", freet.ID),
			zap.String("category", models.ReportCategoryName(freet.AuditCategory)))
		return true, nil
	case models.ReportOffensive:
		freet.Cover = models.CoverTriggering
		if err := s.SaveFreet(ctx, freet); err != nil {
			return false, fmt.Errorf("failed to save freet: %w", err)
		}
		ap.logger.Info("Audit failed, freet covered",
			zap.Int64("freet_id", freet.ID))
		return false, nil
	default:
		return false, fmt.Errorf("freet %d has invalid audit category %d", freet.ID, freet.AuditCategory)
	}
}

// pass settles the audit with no consequence; the flag and cover revert to
// their vote-derived values.
func (ap *AuditProcess) pass(ctx context.Context, s Stores, freet *models.Freet) error {
	freet.AuditState = models.AuditPassed
	freet.Flagged = freet.DownCount > freet.UpCount
	// The report-category cover from the trigger is stale once the audit
	// passes; revert to the vote-derived cover.
	if freet.DownCount > freet.UpCount {
		freet.Cover = models.CoverControversial
	} else {
		freet.Cover = models.CoverNone
	}
	if err := s.SaveFreet(ctx, freet); err != nil {
		return fmt.Errorf("failed to save freet: %w", err)
	}

	ap.logger.Info("Audit passed",
		zap.Int64("freet_id", freet.ID),
		zap.Int64("yes", freet.AuditYes),
		zap.Int64("no", freet.AuditNo))

	return nil
}
