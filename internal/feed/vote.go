package feed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fritter/fritter/internal/models"
)

// VoteLedger applies per-user votes to freet tallies. Each user holds at most
// one vote per freet; repeating a vote withdraws it, and voting the other way
// flips it.
type VoteLedger struct {
	store  Stores
	logger *zap.Logger
}

// NewVoteLedger creates a new vote ledger
func NewVoteLedger(store Stores, logger *zap.Logger) *VoteLedger {
	return &VoteLedger{
		store:  store,
		logger: logger,
	}
}

// Vote records a user's vote on a freet and returns the updated freet. The
// tally mutation and the ledger write are applied atomically.
func (vl *VoteLedger) Vote(ctx context.Context, freetID, userID int64, kind int16) (*models.Freet, error) {
	if kind != models.VoteUp && kind != models.VoteDown {
		return nil, InvalidArgumentf("unknown vote kind %d", kind)
	}

	var voted *models.Freet
	err := vl.store.Transact(ctx, func(s Stores) error {
		freet, err := s.GetFreet(ctx, freetID)
		if err != nil {
			return fmt.Errorf("failed to get freet: %w", err)
		}
		if freet == nil {
			return NotFoundf("freet %d not found", freetID)
		}

		user, err := s.GetUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		if user == nil {
			return NotFoundf("user %d not found", userID)
		}

		existing, hasVote, err := s.GetVote(ctx, userID, freetID)
		if err != nil {
			return fmt.Errorf("failed to read vote ledger: %w", err)
		}

		switch {
		case !hasVote:
			// First vote
			addVote(freet, kind, 1)
			if err := s.SetVote(ctx, userID, freetID, kind); err != nil {
				return fmt.Errorf("failed to record vote: %w", err)
			}
		case existing == kind:
			// Same kind again toggles the vote off
			addVote(freet, kind, -1)
			if err := s.ClearVote(ctx, userID, freetID); err != nil {
				return fmt.Errorf("failed to clear vote: %w", err)
			}
		default:
			// Flip to the other kind
			addVote(freet, existing, -1)
			addVote(freet, kind, 1)
			if err := s.SetVote(ctx, userID, freetID, kind); err != nil {
				return fmt.Errorf("failed to record vote: %w", err)
			}
		}

		refreshVoteDerived(freet)

		if err := s.SaveFreet(ctx, freet); err != nil {
			return fmt.Errorf("failed to save freet: %w", err)
		}
		voted = freet
		return nil
	})
	if err != nil {
		return nil, err
	}

	vl.logger.Debug("Recorded vote",
		zap.Int64("freet_id", freetID),
		zap.Int64("user_id", userID),
		zap.String("kind", models.VoteKindName(kind)))

	return voted, nil
}

// addVote adjusts the tally for one vote kind by delta
func addVote(freet *models.Freet, kind int16, delta int64) {
	if kind == models.VoteUp {
		freet.UpCount += delta
	} else {
		freet.DownCount += delta
	}
}

// refreshVoteDerived recomputes the flag and cover from the vote tallies.
// The cover is left alone on a tie, while an audit is open, and after a
// failed offensive audit made the triggering cover permanent.
func refreshVoteDerived(freet *models.Freet) {
	freet.Flagged = freet.DownCount > freet.UpCount

	if freet.AuditState == models.AuditTesting || freet.Cover == models.CoverTriggering {
		return
	}
	switch {
	case freet.DownCount > freet.UpCount:
		freet.Cover = models.CoverControversial
	case freet.UpCount > freet.DownCount:
		freet.Cover = models.CoverNone
	}
}
