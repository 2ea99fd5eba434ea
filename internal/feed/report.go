package feed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fritter/fritter/internal/models"
)

var reportCategories = []int16{
	models.ReportSpam,
	models.ReportMisinformation,
	models.ReportOffensive,
}

// ReportLedger applies per-user reports to freet tallies and opens an audit
// once a freet's reports cross the controversy threshold. A user holds at
// most one open report per freet; reporting again withdraws it.
type ReportLedger struct {
	store  Stores
	clock  Clock
	policy Policy
	logger *zap.Logger
}

// NewReportLedger creates a new report ledger
func NewReportLedger(store Stores, clock Clock, policy Policy, logger *zap.Logger) *ReportLedger {
	return &ReportLedger{
		store:  store,
		clock:  clock,
		policy: policy,
		logger: logger,
	}
}

// Report records or withdraws a user's report against a freet and returns
// the updated freet. Reports are only accepted while no audit is open.
func (rl *ReportLedger) Report(ctx context.Context, freetID, userID int64, category int16) (*models.Freet, error) {
	if !validCategory(category) {
		return nil, InvalidArgumentf("unknown report category %d", category)
	}

	var reported *models.Freet
	err := rl.store.Transact(ctx, func(s Stores) error {
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

		if freet.AuditState != models.AuditNone {
			return Conflictf("freet %d is under audit, reports are closed", freetID)
		}

		existing, hasReport, err := s.GetReport(ctx, userID, freetID)
		if err != nil {
			return fmt.Errorf("failed to read report ledger: %w", err)
		}

		if hasReport {
			// Withdraw the original report. No trigger check on the way
			// down.
			freet.AddReportTally(existing, -1)
			if err := s.ClearReport(ctx, userID, freetID); err != nil {
				return fmt.Errorf("failed to clear report: %w", err)
			}
		} else {
			freet.AddReportTally(category, 1)
			if err := s.SetReport(ctx, userID, freetID, category); err != nil {
				return fmt.Errorf("failed to record report: %w", err)
			}
			rl.maybeTriggerAudit(freet)
		}

		if err := s.SaveFreet(ctx, freet); err != nil {
			return fmt.Errorf("failed to save freet: %w", err)
		}
		reported = freet
		return nil
	})
	if err != nil {
		return nil, err
	}

	rl.logger.Debug("Recorded report",
		zap.Int64("freet_id", freetID),
		zap.Int64("user_id", userID),
		zap.String("category", models.ReportCategoryName(category)),
		zap.String("audit_state", models.AuditStateName(reported.AuditState)))

	return reported, nil
}

// maybeTriggerAudit opens an audit when the freet is net-downvoted hard
// enough and its open reports outgrow a tenth of the downvotes.
func (rl *ReportLedger) maybeTriggerAudit(freet *models.Freet) {
	if freet.DownCount <= rl.policy.ReportDownvoteFloor {
		return
	}
	if float64(freet.TotalReports()) <= float64(freet.DownCount)/rl.policy.ReportRatioDivisor {
		return
	}

	top := topReportCategory(freet)
	freet.AuditState = models.AuditTesting
	freet.AuditCategory = top
	freet.AuditYes = 0
	freet.AuditNo = 0
	freet.AuditStartedAt.Time = rl.clock.Now()
	freet.AuditStartedAt.Valid = true
	freet.Cover = models.CoverForCategory(top)

	rl.logger.Info("Audit triggered",
		zap.Int64("freet_id", freet.ID),
		zap.String("category", models.ReportCategoryName(top)),
		zap.Int64("down_count", freet.DownCount),
		zap.Int64("total_reports", freet.TotalReports()))
}

// topReportCategory picks the category with the highest tally, ties broken
// in enumeration order spam, misinformation, offensive.
func topReportCategory(freet *models.Freet) int16 {
	top := reportCategories[0]
	for _, c := range reportCategories[1:] {
		if freet.ReportTally(c) > freet.ReportTally(top) {
			top = c
		}
	}
	return top
}

func validCategory(category int16) bool {
	for _, c := range reportCategories {
		if c == category {
			return true
		}
	}
	return false
}
