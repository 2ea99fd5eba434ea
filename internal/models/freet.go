package models

import (
	"database/sql"
	"time"
)

// Vote kinds recorded in a user's vote ledger.
const (
	VoteUp   int16 = 1
	VoteDown int16 = 2
)

// Report categories.
const (
	ReportSpam           int16 = 1
	ReportMisinformation int16 = 2
	ReportOffensive      int16 = 3
)

// Audit states. A freet enters Testing when its report tally crosses the
// controversy threshold; Passed and Failed are terminal.
const (
	AuditNone    int16 = 0
	AuditTesting int16 = 1
	AuditPassed  int16 = 2
	AuditFailed  int16 = 3
)

// Cover values. A cover suppresses normal display without deleting the freet.
const (
	CoverNone           int16 = 0
	CoverControversial  int16 = 1
	CoverSpam           int16 = 2
	CoverMisinformation int16 = 3
	CoverOffensive      int16 = 4
	CoverTriggering     int16 = 5
)

// Freet represents a short user-authored post
type Freet struct {
	ID         int64     `gorm:"primaryKey;autoIncrement;column:id"`
	AuthorID   int64     `gorm:"not null;index;column:author_id"`
	Content    string    `gorm:"type:varchar(140);not null;column:content"`
	CreatedAt  time.Time `gorm:"not null;column:created_at"`
	ModifiedAt time.Time `gorm:"not null;index;column:modified_at"`

	// Vote tallies
	UpCount   int64 `gorm:"not null;default:0;column:up_count"`
	DownCount int64 `gorm:"not null;default:0;column:down_count"`
	Flagged   bool  `gorm:"not null;default:false;column:flagged"`
	Cover     int16 `gorm:"type:smallint;not null;default:0;column:cover"`

	// Report tallies, one column per category
	SpamReports           int64 `gorm:"not null;default:0;column:spam_reports"`
	MisinformationReports int64 `gorm:"not null;default:0;column:misinformation_reports"`
	OffensiveReports      int64 `gorm:"not null;default:0;column:offensive_reports"`

	// Audit state, valid only while AuditState != AuditNone
	AuditState     int16        `gorm:"type:smallint;not null;default:0;column:audit_state"`
	AuditCategory  int16        `gorm:"type:smallint;not null;default:0;column:audit_category"`
	AuditYes       int64        `gorm:"not null;default:0;column:audit_yes"`
	AuditNo        int64        `gorm:"not null;default:0;column:audit_no"`
	AuditStartedAt sql.NullTime `gorm:"column:audit_started_at"`
}

// TableName specifies the table name for Freet
func (Freet) TableName() string {
	return "freets"
}

// TotalReports sums the open report tallies across all categories.
func (f *Freet) TotalReports() int64 {
	return f.SpamReports + f.MisinformationReports + f.OffensiveReports
}

// ReportTally returns the tally for a single category.
func (f *Freet) ReportTally(category int16) int64 {
	switch category {
	case ReportSpam:
		return f.SpamReports
	case ReportMisinformation:
		return f.MisinformationReports
	case ReportOffensive:
		return f.OffensiveReports
	}
	return 0
}

// AddReportTally adjusts the tally for a single category by delta.
func (f *Freet) AddReportTally(category int16, delta int64) {
	switch category {
	case ReportSpam:
		f.SpamReports += delta
	case ReportMisinformation:
		f.MisinformationReports += delta
	case ReportOffensive:
		f.OffensiveReports += delta
	}
}

// VoteKindName converts a vote kind to its wire name
func VoteKindName(kind int16) string {
	switch kind {
	case VoteUp:
		return "upvote"
	case VoteDown:
		return "downvote"
	default:
		return "unknown"
	}
}

// ReportCategoryName converts a report category to its wire name
func ReportCategoryName(category int16) string {
	switch category {
	case ReportSpam:
		return "spam"
	case ReportMisinformation:
		return "misinformation"
	case ReportOffensive:
		return "offensive"
	default:
		return "unknown"
	}
}

// AuditStateName converts an audit state to its wire name
func AuditStateName(state int16) string {
	switch state {
	case AuditNone:
		return "none"
	case AuditTesting:
		return "testing"
	case AuditPassed:
		return "passed"
	case AuditFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CoverName converts a cover value to its wire name
func CoverName(cover int16) string {
	switch cover {
	case CoverNone:
		return "none"
	case CoverControversial:
		return "controversial"
	case CoverSpam:
		return "spam"
	case CoverMisinformation:
		return "misinformation"
	case CoverOffensive:
		return "offensive"
	case CoverTriggering:
		return "triggering"
	default:
		return "unknown"
	}
}

// CoverForCategory maps a report category to the cover shown while the
// category's audit is open.
func CoverForCategory(category int16) int16 {
	switch category {
	case ReportSpam:
		return CoverSpam
	case ReportMisinformation:
		return CoverMisinformation
	case ReportOffensive:
		return CoverOffensive
	}
	return CoverNone
}
