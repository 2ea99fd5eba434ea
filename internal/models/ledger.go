package models

// VoteRecord is a user's current vote on a freet. At most one row exists per
// (user, freet) pair; absence means no vote.
type VoteRecord struct {
	UserID  int64 `gorm:"primaryKey;column:user_id"`
	FreetID int64 `gorm:"primaryKey;column:freet_id"`
	Kind    int16 `gorm:"type:smallint;not null;column:kind"`
}

// TableName specifies the table name for VoteRecord
func (VoteRecord) TableName() string {
	return "freet_votes"
}

// ReportRecord is a user's open report against a freet. At most one row exists
// per (user, freet) pair; every row corresponds to a live tally increment on
// the freet.
type ReportRecord struct {
	UserID   int64 `gorm:"primaryKey;column:user_id"`
	FreetID  int64 `gorm:"primaryKey;column:freet_id"`
	Category int16 `gorm:"type:smallint;not null;column:category"`
}

// TableName specifies the table name for ReportRecord
func (ReportRecord) TableName() string {
	return "freet_reports"
}
