package feed

import (
	"context"
	"math/rand"
	"time"

	"github.com/fritter/fritter/internal/models"
)

// FreetFilter selects freets for feed queries. Zero-valued fields are
// ignored.
type FreetFilter struct {
	AuthorIn       []int64
	AuthorNotIn    []int64
	ModifiedSince  *time.Time
	AuthorVerified *bool
	AuditState     *int16
}

// FreetStore provides freet persistence
type FreetStore interface {
	// GetFreet retrieves a freet by ID, nil if missing
	GetFreet(ctx context.Context, id int64) (*models.Freet, error)
	// SaveFreet persists a freet, assigning its ID on first save
	SaveFreet(ctx context.Context, freet *models.Freet) error
	// DeleteFreet removes a freet and its ledger rows
	DeleteFreet(ctx context.Context, id int64) error
	// QueryFreets returns freets matching the filter, unordered
	QueryFreets(ctx context.Context, filter FreetFilter) ([]*models.Freet, error)
}

// UserStore provides user and per-user ledger persistence
type UserStore interface {
	// GetUser retrieves a user by ID, nil if missing
	GetUser(ctx context.Context, id int64) (*models.User, error)
	// GetUserByUsername retrieves a user by username, nil if missing
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// SaveUser persists a user
	SaveUser(ctx context.Context, user *models.User) error

	// GetVote returns the user's current vote on a freet; ok is false when
	// the user has no vote recorded.
	GetVote(ctx context.Context, userID, freetID int64) (kind int16, ok bool, err error)
	// SetVote records the user's vote on a freet, replacing any prior one
	SetVote(ctx context.Context, userID, freetID int64, kind int16) error
	// ClearVote removes the user's vote on a freet
	ClearVote(ctx context.Context, userID, freetID int64) error

	// GetReport returns the user's open report against a freet; ok is false
	// when the user has no open report.
	GetReport(ctx context.Context, userID, freetID int64) (category int16, ok bool, err error)
	// SetReport records the user's open report against a freet
	SetReport(ctx context.Context, userID, freetID int64, category int16) error
	// ClearReport removes the user's open report against a freet
	ClearReport(ctx context.Context, userID, freetID int64) error

	// Follows returns the IDs of users the given user follows
	Follows(ctx context.Context, userID int64) ([]int64, error)
	// SetFollow records a follower -> followee edge
	SetFollow(ctx context.Context, followerID, followeeID int64) error
	// ClearFollow removes a follower -> followee edge
	ClearFollow(ctx context.Context, followerID, followeeID int64) error
}

// Stores bundles freet and user persistence with a unit-of-work. Each logical
// operation (vote, report, audit vote) runs inside Transact so its freet and
// ledger writes land atomically; no partial mutation is visible outside the
// closure.
type Stores interface {
	FreetStore
	UserStore

	// Transact runs fn against a transactional view of both stores. The
	// implementation must serialize concurrent transactions touching the
	// same freet.
	Transact(ctx context.Context, fn func(s Stores) error) error
}

// Clock supplies the current time. Injectable for deterministic audit-window
// testing.
type Clock interface {
	Now() time.Time
}

// SystemClock is a Clock backed by time.Now
type SystemClock struct{}

// Now returns the current wall-clock time in UTC
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Rand supplies uniform random integers. Injectable for deterministic
// discovery-feed testing.
type Rand interface {
	Intn(n int) int
}

// NewRand returns a Rand seeded from the given source
func NewRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}
