package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fritter/fritter/internal/feed"
	"github.com/fritter/fritter/internal/models"
)

// Store implements feed.Stores on top of GORM. Transact wraps a database
// transaction; freet reads inside a transaction take a row lock so
// concurrent vote/report operations on the same freet serialize.
type Store struct {
	db   *gorm.DB
	inTx bool
}

// NewStore creates a new store
func NewStore(database *DB) *Store {
	return &Store{db: database.DB}
}

// Transact runs fn inside a database transaction
func (s *Store) Transact(ctx context.Context, fn func(feed.Stores) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, inTx: true})
	})
}

// GetFreet retrieves a freet by ID, nil if missing
func (s *Store) GetFreet(ctx context.Context, id int64) (*models.Freet, error) {
	q := s.db.WithContext(ctx)
	if s.inTx {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var freet models.Freet
	if err := q.First(&freet, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &freet, nil
}

// SaveFreet persists a freet
func (s *Store) SaveFreet(ctx context.Context, freet *models.Freet) error {
	return s.db.WithContext(ctx).Save(freet).Error
}

// DeleteFreet removes a freet and its ledger rows
func (s *Store) DeleteFreet(ctx context.Context, id int64) error {
	if err := s.db.WithContext(ctx).Where("freet_id = ?", id).
		Delete(&models.VoteRecord{}).Error; err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where("freet_id = ?", id).
		Delete(&models.ReportRecord{}).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&models.Freet{}, id).Error
}

// QueryFreets returns freets matching the filter
func (s *Store) QueryFreets(ctx context.Context, filter feed.FreetFilter) ([]*models.Freet, error) {
	q := s.db.WithContext(ctx).Model(&models.Freet{})

	if len(filter.AuthorIn) > 0 {
		q = q.Where("freets.author_id IN ?", filter.AuthorIn)
	}
	if len(filter.AuthorNotIn) > 0 {
		q = q.Where("freets.author_id NOT IN ?", filter.AuthorNotIn)
	}
	if filter.ModifiedSince != nil {
		q = q.Where("freets.modified_at >= ?", *filter.ModifiedSince)
	}
	if filter.AuthorVerified != nil {
		q = q.Joins("INNER JOIN users ON users.id = freets.author_id").
			Where("users.verified = ?", *filter.AuthorVerified)
	}
	if filter.AuditState != nil {
		q = q.Where("freets.audit_state = ?", *filter.AuditState)
	}

	var freets []*models.Freet
	if err := q.Find(&freets).Error; err != nil {
		return nil, err
	}
	return freets, nil
}

// GetUser retrieves a user by ID, nil if missing
func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username, nil if missing
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// SaveUser persists a user
func (s *Store) SaveUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Save(user).Error
}

// GetVote returns the user's current vote on a freet
func (s *Store) GetVote(ctx context.Context, userID, freetID int64) (int16, bool, error) {
	var rec models.VoteRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND freet_id = ?", userID, freetID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return rec.Kind, true, nil
}

// SetVote records the user's vote on a freet, replacing any prior one
func (s *Store) SetVote(ctx context.Context, userID, freetID int64, kind int16) error {
	rec := models.VoteRecord{UserID: userID, FreetID: freetID, Kind: kind}
	return s.db.WithContext(ctx).
		Where("user_id = ? AND freet_id = ?", userID, freetID).
		Assign(models.VoteRecord{Kind: kind}).
		FirstOrCreate(&rec).Error
}

// ClearVote removes the user's vote on a freet
func (s *Store) ClearVote(ctx context.Context, userID, freetID int64) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND freet_id = ?", userID, freetID).
		Delete(&models.VoteRecord{}).Error
}

// GetReport returns the user's open report against a freet
func (s *Store) GetReport(ctx context.Context, userID, freetID int64) (int16, bool, error) {
	var rec models.ReportRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND freet_id = ?", userID, freetID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return rec.Category, true, nil
}

// SetReport records the user's open report against a freet
func (s *Store) SetReport(ctx context.Context, userID, freetID int64, category int16) error {
	rec := models.ReportRecord{UserID: userID, FreetID: freetID, Category: category}
	return s.db.WithContext(ctx).
		Where("user_id = ? AND freet_id = ?", userID, freetID).
		Assign(models.ReportRecord{Category: category}).
		FirstOrCreate(&rec).Error
}

// ClearReport removes the user's open report against a freet
func (s *Store) ClearReport(ctx context.Context, userID, freetID int64) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND freet_id = ?", userID, freetID).
		Delete(&models.ReportRecord{}).Error
}

// Follows returns the IDs of users the given user follows
func (s *Store) Follows(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("followee_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// SetFollow records a follower -> followee edge
func (s *Store) SetFollow(ctx context.Context, followerID, followeeID int64) error {
	rec := models.Follow{FollowerID: followerID, FolloweeID: followeeID, CreatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		FirstOrCreate(&rec).Error
}

// ClearFollow removes a follower -> followee edge
func (s *Store) ClearFollow(ctx context.Context, followerID, followeeID int64) error {
	return s.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{}).Error
}
