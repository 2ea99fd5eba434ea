package feed

import (
	"context"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/fritter/fritter/internal/models"
)

// FreetService handles freet lifecycle: creation, edits, deletion.
type FreetService struct {
	store     Stores
	clock     Clock
	policy    Policy
	sanitizer *bluemonday.Policy
	logger    *zap.Logger
}

// NewFreetService creates a new freet service
func NewFreetService(store Stores, clock Clock, policy Policy, logger *zap.Logger) *FreetService {
	return &FreetService{
		store:     store,
		clock:     clock,
		policy:    policy,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
	}
}

// CleanContent sanitizes and validates freet content, returning the text to
// store. Markup is stripped before the length check. The sanitizer entity-
// escapes plain text, so the output is unescaped to keep characters like &
// and < stored as written. The length bound counts runes, not bytes.
func (fs *FreetService) CleanContent(content string) (string, error) {
	cleaned := strings.TrimSpace(html.UnescapeString(fs.sanitizer.Sanitize(content)))
	if cleaned == "" {
		return "", InvalidArgumentf("freet content must not be empty")
	}
	if n := utf8.RuneCountInString(cleaned); n > fs.policy.MaxContentLen {
		return "", InvalidArgumentf("freet content must be at most %d characters, got %d",
			fs.policy.MaxContentLen, n)
	}
	return cleaned, nil
}

// Create validates content and stores a new freet for the author
func (fs *FreetService) Create(ctx context.Context, authorID int64, content string) (*models.Freet, error) {
	cleaned, err := fs.CleanContent(content)
	if err != nil {
		return nil, err
	}

	author, err := fs.store.GetUser(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get author: %w", err)
	}
	if author == nil {
		return nil, NotFoundf("user %d not found", authorID)
	}

	now := fs.clock.Now()
	freet := &models.Freet{
		AuthorID:   authorID,
		Content:    cleaned,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if err := fs.store.SaveFreet(ctx, freet); err != nil {
		return nil, fmt.Errorf("failed to save freet: %w", err)
	}

	fs.logger.Debug("Created freet",
		zap.Int64("freet_id", freet.ID),
		zap.Int64("author_id", authorID))

	return freet, nil
}

// Get retrieves a freet by ID
func (fs *FreetService) Get(ctx context.Context, id int64) (*models.Freet, error) {
	freet, err := fs.store.GetFreet(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get freet: %w", err)
	}
	if freet == nil {
		return nil, NotFoundf("freet %d not found", id)
	}
	return freet, nil
}

// Update replaces a freet's content and bumps its modification time
func (fs *FreetService) Update(ctx context.Context, id int64, content string) (*models.Freet, error) {
	cleaned, err := fs.CleanContent(content)
	if err != nil {
		return nil, err
	}

	var updated *models.Freet
	err = fs.store.Transact(ctx, func(s Stores) error {
		freet, err := s.GetFreet(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get freet: %w", err)
		}
		if freet == nil {
			return NotFoundf("freet %d not found", id)
		}

		freet.Content = cleaned
		freet.ModifiedAt = fs.clock.Now()
		if err := s.SaveFreet(ctx, freet); err != nil {
			return fmt.Errorf("failed to save freet: %w", err)
		}
		updated = freet
		return nil
	})
	if err != nil {
		return nil, err
	}

	fs.logger.Debug("Updated freet", zap.Int64("freet_id", id))
	return updated, nil
}

// Delete removes a freet
func (fs *FreetService) Delete(ctx context.Context, id int64) error {
	err := fs.store.Transact(ctx, func(s Stores) error {
		freet, err := s.GetFreet(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get freet: %w", err)
		}
		if freet == nil {
			return NotFoundf("freet %d not found", id)
		}
		return s.DeleteFreet(ctx, id)
	})
	if err != nil {
		return err
	}

	fs.logger.Debug("Deleted freet", zap.Int64("freet_id", id))
	return nil
}
