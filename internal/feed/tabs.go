package feed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fritter/fritter/internal/models"
)

// Feed tabs.
const (
	TabHome      = "home"
	TabVerified  = "verified"
	TabDiscovery = "discovery"
)

// Selector builds named feed views by composing audience filters with the
// ranker. All reads, no side effects.
type Selector struct {
	store  Stores
	clock  Clock
	rand   Rand
	policy Policy
	logger *zap.Logger
}

// NewSelector creates a new feed selector
func NewSelector(store Stores, clock Clock, rnd Rand, policy Policy, logger *zap.Logger) *Selector {
	return &Selector{
		store:  store,
		clock:  clock,
		rand:   rnd,
		policy: policy,
		logger: logger,
	}
}

// ChooseTab builds the named feed view for a user, ranked by the given sort
// method. Views only consider freets modified inside the feed window.
func (sel *Selector) ChooseTab(ctx context.Context, userID int64, tab, method string) ([]*models.Freet, error) {
	if !ValidSort(method) {
		return nil, InvalidArgumentf("unknown sort type %q", method)
	}

	user, err := sel.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, NotFoundf("user %d not found", userID)
	}

	now := sel.clock.Now()
	since := now.Add(-sel.policy.FeedWindow)

	var freets []*models.Freet
	switch tab {
	case TabHome:
		freets, err = sel.homeFreets(ctx, userID, since)
	case TabVerified:
		verified := true
		freets, err = sel.store.QueryFreets(ctx, FreetFilter{
			ModifiedSince:  &since,
			AuthorVerified: &verified,
		})
	case TabDiscovery:
		freets, err = sel.discoveryFreets(ctx, userID, since)
	default:
		return nil, InvalidArgumentf("unknown tab type %q", tab)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build %s tab: %w", tab, err)
	}

	Rank(freets, method, now)

	sel.logger.Debug("Built feed tab",
		zap.Int64("user_id", userID),
		zap.String("tab", tab),
		zap.String("sort", method),
		zap.Int("freets", len(freets)))

	return freets, nil
}

// homeFreets returns recent freets from the user's followed authors
func (sel *Selector) homeFreets(ctx context.Context, userID int64, since time.Time) ([]*models.Freet, error) {
	follows, err := sel.store.Follows(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get follows: %w", err)
	}
	if len(follows) == 0 {
		return nil, nil
	}
	return sel.store.QueryFreets(ctx, FreetFilter{
		AuthorIn:      follows,
		ModifiedSince: &since,
	})
}

// discoveryFreets interleaves recent freets from followed and non-followed
// authors. Every DiscoveryStride-th slot is drawn uniformly from the
// non-followed pool, the rest from the followed pool; both draws are with
// replacement, so a freet can repeat or be skipped. An empty pool falls back
// to the other one.
func (sel *Selector) discoveryFreets(ctx context.Context, userID int64, since time.Time) ([]*models.Freet, error) {
	follows, err := sel.store.Follows(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get follows: %w", err)
	}

	var followed []*models.Freet
	if len(follows) > 0 {
		followed, err = sel.store.QueryFreets(ctx, FreetFilter{
			AuthorIn:      follows,
			ModifiedSince: &since,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query followed pool: %w", err)
		}
	}

	others, err := sel.store.QueryFreets(ctx, FreetFilter{
		AuthorNotIn:   append(follows, userID),
		ModifiedSince: &since,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query non-followed pool: %w", err)
	}

	total := len(followed) + len(others)
	mixed := make([]*models.Freet, 0, total)
	for i := 0; i < total; i++ {
		pool := followed
		if i%sel.policy.DiscoveryStride == 0 {
			pool = others
		}
		if len(pool) == 0 {
			// Fall back to the other pool when this one is empty
			if len(others) > 0 {
				pool = others
			} else {
				pool = followed
			}
		}
		if len(pool) == 0 {
			break
		}
		mixed = append(mixed, pool[sel.rand.Intn(len(pool))])
	}
	return mixed, nil
}
