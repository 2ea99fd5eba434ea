package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fritter/fritter/internal/cache"
	"github.com/fritter/fritter/internal/feed"
)

// FeedAPI provides feed view methods
type FeedAPI struct {
	selector *feed.Selector
	cache    *cache.Cache
}

// NewFeedAPI creates a new feed API
func NewFeedAPI(selector *feed.Selector, redisCache *cache.Cache) *FeedAPI {
	return &FeedAPI{
		selector: selector,
		cache:    redisCache,
	}
}

// GetFeed handles fritter.get_feed
func (a *FeedAPI) GetFeed(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		UserID int64  `json:"user_id"`
		Tab    string `json:"tab"`
		Sort   string `json:"sort"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, feed.InvalidArgumentf("invalid parameters format")
	}
	if p.Sort == "" {
		p.Sort = feed.SortBest
	}

	// The discovery tab is randomized per request, so only deterministic
	// tabs are cacheable.
	cacheable := a.cache != nil && p.Tab != feed.TabDiscovery
	cacheKey := cache.HashKey("get_feed", fmt.Sprintf("%d", p.UserID), p.Tab, p.Sort)

	if cacheable {
		var cached []freetView
		if err := a.cache.GetJSON(cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	freets, err := a.selector.ChooseTab(c.Request.Context(), p.UserID, p.Tab, p.Sort)
	if err != nil {
		return nil, err
	}

	result := make([]freetView, len(freets))
	for i, f := range freets {
		result[i] = newFreetView(f)
	}

	if cacheable {
		// Cache failures are not visible to the caller
		_ = a.cache.SetJSON(cacheKey, result, a.cacheTTL(p.Sort))
	}

	return result, nil
}

// cacheTTL returns cache TTL based on sort type
func (a *FeedAPI) cacheTTL(sort string) time.Duration {
	switch sort {
	case feed.SortNew:
		return 3 * time.Second
	case feed.SortRising:
		return 30 * time.Second
	default:
		return 60 * time.Second
	}
}
