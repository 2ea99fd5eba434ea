package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fritter/fritter/internal/feed"
	"github.com/fritter/fritter/internal/models"
)

// UserAPI provides user lookup and follow methods
type UserAPI struct {
	store feed.Stores
}

// NewUserAPI creates a new user API
func NewUserAPI(store feed.Stores) *UserAPI {
	return &UserAPI{store: store}
}

// userView is the wire representation of a user
type userView struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	Verified  bool      `json:"verified"`
	Follows   []int64   `json:"follows"`
}

// GetUser handles fritter.get_user. Accepts either user_id or username.
func (a *UserAPI) GetUser(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		UserID   int64  `json:"user_id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, feed.InvalidArgumentf("invalid parameters format")
	}

	ctx := c.Request.Context()
	var user *models.User
	var err error
	switch {
	case p.UserID != 0:
		user, err = a.store.GetUser(ctx, p.UserID)
	case p.Username != "":
		user, err = a.store.GetUserByUsername(ctx, p.Username)
	default:
		return nil, feed.InvalidArgumentf("user_id or username is required")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, feed.NotFoundf("user not found")
	}

	follows, err := a.store.Follows(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get follows: %w", err)
	}

	return userView{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
		Verified:  user.Verified,
		Follows:   follows,
	}, nil
}

// Follow handles fritter.follow
func (a *UserAPI) Follow(c *gin.Context, params json.RawMessage) (interface{}, error) {
	return a.setFollow(c.Request.Context(), params, true)
}

// Unfollow handles fritter.unfollow
func (a *UserAPI) Unfollow(c *gin.Context, params json.RawMessage) (interface{}, error) {
	return a.setFollow(c.Request.Context(), params, false)
}

func (a *UserAPI) setFollow(ctx context.Context, params json.RawMessage, follow bool) (interface{}, error) {
	var p struct {
		FollowerID int64 `json:"follower_id"`
		FolloweeID int64 `json:"followee_id"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, feed.InvalidArgumentf("invalid parameters format")
	}
	if p.FollowerID == p.FolloweeID {
		return nil, feed.InvalidArgumentf("a user cannot follow themselves")
	}

	for _, id := range []int64{p.FollowerID, p.FolloweeID} {
		user, err := a.store.GetUser(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		if user == nil {
			return nil, feed.NotFoundf("user %d not found", id)
		}
	}

	var err error
	if follow {
		err = a.store.SetFollow(ctx, p.FollowerID, p.FolloweeID)
	} else {
		err = a.store.ClearFollow(ctx, p.FollowerID, p.FolloweeID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update follow: %w", err)
	}

	return gin.H{"following": follow}, nil
}
