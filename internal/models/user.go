package models

import (
	"time"
)

// User represents a Fritter account
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Username  string    `gorm:"type:varchar(32);not null;uniqueIndex:users_ux1;column:username"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
	Verified  bool      `gorm:"not null;default:false;column:verified"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// Follow represents a follower -> followee edge
type Follow struct {
	FollowerID int64     `gorm:"primaryKey;column:follower_id"`
	FolloweeID int64     `gorm:"primaryKey;column:followee_id"`
	CreatedAt  time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for Follow
func (Follow) TableName() string {
	return "follows"
}
