package feed

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fritter/fritter/internal/models"
)

// memStore is an in-memory Stores used by the core tests. Transact holds a
// single lock, which satisfies the per-freet serialization contract.
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	freets  map[int64]*models.Freet
	users   map[int64]*models.User
	votes   map[[2]int64]int16 // [userID, freetID] -> kind
	reports map[[2]int64]int16 // [userID, freetID] -> category
	follows map[int64][]int64  // follower -> followees
}

func newMemStore() *memStore {
	return &memStore{
		freets:  make(map[int64]*models.Freet),
		users:   make(map[int64]*models.User),
		votes:   make(map[[2]int64]int16),
		reports: make(map[[2]int64]int16),
		follows: make(map[int64][]int64),
	}
}

func (m *memStore) Transact(ctx context.Context, fn func(Stores) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m)
}

func (m *memStore) GetFreet(ctx context.Context, id int64) (*models.Freet, error) {
	freet, ok := m.freets[id]
	if !ok {
		return nil, nil
	}
	copied := *freet
	return &copied, nil
}

func (m *memStore) SaveFreet(ctx context.Context, freet *models.Freet) error {
	if freet.ID == 0 {
		m.nextID++
		freet.ID = m.nextID
	}
	copied := *freet
	m.freets[freet.ID] = &copied
	return nil
}

func (m *memStore) DeleteFreet(ctx context.Context, id int64) error {
	delete(m.freets, id)
	for key := range m.votes {
		if key[1] == id {
			delete(m.votes, key)
		}
	}
	for key := range m.reports {
		if key[1] == id {
			delete(m.reports, key)
		}
	}
	return nil
}

func (m *memStore) QueryFreets(ctx context.Context, filter FreetFilter) ([]*models.Freet, error) {
	var out []*models.Freet
	for id := int64(1); id <= m.nextID; id++ {
		freet, ok := m.freets[id]
		if !ok {
			continue
		}
		if len(filter.AuthorIn) > 0 && !containsID(filter.AuthorIn, freet.AuthorID) {
			continue
		}
		if len(filter.AuthorNotIn) > 0 && containsID(filter.AuthorNotIn, freet.AuthorID) {
			continue
		}
		if filter.ModifiedSince != nil && freet.ModifiedAt.Before(*filter.ModifiedSince) {
			continue
		}
		if filter.AuthorVerified != nil {
			author, ok := m.users[freet.AuthorID]
			if !ok || author.Verified != *filter.AuthorVerified {
				continue
			}
		}
		if filter.AuditState != nil && freet.AuditState != *filter.AuditState {
			continue
		}
		copied := *freet
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (m *memStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memStore) SaveUser(ctx context.Context, user *models.User) error {
	if user.ID == 0 {
		m.nextID++
		user.ID = m.nextID
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memStore) GetVote(ctx context.Context, userID, freetID int64) (int16, bool, error) {
	kind, ok := m.votes[[2]int64{userID, freetID}]
	return kind, ok, nil
}

func (m *memStore) SetVote(ctx context.Context, userID, freetID int64, kind int16) error {
	m.votes[[2]int64{userID, freetID}] = kind
	return nil
}

func (m *memStore) ClearVote(ctx context.Context, userID, freetID int64) error {
	delete(m.votes, [2]int64{userID, freetID})
	return nil
}

func (m *memStore) GetReport(ctx context.Context, userID, freetID int64) (int16, bool, error) {
	category, ok := m.reports[[2]int64{userID, freetID}]
	return category, ok, nil
}

func (m *memStore) SetReport(ctx context.Context, userID, freetID int64, category int16) error {
	m.reports[[2]int64{userID, freetID}] = category
	return nil
}

func (m *memStore) ClearReport(ctx context.Context, userID, freetID int64) error {
	delete(m.reports, [2]int64{userID, freetID})
	return nil
}

func (m *memStore) Follows(ctx context.Context, userID int64) ([]int64, error) {
	return m.follows[userID], nil
}

func (m *memStore) SetFollow(ctx context.Context, followerID, followeeID int64) error {
	if !containsID(m.follows[followerID], followeeID) {
		m.follows[followerID] = append(m.follows[followerID], followeeID)
	}
	return nil
}

func (m *memStore) ClearFollow(ctx context.Context, followerID, followeeID int64) error {
	out := m.follows[followerID][:0]
	for _, id := range m.follows[followerID] {
		if id != followeeID {
			out = append(out, id)
		}
	}
	m.follows[followerID] = out
	return nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// openReportCount counts the open report ledger entries for a freet
func (m *memStore) openReportCount(freetID int64) int64 {
	var n int64
	for key := range m.reports {
		if key[1] == freetID {
			n++
		}
	}
	return n
}

// fakeClock is a Clock with a settable time
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// fakeRand replays a fixed sequence of draws
type fakeRand struct {
	seq []int
	i   int
}

func (r *fakeRand) Intn(n int) int {
	if len(r.seq) == 0 {
		return 0
	}
	v := r.seq[r.i%len(r.seq)]
	r.i++
	return v % n
}

var testTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// seedUser adds a user to the store and returns its ID
func seedUser(m *memStore, username string, verified bool) int64 {
	user := &models.User{Username: username, CreatedAt: testTime, Verified: verified}
	_ = m.SaveUser(context.Background(), user)
	return user.ID
}

// seedFreet adds a freet to the store and returns it
func seedFreet(m *memStore, authorID int64, content string, at time.Time) *models.Freet {
	freet := &models.Freet{
		AuthorID:   authorID,
		Content:    content,
		CreatedAt:  at,
		ModifiedAt: at,
	}
	_ = m.SaveFreet(context.Background(), freet)
	return freet
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
