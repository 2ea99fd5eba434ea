package feed

import (
	"sort"
	"time"

	"github.com/fritter/fritter/internal/models"
)

// Sort methods for feed views.
const (
	SortBest   = "best"
	SortHot    = "hot"
	SortRising = "rising"
	SortNew    = "new"
)

// ValidSort reports whether method names a known sort type
func ValidSort(method string) bool {
	switch method {
	case SortBest, SortHot, SortRising, SortNew:
		return true
	}
	return false
}

// Score computes the ranking key for a freet under the given method. It is a
// pure function of the freet's tallies and timestamps; now is only consulted
// by rising.
func Score(freet *models.Freet, method string, now time.Time) float64 {
	up := float64(freet.UpCount)
	down := float64(freet.DownCount)

	switch method {
	case SortBest:
		return up - down
	case SortHot:
		return up + down/2
	case SortRising:
		// Doubled net score for brand-new freets, decaying linearly to the
		// best score over one day.
		ageDays := now.Sub(freet.CreatedAt).Hours() / 24
		boost := 1 - ageDays
		if boost < 0 {
			boost = 0
		}
		return 2 * (0.5 + boost) * (up - down)
	default:
		return 0
	}
}

// Rank orders freets descending by the given method's score, in place. The
// sort is stable: ties keep their original relative order. The new method
// orders by modification time, most recent first. Rank never mutates vote or
// report state.
func Rank(freets []*models.Freet, method string, now time.Time) {
	if method == SortNew {
		sort.SliceStable(freets, func(i, j int) bool {
			return freets[i].ModifiedAt.After(freets[j].ModifiedAt)
		})
		return
	}

	sort.SliceStable(freets, func(i, j int) bool {
		return Score(freets[i], method, now) > Score(freets[j], method, now)
	})
}
