package engine

import (
	"time"

	"github.com/marlowe/tally/internal/model"
	"github.com/marlowe/tally/internal/schedule"
	"github.com/marlowe/tally/internal/store"
)

const dailyStreak = "daily"

// StreakTracker counts consecutive logical days with at least one qualifying
// completion.
type StreakTracker struct {
	streaks *store.StreakStore
}

func NewStreakTracker(streaks *store.StreakStore) *StreakTracker {
	return &StreakTracker{streaks: streaks}
}

// Record counts the completion's logical day toward the child's daily
// streak and returns the updated streak. Multiple completions on the same
// logical day count once; a completion the day after the last counted day
// extends the streak; a gap resets it to 1.
func (s *StreakTracker) Record(childID int64, completedAt time.Time, dayStart string) (*model.Streak, error) {
	today := schedule.LogicalDate(completedAt, dayStart)
	yesterday := today.AddDate(0, 0, -1)

	err := s.streaks.Bump(childID, dailyStreak, schedule.DateString(today), schedule.DateString(yesterday))
	if err != nil {
		return nil, err
	}
	return s.streaks.Get(childID, dailyStreak)
}

// Current returns the child's daily streak, or a zero streak if none exists.
func (s *StreakTracker) Current(childID int64) (*model.Streak, error) {
	streak, err := s.streaks.Get(childID, dailyStreak)
	if err != nil {
		return nil, err
	}
	if streak == nil {
		return &model.Streak{ChildID: childID, StreakType: dailyStreak}, nil
	}
	return streak, nil
}
