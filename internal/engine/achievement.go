package engine

import (
	"log/slog"

	"github.com/marlowe/tally/internal/model"
	"github.com/marlowe/tally/internal/store"
)

// AchievementEvaluator checks the catalog's predicates against a child's
// aggregate statistics and issues one-time unlock rewards.
type AchievementEvaluator struct {
	achievements *store.AchievementStore
	rewards      RewardSink
	logger       *slog.Logger
}

func NewAchievementEvaluator(achievements *store.AchievementStore, rewards RewardSink, logger *slog.Logger) *AchievementEvaluator {
	return &AchievementEvaluator{achievements: achievements, rewards: rewards, logger: logger}
}

// Evaluate unlocks every catalog achievement whose predicate the child's
// current stats satisfy and returns the newly unlocked ones. The unlock
// insert itself is the uniqueness guard, so redundant calls neither re-fire
// predicates nor re-issue rewards.
func (a *AchievementEvaluator) Evaluate(childID int64) ([]model.Achievement, error) {
	stats, err := a.achievements.ChildStats(childID)
	if err != nil {
		return nil, err
	}

	catalog, err := a.achievements.ListCatalog()
	if err != nil {
		return nil, err
	}

	var unlocked []model.Achievement
	for _, ach := range catalog {
		if stats.Stat(ach.Metric) < ach.Threshold {
			continue
		}
		won, err := a.achievements.Unlock(childID, ach.ID)
		if err != nil {
			return unlocked, err
		}
		if !won {
			continue
		}
		if err := a.rewards.Credit(childID, 0, ach.RewardGems, "achievement:"+ach.ID); err != nil {
			a.logger.Error("credit achievement reward", "achievement_id", ach.ID, "error", err)
		}
		unlocked = append(unlocked, ach)
	}
	return unlocked, nil
}
