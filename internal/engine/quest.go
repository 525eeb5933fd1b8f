package engine

import (
	"log/slog"
	"time"

	"github.com/marlowe/tally/internal/model"
	"github.com/marlowe/tally/internal/schedule"
	"github.com/marlowe/tally/internal/store"
)

// Event types that advance quest progress.
const (
	EventTaskApproved = "task_approved"
	EventDailyCheck   = "daily_check"
)

// QuestEngine generates, expires, and advances periodic quests. Generation
// idempotence and exactly-once rewards are enforced by the quest store's
// conditional writes; the engine only decides periods and deltas.
type QuestEngine struct {
	quests  *store.QuestStore
	rewards RewardSink
	logger  *slog.Logger
}

func NewQuestEngine(quests *store.QuestStore, rewards RewardSink, logger *slog.Logger) *QuestEngine {
	return &QuestEngine{quests: quests, rewards: rewards, logger: logger}
}

// GenerateDaily instantiates every daily template for the child on the given
// logical date. Calling it twice creates nothing new.
func (q *QuestEngine) GenerateDaily(childID int64, today time.Time) (int, error) {
	date := schedule.DateString(today)
	return q.generate(childID, model.QuestDaily, date, date)
}

// GenerateWeekly instantiates every weekly template for the ISO week starting
// at weekStart, ending six days later.
func (q *QuestEngine) GenerateWeekly(childID int64, weekStart time.Time) (int, error) {
	start := schedule.DateString(weekStart)
	end := schedule.DateString(weekStart.AddDate(0, 0, 6))
	return q.generate(childID, model.QuestWeekly, start, end)
}

func (q *QuestEngine) generate(childID int64, questType, startDate, endDate string) (int, error) {
	templates, err := q.quests.ListTemplates(questType)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, t := range templates {
		inserted, err := q.quests.InsertIfAbsent(childID, t, startDate, endDate)
		if err != nil {
			return created, err
		}
		if inserted {
			created++
		}
	}
	return created, nil
}

// ExpireOld removes incomplete quests whose period ended before today. No
// reward is ever issued for an expired quest.
func (q *QuestEngine) ExpireOld(childID int64, today time.Time) (int64, error) {
	return q.quests.DeleteExpired(childID, schedule.DateString(today))
}

// Advance applies one event to every active matching quest and claims any
// quest that reached its target. Task approvals count one task and the stars
// it earned; the daily check counts one check-in. The claim is a conditional
// flip of is_completed, so a quest's reward is credited exactly once no
// matter how many events race past its target.
func (q *QuestEngine) Advance(childID int64, eventType string, starsEarned int, today string) ([]model.Quest, error) {
	switch eventType {
	case EventTaskApproved:
		if err := q.quests.AddProgress(childID, model.MetricTaskCount, 1, today); err != nil {
			return nil, err
		}
		if err := q.quests.AddProgress(childID, model.MetricStarCount, starsEarned, today); err != nil {
			return nil, err
		}
	case EventDailyCheck:
		if err := q.quests.AddProgress(childID, model.MetricCheckIn, 1, today); err != nil {
			return nil, err
		}
	default:
		return nil, nil
	}

	claimable, err := q.quests.ListClaimable(childID)
	if err != nil {
		return nil, err
	}

	var completed []model.Quest
	for _, quest := range claimable {
		won, err := q.quests.ClaimCompletion(quest.ID)
		if err != nil {
			return completed, err
		}
		if !won {
			continue
		}
		if err := q.rewards.Credit(childID, quest.RewardStars, quest.RewardGems, "quest:"+quest.TemplateKey); err != nil {
			// The quest stays completed; the missing credit needs operator
			// attention rather than a retry that could double-pay.
			q.logger.Error("credit quest reward", "quest_id", quest.ID, "error", err)
		}
		quest.IsCompleted = true
		quest.CurrentValue = quest.TargetValue
		completed = append(completed, quest)
	}
	return completed, nil
}
