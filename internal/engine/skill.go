package engine

import (
	"github.com/marlowe/tally/internal/model"
	"github.com/marlowe/tally/internal/store"
)

// skillThresholds are the cumulative point totals for each level. A child at
// totalPoints holds one level per satisfied threshold, to a maximum of 10.
var skillThresholds = [...]int{0, 10, 25, 50, 100, 175, 275, 400, 550, 750}

// MaxSkillLevel is the level cap.
const MaxSkillLevel = len(skillThresholds)

// SkillLeveler accumulates per-category points and maps them onto the fixed
// leveling curve.
type SkillLeveler struct {
	skills *store.SkillStore
}

func NewSkillLeveler(skills *store.SkillStore) *SkillLeveler {
	return &SkillLeveler{skills: skills}
}

// AddPoints adds points to the child's category total. Negative amounts are
// ignored; totals never decrease.
func (s *SkillLeveler) AddPoints(childID int64, category string, points int) error {
	if points <= 0 {
		return nil
	}
	return s.skills.AddPoints(childID, category, points)
}

// LevelFor maps a point total onto the leveling curve.
func LevelFor(totalPoints int) int {
	level := 0
	for _, threshold := range skillThresholds {
		if totalPoints >= threshold {
			level++
		}
	}
	if level < 1 {
		level = 1
	}
	return level
}

// PercentToNext reports linear progress from the current level's threshold to
// the next one, clamped to [0, 100]. A child at the level cap is reported as
// 100.
func PercentToNext(totalPoints int) int {
	level := LevelFor(totalPoints)
	if level >= MaxSkillLevel {
		return 100
	}

	floor := skillThresholds[level-1]
	ceil := skillThresholds[level]
	pct := (totalPoints - floor) * 100 / (ceil - floor)
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct
}

// Progress returns the child's per-category progress with derived levels.
func (s *SkillLeveler) Progress(childID int64) ([]model.SkillProgress, error) {
	progress, err := s.skills.ListByChild(childID)
	if err != nil {
		return nil, err
	}
	for i := range progress {
		progress[i].Level = LevelFor(progress[i].TotalPoints)
		progress[i].PercentToNext = PercentToNext(progress[i].TotalPoints)
	}
	return progress, nil
}
