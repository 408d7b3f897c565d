package domain

import "time"

// Exercise categories that carry achievements.
const (
	CategoryMeditation        = "meditation"
	CategoryAnxietyManagement = "anxiety-management"
	CategorySleepHygiene      = "sleep-hygiene"
	CategoryStressRelief      = "stress-relief"
	CategorySelfCare          = "self-care"
)

// Achievement is an award earned once per user and title.
type Achievement struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	DurationMinutes int       `json:"duration"`
	ExerciseID      string    `json:"exerciseId"`
	CreatedAt       time.Time `json:"timestamp"`
}

// Totals are a user's completed exercise count and minutes in one category.
type Totals struct {
	Count   int
	Minutes int
}

// Add returns t plus one exercise of the given length.
func (t Totals) Add(minutes int) Totals {
	return Totals{Count: t.Count + 1, Minutes: t.Minutes + minutes}
}

type ruleKind int

const (
	ruleFirst ruleKind = iota
	ruleCount
	ruleMinutes
)

// Rule awards Title when a completion moves the totals across its threshold.
type Rule struct {
	Category    string
	Title       string
	Description string
	kind        ruleKind
	threshold   int
}

func (r Rule) crossed(before, after Totals) bool {
	switch r.kind {
	case ruleFirst:
		return before.Count == 0 && after.Count >= 1
	case ruleCount:
		return before.Count < r.threshold && after.Count >= r.threshold
	case ruleMinutes:
		return before.Minutes < r.threshold && after.Minutes >= r.threshold
	}
	return false
}

// Rules lists every achievement.
var Rules = []Rule{
	{CategoryMeditation, "Meditation Beginner", "Completed your first meditation session", ruleFirst, 1},
	{CategoryMeditation, "Meditation Explorer", "Completed 1 hour of meditation", ruleMinutes, 60},
	{CategoryMeditation, "Meditation Master", "Completed 5 hours of meditation", ruleMinutes, 300},
	{CategoryAnxietyManagement, "Anxiety Fighter", "Started your anxiety management journey", ruleFirst, 1},
	{CategoryAnxietyManagement, "Anxiety Warrior", "Completed 5 anxiety management exercises", ruleCount, 5},
	{CategorySleepHygiene, "Sleep Seeker", "Started improving your sleep habits", ruleFirst, 1},
	{CategorySleepHygiene, "Sleep Master", "Completed 2 hours of sleep hygiene exercises", ruleMinutes, 120},
	{CategoryStressRelief, "Stress Reliever", "Started managing your stress", ruleFirst, 1},
	{CategoryStressRelief, "Stress Management Expert", "Completed 10 stress relief exercises", ruleCount, 10},
	{CategorySelfCare, "Self-Care Starter", "Started your self-care journey", ruleFirst, 1},
	{CategorySelfCare, "Self-Care Champion", "Dedicated 3 hours to self-care", ruleMinutes, 180},
}

// Earned returns the rules in category whose thresholds lie between before
// (exclusive) and after (inclusive).
func Earned(category string, before, after Totals) []Rule {
	var out []Rule
	for _, r := range Rules {
		if r.Category == category && r.crossed(before, after) {
			out = append(out, r)
		}
	}
	return out
}
