package domain

import (
	"sort"
	"time"
)

// MoodImprovement summarizes entries that recorded mood before and after.
type MoodImprovement struct {
	Average           float64 `json:"average"`
	TotalImprovements int     `json:"total_improvements"`
}

// Engagement summarizes rated entries.
type Engagement struct {
	Average       float64 `json:"average"`
	TotalSessions int     `json:"total_sessions"`
}

// WeekSummary aggregates one week starting Monday 00:00 UTC.
type WeekSummary struct {
	WeekStart              time.Time `json:"week_start"`
	TotalSessions          int       `json:"total_sessions"`
	TotalMinutes           int       `json:"total_minutes"`
	AverageEngagement      float64   `json:"average_engagement"`
	MoodImprovements       int       `json:"mood_improvements"`
	AverageMoodImprovement float64   `json:"average_mood_improvement"`
}

// Stats is the full progress report for one user.
type Stats struct {
	TotalSessions   int             `json:"total_sessions"`
	TotalMinutes    int             `json:"total_minutes"`
	CategoriesUsed  int             `json:"categories_used"`
	LatestSession   *Entry          `json:"latest_session"`
	MoodImprovement MoodImprovement `json:"mood_improvement"`
	Engagement      Engagement      `json:"engagement"`
	WeeklyProgress  []WeekSummary   `json:"weekly_progress"`
}

// CategoryStats is the per-category report.
type CategoryStats struct {
	TotalSessions int        `json:"total_sessions"`
	TotalMinutes  int        `json:"total_minutes"`
	LastSession   *time.Time `json:"last_session"`
}

// ChildSummary is what a parent sees of a child's progress.
type ChildSummary struct {
	TotalSessions  int        `json:"totalSessions"`
	TotalMinutes   int        `json:"totalMinutes"`
	CategoriesUsed int        `json:"categoriesUsed"`
	LastSession    *time.Time `json:"lastSession"`
}

// ChildCategorySummary is a parent's per-category view.
type ChildCategorySummary struct {
	TotalSessions int        `json:"totalSessions"`
	TotalMinutes  int        `json:"totalMinutes"`
	LastSession   *time.Time `json:"lastSession"`
}

// WeekStart returns Monday 00:00 UTC of t's week.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, time.UTC)
}

type accumulator struct {
	sessions, minutes        int
	rated, engagementSum     int
	improvements, improveSum int
	latest                   *Entry
}

func (a *accumulator) add(e *Entry) {
	a.sessions++
	a.minutes += e.DurationMinutes
	if e.Rated() {
		a.rated++
		a.engagementSum += e.EngagementLevel
	}
	if d, ok := e.MoodDelta(); ok {
		a.improvements++
		a.improveSum += d
	}
	if a.latest == nil || e.CreatedAt.After(a.latest.CreatedAt) {
		a.latest = e
	}
}

func (a *accumulator) avgEngagement() float64 { return mean(a.engagementSum, a.rated) }

func (a *accumulator) avgImprovement() float64 { return mean(a.improveSum, a.improvements) }

func (a *accumulator) lastSession() *time.Time {
	if a.latest == nil {
		return nil
	}
	t := a.latest.CreatedAt
	return &t
}

func mean(sum, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// ComputeStats builds the report for entries. Entries may be in any order.
func ComputeStats(entries []*Entry) Stats {
	var all accumulator
	categories := make(map[string]struct{})
	weeks := make(map[time.Time]*accumulator)
	for _, e := range entries {
		all.add(e)
		categories[e.Category] = struct{}{}
		ws := WeekStart(e.CreatedAt)
		w, ok := weeks[ws]
		if !ok {
			w = &accumulator{}
			weeks[ws] = w
		}
		w.add(e)
	}

	weekly := make([]WeekSummary, 0, len(weeks))
	for ws, w := range weeks {
		weekly = append(weekly, WeekSummary{
			WeekStart:              ws,
			TotalSessions:          w.sessions,
			TotalMinutes:           w.minutes,
			AverageEngagement:      w.avgEngagement(),
			MoodImprovements:       w.improvements,
			AverageMoodImprovement: w.avgImprovement(),
		})
	}
	sort.Slice(weekly, func(i, j int) bool { return weekly[i].WeekStart.Before(weekly[j].WeekStart) })

	return Stats{
		TotalSessions:   all.sessions,
		TotalMinutes:    all.minutes,
		CategoriesUsed:  len(categories),
		LatestSession:   all.latest,
		MoodImprovement: MoodImprovement{Average: all.avgImprovement(), TotalImprovements: all.improvements},
		Engagement:      Engagement{Average: all.avgEngagement(), TotalSessions: all.rated},
		WeeklyProgress:  weekly,
	}
}

// ComputeCategoryStats totals entries that are already filtered to one category.
func ComputeCategoryStats(entries []*Entry) CategoryStats {
	var a accumulator
	for _, e := range entries {
		a.add(e)
	}
	return CategoryStats{TotalSessions: a.sessions, TotalMinutes: a.minutes, LastSession: a.lastSession()}
}

// ComputeChildSummary builds the parent-facing summary.
func ComputeChildSummary(entries []*Entry) ChildSummary {
	s := ComputeStats(entries)
	var last *time.Time
	if s.LatestSession != nil {
		t := s.LatestSession.CreatedAt
		last = &t
	}
	return ChildSummary{TotalSessions: s.TotalSessions, TotalMinutes: s.TotalMinutes, CategoriesUsed: s.CategoriesUsed, LastSession: last}
}

// ComputeChildCategorySummary builds the parent-facing per-category summary.
func ComputeChildCategorySummary(entries []*Entry) ChildCategorySummary {
	c := ComputeCategoryStats(entries)
	return ChildCategorySummary{TotalSessions: c.TotalSessions, TotalMinutes: c.TotalMinutes, LastSession: c.LastSession}
}
