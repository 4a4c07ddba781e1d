// Package analytics derives read-only summaries from a worker's performance
// snapshot.
package analytics

import (
	"sort"

	"github.com/okian/delega/internal/domain/model"
)

// Trend labels.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

const (
	trendWindow          = 3
	trendDelta           = 5
	strengthThreshold    = 85
	maxStrengths         = 3
	improvementThreshold = 70
	maxImprovementAreas  = 3

	defaultArea       = "General"
	defaultSuggestion = "Consider additional training or mentoring"
)

// Area flags a low-scoring recent task and what to do about it.
type Area struct {
	Area       string `json:"area"`
	Score      int    `json:"score"`
	Suggestion string `json:"suggestion"`
}

// Report is the full analytics view for one worker.
type Report struct {
	OverallScore     int                        `json:"overallScore"`
	TasksCompleted   int                        `json:"tasksCompleted"`
	SkillExpertise   map[string]model.SkillStat `json:"skillExpertise"`
	RecentTrend      string                     `json:"recentTrend"`
	Strengths        []string                   `json:"strengths"`
	ImprovementAreas []Area                     `json:"improvementAreas"`
}

// Trend compares the mean of the three most recent scores against the mean
// of the next three older ones. Fewer than three entries is always stable.
func Trend(history []model.HistoryEntry) string {
	if len(history) < trendWindow {
		return TrendStable
	}

	recent := mean(history[:trendWindow])
	older := history[trendWindow:]
	if len(older) == 0 {
		return TrendStable
	}
	if len(older) > trendWindow {
		older = older[:trendWindow]
	}
	olderMean := mean(older)

	switch {
	case recent > olderMean+trendDelta:
		return TrendImproving
	case recent < olderMean-trendDelta:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func mean(entries []model.HistoryEntry) float64 {
	sum := 0
	for _, e := range entries {
		sum += e.TaskPerformance
	}
	return float64(sum) / float64(len(entries))
}

// Strengths lists up to three skills averaging at or above the strength
// threshold, in lexical order so the output is deterministic.
func Strengths(exp map[string]model.SkillStat) []string {
	keys := make([]string, 0, len(exp))
	for k, stat := range exp {
		if stat.AvgRate >= strengthThreshold {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if len(keys) > maxStrengths {
		keys = keys[:maxStrengths]
	}
	return keys
}

// ImprovementAreas flags up to three recent history entries scoring below
// the improvement threshold, most recent first.
func ImprovementAreas(history []model.HistoryEntry) []Area {
	areas := make([]Area, 0, maxImprovementAreas)
	for _, e := range history {
		if e.TaskPerformance >= improvementThreshold {
			continue
		}
		area := defaultArea
		if len(e.Skills) > 0 {
			area = e.Skills[0]
		}
		areas = append(areas, Area{Area: area, Score: e.TaskPerformance, Suggestion: defaultSuggestion})
		if len(areas) == maxImprovementAreas {
			break
		}
	}
	return areas
}

// BuildReport assembles the analytics view from a worker's snapshot.
func BuildReport(w *model.Worker) Report {
	perf := w.Performance
	exp := perf.SkillExpertise
	if exp == nil {
		exp = map[string]model.SkillStat{}
	}
	return Report{
		OverallScore:     perf.OverallScore,
		TasksCompleted:   perf.TasksCompleted,
		SkillExpertise:   exp,
		RecentTrend:      Trend(perf.TaskHistory),
		Strengths:        Strengths(exp),
		ImprovementAreas: ImprovementAreas(perf.TaskHistory),
	}
}
