// Package scoring computes the bounded quality score for one completed
// subtask.
package scoring

import (
	"math"
	"time"

	"github.com/okian/delega/internal/domain/model"
	"github.com/okian/delega/internal/domain/skills"
)

// Scoring constants.
const (
	// ScoreFloor is the lowest persisted score. Poor performance never
	// drops below it, which keeps pool statistics from spiraling downward.
	ScoreFloor = 50
	// ScoreCeil bounds every score and factor from above.
	ScoreCeil = 100

	defaultEstimatedHours = 8

	// Neutral skill levels when the worker has no usable expertise data.
	skillLevelNoData  = 75 // worker has no expertise map at all
	skillLevelNoMatch = 60 // worker has data, none for these skills
	skillLevelMissing = 70 // per-skill default inside the mean

	difficultyPerSkill = 10
	latePenaltyPerDay  = 10
	earlyBonusPerDay   = 2
)

// Default factor weights; they sum to 1.
const (
	defaultTimeWeight       = 0.4
	defaultSkillWeight      = 0.3
	defaultDeadlineWeight   = 0.2
	defaultDifficultyWeight = 0.1
)

// Input carries the completed subtask and the assignee's expertise snapshot.
type Input struct {
	EstimatedHours float64
	ActualHours    float64
	Skills         []string
	CompletedAt    time.Time
	DueDate        time.Time
	Expertise      map[string]model.SkillStat
}

// Result is the score plus the factors it was derived from.
type Result struct {
	Score          int // bounded [ScoreFloor, ScoreCeil]
	TimeEfficiency float64
	SkillLevel     float64
	DeadlineScore  float64
	Difficulty     float64
}

// Scorer computes a bounded score from a completed subtask. All inputs are
// clamped, so implementations are total functions.
type Scorer interface {
	Score(in Input) Result
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWeights overrides the factor weights. Values must be non-negative;
// callers are expected to keep them summing to 1.
func WithWeights(timeW, skillW, deadlineW, difficultyW float64) Option {
	return func(e *Engine) {
		if timeW >= 0 && skillW >= 0 && deadlineW >= 0 && difficultyW >= 0 {
			e.timeWeight = timeW
			e.skillWeight = skillW
			e.deadlineWeight = deadlineW
			e.difficultyWeight = difficultyW
		}
	}
}

// Engine implements Scorer with the weighted multi-factor formula.
type Engine struct {
	timeWeight       float64
	skillWeight      float64
	deadlineWeight   float64
	difficultyWeight float64
}

// NewEngine creates a scoring engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		timeWeight:       defaultTimeWeight,
		skillWeight:      defaultSkillWeight,
		deadlineWeight:   defaultDeadlineWeight,
		difficultyWeight: defaultDifficultyWeight,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score computes the bounded score for one completed subtask.
func (e *Engine) Score(in Input) Result {
	estimated := in.EstimatedHours
	if estimated <= 0 {
		estimated = defaultEstimatedHours
	}
	actual := in.ActualHours
	if actual <= 0 {
		actual = estimated
	}

	timeEfficiency := math.Min(ScoreCeil, estimated/actual*ScoreCeil)

	skillCount := len(in.Skills)
	if skillCount < 1 {
		skillCount = 1
	}
	difficulty := math.Min(ScoreCeil, float64(skillCount*difficultyPerSkill))

	skillLevel := e.skillLevel(in)
	deadlineScore := deadline(in.CompletedAt, in.DueDate)

	raw := timeEfficiency*e.timeWeight +
		skillLevel*e.skillWeight +
		deadlineScore*e.deadlineWeight +
		(ScoreCeil-difficulty)*e.difficultyWeight

	score := int(math.Round(math.Max(ScoreFloor, math.Min(ScoreCeil, raw))))

	return Result{
		Score:          score,
		TimeEfficiency: timeEfficiency,
		SkillLevel:     skillLevel,
		DeadlineScore:  deadlineScore,
		Difficulty:     difficulty,
	}
}

// skillLevel averages the worker's existing proficiency over the subtask's
// skills. Neutral defaults apply when there is nothing to average.
func (e *Engine) skillLevel(in Input) float64 {
	if len(in.Expertise) == 0 || len(in.Skills) == 0 {
		return skillLevelNoData
	}

	sum, matched := 0.0, 0
	for _, s := range in.Skills {
		stat, ok := in.Expertise[skills.Normalize(s)]
		if !ok {
			continue
		}
		matched++
		if stat.AvgRate > 0 {
			sum += float64(stat.AvgRate)
		} else {
			sum += skillLevelMissing
		}
	}
	if matched == 0 {
		return skillLevelNoMatch
	}
	return math.Round(sum / float64(matched))
}

// deadline scores adherence: on time is 100, each late day costs 10 down to
// the floor, each early day earns 2 up to the ceiling.
func deadline(completedAt, dueDate time.Time) float64 {
	if completedAt.IsZero() {
		completedAt = time.Now()
	}
	if dueDate.IsZero() {
		dueDate = completedAt
	}

	const dayHours = 24
	diff := completedAt.Sub(dueDate).Hours() / dayHours
	if diff > 0 {
		return math.Max(ScoreFloor, ScoreCeil-diff*latePenaltyPerDay)
	}
	return math.Min(ScoreCeil, ScoreCeil+(-diff)*earlyBonusPerDay)
}
