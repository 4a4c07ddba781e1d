package scoring_test

import (
	"testing"
	"time"

	"github.com/okian/delega/internal/domain/model"
	"github.com/okian/delega/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScoreBounds(t *testing.T) {
	Convey("Given a scoring engine", t, func() {
		engine := scoring.NewEngine()
		due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		Convey("When scoring wildly poor performance", func() {
			res := engine.Score(scoring.Input{
				EstimatedHours: 1,
				ActualHours:    1000,
				Skills:         []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"},
				CompletedAt:    due.Add(90 * 24 * time.Hour),
				DueDate:        due,
			})

			Convey("Then the score is floor-clamped at 50", func() {
				So(res.Score, ShouldEqual, scoring.ScoreFloor)
			})
		})

		Convey("When scoring ideal performance", func() {
			res := engine.Score(scoring.Input{
				EstimatedHours: 10,
				ActualHours:    5,
				Skills:         []string{"react"},
				CompletedAt:    due.Add(-10 * 24 * time.Hour),
				DueDate:        due,
				Expertise: map[string]model.SkillStat{
					"react": {AvgRate: 100, Count: 5},
				},
			})

			Convey("Then the score never exceeds 100", func() {
				So(res.Score, ShouldBeLessThanOrEqualTo, scoring.ScoreCeil)
				So(res.Score, ShouldBeGreaterThanOrEqualTo, scoring.ScoreFloor)
			})
		})

		Convey("When scoring a spread of random-ish inputs", func() {
			cases := []scoring.Input{
				{EstimatedHours: 0, ActualHours: 0},
				{EstimatedHours: 8, ActualHours: 8, Skills: []string{"go"}},
				{EstimatedHours: 40, ActualHours: 12, CompletedAt: due, DueDate: due},
				{EstimatedHours: 4, ActualHours: 80, CompletedAt: due.Add(240 * time.Hour), DueDate: due},
			}

			Convey("Then every score stays inside [50,100]", func() {
				for _, in := range cases {
					res := engine.Score(in)
					So(res.Score, ShouldBeGreaterThanOrEqualTo, scoring.ScoreFloor)
					So(res.Score, ShouldBeLessThanOrEqualTo, scoring.ScoreCeil)
				}
			})
		})
	})
}

func TestScoreFactors(t *testing.T) {
	Convey("Given a scoring engine", t, func() {
		engine := scoring.NewEngine()
		due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		Convey("When the task finishes exactly on time at estimate", func() {
			res := engine.Score(scoring.Input{
				EstimatedHours: 8,
				ActualHours:    8,
				Skills:         []string{"go"},
				CompletedAt:    due,
				DueDate:        due,
			})

			Convey("Then time efficiency and deadline are both 100", func() {
				So(res.TimeEfficiency, ShouldEqual, 100)
				So(res.DeadlineScore, ShouldEqual, 100)
			})

			Convey("And one skill yields difficulty 10", func() {
				So(res.Difficulty, ShouldEqual, 10)
			})

			Convey("And the neutral no-data skill level applies", func() {
				So(res.SkillLevel, ShouldEqual, 75)
				// 100*.4 + 75*.3 + 100*.2 + 90*.1 = 91.5 -> 92
				So(res.Score, ShouldEqual, 92)
			})
		})

		Convey("When the worker has expertise for none of the skills", func() {
			res := engine.Score(scoring.Input{
				EstimatedHours: 8,
				ActualHours:    8,
				Skills:         []string{"rust"},
				CompletedAt:    due,
				DueDate:        due,
				Expertise: map[string]model.SkillStat{
					"go": {AvgRate: 90, Count: 3},
				},
			})

			Convey("Then the no-match default of 60 applies", func() {
				So(res.SkillLevel, ShouldEqual, 60)
			})
		})

		Convey("When the worker has expertise for some skills", func() {
			res := engine.Score(scoring.Input{
				EstimatedHours: 8,
				ActualHours:    8,
				Skills:         []string{"Go", "rust"},
				CompletedAt:    due,
				DueDate:        due,
				Expertise: map[string]model.SkillStat{
					"go": {AvgRate: 84, Count: 3},
				},
			})

			Convey("Then only matching skills enter the mean", func() {
				So(res.SkillLevel, ShouldEqual, 84)
			})
		})

		Convey("When the task is three days late", func() {
			res := engine.Score(scoring.Input{
				EstimatedHours: 8,
				ActualHours:    8,
				CompletedAt:    due.Add(3 * 24 * time.Hour),
				DueDate:        due,
			})

			Convey("Then the deadline score drops 10 per day", func() {
				So(res.DeadlineScore, ShouldEqual, 70)
			})
		})

		Convey("When the task is very late", func() {
			res := engine.Score(scoring.Input{
				EstimatedHours: 8,
				ActualHours:    8,
				CompletedAt:    due.Add(30 * 24 * time.Hour),
				DueDate:        due,
			})

			Convey("Then the deadline score bottoms out at 50", func() {
				So(res.DeadlineScore, ShouldEqual, 50)
			})
		})

		Convey("When the task is two days early", func() {
			res := engine.Score(scoring.Input{
				EstimatedHours: 8,
				ActualHours:    8,
				CompletedAt:    due.Add(-2 * 24 * time.Hour),
				DueDate:        due,
			})

			Convey("Then each early day earns a 2-point bonus, capped", func() {
				So(res.DeadlineScore, ShouldEqual, 100)
			})
		})

		Convey("When actual hours are missing", func() {
			res := engine.Score(scoring.Input{
				EstimatedHours: 8,
				CompletedAt:    due,
				DueDate:        due,
			})

			Convey("Then the estimate substitutes and efficiency is 100", func() {
				So(res.TimeEfficiency, ShouldEqual, 100)
			})
		})
	})
}
