package utils

import (
	"math"

	"github.com/DrvDispatch/Foodly-sub000/models"
)

// SignalKind tags which detector produced a signal.
type SignalKind string

const (
	SignalMeal     SignalKind = "meal"
	SignalDaily    SignalKind = "daily"
	SignalWhatNext SignalKind = "whatnext"
)

// Priority categorizes how urgent the situation is.
type Priority string

const (
	Low    Priority = "low"
	Medium Priority = "medium"
	High   Priority = "high"
)

// Facts is a sparse bag of optional boolean/numeric observations. It is
// consumed, never mutated, by the downstream phrasing collaborator.
type Facts map[string]any

// Signal is a structured finding: a fact bag plus an overall priority.
type Signal struct {
	Kind     SignalKind `json:"kind"`
	Facts    Facts      `json:"facts"`
	Priority Priority   `json:"priority"`
}

// Has reports whether a boolean fact is present and true.
func (s *Signal) Has(key string) bool {
	if s == nil {
		return false
	}
	v, ok := s.Facts[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// SignalContext carries the situational inputs the detectors need beyond
// raw nutrition numbers.
type SignalContext struct {
	Hour        int    // hour of day in the user's timezone, 0–23
	FitnessGoal string // from the profile store; "" when unset
}

// MealTotals is one meal's summed macros.
type MealTotals struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
}

// DayState is the running day-so-far totals at detection time.
type DayState struct {
	Calories  float64
	Protein   float64
	Carbs     float64
	Fat       float64
	MealCount int
}

// -----------------------------
// Rule engine
// -----------------------------

// Each detector is an ordered rule list evaluated top to bottom. Facts
// accumulate additively across every matching rule; the signal priority is
// the running maximum of matched rule priorities. An earlier engine
// overwrote priority per match (last-write-wins), which could downgrade a
// high set by an earlier rule; the maximum is kept instead.

type ruleEnv struct {
	goal models.DailyGoal
	ctx  SignalContext
	meal MealTotals
	day  DayState

	// derived, filled by the detector before evaluation
	proteinShare float64
	carbShare    float64
	fatShare     float64
	calPct       float64
	proteinPct   float64
	carbsPct     float64
	fatPct       float64
	expected     float64
}

// A matched rule always sets the boolean fact named by its code; extra
// numeric facts come from the optional facts func.
type signalRule struct {
	code     string
	macro    bool // meal detector: counts toward the "any macro fact" gate
	when     func(e *ruleEnv) bool
	facts    func(e *ruleEnv) Facts
	priority func(e *ruleEnv) Priority
}

func fixed(p Priority) func(*ruleEnv) Priority {
	return func(*ruleEnv) Priority { return p }
}

func runRules(kind SignalKind, rules []signalRule, e *ruleEnv) *Signal {
	facts := Facts{}
	pr := Low
	matched := false
	macroMatched := false

	for _, r := range rules {
		if !r.when(e) {
			continue
		}
		matched = true
		if r.macro {
			macroMatched = true
		}
		facts[r.code] = true
		if r.facts != nil {
			for k, v := range r.facts(e) {
				facts[k] = v
			}
		}
		pr = maxPriority(pr, r.priority(e))
	}

	if !matched {
		return nil
	}
	if kind == SignalMeal && !macroMatched {
		// size bands alone are not worth a signal
		return nil
	}
	return &Signal{Kind: kind, Facts: facts, Priority: pr}
}

// -----------------------------
// 1) Meal signal
// -----------------------------

// Macro-share thresholds on a single meal: protein <15%/>35% of the meal's
// calories, carbs <15%/>65%, fat >50% with a 300 kcal floor, plus size
// bands (<150 kcal light, >700 kcal substantial). Low-carb meals escalate
// to high priority for strength/endurance-focused users.
var mealRules = []signalRule{
	{
		code: "low_protein_meal", macro: true,
		when:     func(e *ruleEnv) bool { return e.proteinShare < 0.15 },
		facts:    func(e *ruleEnv) Facts { return Facts{"protein_share": round2(e.proteinShare * 100)} },
		priority: fixed(Low),
	},
	{
		code: "high_protein_meal", macro: true,
		when:     func(e *ruleEnv) bool { return e.proteinShare > 0.35 },
		facts:    func(e *ruleEnv) Facts { return Facts{"protein_share": round2(e.proteinShare * 100)} },
		priority: fixed(Low),
	},
	{
		code: "low_carb_meal", macro: true,
		when:  func(e *ruleEnv) bool { return e.carbShare < 0.15 },
		facts: func(e *ruleEnv) Facts { return Facts{"carb_share": round2(e.carbShare * 100)} },
		priority: func(e *ruleEnv) Priority {
			if e.ctx.FitnessGoal == "strength" || e.ctx.FitnessGoal == "endurance" {
				return High
			}
			return Low
		},
	},
	{
		code: "high_carb_meal", macro: true,
		when:     func(e *ruleEnv) bool { return e.carbShare > 0.65 },
		facts:    func(e *ruleEnv) Facts { return Facts{"carb_share": round2(e.carbShare * 100)} },
		priority: fixed(Medium),
	},
	{
		code: "high_fat_meal", macro: true,
		when:     func(e *ruleEnv) bool { return e.fatShare > 0.50 && e.meal.Calories > 300 },
		facts:    func(e *ruleEnv) Facts { return Facts{"fat_share": round2(e.fatShare * 100)} },
		priority: fixed(Medium),
	},
	{
		code:     "light_meal",
		when:     func(e *ruleEnv) bool { return e.meal.Calories < 150 },
		facts:    func(e *ruleEnv) Facts { return Facts{"meal_calories": round2(e.meal.Calories)} },
		priority: fixed(Low),
	},
	{
		code:     "substantial_meal",
		when:     func(e *ruleEnv) bool { return e.meal.Calories > 700 },
		facts:    func(e *ruleEnv) Facts { return Facts{"meal_calories": round2(e.meal.Calories)} },
		priority: fixed(Low),
	},
}

// DetectMealSignal inspects one meal's macro balance. Returns nil when the
// meal is too small to judge (<50 kcal) or no macro fact triggers.
func DetectMealSignal(goal models.DailyGoal, ctx SignalContext, meal MealTotals) *Signal {
	if meal.Calories < 50 {
		return nil
	}
	e := &ruleEnv{goal: goal, ctx: ctx, meal: meal}
	e.proteinShare = shareOf(meal.Protein*4, meal.Calories)
	e.carbShare = shareOf(meal.Carbs*4, meal.Calories)
	e.fatShare = shareOf(meal.Fat*9, meal.Calories)
	return runRules(SignalMeal, mealRules, e)
}

// -----------------------------
// 2) Daily signal
// -----------------------------

// ExpectedProgress is the share of the daily calorie target a typical day
// has consumed by the given hour: 15% before 10:00, 40% before 14:00, 60%
// before 18:00, 85% after.
func ExpectedProgress(hour int) float64 {
	switch {
	case hour < 10:
		return 15
	case hour < 14:
		return 40
	case hour < 18:
		return 60
	default:
		return 85
	}
}

func (e *ruleEnv) goalExceeded() bool {
	return e.calPct >= 110 && e.proteinPct >= 110 && e.carbsPct >= 90 && e.fatPct >= 90
}

func (e *ruleEnv) goalMet() bool {
	return e.calPct >= 95 && e.proteinPct >= 90 && e.carbsPct >= 90 && e.fatPct >= 90
}

// Exceeded is checked before met; pacing bands sit ±15 points around the
// expected-progress curve; protein lag/strong compare protein pacing to
// calorie pacing.
var dailyRules = []signalRule{
	{
		code:     "goal_exceeded",
		when:     func(e *ruleEnv) bool { return e.goalExceeded() },
		facts:    func(e *ruleEnv) Facts { return Facts{"calories_pct": round2(e.calPct)} },
		priority: fixed(High),
	},
	{
		code:     "goal_met",
		when:     func(e *ruleEnv) bool { return !e.goalExceeded() && e.goalMet() },
		facts:    func(e *ruleEnv) Facts { return Facts{"calories_pct": round2(e.calPct)} },
		priority: fixed(Medium),
	},
	{
		code: "behind_pace",
		when: func(e *ruleEnv) bool { return e.calPct < e.expected-15 },
		facts: func(e *ruleEnv) Facts {
			return Facts{"calories_pct": round2(e.calPct), "expected_pct": e.expected}
		},
		priority: fixed(Medium),
	},
	{
		code: "ahead_of_pace",
		when: func(e *ruleEnv) bool { return e.calPct > e.expected+15 && !e.goalExceeded() },
		facts: func(e *ruleEnv) Facts {
			return Facts{"calories_pct": round2(e.calPct), "expected_pct": e.expected}
		},
		priority: fixed(Low),
	},
	{
		code:     "protein_lagging",
		when:     func(e *ruleEnv) bool { return e.proteinPct < e.calPct-15 },
		facts:    func(e *ruleEnv) Facts { return Facts{"protein_pct": round2(e.proteinPct)} },
		priority: fixed(Medium),
	},
	{
		code:     "protein_strong",
		when:     func(e *ruleEnv) bool { return e.proteinPct >= e.calPct+10 },
		facts:    func(e *ruleEnv) Facts { return Facts{"protein_pct": round2(e.proteinPct)} },
		priority: fixed(Low),
	},
}

// DetectDailySignal compares the day-so-far totals against the targets and
// the expected-progress curve for the current hour. Returns nil when
// nothing is logged yet or no calorie target is set.
func DetectDailySignal(goal models.DailyGoal, ctx SignalContext, day DayState) *Signal {
	if day.MealCount == 0 || goal.Calories <= 0 {
		return nil
	}
	e := &ruleEnv{goal: goal, ctx: ctx, day: day}
	e.calPct = pctOf(day.Calories, goal.Calories)
	e.proteinPct = pctOf(day.Protein, goal.Protein)
	e.carbsPct = pctOf(day.Carbs, goal.Carbs)
	e.fatPct = pctOf(day.Fat, goal.Fat)
	e.expected = ExpectedProgress(ctx.Hour)
	return runRules(SignalDaily, dailyRules, e)
}

// -----------------------------
// 3) What's-next hint
// -----------------------------

var whatNextRules = []signalRule{
	{
		code:  "protein_behind",
		when:  func(e *ruleEnv) bool { return e.ctx.Hour >= 15 && e.proteinPct < 60 && e.calPct >= 40 },
		facts: func(e *ruleEnv) Facts { return Facts{"protein_pct": round2(e.proteinPct)} },
		priority: func(e *ruleEnv) Priority {
			if e.ctx.FitnessGoal == "muscle_gain" || e.ctx.FitnessGoal == "strength" {
				return High
			}
			return Medium
		},
	},
	{
		code: "dinner_decides",
		when: func(e *ruleEnv) bool {
			return e.ctx.Hour >= 16 && e.ctx.Hour <= 19 && e.calPct >= 50 && e.calPct < 80
		},
		facts:    func(e *ruleEnv) Facts { return Facts{"calories_pct": round2(e.calPct)} },
		priority: fixed(Medium),
	},
	{
		code:     "near_target_early",
		when:     func(e *ruleEnv) bool { return e.calPct >= 90 && e.ctx.Hour < 18 },
		facts:    func(e *ruleEnv) Facts { return Facts{"calories_pct": round2(e.calPct)} },
		priority: fixed(Medium),
	},
	{
		code: "surplus_behind",
		when: func(e *ruleEnv) bool {
			return e.ctx.FitnessGoal == "muscle_gain" && e.calPct < e.expected-20
		},
		facts:    func(e *ruleEnv) Facts { return Facts{"calories_pct": round2(e.calPct)} },
		priority: fixed(High),
	},
	{
		code: "carbs_needed",
		when: func(e *ruleEnv) bool {
			return (e.ctx.FitnessGoal == "strength" || e.ctx.FitnessGoal == "endurance") &&
				e.ctx.Hour >= 15 && e.carbsPct < 50
		},
		facts:    func(e *ruleEnv) Facts { return Facts{"carbs_pct": round2(e.carbsPct)} },
		priority: fixed(Medium),
	},
}

// DetectWhatNextSignal suggests what the rest of the day should look like.
// Gated to the afternoon (hour ≥ 12) with at least one meal logged; prior
// is the most recent daily signal, used to stay quiet once the day's goal
// is already met or exceeded.
func DetectWhatNextSignal(goal models.DailyGoal, ctx SignalContext, day DayState, prior *Signal) *Signal {
	if ctx.Hour < 12 || day.MealCount < 1 || goal.Calories <= 0 {
		return nil
	}
	if prior.Has("goal_met") || prior.Has("goal_exceeded") {
		return nil
	}
	e := &ruleEnv{goal: goal, ctx: ctx, day: day}
	e.calPct = pctOf(day.Calories, goal.Calories)
	e.proteinPct = pctOf(day.Protein, goal.Protein)
	e.carbsPct = pctOf(day.Carbs, goal.Carbs)
	e.expected = ExpectedProgress(ctx.Hour)
	return runRules(SignalWhatNext, whatNextRules, e)
}

// -----------------------------
// Helpers
// -----------------------------

var priorityRank = map[Priority]int{Low: 0, Medium: 1, High: 2}

func maxPriority(a, b Priority) Priority {
	if priorityRank[b] > priorityRank[a] {
		return b
	}
	return a
}

// shareOf returns kcalPart/totalKcal as a fraction, 0 when the total is 0.
func shareOf(kcalPart, totalKcal float64) float64 {
	if totalKcal <= 0 {
		return 0
	}
	return kcalPart / totalKcal
}

// pctOf returns actual/target*100, 0 when the target is 0 (never divides
// by zero).
func pctOf(actual, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return actual / target * 100
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
