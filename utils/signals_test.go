package utils

import (
	"testing"

	"github.com/DrvDispatch/Foodly-sub000/models"
)

var testGoal = models.DailyGoal{Calories: 2000, Protein: 150, Carbs: 200, Fat: 70}

// ---------- Meal signal ----------

func TestDetectMealSignal_TinyMealIsNil(t *testing.T) {
	sig := DetectMealSignal(testGoal, SignalContext{}, MealTotals{Calories: 40, Protein: 2})
	if sig != nil {
		t.Fatalf("expected nil for <50 kcal meal, got %+v", sig)
	}
}

func TestDetectMealSignal_BalancedMealIsNil(t *testing.T) {
	// 25% protein, 50% carbs, 25% fat — every share inside its band
	meal := MealTotals{Calories: 400, Protein: 25, Carbs: 50, Fat: 11.1}
	if sig := DetectMealSignal(testGoal, SignalContext{}, meal); sig != nil {
		t.Fatalf("expected nil for balanced meal, got %+v", sig)
	}
}

func TestDetectMealSignal_SizeBandAloneIsNil(t *testing.T) {
	// light meal (<150 kcal) but macro shares all in range
	meal := MealTotals{Calories: 100, Protein: 6.25, Carbs: 12.5, Fat: 2.8}
	if sig := DetectMealSignal(testGoal, SignalContext{}, meal); sig != nil {
		t.Fatalf("size band alone should not produce a signal, got %+v", sig)
	}
}

func TestDetectMealSignal_LowProteinLowCarb(t *testing.T) {
	// protein 10% of kcal, carbs ~13%, fat 60% of a 600 kcal meal
	meal := MealTotals{Calories: 600, Protein: 15, Carbs: 20, Fat: 40}
	sig := DetectMealSignal(testGoal, SignalContext{}, meal)
	if sig == nil {
		t.Fatal("expected a signal")
	}
	for _, f := range []string{"low_protein_meal", "low_carb_meal", "high_fat_meal"} {
		if !sig.Has(f) {
			t.Errorf("missing fact %s", f)
		}
	}
	if sig.Priority != Medium {
		t.Errorf("priority = %s, want medium (high_fat_meal)", sig.Priority)
	}
}

func TestDetectMealSignal_LowCarbEscalatesForStrength(t *testing.T) {
	meal := MealTotals{Calories: 600, Protein: 15, Carbs: 20, Fat: 40}
	sig := DetectMealSignal(testGoal, SignalContext{FitnessGoal: "strength"}, meal)
	if sig == nil {
		t.Fatal("expected a signal")
	}
	if sig.Priority != High {
		t.Errorf("priority = %s, want high for strength user with low-carb meal", sig.Priority)
	}
}

// A later matching rule with a lower priority must not downgrade an
// earlier high: the signal priority is a running maximum, not
// last-write-wins.
func TestDetectMealSignal_PriorityNeverDowngrades(t *testing.T) {
	// low_carb (high for endurance) matches before high_fat (medium) and
	// substantial_meal (low)
	meal := MealTotals{Calories: 800, Protein: 40, Carbs: 20, Fat: 48}
	sig := DetectMealSignal(testGoal, SignalContext{FitnessGoal: "endurance"}, meal)
	if sig == nil {
		t.Fatal("expected a signal")
	}
	if !sig.Has("substantial_meal") || !sig.Has("high_fat_meal") {
		t.Fatalf("expected later rules to still add facts: %+v", sig.Facts)
	}
	if sig.Priority != High {
		t.Errorf("priority = %s, want high retained across later lower-priority matches", sig.Priority)
	}
}

// ---------- Daily signal ----------

func TestExpectedProgress_Steps(t *testing.T) {
	tests := []struct {
		hour int
		want float64
	}{
		{0, 15}, {9, 15}, {10, 40}, {13, 40}, {14, 60}, {17, 60}, {18, 85}, {23, 85},
	}
	for _, tt := range tests {
		if got := ExpectedProgress(tt.hour); got != tt.want {
			t.Errorf("ExpectedProgress(%d) = %.0f, want %.0f", tt.hour, got, tt.want)
		}
	}
}

func TestDetectDailySignal_NoDataIsNil(t *testing.T) {
	if sig := DetectDailySignal(testGoal, SignalContext{Hour: 12}, DayState{}); sig != nil {
		t.Fatalf("expected nil with nothing logged, got %+v", sig)
	}
}

func TestDetectDailySignal_ZeroTargetIsNil(t *testing.T) {
	day := DayState{Calories: 1500, MealCount: 2}
	if sig := DetectDailySignal(models.DailyGoal{}, SignalContext{Hour: 12}, day); sig != nil {
		t.Fatalf("expected nil without a calorie target, got %+v", sig)
	}
}

func TestDetectDailySignal_ExceededBeatsMet(t *testing.T) {
	day := DayState{Calories: 2300, Protein: 170, Carbs: 185, Fat: 65, MealCount: 3}
	sig := DetectDailySignal(testGoal, SignalContext{Hour: 20}, day)
	if sig == nil {
		t.Fatal("expected a signal")
	}
	if !sig.Has("goal_exceeded") {
		t.Error("expected goal_exceeded")
	}
	if sig.Has("goal_met") {
		t.Error("goal_met must not fire once exceeded")
	}
	if sig.Priority != High {
		t.Errorf("priority = %s, want high", sig.Priority)
	}
}

func TestDetectDailySignal_GoalMet(t *testing.T) {
	day := DayState{Calories: 1950, Protein: 140, Carbs: 190, Fat: 65, MealCount: 3}
	sig := DetectDailySignal(testGoal, SignalContext{Hour: 21}, day)
	if sig == nil {
		t.Fatal("expected a signal")
	}
	if !sig.Has("goal_met") || sig.Has("goal_exceeded") {
		t.Errorf("facts = %+v, want goal_met only", sig.Facts)
	}
	if sig.Priority != Medium {
		t.Errorf("priority = %s, want medium", sig.Priority)
	}
}

func TestDetectDailySignal_BehindPace(t *testing.T) {
	// 13:00 → expected 40%; 10% consumed is >15 points behind
	day := DayState{Calories: 200, Protein: 10, Carbs: 20, Fat: 5, MealCount: 1}
	sig := DetectDailySignal(testGoal, SignalContext{Hour: 13}, day)
	if sig == nil {
		t.Fatal("expected a signal")
	}
	if !sig.Has("behind_pace") {
		t.Errorf("facts = %+v, want behind_pace", sig.Facts)
	}
	if got := sig.Facts["expected_pct"]; got != 40.0 {
		t.Errorf("expected_pct = %v, want 40", got)
	}
}

// ---------- What's-next hint ----------

func TestDetectWhatNextSignal_Gates(t *testing.T) {
	day := DayState{Calories: 1300, Protein: 80, Carbs: 90, Fat: 40, MealCount: 2}
	if sig := DetectWhatNextSignal(testGoal, SignalContext{Hour: 11}, day, nil); sig != nil {
		t.Error("expected nil before noon")
	}
	if sig := DetectWhatNextSignal(testGoal, SignalContext{Hour: 16}, DayState{}, nil); sig != nil {
		t.Error("expected nil with no meals logged")
	}
	prior := &Signal{Kind: SignalDaily, Facts: Facts{"goal_met": true}, Priority: Medium}
	if sig := DetectWhatNextSignal(testGoal, SignalContext{Hour: 16}, day, prior); sig != nil {
		t.Error("expected nil once the daily goal is already met")
	}
}

func TestDetectWhatNextSignal_ProteinBehindAndDinner(t *testing.T) {
	day := DayState{Calories: 1300, Protein: 80, Carbs: 130, Fat: 40, MealCount: 2}
	sig := DetectWhatNextSignal(testGoal, SignalContext{Hour: 16}, day, nil)
	if sig == nil {
		t.Fatal("expected a signal")
	}
	if !sig.Has("protein_behind") || !sig.Has("dinner_decides") {
		t.Errorf("facts = %+v, want protein_behind and dinner_decides", sig.Facts)
	}
	if sig.Priority != Medium {
		t.Errorf("priority = %s, want medium", sig.Priority)
	}

	// muscle-gain users get the protein nudge at high priority
	sig = DetectWhatNextSignal(testGoal, SignalContext{Hour: 16, FitnessGoal: "muscle_gain"}, day, nil)
	if sig == nil || sig.Priority != High {
		t.Errorf("want high priority for muscle_gain, got %+v", sig)
	}
}

func TestDetectWhatNextSignal_CarbsNeededForEndurance(t *testing.T) {
	day := DayState{Calories: 1400, Protein: 120, Carbs: 90, Fat: 45, MealCount: 3}
	sig := DetectWhatNextSignal(testGoal, SignalContext{Hour: 15, FitnessGoal: "endurance"}, day, nil)
	if sig == nil {
		t.Fatal("expected a signal")
	}
	if !sig.Has("carbs_needed") {
		t.Errorf("facts = %+v, want carbs_needed", sig.Facts)
	}
}
