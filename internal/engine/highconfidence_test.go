package engine_test

import (
	"testing"

	"github.com/sharpline/sharpline-alerts/internal/engine"
)

func TestHighConfidencePickBoundaries(t *testing.T) {
	tests := []struct {
		name         string
		confidence   engine.Confidence
		winProb      float64
		wantCount    int
		wantPriority engine.Priority
	}{
		{"at 65 percent gate", engine.ConfidenceHigh, 65, 1, engine.PriorityMedium},
		{"at 75 percent tier", engine.ConfidenceHigh, 75, 1, engine.PriorityHigh},
		{"above 75 percent", engine.ConfidenceHigh, 82, 1, engine.PriorityHigh},
		{"between tiers", engine.ConfidenceHigh, 70, 1, engine.PriorityMedium},
		{"just below gate", engine.ConfidenceHigh, 64, 0, ""},
		{"medium confidence never fires", engine.ConfidenceMedium, 90, 0, ""},
		{"low confidence never fires", engine.ConfidenceLow, 99, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game := testGame()
			game.Prediction.Confidence = tt.confidence
			game.Prediction.WinProbability = tt.winProb

			prefs := testPrefs()
			prefs.EnableValueBetAlerts = false
			prefs.EnableInjuryAlerts = false

			alerts := engine.Generate([]engine.GameWithPrediction{game}, prefs, testNow)
			if len(alerts) != tt.wantCount {
				t.Fatalf("alerts = %d, want %d", len(alerts), tt.wantCount)
			}
			if tt.wantCount == 1 {
				if alerts[0].Type != engine.TypeHighConfidence {
					t.Errorf("type = %s", alerts[0].Type)
				}
				if alerts[0].Priority != tt.wantPriority {
					t.Errorf("priority = %s, want %s", alerts[0].Priority, tt.wantPriority)
				}
			}
		})
	}
}

// The pick rule is structural: the user's value-bet thresholds must not
// gate it.
func TestHighConfidenceIgnoresValueBetThresholds(t *testing.T) {
	game := testGame()
	game.Prediction.Confidence = engine.ConfidenceHigh
	game.Prediction.WinProbability = 70

	prefs := testPrefs()
	prefs.EnableValueBetAlerts = false
	prefs.EnableInjuryAlerts = false
	prefs.MinEdgeThreshold = 99
	prefs.MinConfidence = engine.ConfidenceHigh

	alerts := engine.Generate([]engine.GameWithPrediction{game}, prefs, testNow)
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1 (pick rule must ignore bet thresholds)", len(alerts))
	}
}

func TestHighConfidenceMessageMatchup(t *testing.T) {
	game := testGame()
	game.Prediction.Confidence = engine.ConfidenceHigh
	game.Prediction.WinProbability = 68
	game.Prediction.PredictedWinner = "Celtics"

	prefs := testPrefs()
	prefs.EnableValueBetAlerts = false
	prefs.EnableInjuryAlerts = false

	alerts := engine.Generate([]engine.GameWithPrediction{game}, prefs, testNow)
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts))
	}
	want := "68% win probability: Celtics @ Lakers"
	if alerts[0].Message != want {
		t.Errorf("message = %q, want %q", alerts[0].Message, want)
	}
	if alerts[0].Title != "High-Confidence Pick: Celtics" {
		t.Errorf("title = %q", alerts[0].Title)
	}
}
