package engine_test

import (
	"testing"
	"time"

	"github.com/sharpline/sharpline-alerts/internal/engine"
)

var testNow = time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)

func testGame() engine.GameWithPrediction {
	return engine.GameWithPrediction{
		GameID:   "nba-2026-03-14-bos-lal",
		HomeTeam: "Lakers",
		AwayTeam: "Celtics",
		GameTime: engine.FlexTime{Time: testNow.Add(3 * time.Hour)},
		Sport:    engine.SportNBA,
		Prediction: engine.GamePrediction{
			PredictedWinner: "Celtics",
			PredictedSpread: 3.5,
			WinProbability:  58,
			Confidence:      engine.ConfidenceMedium,
		},
	}
}

func testPrefs() engine.AlertPreferences {
	return engine.AlertPreferences{
		UserID:                     "user-1",
		EnableValueBetAlerts:       true,
		EnableHighConfidenceAlerts: true,
		EnableInjuryAlerts:         true,
		MinEdgeThreshold:           3,
		MinConfidence:              engine.ConfidenceLow,
		Sports:                     []engine.Sport{engine.SportNBA, engine.SportNFL},
	}
}

func bet(edge float64, conf engine.Confidence) engine.ValueBet {
	return engine.ValueBet{
		BetType:        "spread",
		BetSide:        engine.SideUnderdog,
		TeamToBet:      "Celtics",
		Edge:           edge,
		Confidence:     conf,
		BetDescription: "Celtics +3.5 vs market line",
	}
}

func TestValueBetThresholds(t *testing.T) {
	tests := []struct {
		name          string
		bets          []engine.ValueBet
		minEdge       float64
		minConfidence engine.Confidence
		wantCount     int
		wantPriority  engine.Priority
	}{
		{
			name:         "one bet clears, one below threshold",
			bets:         []engine.ValueBet{bet(6, engine.ConfidenceHigh), bet(2, engine.ConfidenceHigh)},
			minEdge:      3,
			wantCount:    1,
			wantPriority: engine.PriorityHigh,
		},
		{
			name:         "edge exactly at high tier",
			bets:         []engine.ValueBet{bet(5, engine.ConfidenceMedium)},
			minEdge:      3,
			wantCount:    1,
			wantPriority: engine.PriorityHigh,
		},
		{
			name:         "edge in medium tier",
			bets:         []engine.ValueBet{bet(4.2, engine.ConfidenceMedium)},
			minEdge:      3,
			wantCount:    1,
			wantPriority: engine.PriorityMedium,
		},
		{
			name:         "edge below medium tier",
			bets:         []engine.ValueBet{bet(3.1, engine.ConfidenceMedium)},
			minEdge:      3,
			wantCount:    1,
			wantPriority: engine.PriorityLow,
		},
		{
			name:      "all bets below threshold",
			bets:      []engine.ValueBet{bet(2, engine.ConfidenceHigh), bet(2.9, engine.ConfidenceHigh)},
			minEdge:   3,
			wantCount: 0,
		},
		{
			name:          "confidence below minimum filters bet out",
			bets:          []engine.ValueBet{bet(6, engine.ConfidenceMedium)},
			minEdge:       3,
			minConfidence: engine.ConfidenceHigh,
			wantCount:     0,
		},
		{
			name:          "confidence at minimum passes",
			bets:          []engine.ValueBet{bet(6, engine.ConfidenceHigh)},
			minEdge:       3,
			minConfidence: engine.ConfidenceHigh,
			wantCount:     1,
			wantPriority:  engine.PriorityHigh,
		},
		{
			name:      "no bets at all",
			bets:      nil,
			minEdge:   3,
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game := testGame()
			game.ValueBets = tt.bets
			prefs := testPrefs()
			prefs.MinEdgeThreshold = tt.minEdge
			if tt.minConfidence != "" {
				prefs.MinConfidence = tt.minConfidence
			}

			alerts := engine.Generate([]engine.GameWithPrediction{game}, prefs, testNow)

			var got []engine.Alert
			for _, a := range alerts {
				if a.Type == engine.TypeValueBet {
					got = append(got, a)
				}
			}
			if len(got) != tt.wantCount {
				t.Fatalf("value bet alerts = %d, want %d", len(got), tt.wantCount)
			}
			if tt.wantCount == 1 && got[0].Priority != tt.wantPriority {
				t.Errorf("priority = %s, want %s", got[0].Priority, tt.wantPriority)
			}
		})
	}
}

func TestValueBetThresholdMonotonicity(t *testing.T) {
	game := testGame()
	game.ValueBets = []engine.ValueBet{bet(4.5, engine.ConfidenceMedium)}

	prefs := testPrefs()
	prefs.EnableHighConfidenceAlerts = false
	prefs.EnableInjuryAlerts = false

	// Threshold below the edge admits the bet.
	prefs.MinEdgeThreshold = 4
	if got := len(engine.Generate([]engine.GameWithPrediction{game}, prefs, testNow)); got != 1 {
		t.Fatalf("threshold 4: alerts = %d, want 1", got)
	}

	// Raising it above the edge removes the bet, all else fixed.
	prefs.MinEdgeThreshold = 5
	if got := len(engine.Generate([]engine.GameWithPrediction{game}, prefs, testNow)); got != 0 {
		t.Fatalf("threshold 5: alerts = %d, want 0", got)
	}
}

func TestValueBetAlertFields(t *testing.T) {
	game := testGame()
	game.ValueBets = []engine.ValueBet{bet(5.5, engine.ConfidenceHigh)}

	alerts := engine.Generate([]engine.GameWithPrediction{game}, testPrefs(), testNow)
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts))
	}

	a := alerts[0]
	if a.ID != "nba-2026-03-14-bos-lal:value_bet:spread:underdog" {
		t.Errorf("id = %q", a.ID)
	}
	if a.UserID != "user-1" {
		t.Errorf("user id = %q", a.UserID)
	}
	if a.Message != "Celtics +3.5 vs market line" {
		t.Errorf("message = %q, want bet description verbatim", a.Message)
	}
	if a.BetSide != engine.SideUnderdog {
		t.Errorf("bet side = %q", a.BetSide)
	}
	if a.Edge == nil || *a.Edge != 5.5 {
		t.Errorf("edge = %v, want 5.5", a.Edge)
	}
	if a.Confidence != engine.ConfidenceHigh {
		t.Errorf("confidence = %q", a.Confidence)
	}
	if a.Sport != engine.SportNBA {
		t.Errorf("sport = %q", a.Sport)
	}
	if a.Read {
		t.Error("read must be false on creation")
	}
	if !a.CreatedAt.Equal(testNow) {
		t.Errorf("created at = %v, want %v", a.CreatedAt, testNow)
	}
}

func TestValueBetDistinctIDsWithinBatch(t *testing.T) {
	game := testGame()
	game.ValueBets = []engine.ValueBet{
		{BetType: "spread", BetSide: engine.SideUnderdog, TeamToBet: "Celtics", Edge: 6, Confidence: engine.ConfidenceHigh, BetDescription: "a"},
		{BetType: "total", BetSide: engine.SideOver, TeamToBet: "Celtics", Edge: 6, Confidence: engine.ConfidenceHigh, BetDescription: "b"},
	}

	alerts := engine.Generate([]engine.GameWithPrediction{game}, testPrefs(), testNow)
	seen := make(map[string]bool)
	for _, a := range alerts {
		if seen[a.ID] {
			t.Fatalf("duplicate alert id %q within one batch", a.ID)
		}
		seen[a.ID] = true
	}
}
