package engine_test

import (
	"testing"
	"time"

	"github.com/sharpline/sharpline-alerts/internal/engine"
)

func TestGenerateFiltersBySport(t *testing.T) {
	nba := testGame()
	nba.Prediction.Confidence = engine.ConfidenceHigh
	nba.Prediction.WinProbability = 80

	nfl := testGame()
	nfl.GameID = "nfl-2026-09-13-kc-buf"
	nfl.Sport = engine.SportNFL
	nfl.HomeTeam = "Bills"
	nfl.AwayTeam = "Chiefs"
	nfl.Prediction.Confidence = engine.ConfidenceHigh
	nfl.Prediction.WinProbability = 80

	prefs := testPrefs()
	prefs.EnableValueBetAlerts = false
	prefs.EnableInjuryAlerts = false
	prefs.Sports = []engine.Sport{engine.SportNFL}

	alerts := engine.Generate([]engine.GameWithPrediction{nba, nfl}, prefs, testNow)
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts))
	}
	if alerts[0].GameID != nfl.GameID {
		t.Errorf("game id = %q, want the NFL game only", alerts[0].GameID)
	}
}

func TestGenerateEveryAlertReferencesInputGame(t *testing.T) {
	games := []engine.GameWithPrediction{testGame()}
	games[0].ValueBets = []engine.ValueBet{bet(6, engine.ConfidenceHigh)}
	games[0].Prediction.Confidence = engine.ConfidenceHigh
	games[0].Prediction.WinProbability = 80
	games[0].Injuries = &engine.GameInjuries{Home: injuries("Out", "Out")}

	inputIDs := map[string]bool{games[0].GameID: true}
	for _, a := range engine.Generate(games, testPrefs(), testNow) {
		if !inputIDs[a.GameID] {
			t.Errorf("alert references game %q not in the input batch", a.GameID)
		}
	}
}

func TestSortAlertsPriorityThenRecency(t *testing.T) {
	older := testNow.Add(-2 * time.Hour)

	alerts := []engine.Alert{
		{ID: "low-new", Priority: engine.PriorityLow, CreatedAt: testNow},
		{ID: "high-old", Priority: engine.PriorityHigh, CreatedAt: older},
		{ID: "medium-new", Priority: engine.PriorityMedium, CreatedAt: testNow},
		{ID: "high-new", Priority: engine.PriorityHigh, CreatedAt: testNow},
		{ID: "medium-old", Priority: engine.PriorityMedium, CreatedAt: older},
	}

	engine.SortAlerts(alerts)

	want := []string{"high-new", "high-old", "medium-new", "medium-old", "low-new"}
	for i, id := range want {
		if alerts[i].ID != id {
			t.Fatalf("position %d = %q, want %q (got order %v)", i, alerts[i].ID, id, ids(alerts))
		}
	}
}

func TestSortAlertsStableOnTies(t *testing.T) {
	alerts := []engine.Alert{
		{ID: "first", Priority: engine.PriorityMedium, CreatedAt: testNow},
		{ID: "second", Priority: engine.PriorityMedium, CreatedAt: testNow},
		{ID: "third", Priority: engine.PriorityMedium, CreatedAt: testNow},
	}

	engine.SortAlerts(alerts)

	for i, id := range []string{"first", "second", "third"} {
		if alerts[i].ID != id {
			t.Fatalf("tie order changed: got %v", ids(alerts))
		}
	}
}

func TestGenerateCombinedBatchOrdering(t *testing.T) {
	game := testGame()
	game.ValueBets = []engine.ValueBet{bet(3.2, engine.ConfidenceHigh)} // low priority
	game.Prediction.Confidence = engine.ConfidenceHigh
	game.Prediction.WinProbability = 80 // high priority pick
	game.Injuries = &engine.GameInjuries{Home: injuries("Out", "Out")} // medium

	alerts := engine.Generate([]engine.GameWithPrediction{game}, testPrefs(), testNow)
	if len(alerts) != 3 {
		t.Fatalf("alerts = %d, want 3", len(alerts))
	}
	wantTypes := []engine.AlertType{engine.TypeHighConfidence, engine.TypeInjury, engine.TypeValueBet}
	for i, wt := range wantTypes {
		if alerts[i].Type != wt {
			t.Fatalf("position %d type = %s, want %s", i, alerts[i].Type, wt)
		}
	}
}

func TestGenerateEmptyInputs(t *testing.T) {
	if got := len(engine.Generate(nil, testPrefs(), testNow)); got != 0 {
		t.Errorf("nil games: alerts = %d, want 0", got)
	}

	prefs := testPrefs()
	prefs.Sports = nil
	if got := len(engine.Generate([]engine.GameWithPrediction{testGame()}, prefs, testNow)); got != 0 {
		t.Errorf("empty sport set: alerts = %d, want 0", got)
	}
}

// No factory produces line movement alerts yet; the type is a reserved
// extension point.
func TestGenerateNeverEmitsLineMovement(t *testing.T) {
	game := testGame()
	game.ValueBets = []engine.ValueBet{bet(6, engine.ConfidenceHigh)}
	game.Prediction.Confidence = engine.ConfidenceHigh
	game.Prediction.WinProbability = 80
	game.Injuries = &engine.GameInjuries{Home: injuries("Out", "Out", "Out")}

	prefs := testPrefs()
	prefs.EnableLineMovementAlerts = true

	for _, a := range engine.Generate([]engine.GameWithPrediction{game}, prefs, testNow) {
		if a.Type == engine.TypeLineMovement {
			t.Fatalf("unexpected line movement alert %q", a.ID)
		}
	}
}

func ids(alerts []engine.Alert) []string {
	out := make([]string, len(alerts))
	for i, a := range alerts {
		out[i] = a.ID
	}
	return out
}
