package engine_test

import (
	"testing"
	"time"

	"github.com/sharpline/sharpline-alerts/internal/engine"
)

func TestRelativeTime(t *testing.T) {
	tests := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{"seconds ago", 30 * time.Second, "Just now"},
		{"just under a minute", 59 * time.Second, "Just now"},
		{"minutes", 5 * time.Minute, "5m ago"},
		{"truncates partial minutes", 5*time.Minute + 45*time.Second, "5m ago"},
		{"just under an hour", 59 * time.Minute, "59m ago"},
		{"hours", 3 * time.Hour, "3h ago"},
		{"just under a day", 23*time.Hour + 59*time.Minute, "23h ago"},
		{"days", 49 * time.Hour, "2d ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.RelativeTime(testNow.Add(-tt.ago), testNow)
			if got != tt.want {
				t.Errorf("RelativeTime(-%v) = %q, want %q", tt.ago, got, tt.want)
			}
		})
	}
}

func TestPriorityDisplayMappings(t *testing.T) {
	if engine.PriorityColor(engine.PriorityHigh) == engine.PriorityColor(engine.PriorityLow) {
		t.Error("high and low priorities must map to distinct colors")
	}
	if engine.PriorityIcon(engine.PriorityHigh) == engine.PriorityIcon(engine.PriorityMedium) {
		t.Error("high and medium priorities must map to distinct icons")
	}

	icons := map[string]bool{}
	for _, at := range []engine.AlertType{engine.TypeValueBet, engine.TypeHighConfidence, engine.TypeLineMovement, engine.TypeInjury} {
		icons[engine.TypeIcon(at)] = true
	}
	if len(icons) != 4 {
		t.Errorf("type icons not distinct across the four types: %d unique", len(icons))
	}
}

func TestGroupByTypeCompleteness(t *testing.T) {
	game := testGame()
	game.ValueBets = []engine.ValueBet{bet(6, engine.ConfidenceHigh), bet(4.5, engine.ConfidenceHigh)}
	game.Prediction.Confidence = engine.ConfidenceHigh
	game.Prediction.WinProbability = 80
	game.Injuries = &engine.GameInjuries{Home: injuries("Out", "Out")}

	alerts := engine.Generate([]engine.GameWithPrediction{game}, testPrefs(), testNow)
	groups := engine.GroupByType(alerts)

	// Flattening the groups reproduces the same multiset of alerts.
	counts := make(map[string]int)
	for _, a := range alerts {
		counts[a.ID]++
	}
	total := 0
	for _, group := range groups {
		for _, a := range group {
			counts[a.ID]--
			total++
		}
	}
	if total != len(alerts) {
		t.Fatalf("flattened groups hold %d alerts, want %d", total, len(alerts))
	}
	for id, n := range counts {
		if n != 0 {
			t.Errorf("alert %q lost or duplicated by grouping (delta %d)", id, n)
		}
	}

	// Relative order within each group is preserved.
	vb := groups[engine.TypeValueBet]
	if len(vb) == 2 && vb[0].Priority.Rank() > vb[1].Priority.Rank() {
		t.Error("value bet group lost its sorted order")
	}
}

func TestFilterBySport(t *testing.T) {
	alerts := []engine.Alert{
		{ID: "a", Sport: engine.SportNBA},
		{ID: "b", Sport: engine.SportNFL},
		{ID: "c", Sport: engine.SportNBA},
	}

	all := engine.FilterBySport(alerts, "all")
	if len(all) != 3 {
		t.Fatalf("filter all: %d alerts, want 3 (pass-through)", len(all))
	}

	nba := engine.FilterBySport(alerts, "nba")
	if len(nba) != 2 {
		t.Fatalf("filter nba: %d alerts, want 2", len(nba))
	}

	// Idempotent: filtering again changes nothing.
	again := engine.FilterBySport(nba, "nba")
	if len(again) != len(nba) {
		t.Errorf("second nba filter: %d alerts, want %d", len(again), len(nba))
	}
}

func TestUnreadCount(t *testing.T) {
	alerts := []engine.Alert{
		{ID: "a", Read: false},
		{ID: "b", Read: true},
		{ID: "c", Read: false},
	}
	if got := engine.UnreadCount(alerts); got != 2 {
		t.Errorf("UnreadCount = %d, want 2", got)
	}
	if got := engine.UnreadCount(nil); got != 0 {
		t.Errorf("UnreadCount(nil) = %d, want 0", got)
	}
}
