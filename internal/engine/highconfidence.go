package engine

import (
	"fmt"
	"time"
)

// High-confidence pick gates, in win-probability percentage points.
const (
	pickMinWinProbability  = 65.0
	pickHighWinProbability = 75.0
)

// pickDiscriminator keeps high-confidence alert IDs stable: at most one pick
// alert exists per game.
const pickDiscriminator = "pick"

// highConfidenceFactory fires exactly once for a game whose prediction is
// both high-confidence and at least 65% win probability. This is a
// structural rule: the user's min-confidence and edge thresholds apply only
// to value bets, not here.
type highConfidenceFactory struct{}

func (highConfidenceFactory) Type() AlertType { return TypeHighConfidence }

func (highConfidenceFactory) Enabled(prefs AlertPreferences) bool {
	return prefs.EnableHighConfidenceAlerts
}

func (highConfidenceFactory) Derive(game GameWithPrediction, prefs AlertPreferences, now time.Time) []Alert {
	pred := game.Prediction
	if pred.Confidence != ConfidenceHigh || pred.WinProbability < pickMinWinProbability {
		return nil
	}

	priority := PriorityMedium
	if pred.WinProbability >= pickHighWinProbability {
		priority = PriorityHigh
	}

	return []Alert{{
		ID:     AlertID(game.GameID, TypeHighConfidence, pickDiscriminator),
		UserID: prefs.UserID,
		Type:   TypeHighConfidence,
		Title:  fmt.Sprintf("High-Confidence Pick: %s", pred.PredictedWinner),
		Message: fmt.Sprintf("%.0f%% win probability: %s @ %s",
			pred.WinProbability, game.AwayTeam, game.HomeTeam),
		GameID:     game.GameID,
		Priority:   priority,
		CreatedAt:  now,
		Confidence: pred.Confidence,
		Sport:      game.Sport,
	}}
}
