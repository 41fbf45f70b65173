package engine

import (
	"fmt"
	"time"
)

// Value-bet priority tiers, in points of edge. These are intentionally on a
// different scale than the injury tiers; both are preserved as-is from the
// product's original tuning.
const (
	valueBetHighEdge   = 5.0
	valueBetMediumEdge = 4.0
)

// valueBetFactory emits one alert per candidate bet that clears both the
// user's edge threshold and minimum confidence.
type valueBetFactory struct{}

func (valueBetFactory) Type() AlertType { return TypeValueBet }

func (valueBetFactory) Enabled(prefs AlertPreferences) bool {
	return prefs.EnableValueBetAlerts
}

func (valueBetFactory) Derive(game GameWithPrediction, prefs AlertPreferences, now time.Time) []Alert {
	var alerts []Alert
	for _, bet := range game.ValueBets {
		if bet.Edge < prefs.MinEdgeThreshold {
			continue
		}
		if !bet.Confidence.Meets(prefs.MinConfidence) {
			continue
		}

		edge := bet.Edge
		alerts = append(alerts, Alert{
			ID:         AlertID(game.GameID, TypeValueBet, fmt.Sprintf("%s:%s", bet.BetType, bet.BetSide)),
			UserID:     prefs.UserID,
			Type:       TypeValueBet,
			Title:      fmt.Sprintf("Value Bet: %s (%s)", bet.TeamToBet, bet.BetSide),
			Message:    bet.BetDescription,
			GameID:     game.GameID,
			Priority:   valueBetPriority(bet.Edge),
			CreatedAt:  now,
			BetSide:    bet.BetSide,
			Edge:       &edge,
			Confidence: bet.Confidence,
			Sport:      game.Sport,
		})
	}
	return alerts
}

func valueBetPriority(edge float64) Priority {
	switch {
	case edge >= valueBetHighEdge:
		return PriorityHigh
	case edge >= valueBetMediumEdge:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
