package engine

import (
	"fmt"
	"strings"
	"time"
)

// Injury alert tiers, in count of significant injuries on one side.
const (
	injuryAlertMinCount  = 2
	injuryHighCount      = 3
	injuryNamesInMessage = 3
)

// Only these exact statuses count toward an injury alert; every other
// status string from the feed is inert.
func injuryStatusSignificant(status string) bool {
	return status == "Out" || status == "Doubtful"
}

// injuryFactory emits up to two alerts per game: home and away sides are
// evaluated independently, each firing when it has two or more players Out
// or Doubtful.
type injuryFactory struct{}

func (injuryFactory) Type() AlertType { return TypeInjury }

func (injuryFactory) Enabled(prefs AlertPreferences) bool {
	return prefs.EnableInjuryAlerts
}

func (injuryFactory) Derive(game GameWithPrediction, prefs AlertPreferences, now time.Time) []Alert {
	if game.Injuries == nil {
		return nil
	}

	var alerts []Alert
	if a, ok := sideInjuryAlert(game, prefs, now, FavorsHome, game.HomeTeam, game.Injuries.Home); ok {
		alerts = append(alerts, a)
	}
	if a, ok := sideInjuryAlert(game, prefs, now, FavorsAway, game.AwayTeam, game.Injuries.Away); ok {
		alerts = append(alerts, a)
	}
	return alerts
}

func sideInjuryAlert(game GameWithPrediction, prefs AlertPreferences, now time.Time, side FavoredSide, team string, reports []InjuryReport) (Alert, bool) {
	var significant []InjuryReport
	for _, r := range reports {
		if injuryStatusSignificant(r.Status) {
			significant = append(significant, r)
		}
	}
	if len(significant) < injuryAlertMinCount {
		return Alert{}, false
	}

	priority := PriorityMedium
	if len(significant) >= injuryHighCount {
		priority = PriorityHigh
	}

	names := make([]string, 0, injuryNamesInMessage)
	for i, r := range significant {
		if i >= injuryNamesInMessage {
			break
		}
		names = append(names, r.PlayerName)
	}

	return Alert{
		ID:     AlertID(game.GameID, TypeInjury, string(side)),
		UserID: prefs.UserID,
		Type:   TypeInjury,
		Title:  fmt.Sprintf("Injury Watch: %s", team),
		Message: fmt.Sprintf("%d key players out or doubtful: %s",
			len(significant), strings.Join(names, ", ")),
		GameID:    game.GameID,
		Priority:  priority,
		CreatedAt: now,
		Sport:     game.Sport,
	}, true
}
