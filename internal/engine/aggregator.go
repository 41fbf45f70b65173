package engine

import (
	"sort"
	"time"
)

// Generate derives the full, ordered alert list for one user from a batch of
// games. Games outside the user's sport set are skipped; each enabled
// factory runs over every retained game; the combined list is sorted by
// priority (high first), then newest first.
//
// Every alert in the returned batch carries the same now as its CreatedAt,
// so within one invocation the secondary sort key only matters when the
// result is merged with alerts from earlier batches.
func Generate(games []GameWithPrediction, prefs AlertPreferences, now time.Time) []Alert {
	var enabled []Factory
	for _, f := range Factories() {
		if f.Enabled(prefs) {
			enabled = append(enabled, f)
		}
	}

	var alerts []Alert
	for _, game := range games {
		if !prefs.WantsSport(game.Sport) {
			continue
		}
		for _, f := range enabled {
			alerts = append(alerts, f.Derive(game, prefs, now)...)
		}
	}

	SortAlerts(alerts)
	return alerts
}

// SortAlerts orders alerts in place by priority rank ascending (high first),
// then CreatedAt descending (newest first). The sort is stable, so alerts
// that tie on both keys keep their emission order.
func SortAlerts(alerts []Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		ri, rj := alerts[i].Priority.Rank(), alerts[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return alerts[i].CreatedAt.After(alerts[j].CreatedAt)
	})
}
