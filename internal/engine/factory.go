package engine

import "time"

// Factory is one stateless derivation rule: it maps a single game plus the
// user's preferences into zero or more alerts. Factories never fail; a game
// that doesn't qualify simply contributes nothing.
//
// New alert types (e.g. line movement, once a market-line history source
// exists) are added as new Factory implementations without touching the
// aggregator.
type Factory interface {
	// Type returns the alert type this factory emits.
	Type() AlertType

	// Enabled reports whether the user has switched this factory on.
	Enabled(prefs AlertPreferences) bool

	// Derive produces the alerts this rule yields for one game. The caller
	// supplies now once per batch so every alert in a batch shares one
	// creation instant.
	Derive(game GameWithPrediction, prefs AlertPreferences, now time.Time) []Alert
}

// Factories returns the full rule set in emission order.
func Factories() []Factory {
	return []Factory{
		valueBetFactory{},
		highConfidenceFactory{},
		injuryFactory{},
	}
}
