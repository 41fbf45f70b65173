// Package engine derives user-facing alerts from game predictions and market
// value bets. It is a pure library: no I/O, no persisted state, no failure
// path — every invocation is a total function over in-memory values.
//
// Pipeline: filter games by sport preference → run each enabled factory per
// game → concatenate → sort by priority then recency.
package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Enumerations
// --------------------------------------------------------------------------

// Sport identifies a supported league.
type Sport string

const (
	SportNBA Sport = "nba"
	SportNFL Sport = "nfl"
)

// Confidence is the three-level certainty tag attached to predictions and
// value bets.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Ordinal maps a confidence level onto a total order: low < medium < high.
// Unknown values rank below low.
func (c Confidence) Ordinal() int {
	switch c {
	case ConfidenceLow:
		return 0
	case ConfidenceMedium:
		return 1
	case ConfidenceHigh:
		return 2
	default:
		return -1
	}
}

// Meets reports whether c is at least as confident as threshold.
func (c Confidence) Meets(threshold Confidence) bool {
	return c.Ordinal() >= threshold.Ordinal()
}

// Priority is the urgency tier of an alert. It is computed per alert type
// and is independent of confidence.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns the sort rank of a priority: high sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// AlertType discriminates the kinds of alerts the engine can emit.
// TypeLineMovement is reserved: the preference toggle and type exist, but no
// factory produces it until a market-line history source is wired in.
type AlertType string

const (
	TypeValueBet       AlertType = "value_bet"
	TypeHighConfidence AlertType = "high_confidence"
	TypeLineMovement   AlertType = "line_movement"
	TypeInjury         AlertType = "injury"
)

// BetSide is the side of a market a value bet recommends.
type BetSide string

const (
	SideUnderdog BetSide = "underdog"
	SideFavorite BetSide = "favorite"
	SideOver     BetSide = "over"
	SideUnder    BetSide = "under"
)

// FavoredSide tags which side of a matchup a prediction factor favors.
type FavoredSide string

const (
	FavorsHome    FavoredSide = "home"
	FavorsAway    FavoredSide = "away"
	FavorsNeutral FavoredSide = "neutral"
)

// --------------------------------------------------------------------------
// Input contracts (consumed read-only from the prediction source)
// --------------------------------------------------------------------------

// PowerRatings holds the model's strength scores for both sides.
type PowerRatings struct {
	Home         float64 `json:"home"`
	Away         float64 `json:"away"`
	Differential float64 `json:"differential"` // home - away
}

// PredictionFactor is one named contributor to a prediction, with a signed
// impact and the side it favors.
type PredictionFactor struct {
	Name        string      `json:"name"`
	Impact      float64     `json:"impact"`
	FavoredTeam FavoredSide `json:"favored_team"`
}

// GamePrediction is the model output for a single game. Negative spread
// means the home team is favored.
type GamePrediction struct {
	PredictedWinner    string             `json:"predicted_winner"`
	PredictedSpread    float64            `json:"predicted_spread"`
	PredictedTotal     float64            `json:"predicted_total"`
	PredictedHomeScore float64            `json:"predicted_home_score"`
	PredictedAwayScore float64            `json:"predicted_away_score"`
	WinProbability     float64            `json:"win_probability"` // 0-100
	Confidence         Confidence         `json:"confidence"`
	PowerRatings       PowerRatings       `json:"power_ratings"`
	Factors            []PredictionFactor `json:"factors,omitempty"`
}

// ValueBet is a market side flagged as mispriced relative to the model.
// Edge is non-negative, in points of disagreement with the posted line.
type ValueBet struct {
	BetType        string     `json:"bet_type"`
	BetSide        BetSide    `json:"bet_side"`
	TeamToBet      string     `json:"team_to_bet"`
	Edge           float64    `json:"edge"`
	Confidence     Confidence `json:"confidence"`
	Recommendation string     `json:"recommendation"`
	BetDescription string     `json:"bet_description"`
	Explanation    string     `json:"explanation,omitempty"`
}

// InjuryReport is one player's status from the injury feed. Status is free
// text; only "Out" and "Doubtful" are significant to the engine.
type InjuryReport struct {
	PlayerName string `json:"player_name"`
	Status     string `json:"status"`
}

// GameInjuries holds per-side injury lists for a game.
type GameInjuries struct {
	Home []InjuryReport `json:"home,omitempty"`
	Away []InjuryReport `json:"away,omitempty"`
}

// GameWithPrediction is the engine's input unit: one game bundled with its
// prediction, candidate value bets, and optional injury reports.
type GameWithPrediction struct {
	GameID     string         `json:"game_id"`
	HomeTeam   string         `json:"home_team"`
	AwayTeam   string         `json:"away_team"`
	GameTime   FlexTime       `json:"game_time"`
	Sport      Sport          `json:"sport"`
	Prediction GamePrediction `json:"prediction"`
	ValueBets  []ValueBet     `json:"value_bets,omitempty"`
	Injuries   *GameInjuries  `json:"injuries,omitempty"`
}

// AlertPreferences is one user's alerting configuration.
type AlertPreferences struct {
	UserID                     string     `json:"user_id"`
	EnableValueBetAlerts       bool       `json:"enable_value_bet_alerts"`
	EnableHighConfidenceAlerts bool       `json:"enable_high_confidence_alerts"`
	EnableLineMovementAlerts   bool       `json:"enable_line_movement_alerts"`
	EnableInjuryAlerts         bool       `json:"enable_injury_alerts"`
	MinEdgeThreshold           float64    `json:"min_edge_threshold"`
	MinConfidence              Confidence `json:"min_confidence"`
	Sports                     []Sport    `json:"sports"`
}

// WantsSport reports whether the user's sport set includes s.
func (p AlertPreferences) WantsSport(s Sport) bool {
	for _, want := range p.Sports {
		if want == s {
			return true
		}
	}
	return false
}

// --------------------------------------------------------------------------
// Output contract
// --------------------------------------------------------------------------

// Alert is a single derived notification. CreatedAt is canonical time.Time
// in memory; it serializes to RFC3339 only at the JSON boundary.
type Alert struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      AlertType `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	GameID    string    `json:"game_id"`
	Priority  Priority  `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`

	// Type-specific optional fields.
	BetSide    BetSide    `json:"bet_side,omitempty"`
	Edge       *float64   `json:"edge,omitempty"`
	Confidence Confidence `json:"confidence,omitempty"`
	Sport      Sport      `json:"sport,omitempty"`
}

// AlertID builds a structurally unique identity for an alert within one
// batch: game + type + a per-type discriminator (bet type/side for value
// bets, side for injuries, a constant for picks). No wall-clock component,
// so re-deriving the same batch yields the same IDs.
func AlertID(gameID string, alertType AlertType, discriminator string) string {
	return fmt.Sprintf("%s:%s:%s", gameID, alertType, discriminator)
}

// --------------------------------------------------------------------------
// FlexTime — tolerant timestamp decoding at the JSON boundary
// --------------------------------------------------------------------------

// FlexTime is a time.Time that unmarshals from either an RFC3339 string or
// an epoch-milliseconds number. Upstream feeds disagree on representation;
// normalizing here keeps every in-memory consumer on plain time.Time.
type FlexTime struct {
	time.Time
}

// UnmarshalJSON accepts RFC3339 strings and epoch-millisecond numbers.
func (t *FlexTime) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		t.Time = time.Time{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("parse game time %q: %w", raw, err)
		}
		t.Time = parsed
		return nil
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("parse game time %s: %w", s, err)
	}
	t.Time = time.UnixMilli(ms).UTC()
	return nil
}

// MarshalJSON always emits RFC3339.
func (t FlexTime) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}
