package engine_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sharpline/sharpline-alerts/internal/engine"
)

func TestConfidenceMeets(t *testing.T) {
	tests := []struct {
		actual    engine.Confidence
		threshold engine.Confidence
		want      bool
	}{
		{engine.ConfidenceLow, engine.ConfidenceLow, true},
		{engine.ConfidenceMedium, engine.ConfidenceLow, true},
		{engine.ConfidenceHigh, engine.ConfidenceLow, true},
		{engine.ConfidenceLow, engine.ConfidenceMedium, false},
		{engine.ConfidenceMedium, engine.ConfidenceMedium, true},
		{engine.ConfidenceMedium, engine.ConfidenceHigh, false},
		{engine.ConfidenceHigh, engine.ConfidenceHigh, true},
	}

	for _, tt := range tests {
		if got := tt.actual.Meets(tt.threshold); got != tt.want {
			t.Errorf("Meets(%s, %s) = %v, want %v", tt.actual, tt.threshold, got, tt.want)
		}
	}
}

func TestFlexTimeDecoding(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{
			name: "rfc3339 string",
			raw:  `"2026-03-14T18:30:00Z"`,
			want: time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC),
		},
		{
			name: "epoch milliseconds",
			raw:  `1773513000000`,
			want: time.UnixMilli(1773513000000).UTC(),
		},
		{
			name: "null is zero time",
			raw:  `null`,
			want: time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ft engine.FlexTime
			if err := json.Unmarshal([]byte(tt.raw), &ft); err != nil {
				t.Fatalf("unmarshal %s: %v", tt.raw, err)
			}
			if !ft.Time.Equal(tt.want) {
				t.Errorf("decoded %v, want %v", ft.Time, tt.want)
			}
		})
	}
}

func TestFlexTimeRoundTrip(t *testing.T) {
	ft := engine.FlexTime{Time: time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)}
	b, err := json.Marshal(ft)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2026-03-14T18:30:00Z"` {
		t.Errorf("marshaled %s, want RFC3339 string", b)
	}

	var back engine.FlexTime
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal round trip: %v", err)
	}
	if !back.Time.Equal(ft.Time) {
		t.Errorf("round trip %v, want %v", back.Time, ft.Time)
	}
}

func TestFlexTimeRejectsGarbage(t *testing.T) {
	var ft engine.FlexTime
	err := json.Unmarshal([]byte(`"tomorrow-ish"`), &ft)
	if err == nil {
		t.Fatal("expected error for unparseable time string")
	}
	if !strings.Contains(err.Error(), "tomorrow-ish") {
		t.Errorf("error %q should name the bad value", err)
	}
}

func TestAlertJSONTimestampIsRFC3339(t *testing.T) {
	a := engine.Alert{
		ID:        "g1:injury:home",
		Type:      engine.TypeInjury,
		Priority:  engine.PriorityMedium,
		CreatedAt: time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC),
	}
	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"created_at":"2026-03-14T18:30:00Z"`) {
		t.Errorf("alert JSON %s should carry RFC3339 created_at", b)
	}
}
