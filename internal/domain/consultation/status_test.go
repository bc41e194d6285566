package consultation

import "testing"

func TestStatus_ForwardOnly(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusNotScheduled, StatusScheduled, true},
		{StatusScheduled, StatusLive, true},
		{StatusLive, StatusCompleted, true},
		{StatusScheduled, StatusCompleted, true},
		{StatusScheduled, StatusNotScheduled, false},
		{StatusLive, StatusScheduled, false},
		{StatusCompleted, StatusLive, false},
		{StatusCompleted, StatusCompleted, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanAdvanceTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestStatus_Terminal(t *testing.T) {
	if StatusLive.Terminal() {
		t.Error("live must not be terminal")
	}
	if !StatusCompleted.Terminal() {
		t.Error("completed must be terminal")
	}
}

func TestParseStatus(t *testing.T) {
	if _, ok := ParseStatus("live"); !ok {
		t.Error("expected live to parse")
	}
	if _, ok := ParseStatus("paused"); ok {
		t.Error("unknown status must not parse")
	}
}
