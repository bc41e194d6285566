package order

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusAccepted, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusProcessing, false},
		{StatusPending, StatusCompleted, false},
		{StatusAccepted, StatusProcessing, true},
		{StatusAccepted, StatusRejected, true},
		{StatusAccepted, StatusReady, false},
		{StatusProcessing, StatusReady, true},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusCompleted, false},
		{StatusReady, StatusCompleted, true},
		{StatusReady, StatusShipped, true},
		{StatusShipped, StatusCompleted, true},
		{StatusShipped, StatusReady, false},
		{StatusCompleted, StatusPending, false},
		{StatusRejected, StatusAccepted, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusRejected, StatusCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
		if next := AllowedNext(s); len(next) != 0 {
			t.Errorf("%s should have no exits, got %v", s, next)
		}
	}
}

func TestAllowedNextReturnsCopy(t *testing.T) {
	next := AllowedNext(StatusPending)
	if len(next) != 2 {
		t.Fatalf("expected 2 exits from pending, got %d", len(next))
	}
	next[0] = StatusCancelled
	if fresh := AllowedNext(StatusPending); fresh[0] == StatusCancelled {
		t.Fatal("AllowedNext must not expose the internal table")
	}
}

func TestParseStatus(t *testing.T) {
	if s, ok := ParseStatus("shipped"); !ok || s != StatusShipped {
		t.Fatalf("ParseStatus(shipped) = %v, %v", s, ok)
	}
	if _, ok := ParseStatus("delivered"); ok {
		t.Fatal("unknown status must not parse")
	}
}
