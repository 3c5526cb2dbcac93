package domain

import "testing"

func TestStatusInfoCoversKnownStatuses(t *testing.T) {
	statuses := []string{OrderPending, OrderConfirmed, OrderShipping, OrderCompleted, OrderCancelled}
	seen := map[StatusDisplay]string{}
	for _, status := range statuses {
		d := StatusInfo(status)
		if d.Label == "" || d.Color == "" || d.Icon == "" {
			t.Fatalf("incomplete display for %s: %+v", status, d)
		}
		if prev, dup := seen[d]; dup {
			t.Fatalf("statuses %s and %s share display %+v", prev, status, d)
		}
		seen[d] = status
	}
}

func TestStatusInfoUnknownFallsBackToNeutral(t *testing.T) {
	d := StatusInfo("REFUND_REQUESTED")
	if d.Color != "gray" || d.Icon != "circle" {
		t.Fatalf("expected neutral fallback, got %+v", d)
	}
	if d.Label != "REFUND_REQUESTED" {
		t.Fatalf("fallback label should echo the raw status, got %q", d.Label)
	}
}

func TestCanCancel(t *testing.T) {
	cases := map[string]bool{
		OrderPending:   true,
		OrderConfirmed: true,
		OrderShipping:  false,
		OrderCompleted: false,
		OrderCancelled: false,
		"UNKNOWN":      false,
	}
	for status, want := range cases {
		if got := CanCancel(status); got != want {
			t.Fatalf("CanCancel(%s) = %v, want %v", status, got, want)
		}
	}
}
