package model

import (
	"testing"
)

func TestIsCanonicalTransactionID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{name: "ledger id", id: "at1u9zcsqkfataw6mql05ltssyjvz9vk3am5wyxl0fdl2axr8q2fs8s43rw2a", want: true},
		{name: "temporary wallet id", id: "tmp-abc", want: false},
		{name: "uuid handle", id: "4b33077e-88b5-4f21-a5c1-91bb48af6c61", want: false},
		{name: "bare prefix", id: "at1", want: false},
		{name: "prefix with invalid charset", id: "at1OIb", want: false},
		{name: "address, not transaction", id: "aleo1qqqqqqqqqqqqqqqq", want: false},
		{name: "empty", id: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCanonicalTransactionID(tt.id); got != tt.want {
				t.Errorf("IsCanonicalTransactionID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestParseTrackingMode(t *testing.T) {
	tests := []struct {
		value string
		want  TrackingMode
	}{
		{value: "reliability", want: ModeReliability},
		{value: "privacy", want: ModePrivacy},
		{value: "", want: ModePrivacy},
		{value: "garbage", want: ModePrivacy},
		{value: " reliability ", want: ModeReliability},
	}

	for _, tt := range tests {
		if got := ParseTrackingMode(tt.value); got != tt.want {
			t.Errorf("ParseTrackingMode(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestPendingTransactionTerminal(t *testing.T) {
	pending := &PendingTransaction{Status: StatusPending}
	if pending.Terminal() {
		t.Error("pending transaction reported terminal")
	}
	confirmed := &PendingTransaction{Status: StatusConfirmed}
	failed := &PendingTransaction{Status: StatusFailed}
	if !confirmed.Terminal() || !failed.Terminal() {
		t.Error("confirmed/failed transactions must be terminal")
	}
}
