package domain

import "testing"

func TestConnectionStatus_Transitions(t *testing.T) {
	cases := []struct {
		from, to ConnectionStatus
		want     bool
	}{
		{ConnectionPending, ConnectionConnected, true},
		{ConnectionPending, ConnectionDisconnected, true},
		{ConnectionPending, ConnectionIgnored, true},
		{ConnectionConnected, ConnectionDisconnected, true},
		{ConnectionConnected, ConnectionPending, false},
		{ConnectionDisconnected, ConnectionConnected, false},
		{ConnectionIgnored, ConnectionConnected, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestConnectionStatus_Terminal(t *testing.T) {
	if ConnectionPending.Terminal() || ConnectionConnected.Terminal() {
		t.Error("pending and connected are not terminal")
	}
	if !ConnectionDisconnected.Terminal() || !ConnectionIgnored.Terminal() {
		t.Error("disconnected and ignored are terminal")
	}
}
