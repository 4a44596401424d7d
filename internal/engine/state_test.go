package engine

import "testing"

func TestState_String(t *testing.T) {
	cases := []struct {
		state State
		want  string
	}{
		{Idle, "Idle"},
		{Ready, "Ready"},
		{Playing, "Playing"},
		{State(99), "Unknown"},
	}
	for _, tc := range cases {
		if got := tc.state.String(); got != tc.want {
			t.Errorf("State(%d).String() = %q, want %q", tc.state, got, tc.want)
		}
	}
}

func TestState_Loaded(t *testing.T) {
	if Idle.Loaded() {
		t.Error("Idle.Loaded() = true")
	}
	if !Ready.Loaded() {
		t.Error("Ready.Loaded() = false")
	}
	if !Playing.Loaded() {
		t.Error("Playing.Loaded() = false")
	}
}
