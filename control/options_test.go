package control_test

import (
	"testing"

	"github.com/momentics/varstream/control"
)

func TestDefaults(t *testing.T) {
	opts, err := control.FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if len(opts.Variables) != 0 {
		t.Errorf("default variables %v, want empty (all)", opts.Variables)
	}
	if opts.Skip != 0 {
		t.Errorf("default skip %d, want 0", opts.Skip)
	}
	if !opts.Strict {
		t.Error("strict checking disabled by default")
	}
	if !opts.Enabled {
		t.Error("sending disabled by default")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("BRIDGE_VARS", "level,phase")
	t.Setenv("BRIDGE_SKIP", "2")
	t.Setenv("BRIDGE_SOURCE_ID", "session-1")
	t.Setenv("BRIDGE_RT_STRICT", "false")
	t.Setenv("BRIDGE_ENABLED", "false")

	opts, err := control.FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if len(opts.Variables) != 2 || opts.Variables[0] != "level" || opts.Variables[1] != "phase" {
		t.Errorf("variables %v", opts.Variables)
	}
	if opts.Skip != 2 || opts.SourceID != "session-1" || opts.Strict || opts.Enabled {
		t.Errorf("options %+v", opts)
	}
}

func TestStreamRate(t *testing.T) {
	cases := []struct {
		rate float64
		frag uint
		skip uint
		want float64
	}{
		{48000, 64, 0, 750},
		{48000, 64, 2, 250},
		{44100, 441, 0, 100},
		{48000, 0, 0, 0},
	}
	for _, tc := range cases {
		if got := control.StreamRate(tc.rate, tc.frag, tc.skip); got != tc.want {
			t.Errorf("StreamRate(%v, %d, %d) = %v, want %v", tc.rate, tc.frag, tc.skip, got, tc.want)
		}
	}
}
