// File: control/options.go
// Author: momentics <momentics@gmail.com>
//
// Host-glue configuration for the bridge: the inputs recognized by the
// core, with environment parsing and the defaults of the original host
// plugin (strict checking and sending enabled, no decimation).

package control

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Options are the configuration inputs consumed by the bridge core.
type Options struct {
	// Variables selects the bridged variable names; empty selects
	// every variable present at activation.
	Variables []string `env:"BRIDGE_VARS" envSeparator:","`
	// Skip is the decimation count: transmit every (Skip+1)-th cycle.
	Skip uint `env:"BRIDGE_SKIP" envDefault:"0"`
	// SourceID is the stable outbound stream identity; empty falls
	// back to content-derived identity with no session recovery.
	SourceID string `env:"BRIDGE_SOURCE_ID"`
	// Strict aborts processing when ticked on a real-time thread.
	Strict bool `env:"BRIDGE_RT_STRICT" envDefault:"true"`
	// Enabled gates tick processing without touching streams.
	Enabled bool `env:"BRIDGE_ENABLED" envDefault:"true"`
}

// FromEnv parses Options from the process environment.
func FromEnv() (Options, error) {
	var o Options
	if err := env.Parse(&o); err != nil {
		return Options{}, fmt.Errorf("control: parse environment: %w", err)
	}
	return o, nil
}

// StreamRate converts the host's audio sample rate and cycle size into
// the nominal outbound sample rate of a bridged stream: one push per
// (skip+1) cycles of fragSize frames each.
func StreamRate(sampleRate float64, fragSize, skip uint) float64 {
	if fragSize == 0 {
		return 0
	}
	return sampleRate / float64(fragSize) / float64(skip+1)
}
