// File: bridge/config.go
// Author: momentics <momentics@gmail.com>
//
// One bridge configuration: the complete name -> adapter mapping plus
// decimation state. Built from scratch on the configuration path,
// reconciled and pushed on the real-time path, closed on the
// configuration path when superseded.

package bridge

import (
	"errors"
	"fmt"

	"github.com/momentics/varstream/adapter"
	"github.com/momentics/varstream/api"
)

// Config maps variable names to stream adapters. Apart from adapter
// repair during reconciliation and the decimation counter it is
// immutable after construction and owned by exactly one Controller.
type Config struct {
	space      api.VarSpace
	transport  api.Transport
	sampleRate float64
	sourceID   string

	// names fixes the iteration order for reconciliation and push for
	// this configuration's lifetime.
	names    []string
	adapters map[string]adapter.Adapter

	skip          uint
	skipRemaining uint
}

// newConfig builds the full adapter set for names. Construction is all
// or nothing: on any failure every adapter built so far is closed and
// the error is returned.
func newConfig(space api.VarSpace, tr api.Transport, names []string, skip uint, sourceID string, sampleRate float64) (*Config, error) {
	c := &Config{
		space:      space,
		transport:  tr,
		sampleRate: sampleRate,
		sourceID:   sourceID,
		adapters:   make(map[string]adapter.Adapter, len(names)),
		skip:       skip,
		// skipRemaining starts at zero: the first tick after
		// activation always pushes.
		skipRemaining: 0,
	}
	for _, name := range names {
		if _, dup := c.adapters[name]; dup {
			continue
		}
		desc, err := space.Lookup(name)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("variable %q: %w", name, err), c.Close())
		}
		ad, err := adapter.Build(tr, name, desc, sampleRate, sourceID)
		if err != nil {
			return nil, errors.Join(err, c.Close())
		}
		c.names = append(c.names, name)
		c.adapters[name] = ad
	}
	return c, nil
}

// reconcile repairs every adapter against the live variable space:
// type tag changed or implied channel count changed -> replace the
// adapter under the same name; only the address changed -> rebind.
// Both actions are idempotent; with an unchanged descriptor the whole
// pass is a no-op. A vanished variable aborts the cycle.
func (c *Config) reconcile() error {
	for _, name := range c.names {
		ad := c.adapters[name]
		desc, err := c.space.Lookup(name)
		if err != nil {
			return fmt.Errorf("variable %q vanished after activation: %w", name, err)
		}
		if desc.Tag != ad.Tag() {
			if err := c.replace(name, ad, desc); err != nil {
				return err
			}
			continue
		}
		if ad.ChannelCount() != desc.Tag.ChannelCount(desc.Elements) {
			if err := c.replace(name, ad, desc); err != nil {
				return err
			}
			continue
		}
		if ad.Address() != desc.Data {
			ad.Rebind(desc.Data)
		}
	}
	return nil
}

func (c *Config) replace(name string, old adapter.Adapter, desc api.ValueDescriptor) error {
	if err := old.Close(); err != nil {
		return fmt.Errorf("close stale stream %q: %w", name, err)
	}
	ad, err := adapter.Build(c.transport, name, desc, c.sampleRate, c.sourceID)
	if err != nil {
		return err
	}
	c.adapters[name] = ad
	return nil
}

// process runs one cycle: reconcile every adapter first so all of them
// observe a consistent view of the current host state, then either push
// one sample per adapter or burn one decimation credit. Reconciling on
// skipped cycles too guarantees a later transmitted cycle never
// serializes through a half-updated adapter.
func (c *Config) process() error {
	if err := c.reconcile(); err != nil {
		return err
	}
	if c.skipRemaining == 0 {
		for _, name := range c.names {
			if err := c.adapters[name].Push(); err != nil {
				return fmt.Errorf("push %q: %w", name, err)
			}
		}
		c.skipRemaining = c.skip
		return nil
	}
	c.skipRemaining--
	return nil
}

// Names returns the bridged variable names in iteration order.
func (c *Config) Names() []string {
	return append([]string(nil), c.names...)
}

// Close releases every adapter's outbound stream. Never called on the
// real-time path.
func (c *Config) Close() error {
	var errs []error
	for _, name := range c.names {
		if err := c.adapters[name].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close stream %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
