// File: bridge/controller.go
// Author: momentics <momentics@gmail.com>
//
// Bridge controller: owns the active configuration, the lock-free
// hand-off between the configuration path and the real-time path, and
// the once-per-activation real-time safety check.

package bridge

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"

	"github.com/momentics/varstream/api"
	"github.com/momentics/varstream/rt"
)

const (
	// enumerationStart is the initial auto-discovery buffer size; it
	// doubles until the name list fits.
	enumerationStart = 512
	// maxEnumeration caps the auto-discovery buffer. Above it the
	// caller must select an explicit variable subset.
	maxEnumeration = 1 << 20 // 1 MiB
)

// retiredConfig is a superseded configuration awaiting reclamation,
// tagged with the tick epoch observed at retirement.
type retiredConfig struct {
	cfg   *Config
	epoch uint64
}

// Controller bridges a variable space to an outbound stream transport.
//
// Activate, Deactivate, SetStrict and Close belong to the configuration
// path and may run on any thread. Tick belongs to the real-time path:
// one dedicated thread, once per processing cycle, no blocking and no
// allocation beyond the one-time scheduling probe.
type Controller struct {
	space     api.VarSpace
	transport api.Transport
	log       *slog.Logger

	// active is the lock-free hand-off point. The configuration path
	// swaps in fully built configurations; the real-time path loads
	// the pointer once per tick.
	active atomic.Pointer[Config]

	running  atomic.Bool
	enabled  atomic.Bool
	strict   atomic.Bool
	firstRun atomic.Bool

	// epoch counts started ticks. A retired configuration is safe to
	// close once the epoch has advanced past its retirement epoch:
	// the single real-time thread has since returned from any tick
	// that could still hold the old pointer.
	epoch atomic.Uint64

	mu      sync.Mutex // configuration path state below
	locked  bool
	retired *queue.Queue
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the configuration-path logger. The real-time path
// never logs.
func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithStrict sets the initial strict real-time checking flag.
func WithStrict(strict bool) Option {
	return func(c *Controller) { c.strict.Store(strict) }
}

// WithEnabled sets the initial enable gate.
func WithEnabled(enabled bool) Option {
	return func(c *Controller) { c.enabled.Store(enabled) }
}

// NewController creates an inactive controller. Strict checking and the
// enable gate default to on, matching the host plugin defaults.
func NewController(space api.VarSpace, tr api.Transport, opts ...Option) *Controller {
	c := &Controller{
		space:     space,
		transport: tr,
		log:       slog.Default(),
		retired:   queue.New(),
	}
	c.enabled.Store(true)
	c.strict.Store(true)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Activate builds a brand-new configuration for names and atomically
// installs it, superseding any prior one. An empty names list selects
// every variable currently present in the space. On failure nothing is
// installed: the previously active configuration and the input lock
// state are left untouched.
//
// While active, the variable list and the strict flag are locked
// against mutation.
func (c *Controller) Activate(names []string, skip uint, sourceID string, sampleRate float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	wasLocked := c.locked
	c.locked = true

	resolved := slices.Clone(names)
	if len(resolved) == 0 {
		var err error
		if resolved, err = c.discoverNames(); err != nil {
			c.locked = wasLocked
			return err
		}
	}

	cfg, err := newConfig(c.space, c.transport, resolved, skip, sourceID, sampleRate)
	if err != nil {
		c.locked = wasLocked
		return fmt.Errorf("activate bridge: %w", err)
	}

	old := c.active.Swap(cfg)
	c.firstRun.Store(true)
	c.running.Store(true)
	if old != nil {
		c.retired.Add(retiredConfig{cfg: old, epoch: c.epoch.Load()})
	}
	c.reclaimLocked(false)

	c.log.Info("bridge activated",
		"variables", len(resolved),
		"skip", skip,
		"source_id", sourceID,
		"sample_rate", sampleRate)
	return nil
}

// Deactivate unlocks the configuration inputs and resets the first-run
// flag. The active configuration is retained until the next activation
// or Close; retired configurations are reclaimed now, since ticking has
// stopped.
func (c *Controller) Deactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running.Store(false)
	c.locked = false
	c.firstRun.Store(true)
	c.reclaimLocked(true)
	c.log.Info("bridge deactivated")
}

// Close tears the bridge down, releasing the active configuration and
// every retired one. Never concurrent with Tick: the host lifecycle
// guarantees ticking has stopped before teardown.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running.Store(false)
	c.locked = false
	c.firstRun.Store(true)
	var errs []error
	if cfg := c.active.Swap(nil); cfg != nil {
		errs = append(errs, cfg.Close())
	}
	for c.retired.Length() > 0 {
		rc := c.retired.Remove().(retiredConfig)
		errs = append(errs, rc.cfg.Close())
	}
	return errors.Join(errs...)
}

// Tick runs one processing cycle on the real-time path: the
// once-per-activation scheduling check, the enable gate, then the
// active configuration's reconciliation and decimation step.
//
// api.ErrRealTimeViolation is fatal; there is no safe state to resume
// from and the caller must abort the processing instance.
func (c *Controller) Tick() error {
	if !c.running.Load() {
		return api.ErrInactive
	}
	c.epoch.Add(1)
	if c.firstRun.CompareAndSwap(true, false) && c.strict.Load() {
		isRT, err := rt.CallingThreadIsRealTime()
		if err != nil {
			return err
		}
		if isRT {
			return api.ErrRealTimeViolation
		}
	}
	if !c.enabled.Load() {
		return nil
	}
	cfg := c.active.Load()
	if cfg == nil {
		return api.ErrInactive
	}
	return cfg.process()
}

// SetEnabled toggles the tick gate. Toggling never builds or destroys
// streams; a disabled tick is a complete no-op.
func (c *Controller) SetEnabled(enabled bool) {
	c.enabled.Store(enabled)
}

// Enabled reports the tick gate state.
func (c *Controller) Enabled() bool { return c.enabled.Load() }

// SetStrict sets the strict real-time checking flag. Fails with
// api.ErrLocked while the bridge is active.
func (c *Controller) SetStrict(strict bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return api.ErrLocked
	}
	c.strict.Store(strict)
	return nil
}

// Strict reports the strict real-time checking flag.
func (c *Controller) Strict() bool { return c.strict.Load() }

// Active reports whether the controller is between Activate and
// Deactivate.
func (c *Controller) Active() bool { return c.running.Load() }

// ActiveNames returns the bridged variable names of the currently
// installed configuration, or nil.
func (c *Controller) ActiveNames() []string {
	cfg := c.active.Load()
	if cfg == nil {
		return nil
	}
	return cfg.Names()
}

// discoverNames enumerates every variable currently present in the
// space, growing the buffer until the space-separated list fits.
// Requires c.mu.
func (c *Controller) discoverNames() ([]string, error) {
	size := enumerationStart
	for {
		size <<= 1
		if size > maxEnumeration {
			return nil, fmt.Errorf("%w: select an explicit variable subset", api.ErrEnumerationTooLarge)
		}
		buf := make([]byte, size)
		n, err := c.space.EnumerateNames(buf)
		if errors.Is(err, api.ErrBufferTooSmall) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("enumerate variable names: %w", err)
		}
		return strings.Fields(string(buf[:n])), nil
	}
}

// reclaimLocked closes retired configurations whose retirement epoch
// has been passed by a later tick, or all of them when force is set.
// Requires c.mu; runs on the configuration path only.
func (c *Controller) reclaimLocked(force bool) {
	now := c.epoch.Load()
	for c.retired.Length() > 0 {
		rc := c.retired.Peek().(retiredConfig)
		if !force && now <= rc.epoch {
			return
		}
		c.retired.Remove()
		if err := rc.cfg.Close(); err != nil {
			c.log.Warn("closing superseded configuration", "error", err)
		}
	}
}
