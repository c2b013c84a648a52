package bridge_test

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/momentics/varstream/api"
	"github.com/momentics/varstream/bridge"
	"github.com/momentics/varstream/fake"
	"github.com/momentics/varstream/varspace"
)

func bindAll(t *testing.T, space *varspace.Space, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := space.BindFloat32(n, make([]float32, 2)); err != nil {
			t.Fatal(err)
		}
	}
}

func TestAutoDiscovery(t *testing.T) {
	space := varspace.New()
	bindAll(t, space, "alpha", "beta", "gamma")
	tr := fake.NewTransport()
	ctl := bridge.NewController(space, tr)
	defer ctl.Close()

	if err := ctl.Activate(nil, 0, "", 100); err != nil {
		t.Fatal(err)
	}
	got := ctl.ActiveNames()
	sort.Strings(got)
	want := []string{"alpha", "beta", "gamma"}
	if len(got) != len(want) {
		t.Fatalf("bridged %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bridged %v, want %v", got, want)
		}
	}
	if tr.DeclareCount() != 3 {
		t.Errorf("%d streams declared, want 3", tr.DeclareCount())
	}
}

func TestAutoDiscoveryGrowsEnumerationBuffer(t *testing.T) {
	// Enough long names that the space-separated list exceeds several
	// enumeration buffer sizes, forcing the retry-with-larger-buffer
	// loop through multiple rounds before it fits.
	space := varspace.New()
	want := make([]string, 200)
	for i := range want {
		want[i] = fmt.Sprintf("chan_%03d_%s", i, strings.Repeat("v", 20))
	}
	bindAll(t, space, want...)

	tr := fake.NewTransport()
	ctl := bridge.NewController(space, tr)
	defer ctl.Close()

	if err := ctl.Activate(nil, 0, "", 100); err != nil {
		t.Fatal(err)
	}
	got := ctl.ActiveNames()
	if len(got) != len(want) {
		t.Fatalf("discovered %d names, want %d", len(got), len(want))
	}
	sort.Strings(got)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("name %d: got %q, want %q", i, got[i], want[i])
		}
	}
	if tr.DeclareCount() != len(want) {
		t.Errorf("%d streams declared, want %d", tr.DeclareCount(), len(want))
	}
}

func TestTickRequiresActivation(t *testing.T) {
	space := varspace.New()
	bindAll(t, space, "x")
	ctl := bridge.NewController(space, fake.NewTransport())
	defer ctl.Close()

	if err := ctl.Tick(); !errors.Is(err, api.ErrInactive) {
		t.Errorf("tick before activate: got %v, want ErrInactive", err)
	}
	if err := ctl.Activate([]string{"x"}, 0, "", 100); err != nil {
		t.Fatal(err)
	}
	if err := ctl.Tick(); err != nil {
		t.Fatal(err)
	}
	ctl.Deactivate()
	if err := ctl.Tick(); !errors.Is(err, api.ErrInactive) {
		t.Errorf("tick after deactivate: got %v, want ErrInactive", err)
	}
}

func TestInputsLockedWhileActive(t *testing.T) {
	space := varspace.New()
	bindAll(t, space, "x")
	ctl := bridge.NewController(space, fake.NewTransport())
	defer ctl.Close()

	if err := ctl.Activate([]string{"x"}, 0, "", 100); err != nil {
		t.Fatal(err)
	}
	if err := ctl.SetStrict(false); !errors.Is(err, api.ErrLocked) {
		t.Errorf("SetStrict while active: got %v, want ErrLocked", err)
	}
	ctl.Deactivate()
	if err := ctl.SetStrict(false); err != nil {
		t.Errorf("SetStrict after deactivate: %v", err)
	}
}

func TestActivateFailureKeepsPreviousConfiguration(t *testing.T) {
	space := varspace.New()
	bindAll(t, space, "x")
	tr := fake.NewTransport()
	ctl := bridge.NewController(space, tr)
	defer ctl.Close()

	if err := ctl.Activate([]string{"x"}, 0, "", 100); err != nil {
		t.Fatal(err)
	}
	out := tr.Outlet("x")

	if err := ctl.Activate([]string{"x", "ghost"}, 0, "", 100); !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	// The previous configuration stays installed and functional.
	if err := ctl.Tick(); err != nil {
		t.Fatal(err)
	}
	if out.PushCount() != 1 {
		t.Errorf("previous configuration broken after failed activation: %d pushes", out.PushCount())
	}
	if out.Closed() {
		t.Error("previous configuration's stream was closed by failed activation")
	}
}

func TestActivateFailureRestoresLockState(t *testing.T) {
	space := varspace.New()
	ctl := bridge.NewController(space, fake.NewTransport())
	defer ctl.Close()

	if err := ctl.Activate([]string{"ghost"}, 0, "", 100); !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	// Inputs must not remain locked after a failed first activation.
	if err := ctl.SetStrict(false); err != nil {
		t.Errorf("SetStrict after failed activation: %v", err)
	}
}

func TestEnableGate(t *testing.T) {
	space := varspace.New()
	bindAll(t, space, "x")
	tr := fake.NewTransport()
	ctl := bridge.NewController(space, tr)
	defer ctl.Close()

	if err := ctl.Activate([]string{"x"}, 0, "", 100); err != nil {
		t.Fatal(err)
	}
	declared := tr.DeclareCount()

	ctl.SetEnabled(false)
	for i := 0; i < 3; i++ {
		if err := ctl.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	if got := tr.Outlet("x").PushCount(); got != 0 {
		t.Errorf("disabled ticks pushed %d samples", got)
	}

	ctl.SetEnabled(true)
	if err := ctl.Tick(); err != nil {
		t.Fatal(err)
	}
	if got := tr.Outlet("x").PushCount(); got != 1 {
		t.Errorf("re-enabled tick pushed %d samples, want 1", got)
	}
	// Toggling the gate never creates or destroys streams.
	if tr.DeclareCount() != declared {
		t.Errorf("enable toggle changed declarations: %d -> %d", declared, tr.DeclareCount())
	}
}

func TestReactivationReplacesConfiguration(t *testing.T) {
	space := varspace.New()
	bindAll(t, space, "x", "y")
	tr := fake.NewTransport()
	ctl := bridge.NewController(space, tr)
	defer ctl.Close()

	if err := ctl.Activate([]string{"x"}, 0, "", 100); err != nil {
		t.Fatal(err)
	}
	if err := ctl.Activate([]string{"y"}, 0, "", 100); err != nil {
		t.Fatal(err)
	}
	names := ctl.ActiveNames()
	if len(names) != 1 || names[0] != "y" {
		t.Errorf("active names after reactivation: %v, want [y]", names)
	}
}

func TestDeferredReclamation(t *testing.T) {
	space := varspace.New()
	bindAll(t, space, "x")
	tr := fake.NewTransport()
	ctl := bridge.NewController(space, tr)
	defer ctl.Close()

	if err := ctl.Activate([]string{"x"}, 0, "", 100); err != nil {
		t.Fatal(err)
	}
	first := tr.Outlet("x")
	if err := ctl.Tick(); err != nil {
		t.Fatal(err)
	}

	// Supersede the first configuration. No tick has started since its
	// retirement, so it must not be reclaimed yet.
	if err := ctl.Activate([]string{"x"}, 0, "", 100); err != nil {
		t.Fatal(err)
	}
	second := tr.Outlet("x")
	if first.Closed() {
		t.Fatal("superseded configuration closed while the real-time path could still hold it")
	}

	// A tick completes on the new configuration; the next pass over the
	// retirement queue may now close the first one.
	if err := ctl.Tick(); err != nil {
		t.Fatal(err)
	}
	if err := ctl.Activate([]string{"x"}, 0, "", 100); err != nil {
		t.Fatal(err)
	}
	if !first.Closed() {
		t.Error("superseded configuration never reclaimed")
	}
	if second.Closed() {
		t.Error("freshly superseded configuration reclaimed too early")
	}

	ctl.Deactivate()
	if !second.Closed() {
		t.Error("deactivation did not reclaim retired configurations")
	}
}

func TestStrictCheckPassesOnNormalThread(t *testing.T) {
	space := varspace.New()
	bindAll(t, space, "x")
	ctl := bridge.NewController(space, fake.NewTransport(), bridge.WithStrict(true))
	defer ctl.Close()

	if err := ctl.Activate([]string{"x"}, 0, "", 100); err != nil {
		t.Fatal(err)
	}
	// Test goroutines run under normal scheduling; the one-time check
	// must pass and ticking proceeds.
	for i := 0; i < 3; i++ {
		if err := ctl.Tick(); err != nil {
			t.Fatal(err)
		}
	}
}

// shortSpace reports every enumeration buffer as too small, simulating
// a variable space whose name list exceeds any cap.
type shortSpace struct{}

func (shortSpace) Lookup(string) (api.ValueDescriptor, error) {
	return api.ValueDescriptor{}, api.ErrNotFound
}

func (shortSpace) EnumerateNames([]byte) (int, error) {
	return 0, api.ErrBufferTooSmall
}

func TestEnumerationTooLarge(t *testing.T) {
	ctl := bridge.NewController(shortSpace{}, fake.NewTransport())
	defer ctl.Close()

	if err := ctl.Activate(nil, 0, "", 100); !errors.Is(err, api.ErrEnumerationTooLarge) {
		t.Fatalf("got %v, want ErrEnumerationTooLarge", err)
	}
	if err := ctl.SetStrict(false); err != nil {
		t.Errorf("inputs still locked after failed discovery: %v", err)
	}
}

// brokenSpace reports an invalid handle, which must surface as-is
// rather than as a too-small retry.
type brokenSpace struct{ shortSpace }

func (brokenSpace) EnumerateNames([]byte) (int, error) {
	return 0, api.ErrInvalidHandle
}

func TestEnumerationInvalidHandle(t *testing.T) {
	ctl := bridge.NewController(brokenSpace{}, fake.NewTransport())
	defer ctl.Close()

	if err := ctl.Activate(nil, 0, "", 100); !errors.Is(err, api.ErrInvalidHandle) {
		t.Fatalf("got %v, want ErrInvalidHandle", err)
	}
}
