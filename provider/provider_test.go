package provider

import (
	"context"
	"fmt"
	"testing"

	"github.com/terralab/prockit/algorithm"
	"github.com/terralab/prockit/errors"
)

// stubBackend is a minimal Backend that registers a fixed descriptor list.
type stubBackend struct {
	id        string
	name      string
	algs      []*algorithm.Descriptor
	loadErr   error
	loadCalls int
}

func (b *stubBackend) ID() string   { return b.id }
func (b *stubBackend) Name() string { return b.name }
func (b *stubBackend) LoadAlgorithms(ctx context.Context, reg *Registrar) error {
	b.loadCalls++
	if b.loadErr != nil {
		return b.loadErr
	}
	for _, d := range b.algs {
		if err := reg.Add(d); err != nil {
			continue
		}
	}
	return nil
}

// capableBackend adds the opt-in capability interfaces on top of stubBackend.
type capableBackend struct {
	stubBackend
	longName      string
	canActivate   bool
	active        bool
	vectorExts    []string
	rasterExts    []string
	nonFileOutput bool
	setupCalls    int
	setupErr      error
	teardownCalls int
	teardownErr   error
}

func (b *capableBackend) LongName() string     { return b.longName }
func (b *capableBackend) CanBeActivated() bool { return b.canActivate }
func (b *capableBackend) IsActive() bool       { return b.active }
func (b *capableBackend) SupportedOutputVectorLayerExtensions() []string {
	return b.vectorExts
}
func (b *capableBackend) SupportedOutputRasterLayerExtensions() []string {
	return b.rasterExts
}
func (b *capableBackend) SupportsNonFileBasedOutput() bool { return b.nonFileOutput }
func (b *capableBackend) Setup(ctx context.Context) error {
	b.setupCalls++
	return b.setupErr
}
func (b *capableBackend) Teardown(ctx context.Context) error {
	b.teardownCalls++
	return b.teardownErr
}

func descriptors(names ...string) []*algorithm.Descriptor {
	out := make([]*algorithm.Descriptor, 0, len(names))
	for _, n := range names {
		out = append(out, algorithm.New(n, n))
	}
	return out
}

func TestLoadPopulatesAlgorithms(t *testing.T) {
	b := &stubBackend{id: "native", name: "Native", algs: descriptors("buffer", "clip", "dissolve")}
	p := New(b)

	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	algs := p.Algorithms()
	if len(algs) != 3 {
		t.Fatalf("expected 3 algorithms, got %d", len(algs))
	}
	// Registration order must be preserved for display stability.
	for i, want := range []string{"buffer", "clip", "dissolve"} {
		if algs[i].Name() != want {
			t.Errorf("position %d: expected %q, got %q", i, want, algs[i].Name())
		}
	}

	d, ok := p.Algorithm("clip")
	if !ok || d.Name() != "clip" {
		t.Errorf("expected exact lookup of 'clip', got %v, %v", d, ok)
	}
}

func TestLoadTwiceRejected(t *testing.T) {
	p := New(&stubBackend{id: "native", name: "Native"})
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("first Load failed: %v", err)
	}
	err := p.Load(context.Background())
	if !errors.IsCode(err, errors.ErrCodeConflict) {
		t.Errorf("expected CONFLICT for second Load, got %v", err)
	}
}

func TestLoadInertWhenNotActivatable(t *testing.T) {
	b := &capableBackend{
		stubBackend: stubBackend{id: "saga", name: "SAGA", algs: descriptors("slope")},
		canActivate: false,
		active:      true,
	}
	p := New(b)

	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("loading a non-activatable provider must not hard-fail: %v", err)
	}
	if b.loadCalls != 0 {
		t.Errorf("backend must not be consulted, got %d load calls", b.loadCalls)
	}
	if len(p.Algorithms()) != 0 {
		t.Error("inert provider must stay empty")
	}
}

func TestLoadRunsSetup(t *testing.T) {
	b := &capableBackend{
		stubBackend: stubBackend{id: "grass", name: "GRASS", algs: descriptors("r.slope")},
		canActivate: true,
		active:      true,
	}
	p := New(b)

	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if b.setupCalls != 1 {
		t.Errorf("expected 1 setup call, got %d", b.setupCalls)
	}
	if len(p.Algorithms()) != 1 {
		t.Errorf("expected algorithms after setup, got %d", len(p.Algorithms()))
	}
}

func TestLoadSetupFailure(t *testing.T) {
	b := &capableBackend{
		stubBackend: stubBackend{id: "grass", name: "GRASS"},
		canActivate: true,
		active:      true,
		setupErr:    fmt.Errorf("binary not found"),
	}
	p := New(b)

	err := p.Load(context.Background())
	if !errors.IsCode(err, errors.ErrCodeServiceUnavailable) {
		t.Errorf("expected SERVICE_UNAVAILABLE, got %v", err)
	}
	if b.loadCalls != 0 {
		t.Error("algorithms must not load when setup fails")
	}
}

func TestDuplicateNameRejected(t *testing.T) {
	b := &stubBackend{id: "native", name: "Native",
		algs: descriptors("buffer", "buffer", "clip")}
	p := New(b)

	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	algs := p.Algorithms()
	if len(algs) != 2 {
		t.Fatalf("expected 2 algorithms (duplicate dropped), got %d", len(algs))
	}
	count := 0
	for _, d := range algs {
		if d.Name() == "buffer" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one 'buffer', got %d", count)
	}
}

func TestDuplicateAddReportsError(t *testing.T) {
	var firstErr, secondErr error
	b := &funcBackend{id: "native", name: "Native", fn: func(ctx context.Context, reg *Registrar) error {
		firstErr = reg.Add(algorithm.New("buffer", "Buffer"))
		secondErr = reg.Add(algorithm.New("buffer", "Buffer again"))
		return nil
	}}
	p := New(b)

	if err := p.RefreshAlgorithms(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if firstErr != nil {
		t.Errorf("first registration must succeed, got %v", firstErr)
	}
	if !errors.IsCode(secondErr, errors.ErrCodeAlreadyExists) {
		t.Errorf("expected ALREADY_EXISTS, got %v", secondErr)
	}
}

func TestInvalidDescriptorRejected(t *testing.T) {
	b := &funcBackend{id: "native", name: "Native", fn: func(ctx context.Context, reg *Registrar) error {
		if err := reg.Add(algorithm.New("", "Nameless")); !errors.IsCode(err, errors.ErrCodeInvalidInput) {
			t.Errorf("expected INVALID_INPUT, got %v", err)
		}
		if err := reg.Add(nil); err == nil {
			t.Error("expected error for nil descriptor")
		}
		return reg.Add(algorithm.New("clip", "Clip"))
	}}
	p := New(b)

	if err := p.RefreshAlgorithms(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if len(p.Algorithms()) != 1 {
		t.Errorf("expected only the valid descriptor, got %d", len(p.Algorithms()))
	}
}

// funcBackend delegates LoadAlgorithms to a closure.
type funcBackend struct {
	id   string
	name string
	fn   func(ctx context.Context, reg *Registrar) error
}

func (b *funcBackend) ID() string   { return b.id }
func (b *funcBackend) Name() string { return b.name }
func (b *funcBackend) LoadAlgorithms(ctx context.Context, reg *Registrar) error {
	return b.fn(ctx, reg)
}

func TestRefreshIsIdempotent(t *testing.T) {
	b := &stubBackend{id: "native", name: "Native", algs: descriptors("buffer", "clip")}
	p := New(b)

	if err := p.RefreshAlgorithms(context.Background()); err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}
	first := p.Algorithms()

	if err := p.RefreshAlgorithms(context.Background()); err != nil {
		t.Fatalf("second refresh failed: %v", err)
	}
	second := p.Algorithms()

	if len(first) != len(second) {
		t.Fatalf("set size changed across refresh: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Name() != second[i].Name() || first[i].DisplayName() != second[i].DisplayName() {
			t.Errorf("position %d differs after refresh", i)
		}
	}
	if b.loadCalls != 2 {
		t.Errorf("expected backend consulted on every refresh, got %d calls", b.loadCalls)
	}
}

func TestRefreshRebuildsFromScratch(t *testing.T) {
	b := &stubBackend{id: "native", name: "Native", algs: descriptors("buffer")}
	p := New(b)
	if err := p.RefreshAlgorithms(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	b.algs = descriptors("clip")
	if err := p.RefreshAlgorithms(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	if _, ok := p.Algorithm("buffer"); ok {
		t.Error("stale descriptor survived the refresh")
	}
	if _, ok := p.Algorithm("clip"); !ok {
		t.Error("new descriptor missing after refresh")
	}
}

func TestEmptyProviderIsValid(t *testing.T) {
	p := New(&stubBackend{id: "empty", name: "Empty"})
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("empty provider must load cleanly: %v", err)
	}
	if len(p.Algorithms()) != 0 {
		t.Error("expected empty set")
	}
}

func TestLookupMiss(t *testing.T) {
	p := New(&stubBackend{id: "native", name: "Native", algs: descriptors("buffer")})
	p.Load(context.Background())

	d, ok := p.Algorithm("nonexistent")
	if ok || d != nil {
		t.Errorf("expected absent result, got %v, %v", d, ok)
	}
}

func TestNestedRefreshRejected(t *testing.T) {
	var p *Provider
	var nestedErr error
	b := &funcBackend{id: "native", name: "Native", fn: func(ctx context.Context, reg *Registrar) error {
		nestedErr = p.RefreshAlgorithms(ctx)
		return reg.Add(algorithm.New("buffer", "Buffer"))
	}}
	p = New(b)

	if err := p.RefreshAlgorithms(context.Background()); err != nil {
		t.Fatalf("outer refresh failed: %v", err)
	}
	if !errors.IsCode(nestedErr, errors.ErrCodeContractViolation) {
		t.Errorf("expected CONTRACT_VIOLATION for nested refresh, got %v", nestedErr)
	}
	if len(p.Algorithms()) != 1 {
		t.Errorf("outer refresh must still complete, got %d algorithms", len(p.Algorithms()))
	}
}

func TestRegistrarDeadAfterRefresh(t *testing.T) {
	var leaked *Registrar
	b := &funcBackend{id: "native", name: "Native", fn: func(ctx context.Context, reg *Registrar) error {
		leaked = reg
		return nil
	}}
	p := New(b)

	if err := p.RefreshAlgorithms(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	err := leaked.Add(algorithm.New("late", "Too Late"))
	if !errors.IsCode(err, errors.ErrCodeContractViolation) {
		t.Errorf("expected CONTRACT_VIOLATION for add outside refresh, got %v", err)
	}
	if _, ok := p.Algorithm("late"); ok {
		t.Error("late registration must not land in the provider")
	}
}

func TestBackendLoadError(t *testing.T) {
	b := &stubBackend{id: "native", name: "Native", loadErr: fmt.Errorf("probe failed")}
	p := New(b)

	if err := p.RefreshAlgorithms(context.Background()); err == nil {
		t.Fatal("expected error from failing backend")
	}
	// A later refresh must be able to recover.
	b.loadErr = nil
	b.algs = descriptors("buffer")
	if err := p.RefreshAlgorithms(context.Background()); err != nil {
		t.Fatalf("recovery refresh failed: %v", err)
	}
	if len(p.Algorithms()) != 1 {
		t.Error("expected algorithms after recovery")
	}
}

func TestUnloadKeepsAlgorithms(t *testing.T) {
	b := &capableBackend{
		stubBackend: stubBackend{id: "gdal", name: "GDAL", algs: descriptors("warp", "translate")},
		canActivate: true,
		active:      true,
	}
	p := New(b)
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := p.Unload(context.Background()); err != nil {
		t.Fatalf("Unload failed: %v", err)
	}
	if b.teardownCalls != 1 {
		t.Errorf("expected 1 teardown call, got %d", b.teardownCalls)
	}
	// Unload releases backend resources but does not clear the registry.
	if len(p.Algorithms()) != 2 {
		t.Errorf("unload must not clear the algorithm set, got %d", len(p.Algorithms()))
	}
}

func TestUnloadIsIdempotent(t *testing.T) {
	b := &capableBackend{
		stubBackend: stubBackend{id: "gdal", name: "GDAL"},
		canActivate: true,
		active:      true,
	}
	p := New(b)
	p.Load(context.Background())

	p.Unload(context.Background())
	if err := p.Unload(context.Background()); err != nil {
		t.Errorf("repeated unload must be a no-op, got %v", err)
	}
	if b.teardownCalls != 1 {
		t.Errorf("teardown must run exactly once, got %d", b.teardownCalls)
	}
}

func TestLoadAfterUnloadRejected(t *testing.T) {
	p := New(&stubBackend{id: "gdal", name: "GDAL"})
	p.Load(context.Background())
	p.Unload(context.Background())

	err := p.Load(context.Background())
	if !errors.IsCode(err, errors.ErrCodeConflict) {
		t.Errorf("expected CONFLICT for load after unload, got %v", err)
	}
}

func TestInactiveProviderRefreshesToEmpty(t *testing.T) {
	b := &capableBackend{
		stubBackend: stubBackend{id: "saga", name: "SAGA", algs: descriptors("slope")},
		canActivate: true,
		active:      true,
	}
	p := New(b)
	p.Load(context.Background())
	if len(p.Algorithms()) != 1 {
		t.Fatalf("expected 1 algorithm, got %d", len(p.Algorithms()))
	}

	b.active = false
	if err := p.RefreshAlgorithms(context.Background()); err != nil {
		t.Fatalf("refresh of inactive provider must not fail: %v", err)
	}
	if len(p.Algorithms()) != 0 {
		t.Error("inactive provider must refresh to an empty set")
	}
	if b.loadCalls != 1 {
		t.Errorf("inactive backend must not be consulted, got %d calls", b.loadCalls)
	}
}

func TestIdentityDefaults(t *testing.T) {
	p := New(&stubBackend{id: "native", name: "Native"})

	if p.ID() != "native" || p.Name() != "Native" {
		t.Errorf("identity mismatch: %q / %q", p.ID(), p.Name())
	}
	if p.LongName() != "Native" {
		t.Errorf("LongName must default to Name, got %q", p.LongName())
	}
	if !p.CanBeActivated() {
		t.Error("CanBeActivated must default to true")
	}
	if !p.IsActive() {
		t.Error("IsActive must default to true")
	}
	if p.SupportsNonFileBasedOutput() {
		t.Error("SupportsNonFileBasedOutput must default to false")
	}
	if len(p.SupportedOutputVectorLayerExtensions()) != 0 {
		t.Error("vector extensions must default to empty")
	}
	if len(p.SupportedOutputRasterLayerExtensions()) != 0 {
		t.Error("raster extensions must default to empty")
	}
	if p.Icon() != "" || p.SVGIconPath() != "" {
		t.Error("icon references must default to empty")
	}
}

func TestLongNameOverride(t *testing.T) {
	b := &capableBackend{
		stubBackend: stubBackend{id: "lastools", name: "LAStools"},
		longName:    "LAStools LIDAR tools (version 2.2.1)",
		canActivate: true,
		active:      true,
	}
	p := New(b)
	if p.LongName() != "LAStools LIDAR tools (version 2.2.1)" {
		t.Errorf("unexpected long name: %q", p.LongName())
	}
}
