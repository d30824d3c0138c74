package backend

import (
	"errors"
	"slices"
	"testing"
)

type fakeBackend struct {
	name    string
	initErr error
	inited  bool
}

func (f *fakeBackend) Name() string   { return f.name }
func (f *fakeBackend) Init() error    { f.inited = f.initErr == nil; return f.initErr }
func (f *fakeBackend) Close()         {}
func (f *fakeBackend) Driver() Driver { return nil }

func TestRegistry(t *testing.T) {
	Register("fake", func() Backend { return &fakeBackend{name: "fake"} })
	defer Unregister("fake")

	if !IsRegistered("fake") {
		t.Fatal("IsRegistered(fake) = false")
	}
	if !slices.Contains(Available(), "fake") {
		t.Errorf("Available() = %v, missing fake", Available())
	}
	if b := Get("fake"); b == nil || b.Name() != "fake" {
		t.Errorf("Get(fake) = %v", b)
	}
	if b := Get("missing"); b != nil {
		t.Errorf("Get(missing) = %v, want nil", b)
	}

	Unregister("fake")
	if IsRegistered("fake") {
		t.Error("fake still registered after Unregister")
	}
}

func TestDefaultPriority(t *testing.T) {
	Register(BackendRecording, func() Backend { return &fakeBackend{name: BackendRecording} })
	defer Unregister(BackendRecording)
	Register(BackendGLES, func() Backend { return &fakeBackend{name: BackendGLES} })
	defer Unregister(BackendGLES)

	if b := Default(); b == nil || b.Name() != BackendGLES {
		t.Errorf("Default() = %v, want gles", b)
	}

	Unregister(BackendGLES)
	if b := MustDefault(); b.Name() != BackendRecording {
		t.Errorf("MustDefault() = %q, want recording", b.Name())
	}
}

func TestInitDefault(t *testing.T) {
	wantErr := errors.New("no display")
	Register(BackendGLES, func() Backend { return &fakeBackend{name: BackendGLES, initErr: wantErr} })
	defer Unregister(BackendGLES)

	if _, err := InitDefault(); !errors.Is(err, wantErr) {
		t.Errorf("InitDefault() error = %v, want %v", err, wantErr)
	}

	Unregister(BackendGLES)
	if len(Available()) == 0 {
		if _, err := InitDefault(); !errors.Is(err, ErrBackendNotAvailable) {
			t.Errorf("InitDefault() error = %v, want ErrBackendNotAvailable", err)
		}
	}
}

func TestUniformFunctionComponents(t *testing.T) {
	tests := []struct {
		fn   UniformFunction
		want int
	}{
		{Uniform1f, 1},
		{Uniform2i, 2},
		{Uniform3ui, 3},
		{Uniform4b, 4},
		{UniformMat2, 4},
		{UniformMat3, 9},
		{UniformMat4x3, 12},
		{UniformMat4, 16},
		{UniformFunction(200), 0},
	}
	for _, tt := range tests {
		if got := tt.fn.Components(); got != tt.want {
			t.Errorf("UniformFunction(%d).Components() = %d, want %d", tt.fn, got, tt.want)
		}
	}
	if UniformFunction(200).Valid() {
		t.Error("UniformFunction(200).Valid() = true")
	}
}

func TestProgramInterfaceLookup(t *testing.T) {
	pi := &ProgramInterface{
		Attributes: []Resource{{Kind: ResourceAttribute, Name: "in_vert"}},
		Uniforms:   []Resource{{Kind: ResourceUniform, Name: "mvp", Location: 3}},
	}
	if r, ok := pi.Lookup("mvp"); !ok || r.Location != 3 {
		t.Errorf("Lookup(mvp) = %+v, %v", r, ok)
	}
	if _, ok := pi.Lookup("nope"); ok {
		t.Error("Lookup(nope) found a resource")
	}
	if pi.Len() != 2 {
		t.Errorf("Len() = %d, want 2", pi.Len())
	}
	var nilPI *ProgramInterface
	if nilPI.Len() != 0 {
		t.Error("nil interface Len() != 0")
	}
}
