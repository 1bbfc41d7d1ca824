package capture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// stubSource is an in-memory frame source for camera lifecycle tests.
type stubSource struct {
	frames   [][]byte
	next     int
	hasTorch bool
	closed   bool
}

func (s *stubSource) NextFrame() ([]byte, error) {
	if s.next >= len(s.frames) {
		return nil, ErrNoMoreFrames
	}
	f := s.frames[s.next]
	s.next++
	return f, nil
}

func (s *stubSource) Torch(on bool) error {
	if !s.hasTorch {
		return ErrTorchUnsupported
	}
	return nil
}

func (s *stubSource) Close() error {
	s.closed = true
	return nil
}

func TestCameraLifecycle(t *testing.T) {
	source := &stubSource{frames: [][]byte{{0xFF, 0xD8, 0xFF, 0xE0}}, hasTorch: true}
	camera := NewCamera(source)

	if _, err := camera.Frame(); !errors.Is(err, ErrCameraClosed) {
		t.Errorf("Frame before Open: expected ErrCameraClosed, got %v", err)
	}

	if err := camera.Open(context.Background()); err != nil {
		t.Fatalf("Open: unexpected error: %v", err)
	}
	if err := camera.Open(context.Background()); err == nil {
		t.Error("Open twice: expected error, got nil")
	}

	photo, err := camera.Frame()
	if err != nil {
		t.Fatalf("Frame: unexpected error: %v", err)
	}
	if photo.Payload == "" {
		t.Error("Frame: expected non-empty payload")
	}

	if err := camera.SetTorch(true); err != nil {
		t.Errorf("SetTorch: unexpected error: %v", err)
	}
	if !camera.TorchOn() {
		t.Error("SetTorch: torch should be on")
	}

	if err := camera.Close(); err != nil {
		t.Fatalf("Close: unexpected error: %v", err)
	}
	if !source.closed {
		t.Error("Close: source was not released")
	}
	if err := camera.Close(); err != nil {
		t.Errorf("Close twice: expected nil, got %v", err)
	}
	if _, err := camera.Frame(); !errors.Is(err, ErrCameraClosed) {
		t.Errorf("Frame after Close: expected ErrCameraClosed, got %v", err)
	}
}

func TestCameraTorchUnsupported(t *testing.T) {
	camera := NewCamera(&stubSource{hasTorch: false})
	if err := camera.Open(context.Background()); err != nil {
		t.Fatalf("Open: unexpected error: %v", err)
	}
	defer camera.Close()

	if err := camera.SetTorch(true); !errors.Is(err, ErrTorchUnsupported) {
		t.Errorf("SetTorch: expected ErrTorchUnsupported, got %v", err)
	}
	if camera.TorchOn() {
		t.Error("SetTorch failure must not flip the torch state")
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.jpg")
	if err := os.WriteFile(path, []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x48}, 0o644); err != nil {
		t.Fatal(err)
	}

	source := NewFileSource([]string{path}, false)
	if _, err := source.NextFrame(); err != nil {
		t.Fatalf("NextFrame: unexpected error: %v", err)
	}
	if _, err := source.NextFrame(); !errors.Is(err, ErrNoMoreFrames) {
		t.Errorf("NextFrame on empty source: expected ErrNoMoreFrames, got %v", err)
	}
	if err := source.Torch(true); !errors.Is(err, ErrTorchUnsupported) {
		t.Errorf("Torch: expected ErrTorchUnsupported, got %v", err)
	}
}

func TestSessionOrderAndRemoval(t *testing.T) {
	s := NewSession()
	s.Add(Photo{Payload: "first"})
	s.Add(Photo{Payload: "second"})
	s.Add(Photo{Payload: "third"})

	if err := s.Remove(1); err != nil {
		t.Fatalf("Remove: unexpected error: %v", err)
	}
	if err := s.Remove(5); err == nil {
		t.Error("Remove out of range: expected error, got nil")
	}

	payloads := s.Payloads()
	if len(payloads) != 2 || payloads[0] != "first" || payloads[1] != "third" {
		t.Errorf("Payloads: expected [first third], got %v", payloads)
	}
}

func TestBuildSubmission(t *testing.T) {
	withPhoto := NewSession()
	withPhoto.Add(Photo{Payload: "data:image/jpeg;base64,YWJj"})

	testCases := []struct {
		name        string
		session     *Session
		fix         *Fix
		description string

		errorExpected error
	}{
		{
			name:    "No photo",
			session: NewSession(),
			fix:     &Fix{Latitude: 37.422, Longitude: -122.084},

			errorExpected: ErrMissingPhoto,
		},
		{
			name:    "No fix",
			session: withPhoto,

			errorExpected: ErrMissingLocation,
		},
		{
			name:    "Invalid fix",
			session: withPhoto,
			fix:     &Fix{Latitude: 137.0, Longitude: -122.084},

			errorExpected: ErrMissingLocation,
		},
		{
			name:        "Valid submission",
			session:     withPhoto,
			fix:         &Fix{Latitude: 37.422, Longitude: -122.084},
			description: "",
		},
	}

	for _, testCase := range testCases {
		req, err := BuildSubmission(testCase.session, testCase.fix, testCase.description)
		if !errors.Is(err, testCase.errorExpected) {
			t.Errorf("%s, BuildSubmission: expected error: %v, got error: %v", testCase.name, testCase.errorExpected, err)
			continue
		}
		if err != nil {
			continue
		}
		if len(req.Images) != 1 || req.Latitude == nil || *req.Latitude != 37.422 ||
			req.Longitude == nil || *req.Longitude != -122.084 || req.Description != "" {
			t.Errorf("%s, BuildSubmission: unexpected request %+v", testCase.name, req)
		}
	}
}

func TestStaticProvider(t *testing.T) {
	p := &StaticProvider{Lat: 37.422, Lon: -122.084}
	defer p.Release()

	fix, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: unexpected error: %v", err)
	}
	if fix.Latitude != 37.422 || fix.Longitude != -122.084 {
		t.Errorf("Acquire: unexpected fix %+v", fix)
	}

	bad := &StaticProvider{Lat: 200, Lon: 0}
	if _, err := bad.Acquire(context.Background()); !errors.Is(err, ErrNoFix) {
		t.Errorf("Acquire with bad coordinates: expected ErrNoFix, got %v", err)
	}
}

func TestExifProviderNoGPS(t *testing.T) {
	// A payload with no EXIF block resolves to no fix, surfaced once.
	p := &ExifProvider{Payload: "data:image/jpeg;base64,YWJj"}
	if _, err := p.Acquire(context.Background()); !errors.Is(err, ErrNoFix) {
		t.Errorf("Acquire: expected ErrNoFix, got %v", err)
	}
}
