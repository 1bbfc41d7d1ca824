package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"littertrack/image"

	"github.com/apex/log"
)

var (
	// ErrCameraClosed is returned for operations on an unopened camera.
	ErrCameraClosed = errors.New("camera is not open")
	// ErrTorchUnsupported is returned when the device has no torch capability.
	ErrTorchUnsupported = errors.New("torch not supported by this camera")
	// ErrNoMoreFrames is returned when the frame source is exhausted.
	ErrNoMoreFrames = errors.New("no more frames available")
)

// Photo is one captured still, already in the stored payload form.
type Photo struct {
	Payload string // data-URL
	Taken   time.Time
}

// FrameSource is the device side of a camera: it produces still frames and
// optionally drives a torch.
type FrameSource interface {
	NextFrame() ([]byte, error)
	Torch(on bool) error
	Close() error
}

// Camera is an exclusively-held capture device. It is acquired on demand
// with Open and must be released with Close; there is no automatic retry on
// acquisition failure.
type Camera struct {
	source FrameSource
	open   bool
	torch  bool
}

func NewCamera(source FrameSource) *Camera {
	return &Camera{source: source}
}

func (c *Camera) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.open {
		return errors.New("camera already open")
	}
	c.open = true
	log.Info("Camera stream opened")
	return nil
}

// Frame captures one still from the live stream.
func (c *Camera) Frame() (*Photo, error) {
	if !c.open {
		return nil, ErrCameraClosed
	}
	data, err := c.source.NextFrame()
	if err != nil {
		return nil, fmt.Errorf("failed to capture frame: %w", err)
	}
	return &Photo{Payload: image.EncodeDataURL(data), Taken: time.Now()}, nil
}

// SetTorch toggles the torch if the device supports one.
func (c *Camera) SetTorch(on bool) error {
	if !c.open {
		return ErrCameraClosed
	}
	if err := c.source.Torch(on); err != nil {
		return err
	}
	c.torch = on
	return nil
}

func (c *Camera) TorchOn() bool {
	return c.torch
}

// Close releases the device. Safe to call more than once.
func (c *Camera) Close() error {
	if !c.open {
		return nil
	}
	c.open = false
	c.torch = false
	log.Info("Camera stream closed")
	return c.source.Close()
}

// FileSource serves frames from image files, simulating a camera device.
type FileSource struct {
	paths    []string
	next     int
	hasTorch bool
}

func NewFileSource(paths []string, hasTorch bool) *FileSource {
	return &FileSource{paths: paths, hasTorch: hasTorch}
}

func (s *FileSource) NextFrame() ([]byte, error) {
	if s.next >= len(s.paths) {
		return nil, ErrNoMoreFrames
	}
	data, err := os.ReadFile(s.paths[s.next])
	if err != nil {
		return nil, err
	}
	s.next++
	return data, nil
}

func (s *FileSource) Torch(on bool) error {
	if !s.hasTorch {
		return ErrTorchUnsupported
	}
	return nil
}

func (s *FileSource) Close() error {
	return nil
}
