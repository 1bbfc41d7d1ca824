package capture

import (
	"errors"
	"fmt"
	"os"

	"littertrack/image"
	"littertrack/models"
)

var (
	// ErrMissingPhoto rejects a submission without any captured photo.
	ErrMissingPhoto = errors.New("missing photo: capture or upload at least one photo")
	// ErrMissingLocation rejects a submission without a resolved position.
	ErrMissingLocation = errors.New("missing location: no position has been acquired")
)

// Session accumulates photos in capture order until submission.
type Session struct {
	photos []Photo
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) Add(p Photo) {
	s.photos = append(s.photos, p)
}

// Remove drops the photo at the given position, keeping the order of the rest.
func (s *Session) Remove(i int) error {
	if i < 0 || i >= len(s.photos) {
		return fmt.Errorf("no photo at position %d", i)
	}
	s.photos = append(s.photos[:i], s.photos[i+1:]...)
	return nil
}

func (s *Session) Count() int {
	return len(s.photos)
}

// Payloads returns the ordered image payloads for submission.
func (s *Session) Payloads() []string {
	out := make([]string, len(s.photos))
	for i, p := range s.photos {
		out[i] = p.Payload
	}
	return out
}

// PickFile reads a local image file into a photo, the file-picker path.
func PickFile(path string) (*Photo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	info, _ := os.Stat(path)
	p := &Photo{Payload: image.EncodeDataURL(data)}
	if info != nil {
		p.Taken = info.ModTime()
	}
	return p, nil
}

// BuildSubmission validates the session and fix and produces the request
// body. The two rejection cases mirror the submit-time notices.
func BuildSubmission(s *Session, fix *Fix, description string) (*models.SubmitComplaintRequest, error) {
	if s == nil || s.Count() == 0 {
		return nil, ErrMissingPhoto
	}
	if fix == nil || !models.ValidCoordinates(fix.Latitude, fix.Longitude) {
		return nil, ErrMissingLocation
	}
	lat, lon := fix.Latitude, fix.Longitude
	return &models.SubmitComplaintRequest{
		Images:      s.Payloads(),
		Latitude:    &lat,
		Longitude:   &lon,
		Description: description,
	}, nil
}
