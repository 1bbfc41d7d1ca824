// Dev/test client for dev/test/troubleshooting. Drives the capture
// providers against a running service: acquires a location fix, captures or
// picks photos, submits a complaint and walks it through the dashboard
// operations.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"littertrack/capture"
	"littertrack/models"
	"littertrack/utils"

	"github.com/apex/log"
)

const contentType = "application/json"

var (
	serviceURL  = flag.String("service_url", "http://127.0.0.1:8080", "Base URL of the littertrack service.")
	latitude    = flag.Float64("lat", math.NaN(), "Report latitude. When unset, falls back to photo EXIF GPS.")
	longitude   = flag.Float64("lon", math.NaN(), "Report longitude.")
	description = flag.String("description", "", "Optional complaint description.")
	images      = flag.String("images", "", "Comma-separated image files to upload (file-picker path).")
	cameraDir   = flag.String("camera_dir", "", "Directory of image files served as camera frames.")
	frames      = flag.Int("frames", 1, "Number of frames to capture from the camera.")
	torch       = flag.Bool("torch", false, "Toggle the torch while capturing.")
)

func post(path string, body any) ([]byte, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(*serviceURL+path, contentType, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("failed to call the server: %w", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	log.Infof("%s: %s", path, resp.Status)
	if resp.StatusCode != http.StatusOK {
		return data, fmt.Errorf("%s: %s", resp.Status, string(data))
	}
	return data, nil
}

func get(path string) ([]byte, error) {
	resp, err := http.Get(*serviceURL + path)
	if err != nil {
		return nil, fmt.Errorf("failed to call the server: %w", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	log.Infof("%s: %s", path, resp.Status)
	return data, nil
}

// capturePhotos fills the session from the camera and/or picked files.
func capturePhotos(session *capture.Session) error {
	if *cameraDir != "" {
		entries, err := os.ReadDir(*cameraDir)
		if err != nil {
			return err
		}
		var paths []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			paths = append(paths, filepath.Join(*cameraDir, e.Name()))
		}
		sort.Strings(paths)

		camera := capture.NewCamera(capture.NewFileSource(paths, false))
		if err := camera.Open(context.Background()); err != nil {
			return err
		}
		defer camera.Close()

		if *torch {
			if err := camera.SetTorch(true); err != nil {
				// Flash unsupported is not fatal, the user just goes without.
				log.Warnf("Torch unavailable: %v", err)
			}
		}

		for i := 0; i < *frames; i++ {
			photo, err := camera.Frame()
			if err != nil {
				log.Warnf("Stopping capture: %v", err)
				break
			}
			session.Add(*photo)
		}
	}

	if *images != "" {
		for _, path := range strings.Split(*images, ",") {
			photo, err := capture.PickFile(strings.TrimSpace(path))
			if err != nil {
				return err
			}
			session.Add(*photo)
		}
	}
	return nil
}

// acquireFix resolves the position: flags first, then photo EXIF fallback.
func acquireFix(session *capture.Session) (*capture.Fix, error) {
	var provider capture.LocationProvider
	if !math.IsNaN(*latitude) && !math.IsNaN(*longitude) {
		provider = &capture.StaticProvider{Lat: *latitude, Lon: *longitude}
	} else if session.Count() > 0 {
		provider = &capture.ExifProvider{Payload: session.Payloads()[0]}
	} else {
		return nil, capture.ErrNoFix
	}
	defer provider.Release()
	return provider.Acquire(context.Background())
}

func main() {
	flag.Parse()

	session := capture.NewSession()
	if err := capturePhotos(session); err != nil {
		log.Fatalf("Photo capture failed: %v", err)
	}

	fix, err := acquireFix(session)
	if err != nil {
		log.Fatalf("Location acquisition failed: %v", err)
	}
	log.Infof("Got fix %s,%s with %d photo(s)",
		utils.FormatCoordinate(fix.Latitude), utils.FormatCoordinate(fix.Longitude), session.Count())

	req, err := capture.BuildSubmission(session, fix, *description)
	if err != nil {
		log.Fatalf("Submission rejected locally: %v", err)
	}

	data, err := post("/submit_complaint", req)
	if err != nil {
		log.Fatalf("Submit failed: %v", err)
	}
	var submitted models.SubmitComplaintResponse
	if err := json.Unmarshal(data, &submitted); err != nil {
		log.Fatalf("Bad submit response: %v", err)
	}
	id := submitted.Complaint.ID
	log.Infof("Submitted complaint %s", id)

	if data, err = get("/get_complaint_counts"); err == nil {
		log.Infof("Counts: %s", string(data))
	}

	if _, err = post("/update_complaint_status", models.UpdateStatusRequest{
		ID:     id,
		Status: models.StatusInProgress,
	}); err != nil {
		log.Errorf("Status update failed: %v", err)
	}

	if data, err = get("/get_complaints"); err == nil {
		var list models.ComplaintsResponse
		if json.Unmarshal(data, &list) == nil {
			log.Infof("Dashboard holds %d complaint(s)", list.Count)
		}
	}

	if _, err = post("/delete_complaint", models.DeleteComplaintRequest{ID: id}); err != nil {
		log.Errorf("Delete failed: %v", err)
	}
}
