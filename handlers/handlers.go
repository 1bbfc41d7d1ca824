package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"littertrack/database"
	"littertrack/geo"
	imgproc "littertrack/image"
	"littertrack/metrics"
	"littertrack/models"
	"littertrack/services"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

const (
	// Submission rejection notices, surfaced to the reporter as-is.
	MsgMissingPhoto    = "Missing photo: capture or upload at least one photo."
	MsgMissingLocation = "Missing location: enable location access and retry."

	submitIDRetries = 3
)

type ComplaintsHandler struct {
	service *database.ComplaintsService
	hub     *services.Hub
	now     func() time.Time
}

func NewComplaintsHandler(service *database.ComplaintsService, hub *services.Hub) *ComplaintsHandler {
	return &ComplaintsHandler{
		service: service,
		hub:     hub,
		now:     time.Now,
	}
}

// HealthCheck returns a simple health status
func (h *ComplaintsHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:  "healthy",
		Service: "littertrack",
	})
}

// SubmitComplaint validates and stores a new complaint.
func (h *ComplaintsHandler) SubmitComplaint(c *gin.Context) {
	started := time.Now()
	args := &models.SubmitComplaintRequest{}

	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /submit_complaint call: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read JSON input."})
		return
	}

	if len(args.Images) == 0 {
		metrics.RejectedTotal.WithLabelValues("missing_photo").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": MsgMissingPhoto})
		return
	}
	if args.Latitude == nil || args.Longitude == nil ||
		!models.ValidCoordinates(*args.Latitude, *args.Longitude) {
		metrics.RejectedTotal.WithLabelValues("missing_location").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": MsgMissingLocation})
		return
	}

	images := make([]string, len(args.Images))
	for i, payload := range args.Images {
		images[i] = imgproc.Normalize(payload)
	}

	submitted := h.now().UTC()
	complaint := &models.Complaint{
		Images:      images,
		Latitude:    *args.Latitude,
		Longitude:   *args.Longitude,
		Description: args.Description,
		Status:      models.StatusSubmitted,
	}

	// The id is derived from the submission time; a same-millisecond
	// collision gets the next millisecond.
	var err error
	for attempt := 0; attempt < submitIDRetries; attempt++ {
		at := submitted.Add(time.Duration(attempt) * time.Millisecond)
		complaint.ID = models.ComplaintIDFromTime(at)
		complaint.Timestamp = at.Format(time.RFC3339)
		err = h.service.SaveComplaint(c.Request.Context(), complaint)
		if !errors.Is(err, database.ErrDuplicateID) {
			break
		}
	}
	if err != nil {
		log.Errorf("Failed to save complaint: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save the complaint."})
		return
	}

	metrics.SubmittedTotal.Inc()
	metrics.SubmitDurationSeconds.Observe(time.Since(started).Seconds())
	log.Infof("Stored complaint %s at %f,%f with %d image(s)",
		complaint.ID, complaint.Latitude, complaint.Longitude, len(complaint.Images))

	h.broadcast(c, "submitted", complaint)
	c.JSON(http.StatusOK, models.SubmitComplaintResponse{Complaint: *complaint})
}

// GetComplaints returns the full complaint list, newest first.
func (h *ComplaintsHandler) GetComplaints(c *gin.Context) {
	complaints, err := h.service.ListComplaints(c.Request.Context())
	if err != nil {
		log.Errorf("Error listing complaints: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprint(err)})
		return
	}
	c.JSON(http.StatusOK, models.ComplaintsResponse{
		Complaints: complaints,
		Count:      len(complaints),
	})
}

// GetComplaintCounts returns the dashboard aggregate counters.
func (h *ComplaintsHandler) GetComplaintCounts(c *gin.Context) {
	counts, err := h.service.CountsByStatus(c.Request.Context())
	if err != nil {
		log.Errorf("Error counting complaints: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprint(err)})
		return
	}
	c.JSON(http.StatusOK, counts)
}

// UpdateComplaintStatus moves one complaint to a new lifecycle status.
func (h *ComplaintsHandler) UpdateComplaintStatus(c *gin.Context) {
	args := &models.UpdateStatusRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /update_complaint_status call: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read JSON input."})
		return
	}

	if !args.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown status %q.", args.Status)})
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), args.ID, args.Status); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("No complaint with id %q.", args.ID)})
			return
		}
		log.Errorf("Error updating status of complaint %s: %v", args.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update the status."})
		return
	}

	metrics.StatusUpdatesTotal.WithLabelValues(string(args.Status)).Inc()
	log.Infof("Complaint %s moved to status %s", args.ID, args.Status)

	if h.hub != nil {
		if updated, err := h.service.GetComplaint(c.Request.Context(), args.ID); err == nil {
			h.broadcast(c, "status_updated", updated)
		}
	}
	c.Status(http.StatusOK)
}

// DeleteComplaint removes exactly one complaint.
func (h *ComplaintsHandler) DeleteComplaint(c *gin.Context) {
	args := &models.DeleteComplaintRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /delete_complaint call: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read JSON input."})
		return
	}

	if err := h.service.DeleteComplaint(c.Request.Context(), args.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("No complaint with id %q.", args.ID)})
			return
		}
		log.Errorf("Error deleting complaint %s: %v", args.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete the complaint."})
		return
	}

	metrics.DeletedTotal.Inc()
	log.Infof("Complaint %s deleted", args.ID)

	h.broadcast(c, "deleted", &models.Complaint{ID: args.ID})
	c.Status(http.StatusOK)
}

// GetMap returns complaint markers clustered for the requested viewport.
func (h *ComplaintsHandler) GetMap(c *gin.Context) {
	args := &models.MapArgs{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /get_map call: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read JSON input."})
		return
	}

	locations, err := h.service.ListLocations(c.Request.Context(), &args.VPort)
	if err != nil {
		log.Errorf("Error listing complaint locations: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprint(err)})
		return
	}

	aggr := geo.NewAggregator(&args.VPort, &args.Center)
	for _, loc := range locations {
		aggr.AddPoint(loc)
	}
	c.JSON(http.StatusOK, aggr.Results())
}

// GetComplaintsGeoJSON exports all complaints as a GeoJSON FeatureCollection.
func (h *ComplaintsHandler) GetComplaintsGeoJSON(c *gin.Context) {
	complaints, err := h.service.ListComplaints(c.Request.Context())
	if err != nil {
		log.Errorf("Error listing complaints for geojson export: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprint(err)})
		return
	}
	c.JSON(http.StatusOK, geo.FeatureCollection(complaints))
}

// broadcast pushes a mutation event with fresh counts to dashboard clients.
func (h *ComplaintsHandler) broadcast(c *gin.Context, event string, complaint *models.Complaint) {
	if h.hub == nil {
		return
	}
	counts, err := h.service.CountsByStatus(c.Request.Context())
	if err != nil {
		log.Warnf("Skipping counts in %s broadcast: %v", event, err)
		counts = nil
	}
	h.hub.Broadcast(models.BroadcastMessage{
		Event:     event,
		Complaint: complaint,
		Counts:    counts,
	})
}
