package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"littertrack/database"
	"littertrack/models"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var submitTime = time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)

func newTestHandler(t *testing.T) (*ComplaintsHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var db *sql.DB
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	handler := NewComplaintsHandler(database.NewComplaintsService(db), nil)
	handler.now = func() time.Time { return submitTime }
	return handler, mock, func() { db.Close() }
}

func performJSON(handler gin.HandlerFunc, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	handler(c)
	return w
}

func TestSubmitComplaint_MissingPhoto(t *testing.T) {
	handler, _, closeDB := newTestHandler(t)
	defer closeDB()

	lat, lon := 37.422, -122.084
	w := performJSON(handler.SubmitComplaint, "POST", "/submit_complaint", models.SubmitComplaintRequest{
		Images:    []string{},
		Latitude:  &lat,
		Longitude: &lon,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Missing photo")
}

func TestSubmitComplaint_MissingLocation(t *testing.T) {
	handler, _, closeDB := newTestHandler(t)
	defer closeDB()

	w := performJSON(handler.SubmitComplaint, "POST", "/submit_complaint", models.SubmitComplaintRequest{
		Images: []string{"data:image/jpeg;base64,YWJj"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Missing location")
}

func TestSubmitComplaint_InvalidCoordinates(t *testing.T) {
	handler, _, closeDB := newTestHandler(t)
	defer closeDB()

	lat, lon := 137.0, -122.084
	w := performJSON(handler.SubmitComplaint, "POST", "/submit_complaint", models.SubmitComplaintRequest{
		Images:    []string{"data:image/jpeg;base64,YWJj"},
		Latitude:  &lat,
		Longitude: &lon,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Missing location")
}

func TestSubmitComplaint_Success(t *testing.T) {
	handler, mock, closeDB := newTestHandler(t)
	defer closeDB()

	payload := "data:image/jpeg;base64,YWJj"
	wantID := models.ComplaintIDFromTime(submitTime)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT\\s+INTO complaints").
		WithArgs(wantID, 37.422, -122.084, "", "Submitted", "2026-08-25 08:00:00").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT\\s+INTO complaint_images").
		WithArgs(wantID, 0, payload).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	lat, lon := 37.422, -122.084
	w := performJSON(handler.SubmitComplaint, "POST", "/submit_complaint", models.SubmitComplaintRequest{
		Images:      []string{payload},
		Latitude:    &lat,
		Longitude:   &lon,
		Description: "",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.SubmitComplaintResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, wantID, resp.Complaint.ID)
	assert.Equal(t, models.StatusSubmitted, resp.Complaint.Status)
	assert.Equal(t, "", resp.Complaint.Description)
	assert.Equal(t, []string{payload}, resp.Complaint.Images)
	assert.Equal(t, 37.422, resp.Complaint.Latitude)
	assert.Equal(t, -122.084, resp.Complaint.Longitude)
	assert.Equal(t, submitTime.Format(time.RFC3339), resp.Complaint.Timestamp)
}

func TestSubmitComplaint_DuplicateIDRetries(t *testing.T) {
	handler, mock, closeDB := newTestHandler(t)
	defer closeDB()

	payload := "data:image/jpeg;base64,YWJj"
	firstID := models.ComplaintIDFromTime(submitTime)
	secondID := models.ComplaintIDFromTime(submitTime.Add(time.Millisecond))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT\\s+INTO complaints").
		WithArgs(firstID, 37.422, -122.084, "", "Submitted", "2026-08-25 08:00:00").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT\\s+INTO complaints").
		WithArgs(secondID, 37.422, -122.084, "", "Submitted", "2026-08-25 08:00:00").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT\\s+INTO complaint_images").
		WithArgs(secondID, 0, payload).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	lat, lon := 37.422, -122.084
	w := performJSON(handler.SubmitComplaint, "POST", "/submit_complaint", models.SubmitComplaintRequest{
		Images:    []string{payload},
		Latitude:  &lat,
		Longitude: &lon,
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.SubmitComplaintResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, secondID, resp.Complaint.ID)
}

func TestUpdateComplaintStatus_InvalidStatus(t *testing.T) {
	handler, _, closeDB := newTestHandler(t)
	defer closeDB()

	w := performJSON(handler.UpdateComplaintStatus, "POST", "/update_complaint_status", models.UpdateStatusRequest{
		ID:     "1756100000000",
		Status: "Done",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Unknown status")
}

func TestUpdateComplaintStatus_NotFound(t *testing.T) {
	handler, mock, closeDB := newTestHandler(t)
	defer closeDB()

	mock.ExpectQuery("SELECT 1 FROM complaints WHERE id = (.+)").
		WithArgs("999").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	w := performJSON(handler.UpdateComplaintStatus, "POST", "/update_complaint_status", models.UpdateStatusRequest{
		ID:     "999",
		Status: models.StatusResolved,
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateComplaintStatus_Success(t *testing.T) {
	handler, mock, closeDB := newTestHandler(t)
	defer closeDB()

	mock.ExpectQuery("SELECT 1 FROM complaints WHERE id = (.+)").
		WithArgs("1756100000000").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec("UPDATE complaints SET status = (.+) WHERE id = (.+)").
		WithArgs("In Progress", "1756100000000").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := performJSON(handler.UpdateComplaintStatus, "POST", "/update_complaint_status", models.UpdateStatusRequest{
		ID:     "1756100000000",
		Status: models.StatusInProgress,
	})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteComplaint_NotFound(t *testing.T) {
	handler, mock, closeDB := newTestHandler(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM complaint_images WHERE complaint_id = (.+)").
		WithArgs("999").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM complaints WHERE id = (.+)").
		WithArgs("999").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	w := performJSON(handler.DeleteComplaint, "POST", "/delete_complaint", models.DeleteComplaintRequest{ID: "999"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteComplaint_Success(t *testing.T) {
	handler, mock, closeDB := newTestHandler(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM complaint_images WHERE complaint_id = (.+)").
		WithArgs("1756100000000").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM complaints WHERE id = (.+)").
		WithArgs("1756100000000").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := performJSON(handler.DeleteComplaint, "POST", "/delete_complaint", models.DeleteComplaintRequest{ID: "1756100000000"})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetComplaintCounts(t *testing.T) {
	handler, mock, closeDB := newTestHandler(t)
	defer closeDB()

	mock.ExpectQuery("SELECT\\s+SUM").
		WillReturnRows(sqlmock.NewRows([]string{"submitted", "in_progress", "resolved", "total"}).
			AddRow(2, 1, 0, 3))

	w := performJSON(handler.GetComplaintCounts, "GET", "/get_complaint_counts", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var counts models.ComplaintCountsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &counts))
	assert.Equal(t, models.ComplaintCountsResponse{Submitted: 2, InProgress: 1, Resolved: 0, Total: 3}, counts)
}

func TestGetComplaints(t *testing.T) {
	handler, mock, closeDB := newTestHandler(t)
	defer closeDB()

	mock.ExpectQuery("SELECT c.id, c.latitude, c.longitude, c.description, c.status, c.created_at, i.payload").
		WillReturnRows(sqlmock.NewRows([]string{"id", "latitude", "longitude", "description", "status", "created_at", "payload"}).
			AddRow("1756100000000", 37.422, -122.084, "", "Submitted", submitTime, "img-a"))

	w := performJSON(handler.GetComplaints, "GET", "/get_complaints", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ComplaintsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, []string{"img-a"}, resp.Complaints[0].Images)
}
