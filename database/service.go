package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"littertrack/models"

	"github.com/apex/log"
	"github.com/go-sql-driver/mysql"
)

var (
	// ErrNotFound is returned when the referenced complaint does not exist.
	ErrNotFound = errors.New("complaint not found")
	// ErrDuplicateID is returned when a complaint id collides; the caller
	// derives a fresh id and retries.
	ErrDuplicateID = errors.New("duplicate complaint id")
)

const mysqlDuplicateEntry = 1062

type ComplaintsService struct {
	db *sql.DB
}

func NewComplaintsService(db *sql.DB) *ComplaintsService {
	return &ComplaintsService{db: db}
}

// SaveComplaint inserts the complaint and its ordered images in one
// transaction, so a stored complaint is never visible without its images.
func (s *ComplaintsService) SaveComplaint(ctx context.Context, c *models.Complaint) error {
	created, err := time.Parse(time.RFC3339, c.Timestamp)
	if err != nil {
		return fmt.Errorf("bad complaint timestamp %q: %w", c.Timestamp, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Errorf("Error creating transaction: %v", err)
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT
		INTO complaints (id, latitude, longitude, description, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Latitude, c.Longitude, c.Description, string(c.Status), created.UTC().Format(time.DateTime))
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return ErrDuplicateID
		}
		return err
	}

	for seq, payload := range c.Images {
		if _, err := tx.Exec(`INSERT
			INTO complaint_images (complaint_id, seq, payload)
			VALUES (?, ?, ?)`, c.ID, seq, payload); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListComplaints returns every complaint with its images, newest first.
func (s *ComplaintsService) ListComplaints(ctx context.Context) ([]models.Complaint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.latitude, c.longitude, c.description, c.status, c.created_at, i.payload
		FROM complaints c
		LEFT JOIN complaint_images i ON i.complaint_id = c.id
		ORDER BY c.created_at DESC, c.id DESC, i.seq ASC`)
	if err != nil {
		log.Errorf("Could not retrieve complaints: %v", err)
		return nil, err
	}
	defer rows.Close()

	complaints := make([]models.Complaint, 0)
	var current *models.Complaint
	for rows.Next() {
		var (
			id          string
			lat, lon    float64
			description sql.NullString
			status      string
			createdAt   time.Time
			payload     sql.NullString
		)
		if err := rows.Scan(&id, &lat, &lon, &description, &status, &createdAt, &payload); err != nil {
			return nil, err
		}
		if current == nil || current.ID != id {
			complaints = append(complaints, models.Complaint{
				ID:          id,
				Images:      []string{},
				Latitude:    lat,
				Longitude:   lon,
				Description: description.String,
				Timestamp:   createdAt.UTC().Format(time.RFC3339),
				Status:      models.Status(status),
			})
			current = &complaints[len(complaints)-1]
		}
		if payload.Valid {
			current.Images = append(current.Images, payload.String)
		}
	}
	return complaints, rows.Err()
}

// GetComplaint returns a single complaint with its images.
func (s *ComplaintsService) GetComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, latitude, longitude, description, status, created_at
		FROM complaints
		WHERE id = ?`, id)

	var (
		c           models.Complaint
		description sql.NullString
		createdAt   time.Time
	)
	if err := row.Scan(&c.ID, &c.Latitude, &c.Longitude, &description, (*string)(&c.Status), &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c.Description = description.String
	c.Timestamp = createdAt.UTC().Format(time.RFC3339)
	c.Images = []string{}

	rows, err := s.db.QueryContext(ctx, `
		SELECT payload
		FROM complaint_images
		WHERE complaint_id = ?
		ORDER BY seq ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		c.Images = append(c.Images, payload)
	}
	return &c, rows.Err()
}

// UpdateStatus moves a complaint to a new lifecycle status.
func (s *ComplaintsService) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	// Existence is checked first: MySQL reports zero affected rows both for
	// a missing id and for an unchanged status.
	var one int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM complaints WHERE id = ?`, id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	_, err := s.db.ExecContext(ctx, `UPDATE complaints SET status = ? WHERE id = ?`, string(status), id)
	return err
}

// DeleteComplaint removes exactly one complaint and its images.
func (s *ComplaintsService) DeleteComplaint(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Errorf("Error creating transaction: %v", err)
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM complaint_images WHERE complaint_id = ?`, id); err != nil {
		return err
	}
	result, err := tx.Exec(`DELETE FROM complaints WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// CountsByStatus returns the dashboard aggregate counters.
func (s *ComplaintsService) CountsByStatus(ctx context.Context) (*models.ComplaintCountsResponse, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
			SUM(IF(status = 'Submitted', 1, 0)) AS submitted,
			SUM(IF(status = 'In Progress', 1, 0)) AS in_progress,
			SUM(IF(status = 'Resolved', 1, 0)) AS resolved,
			COUNT(*) AS total
		FROM complaints`)

	var submitted, inProgress, resolved sql.NullInt64
	var total int
	if err := row.Scan(&submitted, &inProgress, &resolved, &total); err != nil {
		log.Errorf("Could not count complaints: %v", err)
		return nil, err
	}
	return &models.ComplaintCountsResponse{
		Submitted:  int(submitted.Int64),
		InProgress: int(inProgress.Int64),
		Resolved:   int(resolved.Int64),
		Total:      total,
	}, nil
}

// ListLocations returns complaint positions, optionally limited to a viewport.
func (s *ComplaintsService) ListLocations(ctx context.Context, vp *models.ViewPort) ([]models.ComplaintLocation, error) {
	query := `SELECT id, latitude, longitude FROM complaints`
	args := []any{}
	if vp != nil {
		query += ` WHERE latitude > ? AND longitude > ? AND latitude <= ? AND longitude <= ?`
		args = append(args, vp.LatMin, vp.LonMin, vp.LatMax, vp.LonMax)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Errorf("Could not retrieve complaint locations: %v", err)
		return nil, err
	}
	defer rows.Close()

	locations := make([]models.ComplaintLocation, 0)
	for rows.Next() {
		var loc models.ComplaintLocation
		if err := rows.Scan(&loc.ID, &loc.Latitude, &loc.Longitude); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}
