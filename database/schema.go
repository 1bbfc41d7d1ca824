package database

import (
	"database/sql"
	"fmt"

	"github.com/apex/log"
)

// InitSchema creates the complaint tables if they don't exist and runs the
// one-time migrations for databases created by older revisions.
func InitSchema(db *sql.DB) error {
	log.Info("Initializing complaints database schema...")

	complaintsTableSQL := `
	CREATE TABLE IF NOT EXISTS complaints(
		id VARCHAR(32) NOT NULL,
		latitude DOUBLE NOT NULL,
		longitude DOUBLE NOT NULL,
		description TEXT,
		status ENUM('Submitted', 'In Progress', 'Resolved') NOT NULL DEFAULT 'Submitted',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		INDEX status_index (status),
		INDEX coords_index (latitude, longitude)
	)`

	if _, err := db.Exec(complaintsTableSQL); err != nil {
		return fmt.Errorf("failed to create complaints table: %w", err)
	}
	log.Info("Complaints table created/verified")

	imagesTableSQL := `
	CREATE TABLE IF NOT EXISTS complaint_images(
		complaint_id VARCHAR(32) NOT NULL,
		seq INT NOT NULL,
		payload MEDIUMTEXT NOT NULL,
		PRIMARY KEY (complaint_id, seq),
		CONSTRAINT fk_complaint_images_complaint
			FOREIGN KEY (complaint_id) REFERENCES complaints(id)
			ON DELETE CASCADE
	)`

	if _, err := db.Exec(imagesTableSQL); err != nil {
		return fmt.Errorf("failed to create complaint_images table: %w", err)
	}
	log.Info("Complaint_images table created/verified")

	if err := migrateLegacyImageColumn(db); err != nil {
		return fmt.Errorf("failed to migrate legacy image column: %w", err)
	}

	log.Info("Complaints database schema initialization completed")
	return nil
}

// migrateLegacyImageColumn folds the old singular `image` column into
// complaint_images, then drops it. Earlier revisions stored a single image
// per complaint under that column; the plural list is the canonical form.
func migrateLegacyImageColumn(db *sql.DB) error {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*)
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE()
		  AND TABLE_NAME = 'complaints'
		  AND COLUMN_NAME = 'image'`).Scan(&count)
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	log.Info("Migrating legacy singular image column into complaint_images...")

	result, err := db.Exec(`
		INSERT INTO complaint_images (complaint_id, seq, payload)
		SELECT c.id, 0, c.image
		FROM complaints c
		LEFT JOIN complaint_images i ON i.complaint_id = c.id AND i.seq = 0
		WHERE c.image IS NOT NULL AND c.image != '' AND i.complaint_id IS NULL`)
	if err != nil {
		return err
	}
	migrated, _ := result.RowsAffected()

	if _, err := db.Exec(`ALTER TABLE complaints DROP COLUMN image`); err != nil {
		return err
	}

	log.Infof("Legacy image migration done, %d rows moved", migrated)
	return nil
}
