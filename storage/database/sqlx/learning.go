package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/learning"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/storage/database"
)

const (
	sessionColumns  = "id, volunteer_id, volunteer_name, session_token, expires_at, is_active, created_at"
	progressColumns = "volunteer_id, module_name, lesson_name, completion_status, progress_percentage, last_accessed"
)

type (
	sessionRow struct {
		ID            string    `db:"id"`
		VolunteerID   string    `db:"volunteer_id"`
		VolunteerName string    `db:"volunteer_name"`
		Token         string    `db:"session_token"`
		ExpiresAt     time.Time `db:"expires_at"`
		IsActive      bool      `db:"is_active"`
		CreatedAt     time.Time `db:"created_at"`
	}

	progressRow struct {
		VolunteerID        string    `db:"volunteer_id"`
		ModuleName         string    `db:"module_name"`
		LessonName         string    `db:"lesson_name"`
		CompletionStatus   string    `db:"completion_status"`
		ProgressPercentage int       `db:"progress_percentage"`
		LastAccessed       time.Time `db:"last_accessed"`
	}
)

func (row sessionRow) toSession() learning.Session {
	return learning.Session{
		ID:            row.ID,
		VolunteerID:   row.VolunteerID,
		VolunteerName: row.VolunteerName,
		Token:         row.Token,
		ExpiresAt:     row.ExpiresAt.UTC(),
		IsActive:      row.IsActive,
		CreatedAt:     row.CreatedAt.UTC(),
	}
}

type learningRepository struct {
	repository
}

var _ learning.Repository = (*learningRepository)(nil) // interface compliance check

func NewLearningRepository(conn *database.Connector) learning.Repository {
	return &learningRepository{repository{conn: conn}}
}

func (repo learningRepository) CreateSession(ctx context.Context, sess learning.Session) (learning.Session, error) {
	db, err := repo.db(ctx)
	if err != nil {
		return learning.Session{}, err
	}

	row := sessionRow{
		ID:            sess.ID,
		VolunteerID:   sess.VolunteerID,
		VolunteerName: sess.VolunteerName,
		Token:         sess.Token,
		ExpiresAt:     sess.ExpiresAt.UTC(),
		IsActive:      sess.IsActive,
		CreatedAt:     sess.CreatedAt.UTC(),
	}
	q := `INSERT INTO volunteer_sessions (` + sessionColumns + `)
	VALUES (:id, :volunteer_id, :volunteer_name, :session_token, :expires_at, :is_active, :created_at)`
	if _, err := db.NamedExecContext(ctx, q, row); err != nil {
		return learning.Session{}, errors.Wrap(err, "inserting session")
	}
	return row.toSession(), nil
}

func (repo learningRepository) GetSessionByToken(ctx context.Context, token string) (learning.Session, error) {
	db, err := repo.db(ctx)
	if err != nil {
		return learning.Session{}, err
	}

	var row sessionRow
	q := "SELECT " + sessionColumns + " FROM volunteer_sessions WHERE session_token = $1"
	if err := db.GetContext(ctx, &row, q, token); err != nil {
		if err == sql.ErrNoRows {
			return learning.Session{}, learning.ErrSessionNotFound
		}
		return learning.Session{}, errors.Wrap(err, "getting session")
	}
	return row.toSession(), nil
}

func (repo learningRepository) DeactivateSessions(ctx context.Context, volunteerID string) error {
	db, err := repo.db(ctx)
	if err != nil {
		return err
	}
	q := "UPDATE volunteer_sessions SET is_active = false WHERE volunteer_id = $1 AND is_active"
	_, err = db.ExecContext(ctx, q, volunteerID)
	return errors.Wrap(err, "deactivating sessions")
}

func (repo learningRepository) DeactivateSession(ctx context.Context, token string) error {
	db, err := repo.db(ctx)
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, "UPDATE volunteer_sessions SET is_active = false WHERE session_token = $1", token)
	if err != nil {
		return errors.Wrap(err, "deactivating session")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return learning.ErrSessionNotFound
	}
	return nil
}

func (repo learningRepository) UpsertProgress(ctx context.Context, rec learning.LessonRecord) error {
	db, err := repo.db(ctx)
	if err != nil {
		return err
	}

	row := progressRow{
		VolunteerID:        rec.VolunteerID,
		ModuleName:         rec.ModuleName,
		LessonName:         rec.LessonName,
		CompletionStatus:   rec.CompletionStatus,
		ProgressPercentage: rec.ProgressPercentage,
		LastAccessed:       rec.LastAccessed.UTC(),
	}
	q := `INSERT INTO volunteer_progress (` + progressColumns + `)
	VALUES (:volunteer_id, :module_name, :lesson_name, :completion_status, :progress_percentage, :last_accessed)
	ON CONFLICT (volunteer_id, module_name, lesson_name) DO UPDATE
	SET completion_status = EXCLUDED.completion_status,
		progress_percentage = EXCLUDED.progress_percentage,
		last_accessed = EXCLUDED.last_accessed`
	_, err = db.NamedExecContext(ctx, q, row)
	return errors.Wrap(err, "upserting progress")
}

func (repo learningRepository) QueryProgress(ctx context.Context, volunteerID string) ([]learning.LessonRecord, error) {
	db, err := repo.db(ctx)
	if err != nil {
		return nil, err
	}

	var rows []progressRow
	q := "SELECT " + progressColumns + " FROM volunteer_progress WHERE volunteer_id = $1 ORDER BY last_accessed"
	if err := db.SelectContext(ctx, &rows, q, volunteerID); err != nil {
		return nil, errors.Wrap(err, "querying progress")
	}

	records := make([]learning.LessonRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, learning.LessonRecord{
			VolunteerID:        row.VolunteerID,
			ModuleName:         row.ModuleName,
			LessonName:         row.LessonName,
			CompletionStatus:   row.CompletionStatus,
			ProgressPercentage: row.ProgressPercentage,
			LastAccessed:       row.LastAccessed.UTC(),
		})
	}
	return records, nil
}
