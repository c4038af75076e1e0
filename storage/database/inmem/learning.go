package inmemdb

import (
	"context"
	"sort"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/learning"
)

type learningRepository struct {
	db *learningTables
}

var _ learning.Repository = (*learningRepository)(nil) // interface compliance check

func NewLearningRepository(db *DB) learning.Repository {
	return &learningRepository{db: db.learning}
}

func (repo *learningRepository) CreateSession(ctx context.Context, sess learning.Session) (learning.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	stored := sess
	repo.db.sessions[sess.Token] = &stored
	return sess, nil
}

func (repo *learningRepository) GetSessionByToken(ctx context.Context, token string) (learning.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sess, ok := repo.db.sessions[token]; ok {
		return *sess, nil
	}
	return learning.Session{}, learning.ErrSessionNotFound
}

func (repo *learningRepository) DeactivateSessions(ctx context.Context, volunteerID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, sess := range repo.db.sessions {
		if sess.VolunteerID == volunteerID {
			sess.IsActive = false
		}
	}
	return nil
}

func (repo *learningRepository) DeactivateSession(ctx context.Context, token string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sess, ok := repo.db.sessions[token]
	if !ok {
		return learning.ErrSessionNotFound
	}
	sess.IsActive = false
	return nil
}

func (repo *learningRepository) UpsertProgress(ctx context.Context, rec learning.LessonRecord) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.progress[progressKey{rec.VolunteerID, rec.ModuleName, rec.LessonName}] = rec
	return nil
}

func (repo *learningRepository) QueryProgress(ctx context.Context, volunteerID string) ([]learning.LessonRecord, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	records := make([]learning.LessonRecord, 0)
	for key, rec := range repo.db.progress {
		if key.volunteerID == volunteerID {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].LastAccessed.Before(records[j].LastAccessed) })
	return records, nil
}
