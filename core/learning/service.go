package learning

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/account"
)

var (
	// errors
	ErrSessionNotFound = errors.New("session not found")
	ErrNoSession       = errors.New("no valid volunteer session")

	nowFunc = time.Now // mockable
)

const lessonPlaceholder = "<p>The content of this lesson is being prepared. Please check back soon.</p>"

type (
	// Session is a volunteer login. It is valid while active and not expired.
	Session struct {
		ID            string    `json:"id"`
		VolunteerID   string    `json:"volunteer_id"`
		VolunteerName string    `json:"volunteer_name"`
		Token         string    `json:"token"`
		ExpiresAt     time.Time `json:"expires_at"` // UTC
		IsActive      bool      `json:"is_active"`
		CreatedAt     time.Time `json:"created_at"` // UTC
	}

	LessonView struct {
		Module    string  `json:"module"`
		Title     string  `json:"module_title"`
		Lesson    Lesson  `json:"lesson"`
		HTML      string  `json:"html"`
		Counter   string  `json:"counter"`
		Prev      *Lesson `json:"prev"`
		Next      *Lesson `json:"next"`
		Completed bool    `json:"completed"`
	}

	Repository interface {
		CreateSession(ctx context.Context, sess Session) (Session, error)
		GetSessionByToken(ctx context.Context, token string) (Session, error)
		// DeactivateSessions deactivates every session of the volunteer.
		DeactivateSessions(ctx context.Context, volunteerID string) error
		DeactivateSession(ctx context.Context, token string) error
		// UpsertProgress inserts or replaces the record of (volunteer, module, lesson).
		UpsertProgress(ctx context.Context, rec LessonRecord) error
		QueryProgress(ctx context.Context, volunteerID string) ([]LessonRecord, error)
	}

	Service interface {
		Login(ctx context.Context, email, pwd string) (Session, error)
		Authenticate(ctx context.Context, token string) (Session, error)
		Logout(ctx context.Context, token string) error
		LoadProgress(ctx context.Context, sess Session) (*Progress, error)
		// CompleteLesson requires a valid session: ErrNoSession otherwise.
		CompleteLesson(ctx context.Context, sess *Session, module, lessonRef string) (*Progress, bool, error)
		LessonView(ctx context.Context, sess *Session, module, lessonRef string) (LessonView, error)
		Flashcards(module string, page int) (FlashcardPage, error)
	}

	service struct {
		repo    Repository
		accSvc  account.Service
		content *ContentStore
		conf    core.LearningConfig
		logger  core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, accSvc account.Service, content *ContentStore, conf core.LearningConfig, logger core.Logger) Service {
	return &service{
		repo:    repo,
		accSvc:  accSvc,
		content: content,
		conf:    conf,
		logger:  logger,
	}
}

func (s Session) Valid(now time.Time) bool {
	return s.IsActive && now.Before(s.ExpiresAt)
}

// Login authenticates an active volunteer and opens a new session, closing the previous ones.
func (svc *service) Login(ctx context.Context, email, pwd string) (Session, error) {
	acc, err := svc.accSvc.Authenticate(ctx, email, pwd, account.RoleVolunteer)
	if err != nil {
		return Session{}, err
	}
	if err := svc.repo.DeactivateSessions(ctx, acc.ID); err != nil {
		return Session{}, errors.Wrap(err, "deactivating previous sessions")
	}

	now := nowFunc().UTC()
	sess := Session{
		ID:            uuid.NewString(),
		VolunteerID:   acc.ID,
		VolunteerName: acc.Name,
		Token:         uuid.NewString(),
		ExpiresAt:     now.Add(svc.conf.SessionTTL),
		IsActive:      true,
		CreatedAt:     now,
	}
	sess, err = svc.repo.CreateSession(ctx, sess)
	return sess, errors.Wrap(err, "creating session")
}

func (svc *service) Authenticate(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNoSession
	}
	sess, err := svc.repo.GetSessionByToken(ctx, token)
	if err != nil {
		if errors.Cause(err) == ErrSessionNotFound {
			return Session{}, ErrNoSession
		}
		return Session{}, errors.Wrap(err, "getting session")
	}
	if !sess.Valid(nowFunc()) {
		return Session{}, ErrNoSession
	}
	return sess, nil
}

func (svc *service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return ErrNoSession
	}
	err := svc.repo.DeactivateSession(ctx, token)
	if errors.Cause(err) == ErrSessionNotFound {
		return ErrNoSession
	}
	return err
}

func (svc *service) LoadProgress(ctx context.Context, sess Session) (*Progress, error) {
	records, err := svc.repo.QueryProgress(ctx, sess.VolunteerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying progress")
	}
	return ProgressFromRecords(records), nil
}

func (svc *service) CompleteLesson(ctx context.Context, sess *Session, module, lessonRef string) (*Progress, bool, error) {
	if sess == nil {
		return nil, false, ErrNoSession
	}
	m, err := FindModule(module)
	if err != nil {
		return nil, false, err
	}
	l, err := m.Lesson(lessonRef)
	if err != nil {
		return nil, false, err
	}

	progress, err := svc.LoadProgress(ctx, *sess)
	if err != nil {
		return nil, false, err
	}
	now := nowFunc().UTC()
	if !progress.CompleteLesson(m, l.Number, now) {
		return progress, false, nil
	}

	rec := LessonRecord{
		VolunteerID:        sess.VolunteerID,
		ModuleName:         m.Name,
		LessonName:         l.Slug,
		CompletionStatus:   statusCompleted,
		ProgressPercentage: 100,
		LastAccessed:       now,
	}
	if err := svc.repo.UpsertProgress(ctx, rec); err != nil {
		return nil, false, errors.Wrap(err, "saving progress")
	}
	return progress, true, nil
}

// LessonView renders a lesson. Progress is only looked up when a session is given.
func (svc *service) LessonView(ctx context.Context, sess *Session, module, lessonRef string) (LessonView, error) {
	m, err := FindModule(module)
	if err != nil {
		return LessonView{}, err
	}
	l, err := m.Lesson(lessonRef)
	if err != nil {
		return LessonView{}, err
	}

	html, err := svc.content.RenderLesson(l)
	if err != nil {
		if err != ErrContentNotFound {
			return LessonView{}, err
		}
		svc.logger.Warn(fmt.Sprintf("no content for lesson %s", l.Slug))
		html = lessonPlaceholder
	}

	prev, next := m.Neighbours(l)
	view := LessonView{
		Module:  m.Name,
		Title:   m.Title,
		Lesson:  l,
		HTML:    html,
		Counter: fmt.Sprintf("Lesson %d of %d", l.Number, m.LessonCount()),
		Prev:    prev,
		Next:    next,
	}

	if sess != nil {
		progress, err := svc.LoadProgress(ctx, *sess)
		if err != nil {
			return LessonView{}, err
		}
		view.Completed = progress.IsLessonCompleted(m.Name, l.Number)
	}
	return view, nil
}

func (svc *service) Flashcards(module string, page int) (FlashcardPage, error) {
	m, err := FindModule(module)
	if err != nil {
		return FlashcardPage{}, err
	}
	return svc.content.FlashcardPage(m, page, svc.conf.FlashcardsPage)
}
