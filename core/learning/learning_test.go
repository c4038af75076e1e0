package learning

import (
	"context"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/account"
)

func TestCatalog(t *testing.T) {
	counts := map[string]int{"nutrition": 4, "food-waste": 4, "volunteer": 7, "module4": 3}
	for _, m := range Modules() {
		assert.Equal(t, counts[m.Name], m.LessonCount(), m.Name)
		for _, l := range m.Lessons {
			assert.Equal(t, l.Number, m.LessonNumber(l.Slug), "slug and number agree for %s", l.Slug)

			byKey, err := m.Lesson(l.Key)
			require.NoError(t, err)
			assert.Equal(t, l, byKey)
		}
	}

	m, err := FindModule(" Food-Waste ")
	require.NoError(t, err)
	assert.Equal(t, "2.1", m.FirstLesson().Key)

	l, err := m.Lesson("food-waste-prevention")
	require.NoError(t, err)
	assert.Equal(t, 3, l.Number)
	assert.Equal(t, "Household Food Waste Prevention Strategies", l.Title)

	_, err = m.Lesson("5")
	assert.Equal(t, ErrLessonNotFound, err)
	_, err = m.Lesson("food-waste-capstone")
	assert.Equal(t, ErrLessonNotFound, err)
	_, err = FindModule("cooking")
	assert.Equal(t, ErrModuleNotFound, err)

	prev, next := m.Neighbours(m.FirstLesson())
	assert.Nil(t, prev)
	assert.Equal(t, "food-waste-global", next.Slug)
	prev, next = m.Neighbours(m.Lessons[3])
	assert.Equal(t, "food-waste-prevention", prev.Slug)
	assert.Nil(t, next)
}

func TestProgress(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	nutrition, _ := FindModule("nutrition")
	module4, _ := FindModule("module4")

	p := NewProgress()
	assert.Equal(t, 0, p.OverallPercent())
	assert.False(t, p.IsLessonCompleted("nutrition", 1))

	assert.True(t, p.CompleteLesson(nutrition, 3, now))
	assert.True(t, p.IsLessonCompleted("nutrition", 1), "earlier lessons count as completed")
	assert.True(t, p.IsLessonCompleted("nutrition", 3))
	assert.False(t, p.IsLessonCompleted("nutrition", 4))
	assert.Equal(t, 75, p.ModulePercent("nutrition"))

	assert.False(t, p.CompleteLesson(nutrition, 2, now), "progress never goes back")
	assert.Equal(t, 3, p.Modules["nutrition"].CompletedLessons)
	assert.False(t, p.CompleteLesson(nutrition, 9, now))

	assert.True(t, p.CompleteLesson(nutrition, 4, now))
	assert.True(t, p.Modules["nutrition"].Completed)
	assert.Equal(t, now, *p.Modules["nutrition"].CompletedDate)
	assert.Equal(t, 25, p.OverallPercent())
	assert.Equal(t, 25, p.Percent)

	assert.True(t, p.CompleteLesson(module4, 1, now))
	assert.Equal(t, 33, p.ModulePercent("module4"))
	assert.Equal(t, 33, p.Modules["module4"].Percent)
	assert.Equal(t, 1, p.CompletedModules())
}

func TestProgressFromRecords(t *testing.T) {
	p := ProgressFromRecords([]LessonRecord{
		{ModuleName: "volunteer", LessonName: "volunteer-food-safety", CompletionStatus: "completed"},
		{ModuleName: "volunteer", LessonName: "volunteer-basics", CompletionStatus: "completed"},
		{ModuleName: "food-waste", LessonName: "food-waste-community", CompletionStatus: "in_progress"},
		{ModuleName: "food-waste", LessonName: "food-waste-capstone", CompletionStatus: "completed"},
		{ModuleName: "cooking", LessonName: "cooking-1", CompletionStatus: "completed"},
	})
	assert.Equal(t, 4, p.Modules["volunteer"].CompletedLessons)
	assert.Equal(t, 57, p.Modules["volunteer"].Percent)
	assert.Equal(t, 0, p.Modules["food-waste"].CompletedLessons)
	assert.NotContains(t, p.Modules, "cooking")
}

var testContent = fstest.MapFS{
	"lessons/nutrition-basics.md": {Data: []byte("# Global Nutrition\n\nMalnutrition affects **millions**.\n")},
	"flashcards/nutrition.md": {Data: []byte(`Intro text that is not a card.

## What are macronutrients?

Carbohydrates, proteins and fats.

## Name a source of iron

- Spinach
- Lentils

## What is a balanced plate?

Half vegetables.
`)},
}

func TestContentStore(t *testing.T) {
	store := NewContentStore(testContent)
	nutrition, _ := FindModule("nutrition")

	html, err := store.RenderLesson(nutrition.FirstLesson())
	require.NoError(t, err)
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<strong>millions</strong>")

	_, err = store.RenderLesson(nutrition.Lessons[1])
	assert.Equal(t, ErrContentNotFound, err)

	cards, err := store.Flashcards(nutrition)
	require.NoError(t, err)
	require.Len(t, cards, 3)
	assert.Equal(t, "What are macronutrients?", cards[0].Front)
	assert.Equal(t, "<p>Carbohydrates, proteins and fats.</p>", cards[0].Back)
	assert.Contains(t, cards[1].Back, "<li>Spinach</li>")
	assert.Equal(t, 3, cards[2].Number)

	page, err := store.FlashcardPage(nutrition, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Number)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Cards, 1)
	assert.Equal(t, "What is a balanced plate?", page.Cards[0].Front)

	foodWaste, _ := FindModule("food-waste")
	_, err = store.Flashcards(foodWaste)
	assert.Equal(t, ErrContentNotFound, err)
}

type fakeRepo struct {
	mu       sync.Mutex
	sessions map[string]Session
	records  map[[3]string]LessonRecord
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sessions: make(map[string]Session), records: make(map[[3]string]LessonRecord)}
}

func (r *fakeRepo) CreateSession(_ context.Context, sess Session) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.Token] = sess
	return sess, nil
}

func (r *fakeRepo) GetSessionByToken(_ context.Context, token string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[token]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

func (r *fakeRepo) DeactivateSessions(_ context.Context, volunteerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for tok, sess := range r.sessions {
		if sess.VolunteerID == volunteerID {
			sess.IsActive = false
			r.sessions[tok] = sess
		}
	}
	return nil
}

func (r *fakeRepo) DeactivateSession(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[token]
	if !ok {
		return ErrSessionNotFound
	}
	sess.IsActive = false
	r.sessions[token] = sess
	return nil
}

func (r *fakeRepo) UpsertProgress(_ context.Context, rec LessonRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[[3]string{rec.VolunteerID, rec.ModuleName, rec.LessonName}] = rec
	return nil
}

func (r *fakeRepo) QueryProgress(_ context.Context, volunteerID string) ([]LessonRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var recs []LessonRecord
	for _, rec := range r.records {
		if rec.VolunteerID == volunteerID {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

// accountsStub authenticates a single volunteer.
type accountsStub struct {
	account.Service
	volunteer account.Account
	password  string
}

func (s accountsStub) Authenticate(_ context.Context, email, pwd string, roles ...string) (account.Account, error) {
	if email != s.volunteer.Email || pwd != s.password {
		return account.Account{}, account.ErrInvalidCredentials
	}
	return s.volunteer, nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newTestService() (Service, *fakeRepo) {
	repo := newFakeRepo()
	accs := accountsStub{
		volunteer: account.Account{ID: "vol-1", Name: "Meera", Email: "meera@khsf.org", IsActive: true, Roles: []string{account.RoleVolunteer}},
		password:  "Str0ng!Pass",
	}
	conf := core.LearningConfig{SessionTTL: 8 * time.Hour, FlashcardsPage: 2}
	return NewService(repo, accs, NewContentStore(testContent), conf, nopLogger{}), repo
}

func TestService_sessions(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	defer func(f func() time.Time) { nowFunc = f }(nowFunc)
	nowFunc = func() time.Time { return now }

	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Login(ctx, "meera@khsf.org", "wrong")
	assert.Equal(t, account.ErrInvalidCredentials, err)

	first, err := svc.Login(ctx, "meera@khsf.org", "Str0ng!Pass")
	require.NoError(t, err)
	assert.Equal(t, "Meera", first.VolunteerName)
	assert.Equal(t, now.Add(8*time.Hour), first.ExpiresAt)

	second, err := svc.Login(ctx, "meera@khsf.org", "Str0ng!Pass")
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	_, err = svc.Authenticate(ctx, first.Token)
	assert.Equal(t, ErrNoSession, err, "a new login closes the previous sessions")

	sess, err := svc.Authenticate(ctx, second.Token)
	require.NoError(t, err)
	assert.Equal(t, "vol-1", sess.VolunteerID)

	nowFunc = func() time.Time { return now.Add(8 * time.Hour) }
	_, err = svc.Authenticate(ctx, second.Token)
	assert.Equal(t, ErrNoSession, err, "expired")
	nowFunc = func() time.Time { return now }

	require.NoError(t, svc.Logout(ctx, second.Token))
	_, err = svc.Authenticate(ctx, second.Token)
	assert.Equal(t, ErrNoSession, err)

	assert.Equal(t, ErrNoSession, svc.Logout(ctx, "unknown"))
	_, err = svc.Authenticate(ctx, "")
	assert.Equal(t, ErrNoSession, err)
}

func TestService_CompleteLesson(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	_, _, err := svc.CompleteLesson(ctx, nil, "nutrition", "1")
	assert.Equal(t, ErrNoSession, err)
	assert.Empty(t, repo.records)

	sess, err := svc.Login(ctx, "meera@khsf.org", "Str0ng!Pass")
	require.NoError(t, err)

	progress, changed, err := svc.CompleteLesson(ctx, &sess, "nutrition", "1.2")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 50, progress.Modules["nutrition"].Percent)
	assert.Contains(t, repo.records, [3]string{"vol-1", "nutrition", "nutrition-cultural"})

	_, changed, err = svc.CompleteLesson(ctx, &sess, "nutrition", "nutrition-basics")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, repo.records, 1)

	_, _, err = svc.CompleteLesson(ctx, &sess, "nutrition", "9")
	assert.Equal(t, ErrLessonNotFound, err)

	loaded, err := svc.LoadProgress(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Modules["nutrition"].CompletedLessons)
}

func TestService_LessonView(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	view, err := svc.LessonView(ctx, nil, "nutrition", "1")
	require.NoError(t, err)
	assert.Equal(t, "Lesson 1 of 4", view.Counter)
	assert.Contains(t, view.HTML, "millions")
	assert.Nil(t, view.Prev)
	assert.Equal(t, "nutrition-cultural", view.Next.Slug)
	assert.False(t, view.Completed)

	sess, err := svc.Login(ctx, "meera@khsf.org", "Str0ng!Pass")
	require.NoError(t, err)
	_, _, err = svc.CompleteLesson(ctx, &sess, "nutrition", "2")
	require.NoError(t, err)

	view, err = svc.LessonView(ctx, &sess, "nutrition", "nutrition-cultural")
	require.NoError(t, err)
	assert.True(t, view.Completed)
	assert.Equal(t, lessonPlaceholder, view.HTML)
	assert.Equal(t, "Lesson 2 of 4", view.Counter)

	_, err = svc.LessonView(ctx, nil, "cooking", "1")
	assert.Equal(t, ErrModuleNotFound, err)

	page, err := svc.Flashcards("nutrition", 1)
	require.NoError(t, err)
	assert.Len(t, page.Cards, 2)
	assert.True(t, page.HasNext)
}
