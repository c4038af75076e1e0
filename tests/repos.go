package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/account"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/learning"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/registration"
)

// The repository suites below are run against every implementation.

func RegistrationRepositorySuite(t *testing.T, repo registration.Repository) {
	ctx := context.Background()
	now := time.Now().UTC()
	regs := CreateRegistrations(t, repo,
		NewDonation("Ravi", "Pune", 500, registration.StatusPendingReview, now.Add(-3*time.Hour)),
		NewPartner("Annapurna Hotel", "Kolkata", registration.StatusApproved, now.Add(-2*time.Hour)),
		NewDonation("Meera", "Agra", 1200.5, registration.StatusCompleted, now.Add(-time.Hour)),
	)

	t.Run("get", func(t *testing.T) {
		got, err := repo.GetRegistration(ctx, regs[0].ID)
		require.NoError(t, err)
		assert.Equal(t, regs[0], got)

		_, err = repo.GetRegistration(ctx, "00000000-0000-0000-0000-000000000000")
		assert.Equal(t, registration.ErrNotFound, err)
	})

	t.Run("query ordered", func(t *testing.T) {
		got, err := repo.QueryRegistrations(ctx, registration.DefaultOrdering)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{regs[2].ID, regs[1].ID, regs[0].ID}, ids(got))

		got, err = repo.QueryRegistrations(ctx, []core.DBOrdering{{Field: "city", Ascending: true}})
		require.NoError(t, err)
		assert.Equal(t, []string{regs[2].ID, regs[1].ID, regs[0].ID}, ids(got)) // Agra, Kolkata, Pune
	})

	t.Run("summaries", func(t *testing.T) {
		got, err := repo.QuerySummaries(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []registration.Summary{
			{ID: regs[0].ID, Status: registration.StatusPendingReview, Type: registration.TypeDonor},
			{ID: regs[1].ID, Status: registration.StatusApproved, Type: registration.TypePartner},
			{ID: regs[2].ID, Status: registration.StatusCompleted, Type: registration.TypeDonor},
		}, got)
	})

	t.Run("update status", func(t *testing.T) {
		got, err := repo.UpdateRegistrationStatus(ctx, regs[0].ID, registration.StatusApproved, "")
		require.NoError(t, err)
		assert.Equal(t, registration.StatusApproved, got.Status)

		_, err = repo.UpdateRegistrationStatus(ctx, regs[0].ID, registration.StatusRejected, registration.StatusPendingReview)
		assert.Equal(t, registration.ErrStatusConflict, err)

		got, err = repo.UpdateRegistrationStatus(ctx, regs[0].ID, registration.StatusInProgress, registration.StatusApproved)
		require.NoError(t, err)
		assert.Equal(t, registration.StatusInProgress, got.Status)

		_, err = repo.UpdateRegistrationStatus(ctx, "00000000-0000-0000-0000-000000000000", registration.StatusApproved, "")
		assert.Equal(t, registration.ErrNotFound, err)
	})
}

func AccountRepositorySuite(t *testing.T, repo account.Repository) {
	ctx := context.Background()
	acc := CreateAccount(t, repo, "Admin", "admin@kindheart.org", "s3cure-Pass!", []string{account.RoleAdmin}, true)

	t.Run("uniqueness", func(t *testing.T) {
		assert.Equal(t, account.ErrEmailExists, repo.CheckEmailUniqueness(ctx, "ADMIN@kindheart.org"))
		assert.NoError(t, repo.CheckEmailUniqueness(ctx, "admin@kindheart.org", acc))
		assert.NoError(t, repo.CheckEmailUniqueness(ctx, "other@kindheart.org"))
	})

	t.Run("get", func(t *testing.T) {
		got, err := repo.GetAccount(ctx, account.GetFilter{Email: "admin@kindheart.org"})
		require.NoError(t, err)
		assert.Equal(t, acc.ID, got.ID)
		assert.Equal(t, []string{account.RoleAdmin}, got.Roles)

		got, err = repo.GetAccount(ctx, account.GetFilter{ID: acc.ID})
		require.NoError(t, err)
		assert.Equal(t, acc.Email, got.Email)

		_, err = repo.GetAccount(ctx, account.GetFilter{Email: "nobody@kindheart.org"})
		assert.Equal(t, account.ErrNotFound, err)
	})

	t.Run("update", func(t *testing.T) {
		acc.Name = "Head Admin"
		acc.LastLogin = time.Now().UTC().Truncate(time.Microsecond)
		got, err := repo.UpdateAccount(ctx, acc)
		require.NoError(t, err)
		assert.Equal(t, "Head Admin", got.Name)
		assert.True(t, acc.LastLogin.Equal(got.LastLogin))
	})

	t.Run("update or create", func(t *testing.T) {
		upd := acc
		upd.ID = "11111111-1111-1111-1111-111111111111"
		upd.IsActive = false
		got, err := repo.UpdateOrCreateAccount(ctx, upd)
		require.NoError(t, err)
		assert.Equal(t, acc.ID, got.ID, "existing email is updated")
		assert.False(t, got.IsActive)

		created := account.Account{ID: upd.ID, Email: "vol@kindheart.org", Roles: []string{account.RoleVolunteer}, IsActive: true, CreatedAt: acc.CreatedAt, UpdatedAt: acc.UpdatedAt}
		got, err = repo.UpdateOrCreateAccount(ctx, created)
		require.NoError(t, err)
		assert.Equal(t, upd.ID, got.ID)
	})
}

func LearningRepositorySuite(t *testing.T, repo learning.Repository, accRepo account.Repository) {
	ctx := context.Background()
	vol := CreateAccount(t, accRepo, "Volunteer", "vol1@kindheart.org", "s3cure-Pass!", []string{account.RoleVolunteer}, true)
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("sessions", func(t *testing.T) {
		sess, err := repo.CreateSession(ctx, learning.Session{
			ID: "22222222-2222-2222-2222-222222222222", VolunteerID: vol.ID, VolunteerName: vol.Name,
			Token: "token-1", ExpiresAt: now.Add(time.Hour), IsActive: true, CreatedAt: now,
		})
		require.NoError(t, err)

		got, err := repo.GetSessionByToken(ctx, "token-1")
		require.NoError(t, err)
		assert.Equal(t, sess, got)

		_, err = repo.GetSessionByToken(ctx, "nope")
		assert.Equal(t, learning.ErrSessionNotFound, err)

		require.NoError(t, repo.DeactivateSessions(ctx, vol.ID))
		got, err = repo.GetSessionByToken(ctx, "token-1")
		require.NoError(t, err)
		assert.False(t, got.IsActive)

		assert.Equal(t, learning.ErrSessionNotFound, repo.DeactivateSession(ctx, "nope"))
	})

	t.Run("progress", func(t *testing.T) {
		rec := learning.LessonRecord{
			VolunteerID: vol.ID, ModuleName: "basics", LessonName: "intro", CompletionStatus: "completed",
			ProgressPercentage: 100, LastAccessed: now,
		}
		require.NoError(t, repo.UpsertProgress(ctx, rec))
		rec.LastAccessed = now.Add(time.Minute)
		require.NoError(t, repo.UpsertProgress(ctx, rec))

		got, err := repo.QueryProgress(ctx, vol.ID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, rec.LastAccessed.Equal(got[0].LastAccessed))

		got, err = repo.QueryProgress(ctx, "33333333-3333-3333-3333-333333333333")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func ids(regs []registration.Registration) []string {
	out := make([]string, 0, len(regs))
	for _, r := range regs {
		out = append(out, r.ID)
	}
	return out
}
