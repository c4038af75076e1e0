package tests

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/apps/api/echo"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/account"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/registration"
	testutil "github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/tests"
)

type dashboardPage struct {
	Items []registration.Row `json:"items"`
	core.Pagination
}

// seedRegistrations creates 12 donations (newest first: donor 1 .. donor 12) and 3 partners, older.
func seedRegistrations(t *testing.T) []registration.Registration {
	now := time.Now()
	var regs []registration.Registration
	for i := 1; i <= 12; i++ {
		status := registration.StatusPendingReview
		if i%3 == 0 {
			status = registration.StatusApproved
		}
		regs = append(regs, testutil.NewDonation(fmt.Sprintf("donor %d", i), "Delhi", float64(i*100), status, now.Add(-time.Duration(i)*time.Hour)))
	}
	regs = append(regs,
		testutil.NewPartner("Annapurna Hotel", "Kolkata", registration.StatusInProgress, now.AddDate(0, 0, -1)),
		testutil.NewPartner("Saravana Bhavan", "Chennai", registration.StatusCompleted, now.AddDate(0, 0, -2)),
		testutil.NewPartner("Haldiram's", "Delhi", registration.StatusRejected, now.AddDate(0, 0, -3)),
	)
	return testutil.CreateRegistrations(t, regRepo, regs...)
}

func Test_adminApi_auth(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateAccount(t, accRepo, "Admin", "admin@sangam.org", "Pwd.12345", []string{account.RoleAdmin}, true)
	volunteer := testutil.CreateAccount(t, accRepo, "Vol", "vol@sangam.org", "Pwd.12345", []string{account.RoleVolunteer}, true)
	_ = testutil.CreateAccount(t, accRepo, "Gone", "gone@sangam.org", "Pwd.12345", []string{account.RoleAdmin}, false)

	tests := []httpTest{
		{
			name:     "no token",
			method:   http.MethodGet,
			path:     "/v1/admin/statistics",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "not an admin",
			method:   http.MethodGet,
			path:     "/v1/admin/statistics",
			token:    getToken(t, volunteer),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "wrong password",
			method:   http.MethodPost,
			path:     "/v1/admin/login",
			body:     []byte(`{"email": "admin@sangam.org", "password": "nope"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "Invalid email or password."}),
		},
		{
			name:     "volunteer login",
			method:   http.MethodPost,
			path:     "/v1/admin/login",
			body:     []byte(`{"email": "vol@sangam.org", "password": "Pwd.12345"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "Invalid email or password."}),
		},
		{
			name:     "deactivated",
			method:   http.MethodPost,
			path:     "/v1/admin/login",
			body:     []byte(`{"email": "gone@sangam.org", "password": "Pwd.12345"}`),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name:     "login",
			method:   http.MethodPost,
			path:     "/v1/admin/login",
			body:     []byte(`{"email": " Admin@Sangam.org ", "password": "Pwd.12345"}`),
			wantCode: http.StatusOK,
		},
		{
			name:     "refresh",
			method:   http.MethodPost,
			path:     "/v1/admin/token-refresh",
			token:    getToken(t, admin),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode != http.StatusOK {
				checkCodeAndData(t, tt, rec)
				return
			}
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var resp LoginResponse
			unmarshal(t, rec, &resp)
			assert.NotEmpty(t, resp.Token)
			assert.True(t, resp.SessionExpiry.After(resp.AuthTime))

			// the new token opens the dashboard
			req, rec = newAuthRequest(http.MethodGet, "/v1/admin/statistics", resp.Token)
			app.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func Test_adminApi_statistics(t *testing.T) {
	app := setup(t)
	admin := testutil.CreateAccount(t, accRepo, "Admin", "admin@sangam.org", "Pwd.12345", []string{account.RoleAdmin}, true)
	token := getToken(t, admin)
	seedRegistrations(t)

	req, rec := newAuthRequest(http.MethodGet, "/v1/admin/statistics", token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, registration.Statistics{
			Total: 15, Pending: 8, Approved: 4, InProgress: 1, Completed: 1, Rejected: 1, Donors: 12, Partners: 3,
		}),
	}, rec)

	t.Run("degraded", func(t *testing.T) {
		db.FailRegistrations(core.NewUnavailableError(nil))
		defer db.FailRegistrations(nil)

		req, rec := newAuthRequest(http.MethodGet, "/v1/admin/statistics", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var stats registration.Statistics
		unmarshal(t, rec, &stats)
		assert.True(t, stats.Degraded)
		assert.Equal(t, 42, stats.Total)
	})
}

func Test_adminApi_queryRegistrations(t *testing.T) {
	app := setup(t)
	admin := testutil.CreateAccount(t, accRepo, "Admin", "admin@sangam.org", "Pwd.12345", []string{account.RoleAdmin}, true)
	token := getToken(t, admin)
	regs := seedRegistrations(t)

	tests := []struct {
		name      string
		query     string
		wantIDs   []string
		wantPage  int
		wantPages int
		wantTotal int
		wantInfo  string
	}{
		{
			name:      "first page",
			wantIDs:   ids(regs[:10]),
			wantPage:  1,
			wantPages: 2,
			wantTotal: 15,
			wantInfo:  "Showing 1-10 of 15 entries",
		},
		{
			name:      "second page",
			query:     "?page=2",
			wantIDs:   ids(regs[10:]),
			wantPage:  2,
			wantPages: 2,
			wantTotal: 15,
			wantInfo:  "Showing 11-15 of 15 entries",
		},
		{
			name:      "page out of range is clamped",
			query:     "?page=9",
			wantIDs:   ids(regs[10:]),
			wantPage:  2,
			wantPages: 2,
			wantTotal: 15,
			wantInfo:  "Showing 11-15 of 15 entries",
		},
		{
			name:      "partners",
			query:     "?type=partner",
			wantIDs:   ids(regs[12:]),
			wantPage:  1,
			wantPages: 1,
			wantTotal: 3,
			wantInfo:  "Showing 1-3 of 3 entries",
		},
		{
			name:      "approved donors",
			query:     "?type=donor&status=Approved",
			wantIDs:   ids([]registration.Registration{regs[2], regs[5], regs[8], regs[11]}),
			wantPage:  1,
			wantPages: 1,
			wantTotal: 4,
			wantInfo:  "Showing 1-4 of 4 entries",
		},
		{
			name:      "search",
			query:     "?search=KOLKATA",
			wantIDs:   ids(regs[12:13]),
			wantPage:  1,
			wantPages: 1,
			wantTotal: 1,
			wantInfo:  "Showing 1-1 of 1 entries",
		},
		{
			name:      "no match",
			query:     "?search=mumbai",
			wantIDs:   []string{},
			wantPage:  1,
			wantPages: 1,
			wantTotal: 0,
			wantInfo:  "Showing 0-0 of 0 entries",
		},
		{
			name:      "oldest first",
			query:     "?ordering=created_at&page=2",
			wantIDs:   ids(reversed(regs)[10:]),
			wantPage:  2,
			wantPages: 2,
			wantTotal: 15,
			wantInfo:  "Showing 11-15 of 15 entries",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/admin/registrations"+tt.query, token)
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var page dashboardPage
			unmarshal(t, rec, &page)
			assert.Equal(t, tt.wantIDs, rowIDs(page.Items))
			assert.Equal(t, tt.wantPage, page.Number)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Equal(t, tt.wantTotal, page.Total)
			assert.Equal(t, tt.wantInfo, page.Info)
		})
	}

	t.Run("rows", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/admin/registrations?search=donor%2012", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var page dashboardPage
		unmarshal(t, rec, &page)
		require.Len(t, page.Items, 1)
		row := page.Items[0]
		assert.Equal(t, "Donation", row.TypeLabel)
		assert.Equal(t, "donor 12", row.DisplayName)
		assert.Equal(t, "money", row.Category)
		assert.Equal(t, "₹1200", row.Amount)
		assert.Equal(t, "status-badge--approved", row.StatusClass)
	})
}

func Test_adminApi_retrieveRegistration(t *testing.T) {
	app := setup(t)
	admin := testutil.CreateAccount(t, accRepo, "Admin", "admin@sangam.org", "Pwd.12345", []string{account.RoleAdmin}, true)
	token := getToken(t, admin)
	regs := seedRegistrations(t)

	t.Run("found", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/admin/registrations/"+regs[12].ID, token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, registration.NewDetailView(regs[12])),
		}, rec)
	})

	t.Run("not found, in hindi", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/admin/registrations/unknown?lang=hi", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "नहीं मिला"}),
		}, rec)
	})
}

func Test_adminApi_updateStatus(t *testing.T) {
	app := setup(t)
	admin := testutil.CreateAccount(t, accRepo, "Admin", "admin@sangam.org", "Pwd.12345", []string{account.RoleAdmin}, true)
	token := getToken(t, admin)
	regs := seedRegistrations(t)
	target := regs[0] // donor 1, pending

	patch := func(id, query string, body []byte) (int, StatusUpdateResponse, string) {
		req, rec := newAuthRequest(http.MethodPatch, "/v1/admin/registrations/"+id+"/status"+query, token, body)
		app.ServeHTTP(rec, req)
		var resp StatusUpdateResponse
		if rec.Code == http.StatusOK {
			unmarshal(t, rec, &resp)
		}
		return rec.Code, resp, rec.Body.String()
	}

	t.Run("updated", func(t *testing.T) {
		code, resp, body := patch(target.ID, "?status=Completed", []byte(`{"status": "Completed", "current_status": "Pending Review"}`))
		require.Equal(t, http.StatusOK, code, body)

		assert.True(t, resp.Updated)
		assert.Equal(t, "Status updated successfully.", resp.Message)
		assert.Equal(t, registration.StatusCompleted, resp.Registration.Status)
		// the reloaded dashboard reflects the stored state
		assert.Equal(t, 7, resp.Statistics.Pending)
		assert.Equal(t, 2, resp.Statistics.Completed)
		assert.Equal(t, 2, resp.Page.Total)
		assert.Contains(t, rowIDs(resp.Page.Items), target.ID)
	})

	t.Run("unchanged", func(t *testing.T) {
		code, resp, body := patch(target.ID, "", []byte(`{"status": "Completed"}`))
		require.Equal(t, http.StatusOK, code, body)
		assert.False(t, resp.Updated)
		assert.Empty(t, resp.Message)
		assert.Equal(t, 15, resp.Page.Total)
	})

	t.Run("conflict", func(t *testing.T) {
		code, _, body := patch(target.ID, "", []byte(`{"status": "Rejected", "current_status": "Pending Review"}`))
		assert.Equal(t, http.StatusConflict, code)
		assert.JSONEq(t, string(marchallObj(t, httpErr{Error: "This registration was updated by someone else. Please reload."})), body)

		reg, err := regRepo.GetRegistration(context.Background(), target.ID)
		require.NoError(t, err)
		assert.Equal(t, registration.StatusCompleted, reg.Status)
	})

	t.Run("invalid status", func(t *testing.T) {
		code, _, body := patch(target.ID, "", []byte(`{"status": "Shipped"}`))
		assert.Equal(t, http.StatusBadRequest, code)
		assert.JSONEq(t, `{"status": "invalid status"}`, body)
	})

	t.Run("not found", func(t *testing.T) {
		code, _, _ := patch("unknown", "", []byte(`{"status": "Approved"}`))
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req, rec := newRequest(http.MethodPatch, "/v1/admin/registrations/"+target.ID+"/status", []byte(`{"status": "Approved"}`))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})
}

func ids(regs []registration.Registration) []string {
	out := make([]string, 0, len(regs))
	for _, reg := range regs {
		out = append(out, reg.ID)
	}
	return out
}

func rowIDs(rows []registration.Row) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ID)
	}
	return out
}

func reversed(regs []registration.Registration) []registration.Registration {
	out := make([]registration.Registration, len(regs))
	for i, reg := range regs {
		out[len(regs)-1-i] = reg
	}
	return out
}
