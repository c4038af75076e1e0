package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/account"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/registration"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/storage/database"
)

// TestDatabaseURLEnv names the variable holding the URL of the PostgreSQL test database.
const TestDatabaseURLEnv = "TEST_DATABASE_URL"

// PrepareDB connects to the test database, migrates it and empties its tables.
// The test is skipped when TEST_DATABASE_URL is not set.
func PrepareDB(t *testing.T) *database.Connector {
	t.Helper()
	dbURL := os.Getenv(TestDatabaseURLEnv)
	if dbURL == "" {
		t.Skipf("%s not set", TestDatabaseURLEnv)
	}

	db, err := database.OpenURL(dbURL)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	ctx := context.Background()
	if err = database.Ping(ctx, db, 5); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	if err = database.Migrate(db.DB); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	if _, err = db.ExecContext(ctx, "TRUNCATE registrations, volunteer_progress, volunteer_sessions, accounts CASCADE"); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}

	conn := database.NewLoadedConnector(db)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func CreateAccount(
	t *testing.T,
	repo account.Repository,
	name, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) account.Account {
	t.Helper()
	tstamp := time.Now().UTC().Truncate(time.Microsecond)
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	if roles == nil {
		roles = []string{}
	}
	acc := account.Account{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := acc.SetPassword(pwd); err != nil {
			t.Fatalf("CreateAccount() failed: %v", err)
		}
	}
	acc, err := repo.CreateAccount(context.Background(), acc)
	if err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	return acc
}

// NewDonation returns a money donation of `amount` made at `createdAt`.
func NewDonation(name, city string, amount float64, status registration.Status, createdAt time.Time) registration.Registration {
	createdAt = createdAt.UTC().Truncate(time.Microsecond)
	return registration.Registration{
		ID:                 uuid.NewString(),
		Type:               registration.TypeDonor,
		Status:             status,
		CreatedAt:          createdAt,
		Timestamp:          createdAt,
		Phone:              "9876543210",
		Email:              fmt.Sprintf("%s@test.in", uuid.NewString()[:8]),
		Address:            "12 MG Road",
		City:               city,
		Pincode:            "560001",
		DonorType:          registration.DonorIndividual,
		Name:               name,
		State:              "Karnataka",
		DonationCategories: []registration.Category{registration.CategoryMoney},
		Money: &registration.MoneyDonation{
			Amount:        amount,
			Currency:      "INR",
			PaymentMethod: "UPI",
		},
		PreferredPickupDate: "2024-03-15",
		PreferredPickupTime: "morning",
	}
}

// NewPartner returns a partner registration made at `createdAt`.
func NewPartner(orgName, city string, status registration.Status, createdAt time.Time) registration.Registration {
	createdAt = createdAt.UTC().Truncate(time.Microsecond)
	return registration.Registration{
		ID:            uuid.NewString(),
		Type:          registration.TypePartner,
		Status:        status,
		CreatedAt:     createdAt,
		Timestamp:     createdAt,
		Phone:         "9123456780",
		Email:         fmt.Sprintf("%s@partner.in", uuid.NewString()[:8]),
		Address:       "4 Park Street",
		City:          city,
		Pincode:       "700016",
		OrgType:       "Restaurant",
		OrgName:       orgName,
		ContactPerson: "Asha",
		PickupDays:    []string{"Monday", "Friday"},
		PickupTime:    "evening",
		FoodCapacity:  "50 meals",
		FoodType:      "veg",
	}
}

func CreateRegistrations(t *testing.T, repo registration.Repository, regs ...registration.Registration) []registration.Registration {
	t.Helper()
	created := make([]registration.Registration, 0, len(regs))
	for _, reg := range regs {
		reg, err := repo.CreateRegistration(context.Background(), reg)
		if err != nil {
			t.Fatalf("CreateRegistrations() failed: %v", err)
		}
		created = append(created, reg)
	}
	return created
}
