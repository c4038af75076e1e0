package registration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRow(t *testing.T) {
	created := time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		reg  Registration
		want Row
	}{
		{
			name: "donor with money",
			reg: Registration{
				ID: "1", Type: TypeDonor, Status: StatusInProgress, CreatedAt: created, Name: "Asha", City: "Pune",
				DonationCategories: []Category{CategoryMoney, CategoryFood}, Money: &MoneyDonation{Amount: 1500.5},
			},
			want: Row{
				ID: "1", Date: "05 Jan 2024", TypeLabel: "Donation", DisplayName: "Asha", City: "Pune",
				Category: "money, food", Amount: "₹1500.5", Status: StatusInProgress, StatusClass: "status-badge--inprogress",
			},
		},
		{
			name: "anonymous donor without details",
			reg:  Registration{ID: "2", Type: TypeDonor, Status: StatusPendingReview, CreatedAt: created},
			want: Row{
				ID: "2", Date: "05 Jan 2024", TypeLabel: "Donation", DisplayName: "Anonymous", City: "N/A",
				Category: "N/A", Amount: "N/A", Status: StatusPendingReview, StatusClass: "status-badge--pendingreview",
			},
		},
		{
			name: "partner",
			reg: Registration{
				ID: "3", Type: TypePartner, Status: StatusApproved, CreatedAt: created,
				OrgType: "Restaurant", ContactPerson: "Ravi", City: "Delhi",
			},
			want: Row{
				ID: "3", Date: "05 Jan 2024", TypeLabel: "Partner", DisplayName: "Ravi", City: "Delhi",
				Category: "Restaurant", Amount: "N/A", Status: StatusApproved, StatusClass: "status-badge--approved",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewRow(tt.reg))
		})
	}
}

func TestNewDetailView(t *testing.T) {
	reg := Registration{
		ID:                  "1",
		Type:                TypeDonor,
		Status:              StatusPendingReview,
		CreatedAt:           time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC),
		Name:                "Asha",
		DonationCategories:  []Category{CategoryMoney, CategoryClothes},
		Money:               &MoneyDonation{Amount: 500, Currency: "INR", PaymentMethod: "UPI", Receipt: "Yes"},
		Clothes:             &ClothesDonation{Types: []string{"shirts", "sarees"}, Condition: "Good", Count: 12},
		PreferredPickupDate: "2024-02-10",
	}

	view := NewDetailView(reg)

	var keys []string
	fields := map[string]map[string]string{}
	for _, s := range view.Sections {
		keys = append(keys, s.Key)
		fields[s.Key] = map[string]string{}
		for _, f := range s.Fields {
			fields[s.Key][f.Label] = f.Value
		}
	}
	assert.Equal(t, []string{"basic", "donation", "money", "clothes", "pickup", "timestamps", "additional"}, keys)
	assert.Equal(t, "Donor", fields["basic"]["Type"])
	assert.Equal(t, "N/A", fields["basic"]["Organization"])
	assert.Equal(t, "money, clothes", fields["donation"]["Categories"])
	assert.Equal(t, "No", fields["donation"]["Anonymous"])
	assert.Equal(t, "₹500", fields["money"]["Amount"])
	assert.Equal(t, "N/A", fields["money"]["Transaction Ref"])
	assert.Equal(t, "shirts, sarees", fields["clothes"]["Types"])
	assert.Equal(t, "12", fields["clothes"]["Count"])
	assert.Equal(t, "10/02/2024", fields["pickup"]["Preferred Date"])
	assert.Equal(t, "N/A", fields["pickup"]["Preferred Time"])
	assert.Equal(t, "05/01/2024, 09:30:00", fields["timestamps"]["Created"])
}
