package registration

import (
	"sort"
	"time"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
)

type Type string

const (
	TypeDonor   Type = "donor"
	TypePartner Type = "partner"
)

func (t Type) IsValid() bool {
	return t == TypeDonor || t == TypePartner
}

type Status string

const (
	StatusPendingReview Status = "Pending Review"
	StatusApproved      Status = "Approved"
	StatusInProgress    Status = "In Progress"
	StatusCompleted     Status = "Completed"
	StatusRejected      Status = "Rejected"
)

// Statuses lists every status, in review order. Any status may be set from any other.
var Statuses = []Status{StatusPendingReview, StatusApproved, StatusInProgress, StatusCompleted, StatusRejected}

func (s Status) IsValid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

type Category string

const (
	CategoryMoney   Category = "money"
	CategoryClothes Category = "clothes"
	CategoryFood    Category = "food"
	CategoryOther   Category = "other"
)

var Categories = []Category{CategoryMoney, CategoryClothes, CategoryFood, CategoryOther}

const (
	DonorIndividual   = "Individual"
	DonorOrganization = "Organization"
)

type (
	MoneyDonation struct {
		Amount         float64 `json:"amount"`
		Currency       string  `json:"currency"`
		PaymentMethod  string  `json:"paymentMethod"`
		TransactionRef string  `json:"transactionRef"`
		Receipt        string  `json:"receipt"` // Yes | No
	}

	ClothesDonation struct {
		Types     []string `json:"types"`
		Condition string   `json:"condition"`
		Count     int      `json:"count"`
		Sizes     string   `json:"sizes"`
		Notes     string   `json:"notes"`
	}

	FoodDonation struct {
		Type            string `json:"type"`
		Quantity        string `json:"quantity"`
		PickupAvailable string `json:"pickupAvailable"`
		DropOffCenter   string `json:"dropOffCenter"`
		Notes           string `json:"notes"`
	}

	OtherDonation struct {
		Description string `json:"description"`
		Quantity    string `json:"quantity"`
	}
)

// Registration is a donor or partner submission.
type Registration struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"` // UTC
	Timestamp time.Time `json:"timestamp"`  // UTC

	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`

	// partner
	OrgType         string   `json:"org_type,omitempty"`
	OrgName         string   `json:"org_name,omitempty"`
	ContactPerson   string   `json:"contact_person,omitempty"`
	PickupDays      []string `json:"pickup_days,omitempty"`
	PickupTime      string   `json:"pickup_time,omitempty"`
	FoodCapacity    string   `json:"food_capacity,omitempty"`
	FoodType        string   `json:"food_type,omitempty"`
	CertificateLink string   `json:"certificate_link,omitempty"`

	// donor
	DonorType           string           `json:"donor_type,omitempty"`
	Anonymous           bool             `json:"anonymous"`
	Name                string           `json:"name,omitempty"`
	Organization        string           `json:"organization,omitempty"`
	State               string           `json:"state,omitempty"`
	DonationCategories  []Category       `json:"donation_categories,omitempty"`
	Money               *MoneyDonation   `json:"money"`
	Clothes             *ClothesDonation `json:"clothes"`
	Food                *FoodDonation    `json:"food"`
	Other               *OtherDonation   `json:"other"`
	PreferredPickupDate string           `json:"preferred_pickup_date,omitempty"`
	PreferredPickupTime string           `json:"preferred_pickup_time,omitempty"`
	Files               []string         `json:"files,omitempty"`
	Notes               string           `json:"notes,omitempty"`
}

// HasCategory reports whether the donor selected `cat`.
func (r Registration) HasCategory(cat Category) bool {
	for _, c := range r.DonationCategories {
		if c == cat {
			return true
		}
	}
	return false
}

// ContactName is the name used to greet the submitter.
func (r Registration) ContactName() string {
	if r.Type == TypePartner {
		if r.ContactPerson != "" {
			return r.ContactPerson
		}
		return r.OrgName
	}
	return r.Name
}

// Summary is the minimal projection used to compute dashboard statistics.
type Summary struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
	Type   Type   `json:"type"`
}

var weekdays = map[string]time.Weekday{
	"monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday, "sunday": time.Sunday,
	"mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday, "thu": time.Thursday,
	"fri": time.Friday, "sat": time.Saturday, "sun": time.Sunday,
}

// normalizePickupDays drops blanks and duplicates and orders weekdays Monday to Sunday.
// Unknown values are kept after the weekdays, in submission order.
func normalizePickupDays(days []string) []string {
	rank := func(d string) int {
		wd, ok := weekdays[core.CleanString(d, true)]
		if !ok {
			return 7
		}
		return (int(wd) + 6) % 7 // Monday first
	}

	seen := make(map[string]bool, len(days))
	out := make([]string, 0, len(days))
	for _, d := range days {
		key := core.CleanString(d, true)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, core.CleanString(d))
	}
	sort.SliceStable(out, func(i, j int) bool { return rank(out[i]) < rank(out[j]) })
	return out
}
