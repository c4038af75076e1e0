package registration

import (
	"strconv"
	"strings"
	"time"
)

const (
	notAvailable = "N/A"
	rowDateFmt   = "02 Jan 2006"
	pickupFmt    = "02/01/2006"
	createdFmt   = "02/01/2006, 15:04:05"
)

// Row is the dashboard table view of a registration.
type Row struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	TypeLabel   string `json:"type_label"`
	DisplayName string `json:"display_name"`
	City        string `json:"city"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Status      Status `json:"status"`
	StatusClass string `json:"status_class"`
}

func NewRow(reg Registration) Row {
	row := Row{
		ID:          reg.ID,
		Date:        reg.CreatedAt.Format(rowDateFmt),
		TypeLabel:   "Partner",
		City:        orNA(reg.City),
		Category:    notAvailable,
		Amount:      notAvailable,
		Status:      reg.Status,
		StatusClass: StatusClass(reg.Status),
	}

	if reg.Type == TypeDonor {
		row.TypeLabel = "Donation"
		row.DisplayName = reg.Name
		if row.DisplayName == "" {
			row.DisplayName = "Anonymous"
		}
		if len(reg.DonationCategories) > 0 {
			row.Category = joinCategories(reg.DonationCategories)
		}
	} else {
		row.DisplayName = firstNonEmpty(reg.OrgName, reg.ContactPerson, notAvailable)
		if reg.OrgType != "" {
			row.Category = reg.OrgType
		}
	}

	if reg.Money != nil && reg.Money.Amount > 0 {
		row.Amount = formatAmount(reg.Money.Amount)
	}
	return row
}

// StatusClass is the CSS modifier of the status badge, e.g. "status-badge--inprogress".
func StatusClass(s Status) string {
	return "status-badge--" + strings.ReplaceAll(strings.ToLower(string(s)), " ", "")
}

type (
	Field struct {
		Label string `json:"label"`
		Value string `json:"value"`
	}

	Section struct {
		Key    string  `json:"key"`
		Title  string  `json:"title"`
		Fields []Field `json:"fields"`
	}

	// DetailView is the complete view of one registration, grouped in sections.
	DetailView struct {
		ID       string    `json:"id"`
		Status   Status    `json:"status"`
		Sections []Section `json:"sections"`
	}
)

// NewDetailView groups every field of `reg` in sections. The donation sections are only
// present when their details were given.
func NewDetailView(reg Registration) DetailView {
	typeLabel := "Partner/Organization"
	if reg.Type == TypeDonor {
		typeLabel = "Donor"
	}
	anonymous := "No"
	if reg.Anonymous {
		anonymous = "Yes"
	}
	categories := notAvailable
	if len(reg.DonationCategories) > 0 {
		categories = joinCategories(reg.DonationCategories)
	}

	sections := []Section{
		{Key: "basic", Title: "Basic Information", Fields: []Field{
			{"Type", typeLabel},
			{"Name", orNA(reg.Name)},
			{"Organization", firstNonEmpty(reg.Organization, reg.OrgName, notAvailable)},
			{"Contact Person", orNA(reg.ContactPerson)},
			{"Email", orNA(reg.Email)},
			{"Phone", orNA(reg.Phone)},
			{"City", orNA(reg.City)},
			{"State", orNA(reg.State)},
		}},
		{Key: "donation", Title: "Donation/Partnership Details", Fields: []Field{
			{"Status", string(reg.Status)},
			{"Categories", categories},
			{"Donor Type", orNA(reg.DonorType)},
			{"Anonymous", anonymous},
		}},
	}

	if m := reg.Money; m != nil && m.Amount > 0 {
		sections = append(sections, Section{Key: "money", Title: "Money Donation Details", Fields: []Field{
			{"Amount", formatAmount(m.Amount)},
			{"Currency", orNA(m.Currency)},
			{"Payment Method", orNA(m.PaymentMethod)},
			{"Transaction Ref", orNA(m.TransactionRef)},
			{"Receipt Requested", orNA(m.Receipt)},
		}})
	}
	if c := reg.Clothes; c != nil && len(c.Types) > 0 {
		count := notAvailable
		if c.Count > 0 {
			count = strconv.Itoa(c.Count)
		}
		sections = append(sections, Section{Key: "clothes", Title: "Clothes Donation Details", Fields: []Field{
			{"Types", strings.Join(c.Types, ", ")},
			{"Condition", orNA(c.Condition)},
			{"Count", count},
			{"Sizes", orNA(c.Sizes)},
			{"Notes", orNA(c.Notes)},
		}})
	}
	if f := reg.Food; f != nil && f.Type != "" {
		sections = append(sections, Section{Key: "food", Title: "Food Donation Details", Fields: []Field{
			{"Type", f.Type},
			{"Quantity", orNA(f.Quantity)},
			{"Pickup Available", orNA(f.PickupAvailable)},
			{"Drop-off Center", orNA(f.DropOffCenter)},
			{"Notes", orNA(f.Notes)},
		}})
	}
	if o := reg.Other; o != nil && o.Description != "" {
		sections = append(sections, Section{Key: "other", Title: "Other Donation Details", Fields: []Field{
			{"Description", o.Description},
			{"Quantity", orNA(o.Quantity)},
		}})
	}

	files := notAvailable
	if len(reg.Files) > 0 {
		files = strings.Join(reg.Files, ", ")
	}
	sections = append(sections,
		Section{Key: "pickup", Title: "Pickup Information", Fields: []Field{
			{"Preferred Date", formatPickupDate(reg.PreferredPickupDate)},
			{"Preferred Time", orNA(reg.PreferredPickupTime)},
		}},
		Section{Key: "timestamps", Title: "Timestamps", Fields: []Field{
			{"Created", reg.CreatedAt.Format(createdFmt)},
		}},
		Section{Key: "additional", Title: "Additional Information", Fields: []Field{
			{"Address", orNA(reg.Address)},
			{"Pincode", orNA(reg.Pincode)},
			{"Files", files},
			{"Notes", orNA(reg.Notes)},
		}},
	)

	return DetailView{ID: reg.ID, Status: reg.Status, Sections: sections}
}

func formatAmount(amount float64) string {
	return "₹" + strconv.FormatFloat(amount, 'f', -1, 64)
}

// formatPickupDate reformats an ISO date (yyyy-mm-dd) as dd/mm/yyyy; other values are kept as is.
func formatPickupDate(date string) string {
	if date == "" {
		return notAvailable
	}
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t.Format(pickupFmt)
	}
	return date
}

func joinCategories(cats []Category) string {
	s := make([]string, len(cats))
	for i, c := range cats {
		s[i] = string(c)
	}
	return strings.Join(s, ", ")
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
