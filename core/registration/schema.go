package registration

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/form"
)

// PartnerRules validate the food partner registration form.
var PartnerRules = []form.Rule{
	{Field: "orgType", Required: true},
	{Field: "orgName", Required: true},
	{Field: "contactPerson", Required: true},
	{Field: "phone", Required: true, Tag: core.PhoneTag},
	{Field: "email", Required: true, Tag: core.SimpleEmailTag},
	{Field: "address", Required: true},
	{Field: "city", Required: true},
	{Field: "pincode", Required: true, Tag: core.PincodeTag},
	{Field: "pickupDays", Kind: form.CheckboxGroup, Required: true},
	{Field: "pickupTime", Required: true},
	{Field: "foodCapacity", Required: true},
	{Field: "foodType", Kind: form.RadioGroup, Required: true},
	{Field: "terms", Kind: form.Checkbox, Required: true, Message: form.MsgTerms},
}

// DonationRules validate the donation form.
var DonationRules = []form.Rule{
	{Field: "donorType", Kind: form.RadioGroup, Required: true, Options: []string{DonorIndividual, DonorOrganization}},
	{Field: "name", Required: true},
	{Field: "phone", Required: true, Tag: core.PhoneTag},
	{Field: "email", Required: true, Tag: core.SimpleEmailTag},
	{Field: "address", Required: true},
	{Field: "city", Required: true},
	{Field: "state", Required: true},
	{Field: "pincode", Required: true, Tag: core.PincodeTag},
	{
		Field: "donationCategories", Kind: form.CheckboxGroup, Required: true,
		Options: []string{string(CategoryMoney), string(CategoryClothes), string(CategoryFood), string(CategoryOther)},
	},
	{Field: "preferredPickup.date", Required: true},
	{Field: "preferredPickup.timeWindow", Required: true},
	{Field: "terms", Kind: form.Checkbox, Required: true, Message: form.MsgTerms},
}

// categoryRules become required once their category is checked.
var categoryRules = map[Category][]form.Rule{
	CategoryMoney: {
		{Field: "money.amount", Required: true, Tag: core.PositiveTag},
		{Field: "money.currency", Required: true},
		{Field: "money.paymentMethod", Required: true},
	},
	CategoryClothes: {
		{Field: "clothes.condition", Required: true},
		{Field: "clothes.count", Required: true, Tag: core.CountTag},
	},
	CategoryFood: {
		{Field: "food.type", Kind: form.RadioGroup, Required: true},
		{Field: "food.quantity", Required: true},
		{Field: "food.pickupAvailable", Kind: form.RadioGroup, Required: true},
	},
	CategoryOther: {
		{Field: "other.description", Required: true},
	},
}

// ConditionalDonationRules returns the rules that depend on the submitted values:
// the organization name for organization donors and the details of every checked category.
func ConditionalDonationRules(values form.Values) []form.Rule {
	var rules []form.Rule
	if values.Get("donorType") == DonorOrganization {
		rules = append(rules, form.Rule{Field: "organization", Required: true})
	}
	for _, cat := range Categories {
		if values.Has("donationCategories", string(cat)) {
			rules = append(rules, categoryRules[cat]...)
		}
	}
	return rules
}

type (
	partnerInput struct {
		OrgType         string   `json:"orgType"`
		OrgName         string   `json:"orgName"`
		ContactPerson   string   `json:"contactPerson"`
		Phone           string   `json:"phone"`
		Email           string   `json:"email"`
		Address         string   `json:"address"`
		City            string   `json:"city"`
		Pincode         string   `json:"pincode"`
		PickupDays      []string `json:"pickupDays"`
		PickupTime      string   `json:"pickupTime"`
		FoodCapacity    string   `json:"foodCapacity"`
		FoodType        string   `json:"foodType"`
		CertificateLink string   `json:"certificateLink"`
	}

	donationInput struct {
		DonorType          string   `json:"donorType"`
		Organization       string   `json:"organization"`
		Name               string   `json:"name"`
		Phone              string   `json:"phone"`
		Email              string   `json:"email"`
		Address            string   `json:"address"`
		City               string   `json:"city"`
		State              string   `json:"state"`
		Pincode            string   `json:"pincode"`
		DonationCategories []string `json:"donationCategories"`
		Money              struct {
			Amount         string `json:"amount"`
			Currency       string `json:"currency"`
			PaymentMethod  string `json:"paymentMethod"`
			TransactionRef string `json:"transactionRef"`
			Receipt        string `json:"receipt"`
		} `json:"money"`
		Clothes struct {
			Types     []string `json:"types"`
			Condition string   `json:"condition"`
			Count     string   `json:"count"`
			Sizes     string   `json:"sizes"`
			Notes     string   `json:"notes"`
		} `json:"clothes"`
		Food struct {
			Type            string `json:"type"`
			Quantity        string `json:"quantity"`
			PickupAvailable string `json:"pickupAvailable"`
			DropOffCenter   string `json:"dropOffCenter"`
			Notes           string `json:"notes"`
		} `json:"food"`
		Other struct {
			Description string `json:"description"`
			Quantity    string `json:"quantity"`
		} `json:"other"`
		PreferredPickup struct {
			Date       string `json:"date"`
			TimeWindow string `json:"timeWindow"`
		} `json:"preferredPickup"`
		Files []string `json:"files"`
		Notes string   `json:"notes"`
	}
)

// decode nests the dotted values and decodes them into `dst`.
func decode(values form.Values, dst interface{}, lists ...string) error {
	data, err := json.Marshal(form.Nest(values, lists...))
	if err != nil {
		return errors.Wrap(err, "marshalling nested values")
	}
	return errors.Wrap(json.Unmarshal(data, dst), "unmarshalling nested values")
}

// NewPartner builds a pending partner registration from validated values.
func NewPartner(values form.Values, now time.Time) (Registration, error) {
	var in partnerInput
	if err := decode(values, &in, "pickupDays"); err != nil {
		return Registration{}, err
	}
	now = now.UTC()
	return Registration{
		Type:            TypePartner,
		Status:          StatusPendingReview,
		CreatedAt:       now,
		Timestamp:       now,
		OrgType:         in.OrgType,
		OrgName:         in.OrgName,
		ContactPerson:   in.ContactPerson,
		Phone:           in.Phone,
		Email:           core.CleanString(in.Email, true /* lower */),
		Address:         in.Address,
		City:            in.City,
		Pincode:         in.Pincode,
		PickupDays:      normalizePickupDays(in.PickupDays),
		PickupTime:      in.PickupTime,
		FoodCapacity:    in.FoodCapacity,
		FoodType:        in.FoodType,
		CertificateLink: in.CertificateLink,
	}, nil
}

// NewDonation builds a pending donor registration from validated values.
// A category detail is only kept when its category was checked.
func NewDonation(values form.Values, now time.Time) (Registration, error) {
	var in donationInput
	if err := decode(values, &in, "donationCategories", "clothes.types", "files"); err != nil {
		return Registration{}, err
	}
	now = now.UTC()
	reg := Registration{
		Type:                TypeDonor,
		Status:              StatusPendingReview,
		CreatedAt:           now,
		Timestamp:           now,
		DonorType:           in.DonorType,
		Anonymous:           values.Checked("anonymous"),
		Name:                in.Name,
		Phone:               in.Phone,
		Email:               core.CleanString(in.Email, true /* lower */),
		Address:             in.Address,
		City:                in.City,
		State:               in.State,
		Pincode:             in.Pincode,
		PreferredPickupDate: in.PreferredPickup.Date,
		PreferredPickupTime: in.PreferredPickup.TimeWindow,
		Files:               in.Files,
		Notes:               in.Notes,
	}
	if in.DonorType == DonorOrganization {
		reg.Organization = in.Organization
	}

	for _, cat := range Categories {
		for _, c := range in.DonationCategories {
			if c == string(cat) {
				reg.DonationCategories = append(reg.DonationCategories, cat)
				break
			}
		}
	}

	if reg.HasCategory(CategoryMoney) {
		amount, _ := strconv.ParseFloat(in.Money.Amount, 64)
		currency := in.Money.Currency
		if currency == "" {
			currency = "INR"
		}
		receipt := "No"
		if strings.EqualFold(in.Money.Receipt, "yes") {
			receipt = "Yes"
		}
		reg.Money = &MoneyDonation{
			Amount:         amount,
			Currency:       currency,
			PaymentMethod:  in.Money.PaymentMethod,
			TransactionRef: in.Money.TransactionRef,
			Receipt:        receipt,
		}
	}
	if reg.HasCategory(CategoryClothes) {
		count, _ := strconv.Atoi(strings.TrimSpace(in.Clothes.Count))
		types := in.Clothes.Types
		if types == nil {
			types = []string{}
		}
		reg.Clothes = &ClothesDonation{
			Types:     types,
			Condition: in.Clothes.Condition,
			Count:     count,
			Sizes:     in.Clothes.Sizes,
			Notes:     in.Clothes.Notes,
		}
	}
	if reg.HasCategory(CategoryFood) {
		reg.Food = &FoodDonation{
			Type:            in.Food.Type,
			Quantity:        in.Food.Quantity,
			PickupAvailable: in.Food.PickupAvailable,
			DropOffCenter:   in.Food.DropOffCenter,
			Notes:           in.Food.Notes,
		}
	}
	if reg.HasCategory(CategoryOther) {
		reg.Other = &OtherDonation{
			Description: in.Other.Description,
			Quantity:    in.Other.Quantity,
		}
	}
	return reg, nil
}
