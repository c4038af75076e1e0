package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/registration"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/storage/database"
)

const (
	registrationColumns = `id, type, status, created_at, timestamp, phone, email, address, city, pincode,
	org_type, org_name, contact_person, pickup_days, pickup_time, food_capacity, food_type, certificate_link,
	donor_type, anonymous, name, organization, state, donation_categories, money, clothes, food, other,
	preferred_pickup_date, preferred_pickup_time, files, notes`

	insertRegistration = `INSERT INTO registrations (` + registrationColumns + `) VALUES (
	:id, :type, :status, :created_at, :timestamp, :phone, :email, :address, :city, :pincode,
	:org_type, :org_name, :contact_person, :pickup_days, :pickup_time, :food_capacity, :food_type, :certificate_link,
	:donor_type, :anonymous, :name, :organization, :state, :donation_categories, :money, :clothes, :food, :other,
	:preferred_pickup_date, :preferred_pickup_time, :files, :notes)`
)

var registrationOrderings = map[string]string{
	"created_at": "created_at",
	"status":     "status",
	"type":       "type",
	"city":       "city",
	"name":       "COALESCE(name, org_name, contact_person)",
}

type (
	registrationRow struct {
		ID        string    `db:"id"`
		Type      string    `db:"type"`
		Status    string    `db:"status"`
		CreatedAt time.Time `db:"created_at"`
		Timestamp time.Time `db:"timestamp"`

		Phone   null.String `db:"phone"`
		Email   null.String `db:"email"`
		Address null.String `db:"address"`
		City    null.String `db:"city"`
		Pincode null.String `db:"pincode"`

		OrgType         null.String    `db:"org_type"`
		OrgName         null.String    `db:"org_name"`
		ContactPerson   null.String    `db:"contact_person"`
		PickupDays      pq.StringArray `db:"pickup_days"`
		PickupTime      null.String    `db:"pickup_time"`
		FoodCapacity    null.String    `db:"food_capacity"`
		FoodType        null.String    `db:"food_type"`
		CertificateLink null.String    `db:"certificate_link"`

		DonorType           null.String    `db:"donor_type"`
		Anonymous           bool           `db:"anonymous"`
		Name                null.String    `db:"name"`
		Organization        null.String    `db:"organization"`
		State               null.String    `db:"state"`
		DonationCategories  pq.StringArray `db:"donation_categories"`
		Money               null.JSON      `db:"money"`
		Clothes             null.JSON      `db:"clothes"`
		Food                null.JSON      `db:"food"`
		Other               null.JSON      `db:"other"`
		PreferredPickupDate null.String    `db:"preferred_pickup_date"`
		PreferredPickupTime null.String    `db:"preferred_pickup_time"`
		Files               pq.StringArray `db:"files"`
		Notes               null.String    `db:"notes"`
	}

	summaryRow struct {
		ID     string `boil:"id"`
		Status string `boil:"status"`
		Type   string `boil:"type"`
	}
)

type registrationRepository struct {
	repository
}

var _ registration.Repository = (*registrationRepository)(nil) // interface compliance check

func NewRegistrationRepository(conn *database.Connector) registration.Repository {
	return &registrationRepository{repository{conn: conn}}
}

func str(s string) null.String {
	return null.NewString(s, s != "")
}

func jsonColumn(v interface{}, isNil bool) (null.JSON, error) {
	if isNil {
		return null.JSON{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return null.JSON{}, err
	}
	return null.JSONFrom(data), nil
}

func unmarshalColumn(col null.JSON, v interface{}) error {
	if !col.Valid {
		return nil
	}
	return col.Unmarshal(v)
}

func toRegistrationRow(reg registration.Registration) (registrationRow, error) {
	row := registrationRow{
		ID:                  reg.ID,
		Type:                string(reg.Type),
		Status:              string(reg.Status),
		CreatedAt:           reg.CreatedAt.UTC(),
		Timestamp:           reg.Timestamp.UTC(),
		Phone:               str(reg.Phone),
		Email:               str(reg.Email),
		Address:             str(reg.Address),
		City:                str(reg.City),
		Pincode:             str(reg.Pincode),
		OrgType:             str(reg.OrgType),
		OrgName:             str(reg.OrgName),
		ContactPerson:       str(reg.ContactPerson),
		PickupDays:          reg.PickupDays,
		PickupTime:          str(reg.PickupTime),
		FoodCapacity:        str(reg.FoodCapacity),
		FoodType:            str(reg.FoodType),
		CertificateLink:     str(reg.CertificateLink),
		DonorType:           str(reg.DonorType),
		Anonymous:           reg.Anonymous,
		Name:                str(reg.Name),
		Organization:        str(reg.Organization),
		State:               str(reg.State),
		PreferredPickupDate: str(reg.PreferredPickupDate),
		PreferredPickupTime: str(reg.PreferredPickupTime),
		Files:               reg.Files,
		Notes:               str(reg.Notes),
	}
	for _, cat := range reg.DonationCategories {
		row.DonationCategories = append(row.DonationCategories, string(cat))
	}

	var err error
	if row.Money, err = jsonColumn(reg.Money, reg.Money == nil); err != nil {
		return row, errors.Wrap(err, "encoding money")
	}
	if row.Clothes, err = jsonColumn(reg.Clothes, reg.Clothes == nil); err != nil {
		return row, errors.Wrap(err, "encoding clothes")
	}
	if row.Food, err = jsonColumn(reg.Food, reg.Food == nil); err != nil {
		return row, errors.Wrap(err, "encoding food")
	}
	if row.Other, err = jsonColumn(reg.Other, reg.Other == nil); err != nil {
		return row, errors.Wrap(err, "encoding other")
	}
	return row, nil
}

func (row registrationRow) toRegistration() (registration.Registration, error) {
	reg := registration.Registration{
		ID:                  row.ID,
		Type:                registration.Type(row.Type),
		Status:              registration.Status(row.Status),
		CreatedAt:           row.CreatedAt.UTC(),
		Timestamp:           row.Timestamp.UTC(),
		Phone:               row.Phone.String,
		Email:               row.Email.String,
		Address:             row.Address.String,
		City:                row.City.String,
		Pincode:             row.Pincode.String,
		OrgType:             row.OrgType.String,
		OrgName:             row.OrgName.String,
		ContactPerson:       row.ContactPerson.String,
		PickupDays:          row.PickupDays,
		PickupTime:          row.PickupTime.String,
		FoodCapacity:        row.FoodCapacity.String,
		FoodType:            row.FoodType.String,
		CertificateLink:     row.CertificateLink.String,
		DonorType:           row.DonorType.String,
		Anonymous:           row.Anonymous,
		Name:                row.Name.String,
		Organization:        row.Organization.String,
		State:               row.State.String,
		PreferredPickupDate: row.PreferredPickupDate.String,
		PreferredPickupTime: row.PreferredPickupTime.String,
		Files:               row.Files,
		Notes:               row.Notes.String,
	}
	for _, cat := range row.DonationCategories {
		reg.DonationCategories = append(reg.DonationCategories, registration.Category(cat))
	}

	if row.Money.Valid {
		reg.Money = new(registration.MoneyDonation)
		if err := unmarshalColumn(row.Money, reg.Money); err != nil {
			return reg, errors.Wrap(err, "decoding money")
		}
	}
	if row.Clothes.Valid {
		reg.Clothes = new(registration.ClothesDonation)
		if err := unmarshalColumn(row.Clothes, reg.Clothes); err != nil {
			return reg, errors.Wrap(err, "decoding clothes")
		}
	}
	if row.Food.Valid {
		reg.Food = new(registration.FoodDonation)
		if err := unmarshalColumn(row.Food, reg.Food); err != nil {
			return reg, errors.Wrap(err, "decoding food")
		}
	}
	if row.Other.Valid {
		reg.Other = new(registration.OtherDonation)
		if err := unmarshalColumn(row.Other, reg.Other); err != nil {
			return reg, errors.Wrap(err, "decoding other")
		}
	}
	return reg, nil
}

// trapNotFound maps "no rows" and malformed ids to registration.ErrNotFound
func trapNotFound(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows || pqErrorCode(err) == codeInvalidTextRepresentation {
		return registration.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo registrationRepository) CreateRegistration(ctx context.Context, reg registration.Registration) (registration.Registration, error) {
	db, err := repo.db(ctx)
	if err != nil {
		return registration.Registration{}, err
	}
	row, err := toRegistrationRow(reg)
	if err != nil {
		return registration.Registration{}, err
	}
	if _, err := db.NamedExecContext(ctx, insertRegistration, row); err != nil {
		return registration.Registration{}, errors.Wrap(err, "inserting registration")
	}
	return reg, nil
}

func (repo registrationRepository) QueryRegistrations(ctx context.Context, ordering []core.DBOrdering) ([]registration.Registration, error) {
	db, err := repo.db(ctx)
	if err != nil {
		return nil, err
	}

	var rows []registrationRow
	q := "SELECT " + registrationColumns + " FROM registrations" + orderBy(ordering, registrationOrderings, "id ASC")
	if err := db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying registrations")
	}

	regs := make([]registration.Registration, 0, len(rows))
	for _, row := range rows {
		reg, err := row.toRegistration()
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, nil
}

func (repo registrationRepository) QuerySummaries(ctx context.Context) ([]registration.Summary, error) {
	db, err := repo.db(ctx)
	if err != nil {
		return nil, err
	}

	var rows []summaryRow
	if err := queries.Raw("SELECT id, status, type FROM registrations").Bind(ctx, db, &rows); err != nil {
		return nil, errors.Wrap(err, "querying summaries")
	}

	summaries := make([]registration.Summary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, registration.Summary{
			ID:     row.ID,
			Status: registration.Status(row.Status),
			Type:   registration.Type(row.Type),
		})
	}
	return summaries, nil
}

func (repo registrationRepository) GetRegistration(ctx context.Context, id string) (registration.Registration, error) {
	db, err := repo.db(ctx)
	if err != nil {
		return registration.Registration{}, err
	}

	var row registrationRow
	q := "SELECT " + registrationColumns + " FROM registrations WHERE id = $1"
	if err := db.GetContext(ctx, &row, q, id); err != nil {
		return registration.Registration{}, trapNotFound(err, "getting registration")
	}
	return row.toRegistration()
}

func (repo registrationRepository) UpdateRegistrationStatus(ctx context.Context, id string, status, expected registration.Status) (registration.Registration, error) {
	db, err := repo.db(ctx)
	if err != nil {
		return registration.Registration{}, err
	}

	var row registrationRow
	q := "UPDATE registrations SET status = $2 WHERE id = $1 AND ($3::text = '' OR status = $3::text) RETURNING " + registrationColumns
	err = db.GetContext(ctx, &row, q, id, string(status), string(expected))
	if err == sql.ErrNoRows {
		// either unknown, or changed by someone else
		if _, err := repo.GetRegistration(ctx, id); err != nil {
			return registration.Registration{}, err
		}
		return registration.Registration{}, registration.ErrStatusConflict
	}
	if err != nil {
		return registration.Registration{}, trapNotFound(err, "updating registration status")
	}
	return row.toRegistration()
}
