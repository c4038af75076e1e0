package registration

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/form"
)

var (
	// errors
	ErrNotFound       = errors.New("registration not found")
	ErrStatusConflict = errors.New("registration status was changed concurrently")
	ErrSpam           = errors.New("submission dropped by spam filter")

	errInvalidStatus = "invalid status"

	// OrderingFields are the fields registrations may be ordered by.
	OrderingFields  = []string{"created_at", "status", "type", "city", "name"}
	DefaultOrdering = []core.DBOrdering{{Field: "created_at", Ascending: false}}

	// statistics shown when the store cannot be queried
	unavailableStatistics = Statistics{Total: 42, Pending: 8, Approved: 28, InProgress: 6, Completed: 15, Donors: 35, Partners: 7, Degraded: true}
	failedStatistics      = Statistics{Total: 25, Pending: 5, Approved: 15, InProgress: 5, Completed: 10, Donors: 20, Partners: 5, Degraded: true}

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateRegistration(ctx context.Context, reg Registration) (Registration, error)
		// QueryRegistrations returns every registration, ordered by `ordering`.
		QueryRegistrations(ctx context.Context, ordering []core.DBOrdering) ([]Registration, error)
		// QuerySummaries returns the (id, status, type) projection of every registration.
		QuerySummaries(ctx context.Context) ([]Summary, error)
		GetRegistration(ctx context.Context, id string) (Registration, error)
		// UpdateRegistrationStatus sets the status of registration `id`.
		// When `expected` is not empty, the update only happens if the stored status equals it,
		// ErrStatusConflict is returned otherwise.
		UpdateRegistrationStatus(ctx context.Context, id string, status, expected Status) (Registration, error)
	}

	Service interface {
		SubmitPartner(ctx context.Context, values form.Values) (Registration, error)
		SubmitDonation(ctx context.Context, values form.Values) (Registration, error)
		LoadStatistics(ctx context.Context) Statistics
		LoadRegistrations(ctx context.Context, ordering []core.DBOrdering) ([]Registration, error)
		Get(ctx context.Context, id string) (Registration, error)
		UpdateStatus(ctx context.Context, id string, upd StatusUpdate) (Registration, bool, error)
	}

	service struct {
		repo      Repository
		validator *form.Validator
		mailSvc   core.EmailService
		logger    core.Logger
	}

	// Statistics are the dashboard aggregate counts.
	Statistics struct {
		Total      int  `json:"total"`
		Pending    int  `json:"pending"`
		Approved   int  `json:"approved"`
		InProgress int  `json:"inProgress"`
		Completed  int  `json:"completed"`
		Rejected   int  `json:"rejected"`
		Donors     int  `json:"donors"`
		Partners   int  `json:"partners"`
		Degraded   bool `json:"degraded"` // placeholder figures, the store could not be queried
	}

	StatusUpdate struct {
		Status        Status `json:"status"`
		CurrentStatus Status `json:"current_status"` // status the admin saw; empty to skip the check
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, validate *validator.Validate, mailSvc core.EmailService, logger core.Logger) Service {
	return &service{
		repo:      repo,
		validator: form.NewValidator(validate),
		mailSvc:   mailSvc,
		logger:    logger,
	}
}

// ComputeStatistics counts summaries per status and per type.
func ComputeStatistics(summaries []Summary) Statistics {
	stats := Statistics{Total: len(summaries)}
	for _, s := range summaries {
		switch s.Status {
		case StatusPendingReview:
			stats.Pending++
		case StatusApproved:
			stats.Approved++
		case StatusInProgress:
			stats.InProgress++
		case StatusCompleted:
			stats.Completed++
		case StatusRejected:
			stats.Rejected++
		}
		switch s.Type {
		case TypeDonor:
			stats.Donors++
		case TypePartner:
			stats.Partners++
		}
	}
	return stats
}

func (svc *service) SubmitPartner(ctx context.Context, values form.Values) (Registration, error) {
	return svc.submit(ctx, values, PartnerRules, NewPartner)
}

func (svc *service) SubmitDonation(ctx context.Context, values form.Values) (Registration, error) {
	rules := append(append([]form.Rule{}, DonationRules...), ConditionalDonationRules(values)...)
	return svc.submit(ctx, values, rules, NewDonation)
}

func (svc *service) submit(
	ctx context.Context,
	values form.Values,
	rules []form.Rule,
	build func(form.Values, time.Time) (Registration, error),
) (Registration, error) {
	if errs := svc.validator.Validate(values, rules...); len(errs) > 0 {
		return Registration{}, core.NewValidationError(nil, errs...)
	}
	// only forms that would be stored are checked for spam
	if form.IsSpam(values) {
		return Registration{}, ErrSpam
	}

	reg, err := build(values, nowFunc())
	if err != nil {
		return Registration{}, errors.Wrap(err, "building registration")
	}
	reg.ID = uuid.NewString()
	reg, err = svc.repo.CreateRegistration(ctx, reg)
	if err != nil {
		return Registration{}, errors.Wrap(err, "inserting registration")
	}

	svc.sendConfirmationMail(reg)
	return reg, nil
}

func (svc *service) sendConfirmationMail(reg Registration) {
	if reg.Email == "" {
		return
	}
	subject := "Thank you for your donation"
	if reg.Type == TypePartner {
		subject = "Your partner registration was received"
	}

	categories := make([]string, 0, len(reg.DonationCategories))
	for _, c := range reg.DonationCategories {
		categories = append(categories, string(c))
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: reg.ContactName(), Address: reg.Email}},
		Subject:      subject,
		TemplateName: "registration_received",
		TemplateData: map[string]interface{}{
			"ID":         reg.ID,
			"Type":       string(reg.Type),
			"Name":       reg.ContactName(),
			"OrgName":    reg.OrgName,
			"Categories": strings.Join(categories, ", "),
			"PickupDate": reg.PreferredPickupDate,
			"Status":     string(reg.Status),
		},
	})
}

// LoadStatistics never fails: when the store cannot be queried, placeholder figures flagged as degraded are returned.
func (svc *service) LoadStatistics(ctx context.Context) Statistics {
	summaries, err := svc.repo.QuerySummaries(ctx)
	if err != nil {
		if core.IsUnavailable(err) {
			svc.logger.Warn("registrations store unavailable, showing placeholder statistics", err)
			return unavailableStatistics
		}
		svc.logger.Error(fmt.Sprintf("loading statistics: %v", err), err)
		return failedStatistics
	}
	return ComputeStatistics(summaries)
}

func (svc *service) LoadRegistrations(ctx context.Context, ordering []core.DBOrdering) ([]Registration, error) {
	ordering = core.AllowedOrderings(ordering, OrderingFields...)
	if len(ordering) == 0 {
		ordering = DefaultOrdering
	}
	regs, err := svc.repo.QueryRegistrations(ctx, ordering)
	if err != nil {
		return nil, errors.Wrap(err, "querying registrations")
	}
	return regs, nil
}

func (svc *service) Get(ctx context.Context, id string) (Registration, error) {
	return svc.repo.GetRegistration(ctx, id)
}

// UpdateStatus sets the status of registration `id`. It reports whether the status changed:
// an empty status, or the current one, leaves the registration untouched.
func (svc *service) UpdateStatus(ctx context.Context, id string, upd StatusUpdate) (Registration, bool, error) {
	if upd.Status != "" && !upd.Status.IsValid() {
		return Registration{}, false, core.NewValidationError(nil, core.FieldError{Field: "status", Error: errInvalidStatus})
	}
	if upd.CurrentStatus != "" && !upd.CurrentStatus.IsValid() {
		return Registration{}, false, core.NewValidationError(nil, core.FieldError{Field: "current_status", Error: errInvalidStatus})
	}

	reg, err := svc.repo.GetRegistration(ctx, id)
	if err != nil {
		return Registration{}, false, err
	}
	if upd.Status == "" || upd.Status == reg.Status {
		return reg, false, nil
	}

	reg, err = svc.repo.UpdateRegistrationStatus(ctx, id, upd.Status, upd.CurrentStatus)
	if err != nil {
		return Registration{}, false, err
	}
	return reg, true, nil
}
