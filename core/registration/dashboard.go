package registration

import (
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
)

// DefaultPageSize is the number of registrations shown per dashboard page.
const DefaultPageSize = 10

// Filter narrows the dashboard list. Empty fields match everything.
type Filter struct {
	Status Status `query:"status"`
	Type   Type   `query:"type"`
	Search string `query:"search"`
}

// Match reports whether `reg` satisfies every set criterion.
func (f Filter) Match(reg Registration) bool {
	if f.Status != "" && reg.Status != f.Status {
		return false
	}
	if f.Type != "" && reg.Type != f.Type {
		return false
	}
	search := core.CleanString(f.Search)
	if search == "" {
		return true
	}
	for _, s := range []string{reg.Name, reg.Organization, reg.OrgName, reg.ContactPerson, reg.City, reg.Phone, reg.Email} {
		if core.ContainsFold(s, search) {
			return true
		}
	}
	return false
}

// Page is one page of dashboard rows.
type Page struct {
	Items []Row `json:"items"`
	core.Pagination
}

// Dashboard holds the registrations loaded for one admin view and the current filter and page.
// It is not safe for concurrent use.
type Dashboard struct {
	all      []Registration
	filtered []Registration
	filter   Filter
	page     int
	pageSize int
}

func NewDashboard(pageSize int) *Dashboard {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Dashboard{pageSize: pageSize, page: 1}
}

// Load replaces the registrations and re-applies the current filter, keeping the current page when possible.
func (d *Dashboard) Load(regs []Registration) {
	d.all = regs
	page := d.page
	d.refilter()
	d.GoToPage(page)
}

// ApplyFilters replaces the filter and goes back to the first page.
func (d *Dashboard) ApplyFilters(f Filter) {
	d.filter = f
	d.refilter()
	d.page = 1
}

// GoToPage moves to page `n`, clamped to the available pages.
func (d *Dashboard) GoToPage(n int) {
	d.page = core.Paginate(len(d.filtered), n, d.pageSize).Number
}

func (d *Dashboard) Filter() Filter { return d.filter }

// Filtered returns the registrations matching the current filter, in load order.
func (d *Dashboard) Filtered() []Registration { return d.filtered }

// Page returns the rows of the current page.
func (d *Dashboard) Page() Page {
	p := core.Paginate(len(d.filtered), d.page, d.pageSize)
	lo, hi := p.Bounds()
	items := make([]Row, 0, hi-lo)
	for _, reg := range d.filtered[lo:hi] {
		items = append(items, NewRow(reg))
	}
	return Page{Items: items, Pagination: p}
}

func (d *Dashboard) refilter() {
	d.filtered = make([]Registration, 0, len(d.all))
	for _, reg := range d.all {
		if d.filter.Match(reg) {
			d.filtered = append(d.filtered, reg)
		}
	}
}
