package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// Role enumerates privilege tiers for team members.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleManager     Role = "MANAGER"
	RoleContributor Role = "CONTRIBUTOR"
)

// Roles lists every role.
var Roles = []Role{RoleAdmin, RoleManager, RoleContributor}

// IsValid reports whether the role is a known tier.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleContributor
}

// CompensationType distinguishes hourly from fixed-rate compensation.
type CompensationType string

const (
	CompensationHourly CompensationType = "hourly"
	CompensationFixed  CompensationType = "fixed"
)

// CompensationStructure is the rate model attached to a team member.
// Fixed-rate members carry per-content-type rates; lookup falls back
// from the exact content type to any other configured rate, then zero.
type CompensationStructure struct {
	Type       CompensationType        `json:"type"`
	HourlyRate float64                 `json:"hourly_rate,omitempty"`
	FixedRates map[ContentType]float64 `json:"fixed_rates,omitempty"`
}

// IsHourly reports whether the member is compensated per hour.
func (c *CompensationStructure) IsHourly() bool {
	return c != nil && c.Type == CompensationHourly
}

// FixedRateFor resolves the fixed rate for a content type. The second
// return reports whether the exact type had a configured rate; when it
// did not, the first configured rate in content-type declaration order
// is used, and zero when none is configured at all.
func (c *CompensationStructure) FixedRateFor(contentType ContentType) (float64, bool) {
	if c == nil || len(c.FixedRates) == 0 {
		return 0, false
	}
	if rate, ok := c.FixedRates[contentType]; ok {
		return rate, true
	}
	for _, ct := range contentTypeOrder {
		if rate, ok := c.FixedRates[ct]; ok {
			return rate, false
		}
	}
	return 0, false
}

var contentTypeOrder = []ContentType{
	ContentTypeBlog,
	ContentTypeTutorial,
	ContentTypeNewsletter,
	ContentTypeCaseStudy,
	ContentTypeSocialMedia,
}

// Rate is the rate recorded on a cost breakdown: a number for hourly
// parties, the literal "fixed" for fixed-rate parties.
type Rate struct {
	Fixed  bool
	Hourly float64
}

// HourlyRate builds a numeric rate.
func HourlyRate(v float64) Rate { return Rate{Hourly: v} }

// FixedRate builds the "fixed" rate marker.
func FixedRate() Rate { return Rate{Fixed: true} }

// MarshalJSON encodes the rate as a number or the string "fixed".
func (r Rate) MarshalJSON() ([]byte, error) {
	if r.Fixed {
		return json.Marshal("fixed")
	}
	return json.Marshal(r.Hourly)
}

// UnmarshalJSON accepts either form.
func (r *Rate) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		r.Fixed = label == "fixed"
		r.Hourly = 0
		return nil
	}
	value, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	r.Fixed = false
	r.Hourly = value
	return nil
}

// TeamMember models a person working on or reviewing content.
type TeamMember struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Compensation *CompensationStructure
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
