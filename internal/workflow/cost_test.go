package workflow

import (
	"strings"
	"testing"

	"github.com/spec-kit/content-crm/internal/domain"
)

func hourlyMember(rate float64) *domain.TeamMember {
	return &domain.TeamMember{
		Name:         "hourly",
		Compensation: &domain.CompensationStructure{Type: domain.CompensationHourly, HourlyRate: rate},
	}
}

func fixedMember(rates map[domain.ContentType]float64) *domain.TeamMember {
	return &domain.TeamMember{
		Name:         "fixed",
		Compensation: &domain.CompensationStructure{Type: domain.CompensationFixed, FixedRates: rates},
	}
}

func TestCompletionCost_HourlyAssigneeFixedReviewer(t *testing.T) {
	assignee := hourlyMember(50)
	reviewer := fixedMember(map[domain.ContentType]float64{domain.ContentTypeBlog: 100})

	breakdown, warnings := CompletionCost(domain.ContentTypeBlog, assignee, reviewer, Hours{Assignee: 3})
	if breakdown.AssigneeCost != 150 {
		t.Errorf("assignee cost = %v, want 150", breakdown.AssigneeCost)
	}
	if breakdown.ReviewerCost != 100 {
		t.Errorf("reviewer cost = %v, want 100", breakdown.ReviewerCost)
	}
	if breakdown.TotalCost != 250 {
		t.Errorf("total cost = %v, want 250", breakdown.TotalCost)
	}
	if breakdown.AssigneeRate.Fixed || breakdown.AssigneeRate.Hourly != 50 {
		t.Errorf("assignee rate = %+v, want hourly 50", breakdown.AssigneeRate)
	}
	if !breakdown.ReviewerRate.Fixed {
		t.Errorf("reviewer rate = %+v, want fixed marker", breakdown.ReviewerRate)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
}

func TestCompletionCost_FixedFallbackWarns(t *testing.T) {
	reviewer := fixedMember(map[domain.ContentType]float64{domain.ContentTypeTutorial: 80})

	breakdown, warnings := CompletionCost(domain.ContentTypeBlog, nil, reviewer, Hours{})
	if breakdown.ReviewerCost != 80 {
		t.Errorf("reviewer cost = %v, want fallback 80", breakdown.ReviewerCost)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", warnings)
	}
	if !strings.Contains(warnings[0], "reviewer") || !strings.Contains(warnings[0], "blog") {
		t.Errorf("warning %q should name the party and the content type", warnings[0])
	}
}

func TestCompletionCost_MissingCompensationCostsZero(t *testing.T) {
	member := &domain.TeamMember{Name: "uncompensated"}

	breakdown, warnings := CompletionCost(domain.ContentTypeBlog, member, nil, Hours{Assignee: 8})
	if breakdown.TotalCost != 0 {
		t.Errorf("total cost = %v, want 0", breakdown.TotalCost)
	}
	if breakdown.AssigneeRate.Fixed || breakdown.AssigneeRate.Hourly != 0 {
		t.Errorf("assignee rate = %+v, want hourly 0", breakdown.AssigneeRate)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none; missing compensation is a reported outcome", warnings)
	}
}

func TestHoursRequired(t *testing.T) {
	fixed := fixedMember(map[domain.ContentType]float64{domain.ContentTypeBlog: 100})

	if HoursRequired(fixed, nil) {
		t.Error("fixed-only parties should not require hours")
	}
	if HoursRequired(nil, nil) {
		t.Error("no parties should not require hours")
	}
	if !HoursRequired(hourlyMember(50), fixed) {
		t.Error("an hourly assignee should require hours")
	}
	if !HoursRequired(fixed, hourlyMember(40)) {
		t.Error("an hourly reviewer should require hours")
	}
}

func TestMonetizationRevenue(t *testing.T) {
	revenue, auto := MonetizationRevenue(&domain.Client{FlatRate: 1200})
	if !auto || revenue != 1200 {
		t.Errorf("revenue = %v auto = %v, want 1200 automatic", revenue, auto)
	}

	if _, auto := MonetizationRevenue(&domain.Client{}); auto {
		t.Error("a client without a flat rate should require manual pricing")
	}
}
