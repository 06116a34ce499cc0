package workflow

import (
	"fmt"

	"github.com/spec-kit/content-crm/internal/domain"
)

// Hours carries the human-supplied hours-worked figures for hourly
// compensated parties. Figures for fixed-rate parties are ignored.
type Hours struct {
	Assignee float64
	Reviewer float64
}

// HoursRequired reports whether completing a ticket needs hours input:
// true when either assigned party is hourly compensated.
func HoursRequired(assignee, reviewer *domain.TeamMember) bool {
	return memberIsHourly(assignee) || memberIsHourly(reviewer)
}

func memberIsHourly(member *domain.TeamMember) bool {
	return member != nil && member.Compensation.IsHourly()
}

// CompletionCost computes the monetary cost of completing a ticket from
// the assignee's and reviewer's compensation structures. A party with no
// compensation structure costs zero; that is a reported outcome, not an
// error. The returned warnings flag fixed-rate fallbacks that did not
// match the ticket's content type.
func CompletionCost(contentType domain.ContentType, assignee, reviewer *domain.TeamMember, hours Hours) (domain.CostBreakdown, []string) {
	var warnings []string

	assigneeCost, assigneeRate, warn := partyCost(contentType, assignee, hours.Assignee)
	if warn != "" {
		warnings = append(warnings, "assignee: "+warn)
	}
	reviewerCost, reviewerRate, warn := partyCost(contentType, reviewer, hours.Reviewer)
	if warn != "" {
		warnings = append(warnings, "reviewer: "+warn)
	}

	return domain.CostBreakdown{
		AssigneeCost: assigneeCost,
		ReviewerCost: reviewerCost,
		AssigneeRate: assigneeRate,
		ReviewerRate: reviewerRate,
		TotalCost:    assigneeCost + reviewerCost,
	}, warnings
}

func partyCost(contentType domain.ContentType, member *domain.TeamMember, hoursWorked float64) (float64, domain.Rate, string) {
	if member == nil || member.Compensation == nil {
		return 0, domain.HourlyRate(0), ""
	}
	comp := member.Compensation
	if comp.IsHourly() {
		return hoursWorked * comp.HourlyRate, domain.HourlyRate(comp.HourlyRate), ""
	}
	rate, exact := comp.FixedRateFor(contentType)
	warn := ""
	if !exact {
		warn = fmt.Sprintf("no fixed rate configured for content type %q, fell back to %.2f", contentType, rate)
	}
	return rate, domain.FixedRate(), warn
}

// MonetizationRevenue resolves the revenue applied when a ticket enters
// a monetization stage. When the client has an agreed flat rate the
// figure is applied automatically; otherwise the actor must supply it
// through the pricing sub-workflow.
func MonetizationRevenue(client *domain.Client) (float64, bool) {
	if client.HasFlatRate() {
		return client.FlatRate, true
	}
	return 0, false
}
