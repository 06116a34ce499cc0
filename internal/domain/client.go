package domain

import "time"

// Client is a company the content work is produced for. FlatRate is the
// agreed per-ticket revenue; zero means no agreed rate, and monetization
// then requires a manually supplied figure.
type Client struct {
	ID        string
	Name      string
	Email     string
	FlatRate  float64
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasFlatRate reports whether revenue can be applied automatically.
func (c *Client) HasFlatRate() bool {
	return c != nil && c.FlatRate > 0
}

// TicketContent is the content subcollection for a ticket: the drafted
// text plus the review score history used by the fresh-review guard.
type TicketContent struct {
	TicketID      string
	Content       string
	ReviewHistory []ReviewEntry
	UpdatedAt     time.Time
}

// ReviewEntry is one recorded review score.
type ReviewEntry struct {
	ID        string
	Score     int
	Comment   string
	Reviewer  string
	CreatedAt time.Time
}

// HasReviewAfter reports whether any review score was recorded strictly
// after the given instant.
func (c *TicketContent) HasReviewAfter(t time.Time) bool {
	if c == nil {
		return false
	}
	for _, entry := range c.ReviewHistory {
		if entry.CreatedAt.After(t) {
			return true
		}
	}
	return false
}
