// Package usercontext maintains the cached per-user snapshot the agent
// reads before answering: profile scalars plus a bounded slice of
// recent entries for every tracked category, behind a two-tier cache
// (process memory over a persistent SQLite tier).
package usercontext

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ishaanxgupta/BabyNest-sub001/agent/records"
)

// UserContext is immutable by replacement: refreshes build a new value
// and swap it in, so a reader holding an old pointer always sees a
// consistent snapshot. Callers must not mutate a returned context;
// Clone first.
type UserContext struct {
	// Identity + profile scalars
	UserID       string    `json:"user_id"`
	Week         int       `json:"week"`
	Location     string    `json:"location,omitempty"`
	Age          int       `json:"age,omitempty"`
	WeightKG     float64   `json:"weight_kg,omitempty"`
	DueDate      time.Time `json:"due_date"`
	LMP          time.Time `json:"lmp"`
	CycleLength  int       `json:"cycle_length,omitempty"`
	PeriodLength int       `json:"period_length,omitempty"`

	// Newest-first recent entries per tracked category.
	TrackingData map[records.Category][]records.Entry `json:"tracking_data,omitempty"`

	LastUpdated time.Time `json:"last_updated"`
}

var (
	ErrNilContext  = errors.New("user context is nil")
	ErrInvalidUser = errors.New("user id is empty")
)

func NewUserContext(userID string, now time.Time) *UserContext {
	return &UserContext{
		UserID:       userID,
		TrackingData: make(map[records.Category][]records.Entry, len(records.TrackedCategories)),
		LastUpdated:  now.UTC(),
	}
}

func (c *UserContext) Touch(now time.Time) {
	c.LastUpdated = now.UTC()
}

// StaleAt reports whether the snapshot has outlived maxAge.
func (c *UserContext) StaleAt(now time.Time, maxAge time.Duration) bool {
	return now.Sub(c.LastUpdated) >= maxAge
}

// EnsureTrackingMap makes sure TrackingData is initialized.
func (c *UserContext) EnsureTrackingMap() {
	if c.TrackingData == nil {
		c.TrackingData = make(map[records.Category][]records.Entry, len(records.TrackedCategories))
	}
}

// Entries returns the recent entries of one category (nil when none).
func (c *UserContext) Entries(cat records.Category) []records.Entry {
	if c == nil || c.TrackingData == nil {
		return nil
	}
	return c.TrackingData[cat]
}

func (c *UserContext) SetEntries(cat records.Category, entries []records.Entry) {
	c.EnsureTrackingMap()
	c.TrackingData[cat] = entries
}

// ApplyProfile copies the profile-derived fields into the snapshot.
func (c *UserContext) ApplyProfile(p *records.Profile, week int) {
	c.Week = week
	c.Location = p.Location
	c.Age = p.Age
	c.WeightKG = p.WeightKG
	c.DueDate = p.DueDate
	c.LMP = p.LMP
	c.CycleLength = p.CycleLength
	c.PeriodLength = p.PeriodLength
}

// Clone returns a deep copy. Partial refreshes patch a clone and then
// publish it, never the shared value.
func (c *UserContext) Clone() *UserContext {
	if c == nil {
		return nil
	}
	dup := *c
	if c.TrackingData != nil {
		dup.TrackingData = make(map[records.Category][]records.Entry, len(c.TrackingData))
		for cat, entries := range c.TrackingData {
			dup.TrackingData[cat] = slices.Clone(entries)
		}
	}
	return &dup
}

func (c *UserContext) Validate() error {
	if c == nil {
		return ErrNilContext
	}
	if strings.TrimSpace(c.UserID) == "" {
		return ErrInvalidUser
	}
	if c.Week < 0 || c.Week > records.MaxWeek {
		return fmt.Errorf("week %d out of range", c.Week)
	}
	for cat := range c.TrackingData {
		if !cat.Tracked() {
			return fmt.Errorf("%w: %q in tracking data", records.ErrUnknownCategory, cat)
		}
	}
	return nil
}

// Describe renders the snapshot as a short plain-text block, used for
// prompt assembly and for deterministic replies when generation is
// unavailable.
func (c *UserContext) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pregnancy week %d.", c.Week)
	if c.Age > 0 {
		fmt.Fprintf(&b, " Age %d.", c.Age)
	}
	if c.Location != "" {
		fmt.Fprintf(&b, " Location: %s.", c.Location)
	}
	if !c.DueDate.IsZero() {
		fmt.Fprintf(&b, " Due date %s.", c.DueDate.Format("2 Jan 2006"))
	}
	for _, cat := range records.TrackedCategories {
		entries := c.Entries(cat)
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\nRecent %s: ", strings.ReplaceAll(string(cat), "_", " "))
		n := len(entries)
		if n > 3 {
			n = 3
		}
		parts := make([]string, 0, n)
		for _, e := range entries[:n] {
			parts = append(parts, fmt.Sprintf("%s (week %d)", e.Value, e.Week))
		}
		b.WriteString(strings.Join(parts, ", "))
	}
	return b.String()
}
