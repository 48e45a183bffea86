// Package records holds the typed tracking data of the companion: the
// pregnancy profile, one log type per tracking category, appointments
// and tasks, plus the SQLite-backed store that persists them.
package records

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Category identifies one kind of tracked data. The set is closed;
// code that maps categories to behavior switches over it exhaustively
// instead of passing raw strings around.
type Category string

const (
	CategoryProfile       Category = "profile"
	CategoryWeight        Category = "weight"
	CategoryMedicine      Category = "medicine"
	CategorySymptoms      Category = "symptoms"
	CategoryBloodPressure Category = "blood_pressure"
	CategoryDischarge     Category = "discharge"
	CategoryMood          Category = "mood"
	CategorySleep         Category = "sleep"
)

// TrackedCategories lists the per-entry categories carried in a user
// context snapshot, in a fixed order. CategoryProfile is not among
// them: profile data lives in the snapshot's scalar fields.
var TrackedCategories = []Category{
	CategoryWeight,
	CategoryMedicine,
	CategorySymptoms,
	CategoryBloodPressure,
	CategoryDischarge,
	CategoryMood,
	CategorySleep,
}

func (c Category) Tracked() bool {
	for _, t := range TrackedCategories {
		if c == t {
			return true
		}
	}
	return false
}

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrRecordNotFound  = errors.New("record not found")
	ErrInvalidProfile  = errors.New("profile needs a due date or last period date")
	ErrUnknownCategory = errors.New("unknown tracking category")
)

// Entry is the denormalized form of one tracking record as carried in
// a user context snapshot: enough to render a history line, feed a
// trend computation or address the backing record without touching the
// store again.
type Entry struct {
	ID     string    `json:"id,omitempty"`
	Week   int       `json:"week"`
	At     time.Time `json:"at"`
	Value  string    `json:"value"`
	Amount float64   `json:"amount,omitempty"`
	Note   string    `json:"note,omitempty"`
}

// EntryRecord is implemented by every per-category log type.
type EntryRecord interface {
	Entry() Entry
}

// Profile is the single pregnancy profile of a user. DueDate is
// derived from LMP on save when not given explicitly.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:pr"`

	UserID       string    `bun:"user_id,pk"`
	Location     string    `bun:"location"`
	Age          int       `bun:"age"`
	WeightKG     float64   `bun:"weight_kg"`
	DueDate      time.Time `bun:"due_date,nullzero"`
	LMP          time.Time `bun:"lmp,nullzero"`
	CycleLength  int       `bun:"cycle_length"`
	PeriodLength int       `bun:"period_length"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

const (
	// Naegele term: 280 days from the last menstrual period, shifted
	// by the deviation from a 28-day cycle when one is recorded.
	gestationDays = 280
	defaultCycle  = 28

	MinWeek = 1
	MaxWeek = 40
)

// conceptionStart returns the date gestational age is counted from.
func (p *Profile) conceptionStart() (time.Time, error) {
	if !p.LMP.IsZero() {
		return p.LMP, nil
	}
	if !p.DueDate.IsZero() {
		return p.DueDate.AddDate(0, 0, -p.termDays()), nil
	}
	return time.Time{}, ErrInvalidProfile
}

func (p *Profile) termDays() int {
	days := gestationDays
	if p.CycleLength > 0 {
		days += p.CycleLength - defaultCycle
	}
	return days
}

// DeriveDueDate fills DueDate from LMP when absent and returns it.
func (p *Profile) DeriveDueDate() (time.Time, error) {
	if p.DueDate.IsZero() {
		if p.LMP.IsZero() {
			return time.Time{}, ErrInvalidProfile
		}
		p.DueDate = p.LMP.AddDate(0, 0, p.termDays())
	}
	return p.DueDate, nil
}

// WeekAt returns the gestational week at the given instant, clamped to
// [MinWeek, MaxWeek].
func (p *Profile) WeekAt(now time.Time) (int, error) {
	start, err := p.conceptionStart()
	if err != nil {
		return 0, err
	}
	week := int(now.Sub(start).Hours() / 24 / 7)
	if week < MinWeek {
		week = MinWeek
	}
	if week > MaxWeek {
		week = MaxWeek
	}
	return week, nil
}

type WeightLog struct {
	bun.BaseModel `bun:"table:weight_logs,alias:wl"`

	ID       string    `bun:"id,pk"`
	UserID   string    `bun:"user_id,notnull"`
	Week     int       `bun:"week,notnull"`
	WeightKG float64   `bun:"weight_kg,notnull"`
	Note     string    `bun:"note"`
	LoggedAt time.Time `bun:"logged_at,notnull"`
}

func (l WeightLog) Entry() Entry {
	return Entry{ID: l.ID, Week: l.Week, At: l.LoggedAt, Value: fmt.Sprintf("%.1f kg", l.WeightKG), Amount: l.WeightKG, Note: l.Note}
}

type BloodPressureLog struct {
	bun.BaseModel `bun:"table:blood_pressure_logs,alias:bp"`

	ID        string    `bun:"id,pk"`
	UserID    string    `bun:"user_id,notnull"`
	Week      int       `bun:"week,notnull"`
	Systolic  int       `bun:"systolic,notnull"`
	Diastolic int       `bun:"diastolic,notnull"`
	Note      string    `bun:"note"`
	LoggedAt  time.Time `bun:"logged_at,notnull"`
}

func (l BloodPressureLog) Entry() Entry {
	return Entry{ID: l.ID, Week: l.Week, At: l.LoggedAt, Value: fmt.Sprintf("%d/%d", l.Systolic, l.Diastolic), Amount: float64(l.Systolic), Note: l.Note}
}

type SleepLog struct {
	bun.BaseModel `bun:"table:sleep_logs,alias:sl"`

	ID       string    `bun:"id,pk"`
	UserID   string    `bun:"user_id,notnull"`
	Week     int       `bun:"week,notnull"`
	Hours    float64   `bun:"hours,notnull"`
	Quality  string    `bun:"quality"`
	LoggedAt time.Time `bun:"logged_at,notnull"`
}

func (l SleepLog) Entry() Entry {
	v := fmt.Sprintf("%.1f h", l.Hours)
	if l.Quality != "" {
		v += " (" + l.Quality + ")"
	}
	return Entry{ID: l.ID, Week: l.Week, At: l.LoggedAt, Value: v, Amount: l.Hours}
}

type MoodLog struct {
	bun.BaseModel `bun:"table:mood_logs,alias:ml"`

	ID       string    `bun:"id,pk"`
	UserID   string    `bun:"user_id,notnull"`
	Week     int       `bun:"week,notnull"`
	Mood     string    `bun:"mood,notnull"`
	Note     string    `bun:"note"`
	LoggedAt time.Time `bun:"logged_at,notnull"`
}

func (l MoodLog) Entry() Entry {
	return Entry{ID: l.ID, Week: l.Week, At: l.LoggedAt, Value: l.Mood, Note: l.Note}
}

type SymptomLog struct {
	bun.BaseModel `bun:"table:symptom_logs,alias:sy"`

	ID       string    `bun:"id,pk"`
	UserID   string    `bun:"user_id,notnull"`
	Week     int       `bun:"week,notnull"`
	Symptom  string    `bun:"symptom,notnull"`
	Severity string    `bun:"severity"`
	LoggedAt time.Time `bun:"logged_at,notnull"`
}

func (l SymptomLog) Entry() Entry {
	v := l.Symptom
	if l.Severity != "" {
		v += " (" + l.Severity + ")"
	}
	return Entry{ID: l.ID, Week: l.Week, At: l.LoggedAt, Value: v}
}

type MedicineLog struct {
	bun.BaseModel `bun:"table:medicine_logs,alias:md"`

	ID       string    `bun:"id,pk"`
	UserID   string    `bun:"user_id,notnull"`
	Week     int       `bun:"week,notnull"`
	Name     string    `bun:"name,notnull"`
	Dose     string    `bun:"dose"`
	LoggedAt time.Time `bun:"logged_at,notnull"`
}

func (l MedicineLog) Entry() Entry {
	v := l.Name
	if l.Dose != "" {
		v += " " + l.Dose
	}
	return Entry{ID: l.ID, Week: l.Week, At: l.LoggedAt, Value: v}
}

type DischargeLog struct {
	bun.BaseModel `bun:"table:discharge_logs,alias:dc"`

	ID       string    `bun:"id,pk"`
	UserID   string    `bun:"user_id,notnull"`
	Week     int       `bun:"week,notnull"`
	Kind     string    `bun:"kind,notnull"`
	Note     string    `bun:"note"`
	LoggedAt time.Time `bun:"logged_at,notnull"`
}

func (l DischargeLog) Entry() Entry {
	return Entry{ID: l.ID, Week: l.Week, At: l.LoggedAt, Value: l.Kind, Note: l.Note}
}

type Appointment struct {
	bun.BaseModel `bun:"table:appointments,alias:ap"`

	ID        string    `bun:"id,pk"`
	UserID    string    `bun:"user_id,notnull"`
	Title     string    `bun:"title,notnull"`
	At        time.Time `bun:"at,notnull"`
	Location  string    `bun:"location"`
	Note      string    `bun:"note"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

func (a Appointment) Describe() string {
	var b strings.Builder
	b.WriteString(a.Title)
	b.WriteString(" on ")
	b.WriteString(a.At.Format("Mon 2 Jan 15:04"))
	if a.Location != "" {
		b.WriteString(" at ")
		b.WriteString(a.Location)
	}
	return b.String()
}

type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:tk"`

	ID        string    `bun:"id,pk"`
	UserID    string    `bun:"user_id,notnull"`
	Title     string    `bun:"title,notnull"`
	Week      int       `bun:"week"`
	Done      bool      `bun:"done,notnull,default:false"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}
