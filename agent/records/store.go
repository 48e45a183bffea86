package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	logx "github.com/ishaanxgupta/BabyNest-sub001/pkg/logger"
)

// Store is the record persistence surface the rest of the agent talks
// to. Reads used for context assembly go through Recent, which returns
// the same Entry shape for every tracked category.
type Store interface {
	Profile(ctx context.Context, userID string) (*Profile, error)
	// SaveProfile inserts or updates the profile and returns the due
	// date, deriving it from the last menstrual period when absent.
	SaveProfile(ctx context.Context, p *Profile) (time.Time, error)
	CurrentWeek(ctx context.Context, userID string) (int, error)

	LogWeight(ctx context.Context, l *WeightLog) error
	LogBloodPressure(ctx context.Context, l *BloodPressureLog) error
	LogSleep(ctx context.Context, l *SleepLog) error
	LogMood(ctx context.Context, l *MoodLog) error
	LogSymptom(ctx context.Context, l *SymptomLog) error
	LogMedicine(ctx context.Context, l *MedicineLog) error
	LogDischarge(ctx context.Context, l *DischargeLog) error

	// Recent returns the newest-first entries of one tracked category.
	Recent(ctx context.Context, userID string, cat Category, limit int) ([]Entry, error)

	// UpdateEntry rewrites one logged record in place. The record's ID
	// and UserID pick the row; every other field is stored as given.
	UpdateEntry(ctx context.Context, rec EntryRecord) error
	// DeleteEntry removes one logged record from a tracked category.
	DeleteEntry(ctx context.Context, userID string, cat Category, id string) error

	SaveAppointment(ctx context.Context, a *Appointment) error
	Appointments(ctx context.Context, userID string, from time.Time, limit int) ([]Appointment, error)
	DeleteAppointment(ctx context.Context, userID, id string) error
	SaveTask(ctx context.Context, t *Task) error
	Tasks(ctx context.Context, userID string, includeDone bool) ([]Task, error)
	CompleteTask(ctx context.Context, userID, id string) error
	DeleteTask(ctx context.Context, userID, id string) error
}

// BunStore persists records in SQLite through bun.
type BunStore struct {
	db  *bun.DB
	now func() time.Time
}

var _ Store = (*BunStore)(nil)

func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db, now: time.Now}
}

// Init creates the record tables when they do not exist yet.
func (s *BunStore) Init(ctx context.Context) error {
	models := []any{
		(*Profile)(nil),
		(*WeightLog)(nil),
		(*BloodPressureLog)(nil),
		(*SleepLog)(nil),
		(*MoodLog)(nil),
		(*SymptomLog)(nil),
		(*MedicineLog)(nil),
		(*DischargeLog)(nil),
		(*Appointment)(nil),
		(*Task)(nil),
	}
	for _, m := range models {
		if _, err := s.db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", m, err)
		}
	}
	log := logx.Component("records")
	log.Debug().Int("tables", len(models)).Msg("schema ready")
	return nil
}

func (s *BunStore) Profile(ctx context.Context, userID string) (*Profile, error) {
	p := new(Profile)
	err := s.db.NewSelect().Model(p).Where("user_id = ?", userID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %q", ErrProfileNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *BunStore) SaveProfile(ctx context.Context, p *Profile) (time.Time, error) {
	due, err := p.DeriveDueDate()
	if err != nil {
		return time.Time{}, err
	}

	now := s.now()
	p.UpdatedAt = now
	exists, err := s.db.NewSelect().Model((*Profile)(nil)).Where("user_id = ?", p.UserID).Exists(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if exists {
		_, err = s.db.NewUpdate().Model(p).WherePK().Exec(ctx)
	} else {
		p.CreatedAt = now
		_, err = s.db.NewInsert().Model(p).Exec(ctx)
	}
	if err != nil {
		return time.Time{}, err
	}
	return due, nil
}

func (s *BunStore) CurrentWeek(ctx context.Context, userID string) (int, error) {
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return 0, err
	}
	return p.WeekAt(s.now())
}

// stamp fills the generated id and timestamp of a new record.
func (s *BunStore) stamp(id *string, at *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if at.IsZero() {
		*at = s.now()
	}
}

func (s *BunStore) LogWeight(ctx context.Context, l *WeightLog) error {
	s.stamp(&l.ID, &l.LoggedAt)
	_, err := s.db.NewInsert().Model(l).Exec(ctx)
	return err
}

func (s *BunStore) LogBloodPressure(ctx context.Context, l *BloodPressureLog) error {
	s.stamp(&l.ID, &l.LoggedAt)
	_, err := s.db.NewInsert().Model(l).Exec(ctx)
	return err
}

func (s *BunStore) LogSleep(ctx context.Context, l *SleepLog) error {
	s.stamp(&l.ID, &l.LoggedAt)
	_, err := s.db.NewInsert().Model(l).Exec(ctx)
	return err
}

func (s *BunStore) LogMood(ctx context.Context, l *MoodLog) error {
	s.stamp(&l.ID, &l.LoggedAt)
	_, err := s.db.NewInsert().Model(l).Exec(ctx)
	return err
}

func (s *BunStore) LogSymptom(ctx context.Context, l *SymptomLog) error {
	s.stamp(&l.ID, &l.LoggedAt)
	_, err := s.db.NewInsert().Model(l).Exec(ctx)
	return err
}

func (s *BunStore) LogMedicine(ctx context.Context, l *MedicineLog) error {
	s.stamp(&l.ID, &l.LoggedAt)
	_, err := s.db.NewInsert().Model(l).Exec(ctx)
	return err
}

func (s *BunStore) LogDischarge(ctx context.Context, l *DischargeLog) error {
	s.stamp(&l.ID, &l.LoggedAt)
	_, err := s.db.NewInsert().Model(l).Exec(ctx)
	return err
}

func (s *BunStore) Recent(ctx context.Context, userID string, cat Category, limit int) ([]Entry, error) {
	switch cat {
	case CategoryWeight:
		return recent[WeightLog](ctx, s.db, userID, limit)
	case CategoryMedicine:
		return recent[MedicineLog](ctx, s.db, userID, limit)
	case CategorySymptoms:
		return recent[SymptomLog](ctx, s.db, userID, limit)
	case CategoryBloodPressure:
		return recent[BloodPressureLog](ctx, s.db, userID, limit)
	case CategoryDischarge:
		return recent[DischargeLog](ctx, s.db, userID, limit)
	case CategoryMood:
		return recent[MoodLog](ctx, s.db, userID, limit)
	case CategorySleep:
		return recent[SleepLog](ctx, s.db, userID, limit)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}
}

func recent[T EntryRecord](ctx context.Context, db bun.IDB, userID string, limit int) ([]Entry, error) {
	var rows []T
	err := db.NewSelect().Model(&rows).
		Where("user_id = ?", userID).
		OrderExpr("logged_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.Entry())
	}
	return entries, nil
}

func (s *BunStore) UpdateEntry(ctx context.Context, rec EntryRecord) error {
	var id, userID string
	switch r := rec.(type) {
	case *WeightLog:
		id, userID = r.ID, r.UserID
	case *BloodPressureLog:
		id, userID = r.ID, r.UserID
	case *SleepLog:
		id, userID = r.ID, r.UserID
	case *MoodLog:
		id, userID = r.ID, r.UserID
	case *SymptomLog:
		id, userID = r.ID, r.UserID
	case *MedicineLog:
		id, userID = r.ID, r.UserID
	case *DischargeLog:
		id, userID = r.ID, r.UserID
	default:
		return fmt.Errorf("%w: %T", ErrUnknownCategory, rec)
	}

	res, err := s.db.NewUpdate().Model(rec).
		Where("id = ? AND user_id = ?", id, userID).
		Exec(ctx)
	if err != nil {
		return err
	}
	return oneRow(res, id)
}

func (s *BunStore) DeleteEntry(ctx context.Context, userID string, cat Category, id string) error {
	var model any
	switch cat {
	case CategoryWeight:
		model = (*WeightLog)(nil)
	case CategoryMedicine:
		model = (*MedicineLog)(nil)
	case CategorySymptoms:
		model = (*SymptomLog)(nil)
	case CategoryBloodPressure:
		model = (*BloodPressureLog)(nil)
	case CategoryDischarge:
		model = (*DischargeLog)(nil)
	case CategoryMood:
		model = (*MoodLog)(nil)
	case CategorySleep:
		model = (*SleepLog)(nil)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}

	res, err := s.db.NewDelete().Model(model).
		Where("id = ? AND user_id = ?", id, userID).
		Exec(ctx)
	if err != nil {
		return err
	}
	return oneRow(res, id)
}

func (s *BunStore) SaveAppointment(ctx context.Context, a *Appointment) error {
	s.stamp(&a.ID, &a.CreatedAt)
	_, err := s.db.NewInsert().Model(a).Exec(ctx)
	return err
}

func (s *BunStore) Appointments(ctx context.Context, userID string, from time.Time, limit int) ([]Appointment, error) {
	var appts []Appointment
	q := s.db.NewSelect().Model(&appts).Where("user_id = ?", userID)
	if !from.IsZero() {
		q = q.Where("at >= ?", from)
	}
	if err := q.OrderExpr("at ASC").Limit(limit).Scan(ctx); err != nil {
		return nil, err
	}
	return appts, nil
}

func (s *BunStore) DeleteAppointment(ctx context.Context, userID, id string) error {
	res, err := s.db.NewDelete().Model((*Appointment)(nil)).
		Where("id = ? AND user_id = ?", id, userID).
		Exec(ctx)
	if err != nil {
		return err
	}
	return oneRow(res, id)
}

func (s *BunStore) SaveTask(ctx context.Context, t *Task) error {
	s.stamp(&t.ID, &t.CreatedAt)
	_, err := s.db.NewInsert().Model(t).Exec(ctx)
	return err
}

func (s *BunStore) Tasks(ctx context.Context, userID string, includeDone bool) ([]Task, error) {
	var tasks []Task
	q := s.db.NewSelect().Model(&tasks).Where("user_id = ?", userID)
	if !includeDone {
		q = q.Where("done = ?", false)
	}
	if err := q.OrderExpr("created_at ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *BunStore) CompleteTask(ctx context.Context, userID, id string) error {
	res, err := s.db.NewUpdate().Model((*Task)(nil)).
		Set("done = ?", true).
		Where("id = ? AND user_id = ?", id, userID).
		Exec(ctx)
	if err != nil {
		return err
	}
	return oneRow(res, id)
}

func (s *BunStore) DeleteTask(ctx context.Context, userID, id string) error {
	res, err := s.db.NewDelete().Model((*Task)(nil)).
		Where("id = ? AND user_id = ?", id, userID).
		Exec(ctx)
	if err != nil {
		return err
	}
	return oneRow(res, id)
}

func oneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: id %q", ErrRecordNotFound, id)
	}
	return nil
}
