package records

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "modernc.org/sqlite"
)

var testClock = time.Date(2026, time.May, 21, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *BunStore {
	t.Helper()

	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// one connection, otherwise every pool conn sees its own :memory: db
	sqldb.SetMaxOpenConns(1)
	t.Cleanup(func() { sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())
	s := NewBunStore(db)
	s.now = func() time.Time { return testClock }
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return s
}

func TestProfileRoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	lmp := testClock.AddDate(0, 0, -140)
	due, err := s.SaveProfile(ctx, &Profile{
		UserID:   "u1",
		Location: "Pune",
		Age:      29,
		WeightKG: 61,
		LMP:      lmp,
	})
	if err != nil {
		t.Fatalf("save profile: %v", err)
	}
	if want := lmp.AddDate(0, 0, 280); !due.Equal(want) {
		t.Fatalf("derived due date = %v, want %v", due, want)
	}

	p, err := s.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if p.Location != "Pune" || p.Age != 29 {
		t.Fatalf("profile fields lost: %+v", p)
	}

	week, err := s.CurrentWeek(ctx, "u1")
	if err != nil {
		t.Fatalf("current week: %v", err)
	}
	if week != 20 {
		t.Fatalf("current week = %d, want 20", week)
	}
}

func TestProfileNotFound(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	_, err := s.Profile(context.Background(), "ghost")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("err = %v, want ErrProfileNotFound", err)
	}
	if _, err := s.CurrentWeek(context.Background(), "ghost"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("current week err = %v, want ErrProfileNotFound", err)
	}
}

func TestSaveProfileValidates(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	_, err := s.SaveProfile(context.Background(), &Profile{UserID: "u1", Age: 30})
	if !errors.Is(err, ErrInvalidProfile) {
		t.Fatalf("err = %v, want ErrInvalidProfile", err)
	}
}

func TestSaveProfileUpdatesInPlace(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	lmp := testClock.AddDate(0, 0, -70)
	if _, err := s.SaveProfile(ctx, &Profile{UserID: "u1", Location: "Pune", LMP: lmp}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if _, err := s.SaveProfile(ctx, &Profile{UserID: "u1", Location: "Mumbai", LMP: lmp}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	p, err := s.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if p.Location != "Mumbai" {
		t.Fatalf("location = %q, want updated value", p.Location)
	}
}

func TestRecentOrderAndLimit(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	for i, kg := range []float64{60, 61.5, 62} {
		l := &WeightLog{
			UserID:   "u1",
			Week:     18 + i,
			WeightKG: kg,
			LoggedAt: testClock.AddDate(0, 0, 7*i),
		}
		if err := s.LogWeight(ctx, l); err != nil {
			t.Fatalf("log weight %d: %v", i, err)
		}
	}

	got, err := s.Recent(ctx, "u1", CategoryWeight, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	want := []Entry{
		{Week: 20, At: testClock.AddDate(0, 0, 14), Value: "62.0 kg", Amount: 62},
		{Week: 19, At: testClock.AddDate(0, 0, 7), Value: "61.5 kg", Amount: 61.5},
	}
	// ids are generated uuids
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Entry{}, "ID")); diff != "" {
		t.Fatalf("recent entries mismatch (-want +got):\n%s", diff)
	}
	for _, e := range got {
		if e.ID == "" {
			t.Fatal("entries must carry their record id")
		}
	}
}

func TestRecentPerCategoryIsolation(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.LogBloodPressure(ctx, &BloodPressureLog{UserID: "u1", Week: 20, Systolic: 120, Diastolic: 80}); err != nil {
		t.Fatalf("log bp: %v", err)
	}
	if err := s.LogMood(ctx, &MoodLog{UserID: "u1", Week: 20, Mood: "anxious"}); err != nil {
		t.Fatalf("log mood: %v", err)
	}

	bp, err := s.Recent(ctx, "u1", CategoryBloodPressure, 5)
	if err != nil {
		t.Fatalf("recent bp: %v", err)
	}
	if len(bp) != 1 || bp[0].Value != "120/80" {
		t.Fatalf("bp entries = %+v, want one 120/80", bp)
	}

	mood, err := s.Recent(ctx, "u1", CategoryMood, 5)
	if err != nil {
		t.Fatalf("recent mood: %v", err)
	}
	if len(mood) != 1 || mood[0].Value != "anxious" {
		t.Fatalf("mood entries = %+v, want one anxious", mood)
	}

	if _, err := s.Recent(ctx, "u1", CategoryProfile, 5); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("profile category err = %v, want ErrUnknownCategory", err)
	}
}

func TestUpdateEntryRewritesRow(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	l := &WeightLog{UserID: "u1", Week: 20, WeightKG: 65}
	if err := s.LogWeight(ctx, l); err != nil {
		t.Fatalf("log weight: %v", err)
	}

	upd := &WeightLog{ID: l.ID, UserID: "u1", Week: 20, WeightKG: 66, LoggedAt: l.LoggedAt}
	if err := s.UpdateEntry(ctx, upd); err != nil {
		t.Fatalf("update entry: %v", err)
	}

	got, err := s.Recent(ctx, "u1", CategoryWeight, 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 1 || got[0].Amount != 66 {
		t.Fatalf("entries after update = %+v, want one 66 kg row", got)
	}

	wrongUser := &WeightLog{ID: l.ID, UserID: "intruder", Week: 20, WeightKG: 50, LoggedAt: l.LoggedAt}
	if err := s.UpdateEntry(ctx, wrongUser); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("foreign-user update err = %v, want ErrRecordNotFound", err)
	}
}

func TestDeleteEntryRemovesRow(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	first := &WeightLog{UserID: "u1", Week: 19, WeightKG: 64, LoggedAt: testClock.AddDate(0, 0, -7)}
	second := &WeightLog{UserID: "u1", Week: 20, WeightKG: 65, LoggedAt: testClock}
	for _, l := range []*WeightLog{first, second} {
		if err := s.LogWeight(ctx, l); err != nil {
			t.Fatalf("log weight: %v", err)
		}
	}

	if err := s.DeleteEntry(ctx, "u1", CategoryWeight, second.ID); err != nil {
		t.Fatalf("delete entry: %v", err)
	}

	got, err := s.Recent(ctx, "u1", CategoryWeight, 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 1 || got[0].Week != 19 {
		t.Fatalf("entries after delete = %+v, want only week 19", got)
	}

	if err := s.DeleteEntry(ctx, "u1", CategoryWeight, "missing"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("missing id err = %v, want ErrRecordNotFound", err)
	}
	if err := s.DeleteEntry(ctx, "u1", CategoryProfile, first.ID); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("profile category err = %v, want ErrUnknownCategory", err)
	}
}

func TestTaskLifecycle(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	buy := &Task{UserID: "u1", Title: "buy prenatal vitamins", Week: 20}
	book := &Task{UserID: "u1", Title: "book glucose screening", Week: 24}
	for _, task := range []*Task{buy, book} {
		if err := s.SaveTask(ctx, task); err != nil {
			t.Fatalf("save task %q: %v", task.Title, err)
		}
	}

	if err := s.CompleteTask(ctx, "u1", buy.ID); err != nil {
		t.Fatalf("complete task: %v", err)
	}

	open, err := s.Tasks(ctx, "u1", false)
	if err != nil {
		t.Fatalf("open tasks: %v", err)
	}
	if len(open) != 1 || open[0].Title != "book glucose screening" {
		t.Fatalf("open tasks = %+v, want only the unfinished one", open)
	}

	all, err := s.Tasks(ctx, "u1", true)
	if err != nil {
		t.Fatalf("all tasks: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all tasks = %d, want 2", len(all))
	}

	if err := s.CompleteTask(ctx, "u1", "missing"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("complete missing err = %v, want ErrRecordNotFound", err)
	}

	if err := s.DeleteTask(ctx, "u1", book.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	open, err = s.Tasks(ctx, "u1", false)
	if err != nil {
		t.Fatalf("open tasks after delete: %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("open tasks = %+v, want none", open)
	}
}

func TestAppointmentsUpcomingFilter(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	past := &Appointment{UserID: "u1", Title: "dating scan", At: testClock.AddDate(0, 0, -30)}
	next := &Appointment{UserID: "u1", Title: "anomaly scan", At: testClock.AddDate(0, 0, 7), Location: "city clinic"}
	for _, a := range []*Appointment{past, next} {
		if err := s.SaveAppointment(ctx, a); err != nil {
			t.Fatalf("save appointment %q: %v", a.Title, err)
		}
	}

	upcoming, err := s.Appointments(ctx, "u1", testClock, 10)
	if err != nil {
		t.Fatalf("appointments: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].Title != "anomaly scan" {
		t.Fatalf("upcoming = %+v, want only the future one", upcoming)
	}

	all, err := s.Appointments(ctx, "u1", time.Time{}, 10)
	if err != nil {
		t.Fatalf("all appointments: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all appointments = %d, want 2", len(all))
	}
	if all[0].Title != "dating scan" {
		t.Fatalf("appointments not in ascending time order: %+v", all)
	}

	if err := s.DeleteAppointment(ctx, "u1", next.ID); err != nil {
		t.Fatalf("delete appointment: %v", err)
	}
	upcoming, err = s.Appointments(ctx, "u1", testClock, 10)
	if err != nil {
		t.Fatalf("appointments after delete: %v", err)
	}
	if len(upcoming) != 0 {
		t.Fatalf("upcoming after delete = %+v, want none", upcoming)
	}
	if err := s.DeleteAppointment(ctx, "u1", "missing"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("missing id err = %v, want ErrRecordNotFound", err)
	}
}
