package tracker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	classifyx "github.com/ishaanxgupta/BabyNest-sub001/agent/classify"
	contractx "github.com/ishaanxgupta/BabyNest-sub001/agent/contract"
	guidelinesx "github.com/ishaanxgupta/BabyNest-sub001/agent/guidelines"
	recordsx "github.com/ishaanxgupta/BabyNest-sub001/agent/records"
	usercontextx "github.com/ishaanxgupta/BabyNest-sub001/agent/usercontext"
)

var trackerNow = time.Date(2026, time.May, 21, 12, 0, 0, 0, time.UTC)

type fakeRecordStore struct {
	weights    []recordsx.WeightLog
	bps        []recordsx.BloodPressureLog
	sleeps     []recordsx.SleepLog
	moods      []recordsx.MoodLog
	symptoms   []recordsx.SymptomLog
	medicines  []recordsx.MedicineLog
	discharges []recordsx.DischargeLog
	appts      []recordsx.Appointment
	tasks      []recordsx.Task
	completed  []string
	deleted    []string

	recents      map[recordsx.Category][]recordsx.Entry
	amended      []recordsx.EntryRecord
	entryDeletes []string
	apptDeletes  []string

	writeErr error
}

var _ recordsx.Store = (*fakeRecordStore)(nil)

func (f *fakeRecordStore) Profile(context.Context, string) (*recordsx.Profile, error) {
	return nil, recordsx.ErrProfileNotFound
}

func (f *fakeRecordStore) SaveProfile(context.Context, *recordsx.Profile) (time.Time, error) {
	return time.Time{}, nil
}

func (f *fakeRecordStore) CurrentWeek(context.Context, string) (int, error) { return 0, nil }

func (f *fakeRecordStore) LogWeight(_ context.Context, l *recordsx.WeightLog) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.weights = append(f.weights, *l)
	return nil
}

func (f *fakeRecordStore) LogBloodPressure(_ context.Context, l *recordsx.BloodPressureLog) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.bps = append(f.bps, *l)
	return nil
}

func (f *fakeRecordStore) LogSleep(_ context.Context, l *recordsx.SleepLog) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.sleeps = append(f.sleeps, *l)
	return nil
}

func (f *fakeRecordStore) LogMood(_ context.Context, l *recordsx.MoodLog) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.moods = append(f.moods, *l)
	return nil
}

func (f *fakeRecordStore) LogSymptom(_ context.Context, l *recordsx.SymptomLog) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.symptoms = append(f.symptoms, *l)
	return nil
}

func (f *fakeRecordStore) LogMedicine(_ context.Context, l *recordsx.MedicineLog) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.medicines = append(f.medicines, *l)
	return nil
}

func (f *fakeRecordStore) LogDischarge(_ context.Context, l *recordsx.DischargeLog) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.discharges = append(f.discharges, *l)
	return nil
}

func (f *fakeRecordStore) Recent(_ context.Context, _ string, cat recordsx.Category, limit int) ([]recordsx.Entry, error) {
	entries := f.recents[cat]
	if limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

func (f *fakeRecordStore) UpdateEntry(_ context.Context, rec recordsx.EntryRecord) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.amended = append(f.amended, rec)
	return nil
}

func (f *fakeRecordStore) DeleteEntry(_ context.Context, _ string, cat recordsx.Category, id string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.entryDeletes = append(f.entryDeletes, string(cat)+"/"+id)
	return nil
}

func (f *fakeRecordStore) SaveAppointment(_ context.Context, a *recordsx.Appointment) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.appts = append(f.appts, *a)
	return nil
}

func (f *fakeRecordStore) Appointments(context.Context, string, time.Time, int) ([]recordsx.Appointment, error) {
	return f.appts, nil
}

func (f *fakeRecordStore) DeleteAppointment(_ context.Context, _ string, id string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.apptDeletes = append(f.apptDeletes, id)
	return nil
}

func (f *fakeRecordStore) SaveTask(_ context.Context, t *recordsx.Task) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	if t.ID == "" {
		t.ID = "task-1"
	}
	f.tasks = append(f.tasks, *t)
	return nil
}

func (f *fakeRecordStore) Tasks(_ context.Context, _ string, includeDone bool) ([]recordsx.Task, error) {
	if includeDone {
		return f.tasks, nil
	}
	var open []recordsx.Task
	for _, t := range f.tasks {
		if !t.Done {
			open = append(open, t)
		}
	}
	return open, nil
}

func (f *fakeRecordStore) CompleteTask(_ context.Context, _ string, id string) error {
	f.completed = append(f.completed, id)
	return nil
}

func (f *fakeRecordStore) DeleteTask(_ context.Context, _ string, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeContextCache struct {
	uc        *usercontextx.UserContext
	updates   []recordsx.Category
	updateErr error
}

var _ contractx.ContextCache = (*fakeContextCache)(nil)

func (f *fakeContextCache) Get(context.Context, string) (*usercontextx.UserContext, error) {
	return f.uc, nil
}

func (f *fakeContextCache) Update(_ context.Context, _ string, cat recordsx.Category, _ usercontextx.Operation) (*usercontextx.UserContext, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updates = append(f.updates, cat)
	return f.uc, nil
}

func (f *fakeContextCache) Invalidate(context.Context, string) error { return nil }

func newTestRegistry(t *testing.T) (*Registry, *fakeRecordStore, *fakeContextCache) {
	t.Helper()

	store := &fakeRecordStore{}
	cache := &fakeContextCache{}
	reg, err := NewRegistry(store, cache, guidelinesx.MustLoad())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return reg, store, cache
}

func testRequest(intent classifyx.Intent, query string) contractx.HandlerRequest {
	uc := usercontextx.NewUserContext("u1", trackerNow)
	uc.Week = 20
	return contractx.HandlerRequest{
		UserID:  "u1",
		Query:   query,
		Intent:  intent,
		Now:     trackerNow,
		Context: uc,
	}
}

func resolve(t *testing.T, reg *Registry, intent classifyx.Intent) contractx.Handler {
	t.Helper()
	h, ok := reg.Resolve(intent)
	if !ok {
		t.Fatalf("no handler for intent %s", intent)
	}
	return h
}

func TestRegistryCoversEveryHandledIntent(t *testing.T) {
	t.Parallel()

	reg, _, _ := newTestRegistry(t)
	for _, intent := range classifyx.Handled() {
		if _, ok := reg.Resolve(intent); !ok {
			t.Fatalf("intent %s has no handler", intent)
		}
	}
	if _, ok := reg.Resolve(classifyx.IntentGeneral); ok {
		t.Fatal("general must fall through to the generative path, not a handler")
	}
}

func TestWeightWritePersistsAndRefreshes(t *testing.T) {
	t.Parallel()

	reg, store, cache := newTestRegistry(t)
	h := resolve(t, reg, classifyx.IntentWeight)

	resp, err := h.Handle(context.Background(), testRequest(classifyx.IntentWeight, "65 kg"))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if len(store.weights) != 1 {
		t.Fatalf("expected one weight row, got %d", len(store.weights))
	}
	row := store.weights[0]
	if row.WeightKG != 65 || row.Week != 20 || row.UserID != "u1" {
		t.Fatalf("unexpected row: %+v", row)
	}
	if len(cache.updates) != 1 || cache.updates[0] != recordsx.CategoryWeight {
		t.Fatalf("expected one weight cache refresh, got %v", cache.updates)
	}
	if !resp.Written {
		t.Fatal("expected a written response")
	}
	if !strings.Contains(resp.Text, "65") || !strings.Contains(resp.Text, "20") {
		t.Fatalf("reply must mention the value and the week, got %q", resp.Text)
	}
}

func TestWeightHistoryReadsFromContext(t *testing.T) {
	t.Parallel()

	reg, store, cache := newTestRegistry(t)
	h := resolve(t, reg, classifyx.IntentWeight)

	req := testRequest(classifyx.IntentWeight, "show my weight history")
	req.Context.SetEntries(recordsx.CategoryWeight, []recordsx.Entry{
		{Week: 20, Value: "65.0 kg", Amount: 65},
		{Week: 18, Value: "64.2 kg", Amount: 64.2},
	})

	resp, err := h.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if resp.Written || resp.NeedsInput {
		t.Fatalf("history reply should not write or clarify: %+v", resp)
	}
	if !strings.Contains(resp.Text, "65.0 kg") || !strings.Contains(resp.Text, "64.2 kg") {
		t.Fatalf("history missing entries: %q", resp.Text)
	}
	if len(store.weights) != 0 || len(cache.updates) != 0 {
		t.Fatal("history must not touch the store or the cache")
	}
}

func TestWeightClarifiesWithoutNumber(t *testing.T) {
	t.Parallel()

	reg, store, cache := newTestRegistry(t)
	h := resolve(t, reg, classifyx.IntentWeight)

	resp, err := h.Handle(context.Background(), testRequest(classifyx.IntentWeight, "i gained weight"))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !resp.NeedsInput {
		t.Fatal("expected a clarifying response")
	}
	if len(store.weights) != 0 || len(cache.updates) != 0 {
		t.Fatal("clarify must not write")
	}
}

func TestWeightUndoDeletesNewestEntry(t *testing.T) {
	t.Parallel()

	reg, store, cache := newTestRegistry(t)
	store.recents = map[recordsx.Category][]recordsx.Entry{
		recordsx.CategoryWeight: {{ID: "w1", Week: 20, Value: "65.0 kg", Amount: 65}},
	}
	h := resolve(t, reg, classifyx.IntentWeight)

	resp, err := h.Handle(context.Background(), testRequest(classifyx.IntentWeight, "delete my last weight entry"))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if want := []string{"weight/w1"}; len(store.entryDeletes) != 1 || store.entryDeletes[0] != want[0] {
		t.Fatalf("entry deletes = %v, want %v", store.entryDeletes, want)
	}
	if len(cache.updates) != 1 || cache.updates[0] != recordsx.CategoryWeight {
		t.Fatalf("expected a weight refresh, got %v", cache.updates)
	}
	if !resp.Written || !strings.Contains(resp.Text, "65.0 kg") {
		t.Fatalf("reply should confirm what was removed: %+v", resp)
	}
	if len(store.weights) != 0 {
		t.Fatal("an undo must not log anything")
	}
}

func TestWeightUndoWithNothingLogged(t *testing.T) {
	t.Parallel()

	reg, store, cache := newTestRegistry(t)
	h := resolve(t, reg, classifyx.IntentWeight)

	resp, err := h.Handle(context.Background(), testRequest(classifyx.IntentWeight, "delete my last weight entry"))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if resp.Written || len(store.entryDeletes) != 0 || len(cache.updates) != 0 {
		t.Fatalf("nothing to remove must touch nothing: %+v", resp)
	}
	if !strings.Contains(resp.Text, "no weight entry") {
		t.Fatalf("reply should say there is nothing to remove: %q", resp.Text)
	}
}

func TestWeightCorrectionRewritesNewestEntry(t *testing.T) {
	t.Parallel()

	reg, store, cache := newTestRegistry(t)
	store.recents = map[recordsx.Category][]recordsx.Entry{
		recordsx.CategoryWeight: {{ID: "w1", Week: 19, At: trackerNow.Add(-24 * time.Hour), Value: "65.0 kg", Amount: 65}},
	}
	h := resolve(t, reg, classifyx.IntentWeight)

	resp, err := h.Handle(context.Background(), testRequest(classifyx.IntentWeight, "actually it was 66 kg"))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(store.amended) != 1 {
		t.Fatalf("expected one amended record, got %d", len(store.amended))
	}
	upd, ok := store.amended[0].(*recordsx.WeightLog)
	if !ok {
		t.Fatalf("amended record has type %T, want *WeightLog", store.amended[0])
	}
	if upd.ID != "w1" || upd.WeightKG != 66 || upd.Week != 19 {
		t.Fatalf("unexpected amended record: %+v", upd)
	}
	if len(store.weights) != 0 {
		t.Fatal("a correction must not add a second row")
	}
	if len(cache.updates) != 1 || cache.updates[0] != recordsx.CategoryWeight {
		t.Fatalf("expected a weight refresh, got %v", cache.updates)
	}
	if !resp.Written || !strings.Contains(resp.Text, "66.0 kg") || !strings.Contains(resp.Text, "19") {
		t.Fatalf("reply should name the corrected value and week: %q", resp.Text)
	}
}

func TestWeightCorrectionWithoutHistoryLogsFresh(t *testing.T) {
	t.Parallel()

	reg, store, _ := newTestRegistry(t)
	h := resolve(t, reg, classifyx.IntentWeight)

	resp, err := h.Handle(context.Background(), testRequest(classifyx.IntentWeight, "actually it was 66 kg"))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(store.amended) != 0 {
		t.Fatalf("nothing to amend, got %v", store.amended)
	}
	if len(store.weights) != 1 || store.weights[0].WeightKG != 66 {
		t.Fatalf("correction with no history should log fresh: %+v", store.weights)
	}
	if !resp.Written {
		t.Fatalf("expected a written response: %+v", resp)
	}
}

func TestBloodPressureWrite(t *testing.T) {
	t.Parallel()

	reg, store, _ := newTestRegistry(t)
	h := resolve(t, reg, classifyx.IntentBloodPressure)

	resp, err := h.Handle(context.Background(), testRequest(classifyx.IntentBloodPressure, "my bp is 120/80"))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(store.bps) != 1 || store.bps[0].Systolic != 120 || store.bps[0].Diastolic != 80 {
		t.Fatalf("unexpected rows: %+v", store.bps)
	}
	if !strings.Contains(resp.Text, "120/80") {
		t.Fatalf("reply missing the reading: %q", resp.Text)
	}

	resp, err = h.Handle(context.Background(), testRequest(classifyx.IntentBloodPressure, "145/95 this morning"))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !strings.Contains(resp.Text, "high side") {
		t.Fatalf("high reading should warn, got %q", resp.Text)
	}
}

func TestMedicineWriteWithDose(t *testing.T) {
	t.Parallel()

	reg, store, cache := newTestRegistry(t)
	h := resolve(t, reg, classifyx.IntentMedicine)

	resp, err := h.Handle(context.Background(), testRequest(classifyx.IntentMedicine, "took 400 mcg folic acid"))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(store.medicines) != 1 {
		t.Fatalf("expected one medicine row, got %d", len(store.medicines))
	}
	if store.medicines[0].Name != "folic acid" || store.medicines[0].Dose != "400 mcg" {
		t.Fatalf("unexpected row: %+v", store.medicines[0])
	}
	if len(cache.updates) != 1 || cache.updates[0] != recordsx.CategoryMedicine {
		t.Fatalf("expected medicine refresh, got %v", cache.updates)
	}
	if !resp.Written {
		t.Fatal("expected a written response")
	}
}

func TestMoodWriteFlagsLowMood(t *testing.T) {
	t.Parallel()

	reg, store, _ := newTestRegistry(t)
	h := resolve(t, reg, classifyx.IntentMood)

	resp, err := h.Handle(context.Background(), testRequest(classifyx.IntentMood, "feeling anxious today"))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(store.moods) != 1 || store.moods[0].Mood != "anxious" {
		t.Fatalf("unexpected rows: %+v", store.moods)
	}
	if !strings.Contains(resp.Text, "midwife") {
		t.Fatalf("low mood should point at support, got %q", resp.Text)
	}
}

func TestSleepWriteCapturesQuality(t *testing.T) {
	t.Parallel()

	reg, store, _ := newTestRegistry(t)
	h := resolve(t, reg, classifyx.IntentSleep)

	if _, err := h.Handle(context.Background(), testRequest(classifyx.IntentSleep, "slept 7.5 hours but badly")); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(store.sleeps) != 1 || store.sleeps[0].Hours != 7.5 || store.sleeps[0].Quality != "poor" {
		t.Fatalf("unexpected rows: %+v", store.sleeps)
	}
}

func TestSymptomWriteWithSeverity(t *testing.T) {
	t.Parallel()

	reg, store, _ := newTestRegistry(t)
	h := resolve(t, reg, classifyx.IntentSymptoms)

	if _, err := h.Handle(context.Background(), testRequest(classifyx.IntentSymptoms, "bad headache since lunch")); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(store.symptoms) != 1 {
		t.Fatalf("expected one symptom row, got %d", len(store.symptoms))
	}
	if store.symptoms[0].Symptom != "headache" || store.symptoms[0].Severity != "strong" {
		t.Fatalf("unexpected row: %+v", store.symptoms[0])
	}
}

func TestDischargeWrite(t *testing.T) {
	t.Parallel()

	reg, store, _ := newTestRegistry(t)
	h := resolve(t, reg, classifyx.IntentDischarge)

	if _, err := h.Handle(context.Background(), testRequest(classifyx.IntentDischarge, "noticed white discharge")); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(store.discharges) != 1 || store.discharges[0].Kind != "white" {
		t.Fatalf("unexpected rows: %+v", store.discharges)
	}
}

func TestAppointmentFreeTextAlwaysClarifies(t *testing.T) {
	t.Parallel()

	reg, store, cache := newTestRegistry(t)
	h := resolve(t, reg, classifyx.IntentAppointments)

	resp, err := h.Handle(context.Background(),
		testRequest(classifyx.IntentAppointments, "schedule a checkup tomorrow at 10am at City Hospital"))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !resp.NeedsInput {
		t.Fatal("free-text booking must ask for the full details")
	}
	for _, field := range []string{"title", "date", "time", "location"} {
		if !strings.Contains(strings.ToLower(resp.Text), field) {
			t.Fatalf("clarify prompt missing %q: %q", field, resp.Text)
		}
	}
	if len(store.appts) != 0 || len(cache.updates) != 0 {
		t.Fatal("no appointment may be written from free text")
	}
}

func TestAppointmentListUpcoming(t *testing.T) {
	t.Parallel()

	reg, store, _ := newTestRegistry(t)
	store.appts = []recordsx.Appointment{
		{ID: "a1", UserID: "u1", Title: "Anomaly scan", At: trackerNow.Add(48 * time.Hour), Location: "City Hospital"},
	}
	h := resolve(t, reg, classifyx.IntentAppointments)

	resp, err := h.Handle(context.Background(), testRequest(classifyx.IntentAppointments, "show my appointments"))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !strings.Contains(resp.Text, "Anomaly scan") {
		t.Fatalf("missing appointment title: %q", resp.Text)
	}
}

func TestAppointmentCancelByTitle(t *testing.T) {
	t.Parallel()

	reg, store, _ := newTestRegistry(t)
	store.appts = []recordsx.Appointment{
		{ID: "a1", UserID: "u1", Title: "Anomaly scan", At: trackerNow.Add(48 * time.Hour)},
		{ID: "a2", UserID: "u1", Title: "Glucose screening", At: trackerNow.Add(96 * time.Hour)},
	}
	h := resolve(t, reg, classifyx.IntentAppointments)

	resp, err := h.Handle(context.Background(), testRequest(classifyx.IntentAppointments, "cancel the glucose screening"))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(store.apptDeletes) != 1 || store.apptDeletes[0] != "a2" {
		t.Fatalf("appointment deletes = %v, want [a2]", store.apptDeletes)
	}
	if !resp.Written || !strings.Contains(resp.Text, "Glucose screening") {
		t.Fatalf("reply should confirm the cancellation: %+v", resp)
	}
}

func TestAppointmentCancelAmbiguousAsksWhich(t *testing.T) {
	t.Parallel()

	reg, store, _ := newTestRegistry(t)
	store.appts = []recordsx.Appointment{
		{ID: "a1", UserID: "u1", Title: "Anomaly scan", At: trackerNow.Add(48 * time.Hour)},
		{ID: "a2", UserID: "u1", Title: "Glucose screening", At: trackerNow.Add(96 * time.Hour)},
	}
	h := resolve(t, reg, classifyx.IntentAppointments)

	resp, err := h.Handle(context.Background(), testRequest(classifyx.IntentAppointments, "cancel my appointment"))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !resp.NeedsInput {
		t.Fatalf("two candidates must ask which one: %+v", resp)
	}
	if len(store.apptDeletes) != 0 {
		t.Fatalf("nothing may be cancelled yet, got %v", store.apptDeletes)
	}
	if !strings.Contains(resp.Text, "Anomaly scan") || !strings.Contains(resp.Text, "Glucose screening") {
		t.Fatalf("clarify should list the candidates: %q", resp.Text)
	}
}

func TestAppointmentCancelSingleUpcoming(t *testing.T) {
	t.Parallel()

	reg, store, _ := newTestRegistry(t)
	store.appts = []recordsx.Appointment{
		{ID: "a1", UserID: "u1", Title: "Anomaly scan", At: trackerNow.Add(48 * time.Hour)},
	}
	h := resolve(t, reg, classifyx.IntentAppointments)

	resp, err := h.Handle(context.Background(), testRequest(classifyx.IntentAppointments, "cancel my appointment"))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(store.apptDeletes) != 1 || store.apptDeletes[0] != "a1" {
		t.Fatalf("appointment deletes = %v, want [a1]", store.apptDeletes)
	}
	if !resp.Written {
		t.Fatalf("expected a written response: %+v", resp)
	}
}

func TestTaskLifecycle(t *testing.T) {
	t.Parallel()

	reg, store, _ := newTestRegistry(t)
	h := resolve(t, reg, classifyx.IntentTasks)

	resp, err := h.Handle(context.Background(), testRequest(classifyx.IntentTasks, "remind me to buy a crib"))
	if err != nil {
		t.Fatalf("add error = %v", err)
	}
	if !resp.Written || len(store.tasks) != 1 || store.tasks[0].Title != "buy a crib" {
		t.Fatalf("unexpected add result: %+v / %+v", resp, store.tasks)
	}

	resp, err = h.Handle(context.Background(), testRequest(classifyx.IntentTasks, "finished buy a crib"))
	if err != nil {
		t.Fatalf("done error = %v", err)
	}
	if len(store.completed) != 1 || store.completed[0] != "task-1" {
		t.Fatalf("expected task-1 completed, got %v", store.completed)
	}
	if !strings.Contains(resp.Text, "buy a crib") {
		t.Fatalf("done reply missing title: %q", resp.Text)
	}

	if _, err = h.Handle(context.Background(), testRequest(classifyx.IntentTasks, "remove the task buy a crib")); err != nil {
		t.Fatalf("delete error = %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "task-1" {
		t.Fatalf("expected task-1 deleted, got %v", store.deleted)
	}
}

func TestGuidelineHandlerAnswersFromIndex(t *testing.T) {
	t.Parallel()

	reg, _, _ := newTestRegistry(t)
	h := resolve(t, reg, classifyx.IntentGuidelines)

	resp, err := h.Handle(context.Background(), testRequest(classifyx.IntentGuidelines, "is it safe to eat sushi?"))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !strings.Contains(resp.Text, "Foods to avoid") {
		t.Fatalf("expected the food safety guideline, got %q", resp.Text)
	}
	if resp.Written {
		t.Fatal("guideline replies never write")
	}
}

func TestAnalyticsSummarizesContext(t *testing.T) {
	t.Parallel()

	reg, _, _ := newTestRegistry(t)
	h := resolve(t, reg, classifyx.IntentAnalytics)

	req := testRequest(classifyx.IntentAnalytics, "how am i doing")
	req.Context.SetEntries(recordsx.CategoryWeight, []recordsx.Entry{
		{Week: 20, Value: "65.0 kg", Amount: 65},
		{Week: 16, Value: "63.0 kg", Amount: 63},
	})
	req.Context.SetEntries(recordsx.CategorySleep, []recordsx.Entry{
		{Week: 20, Value: "7.0 h", Amount: 7},
		{Week: 20, Value: "6.0 h", Amount: 6},
	})

	resp, err := h.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !strings.Contains(resp.Text, "+2.0 kg") {
		t.Fatalf("expected a weight delta, got %q", resp.Text)
	}
	if !strings.Contains(resp.Text, "6.5 hours") {
		t.Fatalf("expected a sleep average, got %q", resp.Text)
	}
}

func TestNavigationNamesScreen(t *testing.T) {
	t.Parallel()

	reg, _, _ := newTestRegistry(t)
	h := resolve(t, reg, classifyx.IntentNavigation)

	resp, err := h.Handle(context.Background(), testRequest(classifyx.IntentNavigation, "open the analytics page"))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !strings.Contains(resp.Text, "Analytics") {
		t.Fatalf("expected the Analytics section, got %q", resp.Text)
	}
}

func TestStoreFailureSurfacesToCaller(t *testing.T) {
	t.Parallel()

	reg, store, _ := newTestRegistry(t)
	store.writeErr = errors.New("disk full")
	h := resolve(t, reg, classifyx.IntentWeight)

	_, err := h.Handle(context.Background(), testRequest(classifyx.IntentWeight, "65 kg"))
	if err == nil {
		t.Fatal("expected the storage failure to surface")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("error should carry the cause, got %v", err)
	}
}

func TestRefreshFailureSurfacesToCaller(t *testing.T) {
	t.Parallel()

	reg, store, cache := newTestRegistry(t)
	cache.updateErr = errors.New("cache store down")
	h := resolve(t, reg, classifyx.IntentWeight)

	_, err := h.Handle(context.Background(), testRequest(classifyx.IntentWeight, "65 kg"))
	if err == nil {
		t.Fatal("expected the refresh failure to surface")
	}
	if len(store.weights) != 1 {
		t.Fatal("the record write itself should have happened")
	}
}
