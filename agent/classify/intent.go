// Package classify assigns one intent label from a closed set to a
// free-text query. It is pure string work: keyword and pattern tables,
// no I/O, no model calls, and the same input always yields the same
// label.
package classify

// Intent is a routing label. The set is closed; the orchestrator maps
// every label to exactly one handler and rejects anything else at
// compile time by switching exhaustively.
type Intent string

const (
	IntentWeight        Intent = "weight"
	IntentMedicine      Intent = "medicine"
	IntentSymptoms      Intent = "symptoms"
	IntentBloodPressure Intent = "blood_pressure"
	IntentDischarge     Intent = "discharge"
	IntentMood          Intent = "mood"
	IntentSleep         Intent = "sleep"
	IntentAppointments  Intent = "appointments"
	IntentGuidelines    Intent = "guidelines"
	IntentTasks         Intent = "tasks"
	IntentAnalytics     Intent = "analytics"
	IntentNavigation    Intent = "navigation"
	IntentEmergency     Intent = "emergency"
	IntentGeneral       Intent = "general"
)

// ordered fixes the tie-break: when two intents score the same, the
// one listed first wins. Emergency and general are not scored — the
// former short-circuits, the latter is the fallback.
var ordered = []Intent{
	IntentWeight,
	IntentMedicine,
	IntentSymptoms,
	IntentBloodPressure,
	IntentDischarge,
	IntentMood,
	IntentSleep,
	IntentAppointments,
	IntentGuidelines,
	IntentTasks,
	IntentAnalytics,
	IntentNavigation,
}

// Handled lists the intents the tracker registry carries a handler
// for, in tie-break order.
func Handled() []Intent {
	out := make([]Intent, len(ordered))
	copy(out, ordered)
	return out
}

// Classification is the full scoring outcome for one query.
type Classification struct {
	Intent     Intent
	Confidence float64
	Scores     map[Intent]int
}
