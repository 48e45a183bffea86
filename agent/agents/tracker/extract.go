package tracker

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Parsers lowercase their input themselves so handlers can pass the raw
// query straight through. A failed parse is data, not an error: the
// handler answers with a clarifying prompt instead.

const poundsToKG = 0.45359237

var historyMarkers = []string{
	"show", "list", "history", "recent", "my last", "view",
	"what was", "what were", "have i", "did i log", "so far", "trend",
}

func wantsHistory(q string) bool {
	q = strings.ToLower(q)
	for _, m := range historyMarkers {
		if strings.Contains(q, m) {
			return true
		}
	}
	return false
}

// undoRequest needs both a removal verb and a reference to a stored
// entry, so "remove swelling" stays a symptom query while "delete my
// last weight entry" becomes an undo.
func undoRequest(q string) bool {
	q = strings.ToLower(q)
	return containsAny(q, "delete", "remove", "undo", "erase") &&
		containsAny(q, "last", "latest", "previous", "entry", "log", "reading")
}

var editMarkers = []string{
	"actually", "i meant", "meant", "correct my", "correct that",
	"change my", "change that", "make that", "should be",
}

func editRequest(q string) bool {
	q = strings.ToLower(q)
	return containsAny(q, editMarkers...)
}

var (
	weightUnitPattern = regexp.MustCompile(`(\d{1,3}(?:[.,]\d+)?)\s*(kg|kgs|kilos?|kilograms?|lbs?|pounds?)\b`)
	bareWeightPattern = regexp.MustCompile(`\b(\d{2,3}(?:[.,]\d+)?)\b`)
)

// parseWeight pulls a weight in kilograms out of free text. Pounds are
// converted so storage stays metric; a bare number is accepted when it
// falls in a plausible body-weight range.
func parseWeight(q string) (float64, bool) {
	q = strings.ToLower(q)

	if m := weightUnitPattern.FindStringSubmatch(q); m != nil {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
		if err != nil {
			return 0, false
		}
		if strings.HasPrefix(m[2], "lb") || strings.HasPrefix(m[2], "pound") {
			v = math.Round(v*poundsToKG*10) / 10
		}
		if plausibleWeightKG(v) {
			return v, true
		}
		return 0, false
	}

	if m := bareWeightPattern.FindStringSubmatch(q); m != nil {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
		if err == nil && plausibleWeightKG(v) {
			return v, true
		}
	}
	return 0, false
}

func plausibleWeightKG(v float64) bool {
	return v >= 30 && v <= 200
}

var bpPattern = regexp.MustCompile(`\b(\d{2,3})\s*/\s*(\d{2,3})\b`)

func parseBloodPressure(q string) (systolic, diastolic int, ok bool) {
	m := bpPattern.FindStringSubmatch(strings.ToLower(q))
	if m == nil {
		return 0, 0, false
	}
	s, _ := strconv.Atoi(m[1])
	d, _ := strconv.Atoi(m[2])
	if s < 60 || s > 260 || d < 30 || d > 200 || s <= d {
		return 0, 0, false
	}
	return s, d, true
}

var (
	sleepHoursPattern = regexp.MustCompile(`\b(\d{1,2}(?:[.,]\d+)?)\s*(?:h|hrs?|hours?)\b`)
	sleptPattern      = regexp.MustCompile(`\bslept\s+(?:for\s+|about\s+|around\s+|only\s+)?(\d{1,2}(?:[.,]\d+)?)\b`)
)

func parseSleepHours(q string) (float64, bool) {
	q = strings.ToLower(q)
	m := sleepHoursPattern.FindStringSubmatch(q)
	if m == nil {
		m = sleptPattern.FindStringSubmatch(q)
	}
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil || v <= 0 || v > 24 {
		return 0, false
	}
	return v, true
}

func sleepQuality(q string) string {
	q = strings.ToLower(q)
	switch {
	case containsAny(q, "badly", "poorly", "terrible", "awful", "restless", "broken", "barely"):
		return "poor"
	case containsAny(q, "well", "great", "deep", "solid", "good"):
		return "good"
	}
	return ""
}

var moodVocab = map[string]string{
	"happy": "happy", "great": "happy", "excited": "excited",
	"calm": "calm", "relaxed": "calm", "grateful": "grateful",
	"tired": "tired", "exhausted": "exhausted", "drained": "exhausted",
	"anxious": "anxious", "nervous": "anxious", "worried": "worried",
	"stressed": "stressed", "overwhelmed": "overwhelmed",
	"sad": "sad", "down": "sad", "low": "low", "tearful": "tearful",
	"irritable": "irritable", "angry": "angry", "moody": "moody",
	"emotional": "emotional",
}

// matchMood scans the query words in order and returns the first mood
// the vocabulary knows, so repeated runs are deterministic.
func matchMood(q string) (string, bool) {
	for _, tok := range tokens(q) {
		if mood, ok := moodVocab[tok]; ok {
			return mood, true
		}
	}
	return "", false
}

var symptomPhrases = []struct{ match, name string }{
	{"morning sickness", "nausea"},
	{"back pain", "back pain"},
	{"leg cramp", "leg cramps"},
}

var symptomVocab = map[string]string{
	"nausea": "nausea", "nauseous": "nausea", "sick": "nausea",
	"vomiting": "vomiting", "vomited": "vomiting", "vomit": "vomiting",
	"headache": "headache", "headaches": "headache",
	"cramp": "cramping", "cramps": "cramping", "cramping": "cramping",
	"backache": "back pain",
	"heartburn": "heartburn", "reflux": "heartburn",
	"swelling": "swelling", "swollen": "swelling",
	"dizzy": "dizziness", "dizziness": "dizziness", "lightheaded": "dizziness",
	"fatigue": "fatigue", "constipation": "constipation", "constipated": "constipation",
	"insomnia": "insomnia", "itching": "itching", "itchy": "itching",
	"spotting": "spotting", "bloating": "bloating", "bloated": "bloating",
}

func matchSymptom(q string) (string, bool) {
	lowered := strings.ToLower(q)
	for _, p := range symptomPhrases {
		if strings.Contains(lowered, p.match) {
			return p.name, true
		}
	}
	for _, tok := range tokens(q) {
		if name, ok := symptomVocab[tok]; ok {
			return name, true
		}
	}
	return "", false
}

// symptomSeverity grades mild to strong; the severe end never reaches a
// handler because those queries classify as emergencies.
func symptomSeverity(q string) string {
	q = strings.ToLower(q)
	switch {
	case containsAny(q, "mild", "slight", "a bit", "a little"):
		return "mild"
	case containsAny(q, "moderate"):
		return "moderate"
	case containsAny(q, "bad", "strong", "awful", "terrible"):
		return "strong"
	}
	return ""
}

var dischargeVocab = map[string]string{
	"clear": "clear", "white": "white", "milky": "white",
	"yellow": "yellow", "yellowish": "yellow",
	"green": "green", "greenish": "green",
	"brown": "brown", "brownish": "brown",
	"pink": "pink", "pinkish": "pink",
	"watery": "watery", "thick": "thick", "sticky": "thick",
	"mucus": "mucus", "mucous": "mucus",
}

func matchDischarge(q string) (string, bool) {
	for _, tok := range tokens(q) {
		if kind, ok := dischargeVocab[tok]; ok {
			return kind, true
		}
	}
	return "", false
}

var (
	dosePattern    = regexp.MustCompile(`\b(\d+(?:[.,]\d+)?)\s*(mg|mcg|iu|ml|g)\b`)
	medTakePattern = regexp.MustCompile(`\b(?:took|take|taking|had|started)\s+(?:my\s+|a\s+|an\s+|the\s+|some\s+)?([a-z][a-z-]*(?:\s+[a-z-]+)?)`)
)

var medicineVocab = []struct{ match, name string }{
	{"folic acid", "folic acid"}, {"folate", "folic acid"},
	{"prenatal vitamins", "prenatal vitamins"}, {"prenatal vitamin", "prenatal vitamins"}, {"prenatals", "prenatal vitamins"},
	{"vitamin d", "vitamin d"}, {"vitamin b12", "vitamin b12"}, {"vitamin c", "vitamin c"},
	{"fish oil", "omega 3"}, {"omega-3", "omega 3"}, {"omega 3", "omega 3"},
	{"iron", "iron"}, {"calcium", "calcium"}, {"magnesium", "magnesium"},
	{"aspirin", "aspirin"}, {"paracetamol", "paracetamol"}, {"acetaminophen", "paracetamol"},
	{"progesterone", "progesterone"}, {"levothyroxine", "levothyroxine"},
	{"insulin", "insulin"}, {"doxylamine", "doxylamine"}, {"antacid", "antacid"},
}

var medicineNoise = map[string]bool{
	"pill": true, "pills": true, "tablet": true, "tablets": true,
	"capsule": true, "capsules": true, "dose": true, "doses": true,
	"today": true, "tonight": true, "yesterday": true, "now": true,
	"again": true, "morning": true, "evening": true, "this": true,
}

var medicineGeneric = map[string]bool{
	"medicine": true, "medication": true, "meds": true, "med": true,
	"vitamin": true, "vitamins": true, "supplement": true, "supplements": true,
	"pill": true, "tablet": true, "something": true,
}

// parseMedicine names the medicine and, when present, its dose. Known
// prenatal staples match by vocabulary; otherwise the words after a
// take-verb are used, minus filler. A bare "took my medicine" stays
// ambiguous on purpose.
func parseMedicine(q string) (name, dose string, ok bool) {
	lowered := strings.ToLower(q)

	if m := dosePattern.FindStringSubmatch(lowered); m != nil {
		dose = m[1] + " " + m[2]
	}

	for _, v := range medicineVocab {
		if strings.Contains(lowered, v.match) {
			return v.name, dose, true
		}
	}

	m := medTakePattern.FindStringSubmatch(lowered)
	if m == nil {
		return "", dose, false
	}
	words := strings.Fields(m[1])
	for len(words) > 0 && medicineNoise[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	name = strings.Join(words, " ")
	if name == "" || medicineGeneric[name] {
		return "", dose, false
	}
	return name, dose, true
}

var taskAddMarkers = []string{
	"remind me to ", "remind me ",
	"add a task to ", "add a task ", "add task ",
	"create a task to ", "create a task ", "new task ",
	"add a reminder to ", "add to my checklist ",
}

func taskTitle(q string) (string, bool) {
	lowered := strings.ToLower(strings.TrimSpace(q))
	for _, marker := range taskAddMarkers {
		if i := strings.Index(lowered, marker); i >= 0 {
			title := strings.Trim(strings.TrimSpace(lowered[i+len(marker):]), ".!?")
			if title != "" {
				return title, true
			}
		}
	}
	return "", false
}

var taskDonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bmark\s+(.+?)\s+(?:as\s+)?done\b`),
	regexp.MustCompile(`\b(?:finished|completed)\s+(.+)`),
	regexp.MustCompile(`\bdone\s+with\s+(.+)`),
	regexp.MustCompile(`\btick\s+off\s+(.+)`),
}

func taskDoneNeedle(q string) (string, bool) {
	lowered := strings.ToLower(q)
	for _, p := range taskDonePatterns {
		if m := p.FindStringSubmatch(lowered); m != nil {
			if needle := cleanTaskNeedle(m[1]); needle != "" {
				return needle, true
			}
		}
	}
	return "", false
}

var apptCancelPattern = regexp.MustCompile(`\b(?:cancel|delete|remove|drop)\s+(.+)`)

// apptCancelNeedle returns the title fragment of an appointment to
// cancel. A bare "my appointment" comes back as an empty needle with
// ok=true: the caller resolves it against the upcoming list.
func apptCancelNeedle(q string) (needle string, ok bool) {
	m := apptCancelPattern.FindStringSubmatch(strings.ToLower(q))
	if m == nil {
		return "", false
	}
	s := strings.Trim(strings.TrimSpace(m[1]), ".!?")
	for _, prefix := range []string{"the appointment ", "my appointment ", "the ", "my "} {
		s = strings.TrimPrefix(s, prefix)
	}
	s = strings.TrimSpace(s)
	switch s {
	case "appointment", "appointments", "it", "next appointment":
		return "", true
	case "":
		return "", false
	}
	return strings.TrimSuffix(s, " appointment"), true
}

var taskDeletePattern = regexp.MustCompile(`\b(?:delete|remove|drop)\s+(.+)`)

func taskDeleteNeedle(q string) (string, bool) {
	m := taskDeletePattern.FindStringSubmatch(strings.ToLower(q))
	if m == nil {
		return "", false
	}
	needle := cleanTaskNeedle(m[1])
	if needle == "" {
		return "", false
	}
	return needle, true
}

func cleanTaskNeedle(s string) string {
	s = strings.Trim(strings.TrimSpace(s), ".!?")
	for _, prefix := range []string{"the task ", "task ", "the ", "my "} {
		s = strings.TrimPrefix(s, prefix)
	}
	return strings.TrimSpace(s)
}

var screenVocab = []struct{ match, screen string }{
	{"appointment", "Appointments"},
	{"task", "Tasks"}, {"todo", "Tasks"}, {"to-do", "Tasks"}, {"checklist", "Tasks"},
	{"analytic", "Analytics"}, {"chart", "Analytics"}, {"stats", "Analytics"}, {"graph", "Analytics"},
	{"profile", "Profile"}, {"settings", "Profile"},
	{"guideline", "Guidelines"}, {"tips", "Guidelines"},
	{"weight", "Tracker"}, {"sleep", "Tracker"}, {"mood", "Tracker"}, {"track", "Tracker"},
	{"home", "Home"}, {"dashboard", "Home"},
}

func matchScreen(q string) (string, bool) {
	lowered := strings.ToLower(q)
	for _, v := range screenVocab {
		if strings.Contains(lowered, v.match) {
			return v.screen, true
		}
	}
	return "", false
}

func tokens(q string) []string {
	return strings.FieldsFunc(strings.ToLower(q), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func containsAny(q string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(q, s) {
			return true
		}
	}
	return false
}
