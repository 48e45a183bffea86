package classify

import (
	"regexp"
	"strings"
)

// Scoring: +1 per keyword found in the query, +2 per pattern match.
// The tables are data so adding a trigger never touches control flow.
const (
	keywordPoints = 1
	patternPoints = 2
)

type ruleSet struct {
	keywords []string
	patterns []*regexp.Regexp
}

func (r ruleSet) score(q string) int {
	s := 0
	for _, kw := range r.keywords {
		if strings.Contains(q, kw) {
			s += keywordPoints
		}
	}
	for _, p := range r.patterns {
		if p.MatchString(q) {
			s += patternPoints
		}
	}
	return s
}

// emergencyRules is checked before everything else; any hit ends
// classification immediately.
var emergencyRules = ruleSet{
	keywords: []string{
		"emergency", "911", "ambulance",
		"severe pain", "heavy bleeding", "bleeding heavily",
		"water broke", "waters broke",
		"can't breathe", "cant breathe",
		"unconscious", "fainted", "seizure",
		"baby not moving", "baby stopped moving", "no fetal movement",
		"chest pain", "blurred vision",
	},
	patterns: []*regexp.Regexp{
		regexp.MustCompile(`\bcan'?t\s+breathe\b`),
		regexp.MustCompile(`\b(severe|intense|unbearable|extreme)\s+(pain|cramp(s|ing)?|bleeding|headache)\b`),
		regexp.MustCompile(`\bbleeding\s+(heavily|a\s+lot|badly)\b`),
		regexp.MustCompile(`\bwaters?\s+(just\s+)?broke\b`),
		regexp.MustCompile(`\b(baby|fetal)\s+(is\s+)?not\s+moving\b`),
	},
}

var rules = map[Intent]ruleSet{
	IntentWeight: {
		keywords: []string{"weight", "weigh", "kg", "kilo", "lbs", "pounds", "gained"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b\d+([.,]\d+)?\s*(kg|kgs|kilograms?|lbs?|pounds?)\b`),
		},
	},
	IntentMedicine: {
		keywords: []string{"medicine", "medication", "pill", "tablet", "vitamin", "supplement", "folic", "iron", "calcium", "dose", "prenatal"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b\d+\s*(mg|mcg|iu|ml)\b`),
			regexp.MustCompile(`\btook\s+(my\s+)?(\w+\s+)?(pill|tablet|vitamin|supplement|medicine)\b`),
		},
	},
	IntentSymptoms: {
		keywords: []string{"symptom", "nausea", "nauseous", "vomit", "headache", "cramp", "swelling", "swollen", "heartburn", "dizzy", "dizziness", "fatigue", "constipation", "backache", "back pain"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bfeel(ing)?\s+(nauseous|sick|dizzy|bloated|exhausted)\b`),
			regexp.MustCompile(`\bmorning\s+sickness\b`),
		},
	},
	IntentBloodPressure: {
		keywords: []string{"blood pressure", "bp", "systolic", "diastolic", "hypertension"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b\d{2,3}\s*/\s*\d{2,3}\b`),
		},
	},
	IntentDischarge: {
		keywords: []string{"discharge", "spotting", "mucus", "leaking"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b(white|clear|brown|pink|yellow|green|watery|bloody)\s+discharge\b`),
		},
	},
	IntentMood: {
		keywords: []string{"mood", "feel", "happy", "sad", "anxious", "stressed", "irritable", "emotional", "overwhelmed", "cry"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bfeel(ing)?\s+(happy|sad|anxious|stressed|calm|irritable|low|down|angry|excited|overwhelmed)\b`),
		},
	},
	IntentSleep: {
		keywords: []string{"sleep", "slept", "insomnia", "nap"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bslept\s+(for\s+)?\d+`),
			regexp.MustCompile(`\b\d+([.,]\d+)?\s*(hours?|hrs?)\s+(of\s+)?sleep\b`),
		},
	},
	IntentAppointments: {
		keywords: []string{"appointment", "checkup", "check-up", "check up", "scan", "ultrasound", "doctor", "clinic", "visit", "schedule"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b(book|schedule|set\s+up)\s+(an?\s+)?\w*\s*(appointment|checkup|scan|visit)\b`),
			regexp.MustCompile(`\bat\s+\d{1,2}(:\d{2})?\s*(am|pm)\b`),
		},
	},
	IntentGuidelines: {
		keywords: []string{"guideline", "advice", "recommend", "should i", "is it safe", "safe to", "tips", "what to expect", "normal"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bis\s+it\s+(safe|normal|ok(ay)?)\b`),
			regexp.MustCompile(`\bcan\s+i\s+(eat|drink|take|travel|exercise|fly)\b`),
		},
	},
	IntentTasks: {
		keywords: []string{"task", "todo", "to-do", "checklist", "remind"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b(add|create|make)\s+(a\s+)?(task|reminder|to-?do)\b`),
			regexp.MustCompile(`\bremind\s+me\b`),
		},
	},
	IntentAnalytics: {
		keywords: []string{"analytics", "stats", "statistics", "trend", "summary", "average", "progress", "insight", "overview", "report"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b(weekly|monthly)\s+(summary|report|overview)\b`),
			regexp.MustCompile(`\bhow\s+am\s+i\s+doing\b`),
		},
	},
	IntentNavigation: {
		keywords: []string{"open", "go to", "navigate", "take me", "screen", "page"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b(open|go\s+to|take\s+me\s+to|show\s+me)\s+(the\s+)?\w+\s+(screen|page|tab|section)\b`),
		},
	},
}
