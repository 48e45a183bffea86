package classify

import "strings"

// confidenceScale maps the raw winning score onto [0, 1]: a score of
// five or more is full confidence.
const confidenceScale = 5

// Classify returns the intent label alone.
func Classify(query string) Intent {
	return ClassifyWithScores(query).Intent
}

// ClassifyWithScores scores a query against every rule set. Emergency
// triggers short-circuit with maximal confidence. Otherwise the
// highest score wins, ties falling to the first intent in order, and a
// query matching nothing is general with zero confidence.
func ClassifyWithScores(query string) Classification {
	q := normalize(query)
	if q == "" {
		return Classification{Intent: IntentGeneral, Scores: map[Intent]int{}}
	}

	if s := emergencyRules.score(q); s > 0 {
		return Classification{
			Intent:     IntentEmergency,
			Confidence: 1.0,
			Scores:     map[Intent]int{IntentEmergency: s},
		}
	}

	scores := make(map[Intent]int, len(ordered))
	best := IntentGeneral
	bestScore := 0
	for _, intent := range ordered {
		s := rules[intent].score(q)
		if s == 0 {
			continue
		}
		scores[intent] = s
		if s > bestScore {
			best, bestScore = intent, s
		}
	}

	if bestScore == 0 {
		return Classification{Intent: IntentGeneral, Scores: scores}
	}

	conf := float64(bestScore) / confidenceScale
	if conf > 1 {
		conf = 1
	}
	return Classification{Intent: best, Confidence: conf, Scores: scores}
}

func normalize(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	return strings.ReplaceAll(q, "’", "'")
}
