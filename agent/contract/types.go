package contract

import (
	"time"

	classifyx "github.com/ishaanxgupta/BabyNest-sub001/agent/classify"
	usercontextx "github.com/ishaanxgupta/BabyNest-sub001/agent/usercontext"
)

// ResponseSource records which path produced the reply text.
type ResponseSource string

const (
	// SourceHandler marks replies built by an intent handler.
	SourceHandler ResponseSource = "handler"
	// SourceGenerated marks replies produced by the text generator.
	SourceGenerated ResponseSource = "generated"
	// SourceFallback marks deterministic replies used when generation is
	// unavailable or fails.
	SourceFallback ResponseSource = "fallback"
	// SourceSafety marks the emergency script.
	SourceSafety ResponseSource = "safety"
	// SourceGuidance marks onboarding nudges such as the empty-query and
	// missing-profile replies.
	SourceGuidance ResponseSource = "guidance"
)

// HandlerRequest is what an intent handler receives: the raw query, the
// classified intent, and the caller's cached context.
type HandlerRequest struct {
	UserID  string                    `json:"user_id"`
	Query   string                    `json:"query"`
	Intent  classifyx.Intent          `json:"intent"`
	Now     time.Time                 `json:"now"`
	Context *usercontextx.UserContext `json:"context,omitempty"`
}

// Week returns the gestational week from the attached context, zero when
// no context is present.
func (r HandlerRequest) Week() int {
	if r.Context == nil {
		return 0
	}
	return r.Context.Week
}

// Response is the single reply shape every path produces.
type Response struct {
	Text       string           `json:"text"`
	Intent     classifyx.Intent `json:"intent"`
	Confidence float64          `json:"confidence"`
	Source     ResponseSource   `json:"source"`
	Written    bool             `json:"written,omitempty"`
	NeedsInput bool             `json:"needs_input,omitempty"`
}
