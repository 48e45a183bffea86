// Package orchestratornode holds the steps of the companion's respond
// pipeline. Each node is a plain function over the shared graph state;
// the orchestrator binds dependencies with closures when it wires the
// graph.
package orchestratornode

import (
	"errors"
	"strings"
	"time"

	classifyx "github.com/ishaanxgupta/BabyNest-sub001/agent/classify"
	contractx "github.com/ishaanxgupta/BabyNest-sub001/agent/contract"
	usercontextx "github.com/ishaanxgupta/BabyNest-sub001/agent/usercontext"
)

var ErrInvalidUser = errors.New("user id is empty")

type GraphInput struct {
	UserID string
	Query  string
}

type GraphOutput struct {
	Response contractx.Response
}

// GraphState carries one query through the pipeline. Reply is the
// settle point: the first node that can answer sets it and every later
// node passes the state through untouched.
type GraphState struct {
	UserID string
	Query  string
	Now    time.Time

	Context *usercontextx.UserContext
	Result  classifyx.Classification

	Reply *contractx.Response
}

func (s *GraphState) Settled() bool { return s != nil && s.Reply != nil }

const emptyQueryGuidance = "Tell me what you need and I will take it from there. " +
	"You can log things (\"65 kg\", \"slept 7 hours\", \"took folic acid\"), " +
	"review them (\"show my weight history\") or just ask a question."

func ValidateQuery(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, ErrInvalidUser
	}

	st := &GraphState{
		UserID: userID,
		Query:  strings.TrimSpace(in.Query),
		Now:    nowFn().UTC(),
	}
	if st.Query == "" {
		st.Reply = &contractx.Response{
			Text:   emptyQueryGuidance,
			Intent: classifyx.IntentGeneral,
			Source: contractx.SourceGuidance,
		}
	}
	return st, nil
}
