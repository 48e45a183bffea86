package orchestratornode

import (
	"fmt"

	contractx "github.com/ishaanxgupta/BabyNest-sub001/agent/contract"
	promptx "github.com/ishaanxgupta/BabyNest-sub001/agent/prompt"
)

// RespondSafety answers emergencies from a fixed script, never from
// text generation.
func RespondSafety(in *GraphState, prompts promptx.PromptSet) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Settled() {
		return in, nil
	}

	week := 0
	if in.Context != nil {
		week = in.Context.Week
	}
	in.Reply = &contractx.Response{
		Text:       prompts.Emergency(week),
		Intent:     in.Result.Intent,
		Confidence: in.Result.Confidence,
		Source:     contractx.SourceSafety,
	}
	return in, nil
}
