package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/ishaanxgupta/BabyNest-sub001/agent/contract"
)

// DispatchIntent hands the query to the handler registered for the
// classified intent. The branch routes general queries elsewhere, so a
// missing handler here is a wiring defect, not user input.
func DispatchIntent(ctx context.Context, in *GraphState, registry contractx.HandlerRegistry) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Settled() {
		return in, nil
	}

	h, ok := registry.Resolve(in.Result.Intent)
	if !ok {
		return nil, fmt.Errorf("%w: no handler for intent %q", contractx.ErrValidation, in.Result.Intent)
	}

	resp, err := h.Handle(ctx, contractx.HandlerRequest{
		UserID:  in.UserID,
		Query:   in.Query,
		Intent:  in.Result.Intent,
		Now:     in.Now,
		Context: in.Context,
	})
	if err != nil {
		return nil, fmt.Errorf("handle %s: %w", in.Result.Intent, err)
	}

	resp.Confidence = in.Result.Confidence
	in.Reply = &resp
	return in, nil
}
