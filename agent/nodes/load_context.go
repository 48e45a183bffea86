package orchestratornode

import (
	"context"
	"errors"
	"fmt"

	classifyx "github.com/ishaanxgupta/BabyNest-sub001/agent/classify"
	contractx "github.com/ishaanxgupta/BabyNest-sub001/agent/contract"
	recordsx "github.com/ishaanxgupta/BabyNest-sub001/agent/records"
)

const profileNudge = "Before I can help I need your pregnancy profile. " +
	"Please complete your profile with your due date or the first day of " +
	"your last period, and every answer will be tailored to your week."

// LoadContext fetches the cached snapshot for the user. Without a
// profile there is nothing to personalize, so the reply settles on a
// nudge before any classification happens.
func LoadContext(ctx context.Context, in *GraphState, cache contractx.ContextCache) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Settled() {
		return in, nil
	}

	uc, err := cache.Get(ctx, in.UserID)
	switch {
	case err == nil:
		in.Context = uc
	case errors.Is(err, recordsx.ErrProfileNotFound):
		in.Reply = &contractx.Response{
			Text:   profileNudge,
			Intent: classifyx.IntentGeneral,
			Source: contractx.SourceGuidance,
		}
	default:
		return nil, fmt.Errorf("load context: %w", err)
	}
	return in, nil
}
