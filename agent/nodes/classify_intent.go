package orchestratornode

import (
	"fmt"

	classifyx "github.com/ishaanxgupta/BabyNest-sub001/agent/classify"
	contractx "github.com/ishaanxgupta/BabyNest-sub001/agent/contract"
)

func ClassifyIntent(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Settled() {
		return in, nil
	}

	in.Result = classifyx.ClassifyWithScores(in.Query)
	return in, nil
}
