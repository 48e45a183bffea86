package orchestratornode

import (
	"fmt"
	"strings"

	contractx "github.com/ishaanxgupta/BabyNest-sub001/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil || in.Reply == nil {
		return GraphOutput{}, fmt.Errorf("%w: pipeline finished without a reply", contractx.ErrValidation)
	}

	resp := *in.Reply
	resp.Text = strings.TrimSpace(resp.Text)
	if resp.Text == "" {
		return GraphOutput{}, fmt.Errorf("%w: pipeline produced an empty reply", contractx.ErrValidation)
	}
	return GraphOutput{Response: resp}, nil
}
