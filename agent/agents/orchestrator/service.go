// Package orchestrator runs the chat pipeline: validate, load the
// context snapshot, classify, then answer through a handler, the
// safety script or the generative path. One call, one response.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog"

	classifyx "github.com/ishaanxgupta/BabyNest-sub001/agent/classify"
	contractx "github.com/ishaanxgupta/BabyNest-sub001/agent/contract"
	nodex "github.com/ishaanxgupta/BabyNest-sub001/agent/nodes"
	promptx "github.com/ishaanxgupta/BabyNest-sub001/agent/prompt"
	logx "github.com/ishaanxgupta/BabyNest-sub001/pkg/logger"
)

var ErrInvalidUser = nodex.ErrInvalidUser

type Orchestrator struct {
	cache     contractx.ContextCache
	registry  contractx.HandlerRegistry
	guides    contractx.GuidelineSearcher
	generator contractx.Generator
	prompts   promptx.PromptSet

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	log zerolog.Logger
	now func() time.Time
}

// New wires the pipeline. The generator may be nil: general questions
// then settle on the deterministic fallback instead of generated text.
func New(
	cache contractx.ContextCache,
	registry contractx.HandlerRegistry,
	guides contractx.GuidelineSearcher,
	generator contractx.Generator,
) (*Orchestrator, error) {
	if cache == nil {
		return nil, errors.New("context cache is required")
	}
	if registry == nil {
		return nil, errors.New("handler registry is required")
	}
	if guides == nil {
		return nil, errors.New("guideline index is required")
	}

	o := &Orchestrator{
		cache:     cache,
		registry:  registry,
		guides:    guides,
		generator: generator,
		prompts:   promptx.LoadPromptSet(),
		log:       logx.Component("orchestrator"),
		now:       time.Now,
	}

	graphRunner, err := o.compileRespondGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// Respond is the single entry point of the pipeline and never returns
// an error: whatever the pipeline cannot absorb becomes an apology
// response carrying the failure detail.
func (o *Orchestrator) Respond(ctx context.Context, userID string, query string) contractx.Response {
	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		UserID: userID,
		Query:  query,
	})
	if err != nil {
		o.log.Error().Err(err).Str("user_id", userID).Msg("pipeline failed")
		return apology(err)
	}
	return out.Response
}

func apology(err error) contractx.Response {
	return contractx.Response{
		Text: fmt.Sprintf("Sorry, something went wrong on my side (%v). "+
			"Please try again in a moment.", err),
		Intent: classifyx.IntentGeneral,
		Source: contractx.SourceGuidance,
	}
}
