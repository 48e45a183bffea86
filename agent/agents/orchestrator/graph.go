package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	classifyx "github.com/ishaanxgupta/BabyNest-sub001/agent/classify"
	contractx "github.com/ishaanxgupta/BabyNest-sub001/agent/contract"
	nodex "github.com/ishaanxgupta/BabyNest-sub001/agent/nodes"
)

func (o *Orchestrator) compileRespondGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_query",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateQuery(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_query: %w", err)
	}

	if err := graph.AddLambdaNode("load_context",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.LoadContext(ctx, in, o.cache)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_context: %w", err)
	}

	if err := graph.AddLambdaNode("classify_intent",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ClassifyIntent(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node classify_intent: %w", err)
	}

	if err := graph.AddLambdaNode("respond_safety",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RespondSafety(in, o.prompts)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node respond_safety: %w", err)
	}

	if err := graph.AddLambdaNode("dispatch_intent",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.DispatchIntent(ctx, in, o.registry)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node dispatch_intent: %w", err)
	}

	if err := graph.AddLambdaNode("compose_reply",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ComposeReply(ctx, in, o.generator, o.guides, o.prompts, o.log)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node compose_reply: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
			}
			switch {
			case in.Settled():
				return "finalize_reply", nil
			case in.Result.Intent == classifyx.IntentEmergency:
				return "respond_safety", nil
			default:
				if _, ok := o.registry.Resolve(in.Result.Intent); ok {
					return "dispatch_intent", nil
				}
				return "compose_reply", nil
			}
		},
		map[string]bool{
			"finalize_reply":  true,
			"respond_safety":  true,
			"dispatch_intent": true,
			"compose_reply":   true,
		},
	)

	if err := graph.AddBranch("classify_intent", branch); err != nil {
		return nil, fmt.Errorf("add respond branch: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_query"},
		{"validate_query", "load_context"},
		{"load_context", "classify_intent"},
		{"respond_safety", "finalize_reply"},
		{"dispatch_intent", "finalize_reply"},
		{"compose_reply", "finalize_reply"},
		{"finalize_reply", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.respond"))
	if err != nil {
		return nil, fmt.Errorf("compile respond graph: %w", err)
	}
	return runner, nil
}
