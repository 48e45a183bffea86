package contract

import (
	"context"

	classifyx "github.com/ishaanxgupta/BabyNest-sub001/agent/classify"
	guidelinesx "github.com/ishaanxgupta/BabyNest-sub001/agent/guidelines"
	recordsx "github.com/ishaanxgupta/BabyNest-sub001/agent/records"
	usercontextx "github.com/ishaanxgupta/BabyNest-sub001/agent/usercontext"
)

// Handler answers one intent family. Implementations must swallow nothing:
// storage or refresh failures come back as errors so the pipeline can
// degrade in one place.
type Handler interface {
	Handle(ctx context.Context, req HandlerRequest) (Response, error)
}

// HandlerRegistry resolves the handler for a classified intent. A false
// return means the intent has no dedicated handler and falls through to
// the general path.
type HandlerRegistry interface {
	Resolve(intent classifyx.Intent) (Handler, bool)
}

// Generator produces free-form reply text from a system prompt and the
// user's message. Implementations should return an error rather than an
// empty completion.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// GuidelineSearcher is the read surface of the embedded guideline set.
type GuidelineSearcher interface {
	Search(query string, week, limit int) []guidelinesx.Entry
	ForWeek(week, limit int) []guidelinesx.Entry
}

// ContextCache is the orchestrator's view of the user context tiers.
type ContextCache interface {
	Get(ctx context.Context, userID string) (*usercontextx.UserContext, error)
	Update(ctx context.Context, userID string, cat recordsx.Category, op usercontextx.Operation) (*usercontextx.UserContext, error)
	Invalidate(ctx context.Context, userID string) error
}
