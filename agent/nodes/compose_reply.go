package orchestratornode

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	contractx "github.com/ishaanxgupta/BabyNest-sub001/agent/contract"
	promptx "github.com/ishaanxgupta/BabyNest-sub001/agent/prompt"
)

const tipLimit = 3

// ComposeReply answers everything no handler claims. Matching guidance
// and the context snapshot go to the text generator; when generation
// fails or comes back empty the same material is flattened into a
// deterministic reply. The pipeline always answers.
func ComposeReply(
	ctx context.Context,
	in *GraphState,
	generator contractx.Generator,
	guides contractx.GuidelineSearcher,
	prompts promptx.PromptSet,
	log zerolog.Logger,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Settled() {
		return in, nil
	}

	week := 0
	contextText := ""
	if in.Context != nil {
		week = in.Context.Week
		contextText = in.Context.Describe()
	}

	entries := guides.Search(in.Query, week, tipLimit)
	if len(entries) == 0 {
		entries = guides.ForWeek(week, tipLimit)
	}
	tips := make([]string, 0, len(entries))
	for _, e := range entries {
		tips = append(tips, e.Title+": "+e.Content)
	}

	if generator != nil {
		text, err := generator.Generate(ctx, prompts.System(contextText, tips), in.Query)
		if err != nil {
			log.Warn().Err(err).Str("user_id", in.UserID).Msg("text generation failed, falling back")
		} else if strings.TrimSpace(text) != "" {
			in.Reply = &contractx.Response{
				Text:       strings.TrimSpace(text),
				Intent:     in.Result.Intent,
				Confidence: in.Result.Confidence,
				Source:     contractx.SourceGenerated,
			}
			return in, nil
		}
	}

	in.Reply = &contractx.Response{
		Text:       fallbackReply(week, tips),
		Intent:     in.Result.Intent,
		Confidence: in.Result.Confidence,
		Source:     contractx.SourceFallback,
	}
	return in, nil
}

func fallbackReply(week int, tips []string) string {
	var b strings.Builder
	b.WriteString("I cannot reach the assistant right now, but here is what I can share")
	if week > 0 {
		fmt.Fprintf(&b, " for week %d", week)
	}
	b.WriteString(":\n")
	if len(tips) == 0 {
		b.WriteString("- keep up your regular checkups and call your midwife about anything urgent")
		return b.String()
	}
	for i, tip := range tips {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + tip)
	}
	return b.String()
}
