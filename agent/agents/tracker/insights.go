package tracker

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/ishaanxgupta/BabyNest-sub001/agent/contract"
	recordsx "github.com/ishaanxgupta/BabyNest-sub001/agent/records"
)

type guidelineHandler struct{ handlerDeps }

func (h guidelineHandler) Handle(ctx context.Context, req contractx.HandlerRequest) (contractx.Response, error) {
	week := req.Week()
	hits := h.guides.Search(req.Query, week, 3)
	if len(hits) == 0 {
		hits = h.guides.ForWeek(week, 3)
	}
	if len(hits) == 0 {
		return reply(req, "I do not have guidance on that yet. Your midwife or doctor is the right person to ask."), nil
	}

	var b strings.Builder
	for i, g := range hits {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(g.Title)
		b.WriteString(": ")
		b.WriteString(g.Content)
	}
	return reply(req, b.String()), nil
}

type analyticsHandler struct{ handlerDeps }

// The analytics handler summarizes straight from the cached context;
// chart-grade statistics live in the UI, not here.
func (h analyticsHandler) Handle(ctx context.Context, req contractx.HandlerRequest) (contractx.Response, error) {
	var lines []string

	if weights := req.Context.Entries(recordsx.CategoryWeight); len(weights) > 0 {
		line := fmt.Sprintf("Weight: %s latest", weights[0].Value)
		if len(weights) > 1 {
			oldest := weights[len(weights)-1]
			line += fmt.Sprintf(", %+.1f kg across your last %d entries", weights[0].Amount-oldest.Amount, len(weights))
		}
		lines = append(lines, line+".")
	}
	if sleeps := req.Context.Entries(recordsx.CategorySleep); len(sleeps) > 0 {
		var total float64
		for _, e := range sleeps {
			total += e.Amount
		}
		lines = append(lines, fmt.Sprintf("Sleep: averaging %.1f hours over %d nights.", total/float64(len(sleeps)), len(sleeps)))
	}
	if bps := req.Context.Entries(recordsx.CategoryBloodPressure); len(bps) > 0 {
		lines = append(lines, fmt.Sprintf("Blood pressure: %s at last reading (week %d).", bps[0].Value, bps[0].Week))
	}
	if moods := req.Context.Entries(recordsx.CategoryMood); len(moods) > 0 {
		lines = append(lines, fmt.Sprintf("Mood: most recently %s.", moods[0].Value))
	}

	if len(lines) == 0 {
		return reply(req, "Nothing tracked yet, so there is nothing to sum up. Log a weight, a night of sleep or a mood and ask me again."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here is where you stand at week %d:\n", req.Week())
	for _, l := range lines {
		b.WriteString("- ")
		b.WriteString(l)
		b.WriteString("\n")
	}
	return reply(req, strings.TrimSpace(b.String())), nil
}

type navigationHandler struct{ handlerDeps }

func (h navigationHandler) Handle(ctx context.Context, req contractx.HandlerRequest) (contractx.Response, error) {
	if screen, ok := matchScreen(req.Query); ok {
		return reply(req, fmt.Sprintf("You will find that in the %s section of the app.", screen)), nil
	}
	return reply(req, "The app has Home, Tracker, Appointments, Tasks, Analytics, Guidelines and Profile sections. Which one do you need?"), nil
}
