package tracker

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/ishaanxgupta/BabyNest-sub001/agent/contract"
	recordsx "github.com/ishaanxgupta/BabyNest-sub001/agent/records"
)

type appointmentHandler struct{ handlerDeps }

// Appointments are the one category never written from free text: a
// booking needs a title, a date, a time and a place, and half-guessed
// calendar entries are worse than none. Reads list what is coming up,
// cancellations match an upcoming title; everything else asks for the
// full details.
func (h appointmentHandler) Handle(ctx context.Context, req contractx.HandlerRequest) (contractx.Response, error) {
	if needle, ok := apptCancelNeedle(req.Query); ok {
		return h.cancel(ctx, req, needle)
	}

	lowered := strings.ToLower(req.Query)
	if wantsHistory(req.Query) || containsAny(lowered, "next appointment", "upcoming", "when is") {
		appts, err := h.store.Appointments(ctx, req.UserID, req.Now, 5)
		if err != nil {
			return contractx.Response{}, fmt.Errorf("list appointments: %w", err)
		}
		if len(appts) == 0 {
			return reply(req, "You have no upcoming appointments."), nil
		}

		var b strings.Builder
		b.WriteString("Your upcoming appointments:\n")
		for _, a := range appts {
			b.WriteString("- ")
			b.WriteString(a.Describe())
			b.WriteString("\n")
		}
		return reply(req, strings.TrimSpace(b.String())), nil
	}

	return clarify(req, "I can save that once I have the full details: title, date, time and location. For example: \"Checkup, 12 June, 10:00, City Hospital\"."), nil
}

// cancel removes one upcoming appointment. An empty needle means "my
// appointment": unambiguous only when exactly one is booked.
func (h appointmentHandler) cancel(ctx context.Context, req contractx.HandlerRequest, needle string) (contractx.Response, error) {
	appts, err := h.store.Appointments(ctx, req.UserID, req.Now, 10)
	if err != nil {
		return contractx.Response{}, fmt.Errorf("list appointments: %w", err)
	}
	if len(appts) == 0 {
		return reply(req, "You have no upcoming appointments to cancel."), nil
	}

	var target recordsx.Appointment
	switch {
	case needle == "" && len(appts) == 1:
		target = appts[0]
	case needle == "":
		var b strings.Builder
		b.WriteString("You have more than one appointment coming up. Which one should I cancel?\n")
		for _, a := range appts {
			b.WriteString("- ")
			b.WriteString(a.Describe())
			b.WriteString("\n")
		}
		return clarify(req, strings.TrimSpace(b.String())), nil
	default:
		found := false
		for _, a := range appts {
			title := strings.ToLower(a.Title)
			if strings.Contains(title, needle) || strings.Contains(needle, title) {
				target, found = a, true
				break
			}
		}
		if !found {
			return clarify(req, fmt.Sprintf("I could not find an upcoming appointment matching %q.", needle)), nil
		}
	}

	if err := h.store.DeleteAppointment(ctx, req.UserID, target.ID); err != nil {
		return contractx.Response{}, fmt.Errorf("cancel appointment: %w", err)
	}
	return written(req, fmt.Sprintf("Cancelled: %s.", target.Describe())), nil
}

type taskHandler struct{ handlerDeps }

func (h taskHandler) Handle(ctx context.Context, req contractx.HandlerRequest) (contractx.Response, error) {
	if wantsHistory(req.Query) {
		return h.list(ctx, req)
	}

	if title, ok := taskTitle(req.Query); ok {
		task := &recordsx.Task{
			UserID:    req.UserID,
			Title:     title,
			Week:      req.Week(),
			CreatedAt: req.Now,
		}
		if err := h.store.SaveTask(ctx, task); err != nil {
			return contractx.Response{}, fmt.Errorf("save task: %w", err)
		}
		return written(req, fmt.Sprintf("Added to your checklist: %s.", title)), nil
	}

	if needle, ok := taskDoneNeedle(req.Query); ok {
		open, err := h.store.Tasks(ctx, req.UserID, false)
		if err != nil {
			return contractx.Response{}, fmt.Errorf("list open tasks: %w", err)
		}
		task, found := matchTask(open, needle)
		if !found {
			return clarify(req, fmt.Sprintf("I could not find an open task matching %q. Say \"show my tasks\" to see what is on the list.", needle)), nil
		}
		if err := h.store.CompleteTask(ctx, req.UserID, task.ID); err != nil {
			return contractx.Response{}, fmt.Errorf("complete task: %w", err)
		}
		return written(req, fmt.Sprintf("Done: %s. %d task(s) left on your list.", task.Title, len(open)-1)), nil
	}

	if needle, ok := taskDeleteNeedle(req.Query); ok {
		all, err := h.store.Tasks(ctx, req.UserID, true)
		if err != nil {
			return contractx.Response{}, fmt.Errorf("list tasks: %w", err)
		}
		task, found := matchTask(all, needle)
		if !found {
			return clarify(req, fmt.Sprintf("I could not find a task matching %q.", needle)), nil
		}
		if err := h.store.DeleteTask(ctx, req.UserID, task.ID); err != nil {
			return contractx.Response{}, fmt.Errorf("delete task: %w", err)
		}
		return written(req, fmt.Sprintf("Removed task: %s.", task.Title)), nil
	}

	return clarify(req, `Tell me what to remember, like "remind me to book the anomaly scan".`), nil
}

func (h taskHandler) list(ctx context.Context, req contractx.HandlerRequest) (contractx.Response, error) {
	open, err := h.store.Tasks(ctx, req.UserID, false)
	if err != nil {
		return contractx.Response{}, fmt.Errorf("list open tasks: %w", err)
	}
	if len(open) == 0 {
		return reply(req, "Your checklist is clear. Nice."), nil
	}

	var b strings.Builder
	b.WriteString("Your open tasks:\n")
	for _, t := range open {
		if t.Week > 0 {
			fmt.Fprintf(&b, "- %s (added week %d)\n", t.Title, t.Week)
		} else {
			fmt.Fprintf(&b, "- %s\n", t.Title)
		}
	}
	return reply(req, strings.TrimSpace(b.String())), nil
}

func matchTask(tasks []recordsx.Task, needle string) (recordsx.Task, bool) {
	needle = strings.ToLower(needle)
	for _, t := range tasks {
		title := strings.ToLower(t.Title)
		if strings.Contains(title, needle) || strings.Contains(needle, title) {
			return t, true
		}
	}
	return recordsx.Task{}, false
}
