package tracker

import (
	"context"
	"fmt"

	contractx "github.com/ishaanxgupta/BabyNest-sub001/agent/contract"
	recordsx "github.com/ishaanxgupta/BabyNest-sub001/agent/records"
)

type moodHandler struct{ handlerDeps }

var lowMoods = map[string]bool{
	"sad": true, "low": true, "anxious": true, "worried": true,
	"stressed": true, "overwhelmed": true, "tearful": true, "irritable": true,
}

func (h moodHandler) Handle(ctx context.Context, req contractx.HandlerRequest) (contractx.Response, error) {
	if resp, done, err := h.undoReply(ctx, req, recordsx.CategoryMood, "mood"); done {
		return resp, err
	}
	if wantsHistory(req.Query) {
		return historyReply(req, recordsx.CategoryMood, "mood"), nil
	}

	mood, ok := matchMood(req.Query)
	if !ok {
		return clarify(req, `How are you feeling? Tell me in a word or two, like "anxious" or "happy".`), nil
	}

	entry := &recordsx.MoodLog{
		UserID:   req.UserID,
		Week:     req.Week(),
		Mood:     mood,
		LoggedAt: req.Now,
	}
	if err := h.store.LogMood(ctx, entry); err != nil {
		return contractx.Response{}, fmt.Errorf("log mood: %w", err)
	}
	if err := h.refresh(ctx, req.UserID, recordsx.CategoryMood); err != nil {
		return contractx.Response{}, err
	}

	text := fmt.Sprintf("Mood noted: %s.", mood)
	if lowMoods[mood] {
		text += " Mood swings are part of pregnancy, but if this sticks around for more than two weeks, mention it to your midwife."
	}
	return written(req, text), nil
}

type sleepHandler struct{ handlerDeps }

func (h sleepHandler) Handle(ctx context.Context, req contractx.HandlerRequest) (contractx.Response, error) {
	if resp, done, err := h.undoReply(ctx, req, recordsx.CategorySleep, "sleep"); done {
		return resp, err
	}
	if wantsHistory(req.Query) {
		return historyReply(req, recordsx.CategorySleep, "sleep"), nil
	}

	hours, ok := parseSleepHours(req.Query)
	if !ok {
		return clarify(req, `Tell me like "slept 7 hours" and I will log it.`), nil
	}

	if editRequest(req.Query) {
		if resp, done, err := h.amend(ctx, req, hours); done {
			return resp, err
		}
	}

	entry := &recordsx.SleepLog{
		UserID:   req.UserID,
		Week:     req.Week(),
		Hours:    hours,
		Quality:  sleepQuality(req.Query),
		LoggedAt: req.Now,
	}
	if err := h.store.LogSleep(ctx, entry); err != nil {
		return contractx.Response{}, fmt.Errorf("log sleep: %w", err)
	}
	if err := h.refresh(ctx, req.UserID, recordsx.CategorySleep); err != nil {
		return contractx.Response{}, err
	}

	text := fmt.Sprintf("Logged %.1f hours of sleep for week %d.", hours, req.Week())
	if hours < 6 {
		text += " That is on the short side. Rest when you can today."
	}
	return written(req, text), nil
}

func (h sleepHandler) amend(ctx context.Context, req contractx.HandlerRequest, hours float64) (contractx.Response, bool, error) {
	prev, found, err := h.newest(ctx, req.UserID, recordsx.CategorySleep)
	if err != nil {
		return contractx.Response{}, true, err
	}
	if !found {
		return contractx.Response{}, false, nil
	}

	upd := &recordsx.SleepLog{ID: prev.ID, UserID: req.UserID, Week: prev.Week, Hours: hours, Quality: sleepQuality(req.Query), LoggedAt: prev.At}
	if err := h.store.UpdateEntry(ctx, upd); err != nil {
		return contractx.Response{}, true, fmt.Errorf("amend sleep: %w", err)
	}
	if err := h.refresh(ctx, req.UserID, recordsx.CategorySleep); err != nil {
		return contractx.Response{}, true, err
	}
	return written(req, fmt.Sprintf("Corrected your week %d sleep to %.1f hours.", prev.Week, hours)), true, nil
}

type symptomHandler struct{ handlerDeps }

func (h symptomHandler) Handle(ctx context.Context, req contractx.HandlerRequest) (contractx.Response, error) {
	if resp, done, err := h.undoReply(ctx, req, recordsx.CategorySymptoms, "symptom"); done {
		return resp, err
	}
	if wantsHistory(req.Query) {
		return historyReply(req, recordsx.CategorySymptoms, "symptom"), nil
	}

	symptom, ok := matchSymptom(req.Query)
	if !ok {
		return clarify(req, `Which symptom is bothering you? For example "nausea", "headache" or "back pain".`), nil
	}

	entry := &recordsx.SymptomLog{
		UserID:   req.UserID,
		Week:     req.Week(),
		Symptom:  symptom,
		Severity: symptomSeverity(req.Query),
		LoggedAt: req.Now,
	}
	if err := h.store.LogSymptom(ctx, entry); err != nil {
		return contractx.Response{}, fmt.Errorf("log symptom: %w", err)
	}
	if err := h.refresh(ctx, req.UserID, recordsx.CategorySymptoms); err != nil {
		return contractx.Response{}, err
	}

	label := symptom
	if entry.Severity != "" {
		label += " (" + entry.Severity + ")"
	}
	return written(req, fmt.Sprintf("Logged %s at week %d. If it gets worse or feels wrong, call your midwife.", label, req.Week())), nil
}

type dischargeHandler struct{ handlerDeps }

var dischargeWatch = map[string]bool{
	"yellow": true, "green": true, "brown": true, "pink": true,
}

func (h dischargeHandler) Handle(ctx context.Context, req contractx.HandlerRequest) (contractx.Response, error) {
	if resp, done, err := h.undoReply(ctx, req, recordsx.CategoryDischarge, "discharge"); done {
		return resp, err
	}
	if wantsHistory(req.Query) {
		return historyReply(req, recordsx.CategoryDischarge, "discharge"), nil
	}

	kind, ok := matchDischarge(req.Query)
	if !ok {
		return clarify(req, "Tell me what it looks like (clear, white, yellow, green, brown, pink or watery) and I will log it."), nil
	}

	entry := &recordsx.DischargeLog{
		UserID:   req.UserID,
		Week:     req.Week(),
		Kind:     kind,
		LoggedAt: req.Now,
	}
	if err := h.store.LogDischarge(ctx, entry); err != nil {
		return contractx.Response{}, fmt.Errorf("log discharge: %w", err)
	}
	if err := h.refresh(ctx, req.UserID, recordsx.CategoryDischarge); err != nil {
		return contractx.Response{}, err
	}

	text := fmt.Sprintf("Logged %s discharge at week %d.", kind, req.Week())
	if dischargeWatch[kind] {
		text += " If it smells off, itches, or you feel unwell with it, have it checked."
	}
	return written(req, text), nil
}
