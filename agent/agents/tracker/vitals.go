package tracker

import (
	"context"
	"fmt"

	contractx "github.com/ishaanxgupta/BabyNest-sub001/agent/contract"
	recordsx "github.com/ishaanxgupta/BabyNest-sub001/agent/records"
)

type weightHandler struct{ handlerDeps }

func (h weightHandler) Handle(ctx context.Context, req contractx.HandlerRequest) (contractx.Response, error) {
	if resp, done, err := h.undoReply(ctx, req, recordsx.CategoryWeight, "weight"); done {
		return resp, err
	}
	if wantsHistory(req.Query) {
		return historyReply(req, recordsx.CategoryWeight, "weight"), nil
	}

	kg, ok := parseWeight(req.Query)
	if !ok {
		return clarify(req, `I could not spot a weight in that. Tell me like "65 kg" or "143 lbs".`), nil
	}

	if editRequest(req.Query) {
		if resp, done, err := h.amend(ctx, req, kg); done {
			return resp, err
		}
	}

	entry := &recordsx.WeightLog{
		UserID:   req.UserID,
		Week:     req.Week(),
		WeightKG: kg,
		LoggedAt: req.Now,
	}
	if err := h.store.LogWeight(ctx, entry); err != nil {
		return contractx.Response{}, fmt.Errorf("log weight: %w", err)
	}
	if err := h.refresh(ctx, req.UserID, recordsx.CategoryWeight); err != nil {
		return contractx.Response{}, err
	}

	h.log.Debug().Str("user_id", req.UserID).Float64("weight_kg", kg).Msg("weight logged")
	return written(req, fmt.Sprintf("Logged %.1f kg for week %d.", kg, req.Week())), nil
}

// amend rewrites the newest weight record instead of adding a second
// one. Reports done=false when there is nothing to correct yet.
func (h weightHandler) amend(ctx context.Context, req contractx.HandlerRequest, kg float64) (contractx.Response, bool, error) {
	prev, found, err := h.newest(ctx, req.UserID, recordsx.CategoryWeight)
	if err != nil {
		return contractx.Response{}, true, err
	}
	if !found {
		return contractx.Response{}, false, nil
	}

	upd := &recordsx.WeightLog{ID: prev.ID, UserID: req.UserID, Week: prev.Week, WeightKG: kg, Note: prev.Note, LoggedAt: prev.At}
	if err := h.store.UpdateEntry(ctx, upd); err != nil {
		return contractx.Response{}, true, fmt.Errorf("amend weight: %w", err)
	}
	if err := h.refresh(ctx, req.UserID, recordsx.CategoryWeight); err != nil {
		return contractx.Response{}, true, err
	}
	return written(req, fmt.Sprintf("Corrected your week %d weight to %.1f kg.", prev.Week, kg)), true, nil
}

type bloodPressureHandler struct{ handlerDeps }

func (h bloodPressureHandler) Handle(ctx context.Context, req contractx.HandlerRequest) (contractx.Response, error) {
	if resp, done, err := h.undoReply(ctx, req, recordsx.CategoryBloodPressure, "blood pressure"); done {
		return resp, err
	}
	if wantsHistory(req.Query) {
		return historyReply(req, recordsx.CategoryBloodPressure, "blood pressure"), nil
	}

	systolic, diastolic, ok := parseBloodPressure(req.Query)
	if !ok {
		return clarify(req, `Give me the reading like "120/80" and I will log it.`), nil
	}

	if editRequest(req.Query) {
		if resp, done, err := h.amend(ctx, req, systolic, diastolic); done {
			return resp, err
		}
	}

	entry := &recordsx.BloodPressureLog{
		UserID:    req.UserID,
		Week:      req.Week(),
		Systolic:  systolic,
		Diastolic: diastolic,
		LoggedAt:  req.Now,
	}
	if err := h.store.LogBloodPressure(ctx, entry); err != nil {
		return contractx.Response{}, fmt.Errorf("log blood pressure: %w", err)
	}
	if err := h.refresh(ctx, req.UserID, recordsx.CategoryBloodPressure); err != nil {
		return contractx.Response{}, err
	}

	text := fmt.Sprintf("Logged blood pressure %d/%d at week %d.", systolic, diastolic, req.Week())
	return written(req, text+bpWarning(systolic, diastolic)), nil
}

func (h bloodPressureHandler) amend(ctx context.Context, req contractx.HandlerRequest, systolic, diastolic int) (contractx.Response, bool, error) {
	prev, found, err := h.newest(ctx, req.UserID, recordsx.CategoryBloodPressure)
	if err != nil {
		return contractx.Response{}, true, err
	}
	if !found {
		return contractx.Response{}, false, nil
	}

	upd := &recordsx.BloodPressureLog{ID: prev.ID, UserID: req.UserID, Week: prev.Week, Systolic: systolic, Diastolic: diastolic, Note: prev.Note, LoggedAt: prev.At}
	if err := h.store.UpdateEntry(ctx, upd); err != nil {
		return contractx.Response{}, true, fmt.Errorf("amend blood pressure: %w", err)
	}
	if err := h.refresh(ctx, req.UserID, recordsx.CategoryBloodPressure); err != nil {
		return contractx.Response{}, true, err
	}

	text := fmt.Sprintf("Corrected your week %d blood pressure to %d/%d.", prev.Week, systolic, diastolic)
	return written(req, text+bpWarning(systolic, diastolic)), true, nil
}

func bpWarning(systolic, diastolic int) string {
	if systolic >= 140 || diastolic >= 90 {
		return " That reading is on the high side. If you also have a headache or vision changes, call your midwife today."
	}
	return ""
}

type medicineHandler struct{ handlerDeps }

func (h medicineHandler) Handle(ctx context.Context, req contractx.HandlerRequest) (contractx.Response, error) {
	if resp, done, err := h.undoReply(ctx, req, recordsx.CategoryMedicine, "medicine"); done {
		return resp, err
	}
	if wantsHistory(req.Query) {
		return historyReply(req, recordsx.CategoryMedicine, "medicine"), nil
	}

	name, dose, ok := parseMedicine(req.Query)
	if !ok {
		if dose != "" {
			return clarify(req, fmt.Sprintf("I caught the dose (%s) but not which medicine. Which one did you take?", dose)), nil
		}
		return clarify(req, `Tell me which medicine you took, like "took 400 mcg folic acid".`), nil
	}

	entry := &recordsx.MedicineLog{
		UserID:   req.UserID,
		Week:     req.Week(),
		Name:     name,
		Dose:     dose,
		LoggedAt: req.Now,
	}
	if err := h.store.LogMedicine(ctx, entry); err != nil {
		return contractx.Response{}, fmt.Errorf("log medicine: %w", err)
	}
	if err := h.refresh(ctx, req.UserID, recordsx.CategoryMedicine); err != nil {
		return contractx.Response{}, err
	}

	noted := name
	if dose != "" {
		noted += " " + dose
	}
	return written(req, fmt.Sprintf("Noted %s at week %d.", noted, req.Week())), nil
}
