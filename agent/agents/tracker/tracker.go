// Package tracker implements the per-intent handlers behind the chat
// pipeline. Every handler follows the same single-pass shape: a history
// request is answered from the cached context, a parseable write is
// persisted and the matching context category refreshed, and anything
// else comes back as a clarifying prompt. Handlers keep no state between
// calls; a follow-up is just the caller sending a fuller query.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	classifyx "github.com/ishaanxgupta/BabyNest-sub001/agent/classify"
	contractx "github.com/ishaanxgupta/BabyNest-sub001/agent/contract"
	recordsx "github.com/ishaanxgupta/BabyNest-sub001/agent/records"
	usercontextx "github.com/ishaanxgupta/BabyNest-sub001/agent/usercontext"
	logx "github.com/ishaanxgupta/BabyNest-sub001/pkg/logger"
)

// Registry maps every intent with a dedicated handler. The general
// intent is deliberately absent: it falls through to the generative
// path.
type Registry struct {
	handlers map[classifyx.Intent]contractx.Handler
}

var _ contractx.HandlerRegistry = (*Registry)(nil)

func NewRegistry(
	store recordsx.Store,
	cache contractx.ContextCache,
	guides contractx.GuidelineSearcher,
) (*Registry, error) {
	if store == nil {
		return nil, errors.New("record store is required")
	}
	if cache == nil {
		return nil, errors.New("context cache is required")
	}
	if guides == nil {
		return nil, errors.New("guideline index is required")
	}

	deps := handlerDeps{
		store:  store,
		cache:  cache,
		guides: guides,
		log:    logx.Component("tracker"),
	}

	return &Registry{
		handlers: map[classifyx.Intent]contractx.Handler{
			classifyx.IntentWeight:        weightHandler{deps},
			classifyx.IntentMedicine:      medicineHandler{deps},
			classifyx.IntentSymptoms:      symptomHandler{deps},
			classifyx.IntentBloodPressure: bloodPressureHandler{deps},
			classifyx.IntentDischarge:     dischargeHandler{deps},
			classifyx.IntentMood:          moodHandler{deps},
			classifyx.IntentSleep:         sleepHandler{deps},
			classifyx.IntentAppointments:  appointmentHandler{deps},
			classifyx.IntentGuidelines:    guidelineHandler{deps},
			classifyx.IntentTasks:         taskHandler{deps},
			classifyx.IntentAnalytics:     analyticsHandler{deps},
			classifyx.IntentNavigation:    navigationHandler{deps},
		},
	}, nil
}

func (r *Registry) Resolve(intent classifyx.Intent) (contractx.Handler, bool) {
	h, ok := r.handlers[intent]
	return h, ok
}

type handlerDeps struct {
	store  recordsx.Store
	cache  contractx.ContextCache
	guides contractx.GuidelineSearcher
	log    zerolog.Logger
}

// refresh re-pulls one category into the cached context after a write so
// the next read observes it.
func (d handlerDeps) refresh(ctx context.Context, userID string, cat recordsx.Category) error {
	if _, err := d.cache.Update(ctx, userID, cat, usercontextx.OpCreate); err != nil {
		return fmt.Errorf("refresh %s after write: %w", cat, err)
	}
	return nil
}

// newest fetches the latest stored entry of one category straight from
// the store, bypassing the possibly stale context snapshot.
func (d handlerDeps) newest(ctx context.Context, userID string, cat recordsx.Category) (recordsx.Entry, bool, error) {
	entries, err := d.store.Recent(ctx, userID, cat, 1)
	if err != nil {
		return recordsx.Entry{}, false, fmt.Errorf("load latest %s: %w", cat, err)
	}
	if len(entries) == 0 {
		return recordsx.Entry{}, false, nil
	}
	return entries[0], true, nil
}

// undoReply deletes the newest entry of one category when the query asks
// for that. The bool reports whether the query was an undo request at
// all; when it is, the response is final either way.
func (d handlerDeps) undoReply(ctx context.Context, req contractx.HandlerRequest, cat recordsx.Category, label string) (contractx.Response, bool, error) {
	if !undoRequest(req.Query) {
		return contractx.Response{}, false, nil
	}

	prev, found, err := d.newest(ctx, req.UserID, cat)
	if err != nil {
		return contractx.Response{}, true, err
	}
	if !found {
		return reply(req, fmt.Sprintf("There is no %s entry to remove.", label)), true, nil
	}

	if err := d.store.DeleteEntry(ctx, req.UserID, cat, prev.ID); err != nil {
		return contractx.Response{}, true, fmt.Errorf("delete %s entry: %w", label, err)
	}
	if err := d.refresh(ctx, req.UserID, cat); err != nil {
		return contractx.Response{}, true, err
	}

	d.log.Debug().Str("user_id", req.UserID).Str("category", string(cat)).Str("id", prev.ID).Msg("entry removed")
	return written(req, fmt.Sprintf("Removed your last %s entry (%s, week %d).", label, prev.Value, prev.Week)), true, nil
}

func reply(req contractx.HandlerRequest, text string) contractx.Response {
	return contractx.Response{
		Text:   text,
		Intent: req.Intent,
		Source: contractx.SourceHandler,
	}
}

func written(req contractx.HandlerRequest, text string) contractx.Response {
	r := reply(req, text)
	r.Written = true
	return r
}

func clarify(req contractx.HandlerRequest, text string) contractx.Response {
	r := reply(req, text)
	r.NeedsInput = true
	return r
}

// historyReply summarizes the cached entries for one category, newest
// first. It never touches the record store: the context snapshot is the
// read model.
func historyReply(req contractx.HandlerRequest, cat recordsx.Category, label string) contractx.Response {
	entries := req.Context.Entries(cat)
	if len(entries) == 0 {
		return reply(req, fmt.Sprintf("You have no %s entries yet. Tell me a value and I will start the log.", label))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your recent %s entries:\n", label)
	for _, e := range entries {
		fmt.Fprintf(&b, "- week %d: %s", e.Week, e.Value)
		if e.Note != "" {
			fmt.Fprintf(&b, " (%s)", e.Note)
		}
		b.WriteString("\n")
	}
	return reply(req, strings.TrimSpace(b.String()))
}
