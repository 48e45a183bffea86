package usercontext

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ishaanxgupta/BabyNest-sub001/agent/records"
	logx "github.com/ishaanxgupta/BabyNest-sub001/pkg/logger"
)

// Operation tags what kind of record change triggered a refresh. The
// refresh itself is the same either way; the tag shows up in logs.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// RecordSource is the slice of the record store the cache needs to
// assemble a snapshot.
type RecordSource interface {
	Profile(ctx context.Context, userID string) (*records.Profile, error)
	Recent(ctx context.Context, userID string, cat records.Category, limit int) ([]records.Entry, error)
}

const (
	DefaultMaxAge      = 14 * 24 * time.Hour
	DefaultMaxUsers    = 16
	DefaultRecentLimit = 10
)

// Cache keeps one UserContext per user across two tiers: a process-
// local map it owns exclusively, and the persistent Store underneath.
// Every published snapshot is written through to the store first, so
// the memory tier is never newer than the persistent one is missing.
type Cache struct {
	store  Store
	source RecordSource

	mu  sync.RWMutex
	mem map[string]*UserContext

	maxAge      time.Duration
	maxUsers    int
	recentLimit int

	group singleflight.Group
	now   func() time.Time
	log   zerolog.Logger
}

type CacheOption func(*Cache)

// WithMaxAge sets how old a snapshot may get before a read rebuilds it.
func WithMaxAge(d time.Duration) CacheOption {
	return func(c *Cache) {
		if d > 0 {
			c.maxAge = d
		}
	}
}

// WithMaxUsers bounds the memory tier; the least recently updated
// contexts are evicted beyond it.
func WithMaxUsers(n int) CacheOption {
	return func(c *Cache) {
		if n > 0 {
			c.maxUsers = n
		}
	}
}

// WithRecentLimit bounds the per-category entry slices.
func WithRecentLimit(n int) CacheOption {
	return func(c *Cache) {
		if n > 0 {
			c.recentLimit = n
		}
	}
}

func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

func NewCache(store Store, source RecordSource, opts ...CacheOption) (*Cache, error) {
	if store == nil {
		return nil, errors.New("context store is required")
	}
	if source == nil {
		return nil, errors.New("record source is required")
	}

	c := &Cache{
		store:       store,
		source:      source,
		mem:         make(map[string]*UserContext),
		maxAge:      DefaultMaxAge,
		maxUsers:    DefaultMaxUsers,
		recentLimit: DefaultRecentLimit,
		now:         time.Now,
		log:         logx.Component("usercontext"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Get returns the current snapshot for a user: memory tier if fresh,
// else persistent tier if fresh (promoting it), else a full rebuild
// from the record source. A user without a profile surfaces
// records.ErrProfileNotFound. Repeated calls between record changes
// return the same value without touching the record source.
func (c *Cache) Get(ctx context.Context, userID string) (*UserContext, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUser
	}
	now := c.now()

	c.mu.RLock()
	cur, ok := c.mem[userID]
	c.mu.RUnlock()
	if ok && !cur.StaleAt(now, c.maxAge) {
		return cur, nil
	}

	// The store copy can only help on a cold start: write-through keeps
	// it in lockstep with memory, so a stale memory hit skips it.
	if !ok {
		stored, err := c.store.Load(ctx, userID)
		switch {
		case err == nil:
			if !stored.StaleAt(now, c.maxAge) {
				c.publish(stored)
				return stored, nil
			}
		case errors.Is(err, ErrContextNotFound):
		default:
			return nil, fmt.Errorf("load cached context: %w", err)
		}
	}

	return c.rebuild(ctx, userID)
}

// Update refreshes a single category of the snapshot after a record
// change: the category's entry slice for tracked categories, the
// profile-derived fields for records.CategoryProfile. Only that part
// and LastUpdated change. With nothing cached yet it falls back to a
// full rebuild — the one path that creates a context.
func (c *Cache) Update(ctx context.Context, userID string, cat records.Category, op Operation) (*UserContext, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUser
	}
	if cat != records.CategoryProfile && !cat.Tracked() {
		return nil, fmt.Errorf("%w: %q", records.ErrUnknownCategory, cat)
	}

	c.mu.RLock()
	cur, ok := c.mem[userID]
	c.mu.RUnlock()
	if !ok {
		stored, err := c.store.Load(ctx, userID)
		switch {
		case err == nil:
			cur, ok = stored, true
		case errors.Is(err, ErrContextNotFound):
		default:
			return nil, fmt.Errorf("load cached context: %w", err)
		}
	}
	if !ok {
		c.log.Debug().Str("user_id", userID).Str("category", string(cat)).Msg("no cached context, rebuilding")
		return c.rebuild(ctx, userID)
	}

	now := c.now()
	next := cur.Clone()
	if cat == records.CategoryProfile {
		p, err := c.source.Profile(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("refresh profile: %w", err)
		}
		week, err := p.WeekAt(now)
		if err != nil {
			return nil, fmt.Errorf("refresh profile: %w", err)
		}
		next.ApplyProfile(p, week)
	} else {
		entries, err := c.source.Recent(ctx, userID, cat, c.recentLimit)
		if err != nil {
			return nil, fmt.Errorf("refresh %s entries: %w", cat, err)
		}
		next.SetEntries(cat, entries)
	}
	next.Touch(now)

	if err := c.store.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("persist refreshed context: %w", err)
	}
	c.publish(next)
	c.log.Debug().
		Str("user_id", userID).
		Str("category", string(cat)).
		Str("op", string(op)).
		Msg("context refreshed")
	return next, nil
}

// Invalidate drops one user from both tiers.
func (c *Cache) Invalidate(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidUser
	}
	c.mu.Lock()
	delete(c.mem, userID)
	c.mu.Unlock()
	return c.store.Delete(ctx, userID)
}

// InvalidateAll clears both tiers completely, used on logout.
func (c *Cache) InvalidateAll(ctx context.Context) error {
	c.mu.Lock()
	c.mem = make(map[string]*UserContext)
	c.mu.Unlock()
	return c.store.DeleteAll(ctx)
}

// rebuild assembles a fresh snapshot from the record source and
// publishes it to both tiers. Concurrent rebuilds of the same user are
// collapsed into one. On any error nothing is published and the
// previous snapshot, if any, stays authoritative.
func (c *Cache) rebuild(ctx context.Context, userID string) (*UserContext, error) {
	v, err, _ := c.group.Do(userID, func() (any, error) {
		fresh, err := c.assemble(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := c.store.Save(ctx, fresh); err != nil {
			return nil, fmt.Errorf("persist rebuilt context: %w", err)
		}
		c.publish(fresh)
		c.log.Debug().Str("user_id", userID).Int("week", fresh.Week).Msg("context rebuilt")
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*UserContext), nil
}

func (c *Cache) assemble(ctx context.Context, userID string) (*UserContext, error) {
	now := c.now()

	p, err := c.source.Profile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	week, err := p.WeekAt(now)
	if err != nil {
		return nil, fmt.Errorf("derive week: %w", err)
	}

	uc := NewUserContext(userID, now)
	uc.ApplyProfile(p, week)
	for _, cat := range records.TrackedCategories {
		entries, err := c.source.Recent(ctx, userID, cat, c.recentLimit)
		if err != nil {
			return nil, fmt.Errorf("load %s entries: %w", cat, err)
		}
		uc.SetEntries(cat, entries)
	}
	return uc, nil
}

// publish swaps the snapshot into the memory tier. A refresh computed
// against a context that has since been replaced by a newer one is
// dropped rather than letting it roll the clock back.
func (c *Cache) publish(uc *UserContext) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.mem[uc.UserID]; ok && cur.LastUpdated.After(uc.LastUpdated) {
		return
	}
	c.mem[uc.UserID] = uc
	c.evictLocked()
}

func (c *Cache) evictLocked() {
	over := len(c.mem) - c.maxUsers
	if over <= 0 {
		return
	}
	type aged struct {
		id string
		at time.Time
	}
	all := make([]aged, 0, len(c.mem))
	for id, uc := range c.mem {
		all = append(all, aged{id, uc.LastUpdated})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].at.Before(all[j].at) })
	for i := 0; i < over; i++ {
		delete(c.mem, all[i].id)
		c.log.Debug().Str("user_id", all[i].id).Msg("evicted context")
	}
}
