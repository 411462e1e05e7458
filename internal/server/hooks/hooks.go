// Package hooks is the host's extension-point registry. Components attach
// filters (value transformers) and actions (notifications) to named hooks;
// the host applies them in priority order, lowest first, and in
// registration order within a priority.
package hooks

import (
	"context"
	"sort"
	"sync"
)

// Hook names exposed by the host.
const (
	// FeatureImage filters the rendered featured-image markup of a post.
	// Value: string. Args: *site.Page, *models.Post.
	FeatureImage = "commentpress_get_feature_image"

	// QueryAttachmentsArgs filters the media library query.
	// Value: models.AttachmentQuery.
	QueryAttachmentsArgs = "ajax_query_attachments_args"

	// AllowSwitcherButton lets other components veto the switch control.
	// Value: bool. Args: *models.Post.
	AllowSwitcherButton = "feature_image_switcher_allow_button"

	// SwitcherUpdated fires after a featured image was switched.
	// Args: SwitchEvent.
	SwitcherUpdated = "feature_image_switcher_updated"
)

// DefaultPriority is used by components with no ordering preference.
const DefaultPriority = 10

// SwitchEvent is the payload of SwitcherUpdated.
type SwitchEvent struct {
	PostID       int64
	AttachmentID int64
	Markup       string
}

type FilterFunc func(ctx context.Context, value any, args ...any) any

type ActionFunc func(ctx context.Context, args ...any)

type entry[F any] struct {
	priority int
	seq      int
	fn       F
}

// Registry holds named filters and actions. It is safe for concurrent use;
// callbacks run outside the lock.
type Registry struct {
	mu      sync.RWMutex
	seq     int
	filters map[string][]entry[FilterFunc]
	actions map[string][]entry[ActionFunc]
}

func NewRegistry() *Registry {
	return &Registry{
		filters: make(map[string][]entry[FilterFunc]),
		actions: make(map[string][]entry[ActionFunc]),
	}
}

func (r *Registry) AddFilter(name string, priority int, fn FilterFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.filters[name] = insert(r.filters[name], entry[FilterFunc]{priority: priority, seq: r.seq, fn: fn})
}

func (r *Registry) AddAction(name string, priority int, fn ActionFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.actions[name] = insert(r.actions[name], entry[ActionFunc]{priority: priority, seq: r.seq, fn: fn})
}

// DoAction calls every action attached to name.
func (r *Registry) DoAction(ctx context.Context, name string, args ...any) {
	r.mu.RLock()
	list := make([]ActionFunc, 0, len(r.actions[name]))
	for _, e := range r.actions[name] {
		list = append(list, e.fn)
	}
	r.mu.RUnlock()

	for _, fn := range list {
		fn(ctx, args...)
	}
}

func (r *Registry) filterFuncs(name string) []FilterFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]FilterFunc, 0, len(r.filters[name]))
	for _, e := range r.filters[name] {
		list = append(list, e.fn)
	}
	return list
}

// Apply threads value through every filter attached to name. A filter
// returning a value of the wrong type is skipped and the previous value is
// kept.
func Apply[T any](ctx context.Context, r *Registry, name string, value T, args ...any) T {
	for _, fn := range r.filterFuncs(name) {
		if v, ok := fn(ctx, value, args...).(T); ok {
			value = v
		}
	}
	return value
}

func insert[F any](list []entry[F], e entry[F]) []entry[F] {
	list = append(list, e)
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].priority != list[j].priority {
			return list[i].priority < list[j].priority
		}
		return list[i].seq < list[j].seq
	})
	return list
}
