// Package collection implements a reactive, ordered collection of models: it
// keeps them sorted and addressable, re-emits model-level events at the
// collection level, and grows incrementally against a paginated data source
// through a private serialized task queue.
package collection

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/nvdnkpr/hr/events"
	"github.com/nvdnkpr/hr/model"
	"github.com/nvdnkpr/hr/taskqueue"
)

var (
	ErrNoComparator = errors.New("collection has no comparator")

	// ErrNothingToLoad resolves a GetMore job when there is no loader
	// configured or no more pages to fetch. It is a non-failure outcome,
	// distinguishable from loader errors with errors.Is.
	ErrNothingToLoad = errors.New("nothing to load")
)

// Collection owns an ordered sequence of models with unique identities. All
// structural mutation goes through Add/Remove/Reset and their Push/Pop/
// Shift/Unshift shorthands; paginated growth goes through GetMore.
type Collection struct {
	options *Options
	emitter *events.Emitter
	queue   *taskqueue.Queue

	mu         sync.Mutex
	models     []*model.Model
	byCid      map[string]*model.Model
	subs       map[string]*events.Subscription
	totalCount int
	hasTotal   bool
	startIndex int
	limit      int
}

func New(options *Options) *Collection {
	if options == nil {
		options = &Options{}
	}
	opts := *options // defaults apply to a private copy
	if opts.Limit == 0 {
		opts.Limit = 10
	}
	if opts.NewModel == nil {
		opts.NewModel = model.New
	}

	c := &Collection{
		options: &opts,
		emitter: events.NewEmitter(),
		queue:   taskqueue.New(),
		byCid:   map[string]*model.Model{},
		subs:    map[string]*events.Subscription{},
		limit:   opts.Limit,
	}

	if opts.Models != nil {
		c.Reset(opts.Models, &MutateOptions{Silent: true})
	}
	c.startIndex = opts.StartIndex

	return c
}

// Close stops the collection's task queue. Pending loads resolve with
// taskqueue.ErrQueueClosed.
func (c *Collection) Close() {
	c.queue.Close()
}

// Add accepts a single raw attribute record, a single model, an ordered
// sequence of either, or a tagged loader result (*Page sets the total count
// first, then its records are added). Raw records are promoted to models
// bound to this collection; models already owned elsewhere keep their owner.
// Returns the models actually inserted.
func (c *Collection) Add(value any, options *MutateOptions) ([]*model.Model, error) {
	if options == nil {
		options = &MutateOptions{}
	}

	switch v := value.(type) {
	case nil:
		return nil, nil
	case *Page:
		if v == nil {
			return nil, nil
		}
		c.setTotalCount(v.N)
		return c.addList(recordsToAny(v.List), options)
	case Items:
		return c.addList(recordsToAny(v), options)
	case []map[string]any:
		return c.addList(recordsToAny(v), options)
	case []*model.Model:
		list := make([]any, len(v))
		for i, m := range v {
			list[i] = m
		}
		return c.addList(list, options)
	case []any:
		return c.addList(v, options)
	case map[string]any:
		m, inserted := c.addOne(c.options.NewModel(v), options.Silent, options.At)
		if !inserted {
			return nil, nil
		}
		return []*model.Model{m}, nil
	case *model.Model:
		m, inserted := c.addOne(v, options.Silent, options.At)
		if !inserted {
			return nil, nil
		}
		return []*model.Model{m}, nil
	}

	return nil, fmt.Errorf("add: unsupported value type %T", value)
}

func (c *Collection) addList(list []any, options *MutateOptions) ([]*model.Model, error) {
	added := []*model.Model{}
	for _, item := range list {
		var at *int
		if options.At != nil {
			// explicit target index: insertions land at increasing positions
			at = AtIndex(*options.At + len(added))
		}
		inserted, err := c.Add(item, &MutateOptions{Silent: options.Silent, At: at})
		if err != nil {
			return added, err
		}
		added = append(added, inserted...)
	}

	return added, nil
}

// addOne inserts a single model. With a comparator configured the insertion
// point is the model's sorted position and any explicit index is ignored.
// Reports false when the model is already part of this collection.
func (c *Collection) addOne(m *model.Model, silent bool, at *int) (*model.Model, bool) {
	c.mu.Lock()
	if _, exists := c.byCid[m.Cid()]; exists {
		c.mu.Unlock()
		return m, false
	}

	index := len(c.models)
	if c.options.Sorter != nil {
		index = sort.Search(len(c.models), func(i int) bool {
			return c.options.Sorter.less(m, c.models[i])
		})
	} else if at != nil {
		index = clamp(*at, 0, len(c.models))
	}

	c.models = append(c.models, nil)
	copy(c.models[index+1:], c.models[index:])
	c.models[index] = m
	c.byCid[m.Cid()] = m

	if m.Owner() == nil {
		m.SetOwner(c)
	}
	c.subs[m.Cid()] = m.OnAll(c.onModelEvent)
	c.mu.Unlock()

	if !silent {
		m.Trigger(events.Event{
			Name:   events.Add,
			Source: c,
			Index:  index,
			Args:   []any{m, c},
		})
	}

	return m, true
}

// Remove matches strictly by identity and removes at most one entry per
// matching model per call. Accepts a single model or a sequence of models.
// Returns the models actually removed.
func (c *Collection) Remove(value any, options *MutateOptions) ([]*model.Model, error) {
	if options == nil {
		options = &MutateOptions{}
	}

	switch v := value.(type) {
	case nil:
		return nil, nil
	case *model.Model:
		if m := c.removeOne(v, options.Silent); m != nil {
			return []*model.Model{m}, nil
		}
		return nil, nil
	case []*model.Model:
		removed := []*model.Model{}
		for _, m := range v {
			if r := c.removeOne(m, options.Silent); r != nil {
				removed = append(removed, r)
			}
		}
		return removed, nil
	case []any:
		removed := []*model.Model{}
		for _, item := range v {
			r, err := c.Remove(item, options)
			if err != nil {
				return removed, err
			}
			removed = append(removed, r...)
		}
		return removed, nil
	}

	return nil, fmt.Errorf("remove: unsupported value type %T", value)
}

func (c *Collection) removeOne(m *model.Model, silent bool) *model.Model {
	c.mu.Lock()
	index := c.indexOfLocked(m)
	if index < 0 {
		c.mu.Unlock()
		return nil
	}

	c.models = append(c.models[:index], c.models[index+1:]...)
	delete(c.byCid, m.Cid())
	sub := c.subs[m.Cid()]
	delete(c.subs, m.Cid())

	if c.hasTotal && c.totalCount > 0 {
		c.totalCount--
	}
	c.mu.Unlock()

	if !silent {
		m.Trigger(events.Event{
			Name:   events.Remove,
			Source: c,
			Index:  index,
			Args:   []any{m, c},
		})
	}

	// unbind after the remove event so it still reaches this collection
	sub.Off()
	if m.Owner() == any(c) {
		m.SetOwner(nil)
	}

	return m
}

// Reset is the collection's re-initialization point: pagination cursor back
// to 0, total count unknown, contents replaced from scratch. The new
// contents are added silently and a single Reset event is emitted instead of
// per-item Add events. A *Page given to Reset updates the total count as in
// Add.
func (c *Collection) Reset(value any, options *MutateOptions) error {
	if options == nil {
		options = &MutateOptions{}
	}

	c.clear()

	_, err := c.Add(value, &MutateOptions{Silent: true})
	if err != nil {
		return err
	}

	if !options.Silent {
		c.emitter.Trigger(events.Event{
			Name:   events.Reset,
			Source: c,
			Index:  -1,
			Args:   []any{c},
		})
	}

	return nil
}

// clear silently empties the backing sequence and forgets all pagination
// state.
func (c *Collection) clear() {
	c.mu.Lock()
	old := c.models
	oldSubs := c.subs
	c.models = nil
	c.byCid = map[string]*model.Model{}
	c.subs = map[string]*events.Subscription{}
	c.startIndex = 0
	c.totalCount = 0
	c.hasTotal = false
	c.mu.Unlock()

	for _, m := range old {
		oldSubs[m.Cid()].Off()
		if m.Owner() == any(c) {
			m.SetOwner(nil)
		}
	}
}

// Push adds at the end of the sequence and returns the inserted model.
func (c *Collection) Push(value any, options *MutateOptions) (*model.Model, error) {
	if options == nil {
		options = &MutateOptions{}
	}
	added, err := c.Add(value, &MutateOptions{Silent: options.Silent})
	if err != nil || len(added) == 0 {
		return nil, err
	}

	return added[len(added)-1], nil
}

// Unshift adds at the start of the sequence and returns the inserted model.
func (c *Collection) Unshift(value any, options *MutateOptions) (*model.Model, error) {
	if options == nil {
		options = &MutateOptions{}
	}
	added, err := c.Add(value, &MutateOptions{Silent: options.Silent, At: AtIndex(0)})
	if err != nil || len(added) == 0 {
		return nil, err
	}

	return added[0], nil
}

// Pop removes and returns the last model, or nil if the collection is empty.
func (c *Collection) Pop(options *MutateOptions) *model.Model {
	if options == nil {
		options = &MutateOptions{}
	}

	c.mu.Lock()
	if len(c.models) == 0 {
		c.mu.Unlock()
		return nil
	}
	m := c.models[len(c.models)-1]
	c.mu.Unlock()

	return c.removeOne(m, options.Silent)
}

// Shift removes and returns the first model, or nil if the collection is
// empty.
func (c *Collection) Shift(options *MutateOptions) *model.Model {
	if options == nil {
		options = &MutateOptions{}
	}

	c.mu.Lock()
	if len(c.models) == 0 {
		c.mu.Unlock()
		return nil
	}
	m := c.models[0]
	c.mu.Unlock()

	return c.removeOne(m, options.Silent)
}

// Sort re-orders the sequence with the configured comparator and emits a
// Sort event unless silent. It is an error to sort without a comparator.
func (c *Collection) Sort(options *MutateOptions) error {
	if options == nil {
		options = &MutateOptions{}
	}
	if c.options.Sorter == nil {
		return ErrNoComparator
	}

	c.mu.Lock()
	sort.SliceStable(c.models, func(i, j int) bool {
		return c.options.Sorter.less(c.models[i], c.models[j])
	})
	c.mu.Unlock()

	if !options.Silent {
		c.emitter.Trigger(events.Event{
			Name:   events.Sort,
			Source: c,
			Index:  -1,
			Args:   []any{c},
		})
	}

	return nil
}

// onModelEvent receives the full event stream of every owned model. Add and
// Remove events that bubbled from a different collection are dropped; a
// Destroy removes the model from this collection; everything else is
// re-emitted verbatim on the collection.
func (c *Collection) onModelEvent(ev events.Event) {
	if (ev.Name == events.Add || ev.Name == events.Remove) && ev.Source != any(c) {
		return
	}

	if ev.Name == events.Destroy {
		if m, ok := eventModel(ev); ok {
			silent := false
			if len(ev.Args) > 1 {
				silent, _ = ev.Args[1].(bool)
			}
			c.removeOne(m, silent)
		}
	}

	c.emitter.Trigger(ev)
}

func eventModel(ev events.Event) (*model.Model, bool) {
	if len(ev.Args) == 0 {
		return nil, false
	}
	m, ok := ev.Args[0].(*model.Model)

	return m, ok
}

// Count returns the number of currently loaded models.
func (c *Collection) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.models)
}

// TotalCount returns the number of items available at the data source, or
// the loaded count while the total is unknown.
func (c *Collection) TotalCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.totalCountLocked()
}

func (c *Collection) totalCountLocked() int {
	if c.hasTotal {
		return c.totalCount
	}

	return len(c.models)
}

// HasMore returns TotalCount()-Count(): positive means more entries exist at
// the data source than are locally loaded. The value is not clamped.
func (c *Collection) HasMore() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.totalCountLocked() - len(c.models)
}

// StartIndex returns the current pagination cursor.
func (c *Collection) StartIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.startIndex
}

// Limit returns the configured page size.
func (c *Collection) Limit() int {
	return c.limit
}

func (c *Collection) setTotalCount(n int) {
	if n < 0 {
		n = 0
	}

	c.mu.Lock()
	c.totalCount = n
	c.hasTotal = true
	c.mu.Unlock()
}

// GetMore enqueues one loader invocation on the collection's private queue,
// guaranteeing at most one in-flight load per collection and strict ordering
// across concurrent callers. The returned job resolves with nil on a
// successful merge, ErrNothingToLoad when there is nothing to fetch, or the
// loader's error (cursor untouched, so a retry resumes at the same offset).
func (c *Collection) GetMore(options *LoadOptions) *taskqueue.Job {
	if options == nil {
		options = &LoadOptions{}
	}
	refresh := options.Refresh

	return c.queue.Defer(func() error {
		if c.options.Loader == "" {
			return ErrNothingToLoad
		}
		loader, exists := c.options.Loaders[c.options.Loader]
		if !exists {
			return fmt.Errorf("loader '%s' not found", c.options.Loader)
		}

		if refresh {
			c.clear()
		}

		c.mu.Lock()
		attempt := refresh || !c.hasTotal || c.totalCountLocked() > len(c.models)
		start := c.startIndex
		limit := c.limit
		c.mu.Unlock()

		if !attempt {
			return ErrNothingToLoad
		}

		result, err := loader(&LoadRequest{
			Start: start,
			Limit: limit,
			Args:  c.options.LoaderArgs,
		})
		if err != nil {
			return fmt.Errorf("load '%s': %w", c.options.Loader, err)
		}

		if result != nil {
			_, err = c.Add(result, nil)
			if err != nil {
				return err
			}
		}

		// cursor advances only after a successful merge
		c.mu.Lock()
		c.startIndex += c.limit
		c.mu.Unlock()

		return nil
	})
}

// Refresh is GetMore with the refresh flag set: previously loaded pages are
// discarded before the first page is fetched again.
func (c *Collection) Refresh() *taskqueue.Job {
	return c.GetMore(&LoadOptions{Refresh: true})
}

// On subscribes to collection-level events, including model events
// re-broadcast by the collection.
func (c *Collection) On(name events.Name, handler events.Handler) *events.Subscription {
	return c.emitter.On(name, handler)
}

// OnAll subscribes to every collection-level event.
func (c *Collection) OnAll(handler events.Handler) *events.Subscription {
	return c.emitter.OnAll(handler)
}

// ToJSON returns the ordered projection of each model's ToJSON result.
func (c *Collection) ToJSON() []map[string]any {
	c.mu.Lock()
	models := make([]*model.Model, len(c.models))
	copy(models, c.models)
	c.mu.Unlock()

	out := make([]map[string]any, len(models))
	for i, m := range models {
		out[i] = m.ToJSON()
	}

	return out
}

// Get returns the model with the given cid, or nil.
func (c *Collection) Get(cid string) *model.Model {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.byCid[cid]
}

// At returns the model at position i, or nil when out of range.
func (c *Collection) At(i int) *model.Model {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i < 0 || i >= len(c.models) {
		return nil
	}

	return c.models[i]
}

// IndexOf returns the position of m, or -1 when m is not part of the
// collection.
func (c *Collection) IndexOf(m *model.Model) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.indexOfLocked(m)
}

func (c *Collection) indexOfLocked(m *model.Model) int {
	if _, exists := c.byCid[m.Cid()]; !exists {
		return -1
	}
	for i, candidate := range c.models {
		if candidate.Cid() == m.Cid() {
			return i
		}
	}

	return -1
}

func recordsToAny(records []map[string]any) []any {
	list := make([]any, len(records))
	for i, r := range records {
		list[i] = r
	}

	return list
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}

	return v
}
