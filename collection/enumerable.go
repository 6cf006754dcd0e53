package collection

import (
	"fmt"
	"sort"

	"github.com/SierraSoftworks/connor"

	"github.com/nvdnkpr/hr/model"
)

// Generic sequence operations over the collection's backing sequence. All of
// them are pure and synchronous: they read a snapshot of the current order
// and never mutate the collection.

func (c *Collection) snapshot() []*model.Model {
	c.mu.Lock()
	defer c.mu.Unlock()

	models := make([]*model.Model, len(c.models))
	copy(models, c.models)

	return models
}

// Models returns the current ordered sequence.
func (c *Collection) Models() []*model.Model {
	return c.snapshot()
}

func (c *Collection) Each(f func(index int, m *model.Model)) {
	for i, m := range c.snapshot() {
		f(i, m)
	}
}

func (c *Collection) Map(f func(m *model.Model) any) []any {
	models := c.snapshot()
	out := make([]any, len(models))
	for i, m := range models {
		out[i] = f(m)
	}

	return out
}

func (c *Collection) Filter(f func(m *model.Model) bool) []*model.Model {
	out := []*model.Model{}
	for _, m := range c.snapshot() {
		if f(m) {
			out = append(out, m)
		}
	}

	return out
}

func (c *Collection) Reduce(f func(acc any, m *model.Model) any, initial any) any {
	acc := initial
	for _, m := range c.snapshot() {
		acc = f(acc, m)
	}

	return acc
}

// Find returns the first model satisfying f, or nil.
func (c *Collection) Find(f func(m *model.Model) bool) *model.Model {
	for _, m := range c.snapshot() {
		if f(m) {
			return m
		}
	}

	return nil
}

// Where returns the models whose attributes match the given condition
// document.
func (c *Collection) Where(conditions map[string]any) ([]*model.Model, error) {
	out := []*model.Model{}
	for _, m := range c.snapshot() {
		match, err := connor.Match(conditions, m.ToJSON())
		if err != nil {
			return nil, fmt.Errorf("match: %w", err)
		}
		if match {
			out = append(out, m)
		}
	}

	return out, nil
}

// FindWhere returns the first model matching the condition document, or nil.
func (c *Collection) FindWhere(conditions map[string]any) (*model.Model, error) {
	for _, m := range c.snapshot() {
		match, err := connor.Match(conditions, m.ToJSON())
		if err != nil {
			return nil, fmt.Errorf("match: %w", err)
		}
		if match {
			return m, nil
		}
	}

	return nil, nil
}

// Pluck extracts the named attribute from every model.
func (c *Collection) Pluck(key string) []any {
	models := c.snapshot()
	out := make([]any, len(models))
	for i, m := range models {
		out[i] = m.Get(key)
	}

	return out
}

func (c *Collection) GroupBy(f func(m *model.Model) string) map[string][]*model.Model {
	out := map[string][]*model.Model{}
	for _, m := range c.snapshot() {
		key := f(m)
		out[key] = append(out[key], m)
	}

	return out
}

// SortBy returns a new slice ordered by ascending rank of the extracted
// value. The collection itself is left untouched.
func (c *Collection) SortBy(rank func(m *model.Model) any) []*model.Model {
	models := c.snapshot()
	sort.SliceStable(models, func(i, j int) bool {
		return rankLess(rank(models[i]), rank(models[j]))
	})

	return models
}

func (c *Collection) First() *model.Model {
	return c.At(0)
}

func (c *Collection) Last() *model.Model {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.models) == 0 {
		return nil
	}

	return c.models[len(c.models)-1]
}

func (c *Collection) IsEmpty() bool {
	return c.Count() == 0
}
