// Package source provides ready-made page loaders for paginated collections:
// an ordered in-memory record store and an HTTP client for endpoints serving
// {list, n} page envelopes.
package source

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/google/btree"

	"github.com/nvdnkpr/hr/collection"
	"github.com/nvdnkpr/hr/utils"
)

type record struct {
	seq    int
	values []any
	data   map[string]any
}

// Memory is an in-memory data source keeping records ordered by the values
// of the configured fields. Load serves offset/limit windows over that order
// plus the total record count, so it plugs directly into a collection's
// pagination.
type Memory struct {
	mu     sync.RWMutex
	fields []string
	seq    int
	tree   *btree.BTreeG[*record]
}

// NewMemory creates a source ordered by the given record fields. A field
// prefixed with "-" sorts descending.
func NewMemory(fields ...string) *Memory {

	s := &Memory{
		fields: fields,
	}

	s.tree = btree.NewG(32, func(a, b *record) bool {
		for i := range s.fields {
			valA := a.values[i]
			valB := b.values[i]
			// DeepEqual: field values may be uncomparable (arrays, objects)
			if reflect.DeepEqual(valA, valB) {
				continue
			}

			reverse := strings.HasPrefix(s.fields[i], "-")

			switch valA := valA.(type) {
			case string:
				valB, ok := valB.(string)
				if !ok {
					return !reverse
				}
				if reverse {
					return valA > valB
				}
				return valA < valB

			case float64:
				valB, ok := valB.(float64)
				if !ok {
					return reverse
				}
				if reverse {
					return valA > valB
				}
				return valA < valB

			default:
				return fmt.Sprint(valA) < fmt.Sprint(valB)
			}
		}

		// insertion order breaks ties so equal keys never collapse
		return a.seq < b.seq
	})

	return s
}

// Put inserts records. Any value that marshals to a JSON object is accepted;
// every ordering field is mandatory.
func (s *Memory) Put(items ...any) error {
	for _, item := range items {
		data := map[string]any{}
		err := utils.Remarshal(item, &data)
		if err != nil {
			return fmt.Errorf("remarshal record: %w", err)
		}

		values := []any{}
		for _, field := range s.fields {
			field = strings.TrimPrefix(field, "-")
			value, exists := data[field]
			if !exists {
				return fmt.Errorf("field '%s' not defined", field)
			}
			values = append(values, value)
		}

		s.mu.Lock()
		s.seq++
		s.tree.ReplaceOrInsert(&record{
			seq:    s.seq,
			values: values,
			data:   data,
		})
		s.mu.Unlock()
	}

	return nil
}

// Len returns the total number of records.
func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.tree.Len()
}

// Load serves one page: the records at positions [Start, Start+Limit) in
// field order, plus the total count.
func (s *Memory) Load(req *collection.LoadRequest) (collection.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := []map[string]any{}
	skip := req.Start
	s.tree.Ascend(func(r *record) bool {
		if skip > 0 {
			skip--
			return true
		}
		if len(list) >= req.Limit {
			return false
		}
		list = append(list, r.data)
		return true
	})

	return &collection.Page{
		List: list,
		N:    s.tree.Len(),
	}, nil
}

// Loader exposes the source as a collection loader.
func (s *Memory) Loader() collection.Loader {
	return s.Load
}
