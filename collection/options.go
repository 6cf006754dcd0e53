package collection

import (
	"fmt"

	"github.com/nvdnkpr/hr/model"
)

// Options is the construction-time configuration of a Collection.
type Options struct {
	// Loader names the entry of Loaders invoked by GetMore. Empty means the
	// collection is not paginated (purely in-memory).
	Loader string

	// Loaders is the lookup table where the configured loader is found by
	// name.
	Loaders map[string]Loader

	// LoaderArgs is the fixed argument list passed to every loader
	// invocation.
	LoaderArgs []any

	// StartIndex is the initial pagination cursor. Default 0.
	StartIndex int

	// Limit is the page size. Default 10.
	Limit int

	// Models is the initial contents, accepted in any of the forms Add
	// takes. Default empty.
	Models any

	// Sorter keeps the sequence ordered. See SortByKey, SortByRank and
	// SortByComparator. Nil means insertion order.
	Sorter Sorter

	// NewModel promotes a raw attribute record to a model instance. Default
	// model.New.
	NewModel func(attributes map[string]any) *model.Model
}

// MutateOptions applies to a single Add/Remove/Reset/Sort call.
type MutateOptions struct {
	// Silent suppresses event emission for this mutation.
	Silent bool

	// At overrides the default insertion point (end of the sequence). Use
	// AtIndex to build it.
	At *int
}

// AtIndex returns an explicit insertion index for MutateOptions.At.
func AtIndex(i int) *int {
	return &i
}

// LoadOptions applies to a single GetMore call.
type LoadOptions struct {
	// Refresh discards all previously loaded pages before loading: cursor
	// back to 0, total count unknown, backing sequence cleared silently.
	Refresh bool
}

// LoadRequest is the window a loader is asked to fill.
type LoadRequest struct {
	Start int
	Limit int
	Args  []any
}

// Loader fetches one page of records. It resolves to a *Page (records plus
// the data source total) or to Items (records only, total unknown).
type Loader func(req *LoadRequest) (Result, error)

// Result is the tagged outcome of a loader. Exactly two variants exist, Page
// and Items; there is no shape detection.
type Result interface {
	isResult()
}

// Page is the envelope carrying a batch of raw records plus the total number
// of items available at the data source.
type Page struct {
	List []map[string]any `json:"list"`
	N    int              `json:"n"`
}

func (*Page) isResult() {}

// Items is a batch of raw records with no total count attached.
type Items []map[string]any

func (Items) isResult() {}

// Sorter is the ordering discipline of a collection. It is a sealed
// interface; build one with SortByKey, SortByRank or SortByComparator.
type Sorter interface {
	less(a, b *model.Model) bool
}

type keySorter struct {
	key string
}

func (s keySorter) less(a, b *model.Model) bool {
	return rankLess(a.Get(s.key), b.Get(s.key))
}

// SortByKey orders models by ascending rank of the named attribute.
func SortByKey(key string) Sorter {
	return keySorter{key: key}
}

type rankSorter struct {
	rank func(m *model.Model) any
}

func (s rankSorter) less(a, b *model.Model) bool {
	return rankLess(s.rank(a), s.rank(b))
}

// SortByRank orders models by ascending rank of the extracted value.
func SortByRank(rank func(m *model.Model) any) Sorter {
	return rankSorter{rank: rank}
}

type comparatorSorter struct {
	cmp func(a, b *model.Model) bool
}

func (s comparatorSorter) less(a, b *model.Model) bool {
	return s.cmp(a, b)
}

// SortByComparator orders models with a direct pairwise ordering function
// (reports whether a sorts before b).
func SortByComparator(cmp func(a, b *model.Model) bool) Sorter {
	return comparatorSorter{cmp: cmp}
}

// rankLess orders scalar attribute values: numbers by value, strings
// lexicographically, numbers before strings, anything else by its printed
// form.
func rankLess(a, b any) bool {
	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	if aNum && bNum {
		return af < bf
	}
	if aNum != bNum {
		return aNum
	}

	as, aStr := a.(string)
	bs, bStr := b.(string)
	if aStr && bStr {
		return as < bs
	}
	if aStr != bStr {
		return aStr
	}

	return fmt.Sprint(a) < fmt.Sprint(b)
}

func toFloat(v any) (float64, bool) {
	switch value := v.(type) {
	case int:
		return float64(value), true
	case int8:
		return float64(value), true
	case int16:
		return float64(value), true
	case int32:
		return float64(value), true
	case int64:
		return float64(value), true
	case uint:
		return float64(value), true
	case uint8:
		return float64(value), true
	case uint16:
		return float64(value), true
	case uint32:
		return float64(value), true
	case uint64:
		return float64(value), true
	case float32:
		return float64(value), true
	case float64:
		return value, true
	}

	return 0, false
}
