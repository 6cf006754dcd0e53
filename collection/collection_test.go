package collection

import (
	"testing"

	. "github.com/fulldump/biff"

	"github.com/nvdnkpr/hr/events"
	"github.com/nvdnkpr/hr/model"
)

func newCollection(options *Options) *Collection {
	return New(options)
}

func TestAdd_InsertionOrder(t *testing.T) {

	c := newCollection(nil)
	defer c.Close()

	c.Add(map[string]any{"id": 1}, nil)
	c.Add(map[string]any{"id": 3}, nil)
	c.Add(map[string]any{"id": 2}, &MutateOptions{At: AtIndex(1)})

	AssertEqual(c.Pluck("id"), []any{1, 2, 3})
}

func TestAdd_ListPreservesRelativeOrder(t *testing.T) {

	c := newCollection(nil)
	defer c.Close()

	c.Add([]map[string]any{{"id": 1}, {"id": 4}}, nil)
	c.Add([]map[string]any{{"id": 2}, {"id": 3}}, &MutateOptions{At: AtIndex(1)})

	AssertEqual(c.Pluck("id"), []any{1, 2, 3, 4})
}

func TestAdd_EmitsWithResultingIndex(t *testing.T) {

	c := newCollection(nil)
	defer c.Close()

	received := []events.Event{}
	c.On(events.Add, func(ev events.Event) {
		received = append(received, ev)
	})

	c.Add(map[string]any{"id": 1}, nil)
	c.Add(map[string]any{"id": 2}, &MutateOptions{At: AtIndex(0)})

	AssertEqual(len(received), 2)
	AssertEqual(received[0].Index, 0)
	AssertEqual(received[1].Index, 0) // explicit at: 0
	AssertEqual(received[1].Source, any(c))
}

func TestAdd_SilentEmitsNothing(t *testing.T) {

	c := newCollection(nil)
	defer c.Close()

	fired := 0
	c.OnAll(func(ev events.Event) {
		fired++
	})

	c.Add(map[string]any{"id": 1}, &MutateOptions{Silent: true})

	AssertEqual(fired, 0)
	AssertEqual(c.Count(), 1)
}

func TestAdd_SameModelTwiceIsNoOp(t *testing.T) {

	c := newCollection(nil)
	defer c.Close()

	m := model.New(map[string]any{"id": 1})
	c.Add(m, nil)
	added, err := c.Add(m, nil)

	AssertNil(err)
	AssertEqual(len(added), 0)
	AssertEqual(c.Count(), 1)
}

func TestAdd_AdoptsUnownedModel(t *testing.T) {

	a := newCollection(nil)
	defer a.Close()
	b := newCollection(nil)
	defer b.Close()

	m := model.New(map[string]any{"id": 1})
	a.Add(m, nil)
	b.Add(m, nil)

	// a model already owned elsewhere keeps its original owner
	AssertEqual(m.Owner(), any(a))
	AssertEqual(a.Count(), 1)
	AssertEqual(b.Count(), 1)
}

func TestAdd_UnsupportedType(t *testing.T) {

	c := newCollection(nil)
	defer c.Close()

	_, err := c.Add(42, nil)

	AssertNotNil(err)
}

func TestAddRemove_RoundTrip(t *testing.T) {

	c := newCollection(nil)
	defer c.Close()

	c.Add(map[string]any{"id": 1}, nil)
	before := c.Count()

	added, _ := c.Add(map[string]any{"id": 2}, nil)
	c.Remove(added[0], nil)

	AssertEqual(c.Count(), before)
	AssertEqual(c.IndexOf(added[0]), -1)
}

func TestRemove_EmitsPreRemovalIndex(t *testing.T) {

	c := newCollection(nil)
	defer c.Close()

	c.Add([]map[string]any{{"id": 1}, {"id": 2}, {"id": 3}}, nil)
	victim := c.At(1)

	received := []events.Event{}
	c.On(events.Remove, func(ev events.Event) {
		received = append(received, ev)
	})

	c.Remove(victim, nil)

	AssertEqual(len(received), 1)
	AssertEqual(received[0].Index, 1)
	AssertEqual(received[0].Args[0], victim)
}

func TestRemove_NotPresentIsNoOp(t *testing.T) {

	c := newCollection(nil)
	defer c.Close()

	c.Add(map[string]any{"id": 1}, nil)
	removed, err := c.Remove(model.New(nil), nil)

	AssertNil(err)
	AssertEqual(len(removed), 0)
	AssertEqual(c.Count(), 1)
}

func TestRemove_DecrementsTotalCount(t *testing.T) {

	c := newCollection(nil)
	defer c.Close()

	c.Reset(&Page{
		List: []map[string]any{{"id": 1}, {"id": 2}, {"id": 3}, {"id": 4}, {"id": 5}},
		N:    10,
	}, nil)

	c.Remove(c.First(), nil)

	AssertEqual(c.TotalCount(), 9)
	AssertEqual(c.Count(), 4)
}

func TestComparator_KeepsOrderOnAdd(t *testing.T) {

	c := newCollection(&Options{Sorter: SortByKey("rank")})
	defer c.Close()

	c.Add(map[string]any{"rank": 5}, nil)
	c.Add(map[string]any{"rank": 1}, nil)
	AssertEqual(c.Pluck("rank"), []any{1, 5})

	c.Add(map[string]any{"rank": 3}, nil)
	AssertEqual(c.Pluck("rank"), []any{1, 3, 5})
}

func TestSort_WithoutComparator(t *testing.T) {

	c := newCollection(nil)
	defer c.Close()

	err := c.Sort(nil)

	AssertEqual(err, ErrNoComparator)
}

func TestSort_EmitsSortEvent(t *testing.T) {

	c := newCollection(&Options{Sorter: SortByComparator(func(a, b *model.Model) bool {
		return a.Get("name").(string) > b.Get("name").(string) // descending
	})})
	defer c.Close()

	c.Add([]map[string]any{{"name": "ana"}, {"name": "eva"}}, &MutateOptions{Silent: true})

	sorted := false
	c.On(events.Sort, func(ev events.Event) {
		sorted = true
	})

	AssertNil(c.Sort(nil))
	AssertEqual(sorted, true)
	AssertEqual(c.Pluck("name"), []any{"eva", "ana"})
}

func TestSortByRank_Extractor(t *testing.T) {

	c := newCollection(&Options{Sorter: SortByRank(func(m *model.Model) any {
		return m.Get("age")
	})})
	defer c.Close()

	c.Add([]map[string]any{{"age": 40}, {"age": 18}, {"age": 33}}, nil)

	AssertEqual(c.Pluck("age"), []any{18, 33, 40})
}

func TestReset_PageEnvelope(t *testing.T) {

	c := newCollection(nil)
	defer c.Close()

	err := c.Reset(&Page{
		List: []map[string]any{{"id": 1}, {"id": 2}},
		N:    10,
	}, nil)

	AssertNil(err)
	AssertEqual(c.Count(), 2)
	AssertEqual(c.TotalCount(), 10)
	AssertEqual(c.HasMore(), 8)
}

func TestReset_EmitsSingleResetEvent(t *testing.T) {

	c := newCollection(nil)
	defer c.Close()

	c.Add(map[string]any{"id": 1}, nil)

	names := []events.Name{}
	c.OnAll(func(ev events.Event) {
		names = append(names, ev.Name)
	})

	c.Reset([]map[string]any{{"id": 2}, {"id": 3}}, nil)

	AssertEqual(names, []events.Name{events.Reset})
	AssertEqual(c.Count(), 2)
}

func TestReset_ClearsPaginationState(t *testing.T) {

	c := newCollection(nil)
	defer c.Close()

	c.Add(&Page{List: []map[string]any{{"id": 1}}, N: 100}, nil)
	AssertEqual(c.TotalCount(), 100)

	c.Reset(nil, nil)

	AssertEqual(c.Count(), 0)
	AssertEqual(c.TotalCount(), 0)
	AssertEqual(c.StartIndex(), 0)
}

func TestPushPopShiftUnshift(t *testing.T) {

	c := newCollection(nil)
	defer c.Close()

	c.Push(map[string]any{"id": 2}, nil)
	c.Push(map[string]any{"id": 3}, nil)
	first, err := c.Unshift(map[string]any{"id": 1}, nil)

	AssertNil(err)
	AssertEqual(first.Get("id"), 1)
	AssertEqual(c.Pluck("id"), []any{1, 2, 3})

	AssertEqual(c.Pop(nil).Get("id"), 3)
	AssertEqual(c.Shift(nil).Get("id"), 1)
	AssertEqual(c.Count(), 1)

	c.Reset(nil, nil)
	AssertNil(c.Pop(nil))
	AssertNil(c.Shift(nil))
}

func TestDestroy_RemovesFromCollection(t *testing.T) {

	c := newCollection(nil)
	defer c.Close()

	c.Add([]map[string]any{{"id": 1}, {"id": 2}, {"id": 3}}, nil)
	victim := c.At(2)

	removes := []events.Event{}
	c.On(events.Remove, func(ev events.Event) {
		removes = append(removes, ev)
	})
	destroys := 0
	c.On(events.Destroy, func(ev events.Event) {
		destroys++
	})

	victim.Destroy(nil)

	AssertEqual(c.Count(), 2)
	AssertEqual(len(removes), 1)
	AssertEqual(removes[0].Index, 2) // pre-removal index
	AssertEqual(destroys, 1)        // destroy re-emitted after the removal
}

func TestRebroadcast_ModelChange(t *testing.T) {

	c := newCollection(nil)
	defer c.Close()

	added, _ := c.Add(map[string]any{"id": 1}, nil)

	changes := []events.Event{}
	c.On(events.Change, func(ev events.Event) {
		changes = append(changes, ev)
	})

	added[0].Set(map[string]any{"name": "Pablo"}, nil)

	AssertEqual(len(changes), 1)
	AssertEqual(changes[0].Args[0], added[0])
}

func TestRebroadcast_IgnoresCrossCollectionMutations(t *testing.T) {

	a := newCollection(nil)
	defer a.Close()
	b := newCollection(nil)
	defer b.Close()

	m := model.New(map[string]any{"id": 1})
	a.Add(m, nil)

	fromA := []events.Name{}
	a.OnAll(func(ev events.Event) {
		fromA = append(fromA, ev.Name)
	})

	// adding and removing on b bubbles through m's event stream, but must
	// not look like a mutation of a
	b.Add(m, nil)
	b.Remove(m, nil)

	AssertEqual(len(fromA), 0)
	AssertEqual(a.Count(), 1)
}

func TestRebroadcast_StopsAfterRemove(t *testing.T) {

	c := newCollection(nil)
	defer c.Close()

	added, _ := c.Add(map[string]any{"id": 1}, nil)

	changes := 0
	c.On(events.Change, func(ev events.Event) {
		changes++
	})

	c.Remove(added[0], nil)
	added[0].Set(map[string]any{"name": "ghost"}, nil)

	AssertEqual(changes, 0)
}

func TestToJSON(t *testing.T) {

	c := newCollection(&Options{Models: []map[string]any{
		{"id": 1, "name": "Pablo"},
		{"id": 2, "name": "Sara"},
	}})
	defer c.Close()

	AssertEqualJson(c.ToJSON(), []map[string]any{
		{"id": 1, "name": "Pablo"},
		{"id": 2, "name": "Sara"},
	})
}

func TestNew_InitialModelsAndStartIndex(t *testing.T) {

	c := newCollection(&Options{
		Models:     []map[string]any{{"id": 1}, {"id": 2}},
		StartIndex: 20,
	})
	defer c.Close()

	AssertEqual(c.Count(), 2)
	AssertEqual(c.StartIndex(), 20)
}

func TestNew_DoesNotMutateCallerOptions(t *testing.T) {

	shared := &Options{}

	a := New(shared)
	defer a.Close()
	b := New(shared)
	defer b.Close()

	AssertEqual(shared.Limit, 0)
	AssertEqual(shared.NewModel == nil, true)
	AssertEqual(a.Limit(), 10)
	AssertEqual(b.Limit(), 10)
}

func TestGetAt(t *testing.T) {

	c := newCollection(nil)
	defer c.Close()

	added, _ := c.Add(map[string]any{"id": 1}, nil)

	AssertEqual(c.Get(added[0].Cid()), added[0])
	AssertNil(c.Get("missing"))
	AssertEqual(c.At(0), added[0])
	AssertNil(c.At(7))
	AssertNil(c.At(-1))
}
