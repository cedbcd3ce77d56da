package accessor

import (
	"iter"

	"github.com/roach88/ecvalue/internal/schema"
	"github.com/roach88/ecvalue/internal/value"
)

// PropertyValue is one node of an instance's value tree: the instance and
// the accessor addressing the node. The value is fetched on first use.
type PropertyValue struct {
	instance Instance
	accessor *ValueAccessor
	value    *value.Value
	err      error
}

func newPropertyValue(inst Instance, a *ValueAccessor) *PropertyValue {
	return &PropertyValue{instance: inst, accessor: a}
}

func (p *PropertyValue) Instance() Instance { return p.instance }

// Accessor returns the node's accessor. Callers must not modify it.
func (p *PropertyValue) Accessor() *ValueAccessor { return p.accessor }

// Value returns the node's value, reading it from the instance once.
func (p *PropertyValue) Value() (*value.Value, error) {
	if p.value == nil && p.err == nil {
		v := value.New()
		if err := GetValueUsingAccessor(p.instance, v, p.accessor); err != nil {
			p.err = err
		} else {
			p.value = v
		}
	}
	return p.value, p.err
}

// HasChildValues reports whether Children yields anything: embedded structs
// always do, non-null struct-array elements do, arrays do when not empty.
func (p *PropertyValue) HasChildValues() bool {
	if p.accessor.isAdHoc {
		return false
	}
	v, err := p.Value()
	if err != nil {
		return false
	}
	switch {
	case v.IsArray():
		return v.ArrayInfo().Count > 0
	case v.IsStruct():
		return !v.IsNull() || p.isEmbedded()
	default:
		return false
	}
}

func (p *PropertyValue) isEmbedded() bool {
	info, err := propertyInfo(p.accessor.LastLocation())
	return err == nil && info.Property.Kind == schema.PropertyKindStruct
}

// Children returns the node's child values, or an empty collection when it
// has none.
func (p *PropertyValue) Children() *ValuesCollection {
	c := &ValuesCollection{instance: p.instance, parent: p.accessor}
	if !p.HasChildValues() {
		c.mode = modeEmpty
		return c
	}

	v, _ := p.Value()
	last := p.accessor.LastLocation()
	switch {
	case v.IsArray():
		c.mode = modeElements
		c.count = v.ArrayInfo().Count
	case p.isEmbedded():
		c.mode = modeMembers
		c.enabler = last.Enabler
		c.parentIndex = last.PropertyIndex
	default:
		c.mode = modeProperties
		if element, ok := v.Struct().(Instance); ok {
			c.enabler = element.Enabler()
		} else {
			c.mode = modeEmpty
		}
	}
	return c
}

type collectionMode uint8

const (
	modeEmpty collectionMode = iota
	// modeProperties pushes a location per top-level property of enabler.
	modeProperties
	// modeMembers replaces the parent's last location with each member of
	// the embedded struct at parentIndex.
	modeMembers
	// modeElements sets the parent's array index to 0..count-1.
	modeElements
)

// ValuesCollection is one level of an instance's value tree.
type ValuesCollection struct {
	instance    Instance
	parent      *ValueAccessor
	mode        collectionMode
	enabler     schema.Enabler
	parentIndex uint32
	count       uint32
}

// NewValuesCollection returns the top-level properties of inst, in
// declaration order.
func NewValuesCollection(inst Instance) *ValuesCollection {
	return &ValuesCollection{
		instance: inst,
		parent:   New(),
		mode:     modeProperties,
		enabler:  inst.Enabler(),
	}
}

// Iterator returns a fresh iterator positioned before the first value.
func (c *ValuesCollection) Iterator() *Iterator {
	return &Iterator{coll: c, accessor: New()}
}

// All ranges over the collection's values.
func (c *ValuesCollection) All() iter.Seq[*PropertyValue] {
	return func(yield func(*PropertyValue) bool) {
		it := c.Iterator()
		for it.MoveNext() {
			if !yield(it.Current()) {
				return
			}
		}
	}
}

// Iterator walks one ValuesCollection. Once exhausted its accessor is empty.
type Iterator struct {
	coll     *ValuesCollection
	accessor *ValueAccessor
	started  bool
	current  *PropertyValue
}

// MoveNext advances to the next value and reports whether there is one.
func (it *Iterator) MoveNext() bool {
	if !it.started {
		it.started = true
		if !it.first() {
			return it.end()
		}
	} else if it.accessor.Depth() == 0 || !it.next() {
		return it.end()
	}
	it.current = newPropertyValue(it.coll.instance, it.accessor.Clone())
	return true
}

// Current returns the value MoveNext last moved to, or nil after the end.
func (it *Iterator) Current() *PropertyValue { return it.current }

// Accessor returns the iterator's working accessor.
func (it *Iterator) Accessor() *ValueAccessor { return it.accessor }

func (it *Iterator) end() bool {
	it.accessor.Clear()
	it.current = nil
	return false
}

func (it *Iterator) first() bool {
	c := it.coll
	switch c.mode {
	case modeProperties:
		idx := c.enabler.FirstPropertyIndex(0)
		if idx == 0 {
			return false
		}
		it.accessor = c.parent.Clone()
		it.accessor.PushLocation(c.enabler, idx, NoArrayIndex)
	case modeMembers:
		idx := c.enabler.FirstPropertyIndex(c.parentIndex)
		if idx == 0 {
			return false
		}
		it.accessor = c.parent.Clone()
		it.accessor.last().PropertyIndex = idx
	case modeElements:
		if c.count == 0 {
			return false
		}
		it.accessor = c.parent.Clone()
		it.accessor.last().ArrayIndex = 0
	default:
		return false
	}
	return true
}

func (it *Iterator) next() bool {
	c := it.coll
	last := it.accessor.last()
	switch c.mode {
	case modeProperties:
		last.PropertyIndex = c.enabler.NextPropertyIndex(0, last.PropertyIndex)
		return last.PropertyIndex != 0
	case modeMembers:
		last.PropertyIndex = c.enabler.NextPropertyIndex(c.parentIndex, last.PropertyIndex)
		return last.PropertyIndex != 0
	case modeElements:
		last.ArrayIndex++
		return uint32(last.ArrayIndex) < c.count
	default:
		return false
	}
}

// Walk visits every value of inst depth first, parents before children.
// It stops at the first error returned by fn.
func Walk(inst Instance, fn func(*PropertyValue) error) error {
	return walkCollection(NewValuesCollection(inst), fn)
}

func walkCollection(c *ValuesCollection, fn func(*PropertyValue) error) error {
	for pv := range c.All() {
		if err := fn(pv); err != nil {
			return err
		}
		if pv.HasChildValues() {
			if err := walkCollection(pv.Children(), fn); err != nil {
				return err
			}
		}
	}
	return nil
}
