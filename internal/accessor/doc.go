// Package accessor addresses values inside an instance graph.
//
// A ValueAccessor is a path of Locations. Each Location pairs an enabler with
// a property index and an optional array index:
//
//	"Width"          → (Widget, 3, -1)
//	"Items[2]"       → (Widget, 5, 2)
//	"Items[2].Name"  → (Widget, 5, 2), (Item, 1, -1)
//	"Size.Height"    → (Widget, 7, -1)
//
// Members of embedded structs share their owner's layout, so "Size.Height"
// is a single location. A new location starts only when the path crosses
// into a struct-array element.
//
// Ad-hoc properties are name/value entries stored in a struct array whose
// element class carries an ad-hoc marker. PopulateValueAccessorForInstance
// falls back to them when static resolution fails, producing an accessor
// marked IsAdHoc that addresses the entry.
//
// ValuesCollection walks an instance's values one level at a time in
// declaration order, then array index order.
//
// Accessors and iterators are not safe for concurrent mutation.
package accessor
