package value

import (
	"bytes"
	"time"

	geom "github.com/twpayne/go-geom"

	"github.com/roach88/ecvalue/internal/status"
)

type flags uint8

const (
	flagHasValue flags = 1 << iota
	flagReadOnly
	flagLoaded
	flagAllowPointers
)

// noCopy lets go vet's copylocks check flag Values copied by assignment.
// Use Copy or CopyFrom instead.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Value is a tagged, possibly-null value.
//
// The zero Value is uninitialized and null. Values must not be copied by
// assignment once set; use Copy or CopyFrom so owned buffers are duplicated
// and struct references counted.
type Value struct {
	_ noCopy

	kind          Kind
	primitiveType PrimitiveType
	flags         flags
	payload       payload
}

// New returns an uninitialized, null Value.
func New() *Value {
	return &Value{}
}

// NewOfType returns a null primitive Value of type t.
func NewOfType(t PrimitiveType) *Value {
	v := &Value{}
	v.SetPrimitiveType(t)
	return v
}

// NewInteger returns a Value holding n.
func NewInteger(n int32) *Value {
	v := &Value{}
	v.SetInteger(n)
	return v
}

// NewLong returns a Value holding n.
func NewLong(n int64) *Value {
	v := &Value{}
	v.SetLong(n)
	return v
}

// NewDouble returns a Value holding d.
func NewDouble(d float64) *Value {
	v := &Value{}
	v.SetDouble(d)
	return v
}

// NewBoolean returns a Value holding b.
func NewBoolean(b bool) *Value {
	v := &Value{}
	v.SetBoolean(b)
	return v
}

// NewPoint2d returns a Value holding p.
func NewPoint2d(p Point2d) *Value {
	v := &Value{}
	v.SetPoint2d(p)
	return v
}

// NewPoint3d returns a Value holding p.
func NewPoint3d(p Point3d) *Value {
	v := &Value{}
	v.SetPoint3d(p)
	return v
}

// NewDateTime returns a Value holding t with the given metadata.
func NewDateTime(t time.Time, info DateTimeInfo) (*Value, error) {
	v := &Value{}
	if err := v.SetDateTime(t, info); err != nil {
		return nil, err
	}
	return v, nil
}

// NewString returns a Value holding s as owned UTF-8.
func NewString(s string) *Value {
	v := &Value{}
	v.SetUTF8(s)
	return v
}

// NewBinary returns a Value holding b.
func NewBinary(b []byte, holdDuplicate bool) *Value {
	v := &Value{}
	v.SetBinary(b, holdDuplicate)
	return v
}

// Kind returns the top-level discriminant.
func (v *Value) Kind() Kind { return v.kind }

// PrimitiveType returns the primitive type, or PrimitiveTypeNone for non-primitives.
func (v *Value) PrimitiveType() PrimitiveType {
	if v.kind != KindPrimitive {
		return PrimitiveTypeNone
	}
	return v.primitiveType
}

func (v *Value) IsNull() bool          { return v.flags&flagHasValue == 0 }
func (v *Value) IsUninitialized() bool { return v.kind == KindUninitialized }
func (v *Value) IsPrimitive() bool     { return v.kind == KindPrimitive }
func (v *Value) IsStruct() bool        { return v.kind == KindStruct }
func (v *Value) IsArray() bool         { return v.kind == KindArray }
func (v *Value) IsNavigation() bool    { return v.kind == KindNavigation }

func (v *Value) IsInteger() bool   { return v.isPrimitiveOf(PrimitiveTypeInteger) }
func (v *Value) IsLong() bool      { return v.isPrimitiveOf(PrimitiveTypeLong) }
func (v *Value) IsDouble() bool    { return v.isPrimitiveOf(PrimitiveTypeDouble) }
func (v *Value) IsBoolean() bool   { return v.isPrimitiveOf(PrimitiveTypeBoolean) }
func (v *Value) IsPoint2d() bool   { return v.isPrimitiveOf(PrimitiveTypePoint2d) }
func (v *Value) IsPoint3d() bool   { return v.isPrimitiveOf(PrimitiveTypePoint3d) }
func (v *Value) IsDateTime() bool  { return v.isPrimitiveOf(PrimitiveTypeDateTime) }
func (v *Value) IsString() bool    { return v.isPrimitiveOf(PrimitiveTypeString) }
func (v *Value) IsBinary() bool    { return v.isPrimitiveOf(PrimitiveTypeBinary) }
func (v *Value) IsIGeometry() bool { return v.isPrimitiveOf(PrimitiveTypeIGeometry) }

func (v *Value) isPrimitiveOf(t PrimitiveType) bool {
	return v.kind == KindPrimitive && v.primitiveType == t
}

// IsReadOnly reports whether the source property is read-only. Advisory only.
func (v *Value) IsReadOnly() bool { return v.flags&flagReadOnly != 0 }

// SetIsReadOnly records whether the source property is read-only.
func (v *Value) SetIsReadOnly(readOnly bool) { v.setFlag(flagReadOnly, readOnly) }

// IsLoaded is a caching hint for the value's source. Advisory only.
func (v *Value) IsLoaded() bool { return v.flags&flagLoaded != 0 }

// SetIsLoaded records the caching hint.
func (v *Value) SetIsLoaded(loaded bool) { v.setFlag(flagLoaded, loaded) }

// AllowsPointersIntoInstanceMemory reports whether a source may hand this value
// borrowed slices of its own storage. The caller asserting it guarantees the
// value does not outlive, or get mutated after, that storage changes.
func (v *Value) AllowsPointersIntoInstanceMemory() bool { return v.flags&flagAllowPointers != 0 }

// SetAllowsPointersIntoInstanceMemory asserts or withdraws the lifetime contract.
func (v *Value) SetAllowsPointersIntoInstanceMemory(allow bool) {
	v.setFlag(flagAllowPointers, allow)
}

func (v *Value) setFlag(f flags, on bool) {
	if on {
		v.flags |= f
	} else {
		v.flags &^= f
	}
}

func (v *Value) setNull(null bool) { v.setFlag(flagHasValue, !null) }

// releasePayload drops the live payload. Safe to call repeatedly.
func (v *Value) releasePayload() {
	if v.payload != nil {
		v.payload.release()
		v.payload = nil
	}
}

// Clear releases the payload and returns the value to uninitialized and null.
// Advisory flags are kept.
func (v *Value) Clear() {
	v.releasePayload()
	v.kind = KindUninitialized
	v.primitiveType = PrimitiveTypeNone
	v.setNull(true)
}

// Reset is Clear plus resetting the advisory flags.
func (v *Value) Reset() {
	v.Clear()
	v.flags = 0
}

// SetToNull releases the payload but keeps the kind and primitive type, so
// consumers still know what would have been stored.
func (v *Value) SetToNull() {
	v.releasePayload()
	v.setNull(true)
}

// SetPrimitiveType retypes the value. A different type releases the payload and
// leaves the value null; the same type is a no-op.
func (v *Value) SetPrimitiveType(t PrimitiveType) {
	if v.kind == KindPrimitive && v.primitiveType == t {
		return
	}
	v.prepare(KindPrimitive, t)
}

// prepare releases the previous payload and installs the new discriminant.
func (v *Value) prepare(k Kind, t PrimitiveType) {
	v.releasePayload()
	v.kind = k
	v.primitiveType = t
	v.setNull(true)
}

func (v *Value) install(p payload) {
	v.payload = p
	v.setNull(false)
}

func (v *Value) SetInteger(n int32) {
	v.prepare(KindPrimitive, PrimitiveTypeInteger)
	v.install(integerPayload(n))
}

func (v *Value) SetLong(n int64) {
	v.prepare(KindPrimitive, PrimitiveTypeLong)
	v.install(longPayload(n))
}

func (v *Value) SetDouble(d float64) {
	v.prepare(KindPrimitive, PrimitiveTypeDouble)
	v.install(doublePayload(d))
}

func (v *Value) SetBoolean(b bool) {
	v.prepare(KindPrimitive, PrimitiveTypeBoolean)
	v.install(booleanPayload(b))
}

func (v *Value) SetPoint2d(p Point2d) {
	v.prepare(KindPrimitive, PrimitiveTypePoint2d)
	v.install(point2dPayload(p))
}

func (v *Value) SetPoint3d(p Point3d) {
	v.prepare(KindPrimitive, PrimitiveTypePoint3d)
	v.install(point3dPayload(p))
}

// SetDateTime stores the wall-clock fields of t. The location of t is ignored;
// info decides how the ticks are interpreted. Local kinds are rejected and
// leave the value untouched.
func (v *Value) SetDateTime(t time.Time, info DateTimeInfo) error {
	return v.SetDateTimeTicks(TicksFromTime(t), info)
}

// SetDateTimeTicks stores raw ticks. Fails without mutation on local kinds,
// out-of-range ticks, or a Date component that is not at midnight.
func (v *Value) SetDateTimeTicks(ticks int64, info DateTimeInfo) error {
	if err := validateDateTime(ticks, info); err != nil {
		return err
	}
	v.prepare(KindPrimitive, PrimitiveTypeDateTime)
	v.install(dateTimePayload{ticks: ticks, info: info})
	return nil
}

// SetUTF8 stores s as owned UTF-8.
func (v *Value) SetUTF8(s string) {
	b := nonNilBytes([]byte(s))
	v.setString(func(c *stringCache) {
		// []byte(s) is already a private copy.
		c.setUTF8(b, false)
		c.utf8Owned = true
	}, true)
}

// SetUTF8Bytes stores UTF-8 text. nil produces a null string.
func (v *Value) SetUTF8Bytes(b []byte, holdDuplicate bool) {
	v.setString(func(c *stringCache) { c.setUTF8(b, holdDuplicate) }, b != nil)
}

// SetUTF16 stores UTF-16 text. nil produces a null string.
func (v *Value) SetUTF16(s []uint16, holdDuplicate bool) {
	v.setString(func(c *stringCache) { c.setUTF16(s, holdDuplicate) }, s != nil)
}

// SetWChar stores wide-char (UTF-32) text. nil produces a null string.
func (v *Value) SetWChar(s []rune, holdDuplicate bool) {
	v.setString(func(c *stringCache) { c.setWChar(s, holdDuplicate) }, s != nil)
}

func (v *Value) setString(fill func(*stringCache), present bool) {
	v.prepare(KindPrimitive, PrimitiveTypeString)
	p := &stringPayload{}
	fill(&p.cache)
	v.payload = p
	v.setNull(!present)
}

// SetBinary stores a byte buffer. nil produces a null binary.
func (v *Value) SetBinary(b []byte, holdDuplicate bool) {
	v.prepare(KindPrimitive, PrimitiveTypeBinary)
	v.installBinary(b, holdDuplicate)
}

// SetIGeometry stores Well-Known Binary geometry. Bytes that do not decode as
// WKB fail with ErrCodeInvalidGeometry and leave the value untouched.
// nil produces a null geometry.
func (v *Value) SetIGeometry(b []byte, holdDuplicate bool) error {
	if b != nil {
		if _, err := decodeGeometry(b); err != nil {
			return err
		}
	}
	v.prepare(KindPrimitive, PrimitiveTypeIGeometry)
	v.installBinary(b, holdDuplicate)
	return nil
}

func (v *Value) installBinary(b []byte, holdDuplicate bool) {
	if b == nil {
		return
	}
	if holdDuplicate {
		b = nonNilBytes(bytes.Clone(b))
	}
	v.install(&binaryPayload{data: b, owned: holdDuplicate})
}

// SetStruct references inst, taking one reference if it is RefCounted.
// nil produces a null struct value.
// The new reference is taken before the old payload is released, so setting
// the instance v already holds never drops its count to zero.
func (v *Value) SetStruct(inst StructInstance) {
	if rc, ok := inst.(RefCounted); ok {
		rc.AddRef()
	}
	v.prepare(KindStruct, PrimitiveTypeNone)
	if inst == nil {
		return
	}
	v.install(&structPayload{instance: inst})
}

// SetNavigationInfo stores a navigation reference through a relationship class
// descriptor. An id of 0 produces a null navigation value that still records
// the relationship.
func (v *Value) SetNavigationInfo(id uint64, rel *RelationshipClass) {
	v.setNavigation(NavigationInfo{ID: id, relClass: rel})
}

// SetNavigationInfoWithID stores a navigation reference through a stored
// relationship class id.
func (v *Value) SetNavigationInfoWithID(id uint64, relClassID uint64) {
	v.setNavigation(NavigationInfo{ID: id, relClassID: relClassID})
}

func (v *Value) setNavigation(info NavigationInfo) {
	v.prepare(KindNavigation, PrimitiveTypeNone)
	v.payload = navigationPayload(info)
	v.setNull(info.ID == 0)
}

// SetPrimitiveArrayInfo describes a primitive array.
func (v *Value) SetPrimitiveArrayInfo(elementType PrimitiveType, count uint32, isFixedSize bool) {
	v.prepare(KindArray, PrimitiveTypeNone)
	v.install(arrayPayload{Kind: ArrayKindPrimitive, ElementType: elementType, Count: count, IsFixedSize: isFixedSize})
}

// SetStructArrayInfo describes a struct array.
func (v *Value) SetStructArrayInfo(count uint32, isFixedSize bool) {
	v.prepare(KindArray, PrimitiveTypeNone)
	v.install(arrayPayload{Kind: ArrayKindStruct, Count: count, IsFixedSize: isFixedSize})
}

func (v *Value) Integer() int32 {
	if !v.expectPrimitive("Integer", PrimitiveTypeInteger) {
		return 0
	}
	return int32(v.payload.(integerPayload))
}

func (v *Value) Long() int64 {
	if !v.expectPrimitive("Long", PrimitiveTypeLong) {
		return 0
	}
	return int64(v.payload.(longPayload))
}

func (v *Value) Double() float64 {
	if !v.expectPrimitive("Double", PrimitiveTypeDouble) {
		return 0
	}
	return float64(v.payload.(doublePayload))
}

func (v *Value) Boolean() bool {
	if !v.expectPrimitive("Boolean", PrimitiveTypeBoolean) {
		return false
	}
	return bool(v.payload.(booleanPayload))
}

func (v *Value) Point2d() Point2d {
	if !v.expectPrimitive("Point2d", PrimitiveTypePoint2d) {
		return Point2d{}
	}
	return Point2d(v.payload.(point2dPayload))
}

func (v *Value) Point3d() Point3d {
	if !v.expectPrimitive("Point3d", PrimitiveTypePoint3d) {
		return Point3d{}
	}
	return Point3d(v.payload.(point3dPayload))
}

// DateTime returns the stored wall-clock time in UTC (regardless of kind).
func (v *Value) DateTime() time.Time {
	if !v.expectPrimitive("DateTime", PrimitiveTypeDateTime) {
		return time.Time{}
	}
	return TimeFromTicks(v.payload.(dateTimePayload).ticks)
}

func (v *Value) DateTimeTicks() int64 {
	if !v.expectPrimitive("DateTimeTicks", PrimitiveTypeDateTime) {
		return 0
	}
	return v.payload.(dateTimePayload).ticks
}

func (v *Value) DateTimeInfo() DateTimeInfo {
	if !v.expectPrimitive("DateTimeInfo", PrimitiveTypeDateTime) {
		return DateTimeInfo{}
	}
	return v.payload.(dateTimePayload).info
}

// stringCache returns the live cache, or nil for null strings.
// Calling it on a non-string is a contract violation.
func (v *Value) stringCache(getter string) *stringCache {
	if !v.isPrimitiveOf(PrimitiveTypeString) {
		contractViolation("%s called on %s", getter, v.describe())
		return nil
	}
	p, ok := v.payload.(*stringPayload)
	if !ok || v.IsNull() {
		return nil
	}
	return &p.cache
}

// UTF8 returns the string as UTF-8, or "" for a null string.
func (v *Value) UTF8() string {
	return string(v.UTF8Bytes())
}

// UTF8Bytes returns the UTF-8 buffer without transferring ownership, or nil
// for a null string. Converts and caches on first use.
func (v *Value) UTF8Bytes() []byte {
	if c := v.stringCache("UTF8"); c != nil {
		return c.getUTF8()
	}
	return nil
}

// UTF16 returns the UTF-16 buffer without transferring ownership, or nil for
// a null string. Converts and caches on first use.
func (v *Value) UTF16() []uint16 {
	if c := v.stringCache("UTF16"); c != nil {
		return c.getUTF16()
	}
	return nil
}

// WChar returns the wide-char buffer without transferring ownership, or nil
// for a null string. Converts and caches on first use.
func (v *Value) WChar() []rune {
	if c := v.stringCache("WChar"); c != nil {
		return c.getWChar()
	}
	return nil
}

func (v *Value) OwnsUTF8() bool {
	return v.ownsString(func(c *stringCache) bool { return c.utf8Owned })
}

func (v *Value) OwnsUTF16() bool {
	return v.ownsString(func(c *stringCache) bool { return c.utf16Owned })
}

func (v *Value) OwnsWChar() bool {
	return v.ownsString(func(c *stringCache) bool { return c.wcharOwned })
}

func (v *Value) ownsString(get func(*stringCache) bool) bool {
	if p, ok := v.payload.(*stringPayload); ok {
		return get(&p.cache)
	}
	return false
}

// Binary returns the buffer without transferring ownership, or nil when null.
func (v *Value) Binary() []byte {
	return v.bytesOf("Binary", PrimitiveTypeBinary)
}

// IGeometry returns the WKB buffer without transferring ownership, or nil when null.
func (v *Value) IGeometry() []byte {
	return v.bytesOf("IGeometry", PrimitiveTypeIGeometry)
}

// Geometry decodes the stored WKB.
func (v *Value) Geometry() (geom.T, error) {
	b := v.IGeometry()
	if b == nil {
		return nil, status.New(status.ErrCodeInvalidGeometry, "geometry value is null")
	}
	return decodeGeometry(b)
}

func (v *Value) bytesOf(getter string, t PrimitiveType) []byte {
	if !v.isPrimitiveOf(t) {
		contractViolation("%s called on %s", getter, v.describe())
		return nil
	}
	if p, ok := v.payload.(*binaryPayload); ok {
		return p.data
	}
	return nil
}

// OwnsBinary reports whether the binary or geometry buffer is owned.
func (v *Value) OwnsBinary() bool {
	if p, ok := v.payload.(*binaryPayload); ok {
		return p.owned
	}
	return false
}

// Struct returns the referenced instance without adding a reference, or nil.
func (v *Value) Struct() StructInstance {
	if v.kind != KindStruct {
		contractViolation("Struct called on %s", v.describe())
		return nil
	}
	if p, ok := v.payload.(*structPayload); ok {
		return p.instance
	}
	return nil
}

func (v *Value) ArrayInfo() ArrayInfo {
	if v.kind != KindArray {
		contractViolation("ArrayInfo called on %s", v.describe())
		return ArrayInfo{}
	}
	if p, ok := v.payload.(arrayPayload); ok {
		return ArrayInfo(p)
	}
	return ArrayInfo{}
}

// NavigationInfo returns the navigation payload. Valid on null navigation
// values, which still carry the relationship.
func (v *Value) NavigationInfo() NavigationInfo {
	if v.kind != KindNavigation {
		contractViolation("NavigationInfo called on %s", v.describe())
		return NavigationInfo{}
	}
	if p, ok := v.payload.(navigationPayload); ok {
		return NavigationInfo(p)
	}
	return NavigationInfo{}
}

// Copy returns an independent copy: owned buffers are duplicated, borrowed
// buffers shared, struct references counted. Advisory flags are copied.
func (v *Value) Copy() *Value {
	out := &Value{}
	out.CopyFrom(v)
	return out
}

// CopyFrom replaces v's contents with a copy of src.
func (v *Value) CopyFrom(src *Value) {
	if v == src {
		return
	}
	v.releasePayload()
	v.kind = src.kind
	v.primitiveType = src.primitiveType
	v.flags = src.flags
	if src.payload != nil {
		v.payload = src.payload.clone()
	}
}

// moveFrom transfers src's payload to v without touching reference counts,
// leaving src empty. Advisory flags on v are kept.
func (v *Value) moveFrom(src *Value) {
	v.releasePayload()
	v.kind = src.kind
	v.primitiveType = src.primitiveType
	v.setNull(src.IsNull())
	v.payload = src.payload
	src.payload = nil
	src.Reset()
}
