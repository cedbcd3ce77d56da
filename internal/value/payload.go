package value

// payload is a sealed interface - only the types below implement it.
// Exactly one payload is live on a Value at a time.
type payload interface {
	// release drops everything the payload owns or references.
	release()
	// clone returns a payload safe to install on another Value.
	clone() payload
}

type integerPayload int32

func (integerPayload) release()         {}
func (p integerPayload) clone() payload { return p }

type longPayload int64

func (longPayload) release()         {}
func (p longPayload) clone() payload { return p }

type doublePayload float64

func (doublePayload) release()         {}
func (p doublePayload) clone() payload { return p }

type booleanPayload bool

func (booleanPayload) release()         {}
func (p booleanPayload) clone() payload { return p }

type point2dPayload Point2d

func (point2dPayload) release()         {}
func (p point2dPayload) clone() payload { return p }

type point3dPayload Point3d

func (point3dPayload) release()         {}
func (p point3dPayload) clone() payload { return p }

type dateTimePayload struct {
	ticks int64
	info  DateTimeInfo
}

func (dateTimePayload) release()         {}
func (p dateTimePayload) clone() payload { return p }

// stringPayload is a pointer type since reads cache converted encodings.
type stringPayload struct {
	cache stringCache
}

func (p *stringPayload) release() { p.cache = stringCache{} }

func (p *stringPayload) clone() payload {
	return &stringPayload{cache: p.cache.clone()}
}

// binaryPayload backs both Binary and IGeometry values.
type binaryPayload struct {
	data  []byte
	owned bool
}

func (p *binaryPayload) release() { p.data, p.owned = nil, false }

func (p *binaryPayload) clone() payload {
	out := &binaryPayload{data: p.data, owned: p.owned}
	if p.owned {
		out.data = nonNilBytes(append([]byte(nil), p.data...))
	}
	return out
}

type structPayload struct {
	instance StructInstance
}

func (p *structPayload) release() {
	if p.instance == nil {
		return
	}
	if rc, ok := p.instance.(RefCounted); ok {
		rc.Release()
	}
	p.instance = nil
}

func (p *structPayload) clone() payload {
	if rc, ok := p.instance.(RefCounted); ok {
		rc.AddRef()
	}
	return &structPayload{instance: p.instance}
}

type arrayPayload ArrayInfo

func (arrayPayload) release()         {}
func (p arrayPayload) clone() payload { return p }

type navigationPayload NavigationInfo

func (navigationPayload) release()         {}
func (p navigationPayload) clone() payload { return p }
