package value

import (
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
	"github.com/twpayne/go-geom/encoding/wkt"

	"github.com/roach88/ecvalue/internal/status"
)

// decodeGeometry validates that b is Well-Known Binary geometry.
func decodeGeometry(b []byte) (geom.T, error) {
	g, err := wkb.Unmarshal(b)
	if err != nil {
		return nil, status.New(status.ErrCodeInvalidGeometry, "not well-known binary geometry: %v", err)
	}
	return g, nil
}

// geometryText renders WKB bytes as WKT, or "" if they no longer decode
// (possible only for borrowed buffers mutated by their owner).
func geometryText(b []byte) string {
	g, err := wkb.Unmarshal(b)
	if err != nil {
		return ""
	}
	s, err := wkt.Marshal(g)
	if err != nil {
		return ""
	}
	return s
}
