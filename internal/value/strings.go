package value

import (
	"bytes"
	"slices"
	"unicode/utf16"
)

// stringCache holds one logical string in up to three encodings.
// A nil slot is absent and never owned. The empty string is a non-nil,
// zero-length slot.
//
// Invalid UTF-8 or unpaired UTF-16 surrogates become U+FFFD on conversion.
type stringCache struct {
	utf8  []byte
	utf16 []uint16
	wchar []rune

	utf8Owned  bool
	utf16Owned bool
	wcharOwned bool
}

func (c *stringCache) setUTF8(b []byte, holdDuplicate bool) {
	*c = stringCache{}
	if b == nil {
		return
	}
	if holdDuplicate {
		b = nonNilBytes(bytes.Clone(b))
	}
	c.utf8, c.utf8Owned = b, holdDuplicate
}

func (c *stringCache) setUTF16(s []uint16, holdDuplicate bool) {
	*c = stringCache{}
	if s == nil {
		return
	}
	if holdDuplicate {
		s = append(make([]uint16, 0, len(s)), s...)
	}
	c.utf16, c.utf16Owned = s, holdDuplicate
}

func (c *stringCache) setWChar(s []rune, holdDuplicate bool) {
	*c = stringCache{}
	if s == nil {
		return
	}
	if holdDuplicate {
		s = append(make([]rune, 0, len(s)), s...)
	}
	c.wchar, c.wcharOwned = s, holdDuplicate
}

// getUTF8 returns the UTF-8 form, converting from UTF-16 then wide chars.
func (c *stringCache) getUTF8() []byte {
	if c.utf8 != nil {
		return c.utf8
	}
	switch {
	case c.utf16 != nil:
		c.utf8 = nonNilBytes([]byte(string(utf16.Decode(c.utf16))))
	case c.wchar != nil:
		c.utf8 = nonNilBytes([]byte(string(c.wchar)))
	default:
		return nil
	}
	c.utf8Owned = true
	return c.utf8
}

// getUTF16 returns the UTF-16 form, converting from UTF-8 then wide chars.
func (c *stringCache) getUTF16() []uint16 {
	if c.utf16 != nil {
		return c.utf16
	}
	var runes []rune
	switch {
	case c.utf8 != nil:
		runes = []rune(string(c.utf8))
	case c.wchar != nil:
		runes = c.wchar
	default:
		return nil
	}
	c.utf16 = utf16.Encode(runes)
	if c.utf16 == nil {
		c.utf16 = []uint16{}
	}
	c.utf16Owned = true
	return c.utf16
}

// getWChar returns the wide-char form, converting from UTF-8 then UTF-16.
func (c *stringCache) getWChar() []rune {
	if c.wchar != nil {
		return c.wchar
	}
	switch {
	case c.utf8 != nil:
		c.wchar = []rune(string(c.utf8))
	case c.utf16 != nil:
		c.wchar = utf16.Decode(c.utf16)
	default:
		return nil
	}
	if c.wchar == nil {
		c.wchar = []rune{}
	}
	c.wcharOwned = true
	return c.wchar
}

// clone duplicates owned slots and shares borrowed ones.
func (c *stringCache) clone() stringCache {
	out := *c
	if c.utf8Owned {
		out.utf8 = nonNilBytes(bytes.Clone(c.utf8))
	}
	if c.utf16Owned {
		out.utf16 = append(make([]uint16, 0, len(c.utf16)), c.utf16...)
	}
	if c.wcharOwned {
		out.wchar = append(make([]rune, 0, len(c.wchar)), c.wchar...)
	}
	return out
}

// equal compares two strings in the first encoding both already hold,
// falling back to UTF-8.
func (c *stringCache) equal(o *stringCache) bool {
	switch {
	case c.utf8 != nil && o.utf8 != nil:
		return bytes.Equal(c.utf8, o.utf8)
	case c.utf16 != nil && o.utf16 != nil:
		return slices.Equal(c.utf16, o.utf16)
	case c.wchar != nil && o.wchar != nil:
		return slices.Equal(c.wchar, o.wchar)
	default:
		return bytes.Equal(c.getUTF8(), o.getUTF8())
	}
}

func nonNilBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
