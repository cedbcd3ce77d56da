package value

import "fmt"

// contractViolation reports misuse of a typed getter. Callers return the
// documented sentinel afterwards.
func contractViolation(format string, args ...any) {
	if assertContracts {
		panic(fmt.Sprintf("value: contract violation: "+format, args...))
	}
}

// expectPrimitive checks the preconditions shared by the non-string getters.
// It reports false when the getter must return its sentinel.
func (v *Value) expectPrimitive(getter string, t PrimitiveType) bool {
	if v.kind != KindPrimitive || v.primitiveType != t {
		contractViolation("%s called on %s", getter, v.describe())
		return false
	}
	if v.IsNull() {
		contractViolation("%s called on null value", getter)
		return false
	}
	return true
}

func (v *Value) describe() string {
	if v.kind == KindPrimitive {
		return fmt.Sprintf("primitive %s", v.primitiveType)
	}
	return v.kind.String()
}
