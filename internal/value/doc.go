// Package value provides the tagged value container used to read and write
// property values of instances.
//
// A Value holds exactly one typed, possibly-null payload: a primitive
// (integer, long, double, boolean, 2d/3d point, date-time, string, binary,
// geometry), a struct reference, an array descriptor or a navigation
// reference. The payload is a sealed interface with one concrete type per
// branch, so there is never more than one live representation.
//
// Ownership rules:
//   - String and binary setters take a holdDuplicate flag. true copies the
//     caller's buffer and the value owns the copy; false stores the caller's
//     slice as-is (borrowed) and the caller keeps it valid and unmodified for
//     as long as the value refers to it.
//   - Copy duplicates owned buffers and shares borrowed ones.
//   - A struct payload holds one reference on instances implementing
//     RefCounted; Clear, SetToNull, Reset and every setter release it.
//
// Strings are cached lazily in up to three encodings (UTF-8, UTF-16, and
// UTF-32 wide chars). The first write picks the ground truth; reading another
// encoding converts once and caches the result as owned.
//
// Failure channels:
//   - Recoverable failures (unparsable text, out-of-range conversions,
//     invalid geometry, local DateTime) return *status.Error.
//   - Contract violations (typed getter on the wrong type, non-string getter
//     on a null value) return the zero value of the getter's result type.
//     Building with -tags ecvassert turns them into panics.
//
// Values are not safe for concurrent use. Even getters mutate the string
// cache, so callers sharing a Value across goroutines must lock externally.
package value
