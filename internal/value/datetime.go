package value

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/ecvalue/internal/status"
)

// DateTimeKind records how a date-time relates to a time zone.
type DateTimeKind uint8

const (
	DateTimeKindUnspecified DateTimeKind = iota
	DateTimeKindUTC
	// DateTimeKindLocal is rejected by every setter.
	DateTimeKindLocal
)

// DateTimeComponent records whether the time of day is meaningful.
type DateTimeComponent uint8

const (
	DateTimeComponentDateAndTime DateTimeComponent = iota
	DateTimeComponentDate
)

// DateTimeInfo is the metadata stored alongside DateTime ticks.
type DateTimeInfo struct {
	Kind      DateTimeKind
	Component DateTimeComponent
}

// Ticks are 100ns units since 0001-01-01T00:00:00.
const (
	TicksPerSecond = int64(10_000_000)
	TicksPerDay    = 86_400 * TicksPerSecond

	// MaxTicks is 9999-12-31T23:59:59.9999999.
	MaxTicks = int64(3_155_378_975_999_999_999)

	epochUnixSeconds = int64(-62_135_596_800)
)

// TicksFromTime converts the wall-clock fields of t to ticks, ignoring its location.
func TicksFromTime(t time.Time) int64 {
	w := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	return (w.Unix()-epochUnixSeconds)*TicksPerSecond + int64(w.Nanosecond()/100)
}

// TimeFromTicks converts ticks to a time.Time in UTC.
func TimeFromTicks(ticks int64) time.Time {
	secs := ticks / TicksPerSecond
	rem := ticks % TicksPerSecond
	if rem < 0 {
		secs--
		rem += TicksPerSecond
	}
	return time.Unix(secs+epochUnixSeconds, rem*100).UTC()
}

func validateDateTime(ticks int64, info DateTimeInfo) error {
	if info.Kind == DateTimeKindLocal {
		return status.New(status.ErrCodeDateTimeKindUnsupported, "local date-times are not supported")
	}
	if info.Kind > DateTimeKindLocal || info.Component > DateTimeComponentDate {
		return status.New(status.ErrCodeDataTypeMismatch, "invalid date-time metadata %+v", info)
	}
	if ticks < 0 || ticks > MaxTicks {
		return status.New(status.ErrCodeOutOfRange, "ticks %d outside [0,%d]", ticks, MaxTicks)
	}
	if info.Component == DateTimeComponentDate && ticks%TicksPerDay != 0 {
		return status.New(status.ErrCodeDataTypeMismatch, "date component requires midnight, got ticks %d", ticks)
	}
	return nil
}

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05.9999999"
)

// formatDateTime renders ISO-8601: date only for Date components, trailing
// zero fractions trimmed, Z suffix for UTC (dates included).
func formatDateTime(ticks int64, info DateTimeInfo) string {
	t := TimeFromTicks(ticks)
	layout := dateTimeLayout
	if info.Component == DateTimeComponentDate {
		layout = dateLayout
	}
	s := t.Format(layout)
	if info.Kind == DateTimeKindUTC {
		s += "Z"
	}
	return s
}

// parseDateTime accepts the forms produced by formatDateTime. Offsets other
// than Z are rejected since local times are unsupported.
func parseDateTime(s string) (int64, DateTimeInfo, error) {
	s = strings.TrimSpace(s)
	var info DateTimeInfo

	if strings.HasSuffix(s, "Z") {
		info.Kind = DateTimeKindUTC
		s = strings.TrimSuffix(s, "Z")
	}

	if len(s) == len(dateLayout) {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return 0, info, status.New(status.ErrCodeParseFailed, "cannot parse %q as date: %v", s, err)
		}
		info.Component = DateTimeComponentDate
		return TicksFromTime(t), info, nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return 0, info, status.New(status.ErrCodeParseFailed, "cannot parse %q as date-time: %v", s, err)
	}
	return TicksFromTime(t), info, nil
}

// String renders the metadata for diagnostics.
func (i DateTimeInfo) String() string {
	kind := "unspecified"
	switch i.Kind {
	case DateTimeKindUTC:
		kind = "utc"
	case DateTimeKindLocal:
		kind = "local"
	}
	component := "dateTime"
	if i.Component == DateTimeComponentDate {
		component = "date"
	}
	return fmt.Sprintf("%s/%s", kind, component)
}
