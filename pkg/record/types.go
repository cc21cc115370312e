// Package record holds the decoded form of GSF records and the per-stream state
// needed to decode them.
//
// A stream is a sequence of tagged records. Each decoded record lands in its
// slot of a Records container; the container owns the variable-length arrays of
// its slots and reuses them across reads.
package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Type is the 22-bit tag identifying a record's payload.
type Type uint32

const (
	// Next requests whichever record follows the current position.
	Next Type = 0

	TypeHeader               Type = 1
	TypeSwathBathymetryPing  Type = 2
	TypeSoundVelocityProfile Type = 3
	TypeProcessingParameters Type = 4
	TypeSensorParameters     Type = 5
	TypeComment              Type = 6
	TypeHistory              Type = 7
	TypeNavigationError      Type = 8
	TypeSwathBathySummary    Type = 9
	TypeSingleBeamPing       Type = 10

	// NumTypes is one past the highest defined tag.
	NumTypes = 11

	// MaxType is the largest tag the framing header can carry.
	MaxType Type = 1<<22 - 1
)

// Types lists every defined record type in tag order.
var Types = []Type{
	TypeHeader,
	TypeSwathBathymetryPing,
	TypeSoundVelocityProfile,
	TypeProcessingParameters,
	TypeSensorParameters,
	TypeComment,
	TypeHistory,
	TypeNavigationError,
	TypeSwathBathySummary,
	TypeSingleBeamPing,
}

// String returns the record type name for display.
func (t Type) String() string {
	switch t {
	case Next:
		return "next"
	case TypeHeader:
		return "header"
	case TypeSwathBathymetryPing:
		return "swath bathymetry ping"
	case TypeSoundVelocityProfile:
		return "sound velocity profile"
	case TypeProcessingParameters:
		return "processing parameters"
	case TypeSensorParameters:
		return "sensor parameters"
	case TypeComment:
		return "comment"
	case TypeHistory:
		return "history"
	case TypeNavigationError:
		return "navigation error"
	case TypeSwathBathySummary:
		return "swath bathymetry summary"
	case TypeSingleBeamPing:
		return "single beam ping"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(t))
	}
}

// ParseType resolves a record type from its String name, with hyphens or
// underscores standing in for spaces, or from its numeric tag.
func ParseType(s string) (Type, error) {
	name := strings.NewReplacer("-", " ", "_", " ").Replace(strings.ToLower(strings.TrimSpace(s)))
	for _, t := range Types {
		if t.String() == name {
			return t, nil
		}
	}
	if n, err := strconv.ParseUint(name, 10, 32); err == nil && Type(n).Valid() {
		return Type(n), nil
	}
	return Next, errors.Errorf("unknown record type %q", s)
}

// Valid reports whether t is a defined record type.
func (t Type) Valid() bool { return t >= TypeHeader && t < NumTypes }

// LastRecord addresses the final record of a type in direct access.
const LastRecord = -1

// DataID describes a record's framing: its type, its checksum flag, the six
// reserved header bits, and for direct access its 1-based number.
type DataID struct {
	Checksum bool
	Reserved uint8
	Type     Type
	Number   int
}

// Timespec is a time as carried on the wire: seconds and nanoseconds since the
// Unix epoch.
type Timespec struct {
	Sec  int32
	Nsec int32
}

// TimespecOf converts t to wire form.
func TimespecOf(t time.Time) Timespec {
	return Timespec{Sec: int32(t.Unix()), Nsec: int32(t.Nanosecond())}
}

// Time returns ts as a UTC time.
func (ts Timespec) Time() time.Time {
	return time.Unix(int64(ts.Sec), int64(ts.Nsec)).UTC()
}

// IsZero reports whether ts is unset.
func (ts Timespec) IsZero() bool { return ts.Sec == 0 && ts.Nsec == 0 }
