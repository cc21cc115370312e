package codec

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/ssargent/gsf/pkg/gsferr"
)

// VersionPrefix starts the version string of every header record.
const VersionPrefix = "GSF-v"

const (
	libraryMajor = 3
	libraryMinor = 10
)

// Version is the format version parsed from a stream's header record.
type Version struct {
	Major int
	Minor int
}

// LibraryVersion is the version written into newly created streams.
func LibraryVersion() Version {
	return Version{Major: libraryMajor, Minor: libraryMinor}
}

// ParseVersion parses a header record version string such as "GSF-v03.10".
func ParseVersion(s string) (Version, error) {
	s = strings.TrimRight(s, "\x00")
	if !strings.HasPrefix(s, VersionPrefix) {
		return Version{}, errors.Wrapf(gsferr.ErrUnrecognizedFile, "version %q", s)
	}

	var v Version
	if n, err := fmt.Sscanf(s[len(VersionPrefix):], "%d.%d", &v.Major, &v.Minor); err != nil || n != 2 {
		return Version{}, errors.Wrapf(gsferr.ErrUnrecognizedFile, "version %q", s)
	}
	return v, nil
}

// String formats v the way header records carry it.
func (v Version) String() string {
	return fmt.Sprintf("%s%02d.%02d", VersionPrefix, v.Major, v.Minor)
}

// AtMost reports whether v is no newer than major.minor.
func (v Version) AtMost(major, minor int) bool {
	return v.Major < major || (v.Major == major && v.Minor <= minor)
}

// legacyPadding reports whether v pads payloads by (length mod 4).
func (v Version) legacyPadding() bool { return v.AtMost(1, 2) }
