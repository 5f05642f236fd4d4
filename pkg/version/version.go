// Package version holds the control protocol version spoken between the
// adapter and Pandora servers, plus the build version of the binaries.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Current is the control protocol version implemented by this module.
const Current = "1.0"

// Build is the release of the binaries. Set at link time with
// -ldflags "-X github.com/pts-bot/mmi2grpc/pkg/version.Build=v1.2.3".
var Build = "dev"

// ProtocolVersion is a parsed "major[.minor]" protocol version.
type ProtocolVersion struct {
	Major uint16
	Minor uint16
}

// Parse parses "major.minor" or a bare "major" (minor 0).
func Parse(s string) (ProtocolVersion, error) {
	majorStr, minorStr, hasMinor := strings.Cut(s, ".")

	major, err := strconv.ParseUint(majorStr, 10, 16)
	if err != nil {
		return ProtocolVersion{}, fmt.Errorf("invalid version %q: bad major component", s)
	}

	var minor uint64
	if hasMinor {
		minor, err = strconv.ParseUint(minorStr, 10, 16)
		if err != nil {
			return ProtocolVersion{}, fmt.Errorf("invalid version %q: bad minor component", s)
		}
	}

	return ProtocolVersion{Major: uint16(major), Minor: uint16(minor)}, nil
}

// MustParse is Parse for constants; it panics on error.
func MustParse(s string) ProtocolVersion {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the version as "major.minor".
func (v ProtocolVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible returns true if the other version has the same major version.
func (v ProtocolVersion) Compatible(other ProtocolVersion) bool {
	return v.Major == other.Major
}

// Supported reports whether a peer advertising s can be driven by this
// module. Peers that advertise no version predate versioning and are
// accepted.
func Supported(s string) bool {
	if s == "" {
		return true
	}
	v, err := Parse(s)
	if err != nil {
		return false
	}
	return MustParse(Current).Compatible(v)
}

// Banner returns "name build (protocol Current)" for -version output.
func Banner(name string) string {
	return fmt.Sprintf("%s %s (protocol %s)", name, Build, Current)
}
