package discovery

import (
	"errors"
	"net"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pts-bot/mmi2grpc/pkg/version"
)

// Service type constants for mDNS.
const (
	// ServiceType is the DNS-SD service type of Pandora servers.
	ServiceType = "_pandora._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the default Pandora gRPC port.
	DefaultPort = 8999
)

// TXT record keys.
const (
	TXTKeyProfiles = "profile"
	TXTKeyAddress  = "addr"
	TXTKeyVersion  = "ver"
)

// Version is the control protocol version advertised in TXT records.
const Version = version.Current

// Timing constants.
const (
	// DefaultTTL is the DNS record TTL for advertised services.
	DefaultTTL = 120 * time.Second

	// BrowseTimeout is the default timeout for mDNS browsing.
	BrowseTimeout = 10 * time.Second
)

// Discovery errors.
var (
	ErrNotFound      = errors.New("service not found")
	ErrInvalidTXT    = errors.New("invalid TXT record")
	ErrMissingPort   = errors.New("port is required")
	ErrEmptyInstance = errors.New("instance name is required")
)

// ServerInfo is what a Pandora server advertises.
type ServerInfo struct {
	// Instance is the DNS-SD instance name.
	Instance string

	// Port is the gRPC port.
	Port int

	// Profiles lists the profiles the server controls.
	Profiles []string

	// Address is the device Bluetooth address, if known.
	Address string
}

// Server is a Pandora server found by browsing.
type Server struct {
	ServerInfo

	// Host is the advertised host name.
	Host string

	// Addresses are the IP addresses the server was seen on.
	Addresses []string

	// Version is the advertised control protocol version.
	Version string
}

// Target returns a gRPC dial target for the server, preferring IPv4.
func (s *Server) Target() string {
	host := strings.TrimSuffix(s.Host, ".")
	for _, a := range s.Addresses {
		if ip := net.ParseIP(a); ip != nil && ip.To4() != nil {
			host = a
			break
		}
	}
	if host == "" && len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}
	return net.JoinHostPort(host, strconv.Itoa(s.Port))
}

// Compatible reports whether the advertised protocol version can be driven.
func (s *Server) Compatible() bool {
	return version.Supported(s.Version)
}

// Serves reports whether the server controls profile. An empty profile
// matches every server.
func (s *Server) Serves(profile string) bool {
	if profile == "" {
		return true
	}
	return slices.ContainsFunc(s.Profiles, func(p string) bool {
		return strings.EqualFold(p, profile)
	})
}

// EncodeTXT builds the TXT records for info.
func EncodeTXT(info *ServerInfo) []string {
	txt := []string{TXTKeyVersion + "=" + Version}
	if len(info.Profiles) > 0 {
		txt = append(txt, TXTKeyProfiles+"="+strings.Join(info.Profiles, ","))
	}
	if info.Address != "" {
		txt = append(txt, TXTKeyAddress+"="+info.Address)
	}
	return txt
}

// DecodeTXT parses TXT records into a map. Keys are lower-cased.
func DecodeTXT(records []string) (map[string]string, error) {
	out := make(map[string]string, len(records))
	for _, r := range records {
		k, v, ok := strings.Cut(r, "=")
		if !ok || k == "" {
			return nil, ErrInvalidTXT
		}
		out[strings.ToLower(k)] = v
	}
	return out, nil
}

func splitProfiles(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
