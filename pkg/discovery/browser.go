package discovery

import (
	"context"
	"net"
	"slices"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// Browser finds Pandora servers.
type Browser interface {
	// Browse streams servers as they are found. The channel is closed
	// when ctx is done.
	Browse(ctx context.Context) (<-chan *Server, error)

	// FindFirst returns the first compatible server controlling profile.
	// An empty profile accepts any server.
	FindFirst(ctx context.Context, profile string) (*Server, error)
}

// BrowserConfig configures browsing.
type BrowserConfig struct {
	// Timeout bounds FindFirst when ctx has no deadline.
	Timeout time.Duration

	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{Timeout: BrowseTimeout}
}

// MDNSBrowser implements Browser using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig
}

// NewMDNSBrowser creates a new mDNS browser.
func NewMDNSBrowser(config BrowserConfig) *MDNSBrowser {
	return &MDNSBrowser{config: config}
}

// Browse implements Browser. Entries for the same instance seen on several
// interfaces are merged; only the first sighting is emitted.
func (b *MDNSBrowser) Browse(ctx context.Context) (<-chan *Server, error) {
	out := make(chan *Server)
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	go relay(ctx, entries, removed, out)

	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, b.options()...)
	}()

	return out, nil
}

// relay converts entries to servers and sends each new instance on out,
// closing out when entries closes or ctx is done. A server is never
// modified after it has been sent; later sightings only update the
// relay's own record of the instance.
func relay(ctx context.Context, entries, removed <-chan *zeroconf.ServiceEntry, out chan<- *Server) {
	defer close(out)
	seen := make(map[string]*Server)
	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return
			}
			srv := EntryToServer(entry)
			if srv == nil {
				continue
			}
			if record, found := seen[srv.Instance]; found {
				record.Addresses = mergeAddresses(record.Addresses, srv.Addresses)
				continue
			}
			record := *srv
			record.Addresses = slices.Clone(srv.Addresses)
			seen[srv.Instance] = &record
			select {
			case out <- srv:
			case <-ctx.Done():
				return
			}
		case entry, ok := <-removed:
			if !ok {
				removed = nil
				continue
			}
			delete(seen, entry.Instance)
		case <-ctx.Done():
			return
		}
	}
}

// FindFirst implements Browser.
func (b *MDNSBrowser) FindFirst(ctx context.Context, profile string) (*Server, error) {
	if _, ok := ctx.Deadline(); !ok && b.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.config.Timeout)
		defer cancel()
	}

	results, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}
	for {
		select {
		case srv, ok := <-results:
			if !ok {
				return nil, ErrNotFound
			}
			if srv.Serves(profile) && srv.Compatible() {
				return srv, nil
			}
		case <-ctx.Done():
			return nil, ErrNotFound
		}
	}
}

func (b *MDNSBrowser) options() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption
	if b.config.Interface != "" {
		if iface, err := net.InterfaceByName(b.config.Interface); err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}
	return opts
}

// EntryToServer converts a zeroconf entry. It returns nil for entries
// with malformed TXT records.
func EntryToServer(entry *zeroconf.ServiceEntry) *Server {
	txt, err := DecodeTXT(entry.Text)
	if err != nil {
		return nil
	}

	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	return &Server{
		ServerInfo: ServerInfo{
			Instance: entry.Instance,
			Port:     entry.Port,
			Profiles: splitProfiles(txt[TXTKeyProfiles]),
			Address:  txt[TXTKeyAddress],
		},
		Host:      entry.HostName,
		Addresses: addrs,
		Version:   txt[TXTKeyVersion],
	}
}

// mergeAddresses adds new addresses to existing, avoiding duplicates.
func mergeAddresses(existing, add []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, a := range existing {
		seen[a] = true
	}
	for _, a := range add {
		if !seen[a] {
			existing = append(existing, a)
			seen[a] = true
		}
	}
	return existing
}

var _ Browser = (*MDNSBrowser)(nil)
