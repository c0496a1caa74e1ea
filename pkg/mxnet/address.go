package mxnet

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Address is a parsed MX field identifier: host[@args]:record.field, with
// host and the @args suffix omitted when the identifier names a field on
// a Server already in hand.
type Address struct {
	// Raw is the identifier exactly as given to ParseIdentifier.
	Raw string
	// Host is the server hostname or "unix" for a Unix-domain socket; empty
	// when the identifier has no leading "host:" prefix.
	Host string
	// Args carries the optional "@args" suffix on the host portion (e.g. a
	// non-default port, or a Unix socket path), unparsed.
	Args string
	// Record and Field are the two dot-separated components naming a field
	// on the remote record database.
	Record string
	Field  string
}

// RecordField returns the "record.field" portion of the address, the form
// used once a Server connection is already established.
func (a *Address) RecordField() string { return a.Record + "." + a.Field }

// ParseIdentifier parses a "[host[@args]:]record.field" field identifier.
func ParseIdentifier(id string) (*Address, error) {
	addr := &Address{Raw: id}

	rest := id
	if idx := strings.LastIndex(id, ":"); idx >= 0 {
		hostPart := id[:idx]
		rest = id[idx+1:]
		if at := strings.IndexByte(hostPart, '@'); at >= 0 {
			addr.Host = hostPart[:at]
			addr.Args = hostPart[at+1:]
		} else {
			addr.Host = hostPart
		}
	}

	dot := strings.IndexByte(rest, '.')
	if dot < 0 {
		return nil, NewError(ErrorKindIllegalArgument, "identifier %q missing record.field separator", id)
	}
	addr.Record = rest[:dot]
	addr.Field = rest[dot+1:]
	if addr.Record == "" || addr.Field == "" {
		return nil, NewError(ErrorKindIllegalArgument, "identifier %q has empty record or field name", id)
	}
	return addr, nil
}

// endpoint returns the dial target (network, address) this Address's host
// portion describes. A host of "unix" or beginning with "/" names a
// Unix-domain socket at Args (or Host itself, for a bare path). For any
// other host, numeric Args give the TCP port (defaultPort when Args is
// empty) and any other Args name a Unix-domain socket path.
func (a *Address) endpoint(defaultPort int) (network, target string) {
	if a.Host == "" {
		return "", ""
	}
	if a.Host == "unix" || strings.HasPrefix(a.Host, "/") {
		path := a.Args
		if path == "" {
			path = a.Host
		}
		return "unix", path
	}
	port := defaultPort
	if a.Args != "" {
		p, err := strconv.Atoi(a.Args)
		if err != nil {
			return "unix", a.Args
		}
		port = p
	}
	return "tcp", fmt.Sprintf("%s:%d", a.Host, port)
}

func (a *Address) key(defaultPort int) string {
	network, target := a.endpoint(defaultPort)
	return network + ":" + target
}

// Directory is the C10 Server Directory: a process-wide registry of the
// Server connections a client has opened, keyed by host endpoint, so that
// repeated identifiers naming the same server share one connection.
type Directory struct {
	mu      sync.Mutex
	servers map[string]*Server
}

// NewDirectory returns an empty server directory.
func NewDirectory() *Directory {
	return &Directory{servers: make(map[string]*Server)}
}

// lookup returns the already-open Server for addr's endpoint, if any.
func (d *Directory) lookup(addr *Address, defaultPort int) (*Server, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.servers[addr.key(defaultPort)]
	return s, ok
}

func (d *Directory) register(addr *Address, defaultPort int, s *Server) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.servers[addr.key(defaultPort)] = s
}

// Remove drops a server from the directory, e.g. after Close.
func (d *Directory) Remove(s *Server) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, v := range d.servers {
		if v == s {
			delete(d.servers, k)
		}
	}
}

// Servers returns a snapshot of every Server currently registered.
func (d *Directory) Servers() []*Server {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Server, 0, len(d.servers))
	for _, s := range d.servers {
		out = append(out, s)
	}
	return out
}
