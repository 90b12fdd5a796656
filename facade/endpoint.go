// File: facade/endpoint.go
// Author: momentics <momentics@gmail.com>
//
// Endpoint strings follow the reference implementation's
// "transport://address" shape (§6). Only tcp and inproc are wired; unix
// sockets and multicast PGM/EPGM are explicit Non-goals (spec.md §1).

package facade

import (
	"fmt"
	"strings"
)

type transportScheme int

const (
	schemeTCP transportScheme = iota
	schemeInproc
)

func parseEndpoint(endpoint string) (transportScheme, string, error) {
	scheme, addr, ok := strings.Cut(endpoint, "://")
	if !ok {
		return 0, "", fmt.Errorf("facade: malformed endpoint %q, expected transport://address", endpoint)
	}
	switch scheme {
	case "tcp":
		return schemeTCP, addr, nil
	case "inproc":
		return schemeInproc, addr, nil
	default:
		return 0, "", fmt.Errorf("facade: unsupported transport %q in endpoint %q", scheme, endpoint)
	}
}
