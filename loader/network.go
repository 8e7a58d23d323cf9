package loader

import (
	"fmt"
	"net"

	"github.com/natansdj/electives"
)

// Network lists the addresses the HTTP server is reachable on, as "iface (ip kind)".
// Loopback and down interfaces are skipped.
func Network() []string {
	ifaces, err := net.Interfaces()
	if err != nil {
		electives.LogERL("network-interfaces-error", "Failed to get network interfaces: %v", err)
		return nil
	}

	var found []string
	for _, i := range ifaces {
		if i.Flags&net.FlagLoopback != 0 || i.Flags&net.FlagUp == 0 {
			continue
		}

		addrs, err := i.Addrs()
		if err != nil {
			electives.LogERL("network-addrs-error", "Failed to get addresses for interface %s: %v", i.Name, err)
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			if !ip.IsGlobalUnicast() {
				continue
			}

			kind := "public"
			if ip.IsPrivate() {
				kind = "private"
			}

			found = append(found, fmt.Sprintf("%s (%s %s)", i.Name, ip.String(), kind))
		}
	}

	return found
}
