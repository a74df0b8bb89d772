package server

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service viewers browse for.
const ServiceType = "_fingerboard._tcp"

// Advertise announces the viewer server on the local network. The caller
// must Shutdown the returned server.
func Advertise(addr string) (*mdns.Server, error) {
	port, err := portOf(addr)
	if err != nil {
		return nil, err
	}

	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil, []string{"fingerboard", "path=/api/stream"})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

func portOf(addr string) (int, error) {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(p)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("invalid port in %q", addr)
	}
	return port, nil
}
