//go:build linux

package iouring

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/charSLee013/edgescan/internal/ipaddr"
)

// sockaddrFor builds the unix.Sockaddr IORING_OP_CONNECT needs for ip:port.
func sockaddrFor(ip string, port int) (unix.Sockaddr, error) {
	addr, ok := ipaddr.Parse(ip)
	if !ok {
		return nil, fmt.Errorf("iouring: invalid IP %q", ip)
	}
	if addr.Is4() {
		var b [4]byte
		copy(b[:], addr.NetIP().To4())
		return &unix.SockaddrInet4{Port: port, Addr: b}, nil
	}
	var b [16]byte
	copy(b[:], addr.NetIP().To16())
	return &unix.SockaddrInet6{Port: port, Addr: b}, nil
}
