package peer

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Address is a peer's dotted-quad IPv4 endpoint. It is a value type:
// equality is by both fields, matching spec §3's "Address ... equality by
// both fields".
type Address struct {
	IP   string
	Port uint16
}

// String renders the address as "ip:port", the form used on the wire by
// store_node referrals and accepted by net.Dial.
func (a Address) String() string {
	return net.JoinHostPort(a.IP, strconv.Itoa(int(a.Port)))
}

// ParseAddress parses a "dotted-ipv4:port" string, as sent in a
// store_node referral frame.
func ParseAddress(s string) (Address, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Address{}, fmt.Errorf("peer: invalid address %q: %w", s, err)
	}
	if ip := net.ParseIP(host); ip == nil || ip.To4() == nil || strings.Contains(host, ":") {
		return Address{}, fmt.Errorf("peer: address %q is not a dotted-quad IPv4 literal", s)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil || port == 0 {
		return Address{}, fmt.Errorf("peer: invalid port in %q", s)
	}
	return Address{IP: host, Port: uint16(port)}, nil
}
