package specparse

import (
	"fmt"
	"regexp"
	"strconv"
)

// addressPattern matches spec.md §4.D's address grammar: an optional "//"
// prefix, a dotted-quad IPv4 address, a colon, and a decimal port.
var addressPattern = regexp.MustCompile(`^(?://)?(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}):(\d{1,5})$`)

// Address is a parsed host:port pair for the tcp/udp stage families.
type Address struct {
	Host string
	Port int
}

// String renders the address back to "host:port" form.
func (a Address) String() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// ParseAddress parses an option string of the form "[//]<ipv4>:<port>"
// (spec.md §4.D). It returns an error describing why the string failed to
// match when it does not conform.
func ParseAddress(options string) (Address, error) {
	m := addressPattern.FindStringSubmatch(options)
	if m == nil {
		return Address{}, fmt.Errorf("address %q does not match [//]<ipv4>:<port>", options)
	}
	port, err := strconv.Atoi(m[2])
	if err != nil || port < 0 || port > 65535 {
		return Address{}, fmt.Errorf("address %q has an invalid port", options)
	}
	return Address{Host: m[1], Port: port}, nil
}
