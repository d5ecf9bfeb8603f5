package convert

import (
	"fmt"
	"net"
	"strings"

	"github.com/apparentlymart/go-cidr/cidr"

	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/internal/constants"
	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/models"
)

// IPMap indexes the topology's supernets under symbolic keys. Per-switch
// ranges are keyed as "<GROUP>_<ROLE>" (e.g. "P2P_BORDER1_TOR1",
// "LOOPBACK0_TOR2") and store the CIDR-qualified address assigned to that
// switch. For a point-to-point range with a single switch assignment the
// peer's bare address is stored under the derived "<key>_PEER" key. Pool
// ranges with no VLAN and no switch assignment store the raw subnet under
// the plain group key.
//
// A lookup for an absent key returns nothing; callers treat absence as
// "feature not present".
type IPMap map[string][]string

// switchOwners are assignment owner names that scope an address to one
// switch (as opposed to "Gateway").
var switchOwners = []string{
	constants.RoleTOR1, constants.RoleTOR2, constants.RoleBMC,
	constants.RoleBorder1, constants.RoleBorder2, constants.RoleMUX,
}

// BuildIPMap scans the supernet records and builds the symbolic index.
func BuildIPMap(supernets []models.Supernet) IPMap {
	m := make(IPMap)

	for _, sn := range supernets {
		group := strings.ToUpper(strings.TrimSpace(sn.GroupName))
		if group == "" {
			continue
		}
		ipv4 := sn.IPv4
		assigns := switchAssignments(ipv4.Assignments)

		if len(assigns) == 0 {
			if ipv4.VLANID == 0 && ipv4.Network != "" {
				m[group] = append(m[group], fmt.Sprintf("%s/%d", ipv4.Network, ipv4.Cidr))
			}
			continue
		}

		var lastKey string
		for _, a := range assigns {
			owner := strings.ToUpper(strings.TrimSpace(a.Name))
			key := group
			if !strings.HasSuffix(key, "_"+owner) {
				key += "_" + owner
			}
			m[key] = append(m[key], fmt.Sprintf("%s/%d", a.IP, ipv4.Cidr))
			lastKey = key
		}

		// Single-assignment /30 or /31: derive the peer side by taking
		// the other usable address of the link.
		if len(assigns) == 1 && (ipv4.Cidr == 30 || ipv4.Cidr == 31) {
			if peer, err := p2pPeer(ipv4.Network, ipv4.Cidr, assigns[0].IP); err == nil {
				m[lastKey+constants.IPKeyPeerSuffix] = []string{peer}
			}
		}
	}

	return m
}

// Networks returns the addresses stored under key, or nil when absent.
func (m IPMap) Networks(key string) []string {
	nets := m[strings.ToUpper(key)]
	if nets == nil {
		return nil
	}
	out := make([]string, len(nets))
	copy(out, nets)
	return out
}

// First returns the first address stored under key.
func (m IPMap) First(key string) (string, bool) {
	nets := m[strings.ToUpper(key)]
	if len(nets) == 0 {
		return "", false
	}
	return nets[0], true
}

func switchAssignments(assigns []models.Assignment) []models.Assignment {
	var out []models.Assignment
	for _, a := range assigns {
		for _, owner := range switchOwners {
			if strings.EqualFold(strings.TrimSpace(a.Name), owner) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// p2pPeer returns the other usable address of a /30 or /31 link.
func p2pPeer(network string, bits int, local string) (string, error) {
	ipnet, err := parseNetwork(network, bits)
	if err != nil {
		return "", err
	}
	localIP := net.ParseIP(local)
	if localIP == nil {
		return "", fmt.Errorf("malformed address %q", local)
	}

	first, last := cidr.AddressRange(ipnet)
	var candidates []net.IP
	switch bits {
	case 31:
		candidates = []net.IP{first, last}
	case 30:
		candidates = []net.IP{cidr.Inc(first), cidr.Dec(last)}
	default:
		return "", fmt.Errorf("not a point-to-point range: /%d", bits)
	}

	for _, c := range candidates {
		if !c.Equal(localIP) {
			return c.String(), nil
		}
	}
	return "", fmt.Errorf("no peer address for %s in %s/%d", local, network, bits)
}

// parseNetwork parses "network/bits" into a masked IPNet.
func parseNetwork(network string, bits int) (*net.IPNet, error) {
	_, ipnet, err := net.ParseCIDR(fmt.Sprintf("%s/%d", network, bits))
	if err != nil {
		return nil, fmt.Errorf("malformed network %s/%d: %w", network, bits, err)
	}
	return ipnet, nil
}

// bareIP strips the CIDR suffix from an address, if present.
func bareIP(addr string) string {
	if i := strings.IndexByte(addr, '/'); i >= 0 {
		return addr[:i]
	}
	return addr
}

// subnetOf returns the network containing a CIDR-qualified address,
// e.g. "10.0.0.1/30" -> "10.0.0.0/30".
func subnetOf(addr string) (string, error) {
	_, ipnet, err := net.ParseCIDR(addr)
	if err != nil {
		return "", fmt.Errorf("malformed address %q: %w", addr, err)
	}
	return ipnet.String(), nil
}

// firstUsable returns the first host address of a subnet.
func firstUsable(network string, bits int) (string, error) {
	ipnet, err := parseNetwork(network, bits)
	if err != nil {
		return "", err
	}
	first, _ := cidr.AddressRange(ipnet)
	if bits >= 31 {
		return first.String(), nil
	}
	return cidr.Inc(first).String(), nil
}

// broadcastMinusOne returns the address one below the subnet's broadcast
// address. This is the lab convention for the BMC switch-facing SVI, not a
// general networking rule.
func broadcastMinusOne(network string, bits int) (string, error) {
	ipnet, err := parseNetwork(network, bits)
	if err != nil {
		return "", err
	}
	if bits >= 31 {
		return "", fmt.Errorf("subnet %s/%d too small for broadcast-minus-one", network, bits)
	}
	_, last := cidr.AddressRange(ipnet)
	return cidr.Dec(last).String(), nil
}
