package constants

// Switch vendors
const (
	VendorCisco = "cisco"
	VendorDell  = "dellemc"
)

// Firmware identifiers
const (
	FirmwareNXOS = "nxos"
	FirmwareOS10 = "os10"
)

// Switch roles
const (
	RoleTOR1    = "TOR1"
	RoleTOR2    = "TOR2"
	RoleBMC     = "BMC"
	RoleBorder1 = "Border1"
	RoleBorder2 = "Border2"
	RoleMUX     = "MUX"
)

// Deployment patterns. HyperConverged is the customer-facing label; the
// internal key is fully_converged and downstream templates select on it.
const (
	PatternHyperConverged = "hyperconverged"
	PatternFullyConverged = "fully_converged"
	PatternSwitched       = "switched"
	PatternSwitchless     = "switchless"
)

// Network defaults
const (
	JumboMTU = 9216
)

// First-hop redundancy
const (
	RedundancyHSRP            = "hsrp"
	RedundancyVRRP            = "vrrp"
	RedundancyPriorityActive  = 150
	RedundancyPriorityStandby = 140
)

// Symbolic VLAN-set tokens resolved per switch role
const (
	SymbolManagement = "M"
	SymbolCompute    = "C"
	SymbolStorage    = "S"
	SymbolUnused     = "UNUSED"
	SymbolNative     = "NATIVE"
)

// IP map key prefixes, assembled at runtime with the owning switch role,
// e.g. "P2P_BORDER1_TOR1" or "LOOPBACK0_TOR2"
const (
	IPKeyP2PBorder1 = "P2P_BORDER1"
	IPKeyP2PBorder2 = "P2P_BORDER2"
	IPKeyLoopback   = "LOOPBACK0"
	IPKeyP2PIBGP    = "P2P_IBGP"

	// Suffix for the derived switch-to-peer key of a point-to-point range
	IPKeyPeerSuffix = "_PEER"
)

// BGP
const (
	DefaultRouteListName = "DefaultRoute"
	MUXEBGPMultihop      = 3
)

// VendorFirmwareMap maps a vendor make to its firmware identifier
var VendorFirmwareMap = map[string]string{
	VendorCisco: FirmwareNXOS,
	VendorDell:  FirmwareOS10,
}

// GroupRule maps a supernet group-name prefix to a symbolic VLAN-set token.
type GroupRule struct {
	Prefix string
	Symbol string
}

// vlanGroupRules is evaluated in order; the first matching prefix wins.
var vlanGroupRules = []GroupRule{
	{"HNVPA", SymbolCompute},
	{"INFRA", SymbolManagement},
	{"TENANT", SymbolCompute},
	{"L3FORWARD", SymbolCompute},
	{"STORAGE", SymbolStorage},
	{"UNUSED", SymbolUnused},
	{"NATIVE", SymbolNative},
}

// VLANGroupRules returns a copy of the ordered classification table so
// callers can never mutate the shared definition.
func VLANGroupRules() []GroupRule {
	rules := make([]GroupRule, len(vlanGroupRules))
	copy(rules, vlanGroupRules)
	return rules
}

// HardcodedVLAN is a fixed VLAN definition owned by this package.
type HardcodedVLAN struct {
	ID       int
	Name     string
	Shutdown bool
}

// BMC switches are internal-only; these VLANs are hardcoded for simplicity.
//
// VLAN 2 (UNUSED_VLAN): unused ports stay parked on a dead-end VLAN.
// VLAN 99 (NATIVE_VLAN): native/untagged VLAN on the To_TORs trunk; must
// match native_vlan in the BMC interface templates.
var bmcHardcodedVLANs = []HardcodedVLAN{
	{ID: 2, Name: "UNUSED_VLAN", Shutdown: true},
	{ID: 99, Name: "NATIVE_VLAN"},
}

// BMCHardcodedVLANs returns a fresh copy of the hardcoded BMC VLAN table.
func BMCHardcodedVLANs() []HardcodedVLAN {
	vlans := make([]HardcodedVLAN, len(bmcHardcodedVLANs))
	copy(vlans, bmcHardcodedVLANs)
	return vlans
}

// bmcRelevantGroups lists the supernet group-name prefixes that produce
// VLANs on the BMC switch.
var bmcRelevantGroups = []string{"BMC", "UNUSED", "NATIVE"}

// BMCRelevantGroups returns a copy of the BMC group-prefix allow list.
func BMCRelevantGroups() []string {
	groups := make([]string, len(bmcRelevantGroups))
	copy(groups, bmcRelevantGroups)
	return groups
}
