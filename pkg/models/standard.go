package models

// VLANPurpose classifies what a VLAN carries in the standardized record.
type VLANPurpose string

const (
	PurposeManagement VLANPurpose = "management"
	PurposeCompute    VLANPurpose = "compute"
	PurposeStorage1   VLANPurpose = "storage_1"
	PurposeStorage2   VLANPurpose = "storage_2"
	PurposeUnused     VLANPurpose = "unused"
	PurposeNative     VLANPurpose = "native"
)

// SwitchConfig is the standardized, vendor-agnostic per-switch record
// produced by the converter and consumed by the renderer and validator.
type SwitchConfig struct {
	Switch       SwitchInfo              `yaml:"switch" json:"switch"`
	VLANs        []VLAN                  `yaml:"vlans" json:"vlans"`
	Interfaces   []Interface             `yaml:"interfaces,omitempty" json:"interfaces,omitempty"`
	PortChannels []PortChannel           `yaml:"port_channels,omitempty" json:"port_channels,omitempty"`
	BGP          *BGPConfig              `yaml:"bgp,omitempty" json:"bgp,omitempty"`
	PrefixLists  map[string][]PrefixRule `yaml:"prefix_lists,omitempty" json:"prefix_lists,omitempty"`
	StaticRoutes []StaticRoute           `yaml:"static_routes,omitempty" json:"static_routes,omitempty"`
	QoS          bool                    `yaml:"qos" json:"qos"`
}

// SwitchInfo is the normalized switch metadata (all fields lower-cased).
// Version is the vendor-reported firmware release; Firmware is the
// firmware family inferred from the vendor (nxos, os10) and selects the
// template set.
type SwitchInfo struct {
	Vendor            string `yaml:"vendor" json:"vendor"`
	Model             string `yaml:"model" json:"model"`
	Role              string `yaml:"role" json:"role"`
	Hostname          string `yaml:"hostname" json:"hostname"`
	Version           string `yaml:"version,omitempty" json:"version,omitempty"`
	Firmware          string `yaml:"firmware" json:"firmware"`
	Site              string `yaml:"site,omitempty" json:"site,omitempty"`
	DeploymentPattern string `yaml:"deployment_pattern,omitempty" json:"deployment_pattern,omitempty"`
}

// VLAN is one VLAN of the standardized record, optionally with an SVI.
type VLAN struct {
	ID        int         `yaml:"vlan_id" json:"vlan_id"`
	Name      string      `yaml:"name" json:"name"`
	Purpose   VLANPurpose `yaml:"purpose,omitempty" json:"purpose,omitempty"`
	Shutdown  bool        `yaml:"shutdown,omitempty" json:"shutdown,omitempty"`
	Interface *SVI        `yaml:"interface,omitempty" json:"interface,omitempty"`
}

// SVI is a VLAN-attached Layer-3 interface.
type SVI struct {
	IP         string      `yaml:"ip" json:"ip"`
	Cidr       int         `yaml:"cidr" json:"cidr"`
	MTU        int         `yaml:"mtu" json:"mtu"`
	Redundancy *Redundancy `yaml:"redundancy,omitempty" json:"redundancy,omitempty"`
}

// Redundancy carries the first-hop redundancy parameters of an SVI.
type Redundancy struct {
	Type      string `yaml:"type" json:"type"`
	Group     int    `yaml:"group" json:"group"`
	Priority  int    `yaml:"priority" json:"priority"`
	VirtualIP string `yaml:"virtual_ip" json:"virtual_ip"`
}

// BGPConfig is the per-switch BGP peering plan.
type BGPConfig struct {
	ASN       uint32        `yaml:"asn" json:"asn"`
	RouterID  string        `yaml:"router_id" json:"router_id"`
	Neighbors []BGPNeighbor `yaml:"neighbors" json:"neighbors"`
	Networks  []string      `yaml:"networks" json:"networks"`
}

// BGPNeighbor is one BGP peer. RemoteASN is 32-bit; EBGPMultihop is zero
// when the session is directly connected. PrefixListIn/Out name entries of
// the record's prefix_lists map.
type BGPNeighbor struct {
	IP            string `yaml:"ip" json:"ip"`
	Description   string `yaml:"description" json:"description"`
	RemoteASN     uint32 `yaml:"remote_asn" json:"remote_asn"`
	EBGPMultihop  int    `yaml:"ebgp_multihop,omitempty" json:"ebgp_multihop,omitempty"`
	PrefixListIn  string `yaml:"prefix_list_in,omitempty" json:"prefix_list_in,omitempty"`
	PrefixListOut string `yaml:"prefix_list_out,omitempty" json:"prefix_list_out,omitempty"`
}

// PrefixRule is one entry of a named prefix list.
type PrefixRule struct {
	Seq    int    `yaml:"seq" json:"seq"`
	Action string `yaml:"action" json:"action"`
	Prefix string `yaml:"prefix" json:"prefix"`
}

// StaticRoute is a static route entry (BMC default gateway today).
type StaticRoute struct {
	Prefix      string `yaml:"prefix" json:"prefix"`
	NextHop     string `yaml:"next_hop" json:"next_hop"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Interface is a physical interface definition, sourced from a
// vendor/model interface template. Either Intf or StartIntf/EndIntf is
// set depending on whether the entry covers a single port or a range.
type Interface struct {
	Name        string `yaml:"name" json:"name"`
	Intf        string `yaml:"intf,omitempty" json:"intf,omitempty"`
	StartIntf   string `yaml:"start_intf,omitempty" json:"start_intf,omitempty"`
	EndIntf     string `yaml:"end_intf,omitempty" json:"end_intf,omitempty"`
	Type        string `yaml:"type,omitempty" json:"type,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	AccessVLAN  string `yaml:"access_vlan,omitempty" json:"access_vlan,omitempty"`
	NativeVLAN  string `yaml:"native_vlan,omitempty" json:"native_vlan,omitempty"`
	TaggedVLANs string `yaml:"tagged_vlans,omitempty" json:"tagged_vlans,omitempty"`
	IP          string `yaml:"ip,omitempty" json:"ip,omitempty"`
	MTU         int    `yaml:"mtu,omitempty" json:"mtu,omitempty"`
	QoS         bool   `yaml:"qos,omitempty" json:"qos,omitempty"`
}

// PortChannel is an aggregated link definition from an interface template.
type PortChannel struct {
	ID          int      `yaml:"id" json:"id"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Type        string   `yaml:"type,omitempty" json:"type,omitempty"`
	NativeVLAN  string   `yaml:"native_vlan,omitempty" json:"native_vlan,omitempty"`
	TaggedVLANs string   `yaml:"tagged_vlans,omitempty" json:"tagged_vlans,omitempty"`
	Members     []string `yaml:"members,omitempty" json:"members,omitempty"`
	IP          string   `yaml:"ip,omitempty" json:"ip,omitempty"`
	QoS         bool     `yaml:"qos,omitempty" json:"qos,omitempty"`
}

// InterfaceTemplate is the static vendor/model document describing a
// switch's fixed physical ports and port-channels.
type InterfaceTemplate struct {
	InterfaceTemplates InterfaceTemplateSet `yaml:"interface_templates" json:"interface_templates"`
	PortChannels       []PortChannel        `yaml:"port_channels,omitempty" json:"port_channels,omitempty"`
}

// InterfaceTemplateSet groups the template's interface sections.
type InterfaceTemplateSet struct {
	Common []Interface `yaml:"common" json:"common"`
}

// Clone returns a deep copy of the interface.
func (i Interface) Clone() Interface {
	return i
}

// Clone returns a deep copy of the port-channel, including its members.
func (pc PortChannel) Clone() PortChannel {
	out := pc
	out.Members = append([]string(nil), pc.Members...)
	return out
}

// Clone returns a deep copy of the VLAN, including any SVI and redundancy.
func (v VLAN) Clone() VLAN {
	out := v
	if v.Interface != nil {
		svi := *v.Interface
		if v.Interface.Redundancy != nil {
			red := *v.Interface.Redundancy
			svi.Redundancy = &red
		}
		out.Interface = &svi
	}
	return out
}
