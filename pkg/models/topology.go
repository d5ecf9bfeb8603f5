package models

// Topology is the declarative rack-topology document (lab input format).
type Topology struct {
	Version     string    `yaml:"version" json:"Version"`
	Description string    `yaml:"description" json:"Description"`
	Input       InputData `yaml:"input_data" json:"InputData"`
}

// InputData holds the environment, switch and supernet definitions.
type InputData struct {
	Environments []Environment      `yaml:"environments" json:"MainEnvData"`
	Switches     []SwitchDescriptor `yaml:"switches" json:"Switches"`
	Supernets    []Supernet         `yaml:"supernets" json:"Supernets"`
}

// Environment describes a deployment site and its cluster units.
type Environment struct {
	Site     string    `yaml:"site" json:"Site"`
	Clusters []Cluster `yaml:"clusters,omitempty" json:"Clusters,omitempty"`
}

// Cluster is one cluster unit with a node count and deployment pattern.
// Pattern is free text ("HyperConverged", "Switched", "Switchless") and is
// normalized by the converter.
type Cluster struct {
	Name      string `yaml:"name,omitempty" json:"Name,omitempty"`
	NodeCount int    `yaml:"node_count,omitempty" json:"NodeCount,omitempty"`
	Pattern   string `yaml:"deployment_pattern,omitempty" json:"DeploymentPattern,omitempty"`
}

// SwitchDescriptor identifies one physical switch in the topology.
// ASN may be zero when the switch does not speak BGP (e.g. BMC) and must
// carry the full 32-bit autonomous-system range.
type SwitchDescriptor struct {
	Make     string `yaml:"make" json:"Make"`
	Model    string `yaml:"model" json:"Model"`
	Role     string `yaml:"role" json:"Type"`
	Hostname string `yaml:"hostname" json:"Hostname"`
	ASN      uint32 `yaml:"asn,omitempty" json:"ASN,omitempty"`
	Firmware string `yaml:"firmware,omitempty" json:"Firmware,omitempty"`
}

// Supernet is a labeled IP block, optionally tied to a VLAN and to
// per-switch address assignments.
type Supernet struct {
	GroupName string      `yaml:"group_name" json:"GroupName"`
	Name      string      `yaml:"name" json:"Name"`
	IPv4      IPv4Network `yaml:"ipv4" json:"IPv4"`
}

// IPv4Network carries the addressing detail of a supernet. VLANID is zero
// for ranges that carry no VLAN (point-to-point links, loopbacks).
type IPv4Network struct {
	Name        string       `yaml:"name" json:"Name"`
	VLANID      int          `yaml:"vlan_id,omitempty" json:"VLANID,omitempty"`
	Cidr        int          `yaml:"cidr" json:"Cidr"`
	Network     string       `yaml:"network" json:"Network"`
	Gateway     string       `yaml:"gateway,omitempty" json:"Gateway,omitempty"`
	SwitchSVI   bool         `yaml:"switch_svi,omitempty" json:"SwitchSVI,omitempty"`
	Assignments []Assignment `yaml:"assignments,omitempty" json:"Assignment,omitempty"`
}

// Assignment binds an owner name ("Gateway", "TOR1", "TOR2") to an address
// inside the supernet.
type Assignment struct {
	Name string `yaml:"name" json:"Name"`
	IP   string `yaml:"ip" json:"IP"`
}

// SwitchByRole returns the first switch descriptor with the given role.
func (in *InputData) SwitchByRole(role string) (*SwitchDescriptor, bool) {
	for i := range in.Switches {
		if in.Switches[i].Role == role {
			return &in.Switches[i], true
		}
	}
	return nil, false
}

// Site returns the site identifier of the first environment entry.
func (in *InputData) Site() string {
	if len(in.Environments) == 0 {
		return ""
	}
	return in.Environments[0].Site
}

// DeploymentPattern returns the free-text pattern label of the first
// cluster unit that declares one.
func (in *InputData) DeploymentPattern() string {
	for _, env := range in.Environments {
		for _, cl := range env.Clusters {
			if cl.Pattern != "" {
				return cl.Pattern
			}
		}
	}
	return ""
}
