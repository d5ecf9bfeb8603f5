package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/models"
)

// Error is one validation finding.
type Error struct {
	Path    string
	Message string
	Type    string
}

func (e Error) String() string {
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Path, e.Message)
}

// Result collects validation findings for one record.
type Result struct {
	Errors []Error
}

// Add appends a finding.
func (r *Result) Add(path, message, errType string) {
	r.Errors = append(r.Errors, Error{Path: path, Message: message, Type: errType})
}

// IsValid reports whether no findings were collected.
func (r *Result) IsValid() bool {
	return len(r.Errors) == 0
}

func (r *Result) String() string {
	if r.IsValid() {
		return "Validation successful"
	}
	lines := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		lines[i] = e.String()
	}
	return strings.Join(lines, "\n")
}

// Check validates a standardized record: structural requirements first,
// then cross-references (every VLAN referenced by an interface or
// port-channel must exist in the VLAN list, port-channels must have
// members, BGP neighbor prefix-list names must name defined lists).
// Cross-reference checks run only when the structure is sound.
func Check(cfg *models.SwitchConfig) *Result {
	result := &Result{}

	checkStructure(cfg, result)
	if result.IsValid() {
		checkCrossReferences(cfg, result)
	}
	return result
}

func checkStructure(cfg *models.SwitchConfig, result *Result) {
	if cfg.Switch.Vendor == "" {
		result.Add("switch.vendor", "vendor is required", "schema")
	}
	if cfg.Switch.Hostname == "" {
		result.Add("switch.hostname", "hostname is required", "schema")
	}
	if cfg.Switch.Role == "" {
		result.Add("switch.role", "role is required", "schema")
	}

	seen := make(map[int]struct{}, len(cfg.VLANs))
	lastID := 0
	for i, v := range cfg.VLANs {
		path := fmt.Sprintf("vlans[%d]", i)
		if v.ID < 1 || v.ID > 4094 {
			result.Add(path+".vlan_id", fmt.Sprintf("VLAN id %d out of range", v.ID), "schema")
		}
		if _, dup := seen[v.ID]; dup {
			result.Add(path+".vlan_id", fmt.Sprintf("duplicate VLAN id %d", v.ID), "schema")
		}
		seen[v.ID] = struct{}{}
		if v.ID < lastID {
			result.Add(path, "VLAN list is not sorted by id", "schema")
		}
		lastID = v.ID
	}

	if cfg.BGP != nil {
		if cfg.BGP.ASN == 0 {
			result.Add("bgp.asn", "local ASN is required", "schema")
		}
		if cfg.BGP.RouterID == "" {
			result.Add("bgp.router_id", "router-id is required", "schema")
		}
	}
}

func checkCrossReferences(cfg *models.SwitchConfig, result *Result) {
	vlanIDs := make(map[string]struct{}, len(cfg.VLANs))
	for _, v := range cfg.VLANs {
		vlanIDs[strconv.Itoa(v.ID)] = struct{}{}
	}

	for i, intf := range cfg.Interfaces {
		path := fmt.Sprintf("interfaces[%d]", i)
		checkVLANRef(vlanIDs, intf.AccessVLAN, path+".access_vlan", result)
		checkVLANRef(vlanIDs, intf.NativeVLAN, path+".native_vlan", result)
		checkVLANList(vlanIDs, intf.TaggedVLANs, path+".tagged_vlans", result)
	}

	for i, pc := range cfg.PortChannels {
		path := fmt.Sprintf("port_channels[%d]", i)
		checkVLANRef(vlanIDs, pc.NativeVLAN, path+".native_vlan", result)
		checkVLANList(vlanIDs, pc.TaggedVLANs, path+".tagged_vlans", result)
		if len(pc.Members) == 0 {
			result.Add(path+".members", "port-channel must have at least one member", "cross_reference")
		}
	}

	if cfg.BGP != nil {
		for i, n := range cfg.BGP.Neighbors {
			path := fmt.Sprintf("bgp.neighbors[%d]", i)
			checkPrefixListRef(cfg.PrefixLists, n.PrefixListIn, path+".prefix_list_in", result)
			checkPrefixListRef(cfg.PrefixLists, n.PrefixListOut, path+".prefix_list_out", result)
		}
	}
}

func checkPrefixListRef(lists map[string][]models.PrefixRule, ref, path string, result *Result) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return
	}
	if _, ok := lists[ref]; !ok {
		result.Add(path, fmt.Sprintf("referenced prefix list %s does not exist", ref), "cross_reference")
	}
}

func checkVLANRef(vlanIDs map[string]struct{}, ref, path string, result *Result) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return
	}
	if _, ok := vlanIDs[ref]; !ok {
		result.Add(path, fmt.Sprintf("referenced VLAN %s does not exist", ref), "cross_reference")
	}
}

func checkVLANList(vlanIDs map[string]struct{}, refs, path string, result *Result) {
	if strings.TrimSpace(refs) == "" {
		return
	}
	for _, ref := range strings.Split(refs, ",") {
		checkVLANRef(vlanIDs, ref, path, result)
	}
}
