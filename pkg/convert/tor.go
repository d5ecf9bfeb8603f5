package convert

import (
	"fmt"
	"sort"
	"strings"

	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/internal/constants"
	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/models"
	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/utils"
)

// qosEnabled is a constant placeholder: QoS policy is not derived from the
// topology today.
const qosEnabled = true

// TemplateLookup resolves the static interface template for a vendor/model
// pair. It is required for BMC conversions; TOR conversions work without
// one (the record then carries no physical interfaces).
type TemplateLookup func(vendor, model string) (*models.InterfaceTemplate, error)

// Converter turns a topology document into standardized per-switch records.
// Conversion is a pure function of the topology snapshot: a Converter holds
// no mutable state across Convert calls and is safe for use by concurrent
// callers as long as the topology is not mutated underneath it.
type Converter struct {
	input     *models.InputData
	pattern   string
	ipMap     IPMap
	sets      VLANSets
	templates TemplateLookup
}

// NewConverter indexes the topology and normalizes the deployment pattern.
func NewConverter(topo *models.Topology, templates TemplateLookup) *Converter {
	in := &topo.Input
	return &Converter{
		input:     in,
		pattern:   NormalizeDeploymentPattern(in.DeploymentPattern()),
		ipMap:     BuildIPMap(in.Supernets),
		sets:      BuildVLANSets(in.Supernets),
		templates: templates,
	}
}

// Convert produces the standardized record for one switch role.
func Convert(topo *models.Topology, role string, templates TemplateLookup) (*models.SwitchConfig, error) {
	return NewConverter(topo, templates).Convert(role)
}

// Convert builds the record for the given role. The topology missing the
// role, or missing a required address range, is a fatal error: no partial
// record is returned.
func (c *Converter) Convert(role string) (*models.SwitchConfig, error) {
	switch {
	case strings.EqualFold(role, constants.RoleTOR1):
		return c.convertTOR(constants.RoleTOR1)
	case strings.EqualFold(role, constants.RoleTOR2):
		return c.convertTOR(constants.RoleTOR2)
	case strings.EqualFold(role, constants.RoleBMC):
		return c.convertBMC()
	}
	return nil, fmt.Errorf("unsupported switch role %q", role)
}

// IPMap exposes the symbolic address index built from the topology.
func (c *Converter) IPMap() IPMap { return c.ipMap }

// VLANSets exposes the symbolic VLAN sets built from the topology.
func (c *Converter) VLANSets() VLANSets { return c.sets }

// Pattern returns the canonical deployment pattern token.
func (c *Converter) Pattern() string { return c.pattern }

// convertTOR runs the TOR pipeline. The phases are ordered: VLAN and BGP
// construction read the metadata and ASN map produced first.
func (c *Converter) convertTOR(role string) (*models.SwitchConfig, error) {
	meta, asns, err := c.buildSwitch(role)
	if err != nil {
		return nil, err
	}

	vlans, err := c.buildVLANs(role)
	if err != nil {
		return nil, fmt.Errorf("building VLANs for %s: %w", role, err)
	}

	bgp, err := c.buildBGP(role, asns)
	if err != nil {
		return nil, fmt.Errorf("building BGP for %s: %w", role, err)
	}

	ifaces, pcs := c.buildTemplateInterfaces(meta, role)

	return &models.SwitchConfig{
		Switch:       meta,
		VLANs:        vlans,
		Interfaces:   ifaces,
		PortChannels: pcs,
		BGP:          bgp,
		PrefixLists:  defaultPrefixLists(),
		QoS:          qosEnabled,
	}, nil
}

// buildSwitch resolves the descriptor for role into normalized metadata and
// collects the ASN of every switch in the topology, keyed by role.
func (c *Converter) buildSwitch(role string) (models.SwitchInfo, map[string]uint32, error) {
	desc, ok := c.input.SwitchByRole(role)
	if !ok {
		return models.SwitchInfo{}, nil, fmt.Errorf("topology has no switch descriptor for role %s", role)
	}

	meta := models.SwitchInfo{
		Vendor:            strings.ToLower(strings.TrimSpace(desc.Make)),
		Model:             strings.ToLower(strings.TrimSpace(desc.Model)),
		Role:              role,
		Hostname:          strings.ToLower(strings.TrimSpace(desc.Hostname)),
		Version:           strings.ToLower(strings.TrimSpace(desc.Firmware)),
		Firmware:          InferFirmware(desc.Make),
		Site:              strings.ToLower(strings.TrimSpace(c.input.Site())),
		DeploymentPattern: c.pattern,
	}

	asns := make(map[string]uint32, len(c.input.Switches))
	for _, sw := range c.input.Switches {
		if sw.ASN != 0 {
			asns[sw.Role] = sw.ASN
		}
	}
	return meta, asns, nil
}

// buildVLANs walks every classified supernet and decides inclusion for this
// TOR. Management and compute ranges are always included; storage ranges
// follow the deployment pattern; unused/native ranges are always included
// with unused VLANs shut down.
func (c *Converter) buildVLANs(role string) ([]models.VLAN, error) {
	var vlans []models.VLAN
	seen := make(map[int]struct{})

	for _, sn := range c.input.Supernets {
		symbol, ok := ClassifyGroup(sn.GroupName)
		if !ok {
			continue
		}
		id := sn.IPv4.VLANID
		if id == 0 {
			continue
		}

		owner := ""
		if symbol == constants.SymbolStorage {
			owner = StorageOwner(sn)
			if !c.includeStorage(role, owner) {
				continue
			}
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		vlan := models.VLAN{
			ID:       id,
			Name:     vlanName(sn),
			Purpose:  vlanPurpose(symbol, owner),
			Shutdown: symbol == constants.SymbolUnused,
		}

		if addr, ok := assignmentFor(sn.IPv4.Assignments, role); ok {
			svi := &models.SVI{IP: addr, Cidr: sn.IPv4.Cidr, MTU: constants.JumboMTU}
			if gw := strings.TrimSpace(sn.IPv4.Gateway); gw != "" {
				svi.Redundancy = &models.Redundancy{
					Type:      constants.RedundancyHSRP,
					Group:     id,
					Priority:  redundancyPriority(role),
					VirtualIP: gw,
				}
			}
			vlan.Interface = svi
		}

		vlans = append(vlans, vlan)
	}

	sort.Slice(vlans, func(i, j int) bool { return vlans[i].ID < vlans[j].ID })
	return vlans, nil
}

// includeStorage implements the deployment-pattern-dependent storage VLAN
// exposure: under "switched" each TOR carries only its own storage range;
// fully-converged and switchless deployments carry both.
func (c *Converter) includeStorage(role, owner string) bool {
	if c.pattern != constants.PatternSwitched {
		return true
	}
	return owner == "" || strings.EqualFold(owner, role)
}

// buildBGP assembles the peering plan: both border eBGP sessions, the
// inter-TOR iBGP session, and an optional multihop MUX session. A missing
// MUX ASN simply omits the MUX neighbor; missing loopback or border
// point-to-point ranges are fatal.
func (c *Converter) buildBGP(role string, asns map[string]uint32) (*models.BGPConfig, error) {
	localASN := asns[role]
	if localASN == 0 {
		return nil, fmt.Errorf("switch %s has no ASN", role)
	}

	loopback, ok := c.ipMap.First(constants.IPKeyLoopback + "_" + role)
	if !ok {
		return nil, fmt.Errorf("loopback address of %s not found in topology", role)
	}

	borderASN := asns[constants.RoleBorder1]
	if borderASN == 0 {
		borderASN = asns[constants.RoleBorder2]
	}
	if borderASN == 0 {
		return nil, fmt.Errorf("no border switch ASN in topology")
	}

	var neighbors []models.BGPNeighbor
	var networks []string

	for _, border := range []struct{ key, role, desc string }{
		{constants.IPKeyP2PBorder1, constants.RoleBorder1, "TO_BORDER1"},
		{constants.IPKeyP2PBorder2, constants.RoleBorder2, "TO_BORDER2"},
	} {
		local, ok := c.ipMap.First(border.key + "_" + role)
		if !ok {
			return nil, fmt.Errorf("point-to-point range %s_%s not found in topology", border.key, role)
		}
		peer, err := c.borderPeerAddress(border.key, role, border.role)
		if err != nil {
			return nil, err
		}
		subnet, err := subnetOf(local)
		if err != nil {
			return nil, err
		}
		neighbors = append(neighbors, models.BGPNeighbor{
			IP:          peer,
			Description: border.desc,
			RemoteASN:   borderASN,
		})
		networks = append(networks, subnet)
	}

	ibgpIP, err := c.ibgpPeerAddress(role)
	if err != nil {
		return nil, err
	}
	neighbors = append(neighbors, models.BGPNeighbor{
		IP:          ibgpIP,
		Description: "IBGP_PEER",
		RemoteASN:   localASN,
	})

	if muxASN := asns[constants.RoleMUX]; muxASN != 0 {
		if ip, ok := c.muxNeighborAddress(); ok {
			neighbors = append(neighbors, models.BGPNeighbor{
				IP:            ip,
				Description:   "TO_MUX",
				RemoteASN:     muxASN,
				EBGPMultihop:  constants.MUXEBGPMultihop,
				PrefixListOut: constants.DefaultRouteListName,
			})
		}
	}

	loopSubnet, err := subnetOf(loopback)
	if err != nil {
		return nil, err
	}
	networks = append(networks, loopSubnet)

	return &models.BGPConfig{
		ASN:       localASN,
		RouterID:  bareIP(loopback),
		Neighbors: neighbors,
		Networks:  utils.DedupeStrings(networks),
	}, nil
}

// borderPeerAddress finds the border side of a TOR-to-border link: the
// derived peer key of a single-assignment range, or the border's own
// assignment when the range assigns both ends.
func (c *Converter) borderPeerAddress(key, role, borderRole string) (string, error) {
	if addr, ok := c.ipMap.First(key + "_" + role + constants.IPKeyPeerSuffix); ok {
		return addr, nil
	}
	owner := strings.ToUpper(borderRole)
	for _, k := range []string{key + "_" + role + "_" + owner, key + "_" + owner} {
		if addr, ok := c.ipMap.First(k); ok {
			return bareIP(addr), nil
		}
	}
	return "", fmt.Errorf("peer address for %s_%s not found in topology", key, role)
}

// ibgpPeerAddress finds the peer-TOR side of the inter-TOR link, either
// from the peer's own assignment or from the derived peer key of a
// single-assignment range.
func (c *Converter) ibgpPeerAddress(role string) (string, error) {
	peerRole := constants.RoleTOR2
	if role == constants.RoleTOR2 {
		peerRole = constants.RoleTOR1
	}
	if addr, ok := c.ipMap.First(constants.IPKeyP2PIBGP + "_" + peerRole); ok {
		return bareIP(addr), nil
	}
	if addr, ok := c.ipMap.First(constants.IPKeyP2PIBGP + "_" + role + constants.IPKeyPeerSuffix); ok {
		return bareIP(addr), nil
	}
	return "", fmt.Errorf("inter-TOR iBGP range not found in topology")
}

// muxNeighborAddress derives the MUX peering address from the compute pool
// supernet: its declared gateway, or the first usable address of the pool.
func (c *Converter) muxNeighborAddress() (string, bool) {
	for _, sn := range c.input.Supernets {
		if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(sn.GroupName)), "HNVPA") {
			continue
		}
		if gw := strings.TrimSpace(sn.IPv4.Gateway); gw != "" {
			return gw, true
		}
		if ip, err := firstUsable(sn.IPv4.Network, sn.IPv4.Cidr); err == nil {
			return ip, true
		}
	}
	return "", false
}

// buildTemplateInterfaces loads the optional TOR interface template,
// resolves symbolic VLAN tokens per role and attaches the inter-TOR link
// address to the iBGP port-channel. Template absence is not an error.
func (c *Converter) buildTemplateInterfaces(meta models.SwitchInfo, role string) ([]models.Interface, []models.PortChannel) {
	if c.templates == nil {
		return nil, nil
	}
	tmpl, err := c.templates(meta.Vendor, meta.Model)
	if err != nil || tmpl == nil {
		return nil, nil
	}

	ifaces := make([]models.Interface, 0, len(tmpl.InterfaceTemplates.Common))
	for _, in := range tmpl.InterfaceTemplates.Common {
		iface := in.Clone()
		iface.AccessVLAN = c.sets.Resolve(role, iface.AccessVLAN)
		iface.NativeVLAN = c.sets.Resolve(role, iface.NativeVLAN)
		iface.TaggedVLANs = c.sets.Resolve(role, iface.TaggedVLANs)
		ifaces = append(ifaces, iface)
	}

	pcs := make([]models.PortChannel, 0, len(tmpl.PortChannels))
	for _, in := range tmpl.PortChannels {
		pc := in.Clone()
		pc.NativeVLAN = c.sets.Resolve(role, pc.NativeVLAN)
		pc.TaggedVLANs = c.sets.Resolve(role, pc.TaggedVLANs)
		if strings.Contains(strings.ToUpper(pc.Description), constants.IPKeyP2PIBGP) {
			if addr, ok := c.ipMap.First(constants.IPKeyP2PIBGP + "_" + role); ok {
				pc.IP = addr
			}
		}
		pcs = append(pcs, pc)
	}

	return ifaces, pcs
}

// defaultPrefixLists returns the DefaultRoute filter emitted for every TOR,
// independent of topology content. A fresh copy is built per call.
func defaultPrefixLists() map[string][]models.PrefixRule {
	return map[string][]models.PrefixRule{
		constants.DefaultRouteListName: {
			{Seq: 10, Action: "permit", Prefix: "0.0.0.0/0"},
			{Seq: 20, Action: "deny", Prefix: "0.0.0.0/0 le 32"},
		},
	}
}

// InferFirmware derives the firmware family from a vendor make string.
// Unknown vendors pass through lower-cased ("new vendor welcome").
func InferFirmware(make string) string {
	m := strings.ToLower(strings.TrimSpace(make))
	if fw, ok := constants.VendorFirmwareMap[m]; ok {
		return fw
	}
	return m
}

// NormalizeDeploymentPattern maps free-text pattern labels to the canonical
// internal token. "HyperConverged" (the customer-facing label) maps to
// "fully_converged"; unrecognized labels default to fully_converged.
func NormalizeDeploymentPattern(raw string) string {
	s := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(utils.NormalizeToken(raw))
	switch s {
	case constants.PatternHyperConverged, "fullyconverged":
		return constants.PatternFullyConverged
	case constants.PatternSwitched:
		return constants.PatternSwitched
	case constants.PatternSwitchless:
		return constants.PatternSwitchless
	}
	return constants.PatternFullyConverged
}

func redundancyPriority(role string) int {
	if role == constants.RoleTOR1 {
		return constants.RedundancyPriorityActive
	}
	return constants.RedundancyPriorityStandby
}

func vlanPurpose(symbol, owner string) models.VLANPurpose {
	switch symbol {
	case constants.SymbolManagement:
		return models.PurposeManagement
	case constants.SymbolCompute:
		return models.PurposeCompute
	case constants.SymbolStorage:
		if owner == constants.RoleTOR2 {
			return models.PurposeStorage2
		}
		return models.PurposeStorage1
	case constants.SymbolUnused:
		return models.PurposeUnused
	case constants.SymbolNative:
		return models.PurposeNative
	}
	return ""
}

func vlanName(sn models.Supernet) string {
	if sn.IPv4.Name != "" {
		return sn.IPv4.Name
	}
	if sn.Name != "" {
		return sn.Name
	}
	return fmt.Sprintf("VLAN_%d", sn.IPv4.VLANID)
}

func assignmentFor(assigns []models.Assignment, role string) (string, bool) {
	for _, a := range assigns {
		if strings.EqualFold(strings.TrimSpace(a.Name), role) {
			return a.IP, true
		}
	}
	return "", false
}
