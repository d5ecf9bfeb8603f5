package convert

import (
	"fmt"
	"sort"
	"strings"

	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/internal/constants"
	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/models"
	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/utils"
)

// convertBMC builds the standardized record for the BMC switch. BMC
// switches are internal-only, so part of the configuration is hardcoded:
// the UNUSED/NATIVE VLANs come from a fixed table and the physical ports
// come verbatim from the vendor/model interface template.
func (c *Converter) convertBMC() (*models.SwitchConfig, error) {
	meta, _, err := c.buildSwitch(constants.RoleBMC)
	if err != nil {
		return nil, err
	}
	// BMC records carry no deployment pattern
	meta.DeploymentPattern = ""

	if c.templates == nil {
		return nil, fmt.Errorf("no interface template lookup configured for BMC conversion")
	}
	tmpl, err := c.templates(meta.Vendor, meta.Model)
	if err != nil {
		return nil, fmt.Errorf("loading BMC interface template for %s/%s: %w", meta.Vendor, meta.Model, err)
	}
	if tmpl == nil || len(tmpl.InterfaceTemplates.Common) == 0 {
		return nil, fmt.Errorf("no common interfaces in BMC template for %s/%s", meta.Vendor, meta.Model)
	}

	ifaces := make([]models.Interface, 0, len(tmpl.InterfaceTemplates.Common))
	for _, in := range tmpl.InterfaceTemplates.Common {
		ifaces = append(ifaces, in.Clone())
	}
	pcs := make([]models.PortChannel, 0, len(tmpl.PortChannels))
	for _, in := range tmpl.PortChannels {
		pcs = append(pcs, in.Clone())
	}

	return &models.SwitchConfig{
		Switch:       meta,
		VLANs:        c.buildBMCVLANs(),
		Interfaces:   ifaces,
		PortChannels: pcs,
		StaticRoutes: c.buildBMCStaticRoutes(),
	}, nil
}

// buildBMCVLANs starts from the hardcoded BMC VLANs (always copied, never
// the shared table itself) and appends BMC-relevant VLANs from the
// supernets, skipping zero and duplicate ids.
func (c *Converter) buildBMCVLANs() []models.VLAN {
	hardcoded := constants.BMCHardcodedVLANs()
	vlans := make([]models.VLAN, 0, len(hardcoded))
	seen := make(map[int]struct{}, len(hardcoded))

	for _, hv := range hardcoded {
		purpose := models.PurposeNative
		if hv.Shutdown {
			purpose = models.PurposeUnused
		}
		vlans = append(vlans, models.VLAN{
			ID:       hv.ID,
			Name:     hv.Name,
			Purpose:  purpose,
			Shutdown: hv.Shutdown,
		})
		seen[hv.ID] = struct{}{}
	}

	groups := constants.BMCRelevantGroups()
	for _, sn := range c.input.Supernets {
		group := strings.ToUpper(strings.TrimSpace(sn.GroupName))
		id := sn.IPv4.VLANID
		if id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		if !utils.HasAnyPrefix(group, groups) {
			continue
		}
		seen[id] = struct{}{}

		vlan := models.VLAN{ID: id, Name: vlanName(sn)}
		switch {
		case strings.HasPrefix(group, constants.RoleBMC):
			vlan.Purpose = models.PurposeManagement
		case strings.HasPrefix(group, constants.SymbolUnused):
			vlan.Purpose = models.PurposeUnused
		case strings.HasPrefix(group, constants.SymbolNative):
			vlan.Purpose = models.PurposeNative
		}

		// Management VLANs owning an SVI get the switch-facing address:
		// one below the subnet's broadcast address (lab convention).
		if strings.HasPrefix(group, constants.RoleBMC) && sn.IPv4.SwitchSVI {
			if gw := strings.TrimSpace(sn.IPv4.Gateway); gw != "" {
				cidrLen := sn.IPv4.Cidr
				if cidrLen == 0 {
					cidrLen = 24
				}
				ip, err := broadcastMinusOne(sn.IPv4.Network, cidrLen)
				if err != nil {
					ip = gw
				}
				vlan.Interface = &models.SVI{IP: ip, Cidr: cidrLen, MTU: constants.JumboMTU}
			}
		}

		vlans = append(vlans, vlan)
	}

	sort.Slice(vlans, func(i, j int) bool { return vlans[i].ID < vlans[j].ID })
	return vlans
}

// buildBMCStaticRoutes emits a single default route toward the first BMC
// group gateway. No BMC group or no gateway yields no routes.
func (c *Converter) buildBMCStaticRoutes() []models.StaticRoute {
	for _, sn := range c.input.Supernets {
		if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(sn.GroupName)), constants.RoleBMC) {
			continue
		}
		if gw := strings.TrimSpace(sn.IPv4.Gateway); gw != "" {
			return []models.StaticRoute{{
				Prefix:      "0.0.0.0/0",
				NextHop:     gw,
				Description: "BMC default gateway",
			}}
		}
	}
	return nil
}
