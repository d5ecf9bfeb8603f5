package transform

import (
	"strconv"
	"strings"

	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/internal/constants"
	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/models"
)

// Context is the flattened rendering context handed to templates. The
// has_* flags are the template guards for optional sections.
type Context map[string]interface{}

// BuildContext combines a standardized record with role-derived computed
// values, section existence flags, role/pattern helpers and filtered VLAN
// lists. The record itself is not modified.
func BuildContext(cfg *models.SwitchConfig) Context {
	ctx := Context{
		"switch":        cfg.Switch,
		"vlans":         cfg.VLANs,
		"interfaces":    cfg.Interfaces,
		"port_channels": cfg.PortChannels,
		"bgp":           cfg.BGP,
		"prefix_lists":  cfg.PrefixLists,
		"static_routes": cfg.StaticRoutes,
		"qos":           cfg.QoS,
	}

	if computed, ok := RoleDefaults(cfg.Switch.Role); ok {
		ctx["computed"] = computed
	}

	// Section existence flags
	ctx["has_bgp"] = cfg.BGP != nil
	ctx["has_static_routes"] = len(cfg.StaticRoutes) > 0
	ctx["has_prefix_lists"] = len(cfg.PrefixLists) > 0
	ctx["has_vlans"] = len(cfg.VLANs) > 0
	ctx["has_interfaces"] = len(cfg.Interfaces) > 0
	ctx["has_port_channels"] = len(cfg.PortChannels) > 0

	hasQoSInterfaces := false
	for _, intf := range cfg.Interfaces {
		if intf.QoS {
			hasQoSInterfaces = true
			break
		}
	}
	ctx["has_qos_interfaces"] = hasQoSInterfaces

	// Role helpers
	role := strings.ToUpper(cfg.Switch.Role)
	ctx["is_tor1"] = role == constants.RoleTOR1
	ctx["is_tor2"] = role == constants.RoleTOR2
	ctx["is_bmc"] = role == constants.RoleBMC

	// MLAG runs between the TOR pair only
	ctx["has_mlag"] = role == constants.RoleTOR1 || role == constants.RoleTOR2

	// Deployment pattern helpers
	pattern := cfg.Switch.DeploymentPattern
	if pattern == "" {
		pattern = constants.PatternFullyConverged
	}
	ctx["is_fully_converged"] = pattern == constants.PatternFullyConverged
	ctx["is_switched"] = pattern == constants.PatternSwitched
	ctx["is_switchless"] = pattern == constants.PatternSwitchless

	// Filtered VLAN lists
	storage := vlansByPurpose(cfg.VLANs, models.PurposeStorage1, models.PurposeStorage2)
	ctx["storage_vlans"] = storage
	ctx["management_vlans"] = vlansByPurpose(cfg.VLANs, models.PurposeManagement)
	ctx["compute_vlans"] = vlansByPurpose(cfg.VLANs, models.PurposeCompute)

	// Convenience strings
	ctx["vlan_ids_string"] = vlanIDsString(cfg.VLANs)
	ctx["storage_vlan_ids_string"] = vlanIDsString(storage)

	return ctx
}

func vlansByPurpose(vlans []models.VLAN, purposes ...models.VLANPurpose) []models.VLAN {
	out := make([]models.VLAN, 0, len(vlans))
	for _, v := range vlans {
		for _, p := range purposes {
			if v.Purpose == p {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

func vlanIDsString(vlans []models.VLAN) string {
	parts := make([]string, 0, len(vlans))
	for _, v := range vlans {
		if v.ID != 0 {
			parts = append(parts, strconv.Itoa(v.ID))
		}
	}
	return strings.Join(parts, ",")
}
