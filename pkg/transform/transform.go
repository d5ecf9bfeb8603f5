package transform

import (
	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/internal/constants"
)

// Computed holds the role-derived protocol priorities added to a record
// before rendering. Zero values mean "not applicable" for the role.
type Computed struct {
	HSRPPriority     int `yaml:"hsrp_priority,omitempty" json:"hsrp_priority,omitempty"`
	MLAGRolePriority int `yaml:"mlag_role_priority,omitempty" json:"mlag_role_priority,omitempty"`
	MSTPriority      int `yaml:"mst_priority,omitempty" json:"mst_priority,omitempty"`
}

// roleDefaults is never handed out directly; RoleDefaults returns copies.
var roleDefaults = map[string]Computed{
	constants.RoleTOR1: {
		HSRPPriority:     150,
		MLAGRolePriority: 1,
		MSTPriority:      8192,
	},
	constants.RoleTOR2: {
		HSRPPriority:     100,
		MLAGRolePriority: 32667,
		MSTPriority:      16384,
	},
	constants.RoleBMC: {
		MSTPriority: 32768,
	},
}

// RoleDefaults returns the computed values for a switch role.
func RoleDefaults(role string) (Computed, bool) {
	c, ok := roleDefaults[role]
	return c, ok
}
