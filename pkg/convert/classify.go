package convert

import (
	"sort"
	"strconv"
	"strings"

	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/internal/constants"
	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/models"
	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/utils"
)

// ClassifyGroup maps a supernet group label to its symbolic VLAN-set token
// (M, C, S, UNUSED, NATIVE). Matching is case-insensitive over an ordered
// prefix table; the first matching prefix wins. Unclassified labels return
// ok=false and are excluded from symbolic resolution.
func ClassifyGroup(groupName string) (string, bool) {
	upper := strings.ToUpper(strings.TrimSpace(groupName))
	if upper == "" {
		return "", false
	}
	for _, rule := range constants.VLANGroupRules() {
		if strings.HasPrefix(upper, rule.Prefix) {
			return rule.Symbol, true
		}
	}
	return "", false
}

// StorageOwner reports which TOR a storage supernet is scoped to, either by
// a TOR1/TOR2 label suffix or by the range carrying assignments for exactly
// one TOR. Returns "" when the range is not scoped to a single TOR.
func StorageOwner(sn models.Supernet) string {
	for _, role := range []string{constants.RoleTOR1, constants.RoleTOR2} {
		suffix := strings.ToUpper(role)
		for _, label := range []string{sn.GroupName, sn.Name, sn.IPv4.Name} {
			if strings.HasSuffix(strings.ToUpper(strings.TrimSpace(label)), suffix) {
				return role
			}
		}
	}

	var hasTOR1, hasTOR2 bool
	for _, a := range sn.IPv4.Assignments {
		switch {
		case strings.EqualFold(a.Name, constants.RoleTOR1):
			hasTOR1 = true
		case strings.EqualFold(a.Name, constants.RoleTOR2):
			hasTOR2 = true
		}
	}
	switch {
	case hasTOR1 && !hasTOR2:
		return constants.RoleTOR1
	case hasTOR2 && !hasTOR1:
		return constants.RoleTOR2
	}
	return ""
}

// VLANSets holds the concrete VLAN ids behind each symbolic token. Storage
// ids are split per owning TOR under "S_TOR1"/"S_TOR2"; storage ranges not
// scoped to a single TOR stay under "S".
type VLANSets map[string][]int

// BuildVLANSets classifies every supernet and collects VLAN ids per
// symbolic token.
func BuildVLANSets(supernets []models.Supernet) VLANSets {
	sets := make(VLANSets)
	for _, sn := range supernets {
		symbol, ok := ClassifyGroup(sn.GroupName)
		if !ok {
			continue
		}
		id := sn.IPv4.VLANID
		if id == 0 {
			continue
		}
		key := symbol
		if symbol == constants.SymbolStorage {
			if owner := StorageOwner(sn); owner != "" {
				key = symbol + "_" + strings.ToUpper(owner)
			}
		}
		sets[key] = append(sets[key], id)
	}
	return sets
}

// Resolve substitutes symbolic tokens in a comma-separated VLAN set with
// the concrete ids resolved for the given switch role. Literal numeric
// tokens pass through unchanged; the storage token resolves to the ids
// owned by this TOR; unknown symbolic tokens are silently dropped. The
// output is deduplicated and sorted ascending. Empty input yields empty
// output.
func (s VLANSets) Resolve(role, tokens string) string {
	if strings.TrimSpace(tokens) == "" {
		return ""
	}

	var ids []int
	for _, tok := range strings.Split(tokens, ",") {
		tok = strings.ToUpper(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		if n, err := strconv.Atoi(tok); err == nil {
			ids = append(ids, n)
			continue
		}
		if tok == constants.SymbolStorage {
			ids = append(ids, s[tok+"_"+strings.ToUpper(role)]...)
			ids = append(ids, s[tok]...)
			continue
		}
		ids = append(ids, s[tok]...)
	}

	ids = utils.DedupeInts(ids)
	sort.Ints(ids)

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
