// Package metadata normalizes free-text switch metadata from lab
// submissions. Validation guides, it never blocks: obvious mistakes are
// auto-fixed and unknown vendors are flagged as contribution
// opportunities rather than rejected.
package metadata

import (
	"fmt"
	"sort"
	"strings"

	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/internal/constants"
	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/utils"
)

// Field statuses
const (
	StatusValid          = "valid"
	StatusAutoFixed      = "auto_fixed"
	StatusNeedsAttention = "needs_attention"
	StatusNewValue       = "new_value"
)

// fuzzyThreshold is the minimum bigram similarity accepted as a match.
const fuzzyThreshold = 0.6

// FieldResult is the outcome of normalizing a single metadata field.
type FieldResult struct {
	Field       string
	Original    string
	Normalized  string
	Status      string
	Message     string
	Suggestions []string
}

var vendorVariations = map[string][]string{
	constants.VendorDell: {
		"dell emc", "dell-emc", "dell_emc", "dellemc", "dell",
		"delltech", "dell technologies", "dell tech", "emc",
		"dellmc", "delemc", "del emc",
	},
	constants.VendorCisco: {
		"cisco", "cisco systems", "cisco-systems", "cisco_systems",
		"csco", "cisc", "ciscco", "cisoc",
	},
}

var firmwareVariations = map[string][]string{
	constants.FirmwareNXOS: {
		"nxos", "nx-os", "nx os", "nexus", "nexus-os", "nexus os",
		"cisco nxos", "cisco nx-os", "nxox", "nxso",
	},
	constants.FirmwareOS10: {
		"os10", "os-10", "os 10", "dnos10", "dnos-10", "dn-os10",
		"dell os10", "dellemc os10", "smartfabric os10", "os01",
	},
}

var roleVariations = map[string][]string{
	constants.RoleTOR1: {"tor1", "tor-1", "tor 1", "top-of-rack-1", "switch1", "sw1"},
	constants.RoleTOR2: {"tor2", "tor-2", "tor 2", "top-of-rack-2", "switch2", "sw2"},
	constants.RoleBMC:  {"bmc", "bmc-switch", "bmc switch", "baseboard", "management", "mgmt", "oob"},
}

var patternVariations = map[string][]string{
	constants.PatternFullyConverged: {
		"fully_converged", "fully-converged", "fullyconverged", "converged",
		"hyperconverged", "hyper-converged", "hyper converged", "fc",
	},
	constants.PatternSwitched:   {"switched", "switch", "switched-mode", "switched_mode"},
	constants.PatternSwitchless: {"switchless", "switch-less", "switch_less", "storage-only", "no-switch", "direct"},
}

// NormalizeVendor matches a free-text vendor make against known vendors.
func NormalizeVendor(value string) FieldResult {
	return normalizeField("vendor", value, vendorVariations)
}

// NormalizeFirmware matches a free-text firmware label.
func NormalizeFirmware(value string) FieldResult {
	return normalizeField("firmware", value, firmwareVariations)
}

// NormalizeRole matches a free-text switch role. Roles are a strict
// vocabulary: unmatched values need attention rather than becoming new
// values.
func NormalizeRole(value string) FieldResult {
	r := normalizeField("role", value, roleVariations)
	if r.Status == StatusNewValue {
		r.Status = StatusNeedsAttention
		r.Message = fmt.Sprintf("unknown role %q; expected one of %s", value, strings.Join(knownValues(roleVariations), ", "))
	}
	return r
}

// NormalizePattern matches a free-text deployment pattern label.
func NormalizePattern(value string) FieldResult {
	r := normalizeField("deployment_pattern", value, patternVariations)
	if r.Status == StatusNewValue {
		r.Status = StatusNeedsAttention
		r.Message = fmt.Sprintf("unknown deployment pattern %q", value)
	}
	return r
}

// Submission is the metadata declared alongside a submitted raw config.
// Empty fields were not declared and are skipped during review.
type Submission struct {
	Vendor   string
	Firmware string
	Role     string
	Pattern  string
}

// Review normalizes every declared field of a submission and appends a
// vendor/firmware finding when both are declared but do not belong
// together.
func Review(sub Submission) []FieldResult {
	var results []FieldResult
	if sub.Vendor != "" {
		results = append(results, NormalizeVendor(sub.Vendor))
	}
	if sub.Firmware != "" {
		results = append(results, NormalizeFirmware(sub.Firmware))
	}
	if sub.Role != "" {
		results = append(results, NormalizeRole(sub.Role))
	}
	if sub.Pattern != "" {
		results = append(results, NormalizePattern(sub.Pattern))
	}

	if sub.Vendor != "" && sub.Firmware != "" {
		vendor := NormalizeVendor(sub.Vendor).Normalized
		firmware := NormalizeFirmware(sub.Firmware).Normalized
		if !ConsistentPair(vendor, firmware) {
			results = append(results, FieldResult{
				Field:    "vendor_firmware",
				Original: sub.Vendor + "/" + sub.Firmware,
				Status:   StatusNeedsAttention,
				Message:  fmt.Sprintf("firmware %q does not belong to vendor %q", firmware, vendor),
			})
		}
	}
	return results
}

// ConsistentPair reports whether a vendor/firmware combination matches the
// known pairs (cisco/nxos, dellemc/os10). Unknown vendors are consistent
// by definition.
func ConsistentPair(vendor, firmware string) bool {
	expected, ok := constants.VendorFirmwareMap[strings.ToLower(strings.TrimSpace(vendor))]
	if !ok {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(firmware), expected)
}

func normalizeField(field, value string, variations map[string][]string) FieldResult {
	result := FieldResult{Field: field, Original: value}
	norm := utils.NormalizeToken(value)
	if norm == "" {
		result.Status = StatusNeedsAttention
		result.Message = field + " is empty"
		return result
	}

	// Exact canonical value
	for canonical := range variations {
		if strings.EqualFold(canonical, norm) {
			result.Normalized = canonical
			result.Status = StatusValid
			return result
		}
	}

	// Known variation
	for canonical, vars := range variations {
		if utils.Contains(vars, norm) {
			result.Normalized = canonical
			if strings.EqualFold(canonical, norm) {
				result.Status = StatusValid
			} else {
				result.Status = StatusAutoFixed
				result.Message = fmt.Sprintf("%q corrected to %q", value, canonical)
			}
			return result
		}
	}

	// Fuzzy match against every known spelling
	bestCanonical, bestScore := "", 0.0
	for canonical, vars := range variations {
		for _, candidate := range append([]string{canonical}, vars...) {
			if score := Similarity(norm, candidate); score > bestScore {
				bestCanonical, bestScore = canonical, score
			}
		}
	}
	if bestScore >= fuzzyThreshold {
		result.Normalized = bestCanonical
		result.Status = StatusAutoFixed
		result.Message = fmt.Sprintf("%q fuzzy-matched to %q (%.0f%%)", value, bestCanonical, bestScore*100)
		return result
	}

	result.Normalized = norm
	result.Status = StatusNewValue
	result.Message = fmt.Sprintf("%q is not a known %s; keeping as-is", value, field)
	result.Suggestions = knownValues(variations)
	return result
}

func knownValues(variations map[string][]string) []string {
	out := make([]string, 0, len(variations))
	for k := range variations {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Similarity computes the Dice coefficient over character bigrams,
// in [0, 1].
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ba, bb := bigrams(a), bigrams(b)
	if len(ba) == 0 || len(bb) == 0 {
		return 0
	}
	overlap := 0
	for bg, n := range ba {
		if m, ok := bb[bg]; ok {
			if m < n {
				overlap += m
			} else {
				overlap += n
			}
		}
	}
	return 2 * float64(overlap) / float64(len(a)-1+len(b)-1)
}

func bigrams(s string) map[string]int {
	out := make(map[string]int)
	for i := 0; i+2 <= len(s); i++ {
		out[s[i:i+2]]++
	}
	return out
}
