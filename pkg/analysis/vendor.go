// Package analysis performs reverse analysis of submitted raw switch
// configurations: vendor/firmware sniffing and section splitting.
package analysis

import (
	"regexp"

	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/internal/constants"
)

// Detection is everything the sniffer could identify in a raw config.
type Detection struct {
	Vendor   string
	Firmware string
	Model    string
	Hostname string
	Detected bool
}

type vendorPattern struct {
	re     *regexp.Regexp
	vendor string
}

// vendorPatterns score vendor-specific syntax; the vendor with the most
// hits wins.
var vendorPatterns = []vendorPattern{
	// Dell EMC OS10
	{regexp.MustCompile(`(?mi)^\s*ztd cancel`), constants.VendorDell},
	{regexp.MustCompile(`(?mi)^\s*vlt domain`), constants.VendorDell},
	{regexp.MustCompile(`(?mi)^\s*vlt-port-channel`), constants.VendorDell},
	{regexp.MustCompile(`(?mi)! Vendor:\s*dellemc`), constants.VendorDell},
	{regexp.MustCompile(`(?mi)! Firmware:\s*os10`), constants.VendorDell},
	{regexp.MustCompile(`(?m)^\s*interface vlan\d+`), constants.VendorDell},
	{regexp.MustCompile(`(?m)^\s*interface [Ee]thernet\s+\d+/\d+/\d+`), constants.VendorDell},

	// Cisco NX-OS
	{regexp.MustCompile(`(?mi)^\s*feature vpc`), constants.VendorCisco},
	{regexp.MustCompile(`(?mi)^\s*feature bgp`), constants.VendorCisco},
	{regexp.MustCompile(`(?mi)^\s*feature interface-vlan`), constants.VendorCisco},
	{regexp.MustCompile(`(?mi)^\s*vpc domain`), constants.VendorCisco},
	{regexp.MustCompile(`(?mi)^\s*vpc peer-link`), constants.VendorCisco},
	{regexp.MustCompile(`(?m)! Make:\s*[Cc]isco`), constants.VendorCisco},
	{regexp.MustCompile(`(?m)^\s*interface Ethernet\d+/\d+$`), constants.VendorCisco},
	{regexp.MustCompile(`(?m)^\s*interface port-channel\d+$`), constants.VendorCisco},
	{regexp.MustCompile(`(?mi)^\s*no feature telnet`), constants.VendorCisco},
}

var modelPatterns = map[string][]*regexp.Regexp{
	constants.VendorDell: {
		regexp.MustCompile(`(?i)! Model:\s*(\S+)`),
		regexp.MustCompile(`(?i)(S5248F?-ON)`),
		regexp.MustCompile(`(?i)(S5232F?-ON)`),
		regexp.MustCompile(`(?i)(S5224F?-ON)`),
		regexp.MustCompile(`(?i)(S4148F?-ON)`),
		regexp.MustCompile(`(?i)(S4128F?-ON)`),
	},
	constants.VendorCisco: {
		regexp.MustCompile(`(?i)! Model:\s*(\S+)`),
		regexp.MustCompile(`(93180[A-Z]{2,3}-[A-Z0-9]+)`),
		regexp.MustCompile(`(9336[A-Z]{1,2}-[A-Z0-9]+)`),
		regexp.MustCompile(`(9364[A-Z]{1,2}-[A-Z0-9]+)`),
	},
}

var hostnamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^hostname\s+(\S+)`),
	regexp.MustCompile(`(?m)! Name:\s*(\S+)`),
	regexp.MustCompile(`(?m)switchname\s+(\S+)`),
}

// DetectVendor scores the config text against both vendors' syntax
// patterns and returns the winner with its firmware, or empty strings
// when nothing matches or the score is tied.
func DetectVendor(configText string) (vendor, firmware string) {
	scores := map[string]int{}
	for _, p := range vendorPatterns {
		if p.re.MatchString(configText) {
			scores[p.vendor]++
		}
	}

	dell, cisco := scores[constants.VendorDell], scores[constants.VendorCisco]
	switch {
	case dell > cisco:
		return constants.VendorDell, constants.FirmwareOS10
	case cisco > dell:
		return constants.VendorCisco, constants.FirmwareNXOS
	}
	return "", ""
}

// DetectModel extracts the switch model for a known vendor.
func DetectModel(configText, vendor string) string {
	for _, re := range modelPatterns[vendor] {
		if m := re.FindStringSubmatch(configText); m != nil {
			return m[1]
		}
	}
	return ""
}

// DetectHostname extracts the hostname from a raw config.
func DetectHostname(configText string) string {
	for _, re := range hostnamePatterns {
		if m := re.FindStringSubmatch(configText); m != nil {
			return m[1]
		}
	}
	return ""
}

// DetectAll runs every detector over the config text.
func DetectAll(configText string) Detection {
	vendor, firmware := DetectVendor(configText)
	d := Detection{
		Vendor:   vendor,
		Firmware: firmware,
		Hostname: DetectHostname(configText),
		Detected: vendor != "",
	}
	if vendor != "" {
		d.Model = DetectModel(configText, vendor)
	}
	return d
}
