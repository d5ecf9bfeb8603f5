package analysis

import (
	"regexp"
	"strings"

	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/internal/constants"
)

// Section is one logical block of a raw switch configuration.
type Section struct {
	Name      string
	Content   string
	StartLine int
	EndLine   int
}

type sectionMarker struct {
	name string
	re   *regexp.Regexp
}

// Markers are checked in order against top-level lines; indented lines
// belong to the block opened above them.
var os10Markers = []sectionMarker{
	{"mlag", regexp.MustCompile(`^vlt domain|^vlt-port-channel`)},
	{"bgp", regexp.MustCompile(`^router bgp`)},
	{"port_channel", regexp.MustCompile(`^interface port-channel`)},
	{"vlan", regexp.MustCompile(`^interface vlan\d+|^vlan\s+\d+`)},
	{"interface", regexp.MustCompile(`^interface Ethernet|^interface ethernet|^interface loopback|^interface range`)},
	{"qos", regexp.MustCompile(`^wred\s|^class-map\s|^trust\s+dot1p|^qos-map\s|^policy-map\s|^system qos`)},
	{"login", regexp.MustCompile(`^password-attributes|^enable password|^username\s|^ip ssh\s|^no ip telnet|^login\s`)},
	{"static_route", regexp.MustCompile(`^ip route\s`)},
	{"prefix_list", regexp.MustCompile(`^ip prefix-list`)},
	{"system", regexp.MustCompile(`^hostname\s|^banner\s|^ztd\s|^lldp\s|^dcbx\s|^mac address-table|^vrrp\s`)},
}

var nxosMarkers = []sectionMarker{
	{"mlag", regexp.MustCompile(`^vpc domain`)},
	{"bgp", regexp.MustCompile(`^router bgp`)},
	{"port_channel", regexp.MustCompile(`^interface port-channel`)},
	{"vlan", regexp.MustCompile(`^vlan\s+\d+|^interface Vlan\d+`)},
	{"interface", regexp.MustCompile(`^interface Ethernet\d+/\d+|^interface loopback`)},
	{"qos", regexp.MustCompile(`^class-map\s+type|^policy-map\s+type|^system qos|^hardware qos`)},
	{"login", regexp.MustCompile(`^username\s|^role\s|^aaa\s|^tacacs-server|^radius-server`)},
	{"static_route", regexp.MustCompile(`^ip route\s`)},
	{"prefix_list", regexp.MustCompile(`^ip prefix-list`)},
	{"system", regexp.MustCompile(`^hostname\s|^banner\s|^feature\s|^no feature\s|^ssh key|^no cdp enable|^lldp|^spanning-tree`)},
}

// Split breaks a raw configuration into named sections for the given
// firmware family. Top-level lines not matching any marker land in the
// "other" section.
func Split(configText, firmware string) []Section {
	markers := nxosMarkers
	if strings.EqualFold(firmware, constants.FirmwareOS10) {
		markers = os10Markers
	}

	lines := strings.Split(configText, "\n")
	var sections []Section
	var current *Section

	flush := func(end int) {
		if current != nil && strings.TrimSpace(current.Content) != "" {
			current.EndLine = end
			sections = append(sections, *current)
		}
		current = nil
	}

	for i, line := range lines {
		trimmed := strings.TrimRight(line, "\r")
		topLevel := trimmed != "" && !strings.HasPrefix(trimmed, " ") && !strings.HasPrefix(trimmed, "\t")

		if topLevel {
			name := classifyLine(trimmed, markers)
			if current == nil || current.Name != name {
				flush(i - 1)
				current = &Section{Name: name, StartLine: i}
			}
		} else if current == nil {
			current = &Section{Name: "other", StartLine: i}
		}
		current.Content += trimmed + "\n"
	}
	flush(len(lines) - 1)

	return sections
}

func classifyLine(line string, markers []sectionMarker) string {
	for _, m := range markers {
		if m.re.MatchString(line) {
			return m.name
		}
	}
	return "other"
}
