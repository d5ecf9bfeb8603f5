package convert

import (
	"reflect"
	"strings"
	"testing"

	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/models"
)

// labTopology builds a minimal but complete rack topology: two TORs, a BMC
// switch, one border, a MUX and the address plan the converter expects.
func labTopology(pattern string) *models.Topology {
	return &models.Topology{
		Version:     "1.0",
		Description: "rack 12 lab",
		Input: models.InputData{
			Environments: []models.Environment{
				{
					Site: "LAB12",
					Clusters: []models.Cluster{
						{Name: "cl01", NodeCount: 4, Pattern: pattern},
					},
				},
			},
			Switches: []models.SwitchDescriptor{
				{Make: "Cisco", Model: "93180YC-FX", Role: "TOR1", Hostname: "R12-TOR1", ASN: 65242, Firmware: "10.3(2)"},
				{Make: "Cisco", Model: "93180YC-FX", Role: "TOR2", Hostname: "R12-TOR2", ASN: 65242, Firmware: "10.3(2)"},
				{Make: "DellEMC", Model: "S5248F-ON", Role: "BMC", Hostname: "R12-BMC"},
				{Make: "Cisco", Model: "93360YC-FX2", Role: "Border1", Hostname: "R12-BORDER1", ASN: 64846},
				{Role: "MUX", ASN: 4200003000},
			},
			Supernets: []models.Supernet{
				{
					GroupName: "InfraVLAN",
					Name:      "Infra",
					IPv4: models.IPv4Network{
						Name: "INFRA_7", VLANID: 7, Cidr: 24,
						Network: "10.69.176.0", Gateway: "10.69.176.1",
						Assignments: []models.Assignment{
							{Name: "Gateway", IP: "10.69.176.1"},
							{Name: "TOR1", IP: "10.69.176.2"},
							{Name: "TOR2", IP: "10.69.176.3"},
						},
					},
				},
				{
					GroupName: "HNVPA",
					IPv4: models.IPv4Network{
						Name: "HNVPA_201", VLANID: 201, Cidr: 23,
						Network: "10.69.180.0", Gateway: "10.69.180.1",
					},
				},
				{
					GroupName: "Storage_TOR1",
					IPv4: models.IPv4Network{
						Name: "STORAGE_711", VLANID: 711, Cidr: 24,
						Network: "10.69.184.0",
					},
				},
				{
					GroupName: "Storage_TOR2",
					IPv4: models.IPv4Network{
						Name: "STORAGE_712", VLANID: 712, Cidr: 24,
						Network: "10.69.185.0",
					},
				},
				{
					GroupName: "UNUSED_VLAN",
					IPv4:      models.IPv4Network{Name: "UNUSED_2", VLANID: 2, Cidr: 24, Network: "10.69.186.0"},
				},
				{
					GroupName: "NativeVlan",
					IPv4:      models.IPv4Network{Name: "NATIVE_99", VLANID: 99, Cidr: 24, Network: "10.69.187.0"},
				},
				{
					GroupName: "BMCMgmt",
					IPv4: models.IPv4Network{
						Name: "BMC_125", VLANID: 125, Cidr: 26,
						Network: "10.69.181.0", Gateway: "10.69.181.1", SwitchSVI: true,
					},
				},
				{
					GroupName: "P2P_Border1_TOR1",
					IPv4: models.IPv4Network{
						Cidr: 30, Network: "10.69.177.0",
						Assignments: []models.Assignment{{Name: "TOR1", IP: "10.69.177.2"}},
					},
				},
				{
					GroupName: "P2P_Border2_TOR1",
					IPv4: models.IPv4Network{
						Cidr: 30, Network: "10.69.177.4",
						Assignments: []models.Assignment{{Name: "TOR1", IP: "10.69.177.6"}},
					},
				},
				{
					GroupName: "P2P_Border1_TOR2",
					IPv4: models.IPv4Network{
						Cidr: 30, Network: "10.69.177.8",
						Assignments: []models.Assignment{{Name: "TOR2", IP: "10.69.177.10"}},
					},
				},
				{
					GroupName: "P2P_Border2_TOR2",
					IPv4: models.IPv4Network{
						Cidr: 30, Network: "10.69.177.12",
						Assignments: []models.Assignment{{Name: "TOR2", IP: "10.69.177.14"}},
					},
				},
				{
					GroupName: "P2P_IBGP",
					IPv4: models.IPv4Network{
						Cidr: 30, Network: "10.69.178.0",
						Assignments: []models.Assignment{
							{Name: "TOR1", IP: "10.69.178.1"},
							{Name: "TOR2", IP: "10.69.178.2"},
						},
					},
				},
				{
					GroupName: "Loopback0",
					IPv4: models.IPv4Network{
						Cidr: 32, Network: "10.69.255.0",
						Assignments: []models.Assignment{
							{Name: "TOR1", IP: "10.69.255.1"},
							{Name: "TOR2", IP: "10.69.255.2"},
						},
					},
				},
			},
		},
	}
}

// torTemplate is a tiny interface template with symbolic VLAN tokens.
func torTemplate(vendor, model string) (*models.InterfaceTemplate, error) {
	return &models.InterfaceTemplate{
		InterfaceTemplates: models.InterfaceTemplateSet{
			Common: []models.Interface{
				{Name: "Node ports", StartIntf: "1/1/1", EndIntf: "1/1/16", Type: "trunk", NativeVLAN: "99", TaggedVLANs: "M,C,S"},
				{Name: "Unused", StartIntf: "1/1/17", EndIntf: "1/1/46", Type: "access", AccessVLAN: "UNUSED"},
			},
		},
		PortChannels: []models.PortChannel{
			{ID: 50, Description: "P2P_IBGP", Type: "l3", Members: []string{"1/1/47", "1/1/48"}},
		},
	}, nil
}

func TestConvertTOR1FullyConverged(t *testing.T) {
	cfg, err := Convert(labTopology("HyperConverged"), "TOR1", torTemplate)
	if err != nil {
		t.Fatalf("Convert(TOR1) error = %v", err)
	}

	t.Run("Switch metadata normalized", func(t *testing.T) {
		sw := cfg.Switch
		if sw.Vendor != "cisco" {
			t.Errorf("vendor = %q, expected %q", sw.Vendor, "cisco")
		}
		if sw.Model != "93180yc-fx" {
			t.Errorf("model = %q, expected %q", sw.Model, "93180yc-fx")
		}
		if sw.Hostname != "r12-tor1" {
			t.Errorf("hostname = %q, expected %q", sw.Hostname, "r12-tor1")
		}
		if sw.Firmware != "nxos" {
			t.Errorf("firmware = %q, expected %q", sw.Firmware, "nxos")
		}
		if sw.Version != "10.3(2)" {
			t.Errorf("version = %q, expected %q", sw.Version, "10.3(2)")
		}
		if sw.Site != "lab12" {
			t.Errorf("site = %q, expected %q", sw.Site, "lab12")
		}
		if sw.DeploymentPattern != "fully_converged" {
			t.Errorf("deployment_pattern = %q, expected %q", sw.DeploymentPattern, "fully_converged")
		}
	})

	t.Run("VLANs sorted unique with both storage ranges", func(t *testing.T) {
		var ids []int
		for _, v := range cfg.VLANs {
			ids = append(ids, v.ID)
		}
		expected := []int{2, 7, 99, 201, 711, 712}
		if !reflect.DeepEqual(ids, expected) {
			t.Fatalf("VLAN ids = %v, expected %v", ids, expected)
		}
	})

	t.Run("Unused VLAN shut down", func(t *testing.T) {
		for _, v := range cfg.VLANs {
			if v.ID == 2 && !v.Shutdown {
				t.Error("VLAN 2 should be shut down")
			}
			if v.ID != 2 && v.Shutdown {
				t.Errorf("VLAN %d should not be shut down", v.ID)
			}
		}
	})

	t.Run("Infra SVI carries HSRP active priority", func(t *testing.T) {
		var infra *models.VLAN
		for i := range cfg.VLANs {
			if cfg.VLANs[i].ID == 7 {
				infra = &cfg.VLANs[i]
			}
		}
		if infra == nil || infra.Interface == nil {
			t.Fatal("VLAN 7 should carry an SVI")
		}
		svi := infra.Interface
		if svi.IP != "10.69.176.2" {
			t.Errorf("SVI ip = %q, expected %q", svi.IP, "10.69.176.2")
		}
		if svi.MTU != 9216 {
			t.Errorf("SVI mtu = %d, expected 9216", svi.MTU)
		}
		if svi.Redundancy == nil {
			t.Fatal("SVI should carry redundancy")
		}
		if svi.Redundancy.Type != "hsrp" {
			t.Errorf("redundancy type = %q, expected %q", svi.Redundancy.Type, "hsrp")
		}
		if svi.Redundancy.Priority != 150 {
			t.Errorf("TOR1 priority = %d, expected 150", svi.Redundancy.Priority)
		}
		if svi.Redundancy.VirtualIP != "10.69.176.1" {
			t.Errorf("virtual ip = %q, expected gateway", svi.Redundancy.VirtualIP)
		}
	})

	t.Run("BGP peering plan", func(t *testing.T) {
		bgp := cfg.BGP
		if bgp == nil {
			t.Fatal("TOR record should carry BGP")
		}
		if bgp.ASN != 65242 {
			t.Errorf("local ASN = %d, expected 65242", bgp.ASN)
		}
		if bgp.RouterID != "10.69.255.1" {
			t.Errorf("router-id = %q, expected loopback", bgp.RouterID)
		}

		byDesc := map[string]models.BGPNeighbor{}
		for _, n := range bgp.Neighbors {
			byDesc[n.Description] = n
		}
		if len(bgp.Neighbors) != 4 {
			t.Fatalf("neighbor count = %d, expected 4", len(bgp.Neighbors))
		}

		b1 := byDesc["TO_BORDER1"]
		if b1.IP != "10.69.177.1" || b1.RemoteASN != 64846 {
			t.Errorf("TO_BORDER1 = %+v", b1)
		}
		b2 := byDesc["TO_BORDER2"]
		if b2.IP != "10.69.177.5" || b2.RemoteASN != 64846 {
			t.Errorf("TO_BORDER2 = %+v", b2)
		}
		ibgp := byDesc["IBGP_PEER"]
		if ibgp.IP != "10.69.178.2" || ibgp.RemoteASN != 65242 {
			t.Errorf("IBGP_PEER = %+v", ibgp)
		}

		mux := byDesc["TO_MUX"]
		if mux.IP != "10.69.180.1" {
			t.Errorf("TO_MUX ip = %q, expected HNVPA gateway", mux.IP)
		}
		if mux.RemoteASN != 4200003000 {
			t.Errorf("TO_MUX ASN = %d, expected full 32-bit value", mux.RemoteASN)
		}
		if mux.EBGPMultihop != 3 {
			t.Errorf("TO_MUX multihop = %d, expected 3", mux.EBGPMultihop)
		}
		if mux.PrefixListOut != "DefaultRoute" {
			t.Errorf("TO_MUX prefix_list_out = %q, expected %q", mux.PrefixListOut, "DefaultRoute")
		}

		networks := bgp.Networks
		expected := []string{"10.69.177.0/30", "10.69.177.4/30", "10.69.255.1/32"}
		if !reflect.DeepEqual(networks, expected) {
			t.Errorf("networks = %v, expected %v", networks, expected)
		}
	})

	t.Run("Template interfaces resolved per role", func(t *testing.T) {
		if len(cfg.Interfaces) != 2 {
			t.Fatalf("interface count = %d, expected 2", len(cfg.Interfaces))
		}
		nodePorts := cfg.Interfaces[0]
		if nodePorts.NativeVLAN != "99" {
			t.Errorf("native_vlan = %q, expected %q", nodePorts.NativeVLAN, "99")
		}
		if nodePorts.TaggedVLANs != "7,201,711" {
			t.Errorf("tagged_vlans = %q, expected %q", nodePorts.TaggedVLANs, "7,201,711")
		}
		unused := cfg.Interfaces[1]
		if unused.AccessVLAN != "2" {
			t.Errorf("access_vlan = %q, expected %q", unused.AccessVLAN, "2")
		}

		if len(cfg.PortChannels) != 1 {
			t.Fatalf("port-channel count = %d, expected 1", len(cfg.PortChannels))
		}
		if cfg.PortChannels[0].IP != "10.69.178.1/30" {
			t.Errorf("iBGP port-channel ip = %q, expected %q", cfg.PortChannels[0].IP, "10.69.178.1/30")
		}
	})

	t.Run("Default route prefix list", func(t *testing.T) {
		rules := cfg.PrefixLists["DefaultRoute"]
		if len(rules) != 2 {
			t.Fatalf("DefaultRoute rules = %d, expected 2", len(rules))
		}
		if rules[0].Seq != 10 || rules[0].Action != "permit" || rules[0].Prefix != "0.0.0.0/0" {
			t.Errorf("rule 10 = %+v", rules[0])
		}
		if rules[1].Seq != 20 || rules[1].Action != "deny" || rules[1].Prefix != "0.0.0.0/0 le 32" {
			t.Errorf("rule 20 = %+v", rules[1])
		}
	})
}

func TestConvertTOR2(t *testing.T) {
	cfg, err := Convert(labTopology("HyperConverged"), "TOR2", torTemplate)
	if err != nil {
		t.Fatalf("Convert(TOR2) error = %v", err)
	}

	for _, v := range cfg.VLANs {
		if v.ID == 7 {
			if v.Interface == nil || v.Interface.Redundancy == nil {
				t.Fatal("VLAN 7 should carry redundancy")
			}
			if v.Interface.Redundancy.Priority != 140 {
				t.Errorf("TOR2 priority = %d, expected 140", v.Interface.Redundancy.Priority)
			}
		}
	}

	byDesc := map[string]models.BGPNeighbor{}
	for _, n := range cfg.BGP.Neighbors {
		byDesc[n.Description] = n
	}
	if byDesc["IBGP_PEER"].IP != "10.69.178.1" {
		t.Errorf("TOR2 iBGP peer = %q, expected TOR1 side", byDesc["IBGP_PEER"].IP)
	}
	if byDesc["TO_BORDER1"].IP != "10.69.177.9" {
		t.Errorf("TOR2 TO_BORDER1 = %q, expected %q", byDesc["TO_BORDER1"].IP, "10.69.177.9")
	}
}

func TestStorageVLANExclusivityWhenSwitched(t *testing.T) {
	topo := labTopology("Switched")

	tor1, err := Convert(topo, "TOR1", nil)
	if err != nil {
		t.Fatalf("Convert(TOR1) error = %v", err)
	}
	tor2, err := Convert(topo, "TOR2", nil)
	if err != nil {
		t.Fatalf("Convert(TOR2) error = %v", err)
	}

	has := func(cfg *models.SwitchConfig, id int) bool {
		for _, v := range cfg.VLANs {
			if v.ID == id {
				return true
			}
		}
		return false
	}

	if !has(tor1, 711) || has(tor1, 712) {
		t.Error("switched TOR1 should carry VLAN 711 only")
	}
	if !has(tor2, 712) || has(tor2, 711) {
		t.Error("switched TOR2 should carry VLAN 712 only")
	}

	// Non-storage VLANs stay shared.
	for _, id := range []int{2, 7, 99, 201} {
		if !has(tor1, id) || !has(tor2, id) {
			t.Errorf("VLAN %d should be present on both TORs", id)
		}
	}
}

func TestStorageVLANsSharedWhenFullyConverged(t *testing.T) {
	for _, pattern := range []string{"HyperConverged", "Switchless"} {
		t.Run(pattern, func(t *testing.T) {
			cfg, err := Convert(labTopology(pattern), "TOR1", nil)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			found := map[int]bool{}
			for _, v := range cfg.VLANs {
				found[v.ID] = true
			}
			if !found[711] || !found[712] {
				t.Errorf("pattern %s should expose both storage VLANs", pattern)
			}
		})
	}
}

func TestConvertWithoutTemplates(t *testing.T) {
	cfg, err := Convert(labTopology("HyperConverged"), "TOR1", nil)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if len(cfg.Interfaces) != 0 || len(cfg.PortChannels) != 0 {
		t.Error("record without template lookup should carry no physical interfaces")
	}
	if cfg.BGP == nil || len(cfg.VLANs) == 0 {
		t.Error("VLANs and BGP must not depend on interface templates")
	}
}

func TestConvertErrors(t *testing.T) {
	t.Run("unsupported role", func(t *testing.T) {
		_, err := Convert(labTopology("Switched"), "Border1", nil)
		if err == nil || !strings.Contains(err.Error(), "unsupported switch role") {
			t.Errorf("Convert(Border1) error = %v", err)
		}
	})

	t.Run("missing descriptor", func(t *testing.T) {
		topo := labTopology("Switched")
		topo.Input.Switches = topo.Input.Switches[1:]
		if _, err := Convert(topo, "TOR1", nil); err == nil {
			t.Error("Convert() should fail when the role is missing from the topology")
		}
	})

	t.Run("missing loopback", func(t *testing.T) {
		topo := labTopology("Switched")
		var kept []models.Supernet
		for _, sn := range topo.Input.Supernets {
			if sn.GroupName != "Loopback0" {
				kept = append(kept, sn)
			}
		}
		topo.Input.Supernets = kept
		_, err := Convert(topo, "TOR1", nil)
		if err == nil || !strings.Contains(err.Error(), "loopback") {
			t.Errorf("Convert() error = %v, expected loopback failure", err)
		}
	})

	t.Run("missing border ASN", func(t *testing.T) {
		topo := labTopology("Switched")
		for i := range topo.Input.Switches {
			if topo.Input.Switches[i].Role == "Border1" {
				topo.Input.Switches[i].ASN = 0
			}
		}
		if _, err := Convert(topo, "TOR1", nil); err == nil {
			t.Error("Convert() should fail without a border ASN")
		}
	})

	t.Run("missing local ASN", func(t *testing.T) {
		topo := labTopology("Switched")
		for i := range topo.Input.Switches {
			if topo.Input.Switches[i].Role == "TOR1" {
				topo.Input.Switches[i].ASN = 0
			}
		}
		if _, err := Convert(topo, "TOR1", nil); err == nil {
			t.Error("Convert() should fail without a local ASN")
		}
	})
}

func TestMUXNeighborOmittedWithoutASN(t *testing.T) {
	topo := labTopology("HyperConverged")
	var kept []models.SwitchDescriptor
	for _, sw := range topo.Input.Switches {
		if sw.Role != "MUX" {
			kept = append(kept, sw)
		}
	}
	topo.Input.Switches = kept

	cfg, err := Convert(topo, "TOR1", nil)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	for _, n := range cfg.BGP.Neighbors {
		if n.Description == "TO_MUX" {
			t.Error("record without MUX ASN should not carry a MUX neighbor")
		}
	}
}

func TestBorderLinkAssignedAtBothEnds(t *testing.T) {
	setAssignments := func(topo *models.Topology, group string, assigns []models.Assignment) {
		for i := range topo.Input.Supernets {
			if topo.Input.Supernets[i].GroupName == group {
				topo.Input.Supernets[i].IPv4.Assignments = assigns
			}
		}
	}

	t.Run("suffixed range", func(t *testing.T) {
		topo := labTopology("HyperConverged")
		setAssignments(topo, "P2P_Border1_TOR1", []models.Assignment{
			{Name: "Border1", IP: "10.69.177.1"},
			{Name: "TOR1", IP: "10.69.177.2"},
		})

		cfg, err := Convert(topo, "TOR1", nil)
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		for _, n := range cfg.BGP.Neighbors {
			if n.Description == "TO_BORDER1" && n.IP != "10.69.177.1" {
				t.Errorf("TO_BORDER1 ip = %q, expected border assignment", n.IP)
			}
		}
	})

	t.Run("range named without TOR suffix", func(t *testing.T) {
		topo := labTopology("HyperConverged")
		for i := range topo.Input.Supernets {
			if topo.Input.Supernets[i].GroupName == "P2P_Border1_TOR1" {
				topo.Input.Supernets[i].GroupName = "P2P_Border1"
			}
		}
		setAssignments(topo, "P2P_Border1", []models.Assignment{
			{Name: "Border1", IP: "10.69.177.1"},
			{Name: "TOR1", IP: "10.69.177.2"},
		})

		cfg, err := Convert(topo, "TOR1", nil)
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		for _, n := range cfg.BGP.Neighbors {
			if n.Description == "TO_BORDER1" && n.IP != "10.69.177.1" {
				t.Errorf("TO_BORDER1 ip = %q, expected border assignment", n.IP)
			}
		}
	})
}

func TestNormalizeDeploymentPattern(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"HyperConverged", "fully_converged"},
		{"hyperconverged", "fully_converged"},
		{"Hyper-Converged", "fully_converged"},
		{"hyper converged", "fully_converged"},
		{"Fully Converged", "fully_converged"},
		{"fully_converged", "fully_converged"},
		{"Switched", "switched"},
		{"SWITCHED", "switched"},
		{"Switchless", "switchless"},
		{"switch-less", "switchless"},
		{"", "fully_converged"},
		{"something else", "fully_converged"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := NormalizeDeploymentPattern(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizeDeploymentPattern(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestInferFirmware(t *testing.T) {
	tests := []struct {
		make     string
		expected string
	}{
		{"Cisco", "nxos"},
		{"cisco", "nxos"},
		{"DellEMC", "os10"},
		{"Arista", "arista"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := InferFirmware(tt.make); got != tt.expected {
			t.Errorf("InferFirmware(%q) = %q, expected %q", tt.make, got, tt.expected)
		}
	}
}

func TestDefaultPrefixListsAreFreshCopies(t *testing.T) {
	a := defaultPrefixLists()
	a["DefaultRoute"][0].Action = "deny"

	b := defaultPrefixLists()
	if b["DefaultRoute"][0].Action != "permit" {
		t.Error("defaultPrefixLists() shares state between calls")
	}
}
