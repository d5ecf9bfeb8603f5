package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/models"
	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/utils"
)

func torRecord() *models.SwitchConfig {
	return &models.SwitchConfig{
		Switch: models.SwitchInfo{
			Vendor: "cisco", Model: "93180yc-fx", Role: "TOR1",
			Hostname: "r12-tor1", Firmware: "nxos", DeploymentPattern: "fully_converged",
		},
		VLANs: []models.VLAN{
			{ID: 7, Name: "INFRA_7", Purpose: models.PurposeManagement,
				Interface: &models.SVI{IP: "10.69.176.2", Cidr: 24, MTU: 9216}},
			{ID: 711, Name: "STORAGE_711", Purpose: models.PurposeStorage1},
		},
		BGP: &models.BGPConfig{ASN: 65242, RouterID: "10.69.255.1"},
		QoS: true,
	}
}

func TestSubnetMask(t *testing.T) {
	tests := []struct {
		cidr     int
		expected string
	}{
		{0, "0.0.0.0"},
		{8, "255.0.0.0"},
		{16, "255.255.0.0"},
		{24, "255.255.255.0"},
		{26, "255.255.255.192"},
		{30, "255.255.255.252"},
		{32, "255.255.255.255"},
		{-1, "0.0.0.0"},
		{33, "0.0.0.0"},
	}

	for _, tt := range tests {
		if got := SubnetMask(tt.cidr); got != tt.expected {
			t.Errorf("SubnetMask(%d) = %q, expected %q", tt.cidr, got, tt.expected)
		}
	}
}

func TestInterfaceRange(t *testing.T) {
	if got := InterfaceRange("1/1/1", "1/1/46"); got != "1/1/1-1/1/46" {
		t.Errorf("InterfaceRange() = %q", got)
	}
}

func TestRenderInline(t *testing.T) {
	r := NewRenderer("", utils.NewLogger(false))

	t.Run("switch metadata and helpers", func(t *testing.T) {
		body := "hostname {{.switch.Hostname}}\nrouter bgp {{.bgp.ASN}}\nmask {{subnetMask 24}}"
		out, err := r.Render("test", body, torRecord())
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		for _, want := range []string{"hostname r12-tor1", "router bgp 65242", "mask 255.255.255.0"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("vlan loop", func(t *testing.T) {
		body := "{{range .vlans}}vlan {{.ID}}\n  name {{.Name}}\n{{end}}"
		out, err := r.Render("vlans", body, torRecord())
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if !strings.Contains(out, "vlan 7") || !strings.Contains(out, "name STORAGE_711") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("section guard", func(t *testing.T) {
		body := "{{if .has_static_routes}}ip route{{end}}"
		out, err := r.Render("routes", body, torRecord())
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if strings.TrimSpace(out) != "" {
			t.Errorf("guarded section rendered without data: %q", out)
		}
	})

	t.Run("parse error", func(t *testing.T) {
		if _, err := r.Render("bad", "{{.unclosed", torRecord()); err == nil {
			t.Error("Render() should reject malformed templates")
		}
	})
}

func TestRenderAll(t *testing.T) {
	templateDir := t.TempDir()
	nxosDir := filepath.Join(templateDir, "cisco", "nxos")
	if err := os.MkdirAll(nxosDir, 0o755); err != nil {
		t.Fatal(err)
	}

	writeTemplate := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(nxosDir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	writeTemplate("system.tmpl", "hostname {{.switch.Hostname}}\n")
	writeTemplate("vlan.tmpl", "{{range .vlans}}vlan {{.ID}}\n{{end}}")
	// Guard evaluates false for this record, file must be skipped.
	writeTemplate("static_route.tmpl", "{{if .has_static_routes}}ip route 0.0.0.0/0{{end}}")

	outputDir := t.TempDir()
	r := NewRenderer(templateDir, utils.NewLogger(true))

	written, err := r.RenderAll(torRecord(), outputDir)
	if err != nil {
		t.Fatalf("RenderAll() error = %v", err)
	}

	if len(written) != 2 {
		t.Fatalf("written = %v, expected 2 files", written)
	}
	for _, path := range written {
		base := filepath.Base(path)
		if !strings.HasPrefix(base, "generated_") || !strings.HasSuffix(base, ".cfg") {
			t.Errorf("output file %q does not follow generated_<name>.cfg", base)
		}
	}

	content, err := os.ReadFile(filepath.Join(outputDir, "generated_system.cfg"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.Contains(string(content), "hostname r12-tor1") {
		t.Errorf("system config = %q", content)
	}

	if _, err := os.Stat(filepath.Join(outputDir, "generated_static_route.cfg")); !os.IsNotExist(err) {
		t.Error("empty render should not be written")
	}
}

func TestRenderAllErrors(t *testing.T) {
	r := NewRenderer(t.TempDir(), utils.NewLogger(false))

	t.Run("missing template dir", func(t *testing.T) {
		if _, err := r.RenderAll(torRecord(), t.TempDir()); err == nil {
			t.Error("RenderAll() should fail when the vendor/firmware directory is missing")
		}
	})

	t.Run("missing metadata", func(t *testing.T) {
		cfg := torRecord()
		cfg.Switch.Firmware = ""
		if _, err := r.RenderAll(cfg, t.TempDir()); err == nil {
			t.Error("RenderAll() should fail without firmware metadata")
		}
	})
}
