package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/models"
	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/transform"
	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/utils"
)

// Renderer turns standardized records into vendor CLI text. Templates live
// under <templateDir>/<vendor>/<firmware>/*.tmpl and are selected by the
// record's switch metadata.
type Renderer struct {
	templateDir string
	logger      *utils.Logger
	funcs       template.FuncMap
}

// NewRenderer creates a renderer rooted at templateDir.
func NewRenderer(templateDir string, logger *utils.Logger) *Renderer {
	return &Renderer{
		templateDir: templateDir,
		logger:      logger,
		funcs: template.FuncMap{
			"subnetMask":     SubnetMask,
			"interfaceRange": InterfaceRange,
			"join":           strings.Join,
			"upper":          strings.ToUpper,
			"lower":          strings.ToLower,
		},
	}
}

// RenderAll renders every template of the record's vendor/firmware set and
// writes the non-empty results as generated_<name>.cfg under outputDir.
// Returns the written file paths.
func (r *Renderer) RenderAll(cfg *models.SwitchConfig, outputDir string) ([]string, error) {
	vendor := strings.ToLower(cfg.Switch.Vendor)
	firmware := strings.ToLower(cfg.Switch.Firmware)
	if vendor == "" || firmware == "" {
		return nil, fmt.Errorf("switch metadata missing vendor or firmware")
	}

	dir := filepath.Join(r.templateDir, vendor, firmware)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("template path not found: %s", dir)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".tmpl") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no templates found in %s", dir)
	}
	sort.Strings(names)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir %s: %w", outputDir, err)
	}

	ctx := transform.BuildContext(cfg)
	var written []string
	for _, name := range names {
		rendered, err := r.renderFile(filepath.Join(dir, name), ctx)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", name, err)
		}
		if strings.TrimSpace(rendered) == "" {
			r.logger.Debug("Template %s produced empty output, skipped", name)
			continue
		}

		stem := strings.TrimSuffix(name, ".tmpl")
		outPath := filepath.Join(outputDir, "generated_"+stem+".cfg")
		if err := os.WriteFile(outPath, []byte(rendered), 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", outPath, err)
		}
		r.logger.Debug("%s -> %s", name, outPath)
		written = append(written, outPath)
	}

	return written, nil
}

// Render renders a single named template body against a record.
func (r *Renderer) Render(name, body string, cfg *models.SwitchConfig) (string, error) {
	tmpl, err := template.New(name).Funcs(r.funcs).Parse(body)
	if err != nil {
		return "", fmt.Errorf("parsing template %s: %w", name, err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, transform.BuildContext(cfg)); err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}
	return sb.String(), nil
}

func (r *Renderer) renderFile(path string, ctx transform.Context) (string, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	tmpl, err := template.New(filepath.Base(path)).Funcs(r.funcs).Parse(string(body))
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, ctx); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// SubnetMask converts a CIDR prefix length to a dotted-quad mask.
func SubnetMask(cidr int) string {
	if cidr < 0 || cidr > 32 {
		return "0.0.0.0"
	}
	mask := uint32(0xFFFFFFFF) << (32 - cidr)
	if cidr == 0 {
		mask = 0
	}
	return fmt.Sprintf("%d.%d.%d.%d",
		(mask>>24)&0xFF, (mask>>16)&0xFF, (mask>>8)&0xFF, mask&0xFF)
}

// InterfaceRange formats a start/end port pair as a range expression.
func InterfaceRange(start, end string) string {
	return start + "-" + end
}
