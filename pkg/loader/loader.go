package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/models"
	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/utils"
)

// DataLoader reads topology documents and interface templates from disk.
// JSON is the lab input format; YAML is accepted for hand-written files.
type DataLoader struct {
	templateDir string
	logger      *utils.Logger
}

// NewDataLoader creates a loader rooted at the given interface-template
// directory (layout: <dir>/<vendor>/<MODEL>.json).
func NewDataLoader(templateDir string, logger *utils.Logger) *DataLoader {
	return &DataLoader{
		templateDir: templateDir,
		logger:      logger,
	}
}

// LoadTopology reads one topology document.
func (dl *DataLoader) LoadTopology(path string) (*models.Topology, error) {
	var topo models.Topology
	if err := dl.loadFile(path, &topo); err != nil {
		return nil, err
	}
	dl.logger.Debug("Loaded topology %s: %d switches, %d supernets",
		path, len(topo.Input.Switches), len(topo.Input.Supernets))
	return &topo, nil
}

// LoadStandardConfig reads an already-converted standardized record.
func (dl *DataLoader) LoadStandardConfig(path string) (*models.SwitchConfig, error) {
	var cfg models.SwitchConfig
	if err := dl.loadFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LookupInterfaceTemplate resolves the static interface template for a
// vendor/model pair. The template file is named after the upper-cased
// model under the lower-cased vendor directory.
func (dl *DataLoader) LookupInterfaceTemplate(vendor, model string) (*models.InterfaceTemplate, error) {
	vendor = strings.ToLower(strings.TrimSpace(vendor))
	model = strings.ToUpper(strings.TrimSpace(model))

	base := filepath.Join(dl.templateDir, vendor, model)
	path := ""
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		if _, err := os.Stat(base + ext); err == nil {
			path = base + ext
			break
		}
	}
	if path == "" {
		return nil, fmt.Errorf("interface template not found for %s/%s under %s", vendor, model, dl.templateDir)
	}

	var tmpl models.InterfaceTemplate
	if err := dl.loadFile(path, &tmpl); err != nil {
		return nil, err
	}
	dl.logger.Debug("Loaded interface template %s", path)
	return &tmpl, nil
}

// IsStandardFormat reports whether a document already looks like a
// per-switch standardized record rather than a lab topology.
func IsStandardFormat(path string) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var keys map[string]interface{}
	if err := unmarshalByExt(path, content, &keys); err != nil {
		return false, err
	}

	hasStandard := false
	for _, k := range []string{"switch", "vlans", "interfaces"} {
		if _, ok := keys[k]; ok {
			hasStandard = true
		}
	}
	for _, k := range []string{"Version", "Description", "InputData"} {
		if _, ok := keys[k]; ok {
			return false, nil
		}
	}
	return hasStandard, nil
}

// loadFile reads and decodes one JSON or YAML document into target.
// A missing file and a malformed document are distinct errors.
func (dl *DataLoader) loadFile(path string, target interface{}) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input file not found: %s", path)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return unmarshalByExt(path, content, target)
}

func unmarshalByExt(path string, content []byte, target interface{}) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, target); err != nil {
			return fmt.Errorf("failed to parse YAML (%s): %w", path, err)
		}
	default:
		if err := json.Unmarshal(content, target); err != nil {
			return fmt.Errorf("failed to parse JSON (%s): %w", path, err)
		}
	}
	return nil
}
