package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/internal/constants"
	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/analysis"
	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/convert"
	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/loader"
	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/metadata"
	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/models"
	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/render"
	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/utils"
	"github.com/microsoft/Azure-Local-Physical-Network-Config-Tool/pkg/validate"
)

var (
	cfgFile     string
	verbose     bool
	inputPath   string
	outputDir   string
	templateDir string
	intfDir     string
	roles       []string
	skipRender  bool

	declVendor   string
	declFirmware string
	declRole     string
	declPattern  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "netswitchgen",
		Short: "Azure Local physical network switch config generator",
		Long:  `Converts a declarative rack topology into standardized per-switch configuration records and renders vendor CLI text from them`,
	}

	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.netswitchgen.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug output")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Convert a topology and render switch configs",
		RunE:  runGenerate,
	}
	generateCmd.Flags().StringVar(&inputPath, "input", "", "Path to topology document (JSON or YAML)")
	generateCmd.Flags().StringVar(&outputDir, "output", "", "Directory for generated configs (default: next to input)")
	generateCmd.Flags().StringVar(&templateDir, "template-dir", "", "Root folder of vendor CLI templates")
	generateCmd.Flags().StringVar(&intfDir, "interface-template-dir", "", "Root folder of switch interface templates")
	generateCmd.Flags().StringSliceVar(&roles, "roles", nil, "Switch roles to convert (default: every TOR/BMC present)")
	generateCmd.Flags().BoolVar(&skipRender, "skip-render", false, "Write standardized records only, no CLI text")
	_ = generateCmd.MarkFlagRequired("input")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Convert a topology and cross-check the records",
		RunE:  runValidate,
	}
	validateCmd.Flags().StringVar(&inputPath, "input", "", "Path to topology document (JSON or YAML)")
	validateCmd.Flags().StringVar(&intfDir, "interface-template-dir", "", "Root folder of switch interface templates")
	validateCmd.Flags().StringSliceVar(&roles, "roles", nil, "Switch roles to validate")
	_ = validateCmd.MarkFlagRequired("input")

	inspectCmd := &cobra.Command{
		Use:   "inspect <config-file>",
		Short: "Detect vendor, model and sections of a raw switch config",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}
	inspectCmd.Flags().StringVar(&declVendor, "vendor", "", "Declared vendor to normalize against the detected config")
	inspectCmd.Flags().StringVar(&declFirmware, "firmware", "", "Declared firmware to normalize")
	inspectCmd.Flags().StringVar(&declRole, "role", "", "Declared switch role to normalize")
	inspectCmd.Flags().StringVar(&declPattern, "pattern", "", "Declared deployment pattern to normalize")

	rootCmd.AddCommand(generateCmd, validateCmd, inspectCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetDefault("template_dir", "input/cli_templates")
	viper.SetDefault("interface_template_dir", "input/switch_interface_templates")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".netswitchgen")
		}
	}

	viper.SetEnvPrefix("netswitchgen")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger := utils.NewLogger(verbose)

	if templateDir == "" {
		templateDir = viper.GetString("template_dir")
	}
	if intfDir == "" {
		intfDir = viper.GetString("interface_template_dir")
	}
	if outputDir == "" {
		outputDir = filepath.Dir(inputPath)
	}

	dl := loader.NewDataLoader(intfDir, logger)
	renderer := render.NewRenderer(templateDir, logger)

	std, err := loader.IsStandardFormat(inputPath)
	if err != nil {
		logger.Error("Failed to read input", err)
		return err
	}
	if std {
		logger.Info("Input is already in standard format, skipping conversion")
		cfg, err := dl.LoadStandardConfig(inputPath)
		if err != nil {
			logger.Error("Failed to load standard record", err)
			return err
		}
		if err := emitRecord(cfg, renderer, logger); err != nil {
			logger.Error("Failed to write configs for "+cfg.Switch.Role, err)
			return err
		}
		logger.Success("All configs generated successfully")
		return nil
	}

	topo, err := dl.LoadTopology(inputPath)
	if err != nil {
		logger.Error("Failed to load topology", err)
		return err
	}
	warnUnknownPattern(topo, logger)

	conv := convert.NewConverter(topo, dl.LookupInterfaceTemplate)

	targets := targetRoles(topo, roles)
	if len(targets) == 0 {
		err := fmt.Errorf("topology contains no convertible switch roles")
		logger.Error("Nothing to generate", err)
		return err
	}

	logger.Info("Generating configs for %d switch(es)...", len(targets))
	failed := 0
	for _, role := range targets {
		cfg, err := conv.Convert(role)
		if err != nil {
			logger.Error("Failed to convert "+role, err)
			failed++
			continue
		}
		if err := emitRecord(cfg, renderer, logger); err != nil {
			logger.Error("Failed to write configs for "+role, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d switch(es) failed", failed)
	}
	logger.Success("All configs generated successfully")
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	logger := utils.NewLogger(verbose)

	if intfDir == "" {
		intfDir = viper.GetString("interface_template_dir")
	}

	dl := loader.NewDataLoader(intfDir, logger)
	topo, err := dl.LoadTopology(inputPath)
	if err != nil {
		logger.Error("Failed to load topology", err)
		return err
	}

	warnUnknownPattern(topo, logger)

	conv := convert.NewConverter(topo, dl.LookupInterfaceTemplate)
	invalid := 0
	for _, role := range targetRoles(topo, roles) {
		cfg, err := conv.Convert(role)
		if err != nil {
			logger.Error("Failed to convert "+role, err)
			invalid++
			continue
		}
		result := validate.Check(cfg)
		if result.IsValid() {
			logger.Success("%s: valid", role)
			continue
		}
		invalid++
		logger.Warning("%s: %d finding(s)", role, len(result.Errors))
		for _, e := range result.Errors {
			logger.Warning("  %s", e.String())
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d switch(es) failed validation", invalid)
	}
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	logger := utils.NewLogger(verbose)

	content, err := os.ReadFile(args[0])
	if err != nil {
		logger.Error("Failed to read config", err)
		return err
	}

	d := analysis.DetectAll(string(content))
	logger.Info("Vendor:   %s", orUnknown(d.Vendor))
	logger.Info("Firmware: %s", orUnknown(d.Firmware))
	logger.Info("Model:    %s", orUnknown(d.Model))
	logger.Info("Hostname: %s", orUnknown(d.Hostname))

	if d.Firmware != "" {
		for _, s := range analysis.Split(string(content), d.Firmware) {
			lines := s.EndLine - s.StartLine + 1
			logger.Debug("section %-14s lines %d-%d (%d)", s.Name, s.StartLine+1, s.EndLine+1, lines)
		}
	}

	review := metadata.Review(metadata.Submission{
		Vendor:   declVendor,
		Firmware: declFirmware,
		Role:     declRole,
		Pattern:  declPattern,
	})
	for _, f := range review {
		switch f.Status {
		case metadata.StatusValid:
			logger.Success("%s: %s", f.Field, f.Normalized)
		case metadata.StatusAutoFixed:
			logger.Info("%s: %q -> %s", f.Field, f.Original, f.Normalized)
		default:
			msg := f.Message
			if len(f.Suggestions) > 0 {
				msg = fmt.Sprintf("%s (did you mean %s?)", msg, strings.Join(f.Suggestions, ", "))
			}
			logger.Warning("%s: %s", f.Field, msg)
		}
	}
	if declVendor != "" && d.Vendor != "" {
		declared := metadata.NormalizeVendor(declVendor).Normalized
		if !strings.EqualFold(declared, d.Vendor) {
			logger.Warning("declared vendor %q does not match detected vendor %q", declared, d.Vendor)
		}
	}

	if !d.Detected {
		return fmt.Errorf("could not detect vendor")
	}
	return nil
}

// warnUnknownPattern flags a deployment pattern label the converter will
// not recognize. Conversion still runs with the fully-converged default.
func warnUnknownPattern(topo *models.Topology, logger *utils.Logger) {
	pattern := topo.Input.DeploymentPattern()
	if pattern == "" {
		return
	}
	if r := metadata.NormalizePattern(pattern); r.Status == metadata.StatusNeedsAttention {
		logger.Warning("deployment pattern %q not recognized, defaulting to %s", pattern, constants.PatternFullyConverged)
	}
}

// targetRoles returns the requested roles, or every convertible role the
// topology declares.
func targetRoles(topo *models.Topology, requested []string) []string {
	if len(requested) > 0 {
		out := make([]string, len(requested))
		for i, r := range requested {
			out[i] = strings.ToUpper(strings.TrimSpace(r))
		}
		return out
	}
	var out []string
	for _, sw := range topo.Input.Switches {
		role := strings.ToUpper(sw.Role)
		switch role {
		case constants.RoleTOR1, constants.RoleTOR2, constants.RoleBMC:
			out = append(out, role)
		}
	}
	return utils.DedupeStrings(out)
}

// emitRecord writes the standardized record and, unless --skip-render is
// set, its rendered CLI text into a per-switch directory under outputDir.
func emitRecord(cfg *models.SwitchConfig, renderer *render.Renderer, logger *utils.Logger) error {
	name := cfg.Switch.Hostname
	if name == "" {
		name = strings.ToLower(cfg.Switch.Role)
	}
	switchDir := filepath.Join(outputDir, name)
	if err := writeRecord(cfg, switchDir); err != nil {
		return err
	}
	if !skipRender {
		files, err := renderer.RenderAll(cfg, switchDir)
		if err != nil {
			return err
		}
		logger.Debug("Rendered %d file(s) into %s", len(files), switchDir)
	}
	logger.Success("%s -> %s", cfg.Switch.Role, switchDir)
	return nil
}

func writeRecord(cfg *models.SwitchConfig, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "standard.json"), data, 0o644)
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
