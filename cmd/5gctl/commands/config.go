package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/cli/prompt"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/config"
)

var nfTypes = []string{"NRF", "AMF", "SMF", "UPF", "AUSF", "UDM", "PCF", "GNB", "CU", "DU"}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage network function configuration files",
}

var schemaOutput string

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Export the configuration JSON schema",
	Long: `Generate a JSON schema describing the configuration file format
shared by all network function binaries. Useful for editor validation
and documentation.`,
	RunE: runConfigSchema,
}

var (
	initPath string
	initNF   string
)

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively create a configuration file",
	Long: `Walk through the settings of one network function and write a
configuration file seeded from that function's defaults.

Examples:
  # Prompt for everything
  5gctl config init

  # Preselect the function and target path
  5gctl config init --nf AMF --path ./amf.yaml`,
	RunE: runConfigInit,
}

func init() {
	configSchemaCmd.Flags().StringVar(&schemaOutput, "file", "", "Output file (default: stdout)")
	configInitCmd.Flags().StringVar(&initNF, "nf", "", "Network function type to configure")
	configInitCmd.Flags().StringVar(&initPath, "path", "", "Destination file (default: the shared config path)")

	configCmd.AddCommand(configSchemaCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigSchema(cmd *cobra.Command, args []string) error {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	schema := reflector.Reflect(&config.Config{})
	schema.Version = "https://json-schema.org/draft/2020-12/schema"
	schema.Title = "5G Network Function Configuration"
	schema.Description = "Configuration schema shared by the network function binaries"

	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if schemaOutput != "" {
		if err := os.WriteFile(schemaOutput, schemaJSON, 0o644); err != nil {
			return fmt.Errorf("failed to write schema file: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "JSON schema written to %s\n", schemaOutput)
		return nil
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(schemaJSON))
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	nfType := initNF
	if nfType == "" {
		selected, err := prompt.SelectString("Network function", nfTypes)
		if err != nil {
			return err
		}
		nfType = selected
	}

	cfg := config.GetDefaultConfig(nfType)

	host, err := prompt.Input("SBI listen host", cfg.SBI.Host)
	if err != nil {
		return err
	}
	cfg.SBI.Host = host

	port, err := prompt.InputPort("SBI listen port", cfg.SBI.Port)
	if err != nil {
		return err
	}
	cfg.SBI.Port = port

	nrfURL, err := prompt.Input("NRF URL", cfg.NRF.URL)
	if err != nil {
		return err
	}
	cfg.NRF.URL = nrfURL

	level, err := prompt.SelectString("Log level", []string{"DEBUG", "INFO", "WARN", "ERROR"})
	if err != nil {
		return err
	}
	cfg.Logging.Level = level

	path := initPath
	if path == "" {
		path = config.GetDefaultConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		overwrite, confirmErr := prompt.Confirm(fmt.Sprintf("Overwrite %s", path), false)
		if confirmErr != nil {
			return confirmErr
		}
		if !overwrite {
			return fmt.Errorf("aborted, %s left untouched", path)
		}
	}

	if err := config.SaveConfig(cfg, path); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s configuration written to %s\n", nfType, path)
	return nil
}
