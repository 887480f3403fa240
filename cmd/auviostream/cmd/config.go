package cmd

import (
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  `Commands for managing auviostream configuration.`,
}

var configDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the effective configuration",
	Long: `Dump the effective configuration values in YAML format.

Redirect this output to a file to create a configuration template:

  auviostream config dump > config.yaml

Configuration can be set via:
  - Config file (config.yaml in ., /etc/auviostream or $HOME/.auviostream)
  - Environment variables with the AUVIOSTREAM_ prefix
  - Command-line flags (for some options)

Environment variables use underscores for nesting.
Example: server.port -> AUVIOSTREAM_SERVER_PORT`,
	RunE: runConfigDump,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configDumpCmd)
}

// toMap converts a config struct to a map keyed by mapstructure tags,
// formatting durations for readability.
func toMap(v any) map[string]any {
	result := make(map[string]any)
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		key := fieldType.Tag.Get("mapstructure")
		if key == "" {
			key = fieldType.Name
		}

		switch v := field.Interface().(type) {
		case time.Duration:
			result[key] = v.String()
		default:
			if field.Kind() == reflect.Struct {
				result[key] = toMap(field.Interface())
			} else {
				result[key] = field.Interface()
			}
		}
	}
	return result
}

func runConfigDump(cmd *cobra.Command, args []string) error {
	yamlData, err := yaml.Marshal(toMap(cfg))
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	fmt.Println("# auviostream Configuration File")
	fmt.Println("# ==============================")
	fmt.Println("#")
	fmt.Println("# Values reflect the loaded configuration; without a config file")
	fmt.Println("# or environment overrides these are the defaults.")
	fmt.Println("#")
	fmt.Println("# Environment variable overrides:")
	fmt.Println("#   AUVIOSTREAM_SERVER_HOST, AUVIOSTREAM_SERVER_PORT")
	fmt.Println("#   AUVIOSTREAM_DATABASE_DRIVER, AUVIOSTREAM_DATABASE_DSN")
	fmt.Println("#   AUVIOSTREAM_SYNC_DSN, AUVIOSTREAM_SYNC_USER_ID")
	fmt.Println("#   AUVIOSTREAM_LOGGING_LEVEL, AUVIOSTREAM_LOGGING_FORMAT")
	fmt.Println("#   etc.")
	fmt.Println("#")
	fmt.Println("")
	fmt.Print(string(yamlData))

	return nil
}
