package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lk2023060901/databrief-go/application"
	"github.com/lk2023060901/databrief-go/pkg/codec"
	"github.com/lk2023060901/databrief-go/pkg/log"
)

var (
	configPath string
	schemaPath string

	app *application.Application
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "briefctl",
	Short: "databrief - schema-driven binary record codec",
	Long: `briefctl encodes JSON records into the compact databrief binary format
and decodes them back, using a YAML schema file that declares the record types.

Encoded output is a stream of frames: a 4-byte big-endian length followed by
one encoded record.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, explicit, err := application.ResolveConfigPath(nil)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("config") {
			path, explicit = configPath, true
		}
		app = application.New()
		return app.Init(path, explicit)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newCodec() *codec.Codec {
	if app == nil {
		return codec.New()
	}
	return app.Codec()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./config.yaml", "Config file (env BRIEF_CONFIG_FILE_PATH)")
	rootCmd.PersistentFlags().StringVarP(&schemaPath, "schema", "s", "schema.yaml", "Schema file declaring the record types")
}
