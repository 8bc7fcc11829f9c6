package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bucketfront/config"
)

var version = "dev"

// skipConfig marks commands that run before a valid config exists.
const skipConfig = "skip-config"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "bucketfront",
	Short:   "Serve static sites and SPAs from an S3 bucket",
	Long: `bucketfront is a read-only gateway that resolves request paths to
objects in an S3-compatible bucket and streams them through presigned URLs,
falling back to index.html for client-side routed applications.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipConfig] == "true" {
			setupLogging("", "info")
			return nil
		}

		configFiles, _ := cmd.Flags().GetStringSlice("config")
		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg.Env, cfg.Log.Level)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceP("config", "c", nil, "config file path, repeatable (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("bucket", "", "bucket name (env: BUCKETFRONT_STORAGE_BUCKET, S3_BUCKET)")
	rootCmd.PersistentFlags().String("prefix", "", "key prefix objects are served from (default: www)")
	rootCmd.PersistentFlags().String("fallback-policy", "", "index fallback: walkup, first-level, none (default: walkup)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default: info)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
