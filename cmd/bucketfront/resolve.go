package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bucketfront"
	"github.com/sagarc03/bucketfront/config"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <path>...",
	Short: "Show which object each request path would serve",
	Long: `Run the resolver against the configured bucket and print the object key
each path resolves to, including index.html fallbacks.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	gw, err := newGateway(ctx, cfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PATH\tKEY\tRESULT")

	var failed error
	for _, p := range args {
		direct := gw.resolver.Key(p)
		key, err := gw.resolver.Resolve(ctx, p)
		switch {
		case errors.Is(err, bucketfront.ErrNotFound):
			_, _ = fmt.Fprintf(w, "%s\t%s\tnot found\n", p, direct)
		case err != nil:
			_, _ = fmt.Fprintf(w, "%s\t%s\terror\n", p, direct)
			failed = errors.Join(failed, err)
		case key == direct:
			_, _ = fmt.Fprintf(w, "%s\t%s\tfound\n", p, key)
		default:
			_, _ = fmt.Fprintf(w, "%s\t%s\tfallback\n", p, key)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return failed
}
