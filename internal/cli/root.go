// Package cli wires the site build tooling into the sitetool command.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"appraiser_directory/internal/adapters/observability"
	"appraiser_directory/internal/shared"
	"appraiser_directory/internal/storage/jsonstore"
)

var Version = "dev"

// options holds flag values. Defaults come from the environment config so
// that flags only need to be passed to override it.
type options struct {
	cfg shared.Config

	publicDir   string
	domain      string
	dataDir     string
	stalePrefix string
	marker      string
	dryRun      bool
	verbose     bool
}

// NewRootCmd builds a fresh command tree; tests build one per case.
func NewRootCmd(cfg shared.Config) *cobra.Command {
	o := &options{cfg: cfg}
	root := &cobra.Command{
		Use:           "sitetool",
		Version:       Version,
		Short:         "Post-build fixups and data checks for the appraiser directory",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := cfg.LogLevel
			if o.verbose {
				level = zerolog.LevelDebugValue
			}
			log.Logger = observability.NewLogger(cfg.AppEnv, level)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.publicDir, "public-dir", cfg.PublicDir, "built site directory")
	pf.StringVar(&o.domain, "domain", cfg.SiteURL, "canonical site origin")
	pf.StringVar(&o.dataDir, "data-dir", cfg.DataDir, "directory of per-city JSON documents (empty: embedded data)")
	pf.StringVar(&o.stalePrefix, "stale-prefix", cfg.StaleAssetPrefix, "legacy base path in front of assets/")
	pf.StringVar(&o.marker, "marker", cfg.ClientRenderMarker, "client-render-only marker constant")
	pf.BoolVar(&o.dryRun, "dry-run", false, "report changes without writing")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newFixAssetsCmd(o),
		newFixAppraiserDirsCmd(o),
		newFixTrailingSlashesCmd(o),
		newPatchClientRenderCmd(o),
		newVerifyClientEntryCmd(o),
		newCheckImagesCmd(o),
		newAuditContentCmd(o),
		newPostBuildCmd(o),
	)
	return root
}

// Execute runs sitetool against os.Args with the environment config.
func Execute(ctx context.Context) error {
	return NewRootCmd(shared.Load()).ExecuteContext(ctx)
}

func (o *options) store() (*jsonstore.Store, error) {
	s, err := jsonstore.Open(o.dataDir)
	if err != nil {
		return nil, fmt.Errorf("load data store: %w", err)
	}
	return s, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func timeoutOr(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
