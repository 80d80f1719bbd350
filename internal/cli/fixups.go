package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"appraiser_directory/internal/fixup"
)

func newFixAssetsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fix-assets",
		Short: "Rewrite stale and relative asset references to /assets/",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := fixup.FixAssetPaths(cmd.Context(), fixup.AssetOptions{
				PublicDir: o.publicDir, StalePrefix: o.stalePrefix, DryRun: o.dryRun,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newFixAppraiserDirsCmd(o *options) *cobra.Command {
	var deployConfig string
	cmd := &cobra.Command{
		Use:   "fix-appraiser-dirs",
		Short: "Serve every appraiser page under both its slug and its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := o.store()
			if err != nil {
				return err
			}
			res, err := fixup.DuplicateAppraiserDirs(cmd.Context(), fixup.DirOptions{
				PublicDir: o.publicDir, Store: store, DeployConfig: deployConfig, DryRun: o.dryRun,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&deployConfig, "deploy-config", "netlify.toml", "deploy config receiving the redirect block (empty: skip)")
	return cmd
}

func newFixTrailingSlashesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fix-trailing-slashes",
		Short: "Force trailing slashes on canonical, social and internal links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := fixup.NormalizeTrailingSlashes(cmd.Context(), fixup.SlashOptions{
				PublicDir: o.publicDir, Domain: o.domain, DryRun: o.dryRun,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newPatchClientRenderCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "patch-client-render",
		Short: "Replace hydration with a fresh client render in entry bundles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := fixup.PatchClientRender(cmd.Context(), fixup.ClientRenderOptions{
				PublicDir: o.publicDir, Marker: o.marker, DryRun: o.dryRun,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newVerifyClientEntryCmd(o *options) *cobra.Command {
	var entry string
	cmd := &cobra.Command{
		Use:   "verify-client-entry",
		Short: "Fail unless the entry page loads a client-render-only bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := fixup.VerifyClientEntry(cmd.Context(), fixup.VerifyOptions{
				PublicDir: o.publicDir, EntryHTML: entry, Marker: o.marker,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "entry bundle %s is client-render-only\n", bundle)
			return nil
		},
	}
	cmd.Flags().StringVar(&entry, "entry", "index.html", "entry page relative to the public dir")
	return cmd
}

func newPostBuildCmd(o *options) *cobra.Command {
	var deployConfig string
	cmd := &cobra.Command{
		Use:   "postbuild",
		Short: "Run every fixup in build order, then verify the entry bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := o.store()
			if err != nil {
				return err
			}
			res, err := fixup.PostBuild(cmd.Context(), fixup.PostBuildOptions{
				PublicDir:    o.publicDir,
				Domain:       o.domain,
				StalePrefix:  o.stalePrefix,
				Marker:       o.marker,
				DeployConfig: deployConfig,
				Store:        store,
				DryRun:       o.dryRun,
			})
			if perr := printJSON(cmd.OutOrStdout(), res); perr != nil && err == nil {
				err = perr
			}
			return err
		},
	}
	cmd.Flags().StringVar(&deployConfig, "deploy-config", "netlify.toml", "deploy config receiving the redirect block (empty: skip)")
	return cmd
}
