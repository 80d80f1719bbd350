package fixup

import (
	"context"
	"fmt"

	"appraiser_directory/internal/domain"
)

type PostBuildOptions struct {
	PublicDir    string
	Domain       string
	StalePrefix  string
	Marker       string
	DeployConfig string
	Store        domain.LocationStore
	DryRun       bool
}

// PostBuild runs the transforms in build order and then the entry gate.
// Verification is skipped on dry runs since nothing was patched on disk.
func PostBuild(ctx context.Context, opts PostBuildOptions) (map[string]Result, error) {
	out := make(map[string]Result, 4)
	steps := []struct {
		name string
		run  func() (Result, error)
	}{
		{"fix-assets", func() (Result, error) {
			return FixAssetPaths(ctx, AssetOptions{PublicDir: opts.PublicDir, StalePrefix: opts.StalePrefix, DryRun: opts.DryRun})
		}},
		{"fix-appraiser-dirs", func() (Result, error) {
			return DuplicateAppraiserDirs(ctx, DirOptions{PublicDir: opts.PublicDir, Store: opts.Store, DeployConfig: opts.DeployConfig, DryRun: opts.DryRun})
		}},
		{"fix-trailing-slashes", func() (Result, error) {
			return NormalizeTrailingSlashes(ctx, SlashOptions{PublicDir: opts.PublicDir, Domain: opts.Domain, DryRun: opts.DryRun})
		}},
		{"patch-client-render", func() (Result, error) {
			return PatchClientRender(ctx, ClientRenderOptions{PublicDir: opts.PublicDir, Marker: opts.Marker, DryRun: opts.DryRun})
		}},
	}
	for _, s := range steps {
		res, err := s.run()
		if err != nil {
			return out, fmt.Errorf("%s: %w", s.name, err)
		}
		out[s.name] = res
	}
	if opts.DryRun {
		return out, nil
	}
	if _, err := VerifyClientEntry(ctx, VerifyOptions{PublicDir: opts.PublicDir, Marker: opts.Marker}); err != nil {
		return out, fmt.Errorf("verify-client-entry: %w", err)
	}
	return out, nil
}
