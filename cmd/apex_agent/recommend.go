package main

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hmhhmm/apex-insurance/internal/advisor"
	"github.com/hmhhmm/apex-insurance/internal/observability"
	"github.com/hmhhmm/apex-insurance/internal/schemas"
	"github.com/hmhhmm/apex-insurance/internal/types"
)

var (
	recommendProfile     string
	recommendProfilesDir string
	recommendOut         string
	recommendOutDir      string
	recommendConcurrency int
	recommendNarrative   bool
	recommendCatalog     string
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank the catalog for one profile or a directory of profiles",
	Long: `Produces a RecommendationBundle: risk value, up to four ranked plans with adjusted prices, and the analysis text.

With --profile a single bundle is printed (or written to --out). With --profiles-dir every *.json profile is
ranked concurrently and written to --out-dir under the same file name.`,
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().StringVarP(&recommendProfile, "profile", "p", "", "Path to a profile JSON file")
	recommendCmd.Flags().StringVar(&recommendProfilesDir, "profiles-dir", "", "Directory of profile JSON files to rank in batch")
	recommendCmd.Flags().StringVarP(&recommendOut, "out", "o", "", "Write the bundle to this file instead of stdout")
	recommendCmd.Flags().StringVar(&recommendOutDir, "out-dir", "", "Output directory for --profiles-dir")
	recommendCmd.Flags().IntVar(&recommendConcurrency, "concurrency", 4, "Profiles ranked in parallel in batch mode")
	recommendCmd.Flags().BoolVar(&recommendNarrative, "narrative", false, "Ask the LLM for the analysis text (needs an API key)")
	recommendCmd.Flags().StringVar(&recommendCatalog, "catalog", "", "Plan catalog JSON file (overrides catalog.path)")
	recommendCmd.MarkFlagsMutuallyExclusive("profile", "profiles-dir")
	recommendCmd.MarkFlagsOneRequired("profile", "profiles-dir")
	recommendCmd.MarkFlagsRequiredTogether("profiles-dir", "out-dir")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if recommendNarrative {
		cfg.Advisor.Narrative = true
	}
	if recommendCatalog != "" {
		cfg.Catalog.Path = recommendCatalog
	}
	svc, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	if recommendProfilesDir != "" {
		return recommendBatch(ctx, svc.Advisor, svc.Catalog, recommendProfilesDir, recommendOutDir, recommendConcurrency)
	}

	profile, err := readProfile(recommendProfile)
	if err != nil {
		return err
	}
	bundle := svc.Advisor.Recommend(ctx, profile, svc.Catalog)
	checkBundle(recommendProfile, bundle)

	if recommendOut != "" {
		return writeJSONFile(recommendOut, bundle)
	}
	if verbose {
		printer := observability.NewPrinter(cmd.OutOrStdout())
		printer.PrintProfile(profile)
		printer.PrintRisk(bundle.RiskValue)
		printer.PrintRecommendations(bundle)
		printer.PrintNarrative(bundle)
		return nil
	}
	return writeJSON(cmd.OutOrStdout(), bundle)
}

// recommendBatch ranks every *.json profile in dir. A profile that fails to load is
// logged and counted; it does not stop the batch.
func recommendBatch(ctx context.Context, adv *advisor.Advisor, plans []types.InsurancePlan, dir, outDir string, concurrency int) error {
	paths, err := listProfiles(dir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		zap.L().Info("no profiles found", zap.String("dir", dir))
		return nil
	}
	if concurrency < 1 {
		concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("profiles", len(paths)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64
	for _, path := range paths {
		g.Go(func() error {
			log := zap.L().With(zap.String("profile", path))

			profile, err := readProfile(path)
			if err != nil {
				failed.Add(1)
				log.Error("skipping profile", zap.Error(err))
				return nil
			}

			bundle := adv.Recommend(gctx, profile, plans)
			checkBundle(path, bundle)

			out := filepath.Join(outDir, filepath.Base(path))
			if err := writeJSONFile(out, bundle); err != nil {
				return eris.Wrapf(err, "write bundle for %s", path)
			}

			succeeded.Add(1)
			log.Debug("bundle written",
				zap.String("out", out),
				zap.Int("risk_value", bundle.RiskValue),
				zap.Int("plans", len(bundle.TopRecommendations)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	if failed.Load() > 0 {
		return eris.Errorf("%d of %d profiles failed", failed.Load(), len(paths))
	}
	return nil
}

func listProfiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read profiles directory %s", dir)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// checkBundle logs a warning when a bundle does not match the published schema.
func checkBundle(source string, bundle *types.RecommendationBundle) {
	if err := schemas.ValidateBundle(bundle); err != nil {
		zap.L().Warn("bundle failed schema validation",
			zap.String("profile", source),
			zap.Error(err),
		)
	}
}
