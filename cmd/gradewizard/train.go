package main

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/gradewizard/internal/features"
	"github.com/pavelanni/gradewizard/internal/gbr"
	"github.com/pavelanni/gradewizard/internal/model"
	"github.com/pavelanni/gradewizard/internal/store"
	"github.com/pavelanni/gradewizard/internal/synth"
)

func trainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Generate a synthetic dataset and train the grade model",
		RunE:  runTrain,
	}
	def := gbr.DefaultTrainConfig()
	f := cmd.Flags()
	f.String("variant", synth.Default.Name, fmt.Sprintf("Grade formula variant %v", synth.VariantNames()))
	f.IntP("samples", "n", 2000, "Number of synthetic samples")
	f.Uint64("seed", def.Seed, "Random seed for generation and splitting")
	f.StringP("model", "m", defaultModelPath, "Model artifact path (a .bak copy is written next to it)")
	f.String("db", "gradewizard.db", "SQLite database for the run history (empty to skip)")
	f.String("dataset-out", "", "Also write the generated dataset as CSV")
	f.IntSlice("trees", def.Grid.Trees, "Grid: number of trees")
	f.Float64Slice("learning-rates", def.Grid.LearningRates, "Grid: learning rates")
	f.IntSlice("max-depths", def.Grid.MaxDepths, "Grid: maximum tree depths")
	f.Int("folds", def.Folds, "Cross-validation folds")
	f.Float64("test-fraction", def.TestFraction, "Held-out fraction")
	f.Int("workers", 0, "Parallel fits (0 = number of CPUs)")
	addLogFlags(cmd)
	return cmd
}

func runTrain(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	variant, err := synth.Lookup(v.GetString("variant"))
	if err != nil {
		return err
	}
	seed := v.GetUint64("seed")

	gen := synth.NewGenerator(variant, rand.NewPCG(seed, seed+1))
	ds, err := synth.Build(gen, v.GetInt("samples"))
	if err != nil {
		return fmt.Errorf("build dataset: %w", err)
	}
	slog.Info("generated dataset", "variant", variant.Name, "samples", ds.Len())

	if out := v.GetString("dataset-out"); out != "" {
		if err := writeDataset(ds, out); err != nil {
			return err
		}
	}

	rates, err := floatList(v, "learning-rates")
	if err != nil {
		return fmt.Errorf("learning-rates: %w", err)
	}

	x, y, err := ds.Matrix()
	if err != nil {
		return fmt.Errorf("dataset matrix: %w", err)
	}

	cfg := gbr.TrainConfig{
		Grid: gbr.Grid{
			Trees:         v.GetIntSlice("trees"),
			LearningRates: rates,
			MaxDepths:     v.GetIntSlice("max-depths"),
		},
		Folds:        v.GetInt("folds"),
		TestFraction: v.GetFloat64("test-fraction"),
		Seed:         seed,
		Workers:      v.GetInt("workers"),
	}
	m, rep, err := gbr.Train(cmd.Context(), x, y, features.Columns, cfg)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	m.Variant = variant.Name
	m.TrainedAt = time.Now().UTC()

	path := v.GetString("model")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	if err := m.Save(path, gbr.BackupPath(path)); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read back model: %w", err)
	}
	sum := sha256sum(data)
	slog.Info("model saved", "path", path, "backup", gbr.BackupPath(path), "sha256", sum)

	printReport(cmd, rep)

	if dbPath := v.GetString("db"); dbPath != "" {
		if err := recordRun(dbPath, variant.Name, ds.Len(), path, sum, m, rep); err != nil {
			return err
		}
	}
	return nil
}

// floatList reads a float list from a flag ("[0.01,0.05]"), an env var
// ("0.01,0.05") or a config file list.
func floatList(v *viper.Viper, key string) ([]float64, error) {
	raw := v.Get(key)
	var items []any
	if s, ok := raw.(string); ok {
		s = strings.Trim(strings.TrimSpace(s), "[]")
		for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
			items = append(items, f)
		}
	} else {
		var err error
		if items, err = cast.ToSliceE(raw); err != nil {
			return nil, err
		}
	}

	out := make([]float64, 0, len(items))
	for _, it := range items {
		f, err := cast.ToFloat64E(it)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func writeDataset(ds *synth.Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset file: %w", err)
	}
	defer f.Close()
	if err := ds.WriteCSV(f); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	slog.Info("dataset written", "path", path, "rows", ds.Len())
	return f.Close()
}

func printReport(cmd *cobra.Command, rep *gbr.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "best parameters: %s (cv MAE %.3f)\n", rep.Best.Params, rep.Best.MAE)
	fmt.Fprintf(out, "test MAE: %.3f  baseline MAE: %.3f  (train %d, test %d rows, %s)\n\n",
		rep.TestMAE, rep.BaselineMAE, rep.TrainRows, rep.TestRows, rep.Elapsed.Round(time.Millisecond))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FEATURE\tIMPORTANCE")
	for _, imp := range rep.Importances {
		fmt.Fprintf(tw, "%s\t%.4f\n", imp.Feature, imp.Value)
	}
	_ = tw.Flush()
}

func recordRun(dbPath, variant string, samples int, path, sum string, m *gbr.Model, rep *gbr.Report) error {
	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	imps := make(map[string]float64, len(rep.Importances))
	for _, imp := range rep.Importances {
		imps[imp.Feature] = imp.Value
	}
	id, err := db.InsertTrainingRun(model.TrainingRun{
		Variant:      variant,
		Samples:      samples,
		Trees:        m.Params.Trees,
		LearningRate: m.Params.LearningRate,
		MaxDepth:     m.Params.MaxDepth,
		CVMAE:        rep.Best.MAE,
		TestMAE:      rep.TestMAE,
		BaselineMAE:  rep.BaselineMAE,
		ModelPath:    path,
		ModelSHA256:  sum,
		Importances:  imps,
	})
	if err != nil {
		return fmt.Errorf("record training run: %w", err)
	}

	for k, val := range map[string]string{
		store.MetaModelPath:    path,
		store.MetaModelVariant: variant,
		store.MetaModelSHA256:  sum,
		store.MetaTrainedAt:    m.TrainedAt.Format(time.RFC3339),
	} {
		if err := db.SetMetadata(k, val); err != nil {
			return fmt.Errorf("set metadata %s: %w", k, err)
		}
	}
	slog.Info("training run recorded", "id", id, "db", dbPath)
	return nil
}
