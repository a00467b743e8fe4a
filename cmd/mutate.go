package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fuzzlab/ilfuzz/internal"
	tt "github.com/fuzzlab/ilfuzz/internal/types"
	"github.com/fuzzlab/ilfuzz/lift"
	"github.com/fuzzlab/ilfuzz/mutate"
)

var (
	ignoreMutators string
	outDir         string
	dryRun         bool
)

var (
	mutatorStyle = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	okStyle      = color.New(color.FgGreen)
)

var mutateCmd = &cobra.Command{
	Use:   "mutate [paths...]",
	Short: "Apply structural mutations to corpus programs",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		engine, err := mutate.New(cfgFile, logger)
		if err != nil {
			logger.Fatal("Failed to initialize mutation engine", zap.Error(err))
		}
		applyIgnoreFlags(engine)

		mutations, err := mutate.ProcessFiles(ctx, logger, engine, args, processFile)
		if err != nil {
			logger.Fatal("Corpus run failed", zap.Error(err))
		}

		for _, m := range mutations {
			fmt.Printf("%s %s at instruction %d (%s)\n",
				okStyle.Sprint("applied"),
				mutatorStyle.Sprint(m.Mutator),
				m.Index,
				fileStyle.Sprint(m.Filename))
		}
		if len(mutations) == 0 {
			fmt.Println("no mutation applied")
		}
	},
}

func processFile(engine *internal.Engine, path string) ([]tt.Mutation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	prog, err := lift.Text{}.Parse(string(data))
	if err != nil {
		// A corpus file that does not parse is skipped, not fatal.
		logger.Warn("Skipping unparsable program", zap.String("file", path), zap.Error(err))
		return nil, nil
	}

	next, name, idx, ok := engine.MutateAny(prog)
	if !ok {
		return nil, nil
	}

	if !dryRun {
		out, err := lift.Text{}.Lift(next)
		if err != nil {
			return nil, err
		}
		target := path
		if outDir != "" {
			target = filepath.Join(outDir, filepath.Base(path))
		}
		if err := os.WriteFile(target, []byte(out), 0o644); err != nil {
			return nil, err
		}
	}
	return []tt.Mutation{{Mutator: name, Filename: path, Index: idx}}, nil
}

func applyIgnoreFlags(engine *internal.Engine) {
	if ignoreMutators == "" {
		return
	}
	for _, name := range splitTrim(ignoreMutators) {
		engine.IgnoreMutator(name)
	}
}

func init() {
	mutateCmd.Flags().StringVar(&ignoreMutators, "ignore", "", "Comma-separated list of mutators to disable")
	mutateCmd.Flags().StringVarP(&outDir, "output", "o", "", "Directory for mutated programs (default: in place)")
	mutateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report mutations without writing files")
}
