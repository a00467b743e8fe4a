// Package mutate is the public entry point: it builds an engine from the
// yaml configuration and offers corpus-level helpers for drivers and the
// CLI.
package mutate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/fuzzlab/ilfuzz/internal"
	"github.com/fuzzlab/ilfuzz/internal/mutators"
	tt "github.com/fuzzlab/ilfuzz/internal/types"
	"github.com/fuzzlab/ilfuzz/lift"
)

// ProgramExt is the corpus file extension handled by ProcessFiles.
const ProgramExt = ".il"

// New builds an engine from the configuration file. An empty path yields
// the default configuration. The whole-program pin is wired to the textual
// lifter/parser collaborator here; the engine core only sees interfaces.
func New(configPath string, logger *zap.Logger) (*internal.Engine, error) {
	config, err := parseConfigurationFile(configPath)
	if err != nil {
		return nil, err
	}

	engine := internal.NewEngine(logger, config.Seed)
	engine.Register(mutators.NewProgramPin(lift.Text{}, lift.Text{}))

	for name, mc := range config.Mutators {
		if mc.Enabled != nil && !*mc.Enabled {
			engine.IgnoreMutator(name)
			continue
		}
		if mc.Target == "" {
			continue
		}
		switch name {
		case "literal-pin":
			engine.Register(mutators.NewLiteralPinWith(mc.Target, mc.Replacement))
		case "program-pin":
			engine.Register(mutators.NewProgramPinWith(lift.Text{}, lift.Text{}, mc.Target, mc.Replacement))
		}
	}
	return engine, nil
}

func parseConfigurationFile(configPath string) (tt.Config, error) {
	var config tt.Config
	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return config, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parsing config %s: %w", configPath, err)
	}
	return config, nil
}

// ProcessFiles runs processor over every corpus program under the given
// paths (directories are walked for ProgramExt files) and collects the
// applied mutations.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine *internal.Engine,
	paths []string,
	processor func(*internal.Engine, string) ([]tt.Mutation, error),
) ([]tt.Mutation, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		err = filepath.Walk(path, func(filePath string, fileInfo os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !fileInfo.IsDir() && filepath.Ext(filePath) == ProgramExt {
				files = append(files, filePath)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error walking directory %s: %w", path, err)
		}
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("mutating"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
	)

	var allMutations []tt.Mutation
	for _, file := range files {
		select {
		case <-ctx.Done():
			return allMutations, ctx.Err()
		default:
		}

		mutations, err := processor(engine, file)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing file", zap.String("file", file), zap.Error(err))
			}
			return nil, err
		}
		allMutations = append(allMutations, mutations...)
		_ = bar.Add(1)
	}
	fmt.Println()

	return allMutations, nil
}
