package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fuzzlab/ilfuzz/mutate"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the active mutators",
	Run: func(cmd *cobra.Command, _ []string) {
		engine, err := mutate.New(cfgFile, logger)
		if err != nil {
			logger.Fatal("Failed to initialize mutation engine", zap.Error(err))
		}
		for _, name := range engine.MutatorNames() {
			fmt.Println(mutatorStyle.Sprint(name))
		}
	},
}

func splitTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
