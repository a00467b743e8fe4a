package types

// Mutation describes one applied rewrite, for reporting.
type Mutation struct {
	Mutator  string
	Filename string
	Index    int
}

// ConfigMutator is the per-mutator block of the yaml configuration.
// Enabled defaults to true; Target/Replacement override the pinned strings
// of the equivalence mutators and are ignored by the structural ones.
type ConfigMutator struct {
	Enabled     *bool  `yaml:"enabled"`
	Target      string `yaml:"target"`
	Replacement string `yaml:"replacement"`
}

// Config is the root of the yaml configuration file.
type Config struct {
	Seed     int64                    `yaml:"seed"`
	Mutators map[string]ConfigMutator `yaml:"mutators"`
}
