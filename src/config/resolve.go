package config

// Level controls how much of the workspace gets resolved.
type Level string

const (
	LevelChanged Level = "changed"
	LevelFull    Level = "full"
)

// ResolveConfig holds workspace resolution settings.
type ResolveConfig struct {
	Level        Level    `yaml:"level"`
	TargetBranch string   `yaml:"target_branch"`
	Exclude      []string `yaml:"exclude"`

	// Extensions limits which files are resolved; empty means all.
	Extensions []string `yaml:"extensions"`

	// CacheSize bounds the number of distinct effective configs kept in
	// memory. Zero disables the cache.
	CacheSize int `yaml:"cache_size"`

	// Concurrency bounds parallel resolution; zero means NumCPU*2.
	Concurrency int `yaml:"concurrency"`
}

// DefaultResolveConfig returns production defaults.
func DefaultResolveConfig() ResolveConfig {
	return ResolveConfig{
		Level:      LevelFull,
		Exclude:    []string{"node_modules/**", "dist/**", "coverage/**"},
		Extensions: []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"},
		CacheSize:  256,
	}
}
