package cfgfile

type topLevelManifest struct {
	Format string   `toml:"format"`
	Type   string   `toml:"type"`
	Files  []string `toml:"files"`
}

// topLevelGrammar is the top-level structure containing all keys in a
// complete CFG 'GRAMMAR' type file.
type topLevelGrammar struct {
	Format    string     `toml:"format"`
	Type      string     `toml:"type"`
	Name      string     `toml:"name,omitempty"`
	Start     string     `toml:"start,omitempty"`
	Rules     []string   `toml:"rules"`
	Terminals []terminal `toml:"terminal"`
}

type terminal struct {
	Symbol string `toml:"symbol"`
	Class  string `toml:"class,omitempty"`
}
