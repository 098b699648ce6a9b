package config

type Config struct {
	Version  int            `yaml:"version"`
	Defaults Defaults       `yaml:"defaults"`
	Match    MatchConfig    `yaml:"match"`
	Library  LibraryConfig  `yaml:"library"`
	Report   ReportConfig   `yaml:"report"`
	Playlist PlaylistConfig `yaml:"playlist"`
}

type Defaults struct {
	StateDir string `yaml:"state_dir"`
}

type MatchConfig struct {
	Strategy        string  `yaml:"strategy"`
	Cutoff          float64 `yaml:"cutoff"`
	CandidateSource string  `yaml:"candidate_source"`
}

type LibraryConfig struct {
	Extensions []string `yaml:"extensions,omitempty"`
}

type ReportConfig struct {
	Output         string `yaml:"output"`
	DiagnosticsDir string `yaml:"diagnostics_dir"`
}

type PlaylistConfig struct {
	Name        string `yaml:"name,omitempty"`
	Public      bool   `yaml:"public"`
	RedirectURI string `yaml:"redirect_uri"`
	TokenFile   string `yaml:"token_file"`
}

func DefaultConfig() Config {
	return Config{
		Version: 1,
		Defaults: Defaults{
			StateDir: defaultStateDir(),
		},
		Match: MatchConfig{
			Strategy:        "fuzzy",
			Cutoff:          0.7,
			CandidateSource: "filename",
		},
		Library: LibraryConfig{
			Extensions: []string{},
		},
		Report: ReportConfig{
			Output:         "missing_tracks.csv",
			DiagnosticsDir: "spotdiff-debug",
		},
		Playlist: PlaylistConfig{
			Public:      false,
			RedirectURI: "http://127.0.0.1:8888/callback",
			TokenFile:   "spotify-token.json",
		},
	}
}
