package config

import "fmt"

func DefaultTemplate() string {
	return fmt.Sprintf(`version: 1
defaults:
  state_dir: %q
match:
  # fuzzy: exact track lookup, then closest title at or above cutoff
  # exact: exact track lookup only
  strategy: "fuzzy"
  cutoff: %.2f
  # filename or tags (ID3 title, falling back to the filename)
  candidate_source: "filename"
library:
  extensions: []
report:
  output: %q
  diagnostics_dir: %q
playlist:
  name: ""
  public: false
  redirect_uri: %q
  token_file: %q
`, defaultStateDir(), 0.7, "missing_tracks.csv", "spotdiff-debug", "http://127.0.0.1:8888/callback", "spotify-token.json")
}
