package main

// CLIResult is the top-level envelope for all query commands.
type CLIResult struct {
	Command    string `json:"command" yaml:"command"`
	Results    any    `json:"results" yaml:"results"`
	TotalCount *int   `json:"total_count,omitempty" yaml:"total_count,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// CLILookup is the answer to a single-value lookup.
type CLILookup struct {
	Query  string `json:"query" yaml:"query"`
	Result string `json:"result,omitempty" yaml:"result,omitempty"`
	Found  bool   `json:"found" yaml:"found"`
}
