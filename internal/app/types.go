package app

import "context-bisect/internal/types"

type RunRequest struct {
	// Items are two-or-more snapshot (.ctx) references or raw request
	// strings, ordered known-good first, known-bad last.
	Items      []string
	CheckPath  string
	RepoIndex  string
	Root       string
	Partial    bool
	Matches    []string
	ReportPath string
}

type RunResult struct {
	Summary types.BisectSummary
}

type DiffRequest struct {
	Before    string
	After     string
	RepoIndex string
	Root      string
}

type DiffResult struct {
	Diff types.DiffResult
}

type ResolveRequest struct {
	Request   string
	RepoIndex string
	Output    string
}

type ResolveResult struct {
	OutputPath   string
	PackageCount int
}
