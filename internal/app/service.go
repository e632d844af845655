package app

import (
	"context-bisect/internal/adapters"
	"context-bisect/internal/core"
	"context-bisect/internal/ports"
)

type Service struct {
	SnapshotStore ports.SnapshotStorePort
	CheckRunner   ports.CheckRunnerPort
	ReportWriter  ports.ReportWriterPort
	RepoIndex     func(path string) ports.RepoIndexPort
	Cache         *core.ResolveCache
}

func NewService() Service {
	return Service{
		SnapshotStore: adapters.NewSnapshotFileAdapter(),
		CheckRunner:   adapters.NewCheckScriptAdapter(),
		ReportWriter:  adapters.NewReportFileAdapter(),
		RepoIndex: func(path string) ports.RepoIndexPort {
			return adapters.NewRepoIndexFileAdapter(path)
		},
		Cache: core.NewResolveCache(),
	}
}
