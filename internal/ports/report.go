package ports

import "context-bisect/internal/types"

type ReportWriterPort interface {
	WriteSummary(path string, summary types.BisectSummary) error
}
