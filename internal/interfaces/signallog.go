package interfaces

import "fundamentals-agent/internal/types"

// SignalRecorder persists finished analyses
type SignalRecorder interface {
	Append(e types.SignalEntry) error
}
