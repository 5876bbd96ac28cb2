package fundamentals

import (
	"fundamentals-agent/internal/interfaces"
	"fundamentals-agent/internal/types"
)

// NopProgress discards every checkpoint
type NopProgress struct{}

func (NopProgress) Update(string, types.Stage) {}

// ProgressFunc adapts a plain function to interfaces.ProgressReporter
type ProgressFunc func(ticker string, stage types.Stage)

func (f ProgressFunc) Update(ticker string, stage types.Stage) {
	f(ticker, stage)
}

var (
	_ interfaces.ProgressReporter = NopProgress{}
	_ interfaces.ProgressReporter = ProgressFunc(nil)
)
