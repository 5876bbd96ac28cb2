package summaryobs

import (
	"context"
	"time"

	"fundamentals-agent/internal/interfaces"
	"fundamentals-agent/internal/logger"
	"fundamentals-agent/internal/trace"
)

type observableSummarizer struct {
	summarizer interfaces.Summarizer
}

var _ interfaces.Summarizer = (*observableSummarizer)(nil)

func Wrap(summarizer interfaces.Summarizer) interfaces.Summarizer {
	return &observableSummarizer{
		summarizer: summarizer,
	}
}

func (o *observableSummarizer) SummarizeDay(t time.Time) (string, error) {
	ctx, span := trace.StartSpan(context.Background(), "summary.SummarizeDay")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Starting daily signal summary",
		"date", t.Format("2006-01-02"),
	)

	csvPath, err := o.summarizer.SummarizeDay(t)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Daily signal summary failed", err,
			"date", t.Format("2006-01-02"),
		)
		return "", err
	}

	if csvPath == "" {
		logger.InfoSkip(ctx, 1, "No signals logged for daily summary",
			"date", t.Format("2006-01-02"),
		)
		return "", nil
	}

	logger.InfoSkip(ctx, 1, "Daily signal summary generated",
		"date", t.Format("2006-01-02"),
		"csv_path", csvPath,
	)
	return csvPath, nil
}

func (o *observableSummarizer) SummarizeToday() (string, error) {
	ctx, span := trace.StartSpan(context.Background(), "summary.SummarizeToday")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Starting today's signal summary")

	csvPath, err := o.summarizer.SummarizeToday()
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Today's signal summary failed", err)
		return "", err
	}
	if csvPath == "" {
		logger.InfoSkip(ctx, 1, "No signals logged today")
		return "", nil
	}

	logger.InfoSkip(ctx, 1, "Today's signal summary generated", "csv_path", csvPath)
	return csvPath, nil
}
