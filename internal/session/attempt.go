package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yildizm/qupid/internal/qupid"
	"github.com/yildizm/qupid/internal/upload"
)

// Attempt is one submission begun by Controller.Begin
type Attempt struct {
	Seq       uint64
	RequestID string
	Files     []*upload.File
	StartedAt time.Time

	analyzer Analyzer
}

// Outcome is the settled result of an attempt
type Outcome struct {
	Seq       uint64
	RequestID string
	Result    *qupid.ServerResult
	Err       error
	Elapsed   time.Duration
}

// Execute issues the service call. It is safe to run off the controller's goroutine.
func (a *Attempt) Execute(ctx context.Context) Outcome {
	out := Outcome{Seq: a.Seq, RequestID: a.RequestID}

	result, err := a.call(ctx)
	out.Elapsed = time.Since(a.StartedAt)

	switch {
	case err != nil:
		out.Err = err
	case result == nil:
		out.Err = qupid.NewServerError(0, "", errors.New("empty result"))
	default:
		out.Result = result
	}
	return out
}

func (a *Attempt) call(ctx context.Context) (result *qupid.ServerResult, err error) {
	if a.analyzer == nil {
		return nil, qupid.NewTransportError("", errors.New("no analyzer configured"))
	}
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = qupid.NewTransportError("", fmt.Errorf("analyzer panicked: %v", r))
		}
	}()
	return a.analyzer.Analyze(ctx, &qupid.AnalyzeRequest{
		RequestID: a.RequestID,
		Files:     a.Files,
	})
}
