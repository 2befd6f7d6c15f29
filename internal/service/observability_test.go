package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/dutyroster/internal/scheduler"
)

func TestLogUseCaseObserver_Levels(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		level   string
		message string
	}{
		{"success", nil, "level=INFO", "roster use case done"},
		{"infeasible", &InfeasibleError{Problems: []scheduler.Problem{{Message: "short on residents"}}}, "level=WARN", "roster infeasible"},
		{"failure", errors.New("disk full"), "level=ERROR", "roster use case failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			obs := NewLogUseCaseObserver(&buf)
			obs.ObserveUseCase(context.Background(), UseCaseEvent{
				Name:     "plan",
				Duration: 12 * time.Millisecond,
				Success:  tt.err == nil,
				Err:      tt.err,
			})
			out := buf.String()
			assert.Contains(t, out, tt.level)
			assert.Contains(t, out, tt.message)
			assert.Contains(t, out, "use_case=plan")
			assert.Contains(t, out, "duration_ms=12")
		})
	}
}

func TestLogUseCaseObserver_FieldsSorted(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(&buf)
	obs.ObserveUseCase(context.Background(), UseCaseEvent{
		Name:    "plan",
		Success: true,
		Fields:  map[string]any{"seed": 7, "candidates": 5, "fill_rate": 1.0},
	})

	out := buf.String()
	c := strings.Index(out, "candidates=5")
	f := strings.Index(out, "fill_rate=1")
	s := strings.Index(out, "seed=7")
	require.True(t, c > 0 && f > 0 && s > 0, out)
	assert.Less(t, c, f)
	assert.Less(t, f, s)
}

func TestNewLogUseCaseObserver_NilWriter(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, NewLogUseCaseObserver(nil))
}

func TestUseCaseObserverOrNoop(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, useCaseObserverOrNoop(nil))
	obs := &captureObserver{}
	assert.Same(t, obs, useCaseObserverOrNoop([]UseCaseObserver{nil, obs}).(*captureObserver))
}
