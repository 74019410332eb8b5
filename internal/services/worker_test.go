package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentboard/recruiting-api/internal/models"
)

type signalProcessor struct {
	runs chan string
}

func (p *signalProcessor) Run(ctx context.Context, sessionID string, rows []models.MTBRow) {
	p.runs <- sessionID
}

func TestWorkerProcessesEnqueuedRuns(t *testing.T) {
	processor := &signalProcessor{runs: make(chan string, 1)}
	sessions := NewSessionStore(0.05)
	worker := NewWorker(processor, sessions, 1)

	worker.Start(context.Background())
	defer worker.Stop()

	sessions.Create("s1", 0)
	worker.Enqueue(RunRequest{SessionID: "s1"})

	select {
	case got := <-processor.runs:
		assert.Equal(t, "s1", got)
	case <-time.After(2 * time.Second):
		t.Fatal("enqueued run was not processed in time")
	}
}

func TestWorkerEnqueueRejectsWhenQueueFull(t *testing.T) {
	processor := &signalProcessor{runs: make(chan string, 1)}
	sessions := NewSessionStore(0.05)
	// Never started, so nothing drains the queue.
	worker := NewWorker(processor, sessions, 1)

	for i := 0; i < 100; i++ {
		worker.Enqueue(RunRequest{SessionID: fmt.Sprintf("fill-%d", i)})
	}

	sessions.Create("overflow", 1)
	worker.Enqueue(RunRequest{SessionID: "overflow"})

	snapshot, ok := sessions.Snapshot("overflow")
	require.True(t, ok)
	assert.Equal(t, models.SessionStatusFailed, snapshot.Status)
	assert.Contains(t, snapshot.Error, "queue is full")
}

func TestWorkerEnqueueAfterStopFailsSession(t *testing.T) {
	processor := &signalProcessor{runs: make(chan string, 1)}
	sessions := NewSessionStore(0.05)
	worker := NewWorker(processor, sessions, 1)

	worker.Start(context.Background())
	worker.Stop()

	sessions.Create("late", 1)
	worker.Enqueue(RunRequest{SessionID: "late"})

	snapshot, ok := sessions.Snapshot("late")
	require.True(t, ok)
	assert.Equal(t, models.SessionStatusFailed, snapshot.Status)
	assert.Contains(t, snapshot.Error, "shutting down")
}
