package services

import (
	"context"
	"errors"
	"log"
	"sync"

	"talentboard/recruiting-api/internal/models"
)

// RunRequest is one queued pipeline session: the rows to process under a
// session id whose progress entry already exists.
type RunRequest struct {
	SessionID string
	Rows      []models.MTBRow
}

// Worker executes pipeline sessions in the background. Each session runs
// sequentially on one goroutine; concurrency controls how many sessions can
// run at once.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	Enqueue(req RunRequest)
}

type worker struct {
	processor   Processor
	sessions    SessionStore
	runQueue    chan RunRequest
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
}

func NewWorker(processor Processor, sessions SessionStore, concurrency int) Worker {
	return &worker{
		processor:   processor,
		sessions:    sessions,
		runQueue:    make(chan RunRequest, 100),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processRuns(ctx, i+1)
	}

	log.Println("✅ Worker started successfully")
}

// Stop implements Worker.
func (w *worker) Stop() {
	log.Println("🛑 Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	log.Println("✅ Worker stopped")
}

// Enqueue implements Worker. Never blocks the caller: a stopped worker or a
// full queue rejects the run and fails its session.
func (w *worker) Enqueue(req RunRequest) {
	select {
	case <-w.stopChan:
		log.Printf("⚠️  Worker stopped, cannot enqueue session %s\n", req.SessionID)
		w.sessions.Fail(req.SessionID, errors.New("worker is shutting down"))
		return
	default:
	}

	select {
	case w.runQueue <- req:
		log.Printf("📥 Session %s enqueued\n", req.SessionID)
	default:
		log.Printf("⚠️  Run queue is full, rejecting session %s\n", req.SessionID)
		w.sessions.Fail(req.SessionID, errors.New("run queue is full"))
	}
}

func (w *worker) processRuns(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log.Printf("🚀 Worker %d started processing sessions\n", workerID)

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case req := <-w.runQueue:
			log.Printf("👷 Worker #%d processing session %s\n", workerID, req.SessionID)
			w.processor.Run(ctx, req.SessionID, req.Rows)
		}
	}
}
