package services

import (
	"sync"
	"time"

	"talentboard/recruiting-api/internal/models"
)

// SessionStore tracks per-run progress. Sessions live only in process
// memory; the pipeline is the single writer for a session id and the UI
// poller reads snapshots. Terminal sessions stay readable until cleared or
// overwritten by a new run with the same id.
type SessionStore interface {
	Create(sessionID string, totalJobs int)
	SetCurrent(sessionID string, index int, jobID, step string)
	LogCommand(sessionID, command string)
	RecordCacheHit(sessionID string)
	RecordCacheMiss(sessionID string)
	RecordAICall(sessionID string, usage TokenUsage)
	JobCompleted(sessionID, jobID string)
	JobFailed(sessionID, jobID string, err error)
	Complete(sessionID, artifactPath string)
	Fail(sessionID string, err error)
	Snapshot(sessionID string) (*models.SessionSnapshot, bool)
	Clear(sessionID string) bool
}

type sessionStore struct {
	mu             sync.RWMutex
	sessions       map[string]*models.ProcessingSession
	avgCostPerCall float64
}

func NewSessionStore(avgCostPerCall float64) SessionStore {
	return &sessionStore{
		sessions:       make(map[string]*models.ProcessingSession),
		avgCostPerCall: avgCostPerCall,
	}
}

// Create implements SessionStore. Creating with an existing id overwrites
// the previous run's session.
func (s *sessionStore) Create(sessionID string, totalJobs int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionID] = &models.ProcessingSession{
		SessionID: sessionID,
		Status:    models.SessionStatusRunning,
		TotalJobs: totalJobs,
		StartTime: time.Now(),
	}
}

// SetCurrent implements SessionStore.
func (s *sessionStore) SetCurrent(sessionID string, index int, jobID, step string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[sessionID]; ok {
		session.CurrentJobIndex = index
		session.CurrentJobID = jobID
		session.CurrentStep = step
	}
}

// LogCommand implements SessionStore.
func (s *sessionStore) LogCommand(sessionID, command string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[sessionID]; ok {
		session.Commands = append(session.Commands, command)
	}
}

// RecordCacheHit implements SessionStore.
func (s *sessionStore) RecordCacheHit(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[sessionID]; ok {
		session.CacheHits++
	}
}

// RecordCacheMiss implements SessionStore.
func (s *sessionStore) RecordCacheMiss(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[sessionID]; ok {
		session.CacheMisses++
	}
}

// RecordAICall implements SessionStore. One call per pipeline invocation,
// with the summed extraction+validation token usage.
func (s *sessionStore) RecordAICall(sessionID string, usage TokenUsage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[sessionID]; ok {
		session.AICallsMade++
		session.PromptTokens += usage.PromptTokens
		session.CompletionTokens += usage.CompletionTokens
	}
}

// JobCompleted implements SessionStore.
func (s *sessionStore) JobCompleted(sessionID, jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[sessionID]; ok {
		session.CompletedJobIDs = append(session.CompletedJobIDs, jobID)
	}
}

// JobFailed implements SessionStore.
func (s *sessionStore) JobFailed(sessionID, jobID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[sessionID]; ok {
		session.FailedJobs = append(session.FailedJobs, models.FailedJob{
			JobID: jobID,
			Error: err.Error(),
		})
	}
}

// Complete implements SessionStore. Per-job failures do not prevent
// completion: a run that processed every job is completed even when some
// jobs failed.
func (s *sessionStore) Complete(sessionID, artifactPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[sessionID]; ok {
		now := time.Now()
		session.Status = models.SessionStatusCompleted
		session.ArtifactPath = artifactPath
		session.CurrentStep = "done"
		session.EndTime = &now
	}
}

// Fail implements SessionStore. Reserved for fatal errors that abort the
// whole run.
func (s *sessionStore) Fail(sessionID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[sessionID]; ok {
		now := time.Now()
		session.Status = models.SessionStatusFailed
		session.Error = err.Error()
		session.EndTime = &now
	}
}

// Snapshot implements SessionStore.
func (s *sessionStore) Snapshot(sessionID string) (*models.SessionSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}

	snapshot := &models.SessionSnapshot{
		SessionID:        session.SessionID,
		Status:           session.Status,
		TotalJobs:        session.TotalJobs,
		CompletedJobs:    len(session.CompletedJobIDs),
		FailedJobs:       len(session.FailedJobs),
		CompletedJobIDs:  append([]string(nil), session.CompletedJobIDs...),
		FailedJobList:    append([]models.FailedJob(nil), session.FailedJobs...),
		CacheHits:        session.CacheHits,
		CacheMisses:      session.CacheMisses,
		AICallsMade:      session.AICallsMade,
		PromptTokens:     session.PromptTokens,
		CompletionTokens: session.CompletionTokens,
		MoneySaved:       float64(session.CacheHits) * s.avgCostPerCall,
		CurrentJobIndex:  session.CurrentJobIndex,
		CurrentJobID:     session.CurrentJobID,
		CurrentStep:      session.CurrentStep,
		Commands:         append([]string(nil), session.Commands...),
		ArtifactPath:     session.ArtifactPath,
		Error:            session.Error,
		StartTime:        session.StartTime,
		EndTime:          session.EndTime,
	}

	return snapshot, true
}

// Clear implements SessionStore.
func (s *sessionStore) Clear(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return false
	}
	delete(s.sessions, sessionID)
	return true
}
