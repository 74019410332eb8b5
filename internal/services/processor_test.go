package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"talentboard/recruiting-api/internal/models"
)

type fakeBoardSource struct {
	rows     []models.MTBRow
	docs     map[string]*models.JobDocument
	fetchErr map[string]error
}

func (f *fakeBoardSource) FetchBoard(ctx context.Context) ([]models.MTBRow, error) {
	return f.rows, nil
}

func (f *fakeBoardSource) FetchDocument(ctx context.Context, row models.MTBRow) (*models.JobDocument, error) {
	if err, ok := f.fetchErr[row.JobID]; ok {
		return nil, err
	}
	doc, ok := f.docs[row.JobID]
	if !ok {
		return nil, fmt.Errorf("no document for job %s", row.JobID)
	}
	return doc, nil
}

type fakeCache struct {
	records map[string]*models.ExtractionRecord
	stored  []*models.ExtractionRecord
}

func newFakeCache() *fakeCache {
	return &fakeCache{records: make(map[string]*models.ExtractionRecord)}
}

func (f *fakeCache) Lookup(contentHash string) (*models.ExtractionRecord, bool) {
	record, ok := f.records[contentHash]
	return record, ok
}

func (f *fakeCache) Store(record *models.ExtractionRecord) error {
	f.records[record.ContentHash] = record
	f.stored = append(f.stored, record)
	return nil
}

type fakeExtractor struct {
	calls   int
	failFor map[string]error
}

func (f *fakeExtractor) Process(ctx context.Context, doc *models.JobDocument) (*models.ExtractionRecord, error) {
	f.calls++
	if err, ok := f.failFor[doc.JobID]; ok {
		return nil, err
	}
	return &models.ExtractionRecord{
		ContentHash: doc.ContentHash,
		ExtractedFields: datatypes.JSONMap{
			"company":  "Extracted Co",
			"position": "Extracted Role",
		},
		ExtractionModel:  "gemini-test",
		ValidationModel:  "claude-test",
		PromptTokens:     100,
		CompletionTokens: 50,
	}, nil
}

type fakeWriter struct {
	written  []models.OptimizedJobRecord
	writeErr error
}

func (f *fakeWriter) Write(sessionID string, records []models.OptimizedJobRecord) (string, error) {
	if f.writeErr != nil {
		return "", f.writeErr
	}
	f.written = records
	return "/output/jobs_" + sessionID + ".json", nil
}

func (f *fakeWriter) ReadArtifact(path string) (*JobArtifact, error) { return nil, nil }

func (f *fakeWriter) ExportZip(w io.Writer) error { return nil }

func (f *fakeWriter) EnsureOutputDir() error { return nil }

func boardFixture() (*fakeBoardSource, []models.MTBRow) {
	rows := []models.MTBRow{
		{JobID: "job-1", Company: "Acme", Position: "Engineer", DescriptionFileID: "f1"},
		{JobID: "job-2", Company: "Beta", DescriptionFileID: "f2"},
		{JobID: "job-3", Company: "Gamma", DescriptionFileID: "f3"},
	}
	source := &fakeBoardSource{
		rows: rows,
		docs: map[string]*models.JobDocument{
			"job-1": {JobID: "job-1", RawText: "desc one", ContentHash: "hash-1"},
			"job-2": {JobID: "job-2", RawText: "desc two", ContentHash: "hash-2"},
			"job-3": {JobID: "job-3", RawText: "desc three", ContentHash: "hash-3"},
		},
		fetchErr: map[string]error{},
	}
	return source, rows
}

func TestProcessorRunCacheHitSkipsAICall(t *testing.T) {
	source, rows := boardFixture()
	cache := newFakeCache()
	// job-2's document is already cached.
	cache.records["hash-2"] = &models.ExtractionRecord{
		ContentHash:     "hash-2",
		ExtractedFields: datatypes.JSONMap{"company": "Cached Co", "position": "Cached Role"},
	}

	extractor := &fakeExtractor{}
	sessions := NewSessionStore(0.05)
	writer := &fakeWriter{}

	processor := NewProcessor(source, cache, extractor, sessions, writer)
	sessions.Create("s1", len(rows))
	processor.Run(context.Background(), "s1", rows)

	snapshot, ok := sessions.Snapshot("s1")
	require.True(t, ok)
	assert.Equal(t, models.SessionStatusCompleted, snapshot.Status)
	assert.Equal(t, 1, snapshot.CacheHits)
	assert.Equal(t, 2, snapshot.CacheMisses)
	assert.Equal(t, snapshot.TotalJobs, snapshot.CacheHits+snapshot.CacheMisses)

	// One AI call per pipeline invocation, cache hits make none.
	assert.Equal(t, 2, snapshot.AICallsMade)
	assert.Equal(t, 2, extractor.calls)
	assert.Equal(t, 3, snapshot.CompletedJobs)
	assert.Zero(t, snapshot.FailedJobs)

	// Both misses were persisted for future runs.
	assert.Len(t, cache.stored, 2)

	require.Len(t, writer.written, 3)
	for _, record := range writer.written {
		if record.JobID == "job-2" {
			assert.True(t, record.FromCache)
		} else {
			assert.False(t, record.FromCache)
		}
	}
}

func TestProcessorRunPartialSuccess(t *testing.T) {
	source, rows := boardFixture()
	source.fetchErr["job-2"] = errors.New("drive download failed")

	cache := newFakeCache()
	extractor := &fakeExtractor{failFor: map[string]error{"job-3": errors.New("model refused")}}
	sessions := NewSessionStore(0.05)
	writer := &fakeWriter{}

	processor := NewProcessor(source, cache, extractor, sessions, writer)
	sessions.Create("s1", len(rows))
	processor.Run(context.Background(), "s1", rows)

	snapshot, ok := sessions.Snapshot("s1")
	require.True(t, ok)

	// Per-job failures do not fail the run.
	assert.Equal(t, models.SessionStatusCompleted, snapshot.Status)
	assert.Equal(t, 1, snapshot.CompletedJobs)
	assert.Equal(t, 2, snapshot.FailedJobs)
	assert.Equal(t, snapshot.TotalJobs, snapshot.CompletedJobs+snapshot.FailedJobs)

	require.Len(t, snapshot.FailedJobList, 2)
	assert.Equal(t, "job-2", snapshot.FailedJobList[0].JobID)
	assert.Equal(t, "job-3", snapshot.FailedJobList[1].JobID)

	require.Len(t, writer.written, 1)
	assert.Equal(t, "job-1", writer.written[0].JobID)
}

func TestProcessorRunMixedCacheHitAndFailure(t *testing.T) {
	source, rows := boardFixture()
	cache := newFakeCache()
	// job-1's document is already cached; job-2's extraction errors out;
	// job-3 is novel and succeeds.
	cache.records["hash-1"] = &models.ExtractionRecord{
		ContentHash:     "hash-1",
		ExtractedFields: datatypes.JSONMap{"company": "Cached Co", "position": "Cached Role"},
	}
	extractor := &fakeExtractor{failFor: map[string]error{"job-2": errors.New("model timeout")}}
	sessions := NewSessionStore(0.05)
	writer := &fakeWriter{}

	processor := NewProcessor(source, cache, extractor, sessions, writer)
	sessions.Create("s1", len(rows))
	processor.Run(context.Background(), "s1", rows)

	snapshot, ok := sessions.Snapshot("s1")
	require.True(t, ok)
	assert.Equal(t, models.SessionStatusCompleted, snapshot.Status)
	assert.Equal(t, 1, snapshot.CacheHits)
	assert.Equal(t, 2, snapshot.CacheMisses)

	// Only job-3's pipeline invocation counts as an AI call.
	assert.Equal(t, 1, snapshot.AICallsMade)
	assert.Equal(t, []string{"job-1", "job-3"}, snapshot.CompletedJobIDs)
	require.Len(t, snapshot.FailedJobList, 1)
	assert.Equal(t, "job-2", snapshot.FailedJobList[0].JobID)
	assert.Equal(t, snapshot.TotalJobs, snapshot.CompletedJobs+snapshot.FailedJobs)
}

func TestProcessorRunWriteFailureFailsSession(t *testing.T) {
	source, rows := boardFixture()
	cache := newFakeCache()
	extractor := &fakeExtractor{}
	sessions := NewSessionStore(0.05)
	writer := &fakeWriter{writeErr: errors.New("disk full")}

	processor := NewProcessor(source, cache, extractor, sessions, writer)
	sessions.Create("s1", len(rows))
	processor.Run(context.Background(), "s1", rows)

	snapshot, ok := sessions.Snapshot("s1")
	require.True(t, ok)
	assert.Equal(t, models.SessionStatusFailed, snapshot.Status)
	assert.Contains(t, snapshot.Error, "disk full")
}

func TestBuildJobRecordBoardValuesWin(t *testing.T) {
	row := models.MTBRow{
		JobID:   "job-1",
		Company: "Board Co",
	}
	doc := &models.JobDocument{JobID: "job-1", ContentHash: "hash-1"}
	record := &models.ExtractionRecord{
		ContentHash: "hash-1",
		ExtractedFields: datatypes.JSONMap{
			"company":      "Extracted Co",
			"position":     "Extracted Role",
			"location":     "Berlin",
			"salary_range": "80k-100k",
		},
		ExtractionModel: "gemini-test",
		ValidationModel: "claude-test",
	}

	job := buildJobRecord(row, doc, record, true)

	assert.Equal(t, "Board Co", job.Company)
	// Blank board columns are filled from the extraction.
	assert.Equal(t, "Extracted Role", job.Position)
	assert.Equal(t, "Berlin", job.Location)
	assert.Equal(t, "80k-100k", job.SalaryRange)
	assert.Equal(t, "hash-1", job.ContentHash)
	assert.True(t, job.FromCache)
	assert.Equal(t, "gemini-test", job.ExtractionModel)
}
