package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"talentboard/recruiting-api/internal/models"
)

// Processor runs one pipeline session: for each board row, fetch the
// document, consult the extraction cache, run the AI pipeline on a miss,
// and record progress. Jobs in a run are processed sequentially; separate
// sessions run concurrently as independent worker jobs.
type Processor interface {
	Run(ctx context.Context, sessionID string, rows []models.MTBRow)
}

type processorService struct {
	source    BoardSource
	cache     ExtractionCache
	extractor Extractor
	sessions  SessionStore
	writer    OutputWriter
}

func NewProcessor(
	source BoardSource,
	cache ExtractionCache,
	extractor Extractor,
	sessions SessionStore,
	writer OutputWriter,
) Processor {
	return &processorService{
		source:    source,
		cache:     cache,
		extractor: extractor,
		sessions:  sessions,
		writer:    writer,
	}
}

// Run implements Processor. Per-job failures are recorded and skipped; the
// run itself completes (partial success). Only writing the output artifact
// can fail the whole session at this point.
func (p *processorService) Run(ctx context.Context, sessionID string, rows []models.MTBRow) {
	log.Printf("🔄 Starting processing session %s with %d jobs\n", sessionID, len(rows))

	var results []models.OptimizedJobRecord

	for i, row := range rows {
		p.sessions.SetCurrent(sessionID, i, row.JobID, "fetching document")
		p.sessions.LogCommand(sessionID, fmt.Sprintf("download %s", row.JobID))

		doc, err := p.source.FetchDocument(ctx, row)
		if err != nil {
			log.Printf("❌ Job %s failed during fetch: %v\n", row.JobID, err)
			p.sessions.JobFailed(sessionID, row.JobID, err)
			continue
		}

		p.sessions.SetCurrent(sessionID, i, row.JobID, "cache lookup")

		record, hit := p.cache.Lookup(doc.ContentHash)
		if hit {
			p.sessions.RecordCacheHit(sessionID)
			p.sessions.LogCommand(sessionID, fmt.Sprintf("cache hit %s", row.JobID))
		} else {
			p.sessions.RecordCacheMiss(sessionID)
			p.sessions.SetCurrent(sessionID, i, row.JobID, "extracting")
			p.sessions.LogCommand(sessionID, fmt.Sprintf("extract+validate %s", row.JobID))

			record, err = p.extractor.Process(ctx, doc)
			if err != nil {
				log.Printf("❌ Job %s failed during extraction: %v\n", row.JobID, err)
				p.sessions.JobFailed(sessionID, row.JobID, err)
				continue
			}

			p.sessions.RecordAICall(sessionID, TokenUsage{
				PromptTokens:     record.PromptTokens,
				CompletionTokens: record.CompletionTokens,
			})

			if err := p.cache.Store(record); err != nil {
				// The extraction succeeded; a cache persistence problem
				// should not fail the job.
				log.Printf("⚠️  Failed to store extraction for job %s: %v\n", row.JobID, err)
			}
		}

		results = append(results, buildJobRecord(row, doc, record, hit))
		p.sessions.JobCompleted(sessionID, row.JobID)
	}

	p.sessions.SetCurrent(sessionID, len(rows), "", "writing output")

	outputPath, err := p.writer.Write(sessionID, results)
	if err != nil {
		log.Printf("❌ Session %s failed writing output: %v\n", sessionID, err)
		p.sessions.Fail(sessionID, err)
		return
	}

	p.sessions.Complete(sessionID, outputPath)
	log.Printf("✅ Session %s completed: %d jobs, artifact %s\n", sessionID, len(results), outputPath)
}

// buildJobRecord merges the tracking-board row with the extraction result
// into the durable record. Board values win over extracted ones for the
// columns the board owns.
func buildJobRecord(row models.MTBRow, doc *models.JobDocument, record *models.ExtractionRecord, fromCache bool) models.OptimizedJobRecord {
	job := models.OptimizedJobRecord{
		ID:              uuid.New(),
		JobID:           row.JobID,
		Company:         row.Company,
		Position:        row.Position,
		Location:        row.Location,
		SalaryRange:     row.SalaryRange,
		ContentHash:     doc.ContentHash,
		ExtractedFields: record.ExtractedFields,
		ExtractionModel: record.ExtractionModel,
		ValidationModel: record.ValidationModel,
		FromCache:       fromCache,
	}

	stringField := func(name string) string {
		if v, ok := record.ExtractedFields[name].(string); ok {
			return v
		}
		return ""
	}

	if job.Company == "" {
		job.Company = stringField("company")
	}
	if job.Position == "" {
		job.Position = stringField("position")
	}
	if job.Location == "" {
		job.Location = stringField("location")
	}
	if job.SalaryRange == "" {
		job.SalaryRange = stringField("salary_range")
	}

	return job
}
