package services

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"talentboard/recruiting-api/internal/models"
	"talentboard/recruiting-api/internal/repositories"
)

// JobArtifact is the JSON file written at the end of a run. Serialization is
// lossless for the supported field set: re-reading the file reproduces the
// records.
type JobArtifact struct {
	SessionID   string                      `json:"session_id"`
	GeneratedAt time.Time                   `json:"generated_at"`
	Records     []models.OptimizedJobRecord `json:"records"`
}

// OutputWriter serializes a run's records to a JSON artifact and upserts
// each one into the relational store.
type OutputWriter interface {
	Write(sessionID string, records []models.OptimizedJobRecord) (string, error)
	ReadArtifact(path string) (*JobArtifact, error)
	ExportZip(w io.Writer) error
	EnsureOutputDir() error
}

type outputWriter struct {
	dir     string
	jobRepo repositories.JobRecordRepository
}

func NewOutputWriter(dir string, jobRepo repositories.JobRecordRepository) OutputWriter {
	return &outputWriter{
		dir:     dir,
		jobRepo: jobRepo,
	}
}

// EnsureOutputDir implements OutputWriter.
func (w *outputWriter) EnsureOutputDir() error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// Write implements OutputWriter. The file write is not atomic; a crash can
// leave a partial artifact.
func (w *outputWriter) Write(sessionID string, records []models.OptimizedJobRecord) (string, error) {
	if err := w.EnsureOutputDir(); err != nil {
		return "", err
	}

	artifact := JobArtifact{
		SessionID:   sessionID,
		GeneratedAt: time.Now().UTC(),
		Records:     records,
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal job artifact: %w", err)
	}

	filename := fmt.Sprintf("jobs_%s_%d.json", sessionID, time.Now().Unix())
	outputPath := filepath.Join(w.dir, filename)

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write job artifact: %w", err)
	}

	for i := range records {
		if err := w.jobRepo.Upsert(&records[i]); err != nil {
			return outputPath, fmt.Errorf("failed to upsert job %s: %w", records[i].JobID, err)
		}
	}

	return outputPath, nil
}

// ReadArtifact implements OutputWriter.
func (w *outputWriter) ReadArtifact(path string) (*JobArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job artifact: %w", err)
	}

	var artifact JobArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse job artifact: %w", err)
	}
	return &artifact, nil
}

// ExportZip implements OutputWriter. Bundles every JSON artifact in the
// output directory for bulk download.
func (w *outputWriter) ExportZip(out io.Writer) error {
	zw := zip.NewWriter(out)
	defer zw.Close()

	err := filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".json") {
			return nil
		}

		src, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open artifact %s: %w", path, err)
		}
		defer src.Close()

		dst, err := zw.Create(d.Name())
		if err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", d.Name(), err)
		}

		_, err = io.Copy(dst, src)
		return err
	})

	if err != nil {
		return fmt.Errorf("failed to export artifacts: %w", err)
	}
	return nil
}
