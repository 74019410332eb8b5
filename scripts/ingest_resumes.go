package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"talentboard/recruiting-api/internal/config"
	"talentboard/recruiting-api/internal/models"
	"talentboard/recruiting-api/internal/repositories"
	"talentboard/recruiting-api/internal/services"
)

// Bulk-ingests a directory of resume files (PDF or TXT) into Postgres and
// the Qdrant search index. Usage: go run scripts/ingest_resumes.go [dir]
func main() {
	log.Println("🚀 Starting resume ingestion...")

	resumeDir := "./resumes"
	if len(os.Args) > 1 {
		resumeDir = os.Args[1]
	}

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	resumeRepo := repositories.NewResumeRepository(db)

	// Initialize services
	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	searchService, err := services.NewResumeSearchService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		geminiService,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := searchService.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	parser := services.NewDocumentParser()

	entries, err := os.ReadDir(resumeDir)
	if err != nil {
		log.Fatalf("❌ Failed to read resume directory %s: %v", resumeDir, err)
	}

	ctx := context.Background()

	successCount := 0
	skipCount := 0
	failCount := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".pdf" && ext != ".txt" {
			continue
		}

		path := filepath.Join(resumeDir, entry.Name())
		log.Printf("\n📄 Processing: %s", entry.Name())

		// Extract text
		log.Printf("   📖 Extracting text...")
		rawText, err := parser.ExtractFromFile(path)
		if err != nil {
			log.Printf("   ❌ Failed to extract text: %v", err)
			failCount++
			continue
		}

		rawText = services.CleanText(rawText)
		contentHash := services.HashContent(rawText)

		// Skip duplicates so the script can be re-run
		if existing, err := resumeRepo.FindByContentHash(contentHash); err == nil {
			log.Printf("   ⚠️  Already ingested as %s, skipping...", existing.ID)
			skipCount++
			continue
		}

		base := strings.TrimSuffix(entry.Name(), ext)
		candidateName := strings.ReplaceAll(base, "_", " ")

		resume := models.Resume{
			ID:               uuid.New(),
			Filename:         entry.Name(),
			OriginalFileName: entry.Name(),
			CandidateName:    candidateName,
			FilePath:         path,
			ContentHash:      contentHash,
			RawText:          rawText,
			CreatedAt:        time.Now(),
			UpdatedAt:        time.Now(),
		}

		if err := resumeRepo.Create(&resume); err != nil {
			log.Printf("   ❌ Failed to save resume record: %v", err)
			failCount++
			continue
		}

		// Chunk, embed, and store in Qdrant
		log.Printf("   🔄 Embedding and indexing...")
		if err := searchService.IndexResume(ctx, &resume); err != nil {
			log.Printf("   ❌ Failed to index resume: %v", err)
			failCount++
			continue
		}

		log.Printf("   ✅ Ingested %s as %s", candidateName, resume.ID)
		successCount++
	}

	log.Printf("\n🎉 Ingestion complete: %d ingested, %d skipped, %d failed\n",
		successCount, skipCount, failCount)
}
