package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"talentboard/recruiting-api/internal/models"
)

// Embedder produces the vectors indexed for resume search.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// ResumeSearchService indexes resume text in Qdrant and answers semantic
// search queries, including job-to-candidate matching.
type ResumeSearchService interface {
	InitCollection() error
	IndexResume(ctx context.Context, resume *models.Resume) error
	Search(ctx context.Context, query string, limit int) ([]models.ResumeSearchResult, error)
	MatchesForJob(ctx context.Context, record *models.OptimizedJobRecord, limit int) ([]models.ResumeSearchResult, error)
	DeleteResume(ctx context.Context, resumeID string) error
}

type resumeSearchService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	embedder       Embedder
	chunker        TextChunker
	promptBuilder  *PromptBuilder
}

func NewResumeSearchService(urlStr, apiKey, collectionName string, embedder Embedder) (ResumeSearchService, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// For gRPC client, use port 6334 by default (gRPC port)
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &resumeSearchService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 size
		embedder:       embedder,
		chunker:        NewTextChunker(),
		promptBuilder:  NewPromptBuilder(),
	}, nil
}

// InitCollection implements ResumeSearchService.
func (s *resumeSearchService) InitCollection() error {
	ctx := context.Background()

	exists, err := s.client.CollectionExists(ctx, s.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", s.collectionName)
	return nil
}

// IndexResume implements ResumeSearchService. Long resumes are chunked so
// each piece fits the embedding model; every chunk carries the resume id.
func (s *resumeSearchService) IndexResume(ctx context.Context, resume *models.Resume) error {
	chunks := s.chunker.ChunkText(resume.RawText, 1000, 200)
	if len(chunks) == 0 {
		return fmt.Errorf("resume %s has no indexable text", resume.ID)
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for i, chunk := range chunks {
		embedding, err := s.embedder.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return fmt.Errorf("failed to embed resume chunk %d: %w", i, err)
		}

		pointID := uuid.New()
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(pointID.ID())),
			Vectors: qdrant.NewVectors(embedding...),
			Payload: qdrant.NewValueMap(map[string]interface{}{
				"resume_id":      resume.ID.String(),
				"candidate_name": resume.CandidateName,
				"chunk_index":    int64(i),
				"text":           chunk,
			}),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert resume points: %w", err)
	}

	return nil
}

// Search implements ResumeSearchService. Chunk hits are collapsed to one
// result per resume, keeping the best score.
func (s *resumeSearchService) Search(ctx context.Context, query string, limit int) ([]models.ResumeSearchResult, error) {
	embedding, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	// Over-fetch chunks since several may belong to the same resume.
	fetchLimit := uint64(limit * 4)
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(fetchLimit),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search resumes: %w", err)
	}

	best := make(map[string]*models.ResumeSearchResult)
	for _, point := range points {
		payload := point.Payload

		resumeID := stringValue(payload, "resume_id")
		if resumeID == "" {
			continue
		}

		existing, ok := best[resumeID]
		if ok && existing.Score >= point.Score {
			continue
		}

		best[resumeID] = &models.ResumeSearchResult{
			ResumeID:      resumeID,
			CandidateName: stringValue(payload, "candidate_name"),
			Score:         point.Score,
			Snippet:       snippet(stringValue(payload, "text"), 240),
		}
	}

	results := make([]models.ResumeSearchResult, 0, len(best))
	for _, r := range best {
		results = append(results, *r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// MatchesForJob implements ResumeSearchService.
func (s *resumeSearchService) MatchesForJob(ctx context.Context, record *models.OptimizedJobRecord, limit int) ([]models.ResumeSearchResult, error) {
	var skills []string
	if raw, ok := record.ExtractedFields["required_skills"].([]interface{}); ok {
		for _, v := range raw {
			if skill, ok := v.(string); ok {
				skills = append(skills, skill)
			}
		}
	}

	query := s.promptBuilder.BuildMatchQuery(record.Position, record.Company, skills)
	return s.Search(ctx, query, limit)
}

// DeleteResume implements ResumeSearchService.
func (s *resumeSearchService) DeleteResume(ctx context.Context, resumeID string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("resume_id", resumeID),
		},
	}

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete resume points: %w", err)
	}

	return nil
}

func stringValue(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		if sv, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
			return sv.StringValue
		}
	}
	return ""
}

func snippet(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "…"
}
