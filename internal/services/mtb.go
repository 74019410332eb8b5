package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"talentboard/recruiting-api/internal/models"
)

// BoardSource is the external job source adapter: it fetches the Master
// Tracking Board and the per-job description documents.
type BoardSource interface {
	FetchBoard(ctx context.Context) ([]models.MTBRow, error)
	FetchDocument(ctx context.Context, row models.MTBRow) (*models.JobDocument, error)
}

type mtbService struct {
	drive       DriveService
	parser      DocumentParser
	boardURL    string
	boardFileID string
	httpClient  *http.Client
}

func NewMTBService(drive DriveService, parser DocumentParser, boardURL, boardFileID string) BoardSource {
	return &mtbService{
		drive:       drive,
		parser:      parser,
		boardURL:    boardURL,
		boardFileID: boardFileID,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
	}
}

// FetchBoard implements BoardSource. A board URL takes precedence over a
// Drive file id; having neither is a fatal configuration error.
func (s *mtbService) FetchBoard(ctx context.Context) ([]models.MTBRow, error) {
	switch {
	case s.boardURL != "":
		data, name, err := s.downloadBoardURL(ctx)
		if err != nil {
			return nil, err
		}
		return ParseBoard(name, data)
	case s.boardFileID != "":
		data, name, err := s.drive.DownloadFile(ctx, s.boardFileID)
		if err != nil {
			return nil, fmt.Errorf("failed to download tracking board: %w", err)
		}
		return ParseBoard(name, data)
	default:
		return nil, fmt.Errorf("no tracking board configured: set MTB_URL or MTB_FILE_ID")
	}
}

func (s *mtbService) downloadBoardURL(ctx context.Context) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.boardURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("invalid tracking board URL: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch tracking board: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("tracking board fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read tracking board body: %w", err)
	}

	name := "board.csv"
	if u, err := url.Parse(s.boardURL); err == nil && path.Ext(u.Path) != "" {
		name = path.Base(u.Path)
	}
	return data, name, nil
}

// FetchDocument implements BoardSource.
func (s *mtbService) FetchDocument(ctx context.Context, row models.MTBRow) (*models.JobDocument, error) {
	if row.DescriptionFileID == "" {
		return nil, fmt.Errorf("job %s has no description file on the board", row.JobID)
	}

	data, name, err := s.drive.DownloadFile(ctx, row.DescriptionFileID)
	if err != nil {
		return nil, fmt.Errorf("failed to download description for job %s: %w", row.JobID, err)
	}

	text, err := s.parser.ExtractText(name, data)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text for job %s: %w", row.JobID, err)
	}

	text = CleanText(text)
	return &models.JobDocument{
		JobID:       row.JobID,
		SourceName:  name,
		RawText:     text,
		ContentHash: HashContent(text),
	}, nil
}

// ParseBoard parses CSV or XLSX tracking board data into rows.
func ParseBoard(filename string, data []byte) ([]models.MTBRow, error) {
	ext := strings.ToLower(path.Ext(filename))

	switch ext {
	case ".csv":
		return parseCSVBoard(data)
	case ".xlsx":
		return parseXLSXBoard(data)
	default:
		return nil, fmt.Errorf("unsupported tracking board format: %s", ext)
	}
}

func parseCSVBoard(data []byte) ([]models.MTBRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse tracking board CSV: %w", err)
	}

	return boardRowsFromCells(rows)
}

func parseXLSXBoard(data []byte) ([]models.MTBRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open tracking board workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read tracking board sheet: %w", err)
	}

	return boardRowsFromCells(rows)
}

// boardRowsFromCells maps a header row plus data rows into MTBRows. Header
// names are matched case-insensitively with a few common aliases.
func boardRowsFromCells(cells [][]string) ([]models.MTBRow, error) {
	if len(cells) == 0 {
		return nil, fmt.Errorf("tracking board is empty")
	}

	columns := make(map[string]int)
	for i, header := range cells[0] {
		key := strings.ToLower(strings.TrimSpace(header))
		key = strings.ReplaceAll(key, " ", "_")
		columns[key] = i
	}

	lookup := func(row []string, names ...string) string {
		for _, name := range names {
			if idx, ok := columns[name]; ok && idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
		}
		return ""
	}

	var board []models.MTBRow
	for _, row := range cells[1:] {
		jobID := lookup(row, "job_id", "id", "job")
		if jobID == "" {
			continue
		}

		board = append(board, models.MTBRow{
			JobID:             jobID,
			Company:           lookup(row, "company", "client"),
			Position:          lookup(row, "position", "title", "role"),
			Location:          lookup(row, "location", "city"),
			SalaryRange:       lookup(row, "salary_range", "salary", "compensation"),
			DescriptionFileID: lookup(row, "description_file_id", "jd_file_id", "file_id"),
		})
	}

	if len(board) == 0 {
		return nil, fmt.Errorf("tracking board has no job rows")
	}
	return board, nil
}
