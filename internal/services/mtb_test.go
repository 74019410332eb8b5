package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"talentboard/recruiting-api/internal/models"
)

const boardCSV = `Job ID,Company,Position,Location,Salary Range,Description File ID
JOB-001,Acme,Backend Engineer,Berlin,80k-100k,file-1
JOB-002,Beta,Data Scientist,,60k-90k,file-2

JOB-003,Gamma,,Remote,,file-3
`

func TestParseBoardCSV(t *testing.T) {
	rows, err := ParseBoard("board.csv", []byte(boardCSV))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, models.MTBRow{
		JobID:             "JOB-001",
		Company:           "Acme",
		Position:          "Backend Engineer",
		Location:          "Berlin",
		SalaryRange:       "80k-100k",
		DescriptionFileID: "file-1",
	}, rows[0])

	// Blank cells stay blank; rows without a job id are skipped.
	assert.Empty(t, rows[1].Location)
	assert.Empty(t, rows[2].Position)
}

func TestParseBoardCSVHeaderAliases(t *testing.T) {
	csvData := "id,client,title,city,compensation,jd_file_id\nJOB-1,Acme,Engineer,Berlin,90k,file-1\n"

	rows, err := ParseBoard("mtb.csv", []byte(csvData))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme", rows[0].Company)
	assert.Equal(t, "Engineer", rows[0].Position)
	assert.Equal(t, "Berlin", rows[0].Location)
	assert.Equal(t, "90k", rows[0].SalaryRange)
	assert.Equal(t, "file-1", rows[0].DescriptionFileID)
}

func TestParseBoardXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{
		"Job ID", "Company", "Position", "Description File ID",
	}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{
		"JOB-001", "Acme", "Backend Engineer", "file-1",
	}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{
		"JOB-002", "Beta", "Data Scientist", "file-2",
	}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := ParseBoard("mtb.xlsx", buf.Bytes())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "JOB-001", rows[0].JobID)
	assert.Equal(t, "Backend Engineer", rows[0].Position)
	assert.Equal(t, "file-2", rows[1].DescriptionFileID)
}

func TestParseBoardErrors(t *testing.T) {
	_, err := ParseBoard("board.pdf", []byte("%PDF"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported tracking board format")

	_, err = ParseBoard("board.csv", []byte(""))
	require.Error(t, err)

	// Header only, no job rows.
	_, err = ParseBoard("board.csv", []byte("job_id,company\n"))
	require.Error(t, err)
}

type fakeDrive struct {
	files map[string]struct {
		data []byte
		name string
	}
	downloads []string
}

func (f *fakeDrive) DownloadFile(ctx context.Context, fileID string) ([]byte, string, error) {
	f.downloads = append(f.downloads, fileID)
	file, ok := f.files[fileID]
	if !ok {
		return nil, "", ErrReauthRequired
	}
	return file.data, file.name, nil
}

func (f *fakeDrive) AuthURL(state string) string { return "https://example.com/auth" }

func (f *fakeDrive) Exchange(ctx context.Context, code string) error { return nil }

func (f *fakeDrive) Ready() bool { return true }

func TestFetchDocumentNormalizesAndHashes(t *testing.T) {
	drive := &fakeDrive{files: map[string]struct {
		data []byte
		name string
	}{
		"file-1": {data: []byte("  Senior Engineer \n\n  Acme Corp  \n"), name: "jd.txt"},
	}}

	source := NewMTBService(drive, NewDocumentParser(), "", "board-file")
	doc, err := source.FetchDocument(context.Background(), models.MTBRow{
		JobID:             "JOB-001",
		DescriptionFileID: "file-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "JOB-001", doc.JobID)
	assert.Equal(t, "jd.txt", doc.SourceName)
	assert.Equal(t, "Senior Engineer\nAcme Corp", doc.RawText)
	assert.Equal(t, HashContent("Senior Engineer\nAcme Corp"), doc.ContentHash)
}

func TestFetchDocumentWithoutFileID(t *testing.T) {
	source := NewMTBService(&fakeDrive{}, NewDocumentParser(), "", "board-file")
	_, err := source.FetchDocument(context.Background(), models.MTBRow{JobID: "JOB-001"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no description file")
}

func TestFetchBoardRequiresConfiguration(t *testing.T) {
	source := NewMTBService(&fakeDrive{}, NewDocumentParser(), "", "")
	_, err := source.FetchBoard(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tracking board configured")
}
