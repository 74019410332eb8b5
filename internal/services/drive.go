package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ErrReauthRequired signals an expired or missing Drive authorization. The
// handler maps it to a guided re-authentication response instead of a plain
// failure.
var ErrReauthRequired = errors.New("google drive authorization required")

// DriveService downloads the tracking board and job description attachments.
type DriveService interface {
	DownloadFile(ctx context.Context, fileID string) ([]byte, string, error)
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) error
	Ready() bool
}

type driveService struct {
	oauthConfig *oauth2.Config
	tokenPath   string

	mu    sync.Mutex
	token *oauth2.Token
}

func NewDriveService(credentialsPath, tokenPath string) (DriveService, error) {
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(b, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	s := &driveService{
		oauthConfig: oauthConfig,
		tokenPath:   tokenPath,
	}

	// A missing token file is not an error at startup; the operator
	// authorizes through the auth endpoints.
	if token, err := tokenFromFile(tokenPath); err == nil {
		s.token = token
	}

	return s, nil
}

// Ready implements DriveService.
func (s *driveService) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != nil
}

// AuthURL implements DriveService.
func (s *driveService) AuthURL(state string) string {
	return s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange implements DriveService. Trades the consent code for a token and
// persists it for later runs.
func (s *driveService) Exchange(ctx context.Context, code string) error {
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("unable to exchange authorization code: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if err := saveToken(s.tokenPath, token); err != nil {
		return fmt.Errorf("unable to persist token: %w", err)
	}
	return nil
}

// DownloadFile implements DriveService. Native Google files are exported to
// a text format (Sheets to CSV, Docs to plain text); everything else is
// downloaded as-is.
func (s *driveService) DownloadFile(ctx context.Context, fileID string) ([]byte, string, error) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == nil {
		return nil, "", ErrReauthRequired
	}

	client := s.oauthConfig.Client(ctx, token)
	srv, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, "", fmt.Errorf("unable to create Drive client: %w", err)
	}

	meta, err := srv.Files.Get(fileID).Fields("name", "mimeType").Context(ctx).Do()
	if err != nil {
		return nil, "", wrapDriveError(err)
	}

	name := meta.Name

	var body io.ReadCloser
	switch {
	case meta.MimeType == "application/vnd.google-apps.spreadsheet":
		res, err := srv.Files.Export(fileID, "text/csv").Context(ctx).Download()
		if err != nil {
			return nil, "", wrapDriveError(err)
		}
		body = res.Body
		if !strings.HasSuffix(strings.ToLower(name), ".csv") {
			name += ".csv"
		}
	case strings.HasPrefix(meta.MimeType, "application/vnd.google-apps"):
		res, err := srv.Files.Export(fileID, "text/plain").Context(ctx).Download()
		if err != nil {
			return nil, "", wrapDriveError(err)
		}
		body = res.Body
		if !strings.HasSuffix(strings.ToLower(name), ".txt") {
			name += ".txt"
		}
	default:
		res, err := srv.Files.Get(fileID).Context(ctx).Download()
		if err != nil {
			return nil, "", wrapDriveError(err)
		}
		body = res.Body
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file %s: %w", fileID, err)
	}

	return data, name, nil
}

// wrapDriveError maps authorization failures to ErrReauthRequired so the
// operator gets the guided re-auth flow rather than a generic error.
func wrapDriveError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == 401 || apiErr.Code == 403) {
		return fmt.Errorf("%w: %v", ErrReauthRequired, err)
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%w: %v", ErrReauthRequired, err)
	}

	return fmt.Errorf("drive request failed: %w", err)
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, err
	}
	return token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}
