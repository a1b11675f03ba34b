package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/wakeupnow/wakeup/internal/billing"
	"github.com/wakeupnow/wakeup/internal/models"
)

var ErrVideoNotFound = errors.New("video not found")

// Themes accepted for catalog entries
var Themes = []string{"Rotina", "Bem-estar", "Fitness", "Saúde"}

// ValidTheme reports whether theme is one of the catalog themes
func ValidTheme(theme string) bool {
	for _, t := range Themes {
		if t == theme {
			return true
		}
	}
	return false
}

// Service manages the video catalog: listing with per-viewer locking,
// and registering new uploads for processing.
type Service struct {
	db        *gorm.DB
	billing   *billing.Service
	uploadDir string
	logger    zerolog.Logger
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, billingService *billing.Service, uploadDir string, logger zerolog.Logger) *Service {
	return &Service{
		db:        db,
		billing:   billingService,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

// List returns ready videos, newest first, optionally filtered by theme.
// Each video's Locked flag and URL visibility are computed for the viewer.
func (s *Service) List(viewerID, theme string) ([]models.Video, error) {
	query := s.db.Where("status = ?", models.VideoStatusReady).Order("created_at DESC")
	if theme != "" {
		query = query.Where("theme = ?", theme)
	}

	var videos []models.Video
	if err := query.Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}

	rank, err := s.billing.EntitlementRank(viewerID)
	if err != nil {
		return nil, err
	}

	for i := range videos {
		s.applyLock(&videos[i], rank)
	}

	return videos, nil
}

// Get returns a single ready video with the viewer's lock state applied
func (s *Service) Get(viewerID, videoID string) (*models.Video, error) {
	var video models.Video
	if err := models.FindByID(s.db, videoID, &video); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to find video: %w", err)
	}

	if video.Status != models.VideoStatusReady {
		return nil, ErrVideoNotFound
	}

	rank, err := s.billing.EntitlementRank(viewerID)
	if err != nil {
		return nil, err
	}
	s.applyLock(&video, rank)

	return &video, nil
}

// applyLock computes the Locked flag from the viewer's entitlement rank and
// hides the playback URL when locked.
func (s *Service) applyLock(video *models.Video, viewerRank int) {
	video.Locked = s.billing.PlanRank(video.MinPlan) > viewerRank
	if video.Locked {
		video.URL = ""
	}
}

// CreateUploadParams carries a new upload's metadata and content
type CreateUploadParams struct {
	Title       string
	Description string
	Theme       string
	Filename    string
	File        io.Reader
	UploadedBy  string
	MinPlan     string
}

// CreateUpload stores the raw file and registers a processing catalog entry.
// The processing worker flips the status to ready once transcoding is done.
func (s *Service) CreateUpload(params CreateUploadParams) (*models.Video, error) {
	if !ValidTheme(params.Theme) {
		return nil, fmt.Errorf("unknown theme %q", params.Theme)
	}

	video := &models.Video{
		Title:        params.Title,
		Description:  params.Description,
		Theme:        params.Theme,
		MinPlan:      params.MinPlan,
		Status:       models.VideoStatusProcessing,
		UploadedByID: params.UploadedBy,
	}

	if err := s.db.Create(video).Error; err != nil {
		return nil, fmt.Errorf("failed to create video record: %w", err)
	}

	filePath, err := s.storeFile(video.ID, params.Filename, params.File)
	if err != nil {
		// The record without a file is useless, remove it
		s.db.Delete(video)
		return nil, err
	}

	if err := s.db.Model(video).Update("file_path", filePath).Error; err != nil {
		return nil, fmt.Errorf("failed to record upload path: %w", err)
	}
	video.FilePath = filePath

	s.logger.Info().
		Str("video_id", video.ID).
		Str("theme", video.Theme).
		Str("uploaded_by", params.UploadedBy).
		Msg("Video upload registered")

	return video, nil
}

// storeFile writes the upload under the upload directory, keyed by video ID
// so concurrent uploads with the same filename never collide.
func (s *Service) storeFile(videoID, filename string, file io.Reader) (string, error) {
	dir := filepath.Join(s.uploadDir, videoID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(filename))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	return path, nil
}
