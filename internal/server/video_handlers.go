package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/wakeupnow/wakeup/internal/catalog"
	"github.com/wakeupnow/wakeup/internal/tasks"
)

// VideosResponse wraps the catalog listing
type VideosResponse struct {
	Videos []VideoDetail `json:"videos"`
}

// VideoDetail represents a catalog entry in responses. The URL is omitted
// when the video is locked for the viewer.
type VideoDetail struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Theme       string `json:"theme"`
	Duration    string `json:"duration"`
	Thumbnail   string `json:"thumbnail"`
	Locked      bool   `json:"locked"`
	Status      string `json:"status,omitempty"`
	URL         string `json:"url,omitempty"`
}

// UploadVideoResponse represents a freshly registered upload
type UploadVideoResponse struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
	URL    string `json:"url"`
}

// @Summary List videos
// @Description List ready videos with per-viewer lock state, optionally filtered by theme
// @Tags videos
// @Produce json
// @Security BearerAuth
// @Param theme query string false "Theme filter"
// @Success 200 {object} VideosResponse
// @Failure 401 {object} map[string]interface{}
// @Router /api/videos [get]
func (s *Server) listVideos(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	theme := c.Query("theme")
	if theme != "" && !catalog.ValidTheme(theme) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown theme"})
		return
	}

	videos, err := s.catalogService.List(sessionData.UserID, theme)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list videos")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	details := make([]VideoDetail, len(videos))
	for i, v := range videos {
		details[i] = VideoDetail{
			ID:          v.ID,
			Title:       v.Title,
			Description: v.Description,
			Theme:       v.Theme,
			Duration:    v.Duration,
			Thumbnail:   v.Thumbnail,
			Locked:      v.Locked,
			URL:         v.URL,
		}
	}

	c.JSON(http.StatusOK, VideosResponse{Videos: details})
}

// @Summary Get video
// @Description Get a single catalog entry with the viewer's lock state
// @Tags videos
// @Produce json
// @Security BearerAuth
// @Param id path string true "Video ID"
// @Success 200 {object} VideoDetail
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/videos/{id} [get]
func (s *Server) getVideo(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	video, err := s.catalogService.Get(sessionData.UserID, c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrVideoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load video")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, VideoDetail{
		ID:          video.ID,
		Title:       video.Title,
		Description: video.Description,
		Theme:       video.Theme,
		Duration:    video.Duration,
		Thumbnail:   video.Thumbnail,
		Locked:      video.Locked,
		URL:         video.URL,
	})
}

// @Summary Upload video
// @Description Register a new video upload (admin only); processing runs in the background
// @Tags videos
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param theme formData string true "Theme"
// @Param file formData file true "Video file"
// @Success 201 {object} UploadVideoResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /api/videos/upload [post]
func (s *Server) uploadVideo(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	title := c.PostForm("title")
	theme := c.PostForm("theme")
	if title == "" || theme == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and theme are required"})
		return
	}
	if !catalog.ValidTheme(theme) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown theme"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Video file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to open upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer file.Close()

	video, err := s.catalogService.CreateUpload(catalog.CreateUploadParams{
		Title:       title,
		Description: c.PostForm("description"),
		Theme:       theme,
		Filename:    fileHeader.Filename,
		File:        file,
		UploadedBy:  sessionData.UserID,
		MinPlan:     c.PostForm("min_plan"),
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to register upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register upload"})
		return
	}

	// Enqueue processing; the upload stays in processing state until the
	// worker marks it ready.
	task, err := tasks.NewProcessVideoTask(video.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("video_id", video.ID).Msg("Failed to create processing task")
	} else if _, err := s.asynqClient.Enqueue(task, asynq.Queue("default")); err != nil {
		s.logger.Error().Err(err).Str("video_id", video.ID).Msg("Failed to enqueue processing task")
	}

	s.logger.Info().
		Str("video_id", video.ID).
		Str("uploaded_by", sessionData.UserID).
		Msg("Video uploaded")

	c.JSON(http.StatusCreated, UploadVideoResponse{
		ID:     video.ID,
		Title:  video.Title,
		Status: video.Status,
		URL:    video.URL,
	})
}
