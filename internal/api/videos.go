package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// Video represents a catalog entry as returned by the backend
type Video struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Theme       string `json:"theme"`
	Duration    string `json:"duration"`
	Thumbnail   string `json:"thumbnail"`
	Locked      bool   `json:"locked"`
	Status      string `json:"status,omitempty"`
	URL         string `json:"url,omitempty"` // absent when locked for the viewer
}

// VideosResponse wraps the catalog listing
type VideosResponse struct {
	Videos []Video `json:"videos"`
}

// ListVideos returns the catalog, optionally filtered by theme
func (c *Client) ListVideos(token, theme string) ([]Video, error) {
	path := "/api/videos"
	if theme != "" {
		path += "?theme=" + url.QueryEscape(theme)
	}

	req, err := c.authedRequest(http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		return nil, c.statusError("failed to list videos", resp)
	}

	var videosResp VideosResponse
	if err := json.NewDecoder(resp.Body).Decode(&videosResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return videosResp.Videos, nil
}

// GetVideo returns a single catalog entry by ID
func (c *Client) GetVideo(token, id string) (*Video, error) {
	req, err := c.authedRequest(http.MethodGet, "/api/videos/"+url.PathEscape(id), token, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		return nil, c.statusError("failed to load video", resp)
	}

	var video Video
	if err := json.NewDecoder(resp.Body).Decode(&video); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &video, nil
}

// UploadVideoRequest carries the multipart fields of an admin upload
type UploadVideoRequest struct {
	Title       string
	Description string
	Theme       string
	Filename    string
	File        io.Reader
}

// UploadVideoResponse represents the created catalog entry
type UploadVideoResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// UploadVideo submits a new video as multipart/form-data (admin only)
func (c *Client) UploadVideo(token string, upload UploadVideoRequest) (*UploadVideoResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"title":       upload.Title,
		"description": upload.Description,
		"theme":       upload.Theme,
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write form field: %w", err)
		}
	}

	part, err := writer.CreateFormFile("file", upload.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, upload.File); err != nil {
		return nil, fmt.Errorf("failed to copy file contents: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := c.authedRequest(http.MethodPost, "/api/videos/upload", token, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	default:
		return nil, c.statusError("upload failed", resp)
	}

	var uploadResp UploadVideoResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &uploadResp, nil
}
