package main

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"framemark/internal/api"
)

// apiClient talks to the daemon's HTTP API.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Minute},
	}
}

type healthReport struct {
	Status string `json:"status"`
	Stages []struct {
		Name   string `json:"name"`
		Ready  bool   `json:"ready"`
		Detail string `json:"detail,omitempty"`
	} `json:"stages"`
}

// Submit uploads a video file with an optional text prompt and returns the
// accepted job id.
func (c *apiClient) Submit(videoPath, prompt string) (string, error) {
	file, err := os.Open(videoPath)
	if err != nil {
		return "", fmt.Errorf("open video: %w", err)
	}
	defer file.Close()

	reader, writer := io.Pipe()
	form := multipart.NewWriter(writer)
	go func() {
		part, err := form.CreateFormFile("video", filepath.Base(videoPath))
		if err != nil {
			writer.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			writer.CloseWithError(err)
			return
		}
		if prompt != "" {
			if err := form.WriteField("prompt", prompt); err != nil {
				writer.CloseWithError(err)
				return
			}
		}
		writer.CloseWithError(form.Close())
	}()

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/upload", reader)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp)
	}

	var payload struct {
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	return payload.JobID, nil
}

// Status fetches the current state of one job.
func (c *apiClient) Status(jobID string) (api.StatusPayload, error) {
	var payload api.StatusPayload
	if err := c.getJSON("/api/status/"+jobID, &payload); err != nil {
		return api.StatusPayload{}, err
	}
	return payload, nil
}

// Jobs lists all jobs known to the daemon.
func (c *apiClient) Jobs() ([]api.StatusPayload, error) {
	var payload struct {
		Jobs []api.StatusPayload `json:"jobs"`
	}
	if err := c.getJSON("/api/jobs", &payload); err != nil {
		return nil, err
	}
	return payload.Jobs, nil
}

// Health fetches the daemon's stage readiness report.
func (c *apiClient) Health() (healthReport, error) {
	var payload healthReport
	if err := c.getJSON("/api/health", &payload); err != nil {
		return healthReport{}, err
	}
	return payload, nil
}

// Download streams a completed result to destPath. When destPath is empty the
// server-suggested filename is used in the current directory. The written
// path is returned.
func (c *apiClient) Download(jobID, destPath string) (string, error) {
	resp, err := c.http.Get(c.baseURL + "/api/download/" + jobID)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp)
	}

	if destPath == "" {
		destPath = "segmented_" + jobID + ".mp4"
		if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
			if name := filepath.Base(params["filename"]); name != "" && name != "." {
				destPath = name
			}
		}
	}

	out, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", destPath, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", fmt.Errorf("write %s: %w", destPath, err)
	}
	return destPath, out.Close()
}

func (c *apiClient) getJSON(path string, into any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func apiError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Errorf("daemon responded %d: %s", resp.StatusCode, payload.Error)
	}
	return fmt.Errorf("daemon responded %d", resp.StatusCode)
}
