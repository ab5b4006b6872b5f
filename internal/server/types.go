// Package server provides the HTTP surface of the video analysis API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

import (
	"github.com/demusis/analise-conteudo-video/internal/imaging"
	"github.com/demusis/analise-conteudo-video/internal/videodec"
)

// CaptureFrameRequest is the HTTP request body for capturing a frame.
type CaptureFrameRequest struct {
	// VideoID is the active video session the frame is captured from.
	VideoID string `json:"video_id" validate:"required"`
	// TimestampSeconds is the presentation time to capture at.
	TimestampSeconds float64 `json:"timestamp_seconds" validate:"min=0"`
	// CategoryID files the new frame under a category. Unknown or empty
	// IDs fall back to the default category.
	CategoryID string `json:"category_id"`
}

// UpdateFrameRequest is the HTTP request body for PATCH /frames/{id}.
// Only the fields present in the body are updated.
type UpdateFrameRequest struct {
	Note       *string `json:"note"`
	CategoryID *string `json:"category_id"`
}

// UpdateFiltersRequest replaces a frame's filter stack.
type UpdateFiltersRequest struct {
	Filters []imaging.FilterSpec `json:"filters" validate:"required"`
}

// UpdateAnnotationsRequest replaces a frame's annotation list.
type UpdateAnnotationsRequest struct {
	Annotations []imaging.AnnotationSpec `json:"annotations" validate:"required"`
}

// UpdateScaleRequest replaces a frame's persisted upscale factor.
type UpdateScaleRequest struct {
	Scale int `json:"scale" validate:"required,min=1,max=3"`
}

// RenderRequest is the HTTP request body for the ad-hoc render endpoint:
// arbitrary image bytes composed through the same pipeline stored frames
// render with.
type RenderRequest struct {
	// ImageBase64 is the base64-encoded source image.
	ImageBase64 string `json:"image_base64" validate:"required,base64"`
	// Filters is the ordered filter stack to apply.
	Filters []imaging.FilterSpec `json:"filters"`
	// Annotations are drawn after filtering and rescaling.
	Annotations []imaging.AnnotationSpec `json:"annotations"`
	// Scale is the integer upscale factor. Zero means 1.
	Scale int `json:"scale" validate:"omitempty,min=1,max=3"`
}

// CategoryRequest is the HTTP request body for creating or renaming a
// category.
type CategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// UploadVideoResponse is returned after a successful video upload.
type UploadVideoResponse struct {
	// ID is the new session's identifier.
	ID string `json:"id"`
	// Filename is the uploaded file's original name.
	Filename string `json:"filename"`
	// FrameRate is the probed frame rate, or the configured default when
	// the container did not report one.
	FrameRate float64 `json:"frame_rate"`
	// DurationSeconds is the container duration, 0 when unknown.
	DurationSeconds float64 `json:"duration_seconds"`
	// Width and Height are the video stream dimensions.
	Width  int `json:"width"`
	Height int `json:"height"`
	// Replaced is true when this upload displaced a previous session.
	Replaced bool `json:"replaced"`
}

// MediaInfoResponse reports the stored container's identity and streams.
type MediaInfoResponse struct {
	// SHA512 is the hex digest of the stored video file.
	SHA512 string `json:"sha512"`
	// Format describes the container.
	Format videodec.Format `json:"format"`
	// Streams lists every track ffprobe reported.
	Streams []videodec.Stream `json:"streams"`
}

// GalleryImportResponse reports the outcome of a gallery snapshot import.
type GalleryImportResponse struct {
	// Imported is how many frames were re-extracted and saved.
	Imported int `json:"imported"`
	// Entries is how many entries the snapshot held.
	Entries int `json:"entries"`
}

// CategoryImportResponse reports the outcome of a category import.
type CategoryImportResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// DeleteCategoryResponse reports a category deletion, including how many
// frames were moved to the default category.
type DeleteCategoryResponse struct {
	Reassigned int `json:"reassigned"`
}

// ArchiveURLResponse is returned when an export archive is pushed to the
// object store instead of streamed back.
type ArchiveURLResponse struct {
	URL string `json:"url"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
