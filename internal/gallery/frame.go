// Package gallery manages captured frames: the records tying a video
// timestamp to a stored PNG and its non-destructive editing state, the
// repositories persisting them, and the service orchestrating capture,
// rendering and gallery import/export.
package gallery

import (
	"time"

	"github.com/demusis/analise-conteudo-video/internal/imaging"
)

// Frame represents one captured video still together with its editing
// state. The stored image is the untouched decoded frame; filters,
// annotations and scale are applied at render time, so edits never
// destroy the capture.
type Frame struct {
	// ID is the unique identifier for this frame.
	ID string `json:"id"`
	// VideoID is the owning video session.
	VideoID string `json:"video_id"`
	// Number is the 1-based capture sequence number within the video.
	// It never repeats, even after deletions.
	Number int `json:"number"`
	// TimestampSeconds is the presentation time the frame was captured at.
	TimestampSeconds float64 `json:"timestamp_seconds"`
	// FileName is the image's file name inside the frames directory.
	FileName string `json:"file_name"`
	// ImagePath is the absolute path of the stored PNG.
	ImagePath string `json:"-"`
	// CategoryID tags the frame with a category.
	CategoryID string `json:"category_id"`
	// Note is free-form user text.
	Note string `json:"note"`
	// Filters is the ordered, toggleable filter stack.
	Filters []imaging.FilterSpec `json:"filters"`
	// Annotations are drawn in list order on the rendered frame.
	Annotations []imaging.AnnotationSpec `json:"annotations"`
	// Scale is the integer upscale factor applied at render time.
	Scale int `json:"scale"`
	// CreatedAt is when the frame was captured.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the frame was last edited.
	UpdatedAt time.Time `json:"updated_at"`
}

// HasEdits reports whether rendering this frame produces something other
// than its stored bytes.
func (f *Frame) HasEdits() bool {
	return f.Scale > 1 || len(f.Annotations) > 0 || imaging.HasEnabled(f.Filters)
}

// Clone creates a deep copy of the frame for safe reads.
func (f *Frame) Clone() *Frame {
	out := *f

	if f.Filters != nil {
		out.Filters = make([]imaging.FilterSpec, len(f.Filters))
		copy(out.Filters, f.Filters)
	}
	if f.Annotations != nil {
		out.Annotations = make([]imaging.AnnotationSpec, len(f.Annotations))
		for i, a := range f.Annotations {
			out.Annotations[i] = a.Clone()
		}
	}

	return &out
}
