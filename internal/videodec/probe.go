// Package videodec wraps the ffmpeg toolchain behind the narrow decoding
// contract the capture pipeline needs: probe a container's streams, then
// decode forward from the keyframe at or before a start time, yielding
// frames with their native-time-base presentation timestamps.
package videodec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrProbeExecution is returned when the ffprobe command fails.
var ErrProbeExecution = errors.New("ffprobe execution failed")

// Prober inspects media containers with ffprobe.
type Prober struct {
	// ffprobePath is the path to the ffprobe binary. Defaults to "ffprobe".
	ffprobePath string
}

// NewProber creates a new Prober.
// If ffprobePath is empty, it defaults to "ffprobe" (found via PATH).
func NewProber(ffprobePath string) *Prober {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Prober{ffprobePath: ffprobePath}
}

// Report is the parsed output of an ffprobe run.
type Report struct {
	Format  Format   `json:"format"`
	Streams []Stream `json:"streams"`
}

// Format describes the container.
type Format struct {
	Filename       string `json:"filename"`
	FormatName     string `json:"format_name"`
	FormatLongName string `json:"format_long_name"`
	Duration       string `json:"duration"`
	Size           string `json:"size"`
	BitRate        string `json:"bit_rate"`
	NbStreams      int    `json:"nb_streams"`
}

// Stream describes a single track.
type Stream struct {
	Index         int    `json:"index"`
	CodecType     string `json:"codec_type"`
	CodecName     string `json:"codec_name"`
	CodecLongName string `json:"codec_long_name"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	PixFmt        string `json:"pix_fmt"`
	TimeBase      string `json:"time_base"`
	AvgFrameRate  string `json:"avg_frame_rate"`
	RFrameRate    string `json:"r_frame_rate"`
	Duration      string `json:"duration"`
	NbFrames      string `json:"nb_frames"`
	SampleRate    string `json:"sample_rate"`
	Channels      int    `json:"channels"`
	BitRate       string `json:"bit_rate"`
}

// Probe runs ffprobe on path and returns the parsed stream/format report.
func (p *Prober) Probe(ctx context.Context, path string) (*Report, error) {
	// #nosec G204 - ffprobePath is set by the application, not user input
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ffprobe cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("%w: %w, stderr: %s", ErrProbeExecution, err, stderr.String())
	}

	return parseReport(stdout.Bytes())
}

// parseReport decodes ffprobe's JSON output.
func parseReport(data []byte) (*Report, error) {
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}
	return &report, nil
}

// VideoStream returns the first video stream, or nil if the container has
// none.
func (r *Report) VideoStream() *Stream {
	for i := range r.Streams {
		if r.Streams[i].CodecType == "video" {
			return &r.Streams[i]
		}
	}
	return nil
}

// DurationSeconds returns the container duration, falling back to the first
// video stream's duration. Returns 0 when neither is known.
func (r *Report) DurationSeconds() float64 {
	if d, err := strconv.ParseFloat(r.Format.Duration, 64); err == nil && d > 0 {
		return d
	}
	if vs := r.VideoStream(); vs != nil {
		if d, err := strconv.ParseFloat(vs.Duration, 64); err == nil && d > 0 {
			return d
		}
	}
	return 0
}

// FrameRate returns the stream's average frame rate in frames per second,
// falling back to the reported raw rate. Returns 0 when undeterminable.
func (s *Stream) FrameRate() float64 {
	for _, raw := range []string{s.AvgFrameRate, s.RFrameRate} {
		num, den, err := parseFraction(raw)
		if err != nil || num == 0 || den == 0 {
			continue
		}
		return float64(num) / float64(den)
	}
	return 0
}

// TimeBaseParts returns the stream time base as a num/den fraction.
func (s *Stream) TimeBaseParts() (num, den int64, err error) {
	num, den, err = parseFraction(s.TimeBase)
	if err != nil {
		return 0, 0, fmt.Errorf("time base %q: %w", s.TimeBase, err)
	}
	if num <= 0 || den <= 0 {
		return 0, 0, fmt.Errorf("time base %q: not positive", s.TimeBase)
	}
	return num, den, nil
}

// parseFraction parses ffprobe rational strings like "1/15360" or "30".
func parseFraction(s string) (num, den int64, err error) {
	if s == "" {
		return 0, 0, errors.New("empty fraction")
	}
	numStr, denStr, found := strings.Cut(s, "/")
	num, err = strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse fraction %q: %w", s, err)
	}
	if !found {
		return num, 1, nil
	}
	den, err = strconv.ParseInt(denStr, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse fraction %q: %w", s, err)
	}
	return num, den, nil
}
