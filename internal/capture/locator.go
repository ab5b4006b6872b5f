// Package capture implements frame-exact still extraction: given a video
// and a timestamp, it decodes and persists the single frame a player would
// show at that time. Seeking lands on the keyframe at or before the target,
// then the stream is decoded forward until the first frame whose
// presentation timestamp reaches the target tick; seeking alone cannot give
// this guarantee on compressed video.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/demusis/analise-conteudo-video/internal/videodec"
)

// Static errors for capture operations.
var (
	// ErrStreamUnavailable is returned when the container has no decodable
	// video stream or cannot be opened.
	ErrStreamUnavailable = errors.New("no decodable video stream")
	// ErrSeekOutOfRange is returned when the requested timestamp falls
	// outside the video's duration.
	ErrSeekOutOfRange = errors.New("timestamp out of range")
	// ErrDecodeFailure is returned when the stream fails to decode.
	ErrDecodeFailure = errors.New("video decode failed")
)

// Prober reports container metadata for a stored video.
type Prober interface {
	Probe(ctx context.Context, path string) (*videodec.Report, error)
}

// DecodeSession yields decoded frames in presentation order and must be
// closed on every exit path.
type DecodeSession interface {
	Next() (videodec.Frame, error)
	Close() error
}

// Decoder opens forward decode sessions positioned at the keyframe at or
// before the requested start time.
type Decoder interface {
	Open(ctx context.Context, path string, opts videodec.SessionOptions) (DecodeSession, error)
}

// FFmpegDecoder adapts the concrete ffmpeg decoder to the Decoder port.
type FFmpegDecoder struct {
	Dec *videodec.Decoder
}

// Open implements Decoder.
func (f FFmpegDecoder) Open(ctx context.Context, path string, opts videodec.SessionOptions) (DecodeSession, error) {
	return f.Dec.Open(ctx, path, opts)
}

// Locator captures the exact frame visible at a requested timestamp.
type Locator struct {
	prober  Prober
	decoder Decoder
	logger  *slog.Logger
}

// NewLocator creates a Locator over the given probing and decoding ports.
func NewLocator(prober Prober, decoder Decoder, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{prober: prober, decoder: decoder, logger: logger}
}

// Capture writes the frame visible at ts seconds of videoPath to outPath as
// PNG, creating parent directories as needed. The emitted frame is the
// first one whose presentation timestamp is at or after the target tick;
// frames decoded before it are discarded.
func (l *Locator) Capture(ctx context.Context, videoPath string, ts float64, outPath string) error {
	tracer := otel.Tracer("capture")
	ctx, span := tracer.Start(ctx, "Locator.Capture", trace.WithAttributes(
		attribute.String("video.path", videoPath),
		attribute.Float64("video.timestamp_seconds", ts),
	))
	defer span.End()

	if ts < 0 {
		return fmt.Errorf("%w: %.3fs is negative", ErrSeekOutOfRange, ts)
	}

	probeCtx, probeSpan := tracer.Start(ctx, "probe_container")
	report, err := l.prober.Probe(probeCtx, videoPath)
	probeSpan.End()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStreamUnavailable, err)
	}

	stream := report.VideoStream()
	if stream == nil {
		return ErrStreamUnavailable
	}
	num, den, err := stream.TimeBaseParts()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStreamUnavailable, err)
	}

	if duration := report.DurationSeconds(); duration > 0 && ts >= duration {
		return fmt.Errorf("%w: %.3fs is past the %.3fs duration", ErrSeekOutOfRange, ts, duration)
	}

	tick := targetTick(ts, num, den)

	scanCtx, scanSpan := tracer.Start(ctx, "seek_and_scan")
	defer scanSpan.End()

	session, err := l.decoder.Open(scanCtx, videoPath, videodec.SessionOptions{
		StartSeconds: ts,
		Width:        stream.Width,
		Height:       stream.Height,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStreamUnavailable, err)
	}
	defer func() { _ = session.Close() }()

	scanned := 0
	for {
		frame, err := session.Next()
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: no frame at or after %.3fs", ErrSeekOutOfRange, ts)
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDecodeFailure, err)
		}

		if frame.PTS < tick {
			scanned++
			continue
		}

		scanSpan.SetAttributes(
			attribute.Int64("video.frame_pts", frame.PTS),
			attribute.Int("video.frames_discarded", scanned),
		)

		if err := writePNG(outPath, frame); err != nil {
			return err
		}
		l.logger.Debug("frame captured",
			slog.String("video", videoPath),
			slog.Float64("timestamp", ts),
			slog.Int64("target_tick", tick),
			slog.Int64("pts", frame.PTS),
			slog.Int("discarded", scanned),
		)
		return nil
	}
}

// targetTick converts seconds to stream time-base ticks, truncating toward
// zero.
func targetTick(ts float64, num, den int64) int64 {
	return int64(math.Trunc(ts * float64(den) / float64(num)))
}

func writePNG(path string, frame videodec.Frame) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create frame directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 - path is built by the application, not user input
	if err != nil {
		return fmt.Errorf("create frame file: %w", err)
	}

	if err := png.Encode(f, frame.Image); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("encode frame: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close frame file: %w", err)
	}
	return nil
}
