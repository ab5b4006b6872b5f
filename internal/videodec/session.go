package videodec

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// NoPTS marks a decoded frame whose presentation timestamp is unknown.
// It compares below every valid timestamp, so pts-threshold scans skip
// such frames naturally.
const NoPTS int64 = math.MinInt64

// ErrInvalidDimensions is returned when a session is opened without
// positive frame dimensions.
var ErrInvalidDimensions = errors.New("invalid dimensions: width and height must be positive")

// stderrTailLines bounds how much diagnostic output a session retains.
const stderrTailLines = 30

// ptsBuffer sizes the timestamp channel. It only needs to cover however
// many small frames the OS pipe can buffer ahead of the reader.
const ptsBuffer = 256

// Frame is one decoded video frame with its stream-time-base timestamp.
type Frame struct {
	// PTS is the presentation timestamp in stream time-base ticks, or
	// NoPTS when the stream did not carry one.
	PTS int64
	// Image holds the decoded pixels.
	Image *image.RGBA
}

// SessionOptions configure where a decode session starts and the frame
// geometry it emits.
type SessionOptions struct {
	// StartSeconds positions the demuxer at the keyframe at or before
	// this time. Values below zero are treated as zero.
	StartSeconds float64
	// Width and Height are the stream's frame dimensions, as probed.
	Width  int
	Height int
}

// Decoder opens forward decode sessions using the ffmpeg CLI.
type Decoder struct {
	// ffmpegPath is the path to the ffmpeg binary. Defaults to "ffmpeg".
	ffmpegPath string
}

// NewDecoder creates a new Decoder.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found via PATH).
func NewDecoder(ffmpegPath string) *Decoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Decoder{ffmpegPath: ffmpegPath}
}

// Open seeks the demuxer backward to the keyframe at or before
// opts.StartSeconds and starts decoding forward from there. Timestamps are
// preserved (-copyts) and frames are never dropped or duplicated (-vsync
// passthrough), so the caller sees the stream exactly as stored. The
// returned session must be closed on every exit path.
func (d *Decoder) Open(ctx context.Context, path string, opts SessionOptions) (*Session, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, opts.Width, opts.Height)
	}
	start := opts.StartSeconds
	if start < 0 {
		start = 0
	}

	args := []string{
		"-hide_banner",
		"-nostats",
		"-noaccurate_seek", // keep frames between the keyframe and the target
		"-ss", strconv.FormatFloat(start, 'f', 6, 64),
		"-i", path,
		"-map", "0:v:0",
		"-an", "-sn",
		"-vsync", "passthrough",
		"-copyts",
		"-vf", "showinfo", // emits one pts line per frame on stderr
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-",
	}

	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, d.ffmpegPath, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, &FFmpegError{Args: args, Err: err}
	}

	s := &Session{
		cmd:        cmd,
		args:       args,
		stdout:     stdout,
		width:      opts.Width,
		height:     opts.Height,
		buf:        make([]byte, opts.Width*opts.Height*3),
		ptsCh:      make(chan int64, ptsBuffer),
		quit:       make(chan struct{}),
		stderrDone: make(chan struct{}),
	}
	go s.consumeStderr(stderr)
	return s, nil
}

// Session is a single forward decode pass over one video stream. It is not
// safe for concurrent use.
type Session struct {
	cmd    *exec.Cmd
	args   []string
	stdout io.ReadCloser
	width  int
	height int
	buf    []byte

	ptsCh      chan int64
	quit       chan struct{}
	stderrDone chan struct{}
	// tail holds recent non-frame stderr lines; read only after stderrDone.
	tail []string

	quitOnce sync.Once
	waitOnce sync.Once
	waitErr  error
}

// Next returns the next decoded frame in presentation order. It returns
// io.EOF once the stream is exhausted.
func (s *Session) Next() (Frame, error) {
	if _, err := io.ReadFull(s.stdout, s.buf); err != nil {
		if errors.Is(err, io.EOF) {
			if werr := s.wait(); werr != nil {
				return Frame{}, s.failure(werr)
			}
			return Frame{}, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			if werr := s.wait(); werr != nil {
				return Frame{}, s.failure(werr)
			}
			return Frame{}, fmt.Errorf("truncated frame data: %w", err)
		}
		return Frame{}, fmt.Errorf("read frame: %w", err)
	}

	pts, ok := <-s.ptsCh
	if !ok {
		return Frame{}, errors.New("decoded frame without a timestamp line")
	}

	return Frame{PTS: pts, Image: expandRGB24(s.buf, s.width, s.height)}, nil
}

// Close terminates the decoder process and releases both pipes. It is safe
// to call multiple times and after Next returned an error.
func (s *Session) Close() error {
	s.quitOnce.Do(func() { close(s.quit) })
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.wait()
	return nil
}

// wait reaps the ffmpeg process exactly once, after the stderr consumer
// has finished.
func (s *Session) wait() error {
	s.waitOnce.Do(func() {
		<-s.stderrDone
		s.waitErr = s.cmd.Wait()
	})
	return s.waitErr
}

// failure wraps a process exit error with the retained stderr tail.
func (s *Session) failure(err error) error {
	return &FFmpegError{
		Args:   s.args,
		Stderr: strings.Join(s.tail, "\n"),
		Err:    err,
	}
}

// consumeStderr parses showinfo frame lines into the pts channel and keeps
// a short tail of everything else for diagnostics.
func (s *Session) consumeStderr(r io.Reader) {
	defer close(s.stderrDone)
	defer close(s.ptsCh)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if pts, ok := parseShowinfoLine(line); ok {
			select {
			case s.ptsCh <- pts:
			case <-s.quit:
				return
			}
			continue
		}
		s.tail = append(s.tail, line)
		if len(s.tail) > stderrTailLines {
			s.tail = s.tail[1:]
		}
	}
}

// parseShowinfoLine reports whether line is a showinfo frame line and, if
// so, returns its pts. Frame lines with an unparseable pts yield NoPTS so
// the frame/timestamp pairing stays aligned.
func parseShowinfoLine(line string) (int64, bool) {
	if !strings.Contains(line, "Parsed_showinfo") || !strings.Contains(line, " n:") {
		return 0, false
	}
	idx := strings.Index(line, " pts:")
	if idx < 0 {
		return NoPTS, true
	}
	rest := strings.TrimLeft(line[idx+len(" pts:"):], " ")
	if end := strings.IndexByte(rest, ' '); end >= 0 {
		rest = rest[:end]
	}
	pts, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return NoPTS, true
	}
	return pts, true
}

// expandRGB24 copies a packed rgb24 buffer into a fresh RGBA image.
func expandRGB24(buf []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for src, dst := 0, 0; src < len(buf); src, dst = src+3, dst+4 {
		img.Pix[dst+0] = buf[src+0]
		img.Pix[dst+1] = buf[src+1]
		img.Pix[dst+2] = buf[src+2]
		img.Pix[dst+3] = 255
	}
	return img
}

// FFmpegError represents an error from running ffmpeg, including the
// stderr output.
type FFmpegError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *FFmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %v\nargs: %v\nstderr: %s", e.Err, e.Args, e.Stderr)
}

func (e *FFmpegError) Unwrap() error {
	return e.Err
}
