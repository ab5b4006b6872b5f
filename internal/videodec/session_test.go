package videodec

import "testing"

func TestParseShowinfoLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		pts     int64
		isFrame bool
	}{
		{
			"frame line",
			"[Parsed_showinfo_0 @ 0x5602f1c2d700] n:   0 pts:  38400 pts_time:2.5      duration:    512 duration_time:0.0333333 fmt:rgb24 cl:unspec sar:1/1 s:1280x720 i:P iskey:1 type:I",
			38400, true,
		},
		{
			"later frame",
			"[Parsed_showinfo_0 @ 0x5602f1c2d700] n:  12 pts: 44544 pts_time:2.9 duration: 512 fmt:rgb24 s:1280x720 i:P iskey:0 type:B",
			44544, true,
		},
		{
			"missing pts",
			"[Parsed_showinfo_0 @ 0x5602f1c2d700] n:   3 pts:  NOPTS pts_time:N/A duration: 512 fmt:rgb24",
			NoPTS, true,
		},
		{
			"side data line",
			"[Parsed_showinfo_0 @ 0x5602f1c2d700]   side data - H.26[45] User Data Unregistered SEI message",
			0, false,
		},
		{
			"color line",
			"[Parsed_showinfo_0 @ 0x5602f1c2d700] color_range:tv color_space:bt709 color_primaries:bt709 color_trc:bt709",
			0, false,
		},
		{
			"unrelated stderr",
			"frame=   12 fps=0.0 q=-0.0 size=   32400KiB time=00:00:00.40 bitrate=663552.3kbits/s speed=16.4x",
			0, false,
		},
		{
			"empty", "", 0, false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pts, isFrame := parseShowinfoLine(tt.line)
			if isFrame != tt.isFrame {
				t.Fatalf("expected isFrame=%v, got %v", tt.isFrame, isFrame)
			}
			if isFrame && pts != tt.pts {
				t.Errorf("expected pts %d, got %d", tt.pts, pts)
			}
		})
	}
}

func TestExpandRGB24(t *testing.T) {
	// Two rows of two rgb24 pixels.
	buf := []byte{
		255, 0, 0, 0, 255, 0,
		0, 0, 255, 10, 20, 30,
	}

	img := expandRGB24(buf, 2, 2)

	if got := img.Bounds(); got.Dx() != 2 || got.Dy() != 2 {
		t.Fatalf("expected 2x2, got %v", got)
	}

	wants := []struct {
		x, y    int
		r, g, b uint8
	}{
		{0, 0, 255, 0, 0},
		{1, 0, 0, 255, 0},
		{0, 1, 0, 0, 255},
		{1, 1, 10, 20, 30},
	}
	for _, w := range wants {
		c := img.RGBAAt(w.x, w.y)
		if c.R != w.r || c.G != w.g || c.B != w.b || c.A != 255 {
			t.Errorf("pixel (%d,%d): expected (%d,%d,%d,255), got %v", w.x, w.y, w.r, w.g, w.b, c)
		}
	}
}

func TestNewDecoder_DefaultsPath(t *testing.T) {
	d := NewDecoder("")
	if d.ffmpegPath != "ffmpeg" {
		t.Errorf("expected default ffmpeg path, got %q", d.ffmpegPath)
	}

	d = NewDecoder("/opt/ffmpeg/bin/ffmpeg")
	if d.ffmpegPath != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("expected explicit path kept, got %q", d.ffmpegPath)
	}
}

func TestNewProber_DefaultsPath(t *testing.T) {
	p := NewProber("")
	if p.ffprobePath != "ffprobe" {
		t.Errorf("expected default ffprobe path, got %q", p.ffprobePath)
	}
}
