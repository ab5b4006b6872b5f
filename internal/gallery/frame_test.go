package gallery

import (
	"testing"

	"github.com/demusis/analise-conteudo-video/internal/imaging"
)

func TestFrame_HasEdits(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		want  bool
	}{
		{
			name:  "fresh capture",
			frame: Frame{Filters: imaging.DefaultFilterStack(), Annotations: []imaging.AnnotationSpec{}, Scale: 1},
			want:  false,
		},
		{
			name: "enabled filter",
			frame: Frame{
				Filters: []imaging.FilterSpec{{Name: imaging.FilterWhiteBalance, Enabled: true}},
				Scale:   1,
			},
			want: true,
		},
		{
			name: "annotation present",
			frame: Frame{
				Annotations: []imaging.AnnotationSpec{{Type: imaging.AnnotationText, Text: "hi", Pos: &imaging.Point{1, 1}}},
				Scale:       1,
			},
			want: true,
		},
		{
			name:  "upscaled",
			frame: Frame{Scale: 2},
			want:  true,
		},
		{
			name:  "disabled filters only",
			frame: Frame{Filters: imaging.DefaultFilterStack(), Scale: 1},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.frame.HasEdits(); got != tt.want {
				t.Errorf("expected HasEdits %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFrame_Clone_Independent(t *testing.T) {
	start := imaging.Point{10, 20}
	end := imaging.Point{30, 40}
	frame := testFrame("vid1", 1)
	frame.Annotations = []imaging.AnnotationSpec{
		{Type: imaging.AnnotationLine, Start: &start, End: &end, Color: "#ff0000", Thickness: 2},
	}

	clone := frame.Clone()
	clone.Note = "changed"
	clone.Filters[0].Enabled = true
	clone.Annotations[0].Start[0] = 99

	if frame.Note == "changed" {
		t.Error("clone note mutation leaked into original")
	}
	if frame.Filters[0].Enabled {
		t.Error("clone filter mutation leaked into original")
	}
	if frame.Annotations[0].Start.X() != 10 {
		t.Errorf("clone annotation mutation leaked into original: %v", frame.Annotations[0].Start.X())
	}
}
