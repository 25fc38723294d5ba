package ocr

import (
	"encoding/json"
	"strings"
	"testing"
)

func f64(v float64) *float64 { return &v }

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"hyphen join", "foo-\nbar", "foobar"},
		{"hyphen without newline kept", "well-known\nfact", "well-known\nfact"},
		{"nbsp", "a\u00a0b\u00a0\u00a0c", "a b  c"},
		{"trailing spaces", "line one \t \nline two\t\nend", "line one\nline two\nend"},
		{"spaces not before newline kept", "  indented  ", "  indented  "},
		{"four newlines", "para1\n\n\n\npara2", "para1\n\npara2"},
		{"three newlines", "a\n\n\nb", "a\n\nb"},
		{"two newlines untouched", "a\n\nb", "a\n\nb"},
		{"trailing space then gap", "end \n\n \n\nnext", "end\n\nnext"},
		{"nbsp before newline stripped", "word\u00a0\nnext", "word\nnext"},
		{"hyphen exposed by strip", "a- \nb", "ab"},
		{"korean", "복습-\n계획 표 \n\n\n\n끝", "복습계획 표\n\n끝"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.in); got != tt.want {
				t.Fatalf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeTextFixedPoint(t *testing.T) {
	inputs := []string{
		"",
		"foo-\nbar",
		"--\n\n",
		"a- \nb",
		"x \n\n\n\n\n\ty\t\n",
		"hyphen- \t\n\n\n\nsplit",
		strings.Repeat("line \n", 10) + "\n\n\n\n" + "tail-\n",
	}
	for _, in := range inputs {
		once := NormalizeText(in)
		if twice := NormalizeText(once); twice != once {
			t.Errorf("not a fixed point for %q: %q -> %q", in, once, twice)
		}
		if strings.Contains(once, "-\n") || strings.Contains(once, "\n\n\n") ||
			strings.Contains(once, " \n") || strings.Contains(once, "\u00a0") {
			t.Errorf("residue left in %q", once)
		}
	}
}

func TestNormalizeBlocks(t *testing.T) {
	raw := RawResult{
		Text: "Chapter-\n1",
		Blocks: []RawBlock{
			{Text: "  Chapter 1 \n", BBox: Corners{X0: 10, Y0: 20, X1: 110, Y1: 70}, Confidence: f64(87.5)},
			{Text: "", BBox: Corners{X0: 5, Y0: 5, X1: 5, Y1: 5}},
			{Text: "zero", BBox: Corners{X0: 0, Y0: 0, X1: 3, Y1: 4}, Confidence: f64(0)},
			{Text: "full", BBox: Corners{X0: 1, Y0: 2, X1: 4, Y1: 8}, Confidence: f64(100)},
		},
	}
	got := Normalize(raw)

	if got.Text != "Chapter1" {
		t.Errorf("text = %q", got.Text)
	}
	if len(got.Blocks) != len(raw.Blocks) {
		t.Fatalf("expected %d blocks (no filtering), got %d", len(raw.Blocks), len(got.Blocks))
	}
	for i, b := range got.Blocks {
		c := raw.Blocks[i].BBox
		want := BBox{X: c.X0, Y: c.Y0, W: c.X1 - c.X0, H: c.Y1 - c.Y0}
		if b.BBox != want {
			t.Errorf("block %d bbox = %+v, want %+v", i, b.BBox, want)
		}
	}

	if got.Blocks[0].Text != "Chapter 1" {
		t.Errorf("block text not trimmed: %q", got.Blocks[0].Text)
	}
	if c := got.Blocks[0].Confidence; c == nil || *c != 0.875 {
		t.Errorf("confidence = %v, want 0.875", c)
	}
	if got.Blocks[1].Confidence != nil {
		t.Errorf("absent confidence must stay absent")
	}
	if got.Blocks[1].BBox.W != 0 || got.Blocks[1].BBox.H != 0 {
		t.Errorf("zero-area block altered: %+v", got.Blocks[1].BBox)
	}
	if got.Blocks[2].Confidence != nil {
		t.Errorf("zero confidence must normalize to absent, got %v", *got.Blocks[2].Confidence)
	}
	if c := got.Blocks[3].Confidence; c == nil || *c != 1 {
		t.Errorf("confidence 100 should map to 1, got %v", c)
	}
}

func TestNormalizeConfidenceScale(t *testing.T) {
	for _, c := range []float64{0.5, 1, 12.25, 50, 99.5, 100} {
		got := scaleConfidence(f64(c))
		if got == nil || *got != c/100 {
			t.Errorf("scaleConfidence(%v) = %v, want %v", c, got, c/100)
		}
	}
	if scaleConfidence(nil) != nil {
		t.Error("nil confidence should stay nil")
	}
}

func TestNormalizeEmpty(t *testing.T) {
	got := Normalize(RawResult{})
	if got.Text != "" {
		t.Errorf("text = %q", got.Text)
	}
	if got.Blocks == nil || len(got.Blocks) != 0 {
		t.Errorf("blocks = %#v, want empty non-nil slice", got.Blocks)
	}
	b, err := json.Marshal(got)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"text":"","blocks":[]}` {
		t.Errorf("json = %s", b)
	}
}

func TestTextBlockJSONOmitsAbsentConfidence(t *testing.T) {
	b, err := json.Marshal(TextBlock{Text: "x", BBox: BBox{X: 1, Y: 2, W: 3, H: 4}})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), "confidence") {
		t.Errorf("absent confidence serialized: %s", b)
	}
}
