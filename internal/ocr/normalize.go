package ocr

import (
	"math"
	"regexp"
	"strings"
)

var (
	reTrailingSpace = regexp.MustCompile(`[ \t]+\n`)
	reParagraphGap  = regexp.MustCompile(`\n{3,}`)
)

// Normalize converts one raw engine result into a Result. It never fails:
// missing text or blocks become "" and an empty slice.
func Normalize(raw RawResult) Result {
	blocks := make([]TextBlock, 0, len(raw.Blocks))
	for _, b := range raw.Blocks {
		blocks = append(blocks, normalizeBlock(b))
	}
	return Result{
		Text:   NormalizeText(raw.Text),
		Blocks: blocks,
	}
}

// NormalizeText cleans full-page OCR text. Each pass, in order:
//  1. deletes a '-' immediately followed by '\n' (joins hyphen-split words),
//  2. turns U+00A0 into a plain space,
//  3. drops spaces/tabs right before a '\n',
//  4. collapses three or more '\n' into exactly two.
//
// Passes repeat until the text is stable, so the result is a fixed point.
// A pass that changes anything makes the string shorter, so this terminates.
func NormalizeText(s string) string {
	for {
		next := normalizePass(s)
		if next == s {
			return next
		}
		s = next
	}
}

func normalizePass(s string) string {
	s = strings.ReplaceAll(s, "-\n", "")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = reTrailingSpace.ReplaceAllString(s, "\n")
	s = reParagraphGap.ReplaceAllString(s, "\n\n")
	return s
}

// zero-area boxes are kept; callers decide whether to drop them
func normalizeBlock(b RawBlock) TextBlock {
	return TextBlock{
		Text: strings.TrimSpace(b.Text),
		BBox: BBox{
			X: b.BBox.X0,
			Y: b.BBox.Y0,
			W: b.BBox.X1 - b.BBox.X0,
			H: b.BBox.Y1 - b.BBox.Y0,
		},
		Confidence: scaleConfidence(b.Confidence),
	}
}

// scaleConfidence maps 0..100 onto 0..1. Zero and NaN count as "not reported".
func scaleConfidence(c *float64) *float64 {
	if c == nil || *c == 0 || math.IsNaN(*c) {
		return nil
	}
	v := *c / 100
	return &v
}
