package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/joseph-ayodele/study-notebook/internal/ocr"
)

// Config tunes the libtesseract binding.
type Config struct {
	TessdataPrefix string
	// Level selects the iterator level reported as blocks. The zero value
	// is gosseract.RIL_BLOCK.
	Level     gosseract.PageIteratorLevel
	Variables map[string]string
}

// Engine implements ocr.Recognizer with gosseract. A fresh client is used per
// call, so an Engine is safe for concurrent use.
type Engine struct {
	cfg           Config
	clientFactory func() *gosseract.Client
}

// New constructs a Tesseract-backed recognizer.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg, clientFactory: gosseract.NewClient}
}

// Recognize runs one page. libtesseract cannot be interrupted, so ctx is only
// checked before and after the call.
func (e *Engine) Recognize(ctx context.Context, req ocr.Request) (ocr.RawResult, error) {
	if err := ctx.Err(); err != nil {
		return ocr.RawResult{}, err
	}
	c := e.clientFactory()
	defer func() { _ = c.Close() }()

	if e.cfg.TessdataPrefix != "" {
		if err := c.SetTessdataPrefix(e.cfg.TessdataPrefix); err != nil {
			return ocr.RawResult{}, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if len(req.Languages) > 0 {
		if err := c.SetLanguage(req.Languages...); err != nil {
			return ocr.RawResult{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if err := c.SetPageSegMode(gosseract.PageSegMode(req.PageSegMode)); err != nil {
		return ocr.RawResult{}, fmt.Errorf("set page seg mode: %w", err)
	}
	for k, v := range e.cfg.Variables {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return ocr.RawResult{}, fmt.Errorf("set variable %s: %w", k, err)
		}
	}
	if err := c.SetImageFromBytes(req.Image); err != nil {
		return ocr.RawResult{}, fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return ocr.RawResult{}, fmt.Errorf("recognize text: %w", err)
	}
	boxes, err := c.GetBoundingBoxes(e.cfg.Level)
	if err != nil {
		return ocr.RawResult{}, fmt.Errorf("bounding boxes: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return ocr.RawResult{}, err
	}
	return ocr.RawResult{Text: text, Blocks: toRawBlocks(boxes)}, nil
}

func toRawBlocks(boxes []gosseract.BoundingBox) []ocr.RawBlock {
	blocks := make([]ocr.RawBlock, 0, len(boxes))
	for _, b := range boxes {
		rb := ocr.RawBlock{
			Text: strings.TrimRight(b.Word, "\n"),
			BBox: ocr.Corners{X0: b.Box.Min.X, Y0: b.Box.Min.Y, X1: b.Box.Max.X, Y1: b.Box.Max.Y},
		}
		if b.Confidence > 0 {
			conf := b.Confidence
			rb.Confidence = &conf
		}
		blocks = append(blocks, rb)
	}
	return blocks
}
