package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// CLIConfig configures the tesseract command-line engine.
type CLIConfig struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	TessdataDir string
	OEM         int // 1 = LSTM; leave 0 to use default
}

// CLIRecognizer runs the tesseract binary in TSV mode and rebuilds block
// descriptors from the word rows.
type CLIRecognizer struct {
	cfg    CLIConfig
	runner Runner
	logger *slog.Logger
}

func NewCLIRecognizer(cfg CLIConfig, runner Runner, logger *slog.Logger) *CLIRecognizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	return &CLIRecognizer{cfg: cfg, runner: runner, logger: logger}
}

func (c *CLIRecognizer) Recognize(ctx context.Context, req Request) (RawResult, error) {
	path := req.Path
	if path == "" {
		tmp, err := os.CreateTemp("", "sn-page-*.img")
		if err != nil {
			return RawResult{}, err
		}
		defer func() { _ = os.Remove(tmp.Name()) }()
		if _, err := tmp.Write(req.Image); err != nil {
			_ = tmp.Close()
			return RawResult{}, err
		}
		if err := tmp.Close(); err != nil {
			return RawResult{}, err
		}
		path = tmp.Name()
	}

	// tesseract <file> stdout -l <lang> --psm <n> tsv
	args := []string{path, "stdout"}
	if len(req.Languages) > 0 {
		args = append(args, "-l", strings.Join(req.Languages, "+"))
	}
	args = append(args, "--psm", strconv.Itoa(req.PageSegMode))
	if c.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(c.cfg.OEM))
	}
	if c.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", c.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, errb, err := c.runner.Run(ctx, c.cfg.Tesseract, args...)
	if err != nil {
		return RawResult{}, fmt.Errorf("tesseract TSV: %w: %s", err, truncate(string(errb), 512))
	}
	raw, err := ParseTSV(out)
	if err != nil {
		return RawResult{}, err
	}
	c.logger.Debug("tesseract tsv parsed", "path", path, "blocks", len(raw.Blocks), "bytes", len(raw.Text))
	return raw, nil
}

// TSV row levels.
const (
	tsvLevelBlock = 2
	tsvLevelWord  = 5
)

type tsvRow struct {
	level, page, block, par, line int
	left, top, width, height      int
	conf                          float64
	text                          string
}

type tsvBlock struct {
	box          Corners
	hasBox       bool
	fromBlockRow bool
	lines        []string
	lineKey      [2]int
	confSum      float64
	confN        int
	hasWords     bool
}

func (b *tsvBlock) extend(r tsvRow) {
	c := Corners{X0: r.left, Y0: r.top, X1: r.left + r.width, Y1: r.top + r.height}
	if !b.hasBox {
		b.box, b.hasBox = c, true
		return
	}
	b.box.X0 = min(b.box.X0, c.X0)
	b.box.Y0 = min(b.box.Y0, c.Y0)
	b.box.X1 = max(b.box.X1, c.X1)
	b.box.Y1 = max(b.box.Y1, c.Y1)
}

// ParseTSV converts `tesseract ... tsv` output into a RawResult. Words are
// grouped per (page, block); lines inside a block are joined with '\n' and
// blocks with a blank line. Block confidence is the mean word confidence and
// is left nil when no word reported one.
func ParseTSV(data []byte) (RawResult, error) {
	var order [][2]int
	blocks := map[[2]int]*tsvBlock{}
	get := func(k [2]int) *tsvBlock {
		b, ok := blocks[k]
		if !ok {
			b = &tsvBlock{lineKey: [2]int{-1, -1}}
			blocks[k] = b
			order = append(order, k)
		}
		return b
	}

	for i, ln := range strings.Split(string(data), "\n") {
		ln = strings.TrimRight(ln, "\r")
		if i == 0 || ln == "" {
			continue // header
		}
		row, err := parseTSVRow(ln)
		if err != nil {
			return RawResult{}, fmt.Errorf("tsv line %d: %w", i+1, err)
		}
		key := [2]int{row.page, row.block}
		switch row.level {
		case tsvLevelBlock:
			b := get(key)
			// the block row is authoritative for the box
			b.box = Corners{X0: row.left, Y0: row.top, X1: row.left + row.width, Y1: row.top + row.height}
			b.hasBox, b.fromBlockRow = true, true
		case tsvLevelWord:
			word := strings.TrimSpace(row.text)
			if word == "" {
				continue
			}
			b := get(key)
			if !b.fromBlockRow {
				b.extend(row)
			}
			lk := [2]int{row.par, row.line}
			if lk != b.lineKey || len(b.lines) == 0 {
				b.lines = append(b.lines, word)
				b.lineKey = lk
			} else {
				b.lines[len(b.lines)-1] += " " + word
			}
			b.hasWords = true
			if row.conf >= 0 {
				b.confSum += row.conf
				b.confN++
			}
		}
	}

	raw := RawResult{Blocks: make([]RawBlock, 0, len(order))}
	var texts []string
	for _, k := range order {
		b := blocks[k]
		rb := RawBlock{Text: strings.Join(b.lines, "\n"), BBox: b.box}
		if b.confN > 0 {
			mean := b.confSum / float64(b.confN)
			rb.Confidence = &mean
		}
		raw.Blocks = append(raw.Blocks, rb)
		if b.hasWords {
			texts = append(texts, rb.Text)
		}
	}
	if len(texts) > 0 {
		raw.Text = strings.Join(texts, "\n\n") + "\n"
	}
	return raw, nil
}

func parseTSVRow(ln string) (tsvRow, error) {
	cols := strings.SplitN(ln, "\t", 12)
	if len(cols) < 11 {
		return tsvRow{}, fmt.Errorf("expected 12 columns, got %d", len(cols))
	}
	// level page block par line word left top width height
	ints := make([]int, 10)
	for i := 0; i < 10; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(cols[i]))
		if err != nil {
			return tsvRow{}, fmt.Errorf("column %d: %w", i+1, err)
		}
		ints[i] = v
	}
	conf, err := strconv.ParseFloat(strings.TrimSpace(cols[10]), 64)
	if err != nil {
		return tsvRow{}, fmt.Errorf("conf: %w", err)
	}
	row := tsvRow{
		level: ints[0], page: ints[1], block: ints[2], par: ints[3], line: ints[4],
		left: ints[6], top: ints[7], width: ints[8], height: ints[9],
		conf: conf,
	}
	if len(cols) == 12 {
		row.text = cols[11]
	}
	return row, nil
}
