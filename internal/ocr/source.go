package ocr

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/joseph-ayodele/study-notebook/constants"
)

// Source is the page to extract. Exactly one field must be set.
type Source struct {
	Path   string      // local file
	Data   []byte      // encoded image bytes
	Canvas image.Image // in-memory raster, encoded to PNG
	URL    string      // http(s) location
}

var errSourceCount = errors.New("ocr: source needs exactly one of Path, Data, Canvas, URL")

func (s Source) validate() error {
	n := 0
	if s.Path != "" {
		n++
	}
	if len(s.Data) > 0 {
		n++
	}
	if s.Canvas != nil {
		n++
	}
	if s.URL != "" {
		n++
	}
	if n != 1 {
		return errSourceCount
	}
	return nil
}

func (s Source) String() string {
	switch {
	case s.Path != "":
		return "path:" + s.Path
	case s.URL != "":
		return "url:" + s.URL
	case s.Canvas != nil:
		return "canvas"
	default:
		return fmt.Sprintf("bytes:%d", len(s.Data))
	}
}

// engines read these as-is; anything else decodable is re-encoded to PNG
var passthroughFormats = map[string]bool{"png": true, "jpeg": true, "tiff": true, "bmp": true}

type pageImage struct {
	data    []byte
	path    string // set only when the file on disk holds exactly data
	format  string
	cleanup func()
}

func (e *Extractor) load(ctx context.Context, src Source) (pageImage, error) {
	if err := src.validate(); err != nil {
		return pageImage{}, err
	}
	switch {
	case src.Canvas != nil:
		var buf bytes.Buffer
		if err := png.Encode(&buf, src.Canvas); err != nil {
			return pageImage{}, fmt.Errorf("encode canvas: %w", err)
		}
		return pageImage{data: buf.Bytes(), format: "png"}, nil
	case src.URL != "":
		data, err := e.fetch(ctx, src.URL)
		if err != nil {
			return pageImage{}, err
		}
		return e.prepare(ctx, data, "")
	case src.Path != "":
		if constants.IsHEICExt(filepath.Ext(src.Path)) {
			return e.fromHEIC(ctx, src.Path, nil)
		}
		data, err := readLimited(src.Path, e.cfg.MaxImageBytes)
		if err != nil {
			return pageImage{}, err
		}
		return e.prepare(ctx, data, src.Path)
	default:
		return e.prepare(ctx, src.Data, "")
	}
}

// prepare sniffs the format and transcodes what engines cannot read.
func (e *Extractor) prepare(ctx context.Context, data []byte, path string) (pageImage, error) {
	if int64(len(data)) > e.cfg.MaxImageBytes {
		return pageImage{}, fmt.Errorf("image exceeds %d bytes", e.cfg.MaxImageBytes)
	}
	if isHEIC(data) {
		return e.fromHEIC(ctx, path, data)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return pageImage{}, fmt.Errorf("unsupported image: %w", err)
	}
	if passthroughFormats[format] {
		return pageImage{data: data, path: path, format: format}, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return pageImage{}, fmt.Errorf("decode %s: %w", format, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return pageImage{}, fmt.Errorf("encode png: %w", err)
	}
	e.logger.Debug("transcoded page image", "from", format, "to", "png", "bytes", buf.Len())
	return pageImage{data: buf.Bytes(), format: "png"}, nil
}

// fromHEIC converts via the configured external tool. data may be nil when
// path points at the original file.
func (e *Extractor) fromHEIC(ctx context.Context, path string, data []byte) (pageImage, error) {
	var err error
	if data == nil {
		if data, err = readLimited(path, e.cfg.MaxImageBytes); err != nil {
			return pageImage{}, err
		}
	}
	var tmpCleanup func()
	if path == "" {
		tmp, err := os.CreateTemp("", "sn-upload-*.heic")
		if err != nil {
			return pageImage{}, err
		}
		if _, err := tmp.Write(data); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
			return pageImage{}, err
		}
		if err := tmp.Close(); err != nil {
			_ = os.Remove(tmp.Name())
			return pageImage{}, err
		}
		path = tmp.Name()
		tmpCleanup = func() { _ = os.Remove(tmp.Name()) }
	}
	if tmpCleanup != nil {
		defer tmpCleanup()
	}

	sum := sha256.Sum256(data)
	out, cleanup, err := convertHEICtoPNG(ctx, e.runner, e.logger, e.cfg.HeicConverter, path,
		e.cfg.ArtifactCacheDir, hex.EncodeToString(sum[:]))
	if err != nil {
		e.logger.Error("heic conversion failed", "path", path, "error", err)
		return pageImage{}, err
	}
	pngData, err := os.ReadFile(out)
	if err != nil {
		if cleanup != nil {
			cleanup()
		}
		return pageImage{}, err
	}
	return pageImage{data: pngData, path: out, format: "png", cleanup: cleanup}, nil
}

func (e *Extractor) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := e.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}
	return readAllLimited(resp.Body, e.cfg.MaxImageBytes)
}

func readLimited(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return readAllLimited(f, limit)
}

func readAllLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("image exceeds %d bytes", limit)
	}
	return data, nil
}
