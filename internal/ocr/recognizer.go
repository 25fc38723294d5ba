package ocr

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// Request is one recognition call. Image holds the encoded page; Path, when
// set, is a local file with the same bytes for engines that read from disk.
type Request struct {
	Image       []byte
	Path        string
	Languages   []string
	PageSegMode int
}

// Recognizer is the OCR engine seen from the pipeline.
type Recognizer interface {
	Recognize(ctx context.Context, req Request) (RawResult, error)
}

// RecognizerFunc adapts a function to Recognizer.
type RecognizerFunc func(ctx context.Context, req Request) (RawResult, error)

func (f RecognizerFunc) Recognize(ctx context.Context, req Request) (RawResult, error) {
	return f(ctx, req)
}

// Lazy acquires its Recognizer on first use and keeps it until Close.
// A failed acquisition is not cached; the next call tries again.
type Lazy struct {
	factory func() (Recognizer, error)

	mu  sync.Mutex
	rec Recognizer
}

// NewLazy wraps factory; nothing is built until the first Recognize.
func NewLazy(factory func() (Recognizer, error)) *Lazy {
	return &Lazy{factory: factory}
}

// Get returns the cached recognizer, building it if needed.
func (l *Lazy) Get() (Recognizer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.rec != nil {
		return l.rec, nil
	}
	if l.factory == nil {
		return nil, errors.New("ocr: no recognizer factory")
	}
	rec, err := l.factory()
	if err != nil {
		return nil, err
	}
	l.rec = rec
	return rec, nil
}

func (l *Lazy) Recognize(ctx context.Context, req Request) (RawResult, error) {
	rec, err := l.Get()
	if err != nil {
		return RawResult{}, err
	}
	return rec.Recognize(ctx, req)
}

// Close releases the underlying recognizer if it holds resources.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec := l.rec
	l.rec = nil
	if c, ok := rec.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ParseLanguages splits a tesseract language spec such as "kor+eng".
func ParseLanguages(spec string) []string {
	var out []string
	for _, l := range strings.Split(spec, "+") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
