// Package ocr turns page images into cleaned text plus positioned text blocks.
//
// The engine is behind the Recognizer interface: internal/ocr/tesseract binds
// libtesseract through gosseract, CLIRecognizer drives the tesseract binary.
// Normalize is pure and can be fed synthetic RawResults directly.
package ocr
