package ocr

// Corners is a bounding box in two opposite-corner form, as OCR engines report it.
type Corners struct {
	X0 int `json:"x0"`
	Y0 int `json:"y0"`
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
}

// RawBlock is one block descriptor straight from the engine. Confidence is on
// the engine's 0..100 scale; nil means the engine did not report one.
type RawBlock struct {
	Text       string   `json:"text"`
	BBox       Corners  `json:"bbox"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// RawResult is the unprocessed output of one recognition call.
type RawResult struct {
	Text   string     `json:"text"`
	Blocks []RawBlock `json:"blocks"`
}

// BBox is an origin-top-left rectangle.
type BBox struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// TextBlock is one recognized fragment. Confidence is in [0,1] and stays nil
// when the engine gave none; absence is not the same as zero.
type TextBlock struct {
	Text       string   `json:"text"`
	BBox       BBox     `json:"bbox"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Result is the normalized output handed to the caller.
type Result struct {
	Text   string      `json:"text"`
	Blocks []TextBlock `json:"blocks"`
}
