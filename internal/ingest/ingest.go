package ingest

// PageFile is one page image found on disk.
type PageFile struct {
	Path         string
	Archive      string // name of the directory holding the page
	Format       string // constants.IMAGE or constants.HEIC
	HashHex      string // sha256 of the content
	Size         int64
	Deduplicated bool // same content as an earlier page in the scan
	Err          string
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}
