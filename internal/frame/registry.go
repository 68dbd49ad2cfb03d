package frame

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileReader loads a table from a file path.
type FileReader func(path string, opts ...ReadOption) (*Table, error)

var (
	readers   = make(map[string]FileReader)
	readersMu sync.RWMutex
)

func init() {
	RegisterReader(".csv", ReadCSVFile)
	RegisterReader(".xls", ReadExcel)
	RegisterReader(".xlsx", ReadExcel)
}

// RegisterReader associates a file extension (with leading dot) with a reader.
// Panics if the extension is already registered.
func RegisterReader(ext string, r FileReader) {
	readersMu.Lock()
	defer readersMu.Unlock()

	ext = strings.ToLower(ext)
	if _, exists := readers[ext]; exists {
		panic(fmt.Sprintf("reader already registered: %s", ext))
	}
	readers[ext] = r
}

// ReaderFor returns the reader registered for the extension of path.
func ReaderFor(path string) (FileReader, bool) {
	readersMu.RLock()
	defer readersMu.RUnlock()

	r, ok := readers[strings.ToLower(filepath.Ext(path))]
	return r, ok
}

// Extensions returns the registered extensions, sorted.
func Extensions() []string {
	readersMu.RLock()
	defer readersMu.RUnlock()

	exts := make([]string, 0, len(readers))
	for ext := range readers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
