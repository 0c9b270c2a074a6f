package registry

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Zytronium/atlas-airbnb-clone/pkg/types"
)

// document is the on-disk shape: composite key -> flat map.
type document map[string]types.FlatMap

// encodeDocument renders doc as indented JSON with sorted keys and a trailing
// newline. Integral floats keep a fraction so they decode as floats again.
func encodeDocument(doc document) ([]byte, error) {
	for _, m := range doc {
		for k, v := range m {
			if f, ok := v.(float64); ok {
				m[k] = floatNumber(f)
			}
		}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// floatNumber renders f so that its JSON text always reads as a float.
func floatNumber(f float64) any {
	if f != math.Trunc(f) || math.Abs(f) >= 1e21 {
		// encoding/json already writes these with a fraction or exponent.
		return f
	}
	return json.Number(strconv.FormatFloat(f, 'f', 1, 64))
}

// decodeDocument parses the data file. Numbers are kept as json.Number so the
// record layer can restore integers and floats without loss. An empty file
// decodes to an empty document.
func decodeDocument(data []byte) (document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return document{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after top-level object")
	}
	if doc == nil {
		doc = document{}
	}
	return doc, nil
}

// writeFileAtomic writes data to path using the temp-file, fsync, rename
// pattern so readers never observe a partially written file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".hbnb-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	if _, err := w.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing data: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
