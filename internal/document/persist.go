package document

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/hack-pad/hackpadfs"

	"mycad/internal/geom"
)

// FormatVersion is the only document file version this build reads and writes.
const FormatVersion uint32 = 1

var (
	// ErrVersion is returned when a file carries a version other than FormatVersion.
	ErrVersion = errors.New("document: unsupported file version")
	// ErrFormat is returned for truncated or otherwise malformed files.
	ErrFormat = errors.New("document: malformed file")
)

// maxStringLen guards against absurd length prefixes in corrupt files.
const maxStringLen = 64 << 20

type record struct {
	name string
	blob string
}

// Save writes every entry to name on fsys: version, count, then (name, blob) records.
// Blobs come from codec. Nothing is written if any shape fails to encode.
func (d *Document) Save(fsys hackpadfs.FS, name string, codec geom.Codec) error {
	recs := make([]record, 0, len(d.shapes))
	for i, s := range d.shapes {
		blob, err := codec.Encode(s)
		if err != nil {
			return fmt.Errorf("save %q: %w", d.names[i], err)
		}
		recs = append(recs, record{name: d.names[i], blob: blob})
	}
	data := encodeFile(recs)

	if dir := path.Dir(name); dir != "." {
		if err := hackpadfs.MkdirAll(fsys, dir, 0755); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}
	f, err := hackpadfs.OpenFile(fsys, name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	w, ok := f.(io.Writer)
	if !ok {
		_ = f.Close()
		return fmt.Errorf("save: %s is not writable", name)
	}
	if _, err := w.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("save: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	d.log.Infof("saved %d shapes to %s", len(recs), name)
	return nil
}

// Load replaces the document with the contents of name on fsys. The whole file is read and
// checked first: on any error the current document is left exactly as it was.
// Records whose blob does not decode are skipped.
func (d *Document) Load(fsys hackpadfs.FS, name string, codec geom.Codec) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	recs, err := decodeFile(data)
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	shapes := make([]geom.Shape, len(recs))
	for i, r := range recs {
		s, err := codec.Decode(r.blob)
		if err != nil || s == nil {
			d.log.Warnf("load %s: skipping %q: %v", name, r.name, err)
			continue
		}
		shapes[i] = s
	}
	d.Batch(func() {
		d.Clear()
		for i, s := range shapes {
			if s != nil {
				d.AddShape(s, recs[i].name)
			}
		}
	})
	d.log.Infof("loaded %d shapes from %s", d.Len(), name)
	return nil
}

func encodeFile(recs []record) []byte {
	var buf bytes.Buffer
	writeU32(&buf, FormatVersion)
	writeU32(&buf, uint32(len(recs)))
	for _, r := range recs {
		writeString(&buf, r.name)
		writeString(&buf, r.blob)
	}
	return buf.Bytes()
}

func writeU32(buf *bytes.Buffer, v uint32) {
	buf.Write(binary.BigEndian.AppendUint32(nil, v))
}

func writeString(buf *bytes.Buffer, s string) {
	writeU32(buf, uint32(len(s)))
	buf.WriteString(s)
}

// decodeFile parses a document file. The version is checked before anything else.
func decodeFile(data []byte) ([]record, error) {
	r := bytes.NewReader(data)
	version, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, version)
	}
	count, err := readU32(r)
	if err != nil {
		return nil, err
	}
	var recs []record
	for i := uint32(0); i < count; i++ {
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		blob, err := readString(r)
		if err != nil {
			return nil, err
		}
		recs = append(recs, record{name: name, blob: blob})
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrFormat, r.Len())
	}
	return recs, nil
}

func readU32(r *bytes.Reader) (uint32, error) {
	var v uint32
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return v, nil
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	if n > maxStringLen || int64(n) > int64(r.Len()) {
		return "", fmt.Errorf("%w: string length %d", ErrFormat, n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return string(b), nil
}
