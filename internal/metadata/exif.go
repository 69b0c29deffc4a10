package metadata

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/text/encoding/unicode"
)

const exifToolName = "exif"

// ExifReader reads plain EXIF tags without an external tool. It only sees
// what EXIF carries: ImageDescription and the Windows XP title, comment,
// subject and keyword tags. XMP fields are not available.
type ExifReader struct{}

// NewExifReader returns a pure-Go EXIF reader.
func NewExifReader() *ExifReader { return &ExifReader{} }

// Read decodes the EXIF block of path into the same field names exiftool uses.
func (r *ExifReader) Read(path string) (Fields, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return nil, ToolError{Tool: exifToolName, Path: path, Reason: err.Error()}
	}

	fields := Fields{}
	if title := xpString(x, exif.XPTitle); title != "" {
		fields[FieldTitle] = title
	} else if subject := xpString(x, exif.XPSubject); subject != "" {
		fields[FieldTitle] = subject
	}

	if desc := asciiString(x, exif.ImageDescription); desc != "" {
		fields[FieldDescription] = desc
	} else if comment := xpString(x, exif.XPComment); comment != "" {
		fields[FieldDescription] = comment
	}

	if kw := xpString(x, exif.XPKeywords); kw != "" {
		var subjects []any
		for _, k := range strings.Split(kw, ";") {
			if k = strings.TrimSpace(k); k != "" {
				subjects = append(subjects, k)
			}
		}
		if len(subjects) > 0 {
			fields[FieldSubject] = subjects
		}
	}
	return fields, nil
}

// Close is a no-op.
func (r *ExifReader) Close() error { return nil }

func asciiString(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}

// xpString decodes a Windows XP tag, stored as a UTF-16LE byte array.
func xpString(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil || len(tag.Val) == 0 {
		return ""
	}
	return decodeUTF16LE(tag.Val)
}

func decodeUTF16LE(b []byte) string {
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	out = bytes.TrimRight(out, "\x00")
	return strings.TrimSpace(string(out))
}
