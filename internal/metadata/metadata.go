// Package metadata turns embedded image metadata into status text inputs:
// title, description, alt text and hashtags.
package metadata

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Raw field names as reported by exiftool.
const (
	FieldTitle               = "Title"
	FieldDescription         = "Description"
	FieldAltText             = "AltTextAccessibility"
	FieldExtDescr            = "ExtDescrAccessibility"
	FieldSubject             = "Subject"
	FieldWeightedFlatSubject = "WeightedFlatSubject"
	FieldHierarchicalSubject = "HierarchicalSubject"
)

// RequestedFields is the fixed set of fields a Reader is asked for.
var RequestedFields = []string{
	FieldTitle,
	FieldDescription,
	FieldAltText,
	FieldExtDescr,
	FieldSubject,
	FieldWeightedFlatSubject,
	FieldHierarchicalSubject,
}

// alt text may show up under any of these names, checked in order.
var altTextFields = []string{
	FieldAltText,
	"Alt Text Accessibility",
	FieldAltText + "-en-US",
}

var preferredLanguages = []string{"en-US", "en", "x-default"}

// Fields is one raw metadata record: field name to a string, number, list
// or per-language map.
type Fields map[string]any

// Image is the metadata derived for a single file. Empty strings mean absent.
type Image struct {
	Title       string
	Description string
	AltText     string
	Hashtags    []string
}

// Reader fetches the raw metadata record of one file.
type Reader interface {
	Read(path string) (Fields, error)
	Close() error
}

// Extractor maps raw Reader output to Image values.
type Extractor struct {
	reader      Reader
	maxHashtags int
}

// NewExtractor wraps r. Hashtags are capped at MaxHashtags.
func NewExtractor(r Reader) *Extractor {
	return &Extractor{reader: r, maxHashtags: MaxHashtags}
}

// Extract reads path and builds its Image. Only reader failures are errors;
// missing optional fields are not.
func (e *Extractor) Extract(path string) (Image, error) {
	fields, err := e.reader.Read(path)
	if err != nil {
		return Image{}, err
	}
	return fromFields(fields, e.maxHashtags), nil
}

// Close releases the underlying reader.
func (e *Extractor) Close() error {
	return e.reader.Close()
}

// FromFields builds an Image from a raw record.
func FromFields(f Fields) Image {
	return fromFields(f, MaxHashtags)
}

func fromFields(f Fields, maxHashtags int) Image {
	img := Image{
		Title:       firstText(f[FieldTitle]),
		Description: firstText(f[FieldDescription]),
		Hashtags:    Hashtags(f[FieldWeightedFlatSubject], f[FieldSubject], maxHashtags),
	}
	for _, name := range altTextFields {
		if alt := langAlt(f[name]); alt != "" {
			img.AltText = alt
			break
		}
	}
	if img.AltText == "" {
		img.AltText = img.Description
	}
	return img
}

// firstText returns the trimmed value, or the first element of a list.
func firstText(value any) string {
	if list, ok := value.([]any); ok {
		if len(list) == 0 {
			return ""
		}
		value = list[0]
	}
	s, _ := scalarString(value)
	return strings.TrimSpace(s)
}

// langAlt resolves an XMP lang-alt value, preferring English.
func langAlt(value any) string {
	switch v := value.(type) {
	case map[string]any:
		for _, lang := range preferredLanguages {
			if s, ok := v[lang].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		langs := make([]string, 0, len(v))
		for lang := range v {
			langs = append(langs, lang)
		}
		sort.Strings(langs)
		for _, lang := range langs {
			if s, ok := v[lang].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		return ""
	default:
		s, _ := scalarString(v)
		return strings.TrimSpace(s)
	}
}

// scalarString converts JSON scalars to text. exiftool prints
// numeric-looking values such as "2024" as JSON numbers.
func scalarString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}
