package tooter

import (
	"strings"

	"github.com/blacktop/photo-tooter/internal/metadata"
)

// BaseText picks the status text: the override when given, otherwise
// "title — description", or whichever of the two is present.
func BaseText(override, title, description string) (string, error) {
	switch {
	case override != "":
		return override, nil
	case title != "" && description != "":
		return title + " — " + description, nil
	case description != "":
		return description, nil
	case title != "":
		return title, nil
	default:
		return "", ErrNoStatusText
	}
}

// ComposeStatus builds the full status text. Hashtags are appended on their
// own paragraph, also when the text was overridden.
func ComposeStatus(override string, img metadata.Image) (string, error) {
	text, err := BaseText(override, img.Title, img.Description)
	if err != nil {
		return "", err
	}
	if len(img.Hashtags) > 0 {
		text += "\n\n" + strings.Join(img.Hashtags, " ")
	}
	return text, nil
}
