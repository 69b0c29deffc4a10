// Package media finds the image files to post and inspects them.
package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blacktop/photo-tooter/internal/config"
	"github.com/blacktop/photo-tooter/internal/logutil"
)

// ErrNoImages is returned when no input yields a supported image.
var ErrNoImages = errors.New("no image files found")

var imageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".heic": {},
	".heif": {},
	".tif":  {},
	".tiff": {},
	".webp": {},
}

// IsImage reports whether path has a supported image extension (any case).
func IsImage(path string) bool {
	_, ok := imageExts[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Collect expands files and directories into the list of images to post.
// Directory contents are sorted per directory and not recursed into;
// inputs keep their order and duplicates are kept. Missing paths are
// skipped with a warning.
func Collect(inputs []string) ([]string, error) {
	var result []string
	for _, raw := range inputs {
		path, err := config.ExpandHome(raw)
		if err != nil {
			return nil, err
		}

		info, err := os.Stat(path)
		switch {
		case err != nil:
			logutil.Warnf("path not found: %s", path)
		case info.IsDir():
			images, err := listDir(path)
			if err != nil {
				return nil, err
			}
			result = append(result, images...)
		case info.Mode().IsRegular():
			if IsImage(path) {
				result = append(result, path)
			} else {
				logutil.Debugf("skipping non-image file: %s", path)
			}
		default:
			logutil.Warnf("path not found: %s", path)
		}
	}

	if len(result) == 0 {
		return nil, ErrNoImages
	}
	return result, nil
}

func listDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var images []string
	for _, entry := range entries {
		if !IsImage(entry.Name()) {
			continue
		}
		child := filepath.Join(dir, entry.Name())
		info, err := os.Stat(child)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		images = append(images, child)
	}
	return images, nil
}
