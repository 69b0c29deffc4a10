/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/blacktop/photo-tooter/internal/config"
	"github.com/blacktop/photo-tooter/internal/logutil"
	"github.com/blacktop/photo-tooter/internal/media"
	"github.com/blacktop/photo-tooter/internal/metadata"
	"github.com/blacktop/photo-tooter/internal/tooter"
	"github.com/blacktop/photo-tooter/internal/tooter/mastodon"
	"github.com/spf13/cobra"
)

// EnvExiftool overrides the exiftool binary.
const EnvExiftool = "PHOTO_TOOTER_EXIFTOOL"

const (
	sourceExiftool = "exiftool"
	sourceExif     = "exif"
)

var (
	textFlag       string
	visibilityFlag string
	metadataSource string
	dryRun         bool
)

func newPostCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post <path>...",
		Short: "Post each image as its own toot",
		Long: "Post one toot per image. Paths may be files and/or folders; folders are " +
			"scanned (not recursively) for jpg, jpeg, png, heic, heif, tif, tiff and webp files.",
		Args: cobra.MinimumNArgs(1),
		RunE: runPost,
	}

	cmd.Flags().StringVarP(&textFlag, "text", "t", "", "Toot text override (hashtags are still appended)")
	cmd.Flags().StringVarP(&visibilityFlag, "visibility", "v", string(tooter.VisibilityPublic), "Visibility of each toot (public, unlisted, private, direct)")
	cmd.Flags().StringVar(&metadataSource, "metadata", sourceExiftool, "Metadata reader (exiftool, exif)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print what would be posted without posting")
	cmd.Flags().SortFlags = false

	_ = cmd.RegisterFlagCompletionFunc("visibility", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, 0, len(tooter.Visibilities))
		for _, v := range tooter.Visibilities {
			names = append(names, string(v))
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("metadata", cobra.FixedCompletions([]string{sourceExiftool, sourceExif}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func runPost(cmd *cobra.Command, args []string) error {
	visibility, err := tooter.ParseVisibility(visibilityFlag)
	if err != nil {
		return err
	}

	reader, err := newMetadataReader(metadataSource)
	if err != nil {
		return err
	}

	var client tooter.Client
	if !dryRun {
		client, err = buildClient()
		if err != nil {
			return err
		}
	}

	paths, err := media.Collect(args)
	if err != nil {
		return err
	}

	extractor := metadata.NewExtractor(reader)
	defer func() {
		if err := extractor.Close(); err != nil {
			logutil.Debugf("close metadata reader: %v", err)
		}
	}()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}

	runner := &tooter.Runner{
		Client:     client,
		Extractor:  extractor,
		Out:        cmd.OutOrStdout(),
		OutputDir:  cwd,
		Visibility: visibility,
		Text:       textFlag,
		DryRun:     dryRun,
		Probe:      media.Probe,
	}
	_, err = runner.Run(cmd.Context(), paths)
	return err
}

func newMetadataReader(source string) (metadata.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case sourceExiftool, "":
		return metadata.NewExiftoolReader(strings.TrimSpace(os.Getenv(EnvExiftool))), nil
	case sourceExif:
		return metadata.NewExifReader(), nil
	default:
		return nil, fmt.Errorf("unsupported metadata reader %q (choose exiftool or exif)", source)
	}
}

// buildClient loads the saved config and connects to the instance.
func buildClient() (tooter.Client, error) {
	store, err := config.NewStore()
	if err != nil {
		return nil, err
	}
	cfg, err := store.Load()
	if err != nil {
		return nil, err
	}
	logutil.Debugf("using instance %s (config %s)", cfg.BaseURL, store.Path)
	return mastodon.New(cfg)
}
