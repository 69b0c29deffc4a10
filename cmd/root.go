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
	"os"
	"path/filepath"

	"github.com/blacktop/photo-tooter/internal/config"
	"github.com/blacktop/photo-tooter/internal/logutil"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var verbose bool

// Execute runs the root command.
func Execute() error {
	return newRootCommand().Execute()
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Post one toot per photo to Mastodon",
		Long: "photo-tooter posts one toot per image to Mastodon, building the text, alt text " +
			"and hashtags from the metadata embedded in each image. The first image goes out " +
			"immediately and the rest are scheduled 10 minutes apart.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logutil.SetVerbose(verbose)
			loadEnvFiles()
		},
		Example: `  photo-tooter configure
  photo-tooter post ~/Pictures/export
  photo-tooter post a.jpg b.jpg --visibility unlisted --text "From the archive"
  photo-tooter post $(cat photo-tooter-failed.txt)`,
	}

	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newConfigureCommand())
	cmd.AddCommand(newPostCommand())
	cmd.AddCommand(newUnscheduleCommand())
	cmd.AddCommand(newCompletionCommand())

	return cmd
}

// loadEnvFiles reads optional .env files. Variables already set win.
func loadEnvFiles() {
	files := []string{".env"}
	if home, err := os.UserHomeDir(); err == nil {
		files = append(files, filepath.Join(home, "."+config.AppName+".env"))
	}
	for _, f := range files {
		if err := godotenv.Load(f); err == nil {
			logutil.Debugf("loaded environment from %s", f)
		}
	}
}
