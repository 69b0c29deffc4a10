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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blacktop/photo-tooter/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const tokenHelp = "\nCreate an application in Mastodon (Preferences → Development) " +
	"and copy an access token.\n" +
	"Scopes needed: at least write:statuses and write:media " +
	"(read:statuses to list scheduled toots).\n\n"

func newConfigureCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Set up Mastodon instance URL and access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.NewStore()
			if err != nil {
				return err
			}
			return configure(cmd.InOrStdin(), cmd.OutOrStdout(), store)
		},
	}
}

// configure prompts for the instance URL and token. Invalid input is
// reported and aborts without saving, but is not an error.
func configure(in io.Reader, out io.Writer, store *config.Store) error {
	reader := bufio.NewReader(in)

	fmt.Fprintf(out, "=== %s configuration ===\n", config.AppName)
	fmt.Fprint(out, "Mastodon instance URL (e.g. https://mastodon.social): ")
	baseURL, err := readLine(reader)
	if err != nil {
		return err
	}
	if err := config.ValidateBaseURL(baseURL); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return nil
	}

	fmt.Fprint(out, tokenHelp)
	fmt.Fprint(out, "Access token: ")
	token, err := readSecret(in, reader, out)
	if err != nil {
		return err
	}
	if err := config.ValidateAccessToken(token); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return nil
	}

	if _, err := store.Save(baseURL, token); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nSaved config to %s\n", store.Path)
	fmt.Fprintf(out, "You can now post with: %s post PATH\n", config.AppName)
	return nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readSecret reads the token without echo when in is a terminal.
func readSecret(in io.Reader, r *bufio.Reader, out io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read access token: %w", err)
		}
		return strings.TrimSpace(string(secret)), nil
	}
	return readLine(r)
}
