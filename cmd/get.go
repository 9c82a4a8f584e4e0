package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/profiler-cli/internal/store"
	"github.com/sells-group/profiler-cli/internal/urlnorm"
)

var getURL string

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Print a stored company profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		return runGet(ctx, st, getURL, os.Stdout)
	},
}

// runGet prints the stored profile for rawURL as indented JSON, or an error
// so deferred cleanup in the caller still runs.
func runGet(ctx context.Context, st store.Store, rawURL string, out io.Writer) error {
	profile, err := st.Get(ctx, urlnorm.EnsureScheme(rawURL))
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			return eris.New("profile not found")
		}
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(profile)
}

func init() {
	getCmd.Flags().StringVar(&getURL, "url", "", "company website URL (required)")
	_ = getCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(getCmd)
}
