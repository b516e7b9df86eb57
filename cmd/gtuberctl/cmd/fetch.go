package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rafostar/gtuber-go/client"
	"github.com/rafostar/gtuber-go/cookiejar"
)

var (
	fetchTimeout   time.Duration
	fetchCookiesDB string
	fetchKeepAlive bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Extract media info for a page URL and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 0, "overall request timeout, 0 uses the client default")
	fetchCmd.Flags().StringVar(&fetchCookiesDB, "cookies", "", "path to a Firefox cookies.sqlite to send cookies from")
	fetchCmd.Flags().BoolVar(&fetchKeepAlive, "keep-alive", false, "leave any attached heartbeat/proxy running instead of closing them before exit")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	opts := []client.Option{}

	var jar *cookiejar.Jar
	if fetchCookiesDB != "" {
		var err error
		jar, err = cookiejar.Open(fetchCookiesDB)
		if err != nil {
			return fmt.Errorf("opening cookie jar: %w", err)
		}
		defer jar.Close()
		opts = append(opts, client.WithCookieJar(jar))
	}

	c, err := client.New(opts...)
	if err != nil {
		return fmt.Errorf("building client: %w", err)
	}

	ctx := cmd.Context()
	if fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, fetchTimeout)
		defer cancel()
	}

	info, err := c.FetchMediaInfo(ctx, args[0])
	if err != nil {
		return err
	}
	if !fetchKeepAlive {
		defer info.Close()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}
