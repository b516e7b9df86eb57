package client

import (
	"context"

	"github.com/rafostar/gtuber-go"
)

// Result is the outcome of an asynchronous fetch, delivered on the channel
// FetchMediaInfoAsync returns.
type Result struct {
	Info *gtuber.MediaInfo
	Err  error
}

// FetchMediaInfoAsync runs FetchMediaInfo on its own goroutine and returns
// a channel that receives exactly one Result before being closed. This is
// the idiomatic replacement for the original library's GTask-based
// fetch_media_info_async/_finish pair: callers select on the channel (or on
// ctx.Done()) instead of polling a GAsyncResult.
func (c *Client) FetchMediaInfoAsync(ctx context.Context, rawURL string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		info, err := c.FetchMediaInfo(ctx, rawURL)
		out <- Result{Info: info, Err: err}
	}()
	return out
}
