package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/solexplorer/solexplorer/shared/domain"
	"github.com/solexplorer/solexplorer/shared/logger"
	"github.com/solexplorer/solexplorer/shared/query"
)

var (
	feedUser     string
	feedInterval time.Duration
	feedPageSize int
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Follow the activity feed",
	Long: `Prints the global activity feed, or the feed of --user, and keeps
polling every --interval until interrupted. Resuming the process after a
stop (SIGCONT) refreshes immediately.`,
	Args: cobra.NoArgs,
	RunE: runFeed,
}

func init() {
	feedCmd.Flags().StringVar(&feedUser, "user", "", "username whose feed to follow, global feed when empty")
	feedCmd.Flags().DurationVar(&feedInterval, "interval", 30*time.Second, "polling interval, 0 prints once")
	feedCmd.Flags().IntVar(&feedPageSize, "page-size", 0, "activities per page, backend default when 0")
}

func runFeed(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	page := domain.Page{PageSize: feedPageSize}
	opts := []query.Option{query.WithRefreshInterval(feedInterval), query.WithKeepPreviousData(true)}

	var q *query.Query[json.RawMessage]
	if feedUser != "" {
		q = client.WatchActivity(ctx, feedUser, page, opts...)
	} else {
		q = client.WatchGlobalActivity(ctx, page, opts...)
	}
	defer q.Close()

	once := feedInterval <= 0
	if !once {
		go forwardFocus(ctx)
	}

	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case st := <-q.Updates():
			if once && !st.Loading {
				if st.Err != nil {
					return st.Err
				}
				return printFeed(cmd.OutOrStdout(), st.Data)
			}
			if st.Err != nil {
				logger.Log.Warn("feed refresh failed", "component", "cli", "error", st.Err)
				continue
			}
			if st.Loading || !st.UpdatedAt.After(last) {
				continue
			}
			last = st.UpdatedAt
			fmt.Fprintf(cmd.OutOrStdout(), "--- %s\n", st.UpdatedAt.Format(time.TimeOnly))
			if err := printFeed(cmd.OutOrStdout(), st.Data); err != nil {
				logger.Log.Warn("cannot render feed", "component", "cli", "error", err)
			}
		}
	}
}

// forwardFocus treats a resumed process as a focused window.
func forwardFocus(ctx context.Context) {
	cont := make(chan os.Signal, 1)
	signal.Notify(cont, syscall.SIGCONT)
	defer signal.Stop(cont)

	for {
		select {
		case <-ctx.Done():
			return
		case <-cont:
			logger.Log.Debug("resumed, revalidating", "component", "cli")
			client.Queries().Revalidate(ctx, query.EventFocus)
		}
	}
}

func printFeed(w io.Writer, raw json.RawMessage) error {
	var feed struct {
		Activities []json.RawMessage `json:"activities"`
	}
	if err := json.Unmarshal(raw, &feed); err != nil {
		return fmt.Errorf("cannot decode feed: %w", err)
	}
	var line bytes.Buffer
	for _, a := range feed.Activities {
		line.Reset()
		if err := json.Compact(&line, a); err != nil {
			return err
		}
		fmt.Fprintln(w, line.String())
	}
	return nil
}
