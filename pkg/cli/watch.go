package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/campus-lab/campusboard/pkg/cli/config"
	"github.com/campus-lab/campusboard/pkg/client/cache"
	"github.com/campus-lab/campusboard/pkg/client/push"
	"github.com/campus-lab/campusboard/pkg/client/store"
	"github.com/campus-lab/campusboard/pkg/client/view"
	category_model "github.com/campus-lab/campusboard/pkg/domain/model/category"
	pushmodel "github.com/campus-lab/campusboard/pkg/domain/model/push"
	"github.com/campus-lab/campusboard/pkg/utils/logging"
)

func cmdWatch() *cli.Command {
	var (
		clientCfg config.Client
		category  string
		search    string
	)

	flags := joinFlags(
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "category",
				Aliases:     []string{"c"},
				Usage:       "Board category filter (\"All\" shows everything)",
				Value:       view.CategoryAll,
				Destination: &category,
			},
			&cli.StringFlag{
				Name:        "search",
				Aliases:     []string{"s"},
				Usage:       "Search query over title and content",
				Destination: &search,
			},
		},
		clientCfg.Flags(),
	)

	return &cli.Command{
		Name:  "watch",
		Usage: "Render the board and keep it live via the push channel",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := clientCfg.OpenCache(ctx)
			if err != nil {
				return err
			}
			apiClient := clientCfg.APIClient()

			// Restore the last-used category when the flag is left at its
			// default, then remember the choice for the next session.
			if category == view.CategoryAll {
				var saved string
				if err := c.Get(cache.KeyActiveCategory, &saved); err == nil && saved != "" {
					category = saved
				}
			}
			if err := c.Set(cache.KeyActiveCategory, category); err != nil {
				logging.From(ctx).Warn("failed to persist active category", "error", err)
			}

			var savedCategories []category_model.Category
			if err := c.Get(cache.KeyCategories, &savedCategories); err != nil {
				savedCategories = nil
			}

			notices := store.NewNoticeStore(c, apiClient)
			events := store.NewEventStore(c, apiClient)
			defer notices.Close()
			defer events.Close()

			notices.Load(ctx)
			events.Load(ctx)

			// Refresh from the service; the cached state stays usable when
			// the server is unreachable.
			if list, err := apiClient.ListNotices(ctx); err != nil {
				logging.From(ctx).Warn("failed to fetch notices, showing cached state", "error", err)
			} else {
				notices.ApplyRemoteSnapshot(ctx, list)
			}
			if list, err := apiClient.ListEvents(ctx); err != nil {
				logging.From(ctx).Warn("failed to fetch events, showing cached state", "error", err)
			} else {
				events.ApplyRemoteSnapshot(ctx, list)
			}

			pushOpts, err := clientCfg.PushOptions()
			if err != nil {
				return err
			}
			conn := push.Connect(ctx, clientCfg.ServerURL(), pushOpts)
			defer conn.Close()

			routeEnvelope := func(env *pushmodel.Envelope) {
				var err error
				if strings.HasPrefix(env.Event, "notice:") {
					err = notices.ApplyPushEvent(ctx, env)
				} else {
					err = events.ApplyPushEvent(ctx, env)
				}
				if err != nil {
					logging.From(ctx).Warn("failed to apply push event",
						"event", env.Event, "error", err)
				}
			}
			for _, event := range []string{
				pushmodel.NoticeAdd, pushmodel.NoticeUpdate, pushmodel.NoticeDelete,
				pushmodel.EventAdd, pushmodel.EventDelete,
			} {
				conn.On(event, routeEnvelope)
			}

			render := func() {
				renderBoard(notices, events, savedCategories, category, search)
			}
			unsubNotices := notices.Subscribe(render)
			defer unsubNotices()
			unsubEvents := events.Subscribe(render)
			defer unsubEvents()

			render()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-sigCh:
			case <-ctx.Done():
			}
			return nil
		},
	}
}

var (
	pinMark    = color.New(color.FgYellow, color.Bold)
	titleStyle = color.New(color.FgHiWhite, color.Bold)
	metaStyle  = color.New(color.FgCyan)
)

func renderBoard(notices *store.NoticeStore, events *store.EventStore, saved []category_model.Category, category, search string) {
	items := view.Build(notices.Notices(), events.Events(), category, search, notices.Pinned())

	var sidebar []string
	for _, c := range view.Categories(saved, notices.Notices()) {
		sidebar = append(sidebar, fmt.Sprintf("%s:%d", c.Label, c.Count))
	}
	fmt.Printf("\n%s\n", metaStyle.Sprint(strings.Join(sidebar, "  ")))
	fmt.Printf("=== %s (%d) ===\n", category, len(items))
	for _, item := range items {
		marker := "  "
		if item.Pinned {
			marker = pinMark.Sprint("* ")
		}
		fmt.Printf("%s%s\n", marker, titleStyle.Sprint(item.Notice.Title))
		fmt.Printf("    %s\n", metaStyle.Sprintf("%s | %s | %s | %s",
			item.Notice.Category, item.Notice.Priority, item.Notice.Date, item.Notice.Author))
	}
}
