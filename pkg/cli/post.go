package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/campus-lab/campusboard/pkg/cli/config"
	"github.com/campus-lab/campusboard/pkg/client/store"
	"github.com/campus-lab/campusboard/pkg/domain/model/notice"
	"github.com/campus-lab/campusboard/pkg/domain/types"
	"github.com/campus-lab/campusboard/pkg/utils/logging"
)

func cmdPost() *cli.Command {
	var (
		clientCfg config.Client
		title     string
		content   string
		category  string
		priority  string
		imageURL  string
		author    string
	)

	flags := joinFlags(
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "title",
				Aliases:     []string{"t"},
				Usage:       "Notice title",
				Required:    true,
				Destination: &title,
			},
			&cli.StringFlag{
				Name:        "content",
				Aliases:     []string{"m"},
				Usage:       "Notice body",
				Required:    true,
				Destination: &content,
			},
			&cli.StringFlag{
				Name:        "category",
				Aliases:     []string{"c"},
				Usage:       "Notice category",
				Required:    true,
				Destination: &category,
			},
			&cli.StringFlag{
				Name:        "priority",
				Aliases:     []string{"p"},
				Usage:       "Priority [Low|Medium|High]",
				Value:       string(types.PriorityMedium),
				Destination: &priority,
			},
			&cli.StringFlag{
				Name:        "image-url",
				Usage:       "Attached image URL",
				Destination: &imageURL,
			},
			&cli.StringFlag{
				Name:        "author",
				Usage:       "Author email (must be a registered user)",
				Sources:     cli.EnvVars("CAMPUSBOARD_AUTHOR"),
				Required:    true,
				Destination: &author,
			},
		},
		clientCfg.Flags(),
	)

	return &cli.Command{
		Name:  "post",
		Usage: "Post a notice to the board",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := clientCfg.OpenCache(ctx)
			if err != nil {
				return err
			}

			notices := store.NewNoticeStore(c, clientCfg.APIClient())
			defer notices.Close()
			notices.Load(ctx)

			posted, err := notices.Add(ctx, &notice.Notice{
				Title:    title,
				Content:  content,
				Category: category,
				Priority: types.Priority(priority),
				ImageURL: imageURL,
				Author:   author,
			})
			if err != nil {
				// The notice stays locally with a placeholder ID until a
				// later refresh reconciles it.
				logging.From(ctx).Warn("notice kept locally, submission failed", "error", err)
				return err
			}

			fmt.Printf("posted notice %s\n", posted.ID)
			return nil
		},
	}
}
