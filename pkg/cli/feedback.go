package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/campus-lab/campusboard/pkg/cli/config"
	"github.com/campus-lab/campusboard/pkg/client/api"
	"github.com/campus-lab/campusboard/pkg/client/store"
)

func cmdFeedback() *cli.Command {
	var (
		clientCfg config.Client
		rating    int
		category  string
		message   string
		history   bool
	)

	flags := joinFlags(
		[]cli.Flag{
			&cli.IntFlag{
				Name:        "rating",
				Aliases:     []string{"r"},
				Usage:       "Rating from 1 to 5",
				Destination: &rating,
			},
			&cli.StringFlag{
				Name:        "category",
				Aliases:     []string{"c"},
				Usage:       "What the feedback is about",
				Destination: &category,
			},
			&cli.StringFlag{
				Name:        "message",
				Aliases:     []string{"m"},
				Usage:       "Feedback text",
				Destination: &message,
			},
			&cli.BoolFlag{
				Name:        "history",
				Usage:       "Show previously submitted feedback instead of submitting",
				Destination: &history,
			},
		},
		clientCfg.Flags(),
	)

	return &cli.Command{
		Name:  "feedback",
		Usage: "Submit feedback about the board",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := clientCfg.OpenCache(ctx)
			if err != nil {
				return err
			}
			queue := store.NewFeedbackQueue(ctx, c, clientCfg.APIClient())

			if history {
				for _, f := range queue.History() {
					fmt.Printf("%s  %d/5  [%s]  %s\n",
						f.CreatedAt.Format("2006-01-02"), f.Rating, f.Category, f.Feedback)
				}
				return nil
			}

			submitted, err := queue.Submit(ctx, api.SubmitFeedbackInput{
				Rating:   int(rating),
				Category: category,
				Feedback: message,
			})
			if err != nil {
				return err
			}

			fmt.Printf("feedback recorded: %s\n", submitted.ID)
			return nil
		},
	}
}
