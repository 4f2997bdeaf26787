package main

import (
	"bufio"
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/okian/outreach/internal/adapters/mq/worker"
	service "github.com/okian/outreach/internal/app"
	"github.com/okian/outreach/internal/campaign"
	"github.com/okian/outreach/internal/config"
	"github.com/okian/outreach/pkg/logger"
)

const jobPollInterval = 100 * time.Millisecond

// engageCmd creates the engage command group. Actions go through the
// dry-run actor, are paced, counted against the persisted limiter and
// journaled.
func engageCmd() *cli.Command {
	return &cli.Command{
		Name:  "engage",
		Usage: "Run a paced, rate-limited campaign",
		Subcommands: []*cli.Command{
			engageCommentsCmd(),
			engageMessagesCmd(),
		},
	}
}

func engageCommentsCmd() *cli.Command {
	return &cli.Command{
		Name:  "comments",
		Usage: "Comment on the best comment opportunities among the input posts",
		Flags: []cli.Flag{
			inFlag(),
			&cli.StringSliceFlag{Name: "comment", Usage: "Comment text, used in rotation; repeatable"},
			&cli.StringFlag{Name: "comments-file", Usage: "File with one comment per line"},
			&cli.IntFlag{Name: "max", Usage: "Opportunities to consider (default from config)"},
			&cli.IntFlag{Name: "limit", Value: 5, Usage: "Comments to post"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := setup(c)
			if err != nil {
				return err
			}
			comments := c.StringSlice("comment")
			if path := c.String("comments-file"); path != "" {
				more, err := readLines(path)
				if err != nil {
					return err
				}
				comments = append(comments, more...)
			}
			posts, err := readPosts(c)
			if err != nil {
				return err
			}
			return runCampaign(c, cfg, func(svc *service.Service) campaign.Job {
				var maxResults *int
				if c.IsSet("max") {
					n := c.Int("max")
					maxResults = &n
				}
				targets := svc.CommentOpportunities(c.Context, posts, maxResults)
				return campaign.NewCommentJob(targets, comments, c.Int("limit"))
			})
		},
	}
}

func engageMessagesCmd() *cli.Command {
	return &cli.Command{
		Name:  "messages",
		Usage: "Message the best-ranked input profiles",
		Flags: []cli.Flag{
			inFlag(),
			&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Required: true, Usage: "Message with {name}, {company}, {title} or {headline}"},
			&cli.IntFlag{Name: "top", Aliases: []string{"n"}, Usage: "Profiles to rank (default from config)"},
			&cli.IntFlag{Name: "limit", Value: 5, Usage: "Messages to send"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := setup(c)
			if err != nil {
				return err
			}
			profiles, err := readProfiles(c)
			if err != nil {
				return err
			}
			return runCampaign(c, cfg, func(svc *service.Service) campaign.Job {
				var topN *int
				if c.IsSet("top") {
					n := c.Int("top")
					topN = &n
				}
				ranked := svc.RankProfiles(c.Context, nil, topN, profiles)
				return campaign.NewMessageJob(ranked, c.String("template"), c.Int("limit"))
			})
		},
	}
}

// runCampaign starts the service, submits the job built by build and waits
// for it. An interrupt cancels the job in hand; the limiter checkpoint is
// still written.
func runCampaign(c *cli.Context, cfg *config.Config, build func(*service.Service) campaign.Job) error {
	opts, err := service.FromConfig(cfg)
	if err != nil {
		return err
	}
	svc := service.New(append(opts, service.WithLogger(logger.Get().Named("service")))...)
	if err := svc.Start(c.Context); err != nil {
		return err
	}
	defer svc.Shutdown(c.Context)

	st, err := svc.SubmitJob(c.Context, build(svc))
	if err != nil {
		return err
	}
	st, err = waitForJob(c.Context, svc, st.ID)
	if err != nil {
		svc.Shutdown(c.Context)
		if final, ok := svc.Job(st.ID); ok {
			st = final
		}
	}
	if outErr := outputJSON(c, st); outErr != nil {
		return outErr
	}
	if err != nil {
		return err
	}
	if st.State == worker.StateFailed {
		return errors.New(st.Error)
	}
	return nil
}

func waitForJob(ctx context.Context, svc *service.Service, id string) (worker.JobStatus, error) {
	ticker := time.NewTicker(jobPollInterval)
	defer ticker.Stop()
	for {
		st, _ := svc.Job(id)
		if st.State == worker.StateDone || st.State == worker.StateFailed {
			return st, nil
		}
		select {
		case <-ctx.Done():
			st.ID = id
			return st, ctx.Err()
		case <-ticker.C:
		}
	}
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out, sc.Err()
}
