package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/okian/outreach/internal/adapters/repository"
	"github.com/okian/outreach/internal/config"
	"github.com/okian/outreach/internal/domain/ratelimit"
)

// pacerCmd creates the pacer command group.
func pacerCmd() *cli.Command {
	return &cli.Command{
		Name:  "pacer",
		Usage: "Inspect or reset the persisted rate limiter",
		Subcommands: []*cli.Command{
			{
				Name:  "status",
				Usage: "Show usage against each budget",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "human", Aliases: []string{"H"}, Usage: "Print a table instead of JSON"},
				},
				Action: func(c *cli.Context) error {
					cfg, err := setup(c)
					if err != nil {
						return err
					}
					return withLimiter(c, cfg, false, func(l *ratelimit.Limiter) error {
						if c.Bool("human") {
							return printStatus(c, l)
						}
						return outputJSON(c, l.Status())
					})
				},
			},
			{
				Name:  "reset",
				Usage: "Start a new scraping session (daily and hourly budgets are kept)",
				Action: func(c *cli.Context) error {
					cfg, err := setup(c)
					if err != nil {
						return err
					}
					return withLimiter(c, cfg, true, func(l *ratelimit.Limiter) error {
						l.ResetSession()
						return outputJSON(c, l.Status())
					})
				},
			},
		},
	}
}

// withLimiter restores the session's limiter from the store, runs fn and,
// when save is set, writes the checkpoint back.
func withLimiter(c *cli.Context, cfg *config.Config, save bool, fn func(*ratelimit.Limiter) error) error {
	store, err := repository.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	l := ratelimit.New(cfg.Limits.RateLimits())
	st, err := store.LoadLimiterState(c.Context, cfg.Session)
	switch {
	case err == nil:
		l.Restore(st)
	case errors.Is(err, repository.ErrNotFound):
	default:
		return err
	}

	if err := fn(l); err != nil {
		return err
	}
	if save {
		return store.SaveLimiterState(c.Context, cfg.Session, l.Snapshot())
	}
	return nil
}

func printStatus(c *cli.Context, l *ratelimit.Limiter) error {
	st := l.Status()
	snap := l.Snapshot()
	now := time.Now()

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "actions this hour\t%d/%d\n", st.ActionsThisHour, st.ActionsLimit)
	fmt.Fprintf(tw, "profiles this session\t%d/%d\n", st.ProfilesThisSession, st.ProfilesLimit)
	fmt.Fprintf(tw, "messages today\t%d/%d\n", st.MessagesToday, st.MessagesLimit)
	fmt.Fprintf(tw, "comments today\t%d/%d\n", st.CommentsToday, st.CommentsLimit)
	next := "now"
	if wait := l.TimeUntilNextAction(); wait > 0 {
		next = humanize.Time(now.Add(wait))
	}
	fmt.Fprintf(tw, "next action\t%s\n", next)
	fmt.Fprintf(tw, "daily budgets reset\t%s\n", humanize.Time(snap.DailyReset.Add(ratelimit.Day)))
	return tw.Flush()
}
