package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/okian/outreach/internal/adapters/export"
	"github.com/okian/outreach/internal/adapters/ingest"
	"github.com/okian/outreach/internal/config"
	"github.com/okian/outreach/internal/domain/dedupe"
	"github.com/okian/outreach/internal/domain/model"
	"github.com/okian/outreach/internal/domain/relevance"
	"github.com/okian/outreach/internal/domain/report"
	"github.com/okian/outreach/internal/domain/scoring"
	"github.com/okian/outreach/internal/domain/types"
	"github.com/okian/outreach/pkg/logger"
)

// errNoInput is returned when a command that needs records got none.
var errNoInput = errors.New("no records in input")

// newCLIApp creates the CLI application with all commands.
func newCLIApp(in io.Reader, out, errOut io.Writer) *cli.App {
	app := &cli.App{
		Name:      "outreach",
		Usage:     "Engagement opportunity scoring and paced outreach",
		Version:   Version,
		Reader:    in,
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file (same as " + config.EnvConfig + ")"},
		},
		Before: func(c *cli.Context) error {
			if path := c.String("config"); path != "" {
				return os.Setenv(config.EnvConfig, path)
			}
			return nil
		},
		Commands: []*cli.Command{
			serveCmd(),
			rankPostsCmd(),
			commentTargetsCmd(),
			rankProfilesCmd(),
			reportCmd(),
			normalizeCmd(),
			extractHTMLCmd(),
			pacerCmd(),
			engageCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// setup loads configuration and initializes logging on the app's error
// writer so stdout stays machine readable.
func setup(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.Context)
	if err != nil {
		return nil, err
	}
	if err := logger.InitWithOptions(logger.Options{Format: cfg.LogFormat, Writer: c.App.ErrWriter}); err != nil {
		return nil, err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(c.Context, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}

func inFlag() cli.Flag {
	return &cli.StringFlag{Name: "in", Aliases: []string{"i"}, Value: "-", Usage: "Input file (JSON, wrapper object or NDJSON); - reads stdin"}
}

func csvFlag() cli.Flag {
	return &cli.StringFlag{Name: "csv", Usage: "Also write results as CSV to this path"}
}

func xlsxFlag() cli.Flag {
	return &cli.StringFlag{Name: "xlsx", Usage: "Also write results as an XLSX workbook to this path"}
}

// openInput opens the --in file, or stdin for "-".
func openInput(c *cli.Context) (io.ReadCloser, error) {
	path := c.String("in")
	if path == "" || path == "-" {
		return io.NopCloser(c.App.Reader), nil
	}
	return os.Open(path)
}

func readPosts(c *cli.Context) ([]model.Post, error) {
	r, err := openInput(c)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	posts, err := ingest.ReadPosts(r)
	if err != nil {
		return nil, err
	}
	posts, dropped := dedupe.Posts(c.Context, dedupe.NewInMemoryDeduper(), posts)
	if dropped > 0 {
		logger.Get().Info(c.Context, "dropped duplicate posts", logger.Int("count", dropped))
	}
	return posts, nil
}

func readProfiles(c *cli.Context) ([]model.Profile, error) {
	r, err := openInput(c)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	profiles, err := ingest.ReadProfiles(r)
	if err != nil {
		return nil, err
	}
	profiles, dropped := dedupe.Profiles(c.Context, dedupe.NewInMemoryDeduper(), profiles)
	if dropped > 0 {
		logger.Get().Info(c.Context, "dropped duplicate profiles", logger.Int("count", dropped))
	}
	return profiles, nil
}

// outputJSON writes v as indented JSON to the app's writer.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeFile creates path and hands it to write.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// rankPostsCmd creates the rank-posts command.
func rankPostsCmd() *cli.Command {
	return &cli.Command{
		Name:  "rank-posts",
		Usage: "Score posts as engagement opportunities and print the top N",
		Flags: []cli.Flag{
			inFlag(),
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Usage: "recent|engagement|topic|balanced (default from config)"},
			&cli.StringSliceFlag{Name: "keyword", Aliases: []string{"k"}, Usage: "Topic keyword; repeatable"},
			&cli.StringFlag{Name: "keywords-file", Usage: "CSV whose first column holds keywords"},
			&cli.IntFlag{Name: "top", Aliases: []string{"n"}, Usage: "Number of posts to keep (default from config)"},
			csvFlag(),
			xlsxFlag(),
		},
		Action: func(c *cli.Context) error {
			cfg, err := setup(c)
			if err != nil {
				return err
			}
			posts, err := readPosts(c)
			if err != nil {
				return err
			}

			mode := cfg.Scoring.Mode
			if c.IsSet("mode") {
				mode = c.String("mode")
			}
			keywords := append(append([]string(nil), cfg.Scoring.Keywords...), c.StringSlice("keyword")...)
			kwFile := cfg.Scoring.KeywordsFile
			if c.IsSet("keywords-file") {
				kwFile = c.String("keywords-file")
			}
			if kwFile != "" {
				extra, err := ingest.LoadKeywords(kwFile)
				if err != nil {
					return err
				}
				keywords = append(keywords, extra...)
			}
			top := cfg.Scoring.TopN
			if c.IsSet("top") {
				top = c.Int("top")
			}

			scorer := scoring.New(scoring.WithMode(scoring.ParseMode(mode)), scoring.WithKeywords(keywords))
			ranked := scoring.TopN(scorer.Rank(posts), top)

			if path := c.String("csv"); path != "" {
				if err := writeFile(path, func(w io.Writer) error { return export.WritePostsCSV(w, ranked) }); err != nil {
					return err
				}
			}
			if path := c.String("xlsx"); path != "" {
				if err := writeFile(path, func(w io.Writer) error { return export.WriteWorkbook(w, export.Workbook{Posts: ranked}) }); err != nil {
					return err
				}
			}
			return outputJSON(c, types.Ranked(ranked))
		},
	}
}

// commentTargetsCmd creates the comment-targets command.
func commentTargetsCmd() *cli.Command {
	return &cli.Command{
		Name:  "comment-targets",
		Usage: "Select posts in the comment sweet spot",
		Flags: []cli.Flag{
			inFlag(),
			&cli.IntFlag{Name: "max", Usage: "Maximum opportunities (default from config)"},
			csvFlag(),
		},
		Action: func(c *cli.Context) error {
			cfg, err := setup(c)
			if err != nil {
				return err
			}
			posts, err := readPosts(c)
			if err != nil {
				return err
			}
			limit := cfg.Scoring.MaxCommentResults
			if c.IsSet("max") {
				limit = c.Int("max")
			}
			targets := scoring.FindCommentOpportunities(posts, limit, time.Now())
			if path := c.String("csv"); path != "" {
				if err := writeFile(path, func(w io.Writer) error { return export.WriteCommentTargetsCSV(w, targets) }); err != nil {
					return err
				}
			}
			return outputJSON(c, targets)
		},
	}
}

// rankProfilesCmd creates the rank-profiles command.
func rankProfilesCmd() *cli.Command {
	return &cli.Command{
		Name:  "rank-profiles",
		Usage: "Rank profiles against the configured targeting criteria",
		Flags: []cli.Flag{
			inFlag(),
			&cli.IntFlag{Name: "top", Aliases: []string{"n"}, Usage: "Number of profiles to keep (default from config)"},
			csvFlag(),
			xlsxFlag(),
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
			top := cfg.Scoring.TopN
			if c.IsSet("top") {
				top = c.Int("top")
			}
			ranked := relevance.NewAnalyzer(cfg.Criteria.Model()).Rank(profiles, top)

			if path := c.String("csv"); path != "" {
				if err := writeFile(path, func(w io.Writer) error { return export.WriteProfilesCSV(w, ranked) }); err != nil {
					return err
				}
			}
			if path := c.String("xlsx"); path != "" {
				if err := writeFile(path, func(w io.Writer) error { return export.WriteWorkbook(w, export.Workbook{Profiles: ranked}) }); err != nil {
					return err
				}
			}
			return outputJSON(c, ranked)
		},
	}
}

// reportCmd creates the report command.
func reportCmd() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Aggregate engagement benchmarks, top posts and categories",
		Flags: []cli.Flag{
			inFlag(),
			&cli.StringFlag{Name: "html", Usage: "Also render an HTML dashboard to this path"},
			xlsxFlag(),
		},
		Action: func(c *cli.Context) error {
			if _, err := setup(c); err != nil {
				return err
			}
			posts, err := readPosts(c)
			if err != nil {
				return err
			}
			rep := report.Analyze(posts)
			if path := c.String("html"); path != "" {
				if err := writeFile(path, func(w io.Writer) error { return report.RenderHTML(w, rep) }); err != nil {
					return err
				}
			}
			if path := c.String("xlsx"); path != "" {
				ranked := scoring.New().Rank(posts)
				if err := writeFile(path, func(w io.Writer) error {
					return export.WriteWorkbook(w, export.Workbook{Posts: ranked, Report: &rep})
				}); err != nil {
					return err
				}
			}
			return outputJSON(c, rep)
		},
	}
}

// normalizeCmd creates the normalize command.
func normalizeCmd() *cli.Command {
	return &cli.Command{
		Name:  "normalize",
		Usage: "Map a third-party scraper export onto posts or profiles",
		Flags: []cli.Flag{
			inFlag(),
			&cli.StringFlag{Name: "provider", Aliases: []string{"p"}, Required: true, Usage: "phantombuster|apify|skool"},
			&cli.StringFlag{Name: "kind", Value: "posts", Usage: "posts|profiles"},
		},
		Action: func(c *cli.Context) error {
			if _, err := setup(c); err != nil {
				return err
			}
			provider, err := ingest.ParseProvider(c.String("provider"))
			if err != nil {
				return err
			}
			r, err := openInput(c)
			if err != nil {
				return err
			}
			defer r.Close()
			raw, err := ingest.ReadRaw(r)
			if err != nil {
				return err
			}

			n := ingest.NewNormalizer(nil)
			var res ingest.Result
			switch kind := c.String("kind"); kind {
			case "posts":
				res, err = n.Posts(raw, provider)
			case "profiles":
				res, err = n.Profiles(raw, provider)
			default:
				return fmt.Errorf("unknown kind %q", kind)
			}
			if err != nil {
				return err
			}
			for _, e := range res.Errors {
				logger.Get().Warn(c.Context, "record skipped", logger.String("reason", e))
			}
			return outputJSON(c, res)
		},
	}
}

// extractHTMLCmd creates the extract-html command.
func extractHTMLCmd() *cli.Command {
	return &cli.Command{
		Name:  "extract-html",
		Usage: "Extract posts from a saved feed page",
		Flags: []cli.Flag{inFlag()},
		Action: func(c *cli.Context) error {
			if _, err := setup(c); err != nil {
				return err
			}
			r, err := openInput(c)
			if err != nil {
				return err
			}
			defer r.Close()
			posts, err := ingest.ExtractFeedHTML(r, time.Now())
			if err != nil {
				return err
			}
			if len(posts) == 0 {
				return errNoInput
			}
			return outputJSON(c, posts)
		},
	}
}
