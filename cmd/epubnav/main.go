package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/yuanying/epubnav/internal/config"
	"github.com/yuanying/epubnav/internal/epub"
	"github.com/yuanying/epubnav/internal/headless"
	"github.com/yuanying/epubnav/internal/navigator"
)

type cliOptions struct {
	InputPath string
	Config    *config.Config
	Logger    *zap.Logger
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "epubnav",
		Short: "Paginate EPUB books without a browser",
		Long: `epubnav lays the reading order of an EPUB out in spreads and walks it
page by page with a headless rendering surface.

Settings come from epubnav.yaml, EPUBNAV_ environment variables and flags.`,
		SilenceUsage: true,
	}

	f := cmd.PersistentFlags()
	f.String("config", "", "Config file (default: ./epubnav.yaml or $HOME/.epubnav/epubnav.yaml)")
	f.Float64("width", 0, "Viewport width in CSS pixels")
	f.Float64("height", 0, "Viewport height in CSS pixels")
	f.Float64("side-margin", 0, "Horizontal margin of scrolled content")
	f.Int("pages", 0, "Pages per spread: 1 or 2")
	f.String("direction", "", "Override the reading progression: ltr, rtl, ttb, btt or auto")
	f.Bool("scroll", false, "Scroll reflowable resources instead of paginating them")
	f.Bool("fixed-extent", false, "Report a content width that ignores the scroll offset")
	f.String("log-level", "", "Log level: none, normal or debug")

	cmd.AddCommand(newSpreadsCmd(), newPaginateCmd(), newLocateCmd(), newConfigCmd())
	return cmd
}

func readCLIOptions(cmd *cobra.Command, args []string) (*cliOptions, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	opts := &cliOptions{Config: cfg, Logger: cfg.Logging.Prepare()}
	if len(args) > 0 {
		opts.InputPath = args[0]
	}
	return opts, nil
}

// session is an open book with a navigator over its reading order.
type session struct {
	book *epub.Book
	nav  *navigator.Navigator
	log  *zap.Logger
}

func openSession(opts *cliOptions) (*session, error) {
	book, err := epub.OpenBook(opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", opts.InputPath, err)
	}

	cfg := opts.Config
	rp := cfg.ReadingProgression(book.ReadingProgression())
	links := book.ReadingOrder()
	opts.Logger.Debug("Opened book",
		zap.String("title", book.Metadata().Title),
		zap.String("progression", string(rp)),
		zap.Int("resources", len(links)))

	nav, err := navigator.New(links, rp, headless.NewLoader(book, cfg.Metrics(), opts.Logger), navigator.Options{
		Viewport:           cfg.PaginationViewport(),
		Mode:               cfg.LayoutMode(),
		PageCountPerSpread: cfg.Spread.PageCount,
		Titles:             book.Titles(),
		Logger:             opts.Logger,
	})
	if err != nil {
		return nil, multierr.Append(err, book.Close())
	}
	return &session{book: book, nav: nav, log: opts.Logger}, nil
}

func (s *session) Close() error {
	s.nav.Close()
	_ = s.log.Sync()
	return s.book.Close()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
