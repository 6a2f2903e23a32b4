package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yuanying/epubnav/internal/config"
	"github.com/yuanying/epubnav/internal/navigator"
	"github.com/yuanying/epubnav/internal/publication"
	"github.com/yuanying/epubnav/internal/spread"
)

func newSpreadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spreads <book.epub>",
		Short: "List the spreads of the reading order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readCLIOptions(cmd, args)
			if err != nil {
				return err
			}
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			for i, sp := range s.nav.Controller().Spreads() {
				fmt.Fprintf(out, "%d\t%s\n", i, formatSpread(sp))
			}
			return nil
		},
	}
}

// formatSpread renders a spread from left to right, e.g.
// "fixed p2.xhtml[left] p1.xhtml[right]".
func formatSpread(sp *spread.Spread) string {
	parts := []string{string(sp.Layout)}
	for _, link := range sp.LinksLTR {
		if link.Page != publication.PageNone {
			parts = append(parts, fmt.Sprintf("%s[%s]", link.Href, link.Page))
		} else {
			parts = append(parts, link.Href)
		}
	}
	return strings.Join(parts, " ")
}

func newPaginateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paginate <book.epub>",
		Short: "Walk the book page by page in reading order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readCLIOptions(cmd, args)
			if err != nil {
				return err
			}
			maxSteps, _ := cmd.Flags().GetInt("max-steps")
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.Close()
			return paginate(cmd.OutOrStdout(), s, maxSteps)
		},
	}
	cmd.Flags().Int("max-steps", 10000, "Stop after this many pages")
	return cmd
}

// paginate prints one line per position reached by stepping forward from the
// first spread. Scrolled spreads have no pages and are visited once.
func paginate(out io.Writer, s *session, maxSteps int) error {
	res := s.nav.GoToIndex(0, publication.Start())
	for step := 1; step <= maxSteps; step++ {
		if !res.OK {
			return fmt.Errorf("failed to open spread %d: %w", res.SpreadIndex, res.Err)
		}
		printPosition(out, step, s.nav, res)

		res = s.nav.GoForward()
		switch {
		case res.OK:
		case errors.Is(res.Err, navigator.ErrEdge):
			return nil
		case errors.Is(res.Err, navigator.ErrNoStep):
			next := res.SpreadIndex + 1
			if next >= len(s.nav.Controller().Spreads()) {
				return nil
			}
			res = s.nav.GoToIndex(next, publication.Start())
		default:
			return fmt.Errorf("failed to step from spread %d: %w", res.SpreadIndex, res.Err)
		}
	}
	s.log.Warn("Stopped before the end of the book", zap.Int("steps", maxSteps))
	return nil
}

func printPosition(out io.Writer, step int, nav *navigator.Navigator, res navigator.Result) {
	href := ""
	if loc, ok := nav.CurrentLocation(); ok {
		href = loc.Href
	}
	fmt.Fprintf(out, "%d\tspread %d\t%s\tpage %d/%d\t%.3f\n",
		step, res.SpreadIndex, href, res.Page, res.PageCount, res.Progression)
}

func newLocateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locate <book.epub> <href[#fragment]>",
		Short: "Resolve a location to a spread and a page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readCLIOptions(cmd, args)
			if err != nil {
				return err
			}
			l, err := readLocator(cmd, args[1])
			if err != nil {
				return err
			}
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			res := s.nav.GoToLocator(l)
			if !res.OK {
				return fmt.Errorf("failed to locate %s: %w", args[1], res.Err)
			}
			loc, _ := s.nav.CurrentLocation()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "href: %s\n", loc.Href)
			if loc.Title != "" {
				fmt.Fprintf(out, "title: %s\n", loc.Title)
			}
			fmt.Fprintf(out, "spread: %d\n", res.SpreadIndex)
			fmt.Fprintf(out, "page: %d/%d\n", res.Page, res.PageCount)
			fmt.Fprintf(out, "progression: %.3f\n", res.Progression)
			return nil
		},
	}
	cmd.Flags().Float64("progression", 0, "Progression within the resource, used when no fragment is given")
	return cmd
}

func readLocator(cmd *cobra.Command, target string) (publication.Locator, error) {
	href, fragment := publication.SplitHref(target)
	l := publication.Locator{Href: href}
	if fragment != "" {
		l.Locations.Fragments = []string{fragment}
	}
	if cmd.Flags().Changed("progression") {
		p, _ := cmd.Flags().GetFloat64("progression")
		if p < 0 || p > 1 {
			return l, fmt.Errorf("--progression must be within [0,1], got %g", p)
		}
		l.Locations.Progression = publication.Float(p)
	}
	return l, nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "epubnav.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}
