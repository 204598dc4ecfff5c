package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bw-isys-53203/Module3/internal/client"
	"github.com/bw-isys-53203/Module3/internal/common/logger"
	"github.com/bw-isys-53203/Module3/internal/domain"
	httpapi "github.com/bw-isys-53203/Module3/internal/http"
	"github.com/bw-isys-53203/Module3/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const defaultAPI = "http://localhost:8080"

type cli struct {
	out     io.Writer
	api     string
	verbose bool
}

func (c *cli) client() (*client.Client, error) {
	level := "warn"
	if c.verbose {
		level = "debug"
	}
	log, err := logger.NewLogger(level, "console", "sleeplog-cli")
	if err != nil {
		return nil, err
	}
	return client.New(c.api, log), nil
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	api := os.Getenv("SLEEPLOG_API")
	if api == "" {
		api = defaultAPI
	}

	root := &cobra.Command{
		Use:           "sleeplog-cli",
		Short:         "Sleep log client (hour toggles, radar and trend views)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&c.api, "api", api, "sleeplog API base URL (env SLEEPLOG_API)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Debug logging")

	root.AddCommand(
		c.stateCmd(),
		c.selectCmd(),
		c.dateCmd(),
		c.toggleCmd(),
		c.intervalsCmd(),
		c.datesCmd(),
		c.radarCmd(),
		c.trendCmd(),
		c.exportCmd(),
		c.testdataCmd(),
		c.prefsCmd(),
		c.tuiCmd(),
	)
	return root
}

func (c *cli) stateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show current date, selected subject and today's intervals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := c.client()
			if err != nil {
				return err
			}
			st, err := api.State(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, tui.RenderState(st.Date, st.SelectedSubject, st.Subjects))
			for _, s := range st.Subjects {
				dto, err := api.Intervals(cmd.Context(), string(s.ID), st.Date)
				if err != nil {
					return err
				}
				fmt.Fprintln(c.out, tui.RenderIntervals(s, st.Date, dto.Intervals))
			}
			return nil
		},
	}
}

func (c *cli) selectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <subject>",
		Short: "Select the subject that hour toggles apply to (baby, user1, user2)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := c.client()
			if err != nil {
				return err
			}
			st, err := api.SelectSubject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, tui.RenderState(st.Date, st.SelectedSubject, st.Subjects))
			return nil
		},
	}
}

func (c *cli) dateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "date <YYYY-MM-DD|+N|-N|today>",
		Short: "Set or shift the current date (use -- before negative offsets)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parseDateArg(args[0])
			if err != nil {
				return err
			}
			api, err := c.client()
			if err != nil {
				return err
			}
			st, err := api.SetDate(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, st.Date)
			return nil
		},
	}
}

func parseDateArg(arg string) (httpapi.SetDateRequest, error) {
	arg = strings.TrimSpace(arg)
	switch {
	case strings.EqualFold(arg, "today"):
		return httpapi.SetDateRequest{Today: true}, nil
	case strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-"):
		n, err := strconv.Atoi(arg)
		if err != nil {
			return httpapi.SetDateRequest{}, fmt.Errorf("invalid offset %q", arg)
		}
		return httpapi.SetDateRequest{Offset: n}, nil
	default:
		if !domain.ValidDate(arg) {
			return httpapi.SetDateRequest{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, arg)
		}
		return httpapi.SetDateRequest{Date: arg}, nil
	}
}

func (c *cli) toggleCmd() *cobra.Command {
	var subject, date string
	cmd := &cobra.Command{
		Use:   "toggle <hour>",
		Short: "Toggle one hour (0-23) asleep/awake",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hour, err := strconv.Atoi(args[0])
			if err != nil || hour < 0 || hour >= domain.HoursPerDay {
				return fmt.Errorf("%w: %q", domain.ErrInvalidHour, args[0])
			}
			api, err := c.client()
			if err != nil {
				return err
			}
			dto, err := api.Toggle(cmd.Context(), subject, hour, date)
			if err != nil {
				return err
			}
			return c.printIntervals(cmd.Context(), api, dto)
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Subject (default: selected subject)")
	cmd.Flags().StringVar(&date, "date", "", "Date YYYY-MM-DD (default: current date)")
	return cmd
}

func (c *cli) intervalsCmd() *cobra.Command {
	var subject, date string
	cmd := &cobra.Command{
		Use:   "intervals",
		Short: "Show the sleep intervals of one subject",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := c.client()
			if err != nil {
				return err
			}
			dto, err := api.Intervals(cmd.Context(), subject, date)
			if err != nil {
				return err
			}
			return c.printIntervals(cmd.Context(), api, dto)
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Subject (default: selected subject)")
	cmd.Flags().StringVar(&date, "date", "", "Date YYYY-MM-DD (default: current date)")
	return cmd
}

func (c *cli) printIntervals(ctx context.Context, api *client.Client, dto *httpapi.IntervalsDTO) error {
	subjects, err := api.Preferences(ctx)
	if err != nil {
		return err
	}
	s, _ := domain.DefaultSubject(dto.Subject)
	for _, sub := range subjects {
		if sub.ID == dto.Subject {
			s = sub
		}
	}
	fmt.Fprintln(c.out, tui.RenderIntervals(s, dto.Date, dto.Intervals))
	return nil
}

func (c *cli) datesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dates",
		Short: "List dates that have stored records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := c.client()
			if err != nil {
				return err
			}
			dates, err := api.Dates(cmd.Context())
			if err != nil {
				return err
			}
			for _, d := range dates {
				fmt.Fprintln(c.out, d)
			}
			return nil
		},
	}
}

func (c *cli) radarCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "radar",
		Short: "Show the 24-hour view of one day for all subjects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := c.client()
			if err != nil {
				return err
			}
			view, err := api.Radar(cmd.Context(), date)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, view.Date)
			fmt.Fprintln(c.out, tui.RenderRadar(view, -1))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Date YYYY-MM-DD (default: current date)")
	return cmd
}

func (c *cli) trendCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Show per-hour sleep counts over the last N days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := c.client()
			if err != nil {
				return err
			}
			view, err := api.Trend(cmd.Context(), days)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, tui.RenderTrend(view))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "Number of days ending at the current date")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var (
		days int
		out  string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the trend view as an Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := c.client()
			if err != nil {
				return err
			}
			data, err := api.ExportTrend(cmd.Context(), days)
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("sleep-trend-%dd.xlsx", days)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(c.out, "wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "Number of days ending at the current date")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default sleep-trend-<days>d.xlsx)")
	return cmd
}

func (c *cli) testdataCmd() *cobra.Command {
	var (
		days int
		seed int64
	)
	cmd := &cobra.Command{
		Use:   "testdata",
		Short: "Replace all records with generated sample data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := c.client()
			if err != nil {
				return err
			}
			n, used, err := api.GenerateTestData(cmd.Context(), days, seed)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "generated %d records (seed %d)\n", n, used)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "Number of days ending at the current date")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 = server picks one)")
	return cmd
}

func (c *cli) prefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "List subject display names and colours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := c.client()
			if err != nil {
				return err
			}
			subjects, err := api.Preferences(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range subjects {
				fmt.Fprintf(c.out, "%-6s %-12s %s\n", s.ID, s.Name, s.Color)
			}
			return nil
		},
	}

	var name, color string
	set := &cobra.Command{
		Use:   "set <subject>",
		Short: "Set the display name and/or colour of a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := c.client()
			if err != nil {
				return err
			}
			s, err := api.SetPreference(cmd.Context(), args[0], domain.Preference{Name: name, Color: color})
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%-6s %-12s %s\n", s.ID, s.Name, s.Color)
			return nil
		},
	}
	set.Flags().StringVar(&name, "name", "", "Display name")
	set.Flags().StringVar(&color, "color", "", "Colour (#RRGGBB)")
	cmd.AddCommand(set)
	return cmd
}

func (c *cli) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive day view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := c.client()
			if err != nil {
				return err
			}
			p := tea.NewProgram(tui.NewDayModel(cmd.Context(), api), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running day view: %w", err)
			}
			return nil
		},
	}
}
