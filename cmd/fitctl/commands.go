package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/HammerMeetNail/fittrack/internal/client"
	"github.com/HammerMeetNail/fittrack/internal/handlers"
	"github.com/HammerMeetNail/fittrack/internal/models"
)

const defaultServerURL = "http://localhost:3000"

type app struct {
	serverURL   string
	sessionPath string
}

func (a *app) client() *client.Client {
	return client.New(a.serverURL)
}

// withSession loads the saved session, runs fn and writes the session back, so
// a login persists and an expired token is forgotten.
func (a *app) withSession(fn func(ctx context.Context, c *client.Client, s *client.Session, out io.Writer, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		store := sessionFile{path: a.sessionPath}
		s, err := store.load()
		if err != nil {
			return err
		}
		runErr := fn(cmd.Context(), a.client(), s, cmd.OutOrStdout(), args)
		if err := store.save(s); err != nil {
			return err
		}
		if errors.Is(runErr, client.ErrNotLoggedIn) || errors.Is(runErr, client.ErrSessionExpired) {
			return fmt.Errorf("%w (run `fitctl login`)", runErr)
		}
		return runErr
	}
}

func newRootCmd(getenv func(string) string) *cobra.Command {
	a := &app{}
	serverDefault := getenv("FITTRACK_URL")
	if serverDefault == "" {
		serverDefault = defaultServerURL
	}

	root := &cobra.Command{
		Use:           "fitctl",
		Short:         "Log weight and calories on a FitTrack server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.serverURL, "server", serverDefault, "FitTrack server URL (env FITTRACK_URL)")
	root.PersistentFlags().StringVar(&a.sessionPath, "session", defaultSessionPath(getenv), "where the login session is stored (env FITCTL_SESSION)")

	root.AddCommand(
		a.registerCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.profileCmd(),
		a.goalsCmd(),
		a.metricCmd(models.MetricWeight, "weight", "Record and list body weight"),
		a.metricCmd(models.MetricCalorie, "calories", "Record and list daily calorie intake"),
		a.statsCmd(),
		a.calendarCmd(),
		a.foodCmd(),
		a.friendsCmd(),
	)
	return root
}

func (a *app) registerCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: a.withSession(func(ctx context.Context, c *client.Client, s *client.Session, out io.Writer, _ []string) error {
			if err := c.Register(ctx, s, name, email, password); err != nil {
				return err
			}
			fmt.Fprintf(out, "Registered and logged in as %s\n", email)
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: a.withSession(func(ctx context.Context, c *client.Client, s *client.Session, out io.Writer, _ []string) error {
			if err := c.Login(ctx, s, email, password); err != nil {
				return err
			}
			fmt.Fprintf(out, "Logged in as %s\n", email)
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: a.withSession(func(_ context.Context, _ *client.Client, s *client.Session, out io.Writer, _ []string) error {
			s.Clear()
			fmt.Fprintln(out, "Logged out")
			return nil
		}),
	}
}

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func (a *app) profileCmd() *cobra.Command {
	var age int
	var dob string
	var weight, height float64
	var calorieGoal int

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the profile, or update it when flags are given",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.withSession(func(ctx context.Context, c *client.Client, s *client.Session, out io.Writer, _ []string) error {
		flags := cmd.Flags()
		var req handlers.UpdateProfileRequest
		changed := false
		if flags.Changed("age") {
			req.Age, changed = &age, true
		}
		if flags.Changed("dob") {
			req.DateOfBirth, changed = &dob, true
		}
		if flags.Changed("weight") {
			req.Weight, changed = &weight, true
		}
		if flags.Changed("height") {
			req.Height, changed = &height, true
		}
		if flags.Changed("calorie-goal") {
			req.CalorieGoal, changed = &calorieGoal, true
		}
		if changed {
			if err := c.UpdateProfile(ctx, s, req); err != nil {
				return err
			}
			fmt.Fprintln(out, "Profile updated")
			return nil
		}

		p, err := c.Profile(ctx, s)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "Name\t%s\n", p.Name)
		fmt.Fprintf(tw, "Email\t%s\n", p.Email)
		fmt.Fprintf(tw, "Age\t%s\n", formatOptionalInt(p.Age))
		if p.DateOfBirth != nil {
			fmt.Fprintf(tw, "Born\t%s\n", *p.DateOfBirth)
		}
		fmt.Fprintf(tw, "Height\t%s\n", formatOptional(p.Height))
		fmt.Fprintf(tw, "Weight\t%s\n", formatOptional(p.Weight))
		fmt.Fprintf(tw, "Starting weight\t%s\n", formatOptional(p.StartingWeight))
		fmt.Fprintf(tw, "Weight goal\t%s\n", formatOptional(p.WeightGoal))
		fmt.Fprintf(tw, "Calorie goal\t%s\n", formatOptionalInt(p.CalorieGoal))
		return tw.Flush()
	})
	cmd.Flags().IntVar(&age, "age", 0, "age in years")
	cmd.Flags().StringVar(&dob, "dob", "", "date of birth (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&weight, "weight", 0, "current weight; also logged as today's entry")
	cmd.Flags().Float64Var(&height, "height", 0, "height")
	cmd.Flags().IntVar(&calorieGoal, "calorie-goal", 0, "daily calorie goal")
	return cmd
}

func (a *app) goalsCmd() *cobra.Command {
	var calorieGoal int
	var weightGoal float64
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Set calorie and weight goals",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.withSession(func(ctx context.Context, c *client.Client, s *client.Session, out io.Writer, _ []string) error {
		var req handlers.UpdateGoalsRequest
		if cmd.Flags().Changed("calories") {
			req.CalorieGoal = &calorieGoal
		}
		if cmd.Flags().Changed("weight") {
			req.WeightGoal = &weightGoal
		}
		if req.CalorieGoal == nil && req.WeightGoal == nil {
			return errors.New("pass --calories and/or --weight")
		}
		if err := c.UpdateGoals(ctx, s, req); err != nil {
			return err
		}
		fmt.Fprintln(out, "Goals updated")
		return nil
	})
	cmd.Flags().IntVar(&calorieGoal, "calories", 0, "daily calorie goal")
	cmd.Flags().Float64Var(&weightGoal, "weight", 0, "target weight")
	return cmd
}

func printEntries(out io.Writer, entries []handlers.MetricEntryView) error {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No entries")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tVALUE\tID")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Date, strconv.FormatFloat(e.Value, 'f', -1, 64), e.ID)
	}
	return tw.Flush()
}

func (a *app) metricCmd(kind models.MetricKind, use, short string) *cobra.Command {
	cmd := &cobra.Command{Use: use, Short: short}

	add := &cobra.Command{
		Use:   "add VALUE [DATE]",
		Short: "Record a value for DATE (default today); replaces any value already logged that day",
		Args:  cobra.RangeArgs(1, 2),
		RunE: a.withSession(func(ctx context.Context, c *client.Client, s *client.Session, out io.Writer, args []string) error {
			value, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid value %q", args[0])
			}
			date := models.Today(time.Now()).Format(models.DateLayout)
			if len(args) == 2 {
				date = args[1]
			}
			entry, created, err := c.Record(ctx, s, kind, date, value)
			if err != nil {
				return err
			}
			verb := "Updated"
			if created {
				verb = "Added"
			}
			fmt.Fprintf(out, "%s %s for %s: %s\n", verb, use, entry.Date, strconv.FormatFloat(entry.Value, 'f', -1, 64))
			return nil
		}),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every entry, newest first",
		Args:  cobra.NoArgs,
		RunE: a.withSession(func(ctx context.Context, c *client.Client, s *client.Session, out io.Writer, _ []string) error {
			entries, err := c.Entries(ctx, s, kind)
			if err != nil {
				return err
			}
			return printEntries(out, entries)
		}),
	}

	var days int
	recent := &cobra.Command{
		Use:   "recent",
		Short: "List entries from the last few days, oldest first",
		Args:  cobra.NoArgs,
		RunE: a.withSession(func(ctx context.Context, c *client.Client, s *client.Session, out io.Writer, _ []string) error {
			entries, err := c.Recent(ctx, s, kind, days)
			if err != nil {
				return err
			}
			return printEntries(out, entries)
		}),
	}
	recent.Flags().IntVar(&days, "days", 30, "window in days")

	latest := &cobra.Command{
		Use:   "latest",
		Short: "Show the most recent entry",
		Args:  cobra.NoArgs,
		RunE: a.withSession(func(ctx context.Context, c *client.Client, s *client.Session, out io.Writer, _ []string) error {
			entry, err := c.Latest(ctx, s, kind)
			if err != nil {
				return err
			}
			if entry == nil {
				fmt.Fprintln(out, "No entries")
				return nil
			}
			return printEntries(out, []handlers.MetricEntryView{*entry})
		}),
	}

	show := &cobra.Command{
		Use:   "show DATE",
		Short: "Show the entry for one date",
		Args:  cobra.ExactArgs(1),
		RunE: a.withSession(func(ctx context.Context, c *client.Client, s *client.Session, out io.Writer, args []string) error {
			entry, err := c.OnDate(ctx, s, kind, args[0])
			if err != nil {
				return err
			}
			if entry == nil {
				fmt.Fprintf(out, "Nothing logged on %s\n", args[0])
				return nil
			}
			return printEntries(out, []handlers.MetricEntryView{*entry})
		}),
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an entry by id",
		Args:  cobra.ExactArgs(1),
		RunE: a.withSession(func(ctx context.Context, c *client.Client, s *client.Session, out io.Writer, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			if err := c.DeleteEntry(ctx, s, kind, id); err != nil {
				return err
			}
			fmt.Fprintln(out, "Deleted")
			return nil
		}),
	}

	cmd.AddCommand(add, list, recent, latest, show, del)
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize weight and calories over a period",
		Args:  cobra.NoArgs,
		RunE: a.withSession(func(ctx context.Context, c *client.Client, s *client.Session, out io.Writer, _ []string) error {
			st, err := c.Statistics(ctx, s, period)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Period\t%s\n", st.Period)
			fmt.Fprintf(tw, "Starting weight\t%s\n", formatOptional(st.StartingWeight))
			fmt.Fprintf(tw, "Current weight\t%s\n", formatOptional(st.CurrentWeight))
			fmt.Fprintf(tw, "Change\t%s\n", formatOptional(st.WeightChange))
			fmt.Fprintf(tw, "Weight goal\t%s\n", formatOptional(st.WeightGoal))
			fmt.Fprintf(tw, "Average calories\t%d\n", st.AverageCalories)
			fmt.Fprintf(tw, "Calorie goal\t%s\n", formatOptionalInt(st.CalorieGoal))
			fmt.Fprintf(tw, "Days logged\t%d weight, %d calories\n", len(st.WeightData.Dates), len(st.CalorieData.Dates))
			return tw.Flush()
		}),
	}
	cmd.Flags().StringVar(&period, "period", "week", "week, month, 3months, year or all")
	return cmd
}

func (a *app) calendarCmd() *cobra.Command {
	now := time.Now()
	var year, month int
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show logged values per day for one month",
		Args:  cobra.NoArgs,
		RunE: a.withSession(func(ctx context.Context, c *client.Client, s *client.Session, out io.Writer, _ []string) error {
			data, err := c.MonthlyData(ctx, s, year, month)
			if err != nil {
				return err
			}
			first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tWEIGHT\tCALORIES")
			for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
				key := d.Format(models.DateLayout)
				w, hasW := data.Weights[key]
				cal, hasC := data.Calories[key]
				if !hasW && !hasC {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", key, optionalValue(w, hasW), optionalValue(cal, hasC))
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().IntVar(&year, "year", now.Year(), "year")
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "month (1-12)")
	return cmd
}

func optionalValue(v float64, ok bool) string {
	if !ok {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (a *app) foodCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "food", Short: "Manage saved foods"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved foods",
		Args:  cobra.NoArgs,
		RunE: a.withSession(func(ctx context.Context, c *client.Client, s *client.Session, out io.Writer, _ []string) error {
			foods, err := c.Foods(ctx, s)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tCALORIES")
			for _, f := range foods {
				fmt.Fprintf(tw, "%s\t%d\n", f.Name, f.Calories)
			}
			return tw.Flush()
		}),
	}

	add := &cobra.Command{
		Use:   "add NAME CALORIES",
		Short: "Save a food",
		Args:  cobra.ExactArgs(2),
		RunE: a.withSession(func(ctx context.Context, c *client.Client, s *client.Session, out io.Writer, args []string) error {
			calories, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid calories %q", args[1])
			}
			food, err := c.AddFood(ctx, s, args[0], calories)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Saved %s (%d kcal)\n", food.Name, food.Calories)
			return nil
		}),
	}

	cmd.AddCommand(list, add)
	return cmd
}

func (a *app) friendsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "friends", Short: "Manage friends"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List friends and pending requests",
		Args:  cobra.NoArgs,
		RunE: a.withSession(func(ctx context.Context, c *client.Client, s *client.Session, out io.Writer, _ []string) error {
			friends, err := c.Friends(ctx, s)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSTATUS\tWEIGHT\tID")
			for _, f := range friends {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Name, f.Status, formatOptional(f.CurrentWeight), f.ID)
			}
			return tw.Flush()
		}),
	}

	add := &cobra.Command{
		Use:   "add EMAIL",
		Short: "Send a friend request",
		Args:  cobra.ExactArgs(1),
		RunE: a.withSession(func(ctx context.Context, c *client.Client, s *client.Session, out io.Writer, args []string) error {
			id, err := c.SendFriendRequest(ctx, s, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Friend request sent (%s)\n", id)
			return nil
		}),
	}

	resolve := func(use, short string, action func(*client.Client, context.Context, *client.Session, uuid.UUID) error, done string) *cobra.Command {
		return &cobra.Command{
			Use:   use + " ID",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: a.withSession(func(ctx context.Context, c *client.Client, s *client.Session, out io.Writer, args []string) error {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid id %q", args[0])
				}
				if err := action(c, ctx, s, id); err != nil {
					return err
				}
				fmt.Fprintln(out, done)
				return nil
			}),
		}
	}

	cmd.AddCommand(
		list,
		add,
		resolve("accept", "Accept a friend request", (*client.Client).AcceptFriend, "Friend request accepted"),
		resolve("reject", "Reject a friend request", (*client.Client).RejectFriend, "Friend request rejected"),
	)
	return cmd
}
