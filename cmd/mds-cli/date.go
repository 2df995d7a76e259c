package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/goliatone/go-mdsclient/components/datepicker"
	"github.com/goliatone/go-mdsclient/components/timezones"
	"github.com/goliatone/go-mdsclient/pkg/dateadapter"
	"github.com/goliatone/go-mdsclient/pkg/form"
)

type DateOptions struct {
	GlobalOptions

	TimeZone string
	Message  string
	Limit    int

	prompter datepicker.Prompter
}

type dateOutput struct {
	Display string `json:"display"`
	Stored  any    `json:"stored"`
}

func DefaultDateOptions() *DateOptions {
	return &DateOptions{GlobalOptions: DefaultGlobalOptions(), Message: "Date"}
}

func NewCmdDate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "date",
		Short: "Convert between stored epoch milliseconds and DD/MM/YYYY.",
	}
	cmd.AddCommand(newDateCommand("to-display MILLIS", "Render stored epoch milliseconds as a display date.", cobra.ExactArgs(1), (*DateOptions).RunToDisplay, nil))
	cmd.AddCommand(newDateCommand("from-display DATE", "Parse a display date into epoch milliseconds (start of day).", cobra.ExactArgs(1), (*DateOptions).RunFromDisplay, nil))
	cmd.AddCommand(newDateCommand("pick", "Prompt for a date and print both representations.", cobra.NoArgs, (*DateOptions).RunPick, nil))
	cmd.AddCommand(newDateCommand("zones [QUERY]", "Search the IANA zones accepted by --time-zone.", cobra.MaximumNArgs(1), (*DateOptions).RunZones, nil))
	return cmd
}

func newDateCommand(use, short string, args cobra.PositionalArgs, run func(*DateOptions, *cobra.Command, []string) error, prompter datepicker.Prompter) *cobra.Command {
	o := DefaultDateOptions()
	o.prompter = prompter
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return run(o, cmd, args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *DateOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	fs.StringVar(&o.TimeZone, "time-zone", o.TimeZone, "IANA time zone used to derive calendar days (overrides date.time_zone).")
	fs.StringVar(&o.Message, "message", o.Message, "Prompt message for pick.")
	fs.IntVar(&o.Limit, "limit", o.Limit, "Maximum number of zones listed by zones.")
}

func (o *DateOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	if o.TimeZone != "" {
		o.config.Date.TimeZone = o.TimeZone
	}
	return nil
}

func (o *DateOptions) RunZones(cmd *cobra.Command, args []string) error {
	zones, err := timezones.DefaultZones()
	if err != nil {
		return err
	}
	opts := timezones.NewOptions(timezones.WithEmptySearchMode(timezones.EmptySearchTop), timezones.WithMaxLimit(len(zones)))
	query := ""
	if len(args) > 0 {
		query = args[0]
	}
	matches := timezones.Search(zones, query, o.Limit, opts)
	if matches == nil {
		matches = []string{}
	}
	return o.print(cmd.OutOrStdout(), matches)
}

func (o *DateOptions) adapter() (*dateadapter.Adapter, error) {
	return o.config.DateAdapter()
}

func (o *DateOptions) RunToDisplay(cmd *cobra.Command, args []string) error {
	adapter, err := o.adapter()
	if err != nil {
		return err
	}
	display, err := adapter.ToDisplay(args[0])
	if err != nil {
		return err
	}
	return o.print(cmd.OutOrStdout(), dateOutput{Display: display, Stored: args[0]})
}

func (o *DateOptions) RunFromDisplay(cmd *cobra.Command, args []string) error {
	adapter, err := o.adapter()
	if err != nil {
		return err
	}
	millis, err := adapter.FromDisplay(args[0])
	if err != nil {
		return err
	}
	return o.print(cmd.OutOrStdout(), dateOutput{Display: args[0], Stored: millis})
}

// RunPick binds a throwaway form field to a terminal picker so the answer goes
// through the same pipeline a real form uses.
func (o *DateOptions) RunPick(cmd *cobra.Command, args []string) error {
	adapter, err := o.adapter()
	if err != nil {
		return err
	}
	logger, err := o.Logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	pickerOpts := []datepicker.TerminalOption{datepicker.WithMessage(o.Message)}
	if o.prompter != nil {
		pickerOpts = append(pickerOpts, datepicker.WithPrompter(o.prompter))
	}
	picker := datepicker.NewTerminalPicker(pickerOpts...)

	f := form.New()
	field := f.Field("date")
	binding, err := datepicker.Bind(field, picker, adapter, datepicker.WithLogger(logger))
	if err != nil {
		return err
	}
	defer binding.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := picker.Pick(ctx); err != nil {
		return err
	}
	if !field.Valid() {
		return fmt.Errorf("invalid date: %v", field.Errors()[dateadapter.ValidationKey])
	}
	return o.print(cmd.OutOrStdout(), dateOutput{Display: field.ViewValue(), Stored: field.ModelValue()})
}
