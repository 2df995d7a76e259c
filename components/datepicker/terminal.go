package datepicker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted signals the user aborted the prompt (e.g. Ctrl+C).
var ErrAborted = errors.New("datepicker: aborted")

// PromptConfig describes a single date prompt.
type PromptConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
}

// Prompter abstracts the terminal so the picker can be driven in tests.
type Prompter interface {
	Ask(ctx context.Context, cfg PromptConfig) (string, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Ask(ctx context.Context, cfg PromptConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{
		Message: cfg.Message,
		Default: cfg.Default,
		Help:    cfg.Help,
	}
	var opts []survey.AskOpt
	if cfg.Validator != nil {
		validate := cfg.Validator
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			text, _ := ans.(string)
			return validate(text)
		}))
	}
	if err := survey.AskOne(prompt, &out, opts...); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", ErrAborted
		}
		return "", err
	}
	return out, nil
}

// TerminalOption configures a TerminalPicker.
type TerminalOption func(*TerminalPicker)

// WithPrompter swaps the survey-backed prompter.
func WithPrompter(prompter Prompter) TerminalOption {
	return func(p *TerminalPicker) {
		if prompter != nil {
			p.prompter = prompter
		}
	}
}

// WithMessage sets the prompt message.
func WithMessage(message string) TerminalOption {
	return func(p *TerminalPicker) {
		if message != "" {
			p.message = message
		}
	}
}

// WithToday fixes the clock used for the prompt default.
func WithToday(now func() time.Time) TerminalOption {
	return func(p *TerminalPicker) {
		if now != nil {
			p.now = now
		}
	}
}

// TerminalPicker is a Picker that asks for a date on the terminal and reports
// the answer to its subscribers.
type TerminalPicker struct {
	prompter Prompter
	message  string
	now      func() time.Time
	subs     subscriberSet
}

// NewTerminalPicker constructs a picker backed by survey prompts.
func NewTerminalPicker(options ...TerminalOption) *TerminalPicker {
	picker := &TerminalPicker{
		prompter: surveyPrompter{},
		message:  "Date",
		now:      time.Now,
	}
	for _, option := range options {
		if option != nil {
			option(picker)
		}
	}
	return picker
}

// Subscribe implements Picker.
func (p *TerminalPicker) Subscribe(opts PickerOptions, onSelect SelectFunc) (Subscription, error) {
	return p.subs.add(opts, onSelect)
}

// Pick asks for a date, validated against the first subscriber's format, and
// delivers the answer to every subscriber before returning it.
func (p *TerminalPicker) Pick(ctx context.Context) (string, error) {
	subs := p.subs.snapshot()
	if len(subs) == 0 {
		return "", errors.New("datepicker: no field is bound to the picker")
	}
	format := subs[0].opts.DateFormat
	layout, err := LayoutFromPickerFormat(format)
	if err != nil {
		return "", err
	}

	answer, err := p.prompter.Ask(ctx, PromptConfig{
		Message: p.message,
		Default: p.now().Format(layout),
		Help:    fmt.Sprintf("Enter a date as %s", format),
		Validator: func(text string) error {
			if _, err := time.Parse(layout, text); err != nil {
				return fmt.Errorf("expected a date formatted as %s", format)
			}
			return nil
		},
	})
	if err != nil {
		return "", err
	}

	for _, sub := range subs {
		sub.onSelect(answer)
	}
	return answer, nil
}
