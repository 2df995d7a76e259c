package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	mdsclient "github.com/goliatone/go-mdsclient"
	"github.com/goliatone/go-mdsclient/pkg/resource"
)

type InvokeOptions struct {
	GlobalOptions

	Params  map[string]string
	Body    string
	Timeout time.Duration
	Raw     bool
}

func DefaultInvokeOptions() *InvokeOptions {
	return &InvokeOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Params:        map[string]string{},
	}
}

func NewCmdInvoke() *cobra.Command {
	o := DefaultInvokeOptions()
	cmd := &cobra.Command{
		Use:   "invoke FAMILY ACTION",
		Short: "Invoke a catalog action, e.g. invoke entity getWorkInProggress --param id=7.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd, args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *InvokeOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	fs.StringToStringVarP(&o.Params, "param", "p", o.Params, "Placeholder or query parameter as key=value (repeatable).")
	fs.StringVar(&o.Body, "body", o.Body, "JSON object acted upon; prefix with @ to read a file.")
	fs.DurationVar(&o.Timeout, "wait", o.Timeout, "Give up waiting for the response after this long (0 waits indefinitely).")
	fs.BoolVar(&o.Raw, "raw", o.Raw, "Print the response payload as received.")
}

func (o *InvokeOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.Timeout < 0 {
		return fmt.Errorf("wait must not be negative")
	}
	return nil
}

func (o *InvokeOptions) Run(cmd *cobra.Command, args []string) error {
	logger, err := o.Logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	client, err := mdsclient.NewClient(*o.config, mdsclient.WithLogger(logger))
	if err != nil {
		return err
	}

	body, err := o.readBody()
	if err != nil {
		return err
	}
	params := make(resource.Params, len(o.Params))
	for key, value := range o.Params {
		params[key] = value
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	call, err := client.Resources.Invoke(ctx, args[0], args[1], params, body)
	if err != nil {
		return err
	}

	waitCtx := ctx
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}
	result, err := call.Wait(waitCtx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if o.Raw {
		_, err := fmt.Fprintln(out, string(result.Raw))
		return err
	}
	return o.print(out, shapedOutput(result))
}

func (o *InvokeOptions) readBody() (any, error) {
	raw := strings.TrimSpace(o.Body)
	if raw == "" {
		return nil, nil
	}
	data := []byte(raw)
	if path, ok := strings.CutPrefix(raw, "@"); ok {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading body: %w", err)
		}
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var body any
	if err := decoder.Decode(&body); err != nil {
		return nil, fmt.Errorf("parsing body: %w", err)
	}
	return body, nil
}

func shapedOutput(result resource.Result) any {
	if result.Arity == resource.ArityList {
		return result.Records
	}
	if result.Record != nil {
		return result.Record
	}
	return result.Value
}
