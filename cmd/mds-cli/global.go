package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-mdsclient/pkg/config"
)

const (
	jsonFormat = "json"
	yamlFormat = "yaml"
)

var legalOutputTypes = []string{jsonFormat, yamlFormat}

// GlobalOptions are shared by every subcommand.
type GlobalOptions struct {
	ConfigFile string
	BaseURL    string
	LogLevel   string
	Output     string

	config *config.Config
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{Output: jsonFormat}
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.ConfigFile, "config", o.ConfigFile, "Path to a YAML/JSON/TOML configuration file.")
	fs.StringVar(&o.BaseURL, "base-url", o.BaseURL, "Override the MDS service root URL.")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Override the log level (debug, info, warn, error).")
	fs.StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join(legalOutputTypes, ", ")))
}

func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(o.ConfigFile)
	if err != nil {
		return err
	}
	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	o.config = cfg
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	if !slices.Contains(legalOutputTypes, o.Output) {
		return fmt.Errorf("output format must be one of (%s)", strings.Join(legalOutputTypes, ", "))
	}
	if o.config != nil {
		return o.config.Validate()
	}
	return nil
}

// Logger builds the logger described by the loaded configuration, writing to
// w.
func (o *GlobalOptions) Logger(w io.Writer) (*logrus.Logger, error) {
	if o.config == nil {
		return config.LogConfig{Level: "info"}.NewLogger(w)
	}
	return o.config.Log.NewLogger(w)
}

// print writes v in the selected output format.
func (o *GlobalOptions) print(w io.Writer, v any) error {
	switch o.Output {
	case yamlFormat:
		normalised, err := normalise(v)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(normalised)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	}
}

// normalise round-trips v through JSON so yaml output honours json tags and
// renders json.Number values as numbers.
func normalise(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
