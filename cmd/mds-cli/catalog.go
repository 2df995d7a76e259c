package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/goliatone/go-mdsclient/pkg/catalog"
	"github.com/goliatone/go-mdsclient/pkg/resource"
)

type CatalogOptions struct {
	GlobalOptions

	Title   string
	Version string
}

func DefaultCatalogOptions() *CatalogOptions {
	return &CatalogOptions{GlobalOptions: DefaultGlobalOptions()}
}

func NewCmdCatalog() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the resource catalog.",
	}
	cmd.AddCommand(newCmdCatalogList())
	cmd.AddCommand(newCmdCatalogOpenAPI())
	return cmd
}

func newCmdCatalogList() *cobra.Command {
	o := DefaultCatalogOptions()
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every family and action of the configured catalog.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.RunList(cmd)
		},
		SilenceUsage: true,
	}
	o.GlobalOptions.Bind(cmd.Flags())
	return cmd
}

func newCmdCatalogOpenAPI() *cobra.Command {
	o := DefaultCatalogOptions()
	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Export the configured catalog as an OpenAPI 3 document.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.RunOpenAPI(cmd)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *CatalogOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	fs.StringVar(&o.Title, "title", o.Title, "Document title.")
	fs.StringVar(&o.Version, "version", o.Version, "Document version.")
}

func (o *CatalogOptions) descriptors() ([]resource.Descriptor, error) {
	if o.config == nil || o.config.CatalogPath == "" {
		return catalog.DefaultDescriptors(), nil
	}
	return catalog.Load(o.config.CatalogPath)
}

func (o *CatalogOptions) RunList(cmd *cobra.Command) error {
	descs, err := o.descriptors()
	if err != nil {
		return err
	}
	reg, err := catalog.Registry(descs)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "FAMILY\tALIASES\tACTION\tMETHOD\tARITY\tTEMPLATE")
	for _, desc := range reg.Descriptors() {
		actions := append([]resource.Action(nil), desc.Actions...)
		sort.Slice(actions, func(i, j int) bool { return actions[i].Name < actions[j].Name })
		for _, declared := range actions {
			_, action, err := reg.Lookup(desc.Name, declared.Name)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				desc.Name, strings.Join(desc.Aliases, ","), action.Name, action.Method, action.Arity, desc.Template)
		}
	}
	return w.Flush()
}

func (o *CatalogOptions) RunOpenAPI(cmd *cobra.Command) error {
	descs, err := o.descriptors()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	info := catalog.Info{Title: o.Title, Version: o.Version}
	if o.config != nil {
		info.ServerURL = o.config.BaseURL
	}
	doc, err := catalog.ToOpenAPI(ctx, descs, info)
	if err != nil {
		return err
	}
	return o.print(cmd.OutOrStdout(), doc)
}
