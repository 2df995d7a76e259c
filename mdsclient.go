package mdsclient

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-mdsclient/components/datepicker"
	"github.com/goliatone/go-mdsclient/internal/metrics"
	"github.com/goliatone/go-mdsclient/internal/transport"
	"github.com/goliatone/go-mdsclient/pkg/catalog"
	"github.com/goliatone/go-mdsclient/pkg/config"
	"github.com/goliatone/go-mdsclient/pkg/dateadapter"
	"github.com/goliatone/go-mdsclient/pkg/form"
	"github.com/goliatone/go-mdsclient/pkg/mds"
	"github.com/goliatone/go-mdsclient/pkg/resource"
)

// Params aliases resource.Params for callers that only import the root
// package.
type Params = resource.Params

// Result aliases resource.Result.
type Result = resource.Result

// Call aliases resource.Call.
type Call = resource.Call

// Config aliases config.Config.
type Config = config.Config

// LoadConfig reads configuration from path and MDS_* environment variables.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// DefaultCatalog builds a registry over the bundled MDS catalog.
func DefaultCatalog() (*resource.Registry, error) {
	return catalog.Default()
}

// NewDateAdapter builds the date adapter described by cfg.
func NewDateAdapter(cfg Config) (*dateadapter.Adapter, error) {
	return cfg.DateAdapter()
}

// NewTransport constructs the net/http transport while keeping the concrete
// type hidden from consumers.
func NewTransport(cfg Config, httpClient *http.Client, logger logrus.FieldLogger) (resource.Transport, error) {
	tr, err := transport.New(cfg.BaseURL,
		transport.WithClient(httpClient),
		transport.WithTimeout(cfg.Timeout),
		transport.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	return tr, nil
}

// Option customises NewClient.
type Option func(*clientOptions)

type clientOptions struct {
	logger     logrus.FieldLogger
	registry   *resource.Registry
	transport  resource.Transport
	httpClient *http.Client
	registerer prometheus.Registerer
}

// WithLogger routes client, transport and binding logs to logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *clientOptions) { o.logger = logger }
}

// WithRegistry replaces the catalog resolved from configuration.
func WithRegistry(registry *resource.Registry) Option {
	return func(o *clientOptions) { o.registry = registry }
}

// WithTransport replaces the net/http transport.
func WithTransport(t resource.Transport) Option {
	return func(o *clientOptions) { o.transport = t }
}

// WithHTTPClient customises the http.Client used by the default transport.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = client }
}

// WithRegisterer registers invocation metrics with reg when metrics are
// enabled. Defaults to prometheus.DefaultRegisterer.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *clientOptions) { o.registerer = reg }
}

// Client bundles the resource client, the typed MDS helpers and the date
// adapter built from a single configuration.
type Client struct {
	*mds.Service

	Resources *resource.Client
	Dates     *dateadapter.Adapter

	picker *datepicker.Component
}

// NewClient wires a client from cfg. The catalog comes from cfg.CatalogPath
// when set and from the bundled MDS catalog otherwise.
func NewClient(cfg Config, options ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := clientOptions{registerer: prometheus.DefaultRegisterer}
	for _, option := range options {
		if option != nil {
			option(&opts)
		}
	}
	if opts.logger == nil {
		logger, err := cfg.Log.NewLogger(nil)
		if err != nil {
			return nil, err
		}
		opts.logger = logger
	}

	registry := opts.registry
	if registry == nil {
		var err error
		registry, err = resolveRegistry(cfg)
		if err != nil {
			return nil, err
		}
	}

	tr := opts.transport
	if tr == nil {
		var err error
		tr, err = NewTransport(cfg, opts.httpClient, opts.logger)
		if err != nil {
			return nil, err
		}
	}

	resourceOpts := []resource.Option{resource.WithLogger(opts.logger)}
	for key, value := range cfg.Headers {
		resourceOpts = append(resourceOpts, resource.WithHeader(key, value))
	}
	if cfg.Metrics.Enabled {
		collector, err := metrics.Register(opts.registerer)
		if err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return nil, err
			}
			existing, ok := already.ExistingCollector.(*metrics.InvocationCollector)
			if !ok {
				return nil, err
			}
			collector = existing
		}
		resourceOpts = append(resourceOpts, resource.WithMetrics(collector))
	}

	resources, err := resource.NewClient(registry, tr, resourceOpts...)
	if err != nil {
		return nil, err
	}

	dates, err := cfg.DateAdapter()
	if err != nil {
		return nil, err
	}
	picker, err := datepicker.New(dates, datepicker.WithLogger(opts.logger))
	if err != nil {
		return nil, err
	}

	return &Client{
		Service:   mds.New(resources),
		Resources: resources,
		Dates:     dates,
		picker:    picker,
	}, nil
}

func resolveRegistry(cfg Config) (*resource.Registry, error) {
	if cfg.CatalogPath == "" {
		return catalog.Default()
	}
	descs, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	return catalog.Registry(descs)
}

// BindDate attaches the client's date adapter to field and picker.
func (c *Client) BindDate(field *form.Field, picker datepicker.Picker) (*datepicker.Binding, error) {
	return c.picker.Bind(field, picker)
}
