package exporters

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http"

	defaultExportTimeout = 10 * time.Second
)

// Collector ports when OTLP_ENDPOINT is left blank.
var defaultEndpoints = map[string]string{
	ProtocolGRPC: "localhost:4317",
	ProtocolHTTP: "localhost:4318",
}

type OTLPConfig struct {
	Endpoint string
	Protocol string
	Insecure bool
	Headers  map[string]string
	Timeout  time.Duration
}

// withDefaults fills the endpoint and timeout and rejects unknown protocols.
func (c OTLPConfig) withDefaults() (OTLPConfig, error) {
	fallback, ok := defaultEndpoints[c.Protocol]
	if !ok {
		return c, fmt.Errorf("unsupported OTLP protocol %q, expected %s or %s", c.Protocol, ProtocolGRPC, ProtocolHTTP)
	}
	if c.Endpoint == "" {
		c.Endpoint = fallback
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultExportTimeout
	}
	return c, nil
}

// NewOTLPExporter builds the span exporter for the configured protocol.
func NewOTLPExporter(ctx context.Context, config OTLPConfig) (*otlptrace.Exporter, error) {
	config, err := config.withDefaults()
	if err != nil {
		return nil, err
	}
	if config.Protocol == ProtocolHTTP {
		return otlptracehttp.New(ctx, httpOptions(config)...)
	}
	return otlptracegrpc.New(ctx, grpcOptions(config)...)
}

func grpcOptions(config OTLPConfig) []otlptracegrpc.Option {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(config.Endpoint),
		otlptracegrpc.WithTimeout(config.Timeout),
		otlptracegrpc.WithHeaders(config.Headers),
	}
	if config.Insecure {
		opts = append(opts,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}
	return opts
}

func httpOptions(config OTLPConfig) []otlptracehttp.Option {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(config.Endpoint),
		otlptracehttp.WithTimeout(config.Timeout),
		otlptracehttp.WithHeaders(config.Headers),
	}
	if config.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return opts
}
