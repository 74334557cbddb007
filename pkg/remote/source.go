// Package remote fetches record collections from the external ticket API.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/primrose/pkg/expressions"
	"github.com/Ramsey-B/primrose/pkg/httpclient"
	"github.com/Ramsey-B/primrose/pkg/metrics"
	"github.com/Ramsey-B/primrose/pkg/models"
	"github.com/Ramsey-B/primrose/pkg/tracing"
)

// DefaultPaths maps each kind to its collection path under the base URL.
var DefaultPaths = map[models.Kind]string{
	models.KindListings: "/tickets",
	models.KindVendors:  "/vendors",
	models.KindTours:    "/tours",
	models.KindContact:  "/contacts",
	models.KindPolicy:   "/cancellation-policies",
}

// DefaultRecordsField is used for object bodies when no expression is configured.
const DefaultRecordsField = "data"

type Config struct {
	BaseURL string
	Paths   map[models.Kind]string
	// RecordsExpression is a JMESPath expression selecting the records array
	// from an object body.
	RecordsExpression string
}

type Source struct {
	cfg       Config
	client    *httpclient.Client
	evaluator *expressions.Evaluator
	logger    ectologger.Logger
}

func NewSource(cfg Config, client *httpclient.Client, evaluator *expressions.Evaluator, logger ectologger.Logger) (*Source, error) {
	if _, err := url.Parse(cfg.BaseURL); err != nil || cfg.BaseURL == "" {
		return nil, fmt.Errorf("invalid remote base url %q", cfg.BaseURL)
	}
	if cfg.RecordsExpression != "" {
		if err := evaluator.Validate(cfg.RecordsExpression); err != nil {
			return nil, fmt.Errorf("invalid records expression: %w", err)
		}
	}

	paths := make(map[models.Kind]string, len(DefaultPaths))
	for kind, path := range DefaultPaths {
		paths[kind] = path
	}
	for kind, path := range cfg.Paths {
		if path != "" {
			paths[kind] = path
		}
	}
	cfg.Paths = paths

	return &Source{
		cfg:       cfg,
		client:    client,
		evaluator: evaluator,
		logger:    logger,
	}, nil
}

// FetchAll retrieves the whole collection for kind. Every failure is a *TransportError.
func (s *Source) FetchAll(ctx context.Context, kind models.Kind) ([]RawRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "remote.FetchAll")
	defer span.End()

	log := s.logger.WithContext(ctx).WithField("kind", kind)

	records, err := s.fetch(ctx, kind)
	if err != nil {
		tracing.RecordError(span, err)
		metrics.RecordRemoteFetch(string(kind), "error")
		log.WithError(err).Warn("remote fetch failed")
		return nil, err
	}

	metrics.RecordRemoteFetch(string(kind), "success")
	log.Debugf("fetched %d remote records", len(records))
	return records, nil
}

func (s *Source) fetch(ctx context.Context, kind models.Kind) ([]RawRecord, error) {
	path, ok := s.cfg.Paths[kind]
	if !ok {
		return nil, &TransportError{Kind: kind, Err: fmt.Errorf("no remote path for kind %q", kind)}
	}

	resp, err := s.client.Get(ctx, joinURL(s.cfg.BaseURL, path), nil)
	if err != nil {
		return nil, &TransportError{Kind: kind, Err: err}
	}
	if !httpclient.IsSuccessStatus(resp.StatusCode) {
		return nil, &TransportError{Kind: kind, StatusCode: resp.StatusCode, Err: errors.New("unexpected status")}
	}

	body, err := httpclient.DecodeJSON(resp.Body)
	if err != nil {
		return nil, &TransportError{Kind: kind, StatusCode: resp.StatusCode, Err: err}
	}

	records, err := s.extract(body)
	if err != nil {
		return nil, &TransportError{Kind: kind, StatusCode: resp.StatusCode, Err: err}
	}
	return records, nil
}

// extract accepts either a bare array or an envelope object.
func (s *Source) extract(body any) ([]RawRecord, error) {
	var items []any
	switch v := body.(type) {
	case []any:
		items = v
	case map[string]any:
		expression := s.cfg.RecordsExpression
		if expression == "" {
			expression = DefaultRecordsField
		}
		found, ok, err := s.evaluator.EvaluateSlice(expression, v)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("response object has no records at %q", expression)
		}
		items = found
	default:
		return nil, fmt.Errorf("response body is %T, expected an array or object", body)
	}

	records := make([]RawRecord, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("record %d is %T, expected an object", i, item)
		}
		records = append(records, RawRecord(obj))
	}
	return records, nil
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
