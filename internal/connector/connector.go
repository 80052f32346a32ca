// Package connector implements pollers for the external market-data
// endpoints feeding the ingestion pipeline. Each connector performs one
// bounded fetch per call and owns the endpoint-specific payload parsing;
// retry policy belongs to the ingestion coordinator.
package connector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/pbtrad/balancing-market/internal/domain/models"
	domrepo "github.com/pbtrad/balancing-market/internal/domain/repository"
	"github.com/pbtrad/balancing-market/pkg/config"
	xhttp "github.com/pbtrad/balancing-market/pkg/http"
)

// DefaultFetchTimeout bounds a single endpoint request.
const DefaultFetchTimeout = 10 * time.Second

// New builds a connector from its source config.
func New(src config.SourceConfig, timeout time.Duration) (domrepo.Connector, error) {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	client := xhttp.NewClient(xhttp.WithTimeout(timeout))

	switch src.Kind {
	case "semo":
		return NewSEMO(src.Name, src.URL, src.Report, client), nil
	case "eirgrid":
		return NewEirGrid(src.Name, src.URL, src.Area, src.Region, client), nil
	default:
		return nil, fmt.Errorf("unknown connector kind '%s'", src.Kind)
	}
}

// Build constructs every configured connector.
func Build(sources []config.SourceConfig, timeout time.Duration) ([]domrepo.Connector, error) {
	out := make([]domrepo.Connector, 0, len(sources))
	for _, src := range sources {
		c, err := New(src, timeout)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Name, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// classifyFetch folds a transport-level error into a typed FetchError.
func classifyFetch(err error) *models.FetchError {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewTimeoutError(err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return models.NewTimeoutError(err)
	}
	return models.NewMalformedError(err)
}

// readBody drains a response body, classifying failures.
func readBody(r io.Reader) ([]byte, *models.FetchError) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, classifyFetch(err)
	}
	return b, nil
}
