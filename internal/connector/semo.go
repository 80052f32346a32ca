package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pbtrad/balancing-market/internal/domain/models"
	xhttp "github.com/pbtrad/balancing-market/pkg/http"
)

// SEMO dynamic report codes carried by the ingestion pipeline.
const (
	ReportShadowPrices    = "BM-025"
	ReportImbalancePrices = "BM-026"
	ReportFXRates         = "BM-084"
	ReportCosts           = "BM-095"
)

const semoTimeLayout = "2006-01-02T15:04:05"

// SEMO polls one report from the SEMO dynamic reports API.
type SEMO struct {
	name   string
	base   string
	report string
	client *xhttp.Client
}

// NewSEMO creates a SEMO report connector.
func NewSEMO(name, baseURL, report string, client *xhttp.Client) *SEMO {
	return &SEMO{name: name, base: baseURL, report: report, client: client}
}

func (s *SEMO) Name() string { return s.name }

// Fetch pulls one report page for the window. The window is half-open; the
// SEMO API filters inclusively, so the upper bound is stepped back a second.
func (s *SEMO) Fetch(ctx context.Context, window models.TimeWindow) ([]byte, error) {
	resp, err := s.client.SendRequest(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/%s", s.base, s.report),
		QueryParams: map[string][]string{
			"StartTime":    {">=" + window.From.UTC().Format(semoTimeLayout)},
			"EndTime":      {"<=" + window.To.Add(-time.Second).UTC().Format(semoTimeLayout)},
			"sort_by":      {"StartTime"},
			"order_by":     {"ASC"},
			"Jurisdiction": {"All"},
			"page":         {"1"},
			"page_size":    {"5000"},
		},
	})
	if err != nil {
		return nil, classifyFetch(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, models.NewTransportError(resp.StatusCode)
	}

	body, ferr := readBody(resp.Body)
	if ferr != nil {
		return nil, ferr
	}
	if !json.Valid(body) {
		return nil, models.NewMalformedError(fmt.Errorf("report %s: invalid json", s.report))
	}
	return body, nil
}

type semoItem struct {
	StartTime      string   `json:"StartTime"`
	ShadowPrice    *float64 `json:"ShadowPrice"`
	ImbalancePrice *float64 `json:"ImbalancePrice"`
}

type semoPayload struct {
	Items []semoItem `json:"items"`
}

// Extract maps report rows to series records. Only the price reports carry
// series; FX rates and cost reports are snapshot-only.
func (s *SEMO) Extract(payload []byte, window models.TimeWindow) ([]models.SeriesRecord, []error) {
	var seriesType models.SeriesType
	switch s.report {
	case ReportShadowPrices:
		seriesType = models.SeriesPrice
	case ReportImbalancePrices:
		seriesType = models.SeriesImbalance
	default:
		return nil, nil
	}

	var p semoPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, []error{fmt.Errorf("report %s: %w", s.report, err)}
	}

	var recs []models.SeriesRecord
	var errs []error
	for i, item := range p.Items {
		t, err := time.ParseInLocation(semoTimeLayout, item.StartTime, time.UTC)
		if err != nil {
			errs = append(errs, fmt.Errorf("report %s item %d: bad StartTime %q: %w", s.report, i, item.StartTime, err))
			continue
		}
		if !window.Contains(t) {
			continue
		}

		value := item.ImbalancePrice
		if s.report == ReportShadowPrices {
			value = item.ShadowPrice
		}
		if value == nil {
			errs = append(errs, fmt.Errorf("report %s item %d: missing value", s.report, i))
			continue
		}

		rec := models.SeriesRecord{
			SeriesType: seriesType,
			MarketType: models.MarketBalancing,
			Region:     models.DefaultRegion,
			Time:       t,
			Kind:       models.KindActual,
			Value:      *value,
			Source:     s.name,
		}
		rec.Normalize()
		recs = append(recs, rec)
	}
	return recs, errs
}
