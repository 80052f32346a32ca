package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pbtrad/balancing-market/internal/domain/models"
	xhttp "github.com/pbtrad/balancing-market/pkg/http"
)

const eirgridTimeLayout = "02-Jan-2006 15:04:05"

// EirGrid polls the EirGrid graph-data API for observed system values.
type EirGrid struct {
	name   string
	url    string
	area   string
	region string
	client *xhttp.Client
}

// NewEirGrid creates an EirGrid graph-data connector.
func NewEirGrid(name, url, area, region string, client *xhttp.Client) *EirGrid {
	if region == "" {
		region = models.DefaultRegion
	}
	return &EirGrid{name: name, url: url, area: area, region: region, client: client}
}

func (e *EirGrid) Name() string { return e.name }

func (e *EirGrid) Fetch(ctx context.Context, window models.TimeWindow) ([]byte, error) {
	resp, err := e.client.SendRequest(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    e.url,
		QueryParams: map[string][]string{
			"area":   {e.area},
			"region": {e.region},
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
		return nil, models.NewMalformedError(fmt.Errorf("area %s: invalid json", e.area))
	}
	return body, nil
}

type eirgridRow struct {
	EffectiveTime string   `json:"EffectiveTime"`
	FieldName     string   `json:"FieldName"`
	Region        string   `json:"Region"`
	Value         *float64 `json:"Value"`
}

type eirgridPayload struct {
	Rows []eirgridRow `json:"Rows"`
}

// Extract maps graph-data rows to ACTUAL series records for the area's
// series type. Rows with a null Value are published by EirGrid for future
// instants and are skipped silently.
func (e *EirGrid) Extract(payload []byte, window models.TimeWindow) ([]models.SeriesRecord, []error) {
	seriesType, ok := seriesTypeForArea(e.area)
	if !ok {
		return nil, nil
	}

	var p eirgridPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, []error{fmt.Errorf("area %s: %w", e.area, err)}
	}

	var recs []models.SeriesRecord
	var errs []error
	for i, row := range p.Rows {
		if row.Value == nil {
			continue
		}
		t, err := time.ParseInLocation(eirgridTimeLayout, row.EffectiveTime, time.UTC)
		if err != nil {
			errs = append(errs, fmt.Errorf("area %s row %d: bad EffectiveTime %q: %w", e.area, i, row.EffectiveTime, err))
			continue
		}
		if !window.Contains(t) {
			continue
		}

		region := row.Region
		if region == "" {
			region = e.region
		}
		rec := models.SeriesRecord{
			SeriesType: seriesType,
			MarketType: models.MarketDayAhead,
			Region:     region,
			Time:       t,
			Kind:       models.KindActual,
			Value:      *row.Value,
			Source:     e.name,
		}
		rec.Normalize()
		recs = append(recs, rec)
	}
	return recs, errs
}

func seriesTypeForArea(area string) (models.SeriesType, bool) {
	switch area {
	case "demandactual":
		return models.SeriesDemand, true
	case "generationactual":
		return models.SeriesGeneration, true
	default:
		return "", false
	}
}
