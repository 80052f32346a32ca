package connector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pbtrad/balancing-market/internal/domain/models"
	"github.com/pbtrad/balancing-market/pkg/config"
	xhttp "github.com/pbtrad/balancing-market/pkg/http"
)

func TestEirGridFetchQueryParams(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"Rows":[]}`))
	}))
	defer srv.Close()

	c := NewEirGrid("eirgrid_demand", srv.URL, "demandactual", "ALL", xhttp.NewClient())
	if _, err := c.Fetch(context.Background(), testWindow(t)); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if got := gotQuery["area"]; len(got) != 1 || got[0] != "demandactual" {
		t.Errorf("area = %v", got)
	}
	if got := gotQuery["region"]; len(got) != 1 || got[0] != "ALL" {
		t.Errorf("region = %v", got)
	}
}

func TestEirGridExtractDemand(t *testing.T) {
	payload := []byte(`{"Rows":[
        {"EffectiveTime":"10-Mar-2026 06:00:00","FieldName":"SYSTEM_DEMAND","Region":"ALL","Value":4012.5},
        {"EffectiveTime":"10-Mar-2026 06:15:00","FieldName":"SYSTEM_DEMAND","Region":"ALL","Value":null},
        {"EffectiveTime":"garbage","FieldName":"SYSTEM_DEMAND","Region":"ALL","Value":10},
        {"EffectiveTime":"12-Mar-2026 06:00:00","FieldName":"SYSTEM_DEMAND","Region":"ALL","Value":3900}
    ]}`)

	c := NewEirGrid("eirgrid_demand", "http://example", "demandactual", "ALL", nil)
	recs, errs := c.Extract(payload, testWindow(t))

	// Null values are future placeholders and are skipped without error.
	if len(errs) != 1 {
		t.Fatalf("got %d parse errors, want 1 (bad time)", len(errs))
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	rec := recs[0]
	if rec.SeriesType != models.SeriesDemand || rec.MarketType != models.MarketDayAhead {
		t.Errorf("classified as %s/%s", rec.SeriesType, rec.MarketType)
	}
	if rec.Value != 4012.5 || rec.Kind != models.KindActual {
		t.Errorf("got %+v", rec)
	}
}

func TestEirGridExtractGeneration(t *testing.T) {
	payload := []byte(`{"Rows":[{"EffectiveTime":"10-Mar-2026 12:00:00","FieldName":"GEN_EXP","Region":"ROI","Value":3100}]}`)

	c := NewEirGrid("eirgrid_gen", "http://example", "generationactual", "ALL", nil)
	recs, errs := c.Extract(payload, testWindow(t))

	if len(errs) != 0 || len(recs) != 1 {
		t.Fatalf("got %d records %d errors", len(recs), len(errs))
	}
	if recs[0].SeriesType != models.SeriesGeneration {
		t.Errorf("series type = %s", recs[0].SeriesType)
	}
	if recs[0].Region != "ROI" {
		t.Errorf("region = %s, want row region preserved", recs[0].Region)
	}
}

func TestEirGridExtractUnknownArea(t *testing.T) {
	c := NewEirGrid("eirgrid_other", "http://example", "windactual", "ALL", nil)
	recs, errs := c.Extract([]byte(`{"Rows":[]}`), testWindow(t))
	if recs != nil || errs != nil {
		t.Fatalf("unknown area should yield nothing, got %d/%d", len(recs), len(errs))
	}
}

func TestBuildRejectsUnknownKind(t *testing.T) {
	_, err := New(config.SourceConfig{Name: "x", Kind: "ftp", URL: "http://example"}, 0)
	if err == nil {
		t.Fatal("expected error for unknown connector kind")
	}
}
