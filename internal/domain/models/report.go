package models

// IngestionReport summarizes one ingestion run. A run with a non-empty
// Failed set is still a success; only a store outage fails the run.
type IngestionReport struct {
	Succeeded      []string               `json:"succeeded"`
	Failed         map[string]*FetchError `json:"failed"`
	RecordsWritten int                    `json:"records_written"`
	SnapshotKey    string                 `json:"snapshot_key"`
}

// AllFailed reports whether no endpoint delivered a payload.
func (r IngestionReport) AllFailed() bool {
	return len(r.Succeeded) == 0
}
