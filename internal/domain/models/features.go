package models

import "time"

// FeatureVector is one hour's worth of model input.
type FeatureVector struct {
	Timestamp string `json:"timestamp"` // yyyymmddhh
	Hour      int    `json:"hour"`
	DayOfWeek int    `json:"day_of_week"`
	IsWeekend bool   `json:"is_weekend"`
}

// FeaturesForHour derives the naive time-based features for t.
func FeaturesForHour(t time.Time) FeatureVector {
	u := t.UTC()
	dow := int(u.Weekday()+6) % 7 // Monday = 0
	return FeatureVector{
		Timestamp: u.Format("2006010215"),
		Hour:      u.Hour(),
		DayOfWeek: dow,
		IsWeekend: dow >= 5,
	}
}

// TrainingJobSpec describes a training job submitted to the external launcher.
type TrainingJobSpec struct {
	JobName       string `json:"job_name"`
	TrainingImage string `json:"training_image"`
	InputDataURI  string `json:"input_data_uri"`
	OutputDataURI string `json:"output_data_uri"`
	MaxRuntimeSec int    `json:"max_runtime_sec"`
}

// JobStatus is the launcher-reported state of a training job.
type JobStatus string

const (
	JobRunning   JobStatus = "Running"
	JobCompleted JobStatus = "Completed"
	JobFailed    JobStatus = "Failed"
	JobStopped   JobStatus = "Stopped"
)

// Terminal reports whether the job has ended.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobStopped
}
