package evaluation

import (
	"strconv"

	"docvec/internal/stats"
)

// MetricStats is the per split and metric part of a Record.
type MetricStats struct {
	Statistic   float64
	PValue      float64
	Significant bool
	True        stats.Summary
	False       stats.Summary
}

// Record is the fixed set of statistics kept per evaluated model.
type Record struct {
	Name                string
	CorpusLabel         string
	VectorSize          int
	SelfRecognitionRate float64
	SelfRecognized      bool

	CosineTrain    MetricStats
	CosineTest     MetricStats
	EuclideanTrain MetricStats
	EuclideanTest  MetricStats
}

func (r *Record) field(split Split, metric Metric) *MetricStats {
	switch {
	case split == Train && metric == Cosine:
		return &r.CosineTrain
	case split == Test && metric == Cosine:
		return &r.CosineTest
	case split == Train:
		return &r.EuclideanTrain
	default:
		return &r.EuclideanTest
	}
}

// Metric returns the statistics for split and metric.
func (r Record) Metric(split Split, metric Metric) MetricStats {
	return *r.field(split, metric)
}

var metricColumns = []string{
	"stat", "p_val", "is_significant",
	"true_mean", "false_mean", "true_max", "false_max", "true_min", "false_min",
}

// Columns returns the summary table header, in the order Values emits cells.
func Columns() []string {
	cols := []string{"model", "corpus", "vector_size", "self_recog_rate", "self_recog_passed"}
	for _, metric := range metrics {
		for _, split := range splits {
			prefix := metric.Short() + "_" + split.String() + "_"
			for _, c := range metricColumns {
				cols = append(cols, prefix+c)
			}
		}
	}
	return cols
}

// Values formats the record as one row of the summary table.
func (r Record) Values() []string {
	row := []string{
		r.Name,
		r.CorpusLabel,
		strconv.Itoa(r.VectorSize),
		formatFloat(r.SelfRecognitionRate),
		strconv.FormatBool(r.SelfRecognized),
	}
	for _, metric := range metrics {
		for _, split := range splits {
			ms := r.Metric(split, metric)
			row = append(row,
				formatFloat(ms.Statistic),
				formatFloat(ms.PValue),
				strconv.FormatBool(ms.Significant),
				formatFloat(ms.True.Mean),
				formatFloat(ms.False.Mean),
				formatFloat(ms.True.Max),
				formatFloat(ms.False.Max),
				formatFloat(ms.True.Min),
				formatFloat(ms.False.Min),
			)
		}
	}
	return row
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Summary is the materialized comparison table: one row per model name.
type Summary struct {
	Records []Record
}

// Columns returns the table header.
func (s Summary) Columns() []string { return Columns() }

// Rows returns the formatted table body in registration order.
func (s Summary) Rows() [][]string {
	rows := make([][]string, len(s.Records))
	for i, r := range s.Records {
		rows[i] = r.Values()
	}
	return rows
}

// Len returns the number of models in the table.
func (s Summary) Len() int { return len(s.Records) }
