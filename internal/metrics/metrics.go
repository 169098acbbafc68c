package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 评分事件处理结果（score_events_total 的 result 标签）
const (
	ResultUpdated  = "updated"
	ResultInvalid  = "invalid"
	ResultNotFound = "not_found"
	ResultFailed   = "failed"
)

var (
	// PatientsClassified 聚合时按等级统计的分类次数
	PatientsClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wisefido",
		Subsystem: "risk",
		Name:      "patients_classified_total",
		Help:      "Patients classified during cohort aggregation, by risk level",
	}, []string{"level"})

	ScoreEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wisefido",
		Subsystem: "risk",
		Name:      "score_events_total",
		Help:      "Score events handled by the stream consumer, by result",
	}, []string{"result"})

	DiffRequests = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wisefido",
		Subsystem: "risk",
		Name:      "diff_requests_total",
		Help:      "Line diff computations",
	})

	// DiffLines 每次 diff 输出的行数
	DiffLines = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "wisefido",
		Subsystem: "risk",
		Name:      "diff_lines",
		Help:      "Number of diff lines produced per comparison",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})
)

// ObserveDiff 记录一次 diff 计算
func ObserveDiff(lineCount int) {
	DiffRequests.Inc()
	DiffLines.Observe(float64(lineCount))
}
