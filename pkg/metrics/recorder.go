package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shouni/gemini-creator-kit/pkg/domain"
)

const namespace = "gemini_creator"

// Recorder は生成リクエストと動画ポーリングのメトリクスを保持します。
// nil の Recorder はすべての記録を無視するので、メトリクス不要な呼び出し側はそのまま渡せます。
type Recorder struct {
	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	pollAttempts prometheus.Counter
	videoJobs    *prometheus.CounterVec
}

// NewRecorder はコレクターを生成して reg に登録します。
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of generation requests sent to the provider.",
			},
			[]string{"op", "outcome"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of generation requests.",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
			},
			[]string{"op"},
		),
		pollAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "video_poll_attempts_total",
			Help:      "Total number of video operation status checks.",
		}),
		videoJobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "video_jobs_total",
				Help:      "Video jobs by terminal outcome.",
			},
			[]string{"outcome"},
		),
	}

	for _, c := range []prometheus.Collector{r.requests, r.latency, r.pollAttempts, r.videoJobs} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveRequest は1回のプロバイダ呼び出しを記録します。
func (r *Recorder) ObserveRequest(op string, started time.Time, err error) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(op, Outcome(err)).Inc()
	r.latency.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

func (r *Recorder) PollAttempt() {
	if r == nil {
		return
	}
	r.pollAttempts.Inc()
}

// VideoJobFinished は動画ジョブの終端状態を記録します。
func (r *Recorder) VideoJobFinished(err error) {
	if r == nil {
		return
	}
	r.videoJobs.WithLabelValues(Outcome(err)).Inc()
}

// Outcome はエラーをラベル値に変換するのだ。
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	if kind := domain.KindOf(err); kind != 0 {
		return kind.String()
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		return "invalid_input"
	}
	return "error"
}
