package video

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/shouni/gemini-creator-kit/pkg/credential"
	"github.com/shouni/gemini-creator-kit/pkg/domain"
	"github.com/shouni/gemini-creator-kit/pkg/generator"
	"github.com/shouni/gemini-creator-kit/pkg/imgutil"
	"github.com/shouni/gemini-creator-kit/pkg/metrics"
)

const (
	DefaultModel        = "veo-3.1-fast-generate-preview"
	DefaultPollInterval = 10 * time.Second

	opSubmit = "video_submit"
	opPoll   = "video_poll"
)

var (
	// ErrSuperseded は新しい Await によって前のジョブの監視が打ち切られた場合の原因です。
	ErrSuperseded = errors.New("video: superseded by a newer job")
	// ErrStopped は Stop によって監視が打ち切られた場合の原因です。
	ErrStopped = errors.New("video: polling stopped")
)

// Config は Poller の設定です。
type Config struct {
	Model        string
	PollInterval time.Duration
	// ProgressInterval はメッセージ切り替えの間隔。0 なら PollInterval と同じ。
	ProgressInterval time.Duration
	// Timeout は Await 全体の上限。0 は無制限。
	Timeout  time.Duration
	Messages []string
}

// Job は送信済みの動画生成ジョブのハンドルです。
type Job struct {
	// ID はログの相関用にクライアント側で採番した ID。
	ID          string
	Request     domain.VideoRequest
	SubmittedAt time.Time

	op *genai.GenerateVideosOperation
}

// Name はプロバイダ側のオペレーション名を返します。
func (j *Job) Name() string {
	if j == nil || j.op == nil {
		return ""
	}
	return j.op.Name
}

// Result はジョブハンドルを Result として返します。
func (j *Job) Result() domain.VideoJobResult {
	return domain.VideoJobResult{Name: j.Name()}
}

type activeJob struct {
	cancel  context.CancelCauseFunc
	done    chan struct{}
	tracker *tracker
}

// Poller は動画生成ジョブを送信し、完了までポーリングします。
// 1つの Poller が同時に監視するジョブは常に1つだけです。
type Poller struct {
	client  VideoModel
	cfg     Config
	metrics *metrics.Recorder

	mu     sync.Mutex
	active *activeJob
}

// NewPoller は Poller を初期化します。recorder は nil でもよい。
func NewPoller(client VideoModel, cfg Config, recorder *metrics.Recorder) (*Poller, error) {
	if client == nil {
		return nil, fmt.Errorf("video client is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = cfg.PollInterval
	}
	if cfg.Timeout < 0 {
		cfg.Timeout = 0
	}
	if len(cfg.Messages) == 0 {
		cfg.Messages = DefaultMessages
	}
	return &Poller{client: client, cfg: cfg, metrics: recorder}, nil
}

// Submit は認可ゲートを通した上でジョブを送信し、完了を待たずにハンドルを返します。
func (p *Poller) Submit(ctx context.Context, sess *credential.Session, req domain.VideoRequest) (*Job, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, credential.ErrCredentialRequired
	}
	if err := sess.Ensure(ctx); err != nil {
		return nil, err
	}

	var image *genai.Image
	if req.FromImage() {
		part, err := imgutil.NormalizeImagePart(*req.Image)
		if err != nil {
			return nil, err
		}
		image = &genai.Image{ImageBytes: part.Data, MIMEType: part.MIMEType}
	}

	config := &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
		AspectRatio:    string(req.AspectRatio),
		Resolution:     string(req.Resolution),
	}

	id := uuid.NewString()
	slog.InfoContext(ctx, "動画生成ジョブを送信します",
		"job_id", id, "model", p.cfg.Model, "from_image", image != nil,
		"aspect_ratio", req.AspectRatio, "resolution", req.Resolution)

	started := time.Now()
	op, err := p.client.GenerateVideos(ctx, p.cfg.Model, req.Prompt, image, config)
	if err == nil && op == nil {
		err = domain.NewError(domain.KindAbsentPayload, opSubmit, "video operation handle was not returned", nil)
	}
	err = p.classify(ctx, sess, opSubmit, err)
	p.metrics.ObserveRequest(opSubmit, started, err)
	if err != nil {
		return nil, err
	}

	return &Job{ID: id, Request: req, SubmittedAt: started, op: op}, nil
}

// Await は job が完了するまで一定間隔でポーリングし、動画のロケーターを返します。
// 新しい Await が始まると前の Await はキャンセルされ、その終了を待ってから開始します。
// progress は Await が戻る前に必ず最後の呼び出しを終えます。
func (p *Poller) Await(ctx context.Context, sess *credential.Session, job *Job, progress ProgressFunc) (domain.VideoLocator, error) {
	if job == nil || job.op == nil {
		return domain.VideoLocator{}, fmt.Errorf("%w: job is nil", domain.ErrInvalidInput)
	}

	tr := newTracker(progress, p.cfg.Messages)
	jobCtx, release := p.begin(ctx, tr)
	defer release()
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(jobCtx, p.cfg.Timeout)
		defer cancel()
	}

	tr.update(func(*State) {})
	stopRotation := p.startRotation(jobCtx, tr)

	locator, err := p.poll(jobCtx, sess, job, tr)

	// 終端の通知より前にローテーションを止める
	stopRotation()
	tr.finish(locator, err)
	p.metrics.VideoJobFinished(err)

	if err != nil {
		slog.WarnContext(ctx, "動画生成ジョブが失敗しました", "job_id", job.ID, "operation", job.Name(), "error", err)
		return domain.VideoLocator{}, err
	}
	slog.InfoContext(ctx, "動画生成ジョブが完了しました", "job_id", job.ID, "operation", job.Name(),
		"elapsed", time.Since(job.SubmittedAt).Round(time.Second))
	return locator, nil
}

// Stop は監視中のジョブを打ち切り、その Await が戻るまで待ちます。
// ProgressFunc の中から呼ばれた場合はキャンセルだけ行い、待たずに戻ります。
// プロバイダ側のジョブは中断されません。
func (p *Poller) Stop() {
	p.mu.Lock()
	current := p.active
	p.mu.Unlock()
	if current == nil {
		return
	}
	current.cancel(ErrStopped)
	if current.tracker != nil && current.tracker.notifying.Load() {
		return
	}
	<-current.done
}

func (p *Poller) poll(ctx context.Context, sess *credential.Session, job *Job, tr *tracker) (domain.VideoLocator, error) {
	op := job.op
	attempts := 0
	for !op.Done {
		if err := context.Cause(ctx); err != nil {
			return domain.VideoLocator{}, err
		}
		timer := time.NewTimer(p.cfg.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.VideoLocator{}, context.Cause(ctx)
		case <-timer.C:
		}

		attempts++
		p.metrics.PollAttempt()
		tr.polling(attempts)

		next, err := p.client.GetVideosOperation(ctx, op)
		if err == nil && next == nil {
			err = domain.NewError(domain.KindAbsentPayload, opPoll, "video operation status was not returned", nil)
		}
		if err != nil {
			if ctxErr := context.Cause(ctx); ctxErr != nil {
				return domain.VideoLocator{}, ctxErr
			}
			return domain.VideoLocator{}, p.classify(ctx, sess, opPoll, err)
		}
		op = next
		job.op = next
		slog.DebugContext(ctx, "動画生成ジョブの状態を確認しました", "job_id", job.ID, "attempt", attempts, "done", op.Done)
	}

	return p.resolve(ctx, sess, op)
}

// resolve は完了したオペレーションからロケーターを取り出します。
// 完了していてもロケーターが無ければ終端の失敗で、再試行しません。
func (p *Poller) resolve(ctx context.Context, sess *credential.Session, op *genai.GenerateVideosOperation) (domain.VideoLocator, error) {
	if len(op.Error) > 0 {
		msg := operationErrorMessage(op.Error)
		return domain.VideoLocator{}, p.classify(ctx, sess, opPoll, domain.NewError(domain.KindProvider, opPoll, msg, nil))
	}
	if op.Response != nil {
		for _, generated := range op.Response.GeneratedVideos {
			if generated != nil && generated.Video != nil && generated.Video.URI != "" {
				return domain.VideoLocator{URI: generated.Video.URI}, nil
			}
		}
	}
	msg := "video generation failed or returned no locator"
	if op.Response != nil && len(op.Response.RAIMediaFilteredReasons) > 0 {
		msg = fmt.Sprintf("%s (filtered: %s)", msg, strings.Join(op.Response.RAIMediaFilteredReasons, "; "))
	}
	return domain.VideoLocator{}, domain.NewError(domain.KindAbsentPayload, opPoll, msg, nil)
}

// classify はエラーを分類し、エンティティ未検出の応答なら資格情報を無効化して AuthError にします。
func (p *Poller) classify(ctx context.Context, sess *credential.Session, op string, err error) error {
	err = generator.Classify(op, err)
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), domain.NotFoundEntityMarker) {
		if sess != nil {
			sess.Invalidate(ctx)
		}
		return domain.NewError(domain.KindAuth, op, domain.ReselectCredentialMessage, err)
	}
	return err
}

// begin は新しいジョブを登録します。前のジョブがあればキャンセルし、終了を待つのだ。
func (p *Poller) begin(ctx context.Context, tr *tracker) (context.Context, func()) {
	jobCtx, cancel := context.WithCancelCause(ctx)
	current := &activeJob{cancel: cancel, done: make(chan struct{}), tracker: tr}

	p.mu.Lock()
	prev := p.active
	p.active = current
	p.mu.Unlock()

	if prev != nil {
		prev.cancel(ErrSuperseded)
		<-prev.done
	}

	release := func() {
		cancel(nil)
		p.mu.Lock()
		if p.active == current {
			p.active = nil
		}
		p.mu.Unlock()
		close(current.done)
	}
	return jobCtx, release
}

// startRotation は進捗メッセージを一定間隔で回すゴルーチンを起動します。
// 返す関数はゴルーチンの終了まで待つので、呼び出し後にコールバックは発生しません。
func (p *Poller) startRotation(ctx context.Context, tr *tracker) func() {
	ticker := time.NewTicker(p.cfg.ProgressInterval)
	quit := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-quit:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				tr.rotate()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(quit)
			wg.Wait()
		})
	}
}

func validateRequest(req domain.VideoRequest) error {
	if strings.TrimSpace(req.Prompt) == "" && !req.FromImage() {
		return fmt.Errorf("%w: プロンプトが空です", domain.ErrInvalidInput)
	}
	if req.AspectRatio != "" && !req.AspectRatio.ValidForVideo() {
		return fmt.Errorf("%w: 動画で使えないアスペクト比です: %s", domain.ErrInvalidInput, req.AspectRatio)
	}
	if req.Resolution != "" && !req.Resolution.Valid() {
		return fmt.Errorf("%w: 不正な解像度です: %s", domain.ErrInvalidInput, req.Resolution)
	}
	return nil
}

func operationErrorMessage(e map[string]any) string {
	if msg, ok := e["message"].(string); ok && msg != "" {
		return msg
	}
	return fmt.Sprintf("%v", e)
}
