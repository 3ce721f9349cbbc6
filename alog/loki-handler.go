package alog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/afiskon/promtail-client/promtail"
	"github.com/cenkalti/backoff/v4"
)

const defaultLokiPushURL = "http://localhost:3100/api/prom/push"

var errLokiUnreachable = errors.New("loki is not reachable")

// NewLokiHandler use this handler only for local development!
//
// It ships your logs to a local loki instance, so you can use the same setup as in production.
// It does not care about performance, as in production you would log to `stdout` and the
// container-runtime's drivers (docker, kubernetes) ship your logs to loki.
// If loki is not reachable, records are dropped until it is.
func NewLokiHandler(opt *LokiHandlerOptions) *LokiHandler {
	conf := promtailConfig(opt)

	sink := &lokiSink{
		mu:     sync.Mutex{},
		client: newPromtailClient(conf),
		output: &bytes.Buffer{},
	}

	if sink.client == nil {
		go sink.retry(conf)
	}

	return &LokiHandler{
		sink: sink,
		renderer: slog.NewJSONHandler(sink.output, &slog.HandlerOptions{
			Level:       LevelDebug, // the level is controlled by the handler wrapping this one
			AddSource:   false,
			ReplaceAttr: MapLogLevelsToName,
		}),
	}
}

type (
	LokiHandlerOptions struct {
		Labels  map[string]string
		PushURL string
	}

	// LokiHandler renders each record as JSON and pushes it to loki.
	LokiHandler struct {
		sink     *lokiSink
		renderer slog.Handler
	}

	// lokiSink is shared by all handlers derived via WithAttrs and WithGroup.
	lokiSink struct {
		mu     sync.Mutex
		client promtail.Client
		output *bytes.Buffer
	}
)

var _ slog.Handler = (*LokiHandler)(nil)

func promtailConfig(opt *LokiHandlerOptions) promtail.ClientConfig {
	if opt == nil {
		opt = &LokiHandlerOptions{}
	}

	pushURL := opt.PushURL
	if pushURL == "" {
		pushURL = defaultLokiPushURL
	}

	labels := opt.Labels
	if len(labels) == 0 {
		labels = map[string]string{
			"service": "todo",
			"client":  "todo-loki",
		}
	}

	pairs := make([]string, 0, len(labels))
	for _, k := range slices.Sorted(maps.Keys(labels)) {
		pairs = append(pairs, fmt.Sprintf("%s=%q", k, labels[k]))
	}

	return promtail.ClientConfig{
		PushURL:            pushURL,
		Labels:             "{" + strings.Join(pairs, ",") + "}",
		BatchWait:          time.Second,
		BatchEntriesNumber: 1,
		SendLevel:          promtail.DEBUG,
		PrintLevel:         promtail.DISABLE,
	}
}

// retry connects to loki with an exponential backoff, until it succeeds.
func (s *lokiSink) retry(conf promtail.ClientConfig) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 15 * time.Second //nolint:mnd // check about four times a minute at most
	b.MaxElapsedTime = 0

	_ = backoff.Retry(func() error {
		client := newPromtailClient(conf)
		if client == nil {
			return errLokiUnreachable
		}

		s.mu.Lock()
		s.client = client
		s.mu.Unlock()

		return nil
	}, b)
}

// newPromtailClient returns nil, if loki is not reachable.
func newPromtailClient(conf promtail.ClientConfig) promtail.Client { //nolint:ireturn // promtail only returns the interface
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, conf.PushURL, nil)
	if err != nil {
		return nil
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil
	}

	_ = res.Body.Close()

	client, _ := promtail.NewClientJson(conf) // the error is always nil

	return client
}

func (l *LokiHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (l *LokiHandler) Handle(ctx context.Context, record slog.Record) error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if l.sink.client == nil {
		return nil
	}

	defer l.sink.output.Reset()

	if err := l.renderer.Handle(ctx, record); err != nil {
		return fmt.Errorf("could not render record: %w", err)
	}

	// attributes are not sent as labels: high cardinality can kill loki
	// https://grafana.com/docs/loki/latest/fundamentals/labels/#cardinality
	// query them in grafana with: {service="todo"} | json | command="todo.CreateTodoRequest"
	l.sink.client.Infof("%s", strings.TrimSpace(l.sink.output.String()))

	return nil
}

func (l *LokiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LokiHandler{sink: l.sink, renderer: l.renderer.WithAttrs(attrs)}
}

func (l *LokiHandler) WithGroup(name string) slog.Handler {
	return &LokiHandler{sink: l.sink, renderer: l.renderer.WithGroup(name)}
}
