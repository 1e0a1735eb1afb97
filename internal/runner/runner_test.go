package runner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bkassahun/course-harvester/internal/adapter"
	"github.com/bkassahun/course-harvester/internal/course"
)

// scriptedAdapter is a test double whose Courses behavior is supplied per
// test: canned records, a fixed error, a panic, or a custom function.
type scriptedAdapter struct {
	key     string
	name    string
	allowed bool
	records []course.Record
	err     error
	panics  bool
	fn      func(ctx context.Context) ([]course.Record, error)
}

func (s *scriptedAdapter) Key() string         { return s.key }
func (s *scriptedAdapter) DisplayName() string { return s.name }
func (s *scriptedAdapter) IsAllowed() bool     { return s.allowed }

func (s *scriptedAdapter) Courses(ctx context.Context) ([]course.Record, error) {
	if s.panics {
		panic("adapter exploded")
	}
	if s.fn != nil {
		return s.fn(ctx)
	}
	return s.records, s.err
}

func rec(provider, url string) course.Record {
	return course.Record{ID: url, Title: url, URL: url, Provider: provider}
}

func mustRegistry(t *testing.T, adapters ...adapter.Adapter) *adapter.Registry {
	t.Helper()
	registry, err := adapter.NewRegistry(adapters...)
	require.NoError(t, err)
	return registry
}

func TestRunAllIsolatesFailures(t *testing.T) {
	t.Parallel()

	a := &scriptedAdapter{key: "a", name: "Source A", allowed: true,
		records: []course.Record{rec("Source A", "https://a.example/1"), rec("Source A", "https://a.example/2")}}
	b := &scriptedAdapter{key: "b", name: "Source B", allowed: true, err: errors.New("catalog gone")}
	c := &scriptedAdapter{key: "c", name: "Source C", allowed: true}

	ctrl := New(mustRegistry(t, a, b, c), Options{}, zaptest.NewLogger(t))
	result, err := ctrl.RunAll(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	require.Equal(t, "https://a.example/1", result.Records[0].URL)
	require.Equal(t, "https://a.example/2", result.Records[1].URL)

	require.Len(t, result.Sources, 3)
	require.Equal(t, OutcomeOK, result.Sources[0].Outcome)
	require.Equal(t, OutcomeFailed, result.Sources[1].Outcome)
	require.Equal(t, OutcomeOK, result.Sources[2].Outcome)
	require.Equal(t, 1, result.Failed())

	var adapterErr *AdapterError
	require.ErrorAs(t, result.Sources[1].Err, &adapterErr)
	require.Equal(t, "b", adapterErr.Key)
	require.Equal(t, "Source B", adapterErr.DisplayName)
	require.NotEmpty(t, result.RunID)
}

func TestRunAllContainsPanics(t *testing.T) {
	t.Parallel()

	boom := &scriptedAdapter{key: "boom", name: "Boom", allowed: true, panics: true}
	ok := &scriptedAdapter{key: "ok", name: "OK", allowed: true,
		records: []course.Record{rec("OK", "https://ok.example/1")}}

	ctrl := New(mustRegistry(t, boom, ok), Options{}, zaptest.NewLogger(t))
	result, err := ctrl.RunAll(context.Background())
	require.NoError(t, err)

	require.Equal(t, OutcomeFailed, result.Sources[0].Outcome)
	require.ErrorContains(t, result.Sources[0].Err, "panic in adapter")
	require.Equal(t, OutcomeOK, result.Sources[1].Outcome)
	require.Len(t, result.Records, 1)
}

func TestRunAllSkipsDisallowedSources(t *testing.T) {
	t.Parallel()

	gated := &scriptedAdapter{key: "gated", name: "Gated", allowed: false,
		records: []course.Record{rec("Gated", "https://gated.example/1")}}
	open := &scriptedAdapter{key: "open", name: "Open", allowed: true,
		records: []course.Record{rec("Open", "https://open.example/1")}}

	ctrl := New(mustRegistry(t, gated, open), Options{}, zaptest.NewLogger(t))
	result, err := ctrl.RunAll(context.Background())
	require.NoError(t, err)

	require.Equal(t, OutcomeSkipped, result.Sources[0].Outcome)
	require.Nil(t, result.Sources[0].Err)
	require.Len(t, result.Records, 1)
	require.Equal(t, "Open", result.Records[0].Provider)
}

func TestRunAllConcurrentPreservesRegistrationOrder(t *testing.T) {
	t.Parallel()

	// Finish out of launch order to prove aggregation sorts by registry.
	release := make(chan struct{})
	slow := &scriptedAdapter{key: "slow", name: "Slow", allowed: true,
		fn: func(ctx context.Context) ([]course.Record, error) {
			<-release
			return []course.Record{rec("Slow", "https://slow.example/1")}, nil
		}}
	fast := &scriptedAdapter{key: "fast", name: "Fast", allowed: true,
		fn: func(ctx context.Context) ([]course.Record, error) {
			defer close(release)
			return []course.Record{rec("Fast", "https://fast.example/1")}, nil
		}}

	ctrl := New(mustRegistry(t, slow, fast), Options{Concurrency: 2}, zaptest.NewLogger(t))
	result, err := ctrl.RunAll(context.Background())
	require.NoError(t, err)

	require.Equal(t, "slow", result.Sources[0].Key)
	require.Equal(t, "fast", result.Sources[1].Key)
	require.Equal(t, "https://slow.example/1", result.Records[0].URL)
	require.Equal(t, "https://fast.example/1", result.Records[1].URL)
}

func TestRunAllAbandonsStragglersAfterGrace(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	var once sync.Once
	stuck := &scriptedAdapter{key: "stuck", name: "Stuck", allowed: true,
		fn: func(ctx context.Context) ([]course.Record, error) {
			once.Do(func() { close(started) })
			// Ignores cancellation on purpose.
			time.Sleep(5 * time.Second)
			return nil, nil
		}}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	ctrl := New(mustRegistry(t, stuck), Options{GracePeriod: 50 * time.Millisecond}, zaptest.NewLogger(t))
	begin := time.Now()
	result, err := ctrl.RunAll(ctx)
	require.NoError(t, err)
	require.Less(t, time.Since(begin), 3*time.Second)

	require.Len(t, result.Sources, 1)
	require.Equal(t, OutcomeAbandoned, result.Sources[0].Outcome)
	require.Equal(t, "stuck", result.Sources[0].Key)
	require.Empty(t, result.Records)
}

func TestRunAllStopsLaunchingAfterCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	first := &scriptedAdapter{key: "first", name: "First", allowed: true,
		fn: func(ctx context.Context) ([]course.Record, error) {
			cancel()
			// Holds the concurrency slot past the cancellation so the launch
			// loop observes ctx.Done() before the slot frees up.
			time.Sleep(100 * time.Millisecond)
			return []course.Record{rec("First", "https://first.example/1")}, nil
		}}
	second := &scriptedAdapter{key: "second", name: "Second", allowed: true,
		records: []course.Record{rec("Second", "https://second.example/1")}}

	// Concurrency 1 forces sequential launches, so cancellation inside the
	// first adapter must keep the second from ever starting.
	ctrl := New(mustRegistry(t, first, second), Options{Concurrency: 1, GracePeriod: time.Second}, zaptest.NewLogger(t))
	result, err := ctrl.RunAll(ctx)
	require.NoError(t, err)

	require.Len(t, result.Sources, 2)
	require.Equal(t, OutcomeOK, result.Sources[0].Outcome)
	require.Equal(t, OutcomeAbandoned, result.Sources[1].Outcome)
	require.Len(t, result.Records, 1)
}

func TestRunOne(t *testing.T) {
	t.Parallel()

	a := &scriptedAdapter{key: "a", name: "Source A", allowed: true,
		records: []course.Record{rec("Source A", "https://a.example/1")}}
	ctrl := New(mustRegistry(t, a), Options{}, zaptest.NewLogger(t))

	result, err := ctrl.RunOne(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	require.Equal(t, OutcomeOK, result.Sources[0].Outcome)
	require.NotEmpty(t, result.RunID)
}

func TestRunOneUnknownKey(t *testing.T) {
	t.Parallel()

	ctrl := New(mustRegistry(t), Options{}, zaptest.NewLogger(t))
	_, err := ctrl.RunOne(context.Background(), "nope")

	var unknown *UnknownSourceError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "nope", unknown.Key)
}

func TestRunOneFailureIsReturned(t *testing.T) {
	t.Parallel()

	broken := &scriptedAdapter{key: "broken", name: "Broken", allowed: true, err: errors.New("no catalog")}
	ctrl := New(mustRegistry(t, broken), Options{}, zaptest.NewLogger(t))

	result, err := ctrl.RunOne(context.Background(), "broken")
	require.Error(t, err)
	require.ErrorContains(t, err, "no catalog")
	require.Equal(t, OutcomeFailed, result.Sources[0].Outcome)
}

func TestRunOneSkippedSource(t *testing.T) {
	t.Parallel()

	gated := &scriptedAdapter{key: "gated", name: "Gated", allowed: false}
	ctrl := New(mustRegistry(t, gated), Options{}, zaptest.NewLogger(t))

	result, err := ctrl.RunOne(context.Background(), "gated")
	require.NoError(t, err)
	require.Equal(t, OutcomeSkipped, result.Sources[0].Outcome)
	require.Empty(t, result.Records)
}
