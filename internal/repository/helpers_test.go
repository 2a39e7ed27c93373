package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/fakhrymubarak/weather-forecast-redis/internal/model"
)

// 2025-06-01T00:00:00Z
const june1 int64 = 1748736000

const hour int64 = 3600

// RoundTripperFunc allows us to easily mock http.Client responses in tests.
type RoundTripperFunc func(*http.Request) *http.Response

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func newMockHTTPClient(fn func(req *http.Request) *http.Response) *http.Client {
	return &http.Client{
		Transport: RoundTripperFunc(fn),
	}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

type mockRedisClient struct {
	getFunc func(ctx context.Context, key string) *redisv9.StringCmd
	setFunc func(ctx context.Context, key string, value interface{}, expiration time.Duration) *redisv9.StatusCmd
}

func (m *mockRedisClient) Get(ctx context.Context, key string) *redisv9.StringCmd {
	return m.getFunc(ctx, key)
}

func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redisv9.StatusCmd {
	return m.setFunc(ctx, key, value, expiration)
}

func cacheMiss() *mockRedisClient {
	return &mockRedisClient{
		getFunc: func(ctx context.Context, key string) *redisv9.StringCmd {
			return redisv9.NewStringResult("", redisv9.Nil)
		},
		setFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) *redisv9.StatusCmd {
			return redisv9.NewStatusResult("OK", nil)
		},
	}
}

type fakeRecorder struct {
	mu       sync.Mutex
	cache    map[string]int
	upstream []string
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{cache: make(map[string]int)}
}

func (f *fakeRecorder) ObserveCache(operation, result string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache[operation+":"+result]++
}

func (f *fakeRecorder) ObserveUpstream(status string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upstream = append(f.upstream, status)
}

func owmEntry(dt int64, tempMin, tempMax float64, humidity int, pop, wind float64, desc, icon string) string {
	return fmt.Sprintf(
		`{"dt":%d,"main":{"temp":%g,"temp_min":%g,"temp_max":%g,"humidity":%d},"weather":[{"description":%q,"icon":%q}],"wind":{"speed":%g},"pop":%g}`,
		dt, (tempMin+tempMax)/2, tempMin, tempMax, humidity, desc, icon, wind, pop,
	)
}

func owmBody(city string, timezone int, entries ...string) string {
	return fmt.Sprintf(
		`{"cod":"200","cnt":%d,"list":[%s],"city":{"name":%q,"country":"GB","timezone":%d}}`,
		len(entries), strings.Join(entries, ","), city, timezone,
	)
}

func decodeEntries(t *testing.T, entries ...string) []model.OpenWeatherMapEntry {
	t.Helper()
	var out []model.OpenWeatherMapEntry
	require.NoError(t, json.Unmarshal([]byte("["+strings.Join(entries, ",")+"]"), &out))
	return out
}

// twoDayLondon is a two day forecast with three samples on the first day.
func twoDayLondon() string {
	return owmBody("London", 0,
		owmEntry(june1, 11, 13, 80, 0.1, 3.0, "clear sky", "01n"),
		owmEntry(june1+3*hour, 10, 12, 70, 0.4, 5.5, "light rain", "10n"),
		owmEntry(june1+6*hour, 12, 18, 60, 0.0, 4.0, "clear sky", "01d"),
		owmEntry(june1+24*hour, 13, 20, 50, 0.2, 2.0, "overcast clouds", "04d"),
	)
}
