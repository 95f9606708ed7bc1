package calendar

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const calendarPayload = `[
	{"date":"20240101","year":"2024","name":"開國紀念日","isholiday":"是","holidaycategory":"放假之紀念日及節日","description":"全國各機關學校放假一日。"},
	{"date":"20240106","year":"2024","name":null,"isholiday":"是","holidaycategory":"星期六、星期日","description":""},
	{"date":"20240209","year":"2024","name":"農曆除夕","isholiday":"是","holidaycategory":"放假之紀念日及節日","description":""},
	{"date":"20240217","year":"2024","name":"補行上班日","isholiday":"否","holidaycategory":"調整上班日","description":""},
	{"date":"20240501","year":"2024","name":"勞動節","isholiday":"是","holidaycategory":"特定節日","description":"勞工放假"},
	{"date":"20240903","year":"2024","name":"軍人節","isholiday":"是","holidaycategory":"特定節日","description":"軍人放假"},
	{"date":"20241010","year":"2024","name":"國慶日","isholiday":"是","holidaycategory":"放假之紀念日及節日","description":""}
]`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, hits *atomic.Int32, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "2024", r.URL.Query().Get("year"))
		assert.Equal(t, "1000", r.URL.Query().Get("size"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_GetCleanedList(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, &hits, http.StatusOK, calendarPayload)
	client := NewClient(ClientConfig{URL: srv.URL, RequestsPerSecond: 100}, testLogger())

	holidays, err := client.GetCleanedList(context.Background(), 2024)
	require.NoError(t, err)

	var names []string
	for _, h := range holidays {
		names = append(names, h.Info.Name)
	}
	assert.Equal(t, []string{"開國紀念日", "農曆除夕", "國慶日"}, names)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), holidays[0].Date)
	assert.Equal(t, "放假之紀念日及節日", holidays[0].Info.HolidayCategory)
	assert.Equal(t, "全國各機關學校放假一日。", holidays[0].Info.Description)
}

func TestClient_Cache(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, &hits, http.StatusOK, calendarPayload)
	client := NewClient(ClientConfig{URL: srv.URL, RequestsPerSecond: 100}, testLogger())
	ctx := context.Background()

	_, err := client.GetCleanedList(ctx, 2024)
	require.NoError(t, err)
	_, err = client.GetCleanedList(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	client.Invalidate(2024)
	_, err = client.GetCleanedList(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestClient_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusBadGateway, "bad gateway"},
		{"invalid json", http.StatusOK, "<html>maintenance</html>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := newTestServer(t, &hits, tt.status, tt.body)
			client := NewClient(ClientConfig{URL: srv.URL, RequestsPerSecond: 100}, testLogger())

			_, err := client.GetCleanedList(context.Background(), 2024)
			assert.ErrorIs(t, err, ErrUpstream)
		})
	}
}

func TestClient_ContextCanceled(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, &hits, http.StatusOK, calendarPayload)
	client := NewClient(ClientConfig{URL: srv.URL}, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetCleanedList(ctx, 2024)
	assert.Error(t, err)
	assert.Equal(t, int32(0), hits.Load())
}

func TestParseEntryDate(t *testing.T) {
	for _, s := range []string{"20241010", "2024/10/10", "2024-10-10"} {
		d, err := parseEntryDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC), d)
	}
	_, err := parseEntryDate("10 Oct 2024")
	assert.Error(t, err)
}

func TestClient_HolidaySetFor(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, &hits, http.StatusOK, calendarPayload)
	client := NewClient(ClientConfig{URL: srv.URL, RequestsPerSecond: 100}, testLogger())

	set, err := client.HolidaySetFor(context.Background(), time.Date(2024, 10, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 3, set.Len())
	assert.True(t, set.Contains(time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)))
	assert.False(t, set.Contains(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, int32(1), hits.Load())
}
