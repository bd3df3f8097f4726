package calendarsvc

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/trezcool/kelasi/core"
)

type nopLogger struct{ std *log.Logger }

var _ core.Logger = (*nopLogger)(nil)

func (l nopLogger) Enable(bool)                       {}
func (l nopLogger) Debug(string, ...interface{})      {}
func (l nopLogger) Info(string, ...interface{})       {}
func (l nopLogger) Warn(msg string, _ ...interface{}) { l.std.Println(msg) }
func (l nopLogger) Error(string, ...interface{})      {}
func (l nopLogger) Fatal(string, ...interface{})      {}

func newTestService(baseURL string) *service {
	conf := &core.Config{
		Calendar: core.CalendarConfig{BaseURL: baseURL, Timeout: 2 * time.Second},
	}
	return NewService(conf, nopLogger{std: log.New(os.Stderr, "", 0)})
}

func Test_service_FetchHolidays(t *testing.T) {
	ctx := context.Background()
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		year := r.URL.Query().Get("year")
		fmt.Fprintf(w, `{"dates": ["%s-01-01", "%s-05-01"]}`, year, year)
	}))
	defer srv.Close()
	svc := newTestService(srv.URL)

	set := svc.FetchHolidays(ctx, 2025)
	if set.Len() != 2 {
		t.Errorf("FetchHolidays() len = %d; want 2", set.Len())
	}
	if !set.Contains("2025-01-01") || !set.Contains("2025-05-01") {
		t.Errorf("FetchHolidays() missing expected dates: %v", set)
	}

	// same year is memoized
	svc.FetchHolidays(ctx, 2025)
	if hits != 1 {
		t.Errorf("source hit %d times for one year; want 1", hits)
	}

	// a new year triggers a new fetch
	svc.FetchHolidays(ctx, 2026)
	if hits != 2 {
		t.Errorf("source hit %d times for two years; want 2", hits)
	}
}

func Test_service_FetchHolidays_sourceDown(t *testing.T) {
	ctx := context.Background()
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	svc := newTestService(srv.URL)

	if set := svc.FetchHolidays(ctx, 2025); set.Len() != 0 {
		t.Errorf("FetchHolidays() on failure = %v; want empty set", set)
	}

	// failures are not cached; next access retries
	svc.FetchHolidays(ctx, 2025)
	if hits != 2 {
		t.Errorf("source hit %d times after failures; want 2 (retried)", hits)
	}
}
