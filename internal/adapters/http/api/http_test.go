package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/moatwatch/moatwatch/internal/app"
	"github.com/moatwatch/moatwatch/internal/domain/model"
	"github.com/moatwatch/moatwatch/internal/domain/types"
)

type fakeDeps struct {
	running  atomic.Bool
	runs     atomic.Int32
	runErr   error
	lastRun  model.RunSummary
	lastErr  error
	picks    []types.Entry
	picksErr error
}

func (f *fakeDeps) Run(context.Context, string) error {
	f.runs.Add(1)
	return f.runErr
}

func (f *fakeDeps) Running() bool { return f.running.Load() }

func (f *fakeDeps) LastRun(context.Context) (model.RunSummary, error) {
	return f.lastRun, f.lastErr
}

func (f *fakeDeps) Picks(context.Context) ([]types.Entry, error) {
	return f.picks, f.picksErr
}

type fakeStats struct{}

func (fakeStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"running": false, "worker_count": 8}
}

func newTestMux(deps *fakeDeps, reportDir string) *http.ServeMux {
	mux := http.NewServeMux()
	NewServer(deps, fakeStats{}, reportDir).Register(context.Background(), mux)
	return mux
}

func TestHealth(t *testing.T) {
	Convey("Given the API routes", t, func() {
		srv := httptest.NewServer(newTestMux(&fakeDeps{}, t.TempDir()))
		defer srv.Close()

		Convey("Then /healthz reports ok", func() {
			resp, err := http.Get(srv.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var body map[string]string
			So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
			So(body["status"], ShouldEqual, "ok")
		})

		Convey("Then /metrics exposes the registry", func() {
			resp, err := http.Get(srv.URL + "/metrics")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})
	})
}

func TestStatus(t *testing.T) {
	Convey("Given a completed run", t, func() {
		deps := &fakeDeps{lastRun: model.RunSummary{
			RunID:   "run-1",
			Status:  "success",
			Trigger: "scheduled",
			Picks:   5,
		}}
		srv := httptest.NewServer(newTestMux(deps, t.TempDir()))
		defer srv.Close()

		Convey("When requesting the status", func() {
			resp, err := http.Get(srv.URL + "/status")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var body struct {
				Stats   map[string]interface{} `json:"stats"`
				LastRun *model.RunSummary      `json:"last_run"`
			}
			So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)

			Convey("Then stats and last run are present", func() {
				So(body.Stats, ShouldContainKey, "worker_count")
				So(body.LastRun, ShouldNotBeNil)
				So(body.LastRun.RunID, ShouldEqual, "run-1")
				So(body.LastRun.Picks, ShouldEqual, 5)
			})
		})
	})

	Convey("Given no run has happened yet", t, func() {
		deps := &fakeDeps{lastErr: ErrNotFound}
		srv := httptest.NewServer(newTestMux(deps, t.TempDir()))
		defer srv.Close()

		Convey("Then status still succeeds with a null last run", func() {
			resp, err := http.Get(srv.URL + "/status")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var body map[string]json.RawMessage
			So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
			So(string(body["last_run"]), ShouldEqual, "null")
		})
	})

	Convey("Given the summary store is broken", t, func() {
		deps := &fakeDeps{lastErr: errors.New("disk error")}
		srv := httptest.NewServer(newTestMux(deps, t.TempDir()))
		defer srv.Close()

		Convey("Then status returns a server error", func() {
			resp, err := http.Get(srv.URL + "/status")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestPicks(t *testing.T) {
	Convey("Given ranked picks", t, func() {
		deps := &fakeDeps{picks: []types.Entry{
			{Rank: 1, Symbol: "TCS", Exchange: "NSE", Score: 16},
			{Rank: 2, Symbol: "500325", Exchange: "BSE", Score: 12},
		}}
		srv := httptest.NewServer(newTestMux(deps, t.TempDir()))
		defer srv.Close()

		Convey("Then /picks returns them in order", func() {
			resp, err := http.Get(srv.URL + "/picks")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			var entries []types.Entry
			So(json.NewDecoder(resp.Body).Decode(&entries), ShouldBeNil)
			So(len(entries), ShouldEqual, 2)
			So(entries[0].Symbol, ShouldEqual, "TCS")
		})
	})

	Convey("Given no picks at all", t, func() {
		srv := httptest.NewServer(newTestMux(&fakeDeps{}, t.TempDir()))
		defer srv.Close()

		Convey("Then the response is an empty array, not null", func() {
			resp, err := http.Get(srv.URL + "/picks")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			raw := new(strings.Builder)
			buf := make([]byte, 64)
			for {
				n, readErr := resp.Body.Read(buf)
				raw.Write(buf[:n])
				if readErr != nil {
					break
				}
			}
			So(strings.TrimSpace(raw.String()), ShouldEqual, "[]")
		})
	})
}

func TestRunEndpoint(t *testing.T) {
	Convey("Given the run endpoint", t, func() {
		deps := &fakeDeps{}
		srv := httptest.NewServer(newTestMux(deps, t.TempDir()))
		defer srv.Close()

		Convey("When triggering a run", func() {
			resp, err := http.Post(srv.URL+"/run", "application/json", nil)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it is accepted and started in the background", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusAccepted)

				var body runAccepted
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body.Status, ShouldEqual, "accepted")
				So(body.Trigger, ShouldEqual, "manual")

				deadline := time.After(2 * time.Second)
				for deps.runs.Load() == 0 {
					select {
					case <-deadline:
						t.Fatal("background run never started")
					case <-time.After(10 * time.Millisecond):
					}
				}
			})
		})

		Convey("When a run is already in flight", func() {
			deps.running.Store(true)

			resp, err := http.Post(srv.URL+"/run", "application/json", nil)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the request conflicts", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusConflict)

				var body errorResponse
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body.Code, ShouldEqual, "run_in_progress")
			})
		})

		Convey("When the background run loses the race to another trigger", func() {
			deps.runErr = service.ErrRunInProgress

			resp, err := http.Post(srv.URL+"/run", "application/json", nil)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the request is still accepted and the loss is recognized", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusAccepted)
				So(errors.Is(service.ErrRunInProgress, ErrRunInProgress), ShouldBeTrue)

				deadline := time.After(2 * time.Second)
				for deps.runs.Load() == 0 {
					select {
					case <-deadline:
						t.Fatal("background run never started")
					case <-time.After(10 * time.Millisecond):
					}
				}
			})
		})

		Convey("When using the wrong method", func() {
			resp, err := http.Get(srv.URL + "/run")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it is not found", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}
