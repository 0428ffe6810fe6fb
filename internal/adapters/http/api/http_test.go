package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/okian/timeline/internal/adapters/http/api"
	"github.com/okian/timeline/internal/adapters/repository"
	service "github.com/okian/timeline/internal/app"
	"github.com/okian/timeline/internal/domain/document"
	"github.com/okian/timeline/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newRouter(deps api.Dependencies, stats api.StatsProvider, opts ...api.Option) *mux.Router {
	r := mux.NewRouter()
	opts = append([]api.Option{api.WithLogger(logger.Discard())}, opts...)
	api.NewServer(deps, stats, opts...).Register(context.Background(), r)
	return r
}

func newLiveRouter(opts ...api.Option) (*mux.Router, *service.Service) {
	svc := service.New(service.WithLogger(logger.Discard()), service.WithCanvasSize(0, 300))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := svc.Start(ctx); err != nil {
		panic(err)
	}
	return newRouter(svc, svc, opts...), svc
}

func do(r http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		panic(err)
	}
	return out
}

func TestItemsEndpoints(t *testing.T) {
	Convey("Given the API over a live service", t, func() {
		r, svc := newLiveRouter()
		defer svc.Stop()

		Convey("When posting a valid event", func() {
			rec := do(r, http.MethodPost, "/events", `{"id":"a","date":"2000-01-11","title":"Launch","color":[0,0,255]}`)

			Convey("Then it is created", func() {
				So(rec.Code, ShouldEqual, http.StatusCreated)
				So(decode(rec)["id"], ShouldEqual, "a")
				So(rec.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)
			})

			Convey("Then the export shows the normalised colour", func() {
				exp := do(r, http.MethodGet, "/document", "")
				So(exp.Code, ShouldEqual, http.StatusOK)
				So(exp.Body.String(), ShouldContainSubstring, `"#0000ff"`)
			})
		})

		Convey("When posting an event without an id", func() {
			rec := do(r, http.MethodPost, "/events", `{"date":"2000-01-11"}`)

			Convey("Then it is a user input error", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(rec)["code"], ShouldEqual, "user_input")
			})
		})

		Convey("When the body is not JSON", func() {
			rec := do(r, http.MethodPost, "/events", `{`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(rec)["code"], ShouldEqual, "bad_request")
		})

		Convey("When posting a span with a numeric layer", func() {
			rec := do(r, http.MethodPost, "/timespans", `{"id":"s","start_date":"2001-01-01","end_date":"2002-01-01","layer":2}`)
			So(rec.Code, ShouldEqual, http.StatusCreated)

			exp := do(r, http.MethodGet, "/document", "")
			So(exp.Body.String(), ShouldContainSubstring, `"layer": 2`)
		})

		Convey("When deleting an id used twice", func() {
			So(do(r, http.MethodPost, "/events", `{"id":"x","date":"2001-01-01"}`).Code, ShouldEqual, http.StatusCreated)
			So(do(r, http.MethodPost, "/events", `{"id":"x","date":"2002-01-01"}`).Code, ShouldEqual, http.StatusCreated)
			rec := do(r, http.MethodDelete, "/events/x", "")

			Convey("Then both are removed", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(decode(rec)["removed"], ShouldEqual, 2.0)
				again := do(r, http.MethodDelete, "/events/x", "")
				So(decode(again)["removed"], ShouldEqual, 0.0)
			})
		})

		Convey("When setting the viewport", func() {
			ok := do(r, http.MethodPut, "/viewport", `{"zoom":2,"start_year":1990,"end_year":1995}`)
			bad := do(r, http.MethodPut, "/viewport", `{"zoom":1,"start_year":2020,"end_year":2000}`)
			missing := do(r, http.MethodPut, "/viewport", `{"zoom":1}`)
			huge := do(r, http.MethodPut, "/viewport", `{"zoom":1,"start_year":-1000000000,"end_year":1000000000}`)
			wide := do(r, http.MethodPut, "/viewport", `{"zoom":1,"start_year":0,"end_year":5000}`)

			Convey("Then degenerate and incomplete viewports are refused", func() {
				So(ok.Code, ShouldEqual, http.StatusOK)
				So(bad.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(bad)["code"], ShouldEqual, "degenerate_config")
				So(missing.Code, ShouldEqual, http.StatusBadRequest)
				So(huge.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(huge)["code"], ShouldEqual, "degenerate_config")
				So(wide.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(wide)["code"], ShouldEqual, "degenerate_config")

				stats := decode(do(r, http.MethodGet, "/stats", ""))
				So(stats["zoom"], ShouldEqual, 2.0)
				So(stats["startYear"], ShouldEqual, 1990.0)
			})
		})

		Convey("When using the wrong method", func() {
			rec := do(r, http.MethodGet, "/events", "")
			So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestDocumentEndpoints(t *testing.T) {
	Convey("Given the API over a live service with one event", t, func() {
		r, svc := newLiveRouter(api.WithMaxDocumentBytes(512))
		defer svc.Stop()
		So(do(r, http.MethodPost, "/events", `{"id":"keep","date":"2005-05-05"}`).Code, ShouldEqual, http.StatusCreated)

		Convey("When a malformed document is posted", func() {
			rec := do(r, http.MethodPost, "/document", `{"events":[`)

			Convey("Then it is rejected and the event survives", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(rec)["code"], ShouldEqual, "import_parse")
				So(do(r, http.MethodGet, "/document", "").Body.String(), ShouldContainSubstring, `"keep"`)
			})
		})

		Convey("When a legacy YAML document is posted", func() {
			doc := "events:\n  - id: s\n    start_date: 2001-01-01\n    end_date: 2002-01-01\n"
			rec := do(r, http.MethodPost, "/document", doc, "Content-Type", "application/yaml")

			Convey("Then the report shows the relocated span", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				rep := decode(rec)["report"].(map[string]any)
				So(rep["events"], ShouldEqual, 0.0)
				So(rep["timespans"], ShouldEqual, 1.0)
				So(rep["relocated"], ShouldEqual, 1.0)
			})
		})

		Convey("When the document is exported as YAML", func() {
			rec := do(r, http.MethodGet, "/document?format=yaml", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Content-Type"), ShouldEqual, document.FormatYAML.ContentType())
			So(rec.Body.String(), ShouldContainSubstring, "id: keep")
		})

		Convey("When an unknown format is asked for", func() {
			rec := do(r, http.MethodGet, "/document?format=xml", "")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(rec)["code"], ShouldEqual, "unsupported_format")
		})

		Convey("When the body exceeds the limit", func() {
			big := `{"title":"` + strings.Repeat("x", 1024) + `"}`
			rec := do(r, http.MethodPost, "/document", big)
			So(rec.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
		})
	})
}

func TestRenderEndpoint(t *testing.T) {
	Convey("Given the API over a live service", t, func() {
		r, svc := newLiveRouter()
		defer svc.Stop()
		So(do(r, http.MethodPut, "/viewport", `{"zoom":1,"start_year":2000,"end_year":2001}`).Code, ShouldEqual, http.StatusOK)
		So(do(r, http.MethodPost, "/events", `{"id":"a","date":"2000-01-11","title":"Launch"}`).Code, ShouldEqual, http.StatusCreated)

		Convey("When rendering with defaults", func() {
			rec := do(r, http.MethodGet, "/render", "")

			Convey("Then an SVG of the computed width comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldEqual, "image/svg+xml")
				So(rec.Body.String(), ShouldContainSubstring, `width="1096"`)
				So(rec.Body.String(), ShouldContainSubstring, "Launch")
			})
		})

		Convey("When rendering PNG", func() {
			rec := do(r, http.MethodGet, "/render?format=png&width=300&height=200", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")), ShouldBeTrue)
		})

		Convey("When rendering a display list", func() {
			rec := do(r, http.MethodGet, "/render?format=json&width=300", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec)["width"], ShouldEqual, 300.0)
		})

		Convey("When the query is invalid", func() {
			So(do(r, http.MethodGet, "/render?format=gif", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(r, http.MethodGet, "/render?width=abc", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(r, http.MethodGet, "/render?height=-1", "").Code, ShouldEqual, http.StatusBadRequest)
			rec := do(r, http.MethodGet, "/render?format=png&width=100000&height=1000", "")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(rec)["code"], ShouldEqual, "canvas_too_large")
		})
	})
}

func TestSnapshotEndpoints(t *testing.T) {
	Convey("Given the API over a live service", t, func() {
		r, svc := newLiveRouter()
		defer svc.Stop()
		So(do(r, http.MethodPost, "/events", `{"id":"a","date":"2000-01-11"}`).Code, ShouldEqual, http.StatusCreated)

		Convey("When a snapshot is taken and restored later", func() {
			created := do(r, http.MethodPost, "/snapshots", "")
			So(created.Code, ShouldEqual, http.StatusCreated)
			id := decode(created)["id"].(string)
			So(id, ShouldStartWith, repository.SnapshotPrefix+"_")

			So(do(r, http.MethodDelete, "/events/a", "").Code, ShouldEqual, http.StatusOK)
			restored := do(r, http.MethodPost, "/snapshots/"+id+"/restore", "")

			Convey("Then the event is back and the snapshot is listed", func() {
				So(restored.Code, ShouldEqual, http.StatusOK)
				So(decode(do(r, http.MethodGet, "/stats", ""))["events"], ShouldEqual, 1.0)
				list := decode(do(r, http.MethodGet, "/snapshots?limit=10", ""))["snapshots"].([]any)
				So(len(list), ShouldEqual, 1)
			})
		})

		Convey("When restoring bad ids", func() {
			So(do(r, http.MethodPost, "/snapshots/nope/restore", "").Code, ShouldEqual, http.StatusBadRequest)
			rec := do(r, http.MethodPost, "/snapshots/"+repository.NewSnapshotID()+"/restore", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When listing with a bad limit", func() {
			So(do(r, http.MethodGet, "/snapshots?limit=x", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(r, http.MethodGet, "/snapshots?limit=-1", "").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

// stubDeps fails every call with err.
type stubDeps struct{ err error }

func (s stubDeps) CreatePointEvent(context.Context, service.EventInput) error  { return s.err }
func (s stubDeps) CreateDurationSpan(context.Context, service.SpanInput) error { return s.err }
func (s stubDeps) DeleteByID(context.Context, string) (int, error)             { return 0, s.err }
func (s stubDeps) SetViewport(context.Context, float64, int, int) error        { return s.err }
func (s stubDeps) Export(context.Context, document.Format) ([]byte, error)     { return nil, s.err }
func (s stubDeps) Import(context.Context, []byte, document.Format) (document.Report, error) {
	return document.Report{}, s.err
}
func (s stubDeps) Render(context.Context, service.RenderRequest) (service.RenderOutput, error) {
	return service.RenderOutput{}, s.err
}
func (s stubDeps) Snapshot(context.Context) (repository.Snapshot, error) {
	return repository.Snapshot{}, s.err
}
func (s stubDeps) Snapshots(context.Context, int) ([]repository.Snapshot, error) { return nil, s.err }
func (s stubDeps) Restore(context.Context, string) (document.Report, error) {
	return document.Report{}, s.err
}
func (s stubDeps) GetStats(context.Context) map[string]interface{} {
	return map[string]interface{}{"started": false}
}

func TestErrorMapping(t *testing.T) {
	Convey("Given dependencies that fail", t, func() {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{service.ErrBackpressure, http.StatusTooManyRequests, "backpressure"},
			{service.ErrNotStarted, http.StatusServiceUnavailable, "unavailable"},
			{repository.ErrNotFound, http.StatusNotFound, "not_found"},
			{errors.New("disk on fire"), http.StatusInternalServerError, "internal"},
		}
		for _, c := range cases {
			r := newRouter(stubDeps{err: c.err}, stubDeps{err: c.err})
			rec := do(r, http.MethodPost, "/events", `{"id":"a","date":"2000-01-01"}`)
			So(rec.Code, ShouldEqual, c.status)
			So(decode(rec)["code"], ShouldEqual, c.code)
		}
	})

	Convey("Given a caller-supplied request id", t, func() {
		r := newRouter(stubDeps{}, stubDeps{})
		rec := do(r, http.MethodGet, "/stats", "", api.RequestIDHeader, "req-42")
		So(rec.Header().Get(api.RequestIDHeader), ShouldEqual, "req-42")
		So(decode(rec)["started"], ShouldEqual, false)
	})

	Convey("Given an unknown route", t, func() {
		r := newRouter(stubDeps{}, stubDeps{})
		rec := do(r, http.MethodGet, "/calendar", "")
		So(rec.Code, ShouldEqual, http.StatusNotFound)
		So(decode(rec)["code"], ShouldEqual, "not_found")
	})
}

func TestHealthEndpoint(t *testing.T) {
	Convey("Given the health endpoint", t, func() {
		r := newRouter(stubDeps{}, stubDeps{})

		Convey("Then JSON clients get a status", func() {
			rec := do(r, http.MethodGet, "/healthz", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec)["status"], ShouldEqual, "ok")
		})

		Convey("Then scrapers get the exposition format", func() {
			rec := do(r, http.MethodGet, "/healthz", "", "Accept", "text/plain")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "timeline_")
		})
	})
}
