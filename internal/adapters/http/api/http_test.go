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

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/outreach/internal/adapters/http/api"
	service "github.com/okian/outreach/internal/app"
	"github.com/okian/outreach/internal/domain/pacing"
	"github.com/okian/outreach/internal/domain/ratelimit"
)

const postsBody = `{"posts":[
 {"id":"1","url":"https://x/p/1","title":"AI agents","content":"Building AI agents","likes":40,"comments":"8","posted_relative":"2h","category":"tech"},
 {"id":"2","url":"https://x/p/2","title":"Weekend","content":"Hiking","likes":"1.2K","comments":3,"posted_relative":"3w"}
]}`

func newTestServer(t *testing.T, opts ...service.Option) (*httptest.Server, *service.Service) {
	t.Helper()
	base := []service.Option{
		service.WithDataDir(t.TempDir()),
		service.WithPacing(pacing.WithSleep(func(context.Context, time.Duration) error { return nil }), pacing.WithBreakPolicy(1000, 0)),
	}
	svc := service.New(append(base, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	srv := httptest.NewServer(api.NewServer(svc, api.WithMaxBodyBytes(1<<16)).Handler(context.Background()))
	t.Cleanup(func() {
		srv.Close()
		svc.Stop()
	})
	return srv, svc
}

func do(srv *httptest.Server, method, path, body string) *http.Response {
	req, _ := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	So(err, ShouldBeNil)
	return resp
}

func decode(resp *http.Response, v any) {
	defer resp.Body.Close()
	So(json.NewDecoder(resp.Body).Decode(v), ShouldBeNil)
}

func TestServer_Posts(t *testing.T) {
	Convey("Given a running API", t, func() {
		srv, _ := newTestServer(t)

		Convey("POST /posts/rank returns ranked posts with positions", func() {
			resp := do(srv, http.MethodPost, "/posts/rank", strings.Replace(postsBody, `{"posts"`, `{"mode":"engagement","top_n":1,"posts"`, 1))
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			var out []map[string]any
			decode(resp, &out)
			So(out, ShouldHaveLength, 1)
			So(out[0]["rank"], ShouldEqual, 1.0)
			So(out[0]["mode"], ShouldEqual, "engagement")
			So(out[0], ShouldContainKey, "sub_scores")
		})

		Convey("Malformed JSON is a 400 with a request ID", func() {
			resp := do(srv, http.MethodPost, "/posts/rank", `{"posts":`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			So(resp.Header.Get(api.HeaderRequestID), ShouldNotBeEmpty)
			var e map[string]string
			decode(resp, &e)
			So(e["code"], ShouldEqual, "bad_request")
			So(e["request_id"], ShouldEqual, resp.Header.Get(api.HeaderRequestID))
		})

		Convey("Oversized bodies are rejected", func() {
			big := `{"posts":[{"content":"` + strings.Repeat("a", 1<<17) + `"}]}`
			resp := do(srv, http.MethodPost, "/posts/rank", big)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			resp.Body.Close()
		})

		Convey("POST /posts/comment-opportunities honors max_results", func() {
			resp := do(srv, http.MethodPost, "/posts/comment-opportunities", strings.Replace(postsBody, `{"posts"`, `{"max_results":1,"posts"`, 1))
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			var out []map[string]any
			decode(resp, &out)
			So(out, ShouldHaveLength, 1)
			So(out[0], ShouldContainKey, "reasons")
		})

		Convey("The dashboard is 404 until a report exists", func() {
			resp := do(srv, http.MethodGet, "/dashboard", "")
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			resp.Body.Close()

			Convey("POST /posts/report feeds it", func() {
				resp := do(srv, http.MethodPost, "/posts/report", postsBody)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var rep map[string]any
				decode(resp, &rep)
				So(rep["total_posts_analyzed"], ShouldEqual, 2.0)

				resp = do(srv, http.MethodGet, "/dashboard", "")
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(resp.Header.Get("Content-Type"), ShouldStartWith, "text/html")
				var page bytes.Buffer
				_, _ = page.ReadFrom(resp.Body)
				resp.Body.Close()
				So(page.String(), ShouldContainSubstring, "echarts")
			})
		})
	})
}

func TestServer_Profiles(t *testing.T) {
	Convey("POST /profiles/rank applies request criteria", t, func() {
		srv, _ := newTestServer(t)
		body := `{"criteria":{"titles":["cto"],"connection_degrees":[1]},"top_n":5,"profiles":[
			{"id":"a","name":"Ann","title":"Designer","connection_degree":"1st"},
			{"id":"b","name":"Bo","title":"CTO","connection_degree":1}]}`
		resp := do(srv, http.MethodPost, "/profiles/rank", body)
		So(resp.StatusCode, ShouldEqual, http.StatusOK)
		var out []map[string]any
		decode(resp, &out)
		So(out, ShouldHaveLength, 2)
		So(out[0]["profile"].(map[string]any)["id"], ShouldEqual, "b")
		So(out[0], ShouldContainKey, "category")
	})
}

func TestServer_Pacer(t *testing.T) {
	Convey("Given an API allowing one comment a day", t, func() {
		limits := ratelimit.DefaultLimits()
		limits.CommentsPerDay = 1
		srv, _ := newTestServer(t, service.WithLimits(limits))

		Convey("The first comment is recorded", func() {
			resp := do(srv, http.MethodPost, "/pacer/record/comment", `{"target":"https://x/p/1"}`)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			resp.Body.Close()

			Convey("The second is refused with 429", func() {
				resp := do(srv, http.MethodPost, "/pacer/record/comment", "")
				So(resp.StatusCode, ShouldEqual, http.StatusTooManyRequests)
				var e map[string]string
				decode(resp, &e)
				So(e["code"], ShouldEqual, "rate_limited")
			})

			Convey("Admission reports the refusal without recording", func() {
				resp := do(srv, http.MethodGet, "/pacer/admit/comment", "")
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var a map[string]any
				decode(resp, &a)
				So(a["allowed"], ShouldBeFalse)
			})

			Convey("Status shows the usage", func() {
				resp := do(srv, http.MethodGet, "/pacer/status", "")
				var st map[string]any
				decode(resp, &st)
				So(st["comments_today"], ShouldEqual, 1.0)
				So(st["can_comment"], ShouldBeFalse)
			})

			Convey("The action is journaled", func() {
				resp := do(srv, http.MethodGet, "/actions?limit=5", "")
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var actions []map[string]any
				decode(resp, &actions)
				So(actions, ShouldHaveLength, 1)
				So(actions[0]["target"], ShouldEqual, "https://x/p/1")
			})
		})

		Convey("Unknown kinds are a 400", func() {
			resp := do(srv, http.MethodPost, "/pacer/record/follow", "")
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			resp.Body.Close()
		})

		Convey("A negative journal limit is a 400", func() {
			resp := do(srv, http.MethodGet, "/actions?limit=-1", "")
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			resp.Body.Close()
		})
	})
}

func TestServer_Campaigns(t *testing.T) {
	Convey("Given a running API with the dry-run actor", t, func() {
		srv, _ := newTestServer(t)

		Convey("A comment campaign is accepted and completes", func() {
			body := `{"targets":[{"post":{"id":"1","url":"https://x/p/1"},"score":0.8}],"comments":["Nice"],"limit":1}`
			resp := do(srv, http.MethodPost, "/campaigns/comments", body)
			So(resp.StatusCode, ShouldEqual, http.StatusAccepted)
			loc := resp.Header.Get("Location")
			So(loc, ShouldStartWith, "/campaigns/")
			resp.Body.Close()

			var st map[string]any
			deadline := time.Now().Add(3 * time.Second)
			for time.Now().Before(deadline) {
				st = nil
				decode(do(srv, http.MethodGet, loc, ""), &st)
				if st["state"] == "done" {
					break
				}
				time.Sleep(10 * time.Millisecond)
			}
			So(st["state"], ShouldEqual, "done")

			var list []map[string]any
			decode(do(srv, http.MethodGet, "/campaigns", ""), &list)
			So(list, ShouldHaveLength, 1)
		})

		Convey("A message campaign without a template is a 400", func() {
			resp := do(srv, http.MethodPost, "/campaigns/messages", `{"profiles":[],"template":""}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			resp.Body.Close()
		})

		Convey("Unknown campaigns are a 404", func() {
			resp := do(srv, http.MethodGet, "/campaigns/nope", "")
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			resp.Body.Close()
		})
	})
}

func TestServer_Ops(t *testing.T) {
	Convey("Given a running API", t, func() {
		srv, _ := newTestServer(t)

		Convey("GET /healthz serves Prometheus exposition", func() {
			do(srv, http.MethodPost, "/posts/rank", postsBody).Body.Close()
			resp := do(srv, http.MethodGet, "/healthz", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			var body bytes.Buffer
			_, _ = body.ReadFrom(resp.Body)
			resp.Body.Close()
			So(body.String(), ShouldContainSubstring, "outreach_engine_http_requests_total")
		})

		Convey("GET /stats reports the service state", func() {
			var stats map[string]any
			decode(do(srv, http.MethodGet, "/stats", ""), &stats)
			So(stats["started"], ShouldBeTrue)
			So(stats, ShouldContainKey, "limiter")
		})

		Convey("A client request ID is echoed", func() {
			req, _ := http.NewRequest(http.MethodGet, srv.URL+"/stats", nil)
			req.Header.Set(api.HeaderRequestID, "abc-123")
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			resp.Body.Close()
			So(resp.Header.Get(api.HeaderRequestID), ShouldEqual, "abc-123")
		})

		Convey("Wrong methods are rejected by the mux", func() {
			resp := do(srv, http.MethodGet, "/posts/rank", "")
			So(resp.StatusCode, ShouldEqual, http.StatusMethodNotAllowed)
			resp.Body.Close()
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("WrapKind exposes both kind and cause", t, func() {
		cause := context.DeadlineExceeded
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)
		So(err.Error(), ShouldEqual, "api.op: bad request: context deadline exceeded")
		So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
		So(errors.Is(err, cause), ShouldBeTrue)
		So(api.NewKind("api.op", api.ErrNotFound).Error(), ShouldEqual, "api.op: not found")
	})
}
