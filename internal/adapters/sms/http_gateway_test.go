package sms

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type recordingServer struct {
	mu    sync.Mutex
	paths []string
	srv   *httptest.Server
}

func newRecordingServer(t *testing.T, handler func(path string) (int, string)) *recordingServer {
	rs := &recordingServer{}
	rs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.mu.Lock()
		rs.paths = append(rs.paths, r.URL.Path)
		rs.mu.Unlock()
		status, body := handler(r.URL.Path)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(rs.srv.Close)
	return rs
}

func (rs *recordingServer) recorded() []string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]string(nil), rs.paths...)
}

func (rs *recordingServer) reset() {
	rs.mu.Lock()
	rs.paths = nil
	rs.mu.Unlock()
}

// TestRequestOTP_FallsBackAcrossShapes verifies the template shape failing moves on to the next.
func TestRequestOTP_FallsBackAcrossShapes(t *testing.T) {
	rs := newRecordingServer(t, func(path string) (int, string) {
		if strings.HasSuffix(path, "/AUTOGEN/login") {
			return http.StatusBadRequest, `{"Status":"Error","Details":"bad template"}`
		}
		return http.StatusOK, `{"Status":"Success","Details":"sess-42"}`
	})
	g := NewHTTPGateway(Config{BaseURL: rs.srv.URL, APIKey: "key", Template: "login"})

	res, err := g.RequestOTP(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("RequestOTP: %v", err)
	}
	if !res.Delivered || res.SessionID != "sess-42" {
		t.Errorf("result = %+v", res)
	}
	if paths := rs.recorded(); len(paths) != 2 || paths[1] != "/key/SMS/9876543210/AUTOGEN" {
		t.Errorf("paths = %v", paths)
	}
}

// TestRequestOTP_AllShapesFail returns ErrAllEndpointsFailed after trying every shape.
func TestRequestOTP_AllShapesFail(t *testing.T) {
	rs := newRecordingServer(t, func(string) (int, string) {
		return http.StatusOK, `{"Status":"Error","Details":"invalid key"}`
	})
	g := NewHTTPGateway(Config{BaseURL: rs.srv.URL, APIKey: "key"})

	res, err := g.RequestOTP(context.Background(), "9876543210")
	if !errors.Is(err, ErrAllEndpointsFailed) {
		t.Fatalf("err = %v, want ErrAllEndpointsFailed", err)
	}
	if res.Delivered || res.Reason != ReasonRejected {
		t.Errorf("result = %+v", res)
	}
	if paths := rs.recorded(); len(paths) != 2 || !strings.Contains(paths[1], "+91") {
		t.Errorf("paths = %v", paths)
	}
}

// TestRequestOTP_DryRun makes no network call and previews the URL with the key hidden.
func TestRequestOTP_DryRun(t *testing.T) {
	rs := newRecordingServer(t, func(string) (int, string) { return http.StatusOK, "{}" })
	g := NewHTTPGateway(Config{BaseURL: rs.srv.URL, APIKey: "secret", DryRun: true})

	res, err := g.RequestOTP(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("RequestOTP: %v", err)
	}
	if res.Delivered || res.Reason != ReasonDryRun || res.SessionID == "" {
		t.Errorf("result = %+v", res)
	}
	if strings.Contains(res.Preview, "secret") || !strings.Contains(res.Preview, "/SMS/9876543210/AUTOGEN") {
		t.Errorf("preview = %q", res.Preview)
	}
	if paths := rs.recorded(); len(paths) != 0 {
		t.Errorf("dry run hit the network: %v", paths)
	}
	if g.Name() != ReasonDryRun {
		t.Errorf("Name = %q", g.Name())
	}
}

// TestNewHTTPGateway_EmptyKeyIsDryRun forces dry-run without credentials.
func TestNewHTTPGateway_EmptyKeyIsDryRun(t *testing.T) {
	if !NewHTTPGateway(Config{}).DryRun() {
		t.Error("empty API key should force dry run")
	}
}

// TestVerifyOTP covers match, mismatch and the phone-keyed fallback.
func TestVerifyOTP(t *testing.T) {
	rs := newRecordingServer(t, func(path string) (int, string) {
		switch {
		case strings.Contains(path, "/VERIFY/down/"):
			return http.StatusBadGateway, ""
		case strings.HasSuffix(path, "/123456"):
			return http.StatusOK, `{"Status":"Success","Details":"OTP Matched"}`
		default:
			return http.StatusOK, `{"Status":"Error","Details":"OTP Mismatch"}`
		}
	})
	g := NewHTTPGateway(Config{BaseURL: rs.srv.URL, APIKey: "key"})
	ctx := context.Background()

	if res, err := g.VerifyOTP(ctx, "sess", "9876543210", "123456"); err != nil || !res.Verified {
		t.Errorf("match = %+v, %v", res, err)
	}
	if res, err := g.VerifyOTP(ctx, "sess", "9876543210", "000000"); err != nil || res.Verified || res.Reason != ReasonMismatch {
		t.Errorf("mismatch = %+v, %v", res, err)
	}
	rs.reset()
	if res, err := g.VerifyOTP(ctx, "down", "9876543210", "123456"); err != nil || !res.Verified {
		t.Errorf("fallback = %+v, %v", res, err)
	}
	if paths := rs.recorded(); len(paths) != 2 || !strings.Contains(paths[1], "/VERIFY3/9876543210/") {
		t.Errorf("paths = %v", paths)
	}
}

type failingDoer struct{ calls int }

func (d *failingDoer) Do(*http.Request) (*http.Response, error) {
	d.calls++
	return nil, errors.New("connection refused")
}

// TestVerifyOTP_TransportErrorsTryEveryShape surfaces ErrAllEndpointsFailed when no shape answers.
func TestVerifyOTP_TransportErrorsTryEveryShape(t *testing.T) {
	g := NewHTTPGateway(Config{APIKey: "key"})
	doer := &failingDoer{}
	g.SetHTTPClient(doer)

	_, err := g.VerifyOTP(context.Background(), "sess", "9876543210", "123456")
	if !errors.Is(err, ErrAllEndpointsFailed) {
		t.Fatalf("err = %v, want ErrAllEndpointsFailed", err)
	}
	if doer.calls != 2 {
		t.Errorf("calls = %d, want 2", doer.calls)
	}
}
