package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/salonluxe/api/internal/platform/requestctx"
)

func TestDecodeTraceHeader(t *testing.T) {
	cases := []struct {
		name        string
		header      string
		wantOK      bool
		wantTraceID string
		wantSpanID  string
		wantSampled bool
	}{
		{
			name:        "hex span sampled",
			header:      "105445aa7843bc8bf206b12000100000/00f067aa0ba902b7;o=1",
			wantOK:      true,
			wantTraceID: "105445aa7843bc8bf206b12000100000",
			wantSpanID:  "00f067aa0ba902b7",
			wantSampled: true,
		},
		{
			name:        "decimal span unsampled",
			header:      "105445aa7843bc8bf206b12000100000/12345;o=0",
			wantOK:      true,
			wantTraceID: "105445aa7843bc8bf206b12000100000",
			wantSpanID:  "0000000000003039",
			wantSampled: false,
		},
		{
			name:        "short hex span is left padded",
			header:      "105445aa7843bc8bf206b12000100000/a2b4",
			wantOK:      true,
			wantTraceID: "105445aa7843bc8bf206b12000100000",
			wantSpanID:  "000000000000a2b4",
			wantSampled: false,
		},
		{name: "missing span part", header: "105445aa7843bc8bf206b12000100000", wantOK: false},
		{name: "bad trace id", header: "nothex/00f067aa0ba902b7;o=1", wantOK: false},
		{name: "empty header", header: "", wantOK: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			info, remote, ok := decodeTraceHeader(tc.header)
			if ok != tc.wantOK {
				t.Fatalf("expected ok=%v, got %v", tc.wantOK, ok)
			}
			if !tc.wantOK {
				return
			}
			if info.TraceID != tc.wantTraceID || info.SpanID != tc.wantSpanID || info.Sampled != tc.wantSampled {
				t.Fatalf("unexpected trace info %+v", info)
			}
			if !remote.IsRemote() || remote.TraceID().String() != tc.wantTraceID {
				t.Fatalf("unexpected remote span context %+v", remote)
			}
		})
	}
}

func TestEncodeTraceHeader(t *testing.T) {
	header := encodeTraceHeader(requestctx.TraceInfo{
		TraceID: "105445aa7843bc8bf206b12000100000",
		SpanID:  "00f067aa0ba902b7",
		Sampled: true,
	})
	if header != "105445aa7843bc8bf206b12000100000/00f067aa0ba902b7;o=1" {
		t.Fatalf("unexpected header %q", header)
	}
	if encodeTraceHeader(requestctx.TraceInfo{TraceID: "only-trace"}) != "" {
		t.Fatalf("expected empty header when span id is missing")
	}
}

func TestTraceMiddlewareContinuesIncomingTrace(t *testing.T) {
	var seen requestctx.TraceInfo
	handler := TraceMiddleware("demo-project")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = requestctx.Trace(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Cloud-Trace-Context", "105445aa7843bc8bf206b12000100000/00f067aa0ba902b7;o=1")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if seen.TraceID != "105445aa7843bc8bf206b12000100000" {
		t.Fatalf("expected incoming trace id to continue, got %q", seen.TraceID)
	}
	if seen.ProjectID != "demo-project" || !seen.Sampled {
		t.Fatalf("unexpected trace info %+v", seen)
	}
	if got := rr.Header().Get("X-Cloud-Trace-Context"); got != "105445aa7843bc8bf206b12000100000/00f067aa0ba902b7;o=1" {
		t.Fatalf("unexpected echoed header %q", got)
	}
}
