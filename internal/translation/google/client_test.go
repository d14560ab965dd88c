package google

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"resty.dev/v3"
)

func TestClient_Translate(t *testing.T) {
	tests := []struct {
		name              string
		text              string
		maxRetryAttempts  uint
		mockServerHandler func(t *testing.T, calls int32, w http.ResponseWriter, r *http.Request)

		want            string
		wantCalls       int32
		wantError       bool
		wantErrorString string
	}{
		{
			name: "joins translated segments",
			text: "Cache first. Then the database.",
			mockServerHandler: func(t *testing.T, calls int32, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/translate_a/single", r.URL.Path)
				query := r.URL.Query()
				assert.Equal(t, "gtx", query.Get("client"))
				assert.Equal(t, "auto", query.Get("sl"))
				assert.Equal(t, "zh-CN", query.Get("tl"))
				assert.Equal(t, "t", query.Get("dt"))
				assert.Equal(t, "Cache first. Then the database.", query.Get("q"))

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[[["先缓存。","Cache first.",null,null,10],["然后是数据库。","Then the database.",null,null,10]],null,"en"]`))
			},
			want:      "先缓存。然后是数据库。",
			wantCalls: 1,
		},
		{
			name:             "retries server errors",
			maxRetryAttempts: 2,
			mockServerHandler: func(t *testing.T, calls int32, w http.ResponseWriter, r *http.Request) {
				if calls == 1 {
					w.WriteHeader(http.StatusServiceUnavailable)
					return
				}
				_, _ = w.Write([]byte(`[[["你好","hello",null,null,1]],null,"en"]`))
			},
			want:      "你好",
			wantCalls: 2,
		},
		{
			name:             "gives up after the retry budget",
			maxRetryAttempts: 1,
			mockServerHandler: func(t *testing.T, calls int32, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			wantCalls:       2,
			wantError:       true,
			wantErrorString: "response error 429",
		},
		{
			name:             "does not retry client errors",
			maxRetryAttempts: 3,
			mockServerHandler: func(t *testing.T, calls int32, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			},
			wantCalls:       1,
			wantError:       true,
			wantErrorString: "response error 400",
		},
		{
			name: "malformed body",
			mockServerHandler: func(t *testing.T, calls int32, w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>blocked</html>`))
			},
			wantCalls:       1,
			wantError:       true,
			wantErrorString: "invalid translation response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.mockServerHandler(t, calls.Add(1), w, r)
			}))
			defer server.Close()

			client := &Client{
				httpClient:       resty.New().SetBaseURL(server.URL),
				maxRetryAttempts: tt.maxRetryAttempts,
			}
			defer func() {
				_ = client.Close()
			}()

			text := tt.text
			if text == "" {
				text = "hello"
			}
			got, err := client.Translate(context.Background(), text, "zh-CN")
			assert.Equal(t, tt.wantCalls, calls.Load())
			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrorString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "single segment", body: `[[["bonjour","hello",null,null,1]],null,"en"]`, want: "bonjour"},
		{name: "no segments", body: `[[],null,"en"]`, wantErr: true},
		{name: "not json", body: `oops`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseResponse(tt.body)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), want: true},
		{name: "timeout", err: errors.New("read tcp: i/o timeout"), want: true},
		{name: "server error", err: errors.New("response error 502: bad gateway"), want: true},
		{name: "rate limited", err: errors.New("response error 429: too many requests"), want: true},
		{name: "bad request", err: errors.New("response error 400: bad request"), want: false},
		{name: "invalid body", err: errors.New("invalid translation response"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}
