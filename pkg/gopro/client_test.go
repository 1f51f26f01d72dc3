package gopro

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddr(t *testing.T) {
	tests := []struct {
		serial  string
		want    string
		wantErr bool
	}{
		{serial: "322", want: "172.23.122.51"},
		{serial: "907", want: "172.29.107.51"},
		{serial: "32", wantErr: true},
		{serial: "3222", wantErr: true},
		{serial: "3a2", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.serial, func(t *testing.T) {
			got, err := Addr(tc.serial)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClient_StreamCommands(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	c := NewWithURL(srv.URL)
	require.NoError(t, c.StreamStart(context.Background()))
	require.NoError(t, c.StreamStop(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/gopro/camera/stream/start", "/gopro/camera/stream/stop"}, paths)
}

func TestClient_StreamStartError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewWithURL(srv.URL).StreamStart(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestNew_InvalidSerial(t *testing.T) {
	_, err := New("x")
	assert.Error(t, err)
}
