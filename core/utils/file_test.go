package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchBytes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cover.png":
			w.Write([]byte("png-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()
	ctx := context.Background()

	data, err := FetchBytes(ctx, ts.URL+"/cover.png", 1024)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	_, err = FetchBytes(ctx, ts.URL+"/missing.png", 1024)
	assert.Error(t, err)

	_, err = FetchBytes(ctx, ts.URL+"/cover.png", 4)
	assert.ErrorIs(t, err, ErrTooLarge)
}
