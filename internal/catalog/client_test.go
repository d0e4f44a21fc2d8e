package catalog

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func Test_Client_Fetch(t *testing.T) {
	testCases := []struct {
		name          string
		status        int
		body          string
		expectedCount int
		expectError   bool
	}{
		{
			name:          "Success - products decoded",
			status:        http.StatusOK,
			body:          `[{"id":1,"title":"Backpack","price":109.95,"category":"men's clothing","rating":{"rate":3.9,"count":120}},{"id":2,"title":"T-Shirt","price":22.3}]`,
			expectedCount: 2,
		},
		{
			name:          "Success - empty catalog",
			status:        http.StatusOK,
			body:          `[]`,
			expectedCount: 0,
		},
		{
			name:        "Error - non-2xx response",
			status:      http.StatusInternalServerError,
			body:        `oops`,
			expectError: true,
		},
		{
			name:        "Error - malformed payload",
			status:      http.StatusOK,
			body:        `{"not":"an array"}`,
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()
			client := NewClient(srv.URL, time.Second, newTestLogger())
			// when
			raws, err := client.Fetch(context.Background())
			// then
			if tc.expectError {
				require.Error(t, err)
				var netErr *NetworkError
				assert.ErrorAs(t, err, &netErr)
				assert.Nil(t, raws)
				return
			}
			require.NoError(t, err)
			assert.Len(t, raws, tc.expectedCount)
		})
	}
}

func Test_Client_Fetch_TransportError(t *testing.T) {
	// given a server that is already gone
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := srv.URL
	srv.Close()
	client := NewClient(url, time.Second, newTestLogger())
	// when
	raws, err := client.Fetch(context.Background())
	// then
	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
	assert.Nil(t, raws)
}

func Test_Client_Fetch_FieldMapping(t *testing.T) {
	// given
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":7,"title":"Ring","price":9.99,"category":"jewelery","image":"https://example.com/ring.jpg","description":"Shiny","rating":{"rate":4.5,"count":30}}]`))
	}))
	defer srv.Close()
	client := NewClient(srv.URL, time.Second, newTestLogger())
	// when
	raws, err := client.Fetch(context.Background())
	// then
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, RawProduct{
		ID:          7,
		Title:       "Ring",
		Price:       9.99,
		Category:    "jewelery",
		Image:       "https://example.com/ring.jpg",
		Description: "Shiny",
		Rating:      Rating{Rate: 4.5, Count: 30},
	}, raws[0])
}
