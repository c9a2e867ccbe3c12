package poporing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"poporingbot/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(seaURL, globalURL string) *Client {
	return NewClient(Options{
		SEABaseURL:    seaURL,
		GlobalBaseURL: globalURL,
		Timeout:       2 * time.Second,
		RetryMax:      1,
		RetryWaitMin:  time.Millisecond,
		RetryWaitMax:  time.Millisecond,
	})
}

func TestClient_FetchItemList(t *testing.T) {
	var gotOrigin, gotUA, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOrigin = r.Header.Get("Origin")
		gotUA = r.Header.Get("User-Agent")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"item_list":[
			{"name":"red_potion","display_name":"Red Potion","image_url":"red_potion.png"},
			{"name":"jellopy","display_name":"Jellopy","alt_display_name_list":["Jelly"]}
		]}}`))
	}))
	defer srv.Close()

	items, err := newTestClient(srv.URL, srv.URL).FetchItemList(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/get_item_list", gotPath)
	assert.Equal(t, "https://poporing.life", gotOrigin)
	assert.Equal(t, UserAgent, gotUA)
	require.Len(t, items, 2)
	assert.Equal(t, "red_potion", items[0].Name)
	assert.Equal(t, "red_potion.png", items[0].ImageURL)
	assert.Equal(t, []string{"Jelly"}, items[1].AltDisplayNames)
}

func TestClient_FetchLatestPrice_SelectsRegionHost(t *testing.T) {
	handler := func(label string, origin *string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			*origin = r.Header.Get("Origin")
			assert.Equal(t, "/get_latest_price/red_potion", r.URL.Path, label)
			_, _ = w.Write([]byte(`{"data":{"data":{"price":100,"volume":50,"timestamp":1549000000,"last_known_price":90,"last_known_timestamp":1548000000}}}`))
		}
	}

	var seaOrigin, globalOrigin string
	sea := httptest.NewServer(handler("sea", &seaOrigin))
	defer sea.Close()
	global := httptest.NewServer(handler("global", &globalOrigin))
	defer global.Close()

	client := newTestClient(sea.URL, global.URL)

	price, err := client.FetchLatestPrice(context.Background(), entities.RegionGlobal, "red_potion")
	require.NoError(t, err)
	assert.Equal(t, "https://global.poporing.life", globalOrigin)
	assert.Empty(t, seaOrigin)
	assert.Equal(t, entities.PriceData{
		Price:              100,
		Volume:             50,
		Timestamp:          1549000000,
		LastKnownPrice:     90,
		LastKnownTimestamp: 1548000000,
	}, price)

	_, err = client.FetchLatestPrice(context.Background(), entities.RegionSEA, "red_potion")
	require.NoError(t, err)
	assert.Equal(t, "https://poporing.life", seaOrigin)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			name:    "not found status",
			status:  http.StatusNotFound,
			body:    `{}`,
			wantErr: ErrUpstream,
		},
		{
			name:    "server error after retries",
			status:  http.StatusInternalServerError,
			body:    `oops`,
			wantErr: ErrUpstream,
		},
		{
			name:    "invalid json",
			status:  http.StatusOK,
			body:    `<html>`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "missing inner data",
			status:  http.StatusOK,
			body:    `{"data":{}}`,
			wantErr: ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL, srv.URL).FetchLatestPrice(context.Background(), entities.RegionSEA, "red_potion")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), err.Error())
		})
	}
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"item_list":[]}}`))
	}))
	defer srv.Close()

	items, err := newTestClient(srv.URL, srv.URL).FetchItemList(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_MissingItemList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":null}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, srv.URL).FetchItemList(context.Background())
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}
