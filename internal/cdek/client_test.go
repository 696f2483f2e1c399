package cdek

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	tokenCalls  int
	citiesJSON  string
	pointsJSON  string
	lastCityQ   string
	lastPointsQ string
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls++
		if r.PostFormValue("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fmt.Fprintf(w, `{"access_token":"tok-%d","expires_in":3600}`, f.tokenCalls)
	})
	mux.HandleFunc("/location/cities", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.lastCityQ = r.URL.Query().Get("city")
		fmt.Fprint(w, f.citiesJSON)
	})
	mux.HandleFunc("/deliverypoints", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.lastPointsQ = r.URL.RawQuery
		fmt.Fprint(w, f.pointsJSON)
	})
	return mux
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL:      srv.URL,
		ClientID:     "id",
		ClientSecret: "secret",
		PageSize:     50,
	})
}

func TestResolveCity(t *testing.T) {
	api := &fakeAPI{citiesJSON: `[{"code":270,"city":"Новосибирск"},{"code":44,"city":"Москва"}]`}
	client := newTestClient(t, api)

	code, err := client.ResolveCity(context.Background(), "  Новосибирск ")
	require.NoError(t, err)
	assert.Equal(t, 270, code, "first match wins")
	assert.Equal(t, "Новосибирск", api.lastCityQ, "query is trimmed")
}

func TestResolveCityNotFound(t *testing.T) {
	api := &fakeAPI{citiesJSON: `[]`}
	client := newTestClient(t, api)

	_, err := client.ResolveCity(context.Background(), "Атлантида")
	assert.ErrorIs(t, err, ErrCityNotFound)
}

func TestPickupPoints(t *testing.T) {
	api := &fakeAPI{pointsJSON: `[
		{"code":"NSK1","name":"На Ленина","address":" г. Новосибирск, ул. Ленина, 1 ","address_comment":"вход со двора"},
		{"code":"NSK2","name":"На Кирова","address":"ул. Кирова, 25"}
	]`}
	client := newTestClient(t, api)

	points, err := client.PickupPoints(context.Background(), 270)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "NSK1", points[0].Code)
	assert.Equal(t, "г. Новосибирск, ул. Ленина, 1", points[0].Address, "address is trimmed")
	assert.Equal(t, "вход со двора", points[0].AddressComment)
	assert.Contains(t, api.lastPointsQ, "city_code=270")
	assert.Contains(t, api.lastPointsQ, "type=PVZ")
	assert.Contains(t, api.lastPointsQ, "size=50")
}

func TestTokenCachedAcrossCalls(t *testing.T) {
	api := &fakeAPI{citiesJSON: `[{"code":1}]`, pointsJSON: `[]`}
	client := newTestClient(t, api)
	ctx := context.Background()

	_, err := client.ResolveCity(ctx, "Москва")
	require.NoError(t, err)
	_, err = client.PickupPoints(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, api.tokenCalls, "token fetched once while fresh")

	// Simulate expiry; the next call must fetch a new token.
	client.mu.Lock()
	client.expiresAt = time.Now().Add(-time.Second)
	client.mu.Unlock()

	_, err = client.ResolveCity(ctx, "Москва")
	require.NoError(t, err)
	assert.Equal(t, 2, api.tokenCalls)
}

func TestTokenFailurePropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	client := New(Config{BaseURL: srv.URL, ClientID: "id", ClientSecret: "bad"})
	_, err := client.ResolveCity(context.Background(), "Москва")
	assert.Error(t, err)
}
