package gstin

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/timberline-erp/timberline/internal/shared"
)

type memoryRepo struct {
	records map[string]Record
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[string]Record)}
}

func (r *memoryRepo) Get(ctx context.Context, gstin string) (Record, error) {
	rec, ok := r.records[gstin]
	if !ok {
		return Record{}, shared.ErrNotFound
	}
	return rec, nil
}

func (r *memoryRepo) Upsert(ctx context.Context, record Record) error {
	r.records[record.GSTIN] = record
	return nil
}

const validGSTIN = "27AAPFU0939F1ZV"

func TestValidateFormat(t *testing.T) {
	require.NoError(t, Validate(validGSTIN))
	require.ErrorIs(t, Validate("27AAPFU0939F1Z"), ErrInvalidGSTIN)    // short
	require.ErrorIs(t, Validate("XXAAPFU0939F1ZV"), ErrInvalidGSTIN)  // state prefix
	require.ErrorIs(t, Validate("27aapfu0939f1zv"), ErrInvalidGSTIN)  // lower case
	require.ErrorIs(t, Validate("27AAPFU0939F1AV"), ErrInvalidGSTIN)  // missing Z
}

func TestLookupNormalisesInput(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(slog.Default(), repo, nil, nil, time.Minute)

	result, err := svc.Lookup(context.Background(), "  27aapfu0939f1zv ")
	require.NoError(t, err)
	require.Equal(t, validGSTIN, result.Data.GSTIN)
}

func TestLookupDatabaseSource(t *testing.T) {
	repo := newMemoryRepo()
	repo.records[validGSTIN] = Record{
		GSTIN: validGSTIN, LegalName: "Universal Timber", State: "Maharashtra", StateCode: "27", Status: "Active",
	}
	svc := NewService(slog.Default(), repo, nil, nil, time.Minute)

	result, err := svc.Lookup(context.Background(), validGSTIN)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, SourceDatabase, result.Source)
	require.Equal(t, "Universal Timber", result.Data.LegalName)
}

func TestLookupDummyFallbackIsDeterministic(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(slog.Default(), repo, nil, nil, time.Minute)

	first, err := svc.Lookup(context.Background(), validGSTIN)
	require.NoError(t, err)
	require.True(t, first.Success)
	require.Equal(t, SourceDummy, first.Source)
	require.Equal(t, "Maharashtra", first.Data.State)
	require.Equal(t, "27", first.Data.StateCode)

	second, err := svc.Lookup(context.Background(), validGSTIN)
	require.NoError(t, err)
	require.Equal(t, first.Data, second.Data)
}

func TestLookupDummyUnknownState(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(slog.Default(), repo, nil, nil, time.Minute)

	result, err := svc.Lookup(context.Background(), "99AAPFU0939F1ZV")
	require.NoError(t, err)
	require.Equal(t, SourceDummy, result.Source)
	require.Equal(t, "Unknown State", result.Data.State)
}

func TestLookupAPISourceStoresRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/"+validGSTIN, r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"gstin":"` + validGSTIN + `","lgnm":"Universal Timber LLP","sts":"Active","pradr":{"bno":"12","st":"Mill Road","city":"Pune","stcd":"Maharashtra"}}`))
	}))
	defer server.Close()

	repo := newMemoryRepo()
	api := NewAPIClient(server.URL, "secret")
	svc := NewService(slog.Default(), repo, api, nil, time.Minute)

	result, err := svc.Lookup(context.Background(), validGSTIN)
	require.NoError(t, err)
	require.Equal(t, SourceAPI, result.Source)
	require.Equal(t, "Universal Timber LLP", result.Data.LegalName)
	require.Equal(t, "Maharashtra", result.Data.State)

	// the API result is now cached in the database tier
	stored, err := repo.Get(context.Background(), validGSTIN)
	require.NoError(t, err)
	require.Equal(t, "Universal Timber LLP", stored.LegalName)
}

func TestLookupAPIFailureFallsBackToDummy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	repo := newMemoryRepo()
	api := NewAPIClient(server.URL, "")
	svc := NewService(slog.Default(), repo, api, nil, time.Minute)

	result, err := svc.Lookup(context.Background(), validGSTIN)
	require.NoError(t, err)
	require.Equal(t, SourceDummy, result.Source)
}

func TestLookupRedisCacheHit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	repo := newMemoryRepo()
	repo.records[validGSTIN] = Record{GSTIN: validGSTIN, LegalName: "Universal Timber", StateCode: "27"}
	svc := NewService(slog.Default(), repo, nil, client, time.Minute)

	first, err := svc.Lookup(context.Background(), validGSTIN)
	require.NoError(t, err)
	require.Equal(t, SourceDatabase, first.Source)

	// second call is served from Redis even after the db row vanishes
	delete(repo.records, validGSTIN)
	second, err := svc.Lookup(context.Background(), validGSTIN)
	require.NoError(t, err)
	require.Equal(t, SourceDatabase, second.Source)
	require.Equal(t, "Universal Timber", second.Data.LegalName)

	// the cached entry honours the TTL
	mr.FastForward(2 * time.Minute)
	third, err := svc.Lookup(context.Background(), validGSTIN)
	require.NoError(t, err)
	require.Equal(t, SourceDummy, third.Source)
}
