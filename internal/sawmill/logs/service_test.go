package logs

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/timberline-erp/timberline/internal/shared"
)

type memoryRepo struct {
	logs   map[int64]Log
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{logs: make(map[int64]Log)}
}

func (r *memoryRepo) List(ctx context.Context, companyID int64, filters ListFilters) ([]Log, error) {
	var out []Log
	for _, l := range r.logs {
		if l.CompanyID != companyID {
			continue
		}
		if filters.Status != "" && l.Status != filters.Status {
			continue
		}
		if filters.Grade != "" && l.Grade != filters.Grade {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, companyID, id int64) (Log, error) {
	l, ok := r.logs[id]
	if !ok || l.CompanyID != companyID {
		return Log{}, shared.ErrNotFound
	}
	return l, nil
}

func (r *memoryRepo) GetByTag(ctx context.Context, companyID int64, tag string) (Log, error) {
	for _, l := range r.logs {
		if l.CompanyID == companyID && l.TagNumber == tag {
			return l, nil
		}
	}
	return Log{}, shared.ErrNotFound
}

func (r *memoryRepo) Create(ctx context.Context, log Log) (Log, error) {
	for _, existing := range r.logs {
		if existing.CompanyID == log.CompanyID && existing.TagNumber == log.TagNumber {
			return Log{}, ErrDuplicateTag
		}
	}
	r.nextID++
	log.ID = r.nextID
	r.logs[log.ID] = log
	return log, nil
}

func (r *memoryRepo) AdvanceStatus(ctx context.Context, companyID, id int64, from, to Status) error {
	l, ok := r.logs[id]
	if !ok || l.CompanyID != companyID || l.Status != from {
		return ErrInvalidTransition
	}
	l.Status = to
	r.logs[id] = l
	return nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, slog.Default(), nil)
}

func TestCFTFormula(t *testing.T) {
	got := CFT(30, 4)
	require.InDelta(t, 7.946, got, 0.0005)
	require.InDelta(t, 30*30*4*2.2072/10000, got, 1e-12)
}

func TestGirthInchConversion(t *testing.T) {
	require.InDelta(t, 30.0/2.54, GirthInch(30), 1e-9)
	require.InDelta(t, 100.0/2.54, GirthInch(100), 1e-9)
}

func TestRegisterDerivesFieldsAndSnapshot(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	log, err := svc.Register(context.Background(), 1, 7, RegisterInput{
		TagNumber:   "TL-1001",
		GirthCM:     30,
		LengthMeter: 4,
		Grade:       GradeA,
	})
	require.NoError(t, err)
	require.Equal(t, StatusAvailable, log.Status)
	require.InDelta(t, 7.946, log.CFT, 0.0005)
	require.InDelta(t, 30.0/2.54, log.GirthInch, 1e-9)

	var snap map[string]any
	require.NoError(t, json.Unmarshal([]byte(log.QRData), &snap))
	require.Equal(t, "TL-1001", snap["tag_number"])
	require.InDelta(t, log.CFT, snap["cft"].(float64), 1e-9)
}

func TestQRSnapshotIsPointInTime(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	log, err := svc.Register(context.Background(), 1, 7, RegisterInput{
		TagNumber: "TL-2001", GirthCM: 50, LengthMeter: 3, Grade: GradeB,
	})
	require.NoError(t, err)
	snapshot := log.QRData

	advanced, err := svc.Advance(context.Background(), 1, 7, log.ID, StatusInProcess)
	require.NoError(t, err)
	stored, err := svc.Get(context.Background(), 1, advanced.ID)
	require.NoError(t, err)
	require.Equal(t, snapshot, stored.QRData)
}

func TestRegisterRejectsDuplicateTag(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	in := RegisterInput{TagNumber: "TL-1001", GirthCM: 30, LengthMeter: 4, Grade: GradeA}
	_, err := svc.Register(context.Background(), 1, 7, in)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), 1, 7, in)
	require.ErrorIs(t, err, ErrDuplicateTag)

	// the same tag under another company is fine
	_, err = svc.Register(context.Background(), 2, 7, in)
	require.NoError(t, err)
}

func TestRegisterValidatesDimensions(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	cases := []RegisterInput{
		{TagNumber: "", GirthCM: 30, LengthMeter: 4, Grade: GradeA},
		{TagNumber: "TL-1", GirthCM: 0, LengthMeter: 4, Grade: GradeA},
		{TagNumber: "TL-1", GirthCM: 30, LengthMeter: -1, Grade: GradeA},
		{TagNumber: "TL-1", GirthCM: 30, LengthMeter: 4, Grade: "premium"},
	}
	for _, in := range cases {
		_, err := svc.Register(context.Background(), 1, 7, in)
		require.Error(t, err)
	}
}

func TestStatusMachineMonotonic(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	log, err := svc.Register(context.Background(), 1, 7, RegisterInput{
		TagNumber: "TL-3001", GirthCM: 40, LengthMeter: 5, Grade: GradeC,
	})
	require.NoError(t, err)

	// skipping straight to processed is rejected
	_, err = svc.Advance(context.Background(), 1, 7, log.ID, StatusProcessed)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Advance(context.Background(), 1, 7, log.ID, StatusInProcess)
	require.NoError(t, err)
	_, err = svc.Advance(context.Background(), 1, 7, log.ID, StatusProcessed)
	require.NoError(t, err)

	// no reversing once processed
	_, err = svc.Advance(context.Background(), 1, 7, log.ID, StatusAvailable)
	require.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.Advance(context.Background(), 1, 7, log.ID, StatusInProcess)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConsumeAdvancesToInProcess(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	log, err := svc.Register(context.Background(), 1, 7, RegisterInput{
		TagNumber: "TL-4001", GirthCM: 35, LengthMeter: 4, Grade: GradeA,
	})
	require.NoError(t, err)

	consumed, err := svc.Consume(context.Background(), 1, 7, log.ID)
	require.NoError(t, err)
	require.Equal(t, StatusInProcess, consumed.Status)

	// a second consumption attempt finds the log already in process
	_, err = svc.Consume(context.Background(), 1, 7, log.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestLookupByTag(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	created, err := svc.Register(context.Background(), 1, 7, RegisterInput{
		TagNumber: "TL-5001", GirthCM: 28, LengthMeter: 3.5, Grade: GradeB,
	})
	require.NoError(t, err)

	found, err := svc.Lookup(context.Background(), 1, "TL-5001")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)

	_, err = svc.Lookup(context.Background(), 1, "TL-9999")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCFTMonotonicInGirth(t *testing.T) {
	prev := 0.0
	for girth := 10.0; girth <= 100; girth += 10 {
		v := CFT(girth, 4)
		require.Greater(t, v, prev)
		prev = v
	}
	require.False(t, math.IsNaN(prev))
}
