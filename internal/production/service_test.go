package production

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/timberline-erp/timberline/internal/sawmill/logs"
	"github.com/timberline-erp/timberline/internal/shared"
)

type memoryRepo struct {
	orders        map[int64]Order
	machines      map[int64]int64
	production    []ProductionEntry
	dispatches    []DispatchEntry
	notifications []int64
	nextID        int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{orders: make(map[int64]Order), machines: make(map[int64]int64)}
}

func (r *memoryRepo) CreateOrder(ctx context.Context, order Order) (Order, error) {
	for _, existing := range r.orders {
		if existing.CompanyID == order.CompanyID && existing.OrderNumber == order.OrderNumber {
			return Order{}, ErrDuplicateOrderNumber
		}
	}
	r.nextID++
	order.ID = r.nextID
	r.orders[order.ID] = order
	return order, nil
}

func (r *memoryRepo) GetOrder(ctx context.Context, companyID, id int64) (OrderView, error) {
	order, ok := r.orders[id]
	if !ok || order.CompanyID != companyID {
		return OrderView{}, shared.ErrNotFound
	}
	view := OrderView{Order: order}
	for _, e := range r.production {
		if e.OrderID == id {
			view.ProducedQuantity += e.Quantity
		}
	}
	for _, e := range r.dispatches {
		if e.OrderID == id {
			view.DispatchedQuantity += e.Quantity
		}
	}
	view.BalanceQuantity = view.OrderedQuantity - view.DispatchedQuantity
	view.Status = DeriveStatus(view.OrderedQuantity, view.ProducedQuantity, view.DispatchedQuantity)
	return view, nil
}

func (r *memoryRepo) ListOrders(ctx context.Context, companyID int64) ([]OrderView, error) {
	var out []OrderView
	for id := range r.orders {
		if r.orders[id].CompanyID != companyID {
			continue
		}
		view, err := r.GetOrder(ctx, companyID, id)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

func (r *memoryRepo) AssignMachine(ctx context.Context, companyID, orderID, machineID int64, at time.Time) error {
	if _, ok := r.orders[orderID]; !ok {
		return shared.ErrNotFound
	}
	r.machines[orderID] = machineID
	return nil
}

func (r *memoryRepo) InsertProduction(ctx context.Context, entry ProductionEntry) (ProductionEntry, error) {
	r.nextID++
	entry.ID = r.nextID
	r.production = append(r.production, entry)
	return entry, nil
}

func (r *memoryRepo) InsertDispatchWithNotification(ctx context.Context, entry DispatchEntry, recipient, message string) (DispatchEntry, int64, error) {
	r.nextID++
	entry.ID = r.nextID
	r.dispatches = append(r.dispatches, entry)
	var notificationID int64
	if recipient != "" {
		r.nextID++
		notificationID = r.nextID
		r.notifications = append(r.notifications, notificationID)
	}
	return entry, notificationID, nil
}

func (r *memoryRepo) ListProduction(ctx context.Context, companyID, orderID int64) ([]ProductionEntry, error) {
	var out []ProductionEntry
	for _, e := range r.production {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memoryRepo) ListDispatch(ctx context.Context, companyID, orderID int64) ([]DispatchEntry, error) {
	var out []DispatchEntry
	for _, e := range r.dispatches {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

type recordingQueue struct {
	enqueued []int64
}

func (q *recordingQueue) Enqueue(ctx context.Context, notificationID int64) error {
	q.enqueued = append(q.enqueued, notificationID)
	return nil
}

type fakeLogConsumer struct {
	consumed []int64
	err      error
}

func (f *fakeLogConsumer) Consume(ctx context.Context, companyID, actorID, id int64) (logs.Log, error) {
	if f.err != nil {
		return logs.Log{}, f.err
	}
	f.consumed = append(f.consumed, id)
	return logs.Log{ID: id, Status: logs.StatusInProcess}, nil
}

func seedOrder(t *testing.T, svc *Service, quantity float64) Order {
	t.Helper()
	order, err := svc.CreateOrder(context.Background(), 1, 7, OrderInput{
		OrderNumber:     "SO-1001",
		Product:         "Sawn Teak 4x2",
		OrderedQuantity: quantity,
		Rate:            850,
	})
	require.NoError(t, err)
	return order
}

func TestOrderStatusDerivedFromEntries(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	order := seedOrder(t, svc, 100)

	view, err := svc.GetOrder(context.Background(), 1, order.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, view.Status)
	require.InDelta(t, 100.0, view.BalanceQuantity, 0.001)

	_, err = svc.RecordProduction(context.Background(), 1, 7, order.ID, ProductionInput{MachineID: 3, Quantity: 40})
	require.NoError(t, err)
	view, err = svc.GetOrder(context.Background(), 1, order.ID)
	require.NoError(t, err)
	require.Equal(t, StatusInProduction, view.Status)
	require.InDelta(t, 40.0, view.ProducedQuantity, 0.001)

	_, err = svc.RecordDispatch(context.Background(), 1, 7, order.ID, DispatchInput{Quantity: 30, VehicleNumber: "KA-01-1234"})
	require.NoError(t, err)
	view, err = svc.GetOrder(context.Background(), 1, order.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPartiallyDispatched, view.Status)
	require.InDelta(t, 70.0, view.BalanceQuantity, 0.001)

	_, err = svc.RecordDispatch(context.Background(), 1, 7, order.ID, DispatchInput{Quantity: 70, VehicleNumber: "KA-01-1234"})
	require.NoError(t, err)
	view, err = svc.GetOrder(context.Background(), 1, order.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, view.Status)
	require.InDelta(t, 0.0, view.BalanceQuantity, 0.001)
}

func TestDispatchCannotExceedBalance(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	order := seedOrder(t, svc, 50)

	_, err := svc.RecordDispatch(context.Background(), 1, 7, order.ID, DispatchInput{Quantity: 60})
	require.ErrorIs(t, err, ErrOverDispatch)
	require.Empty(t, repo.dispatches)
}

func TestDispatchWritesOutboxAndEnqueues(t *testing.T) {
	repo := newMemoryRepo()
	queue := &recordingQueue{}
	svc := NewService(repo, queue, nil)
	order := seedOrder(t, svc, 50)

	_, err := svc.RecordDispatch(context.Background(), 1, 7, order.ID, DispatchInput{
		Quantity:    20,
		NotifyEmail: "dispatch@example.com",
	})
	require.NoError(t, err)
	require.Len(t, repo.notifications, 1)
	require.Equal(t, repo.notifications, queue.enqueued)
}

func TestDispatchWithoutRecipientSkipsOutbox(t *testing.T) {
	repo := newMemoryRepo()
	queue := &recordingQueue{}
	svc := NewService(repo, queue, nil)
	order := seedOrder(t, svc, 50)

	_, err := svc.RecordDispatch(context.Background(), 1, 7, order.ID, DispatchInput{Quantity: 20})
	require.NoError(t, err)
	require.Empty(t, repo.notifications)
	require.Empty(t, queue.enqueued)
}

func TestProductionConsumesLog(t *testing.T) {
	repo := newMemoryRepo()
	consumer := &fakeLogConsumer{}
	svc := NewService(repo, nil, consumer)
	order := seedOrder(t, svc, 50)

	logID := int64(42)
	_, err := svc.RecordProduction(context.Background(), 1, 7, order.ID, ProductionInput{
		MachineID: 3, Quantity: 10, LogID: &logID,
	})
	require.NoError(t, err)
	require.Equal(t, []int64{42}, consumer.consumed)
}

func TestProductionRejectedWhenLogUnavailable(t *testing.T) {
	repo := newMemoryRepo()
	consumer := &fakeLogConsumer{err: logs.ErrInvalidTransition}
	svc := NewService(repo, nil, consumer)
	order := seedOrder(t, svc, 50)

	logID := int64(42)
	_, err := svc.RecordProduction(context.Background(), 1, 7, order.ID, ProductionInput{
		MachineID: 3, Quantity: 10, LogID: &logID,
	})
	require.ErrorIs(t, err, logs.ErrInvalidTransition)
	require.Empty(t, repo.production)
}

func TestCreateOrderRejectsDuplicateNumber(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	seedOrder(t, svc, 50)

	_, err := svc.CreateOrder(context.Background(), 1, 7, OrderInput{
		OrderNumber: "SO-1001", Product: "Sawn Teak 4x2", OrderedQuantity: 10,
	})
	require.ErrorIs(t, err, ErrDuplicateOrderNumber)
}

func TestCreateOrderValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	_, err := svc.CreateOrder(context.Background(), 1, 7, OrderInput{OrderNumber: "SO-1", Product: "X", OrderedQuantity: 0})
	require.Error(t, err)
	_, err = svc.CreateOrder(context.Background(), 1, 7, OrderInput{OrderNumber: "", Product: "X", OrderedQuantity: 5})
	require.Error(t, err)
}
