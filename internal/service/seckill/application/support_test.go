package application

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"seckill/internal/service/seckill/domain"
)

// fakeInventoryStore 是 domain.InventoryStore 的内存实现。
// InTransaction 在互斥锁内先做快照，fn 出错时整体恢复，借此模拟
// 数据库的事务回滚；整个事务持锁执行，对应行锁带来的串行化
type fakeInventoryStore struct {
	mu        sync.Mutex
	items     map[int64]*domain.Seckill
	purchases map[purchaseKey]*domain.PurchaseRecord

	txCalls    int
	queryCalls int

	failInsert    error
	failDecrement error
}

type purchaseKey struct {
	seckillID int64
	userPhone int64
}

func newFakeInventoryStore(items ...*domain.Seckill) *fakeInventoryStore {
	store := &fakeInventoryStore{
		items:     map[int64]*domain.Seckill{},
		purchases: map[purchaseKey]*domain.PurchaseRecord{},
	}
	for _, item := range items {
		clone := *item
		store.items[item.SeckillID] = &clone
	}
	return store
}

var _ domain.InventoryStore = (*fakeInventoryStore)(nil)

func (f *fakeInventoryStore) QueryByID(_ context.Context, seckillID int64) (*domain.Seckill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCalls++
	item, ok := f.items[seckillID]
	if !ok {
		return nil, domain.ErrSeckillNotFound
	}
	clone := *item
	return &clone, nil
}

func (f *fakeInventoryStore) QueryAll(_ context.Context, offset, limit int) ([]*domain.Seckill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*domain.Seckill
	for _, item := range f.items {
		clone := *item
		all = append(all, &clone)
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeInventoryStore) QueryPurchase(_ context.Context, seckillID, userPhone int64) (*domain.PurchaseRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queryPurchaseLocked(seckillID, userPhone)
}

func (f *fakeInventoryStore) InTransaction(_ context.Context, fn func(tx domain.InventoryOps) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txCalls++

	// 事务快照，出错时整体恢复
	itemsSnapshot := make(map[int64]*domain.Seckill, len(f.items))
	for id, item := range f.items {
		clone := *item
		itemsSnapshot[id] = &clone
	}
	purchasesSnapshot := make(map[purchaseKey]*domain.PurchaseRecord, len(f.purchases))
	for key, record := range f.purchases {
		clone := *record
		purchasesSnapshot[key] = &clone
	}

	if err := fn(&fakeInventoryOps{store: f}); err != nil {
		f.items = itemsSnapshot
		f.purchases = purchasesSnapshot
		return err
	}
	return nil
}

func (f *fakeInventoryStore) queryPurchaseLocked(seckillID, userPhone int64) (*domain.PurchaseRecord, error) {
	record, ok := f.purchases[purchaseKey{seckillID, userPhone}]
	if !ok {
		return nil, domain.ErrPurchaseNotFound
	}
	clone := *record
	return &clone, nil
}

// fakeInventoryOps 在已持锁的 store 上执行事务原语
type fakeInventoryOps struct {
	store *fakeInventoryStore
}

func (o *fakeInventoryOps) InsertPurchaseIfAbsent(_ context.Context, seckillID, userPhone int64) (int64, error) {
	if o.store.failInsert != nil {
		return 0, o.store.failInsert
	}
	key := purchaseKey{seckillID, userPhone}
	if _, ok := o.store.purchases[key]; ok {
		return 0, nil
	}
	o.store.purchases[key] = &domain.PurchaseRecord{
		SeckillID:  seckillID,
		UserPhone:  userPhone,
		CreateTime: time.Now(),
	}
	return 1, nil
}

func (o *fakeInventoryOps) ConditionalDecrement(_ context.Context, seckillID int64, killTime time.Time) (int64, error) {
	if o.store.failDecrement != nil {
		return 0, o.store.failDecrement
	}
	item, ok := o.store.items[seckillID]
	if !ok {
		return 0, nil
	}
	if item.Number <= 0 || !item.WithinWindow(killTime) {
		return 0, nil
	}
	item.Number--
	return 1, nil
}

func (o *fakeInventoryOps) QueryPurchase(_ context.Context, seckillID, userPhone int64) (*domain.PurchaseRecord, error) {
	return o.store.queryPurchaseLocked(seckillID, userPhone)
}

// fakeItemReader 是 domain.ItemReader 的内存实现
type fakeItemReader struct {
	items map[int64]*domain.Seckill
	err   error
}

func (f *fakeItemReader) QueryByID(_ context.Context, seckillID int64) (*domain.Seckill, error) {
	if f.err != nil {
		return nil, f.err
	}
	item, ok := f.items[seckillID]
	if !ok {
		return nil, domain.ErrSeckillNotFound
	}
	return item, nil
}

// fakeNotifier 记录收到的成功通知
type fakeNotifier struct {
	mu      sync.Mutex
	records []*domain.PurchaseRecord
	err     error
}

func (f *fakeNotifier) NotifyPurchaseSucceeded(_ context.Context, record *domain.PurchaseRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

// fakeProcedureRunner 返回预设的状态码
type fakeProcedureRunner struct {
	code  int
	err   error
	calls int
}

func (f *fakeProcedureRunner) RunPurchaseProcedure(_ context.Context, _, _ int64, _ time.Time) (int, error) {
	f.calls++
	return f.code, f.err
}

var errStoreDown = errors.New("store unreachable")
