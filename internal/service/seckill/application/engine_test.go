package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"seckill/internal/service/seckill/domain"
	"seckill/internal/service/seckill/domain/port"
	"seckill/internal/service/seckill/token"
)

var testClock = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func openSeckill(number int32) *domain.Seckill {
	return &domain.Seckill{
		SeckillID: 1000,
		Name:      "测试商品",
		Number:    number,
		StartTime: testClock.Add(-time.Hour),
		EndTime:   testClock.Add(time.Hour),
	}
}

func newTestEngine(store *fakeInventoryStore, notifier *fakeNotifier, procedure *fakeProcedureRunner) (*ExecutionEngine, *token.Generator) {
	tokens := token.NewGenerator("test-salt")

	// 避免把有类型的 nil 指针包进接口
	var procedurePort port.ProcedureRunner
	if procedure != nil {
		procedurePort = procedure
	}
	var notifierPort port.PurchaseNotifier
	if notifier != nil {
		notifierPort = notifier
	}

	engine := NewExecutionEngine(store, tokens, procedurePort, notifierPort)
	engine.now = func() time.Time { return testClock }
	return engine, tokens
}

func TestExecuteSuccess(t *testing.T) {
	ctx := context.Background()
	store := newFakeInventoryStore(openSeckill(1))
	notifier := &fakeNotifier{}
	engine, tokens := newTestEngine(store, notifier, nil)

	execution := engine.Execute(ctx, 1000, 13900001111, tokens.Derive(1000))

	assert.Equal(t, domain.StateSuccess, execution.State)
	require.NotNil(t, execution.Record)
	assert.Equal(t, int64(13900001111), execution.Record.UserPhone)

	// 库存已扣减，明细已提交
	item, err := store.QueryByID(ctx, 1000)
	require.NoError(t, err)
	assert.Equal(t, int32(0), item.Number)
	assert.Equal(t, 1, notifier.count())
}

func TestExecuteInvalidTokenNeverTouchesStore(t *testing.T) {
	ctx := context.Background()
	store := newFakeInventoryStore(openSeckill(1))
	engine, tokens := newTestEngine(store, nil, nil)

	for _, md5 := range []string{"", "forged", tokens.Derive(1001)} {
		execution := engine.Execute(ctx, 1000, 13900001111, md5)
		assert.Equal(t, domain.StateInvalidToken, execution.State)
		assert.Nil(t, execution.Record)
	}

	assert.Equal(t, 0, store.txCalls)
	assert.Equal(t, 0, store.queryCalls)
}

func TestExecuteRepeatKill(t *testing.T) {
	ctx := context.Background()
	store := newFakeInventoryStore(openSeckill(10))
	engine, tokens := newTestEngine(store, nil, nil)
	md5 := tokens.Derive(1000)

	first := engine.Execute(ctx, 1000, 13900001111, md5)
	require.Equal(t, domain.StateSuccess, first.State)

	second := engine.Execute(ctx, 1000, 13900001111, md5)
	assert.Equal(t, domain.StateRepeatKill, second.State)
	assert.Nil(t, second.Record)

	// 库存只扣了一次
	item, err := store.QueryByID(ctx, 1000)
	require.NoError(t, err)
	assert.Equal(t, int32(9), item.Number)
}

func TestExecuteClosedRollsBackInsert(t *testing.T) {
	ctx := context.Background()
	store := newFakeInventoryStore(openSeckill(0))
	engine, tokens := newTestEngine(store, nil, nil)

	execution := engine.Execute(ctx, 1000, 13900001111, tokens.Derive(1000))
	assert.Equal(t, domain.StateEnd, execution.State)

	// 插入已随事务回滚，不能留下会挡住后续合法重试的明细
	_, err := store.QueryPurchase(ctx, 1000, 13900001111)
	assert.ErrorIs(t, err, domain.ErrPurchaseNotFound)
}

func TestExecuteClosedWhenWindowElapsed(t *testing.T) {
	ctx := context.Background()
	item := openSeckill(5)
	item.EndTime = testClock.Add(-time.Minute) // 窗口已过但库存还有
	store := newFakeInventoryStore(item)
	engine, tokens := newTestEngine(store, nil, nil)

	execution := engine.Execute(ctx, 1000, 13900001111, tokens.Derive(1000))
	assert.Equal(t, domain.StateEnd, execution.State)

	stored, err := store.QueryByID(ctx, 1000)
	require.NoError(t, err)
	assert.Equal(t, int32(5), stored.Number)
}

func TestExecuteInnerErrorRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newFakeInventoryStore(openSeckill(5))
	store.failDecrement = errStoreDown
	engine, tokens := newTestEngine(store, nil, nil)

	execution := engine.Execute(ctx, 1000, 13900001111, tokens.Derive(1000))
	assert.Equal(t, domain.StateInnerError, execution.State)

	_, err := store.QueryPurchase(ctx, 1000, 13900001111)
	assert.ErrorIs(t, err, domain.ErrPurchaseNotFound)
}

func TestExecuteNotifierFailureDoesNotChangeOutcome(t *testing.T) {
	ctx := context.Background()
	store := newFakeInventoryStore(openSeckill(1))
	notifier := &fakeNotifier{err: errStoreDown}
	engine, tokens := newTestEngine(store, notifier, nil)

	execution := engine.Execute(ctx, 1000, 13900001111, tokens.Derive(1000))
	assert.Equal(t, domain.StateSuccess, execution.State)
}

// TestExecuteNoOversell 用并发压满一个小库存：
// N 件库存、M 个不同用户并发抢购，恰好 N 个成功、M-N 个拿到秒杀结束
func TestExecuteNoOversell(t *testing.T) {
	const stock = 5
	const attempts = 20

	ctx := context.Background()
	store := newFakeInventoryStore(openSeckill(stock))
	engine, tokens := newTestEngine(store, nil, nil)
	md5 := tokens.Derive(1000)

	results := make([]*SeckillExecution, attempts)
	var g errgroup.Group
	for i := 0; i < attempts; i++ {
		g.Go(func() error {
			results[i] = engine.Execute(ctx, 1000, 13900000000+int64(i), md5)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var successes, closed int
	for _, execution := range results {
		switch execution.State {
		case domain.StateSuccess:
			successes++
		case domain.StateEnd:
			closed++
		default:
			t.Fatalf("unexpected terminal state: %v", execution.State)
		}
	}
	assert.Equal(t, stock, successes)
	assert.Equal(t, attempts-stock, closed)

	item, err := store.QueryByID(ctx, 1000)
	require.NoError(t, err)
	assert.Equal(t, int32(0), item.Number)
	assert.Len(t, store.purchases, stock)
}

func TestExecuteByProcedure(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		code      int
		err       error
		wantState domain.ExecutionState
	}{
		{name: "success", code: 1, wantState: domain.StateSuccess},
		{name: "sold out", code: 0, wantState: domain.StateEnd},
		{name: "repeat kill", code: -1, wantState: domain.StateRepeatKill},
		{name: "unknown code", code: 99, wantState: domain.StateInnerError},
		{name: "transport error", err: errStoreDown, wantState: domain.StateInnerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeInventoryStore(openSeckill(5))
			procedure := &fakeProcedureRunner{code: tt.code, err: tt.err}
			engine, tokens := newTestEngine(store, nil, procedure)

			execution := engine.ExecuteByProcedure(ctx, 1000, 13900001111, tokens.Derive(1000))
			assert.Equal(t, tt.wantState, execution.State)
		})
	}
}

func TestExecuteByProcedureInvalidToken(t *testing.T) {
	ctx := context.Background()
	store := newFakeInventoryStore(openSeckill(5))
	procedure := &fakeProcedureRunner{code: 1}
	engine, _ := newTestEngine(store, nil, procedure)

	execution := engine.ExecuteByProcedure(ctx, 1000, 13900001111, "forged")
	assert.Equal(t, domain.StateInvalidToken, execution.State)
	assert.Equal(t, 0, procedure.calls)
}

func TestExecuteByProcedureWithoutRunner(t *testing.T) {
	ctx := context.Background()
	store := newFakeInventoryStore(openSeckill(5))
	engine, tokens := newTestEngine(store, nil, nil)

	execution := engine.ExecuteByProcedure(ctx, 1000, 13900001111, tokens.Derive(1000))
	assert.Equal(t, domain.StateInnerError, execution.State)
}
