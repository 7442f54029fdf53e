package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seckill/internal/service/seckill/domain"
	"seckill/internal/service/seckill/token"
)

func newTestAdmission(items *fakeItemReader) (*AdmissionService, *token.Generator) {
	tokens := token.NewGenerator("test-salt")
	service := NewAdmissionService(items, tokens)
	service.now = func() time.Time { return testClock }
	return service, tokens
}

func TestExposeOpenWindow(t *testing.T) {
	ctx := context.Background()
	items := &fakeItemReader{items: map[int64]*domain.Seckill{1000: openSeckill(10)}}
	service, tokens := newTestAdmission(items)

	exposer, err := service.Expose(ctx, 1000)
	require.NoError(t, err)

	assert.True(t, exposer.Exposed)
	assert.Equal(t, int64(1000), exposer.SeckillID)
	// 暴露时派发的口令必须与校验侧推导一致
	assert.Equal(t, tokens.Derive(1000), exposer.MD5)
	assert.Zero(t, exposer.Now)
}

func TestExposeBeforeStart(t *testing.T) {
	ctx := context.Background()
	item := openSeckill(10)
	item.StartTime = testClock.Add(time.Hour)
	item.EndTime = testClock.Add(2 * time.Hour)
	items := &fakeItemReader{items: map[int64]*domain.Seckill{1000: item}}
	service, _ := newTestAdmission(items)

	exposer, err := service.Expose(ctx, 1000)
	require.NoError(t, err)

	assert.False(t, exposer.Exposed)
	assert.Empty(t, exposer.MD5)
	assert.Equal(t, testClock.UnixMilli(), exposer.Now)
	assert.Equal(t, item.StartTime.UnixMilli(), exposer.Start)
	assert.Equal(t, item.EndTime.UnixMilli(), exposer.End)
}

func TestExposeAfterEnd(t *testing.T) {
	ctx := context.Background()
	item := openSeckill(10)
	item.EndTime = testClock // 窗口右端开区间，now == end 即已结束
	items := &fakeItemReader{items: map[int64]*domain.Seckill{1000: item}}
	service, _ := newTestAdmission(items)

	exposer, err := service.Expose(ctx, 1000)
	require.NoError(t, err)
	assert.False(t, exposer.Exposed)
	assert.Empty(t, exposer.MD5)
}

func TestExposeUnknownSeckill(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestAdmission(&fakeItemReader{items: map[int64]*domain.Seckill{}})

	exposer, err := service.Expose(ctx, 9999)
	require.NoError(t, err)
	assert.False(t, exposer.Exposed)
	assert.Equal(t, int64(9999), exposer.SeckillID)
	assert.Zero(t, exposer.Start)
}

func TestExposePropagatesStoreError(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestAdmission(&fakeItemReader{err: errStoreDown})

	_, err := service.Expose(ctx, 1000)
	assert.ErrorIs(t, err, errStoreDown)
}
