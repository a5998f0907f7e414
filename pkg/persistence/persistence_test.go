package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Count  int     `json:"count"`
}

func TestJSONFileStoreRoundTrip(t *testing.T) {
	svc := NewJSONFileService(t.TempDir())
	store := svc.NewStore("analyse", "surge", "analyse_2026-08-28")

	in := sample{Symbol: "btcusdt", Price: 102.5, Count: 3}
	require.NoError(t, store.Save(in))

	var out sample
	require.NoError(t, store.Load(&out))
	assert.Equal(t, in, out)
}

func TestJSONFileStoreLoadMissing(t *testing.T) {
	svc := NewJSONFileService(t.TempDir())
	store := svc.NewStore("analyse", "surge", "analyse_2026-01-01")

	var out sample
	assert.ErrorIs(t, store.Load(&out), ErrNotExists)
}

// 保存后目录里不应残留 .tmp 文件（写临时文件 + rename）
func TestJSONFileStoreAtomicSave(t *testing.T) {
	dir := t.TempDir()
	svc := NewJSONFileService(dir)
	store := svc.NewStore("analyse", "surge", "analyse_2026-08-28")
	require.NoError(t, store.Save(sample{Symbol: "ethusdt"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, ".tmp", filepath.Ext(e.Name()))
	}
	assert.Len(t, entries, 1)
}

func TestJSONFileStoreOverwrite(t *testing.T) {
	svc := NewJSONFileService(t.TempDir())
	store := svc.NewStore("analyse", "surge", "analyse_2026-08-28")
	require.NoError(t, store.Save(sample{Count: 1}))
	require.NoError(t, store.Save(sample{Count: 2}))

	var out sample
	require.NoError(t, store.Load(&out))
	assert.Equal(t, 2, out.Count)
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	svc, err := OpenBadger(t.TempDir())
	require.NoError(t, err)
	defer svc.Close()

	store := svc.NewStore("analyse", "surge", "analyse_2026-08-28")
	in := sample{Symbol: "btcusdt", Price: 99.99, Count: 7}
	require.NoError(t, store.Save(in))

	var out sample
	require.NoError(t, store.Load(&out))
	assert.Equal(t, in, out)

	// 不同 tag 互不影响
	other := svc.NewStore("analyse", "surge", "analyse_2026-08-29")
	var miss sample
	assert.ErrorIs(t, other.Load(&miss), ErrNotExists)
}
