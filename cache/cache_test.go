package cache

import (
	"strconv"
	"sync"
	"testing"
)

type item struct{ id int }

type structKey struct {
	width, height int32
	faces         [4]*item
	count         uint8
}

func TestNew(t *testing.T) {
	m := New[string, *item](StringHasher)
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.Len() != 0 {
		t.Errorf("expected empty map, got %d entries", m.Len())
	}
}

func TestNewNilHasher(t *testing.T) {
	m := New[structKey, *item](nil)
	v := &item{1}
	m.LoadOrStore(structKey{width: 1}, v)
	got, ok := m.Load(structKey{width: 1})
	if !ok || got != v {
		t.Errorf("Load after LoadOrStore = (%v, %v), want (%v, true)", got, ok, v)
	}
}

func TestMapLoadOrStore(t *testing.T) {
	m := New[string, *item](StringHasher)
	a, b := &item{1}, &item{2}

	got, loaded := m.LoadOrStore("k", a)
	if loaded || got != a {
		t.Errorf("first LoadOrStore = (%v, %v), want (%v, false)", got, loaded, a)
	}

	got, loaded = m.LoadOrStore("k", b)
	if !loaded || got != a {
		t.Errorf("second LoadOrStore = (%v, %v), want (%v, true)", got, loaded, a)
	}

	if _, ok := m.Load("missing"); ok {
		t.Error("expected missing key to not exist")
	}
}

func TestMapCompareAndDelete(t *testing.T) {
	m := New[string, *item](StringHasher)
	a, b := &item{1}, &item{2}
	m.LoadOrStore("k", a)

	if m.CompareAndDelete("k", b) {
		t.Error("CompareAndDelete removed an entry holding a different value")
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", m.Len())
	}
	if !m.CompareAndDelete("k", a) {
		t.Error("CompareAndDelete did not remove the matching entry")
	}
	if m.CompareAndDelete("k", a) {
		t.Error("CompareAndDelete succeeded twice")
	}
	if m.Len() != 0 {
		t.Errorf("expected empty map, got %d", m.Len())
	}
}

func TestMapStructuralKeys(t *testing.T) {
	m := New[structKey, *item](ComparableHasher[structKey]())
	face := &item{7}
	k1 := structKey{width: 64, height: 64, count: 1}
	k1.faces[0] = face
	k2 := structKey{width: 64, height: 64, count: 1}
	k2.faces[0] = face

	v := &item{1}
	m.LoadOrStore(k1, v)
	if got, ok := m.Load(k2); !ok || got != v {
		t.Errorf("equal struct keys did not hit: (%v, %v)", got, ok)
	}

	k3 := k2
	k3.faces[0] = &item{7}
	if _, ok := m.Load(k3); ok {
		t.Error("keys with different pointer identity must not collide")
	}
}

func TestMapDeleteAndClear(t *testing.T) {
	m := New[string, *item](StringHasher)
	for i := 0; i < 10; i++ {
		m.LoadOrStore(strconv.Itoa(i), &item{i})
	}
	if !m.Delete("3") {
		t.Error("Delete returned false for existing key")
	}
	if m.Delete("3") {
		t.Error("Delete returned true for removed key")
	}
	if m.Len() != 9 {
		t.Errorf("expected 9 entries, got %d", m.Len())
	}
	m.Clear()
	if m.Len() != 0 {
		t.Errorf("expected empty map after Clear, got %d", m.Len())
	}
	if s := m.Stats(); s.Removed != 10 {
		t.Errorf("expected Removed=10, got %d", s.Removed)
	}
}

func TestMapRange(t *testing.T) {
	m := New[string, *item](StringHasher)
	for i := 0; i < 50; i++ {
		m.LoadOrStore(strconv.Itoa(i), &item{i})
	}

	seen := 0
	m.Range(func(k string, v *item) bool {
		if strconv.Itoa(v.id) != k {
			t.Errorf("Range yielded %q -> %d", k, v.id)
		}
		seen++
		return true
	})
	if seen != 50 {
		t.Errorf("Range visited %d entries, want 50", seen)
	}

	// Range callbacks may mutate the map.
	m.Range(func(k string, v *item) bool {
		m.CompareAndDelete(k, v)
		return true
	})
	if m.Len() != 0 {
		t.Errorf("expected empty map, got %d", m.Len())
	}

	stops := 0
	m.LoadOrStore("a", &item{})
	m.LoadOrStore("b", &item{})
	m.Range(func(string, *item) bool {
		stops++
		return false
	})
	if stops != 1 {
		t.Errorf("Range continued after false: %d calls", stops)
	}
}

func TestMapStats(t *testing.T) {
	m := New[string, *item](StringHasher)
	m.LoadOrStore("a", &item{})
	m.Load("a")
	m.Load("a")
	m.Load("b")

	s := m.Stats()
	if s.Hits != 2 || s.Misses != 1 || s.Inserts != 1 || s.Len != 1 {
		t.Errorf("unexpected stats %+v", s)
	}
	if s.HitRate < 0.66 || s.HitRate > 0.67 {
		t.Errorf("expected HitRate ~0.667, got %f", s.HitRate)
	}

	m.ResetStats()
	if s := m.Stats(); s.Hits != 0 || s.Misses != 0 || s.Inserts != 0 {
		t.Errorf("expected zeroed stats, got %+v", s)
	}
}

func TestMapShardLen(t *testing.T) {
	m := New[string, *item](StringHasher)
	for i := 0; i < 1000; i++ {
		m.LoadOrStore(strconv.Itoa(i), &item{i})
	}
	total, used := 0, 0
	for _, n := range m.ShardLen() {
		total += n
		if n > 0 {
			used++
		}
	}
	if total != 1000 {
		t.Errorf("shard lengths sum to %d, want 1000", total)
	}
	if used < DefaultShardCount/2 {
		t.Errorf("poor shard distribution: only %d shards used", used)
	}
}

func TestMapConcurrentLoadOrStore(t *testing.T) {
	m := New[string, *item](StringHasher)
	var wg sync.WaitGroup
	winners := make([]*item, 64)

	for i := range winners {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			got, _ := m.LoadOrStore("shared", &item{n})
			winners[n] = got
		}(i)
	}
	wg.Wait()

	for i, w := range winners {
		if w != winners[0] {
			t.Fatalf("goroutine %d observed a different winner", i)
		}
	}
	if s := m.Stats(); s.Inserts != 1 {
		t.Errorf("expected exactly 1 insert, got %d", s.Inserts)
	}
}

func TestHashers(t *testing.T) {
	h1 := StringHasher("hello")
	h2 := StringHasher("hello")
	h3 := StringHasher("world")

	if h1 != h2 {
		t.Error("StringHasher not deterministic")
	}
	if h1 == h3 {
		t.Error("StringHasher collision for different strings")
	}

	ch := ComparableHasher[structKey]()
	if ch(structKey{width: 1}) != ch(structKey{width: 1}) {
		t.Error("ComparableHasher not deterministic")
	}
}

func BenchmarkMapLoadHit(b *testing.B) {
	m := New[string, *item](StringHasher)
	for i := 0; i < 100; i++ {
		m.LoadOrStore(strconv.Itoa(i), &item{i})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Load("50")
	}
}

func BenchmarkMapLoadParallel(b *testing.B) {
	m := New[structKey, *item](nil)
	for i := 0; i < 100; i++ {
		m.LoadOrStore(structKey{width: int32(i)}, &item{i})
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			m.Load(structKey{width: int32(i % 100)})
			i++
		}
	})
}
