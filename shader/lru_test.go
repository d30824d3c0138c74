package shader

import "testing"

func TestLRUEvictsOldest(t *testing.T) {
	c := newLRU[int, string](4)
	for i := 0; i < 4; i++ {
		c.set(i, "v")
	}
	// Touch 0 so it survives eviction.
	if _, ok := c.get(0); !ok {
		t.Fatal("get(0) missed")
	}
	c.set(4, "v")

	s := c.stats()
	if s.Len != 3 {
		t.Errorf("Len = %d, want 3", s.Len)
	}
	if s.Evictions != 2 {
		t.Errorf("Evictions = %d, want 2", s.Evictions)
	}
	if _, ok := c.get(0); !ok {
		t.Error("recently used entry evicted")
	}
	if _, ok := c.get(1); ok {
		t.Error("oldest entry survived")
	}
	if _, ok := c.get(4); !ok {
		t.Error("newest entry evicted")
	}
}

func TestLRUUnlimited(t *testing.T) {
	c := newLRU[int, int](0)
	for i := 0; i < 1000; i++ {
		c.set(i, i)
	}
	if s := c.stats(); s.Len != 1000 || s.Evictions != 0 {
		t.Errorf("stats = %+v", s)
	}
	c.clear()
	if s := c.stats(); s.Len != 0 {
		t.Errorf("Len after clear = %d", s.Len)
	}
}
