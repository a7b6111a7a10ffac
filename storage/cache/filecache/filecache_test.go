package filecache

import (
	"testing"
)

func TestCache_roundTrip(t *testing.T) {
	c, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get("school1_students_v1"); ok {
		t.Error("Get() on empty cache reported a hit")
	}

	if err := c.Set("school1_students_v1", []byte(`["a"]`)); err != nil {
		t.Fatalf("Set(): %v", err)
	}
	raw, ok := c.Get("school1_students_v1")
	if !ok || string(raw) != `["a"]` {
		t.Errorf("Get() = %s, %v", raw, ok)
	}

	// keys with Arabic content must stay filesystem-safe
	if err := c.Set("school1_عام", []byte(`1`)); err != nil {
		t.Fatalf("Set() arabic key: %v", err)
	}
	if raw, ok := c.Get("school1_عام"); !ok || string(raw) != `1` {
		t.Errorf("Get() arabic key = %s, %v", raw, ok)
	}

	if err := c.Delete("school1_students_v1"); err != nil {
		t.Fatalf("Delete(): %v", err)
	}
	if _, ok := c.Get("school1_students_v1"); ok {
		t.Error("entry still present after Delete()")
	}
	// deleting a missing entry is not an error
	if err := c.Delete("school1_students_v1"); err != nil {
		t.Errorf("Delete() missing entry: %v", err)
	}
}

func TestCache_survivesReopen(t *testing.T) {
	dir := t.TempDir()
	c1, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := c1.Set("k", []byte(`42`)); err != nil {
		t.Fatal(err)
	}

	c2, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	if raw, ok := c2.Get("k"); !ok || string(raw) != `42` {
		t.Errorf("Get() after reopen = %s, %v", raw, ok)
	}
}
