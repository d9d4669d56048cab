package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestKV_RoundTripAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.json")

	kv1 := OpenKV(path, nil)
	kv1.SetString("last-active", "abc")
	kv1.SetBool("mic", true)

	kv2 := OpenKV(path, nil)
	if v, ok := kv2.GetString("last-active"); !ok || v != "abc" {
		t.Errorf("GetString = %q, %t; want abc, true", v, ok)
	}
	if !kv2.GetBool("mic") {
		t.Error("GetBool(mic) = false after reopen")
	}
}

func TestKV_MissingFileStartsEmpty(t *testing.T) {
	kv := OpenKV(filepath.Join(t.TempDir(), "absent.json"), nil)
	if _, ok := kv.GetString("anything"); ok {
		t.Error("fresh KV reported a value")
	}
	if kv.GetBool("anything") {
		t.Error("fresh KV reported a true flag")
	}
}

func TestKV_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	kv := OpenKV(path, nil)
	if _, ok := kv.GetString("anything"); ok {
		t.Error("corrupt KV reported a value")
	}

	// Still writable after the corrupt load.
	kv.SetString("k", "v")
	if v, ok := kv.GetString("k"); !ok || v != "v" {
		t.Errorf("GetString after corrupt load = %q, %t", v, ok)
	}
}

func TestKV_Remove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.json")
	kv := OpenKV(path, nil)

	kv.SetString("k", "v")
	kv.Remove("k")
	if _, ok := kv.GetString("k"); ok {
		t.Error("value survived Remove")
	}

	// Removing an absent key is a no-op.
	kv.Remove("ghost")
}

func TestKV_UnparseableBoolReadsFalse(t *testing.T) {
	kv := OpenKV(filepath.Join(t.TempDir(), "kv.json"), nil)
	kv.SetString("flag", "not-a-bool")
	if kv.GetBool("flag") {
		t.Error("unparseable flag read as true")
	}
}

func TestKV_FileIsValidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.json")
	kv := OpenKV(path, nil)
	kv.SetString("a", "1")
	kv.SetString("b", "2")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read kv file: %v", err)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("kv file is not valid JSON: %v", err)
	}
	if m["a"] != "1" || m["b"] != "2" {
		t.Errorf("kv file contents = %v", m)
	}
}

func TestKV_UnwritablePathStaysInMemory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	// Flush will fail; reads keep serving from memory.
	kv := OpenKV(filepath.Join(blocker, "nested", "kv.json"), nil)
	kv.SetString("k", "v")
	if v, ok := kv.GetString("k"); !ok || v != "v" {
		t.Errorf("in-memory value lost: %q, %t", v, ok)
	}
}
