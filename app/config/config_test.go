package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "normalizer.yaml")
	doc := "use_geocoder_fallback: true\nbatch:\n  workers: 8\ncache:\n  ttl_hours: 48\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Load(path); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !C.UseGeocoderFallback {
		t.Error("use_geocoder_fallback not read")
	}
	if C.Batch.Workers != 8 {
		t.Errorf("Batch.Workers = %d, want 8", C.Batch.Workers)
	}
	if C.Cache.TTLHours != 48 {
		t.Errorf("Cache.TTLHours = %d, want 48", C.Cache.TTLHours)
	}
	// unset fields fall back to defaults
	if C.Batch.MaxAddresses != 20000 {
		t.Errorf("Batch.MaxAddresses = %d, want default", C.Batch.MaxAddresses)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("USE_GEOCODER_FALLBACK", "1")
	t.Setenv("BATCH_WORKERS", "16")
	t.Setenv("ADDRESS_TABLES_DIR", "/etc/address-tables")

	LoadDefaults()

	if !C.UseGeocoderFallback {
		t.Error("USE_GEOCODER_FALLBACK=1 not applied")
	}
	if C.Batch.Workers != 16 {
		t.Errorf("Batch.Workers = %d, want 16", C.Batch.Workers)
	}
	if C.TablesDir != "/etc/address-tables" {
		t.Errorf("TablesDir = %q", C.TablesDir)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if err := Load("does/not/exist.yaml"); err == nil {
		t.Error("missing config file must return an error")
	}
}
