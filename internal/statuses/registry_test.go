package statuses

import "testing"

func TestRegistryLoadsEmbeddedCatalog(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() failed: %v", err)
	}

	catalog := registry.Catalog()
	if len(catalog.Statuses) == 0 {
		t.Fatal("catalog has no statuses")
	}
	if len(catalog.Priorities) == 0 {
		t.Fatal("catalog has no priorities")
	}

	if got := registry.DefaultStatus(); got != "untested" {
		t.Fatalf("DefaultStatus() = %q, want untested", got)
	}
	if got := registry.DefaultPriority(); got != "medium" {
		t.Fatalf("DefaultPriority() = %q, want medium", got)
	}

	// Defaults must themselves be members of the catalog
	if !registry.ValidStatus(registry.DefaultStatus()) {
		t.Fatal("default status is not in the catalog")
	}
	if !registry.ValidPriority(registry.DefaultPriority()) {
		t.Fatal("default priority is not in the catalog")
	}
}

func TestRegistryValidation(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() failed: %v", err)
	}

	for _, status := range []string{"untested", "passed", "failed", "blocked", "skipped"} {
		if !registry.ValidStatus(status) {
			t.Errorf("ValidStatus(%q) = false, want true", status)
		}
	}
	if registry.ValidStatus("in-progress") {
		t.Error("ValidStatus(in-progress) = true, want false")
	}
	if registry.ValidPriority("urgent") {
		t.Error("ValidPriority(urgent) = true, want false")
	}
}
