package session

import (
	"strings"
	"testing"
)

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name        string
		player      string
		controlPort int
		dataPort    int
		wantErr     string
	}{
		{"valid", "Alice", 7501, 7502, ""},
		{"empty name", "", 7501, 7502, "alphabetic"},
		{"name too long", "Abcdefghijklmnop", 7501, 7502, "alphabetic"},
		{"name with digits", "Alice2", 7501, 7502, "alphabetic"},
		{"name with spaces", "Alice Smith", 7501, 7502, "alphabetic"},
		{"control port too low", "Bob", 7500, 7502, "control port"},
		{"control port too high", "Bob", 8000, 7502, "control port"},
		{"data port out of range", "Bob", 7501, 7000, "data port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			p, err := r.Register(tt.player, "10.0.0.1", tt.controlPort, tt.dataPort)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Register() error = %v, want nil", err)
				}
				if p.Status != StatusFree {
					t.Errorf("new player status = %s, want %s", p.Status, StatusFree)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Register() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterDuplicateName(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Register("Alice", "10.0.0.1", 7501, 7502); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	_, err := r.Register("Alice", "10.0.0.2", 7503, 7504)
	if err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Fatalf("duplicate Register() error = %v, want already registered", err)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestDeregister(t *testing.T) {
	r := NewRegistry()
	r.Register("Alice", "10.0.0.1", 7501, 7502)

	if err := r.Deregister("Alice"); err != nil {
		t.Fatalf("Deregister() error = %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len() after deregister = %d, want 0", r.Len())
	}
	if err := r.Deregister("Alice"); err == nil {
		t.Error("second Deregister() expected error, got nil")
	}
	// O nome fica livre para um novo registro.
	if _, err := r.Register("Alice", "10.0.0.1", 7501, 7502); err != nil {
		t.Errorf("re-Register() after deregister error = %v", err)
	}
}

func TestQueryOrderedByName(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"Carol", "Alice", "Bob"} {
		if _, err := r.Register(name, "10.0.0.1", 7501, 7502); err != nil {
			t.Fatalf("Register(%s) error = %v", name, err)
		}
	}

	entries := r.Query()
	want := []string{"Alice", "Bob", "Carol"}
	if len(entries) != len(want) {
		t.Fatalf("Query() returned %d entries, want %d", len(entries), len(want))
	}
	for i, name := range want {
		if entries[i].Name != name {
			t.Errorf("entries[%d].Name = %s, want %s", i, entries[i].Name, name)
		}
		if entries[i].Status != string(StatusFree) {
			t.Errorf("entries[%d].Status = %s, want %s", i, entries[i].Status, StatusFree)
		}
	}
}
