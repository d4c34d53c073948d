package registry

import (
	"errors"
	"testing"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected int
		wantErr  bool
	}{
		{"older patch", "1.0.0", "1.0.1", -1, false},
		{"older minor", "1.0.0", "1.1.0", -1, false},
		{"older major", "1.0.0", "2.0.0", -1, false},
		{"equal", "1.2.3", "1.2.3", 0, false},
		{"newer", "1.1.0", "1.0.0", 1, false},
		{"v prefix", "v1.0.0", "1.0.1", -1, false},
		{"prerelease less than release", "2.0.0-beta", "2.0.0", -1, false},
		{"prerelease comparison", "1.0.0-alpha", "1.0.0-beta", -1, false},
		{"numeric not lexical", "1.10.0", "1.9.0", 1, false},
		{"invalid", "notaversion", "1.0.0", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CompareVersions(tt.a, tt.b)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("CompareVersions(%q, %q) = %d, want %d", tt.a, tt.b, result, tt.expected)
			}
		})
	}
}

func TestLatest(t *testing.T) {
	tests := []struct {
		name     string
		versions []string
		want     string
	}{
		{"release outranks its prerelease", []string{"1.0.0", "1.2.0", "2.0.0-beta", "2.0.0"}, "2.0.0"},
		{"prerelease of higher major wins", []string{"1.0.0", "1.2.0", "2.0.0-beta"}, "2.0.0-beta"},
		{"numeric ordering", []string{"1.9.0", "1.10.0", "1.2.0"}, "1.10.0"},
		{"single", []string{"0.0.1"}, "0.0.1"},
		{"garbage skipped", []string{"latest", "1.0.0"}, "1.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Latest(tt.versions)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Latest(%v) = %q, want %q", tt.versions, got, tt.want)
			}
		})
	}
}

func TestLatest_Empty(t *testing.T) {
	for _, versions := range [][]string{nil, {}, {"not-semver"}} {
		if _, err := Latest(versions); !errors.Is(err, ErrNoVersionsAvailable) {
			t.Errorf("Latest(%v) error = %v, want ErrNoVersionsAvailable", versions, err)
		}
	}
}

func TestCompatible(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		versions []string
		want     string
		wantErr  error
	}{
		{"max of same major", "1.4.0", []string{"1.3.0", "1.5.0", "2.0.0"}, "1.5.0", nil},
		{"base itself qualifies", "1.4.0", []string{"1.4.0", "2.0.0"}, "1.4.0", nil},
		{"no fallback to other major", "1.4.0", []string{"2.0.0"}, "", ErrNoCompatibleVersion},
		{"lower versions excluded", "1.4.0", []string{"1.0.0", "1.3.9"}, "", ErrNoCompatibleVersion},
		{"empty set", "1.4.0", nil, "", ErrNoCompatibleVersion},
		{"zero major", "0.2.0", []string{"0.1.0", "0.3.1", "1.0.0"}, "0.3.1", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compatible(tt.versions, tt.base)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Compatible(%v, %q) = %q, want %q", tt.versions, tt.base, got, tt.want)
			}
		})
	}
}

func TestCompatible_InvalidBase(t *testing.T) {
	if _, err := Compatible([]string{"1.0.0"}, "one"); err == nil {
		t.Error("expected error for invalid base version")
	}
}

func TestSortVersions(t *testing.T) {
	got := SortVersions([]string{"1.10.0", "1.2.0", "bogus", "1.2.0-rc.1", "0.9.0"})
	want := []string{"0.9.0", "1.2.0-rc.1", "1.2.0", "1.10.0"}
	if len(got) != len(want) {
		t.Fatalf("SortVersions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SortVersions[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
