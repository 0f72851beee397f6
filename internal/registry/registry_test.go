package registry

import (
	"testing"
	"time"

	"github.com/oceanwatch/oceanwatch/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testRegistry creates an in-memory SQLite registry seeded with the given
// plates.
func testRegistry(t *testing.T, plates ...string) *Registry {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Vehicle{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	for _, p := range plates {
		v := models.Vehicle{Plate: p, VIN: "VCF1ZBS25PG000001", ImportDate: time.Now()}
		if err := db.Create(&v).Error; err != nil {
			t.Fatalf("seed plate %s: %v", p, err)
		}
	}
	return New(db)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"t123456c", "T123456C"},
		{"  T123456C  ", "T123456C"},
		{"123456", "T123456C"},
		{" 123456 ", "T123456C"},
		{"12345", "12345"},
		{"1234567", "1234567"},
		{"12345a", "12345A"},
		{"", ""},
		{"T12*456C", "T12*456C"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	reg := testRegistry(t, "T123456C", "T999999C")

	v, found, err := reg.Validate("t123456c")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !found {
		t.Fatal("plate not found, want found")
	}
	if v.Plate != "T123456C" {
		t.Errorf("plate = %q, want T123456C", v.Plate)
	}

	// Bare digits normalize into the TLC shape.
	_, found, err = reg.Validate("999999")
	if err != nil {
		t.Fatalf("Validate digits: %v", err)
	}
	if !found {
		t.Error("6-digit form of a known plate not found")
	}

	_, found, err = reg.Validate("T000000C")
	if err != nil {
		t.Fatalf("Validate missing: %v", err)
	}
	if found {
		t.Error("unknown plate reported as found")
	}
}

func TestSearchWildcard(t *testing.T) {
	reg := testRegistry(t, "T123456C", "T123956C", "T123456A", "T999999C")

	tests := []struct {
		pattern string
		want    []string
	}{
		// '*' is exactly one character.
		{"T123*56C", []string{"T123456C", "T123956C"}},
		{"T123456*", []string{"T123456A", "T123456C"}},
		{"T*23456C", []string{"T123456C"}},
		{"T123456C", []string{"T123456C"}}, // no star, exact
		{"T00000*C", nil},
		{"T123456**", nil}, // one char too long
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			vehicles, err := reg.SearchWildcard(tt.pattern)
			if err != nil {
				t.Fatalf("SearchWildcard: %v", err)
			}
			got := make([]string, 0, len(vehicles))
			for _, v := range vehicles {
				got = append(got, v.Plate)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("matches = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("match %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFindSimilar(t *testing.T) {
	reg := testRegistry(t, "T123456C", "T123457C", "T123756C", "T999999C", "SHORT")

	got, err := reg.FindSimilar("T123458C", 10)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}

	// T123456C and T123457C differ in one position, T123756C in two.
	// T999999C differs in too many; SHORT has a different length.
	want := map[string]bool{"T123456C": true, "T123457C": true, "T123756C": true}
	if len(got) != len(want) {
		t.Fatalf("similar = %v, want %d candidates", got, len(want))
	}
	for _, p := range got {
		if !want[p] {
			t.Errorf("unexpected candidate %q", p)
		}
	}
	// Two-diff candidate sorts last.
	if got[len(got)-1] != "T123756C" {
		t.Errorf("last candidate = %q, want the 2-diff plate T123756C", got[len(got)-1])
	}
}

func TestFindSimilar_ExcludesExactAndCapsResults(t *testing.T) {
	reg := testRegistry(t, "T111111C", "T111112C", "T111113C", "T111114C")

	got, err := reg.FindSimilar("T111111C", 2)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("similar = %v, want exactly 2 (capped)", got)
	}
	for _, p := range got {
		if p == "T111111C" {
			t.Error("exact match included in similarity results")
		}
	}
}

func TestSuggest(t *testing.T) {
	reg := testRegistry(t, "T123456C", "T123956C")

	// With a star: wildcard path.
	got, err := reg.Suggest("T123*56C", 5)
	if err != nil {
		t.Fatalf("Suggest wildcard: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("wildcard suggestions = %v, want 2", got)
	}

	// Without a star: similarity path.
	got, err = reg.Suggest("T123756C", 5)
	if err != nil {
		t.Fatalf("Suggest similar: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("similar suggestions = %v, want 2", got)
	}
}
