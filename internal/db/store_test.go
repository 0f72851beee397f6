package db

import (
	"errors"
	"testing"
	"time"

	"github.com/oceanwatch/oceanwatch/internal/config"
	"github.com/oceanwatch/oceanwatch/internal/models"
)

// testStore opens an in-memory SQLite database with all tables migrated.
// Going through Connect keeps TranslateError on, which the duplicate tests
// depend on.
func testStore(t *testing.T) *Store {
	t.Helper()
	gdb, err := Connect(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return NewStore(gdb)
}

func strPtr(s string) *string { return &s }

func TestGetOrCreateContributorByPhone_Idempotent(t *testing.T) {
	store := testStore(t)

	first, err := store.GetOrCreateContributorByPhone("+15551234567")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := store.GetOrCreateContributorByPhone("+15551234567")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("got two contributors (%d, %d) for one phone number", first.ID, second.ID)
	}

	count, err := store.ContributorCount()
	if err != nil {
		t.Fatalf("contributor count: %v", err)
	}
	if count != 1 {
		t.Errorf("contributor count = %d, want 1", count)
	}
}

func TestContributorByPhone_NotFound(t *testing.T) {
	store := testStore(t)

	c, err := store.ContributorByPhone("+15550000000")
	if err != nil {
		t.Fatalf("ContributorByPhone: %v", err)
	}
	if c != nil {
		t.Errorf("got contributor %+v, want nil for unknown phone", c)
	}
}

func TestSetPreferredName(t *testing.T) {
	store := testStore(t)

	c, err := store.GetOrCreateContributorByPhone("+15551234567")
	if err != nil {
		t.Fatalf("create contributor: %v", err)
	}
	if err := store.SetPreferredName(c.ID, "Alex"); err != nil {
		t.Fatalf("SetPreferredName: %v", err)
	}

	got, err := store.ContributorByID(c.ID)
	if err != nil {
		t.Fatalf("ContributorByID: %v", err)
	}
	if got.PreferredName == nil || *got.PreferredName != "Alex" {
		t.Errorf("preferred name = %v, want Alex", got.PreferredName)
	}
}

func TestInsertSighting_DuplicateImagePath(t *testing.T) {
	store := testStore(t)

	c, err := store.GetOrCreateContributorByPhone("+15551234567")
	if err != nil {
		t.Fatalf("create contributor: %v", err)
	}

	ns := NewSighting{
		LicensePlate:  strPtr("T123456C"),
		Timestamp:     time.Now(),
		ImagePath:     "images/sighting_abc123.jpg",
		ContributorID: c.ID,
	}
	if _, err := store.InsertSighting(ns); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	// Same image path again, even with a different plate.
	ns.LicensePlate = strPtr("T999999C")
	_, err = store.InsertSighting(ns)
	if !errors.Is(err, ErrDuplicateImage) {
		t.Fatalf("second insert error = %v, want ErrDuplicateImage", err)
	}

	total, err := store.TotalSightingCount()
	if err != nil {
		t.Fatalf("total count: %v", err)
	}
	if total != 1 {
		t.Errorf("sighting count after duplicate = %d, want 1", total)
	}
}

func TestSightingCounts(t *testing.T) {
	store := testStore(t)

	alice, _ := store.GetOrCreateContributorByPhone("+15551111111")
	bob, _ := store.GetOrCreateContributorByPhone("+15552222222")

	inserts := []struct {
		plate       string
		path        string
		contributor uint
	}{
		{"T123456C", "images/a.jpg", alice.ID},
		{"T123456C", "images/b.jpg", alice.ID},
		{"T999999C", "images/c.jpg", bob.ID},
	}
	for _, in := range inserts {
		_, err := store.InsertSighting(NewSighting{
			LicensePlate:  strPtr(in.plate),
			Timestamp:     time.Now(),
			ImagePath:     in.path,
			ContributorID: in.contributor,
		})
		if err != nil {
			t.Fatalf("insert %s: %v", in.path, err)
		}
	}

	tests := []struct {
		name string
		got  func() (int64, error)
		want int64
	}{
		{"plate T123456C", func() (int64, error) { return store.PlateSightingCount("T123456C") }, 2},
		{"plate T999999C", func() (int64, error) { return store.PlateSightingCount("T999999C") }, 1},
		{"total", store.TotalSightingCount, 3},
		{"unique plates", store.UniquePlateCount, 2},
		{"alice", func() (int64, error) { return store.ContributorSightingCount(alice.ID) }, 2},
		{"bob", func() (int64, error) { return store.ContributorSightingCount(bob.ID) }, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := tt.got()
			if err != nil {
				t.Fatalf("count: %v", err)
			}
			if n != tt.want {
				t.Errorf("count = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestUnpostedSightings_OrderAndFilter(t *testing.T) {
	store := testStore(t)

	c, _ := store.GetOrCreateContributorByPhone("+15551234567")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	newest, err := store.InsertSighting(NewSighting{
		LicensePlate:  strPtr("T333333C"),
		Timestamp:     base.Add(2 * time.Hour),
		ImagePath:     "images/newest.jpg",
		ContributorID: c.ID,
	})
	if err != nil {
		t.Fatalf("insert newest: %v", err)
	}
	oldest, err := store.InsertSighting(NewSighting{
		LicensePlate:  strPtr("T111111C"),
		Timestamp:     base,
		ImagePath:     "images/oldest.jpg",
		ContributorID: c.ID,
	})
	if err != nil {
		t.Fatalf("insert oldest: %v", err)
	}
	// Unreadable plate: never posted.
	if _, err := store.InsertSighting(NewSighting{
		Timestamp:     base.Add(time.Hour),
		ImagePath:     "images/noplate.jpg",
		ContributorID: c.ID,
	}); err != nil {
		t.Fatalf("insert plateless: %v", err)
	}

	unposted, err := store.UnpostedSightings(0)
	if err != nil {
		t.Fatalf("UnpostedSightings: %v", err)
	}
	if len(unposted) != 2 {
		t.Fatalf("unposted count = %d, want 2 (plateless excluded)", len(unposted))
	}
	if unposted[0].ID != oldest.ID || unposted[1].ID != newest.ID {
		t.Errorf("unposted order = [%d %d], want oldest first [%d %d]",
			unposted[0].ID, unposted[1].ID, oldest.ID, newest.ID)
	}

	if err := store.MarkPosted(oldest.ID, "at://did:plc:abc/app.bsky.feed.post/xyz"); err != nil {
		t.Fatalf("MarkPosted: %v", err)
	}
	unposted, err = store.UnpostedSightings(0)
	if err != nil {
		t.Fatalf("UnpostedSightings after mark: %v", err)
	}
	if len(unposted) != 1 || unposted[0].ID != newest.ID {
		t.Errorf("after MarkPosted, unposted = %v, want only sighting %d", unposted, newest.ID)
	}
}

func TestUnpostedSightings_Limit(t *testing.T) {
	store := testStore(t)

	c, _ := store.GetOrCreateContributorByPhone("+15551234567")
	for i := 0; i < 6; i++ {
		_, err := store.InsertSighting(NewSighting{
			LicensePlate:  strPtr("T123456C"),
			Timestamp:     time.Date(2026, 3, 1, i, 0, 0, 0, time.UTC),
			ImagePath:     "images/" + string(rune('a'+i)) + ".jpg",
			ContributorID: c.ID,
		})
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	unposted, err := store.UnpostedSightings(4)
	if err != nil {
		t.Fatalf("UnpostedSightings: %v", err)
	}
	if len(unposted) != 4 {
		t.Errorf("limited unposted count = %d, want 4", len(unposted))
	}
}

func TestSightingsMissingHashes(t *testing.T) {
	store := testStore(t)

	c, _ := store.GetOrCreateContributorByPhone("+15551234567")
	if _, err := store.InsertSighting(NewSighting{
		LicensePlate:    strPtr("T123456C"),
		Timestamp:       time.Now(),
		ImagePath:       "images/hashed.jpg",
		ImageHashSHA256: "deadbeef",
		ContributorID:   c.ID,
	}); err != nil {
		t.Fatalf("insert hashed: %v", err)
	}
	unhashed, _ := store.InsertSighting(NewSighting{
		LicensePlate:  strPtr("T123456C"),
		Timestamp:     time.Now(),
		ImagePath:     "images/unhashed.jpg",
		ContributorID: c.ID,
	})

	missing, err := store.SightingsMissingHashes()
	if err != nil {
		t.Fatalf("SightingsMissingHashes: %v", err)
	}
	if len(missing) != 1 || missing[0].ID != unhashed.ID {
		t.Fatalf("missing = %v, want only sighting %d", missing, unhashed.ID)
	}

	if err := store.UpdateSightingHashes(unhashed.ID, "cafebabe", "0f0f"); err != nil {
		t.Fatalf("UpdateSightingHashes: %v", err)
	}
	missing, err = store.SightingsMissingHashes()
	if err != nil {
		t.Fatalf("SightingsMissingHashes after update: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("missing after update = %v, want none", missing)
	}

	var got models.Sighting
	if err := store.DB().First(&got, unhashed.ID).Error; err != nil {
		t.Fatalf("reload sighting: %v", err)
	}
	if got.ImageHashSHA256 != "cafebabe" || got.ImageHashPerceptual != "0f0f" {
		t.Errorf("hashes = (%s, %s), want (cafebabe, 0f0f)", got.ImageHashSHA256, got.ImageHashPerceptual)
	}
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := Connect(config.DatabaseConfig{Driver: "oracle", DSN: "whatever"})
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
