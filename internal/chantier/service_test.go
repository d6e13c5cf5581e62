// Copyright (c) 2026 DevisApp. All rights reserved.

package chantier_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kad123/DevisAppCC/internal/chantier"
	"github.com/Kad123/DevisAppCC/internal/crm"
	"github.com/Kad123/DevisAppCC/internal/platform/apperr"
	"github.com/Kad123/DevisAppCC/internal/platform/clock"
)

// # In-Memory Fakes

type fakeProjetDirectory struct {
	projets map[int]*crm.Projet
}

func (directory *fakeProjetDirectory) FindByID(_ context.Context, id int) (*crm.Projet, error) {
	projet, ok := directory.projets[id]
	if !ok {
		return nil, apperr.NotFound("Projet")
	}
	return projet, nil
}

type fakeJalonRepository struct {
	jalons map[int]*chantier.Jalon
	nextID int
}

func newFakeJalonRepository() *fakeJalonRepository {
	return &fakeJalonRepository{jalons: map[int]*chantier.Jalon{}, nextID: 1}
}

func (repo *fakeJalonRepository) Create(_ context.Context, jalon *chantier.Jalon) error {
	jalon.ID = repo.nextID
	repo.nextID++
	repo.jalons[jalon.ID] = jalon
	return nil
}

func (repo *fakeJalonRepository) FindByID(_ context.Context, id int) (*chantier.Jalon, error) {
	jalon, ok := repo.jalons[id]
	if !ok {
		return nil, apperr.NotFound("Jalon")
	}
	return jalon, nil
}

func (repo *fakeJalonRepository) ListByProjet(_ context.Context, projetID int) ([]chantier.Jalon, error) {
	collection := []chantier.Jalon{}
	for _, jalon := range repo.jalons {
		if jalon.ProjetID == projetID {
			collection = append(collection, *jalon)
		}
	}
	return collection, nil
}

func (repo *fakeJalonRepository) Update(_ context.Context, jalon *chantier.Jalon) error {
	repo.jalons[jalon.ID] = jalon
	return nil
}

func (repo *fakeJalonRepository) Delete(_ context.Context, id int) error {
	delete(repo.jalons, id)
	return nil
}

type fakeJournalRepository struct {
	entries   []*chantier.JournalEntry
	nextID    int
	lastLimit int
}

func newFakeJournalRepository() *fakeJournalRepository {
	return &fakeJournalRepository{nextID: 1}
}

func (repo *fakeJournalRepository) Create(_ context.Context, entry *chantier.JournalEntry) error {
	entry.ID = repo.nextID
	repo.nextID++
	repo.entries = append(repo.entries, entry)
	return nil
}

func (repo *fakeJournalRepository) ListByProjet(_ context.Context, projetID, limit int) ([]chantier.JournalEntry, error) {
	repo.lastLimit = limit
	collection := []chantier.JournalEntry{}
	for _, entry := range repo.entries {
		if entry.ProjetID == projetID {
			collection = append(collection, *entry)
		}
	}
	if len(collection) > limit {
		collection = collection[:limit]
	}
	return collection, nil
}

type fakePointageRepository struct {
	pointages []*chantier.Pointage
	nextID    int
}

func newFakePointageRepository() *fakePointageRepository {
	return &fakePointageRepository{nextID: 1}
}

func (repo *fakePointageRepository) Create(_ context.Context, pointage *chantier.Pointage) error {
	pointage.ID = repo.nextID
	repo.nextID++
	repo.pointages = append(repo.pointages, pointage)
	return nil
}

func (repo *fakePointageRepository) ListByUser(_ context.Context, userID int, from, to time.Time) ([]chantier.Pointage, error) {
	collection := []chantier.Pointage{}
	for _, pointage := range repo.pointages {
		if pointage.UserID == userID && !pointage.DateTravail.Before(from) && !pointage.DateTravail.After(to) {
			collection = append(collection, *pointage)
		}
	}
	return collection, nil
}

// # Harness

type chantierFixture struct {
	service   *chantier.Service
	jalons    *fakeJalonRepository
	journal   *fakeJournalRepository
	pointages *fakePointageRepository
	clock     *clock.Fixed
}

func newChantierFixture(t *testing.T) *chantierFixture {
	t.Helper()

	clk := clock.NewFixed(time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))
	jalons := newFakeJalonRepository()
	journal := newFakeJournalRepository()
	pointages := newFakePointageRepository()
	projets := &fakeProjetDirectory{projets: map[int]*crm.Projet{
		7: {ID: 7, Nom: "Extension garage", ClientID: 3},
	}}

	return &chantierFixture{
		service:   chantier.NewService(jalons, journal, pointages, projets, clk),
		jalons:    jalons,
		journal:   journal,
		pointages: pointages,
		clock:     clk,
	}
}

// # Duration Math

/*
TestComputeDuree checks the decimal-hour conversion with cent rounding.
*/
func TestComputeDuree(t *testing.T) {
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		duration time.Duration
		expected float64
	}{
		{"ninety_minutes", 90 * time.Minute, 1.5},
		{"full_day", 8 * time.Hour, 8.0},
		{"twenty_minutes", 20 * time.Minute, 0.33},
		{"seven_and_three_quarters", 7*time.Hour + 45*time.Minute, 7.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, chantier.ComputeDuree(base, base.Add(tt.duration)), 0.0001)
		})
	}
}

// # Milestones

/*
TestService_CompleteJalon flips termine and stamps the realization date from
the clock; completing twice keeps the original date.
*/
func TestService_CompleteJalon(t *testing.T) {
	fixture := newChantierFixture(t)

	jalon, err := fixture.service.CreateJalon(context.Background(), chantier.JalonInput{
		ProjetID:   7,
		Nom:        "Fondations",
		DatePrevue: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.False(t, jalon.Termine)
	assert.Nil(t, jalon.DateRealisation)

	completed, err := fixture.service.CompleteJalon(context.Background(), jalon.ID)
	require.NoError(t, err)
	assert.True(t, completed.Termine)
	require.NotNil(t, completed.DateRealisation)
	assert.Equal(t, fixture.clock.Now(), *completed.DateRealisation)

	// A second completion is a no-op: the original date survives.
	firstDate := *completed.DateRealisation
	fixture.clock.Advance(48 * time.Hour)

	again, err := fixture.service.CompleteJalon(context.Background(), jalon.ID)
	require.NoError(t, err)
	require.NotNil(t, again.DateRealisation)
	assert.Equal(t, firstDate, *again.DateRealisation)
}

/*
TestService_CreateJalon_UnknownProjet rejects milestones on missing projects.
*/
func TestService_CreateJalon_UnknownProjet(t *testing.T) {
	fixture := newChantierFixture(t)

	_, err := fixture.service.CreateJalon(context.Background(), chantier.JalonInput{
		ProjetID:   999,
		Nom:        "Orphan",
		DatePrevue: time.Now(),
	})

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}

// # Site Journal

/*
TestService_CreateJournalEntry stamps author, date, and the Note default
type.
*/
func TestService_CreateJournalEntry(t *testing.T) {
	fixture := newChantierFixture(t)

	entry, err := fixture.service.CreateJournalEntry(context.Background(), 42, chantier.JournalInput{
		ProjetID:    7,
		Description: "Coulage de la dalle terminé",
	})
	require.NoError(t, err)

	assert.Equal(t, 42, entry.UserID)
	assert.Equal(t, chantier.EntryNote, entry.TypeEntry)
	assert.Equal(t, fixture.clock.Now(), entry.DateEntry)
}

/*
TestService_ListJournalByProjet_DefaultLimit falls back to the standard
window when the caller passes no limit.
*/
func TestService_ListJournalByProjet_DefaultLimit(t *testing.T) {
	fixture := newChantierFixture(t)

	_, err := fixture.service.ListJournalByProjet(context.Background(), 7, 0)
	require.NoError(t, err)
	assert.Equal(t, chantier.DefaultJournalLimit, fixture.journal.lastLimit)

	_, err = fixture.service.ListJournalByProjet(context.Background(), 7, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, fixture.journal.lastLimit)
}

// # Hour Tracking

/*
TestService_CreatePointage derives the duration server-side.
*/
func TestService_CreatePointage(t *testing.T) {
	fixture := newChantierFixture(t)

	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	pointage, err := fixture.service.CreatePointage(context.Background(), 42, chantier.PointageInput{
		ProjetID:        7,
		DateTravail:     start,
		HeuresDebut:     start,
		HeuresFin:       start.Add(7*time.Hour + 30*time.Minute),
		LotRattachement: "Gros œuvre",
	})
	require.NoError(t, err)

	assert.Equal(t, 42, pointage.UserID)
	assert.InDelta(t, 7.5, pointage.DureeHeures, 0.0001)
}

/*
TestService_CreatePointage_RejectsInvertedRange refuses rows whose end is
not strictly after the start.
*/
func TestService_CreatePointage_RejectsInvertedRange(t *testing.T) {
	fixture := newChantierFixture(t)
	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
	}{
		{"end_before_start", start.Add(-time.Hour)},
		{"end_equals_start", start},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fixture.service.CreatePointage(context.Background(), 42, chantier.PointageInput{
				ProjetID:    7,
				DateTravail: start,
				HeuresDebut: start,
				HeuresFin:   tt.end,
			})

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "VALIDATION_ERROR", ae.Code)
			assert.Empty(t, fixture.pointages.pointages)
		})
	}
}
