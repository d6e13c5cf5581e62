// Copyright (c) 2026 DevisApp. All rights reserved.

package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kad123/DevisAppCC/internal/billing"
	"github.com/Kad123/DevisAppCC/internal/crm"
	"github.com/Kad123/DevisAppCC/internal/platform/apperr"
	"github.com/Kad123/DevisAppCC/internal/platform/clock"
	"github.com/Kad123/DevisAppCC/pkg/pagination"
	"github.com/Kad123/DevisAppCC/pkg/pointer"
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

type fakeDevisRepository struct {
	devis  map[int]*billing.Devis
	nextID int
}

func newFakeDevisRepository() *fakeDevisRepository {
	return &fakeDevisRepository{devis: map[int]*billing.Devis{}, nextID: 1}
}

func (repo *fakeDevisRepository) Create(_ context.Context, devis *billing.Devis) error {
	devis.ID = repo.nextID
	repo.nextID++
	repo.devis[devis.ID] = devis
	return nil
}

func (repo *fakeDevisRepository) FindByID(_ context.Context, id int) (*billing.Devis, error) {
	devis, ok := repo.devis[id]
	if !ok {
		return nil, apperr.NotFound("Devis")
	}
	return devis, nil
}

func (repo *fakeDevisRepository) List(_ context.Context, statut string, _ pagination.Params) ([]billing.Devis, int, error) {
	collection := []billing.Devis{}
	for _, devis := range repo.devis {
		if statut == "" || devis.Statut == statut {
			collection = append(collection, *devis)
		}
	}
	return collection, len(collection), nil
}

func (repo *fakeDevisRepository) Update(_ context.Context, devis *billing.Devis) error {
	repo.devis[devis.ID] = devis
	return nil
}

func (repo *fakeDevisRepository) Delete(_ context.Context, id int) error {
	delete(repo.devis, id)
	return nil
}

type fakeFactureRepository struct {
	factures []*billing.Facture
	nextID   int

	// forcedConflicts makes the next N inserts fail with the sequence
	// conflict sentinel, simulating a concurrent writer winning the number.
	forcedConflicts int
}

func newFakeFactureRepository() *fakeFactureRepository {
	return &fakeFactureRepository{nextID: 1}
}

func (repo *fakeFactureRepository) Insert(_ context.Context, facture *billing.Facture) error {
	if repo.forcedConflicts > 0 {
		repo.forcedConflicts--
		return billing.ErrSequenceConflict
	}
	for _, existing := range repo.factures {
		if existing.NumeroFacture == facture.NumeroFacture {
			return billing.ErrSequenceConflict
		}
	}
	stored := *facture
	stored.ID = repo.nextID
	repo.nextID++
	repo.factures = append(repo.factures, &stored)
	facture.ID = stored.ID
	return nil
}

func (repo *fakeFactureRepository) FindByID(_ context.Context, id int) (*billing.Facture, error) {
	for _, facture := range repo.factures {
		if facture.ID == id {
			return facture, nil
		}
	}
	return nil, apperr.NotFound("Facture")
}

func (repo *fakeFactureRepository) FindLatest(_ context.Context) (*billing.Facture, error) {
	if len(repo.factures) == 0 {
		return nil, apperr.NotFound("Facture")
	}
	return repo.factures[len(repo.factures)-1], nil
}

func (repo *fakeFactureRepository) FindValideeByDevis(_ context.Context, devisID int) (*billing.Facture, error) {
	for _, facture := range repo.factures {
		if facture.DevisID == devisID && facture.Statut == billing.FactureValidee {
			return facture, nil
		}
	}
	return nil, apperr.NotFound("Facture")
}

func (repo *fakeFactureRepository) List(_ context.Context, _ pagination.Params) ([]billing.Facture, int, error) {
	collection := make([]billing.Facture, 0, len(repo.factures))
	for _, facture := range repo.factures {
		collection = append(collection, *facture)
	}
	return collection, len(collection), nil
}

func (repo *fakeFactureRepository) ListByDevis(_ context.Context, devisID int) ([]billing.Facture, error) {
	collection := []billing.Facture{}
	for _, facture := range repo.factures {
		if facture.DevisID == devisID {
			collection = append(collection, *facture)
		}
	}
	return collection, nil
}

func (repo *fakeFactureRepository) Update(_ context.Context, facture *billing.Facture) error {
	for i, existing := range repo.factures {
		if existing.ID == facture.ID {
			repo.factures[i] = facture
			return nil
		}
	}
	return apperr.NotFound("Facture")
}

// # Harness

type billingFixture struct {
	service  *billing.Service
	devis    *fakeDevisRepository
	factures *fakeFactureRepository
	clock    *clock.Fixed
}

func newBillingFixture(t *testing.T) *billingFixture {
	t.Helper()

	clk := clock.NewFixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	devisRepo := newFakeDevisRepository()
	factureRepo := newFakeFactureRepository()
	projets := &fakeProjetDirectory{projets: map[int]*crm.Projet{
		7: {ID: 7, Nom: "Rénovation cuisine", ClientID: 3},
	}}

	return &billingFixture{
		service:  billing.NewService(devisRepo, factureRepo, projets, clk),
		devis:    devisRepo,
		factures: factureRepo,
		clock:    clk,
	}
}

// newValidatedDevis creates a quote and flips it to an invoiceable status.
func (fixture *billingFixture) newValidatedDevis(t *testing.T, statut string) *billing.Devis {
	t.Helper()

	devis, err := fixture.service.CreateDevis(context.Background(), 1, billing.DevisInput{
		ProjetID: 7,
		Nom:      "Cuisine complète",
		Lots: []billing.LotInput{
			{Nom: "Plomberie", Ordre: 1, Lignes: []billing.LigneInput{
				{Designation: "Évier", Unite: "u", Quantite: 1, PrixUnitaireHT: 250},
				{Designation: "Main d'œuvre", Unite: "h", Quantite: 8, PrixUnitaireHT: 45},
			}},
		},
	})
	require.NoError(t, err)

	devis.Statut = statut
	require.NoError(t, fixture.devis.Update(context.Background(), devis))
	return devis
}

// # Quote Creation

/*
TestService_CreateDevis applies the defaults, inherits the project's client,
and derives every total bottom-up.
*/
func TestService_CreateDevis(t *testing.T) {
	fixture := newBillingFixture(t)

	devis, err := fixture.service.CreateDevis(context.Background(), 42, billing.DevisInput{
		ProjetID: 7,
		Nom:      "Cuisine complète",
		Lots: []billing.LotInput{
			{Nom: "Plomberie", Ordre: 1, Lignes: []billing.LigneInput{
				{Designation: "Évier", Unite: "u", Quantite: 1, PrixUnitaireHT: 250},
				{Designation: "Main d'œuvre", Unite: "h", Quantite: 8, PrixUnitaireHT: 45},
			}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, billing.DevisBrouillon, devis.Statut)
	assert.Equal(t, 3, devis.ClientID, "client must be inherited from the project")
	assert.Equal(t, 42, devis.UserID)
	assert.InDelta(t, 20.0, devis.TauxTVA, 0.0001)
	assert.Equal(t, 30, devis.ValiditeJours)

	require.Len(t, devis.Lots, 1)
	assert.InDelta(t, 610.0, devis.Lots[0].TotalLotHT, 0.0001)
	assert.InDelta(t, 610.0, devis.TotalHT, 0.0001)
	assert.InDelta(t, 732.0, devis.TotalTTC, 0.0001)
}

/*
TestService_CreateDevis_UnknownProjet rejects a quote on a missing project.
*/
func TestService_CreateDevis_UnknownProjet(t *testing.T) {
	fixture := newBillingFixture(t)

	_, err := fixture.service.CreateDevis(context.Background(), 1, billing.DevisInput{
		ProjetID: 999,
		Nom:      "Orphan",
	})

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}

/*
TestService_UpdateDevis_TauxTVA recomputes the TTC when the VAT rate changes.
*/
func TestService_UpdateDevis_TauxTVA(t *testing.T) {
	fixture := newBillingFixture(t)
	devis := fixture.newValidatedDevis(t, billing.DevisBrouillon)

	updated, err := fixture.service.UpdateDevis(context.Background(), devis.ID, billing.DevisPatch{
		TauxTVA: pointer.To(10.0),
	})
	require.NoError(t, err)

	assert.InDelta(t, 10.0, updated.TauxTVA, 0.0001)
	assert.InDelta(t, 671.0, updated.TotalTTC, 0.0001)
}

// # Invoice Numbering

/*
TestService_CreateFactureFromDevis_Numbering verifies the FAC-YYYYMMDD-NNN
pattern and its monotonically increasing sequence.
*/
func TestService_CreateFactureFromDevis_Numbering(t *testing.T) {
	fixture := newBillingFixture(t)

	first, err := fixture.service.CreateFactureFromDevis(context.Background(), fixture.newValidatedDevis(t, billing.DevisValide).ID)
	require.NoError(t, err)
	assert.Equal(t, "FAC-20260301-001", first.NumeroFacture)
	assert.Equal(t, billing.FactureValidee, first.Statut)

	second, err := fixture.service.CreateFactureFromDevis(context.Background(), fixture.newValidatedDevis(t, billing.DevisAccepte).ID)
	require.NoError(t, err)
	assert.Equal(t, "FAC-20260301-002", second.NumeroFacture)

	third, err := fixture.service.CreateFactureFromDevis(context.Background(), fixture.newValidatedDevis(t, billing.DevisValide).ID)
	require.NoError(t, err)
	assert.Equal(t, "FAC-20260301-003", third.NumeroFacture)
}

/*
TestService_CreateFactureFromDevis_SequenceAcrossDays documents the
latest-record increment rule: the sequence keeps counting from the latest
persisted number even after the date changes.
*/
func TestService_CreateFactureFromDevis_SequenceAcrossDays(t *testing.T) {
	fixture := newBillingFixture(t)

	_, err := fixture.service.CreateFactureFromDevis(context.Background(), fixture.newValidatedDevis(t, billing.DevisValide).ID)
	require.NoError(t, err)

	fixture.clock.Advance(24 * time.Hour)

	next, err := fixture.service.CreateFactureFromDevis(context.Background(), fixture.newValidatedDevis(t, billing.DevisValide).ID)
	require.NoError(t, err)
	assert.Equal(t, "FAC-20260301-002", next.NumeroFacture)
}

/*
TestService_CreateFactureFromDevis_CopiesTotals freezes the quote totals
into the ledger entry.
*/
func TestService_CreateFactureFromDevis_CopiesTotals(t *testing.T) {
	fixture := newBillingFixture(t)
	devis := fixture.newValidatedDevis(t, billing.DevisValide)

	facture, err := fixture.service.CreateFactureFromDevis(context.Background(), devis.ID)
	require.NoError(t, err)

	assert.InDelta(t, devis.TotalHT, facture.TotalHT, 0.0001)
	assert.InDelta(t, devis.TotalTTC, facture.TotalTTC, 0.0001)
	assert.Equal(t, fixture.clock.Now(), facture.DateEmission)
}

/*
TestService_CreateFactureFromDevis_Preconditions rejects non-invoiceable
quotes and quotes that already carry a validated invoice.
*/
func TestService_CreateFactureFromDevis_Preconditions(t *testing.T) {
	fixture := newBillingFixture(t)

	// A draft quote is not invoiceable.
	draft := fixture.newValidatedDevis(t, billing.DevisBrouillon)
	_, err := fixture.service.CreateFactureFromDevis(context.Background(), draft.ID)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "UNPROCESSABLE", ae.Code)

	// At most one Validée invoice per quote.
	validated := fixture.newValidatedDevis(t, billing.DevisValide)
	_, err = fixture.service.CreateFactureFromDevis(context.Background(), validated.ID)
	require.NoError(t, err)

	_, err = fixture.service.CreateFactureFromDevis(context.Background(), validated.ID)
	ae = apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "CONFLICT", ae.Code)
}

/*
TestService_CreateFactureFromDevis_Retry re-derives the number after losing
a sequence race, then gives up with a server error once the bound is hit.
*/
func TestService_CreateFactureFromDevis_Retry(t *testing.T) {
	fixture := newBillingFixture(t)

	// One lost race: the engine retries and succeeds transparently.
	fixture.factures.forcedConflicts = 1
	facture, err := fixture.service.CreateFactureFromDevis(context.Background(), fixture.newValidatedDevis(t, billing.DevisValide).ID)
	require.NoError(t, err)
	assert.Equal(t, "FAC-20260301-001", facture.NumeroFacture)

	// Conflicts on every attempt: bounded retries, then INTERNAL_ERROR.
	fixture.factures.forcedConflicts = 3
	_, err = fixture.service.CreateFactureFromDevis(context.Background(), fixture.newValidatedDevis(t, billing.DevisValide).ID)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "INTERNAL_ERROR", ae.Code)
}

// # Immutability

/*
TestService_UpdateFacture_Immutable refuses any patch against a Validée
invoice with the dedicated IMMUTABLE_ENTITY code.
*/
func TestService_UpdateFacture_Immutable(t *testing.T) {
	fixture := newBillingFixture(t)

	facture, err := fixture.service.CreateFactureFromDevis(context.Background(), fixture.newValidatedDevis(t, billing.DevisValide).ID)
	require.NoError(t, err)

	_, err = fixture.service.UpdateFacture(context.Background(), facture.ID, billing.FacturePatch{
		MentionFranchiseTVA: pointer.To("TVA non applicable, art. 293 B du CGI"),
	})

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "IMMUTABLE_ENTITY", ae.Code)
}

/*
TestService_UpdateFacture_Draft applies the patch to a draft invoice.
*/
func TestService_UpdateFacture_Draft(t *testing.T) {
	fixture := newBillingFixture(t)

	draft := &billing.Facture{
		DevisID:       1,
		NumeroFacture: "FAC-20260301-001",
		Statut:        billing.FactureBrouillon,
	}
	require.NoError(t, fixture.factures.Insert(context.Background(), draft))

	prestation := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	updated, err := fixture.service.UpdateFacture(context.Background(), draft.ID, billing.FacturePatch{
		DatePrestation:      &prestation,
		MentionFranchiseTVA: pointer.To("TVA non applicable, art. 293 B du CGI"),
	})
	require.NoError(t, err)

	require.NotNil(t, updated.DatePrestation)
	assert.Equal(t, prestation, *updated.DatePrestation)
	assert.Equal(t, "TVA non applicable, art. 293 B du CGI", updated.MentionFranchiseTVA)
}

// # Credit Notes

/*
TestService_CreateAvoir negates both totals under the AVOIR prefix while
leaving the source invoice untouched.
*/
func TestService_CreateAvoir(t *testing.T) {
	fixture := newBillingFixture(t)

	source, err := fixture.service.CreateFactureFromDevis(context.Background(), fixture.newValidatedDevis(t, billing.DevisValide).ID)
	require.NoError(t, err)

	avoir, err := fixture.service.CreateAvoir(context.Background(), source.ID)
	require.NoError(t, err)

	assert.Equal(t, "AVOIR-20260301-002", avoir.NumeroFacture)
	assert.Equal(t, billing.FactureAvoir, avoir.Statut)
	assert.InDelta(t, -source.TotalHT, avoir.TotalHT, 0.0001)
	assert.InDelta(t, -source.TotalTTC, avoir.TotalTTC, 0.0001)
	assert.Equal(t, source.DevisID, avoir.DevisID)

	// The source stays exactly as it was.
	reloaded, err := fixture.service.GetFacture(context.Background(), source.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.FactureValidee, reloaded.Statut)
	assert.InDelta(t, source.TotalHT, reloaded.TotalHT, 0.0001)
}

/*
TestService_CreateAvoir_RequiresValidatedSource rejects credit notes against
drafts and against other credit notes.
*/
func TestService_CreateAvoir_RequiresValidatedSource(t *testing.T) {
	fixture := newBillingFixture(t)

	source, err := fixture.service.CreateFactureFromDevis(context.Background(), fixture.newValidatedDevis(t, billing.DevisValide).ID)
	require.NoError(t, err)

	avoir, err := fixture.service.CreateAvoir(context.Background(), source.ID)
	require.NoError(t, err)

	// An avoir is not a valid source for another avoir.
	_, err = fixture.service.CreateAvoir(context.Background(), avoir.ID)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}
