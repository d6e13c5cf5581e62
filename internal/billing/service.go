// Copyright (c) 2026 DevisApp. All rights reserved.

package billing

import (
	"context"

	"github.com/Kad123/DevisAppCC/internal/crm"
	"github.com/Kad123/DevisAppCC/internal/platform/clock"
	"github.com/Kad123/DevisAppCC/pkg/pagination"
)

// # Contracts & Types

// ProjetDirectory resolves project references when a quote is created.
//
// Implemented by [crm.PostgresProjetRepository]; the narrow interface keeps
// billing testable without a CRM database.
type ProjetDirectory interface {
	FindByID(context context.Context, id int) (*crm.Projet, error)
}

// Service implements quote management and the invoice engine use cases.
type Service struct {
	devisRepository   DevisRepository
	factureRepository FactureRepository
	projets           ProjetDirectory
	clock             clock.Clock
}

// NewService constructs a new billing [Service] with its dependencies.
func NewService(
	devisRepo DevisRepository,
	factureRepo FactureRepository,
	projets ProjetDirectory,
	clk clock.Clock,
) *Service {
	if clk == nil {
		clk = clock.System{}
	}

	return &Service{
		devisRepository:   devisRepo,
		factureRepository: factureRepo,
		projets:           projets,
		clock:             clk,
	}
}

// # Quote Use Cases

// LigneInput is one priced line of a quote creation request.
type LigneInput struct {
	Designation    string
	Unite          string
	Quantite       float64
	PrixUnitaireHT float64
}

// LotInput is one work package of a quote creation request.
type LotInput struct {
	Nom    string
	Ordre  int
	Lignes []LigneInput
}

// DevisInput holds the data required to create a full quote.
type DevisInput struct {
	ProjetID      int
	Nom           string
	TauxTVA       float64
	ValiditeJours int
	Lots          []LotInput
}

/*
CreateDevis builds and persists a complete quote with derived totals.

Description: Validates the owning project, inherits its client, computes
every total bottom-up (ligne, lot, devis HT, TTC), and persists the whole
tree in one transaction with status Brouillon.

Parameters:
  - context: context.Context
  - userID: int (the authenticated author)
  - input: DevisInput

Returns:
  - *Devis: Created entity with hydrated IDs and totals
  - error: NotFound (project) or storage failures
*/
func (service *Service) CreateDevis(context context.Context, userID int, input DevisInput) (*Devis, error) {

	projet, err := service.projets.FindByID(context, input.ProjetID)
	if err != nil {
		return nil, err
	}

	tauxTVA := input.TauxTVA
	if tauxTVA == 0 {
		tauxTVA = 20.0
	}

	validiteJours := input.ValiditeJours
	if validiteJours == 0 {
		validiteJours = 30
	}

	devis := &Devis{
		ProjetID:      projet.ID,
		ClientID:      projet.ClientID,
		UserID:        userID,
		Nom:           input.Nom,
		Statut:        DevisBrouillon,
		DateEmission:  service.clock.Now(),
		TauxTVA:       tauxTVA,
		ValiditeJours: validiteJours,
		Lots:          make([]LotDevis, 0, len(input.Lots)),
	}

	// Totals are derived strictly bottom-up; client-supplied totals are
	// ignored by construction since the input carries none.
	for _, lotInput := range input.Lots {
		lot := LotDevis{
			Nom:         lotInput.Nom,
			Ordre:       lotInput.Ordre,
			LignesPoste: make([]LignePoste, 0, len(lotInput.Lignes)),
		}

		for _, ligneInput := range lotInput.Lignes {
			ligne := LignePoste{
				Designation:    ligneInput.Designation,
				Unite:          ligneInput.Unite,
				Quantite:       ligneInput.Quantite,
				PrixUnitaireHT: ligneInput.PrixUnitaireHT,
			}
			ligne.TotalLigneHT = ComputeLigneTotal(ligne)
			lot.LignesPoste = append(lot.LignesPoste, ligne)
		}

		lot.TotalLotHT = ComputeLotTotal(lot.LignesPoste)
		devis.Lots = append(devis.Lots, lot)
	}

	devis.TotalHT, devis.TotalTTC = ComputeDevisTotals(devis.Lots, devis.TauxTVA)

	if err := service.devisRepository.Create(context, devis); err != nil {
		return nil, err
	}

	return devis, nil
}

// GetDevis returns a quote with its full lot/line tree.
func (service *Service) GetDevis(context context.Context, id int) (*Devis, error) {
	return service.devisRepository.FindByID(context, id)
}

// ListDevis returns one page of quote headers. statut = "" lists all.
func (service *Service) ListDevis(context context.Context, statut string, params pagination.Params) ([]Devis, int, error) {
	return service.devisRepository.List(context, statut, params)
}

/*
UpdateDevis applies a partial update to a quote's scalar fields.

Description: Lots are never modified through this path. When the VAT rate
changes, the TTC total is recomputed from the stored HT total.

Parameters:
  - context: context.Context
  - id: int
  - patch: DevisPatch

Returns:
  - *Devis: Updated entity
  - error: NotFound or storage failures
*/
func (service *Service) UpdateDevis(context context.Context, id int, patch DevisPatch) (*Devis, error) {
	devis, err := service.devisRepository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if patch.Nom != nil {
		devis.Nom = *patch.Nom
	}
	if patch.Statut != nil {
		devis.Statut = *patch.Statut
	}
	if patch.ValiditeJours != nil {
		devis.ValiditeJours = *patch.ValiditeJours
	}
	if patch.TauxTVA != nil {
		devis.TauxTVA = *patch.TauxTVA
		devis.TotalTTC = ComputeTTC(devis.TotalHT, devis.TauxTVA)
	}

	if err := service.devisRepository.Update(context, devis); err != nil {
		return nil, err
	}

	return devis, nil
}

// DeleteDevis removes a quote and its lot/line tree.
func (service *Service) DeleteDevis(context context.Context, id int) error {
	if _, err := service.devisRepository.FindByID(context, id); err != nil {
		return err
	}
	return service.devisRepository.Delete(context, id)
}
