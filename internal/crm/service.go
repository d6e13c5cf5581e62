// Copyright (c) 2026 DevisApp. All rights reserved.

package crm

import (
	"context"

	"github.com/Kad123/DevisAppCC/pkg/pagination"
	"github.com/Kad123/DevisAppCC/pkg/slug"
)

// Service implements client and project management use cases.
type Service struct {
	clientRepository ClientRepository
	projetRepository ProjetRepository
}

// NewService constructs a new CRM [Service] with its repositories.
func NewService(clientRepo ClientRepository, projetRepo ProjetRepository) *Service {
	return &Service{
		clientRepository: clientRepo,
		projetRepository: projetRepo,
	}
}

// # Client Use Cases

// ClientInput holds the data required to register a new client.
type ClientInput struct {
	NomSociete    string
	NomContact    string
	PrenomContact string
	Email         string
	Telephone     string
	Adresse       string
}

// CreateClient persists a new client. Email uniqueness is enforced by the
// repository's unique index and surfaces as a Conflict error.
func (service *Service) CreateClient(context context.Context, input ClientInput) (*Client, error) {
	client := &Client{
		NomSociete:    input.NomSociete,
		NomContact:    input.NomContact,
		PrenomContact: input.PrenomContact,
		Email:         input.Email,
		Telephone:     input.Telephone,
		Adresse:       input.Adresse,
	}

	if err := service.clientRepository.Create(context, client); err != nil {
		return nil, err
	}

	return client, nil
}

// GetClient returns a single client by ID.
func (service *Service) GetClient(context context.Context, id int) (*Client, error) {
	return service.clientRepository.FindByID(context, id)
}

// ListClients returns one page of clients plus the total count.
func (service *Service) ListClients(context context.Context, params pagination.Params) ([]Client, int, error) {
	return service.clientRepository.List(context, params)
}

// UpdateClient applies a partial update to an existing client.
//
// The patch struct makes the set of mutable fields explicit: every assignment
// below is checked at compile time, there is no generic field iteration.
func (service *Service) UpdateClient(context context.Context, id int, patch ClientPatch) (*Client, error) {
	client, err := service.clientRepository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if patch.NomSociete != nil {
		client.NomSociete = *patch.NomSociete
	}
	if patch.NomContact != nil {
		client.NomContact = *patch.NomContact
	}
	if patch.PrenomContact != nil {
		client.PrenomContact = *patch.PrenomContact
	}
	if patch.Email != nil {
		client.Email = *patch.Email
	}
	if patch.Telephone != nil {
		client.Telephone = *patch.Telephone
	}
	if patch.Adresse != nil {
		client.Adresse = *patch.Adresse
	}

	if err := service.clientRepository.Update(context, client); err != nil {
		return nil, err
	}

	return client, nil
}

// DeleteClient removes a client after confirming it exists, so the caller
// gets a 404 instead of a silent no-op.
func (service *Service) DeleteClient(context context.Context, id int) error {
	if _, err := service.clientRepository.FindByID(context, id); err != nil {
		return err
	}
	return service.clientRepository.Delete(context, id)
}

// # Project Use Cases

// ProjetInput holds the data required to open a new project.
type ProjetInput struct {
	Nom         string
	Description string
	ClientID    int
}

// CreateProjet opens a new project for an existing client.
//
// The reference code is slugged from the project name once, at creation.
func (service *Service) CreateProjet(context context.Context, input ProjetInput) (*Projet, error) {

	// The owning client must exist; a dangling FK would only fail later.
	if _, err := service.clientRepository.FindByID(context, input.ClientID); err != nil {
		return nil, err
	}

	projet := &Projet{
		Nom:           input.Nom,
		Description:   input.Description,
		Statut:        StatutBrouillonDevis,
		CodeReference: slug.From(input.Nom),
		ClientID:      input.ClientID,
	}

	if err := service.projetRepository.Create(context, projet); err != nil {
		return nil, err
	}

	return projet, nil
}

// GetProjet returns a single project by ID.
func (service *Service) GetProjet(context context.Context, id int) (*Projet, error) {
	return service.projetRepository.FindByID(context, id)
}

// ListProjets returns one page of projects. clientID = 0 lists all clients'
// projects.
func (service *Service) ListProjets(context context.Context, clientID int, params pagination.Params) ([]Projet, int, error) {
	return service.projetRepository.List(context, clientID, params)
}

// UpdateProjet applies a partial update to an existing project.
//
// The reference code is deliberately NOT regenerated on rename.
func (service *Service) UpdateProjet(context context.Context, id int, patch ProjetPatch) (*Projet, error) {
	projet, err := service.projetRepository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if patch.Nom != nil {
		projet.Nom = *patch.Nom
	}
	if patch.Description != nil {
		projet.Description = *patch.Description
	}
	if patch.Statut != nil {
		projet.Statut = *patch.Statut
	}

	if err := service.projetRepository.Update(context, projet); err != nil {
		return nil, err
	}

	return projet, nil
}

// DeleteProjet removes a project after confirming it exists.
func (service *Service) DeleteProjet(context context.Context, id int) error {
	if _, err := service.projetRepository.FindByID(context, id); err != nil {
		return err
	}
	return service.projetRepository.Delete(context, id)
}
