// Copyright (c) 2026 DevisApp. All rights reserved.

package crm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kad123/DevisAppCC/internal/crm"
	"github.com/Kad123/DevisAppCC/internal/platform/apperr"
	"github.com/Kad123/DevisAppCC/pkg/pagination"
	"github.com/Kad123/DevisAppCC/pkg/pointer"
)

// # In-Memory Fakes

type fakeClientRepository struct {
	clients map[int]*crm.Client
	nextID  int
}

func newFakeClientRepository() *fakeClientRepository {
	return &fakeClientRepository{clients: map[int]*crm.Client{}, nextID: 1}
}

func (repo *fakeClientRepository) Create(_ context.Context, client *crm.Client) error {
	for _, existing := range repo.clients {
		if existing.Email == client.Email {
			return apperr.Conflict("A client with this email already exists")
		}
	}
	client.ID = repo.nextID
	repo.nextID++
	repo.clients[client.ID] = client
	return nil
}

func (repo *fakeClientRepository) FindByID(_ context.Context, id int) (*crm.Client, error) {
	client, ok := repo.clients[id]
	if !ok {
		return nil, apperr.NotFound("Client")
	}
	return client, nil
}

func (repo *fakeClientRepository) List(_ context.Context, _ pagination.Params) ([]crm.Client, int, error) {
	collection := make([]crm.Client, 0, len(repo.clients))
	for _, client := range repo.clients {
		collection = append(collection, *client)
	}
	return collection, len(collection), nil
}

func (repo *fakeClientRepository) Update(_ context.Context, client *crm.Client) error {
	repo.clients[client.ID] = client
	return nil
}

func (repo *fakeClientRepository) Delete(_ context.Context, id int) error {
	delete(repo.clients, id)
	return nil
}

type fakeProjetRepository struct {
	projets map[int]*crm.Projet
	nextID  int
}

func newFakeProjetRepository() *fakeProjetRepository {
	return &fakeProjetRepository{projets: map[int]*crm.Projet{}, nextID: 1}
}

func (repo *fakeProjetRepository) Create(_ context.Context, projet *crm.Projet) error {
	projet.ID = repo.nextID
	repo.nextID++
	repo.projets[projet.ID] = projet
	return nil
}

func (repo *fakeProjetRepository) FindByID(_ context.Context, id int) (*crm.Projet, error) {
	projet, ok := repo.projets[id]
	if !ok {
		return nil, apperr.NotFound("Projet")
	}
	return projet, nil
}

func (repo *fakeProjetRepository) List(_ context.Context, clientID int, _ pagination.Params) ([]crm.Projet, int, error) {
	collection := []crm.Projet{}
	for _, projet := range repo.projets {
		if clientID == 0 || projet.ClientID == clientID {
			collection = append(collection, *projet)
		}
	}
	return collection, len(collection), nil
}

func (repo *fakeProjetRepository) Update(_ context.Context, projet *crm.Projet) error {
	repo.projets[projet.ID] = projet
	return nil
}

func (repo *fakeProjetRepository) Delete(_ context.Context, id int) error {
	delete(repo.projets, id)
	return nil
}

// # Harness

func newCRMService(t *testing.T) (*crm.Service, *fakeClientRepository, *fakeProjetRepository) {
	t.Helper()
	clients := newFakeClientRepository()
	projets := newFakeProjetRepository()
	return crm.NewService(clients, projets), clients, projets
}

func createClient(t *testing.T, service *crm.Service) *crm.Client {
	t.Helper()
	client, err := service.CreateClient(context.Background(), crm.ClientInput{
		NomSociete: "Dupont BTP",
		NomContact: "Dupont",
		Email:      "contact@dupont-btp.fr",
	})
	require.NoError(t, err)
	return client
}

// # Clients

/*
TestService_UpdateClient only touches the fields carried by the patch.
*/
func TestService_UpdateClient(t *testing.T) {
	service, _, _ := newCRMService(t)
	client := createClient(t, service)

	updated, err := service.UpdateClient(context.Background(), client.ID, crm.ClientPatch{
		Telephone: pointer.To("06 12 34 56 78"),
	})
	require.NoError(t, err)

	assert.Equal(t, "06 12 34 56 78", updated.Telephone)
	assert.Equal(t, "Dupont BTP", updated.NomSociete, "unpatched fields must survive")
	assert.Equal(t, "contact@dupont-btp.fr", updated.Email)
}

/*
TestService_DeleteClient_Unknown returns a 404 instead of a silent no-op.
*/
func TestService_DeleteClient_Unknown(t *testing.T) {
	service, _, _ := newCRMService(t)

	err := service.DeleteClient(context.Background(), 999)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}

// # Projects

/*
TestService_CreateProjet slugs the reference code from the name and opens
the project in the initial status.
*/
func TestService_CreateProjet(t *testing.T) {
	service, _, _ := newCRMService(t)
	client := createClient(t, service)

	projet, err := service.CreateProjet(context.Background(), crm.ProjetInput{
		Nom:      "Rénovation Cuisine Été",
		ClientID: client.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, crm.StatutBrouillonDevis, projet.Statut)
	assert.Equal(t, "renovation-cuisine-ete", projet.CodeReference)
	assert.Equal(t, client.ID, projet.ClientID)
}

/*
TestService_CreateProjet_UnknownClient rejects projects for missing clients.
*/
func TestService_CreateProjet_UnknownClient(t *testing.T) {
	service, _, _ := newCRMService(t)

	_, err := service.CreateProjet(context.Background(), crm.ProjetInput{
		Nom:      "Orphan",
		ClientID: 999,
	})

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}

/*
TestService_UpdateProjet_KeepsReference verifies that renaming a project
never regenerates its reference code.
*/
func TestService_UpdateProjet_KeepsReference(t *testing.T) {
	service, _, _ := newCRMService(t)
	client := createClient(t, service)

	projet, err := service.CreateProjet(context.Background(), crm.ProjetInput{
		Nom:      "Rénovation Cuisine",
		ClientID: client.ID,
	})
	require.NoError(t, err)
	original := projet.CodeReference

	updated, err := service.UpdateProjet(context.Background(), projet.ID, crm.ProjetPatch{
		Nom:    pointer.To("Extension Garage"),
		Statut: pointer.To(crm.StatutEnCours),
	})
	require.NoError(t, err)

	assert.Equal(t, "Extension Garage", updated.Nom)
	assert.Equal(t, crm.StatutEnCours, updated.Statut)
	assert.Equal(t, original, updated.CodeReference)
}
