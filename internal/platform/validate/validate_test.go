// Copyright (c) 2026 DevisApp. All rights reserved.

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kad123/DevisAppCC/internal/platform/apperr"
	"github.com/Kad123/DevisAppCC/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "nom", "Dupont", false},
		{"empty_string", "nom", "", true},
		{"whitespace_only", "nom", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Email checks the email format validation rule.
*/
func TestValidator_Email(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		isValid bool
	}{
		{"valid_email", "client@example.com", true},
		{"invalid_format", "invalid-email", false},
		{"missing_domain", "client@", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Email("email", tt.email)

			if tt.isValid {
				assert.False(t, v.HasErrors())
			} else {
				assert.True(t, v.HasErrors())
			}
		})
	}
}

/*
TestValidator_Positive covers the quantity/unit-price rule on quote lines.
*/
func TestValidator_Positive(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		hasError bool
	}{
		{"positive", 12.5, false},
		{"zero", 0, true},
		{"negative", -3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Positive("quantite", tt.value)
			assert.Equal(t, tt.hasError, v.HasErrors())
		})
	}
}

/*
TestValidator_OneOf covers the status vocabulary rule.
*/
func TestValidator_OneOf(t *testing.T) {
	allowed := []string{"Brouillon", "Envoyé", "Validé"}

	v := &validate.Validator{}
	v.OneOf("statut", "Envoyé", allowed)
	assert.False(t, v.HasErrors())

	v = &validate.Validator{}
	v.OneOf("statut", "Inconnu", allowed)
	assert.True(t, v.HasErrors())
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	// Multi-rule validation
	err := v.
		Required("nom", "Rénovation cuisine").
		MinLen("nom", "Rénovation cuisine", 3).
		MaxLen("nom", "Rénovation cuisine", 100).
		Email("email", "contact@devisapp.fr").
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("nom", "").            // Fails
		MinLen("nom", "a", 5).          // Fails
		Email("email", "not-an-email"). // Fails
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	// Should accumulate all 3 errors
	assert.Len(t, ae.Details, 3)
}

/*
TestRequiredError builds a single-field error without a chain.
*/
func TestRequiredError(t *testing.T) {
	err := validate.RequiredError("projet_id", "must be a positive integer")

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	require.Len(t, ae.Details, 1)
	assert.Equal(t, "projet_id", ae.Details[0].Field)
}
