// Copyright (c) 2026 DevisApp. All rights reserved.

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Kad123/DevisAppCC/pkg/slug"
)

/*
TestFrom covers accent stripping, casing, and hyphen cleanup for the
project reference codes.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"accents", "Rénovation Été", "renovation-ete"},
		{"spaces_and_case", "Salle De Bain", "salle-de-bain"},
		{"punctuation", "Cuisine (RDC) - phase 2", "cuisine-rdc-phase-2"},
		{"leading_trailing", "  Garage!  ", "garage"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, slug.From(tt.input))
		})
	}
}
