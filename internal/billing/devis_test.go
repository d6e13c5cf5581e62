// Copyright (c) 2026 DevisApp. All rights reserved.

package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Kad123/DevisAppCC/internal/billing"
)

/*
TestComputeLigneTotal verifies per-line totals including cent rounding.
*/
func TestComputeLigneTotal(t *testing.T) {
	tests := []struct {
		name     string
		quantite float64
		prix     float64
		expected float64
	}{
		{"whole_numbers", 10, 45, 450},
		{"fractional_quantity", 2.5, 40, 100},
		{"rounding_up", 3, 33.335, 100.01},
		{"rounding_down", 1, 19.994, 19.99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := billing.ComputeLigneTotal(billing.LignePoste{
				Quantite:       tt.quantite,
				PrixUnitaireHT: tt.prix,
			})
			assert.InDelta(t, tt.expected, total, 0.0001)
		})
	}
}

/*
TestComputeDevisTotals verifies the bottom-up aggregation: lignes roll into
lots, lots into the quote HT, then VAT produces the TTC.
*/
func TestComputeDevisTotals(t *testing.T) {
	lignes := []billing.LignePoste{
		{Quantite: 10, PrixUnitaireHT: 45},
		{Quantite: 2, PrixUnitaireHT: 120.50},
	}
	for i := range lignes {
		lignes[i].TotalLigneHT = billing.ComputeLigneTotal(lignes[i])
	}

	lot := billing.LotDevis{LignesPoste: lignes}
	lot.TotalLotHT = billing.ComputeLotTotal(lignes)
	assert.InDelta(t, 691.0, lot.TotalLotHT, 0.0001)

	totalHT, totalTTC := billing.ComputeDevisTotals([]billing.LotDevis{lot}, 20.0)
	assert.InDelta(t, 691.0, totalHT, 0.0001)
	assert.InDelta(t, 829.2, totalTTC, 0.0001)
}

/*
TestComputeTTC covers the VAT application, including the zero-rate
franchise case.
*/
func TestComputeTTC(t *testing.T) {
	assert.InDelta(t, 120.0, billing.ComputeTTC(100, 20), 0.0001)
	assert.InDelta(t, 105.5, billing.ComputeTTC(100, 5.5), 0.0001)
	assert.InDelta(t, 100.0, billing.ComputeTTC(100, 0), 0.0001)
}
