package scheduling

import (
	"testing"

	"mes-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vendor(id uint) *uint { return &id }

func TestLotEligibleRejectsForeignComponent(t *testing.T) {
	m := &models.BatchMaterial{ComponentID: 11}
	lot := &models.InventoryLot{ProductID: 99, LotCode: "LOT-X"}

	err := lotEligible(m, lot)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOT-X")

	lot.ProductID = 11
	assert.NoError(t, lotEligible(m, lot))
}

func TestLotEligibleEnforcesVendorWhenMaterialHasOne(t *testing.T) {
	m := &models.BatchMaterial{ComponentID: 11, VendorID: vendor(3)}

	// Tedarikçisiz lot da yanlış tedarikçili lot da reddedilir
	assert.Error(t, lotEligible(m, &models.InventoryLot{ProductID: 11, LotCode: "L1"}))
	assert.Error(t, lotEligible(m, &models.InventoryLot{ProductID: 11, LotCode: "L2", VendorID: vendor(4)}))
	assert.NoError(t, lotEligible(m, &models.InventoryLot{ProductID: 11, LotCode: "L3", VendorID: vendor(3)}))

	// Malzeme tedarikçi belirtmiyorsa her lot adaydır
	open := &models.BatchMaterial{ComponentID: 11}
	assert.NoError(t, lotEligible(open, &models.InventoryLot{ProductID: 11, LotCode: "L4", VendorID: vendor(4)}))
}

func TestSupplyEligibleMirrorsLotRules(t *testing.T) {
	m := &models.BatchMaterial{ComponentID: 11, VendorID: vendor(3)}

	assert.Error(t, supplyEligible(m, &models.PlannedSupply{ProductID: 99, VendorID: vendor(3), SourceCode: "PO-1"}))
	assert.Error(t, supplyEligible(m, &models.PlannedSupply{ProductID: 11, SourceCode: "PO-2"}))
	assert.NoError(t, supplyEligible(m, &models.PlannedSupply{ProductID: 11, VendorID: vendor(3), SourceCode: "PO-3"}))
}

func orderReserving(lotQty, planQty float64) *models.WorkOrder {
	return &models.WorkOrder{
		Batches: []models.Batch{
			{
				Materials: []models.BatchMaterial{
					{
						Picks: []models.MaterialPick{{LotID: 1, PickQty: lotQty, LotCode: "L1"}},
						Plans: []models.MaterialPlan{{PlannedSupplyID: 5, PickQty: planQty, SourceCode: "PO-5"}},
					},
				},
			},
			{
				Materials: []models.BatchMaterial{
					{
						Picks: []models.MaterialPick{{LotID: 1, PickQty: lotQty, LotCode: "L1"}},
						Plans: []models.MaterialPlan{{PlannedSupplyID: 5, PickQty: planQty, SourceCode: "PO-5"}},
					},
				},
			},
		},
	}
}

func TestPickTotalsAggregateAcrossBatches(t *testing.T) {
	totals, codes := pickTotalsByLot(orderReserving(4, 0))
	assert.Equal(t, 8.0, totals[1])
	assert.Equal(t, "L1", codes[1])

	totals, codes = pickTotalsByLot(nil)
	assert.Empty(t, totals)
	assert.Empty(t, codes)
}

func TestPlanTotalsAggregateAcrossBatches(t *testing.T) {
	totals, codes := planTotalsBySupply(orderReserving(0, 3))
	assert.Equal(t, 6.0, totals[5])
	assert.Equal(t, "PO-5", codes[5])
}

func TestAvailableForOrderDetectsSupplyOversubscription(t *testing.T) {
	// Tedarik kapasitesi 100; başka iş emirleri 70 tutuyor, bu iş emrinin
	// mevcut 20'lik rezervasyonu kayıtta değişeceği için geri eklenir
	wanted, _ := planTotalsBySupply(orderReserving(0, 20))
	available := availableForOrder(100, 70, 20)
	assert.Equal(t, 50.0, available)
	assert.False(t, wanted[5] > available)

	// Kendi rezervasyonu olmayan yeni iş emri aynı talebi karşılayamaz
	available = availableForOrder(100, 70, 0)
	assert.True(t, wanted[5] > available)
}
