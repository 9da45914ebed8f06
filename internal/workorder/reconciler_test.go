package workorder

import (
	"testing"

	"mes-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func materialNeeding(required float64) *models.BatchMaterial {
	return &models.BatchMaterial{ComponentID: 11, RequiredQuantity: required, Shortage: required}
}

func TestReconcileZeroQuantityPrunesOnlyThatPick(t *testing.T) {
	m := materialNeeding(10)
	Reconcile(m, []PickUpdate{
		{LotID: 1, PickQty: 4, LotCode: "L1"},
		{LotID: 2, PickQty: 6, LotCode: "L2"},
	}, nil)
	require.Len(t, m.Picks, 2)

	// L1'i sıfırla: sadece L1 düşer, L2 dokunulmadan kalır
	Reconcile(m, []PickUpdate{{LotID: 1, PickQty: 0}}, nil)
	require.Len(t, m.Picks, 1)
	assert.Equal(t, uint(2), m.Picks[0].LotID)
	assert.Equal(t, 6.0, m.Picks[0].PickQty)
}

func TestReconcilePicksAreSparsePatchNotReplace(t *testing.T) {
	m := materialNeeding(10)
	Reconcile(m, []PickUpdate{
		{LotID: 1, PickQty: 4, LotCode: "L1"},
		{LotID: 2, PickQty: 3, LotCode: "L2"},
	}, nil)

	// Güncellemede sadece L1 var; L2 güncellemede geçmese de KORUNUR
	Reconcile(m, []PickUpdate{{LotID: 1, PickQty: 5}}, nil)
	require.Len(t, m.Picks, 2)
	assert.Equal(t, 5.0, m.Picks[0].PickQty)
	assert.Equal(t, "L1", m.Picks[0].LotCode)
	assert.Equal(t, 3.0, m.Picks[1].PickQty)
}

func TestReconcilePlansAreReplacedWholesale(t *testing.T) {
	// Planlar, pick'lerin aksine topluca değiştirilir (kaynak sistem asimetrisi)
	m := materialNeeding(10)
	Reconcile(m, nil, []PlanUpdate{
		{PlannedSupplyID: 1, PickQty: 4, SourceCode: "PO-1"},
		{PlannedSupplyID: 2, PickQty: 6, SourceCode: "PO-2"},
	})
	require.Len(t, m.Plans, 2)

	Reconcile(m, nil, []PlanUpdate{{PlannedSupplyID: 3, PickQty: 10, SourceCode: "PO-3"}})
	require.Len(t, m.Plans, 1)
	assert.Equal(t, uint(3), m.Plans[0].PlannedSupplyID)
}

func TestReconcileDuplicateLotUpdateAppendsOnce(t *testing.T) {
	// Aynı lot güncellemede iki kez geçerse tek satır açılmalı; aksi halde
	// tahsis toplamı şişer ve eksik hesabı bozulur
	m := materialNeeding(10)
	Reconcile(m, []PickUpdate{
		{LotID: 1, PickQty: 4, LotCode: "L1"},
		{LotID: 1, PickQty: 4, LotCode: "L1"},
	}, nil)
	require.Len(t, m.Picks, 1)
	assert.Equal(t, 4.0, m.Picks[0].PickQty)
	assert.Equal(t, 6.0, m.Shortage)
}

func TestReconcileRecomputesShortage(t *testing.T) {
	m := materialNeeding(10)
	Reconcile(m, []PickUpdate{{LotID: 1, PickQty: 6}}, []PlanUpdate{{PlannedSupplyID: 1, PickQty: 3}})
	assert.Equal(t, 1.0, m.Shortage)

	Reconcile(m, []PickUpdate{{LotID: 1, PickQty: 6}}, []PlanUpdate{{PlannedSupplyID: 1, PickQty: 4}})
	assert.Equal(t, 0.0, m.Shortage)

	// Fazla tahsis eksiye düşmez, eksik 0'da kalır
	Reconcile(m, []PickUpdate{{LotID: 1, PickQty: 9}}, []PlanUpdate{{PlannedSupplyID: 1, PickQty: 4}})
	assert.Equal(t, 0.0, m.Shortage)
}

func TestReconcileShortageUsesRoundedSums(t *testing.T) {
	// 0.1 + 0.2 ikili kayan noktada 0.3 etmez; yuvarlama devrede olmalı
	m := materialNeeding(0.3)
	Reconcile(m, []PickUpdate{{LotID: 1, PickQty: 0.1}, {LotID: 2, PickQty: 0.2}}, nil)
	assert.Equal(t, 0.0, m.Shortage)
	assert.NoError(t, CheckAllocation(m))
}

func TestCheckAllocationExactMatchAccepted(t *testing.T) {
	m := materialNeeding(10)
	Reconcile(m, []PickUpdate{{LotID: 1, PickQty: 6}}, []PlanUpdate{{PlannedSupplyID: 1, PickQty: 4}})
	assert.NoError(t, CheckAllocation(m))
	assert.Equal(t, 0.0, m.Shortage)
}

func TestCheckAllocationUnderfillRejectedWithBreakdown(t *testing.T) {
	m := materialNeeding(10)
	Reconcile(m, []PickUpdate{{LotID: 1, PickQty: 6}}, []PlanUpdate{{PlannedSupplyID: 1, PickQty: 3}})

	err := CheckAllocation(m)
	require.Error(t, err)
	var allocErr *AllocationError
	require.ErrorAs(t, err, &allocErr)
	assert.Equal(t, 6.0, allocErr.FromInventory)
	assert.Equal(t, 3.0, allocErr.FromPlanned)
	// Mesaj her iki katkıyı da adıyla verir
	assert.Contains(t, err.Error(), "Stoktan 6")
	assert.Contains(t, err.Error(), "planlı tedarikten 3")
	assert.Contains(t, err.Error(), "az")
}

func TestCheckAllocationOverfillRejected(t *testing.T) {
	m := materialNeeding(10)
	Reconcile(m, []PickUpdate{{LotID: 1, PickQty: 7}}, []PlanUpdate{{PlannedSupplyID: 1, PickQty: 4}})

	err := CheckAllocation(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fazla")
}
