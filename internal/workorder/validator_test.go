package workorder

import (
	"testing"
	"time"

	"mes-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

// Tüm malzemeleri tam tahsisli tek parti ekler
func addReadyBatch(t *testing.T, s *EditSession, qty float64) *models.Batch {
	t.Helper()
	b, err := CreateBatch(s, CreateBatchInput{Quantity: qty, RoutingID: 1, BOMID: 2})
	require.NoError(t, err)
	for i := range b.Materials {
		m := &b.Materials[i]
		Reconcile(m, []PickUpdate{{LotID: uint(100 + i), PickQty: m.RequiredQuantity, LotCode: "L"}}, nil)
		require.NoError(t, CheckAllocation(m))
	}
	return b
}

func TestValidateRejectsNonEditableStatus(t *testing.T) {
	s := testSession(100)
	s.WorkOrder.Status = models.WOStatusInProgress
	res := ValidateForSave(s, SaveOptions{}, testNow)
	assert.False(t, res.OK)
	assert.Contains(t, res.Reason, "düzenlenemez")
}

func TestValidateRequiresProduct(t *testing.T) {
	s := testSession(100)
	s.WorkOrder.ProductID = 0
	res := ValidateForSave(s, SaveOptions{}, testNow)
	assert.False(t, res.OK)
}

func TestValidateRequiresPositiveQuantity(t *testing.T) {
	s := testSession(0)
	res := ValidateForSave(s, SaveOptions{}, testNow)
	assert.False(t, res.OK)

	s = testSession(-10)
	res = ValidateForSave(s, SaveOptions{}, testNow)
	assert.False(t, res.OK)
}

func TestValidateEmptyBatchesNeedsConfirmThenDraft(t *testing.T) {
	s := testSession(100)

	// Onay yoksa otomatik red değil, onay istenir
	res := ValidateForSave(s, SaveOptions{}, testNow)
	assert.False(t, res.OK)
	assert.Equal(t, ConfirmEmptyBatches, res.Confirm)

	// Onayla taslak olarak kaydedilir
	res = ValidateForSave(s, SaveOptions{ConfirmDraft: true}, testNow)
	assert.True(t, res.OK)
	assert.Equal(t, models.WOStatusDraft, res.ProposedStatus)
}

func TestValidateBatchSumMustEqualOrderQuantity(t *testing.T) {
	// 100'lük iş emrinde 60'lık tek parti: malzeme hazırlığından bağımsız red
	s := testSession(100)
	addReadyBatch(t, s, 60)

	res := ValidateForSave(s, SaveOptions{}, testNow)
	assert.False(t, res.OK)
	assert.Equal(t, ConfirmNone, res.Confirm)
	assert.Contains(t, res.Reason, "60")
	assert.Contains(t, res.Reason, "100")
	assert.Contains(t, res.Reason, "eksik")
}

func TestValidateBatchSumOverflowShownAsExcess(t *testing.T) {
	s := testSession(100)
	addReadyBatch(t, s, 60)
	// Kısıt atlanarak doğrudan duruma fazla parti yazılmış olsun
	s.WorkOrder.Batches = append(s.WorkOrder.Batches, models.Batch{BatchCode: "B-X", Quantity: 50})

	res := ValidateForSave(s, SaveOptions{}, testNow)
	assert.False(t, res.OK)
	assert.Contains(t, res.Reason, "fazla")
}

func TestValidateMissingMaterialsNeedsConfirmThenWaiting(t *testing.T) {
	s := testSession(100)
	_, err := CreateBatch(s, CreateBatchInput{Quantity: 100, RoutingID: 1, BOMID: 2})
	require.NoError(t, err)

	res := ValidateForSave(s, SaveOptions{}, testNow)
	assert.False(t, res.OK)
	assert.Equal(t, ConfirmMissingMaterials, res.Confirm)

	res = ValidateForSave(s, SaveOptions{ConfirmMissingMaterials: true}, testNow)
	assert.True(t, res.OK)
	assert.Equal(t, models.WOStatusWaitingForMaterials, res.ProposedStatus)
}

func TestValidatePartialAllocationCountsAsMissing(t *testing.T) {
	s := testSession(100)
	b, err := CreateBatch(s, CreateBatchInput{Quantity: 100, RoutingID: 1, BOMID: 2})
	require.NoError(t, err)
	// İlk malzemeye eksik tahsis, ikincisine hiç
	Reconcile(&b.Materials[0], []PickUpdate{{LotID: 1, PickQty: 1}}, nil)

	res := ValidateForSave(s, SaveOptions{}, testNow)
	assert.Equal(t, ConfirmMissingMaterials, res.Confirm)
}

func TestValidateReadyToStartRequiresValidDates(t *testing.T) {
	s := testSession(100)
	addReadyBatch(t, s, 60)
	addReadyBatch(t, s, 40)

	// Tarihler boş: malzemeler hazır olsa da red (onayla geçilemez)
	res := ValidateForSave(s, SaveOptions{}, testNow)
	assert.False(t, res.OK)
	assert.Equal(t, ConfirmNone, res.Confirm)

	// Bitiş başlangıçtan önce: red
	s.WorkOrder.PlannedStart = datePtr(testNow.AddDate(0, 0, 5))
	s.WorkOrder.PlannedEnd = datePtr(testNow.AddDate(0, 0, 2))
	res = ValidateForSave(s, SaveOptions{}, testNow)
	assert.False(t, res.OK)

	// Başlangıç geçmişte: red
	s.WorkOrder.PlannedStart = datePtr(testNow.AddDate(0, 0, -1))
	s.WorkOrder.PlannedEnd = datePtr(testNow.AddDate(0, 0, 5))
	res = ValidateForSave(s, SaveOptions{}, testNow)
	assert.False(t, res.OK)

	// Geçerli tarihler: READY_TO_START önerilir
	s.WorkOrder.PlannedStart = datePtr(testNow.AddDate(0, 0, 1))
	s.WorkOrder.PlannedEnd = datePtr(testNow.AddDate(0, 0, 10))
	res = ValidateForSave(s, SaveOptions{}, testNow)
	assert.True(t, res.OK)
	assert.Equal(t, models.WOStatusReadyToStart, res.ProposedStatus)
}

func TestValidateSixtyFortyScenario(t *testing.T) {
	// 100'lük iş emri, 60 + 40 parti: ancak her malzeme tam tahsisli ve
	// tarihler geçerliyse READY_TO_START önerilir
	s := testSession(100)
	addReadyBatch(t, s, 60)
	b2, err := CreateBatch(s, CreateBatchInput{Quantity: 40, RoutingID: 1, BOMID: 2})
	require.NoError(t, err)
	s.WorkOrder.PlannedStart = datePtr(testNow.AddDate(0, 0, 1))
	s.WorkOrder.PlannedEnd = datePtr(testNow.AddDate(0, 0, 10))

	// İkinci partinin malzemeleri tahsissiz: READY_TO_START önerilmez
	res := ValidateForSave(s, SaveOptions{}, testNow)
	assert.False(t, res.OK)
	assert.Equal(t, ConfirmMissingMaterials, res.Confirm)

	for i := range b2.Materials {
		m := &b2.Materials[i]
		Reconcile(m, []PickUpdate{{LotID: uint(200 + i), PickQty: m.RequiredQuantity}}, nil)
	}
	res = ValidateForSave(s, SaveOptions{}, testNow)
	assert.True(t, res.OK)
	assert.Equal(t, models.WOStatusReadyToStart, res.ProposedStatus)
}
