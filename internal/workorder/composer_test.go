package workorder

import (
	"errors"
	"testing"

	"mes-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBatchClonesTemplates(t *testing.T) {
	s := testSession(100)

	batch, err := CreateBatch(s, CreateBatchInput{Quantity: 30, RoutingID: 1, BOMID: 2})
	require.NoError(t, err)
	require.Len(t, s.WorkOrder.Batches, 1)
	assert.NotEmpty(t, batch.BatchCode)

	// Operasyonlar rotadan kopyalanır, hepsi PENDING başlar
	require.Len(t, batch.Operations, 2)
	assert.Equal(t, "MIX", batch.Operations[0].OperationCode)
	assert.Equal(t, models.BatchOpPending, batch.Operations[0].Status)
	assert.True(t, batch.Operations[1].RequiresQualityControl)

	// Malzeme ihtiyacı anında hesaplanır: 0.5 x 30 = 15, 2 x 30 = 60
	require.Len(t, batch.Materials, 2)
	assert.Equal(t, 15.0, batch.Materials[0].RequiredQuantity)
	assert.Equal(t, 60.0, batch.Materials[1].RequiredQuantity)
}

func TestCreateBatchRejectsNonPositiveQuantity(t *testing.T) {
	s := testSession(100)
	_, err := CreateBatch(s, CreateBatchInput{Quantity: 0, RoutingID: 1, BOMID: 2})
	assert.Error(t, err)
	_, err = CreateBatch(s, CreateBatchInput{Quantity: -5, RoutingID: 1, BOMID: 2})
	assert.Error(t, err)
	assert.Empty(t, s.WorkOrder.Batches)
}

func TestCreateBatchRespectsOrderQuantityCeiling(t *testing.T) {
	s := testSession(100)

	_, err := CreateBatch(s, CreateBatchInput{Quantity: 60, RoutingID: 1, BOMID: 2})
	require.NoError(t, err)
	_, err = CreateBatch(s, CreateBatchInput{Quantity: 40, RoutingID: 1, BOMID: 2})
	require.NoError(t, err)
	assert.Equal(t, 100.0, s.BatchQuantitySum())

	// 100'ü aşan üçüncü parti reddedilir
	_, err = CreateBatch(s, CreateBatchInput{Quantity: 1, RoutingID: 1, BOMID: 2})
	assert.Error(t, err)
	assert.Len(t, s.WorkOrder.Batches, 2)
}

func TestCreateBatchUnknownTemplates(t *testing.T) {
	s := testSession(100)
	_, err := CreateBatch(s, CreateBatchInput{Quantity: 10, RoutingID: 99, BOMID: 2})
	assert.Error(t, err)
	_, err = CreateBatch(s, CreateBatchInput{Quantity: 10, RoutingID: 1, BOMID: 99})
	assert.Error(t, err)
}

func TestEditBatchQuantitySumRule(t *testing.T) {
	// Mevcut toplam 80/100, bu partinin miktarı 20
	s := testSession(100)
	_, err := CreateBatch(s, CreateBatchInput{Quantity: 60, RoutingID: 1, BOMID: 2})
	require.NoError(t, err)
	b, err := CreateBatch(s, CreateBatchInput{Quantity: 20, RoutingID: 1, BOMID: 2})
	require.NoError(t, err)
	code := b.BatchCode

	// 20 -> 30: yeni toplam 90 <= 100, kabul
	q := 30.0
	require.NoError(t, EditBatch(s, code, BatchPatch{Quantity: &q}))
	assert.Equal(t, 90.0, s.BatchQuantitySum())
	// Malzeme ihtiyacı da güncellenir: 0.5 x 30 = 15
	assert.Equal(t, 15.0, s.FindBatch(code).Materials[0].RequiredQuantity)

	// 30 -> 50: yeni toplam 110 > 100, red
	q = 50.0
	assert.Error(t, EditBatch(s, code, BatchPatch{Quantity: &q}))
	assert.Equal(t, 30.0, s.FindBatch(code).Quantity)
}

func TestEditBatchTemplateChangeWithAllocationsRejected(t *testing.T) {
	s := testSession(100)
	s.Catalog.BOMs = append(s.Catalog.BOMs, models.BOM{
		ID: 3, ProductID: 10, Version: "v2",
		Items: []models.BOMItem{{ID: 301, BOMID: 3, ComponentID: 11, Quantity: 1, UnitOfMeasureID: 1}},
	})

	b, err := CreateBatch(s, CreateBatchInput{Quantity: 10, RoutingID: 1, BOMID: 2})
	require.NoError(t, err)

	// Malzemeye tahsis ekle
	Reconcile(&b.Materials[0], []PickUpdate{{LotID: 1, PickQty: 5, LotCode: "L1"}}, nil)

	newBOM := uint(3)
	err = EditBatch(s, b.BatchCode, BatchPatch{BOMID: &newBOM})
	assert.Error(t, err, "tahsisli partide reçete versiyonu değişemez")
	assert.Equal(t, uint(2), s.FindBatch(b.BatchCode).BOMID)
}

func TestEditBatchTemplateChangeWithoutAllocationsRegenerates(t *testing.T) {
	s := testSession(100)
	s.Catalog.BOMs = append(s.Catalog.BOMs, models.BOM{
		ID: 3, ProductID: 10, Version: "v2",
		Items: []models.BOMItem{{ID: 301, BOMID: 3, ComponentID: 11, Quantity: 1, UnitOfMeasureID: 1}},
	})

	b, err := CreateBatch(s, CreateBatchInput{Quantity: 10, RoutingID: 1, BOMID: 2})
	require.NoError(t, err)
	require.Len(t, b.Materials, 2)

	newBOM := uint(3)
	require.NoError(t, EditBatch(s, b.BatchCode, BatchPatch{BOMID: &newBOM}))
	edited := s.FindBatch(b.BatchCode)
	require.Len(t, edited.Materials, 1)
	assert.Equal(t, 10.0, edited.Materials[0].RequiredQuantity)
}

func TestDeleteBatchReleasesReservationsExactlyOnce(t *testing.T) {
	s := testSession(100)
	b, err := CreateBatch(s, CreateBatchInput{Quantity: 10, RoutingID: 1, BOMID: 2})
	require.NoError(t, err)
	Reconcile(&b.Materials[0], []PickUpdate{{LotID: 1, PickQty: 5, LotCode: "L1"}}, nil)

	releaser := &fakeReleaser{}
	removed, err := DeleteBatch(s, b.BatchCode, releaser)
	require.NoError(t, err)
	assert.Empty(t, s.WorkOrder.Batches)
	assert.Equal(t, []string{removed.BatchCode}, releaser.calls)
}

func TestDeleteBatchRemovesLocallyEvenIfReleaseFails(t *testing.T) {
	// Serbest bırakma hatası kaydı engellemez: ateşle-ve-unut
	s := testSession(100)
	b, err := CreateBatch(s, CreateBatchInput{Quantity: 10, RoutingID: 1, BOMID: 2})
	require.NoError(t, err)

	releaser := &fakeReleaser{err: errors.New("sunucu hatası")}
	_, err = DeleteBatch(s, b.BatchCode, releaser)
	require.NoError(t, err)
	assert.Empty(t, s.WorkOrder.Batches)
	assert.Len(t, releaser.calls, 1)
}

func TestDeleteBatchUnknownCode(t *testing.T) {
	s := testSession(100)
	_, err := DeleteBatch(s, "B-YOK", &fakeReleaser{})
	assert.Error(t, err)
}
