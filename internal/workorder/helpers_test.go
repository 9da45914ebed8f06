package workorder

import (
	"time"

	"mes-backend/internal/models"
)

// Test verisi: 1 birim ürün için 0.5 kg un (component 11) ve 2 adet yumurta
// (component 12) içeren reçete, iki operasyonlu rota.
func testCatalog() *Catalog {
	return &Catalog{
		Routings: []models.Routing{
			{
				ID:        1,
				ProductID: 10,
				Version:   "v1",
				Operations: []models.RoutingOperation{
					{ID: 101, RoutingID: 1, Sequence: 1, Code: "MIX", Name: "Karıştırma"},
					{ID: 102, RoutingID: 1, Sequence: 2, Code: "BAKE", Name: "Pişirme", RequiresQualityControl: true},
				},
			},
		},
		BOMs: []models.BOM{
			{
				ID:        2,
				ProductID: 10,
				Version:   "v1",
				Items: []models.BOMItem{
					{ID: 201, BOMID: 2, ComponentID: 11, Quantity: 0.5, UnitOfMeasureID: 1},
					{ID: 202, BOMID: 2, ComponentID: 12, Quantity: 2, UnitOfMeasureID: 2},
				},
			},
		},
	}
}

func testSession(orderQty float64) *EditSession {
	return NewEditSession(models.WorkOrder{
		ID:                1,
		Code:              "WO-TEST",
		ProductID:         10,
		Quantity:          orderQty,
		UnitOfMeasureCode: "adet",
		WorkCenterID:      1,
	}, testCatalog())
}

func datePtr(t time.Time) *time.Time { return &t }

// fakeReleaser: Rezervasyon bırakma çağrılarını sayar, istenirse hata döner
type fakeReleaser struct {
	calls []string
	err   error
}

func (f *fakeReleaser) ReleaseBatch(batchCode string) error {
	f.calls = append(f.calls, batchCode)
	return f.err
}
