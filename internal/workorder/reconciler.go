package workorder

import (
	"fmt"
	"time"

	"mes-backend/internal/models"
	"mes-backend/internal/quantity"
)

type PickUpdate struct {
	LotID        uint
	PickQty      float64
	LotCode      string
	ExpirationAt *time.Time
}

type PlanUpdate struct {
	PlannedSupplyID uint
	PickQty         float64
	SourceType      models.PlannedSupplySource
	SourceCode      string
	ExpectedAt      time.Time
}

// Reconcile: Tahsis editöründen gelen lot ve planlı tedarik seçimlerini
// malzeme satırına işler, eksik miktarı yeniden hesaplar.
//
// Lot seçimleri (picks) lot id üzerinden seyrek yama olarak uygulanır:
// güncellemede miktarı 0 olan lot satırdan düşer, güncellemede hiç geçmeyen
// mevcut lotlar AYNEN KALIR. Bu bilinçli bir birleştirmedir; kısmi bir
// düzenleme, dokunulmayan lotları silmemelidir.
//
// Planlı tedarik seçimleri (plans) ise topluca değiştirilir: güncelleme
// listesi mevcut listenin yerine geçer. İki davranış arasındaki asimetri
// kaynak sistemden taşınmıştır, birleştirilmemelidir.
func Reconcile(m *models.BatchMaterial, pickUpdates []PickUpdate, planUpdates []PlanUpdate) {
	updates := make(map[uint]PickUpdate, len(pickUpdates))
	for _, u := range pickUpdates {
		updates[u.LotID] = u
	}

	merged := make([]models.MaterialPick, 0, len(m.Picks)+len(pickUpdates))
	for _, pick := range m.Picks {
		u, ok := updates[pick.LotID]
		if !ok {
			// Güncellemede geçmeyen lot korunur
			merged = append(merged, pick)
			continue
		}
		delete(updates, pick.LotID)
		if quantity.Round(u.PickQty) == 0 {
			// Sıfır miktar = yokluk, satır düşer
			continue
		}
		pick.PickQty = quantity.Round(u.PickQty)
		if u.LotCode != "" {
			pick.LotCode = u.LotCode
		}
		if u.ExpirationAt != nil {
			pick.ExpirationAt = u.ExpirationAt
		}
		merged = append(merged, pick)
	}
	// Mevcut satırda olmayan yeni lotlar; aynı lot güncellemede birden
	// fazla geçse bile tek satır açılır
	for _, u := range pickUpdates {
		if _, pending := updates[u.LotID]; !pending {
			continue
		}
		if quantity.Round(u.PickQty) == 0 {
			continue
		}
		delete(updates, u.LotID)
		merged = append(merged, models.MaterialPick{
			BatchMaterialID: m.ID,
			LotID:           u.LotID,
			PickQty:         quantity.Round(u.PickQty),
			LotCode:         u.LotCode,
			ExpirationAt:    u.ExpirationAt,
		})
	}
	m.Picks = merged

	plans := make([]models.MaterialPlan, 0, len(planUpdates))
	for _, u := range planUpdates {
		if quantity.Round(u.PickQty) == 0 {
			continue
		}
		plans = append(plans, models.MaterialPlan{
			BatchMaterialID: m.ID,
			PlannedSupplyID: u.PlannedSupplyID,
			PickQty:         quantity.Round(u.PickQty),
			SourceType:      u.SourceType,
			SourceCode:      u.SourceCode,
			ExpectedAt:      u.ExpectedAt,
		})
	}
	m.Plans = plans

	RecomputeShortage(m)
}

// AllocatedTotals: Stok ve planlı tedarik katkılarını ayrı ayrı döndürür
func AllocatedTotals(m *models.BatchMaterial) (fromInventory, fromPlanned float64) {
	pickValues := make([]float64, 0, len(m.Picks))
	for _, p := range m.Picks {
		pickValues = append(pickValues, p.PickQty)
	}
	planValues := make([]float64, 0, len(m.Plans))
	for _, p := range m.Plans {
		planValues = append(planValues, p.PickQty)
	}
	return quantity.Sum(pickValues...), quantity.Sum(planValues...)
}

// RecomputeShortage: shortage = max(0, gereken - toplam tahsis)
func RecomputeShortage(m *models.BatchMaterial) {
	fromInventory, fromPlanned := AllocatedTotals(m)
	shortage := quantity.Sum(m.RequiredQuantity, -fromInventory, -fromPlanned)
	if shortage < 0 {
		shortage = 0
	}
	m.Shortage = shortage
}

// AllocationError: Tahsis toplamı gereken miktara eşit değil
type AllocationError struct {
	FromInventory float64
	FromPlanned   float64
	Required      float64
}

func (e *AllocationError) Error() string {
	direction := "az"
	if quantity.Sum(e.FromInventory, e.FromPlanned) > e.Required {
		direction = "fazla"
	}
	return fmt.Sprintf("Stoktan %v, planlı tedarikten %v; gereken miktardan (%v) %s",
		e.FromInventory, e.FromPlanned, e.Required, direction)
}

// CheckAllocation: Tahsis editörü kaydedilirken çağrılır. Toplam tahsis
// gereken miktara TAM eşit olmalıdır; eksik de fazla da reddedilir.
// Ya tüm seçimler birlikte kabul edilir ya da hiçbiri.
func CheckAllocation(m *models.BatchMaterial) error {
	fromInventory, fromPlanned := AllocatedTotals(m)
	total := quantity.Sum(fromInventory, fromPlanned)
	if !quantity.Equal(total, m.RequiredQuantity) {
		return &AllocationError{
			FromInventory: fromInventory,
			FromPlanned:   fromPlanned,
			Required:      m.RequiredQuantity,
		}
	}
	return nil
}
