package workorder

import (
	"fmt"
	"log"
	"strings"

	"mes-backend/internal/models"
	"mes-backend/internal/quantity"

	"github.com/google/uuid"
)

// ReservationReleaser: Parti silindiğinde sunucuda tutulan rezervasyonları
// serbest bırakır. Hata dönerse loglanır, yerel silme engellenmez.
type ReservationReleaser interface {
	ReleaseBatch(batchCode string) error
}

type CreateBatchInput struct {
	Quantity   float64
	EmployeeID *uint
	RoutingID  uint
	BOMID      uint
	RequiresQC bool
}

type BatchPatch struct {
	Quantity   *float64
	EmployeeID *uint
	RoutingID  *uint
	BOMID      *uint
	RequiresQC *bool
}

// CreateBatch: Oturuma yeni parti ekler. Operasyonlar seçilen rotadan,
// malzemeler seçilen reçeteden kopyalanır; her malzemenin RequiredQuantity
// değeri anında hesaplanır.
func CreateBatch(s *EditSession, in CreateBatchInput) (*models.Batch, error) {
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("parti miktarı 0'dan büyük olmalı")
	}

	existing := s.BatchQuantitySum()
	if quantity.Sum(existing, in.Quantity) > s.WorkOrder.Quantity {
		return nil, fmt.Errorf("parti toplamı iş emri miktarını aşamaz: %v + %v > %v",
			existing, in.Quantity, s.WorkOrder.Quantity)
	}

	routing := s.Catalog.RoutingByID(in.RoutingID)
	if routing == nil {
		return nil, fmt.Errorf("rota versiyonu bulunamadı: %d", in.RoutingID)
	}
	bom := s.Catalog.BOMByID(in.BOMID)
	if bom == nil {
		return nil, fmt.Errorf("reçete versiyonu bulunamadı: %d", in.BOMID)
	}

	batch := models.Batch{
		WorkOrderID:            s.WorkOrder.ID,
		BatchCode:              newBatchCode(),
		Quantity:               in.Quantity,
		RoutingID:              in.RoutingID,
		BOMID:                  in.BOMID,
		AssignedEmployeeID:     in.EmployeeID,
		RequiresQualityControl: in.RequiresQC,
		Status:                 models.WOStatusDraft,
		Operations:             cloneOperations(routing),
		Materials:              cloneMaterials(bom, in.Quantity),
	}

	s.WorkOrder.Batches = append(s.WorkOrder.Batches, batch)
	return &s.WorkOrder.Batches[len(s.WorkOrder.Batches)-1], nil
}

// EditBatch: Mevcut partiyi günceller. Miktar değişiminde toplam kısıtı
// "mevcut toplam - eski miktar + yeni miktar" ile yeniden doğrulanır.
// Malzemelerinde tahsis bulunan bir partinin rota/reçete versiyonu
// değiştirilemez; tahsissiz partide operasyon ve malzeme listeleri yeni
// şablonlardan yeniden üretilir.
func EditBatch(s *EditSession, batchCode string, patch BatchPatch) error {
	batch := s.FindBatch(batchCode)
	if batch == nil {
		return fmt.Errorf("parti bulunamadı: %s", batchCode)
	}

	if patch.Quantity != nil {
		if *patch.Quantity <= 0 {
			return fmt.Errorf("parti miktarı 0'dan büyük olmalı")
		}
		newTotal := quantity.Sum(s.BatchQuantitySum(), -batch.Quantity, *patch.Quantity)
		if newTotal > s.WorkOrder.Quantity {
			return fmt.Errorf("parti toplamı iş emri miktarını aşamaz: %v > %v",
				newTotal, s.WorkOrder.Quantity)
		}
	}

	templateChanged := (patch.RoutingID != nil && *patch.RoutingID != batch.RoutingID) ||
		(patch.BOMID != nil && *patch.BOMID != batch.BOMID)
	if templateChanged && hasAllocations(batch) {
		return fmt.Errorf("tahsisleri bulunan partinin rota veya reçete versiyonu değiştirilemez; önce tahsisleri kaldırın")
	}

	if patch.RoutingID != nil && *patch.RoutingID != batch.RoutingID {
		routing := s.Catalog.RoutingByID(*patch.RoutingID)
		if routing == nil {
			return fmt.Errorf("rota versiyonu bulunamadı: %d", *patch.RoutingID)
		}
		batch.RoutingID = *patch.RoutingID
		batch.Operations = cloneOperations(routing)
	}

	if patch.BOMID != nil && *patch.BOMID != batch.BOMID {
		bom := s.Catalog.BOMByID(*patch.BOMID)
		if bom == nil {
			return fmt.Errorf("reçete versiyonu bulunamadı: %d", *patch.BOMID)
		}
		batch.BOMID = *patch.BOMID
		batch.Materials = cloneMaterials(bom, batch.Quantity)
	}

	if patch.Quantity != nil && *patch.Quantity != batch.Quantity {
		batch.Quantity = *patch.Quantity
		// Miktar değişince malzeme ihtiyaçları yeniden hesaplanır
		if bom := s.Catalog.BOMByID(batch.BOMID); bom != nil && !hasAllocations(batch) {
			batch.Materials = cloneMaterials(bom, batch.Quantity)
		} else {
			for i := range batch.Materials {
				m := &batch.Materials[i]
				perUnit := perUnitQuantity(s.Catalog, batch.BOMID, m.ComponentID)
				if perUnit > 0 {
					m.RequiredQuantity = quantity.Mul(perUnit, batch.Quantity)
				}
				RecomputeShortage(m)
			}
		}
	}

	if patch.EmployeeID != nil {
		batch.AssignedEmployeeID = patch.EmployeeID
	}
	if patch.RequiresQC != nil {
		batch.RequiresQualityControl = *patch.RequiresQC
	}

	return nil
}

// DeleteBatch: Partiyi oturumdan çıkarır ve sunucudaki rezervasyonların
// serbest bırakılmasını ister. Serbest bırakma çağrısı anında yapılır ve
// sonucu beklenmez: başarısız olursa loglanır, parti yine de silinir.
// Bu asimetri kasıtlıdır; parti ekleme/düzenleme kaydedilene kadar yereldir
// ama silme, diğer iş emirlerinin görebildiği stoğu anında etkiler.
func DeleteBatch(s *EditSession, batchCode string, releaser ReservationReleaser) (*models.Batch, error) {
	idx := -1
	for i := range s.WorkOrder.Batches {
		if s.WorkOrder.Batches[i].BatchCode == batchCode {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("parti bulunamadı: %s", batchCode)
	}

	removed := s.WorkOrder.Batches[idx]
	s.WorkOrder.Batches = append(s.WorkOrder.Batches[:idx], s.WorkOrder.Batches[idx+1:]...)

	if releaser != nil {
		if err := releaser.ReleaseBatch(removed.BatchCode); err != nil {
			log.Printf("Parti rezervasyonları serbest bırakılamadı (batch=%s): %v", removed.BatchCode, err)
		}
	}

	return &removed, nil
}

func hasAllocations(b *models.Batch) bool {
	for _, m := range b.Materials {
		if len(m.Picks) > 0 || len(m.Plans) > 0 {
			return true
		}
	}
	return false
}

func cloneOperations(routing *models.Routing) []models.BatchOperation {
	ops := make([]models.BatchOperation, 0, len(routing.Operations))
	for _, tmpl := range routing.Operations {
		ops = append(ops, models.BatchOperation{
			Sequence:               tmpl.Sequence,
			OperationCode:          tmpl.Code,
			Name:                   tmpl.Name,
			EquipmentID:            tmpl.EquipmentID,
			RequiresQualityControl: tmpl.RequiresQualityControl,
			Status:                 models.BatchOpPending,
		})
	}
	return ops
}

func cloneMaterials(bom *models.BOM, batchQty float64) []models.BatchMaterial {
	materials := make([]models.BatchMaterial, 0, len(bom.Items))
	for _, item := range bom.Items {
		materials = append(materials, models.BatchMaterial{
			ComponentID:      item.ComponentID,
			VendorID:         item.VendorID,
			RequiredQuantity: quantity.Mul(item.Quantity, batchQty),
			UnitOfMeasureID:  item.UnitOfMeasureID,
		})
	}
	return materials
}

func perUnitQuantity(catalog *Catalog, bomID, componentID uint) float64 {
	bom := catalog.BOMByID(bomID)
	if bom == nil {
		return 0
	}
	for _, item := range bom.Items {
		if item.ComponentID == componentID {
			return item.Quantity
		}
	}
	return 0
}

func newBatchCode() string {
	return "B-" + strings.ToUpper(uuid.NewString()[:8])
}
