package workorder

import (
	"fmt"
	"time"

	"mes-backend/internal/models"
	"mes-backend/internal/quantity"
)

// SaveOptions: Kullanıcının onay diyaloglarında verdiği cevaplar.
// Kaynak sistemdeki "confirm" diyalogları burada istek bayrağı olarak taşınır.
type SaveOptions struct {
	ConfirmDraft            bool // Parti olmadan taslak kaydetmeyi onayla
	ConfirmMissingMaterials bool // Eksik malzeme tahsisiyle kaydetmeyi onayla
}

type ConfirmKind string

const (
	ConfirmNone             ConfirmKind = ""
	ConfirmEmptyBatches     ConfirmKind = "empty_batches"
	ConfirmMissingMaterials ConfirmKind = "missing_materials"
)

// SaveCheck: Kaydetme doğrulamasının sonucu. OK ise ProposedStatus ile
// kaydedilir; Confirm doluysa kullanıcı onayı gerekir; aksi halde Reason
// ile reddedilmiştir.
type SaveCheck struct {
	OK             bool
	ProposedStatus models.WorkOrderStatus
	Reason         string
	Confirm        ConfirmKind
}

func reject(reason string) SaveCheck {
	return SaveCheck{Reason: reason}
}

func needsConfirm(kind ConfirmKind, reason string) SaveCheck {
	return SaveCheck{Confirm: kind, Reason: reason}
}

// ValidateForSave: Kaydetme öncesi tüm toplamı doğrular. Kurallar sırayla
// değerlendirilir, ilk takılan kural sonucu belirler.
func ValidateForSave(s *EditSession, opts SaveOptions, now time.Time) SaveCheck {
	wo := &s.WorkOrder

	// 1. Düzenlenebilir durum kontrolü
	if wo.Status != "" && !EditableStatus(wo.Status) {
		return reject(fmt.Sprintf("İş emri artık düzenlenemez (durum: %s)", wo.Status))
	}

	// 2. Ürün seçilmiş olmalı
	if wo.ProductID == 0 {
		return reject("Ürün seçilmeden iş emri kaydedilemez")
	}

	// 3. Miktar pozitif olmalı
	if !(wo.Quantity > 0) {
		return reject("İş emri miktarı 0'dan büyük bir sayı olmalı")
	}

	// 4. Parti yoksa, onayla taslak olarak kaydedilebilir
	if len(wo.Batches) == 0 {
		if !opts.ConfirmDraft {
			return needsConfirm(ConfirmEmptyBatches,
				"Henüz parti eklenmedi; iş emri taslak olarak kaydedilecek")
		}
		return SaveCheck{OK: true, ProposedStatus: models.WOStatusDraft}
	}

	// 5. Parti miktarları iş emri miktarına TAM eşit olmalı
	batchSum := s.BatchQuantitySum()
	if !quantity.Equal(batchSum, wo.Quantity) {
		diff := quantity.Sum(wo.Quantity, -batchSum)
		if diff > 0 {
			return reject(fmt.Sprintf("Parti toplamı (%v) iş emri miktarına (%v) eşit değil: %v eksik",
				batchSum, wo.Quantity, diff))
		}
		return reject(fmt.Sprintf("Parti toplamı (%v) iş emri miktarına (%v) eşit değil: %v fazla",
			batchSum, wo.Quantity, quantity.Round(-diff)))
	}

	// 6. Malzeme hazırlığı: her malzemede eksik 0 ve en az bir tahsis olmalı
	if !materialsReady(s) {
		if !opts.ConfirmMissingMaterials {
			return needsConfirm(ConfirmMissingMaterials,
				"Malzeme tahsisleri eksik; iş emri malzeme bekliyor olarak kaydedilecek")
		}
		return SaveCheck{OK: true, ProposedStatus: models.WOStatusWaitingForMaterials}
	}

	// 7. Malzemeler hazırsa plan tarihleri zorunlu ve mantıklı olmalı.
	// Buradaki ihlaller onayla geçilemez, kayıt reddedilir.
	if wo.PlannedStart == nil || wo.PlannedEnd == nil {
		return reject("Planlanan başlangıç ve bitiş tarihleri zorunlu")
	}
	if wo.PlannedEnd.Before(*wo.PlannedStart) {
		return reject("Planlanan bitiş tarihi başlangıçtan önce olamaz")
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if wo.PlannedStart.Before(today) {
		return reject("Planlanan başlangıç tarihi geçmişte olamaz")
	}

	return SaveCheck{OK: true, ProposedStatus: models.WOStatusReadyToStart}
}

// materialsReady: Tüm partilerin tüm malzemelerinde eksik sıfır mı ve
// en az bir lot veya planlı tedarik seçili mi? Eksik, her zaman yerelde
// yeniden hesaplanır; sunucu önerisinden gelen değere güvenilmez.
func materialsReady(s *EditSession) bool {
	for bi := range s.WorkOrder.Batches {
		batch := &s.WorkOrder.Batches[bi]
		for mi := range batch.Materials {
			m := &batch.Materials[mi]
			if len(m.Picks) == 0 && len(m.Plans) == 0 {
				return false
			}
			RecomputeShortage(m)
			if m.Shortage != 0 {
				return false
			}
		}
	}
	return true
}
