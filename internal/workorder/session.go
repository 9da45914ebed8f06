// Package workorder: İş emri kompozisyon ve malzeme tahsis motoru.
// Bu paket saf iş mantığı içerir; HTTP ve veritabanı katmanlarına bağımlı değildir.
package workorder

import (
	"mes-backend/internal/models"
	"mes-backend/internal/quantity"
)

// Catalog: Seçili ürünün rota ve reçete versiyonlarının salt-okunur anlık görüntüsü.
// Parti oluştururken operasyon ve malzeme şablonları buradan kopyalanır.
type Catalog struct {
	Routings []models.Routing
	BOMs     []models.BOM
}

func (c *Catalog) RoutingByID(id uint) *models.Routing {
	for i := range c.Routings {
		if c.Routings[i].ID == id {
			return &c.Routings[i]
		}
	}
	return nil
}

func (c *Catalog) BOMByID(id uint) *models.BOM {
	for i := range c.BOMs {
		if c.BOMs[i].ID == id {
			return &c.BOMs[i]
		}
	}
	return nil
}

// Ready: Ürün için en az bir rota ve bir reçete versiyonu var mı?
// Yoksa editör "hazır değil" uyarısı gösterir.
func (c *Catalog) Ready() bool {
	return len(c.Routings) > 0 && len(c.BOMs) > 0
}

// EditSession: Düzenlenmekte olan iş emri toplamı. Tek bir düzenleme oturumuna
// aittir, paylaşılmaz; oturum kapanınca atılır. Tüm motor fonksiyonları bu
// değer üzerinden çalışır, paket seviyesinde durum tutulmaz.
type EditSession struct {
	WorkOrder models.WorkOrder // Batches dahil
	Catalog   *Catalog
}

func NewEditSession(wo models.WorkOrder, catalog *Catalog) *EditSession {
	return &EditSession{WorkOrder: wo, Catalog: catalog}
}

// Reset: Oturumdaki tüm parti düzenlemelerini atar
func (s *EditSession) Reset() {
	s.WorkOrder.Batches = nil
}

// BatchQuantitySum: Mevcut partilerin miktar toplamı (yuvarlanmış)
func (s *EditSession) BatchQuantitySum() float64 {
	values := make([]float64, 0, len(s.WorkOrder.Batches))
	for _, b := range s.WorkOrder.Batches {
		values = append(values, b.Quantity)
	}
	return quantity.Sum(values...)
}

// FindBatch: Parti kodu ile parti arar, yoksa nil döner
func (s *EditSession) FindBatch(batchCode string) *models.Batch {
	for i := range s.WorkOrder.Batches {
		if s.WorkOrder.Batches[i].BatchCode == batchCode {
			return &s.WorkOrder.Batches[i]
		}
	}
	return nil
}
