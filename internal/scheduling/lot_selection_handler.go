package scheduling

import (
	"mes-backend/internal/api"
	"mes-backend/internal/database"
	"mes-backend/internal/inventory"
	"mes-backend/internal/models"
	"mes-backend/internal/quantity"
	"mes-backend/internal/workorder"

	"github.com/gofiber/fiber/v2"
)

type LotCandidateResponse struct {
	LotID        uint    `json:"lot_id"`
	LotCode      string  `json:"lot_code"`
	Quantity     float64 `json:"quantity"`
	Reserved     float64 `json:"reserved"`
	Available    float64 `json:"available"`
	ExpirationAt *string `json:"expiration_at"`
	ReceivedAt   string  `json:"received_at"`
}

type PlannedCandidateResponse struct {
	PlannedSupplyID uint    `json:"planned_supply_id"`
	SourceType      string  `json:"source_type"`
	SourceCode      string  `json:"source_code"`
	Quantity        float64 `json:"quantity"`
	Reserved        float64 `json:"reserved"`
	Available       float64 `json:"available"`
	ExpectedAt      string  `json:"expected_at"`
}

type ProposedPickResponse struct {
	LotID        uint    `json:"lot_id"`
	LotCode      string  `json:"lot_code"`
	PickQty      float64 `json:"pick_qty"`
	ExpirationAt *string `json:"expiration_at"`
}

type MaterialProposalResponse struct {
	BatchMaterialID  uint                   `json:"batch_material_id"`
	ComponentID      uint                   `json:"component_id"`
	RequiredQuantity float64                `json:"required_quantity"`
	Picks            []ProposedPickResponse `json:"picks"`
	Shortage         float64                `json:"shortage"`
}

// lotCandidates: Bileşen (ve varsa tedarikçi) için aday lotları FEFO
// sırasıyla toplar. Available, kayıtlı tüm pick'ler düşülerek hesaplanır.
func lotCandidates(componentID uint, vendorID *uint) ([]models.InventoryLot, []LotCandidate, error) {
	dbq := database.DB.Where("product_id = ?", componentID)
	if vendorID != nil {
		dbq = dbq.Where("vendor_id = ?", *vendorID)
	}

	var lots []models.InventoryLot
	if err := dbq.Find(&lots).Error; err != nil {
		return nil, nil, err
	}

	candidates := make([]LotCandidate, 0, len(lots))
	for i := range lots {
		reserved := inventory.ReservedForLot(lots[i].ID)
		candidates = append(candidates, LotCandidate{
			LotID:        lots[i].ID,
			LotCode:      lots[i].LotCode,
			Available:    quantity.Sum(lots[i].Quantity, -reserved),
			ExpirationAt: lots[i].ExpirationAt,
			ReceivedAt:   lots[i].ReceivedAt,
		})
	}
	SortFEFO(candidates)
	return lots, candidates, nil
}

// GET /api/lot-selection/lots?component_id=11&vendor_id=3
// Tahsis editörünün lot listesi: FEFO sıralı adaylar
func ListLotCandidatesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		componentID := uint(c.QueryInt("component_id"))
		if componentID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "component_id zorunlu")
		}
		var vendorID *uint
		if v := c.QueryInt("vendor_id"); v > 0 {
			vid := uint(v)
			vendorID = &vid
		}

		lots, candidates, err := lotCandidates(componentID, vendorID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Aday lotlar listelenemedi")
		}

		byID := make(map[uint]*models.InventoryLot, len(lots))
		for i := range lots {
			byID[lots[i].ID] = &lots[i]
		}

		res := make([]LotCandidateResponse, 0, len(candidates))
		for _, cand := range candidates {
			lot := byID[cand.LotID]
			var exp *string
			if cand.ExpirationAt != nil {
				s := cand.ExpirationAt.Format("2006-01-02")
				exp = &s
			}
			res = append(res, LotCandidateResponse{
				LotID:        cand.LotID,
				LotCode:      cand.LotCode,
				Quantity:     lot.Quantity,
				Reserved:     quantity.Sum(lot.Quantity, -cand.Available),
				Available:    cand.Available,
				ExpirationAt: exp,
				ReceivedAt:   lot.ReceivedAt.Format("2006-01-02"),
			})
		}
		return api.Data(c, res)
	}
}

// GET /api/lot-selection/planned?component_id=11&vendor_id=3
// Tahsis editörünün planlı tedarik listesi: beklenen tarihe göre sıralı
func ListPlannedCandidatesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		componentID := uint(c.QueryInt("component_id"))
		if componentID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "component_id zorunlu")
		}

		dbq := database.DB.Where("product_id = ? AND closed = ?", componentID, false)
		if v := c.QueryInt("vendor_id"); v > 0 {
			dbq = dbq.Where("vendor_id = ?", v)
		}

		var supplies []models.PlannedSupply
		if err := dbq.Order("expected_at asc").Find(&supplies).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Planlı tedarikler listelenemedi")
		}

		res := make([]PlannedCandidateResponse, 0, len(supplies))
		for i := range supplies {
			s := &supplies[i]
			reserved := inventory.ReservedForPlannedSupply(s.ID)
			res = append(res, PlannedCandidateResponse{
				PlannedSupplyID: s.ID,
				SourceType:      string(s.SourceType),
				SourceCode:      s.SourceCode,
				Quantity:        s.Quantity,
				Reserved:        quantity.Round(reserved),
				Available:       quantity.Sum(s.Quantity, -reserved),
				ExpectedAt:      s.ExpectedAt.Format("2006-01-02"),
			})
		}
		return api.Data(c, res)
	}
}

type AllocationCheckRequest struct {
	RequiredQuantity float64   `json:"required_quantity"`
	PickQuantities   []float64 `json:"pick_quantities"`
	PlanQuantities   []float64 `json:"plan_quantities"`
}

// POST /api/lot-selection/check
// Tahsis editörü kapanmadan önce çağrılır: toplam tahsis gereken miktara
// TAM eşit mi? Eksik de fazla da, stok/planlı tedarik dağılımını içeren
// mesajla reddedilir. Ya tüm seçimler birlikte kabul edilir ya da hiçbiri.
func CheckAllocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AllocationCheckRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		m := models.BatchMaterial{RequiredQuantity: quantity.Round(body.RequiredQuantity)}
		for _, q := range body.PickQuantities {
			m.Picks = append(m.Picks, models.MaterialPick{PickQty: q})
		}
		for _, q := range body.PlanQuantities {
			m.Plans = append(m.Plans, models.MaterialPlan{PickQty: q})
		}

		if err := workorder.CheckAllocation(&m); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return api.Message(c, "Tahsis toplamı gereken miktara eşit")
	}
}

type MaterialProposalInput struct {
	BatchMaterialID  uint    `json:"batch_material_id"` // 0 olabilir (kaydedilmemiş parti)
	ComponentID      uint    `json:"component_id"`
	VendorID         *uint   `json:"vendor_id"`
	RequiredQuantity float64 `json:"required_quantity"`
}

type BatchProposalRequest struct {
	Materials []MaterialProposalInput `json:"materials"`
}

// POST /api/lot-selection/batch
// Malzeme listesi için FEFO önerisi üretir. Parti henüz kaydedilmemiş
// olabilir; bu yüzden istek malzeme satırlarını doğrudan taşır. Öneri
// sadece bilgidir; tahsis, istemci kaydetme isteğine seçimleri koyunca
// bağlanır. Kaydedilmiş malzemelerin kendi pick'leri kullanılabilirliğe
// geri eklenir, öneri mevcut seçimlerin yerine geçecek şekilde hesaplanır.
func ProposeBatchPicksHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body BatchProposalRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if len(body.Materials) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "En az bir malzeme satırı gerekli")
		}

		res := make([]MaterialProposalResponse, 0, len(body.Materials))
		for _, in := range body.Materials {
			if in.ComponentID == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "component_id zorunlu")
			}

			_, candidates, err := lotCandidates(in.ComponentID, in.VendorID)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Aday lotlar listelenemedi")
			}

			if in.BatchMaterialID > 0 {
				var ownPicks []models.MaterialPick
				if err := database.DB.Where("batch_material_id = ?", in.BatchMaterialID).
					Find(&ownPicks).Error; err != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "Mevcut tahsisler yüklenemedi")
				}
				ownByLot := map[uint]float64{}
				for _, p := range ownPicks {
					ownByLot[p.LotID] = quantity.Sum(ownByLot[p.LotID], p.PickQty)
				}
				for i := range candidates {
					if own := ownByLot[candidates[i].LotID]; own > 0 {
						candidates[i].Available = quantity.Sum(candidates[i].Available, own)
					}
				}
			}

			picks, shortage := ProposePicks(in.RequiredQuantity, candidates)

			proposed := make([]ProposedPickResponse, 0, len(picks))
			for _, p := range picks {
				var exp *string
				if p.ExpirationAt != nil {
					s := p.ExpirationAt.Format("2006-01-02")
					exp = &s
				}
				proposed = append(proposed, ProposedPickResponse{
					LotID:        p.LotID,
					LotCode:      p.LotCode,
					PickQty:      p.PickQty,
					ExpirationAt: exp,
				})
			}

			res = append(res, MaterialProposalResponse{
				BatchMaterialID:  in.BatchMaterialID,
				ComponentID:      in.ComponentID,
				RequiredQuantity: quantity.Round(in.RequiredQuantity),
				Picks:            proposed,
				Shortage:         shortage,
			})
		}

		return api.Data(c, res)
	}
}
