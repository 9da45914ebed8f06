package masterdata

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"mes-backend/internal/api"
	"mes-backend/internal/database"
	"mes-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// normalizeTurkish: Türkçe karakterleri ASCII karşılıklarına çevirir
// Örn: "ÇİKOLATA SÜTÜ" -> "cikolata sutu"
func normalizeTurkish(s string) string {
	replacements := map[rune]string{
		'ç': "c", 'Ç': "C",
		'ğ': "g", 'Ğ': "G",
		'ı': "i", 'İ': "I",
		'ö': "o", 'Ö': "O",
		'ş': "s", 'Ş': "S",
		'ü': "u", 'Ü': "U",
	}

	var result strings.Builder
	for _, r := range s {
		if replacement, ok := replacements[r]; ok {
			result.WriteString(replacement)
		} else {
			result.WriteRune(r)
		}
	}
	return strings.ToLower(result.String())
}

// POST /api/admin/boms/:id/import-items
// XLSX dosyasından reçete kalemlerini yükler. Beklenen kolonlar:
// bileşen kodu veya adı | miktar | tedarikçi kodu (opsiyonel)
// Mevcut kalemler korunur, eşleşen bileşenler yeni kalem olarak eklenir.
func ImportBOMItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var bom models.BOM
		if err := database.DB.Preload("Items").First(&bom, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Reçete bulunamadı")
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya yüklenemedi: "+err.Error())
		}

		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Sadece .xlsx dosyaları yüklenebilir")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dosya açılamadı: "+err.Error())
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası okunamadı: "+err.Error())
		}
		defer excelFile.Close()

		sheetList := excelFile.GetSheetList()
		if len(sheetList) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyasında sheet bulunamadı")
		}

		rows, err := excelFile.GetRows(sheetList[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Sheet okunamadı: "+err.Error())
		}
		if len(rows) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası boş")
		}

		// İlk satır başlık mı? ("BİLEŞEN", "COMPONENT", "MALZEME" geçiyorsa atla)
		startIndex := 0
		if len(rows[0]) > 0 {
			firstCell := strings.ToUpper(strings.TrimSpace(rows[0][0]))
			if strings.Contains(firstCell, "BİLEŞEN") || strings.Contains(firstCell, "COMPONENT") ||
				strings.Contains(firstCell, "MALZEME") {
				startIndex = 1
				log.Printf("İlk satır başlık satırı olarak algılandı, atlanıyor")
			}
		}

		// Tüm ürünleri çekip normalize edilmiş haliyle karşılaştır
		var products []models.Product
		if err := database.DB.Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler yüklenemedi")
		}

		existingComponents := make(map[uint]bool, len(bom.Items))
		for _, item := range bom.Items {
			existingComponents[item.ComponentID] = true
		}

		matchedCount := 0
		unmatchedRows := make([]string, 0)

		for i := startIndex; i < len(rows); i++ {
			row := rows[i]
			if len(row) < 2 {
				continue
			}

			key := strings.TrimSpace(row[0])
			if key == "" {
				continue
			}

			qty, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(row[1]), ",", "."), 64)
			if err != nil || qty <= 0 {
				unmatchedRows = append(unmatchedRows, key)
				continue
			}

			// Bileşeni kod veya normalize edilmiş isimle eşleştir
			normalizedKey := normalizeTurkish(key)
			var component *models.Product
			for pi := range products {
				p := &products[pi]
				if normalizeTurkish(p.Code) == normalizedKey || normalizeTurkish(p.Name) == normalizedKey {
					component = p
					break
				}
			}
			if component == nil {
				unmatchedRows = append(unmatchedRows, key)
				continue
			}

			if existingComponents[component.ID] {
				// Aynı bileşen zaten reçetede, satır atlanır
				continue
			}

			// Opsiyonel tedarikçi kodu (3. kolon)
			var vendorID *uint
			if len(row) >= 3 && strings.TrimSpace(row[2]) != "" {
				var vendor models.Vendor
				if err := database.DB.Where("code = ?", strings.TrimSpace(row[2])).First(&vendor).Error; err == nil {
					vendorID = &vendor.ID
				}
			}

			item := models.BOMItem{
				BOMID:           bom.ID,
				ComponentID:     component.ID,
				Quantity:        qty,
				UnitOfMeasureID: component.UnitOfMeasureID,
				VendorID:        vendorID,
			}
			if err := database.DB.Create(&item).Error; err != nil {
				log.Printf("Reçete kalemi oluşturulurken hata (component_id=%d): %v", component.ID, err)
				continue
			}

			existingComponents[component.ID] = true
			matchedCount++
		}

		return api.Data(c, fiber.Map{
			"matched_count":  matchedCount,
			"unmatched_rows": unmatchedRows,
			"message":        fmt.Sprintf("%d reçete kalemi eklendi. %d satır eşleşmedi.", matchedCount, len(unmatchedRows)),
		})
	}
}
