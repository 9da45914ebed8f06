// Package scheduling: İş emri listeleme, kaydetme ve lot seçim uç noktaları.
// Kompozisyon/tahsis kuralları internal/workorder motorundadır; bu paket
// motoru HTTP ve veritabanına bağlar.
package scheduling

import (
	"sort"
	"time"

	"mes-backend/internal/quantity"
	"mes-backend/internal/workorder"
)

// LotCandidate: Tahsise aday stok partisi. Available, eldeki miktardan
// kayıtlı rezervasyonlar düşülerek hesaplanmış olmalıdır.
type LotCandidate struct {
	LotID        uint
	LotCode      string
	Available    float64
	ExpirationAt *time.Time
	ReceivedAt   time.Time
}

// SortFEFO: First-Expired-First-Out sıralama. Son kullanma tarihi en yakın
// olan önce; tarihi olmayan lotlar en sona, kendi aralarında giriş tarihine
// göre sıralanır.
func SortFEFO(candidates []LotCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		ei, ej := candidates[i].ExpirationAt, candidates[j].ExpirationAt
		switch {
		case ei != nil && ej != nil:
			if !ei.Equal(*ej) {
				return ei.Before(*ej)
			}
		case ei != nil:
			return true
		case ej != nil:
			return false
		}
		return candidates[i].ReceivedAt.Before(candidates[j].ReceivedAt)
	})
}

// ProposePicks: Gereken miktarı FEFO sırasıyla aday lotlara dağıtır.
// Kalan miktar (eksik) ikinci değer olarak döner; adaylar yetmezse
// pozitiftir. Kullanılabilir miktarı sıfır olan lotlar atlanır.
func ProposePicks(required float64, candidates []LotCandidate) ([]workorder.PickUpdate, float64) {
	SortFEFO(candidates)

	remaining := quantity.Round(required)
	picks := make([]workorder.PickUpdate, 0, len(candidates))
	for _, lot := range candidates {
		if remaining <= 0 {
			break
		}
		available := quantity.Round(lot.Available)
		if available <= 0 {
			continue
		}
		take := available
		if remaining < take {
			take = remaining
		}
		picks = append(picks, workorder.PickUpdate{
			LotID:        lot.LotID,
			PickQty:      take,
			LotCode:      lot.LotCode,
			ExpirationAt: lot.ExpirationAt,
		})
		remaining = quantity.Sum(remaining, -take)
	}

	if remaining < 0 {
		remaining = 0
	}
	return picks, remaining
}
