package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) *time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &d
}

func TestProposePicksOrdersByExpiration(t *testing.T) {
	candidates := []LotCandidate{
		{LotID: 1, LotCode: "LOT-GEC", Available: 50, ExpirationAt: date("2026-12-01")},
		{LotID: 2, LotCode: "LOT-ERKEN", Available: 50, ExpirationAt: date("2026-09-15")},
	}

	picks, shortage := ProposePicks(60, candidates)

	require.Len(t, picks, 2)
	assert.Equal(t, uint(2), picks[0].LotID) // Önce en yakın son kullanma tarihi
	assert.Equal(t, 50.0, picks[0].PickQty)
	assert.Equal(t, uint(1), picks[1].LotID)
	assert.Equal(t, 10.0, picks[1].PickQty)
	assert.Equal(t, 0.0, shortage)
}

func TestProposePicksExpirationlessLotsLast(t *testing.T) {
	early := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	candidates := []LotCandidate{
		{LotID: 1, Available: 10, ReceivedAt: late},
		{LotID: 2, Available: 10, ExpirationAt: date("2026-10-01")},
		{LotID: 3, Available: 10, ReceivedAt: early},
	}

	picks, _ := ProposePicks(30, candidates)

	require.Len(t, picks, 3)
	assert.Equal(t, uint(2), picks[0].LotID) // Tarihli lot önce
	assert.Equal(t, uint(3), picks[1].LotID) // Tarihsizler giriş sırasına göre
	assert.Equal(t, uint(1), picks[2].LotID)
}

func TestProposePicksReportsShortage(t *testing.T) {
	candidates := []LotCandidate{
		{LotID: 1, Available: 4, ExpirationAt: date("2026-09-01")},
		{LotID: 2, Available: 3, ExpirationAt: date("2026-09-02")},
	}

	picks, shortage := ProposePicks(10, candidates)

	require.Len(t, picks, 2)
	assert.Equal(t, 3.0, shortage)
}

func TestProposePicksSkipsDepletedLots(t *testing.T) {
	candidates := []LotCandidate{
		{LotID: 1, Available: 0, ExpirationAt: date("2026-09-01")},
		{LotID: 2, Available: 8, ExpirationAt: date("2026-09-02")},
	}

	picks, shortage := ProposePicks(5, candidates)

	require.Len(t, picks, 1)
	assert.Equal(t, uint(2), picks[0].LotID)
	assert.Equal(t, 5.0, picks[0].PickQty)
	assert.Equal(t, 0.0, shortage)
}

func TestProposePicksRoundsFractionalAvailability(t *testing.T) {
	candidates := []LotCandidate{
		{LotID: 1, Available: 0.1, ExpirationAt: date("2026-09-01")},
		{LotID: 2, Available: 0.2, ExpirationAt: date("2026-09-02")},
	}

	picks, shortage := ProposePicks(0.3, candidates)

	require.Len(t, picks, 2)
	assert.Equal(t, 0.0, shortage) // 0.1 + 0.2 kayıpsız toplanmalı
}
