package workorder

import (
	"testing"

	"mes-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestEditableStatuses(t *testing.T) {
	assert.True(t, EditableStatus(models.WOStatusDraft))
	assert.True(t, EditableStatus(models.WOStatusWaitingForMaterials))
	assert.True(t, EditableStatus(models.WOStatusReadyToStart))
	assert.False(t, EditableStatus(models.WOStatusInProgress))
	assert.False(t, EditableStatus(models.WOStatusCompleted))
	assert.False(t, EditableStatus(models.WOStatusCanceled))
}

func TestTransitions(t *testing.T) {
	// Yeni iş emri düzenlenebilir durumlardan biriyle doğar
	assert.True(t, CanTransition("", models.WOStatusDraft))
	assert.True(t, CanTransition("", models.WOStatusWaitingForMaterials))
	assert.False(t, CanTransition("", models.WOStatusInProgress))

	// Düzenlenebilir durumlar kendi aralarında serbestçe gezinir
	assert.True(t, CanTransition(models.WOStatusDraft, models.WOStatusReadyToStart))
	assert.True(t, CanTransition(models.WOStatusReadyToStart, models.WOStatusDraft))
	assert.True(t, CanTransition(models.WOStatusWaitingForMaterials, models.WOStatusReadyToStart))

	// READY_TO_START sonrası yürütme akışına geçer
	assert.True(t, CanTransition(models.WOStatusReadyToStart, models.WOStatusInProgress))
	assert.False(t, CanTransition(models.WOStatusDraft, models.WOStatusInProgress))
	assert.True(t, CanTransition(models.WOStatusInProgress, models.WOStatusCompleted))
	assert.False(t, CanTransition(models.WOStatusCompleted, models.WOStatusInProgress))
}

func TestCancelReachableBeforeCompletion(t *testing.T) {
	assert.True(t, CanCancel(models.WOStatusDraft))
	assert.True(t, CanCancel(models.WOStatusWaitingForMaterials))
	assert.True(t, CanCancel(models.WOStatusReadyToStart))
	assert.True(t, CanCancel(models.WOStatusInProgress))
	assert.False(t, CanCancel(models.WOStatusCompleted))
	assert.False(t, CanCancel(models.WOStatusCanceled))
}
