package workorder

import "mes-backend/internal/models"

// Bu motor sadece DRAFT, WAITING_FOR_MATERIALS ve READY_TO_START durumlarını
// önerir. READY_TO_START sonrası geçişler üretim yürütme akışına aittir.

var editableStatuses = map[models.WorkOrderStatus]bool{
	models.WOStatusDraft:               true,
	models.WOStatusWaitingForMaterials: true,
	models.WOStatusReadyToStart:        true,
}

var allowedTransitions = map[models.WorkOrderStatus][]models.WorkOrderStatus{
	models.WOStatusDraft: {
		models.WOStatusDraft,
		models.WOStatusWaitingForMaterials,
		models.WOStatusReadyToStart,
		models.WOStatusCanceled,
	},
	models.WOStatusWaitingForMaterials: {
		models.WOStatusDraft,
		models.WOStatusWaitingForMaterials,
		models.WOStatusReadyToStart,
		models.WOStatusCanceled,
	},
	models.WOStatusReadyToStart: {
		models.WOStatusDraft,
		models.WOStatusWaitingForMaterials,
		models.WOStatusReadyToStart,
		models.WOStatusInProgress,
		models.WOStatusCanceled,
	},
	models.WOStatusInProgress: {
		models.WOStatusCompleted,
		models.WOStatusCanceled,
	},
}

// EditableStatus: İş emri bu motor tarafından hâlâ düzenlenebilir mi?
func EditableStatus(st models.WorkOrderStatus) bool {
	return editableStatuses[st]
}

// CanTransition: from -> to geçişine izin var mı?
func CanTransition(from, to models.WorkOrderStatus) bool {
	if from == "" {
		// Yeni iş emri: düzenlenebilir durumlardan biriyle doğar
		return editableStatuses[to]
	}
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CanCancel: COMPLETED öncesi her noktada iptal mümkündür.
// İptal, alt partilere de yayılır (çağıran taraf uygular).
func CanCancel(st models.WorkOrderStatus) bool {
	return st != models.WOStatusCompleted && st != models.WOStatusCanceled
}
