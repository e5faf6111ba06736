package queue

import (
	"stockbridge/internal/models"
)

// ApplyDecision is the optimistic reducer for approve/reject: the item leaves pending and
// is prepended to processed, marked read, with its new status. Metadata is replaced wholesale
// when the server returned a fresh snapshot. The input board is not modified.
func ApplyDecision(board models.ReviewBoard, notificationID int64, next models.TransferStatus, metadata *models.TransferMetadata) (models.ReviewBoard, bool) {
	idx := -1
	for i, item := range board.Pending {
		if item.NotificationID == notificationID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return board, false
	}

	moved := board.Pending[idx]
	moved.IsRead = true
	moved.Status = next
	if metadata != nil {
		moved.Metadata = *metadata
	}

	pending := make([]models.ReviewItem, 0, len(board.Pending)-1)
	pending = append(pending, board.Pending[:idx]...)
	pending = append(pending, board.Pending[idx+1:]...)

	processed := make([]models.ReviewItem, 0, len(board.Processed)+1)
	processed = append(processed, moved)
	processed = append(processed, board.Processed...)

	return models.ReviewBoard{Pending: pending, Processed: processed}, true
}
