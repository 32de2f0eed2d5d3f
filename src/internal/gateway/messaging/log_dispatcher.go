package messaging

import (
	"context"

	"booking-service/src/internal/model"
	"booking-service/src/pkg/log"
	"booking-service/src/pkg/utils"
)

// LogDispatcher only records notifications; used when no broker is configured.
type LogDispatcher struct {
	Log log.Log
}

func (d LogDispatcher) Dispatch(_ context.Context, n *model.Notification) error {
	d.Log.Info("notification", n.Title, n.Type, utils.ConvertString(map[string]string{
		"id":        n.ID,
		"recipient": n.RecipientID,
		"model":     n.RecipientModel,
	}))
	return nil
}
