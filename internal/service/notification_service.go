package service

import (
	"encoding/json"
	"log"

	"magari/internal/models"
)

// NotificationHub pushes a payload to every live connection a user holds.
// The websocket hub in internal/ws satisfies it.
type NotificationHub interface {
	BroadcastToUser(userID uint, payload interface{})
}

type NotificationService struct {
	store NotificationStore
	hub   NotificationHub
}

func NewNotificationService(store NotificationStore, hub NotificationHub) *NotificationService {
	return &NotificationService{store: store, hub: hub}
}

// Notify persists the notification and pushes it over any open sockets.
// Delivery is best effort; a persistence failure is returned, a push
// failure is not observable and does not matter.
func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}) error {
	var raw []byte
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			log.Printf("[Notify] could not encode payload for user %d: %v", userID, err)
		} else {
			raw = b
		}
	}
	n := &models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   string(raw),
	}
	if err := s.store.Create(n); err != nil {
		return err
	}
	if s.hub != nil {
		s.hub.BroadcastToUser(userID, map[string]interface{}{
			"id":    n.ID,
			"type":  notifType,
			"title": title,
			"body":  body,
			"data":  data,
		})
	}
	return nil
}
