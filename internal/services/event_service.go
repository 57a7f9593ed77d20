package services

import (
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/postdrop/postdrop-be/internal/models"
	"github.com/postdrop/postdrop-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(eventType, level, message string, email *string) error
	GetRecentEvents(limit int) ([]models.Event, error)
}

// EventService records activity events and pushes them to connected
// websocket clients.
type EventService struct {
	db  *sql.DB
	hub *websocket.Hub
}

// NewEventService creates a new EventService. hub may be nil when no live
// stream is wanted (e.g. in tests).
func NewEventService(db *sql.DB, hub *websocket.Hub) *EventService {
	return &EventService{db: db, hub: hub}
}

// CreateEvent logs a new event to the database and broadcasts it.
func (s *EventService) CreateEvent(eventType, level, message string, email *string) error {
	event := models.Event{
		ID:      uuid.New().String(),
		Type:    eventType,
		Level:   level,
		Message: message,
		Email:   email,
	}

	stmt, err := s.db.Prepare("INSERT INTO events (id, type, level, message, email) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	if _, err := stmt.Exec(event.ID, event.Type, event.Level, event.Message, event.Email); err != nil {
		return err
	}

	if s.hub != nil {
		payload, err := json.Marshal(websocket.Message{Action: "event", Payload: event})
		if err != nil {
			log.Error().Err(err).Str("event_type", eventType).Msg("Failed to encode event for broadcast")
			return nil
		}
		s.hub.Broadcast <- payload
	}
	return nil
}

// GetRecentEvents returns the most recent events, newest first.
func (s *EventService) GetRecentEvents(limit int) ([]models.Event, error) {
	rows, err := s.db.Query("SELECT id, type, level, message, email, created_at FROM events ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.Email, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
