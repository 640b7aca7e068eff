package services

import (
	"encoding/json"
	"log"
	"time"

	"notelock/broker"
	"notelock/database"
	"notelock/models"
)

type EventDispatcherInterface interface {
	Start()
	Stop()
	DispatchPending() error
}

// EventDispatcher drains the outbox: it periodically picks up undispatched
// event rows and publishes them to NATS, marking each row once the publish
// succeeds. Events written in the same transaction as their mutation are
// therefore delivered at-least-once.
type EventDispatcher struct {
	db        *database.Database
	isRunning bool
	ticker    *time.Ticker
	stop      chan struct{}
}

func NewEventDispatcher(db *database.Database) *EventDispatcher {
	return &EventDispatcher{
		db:     db,
		ticker: time.NewTicker(1 * time.Second),
		stop:   make(chan struct{}),
	}
}

func (s *EventDispatcher) Start() {
	if s.isRunning {
		return
	}
	s.isRunning = true
	go s.run()
}

func (s *EventDispatcher) Stop() {
	if !s.isRunning {
		return
	}
	s.isRunning = false
	s.ticker.Stop()
	close(s.stop)
}

func (s *EventDispatcher) run() {
	for {
		select {
		case <-s.stop:
			return
		case <-s.ticker.C:
			if err := s.DispatchPending(); err != nil {
				log.Printf("Error dispatching events: %v", err)
			}
		}
	}
}

func (s *EventDispatcher) DispatchPending() error {
	var events []models.Event
	if err := s.db.DB.Where("dispatched = ?", false).Order("timestamp ASC").Find(&events).Error; err != nil {
		return err
	}

	for _, event := range events {
		if err := s.dispatchEvent(event); err != nil {
			log.Printf("Error dispatching event %s: %v", event.ID, err)
			continue
		}
	}
	return nil
}

func (s *EventDispatcher) dispatchEvent(event models.Event) error {
	payload, err := json.Marshal(map[string]interface{}{
		"event_id":  event.ID.String(),
		"type":      event.Event,
		"entity":    event.Entity,
		"actor_id":  event.ActorID,
		"timestamp": event.Timestamp,
		"data":      json.RawMessage(event.Data),
	})
	if err != nil {
		return err
	}

	if err := broker.PublishMessage(event.Event, payload); err != nil {
		return err
	}

	now := time.Now().UTC()
	return s.db.DB.Model(&event).Updates(map[string]interface{}{
		"dispatched":    true,
		"dispatched_at": now,
	}).Error
}

var EventDispatcherInstance EventDispatcherInterface
