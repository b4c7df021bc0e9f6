package network

import (
	"sync"

	"github.com/cbodonnell/scorekeeper/pkg/log"
	"github.com/google/uuid"
)

const (
	// SubscriberBufferSize is the number of pending messages kept per subscriber
	SubscriberBufferSize = 16
)

// Subscriber is a connected UI that receives state updates.
type Subscriber struct {
	ID   uuid.UUID
	send chan []byte
}

// SubscriberManager tracks connected subscribers.
type SubscriberManager struct {
	subscribers     map[uuid.UUID]*Subscriber
	subscribersLock sync.RWMutex
}

func NewSubscriberManager() *SubscriberManager {
	return &SubscriberManager{
		subscribers: make(map[uuid.UUID]*Subscriber),
	}
}

// Add registers a new subscriber with a fresh ID.
func (m *SubscriberManager) Add() *Subscriber {
	m.subscribersLock.Lock()
	defer m.subscribersLock.Unlock()

	s := &Subscriber{
		ID:   uuid.New(),
		send: make(chan []byte, SubscriberBufferSize),
	}
	m.subscribers[s.ID] = s
	return s
}

// Remove unregisters a subscriber. Its send channel is closed.
func (m *SubscriberManager) Remove(id uuid.UUID) {
	m.subscribersLock.Lock()
	defer m.subscribersLock.Unlock()

	s, ok := m.subscribers[id]
	if !ok {
		return
	}
	delete(m.subscribers, id)
	close(s.send)
}

func (m *SubscriberManager) Count() int {
	m.subscribersLock.RLock()
	defer m.subscribersLock.RUnlock()
	return len(m.subscribers)
}

// SendToAll queues b for every subscriber.
// A subscriber that is not keeping up loses its oldest pending message, never b.
func (m *SubscriberManager) SendToAll(b []byte) {
	m.subscribersLock.RLock()
	defer m.subscribersLock.RUnlock()

	for _, s := range m.subscribers {
		s.enqueue(b)
	}
}

// Send queues b for a single subscriber.
func (m *SubscriberManager) Send(id uuid.UUID, b []byte) bool {
	m.subscribersLock.RLock()
	defer m.subscribersLock.RUnlock()

	s, ok := m.subscribers[id]
	if !ok {
		return false
	}
	s.enqueue(b)
	return true
}

// enqueue must be called with the manager's read lock held, so send is not closed underneath it.
func (s *Subscriber) enqueue(b []byte) {
	for {
		select {
		case s.send <- b:
			return
		default:
		}
		select {
		case <-s.send:
			log.Debug("Subscriber %s is behind, discarding oldest update", s.ID)
		default:
		}
	}
}
