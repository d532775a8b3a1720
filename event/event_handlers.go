package event

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// EventHandler returns nil when the event is not of its concern
type EventHandler func(e *EventRecord) *EventHandleResult

type EventHandleResult struct {
	Success           bool
	Message           string
	HandlerIdentifier string
}

var (
	handlersLock  sync.RWMutex
	EventHandlers []EventHandler
)

var InvokeHandlersFunc = invokeHandlers

func RegisterHandler(h EventHandler) {
	handlersLock.Lock()
	defer handlersLock.Unlock()
	EventHandlers = append(EventHandlers, h)
}

func invokeHandlers(record *EventRecord) []EventHandleResult {
	handlersLock.RLock()
	handlers := make([]EventHandler, len(EventHandlers))
	copy(handlers, EventHandlers)
	handlersLock.RUnlock()

	results := []EventHandleResult{}
	for _, handler := range handlers {
		r := handler(record)
		if r == nil {
			continue
		}
		results = append(results, *r)

		entry := logrus.WithField("handler", r.HandlerIdentifier).WithField("event", record.ID)
		if r.Success {
			entry.Debug("event handled: ", r.Message)
		} else {
			entry.Error("event handle failed: ", r.Message)
		}
	}
	return results
}
