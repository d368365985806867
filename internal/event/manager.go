package event

import (
	"go.uber.org/zap"
	"sync"
)

var (
	mu        sync.Mutex
	listeners = make([]*Listener, 0)
)

type Listener struct {
	eventType Type
	channel   chan interface{}
}

func AddEventListener(eventType Type, callback func(msg interface{})) {
	zap.L().With(zap.String("type", string(eventType))).Debug("EventManager: AddListener")

	listener := Listener{
		eventType: eventType,
		channel:   make(chan interface{}, 64),
	}

	mu.Lock()
	listeners = append(listeners, &listener)
	mu.Unlock()

	go func() {
		for msg := range listener.channel {
			callback(msg)
		}
	}()
}

func EmitEvent(eventType Type, msg interface{}) {
	mu.Lock()
	defer mu.Unlock()

	for _, listener := range listeners {
		if listener.eventType == eventType {
			zap.L().With(zap.String("type", string(eventType))).Debug("EventManager: Emitting event")
			listener.channel <- msg
		}
	}
}

// ClearListeners drops every registered listener. Used between tests.
func ClearListeners() {
	mu.Lock()
	defer mu.Unlock()

	for _, listener := range listeners {
		close(listener.channel)
	}
	listeners = make([]*Listener, 0)
}
