// sim/eventstream.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"
	"maps"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/aloft-sim/aloft/log"
	"github.com/aloft-sim/aloft/math"
)

// EventStream provides a basic pub/sub event interface that allows any
// part of the system to post an event to the stream and other parts to
// subscribe and receive messages from the stream. The simulation posts
// state-change events here; runners and the viewer subscribe.
type EventStream struct {
	mu            sync.Mutex
	events        []Event
	subscriptions map[*EventsSubscription]interface{}
	lastCompact   time.Time
	warnedLong    bool
	lg            *log.Logger
}

type EventsSubscription struct {
	stream *EventStream
	// offset is offset in the EventStream stream array up to which the
	// subscriber has consumed events so far.
	offset  int
	source  string
	lastGet time.Time
}

func (e *EventsSubscription) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("offset", e.offset),
		slog.String("source", e.source),
		slog.Time("last_get", e.lastGet))
}

func NewEventStream(lg *log.Logger) *EventStream {
	return &EventStream{
		subscriptions: make(map[*EventsSubscription]interface{}),
		lastCompact:   time.Now(),
		lg:            lg,
	}
}

// Subscribe registers a new subscriber to the stream and returns an
// EventsSubscription that can be used to receive events posted after
// this call.
func (e *EventStream) Subscribe() *EventsSubscription {
	// Record the subscriber's callsite, so that we can more easily debug
	// subscribers that aren't consuming events.
	_, fn, line, _ := runtime.Caller(1)
	source := fmt.Sprintf("%s:%d", fn, line)

	sub := &EventsSubscription{
		stream:  e,
		offset:  len(e.events),
		source:  source,
		lastGet: time.Now(),
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.subscriptions[sub] = nil
	return sub
}

// Unsubscribe removes a subscriber from the subscriber list
func (e *EventsSubscription) Unsubscribe() {
	e.stream.mu.Lock()
	defer e.stream.mu.Unlock()

	if _, ok := e.stream.subscriptions[e]; !ok {
		e.stream.lg.Errorf("Attempted to unsubscribe invalid subscription: %+v", e)
	}
	delete(e.stream.subscriptions, e)
	e.stream = nil
}

// Post adds an event to the event stream. The stream compacts itself
// periodically as it goes, so a simulation that posts thousands of
// events per run does not grow the backlog without bound.
func (e *EventStream) Post(event Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lg.Debug("posted event", slog.Any("event", event))

	// Ignore the event if no one's paying attention.
	if len(e.subscriptions) == 0 {
		return
	}
	e.events = append(e.events, event)

	if time.Since(e.lastCompact) > 5*time.Second {
		e.compact()
		e.lastCompact = time.Now()

		if len(e.events) > 1000 && !e.warnedLong {
			// It's likely that one of the subscribers is out to lunch if
			// the stream has grown this long.
			e.lg.Warn("Long EventStream", slog.Int("length", len(e.events)),
				log.AnyPointerSlice("subscriptions", slices.Collect(maps.Keys(e.subscriptions))))
			e.warnedLong = true
		}
	}
}

// Get returns all of the events from the stream since the last time Get
// was called for this subscription. Note that events posted before an
// id was created with Subscribe are never reported for that id.
func (e *EventsSubscription) Get() []Event {
	e.stream.mu.Lock()
	defer e.stream.mu.Unlock()

	if _, ok := e.stream.subscriptions[e]; !ok {
		e.stream.lg.Errorf("Attempted to get with unregistered subscription: %+v", e)
		return nil
	}

	events := slices.Clone(e.stream.events[e.offset:])
	e.offset = len(e.stream.events)
	e.lastGet = time.Now()

	return events
}

func (e *EventStream) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()

	clear(e.subscriptions)
	e.events = nil
}

// compact reclaims storage for events that all subscribers have seen.
// Caller must hold e.mu.
func (e *EventStream) compact() {
	minOffset := len(e.events)
	for sub := range e.subscriptions {
		if sub.offset < minOffset {
			minOffset = sub.offset
		}
	}

	if minOffset > cap(e.events)/2 {
		n := len(e.events) - minOffset

		copy(e.events, e.events[minOffset:])
		e.events = e.events[:n]

		for sub := range e.subscriptions {
			sub.offset -= minOffset
		}

		e.warnedLong = false // reset this after a successful compact.
	}
}

// implements slog.LogValuer
func (e *EventStream) LogValue() slog.Value {
	e.mu.Lock()
	defer e.mu.Unlock()

	items := []slog.Attr{slog.Int("len", len(e.events)), slog.Int("cap", cap(e.events))}
	if len(e.events) > 0 {
		items = append(items, slog.Any("last_element", e.events[len(e.events)-1]))
	}
	items = append(items, log.AnyPointerSlice("subscriptions", slices.Collect(maps.Keys(e.subscriptions))))
	return slog.GroupValue(items...)
}

///////////////////////////////////////////////////////////////////////////

type EventType int

const (
	SpawnedEvent EventType = iota
	DestroyedEvent
	TookOffEvent
	LandedEvent
	ReachedCruiseEvent
	LeftCruiseEvent
	MovementChangedEvent
	DockReservedEvent
	DockUnreservedEvent
	ReservationDisplacedEvent
	ForceLandingEvent
	CrushWarningEvent
	CrushedEvent
	CargoReservedEvent
	CargoAttachedEvent
	CargoDetachedEvent
	StatusMessageEvent
	NumEventTypes
)

func (t EventType) String() string {
	return []string{"Spawned", "Destroyed", "TookOff", "Landed", "ReachedCruise",
		"LeftCruise", "MovementChanged", "DockReserved", "DockUnreserved",
		"ReservationDisplaced", "ForceLanding", "CrushWarning", "Crushed",
		"CargoReserved", "CargoAttached", "CargoDetached", "StatusMessage"}[t]
}

type Event struct {
	Type  EventType
	Actor ActorID // subject, 0 if none
	Other ActorID // dock host, cargo, crusher, ... 0 if none
	Cell  math.Cell
	Pos   math.Point
	Text  string
}

func (e *Event) String() string {
	return fmt.Sprintf("%s: actor %d other %d cell %v text %q", e.Type, e.Actor, e.Other, e.Cell, e.Text)
}

func (e Event) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("type", e.Type.String())}
	if e.Actor != 0 {
		attrs = append(attrs, slog.Uint64("actor", uint64(e.Actor)))
	}
	if e.Other != 0 {
		attrs = append(attrs, slog.Uint64("other", uint64(e.Other)))
	}
	if e.Text != "" {
		attrs = append(attrs, slog.String("text", e.Text))
	}
	return slog.GroupValue(attrs...)
}
