package engine

import "github.com/yurixander/minimal/pkg/domain"

// eventSet is an insertion-ordered set. Adding an event that is already
// pending is a no-op, so the queue holds each event at most once.
type eventSet struct {
	queue   []domain.Event
	members map[domain.Event]struct{}
}

func newEventSet(events ...domain.Event) *eventSet {
	s := &eventSet{members: make(map[domain.Event]struct{})}
	for _, e := range events {
		s.Add(e)
	}
	return s
}

func (s *eventSet) Add(e domain.Event) {
	if _, ok := s.members[e]; ok {
		return
	}
	s.members[e] = struct{}{}
	s.queue = append(s.queue, e)
}

// Pop removes the earliest-added event. It panics on an empty set.
func (s *eventSet) Pop() domain.Event {
	e := s.queue[0]
	s.queue = s.queue[1:]
	delete(s.members, e)
	return e
}

func (s *eventSet) Len() int { return len(s.queue) }
