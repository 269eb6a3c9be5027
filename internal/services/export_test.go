package services

import "time"

// SetClock replaces the clock ListOpen uses to hide past events.
func (s *EventService) SetClock(now func() time.Time) { s.now = now }
