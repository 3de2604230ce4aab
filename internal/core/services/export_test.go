package services

import "time"

func (s *BookingService) SetClock(now func() time.Time) { s.now = now }

func (s *AccountService) SetClock(now func() time.Time) { s.now = now }
