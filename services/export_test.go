package services

// LockCount reports how many per-session locks are currently tracked.
func (s *ChatbotService) LockCount() int {
	return s.locks.size()
}
