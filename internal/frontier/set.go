package frontier

// seenSet deduplicates admissions by canonical filename. A document
// discovered on the landing page and later reached by the grid walk is
// fetched exactly once.
type seenSet struct {
	members map[string]struct{}
}

func newSeenSet() seenSet {
	return seenSet{
		members: make(map[string]struct{}),
	}
}

// markSeen returns false if the filename was already a member.
func (s *seenSet) markSeen(filename string) bool {
	if _, exists := s.members[filename]; exists {
		return false
	}
	s.members[filename] = struct{}{}
	return true
}

func (s *seenSet) size() int {
	return len(s.members)
}
