package password

// CheckReuse returns a *PolicyError with ReasonReused when plaintext matches
// the current hash or one of the most recent previous hashes the policy
// remembers. previous is ordered newest first.
func (p *Policy) CheckReuse(h Hasher, plaintext, current string, previous []string) error {
	if p.HistoryCount <= 0 {
		return nil
	}

	candidates := append([]string{current}, previous...)
	if len(candidates) > p.HistoryCount {
		candidates = candidates[:p.HistoryCount]
	}
	for _, hash := range candidates {
		if hash != "" && h.Verify(plaintext, hash) {
			return &PolicyError{Reasons: []Reason{ReasonReused}}
		}
	}
	return nil
}

// RotateHistory pushes the outgoing hash onto previous and trims the list to
// what the reuse check can still consult.
func (p *Policy) RotateHistory(outgoing string, previous []string) []string {
	keep := p.HistoryCount - 1
	if keep <= 0 {
		return []string{}
	}

	rotated := make([]string, 0, keep)
	if outgoing != "" {
		rotated = append(rotated, outgoing)
	}
	for _, hash := range previous {
		if len(rotated) == keep {
			break
		}
		rotated = append(rotated, hash)
	}
	return rotated
}
