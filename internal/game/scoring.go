package game

import "math"

// isHit reports whether a circle center lies within radius pixels of the
// target. The boundary counts as a hit.
func isHit(c Circle, t Target, radius float64) bool {
	return math.Hypot(c.X-t.X, c.Y-t.Y) <= radius
}

// ComputeWinners collects the teams whose recorded circle hits the
// round's target. Normalized rounds carry no pixel scale, so automatic
// scoring is impossible and the result is always empty; normalized
// circles inside a pixel round are skipped for the same reason.
func (s *Session) ComputeWinners() []string {
	winners := []string{}
	r := s.Round
	if r == nil || r.Normalized {
		return winners
	}
	for _, id := range s.orderedTeamIDs() {
		c, ok := r.TeamCircles[id]
		if !ok || c.Normalized {
			continue
		}
		if isHit(c, r.Target, r.Radius) {
			winners = append(winners, id)
		}
	}
	return winners
}
