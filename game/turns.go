package game

// maxRotationSteps caps how far NextWhoCanMove will walk
const maxRotationSteps = 64

// NextPlayer returns the player after current in order, wrapping around.
// It returns "" when order is empty or does not contain current.
func NextPlayer(order []string, current string) string {
	idx := indexOf(order, current)
	if idx < 0 || len(order) == 0 {
		return ""
	}
	return order[(idx+1)%len(order)]
}

// NextWhoCanMove walks the rotation starting after current and returns the first
// player the oracle accepts. current itself is the last candidate. It gives up
// after maxSteps steps (one full rotation when maxSteps <= 0) and returns false.
func NextWhoCanMove(order []string, current string, players []Player, piles Piles, oracle MoveOracle, maxSteps int) (string, bool) {
	if indexOf(order, current) < 0 {
		return "", false
	}
	if oracle == nil {
		oracle = CanMove
	}
	if maxSteps <= 0 {
		maxSteps = len(order)
	}
	if maxSteps > maxRotationSteps {
		maxSteps = maxRotationSteps
	}

	id := current
	for step := 0; step < maxSteps; step++ {
		id = NextPlayer(order, id)
		p, ok := findPlayer(players, id)
		if ok && oracle(p.Hand, piles) {
			return id, true
		}
	}
	return "", false
}

func indexOf(order []string, id string) int {
	for i, o := range order {
		if o == id {
			return i
		}
	}
	return -1
}

func findPlayer(players []Player, id string) (Player, bool) {
	for _, p := range players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}
