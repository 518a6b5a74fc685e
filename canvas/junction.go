package canvas

// CharacterMerger handles the merging of two characters at the same position
type CharacterMerger struct {
	mergeMap map[mergePair]rune
}

type mergePair struct {
	existing rune
	new      rune
}

// NewCharacterMerger creates a merger with standard box-drawing merge rules
func NewCharacterMerger() *CharacterMerger {
	m := &CharacterMerger{
		mergeMap: make(map[mergePair]rune),
	}
	m.initializeMergeRules()
	return m
}

// Merge combines two characters according to box-drawing rules
func (m *CharacterMerger) Merge(existing, new rune) rune {
	if existing == ' ' || existing == 0 {
		return new
	}
	if existing == new {
		return existing
	}

	// Arrows and point marks are never overwritten
	if isMark(existing) {
		return existing
	}
	if isMark(new) {
		return new
	}

	if merged, ok := m.mergeMap[mergePair{existing, new}]; ok {
		return merged
	}
	if merged, ok := m.mergeMap[mergePair{new, existing}]; ok {
		return merged
	}

	// Default: the newer stroke wins
	return new
}

func isMark(r rune) bool {
	switch r {
	case '▶', '◀', '▲', '▼', '●', '○', '◆':
		return true
	}
	return false
}

// initializeMergeRules sets up the character merge mappings
func (m *CharacterMerger) initializeMergeRules() {
	// Crossing lines
	m.mergeMap[mergePair{'─', '│'}] = '┼'

	// Corner + line = T-junction
	m.mergeMap[mergePair{'┌', '─'}] = '┬'
	m.mergeMap[mergePair{'┌', '│'}] = '├'
	m.mergeMap[mergePair{'┐', '─'}] = '┬'
	m.mergeMap[mergePair{'┐', '│'}] = '┤'
	m.mergeMap[mergePair{'└', '─'}] = '┴'
	m.mergeMap[mergePair{'└', '│'}] = '├'
	m.mergeMap[mergePair{'┘', '─'}] = '┴'
	m.mergeMap[mergePair{'┘', '│'}] = '┤'

	// T-junction + perpendicular line
	m.mergeMap[mergePair{'┬', '│'}] = '┼'
	m.mergeMap[mergePair{'┴', '│'}] = '┼'
	m.mergeMap[mergePair{'├', '─'}] = '┼'
	m.mergeMap[mergePair{'┤', '─'}] = '┼'

	// T-junction + parallel line keeps the branch
	m.mergeMap[mergePair{'┬', '─'}] = '┬'
	m.mergeMap[mergePair{'┴', '─'}] = '┴'
	m.mergeMap[mergePair{'├', '│'}] = '├'
	m.mergeMap[mergePair{'┤', '│'}] = '┤'

	// Corner + corner
	m.mergeMap[mergePair{'┌', '┘'}] = '┼'
	m.mergeMap[mergePair{'┐', '└'}] = '┼'
	m.mergeMap[mergePair{'┌', '┐'}] = '┬'
	m.mergeMap[mergePair{'└', '┘'}] = '┴'
	m.mergeMap[mergePair{'┌', '└'}] = '├'
	m.mergeMap[mergePair{'┐', '┘'}] = '┤'

	// ASCII fallbacks
	m.mergeMap[mergePair{'-', '|'}] = '+'
	m.mergeMap[mergePair{'+', '-'}] = '+'
	m.mergeMap[mergePair{'+', '|'}] = '+'
}
