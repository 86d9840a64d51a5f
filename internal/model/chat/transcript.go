package chat

// Transcript holds the ordered turns of the running session.
// It only grows by Append; Replace and Reset swap the whole sequence.
type Transcript struct {
	turns []Turn
}

// NewTranscript returns a transcript seeded with a copy of turns.
func NewTranscript(turns []Turn) *Transcript {
	t := &Transcript{}
	t.Replace(turns)
	return t
}

// Append adds a turn at the end.
func (t *Transcript) Append(turn Turn) {
	t.turns = append(t.turns, turn)
}

// Replace discards the current turns in favour of a copy of turns.
func (t *Transcript) Replace(turns []Turn) {
	t.turns = append(make([]Turn, 0, len(turns)), turns...)
}

// Reset empties the transcript.
func (t *Transcript) Reset() {
	t.turns = make([]Turn, 0, 16)
}

// Len returns the number of stored turns.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// Turns returns a copy of the stored turns in append order.
func (t *Transcript) Turns() []Turn {
	copied := make([]Turn, len(t.turns))
	copy(copied, t.turns)
	return copied
}
