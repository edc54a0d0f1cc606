package session

// Cursor is an index into an ordered question list. It stays within
// [0, length-1].
type Cursor struct {
	index  int
	length int
}

// NewCursor starts at the first of length questions.
func NewCursor(length int) *Cursor {
	return &Cursor{length: length}
}

func (c *Cursor) Index() int { return c.index }

func (c *Cursor) IsFirst() bool { return c.index == 0 }

func (c *Cursor) IsLast() bool { return c.index == c.length-1 }

// Next advances one question. It returns false on the last question.
func (c *Cursor) Next() bool {
	if c.index >= c.length-1 {
		return false
	}
	c.index++
	return true
}

// Previous steps back one question. It returns false on the first question.
func (c *Cursor) Previous() bool {
	if c.index <= 0 {
		return false
	}
	c.index--
	return true
}

// JumpTo moves to index when it is in range; out-of-range targets are ignored.
func (c *Cursor) JumpTo(index int) bool {
	if index < 0 || index >= c.length {
		return false
	}
	c.index = index
	return true
}
