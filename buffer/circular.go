package buffer

// CircularInt is a fixed size window over the most recent ints added. It
// keeps a running sum so the window mean is O(1).
type CircularInt struct {
	buffer    []int // actual storage
	pos       int   // Current position in buffer
	sum       int   // Sum of the values currently in the window
	BufSize   int   // BufSize is the fixed number of ints maintained in memory
	Count     int   // Count is the number of ints in memory. Will always be <= BufSize
	TotalSeen int64 // TotalSeen is the total number of times Add has been called
}

// NewCircularInt creates a new circular buffer holding totalSize values. A
// size below one is raised to one.
func NewCircularInt(totalSize int) *CircularInt {
	if totalSize < 1 {
		totalSize = 1
	}

	return &CircularInt{
		buffer:  make([]int, totalSize),
		BufSize: totalSize,
	}
}

// Add appends the given int to the buffer, overwriting the oldest entry
func (c *CircularInt) Add(i int) {
	c.TotalSeen++

	if c.Count == c.BufSize {
		c.sum -= c.buffer[c.pos]
	} else {
		c.Count++
	}

	c.buffer[c.pos] = i
	c.sum += i
	c.pos = (c.pos + 1) % c.BufSize
}

// Sum of the values in the window
func (c *CircularInt) Sum() int {
	return c.sum
}

// Mean of the values in the window, 0 when empty
func (c *CircularInt) Mean() float64 {
	if c.Count < 1 {
		return 0
	}
	return float64(c.sum) / float64(c.Count)
}

// Values returns the window contents, oldest first
func (c *CircularInt) Values() []int {
	vals := make([]int, 0, c.Count)
	start := c.pos
	if c.Count < c.BufSize {
		start = 0
	}
	for i := 0; i < c.Count; i++ {
		vals = append(vals, c.buffer[(start+i)%c.BufSize])
	}
	return vals
}
