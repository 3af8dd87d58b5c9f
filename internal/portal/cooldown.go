package portal

// Cooldowns holds the remaining suppression time per source portal id.
// Values never go negative.
type Cooldowns struct {
	remaining map[int]float64
}

func NewCooldowns() *Cooldowns {
	return &Cooldowns{remaining: make(map[int]float64)}
}

// Set starts a suppression window of seconds for id.
func (c *Cooldowns) Set(id int, seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	c.remaining[id] = seconds
}

// Get returns the remaining time for id; unknown ids have none.
func (c *Cooldowns) Get(id int) float64 { return c.remaining[id] }

// Tick decrements every entry by dt, clamping at zero.
func (c *Cooldowns) Tick(dt float64) {
	if dt <= 0 {
		return
	}
	for id, v := range c.remaining {
		v -= dt
		if v < 0 {
			v = 0
		}
		c.remaining[id] = v
	}
}

func (c *Cooldowns) Forget(id int) { delete(c.remaining, id) }

func (c *Cooldowns) Reset() { clear(c.remaining) }

func (c *Cooldowns) Len() int { return len(c.remaining) }
