package appstate

import "time"

func (c *Container) SetClock(now func() time.Time) {
	c.now = now
}
