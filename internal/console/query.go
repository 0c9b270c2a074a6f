package console

import (
	"fmt"

	"github.com/Zytronium/atlas-airbnb-clone/internal/sqlite"
)

// queryIndex returns the SQLite index refreshed from the registry, opening
// it on first use.
func (c *Console) queryIndex() (*sqlite.Index, bool) {
	if c.index == nil {
		ix, err := sqlite.Open()
		if err != nil {
			c.queryFailed(err)
			return nil, false
		}
		c.index = ix
	}
	if err := c.index.Rebuild(c.reg.All().Records("")); err != nil {
		c.queryFailed(err)
		return nil, false
	}
	return c.index, true
}

func (c *Console) queryFailed(err error) {
	c.logger.Warn("query failed", "error", err)
	c.println(fmt.Sprintf("** query failed: %v **", err))
}
