package quotes

import (
	"fmt"
	"time"
)

// Number derives the display identifier customers quote back to the shop:
// the creation date as DDMMYY, a dash, then the store-assigned id.
func Number(createdAt time.Time, id uint) string {
	if id == 0 {
		return ""
	}
	return fmt.Sprintf("%02d%02d%02d-%d", createdAt.Day(), int(createdAt.Month()), createdAt.Year()%100, id)
}
