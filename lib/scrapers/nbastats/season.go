package nbastats

import (
	"fmt"
	"time"
)

// CurrentSeason returns the season label covering now, in the API's
// "2025-26" form. An NBA season starts in October; before then the
// previous season is still the current one.
func CurrentSeason(now time.Time) string {
	year := now.Year()
	if now.Month() < time.October {
		year--
	}
	return fmt.Sprintf("%d-%02d", year, (year+1)%100)
}
