package services

import (
	"time"

	"github.com/onerilhan/thankatech-ledger/internal/models"
)

// Clock zaman kaynağı; testlerde sabitlenir
type Clock func() time.Time

// dayKey zamanın verilen bölgedeki takvim günü (YYYY-MM-DD)
func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(models.DateLayout)
}

// nextMidnight günün bittiği an; cache set'leri burada düşer
func nextMidnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}
