package catalog

import "github.com/onerilhan/thankatech-ledger/internal/models"

// Expected bir ledger kaydı için katalog formüllerinden beklenen değerler
type Expected struct {
	PointsAwarded       int64
	SenderPointsAwarded int64
	Split               *Split // sadece toa_token için
}

// ExpectedFor işlem tipine ve token sayısına göre beklenen puan/para alanlarını hesaplar
func (c *Catalog) ExpectedFor(txType models.TransactionType, tokens int64) Expected {
	switch txType {
	case models.TypeThankYou:
		return Expected{PointsAwarded: c.FreeThankYouPoints}
	case models.TypeToaToken:
		split := c.SplitFor(tokens)
		return Expected{
			PointsAwarded:       c.PaidRecipientPoints,
			SenderPointsAwarded: c.PaidSenderPoints,
			Split:               &split,
		}
	default:
		// satın alma ve dönüşüm puan kazandırmaz
		return Expected{}
	}
}
