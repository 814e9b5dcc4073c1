package littlesms

import "github.com/shopspring/decimal"

// BalanceResult is the typed form of a balance response.
type BalanceResult struct {
	Status  string          `json:"status"`
	Balance decimal.Decimal `json:"balance"`
}

// SendResult is the typed form of a send response.
//
// Sample:
//
//	{"count":1,"status":"success","recipients":["7xxxxxxxxxx"],"price":0.5,
//	 "parts":1,"test":0,"balance":0.5,"messages_id":["236234623"]}
type SendResult struct {
	Status     string          `json:"status"`
	Count      int             `json:"count"`
	Recipients []string        `json:"recipients"`
	Price      decimal.Decimal `json:"price"`
	Parts      int             `json:"parts"`
	Test       int             `json:"test"`
	Balance    decimal.Decimal `json:"balance"`
	MessageIDs []string        `json:"messages_id"`
}

// PriceResult is the typed form of a price response.
type PriceResult struct {
	Status     string          `json:"status"`
	Count      int             `json:"count"`
	Recipients []string        `json:"recipients"`
	Price      decimal.Decimal `json:"price"`
	Parts      int             `json:"parts"`
}
