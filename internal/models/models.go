package models

import "time"

// ExchangeRecord is a completed exchange request
type ExchangeRecord struct {
	CreatedAt  time.Time `json:"created_at"`
	UserID     int64     `json:"user_id"`
	GiveToken  string    `json:"give_token"`
	GetToken   string    `json:"get_token"`
	GiveMethod string    `json:"give_method"`
	GetMethod  string    `json:"get_method"`
	GiveCode   string    `json:"give_code"`
	GetCode    string    `json:"get_code"`
	Location   string    `json:"location"`
	Link       string    `json:"link"`
}

// PairStat represents how often a resolved pair was requested
type PairStat struct {
	GiveCode string
	GetCode  string
	Count    int
}
