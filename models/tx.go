package models

// UnsignedTx is call data for the client wallet to sign and send.
type UnsignedTx struct {
	Step  string `json:"step"`
	To    string `json:"to"`
	Data  string `json:"data"`
	Value string `json:"value"`
}
