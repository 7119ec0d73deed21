package models

import "time"

type Token struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	Decimals   int       `json:"decimals"`
	Variations []string  `json:"variations"`
	Chain      string    `json:"chain"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// TokenImport is one entry of a token list file.
type TokenImport struct {
	Symbol     string   `json:"symbol"`
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	Decimals   *int     `json:"decimals"`
	Variations []string `json:"variations"`
	Chain      string   `json:"chain"`
}
