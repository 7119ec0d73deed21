package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"tradebot/internal/database"
	"tradebot/internal/models"
	"tradebot/internal/pkg"
)

const (
	PREFIX_TOKEN = "token"

	DEFAULT_CHAIN          = "pulsechain"
	DEFAULT_TOKEN_DECIMALS = 18
	SEARCH_TOKENS_LIMIT    = 10
)

var ErrInvalidToken = errors.New("invalid token")

var tokenRegistrySchema = tableSchema{
	name: "token_registry",
	create: `CREATE TABLE IF NOT EXISTS token_registry (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		decimals INTEGER NOT NULL DEFAULT 18,
		variations TEXT NOT NULL DEFAULT '[]',
		chain TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);`,
	indexes: []string{
		`CREATE INDEX IF NOT EXISTS idx_token_registry_symbol ON token_registry (symbol);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_token_registry_chain_address ON token_registry (chain, address);`,
	},
}

const tokenColumns = `id, symbol, name, address, decimals, variations, chain, is_active, created_at`

func tokenFromRow(ctx context.Context, row database.Row) *models.Token {
	return &models.Token{
		ID:         row.String("id"),
		Symbol:     row.String("symbol"),
		Name:       row.String("name"),
		Address:    row.String("address"),
		Decimals:   row.Int("decimals"),
		Variations: decodeColumn(ctx, row, "variations", []string{}),
		Chain:      row.String("chain"),
		IsActive:   row.Bool("is_active"),
		CreatedAt:  row.Time("created_at"),
	}
}

// AddToken registers an active token. Symbols are stored upper case and addresses
// lower case; a second token with the same chain and address is rejected by
// the database.
func AddToken(ctx context.Context, db database.Querier, token *models.Token) (*models.Token, error) {
	token.Symbol = pkg.NormalizeSymbol(token.Symbol)
	token.Address = strings.ToLower(strings.TrimSpace(token.Address))
	if token.Symbol == "" || token.Address == "" {
		return nil, fmt.Errorf("%w: symbol and address are required", ErrInvalidToken)
	}
	if token.ID == "" {
		token.ID = pkg.NewID(PREFIX_TOKEN)
	}
	if token.Chain == "" {
		token.Chain = DEFAULT_CHAIN
	}
	if token.Name == "" {
		token.Name = token.Symbol
	}
	if token.Variations == nil {
		token.Variations = []string{}
	}
	token.IsActive = true
	token.CreatedAt = now()

	variations, err := encodeJSON("variations", token.Variations)
	if err != nil {
		return nil, err
	}

	_, err = db.Insert(ctx, `INSERT INTO token_registry (`+tokenColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		token.ID, token.Symbol, token.Name, token.Address, token.Decimals, variations,
		token.Chain, boolToInt(token.IsActive), formatTime(token.CreatedAt),
	)
	if err != nil {
		return nil, err
	}
	return token, nil
}

func GetTokenBySymbol(ctx context.Context, db database.Querier, symbol, chain string) (*models.Token, error) {
	if chain == "" {
		chain = DEFAULT_CHAIN
	}
	row, err := db.QueryOne(ctx, `SELECT `+tokenColumns+` FROM token_registry
		WHERE symbol = $1 AND chain = $2 AND is_active = 1
		ORDER BY created_at ASC LIMIT 1`, pkg.NormalizeSymbol(symbol), chain)
	if err != nil || row == nil {
		return nil, err
	}
	return tokenFromRow(ctx, row), nil
}

func GetTokenByAddress(ctx context.Context, db database.Querier, address, chain string) (*models.Token, error) {
	if chain == "" {
		chain = DEFAULT_CHAIN
	}
	row, err := db.QueryOne(ctx, `SELECT `+tokenColumns+` FROM token_registry
		WHERE address = $1 AND chain = $2`, strings.ToLower(strings.TrimSpace(address)), chain)
	if err != nil || row == nil {
		return nil, err
	}
	return tokenFromRow(ctx, row), nil
}

// ListActiveTokens lists active tokens of chain, or of every chain when
// chain is empty.
func ListActiveTokens(ctx context.Context, db database.Querier, chain string) ([]*models.Token, error) {
	if chain == "" {
		return queryTokens(ctx, db, `SELECT `+tokenColumns+` FROM token_registry
			WHERE is_active = 1 ORDER BY symbol ASC, id ASC`)
	}
	return queryTokens(ctx, db, `SELECT `+tokenColumns+` FROM token_registry
		WHERE is_active = 1 AND chain = $1 ORDER BY symbol ASC, id ASC`, chain)
}

func queryTokens(ctx context.Context, db database.Querier, query string, params ...any) ([]*models.Token, error) {
	result, err := db.Query(ctx, query, params...)
	if err != nil {
		return nil, err
	}

	tokens := make([]*models.Token, 0, result.RowCount)
	for _, row := range result.Rows {
		tokens = append(tokens, tokenFromRow(ctx, row))
	}
	return tokens, nil
}

const (
	rankExact = iota
	rankPrefix
	rankSubstring
	rankNone
)

func searchRank(token *models.Token, q string) int {
	symbol := strings.ToLower(token.Symbol)
	switch {
	case symbol == q:
		return rankExact
	case strings.HasPrefix(symbol, q):
		return rankPrefix
	case strings.Contains(symbol, q), strings.Contains(strings.ToLower(token.Name), q):
		return rankSubstring
	}
	for _, variation := range token.Variations {
		if strings.Contains(strings.ToLower(variation), q) {
			return rankSubstring
		}
	}
	return rankNone
}

// SearchTokens matches active tokens against query. Exact symbol matches
// come first, then symbol prefixes, then substrings of symbol, name or any
// variation. At most SEARCH_TOKENS_LIMIT tokens are returned.
func SearchTokens(ctx context.Context, db database.Querier, query string) ([]*models.Token, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []*models.Token{}, nil
	}

	pattern := "%" + escapeLike(q) + "%"
	candidates, err := queryTokens(ctx, db, `SELECT `+tokenColumns+` FROM token_registry
		WHERE is_active = 1 AND (
			LOWER(symbol) LIKE $1 ESCAPE '\'
			OR LOWER(name) LIKE $1 ESCAPE '\'
			OR LOWER(variations) LIKE $1 ESCAPE '\'
		)`, pattern)
	if err != nil {
		return nil, err
	}

	type ranked struct {
		token *models.Token
		rank  int
	}
	matches := make([]ranked, 0, len(candidates))
	for _, token := range candidates {
		if rank := searchRank(token, q); rank != rankNone {
			matches = append(matches, ranked{token, rank})
		}
	}

	slices.SortStableFunc(matches, func(a, b ranked) int {
		if a.rank != b.rank {
			return a.rank - b.rank
		}
		return strings.Compare(a.token.Symbol, b.token.Symbol)
	})

	tokens := make([]*models.Token, 0, min(len(matches), SEARCH_TOKENS_LIMIT))
	for _, m := range matches {
		if len(tokens) == SEARCH_TOKENS_LIMIT {
			break
		}
		tokens = append(tokens, m.token)
	}
	return tokens, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ImportTokensFromJSON loads a JSON array of token records. Each record is
// inserted on its own: a malformed or duplicate record is logged and
// skipped. It returns how many records were stored.
func ImportTokensFromJSON(ctx context.Context, db database.Querier, data []byte) (int, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, &database.SerializationError{Column: "token_registry", Err: err}
	}

	imported := 0
	for i, raw := range records {
		token, err := tokenFromImport(raw)
		if err == nil {
			_, err = AddToken(ctx, db, token)
		}
		if err != nil {
			logx.WithContext(ctx).Errorw("skip token record",
				logx.Field("index", i),
				logx.Field("error", err.Error()),
			)
			continue
		}
		imported++
	}

	logx.WithContext(ctx).Infow("tokens imported",
		logx.Field("total", len(records)),
		logx.Field("imported", imported),
	)
	return imported, nil
}

func tokenFromImport(raw json.RawMessage) (*models.Token, error) {
	var record models.TokenImport
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if strings.TrimSpace(record.Symbol) == "" || strings.TrimSpace(record.Address) == "" {
		return nil, fmt.Errorf("%w: symbol and address are required", ErrInvalidToken)
	}

	decimals := DEFAULT_TOKEN_DECIMALS
	if record.Decimals != nil {
		decimals = *record.Decimals
	}
	return &models.Token{
		Symbol:     record.Symbol,
		Name:       record.Name,
		Address:    record.Address,
		Decimals:   decimals,
		Variations: record.Variations,
		Chain:      record.Chain,
	}, nil
}

func DeactivateToken(ctx context.Context, db database.Querier, id string) error {
	changes, err := db.Update(ctx, `UPDATE token_registry SET is_active = 0 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if changes == 0 {
		return notFound("token", id)
	}
	return nil
}
