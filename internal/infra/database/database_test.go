package database

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/nexus-concierge/internal/entity"
)

// TestEscapeLike - Curingas do usuário não viram curingas do LIKE
func TestEscapeLike(t *testing.T) {
	cases := map[string]struct {
		in   string
		want string
	}{
		"vazio":           {"", ""},
		"sem curinga":     {"João", "João"},
		"percentual":      {"50% off", `50\% off`},
		"sublinhado":      {"a_b", `a\_b`},
		"barra":           {`c:\dir`, `c:\\dir`},
		"barra e curinga": {`\%`, `\\\%`},
		"repetidos":       {"%%__", `\%\%\_\_`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, escapeLike(tc.in))
		})
	}
}

// TestTranslateError - Códigos SQLSTATE viram sentinelas
func TestTranslateError(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505"}
	assert.ErrorIs(t, translateError(dup), ErrDuplicate)
	assert.ErrorIs(t, translateError(dup), dup)

	assert.ErrorIs(t, translateError(&pgconn.PgError{Code: "23503"}), ErrUnknownOwner)
	assert.ErrorIs(t, translateError(&pgconn.PgError{Code: "23514"}), ErrConstraint)

	other := errors.New("conexão caiu")
	assert.Equal(t, other, translateError(other))
}

// TestSourcesOf - Status de origem seguem a máquina de estados
func TestSourcesOf(t *testing.T) {
	cases := []struct {
		to   entity.PostStatus
		want []string
	}{
		{entity.PostStatusScheduling, []string{"draft", "failed"}},
		{entity.PostStatusScheduled, []string{"draft", "failed", "scheduling"}},
		{entity.PostStatusPublished, []string{"draft", "failed", "scheduling"}},
		{entity.PostStatusFailed, []string{"draft", "scheduling", "scheduled", "failed"}},
		{entity.PostStatusDraft, nil},
	}
	for _, tc := range cases {
		t.Run(string(tc.to), func(t *testing.T) {
			got := sourcesOf(tc.to)
			assert.ElementsMatch(t, tc.want, got)
			assert.NotContains(t, got, string(entity.PostStatusPublished))
		})
	}
}
