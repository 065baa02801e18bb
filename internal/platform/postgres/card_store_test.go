package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/flashquiz/flashquiz-api/internal/store"
)

func TestBuildCardFilter(t *testing.T) {
	t.Parallel()

	t.Run("empty query produces no clause", func(t *testing.T) {
		t.Parallel()
		where, args := buildCardFilter(store.CardQuery{})
		assert.Equal(t, "", where)
		assert.Empty(t, args)
	})

	t.Run("public only takes no argument", func(t *testing.T) {
		t.Parallel()
		where, args := buildCardFilter(store.CardQuery{PublicOnly: true})
		assert.Equal(t, " WHERE is_public = TRUE", where)
		assert.Empty(t, args)
	})

	t.Run("equality filters use sequential placeholders", func(t *testing.T) {
		t.Parallel()
		where, args := buildCardFilter(store.CardQuery{
			PublicOnly: true,
			Topic:      "math",
			Category:   "algebra",
			Difficulty: "easy",
		})
		assert.Equal(t,
			" WHERE is_public = TRUE AND topic = $1 AND category = $2 AND difficulty = $3",
			where)
		assert.Equal(t, []any{"math", "algebra", "easy"}, args)
	})

	t.Run("owner filter includes private cards", func(t *testing.T) {
		t.Parallel()
		ownerID := uuid.New()
		where, args := buildCardFilter(store.CardQuery{OwnerID: &ownerID})
		assert.Equal(t, " WHERE created_by = $1", where)
		assert.Equal(t, []any{ownerID}, args)
	})

	t.Run("keyword matches text fields and tags", func(t *testing.T) {
		t.Parallel()
		where, args := buildCardFilter(store.CardQuery{Keyword: "Plants"})
		assert.Equal(t,
			" WHERE (question ILIKE $1 OR answer ILIKE $2 OR topic ILIKE $3 OR jsonb_exists(tags, $4))",
			where)
		assert.Equal(t, []any{"%Plants%", "%Plants%", "%Plants%", "plants"}, args)
	})

	t.Run("keyword placeholders follow equality filters", func(t *testing.T) {
		t.Parallel()
		where, args := buildCardFilter(store.CardQuery{
			PublicOnly: true,
			Topic:      "biology",
			Keyword:    "cell",
		})
		assert.Equal(t,
			" WHERE is_public = TRUE AND topic = $1 AND "+
				"(question ILIKE $2 OR answer ILIKE $3 OR topic ILIKE $4 OR jsonb_exists(tags, $5))",
			where)
		assert.Len(t, args, 5)
	})

	t.Run("keyword wildcards are escaped", func(t *testing.T) {
		t.Parallel()
		_, args := buildCardFilter(store.CardQuery{Keyword: "50%_off"})
		assert.Equal(t, `%50\%\_off%`, args[0])
	})
}

func TestOrderClause(t *testing.T) {
	t.Parallel()
	cases := []struct {
		sortKey string
		want    string
	}{
		{store.SortNewest, " ORDER BY created_at DESC, id"},
		{store.SortOldest, " ORDER BY created_at ASC, id"},
		{store.SortViews, " ORDER BY view_count DESC, created_at DESC, id"},
		{"", " ORDER BY created_at DESC, id"},
		{"bogus", " ORDER BY created_at DESC, id"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, orderClause(tc.sortKey), "sortKey=%q", tc.sortKey)
	}
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"100%", `100\%`},
		{"snake_case", `snake\_case`},
		{`back\slash`, `back\\slash`},
		{`%_\`, `\%\_\\`},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, escapeLike(tc.in), "in=%q", tc.in)
	}
}

func TestUUIDOrNil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, uuidOrNil(nil))

	id := uuid.New()
	assert.Equal(t, id, uuidOrNil(&id))
}
