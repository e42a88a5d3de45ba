package fails

import (
	"errors"
	"testing"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tululu/internal/types"
)

func TestSaveQuery(t *testing.T) {
	runId := uuid.MustParse("0b6c4c8e-58a4-4b8b-9d8a-31f0c5a7b7a1")
	item := types.MakeFailedPage(701, "https://tululu.org/l55/701/")

	sql, _, err := saveQuery(goqu.Dialect("postgres"), runId, time.Now(), item, errors.New("it's gone"))
	require.NoError(t, err)

	assert.Contains(t, sql, `INSERT INTO "fail"`)
	assert.Contains(t, sql, `'0b6c4c8e-58a4-4b8b-9d8a-31f0c5a7b7a1'`)
	assert.Contains(t, sql, `'catalog_page'`)
	assert.Contains(t, sql, `'https://tululu.org/l55/701/'`)
	assert.Contains(t, sql, `'it''s gone'`)
	assert.Contains(t, sql, "701")
}
