package tui

import (
	"io"
	"testing"

	"postprep-cli/internal/api"
	"postprep-cli/internal/app"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArticlesModel(t *testing.T) articlesModel {
	t.Helper()
	t.Setenv("POSTPREP_NO_COLOR", "1")
	cfg := app.Config{BaseURL: "http://localhost:9", TimeoutSeconds: 1, StorageDir: t.TempDir()}
	client, err := api.New(cfg, app.NewLogger(io.Discard))
	require.NoError(t, err)
	return newArticlesModel(NewTheme(), client)
}

func TestStaleListResultDiscarded(t *testing.T) {
	m := testArticlesModel(t)

	// Two fetches issued back to back; only the newest token counts.
	m, _ = m.load()
	m, _ = m.load()
	require.Equal(t, 2, m.fetchSeq)

	stale := articlesLoadedMsg{seq: 1, items: []app.LiteArticle{{ID: "old"}}}
	m, _ = m.Update(stale)
	assert.Empty(t, m.items, "stale result must not be applied")
	assert.True(t, m.loading)

	fresh := articlesLoadedMsg{seq: 2, items: []app.LiteArticle{{ID: "new", Title: "T", Status: app.StatusCompleted}}}
	m, _ = m.Update(fresh)
	require.Len(t, m.items, 1)
	assert.Equal(t, "new", m.items[0].ID)
	assert.False(t, m.loading)
}

func TestStaleDetailResultDiscarded(t *testing.T) {
	m := testArticlesModel(t)
	m.items = []app.LiteArticle{{ID: "a-1"}, {ID: "a-2"}}

	m.detailSeq = 2
	m, _ = m.Update(articleDetailMsg{seq: 1, article: app.Article{ID: "a-1"}})
	assert.Nil(t, m.detail)

	m, _ = m.Update(articleDetailMsg{seq: 2, article: app.Article{ID: "a-2"}})
	require.NotNil(t, m.detail)
	assert.Equal(t, "a-2", m.detail.ID)
}

func TestListErrorSurfacesInline(t *testing.T) {
	m := testArticlesModel(t)
	m, _ = m.load()

	m, _ = m.Update(articlesLoadedMsg{seq: 1, err: &api.StatusError{StatusCode: 500, Message: "database down"}})
	assert.Equal(t, "database down", m.errMsg)
	assert.False(t, m.loading)
}

func TestEmptyListMessage(t *testing.T) {
	m := testArticlesModel(t)
	m, _ = m.load()
	m, _ = m.Update(articlesLoadedMsg{seq: 1})

	assert.Contains(t, m.View(80, ""), "haven't processed any documents")
}

func TestDeleteTriggersReload(t *testing.T) {
	m := testArticlesModel(t)
	m, _ = m.load()
	m, _ = m.Update(articlesLoadedMsg{seq: 1, items: []app.LiteArticle{{ID: "a-1"}}})

	before := m.fetchSeq
	m, cmd := m.Update(articleDeletedMsg{id: "a-1"})
	assert.Greater(t, m.fetchSeq, before, "successful delete refetches the list")
	assert.NotNil(t, cmd)
}
