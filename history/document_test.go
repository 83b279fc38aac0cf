package history

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordmark/models"
)

func TestDocumentRoundTrip(t *testing.T) {
	favs := NewFavorites(nil, 0)
	_, err := favs.Add("kept", snap("fav"), base)
	require.NoError(t, err)

	doc := NewDocument([]models.Snapshot{snap("a"), snap("b")}, favs.List(), base)
	assert.Equal(t, DocumentVersion, doc.Version)
	assert.Equal(t, "2026-03-01T12:00:00Z", doc.ExportedAt)

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	got, err := ParseDocument(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, texts(got.History))
	require.Len(t, got.Favorites, 1)
	assert.Equal(t, "kept", got.Favorites[0].Name)
}

func TestParseDocumentRejects(t *testing.T) {
	badLayout := snap("x")
	badLayout.Layout = "diagonal"
	badLayoutJSON, _ := json.Marshal(NewDocument([]models.Snapshot{badLayout}, nil, base))

	zeroCard := snap("x")
	zeroCard.Card.Width.Value = 0
	zeroCardJSON, _ := json.Marshal(NewDocument([]models.Snapshot{zeroCard}, nil, base))

	dup := models.Favorite{FavoriteID: "f1", Text: snap("x").Text, Icon: snap("x").Icon, Card: snap("x").Card, Layout: models.LayoutLTR}
	dupJSON, _ := json.Marshal(NewDocument(nil, []models.Favorite{dup, dup}, base))

	tests := []struct {
		name string
		data string
	}{
		{"not json", "{{"},
		{"missing version", `{"history":[]}`},
		{"future version", `{"version":99,"history":[]}`},
		{"invalid layout", string(badLayoutJSON)},
		{"zero card width", string(zeroCardJSON)},
		{"favorite without id", `{"version":1,"favorites":[{"name":"x"}]}`},
		{"duplicate favorite ids", string(dupJSON)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestParseDocumentEmptyLists(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"version":1}`))
	require.NoError(t, err)
	assert.NotNil(t, doc.History)
	assert.NotNil(t, doc.Favorites)
}
