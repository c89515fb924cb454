package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHTMLOwnText(t *testing.T) {
	doc := `<html><head><title>Le titre</title><style>p{}</style></head>
<body><p>Un <b>gras</b> texte</p><script>var x = 1;</script><div>fin</div></body></html>`
	got, err := ParseHTML(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"Le titre", "Un texte", "gras", "fin"}, got)
}

func TestParseHTMLLenient(t *testing.T) {
	got, err := ParseHTML(strings.NewReader(`<p>ouvert <div>non fermé`))
	require.NoError(t, err)
	assert.Equal(t, []string{"ouvert", "non fermé"}, got)
}

func TestParseMissingFile(t *testing.T) {
	_, err := HTML{}.Parse(context.Background(), filepath.Join(t.TempDir(), "nope.html"))
	assert.True(t, errors.Is(err, apperrors.ErrParse))
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.html")
	require.NoError(t, os.WriteFile(path, []byte(`<h1>Bonjour</h1>`), 0o644))
	got, err := HTML{}.Parse(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bonjour"}, got)
}
