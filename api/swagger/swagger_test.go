package swagger

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

type document struct {
	BasePath string                     `json:"basePath"`
	Paths    map[string]json.RawMessage `json:"paths"`
}

func readDocument(t *testing.T) document {
	t.Helper()
	raw, err := swag.ReadDoc()
	require.NoError(t, err)
	var doc document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

func TestDocumentPathsAreRelativeToBasePath(t *testing.T) {
	doc := readDocument(t)

	assert.Equal(t, "/api", doc.BasePath)
	assert.Contains(t, doc.Paths, "/students")
	assert.Contains(t, doc.Paths, "/students/export-word")
	assert.Contains(t, doc.Paths, "/students/export-pdf")
	assert.Contains(t, doc.Paths, "/user/login")
	for path := range doc.Paths {
		assert.False(t, strings.HasPrefix(path, "/api/"), path)
	}
}

func TestDocumentFollowsConfiguredPrefix(t *testing.T) {
	previous := SwaggerInfo.BasePath
	SwaggerInfo.BasePath = "/v2"
	t.Cleanup(func() { SwaggerInfo.BasePath = previous })

	doc := readDocument(t)

	assert.Equal(t, "/v2", doc.BasePath)
	assert.Contains(t, doc.Paths, "/rooms/{id}")
}
