package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "visitflow/pkg/domain"
	dErrors "visitflow/pkg/domain-errors"
)

const seedYAML = `
pavilions:
  - id: 6f1c1b9e-3f0c-4a8e-9a51-1d2f3c4b5a01
    name: Reception
  - id: 6f1c1b9e-3f0c-4a8e-9a51-1d2f3c4b5a02
    name: Block A
    latitude: -23.55
    longitude: -46.63
visitors:
  - id: 0b5e8d2a-7c11-4f3e-8f20-2a3b4c5d6e01
    name: Ana Souza
    document: "123.456.789-00"
routes:
  - id: 9a7b6c5d-1e2f-4a3b-8c9d-0e1f2a3b4c01
    name: Standard
    checkpoints:
      - pavilion_id: 6f1c1b9e-3f0c-4a8e-9a51-1d2f3c4b5a02
        order: 2
      - pavilion_id: 6f1c1b9e-3f0c-4a8e-9a51-1d2f3c4b5a01
        order: 1
        allow_override: true
`

func TestSeedApply(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

	seed, err := DecodeSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)

	st := NewInMemory()
	require.NoError(t, seed.Apply(ctx, st, now))

	pavilions, err := st.ListPavilions(ctx)
	require.NoError(t, err)
	require.Len(t, pavilions, 2)
	assert.Equal(t, "Block A", pavilions[0].Name)
	require.NotNil(t, pavilions[0].Latitude)
	assert.InDelta(t, -23.55, *pavilions[0].Latitude, 1e-9)

	routeID, err := id.ParseRouteID("9a7b6c5d-1e2f-4a3b-8c9d-0e1f2a3b4c01")
	require.NoError(t, err)
	route, err := st.FindRoute(ctx, routeID)
	require.NoError(t, err)
	require.Len(t, route.Checkpoints, 2)
	assert.Equal(t, 1, route.Checkpoints[0].Order)
	assert.True(t, route.Checkpoints[0].AllowOverride)

	visitorID, err := id.ParseVisitorID("0b5e8d2a-7c11-4f3e-8f20-2a3b4c5d6e01")
	require.NoError(t, err)
	visitor, err := st.FindVisitor(ctx, visitorID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", visitor.Name)
}

func TestSeedRejectsInvalidEntries(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown fields", func(t *testing.T) {
		_, err := DecodeSeed(strings.NewReader("pavilions:\n  - id: 6f1c1b9e-3f0c-4a8e-9a51-1d2f3c4b5a01\n    colour: red\n"))
		require.Error(t, err)
	})

	t.Run("missing id", func(t *testing.T) {
		seed, err := DecodeSeed(strings.NewReader("visitors:\n  - name: Nobody\n"))
		require.NoError(t, err)
		err = seed.Apply(ctx, NewInMemory(), time.Now())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "id is required")
	})

	t.Run("duplicate route order", func(t *testing.T) {
		doc := `
routes:
  - id: 9a7b6c5d-1e2f-4a3b-8c9d-0e1f2a3b4c01
    name: Broken
    checkpoints:
      - pavilion_id: 6f1c1b9e-3f0c-4a8e-9a51-1d2f3c4b5a01
        order: 1
      - pavilion_id: 6f1c1b9e-3f0c-4a8e-9a51-1d2f3c4b5a02
        order: 1
`
		seed, err := DecodeSeed(strings.NewReader(doc))
		require.NoError(t, err)
		err = seed.Apply(ctx, NewInMemory(), time.Now())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("empty document", func(t *testing.T) {
		seed, err := DecodeSeed(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, seed.Pavilions)
	})
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	st := NewInMemory()
	seed, err := LoadSeedFile(context.Background(), path, st, time.Now())
	require.NoError(t, err)
	assert.Len(t, seed.Routes, 1)

	_, err = LoadSeedFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), st, time.Now())
	require.Error(t, err)
}
