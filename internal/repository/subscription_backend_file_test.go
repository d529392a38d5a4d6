package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"hybe/bookinghub/internal/model"
)

const testRoster = `# Subscription IDs

## Premium Members

- ` + "`HYBABC1234567`" + ` - Kim Taehyung

## Elite Members

- ` + "`HYBDEF9876543`" + ` - Park Jimin
- ` + "`hybjkl7777777`" + ` - Kim Namjoon

## Standard Members

- ` + "`B07200EF6667`" + ` - Radhika Verma
`

func writeRoster(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "SUBSCRIPTION_IDS.md")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestFileBackendLookup(t *testing.T) {
	backend := NewFileSubscriptionBackend(writeRoster(t, testRoster))

	sub, err := backend.Lookup(context.Background(), "HYBDEF9876543")
	require.NoError(t, err)
	require.NotNil(t, sub)
	require.Equal(t, "Park Jimin", sub.UserName)
	require.Equal(t, model.TierElite, sub.Type)
	require.True(t, sub.IsActive)
	require.NotNil(t, sub.ExpiresAt, "elite memberships carry an expiry")
}

func TestFileBackendUppercasesIDs(t *testing.T) {
	backend := NewFileSubscriptionBackend(writeRoster(t, testRoster))

	sub, err := backend.Lookup(context.Background(), "HYBJKL7777777")
	require.NoError(t, err)
	require.NotNil(t, sub)
	require.Equal(t, "Kim Namjoon", sub.UserName)
}

func TestFileBackendStandardNeverExpires(t *testing.T) {
	backend := NewFileSubscriptionBackend(writeRoster(t, testRoster))

	sub, err := backend.Lookup(context.Background(), "B07200EF6667")
	require.NoError(t, err)
	require.NotNil(t, sub)
	require.Equal(t, model.TierStandard, sub.Type)
	require.Nil(t, sub.ExpiresAt)
}

func TestFileBackendUnknownID(t *testing.T) {
	backend := NewFileSubscriptionBackend(writeRoster(t, testRoster))

	sub, err := backend.Lookup(context.Background(), "BOGUS0000000")
	require.NoError(t, err)
	require.Nil(t, sub)
}

func TestFileBackendMissingFileIsUnavailable(t *testing.T) {
	backend := NewFileSubscriptionBackend(filepath.Join(t.TempDir(), "missing.md"))

	_, err := backend.Lookup(context.Background(), "HYBDEF9876543")
	require.ErrorIs(t, err, ErrBackendUnavailable)
	require.Error(t, backend.Ping(context.Background()))
}

func TestFileBackendTypeCounts(t *testing.T) {
	backend := NewFileSubscriptionBackend(writeRoster(t, testRoster))

	counts, err := backend.TypeCounts(context.Background())
	require.NoError(t, err)

	byTier := map[string]int64{}
	for _, c := range counts {
		byTier[c.SubscriptionType] = c.Count
	}
	require.Equal(t, int64(1), byTier["premium"])
	require.Equal(t, int64(2), byTier["elite"])
	require.Equal(t, int64(1), byTier["standard"])
}

func TestFileBackendRecordUsageInMemory(t *testing.T) {
	backend := NewFileSubscriptionBackend(writeRoster(t, testRoster))
	ctx := context.Background()

	require.NoError(t, backend.RecordUsage(ctx, "HYBDEF9876543"))
	require.NoError(t, backend.RecordUsage(ctx, "HYBDEF9876543"))

	sub, err := backend.Lookup(ctx, "HYBDEF9876543")
	require.NoError(t, err)
	require.Equal(t, 2, sub.UsageCount)
}
