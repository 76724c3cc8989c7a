package game

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempFileStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "state.json"))
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := tempFileStore(t)

	s1 := New(fs, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s1.ToggleListen(ctx, 100)
	s1.ToggleListen(ctx, 200)
	s1.AddAdmin(ctx, "alice")
	require.NotEmpty(t, s1.NewChallenge(ctx, postMsg(user(7, "Greta"), "red, car; blue")))
	s1.highscore[7] = Score{Name: "Greta", Count: 2}

	s1.mu.Lock()
	s1.persistLocked(ctx)
	want := s1.snapshotLocked()
	s1.mu.Unlock()

	s2 := New(fs, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s2.Load(ctx)

	s2.mu.Lock()
	got := s2.snapshotLocked()
	s2.mu.Unlock()

	require.Equal(t, want, got, "save then load must reproduce the aggregate")
}

func TestFileStore_LoadAbsentFile(t *testing.T) {
	fs := tempFileStore(t)

	_, ok, err := fs.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_LoadMalformed(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", `{"_path": `},
		{"missing field", `{"_path":"x","_challenge":null,"_challenge_from":null,"_listen_to":[],"_highscore":{}}`},
		{"bad highscore tuple", `{"_path":"x","_challenge":null,"_challenge_from":null,"_listen_to":[],"_admins":[],"_highscore":{"7":["Greta"]}}`},
		{"bad highscore key", `{"_path":"x","_challenge":null,"_challenge_from":null,"_listen_to":[],"_admins":[],"_highscore":{"seven":["Greta",1]}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fs := tempFileStore(t)
			require.NoError(t, os.WriteFile(fs.path, []byte(tc.body), 0o644))

			_, _, err := fs.Load(context.Background())
			require.Error(t, err)
		})
	}
}

func TestFileStore_LoadToleratesBOM(t *testing.T) {
	fs := tempFileStore(t)
	body := "\xef\xbb\xbf" + `{
    "_path": "state.json",
    "_challenge": ["red, car", "blue"],
    "_challenge_from": 7,
    "_listen_to": [100],
    "_admins": ["@alice"],
    "_highscore": {"7": ["Greta", 2]}
}`
	require.NoError(t, os.WriteFile(fs.path, []byte(body), 0o644))

	snap, ok, err := fs.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, Challenge{{"red", "car"}, {"blue"}}, snap.Challenge)
	require.NotNil(t, snap.Owner)
	assert.Equal(t, int64(7), *snap.Owner)
	assert.Equal(t, []int64{100}, snap.ListenTo)
	assert.Equal(t, []string{"@alice"}, snap.Admins)
	assert.Equal(t, map[int64]Score{7: {Name: "Greta", Count: 2}}, snap.Highscore)
}

func TestLoad_FallsBackToDefaultsOnCorruptStorage(t *testing.T) {
	fs := tempFileStore(t)
	require.NoError(t, os.WriteFile(fs.path, []byte("not even json"), 0o644))

	s := New(fs, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Load(context.Background())

	assert.Nil(t, s.challenge)
	assert.Nil(t, s.owner)
	assert.Empty(t, s.listenTo)
	assert.Empty(t, s.admins)
	assert.Empty(t, s.highscore)
}

func TestEncodeSnapshot_WireFormat(t *testing.T) {
	owner := int64(7)
	snap := Snapshot{
		Challenge: Challenge{{"red", "car"}, {"blue"}},
		Owner:     &owner,
		ListenTo:  []int64{100},
		Admins:    []string{"@alice"},
		Highscore: map[int64]Score{7: {Name: "Greta", Count: 2}},
	}

	b, err := encodeSnapshot(snap, "state.json")
	require.NoError(t, err)

	body := string(b)
	assert.Contains(t, body, `"_path": "state.json"`)
	assert.Contains(t, body, `"red, car"`)
	assert.Contains(t, body, `"_challenge_from": 7`)
	assert.Contains(t, body, `"Greta"`)

	got, err := decodeSnapshot(b)
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestEncodeSnapshot_InactiveChallengeIsNull(t *testing.T) {
	b, err := encodeSnapshot(Snapshot{}, "state.json")
	require.NoError(t, err)
	assert.Contains(t, string(b), `"_challenge": null`)

	got, err := decodeSnapshot(b)
	require.NoError(t, err)
	assert.Nil(t, got.Challenge)
}

func TestDecodeSnapshot_EmptyActiveChallengeSurvives(t *testing.T) {
	b, err := encodeSnapshot(Snapshot{Challenge: Challenge{}}, "state.json")
	require.NoError(t, err)

	got, err := decodeSnapshot(b)
	require.NoError(t, err)
	require.NotNil(t, got.Challenge, "an armed challenge with no groups must stay armed")
	assert.Empty(t, got.Challenge)
}
