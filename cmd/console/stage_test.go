package main

import (
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/jwebster45206/novel-script/pkg/command"
	"github.com/jwebster45206/novel-script/pkg/playback"
	"github.com/jwebster45206/novel-script/pkg/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func playScript(t *testing.T, st *stage, text string) *playback.Player {
	t.Helper()
	s, err := script.Parse(text)
	require.NoError(t, err)
	p := playback.New(st, playback.WithRevealDelay(0), playback.WithLogger(testLogger()))
	require.NoError(t, p.Load(s))
	return p
}

func TestStage_LoadSprite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hero.txt"), []byte("o\n/|\\\n"), 0o644))
	st := newStage(dir, testLogger())

	h, err := st.LoadSprite("hero")
	require.NoError(t, err)
	assert.Equal(t, &sprite{name: "hero", art: "o\n/|\\"}, h)

	h, err = st.LoadSprite("villain")
	require.NoError(t, err)
	assert.Equal(t, &sprite{name: "villain"}, h)
}

func TestStage_Playback(t *testing.T) {
	st := newStage("", testLogger())
	p := playScript(t, st, `!background_sprite="room"!background_color="10,20,30"`+
		`!charaimg_sprite="b"="bob"!charaimg_pos="b"="2,0,0"`+
		`!charaimg_sprite="a"="alice"!charaimg_pos="a"="-2,0,0"!charaimg_color="a"="255,0,0,128"`+
		`!charaimg_sprite="ghost"="ghost"!charaimg_active="ghost"="false"`+
		`&A「hello」`)

	p.Tick(0)
	assert.Equal(t, "A", st.speaker)
	assert.Equal(t, "hello", st.body.String())
	assert.True(t, st.more)

	require.NotNil(t, st.background.sprite)
	assert.Equal(t, "room", st.background.sprite.name)
	assert.Equal(t, &color.RGBA{R: 10, G: 20, B: 30, A: 255}, st.background.color)

	chars := st.visibleCharacters()
	require.Len(t, chars, 2)
	assert.Equal(t, "a", chars[0].name)
	assert.Equal(t, "b", chars[1].name)
	assert.Equal(t, &color.RGBA{R: 255, A: 128}, chars[0].color)
	assert.Len(t, st.characters, 3)

	require.NoError(t, p.Advance())
	assert.True(t, st.finished)
}

func TestStage_Choices(t *testing.T) {
	st := newStage("", testLogger())
	p := playScript(t, st, `!select_text="down"="Go down"!select_pos="down"="0,-1,0"`+
		`!select_pos="up"="0,1,0"`+
		`!select_text="hidden"="Nope"!select_active="hidden"="false"`+
		`#down&D「d」#up&U「u」#hidden&H「h」`)

	assert.Equal(t, playback.StateAwaitingChoice, p.State())
	choices := st.visibleChoices()
	require.Len(t, choices, 2)
	assert.Equal(t, "up", choices[0].label())
	assert.Equal(t, "Go down", choices[1].label())

	require.NoError(t, p.SelectChoice("up"))
	assert.Empty(t, st.choices)
	assert.Equal(t, "U", st.speaker)
}

func TestStage_CharacterRemoval(t *testing.T) {
	st := newStage("", testLogger())
	p := playScript(t, st, `!charaimg_sprite="a"="alice"&A「x」&!charaimg_delete="a"&B「y」`)

	require.Len(t, st.characters, 1)
	p.Tick(0)
	require.NoError(t, p.Advance())
	assert.Empty(t, st.characters)
	assert.Equal(t, "B", st.speaker)
}

func TestStage_HandleErrors(t *testing.T) {
	st := newStage("", testLogger())

	_, err := st.SetCharacterImage("a", "not-an-entity", command.OpColor, command.Value{Kind: command.KindColor})
	assert.Error(t, err)

	assert.Error(t, st.RemoveCharacterImage("a", newEntity("a")))
}

func TestStage_Reset(t *testing.T) {
	st := newStage("", testLogger())
	playScript(t, st, `!charaimg_sprite="a"="alice"!select_text="x"="X"#x&X「x」`)

	st.reset()
	assert.Empty(t, st.characters)
	assert.Empty(t, st.choices)
	assert.Nil(t, st.background.sprite)
	assert.Equal(t, "", st.body.String())
}

func TestStage_ReloadDisposesPreviousScript(t *testing.T) {
	st := newStage("", testLogger())
	p := playScript(t, st, `!background_color="1,2,3"!charaimg_sprite="a"="alice"!select_text="x"="X"#x&X「x」`)
	require.Len(t, st.characters, 1)
	require.Len(t, st.choices, 1)

	s, err := script.Parse(`B「hello」`)
	require.NoError(t, err)
	require.NoError(t, p.Load(s))
	p.Tick(0)

	assert.Empty(t, st.characters)
	assert.Empty(t, st.choices)
	assert.Nil(t, st.background.color)
	assert.Equal(t, "B", st.speaker)
	assert.Equal(t, "hello", st.body.String())
	assert.False(t, st.finished)
}
