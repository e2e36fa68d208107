package command

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		domain    Domain
		op        SubOp
		expectErr error
	}{
		{name: "background sprite", target: "background_sprite", domain: DomainBackground, op: OpSprite},
		{name: "background color", target: "background_color", domain: DomainBackground, op: OpColor},
		{name: "chara pos alias", target: "charaimg_pos", domain: DomainCharaImage, op: OpPosition},
		{name: "chara rotate alias", target: "charaimg_rotate", domain: DomainCharaImage, op: OpRotation},
		{name: "chara delete", target: "charaimg_delete", domain: DomainCharaImage, op: OpDelete},
		{name: "jump", target: "jump_to", domain: DomainJump, op: OpTo},
		{name: "select text", target: "select_text", domain: DomainSelect, op: OpText},
		{name: "spaces are ignored", target: " background_ sprite ", domain: DomainBackground, op: OpSprite},
		{name: "unknown domain", target: "music_play", domain: DomainNone, expectErr: ErrUnknownDomain},
		{name: "unknown op", target: "background_blur", domain: DomainBackground, expectErr: ErrUnknownSubOp},
		{name: "background cannot delete", target: "background_delete", domain: DomainBackground, op: OpDelete, expectErr: ErrUnknownSubOp},
		{name: "chara has no text", target: "charaimg_text", domain: DomainCharaImage, op: OpText, expectErr: ErrUnknownSubOp},
		{name: "jump only has to", target: "jump_sprite", domain: DomainJump, op: OpSprite, expectErr: ErrUnknownSubOp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, op, err := Classify(tt.target)
			assert.Equal(t, tt.domain, d)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.op, op)
		})
	}
}

// A target containing several domain keywords always resolves to the
// highest-priority one: background, charaimg, jump, select.
func TestClassify_PriorityOrder(t *testing.T) {
	tests := []struct {
		target  string
		want    Domain
		wantErr bool
	}{
		{target: "select_background_color", want: DomainBackground},
		{target: "jump_charaimg_sprite", want: DomainCharaImage},
		{target: "select_jump_to", want: DomainJump},
		// select would allow text, but charaimg wins and rejects it.
		{target: "charaimg_select_text", want: DomainCharaImage, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			d, _, err := Classify(tt.target)
			assert.Equal(t, tt.want, d)
			assert.Equal(t, tt.wantErr, err != nil)
			assert.Greater(t, len(Domains(tt.target)), 1, "target should be ambiguous")
			assert.Equal(t, tt.want, Domains(tt.target)[0])
		})
	}
}

func TestParseToken(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		target string
		args   []string
	}{
		{
			name:   "background",
			raw:    `background_sprite="bg1"`,
			target: "background_sprite",
			args:   []string{`"bg1"`},
		},
		{
			name:   "canonical select",
			raw:    `select_text="opt1"="Go"`,
			target: "select_text",
			args:   []string{`"opt1"`, `"Go"`},
		},
		{
			name:   "entity first select",
			raw:    `select="opt1"_text="Go"`,
			target: "select_text",
			args:   []string{`"opt1"`, `"Go"`},
		},
		{
			name:   "trailing whitespace",
			raw:    "background_color=\"255,0,255\" ",
			target: "background_color",
			args:   []string{`"255,0,255"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := ParseToken(tt.raw)
			assert.Equal(t, tt.target, tok.Target)
			assert.Equal(t, tt.args, tok.Args)
		})
	}
}

func TestParse_Arity(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{`background_sprite="bg"`, false},
		{`background_sprite="a"="b"`, true},
		{`background_sprite`, true},
		{`charaimg_sprite="alice"="smile"`, false},
		{`charaimg_sprite="smile"`, true},
		{`charaimg_delete="alice"`, false},
		{`charaimg_delete="alice"="x"`, true},
		{`jump_to="end"`, false},
		{`jump_to="a"="b"`, true},
		{`select_text="opt1"="Go"`, false},
		{`select_delete="opt1"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, err := Parse(ParseToken(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrArity)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCommand_Label(t *testing.T) {
	cmd, err := Parse(ParseToken(`jump_to="end"`))
	require.NoError(t, err)
	label, ok, err := cmd.Label()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "end", label)

	cmd, err = Parse(ParseToken(`select_text="opt1"="Go"`))
	require.NoError(t, err)
	label, ok, err = cmd.Label()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "opt1", label)

	cmd, err = Parse(ParseToken(`select_delete="opt1"`))
	require.NoError(t, err)
	_, ok, _ = cmd.Label()
	assert.False(t, ok)

	cmd, err = Parse(ParseToken(`background_sprite="bg"`))
	require.NoError(t, err)
	_, ok, _ = cmd.Label()
	assert.False(t, ok)
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Effect
	}{
		{
			name: "background sprite",
			raw:  `background_sprite="bg1"`,
			want: SetBackground{Op: OpSprite, Value: Value{Kind: KindSprite, Text: "bg1"}},
		},
		{
			name: "three component color is opaque",
			raw:  `background_color="255,0,255"`,
			want: SetBackground{Op: OpColor, Value: Value{Kind: KindColor, Color: color.RGBA{255, 0, 255, 255}}},
		},
		{
			name: "four component color",
			raw:  `background_color="10, 20, 30, 40"`,
			want: SetBackground{Op: OpColor, Value: Value{Kind: KindColor, Color: color.RGBA{10, 20, 30, 40}}},
		},
		{
			name: "chara position",
			raw:  `charaimg_pos="alice"="-1.5,0,2"`,
			want: SetCharacterImage{Name: "alice", Op: OpPosition, Value: Value{Kind: KindVec3, Vec: Vec3{-1.5, 0, 2}}},
		},
		{
			name: "chara size",
			raw:  `charaimg_size="alice"="100,200,1"`,
			want: SetCharacterImage{Name: "alice", Op: OpSize, Value: Value{Kind: KindVec3, Vec: Vec3{100, 200, 1}}},
		},
		{
			name: "chara delete",
			raw:  `charaimg_delete="alice"`,
			want: SetCharacterImage{Name: "alice", Op: OpDelete},
		},
		{
			name: "jump",
			raw:  `jump_to="end"`,
			want: Jump{Label: "end"},
		},
		{
			name: "choice text",
			raw:  `select="opt1"_text="Go"`,
			want: RegisterChoice{Name: "opt1", Op: OpText, Value: Value{Kind: KindText, Text: "Go"}},
		},
		{
			name: "active true any case",
			raw:  `select_active="opt1"="TRUE"`,
			want: RegisterChoice{Name: "opt1", Op: OpActive, Value: Value{Kind: KindBool, Bool: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Dispatch(ParseToken(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDispatch_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"unterminated quote", `background_sprite="bg1`, ErrUnterminatedQuote},
		{"unquoted", `background_sprite=bg1`, ErrUnterminatedQuote},
		{"unterminated name", `charaimg_sprite="alice="smile"`, ErrUnterminatedQuote},
		{"non numeric color", `background_color="red,0,0"`, ErrBadNumber},
		{"color out of range", `background_color="256,0,0"`, ErrBadNumber},
		{"color too short", `background_color="1,2"`, ErrTupleLength},
		{"vector too long", `charaimg_pos="a"="1,2,3,4"`, ErrTupleLength},
		{"vector not a number", `charaimg_rotate="a"="1,x,3"`, ErrBadNumber},
		{"unknown command", `music_play="x"`, ErrUnknownDomain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Dispatch(ParseToken(tt.raw))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var de *DispatchError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.raw, de.Token)
		})
	}
}

// Only "true" in any case is true; every other value is false rather than
// an error.
func TestParseBool_Lenient(t *testing.T) {
	assert.True(t, ParseBool("true"))
	assert.True(t, ParseBool("True"))
	assert.True(t, ParseBool(" TRUE "))
	assert.False(t, ParseBool("false"))
	assert.False(t, ParseBool("yes"))
	assert.False(t, ParseBool("1"))
	assert.False(t, ParseBool(""))
}

func TestUnquote(t *testing.T) {
	s, err := Unquote(`"hello"`)
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	s, err = Unquote(` "a "quoted" b" `)
	require.NoError(t, err)
	assert.Equal(t, `a "quoted" b`, s)

	s, err = Unquote(`""`)
	require.NoError(t, err)
	assert.Equal(t, "", s)

	_, err = Unquote(`"x`)
	assert.ErrorIs(t, err, ErrUnterminatedQuote)
}
