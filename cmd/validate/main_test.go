package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jwebster45206/novel-script/pkg/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		text     string
		wantErr  bool
		parseErr bool
		pages    int
		warnings int
	}{
		{name: "valid", file: "demo.txt", text: "#start&A「hi」&B「bye」", pages: 2},
		{name: "lint warning", file: "warn.txt", text: `!charaimg_select_pos="a"="0,0,0"&A「hi」`, pages: 2, warnings: 1},
		{name: "wrong extension", file: "demo.json", text: "A「hi」", wantErr: true},
		{name: "bad name", file: "my script.txt", text: "A「hi」", wantErr: true},
		{name: "unknown label", file: "jump.txt", text: `!jump_to="nowhere"`, wantErr: true, parseErr: true},
		{name: "empty", file: "empty.txt", text: "  ", wantErr: true, parseErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &ScriptValidator{}
			err := v.validateFile(writeScript(t, tt.file, tt.text))
			if tt.wantErr {
				require.Error(t, err)
				var pe *script.ParseError
				assert.Equal(t, tt.parseErr, errors.As(err, &pe))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.pages, v.pages)
			assert.Len(t, v.warnings, tt.warnings)
		})
	}
}

func TestValidateFile_SampleScripts(t *testing.T) {
	files, err := filepath.Glob("../../data/scripts/*.txt")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		v := &ScriptValidator{}
		assert.NoError(t, v.validateFile(f), f)
	}
}
