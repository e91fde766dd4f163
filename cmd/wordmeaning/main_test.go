package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkclainer/wordmeaning/pkg/meaning"
)

const entriesJSON = `{
	"hello": {
		"meanings": [{"part_of_speech": "interjection", "definitions": ["A greeting."]}],
		"source": ["https://en.wiktionary.org/wiki/hello"]
	},
	"string": {
		"meanings": [{"part_of_speech": "noun", "definitions": ["A long, thin and flexible structure."]}],
		"source": ["https://en.wiktionary.org/wiki/string"]
	}
}`

func execute(t *testing.T, args ...string) (string, error) {
	command := newRootCommand()
	out := new(bytes.Buffer)
	command.SetOut(out)
	command.SetErr(out)
	command.SetArgs(append([]string{"--env-file", ""}, args...))
	err := command.Execute()
	return out.String(), err
}

func TestLocalDictionaryCommands(t *testing.T) {
	t.Setenv("WORDMEANING_ZAP_CONFIG", `{"level":"error","encoding":"console","outputPaths":["stderr"]}`)
	t.Setenv("WORDMEANING_LOCAL_PATH", filepath.Join(t.TempDir(), "dictionary"))
	entriesPath := filepath.Join(t.TempDir(), "entries.json")
	require.NoError(t, os.WriteFile(entriesPath, []byte(entriesJSON), 0o600))

	out, err := execute(t, "import", entriesPath)
	require.NoError(t, err)
	assert.Equal(t, "imported 2 entries\n", out)

	out, err = execute(t, "words")
	require.NoError(t, err)
	assert.Equal(t, "hello\nstring\n", out)

	out, err = execute(t, "--source", "local", "lookup", "string", "unknown")
	require.NoError(t, err)
	var response meaning.Response
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	require.Len(t, response, 2)
	assert.Equal(t, "noun", response[0].Meanings[0].PartOfSpeech)
	assert.Equal(t, []string{"https://en.wiktionary.org/wiki/string"}, response[0].Source)
	assert.Empty(t, response[1].Meanings)
	assert.Empty(t, response[1].Source)
}

func TestCommandErrors(t *testing.T) {
	t.Setenv("WORDMEANING_ZAP_CONFIG", `{"level":"error","encoding":"console","outputPaths":["stderr"]}`)
	t.Setenv("WORDMEANING_LOCAL_PATH", filepath.Join(t.TempDir(), "dictionary"))
	invalidPath := filepath.Join(t.TempDir(), "invalid.json")
	require.NoError(t, os.WriteFile(invalidPath,
		[]byte(`{"word": {"meanings": [{"part_of_speech": "", "definitions": []}]}}`), 0o600))

	testCases := map[string][]string{
		"lookup without words": {"lookup"},
		"lookup invalid word":  {"--source", "local", "lookup", "h3llo"},
		"parse without input":  {"parse"},
		"parse both inputs":    {"parse", "-w", "hello", "-f", "hello.html"},
		"parse missing file":   {"parse", "-f", "/nonexistent/hello.html"},
		"import missing file":  {"import", "/nonexistent/entries.json"},
		"import invalid entry": {"import", invalidPath},
		"unknown source":       {"--source", "ftp", "words"},
	}
	for name := range testCases {
		args := testCases[name]
		t.Run(name, func(t *testing.T) {
			_, err := execute(t, args...)
			assert.Error(t, err)
		})
	}
}

func TestParseLocalFile(t *testing.T) {
	t.Setenv("WORDMEANING_ZAP_CONFIG", `{"level":"error","encoding":"console","outputPaths":["stderr"]}`)
	out, err := execute(t, "parse", "-f", filepath.Join("..", "..", "pkg", "parser", "testdata", "hello.html"))
	require.NoError(t, err)
	var meanings []meaning.Meaning
	require.NoError(t, json.Unmarshal([]byte(out), &meanings))
	assert.NotEmpty(t, meanings)
}

func TestParseDownloadedPage(t *testing.T) {
	page, err := os.ReadFile(filepath.Join("..", "..", "pkg", "parser", "testdata", "hello.html"))
	require.NoError(t, err)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wiki/hello", r.URL.Path)
		_, _ = w.Write(page)
	}))
	defer server.Close()
	t.Setenv("WORDMEANING_ZAP_CONFIG", `{"level":"error","encoding":"console","outputPaths":["stderr"]}`)
	t.Setenv("WORDMEANING_REMOTE_HOST", server.Listener.Addr().String())
	t.Setenv("WORDMEANING_REMOTE_PROTOCOL", "http")
	savePath := filepath.Join(t.TempDir(), "hello.html")

	out, err := execute(t, "parse", "-w", "hello", "-s", savePath)
	require.NoError(t, err)
	var meanings []meaning.Meaning
	require.NoError(t, json.Unmarshal([]byte(out), &meanings))
	assert.NotEmpty(t, meanings)
	saved, err := os.ReadFile(savePath)
	require.NoError(t, err)
	assert.Equal(t, page, saved)
}
