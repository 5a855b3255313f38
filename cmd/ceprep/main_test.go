package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holydocs/ceprep"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return stdout.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	return path
}

func TestConvertCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFile(t, dir, "in.json", `{
		"asyncapi":"2.6.0",
		"channels":{"a/b":{}},
		"components":{
			"schemas":{"S":{"type":"object","properties":{"x":{"type":"string"}}}},
			"messageTraits":{"CloudEventContext":{"headers":{"properties":{"id":{"type":"string"}},"required":["id"]}}}
		}
	}`)
	output := filepath.Join(dir, "nested", "out.json")

	stdout, err := execute(t, "convert", "--in", input, "--out", output, "--namespace", "foo", "--changelog", "--silent")
	require.NoError(t, err)
	assert.Contains(t, stdout, "• changed schema: schema 'S' was changed")
	assert.Contains(t, stdout, "• added channel: channel 'foo/a/b' was added")

	content, err := os.ReadFile(output)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(content), "{\n  \"asyncapi\": \"2.6.0\",\n  \"channels\": {\n"))
	assert.JSONEq(t, `{
		"asyncapi":"2.6.0",
		"channels":{"foo/a/b":{}},
		"components":{
			"schemas":{"S":{
				"type":"object",
				"properties":{"id":{"type":"string"},"data":{"type":"object","properties":{"x":{"type":"string"}}}},
				"required":["id","data"]
			}},
			"messageTraits":{"CloudEventContext":{"headers":{"properties":{"id":{"type":"string"}},"required":["id"]}}}
		}
	}`, string(content))
}

func TestConvertCommandErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := execute(t, "convert", "--input", filepath.Join(dir, "missing.json"), "--output", filepath.Join(dir, "out.json"), "--silent")
	assert.ErrorContains(t, err, "file not found")

	yamlInput := writeFile(t, dir, "in.yaml", "asyncapi: 2.0.0\n")
	_, err = execute(t, "convert", "--input", yamlInput, "--output", filepath.Join(dir, "out.json"), "--silent")
	var formatErr *ceprep.UnsupportedFormatError
	assert.ErrorAs(t, err, &formatErr)

	noTraits := writeFile(t, dir, "no-traits.json", `{"components":{"schemas":{}}}`)
	out := filepath.Join(dir, "never.json")
	_, err = execute(t, "convert", "--input", noTraits, "--output", out, "--silent")
	var notFound *ceprep.ComponentNotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.NoFileExists(t, out)

	_, err = execute(t, "convert", "--input", noTraits, "--output", out, "--ignore-schema", "(", "--silent")
	assert.ErrorContains(t, err, "error compiling ignore-schema pattern")
}

func TestForImportCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFile(t, dir, "in.json", `{
		"asyncapi":"2.0.0",
		"info":{"title":"T","version":"1"},
		"components":{
			"schemas":{"S":{"type":"object","properties":{
				"type":{"const":"t.created"},
				"data":{"type":"object","properties":{"n":{"type":"integer"}}}
			}}},
			"messages":{"M":{"payload":{"$ref":"#/components/schemas/S"}}}
		}
	}`)
	output := filepath.Join(dir, "out.json")

	_, err := execute(t, "for-import", "--in", input, "--out", output, "--desc", "Events", "--silent")
	require.NoError(t, err)

	content, err := os.ReadFile(output)
	require.NoError(t, err)

	assert.NotContains(t, string(content), "\n")
	assert.Contains(t, string(content), `"S":{"type":"object","properties":{"n":{"type":"integer","format":"int32"}},"required":[]}`)
	assert.Contains(t, string(content), `"info":{"title":"T","version":"1","description":"Events"}`)
	assert.Contains(t, string(content), `"name":"t.created"`)
}

func TestForImportCommandRequiresDescription(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFile(t, dir, "in.json", `{"asyncapi":"2.0.0"}`)

	_, err := execute(t, "for-import", "--input", input, "--output", filepath.Join(dir, "out.json"), "--silent")
	assert.ErrorContains(t, err, "description must be given")
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	stdout, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "ceprep dev\n"))
}

func TestRequiredFlags(t *testing.T) {
	t.Parallel()

	root := newRootCommand()

	tests := []struct {
		command string
		flags   []string
	}{
		{command: "convert", flags: []string{"input", "output"}},
		{command: "for-import", flags: []string{"input", "output"}},
		{command: "inspect", flags: []string{"asyncapi-files"}},
	}

	for _, tt := range tests {
		cmd, _, err := root.Find([]string{tt.command})
		require.NoError(t, err)
		require.Equal(t, tt.command, cmd.Name())

		for _, name := range tt.flags {
			flag := cmd.Flags().Lookup(name)
			require.NotNil(t, flag, "%s --%s", tt.command, name)
			assert.Equal(t, []string{"true"}, flag.Annotations[cobra.BashCompOneRequiredFlag], "%s --%s", tt.command, name)
		}
	}
}
