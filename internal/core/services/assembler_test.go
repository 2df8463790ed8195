package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/extractors"
	"github.com/custodia-labs/educhat/internal/postprocessors"
	"github.com/custodia-labs/educhat/internal/postprocessors/chunker"
)

func newTestAssembler(t *testing.T, opts ...chunker.Option) *Assembler {
	t.Helper()
	c, err := chunker.New(opts...)
	require.NoError(t, err)
	return NewAssembler(extractors.NewDefaultSet(), postprocessors.NewPipeline(c))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func words(n int, word string) string {
	w := make([]string, n)
	for i := range w {
		w[i] = word
	}
	return strings.Join(w, " ")
}

func TestAssembler_ProcessFileProvenance(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "Newton's laws describe motion.")

	chunks := newTestAssembler(t).ProcessFile(context.Background(), path, "Physics")
	require.Len(t, chunks, 1)

	assert.Equal(t, "Newton's laws describe motion.", chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Position)
	assert.Equal(t, map[string]any{
		domain.MetaSource:   path,
		domain.MetaSubject:  "Physics",
		domain.MetaType:     "text",
		domain.MetaFilename: "notes.txt",
	}, chunks[0].Meta)
}

func TestAssembler_ProcessFileDefaultSubject(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.txt", "hello")

	chunks := newTestAssembler(t).ProcessFile(context.Background(), path, "")
	require.Len(t, chunks, 1)
	assert.Equal(t, domain.DefaultSubject, chunks[0].Subject())
}

func TestAssembler_ProcessFileWithTopic(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.txt", "cells")

	chunks := newTestAssembler(t).ProcessFileWithTopic(context.Background(), path, "Biology", "Cells")
	require.Len(t, chunks, 1)
	assert.Equal(t, "Cells", chunks[0].Meta[domain.MetaTopic])
}

func TestAssembler_ProcessFileChunksLongText(t *testing.T) {
	path := writeFile(t, t.TempDir(), "long.txt", words(450, "word"))

	chunks := newTestAssembler(t).ProcessFile(context.Background(), path, "English")

	// 450 words, window 200, step 180: starts at 0, 180, 360.
	require.Len(t, chunks, 3)
	assert.Len(t, strings.Fields(chunks[0].Content), 200)
	assert.Len(t, strings.Fields(chunks[2].Content), 90)
	for i, c := range chunks {
		assert.Equal(t, i, c.Position)
		assert.Equal(t, "English", c.Subject())
	}

	chunks[0].Meta[domain.MetaSubject] = "changed"
	assert.Equal(t, "English", chunks[1].Subject(), "chunks must not share metadata maps")
}

func TestAssembler_ProcessFileFailuresYieldNothing(t *testing.T) {
	dir := t.TempDir()
	a := newTestAssembler(t)

	assert.Empty(t, a.ProcessFile(context.Background(), writeFile(t, dir, "broken.pdf", "not a pdf"), "Math"))
	assert.Empty(t, a.ProcessFile(context.Background(), writeFile(t, dir, "image.png", "\x89PNG"), "Math"))
	assert.Empty(t, a.ProcessFile(context.Background(), filepath.Join(dir, "missing.txt"), "Math"))
	assert.Empty(t, a.ProcessFile(context.Background(), writeFile(t, dir, "empty.txt", "   \n"), "Math"))
}

func TestAssembler_ProcessDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.txt", "first file")
	writeFile(t, dir, "two.txt", "second file")
	writeFile(t, dir, "corrupt.pdf", "%PDF-1.4 garbage")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o700))
	writeFile(t, filepath.Join(dir, "nested"), "three.txt", "ignored")

	a := newTestAssembler(t)
	ctx := context.Background()

	got, err := a.ProcessDirectory(ctx, dir, "Science")
	require.NoError(t, err)

	want := append(
		a.ProcessFile(ctx, filepath.Join(dir, "one.txt"), "Science"),
		a.ProcessFile(ctx, filepath.Join(dir, "two.txt"), "Science")...,
	)
	assert.ElementsMatch(t, want, got)
}

func TestAssembler_ProcessDirectoryMissing(t *testing.T) {
	_, err := newTestAssembler(t).ProcessDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"), "")
	assert.Error(t, err)
}

func TestAssembler_ProcessDirectoryCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.txt", "first file")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chunks, err := newTestAssembler(t).ProcessDirectory(ctx, dir, "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, chunks)
}

func TestAssembler_SampleContent(t *testing.T) {
	chunks := newTestAssembler(t).SampleContent(context.Background())
	require.Len(t, chunks, 3)

	subjects := make([]string, len(chunks))
	for i, c := range chunks {
		subjects[i] = c.Subject()
		assert.Equal(t, domain.SampleSource, c.Meta[domain.MetaSource])
		assert.Equal(t, "sample", c.Meta[domain.MetaType])
		assert.NotEmpty(t, c.Meta[domain.MetaTopic])
	}
	assert.Equal(t, []string{"Mathematics", "Physics", "Chemistry"}, subjects)
	assert.True(t, strings.HasPrefix(chunks[0].Content, "Algebra is a branch of mathematics"))
}

func TestAssembler_SampleContentSmallWindow(t *testing.T) {
	chunks := newTestAssembler(t, chunker.WithSplitLength(20), chunker.WithSplitOverlap(5)).
		SampleContent(context.Background())
	assert.Greater(t, len(chunks), 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(strings.Fields(c.Content)), 20)
	}
}
