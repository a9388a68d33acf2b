package auditlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 11, 3, 9, 15, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp:     testTime,
		Source:        "classify",
		Action:        "accepted",
		TransactionID: "TXN-20251103-4F2",
		AccountCode:   "EXP-VEHICLE",
		Details:       `CALTEX 1234 (rule "CALTEX", confidence 1.00)`,
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, ClassificationLog, []Entry{testEntry()}))

	data, err := os.ReadFile(Path(dir, ClassificationLog))
	require.NoError(t, err)
	assert.True(t, len(data) > len(Header))
	assert.Equal(t, Header+"\n", string(data[:len(Header)+1]))

	entries, err := Read(dir, ClassificationLog)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "classify", entries[0].Source)
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, ImportLog, []Entry{testEntry()}))

	e2 := testEntry()
	e2.Source = "import"
	e2.Action = "imported"
	require.NoError(t, Append(dir, ImportLog, []Entry{e2}))

	entries, err := Read(dir, ImportLog)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "classify", entries[0].Source)
	assert.Equal(t, "import", entries[1].Source)
}

func TestAppend_NothingToWrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, ImportLog, nil))

	_, err := os.Stat(filepath.Join(dir, "logs"))
	assert.True(t, os.IsNotExist(err))
}

func TestRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := testEntry()
	require.NoError(t, Append(dir, ClassificationLog, []Entry{original}))

	entries, err := Read(dir, ClassificationLog)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.True(t, original.Timestamp.Equal(got.Timestamp))
	got.Timestamp = original.Timestamp
	assert.Equal(t, original, got)
}

func TestRead_SeparateLogs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, ClassificationLog, []Entry{testEntry()}))

	entries, err := Read(dir, ImportLog)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "logs"), 0o755))
	require.NoError(t, os.WriteFile(Path(dir, ImportLog), []byte(Header+"\n"), 0o644))

	entries, err := Read(dir, ImportLog)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_BadTimestamp(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "logs"), 0o755))
	content := Header + "\nyesterday,classify,accepted,TXN-1,EXP,desc\n"
	require.NoError(t, os.WriteFile(Path(dir, ImportLog), []byte(content), 0o644))

	_, err := Read(dir, ImportLog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestUnmarshalEntry_WrongFieldCount(t *testing.T) {
	_, err := UnmarshalEntry([]string{"a", "b"})
	assert.Error(t, err)
}
