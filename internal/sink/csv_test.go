package sink

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bkassahun/course-harvester/internal/course"
)

func TestCSVSinkWritesSchema(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "courses.csv")
	sink, err := NewCSVSink(path, false, zaptest.NewLogger(t))
	require.NoError(t, err)

	records := []course.Record{
		{
			ID:                 "c-1",
			Title:              "Intro to Go",
			URL:                "https://example.et/courses/go",
			IsPaid:             course.Bool(true),
			Price:              course.String("200 ETB"),
			NumSubscribers:     course.Int(120),
			NumReviews:         course.Int(14),
			NumLectures:        course.Int(30),
			Level:              course.String("Beginner"),
			ContentDuration:    course.String("12h"),
			PublishedTimestamp: course.String("2024-05-01T00:00:00Z"),
			Subject:            course.String("Programming"),
			Provider:           "Example Academy",
			Language:           course.String("English"),
		},
		{
			ID:       "c-2",
			Title:    "Amharic Literacy",
			URL:      "https://example.et/courses/amharic",
			Provider: "Example Academy",
		},
		{
			ID:       "c-3",
			Title:    "Data Basics",
			URL:      "https://example.et/courses/data",
			IsPaid:   course.Bool(false),
			Subject:  course.String("Data"),
			Provider: "Example Academy",
		},
	}
	require.NoError(t, sink.Write(context.Background(), records))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Equal(t, course.CSVHeader, rows[0])

	full := rows[1]
	require.Equal(t, "c-1", full[0])
	require.Equal(t, "Intro to Go", full[1])
	require.Equal(t, "true", full[3])
	require.Equal(t, "200 ETB", full[4])
	require.Equal(t, "120", full[5])
	require.Equal(t, "English", full[13])

	// Absent optionals serialize as empty strings, not placeholders.
	sparse := rows[2]
	for _, i := range []int{3, 4, 5, 6, 7, 8, 9, 10, 11, 13} {
		require.Empty(t, sparse[i], "column %d", i)
	}
	require.Equal(t, "Example Academy", sparse[12])

	require.Equal(t, "false", rows[3][3])
	require.Equal(t, "Data", rows[3][11])
}

func TestCSVSinkCreatesParentDirectories(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "deep", "nested", "out.csv")
	sink, err := NewCSVSink(path, false, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, sink.Write(context.Background(), nil))
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestCSVSinkRejectsInvalidRecords(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	sink, err := NewCSVSink(path, true, zaptest.NewLogger(t))
	require.NoError(t, err)

	records := []course.Record{
		{ID: "good", Title: "Kept", URL: "https://example.et/kept", Provider: "P"},
		{ID: "no-url", Title: "Dropped", Provider: "P"},
		{ID: "no-provider", Title: "Dropped", URL: "https://example.et/x"},
	}
	require.NoError(t, sink.Write(context.Background(), records))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "good", rows[1][0])
}

func TestCSVSinkReplacesExistingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale contents"), 0o600))

	sink, err := NewCSVSink(path, false, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, sink.Write(context.Background(), []course.Record{
		{ID: "r", Title: "Fresh", URL: "https://example.et/fresh", Provider: "P"},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "stale")
	require.Contains(t, string(data), "Fresh")
}

func TestCSVSinkHonorsCancellation(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	sink, err := NewCSVSink(path, false, zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, sink.Write(ctx, nil))

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestNewCSVSinkEmptyPath(t *testing.T) {
	t.Parallel()

	_, err := NewCSVSink("", false, zaptest.NewLogger(t))
	require.Error(t, err)
}
