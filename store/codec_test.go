package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/worklog/internal/testutil"
	"github.com/ayoisaiah/worklog/tracker"
)

type goldenCase struct {
	name   string
	output []byte
}

func (g goldenCase) Output() ([]byte, string) {
	return g.output, g.name
}

func fixtureSnapshot() *tracker.Snapshot {
	zone := time.FixedZone("EET", 2*60*60)

	return &tracker.Snapshot{
		Running: &tracker.RunningSnapshot{
			Key:       "ABC-2",
			StartTime: time.Date(2024, 3, 1, 10, 0, 0, 5e8, time.UTC),
		},
		Trackers: []tracker.Entry{
			{
				Key:                 "ABC-1",
				ID:                  "10001",
				Description:         "write the design doc",
				Duration:            90 * time.Minute,
				PositiveAdjustments: []time.Duration{10 * time.Minute},
				NegativeAdjustments: []time.Duration{
					time.Minute + 250*time.Millisecond,
				},
				StartTime: time.Date(2024, 3, 1, 9, 15, 0, 0, zone),
			},
			{
				Key:       "ABC-2",
				ID:        "10002",
				StartTime: time.Date(2024, 3, 1, 11, 0, 0, 0, zone),
			},
		},
	}
}

func TestEncode(t *testing.T) {
	out, err := Encode(fixtureSnapshot())
	require.NoError(t, err)

	testutil.CompareGoldenFile(t, goldenCase{name: "encode", output: out})
}

func TestEncodeEmpty(t *testing.T) {
	out, err := Encode(&tracker.Snapshot{})
	require.NoError(t, err)

	assert.JSONEq(t, `{"running": null, "trackers": {}}`, string(out))
}

func TestDecodeRoundTrip(t *testing.T) {
	want := fixtureSnapshot()

	out, err := Encode(want)
	require.NoError(t, err)

	got, err := Decode(out)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeLegacyDocument(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "legacy.json"))
	require.NoError(t, err)

	snap, err := Decode(data)
	require.NoError(t, err)

	assert.Nil(t, snap.Running)
	require.Len(t, snap.Trackers, 2)

	// document order survives decoding
	zed, abc := snap.Trackers[0], snap.Trackers[1]

	assert.Equal(t, "ZED-7", zed.Key)
	assert.Equal(t, "ZED-7", zed.ID)
	assert.Equal(t, 30*time.Second, zed.Duration)
	assert.Empty(t, zed.Description)

	assert.Equal(t, "ABC-1", abc.Key)
	assert.Equal(t, "ABC-1", abc.ID)
	assert.Equal(t, "review", abc.Description)
	assert.Equal(t, 2*time.Minute+500*time.Nanosecond, abc.Duration)
	assert.Nil(t, abc.PositiveAdjustments)
	assert.True(t, abc.StartTime.Equal(
		time.Date(2023, 11, 20, 8, 30, 0, 0, time.UTC),
	))
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	truncated, err := os.ReadFile(filepath.Join("testdata", "truncated.json"))
	require.NoError(t, err)

	cases := map[string]string{
		"truncated":       string(truncated),
		"trackers list":   `{"running": null, "trackers": []}`,
		"bad nanos":       `{"running": null, "trackers": {"A-1": {"duration": {"secs": 1, "nanos": 1000000000}, "start_time": "2024-01-01T00:00:00Z"}}}`,
		"huge duration":   `{"running": null, "trackers": {"A-1": {"duration": {"secs": 18446744073709551615, "nanos": 0}, "start_time": "2024-01-01T00:00:00Z"}}}`,
		"bad start time":  `{"running": null, "trackers": {"A-1": {"duration": {"secs": 1, "nanos": 0}, "start_time": "yesterday"}}}`,
		"bad running":     `{"running": {"key": "A-1", "start_time": {"secs_since_epoch": 1, "nanos_since_epoch": 4000000000}}, "trackers": {}}`,
		"not json at all": `trackers: []`,
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(input))
			assert.ErrorIs(t, err, errDecode)
		})
	}
}

func TestDecodeNullTrackers(t *testing.T) {
	snap, err := Decode([]byte(`{"running": null, "trackers": null}`))
	require.NoError(t, err)

	assert.Nil(t, snap.Running)
	assert.Empty(t, snap.Trackers)
}
