package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/ayoisaiah/worklog/internal/apperr"
	"github.com/ayoisaiah/worklog/tracker"
)

var errDecode = &apperr.Error{
	Message: "decoding tracker state",
}

// duration is the {"secs", "nanos"} form durations are persisted in.
type duration struct {
	Secs  uint64 `json:"secs"`
	Nanos uint32 `json:"nanos"`
}

func toDuration(d time.Duration) duration {
	if d < 0 {
		d = 0
	}

	return duration{
		Secs:  uint64(d / time.Second),
		Nanos: uint32(d % time.Second),
	}
}

func (d duration) value() (time.Duration, error) {
	if d.Secs > uint64(math.MaxInt64/int64(time.Second)) {
		return 0, fmt.Errorf("duration of %d seconds is out of range", d.Secs)
	}

	if d.Nanos >= uint32(time.Second) {
		return 0, fmt.Errorf("%d nanoseconds is not a valid fraction", d.Nanos)
	}

	return time.Duration(d.Secs)*time.Second + time.Duration(d.Nanos), nil
}

func toDurations(ds []time.Duration) []duration {
	if len(ds) == 0 {
		return nil
	}

	out := make([]duration, len(ds))
	for i, d := range ds {
		out[i] = toDuration(d)
	}

	return out
}

func fromDurations(ds []duration) ([]time.Duration, error) {
	if len(ds) == 0 {
		return nil, nil
	}

	out := make([]time.Duration, len(ds))

	for i, d := range ds {
		v, err := d.value()
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

// epochTime is an absolute instant as seconds and nanoseconds since the
// Unix epoch.
type epochTime struct {
	Secs  int64  `json:"secs_since_epoch"`
	Nanos uint32 `json:"nanos_since_epoch"`
}

type runningRecord struct {
	Key       string    `json:"key"`
	StartTime epochTime `json:"start_time"`
}

type trackerRecord struct {
	ID                  string     `json:"id,omitempty"`
	Description         *string    `json:"description,omitempty"`
	Duration            duration   `json:"duration"`
	PositiveAdjustments []duration `json:"positive_adjustments,omitempty"`
	NegativeAdjustments []duration `json:"negative_adjustments,omitempty"`
	StartTime           time.Time  `json:"start_time"`
}

type namedRecord struct {
	key    string
	record trackerRecord
}

// trackerMap is a JSON object that keeps its keys in document order.
type trackerMap []namedRecord

func (m trackerMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, r := range m {
		if i > 0 {
			buf.WriteByte(',')
		}

		k, err := json.Marshal(r.key)
		if err != nil {
			return nil, err
		}

		v, err := json.Marshal(r.record)
		if err != nil {
			return nil, err
		}

		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func (m *trackerMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if tok == nil {
		*m = nil
		return nil
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("trackers: expected an object, got %v", tok)
	}

	var out trackerMap

	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}

		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("trackers: expected a key, got %v", tok)
		}

		var r trackerRecord

		if err = dec.Decode(&r); err != nil {
			return fmt.Errorf("tracker %q: %w", key, err)
		}

		out = append(out, namedRecord{key: key, record: r})
	}

	if _, err = dec.Token(); err != nil {
		return err
	}

	*m = out

	return nil
}

type document struct {
	Running  *runningRecord `json:"running"`
	Trackers trackerMap     `json:"trackers"`
}

// Encode renders snap as indented JSON.
func Encode(snap *tracker.Snapshot) ([]byte, error) {
	doc := document{
		Trackers: make(trackerMap, 0, len(snap.Trackers)),
	}

	if r := snap.Running; r != nil {
		doc.Running = &runningRecord{
			Key: r.Key,
			StartTime: epochTime{
				Secs:  r.StartTime.Unix(),
				Nanos: uint32(r.StartTime.Nanosecond()),
			},
		}
	}

	for i := range snap.Trackers {
		e := &snap.Trackers[i]

		rec := trackerRecord{
			ID:                  e.ID,
			StartTime:           e.StartTime,
			Duration:            toDuration(e.Duration),
			PositiveAdjustments: toDurations(e.PositiveAdjustments),
			NegativeAdjustments: toDurations(e.NegativeAdjustments),
		}

		if e.Description != "" {
			rec.Description = &e.Description
		}

		doc.Trackers = append(doc.Trackers, namedRecord{key: e.Key, record: rec})
	}

	return json.MarshalIndent(doc, "", "  ")
}

// Decode parses data produced by Encode or by an older release of worklog.
func Decode(data []byte) (*tracker.Snapshot, error) {
	var doc document

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errDecode.Wrap(err)
	}

	migrate(&doc)

	snap := &tracker.Snapshot{
		Trackers: make([]tracker.Entry, 0, len(doc.Trackers)),
	}

	for _, r := range doc.Trackers {
		e, err := r.entry()
		if err != nil {
			return nil, errDecode.Wrap(fmt.Errorf("tracker %q: %w", r.key, err))
		}

		snap.Trackers = append(snap.Trackers, e)
	}

	if r := doc.Running; r != nil {
		if r.StartTime.Nanos >= uint32(time.Second) {
			return nil, errDecode.Wrap(
				fmt.Errorf("running tracker %q has an invalid start time", r.Key),
			)
		}

		snap.Running = &tracker.RunningSnapshot{
			Key:       r.Key,
			StartTime: time.Unix(r.StartTime.Secs, int64(r.StartTime.Nanos)),
		}
	}

	return snap, nil
}

func (r namedRecord) entry() (tracker.Entry, error) {
	d, err := r.record.Duration.value()
	if err != nil {
		return tracker.Entry{}, err
	}

	pos, err := fromDurations(r.record.PositiveAdjustments)
	if err != nil {
		return tracker.Entry{}, err
	}

	neg, err := fromDurations(r.record.NegativeAdjustments)
	if err != nil {
		return tracker.Entry{}, err
	}

	e := tracker.Entry{
		Key:                 r.key,
		ID:                  r.record.ID,
		StartTime:           r.record.StartTime.Local(),
		Duration:            d,
		PositiveAdjustments: pos,
		NegativeAdjustments: neg,
	}

	if r.record.Description != nil {
		e.Description = *r.record.Description
	}

	return e, nil
}
