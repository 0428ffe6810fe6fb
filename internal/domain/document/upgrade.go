package document

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/timeline/internal/domain/layout"
	"github.com/okian/timeline/internal/domain/model"
)

// Raw is a decoded document before upgrade. Nothing outside this package
// inspects its shape.
type Raw map[string]any

// Sequence names the document list a record was read from.
type Sequence string

const (
	SequenceEvents    Sequence = "events"
	SequenceTimespans Sequence = "timespans"
)

// Drop reasons.
const (
	ReasonNotObject   = "not an object"
	ReasonNoShape     = "neither date nor start_date"
	ReasonMissingID   = "missing id"
	ReasonInvalidDate = "invalid date"
)

// Drop describes one skipped record.
type Drop struct {
	Sequence Sequence `json:"sequence"`
	Index    int      `json:"index"`
	Reason   string   `json:"reason"`
}

// Err returns the drop as an ErrUnrecognizedRecord.
func (d Drop) Err() error {
	return fmt.Errorf("%w: %s[%d]: %s", ErrUnrecognizedRecord, d.Sequence, d.Index, d.Reason)
}

// Report summarises an upgrade.
type Report struct {
	Events    int    `json:"events"`
	Timespans int    `json:"timespans"`
	Relocated int    `json:"relocated"`
	Dropped   []Drop `json:"dropped"`
}

// Import decodes data and upgrades it into a fresh Timeline. The caller's
// timeline is never touched, so a failed import leaves prior state intact.
func Import(data []byte, format Format) (*model.Timeline, Report, error) {
	raw, err := Decode(data, format)
	if err != nil {
		return nil, Report{}, err
	}
	return Upgrade(raw)
}

// Upgrade builds a Timeline from an untyped document of any known version.
// Missing title and timespans default to empty. Records in either sequence
// are dispatched by shape: a date field makes a point event, a start_date
// field makes a duration span. Unrecognised records are skipped and reported.
func Upgrade(raw Raw) (*model.Timeline, Report, error) {
	t := model.New()
	rep := Report{Dropped: []Drop{}}

	if s, ok := raw["title"].(string); ok {
		t.Title = s
	}
	if p, ok := asObject(raw["padding"]); ok {
		readPadding(&t.Padding, p)
	}
	if z, ok := number(raw["zoom"]); ok {
		t.Zoom = z
	}
	start, ok, err := year(raw, "offset")
	if err != nil {
		return nil, Report{}, err
	}
	if ok {
		t.StartYear = start
	}
	end, ok, err := year(raw, "end")
	if err != nil {
		return nil, Report{}, err
	}
	if ok {
		t.EndYear = end
	}
	if err := t.Validate(); err != nil {
		return nil, Report{}, err
	}

	for _, seq := range []Sequence{SequenceEvents, SequenceTimespans} {
		records, err := sequence(raw, seq)
		if err != nil {
			return nil, Report{}, err
		}
		for i, rec := range records {
			item, reason := upgradeRecord(rec)
			if item == nil {
				rep.Dropped = append(rep.Dropped, Drop{Sequence: seq, Index: i, Reason: reason})
				continue
			}
			switch v := item.(type) {
			case model.PointEvent:
				t.Events = append(t.Events, v)
				if seq != SequenceEvents {
					rep.Relocated++
				}
			case model.DurationSpan:
				t.Timespans = append(t.Timespans, v)
				if seq != SequenceTimespans {
					rep.Relocated++
				}
			}
		}
	}

	layout.SortEvents(t.Events)
	rep.Events = len(t.Events)
	rep.Timespans = len(t.Timespans)
	return t, rep, nil
}

func sequence(raw Raw, seq Sequence) ([]any, error) {
	v, ok := raw[string(seq)]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a list", ErrImportParse, seq)
	}
	return list, nil
}

func upgradeRecord(rec any) (model.Item, string) {
	m, ok := asObject(rec)
	if !ok {
		return nil, ReasonNotObject
	}
	date, hasDate := present(m, "date")
	start, hasStart := present(m, "start_date")
	if !hasDate && !hasStart {
		return nil, ReasonNoShape
	}
	id := text(m["id"])
	if strings.TrimSpace(id) == "" {
		return nil, ReasonMissingID
	}

	if hasDate {
		d, ok := dateValue(date)
		if !ok {
			return nil, ReasonInvalidDate
		}
		return model.PointEvent{
			ID:          id,
			Date:        d,
			Title:       text(m["title"]),
			Description: text(m["description"]),
			Color:       model.NormalizeColor(m["color"]),
		}, ""
	}

	s, ok := dateValue(start)
	if !ok {
		return nil, ReasonInvalidDate
	}
	e := s
	if v, ok := present(m, "end_date"); ok {
		if e, ok = dateValue(v); !ok {
			return nil, ReasonInvalidDate
		}
	}
	return model.DurationSpan{
		ID:          id,
		StartDate:   s,
		EndDate:     e,
		Title:       text(m["title"]),
		Description: text(m["description"]),
		Color:       model.NormalizeColor(m["color"]),
		Layer:       layerValue(m["layer"]),
	}, ""
}

func readPadding(p *model.Padding, m map[string]any) {
	if v, ok := number(m["top"]); ok {
		p.Top = v
	}
	if v, ok := number(m["right"]); ok {
		p.Right = v
	}
	if v, ok := number(m["bottom"]); ok {
		p.Bottom = v
	}
	if v, ok := number(m["left"]); ok {
		p.Left = v
	}
}

// present reports a key holding a non-null, non-empty value.
func present(m map[string]any, key string) (any, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, false
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return v, true
}

// dateValue accepts textual dates, decoded timestamps and Unix milliseconds.
func dateValue(v any) (time.Time, bool) {
	switch d := v.(type) {
	case string:
		t, err := model.ParseDate(d)
		return t, err == nil
	case time.Time:
		return model.Day(d), true
	}
	if ms, ok := number(v); ok && ms >= minUnixMilli && ms <= maxUnixMilli {
		return model.Day(time.UnixMilli(int64(ms)).UTC()), true
	}
	return time.Time{}, false
}

// Unix millisecond bounds of years 0000 through 9999.
const (
	minUnixMilli = -62167219200000
	maxUnixMilli = 253402300799999
)

func text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprint(s)
	}
}

func layerValue(v any) int {
	if s, ok := v.(string); ok {
		return model.ParseLayer(s)
	}
	if f, ok := number(v); ok {
		return model.LayerFromFloat(f)
	}
	return 0
}

func number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// year reads a whole-number year field. Non-numeric values are ignored; a
// fractional year or one beyond int32 is an ErrImportParse.
func year(raw Raw, key string) (int, bool, error) {
	f, ok := number(raw[key])
	if !ok {
		return 0, false, nil
	}
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false, fmt.Errorf("%w: %s must be a whole year, got %v", ErrImportParse, key, f)
	}
	return int(f), true, nil
}
