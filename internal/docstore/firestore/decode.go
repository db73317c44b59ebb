package firestore

import (
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"

	fsapi "google.golang.org/api/firestore/v1"

	"tyotilasto/internal/core"
)

// decodeObservation extracts one pair from a monthly summary document.
// ok is false when the document has no entry for the pair.
func decodeObservation(doc *fsapi.Document, region string, keys []string) (core.Observation, bool, error) {
	if doc == nil {
		return core.Observation{}, false, nil
	}
	period := stringField(doc.Fields, fieldYearMonth)
	if period == "" {
		period = docID(doc)
	}

	regions, ok := mapField(doc.Fields, fieldRegions)
	if !ok {
		return core.Observation{}, false, nil
	}
	indicators, ok := mapField(regions, region)
	if !ok {
		return core.Observation{}, false, nil
	}
	for _, key := range keys {
		v, ok := indicators[key]
		if !ok {
			continue
		}
		f, err := numeric(v)
		if err != nil {
			return core.Observation{}, false, fmt.Errorf("%s/%s: %w", region, key, err)
		}
		return core.Observation{Period: period, Value: f}, true, nil
	}
	return core.Observation{}, false, nil
}

func decodeReport(doc *fsapi.Document) (core.Report, bool) {
	if doc == nil {
		return core.Report{}, false
	}
	text := stringField(doc.Fields, fieldReport)
	if strings.TrimSpace(text) == "" {
		return core.Report{}, false
	}
	period := stringField(doc.Fields, fieldYearMonth)
	if period == "" {
		period = docID(doc)
	}
	return core.Report{Period: period, Text: text}, true
}

// numeric converts a Firestore value to a float. Integers and doubles are
// accepted, as are numeric strings. Everything else is malformed.
func numeric(v fsapi.Value) (float64, error) {
	switch {
	case v.NullValue != "":
		return 0, fmt.Errorf("%w: null value", core.ErrMalformedObservation)
	case v.StringValue != "":
		s := strings.ReplaceAll(strings.TrimSpace(v.StringValue), ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: %q is not a number", core.ErrMalformedObservation, v.StringValue)
		}
		return f, nil
	case v.BooleanValue, v.MapValue != nil, v.ArrayValue != nil, v.GeoPointValue != nil,
		v.TimestampValue != "", v.ReferenceValue != "", v.BytesValue != "":
		return 0, fmt.Errorf("%w: unexpected value type", core.ErrMalformedObservation)
	case v.IntegerValue != 0:
		return float64(v.IntegerValue), nil
	default:
		return v.DoubleValue, nil
	}
}

func stringField(fields map[string]fsapi.Value, name string) string {
	v, ok := fields[name]
	if !ok {
		return ""
	}
	return strings.TrimSpace(v.StringValue)
}

func mapField(fields map[string]fsapi.Value, name string) (map[string]fsapi.Value, bool) {
	v, ok := fields[name]
	if !ok || v.MapValue == nil {
		return nil, false
	}
	return v.MapValue.Fields, true
}

// docID is the last segment of the document resource name.
func docID(doc *fsapi.Document) string {
	if doc == nil || doc.Name == "" {
		return ""
	}
	return path.Base(doc.Name)
}
