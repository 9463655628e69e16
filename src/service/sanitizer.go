package service

import (
	"encoding/json"
	"reflect"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"gitlab.com/open-soft/spread-dashboard/src/model"
)

type Sanitizer struct {
}

// Sanitize returns only well-formed points in input order. ok is false when raw is not array-like.
func (s *Sanitizer) Sanitize(raw any) (model.Series, bool) {
	switch typed := raw.(type) {
	case nil:
		return nil, false
	case model.Series:
		return s.sanitizePoints(typed), true
	case []model.Point:
		return s.sanitizePoints(typed), true
	case []any:
		return s.sanitizeElements(typed), true
	case []map[string]any:
		elements := make([]any, 0, len(typed))
		for _, element := range typed {
			elements = append(elements, element)
		}
		return s.sanitizeElements(elements), true
	}

	value := reflect.ValueOf(raw)
	if value.Kind() != reflect.Slice && value.Kind() != reflect.Array {
		return nil, false
	}

	elements := make([]any, 0, value.Len())
	for i := 0; i < value.Len(); i++ {
		elements = append(elements, value.Index(i).Interface())
	}

	return s.sanitizeElements(elements), true
}

// Merge concatenates several updates and sorts them by time keeping the relative order of ties.
func (s *Sanitizer) Merge(parts ...model.Series) model.Series {
	size := 0
	for _, part := range parts {
		size += len(part)
	}

	merged := make(model.Series, 0, size)
	for _, part := range parts {
		merged = append(merged, part...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Time < merged[j].Time
	})

	return merged
}

func (s *Sanitizer) sanitizePoints(points []model.Point) model.Series {
	series := make(model.Series, 0, len(points))
	for _, point := range points {
		if point.IsValid() {
			series = append(series, point)
		}
	}

	return series
}

func (s *Sanitizer) sanitizeElements(elements []any) model.Series {
	series := make(model.Series, 0, len(elements))
	dropped := 0

	for _, element := range elements {
		point, ok := s.sanitizeElement(element)
		if !ok {
			dropped++
			continue
		}
		series = append(series, point)
	}

	if dropped > 0 {
		log.Debugf("[sanitizer] dropped %d of %d points", dropped, len(elements))
	}

	return series
}

func (s *Sanitizer) sanitizeElement(element any) (model.Point, bool) {
	switch typed := element.(type) {
	case model.Point:
		return typed, typed.IsValid()
	case *model.Point:
		if typed == nil {
			return model.Point{}, false
		}
		return *typed, typed.IsValid()
	case map[string]any:
		rawTime, exist := typed["time"]
		if !exist {
			rawTime, exist = typed["timestamp"]
		}
		if !exist {
			return model.Point{}, false
		}

		timestamp, ok := CoerceTime(rawTime)
		if !ok {
			return model.Point{}, false
		}

		value, ok := CoerceValue(typed["value"])
		if !ok {
			return model.Point{}, false
		}

		return model.Point{Time: timestamp, Value: value}, true
	}

	return model.Point{}, false
}

// CoerceTime accepts numeric seconds or milliseconds and date-like strings.
func CoerceTime(raw any) (int64, bool) {
	switch typed := raw.(type) {
	case float64:
		return model.NumericUnixTimestamp(typed)
	case float32:
		return model.NumericUnixTimestamp(float64(typed))
	case int:
		return model.NumericUnixTimestamp(float64(typed))
	case int64:
		return model.NumericUnixTimestamp(float64(typed))
	case model.UnixTimestamp:
		return typed.Value(), true
	case json.Number:
		return model.ParseUnixTimestamp(typed.String())
	case string:
		return model.ParseUnixTimestamp(typed)
	}

	return 0, false
}

// CoerceValue parses numeric-like input and rejects anything that is not finite.
func CoerceValue(raw any) (float64, bool) {
	var value float64

	switch typed := raw.(type) {
	case float64:
		value = typed
	case float32:
		value = float64(typed)
	case int:
		value = float64(typed)
	case int64:
		value = float64(typed)
	case model.Price:
		value = typed.Value()
	case json.Number:
		parsed, err := typed.Float64()
		if err != nil {
			return 0, false
		}
		value = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0, false
		}
		value = parsed
	default:
		return 0, false
	}

	return value, model.IsFinite(value)
}
