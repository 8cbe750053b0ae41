// Package converter runs the text-to-JSON pipeline: normalize the raw text,
// pull out array lines, combine them (or fall back to parsing the whole
// text), then serialize and count.
package converter

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/kaptinlin/jsonrepair"
	"github.com/mcncl/textjson/internal/errors"
	"github.com/mcncl/textjson/internal/formatter"
	"github.com/mcncl/textjson/internal/models"
	"github.com/mcncl/textjson/internal/normalizer"
	"github.com/mcncl/textjson/internal/parser"
	"go.uber.org/zap"
)

// DefaultPreviewLength is how many characters of normalized text the preview shows
const DefaultPreviewLength = 200

// Converter turns raw text into JSON. It holds no per-call state, so one
// instance can serve concurrent callers.
type Converter struct {
	PreviewLength int

	logger    *zap.Logger
	formatter *formatter.Formatter
}

// NewConverter creates a Converter. A nil logger disables logging.
func NewConverter(logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{
		PreviewLength: DefaultPreviewLength,
		logger:        logger,
		formatter:     formatter.NewFormatter(),
	}
}

// Convert runs the full pipeline on raw. Empty input fails before any parsing;
// otherwise the only failure is a whole-text parse error when no array lines
// were found.
func (c *Converter) Convert(raw string, opts models.Options) (*models.ConversionResult, error) {
	text := normalizer.Trim(raw)
	if text == "" {
		return nil, errors.NewEmptyInputError()
	}

	normalized := normalizer.Normalize(text)
	arrays, skipped := parser.ExtractArrays(normalized, c.logger)

	result := &models.ConversionResult{
		ArraysFound:  len(arrays),
		SkippedLines: skipped,
	}

	if len(arrays) > 0 {
		result.FinalValue = Combine(arrays, opts.CombineArrays)
	} else {
		value, repaired, err := c.parseDocument(normalized, opts.Repair)
		if err != nil {
			return nil, err
		}
		result.FinalValue = value
		result.Repaired = repaired
	}

	serialized, err := c.formatter.Serialize(result.FinalValue, opts.PrettyPrint)
	if err != nil {
		return nil, errors.NewOutputError("failed to serialize result", err)
	}
	result.Serialized = serialized
	result.ElementCount = ElementCount(result.FinalValue)

	c.logger.Debug("Conversion finished",
		zap.Int("arrays", result.ArraysFound),
		zap.Int("skipped_lines", len(skipped)),
		zap.Int("elements", result.ElementCount),
		zap.Bool("repaired", result.Repaired),
	)

	return result, nil
}

// parseDocument parses the whole normalized text as one JSON document,
// optionally retrying once through jsonrepair.
func (c *Converter) parseDocument(normalized string, repair bool) (models.JSONValue, bool, error) {
	value, err := parser.ParseString(normalized)
	if err == nil {
		return value, false, nil
	}
	if !repair {
		return nil, false, err
	}

	fixed, repairErr := jsonrepair.JSONRepair(normalized)
	if repairErr != nil {
		c.logger.Debug("JSON repair failed", zap.Error(repairErr))
		return nil, false, err
	}
	value, fixedErr := parser.ParseString(fixed)
	if fixedErr != nil {
		c.logger.Debug("Repaired JSON still does not parse", zap.Error(fixedErr))
		return nil, false, err
	}
	return value, true, nil
}

// ConvertAfter waits for delay before converting. Cancelling ctx while
// waiting abandons the call; once started, the conversion runs to completion.
func (c *Converter) ConvertAfter(ctx context.Context, delay time.Duration, raw string, opts models.Options) (*models.ConversionResult, error) {
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return c.Convert(raw, opts)
}

// Preview reports what the normalizer makes of raw, truncated for display.
func (c *Converter) Preview(raw string) models.Preview {
	text := normalizer.Trim(raw)
	if text == "" {
		return models.Preview{Waiting: true}
	}

	normalized := normalizer.Normalize(text)
	limit := c.PreviewLength
	if limit <= 0 {
		limit = DefaultPreviewLength
	}
	if utf8.RuneCountInString(normalized) > limit {
		normalized = string([]rune(normalized)[:limit]) + "..."
	}
	return models.Preview{OK: true, Text: normalized}
}

// Combine applies the combination policy to extracted arrays: several arrays
// are flattened one level when combine is set, a single array is returned
// as-is, and otherwise the arrays are returned as a list of lists.
func Combine(arrays []models.JSONArray, combine bool) models.JSONValue {
	switch {
	case combine && len(arrays) > 1:
		flat := models.JSONArray{}
		for _, arr := range arrays {
			flat = append(flat, arr...)
		}
		return flat
	case len(arrays) == 1:
		return arrays[0]
	default:
		out := make(models.JSONArray, len(arrays))
		for i, arr := range arrays {
			out[i] = arr
		}
		return out
	}
}

// ElementCount is the number of logical items in a final value: the summed
// inner lengths of an array of arrays, the length of any other array, and 1
// for everything else. An array counts as an array of arrays when its first
// element is an array; non-array siblings then count as one item each.
func ElementCount(value models.JSONValue) int {
	arr, ok := value.(models.JSONArray)
	if !ok {
		return 1
	}
	if len(arr) == 0 {
		return 0
	}
	if _, nested := arr[0].(models.JSONArray); !nested {
		return len(arr)
	}

	total := 0
	for _, item := range arr {
		if inner, ok := item.(models.JSONArray); ok {
			total += len(inner)
		} else {
			total++
		}
	}
	return total
}
