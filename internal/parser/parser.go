package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	stderrors "errors" // Standard errors package

	"github.com/mcncl/textjson/internal/errors" // Custom errors package
	"github.com/mcncl/textjson/internal/models"
	"github.com/mcncl/textjson/internal/normalizer"
	"go.uber.org/zap"
)

// snippetLength bounds how much of a rejected line ends up in logs
const snippetLength = 50

// Parse reads exactly one JSON document from reader. Numbers are kept as
// json.Number and objects keep their key order.
func Parse(reader io.Reader) (models.JSONValue, error) {
	decoder := json.NewDecoder(reader)
	decoder.UseNumber() // Ensure numbers are read as json.Number

	rootValue, err := decodeValue(decoder, true)
	if err != nil {
		return nil, wrapDecodeError(err)
	}

	// Anything other than EOF after the root value means the document is not a single value.
	if _, err := decoder.Token(); err == nil {
		return nil, errors.NewParsingError("unexpected data after the first JSON value", errors.ErrMultipleJSON)
	} else if !stderrors.Is(err, io.EOF) {
		return nil, wrapDecodeError(err)
	}

	return rootValue, nil
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.JSONValue, error) {
	return Parse(strings.NewReader(jsonString))
}

// decodeValue walks the token stream and builds model values
func decodeValue(decoder *json.Decoder, root bool) (models.JSONValue, error) {
	tok, err := decoder.Token()
	if err != nil {
		if !root && stderrors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil // Primitives (string, json.Number, bool, nil) are returned as is
	}

	switch delim {
	case '{':
		obj := models.NewJSONObject()
		for decoder.More() {
			keyTok, err := decoder.Token()
			if err != nil {
				return nil, eofIsUnexpected(err)
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key must be a string, got %v", keyTok)
			}
			value, err := decodeValue(decoder, false)
			if err != nil {
				return nil, err
			}
			obj.Set(key, value)
		}
		if err := closeDelim(decoder); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := models.JSONArray{}
		for decoder.More() {
			value, err := decodeValue(decoder, false)
			if err != nil {
				return nil, err
			}
			arr = append(arr, value)
		}
		if err := closeDelim(decoder); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

func closeDelim(decoder *json.Decoder) error {
	_, err := decoder.Token()
	return eofIsUnexpected(err)
}

func eofIsUnexpected(err error) error {
	if stderrors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// wrapDecodeError turns decoder failures into parsing AppErrors that keep the
// underlying message intact.
func wrapDecodeError(err error) error {
	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return errors.NewParsingError(
			fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
			err,
		)
	}
	if stderrors.Is(err, io.EOF) || stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.NewParsingError("unexpected end of JSON input", io.ErrUnexpectedEOF)
	}
	return errors.NewParsingError("failed to decode JSON", fmt.Errorf("%w: %w", errors.ErrInvalidJSON, err))
}

// ExtractArrays returns every line of normalized text that is a bracketed
// JSON array, in source order. Lines that look like arrays but do not parse
// are skipped, logged, and reported in the second return value.
func ExtractArrays(normalized string, logger *zap.Logger) ([]models.JSONArray, []error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var arrays []models.JSONArray
	var skipped []error

	for i, line := range strings.Split(normalized, "\n") {
		line = normalizer.Trim(line)
		if line == "" || !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") {
			continue
		}

		value, err := ParseString(line)
		if err != nil {
			lineErr := &errors.ArrayLineError{Line: i + 1, Snippet: snippet(line), Err: err}
			logger.Warn("Skipping array line that failed to parse",
				zap.Int("line", lineErr.Line),
				zap.String("snippet", lineErr.Snippet),
				zap.Error(err),
			)
			skipped = append(skipped, lineErr)
			continue
		}

		if arr, ok := value.(models.JSONArray); ok {
			arrays = append(arrays, arr)
		}
	}

	return arrays, skipped
}

func snippet(line string) string {
	if utf8.RuneCountInString(line) <= snippetLength {
		return line
	}
	return string([]rune(line)[:snippetLength])
}

// ReadFile loads raw input text from a file path
func ReadFile(filePath string) (string, error) {
	if strings.TrimSpace(filePath) == "" {
		return "", errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return "", errors.NewInputError(
			fmt.Sprintf("failed to read file '%s'", filePath),
			err,
		)
	}
	return string(data), nil
}
