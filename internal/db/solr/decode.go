package solr

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kailas-cloud/scxa/internal/solr/stream"
)

// Reserved tuple fields of the /stream handler.
const (
	fieldEOF       = "EOF"
	fieldException = "EXCEPTION"
)

// seekDocs advances dec to the first element of result-set.docs.
func seekDocs(dec *json.Decoder) error {
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return err
		}
		if key != "result-set" {
			if err := skipValue(dec); err != nil {
				return err
			}
			continue
		}
		if err := expectDelim(dec, '{'); err != nil {
			return err
		}
		for dec.More() {
			inner, err := readKey(dec)
			if err != nil {
				return err
			}
			if inner == "docs" {
				return expectDelim(dec, '[')
			}
			if err := skipValue(dec); err != nil {
				return err
			}
		}
		return errors.New("result-set has no docs")
	}
	return errors.New("response has no result-set")
}

// readTuple decodes one JSON object, keeping its field order.
func readTuple(dec *json.Decoder) (stream.Tuple, error) {
	var t stream.Tuple
	if err := expectDelim(dec, '{'); err != nil {
		return t, err
	}
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return t, err
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return t, fmt.Errorf("field %s: %w", key, err)
		}
		v, ok, err := toValue(raw)
		if err != nil {
			return t, fmt.Errorf("field %s: %w", key, err)
		}
		if ok {
			t.Set(key, v)
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return t, err
	}
	return t, nil
}

// decodeTuple decodes a standalone JSON object.
func decodeTuple(raw []byte) (stream.Tuple, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	return readTuple(dec)
}

// toValue converts a raw JSON value. Nulls and nested objects are skipped.
func toValue(raw json.RawMessage) (stream.Value, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return stream.Value{}, false, nil
	}
	switch trimmed[0] {
	case '{':
		return stream.Value{}, false, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return stream.Value{}, false, err
		}
		out := make([]string, 0, len(items))
		for _, it := range items {
			s, ok, err := scalar(it)
			if err != nil {
				return stream.Value{}, false, err
			}
			if ok {
				out = append(out, s)
			}
		}
		return stream.List(out...), true, nil
	default:
		s, ok, err := scalar(trimmed)
		if err != nil || !ok {
			return stream.Value{}, false, err
		}
		return stream.Scalar(s), true, nil
	}
}

func scalar(raw json.RawMessage) (string, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0, string(trimmed) == "null":
		return "", false, nil
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false, err
		}
		return s, true, nil
	case trimmed[0] == '{' || trimmed[0] == '[':
		return "", false, nil
	default:
		return string(trimmed), true, nil
	}
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func skipValue(dec *json.Decoder) error {
	var raw json.RawMessage
	return dec.Decode(&raw)
}

// readFault extracts the backend's fault message from an error response body.
func readFault(r io.Reader, status int) string {
	body, _ := io.ReadAll(io.LimitReader(r, 64<<10))

	var solrErr struct {
		Error struct {
			Msg string `json:"msg"`
		} `json:"error"`
		ResultSet struct {
			Docs []map[string]any `json:"docs"`
		} `json:"result-set"`
	}
	if err := json.Unmarshal(body, &solrErr); err == nil {
		if solrErr.Error.Msg != "" {
			return solrErr.Error.Msg
		}
		for _, d := range solrErr.ResultSet.Docs {
			if msg, ok := d[fieldException].(string); ok {
				return msg
			}
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return fmt.Sprintf("status %d", status)
	}
	return fmt.Sprintf("status %d: %s", status, msg)
}
