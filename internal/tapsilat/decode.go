package tapsilat

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/tapsilat-checkout/internal/domain/payment"
)

// parseError builds a ProviderError from an error response body. The API
// reports failures as {"code": ..., "message"|"error": ...}; anything else is
// passed through as text.
func parseError(status int, body []byte) *payment.ProviderError {
	pErr := &payment.ProviderError{StatusCode: status}

	if jx.Valid(body) {
		d := jx.DecodeBytes(body)
		if d.Next() == jx.Object {
			_ = d.Obj(func(d *jx.Decoder, key string) error {
				switch key {
				case "code", "error_code":
					pErr.Code = scalarString(d)
				case "message", "error", "error_message":
					if v := scalarString(d); v != "" && pErr.Message == "" {
						pErr.Message = v
					}
				default:
					return d.Skip()
				}
				return nil
			})
		}
	} else if text := strings.TrimSpace(string(body)); text != "" {
		pErr.Message = text
	}

	if pErr.Message == "" {
		pErr.Message = http.StatusText(status)
	}
	return pErr
}

// scalarString reads a string or number as text and skips any other value.
func scalarString(d *jx.Decoder) string {
	switch d.Next() {
	case jx.String:
		v, _ := d.Str()
		return v
	case jx.Number:
		n, _ := d.Num()
		return n.String()
	default:
		_ = d.Skip()
		return ""
	}
}

// parsePage reads a listing response. Rows may be under "rows", "data" or
// "items", or the body may be a bare array.
func parsePage(raw json.RawMessage) (*payment.Page, error) {
	page := payment.EmptyPage()

	d := jx.DecodeBytes(raw)
	switch d.Next() {
	case jx.Array:
		rows, err := rawArray(d)
		if err != nil {
			return nil, err
		}
		page.Rows = rows
		page.TotalCount = len(rows)
		return page, nil
	case jx.Object:
	default:
		return nil, errors.New("unexpected listing response")
	}

	total := -1
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "rows", "data", "items":
			if d.Next() != jx.Array {
				return d.Skip()
			}
			rows, err := rawArray(d)
			if err != nil {
				return err
			}
			page.Rows = rows
		case "total_count", "total", "count":
			if d.Next() != jx.Number {
				return d.Skip()
			}
			n, err := d.Int()
			if err != nil {
				return err
			}
			total = n
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode listing")
	}

	page.TotalCount = total
	if total < 0 {
		page.TotalCount = len(page.Rows)
	}
	return page, nil
}

func rawArray(d *jx.Decoder) ([]json.RawMessage, error) {
	rows := []json.RawMessage{}
	err := d.Arr(func(d *jx.Decoder) error {
		raw, err := d.Raw()
		if err != nil {
			return err
		}
		rows = append(rows, json.RawMessage(bytes.Clone(raw)))
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode rows")
	}
	return rows, nil
}

// stringField extracts a top-level string field from an object.
func stringField(raw json.RawMessage, name string) (string, error) {
	var out string
	d := jx.DecodeBytes(raw)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != name {
			return d.Skip()
		}
		out = scalarString(d)
		return nil
	})
	if err != nil {
		return "", errors.Wrapf(err, "decode %s", name)
	}
	return out, nil
}
