package models

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"bitbucket.org/prajapati/wealth_backend/docstore"
	"bitbucket.org/prajapati/wealth_backend/utils"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
)

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})
)

// decodeHook lets stored documents keep the loose shapes older clients wrote:
// amounts as strings or numbers, booleans as "Yes"/"No".
func decodeHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	switch to {
	case decimalType:
		switch v := data.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return decimal.Zero, nil
			}
			return utils.ParseDecimal(v)
		case float64:
			return decimal.NewFromFloat(v), nil
		case int:
			return decimal.NewFromInt(int64(v)), nil
		case int64:
			return decimal.NewFromInt(v), nil
		case nil:
			return decimal.Zero, nil
		}
	case timeType:
		if s, ok := data.(string); ok {
			if s == "" {
				return time.Time{}, nil
			}
			return time.Parse(time.RFC3339Nano, s)
		}
	}
	if to.Kind() == reflect.Bool {
		if s, ok := data.(string); ok {
			switch strings.ToLower(strings.TrimSpace(s)) {
			case "yes", "true", "1":
				return true, nil
			case "no", "false", "0", "":
				return false, nil
			}
		}
	}
	return data, nil
}

func decodeData(data docstore.Data, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       decodeHook,
		WeaklyTypedInput: true,
		Squash:           true,
		TagName:          "json",
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(map[string]interface{}(data))
}

// decodeDocument turns a stored document into a record of type T.
func decodeDocument[T any](doc *docstore.Document) (*T, error) {
	var rec T
	if err := decodeData(doc.Data, &rec); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", doc.Collection, doc.ID, err)
	}
	if m, ok := any(&rec).(metaSetter); ok {
		m.setMeta(doc)
	}
	return &rec, nil
}

// encodeRecord turns a record into document data without its metadata.
func encodeRecord(v any) (docstore.Data, error) {
	data, err := docstore.Normalize(v)
	if err != nil {
		return nil, err
	}
	for _, k := range reservedFields {
		delete(data, k)
	}
	return data, nil
}

var reservedFields = []string{"id", "createdAt", "updatedAt"}

var fieldCache sync.Map // reflect.Type -> map[string]bool

// fieldNames lists the top-level json names of T, including squashed embeds.
func fieldNames[T any]() map[string]bool {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if cached, ok := fieldCache.Load(t); ok {
		return cached.(map[string]bool)
	}
	names := make(map[string]bool)
	collectFields(t, names)
	for _, k := range reservedFields {
		delete(names, k)
	}
	fieldCache.Store(t, names)
	return names
}

func collectFields(t reflect.Type, names map[string]bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			collectFields(f.Type, names)
			continue
		}
		if !f.IsExported() {
			continue
		}
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		names[name] = true
	}
}

// sanitizeFields keeps only keys that belong to T. Dotted keys are checked by
// their first segment.
func sanitizeFields[T any](fields docstore.Data) docstore.Data {
	allowed := fieldNames[T]()
	out := make(docstore.Data, len(fields))
	for k, v := range fields {
		root := strings.SplitN(k, ".", 2)[0]
		if allowed[root] {
			out[k] = v
		}
	}
	return out
}
