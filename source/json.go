package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/rushteam/animerec/core"
)

// LoadJSON 读取抓取程序输出的 JSON 文件。
//
// 支持两种布局，均按文件中的出现顺序返回：
//
//	{"<id>": {"title": ..., "genre": [...], "rating": [score, count] | "N/A", ...}, ...}
//	[{"title": ..., ...}, ...]
func LoadJSON(path string) ([]core.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", path, err)
	}
	records, err := decodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("source: decode %s: %w", path, err)
	}
	return collect(path, records), nil
}

// decodeJSON 解码 JSON 数据，保留键的原始顺序。
func decodeJSON(data []byte) ([]record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	var records []record
	switch tok {
	case json.Delim('{'):
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := keyTok.(string)
			var fields map[string]any
			if err := dec.Decode(&fields); err != nil {
				return nil, fmt.Errorf("record %q: %w", key, err)
			}
			records = append(records, record{id: key, fields: fields})
		}
	case json.Delim('['):
		for i := 0; dec.More(); i++ {
			var fields map[string]any
			if err := dec.Decode(&fields); err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			id := strconv.Itoa(i)
			if v, ok := fields["id"]; ok {
				id = fmt.Sprint(v)
			}
			records = append(records, record{id: id, fields: fields})
		}
	default:
		return nil, fmt.Errorf("expected object or array, got %v", tok)
	}

	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, err
	}
	return records, nil
}
