package source

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/animerec/core"
)

// LoadYAML 读取与 LoadJSON 同结构的 YAML 文件（映射或序列）。
func LoadYAML(path string) ([]core.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", path, err)
	}
	records, err := decodeYAML(data)
	if err != nil {
		return nil, fmt.Errorf("source: decode %s: %w", path, err)
	}
	return collect(path, records), nil
}

// decodeYAML 解码 YAML 数据，保留键的原始顺序。
func decodeYAML(data []byte) ([]record, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]

	var records []record
	switch root.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(root.Content); i += 2 {
			key := root.Content[i].Value
			var fields map[string]any
			if err := root.Content[i+1].Decode(&fields); err != nil {
				return nil, fmt.Errorf("record %q: %w", key, err)
			}
			records = append(records, record{id: key, fields: fields})
		}
	case yaml.SequenceNode:
		for i, n := range root.Content {
			var fields map[string]any
			if err := n.Decode(&fields); err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			id := strconv.Itoa(i)
			if v, ok := fields["id"]; ok {
				id = fmt.Sprint(v)
			}
			records = append(records, record{id: id, fields: fields})
		}
	default:
		return nil, fmt.Errorf("expected mapping or sequence at document root")
	}
	return records, nil
}
