package memory

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/scxa/internal/solr/stream"
)

// LoadFixture reads documents from YAML and adds them to the store. The
// document is a mapping of collection name to a list of documents; a field
// holding a sequence becomes a multi-valued field. Field order is kept.
//
//	scxa-analytics:
//	  - id: "1"
//	    cell_id: c1
//	    characteristic_value: [pancreas]
func (s *Store) LoadFixture(r io.Reader) error {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode fixture: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return fmt.Errorf("fixture line %d: expected a mapping of collections", top.Line)
	}

	for i := 0; i+1 < len(top.Content); i += 2 {
		name := top.Content[i].Value
		list := top.Content[i+1]
		if list.Kind != yaml.SequenceNode {
			return fmt.Errorf("fixture line %d: collection %s: expected a list of documents", list.Line, name)
		}
		docs := make([]stream.Tuple, 0, len(list.Content))
		for _, n := range list.Content {
			d, err := decodeDoc(n)
			if err != nil {
				return fmt.Errorf("collection %s: %w", name, err)
			}
			docs = append(docs, d)
		}
		if err := s.Add(name, docs...); err != nil {
			return err
		}
	}
	return nil
}

// LoadFixtureFile reads a fixture from path.
func (s *Store) LoadFixtureFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()
	return s.LoadFixture(f)
}

func decodeDoc(n *yaml.Node) (stream.Tuple, error) {
	var t stream.Tuple
	if n.Kind != yaml.MappingNode {
		return t, fmt.Errorf("fixture line %d: expected a document mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		field, val := n.Content[i].Value, n.Content[i+1]
		switch val.Kind {
		case yaml.ScalarNode:
			if val.Tag == "!!null" {
				continue
			}
			t.Set(field, stream.Scalar(val.Value))
		case yaml.SequenceNode:
			items := make([]string, 0, len(val.Content))
			for _, it := range val.Content {
				if it.Kind != yaml.ScalarNode {
					return t, fmt.Errorf("fixture line %d: field %s: nested values are not supported", it.Line, field)
				}
				items = append(items, it.Value)
			}
			t.Set(field, stream.List(items...))
		default:
			return t, fmt.Errorf("fixture line %d: field %s: unsupported value", val.Line, field)
		}
	}
	return t, nil
}
