package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/HondryTravis/noflo/errors"
)

// definitionFile is the on-disk graph format: named processes bound to
// component types plus a connection list mixing edges (src present) and
// initial packets (data present).
type definitionFile struct {
	Properties  map[string]any        `json:"properties,omitempty" yaml:"properties,omitempty"`
	Processes   map[string]processDef `json:"processes" yaml:"processes"`
	Connections []connectionDef       `json:"connections" yaml:"connections"`
}

type processDef struct {
	Component string         `json:"component" yaml:"component"`
	Metadata  map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

type connectionDef struct {
	Src      *endpointDef   `json:"src,omitempty" yaml:"src,omitempty"`
	Data     any            `json:"data,omitempty" yaml:"data,omitempty"`
	Tgt      endpointDef    `json:"tgt" yaml:"tgt"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

type endpointDef struct {
	Process string `json:"process" yaml:"process"`
	Port    string `json:"port" yaml:"port"`
	Index   *int   `json:"index,omitempty" yaml:"index,omitempty"`
}

func (e endpointDef) toEndpoint() Endpoint {
	return Endpoint{Node: e.Process, Port: e.Port, Index: e.Index}
}

// ParseJSON builds a graph from a JSON definition.
func ParseJSON(data []byte) (*Graph, error) {
	var def definitionFile
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, errors.WrapInvalid(err, "Loader", "ParseJSON", "definition unmarshaling")
	}
	return buildGraph(def)
}

// ParseYAML builds a graph from a YAML definition.
func ParseYAML(data []byte) (*Graph, error) {
	var def definitionFile
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, errors.WrapInvalid(err, "Loader", "ParseYAML", "definition unmarshaling")
	}
	return buildGraph(def)
}

// LoadFile reads a graph definition, choosing the parser by extension
// (.json, .yaml, .yml).
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapTransient(err, "Loader", "LoadFile", "definition read")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return nil, errors.WrapInvalid(
			fmt.Errorf("unsupported graph definition extension %q", filepath.Ext(path)),
			"Loader", "LoadFile", "extension check")
	}
}

func buildGraph(def definitionFile) (*Graph, error) {
	name := ""
	if def.Properties != nil {
		if n, ok := def.Properties["name"].(string); ok {
			name = n
		}
	}

	g := New(name)

	// Processes first so connections can validate endpoints. Map order is
	// not deterministic but node identity, not order, matters here.
	for id, proc := range def.Processes {
		if err := g.AddNode(id, proc.Component, proc.Metadata); err != nil {
			return nil, errors.Wrap(err, "Loader", "buildGraph", "node construction")
		}
	}

	for i, conn := range def.Connections {
		if conn.Tgt.Process == "" || conn.Tgt.Port == "" {
			return nil, errors.WrapInvalid(
				fmt.Errorf("connection %d has no target", i),
				"Loader", "buildGraph", "target validation")
		}

		if conn.Src != nil {
			err := g.AddEdge(Edge{
				From:     conn.Src.toEndpoint(),
				To:       conn.Tgt.toEndpoint(),
				Metadata: conn.Metadata,
			})
			if err != nil {
				return nil, errors.Wrap(err, "Loader", "buildGraph", "edge construction")
			}
			continue
		}

		if conn.Data == nil {
			return nil, errors.WrapInvalid(
				fmt.Errorf("connection %d has neither src nor data", i),
				"Loader", "buildGraph", "connection validation")
		}
		err := g.AddInitial(Initial{To: conn.Tgt.toEndpoint(), Data: conn.Data})
		if err != nil {
			return nil, errors.Wrap(err, "Loader", "buildGraph", "initial construction")
		}
	}

	return g, nil
}
