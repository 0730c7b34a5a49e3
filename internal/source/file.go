package source

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/leadfinder/internal/model"
)

// File reads candidates from a YAML or JSON file on every fetch. The file is
// either a list of records or a mapping with a "candidates" list.
type File struct {
	id   string
	path string
}

// NewFile creates a File source.
func NewFile(id, path string) (*File, error) {
	if path == "" {
		return nil, eris.New("file source requires a path")
	}
	return &File{id: id, path: path}, nil
}

// ID implements discovery.Connector.
func (f *File) ID() string { return f.id }

// Fetch implements discovery.Connector.
func (f *File) Fetch(ctx context.Context, _ model.Preferences) ([]model.RawCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, eris.Wrapf(err, "file: read %s", f.path)
	}
	return parseRecords(data)
}

type fileRecord struct {
	CompanyName string `yaml:"company_name"`
	Name        string `yaml:"name"`
	Website     string `yaml:"website"`
	Industry    string `yaml:"industry"`
	Description string `yaml:"description"`
}

func (r fileRecord) candidate() model.RawCandidate {
	name := r.CompanyName
	if name == "" {
		name = r.Name
	}
	return model.RawCandidate{
		CompanyName: name,
		Website:     r.Website,
		Industry:    r.Industry,
		Description: r.Description,
	}
}

// parseRecords decodes YAML (and therefore JSON) record lists.
func parseRecords(data []byte) ([]model.RawCandidate, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, eris.Wrap(err, "file: parse")
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	var records []fileRecord
	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&records); err != nil {
			return nil, eris.Wrap(err, "file: decode records")
		}
	case yaml.MappingNode:
		var wrapper struct {
			Candidates []fileRecord `yaml:"candidates"`
		}
		if err := root.Decode(&wrapper); err != nil {
			return nil, eris.Wrap(err, "file: decode candidates")
		}
		records = wrapper.Candidates
	default:
		return nil, eris.New("file: expected a list of records or a candidates mapping")
	}

	out := make([]model.RawCandidate, len(records))
	for i, r := range records {
		out[i] = r.candidate()
	}
	return out, nil
}
