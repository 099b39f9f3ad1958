package events

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/openhome-school/backend/internal/apperrors"
	"github.com/openhome-school/backend/internal/models"
)

// importFile is the on-disk layout read by `adm events import`:
//
//	events:
//	  - name: Battle of Hastings
//	    start: 1066
//	    keywords: Norman, William
//	    cycle_week_id: 14
type importFile struct {
	Events []models.Event `yaml:"events"`
}

// DecodeYAML reads an event import file and validates every record. Unknown
// fields are rejected so typos do not silently drop data.
func DecodeYAML(r io.Reader) ([]models.Event, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f importFile
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, apperrors.ErrorWithContextf(apperrors.ErrInvalidInput, "import file is empty")
		}
		return nil, apperrors.WrapErrorf(apperrors.ErrInvalidInput, "parse import file: %v", err)
	}
	if len(f.Events) == 0 {
		return nil, apperrors.ErrorWithContextf(apperrors.ErrInvalidInput, "import file has no events")
	}

	for i, e := range f.Events {
		if err := e.Validate(); err != nil {
			return nil, apperrors.WrapErrorf(err, "event #%d (%q)", i+1, e.Name)
		}
	}
	return f.Events, nil
}
