package core

import (
	"encoding/json"

	"github.com/JonMunkholm/csvclassify/internal/model"
	"github.com/JonMunkholm/csvclassify/internal/session"
	"github.com/JonMunkholm/csvclassify/internal/table"
	"github.com/JonMunkholm/csvclassify/internal/upload"
)

// Snapshot is the read model of a session used by renderers and the JSON
// API.
type Snapshot struct {
	File        *upload.File               `json:"file"`
	Columns     []string                   `json:"columns"`
	Rows        int                        `json:"rows"`
	Classifying bool                       `json:"classifying"`
	Classified  bool                       `json:"classified"`
	Metrics     *model.Metrics             `json:"metrics"`
	Meta        map[string]json.RawMessage `json:"meta,omitempty"`
	Table       table.View                 `json:"table"`
	Notice      *session.Notice            `json:"notice,omitempty"`
}

// NewSnapshot derives the read model for st.
func NewSnapshot(st session.State) Snapshot {
	return Snapshot{
		File:        st.File,
		Columns:     st.Table.Columns,
		Rows:        st.Table.Len(),
		Classifying: st.Classifying,
		Classified:  st.Classified(),
		Metrics:     st.Metrics,
		Meta:        st.Meta,
		Table:       table.Build(st.Results, st.View),
		Notice:      st.Notice,
	}
}

// HasFile reports whether a file has been uploaded.
func (s Snapshot) HasFile() bool {
	return s.File != nil && s.Rows > 0
}
