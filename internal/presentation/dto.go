package presentation

import (
	"github.com/zjrosen/heinlein/internal/application/registry"
)

// EntryDTO represents a single datatype entry.
type EntryDTO struct {
	Dataset  string `json:"dataset" yaml:"dataset"`
	Datatype string `json:"datatype" yaml:"datatype"`
	Path     string `json:"path" yaml:"path"`
	Created  bool   `json:"dataset_created,omitempty" yaml:"dataset_created,omitempty"`
}

// FromResult converts a registry result to a DTO.
func FromResult(r registry.Result) EntryDTO {
	return EntryDTO{
		Dataset:  r.Dataset,
		Datatype: r.Datatype,
		Path:     r.Path,
		Created:  r.Created,
	}
}

// DatasetDTO represents a dataset and its datatype entries.
type DatasetDTO struct {
	Name      string            `json:"name" yaml:"name"`
	Datatypes []string          `json:"datatypes" yaml:"datatypes"` // always present, possibly empty
	Data      map[string]string `json:"data" yaml:"data"`
}

// FromSummaries converts registry overview rows to DTOs.
func FromSummaries(rows []registry.DatasetSummary) []DatasetDTO {
	dtos := make([]DatasetDTO, len(rows))
	for i, row := range rows {
		data := row.Data
		if data == nil {
			data = map[string]string{}
		}
		types := row.Datatypes()
		if types == nil {
			types = []string{}
		}
		dtos[i] = DatasetDTO{Name: row.Name, Datatypes: types, Data: data}
	}
	return dtos
}

// DatatypesDTO lists one dataset's datatypes.
type DatatypesDTO struct {
	Dataset   string   `json:"dataset" yaml:"dataset"`
	Datatypes []string `json:"datatypes" yaml:"datatypes"`
}

// CreateDTO represents an explicit dataset creation.
type CreateDTO struct {
	Dataset    string `json:"dataset" yaml:"dataset"`
	ConfigPath string `json:"config_path" yaml:"config_path"`
	Template   string `json:"template,omitempty" yaml:"template,omitempty"`
	Created    bool   `json:"created" yaml:"created"`
}

// FromCreateResult converts a registry create result to a DTO.
func FromCreateResult(r registry.CreateResult) CreateDTO {
	return CreateDTO{
		Dataset:    r.Dataset,
		ConfigPath: r.ConfigPath,
		Template:   r.Template,
		Created:    r.Created,
	}
}

// ClearDTO represents a cleared dataset.
type ClearDTO struct {
	Dataset string   `json:"dataset" yaml:"dataset"`
	Removed []string `json:"removed" yaml:"removed"`
}

// FromClearResult converts a registry clear result to a DTO.
func FromClearResult(r registry.ClearResult) ClearDTO {
	removed := r.Removed
	if removed == nil {
		removed = []string{}
	}
	return ClearDTO{Dataset: r.Dataset, Removed: removed}
}
