package field

import (
	"github.com/wippyai/gadget-wasmapi/errors"
	"github.com/wippyai/gadget-wasmapi/host"
)

// DataSource is a host handle to a stream of records sharing one schema.
type DataSource struct {
	env    *host.Env
	name   string
	handle uint32
}

// GetDataSource looks up a data source by name.
func GetDataSource(env *host.Env, name string) (DataSource, error) {
	loan, err := env.LendString(name)
	if err != nil {
		return DataSource{}, err
	}
	defer loan.Release()

	h := env.Imports().GetDataSource(loan.Ref().Word())
	if h == 0 {
		return DataSource{}, errors.NotFound(errors.OpDataSourceGet, name)
	}
	return DataSource{env: env, name: name, handle: h}, nil
}

// Name returns the data source name.
func (ds DataSource) Name() string {
	return ds.name
}

// Handle returns the host handle.
func (ds DataSource) Handle() uint32 {
	return ds.handle
}

// GetField looks up an existing field.
func (ds DataSource) GetField(name string) (Field, error) {
	loan, err := ds.env.LendString(name)
	if err != nil {
		return Field{}, err
	}
	defer loan.Release()

	h := ds.env.Imports().DataSourceGetField(ds.handle, loan.Ref().Word())
	if h == 0 {
		return Field{}, errors.New(errors.OpFieldLookup, errors.KindNotFound).
			Name(name).
			Detail("no such field in data source %q", ds.name).
			Build()
	}
	return NewField(ds.env, h), nil
}

// AddField declares a new field of the given kind.
func (ds DataSource) AddField(name string, kind Kind) (Field, error) {
	if !kind.Valid() {
		return Field{}, errors.UnsupportedKind(errors.OpFieldLookup, kind, "cannot add field of kind "+kind.String())
	}
	loan, err := ds.env.LendString(name)
	if err != nil {
		return Field{}, err
	}
	defer loan.Release()

	h := ds.env.Imports().DataSourceAddField(ds.handle, loan.Ref().Word(), uint32(kind))
	if h == 0 {
		return Field{}, errors.Creation(errors.OpFieldLookup, name, "host rejected field in data source "+ds.name)
	}
	return NewField(ds.env, h), nil
}
