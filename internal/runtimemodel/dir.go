package runtimemodel

import (
	"path/filepath"

	"catma/internal/link"
)

// File name suffixes written by the learner.
const (
	Suffix        = ".csv.ff.final.dot"
	ServiceSuffix = "_service_data" + Suffix
	LinkSuffix    = "_link_data" + Suffix
)

// Dir is a directory of learned models: one per service, one per link and
// the general model of the whole application.
type Dir struct {
	Path string
}

// ServicePath returns the model file of a component.
func (d Dir) ServicePath(component string) string {
	return filepath.Join(d.Path, link.Denormalize(component)+ServiceSuffix)
}

// LinkPath returns the model file of a link.
func (d Dir) LinkPath(l link.Link) string {
	return filepath.Join(d.Path, link.Denormalize(l.Source)+"_"+link.Denormalize(l.Target)+LinkSuffix)
}

// GeneralPath returns the model file of the whole application.
func (d Dir) GeneralPath(name string) string {
	return filepath.Join(d.Path, name+Suffix)
}

// LoadService loads the model of a component. A missing file returns an
// error wrapping ErrModelNotFound.
func (d Dir) LoadService(component string) (*Model, error) {
	return Load(d.ServicePath(component))
}

// LoadLink loads the model of a link.
func (d Dir) LoadLink(l link.Link) (*Model, error) {
	return Load(d.LinkPath(l))
}

// LoadGeneral loads the general model.
func (d Dir) LoadGeneral(name string) (*Model, error) {
	return Load(d.GeneralPath(name))
}

// LinkToCode writes a copy of m to outDir whose transitions carry an href to
// the code that makes each call. It returns the written path.
func LinkToCode(m *Model, outDir string, href HrefFunc) (string, error) {
	path := filepath.Join(outDir, m.Name+".dot")
	if err := WriteFile(m, path, href); err != nil {
		return "", err
	}
	return path, nil
}
