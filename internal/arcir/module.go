package arcir

import "sigil/internal/source"

type Module struct {
	Name  source.StringID
	Funcs []*Func
}

func (m *Module) FuncByName(name source.StringID) *Func {
	if m == nil {
		return nil
	}
	for _, f := range m.Funcs {
		if f != nil && f.Name == name {
			return f
		}
	}
	return nil
}
