package app

import (
	"fmt"

	"krunq/internal/target"
)

// SymbolInfo is one resolved symbol.
type SymbolInfo struct {
	Name string
	Addr uint64
}

// Symbols resolves each named variable to its address. Unknown names fail
// the whole lookup with target.ErrNoSymbol.
func (a *App) Symbols(names []string) ([]SymbolInfo, error) {
	if a.tgt == nil {
		return nil, errNotOpen
	}
	infos := make([]SymbolInfo, 0, len(names))
	for _, name := range names {
		obj, err := a.tgt.Symbol(name)
		if err != nil {
			return nil, err
		}
		infos = append(infos, SymbolInfo{Name: name, Addr: obj.Address()})
	}
	return infos, nil
}

// SymbolAt reverse-resolves an address to the nearest preceding symbol and
// the offset from its base.
func (a *App) SymbolAt(addr uint64) (SymbolInfo, uint64, error) {
	if a.tgt == nil {
		return SymbolInfo{}, 0, errNotOpen
	}
	name, base, ok := a.tgt.SymbolAt(addr)
	if !ok {
		return SymbolInfo{}, 0, fmt.Errorf("%w: no symbol at or below %#x", target.ErrNoSymbol, addr)
	}
	return SymbolInfo{Name: name, Addr: base}, addr - base, nil
}
