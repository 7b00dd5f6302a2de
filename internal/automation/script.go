// Package automation runs Lua scripts that change the crash controls while
// rendering offline.
//
// A script defines a global function
//
//	function on_block(block, state) ... end
//
// called before every block. state is a table with the fields freeze, hold,
// length, sample_rate and block_size. Returning a table with any of freeze,
// hold or length changes those controls; returning nil keeps them. The
// helper seconds(block) converts a block index to its start time.
//
// Only the base, table, string and math libraries are available.
package automation

import (
	"errors"
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"

	"github.com/cwbudde/xpcrash/dsp/core"
	"github.com/cwbudde/xpcrash/internal/host"
)

// HookName is the global function called before every block.
const HookName = "on_block"

// ErrNoHook is returned when a script does not define on_block.
var ErrNoHook = errors.New("automation: script does not define " + HookName)

var _ host.Automator = (*Script)(nil)

// Script is a loaded automation script. It implements host.Automator and
// is not safe for concurrent use.
type Script struct {
	L    *lua.LState
	hook *lua.LFunction
	cfg  core.ProcessorConfig
}

// New compiles and runs src, then looks up its on_block hook.
func New(src string, cfg core.ProcessorConfig) (*Script, error) {
	return load(cfg, func(L *lua.LState) error { return L.DoString(src) })
}

// Load reads a script from path.
func Load(path string, cfg core.ProcessorConfig) (*Script, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("automation script: %w", err)
	}

	return load(cfg, func(L *lua.LState) error { return L.DoFile(path) })
}

func load(cfg core.ProcessorConfig, run func(*lua.LState) error) (*Script, error) {
	if cfg.BlockSize <= 0 || cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("automation needs a block size and sample rate: %+v", cfg)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)

	s := &Script{L: L, cfg: cfg}
	L.SetGlobal("seconds", L.NewFunction(s.seconds))

	if err := run(L); err != nil {
		L.Close()
		return nil, fmt.Errorf("automation script: %w", err)
	}

	hook, ok := L.GetGlobal(HookName).(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, ErrNoHook
	}

	s.hook = hook

	return s, nil
}

func openSafeLibs(L *lua.LState) {
	libs := []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}

	for _, lib := range libs {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	// The base library can still reach the filesystem.
	for _, name := range []string{"dofile", "loadfile"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// Step implements host.Automator.
func (s *Script) Step(block int64, st host.ControlState) (host.ControlState, error) {
	state := s.L.NewTable()
	state.RawSetString("freeze", lua.LBool(st.Freeze))
	state.RawSetString("hold", lua.LBool(st.Hold))
	state.RawSetString("length", lua.LNumber(st.Length))
	state.RawSetString("sample_rate", lua.LNumber(s.cfg.SampleRate))
	state.RawSetString("block_size", lua.LNumber(s.cfg.BlockSize))

	err := s.L.CallByParam(lua.P{Fn: s.hook, NRet: 1, Protect: true}, lua.LNumber(block), state)
	if err != nil {
		return st, fmt.Errorf("%s(%d): %w", HookName, block, err)
	}

	ret := s.L.Get(-1)
	s.L.Pop(1)

	switch v := ret.(type) {
	case *lua.LNilType:
		return st, nil
	case *lua.LTable:
		return apply(v, st)
	default:
		return st, fmt.Errorf("%s(%d) returned %s, want table or nil", HookName, block, ret.Type())
	}
}

// Close releases the interpreter.
func (s *Script) Close() {
	s.L.Close()
}

func (s *Script) seconds(L *lua.LState) int {
	block := L.CheckNumber(1)
	L.Push(lua.LNumber(float64(block) * float64(s.cfg.BlockSize) / s.cfg.SampleRate))
	return 1
}

func apply(t *lua.LTable, st host.ControlState) (host.ControlState, error) {
	if v := t.RawGetString("freeze"); v != lua.LNil {
		b, ok := v.(lua.LBool)
		if !ok {
			return st, fmt.Errorf("freeze must be a boolean, got %s", v.Type())
		}
		st.Freeze = bool(b)
	}

	if v := t.RawGetString("hold"); v != lua.LNil {
		b, ok := v.(lua.LBool)
		if !ok {
			return st, fmt.Errorf("hold must be a boolean, got %s", v.Type())
		}
		st.Hold = bool(b)
	}

	if v := t.RawGetString("length"); v != lua.LNil {
		n, ok := v.(lua.LNumber)
		if !ok {
			return st, fmt.Errorf("length must be a number, got %s", v.Type())
		}
		st.Length = int(n)
	}

	return st, nil
}
