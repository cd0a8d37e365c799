package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dshills/dbgfront/internal/command"
	"github.com/dshills/dbgfront/internal/config"
	"github.com/dshills/dbgfront/internal/frontend/console"
	"github.com/dshills/dbgfront/internal/frontend/mi"
	"github.com/dshills/dbgfront/internal/interp"
)

func newTestSession(t *testing.T, top, input string) (*session, *bytes.Buffer) {
	t.Helper()
	reg := interp.NewRegistry()
	console.Register(reg)
	mi.Register(reg)
	var out bytes.Buffer
	ui := interp.NewDirectory(reg).NewUI(
		interp.WithStreams(strings.NewReader(input), &out, &out),
		interp.WithEngine(command.NewTable(command.Options{})),
	)
	require.NoError(t, ui.SetTopLevel(top))
	t.Cleanup(func() { _ = ui.Close() })
	return newSession(ui, nil, nil, nil, zap.NewNop()), &out
}

func TestSessionStopsAtQuit(t *testing.T) {
	s, out := newTestSession(t, interp.Console, "echo hi\\n\nquit\necho never\\n\n")
	require.NoError(t, s.run(t.Context()))
	require.Equal(t, "(dbgfront) hi\n(dbgfront) ", out.String())
}

func TestSessionStopsAtEOF(t *testing.T) {
	s, out := newTestSession(t, interp.Console, "frob\n")
	require.NoError(t, s.run(t.Context()))
	require.Equal(t, "(dbgfront) Undefined command: \"frob\".  Try \"help\".\n(dbgfront) ", out.String())
}

func TestSessionMIPromptsOncePerCommand(t *testing.T) {
	s, out := newTestSession(t, interp.MI3, "echo hi\n1-gdb-version\n")
	require.NoError(t, s.run(t.Context()))
	require.Equal(t,
		"=version,mi=\"3\"\n(gdb) \n"+
			"~\"hi\"\n^done\n(gdb) \n"+
			"~\"dbgfront (MI version 3)\\n\"\n1^done\n(gdb) \n",
		out.String())
}

func TestSessionInterruptWithoutProgram(t *testing.T) {
	s, out := newTestSession(t, interp.Console, "")
	s.interrupt(context.Background())
	require.Equal(t, "Quit\n", out.String())
}

func TestRegistryHasEveryInterpreter(t *testing.T) {
	reg := interp.NewRegistry()
	registerInterpreters(reg, config.Default())
	require.Equal(t,
		[]string{interp.Console, interp.Lua, interp.MI, interp.MI2, interp.MI3, interp.MI4, interp.TUI},
		reg.Names())
}

func TestFlagsOverrideConfig(t *testing.T) {
	cfg := config.Default()
	options{Interpreter: "mi3", LogLevel: "debug", Listen: ":4712", Program: "./hello", Args: []string{"-v"}}.apply(cfg)
	require.Equal(t, "mi3", cfg.Interpreter)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, ":4712", cfg.Remote.Listen)
	require.Equal(t, "./hello", cfg.Target.Program)
	require.Equal(t, []string{"-v"}, cfg.Target.Args)

	bridge, err := connect(cfg, interp.NewDirectory(interp.NewRegistry()), zap.NewNop())
	require.NoError(t, err)
	require.Nil(t, bridge)
}
